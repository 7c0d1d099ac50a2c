package http

import (
	"path"
	"strings"
)

const defaultMIMEType = "application/octet-stream"

// mimeTypes is the static extension table used for served package files.
// Deliberately a fixed table rather than mime.TypeByExtension: responses
// must not depend on the host's registry, and packages rely on exactly
// these types.
var mimeTypes = map[string]string{
	".html":  "text/html; charset=utf-8",
	".htm":   "text/html; charset=utf-8",
	".css":   "text/css; charset=utf-8",
	".js":    "text/javascript; charset=utf-8",
	".mjs":   "text/javascript; charset=utf-8",
	".json":  "application/json",
	".png":   "image/png",
	".jpg":   "image/jpeg",
	".jpeg":  "image/jpeg",
	".gif":   "image/gif",
	".svg":   "image/svg+xml",
	".ico":   "image/x-icon",
	".webp":  "image/webp",
	".woff":  "font/woff",
	".woff2": "font/woff2",
	".ttf":   "font/ttf",
	".eot":   "application/vnd.ms-fontobject",
	".otf":   "font/otf",
	".mp3":   "audio/mpeg",
	".mp4":   "video/mp4",
	".webm":  "video/webm",
	".ogg":   "audio/ogg",
	".ogv":   "video/ogg",
	".wav":   "audio/wav",
	".pdf":   "application/pdf",
	".xml":   "application/xml",
	".xhtml": "application/xhtml+xml",
	".txt":   "text/plain; charset=utf-8",
	".csv":   "text/csv",
	".zip":   "application/zip",
}

// typeByPath returns the MIME type for a file path based on its extension,
// consulting overrides first, then the static table, then falling back to
// application/octet-stream.
func typeByPath(p string, overrides map[string]string) string {
	ext := strings.ToLower(path.Ext(p))
	if t, ok := overrides[ext]; ok {
		return t
	}
	if t, ok := mimeTypes[ext]; ok {
		return t
	}
	return defaultMIMEType
}

func isHTML(mimeType string) bool {
	return strings.HasPrefix(mimeType, "text/html")
}
