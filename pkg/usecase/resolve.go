package usecase

import (
	"path"
	"strings"

	"github.com/carrel-app/carrel/pkg/domain/model"
)

// Resolve maps a requested virtual path to a stored key. The order of the
// fallbacks is a load-bearing contract:
//
//  1. exact match
//  2. if the path has no extension, the directory index: "dir/" tries
//     "dir/index.html", "dir" tries "dir/index.html" as well
//  3. case-insensitive linear scan, first match in entry order
//
// Returns the resolved key, or false when nothing matches.
func Resolve(reqPath string, files *model.FileMap) (string, bool) {
	if files == nil {
		return "", false
	}

	if files.Has(reqPath) {
		return reqPath, true
	}

	if path.Ext(reqPath) == "" {
		candidate := reqPath + "/index.html"
		if strings.HasSuffix(reqPath, "/") {
			candidate = reqPath + "index.html"
		}
		if files.Has(candidate) {
			return candidate, true
		}
	}

	for _, key := range files.Paths() {
		if strings.EqualFold(key, reqPath) {
			return key, true
		}
	}

	return "", false
}
