package usecase

import (
	"unicode/utf8"
)

// externalLinkScript is injected into served HTML pages. Displayed content
// runs inside a framed view; a plain navigation to another origin would trap
// the user inside the frame, so clicks on cross-origin http(s) anchors are
// cancelled and opened in a new window instead.
const externalLinkScript = `<script>(function(){document.addEventListener("click",function(ev){var el=ev.target;while(el&&el.tagName!=="A"){el=el.parentElement}if(!el||!el.href){return}var url;try{url=new URL(el.href,window.location.href)}catch(e){return}if((url.protocol==="http:"||url.protocol==="https:")&&url.origin!==window.location.origin){ev.preventDefault();window.open(url.href,"_blank","noopener")}},true)})();</script>`

// TransformHTML injects externalLinkScript immediately before the closing
// </body> tag, before </html> when there is no </body>, or at the end when
// neither exists. Every byte outside the injection point is left untouched.
// Input that is not decodable text is returned unmodified; the transform is
// a convenience and must never break the response.
func TransformHTML(body []byte) []byte {
	if !utf8.Valid(body) {
		return body
	}

	idx := indexFold(body, "</body>")
	if idx < 0 {
		idx = indexFold(body, "</html>")
	}
	if idx < 0 {
		idx = len(body)
	}

	out := make([]byte, 0, len(body)+len(externalLinkScript))
	out = append(out, body[:idx]...)
	out = append(out, externalLinkScript...)
	out = append(out, body[idx:]...)
	return out
}

// indexFold returns the index of the first ASCII case-insensitive occurrence
// of sub in b, or -1.
func indexFold(b []byte, sub string) int {
	if len(sub) == 0 || len(b) < len(sub) {
		return -1
	}
	for i := 0; i+len(sub) <= len(b); i++ {
		if equalFoldASCII(b[i:i+len(sub)], sub) {
			return i
		}
	}
	return -1
}

func equalFoldASCII(b []byte, s string) bool {
	for i := 0; i < len(s); i++ {
		c1, c2 := b[i], s[i]
		if 'A' <= c1 && c1 <= 'Z' {
			c1 += 'a' - 'A'
		}
		if 'A' <= c2 && c2 <= 'Z' {
			c2 += 'a' - 'A'
		}
		if c1 != c2 {
			return false
		}
	}
	return true
}
