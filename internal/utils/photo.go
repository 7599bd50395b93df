package utils

import (
	"encoding/base64"
	"fmt"
	"html"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

// DataURI embeds data as a base64 data URI. An empty contentType is
// guessed from name first, then sniffed from the bytes.
func DataURI(contentType, name string, data []byte) string {
	ct := strings.TrimSpace(contentType)
	if ct == "" || ct == "application/octet-stream" {
		if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); byExt != "" {
			ct = byExt
		} else {
			ct = http.DetectContentType(data)
		}
	}
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return "data:" + ct + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// PlaceholderPhoto renders a 200x200 SVG with a centered label as a data URI.
func PlaceholderPhoto(fill, label string) string {
	svg := fmt.Sprintf(`<svg width="200" height="200" xmlns="http://www.w3.org/2000/svg">`+
		`<rect width="200" height="200" fill="%s"/>`+
		`<text x="50%%" y="50%%" font-size="24" fill="white" text-anchor="middle" dy=".3em">%s</text>`+
		`</svg>`, html.EscapeString(fill), html.EscapeString(label))
	return "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(svg))
}

func NoPhoto() string { return PlaceholderPhoto("#cccccc", "No Photo") }

// Initials returns up to two leading letters of name, upper-cased.
func Initials(name string) string {
	var out []rune
	for _, part := range strings.Fields(name) {
		out = append(out, []rune(part)[0])
		if len(out) == 2 {
			break
		}
	}
	return strings.ToUpper(string(out))
}
