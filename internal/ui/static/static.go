package static

import (
	"embed"
	"net/http"
	"strings"
)

// DefaultPath is where the stylesheet and other assets are mounted.
const DefaultPath = "/static/"

//go:embed *.css
var assets embed.FS

// Handler serves the embedded assets under prefix.
func Handler(prefix string) http.Handler {
	if prefix == "" {
		prefix = DefaultPath
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return http.StripPrefix(prefix, http.FileServerFS(assets))
}
