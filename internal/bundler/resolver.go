package bundler

import (
	"path"
	"strings"

	"webforge/internal/models"
)

// Probe order after the exact path: specifier + extension, then
// specifier/index file.
var (
	resolveExtensions = []string{".js", ".jsx", ".ts", ".tsx"}
	resolveIndexNames = []string{"index.js", "index.jsx", "index.ts", "index.tsx"}
)

// Resolve maps an import specifier to a concrete path in files. Relative
// specifiers resolve against the importing file's directory; anything else is
// treated as an absolute project path. Returns false on a miss, which is not
// fatal: the specifier is assumed to name a library the hosting runtime
// provides.
func Resolve(specifier, fromPath string, files *models.FileSet) (string, bool) {
	specifier = strings.TrimSpace(specifier)
	if specifier == "" {
		return "", false
	}

	var candidate string
	if strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../") {
		candidate = path.Join(path.Dir(fromPath), specifier)
	} else {
		candidate = path.Join("/", specifier)
	}
	candidate = path.Clean(candidate)
	if !strings.HasPrefix(candidate, "/") {
		candidate = "/" + candidate
	}

	if _, ok := files.Get(candidate); ok {
		return candidate, true
	}
	for _, ext := range resolveExtensions {
		if _, ok := files.Get(candidate + ext); ok {
			return candidate + ext, true
		}
	}
	for _, index := range resolveIndexNames {
		withIndex := path.Join(candidate, index)
		if _, ok := files.Get(withIndex); ok {
			return withIndex, true
		}
	}
	return "", false
}
