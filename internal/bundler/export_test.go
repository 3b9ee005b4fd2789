package bundler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"webforge/internal/models"
)

func TestDocumentIsSelfContained(t *testing.T) {
	fs := models.NewFileSet()
	mustPut(t, fs, "/index.js", "const app = 1;\n")
	mustPut(t, fs, "/styles.css", "body { margin: 0; }\n")

	doc := Document("My <Site>", Bundle(fs))

	assert.True(t, strings.HasPrefix(doc, "<!DOCTYPE html>"))
	assert.Contains(t, doc, "<title>My &lt;Site&gt;</title>")
	assert.Contains(t, doc, "body { margin: 0; }")
	assert.Contains(t, doc, "const app = 1;")

	// Fixed boot sequence: log buffer, mount retry loop, error overlay.
	assert.Contains(t, doc, "__forgeLogs")
	assert.Contains(t, doc, "__forgeMount")
	assert.Contains(t, doc, "error-overlay")

	// Single style and bundle script blocks; nothing external.
	assert.Equal(t, 1, strings.Count(doc, "<style>"))
	assert.NotContains(t, doc, "src=")
}

func TestDocumentEscapesScriptTerminator(t *testing.T) {
	fs := models.NewFileSet()
	mustPut(t, fs, "/index.js", `const html = "</script>";`+"\n")

	doc := Document("t", Bundle(fs))
	assert.NotContains(t, doc, `"</script>"`)
	assert.Contains(t, doc, `<\/script>`)
}
