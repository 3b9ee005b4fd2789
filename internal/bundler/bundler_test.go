package bundler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"webforge/internal/models"
)

func mustPut(t *testing.T, fs *models.FileSet, path, content string) {
	t.Helper()
	if err := fs.Put(path, content); err != nil {
		t.Fatalf("put %s: %v", path, err)
	}
}

func TestBundleDependencyOrderWithOrphanData(t *testing.T) {
	fs := models.NewFileSet()
	mustPut(t, fs, "/App.js", `import Header from "./Header";
export default function App() { return Header(); }
`)
	mustPut(t, fs, "/Header.js", `export default function Header() { return "header"; }
`)
	mustPut(t, fs, "/util.json", `{"kind": "data"}`)

	res := Bundle(fs)

	assert.Equal(t, "/App.js", res.Entry)
	assert.False(t, res.Partial)
	assert.Equal(t, []string{"/Header.js", "/App.js"}, res.ScriptOrder)

	// Unimported data files still get a declaration, before any script body.
	assert.Contains(t, res.Script, `var _util_json = {"kind": "data"};`)
	assert.Less(t,
		strings.Index(res.Script, "_util_json"),
		strings.Index(res.Script, "function Header"))

	// Dependency body precedes the dependent's.
	assert.Less(t,
		strings.Index(res.Script, "function Header"),
		strings.Index(res.Script, "function App"))

	// Section order: CSS bootstrap, then data, then scripts.
	assert.True(t, strings.HasPrefix(res.Script, "(function () {"))
	assert.Equal(t, 3, res.Processed)
}

func TestBundleEveryScriptExactlyOnce(t *testing.T) {
	fs := models.NewFileSet()
	mustPut(t, fs, "/index.js", `import "./a";
import "./b";
`)
	mustPut(t, fs, "/a.js", `import "./b";
const a = 1;
`)
	mustPut(t, fs, "/b.js", `const b = 2;
`)
	mustPut(t, fs, "/orphan.js", `const orphan = 3;
`)
	mustPut(t, fs, "/README.txt", "not bundled")

	res := Bundle(fs)

	assert.Equal(t, []string{"/b.js", "/a.js", "/index.js", "/orphan.js"}, res.ScriptOrder)
	for _, p := range res.ScriptOrder {
		assert.Equal(t, 1, strings.Count(res.Script, "// --- "+p+" ---"), p)
	}
	// Ignored kinds are still counted as processed.
	assert.Equal(t, 5, res.Processed)
}

func TestBundleCycleSafety(t *testing.T) {
	fs := models.NewFileSet()
	mustPut(t, fs, "/index.js", `import "./a";
`)
	mustPut(t, fs, "/a.js", `import "./b";
const a = 1;
`)
	mustPut(t, fs, "/b.js", `import "./a";
const b = 2;
`)

	res := Bundle(fs)

	assert.Equal(t, 1, strings.Count(res.Script, "// --- /a.js ---"))
	assert.Equal(t, 1, strings.Count(res.Script, "// --- /b.js ---"))
	assert.Equal(t, []string{"/b.js", "/a.js", "/index.js"}, res.ScriptOrder)
}

func TestBundleIdempotent(t *testing.T) {
	fs := models.NewFileSet()
	mustPut(t, fs, "/index.js", `import "./theme.css";
import data from "./config.json";
const boot = true;
`)
	mustPut(t, fs, "/theme.css", "body { margin: 0; }\n")
	mustPut(t, fs, "/config.json", `{"a": 1}`)

	first := Bundle(fs)
	second := Bundle(fs)

	assert.Equal(t, first.CSS, second.CSS)
	assert.Equal(t, first.Script, second.Script)
	assert.Equal(t, first.Fingerprint, second.Fingerprint)
}

func TestBundleNoEntryIsPartial(t *testing.T) {
	fs := models.NewFileSet()
	mustPut(t, fs, "/widget.js", `const w = 1;
`)
	mustPut(t, fs, "/helper.js", `const h = 2;
`)

	res := Bundle(fs)

	assert.True(t, res.Partial)
	assert.Equal(t, "", res.Entry)
	// Best-effort: every script still appears, in FileSet iteration order.
	assert.Equal(t, []string{"/widget.js", "/helper.js"}, res.ScriptOrder)
}

func TestBundleStripsHostProvidedCSSRules(t *testing.T) {
	fs := models.NewFileSet()
	mustPut(t, fs, "/index.js", "const x = 1;\n")
	mustPut(t, fs, "/styles.css", `@tailwind base;
@tailwind utilities;
@import url("https://fonts.googleapis.com/css2?family=Inter");
body { color: red; }
`)

	res := Bundle(fs)

	assert.NotContains(t, res.CSS, "@tailwind")
	assert.NotContains(t, res.CSS, "fonts.googleapis.com")
	assert.Contains(t, res.CSS, "body { color: red; }")
	// The script embeds the cleaned CSS via the injection bootstrap.
	assert.Contains(t, res.Script, "document.head.appendChild(style)")
}

func TestBundleDefaultIdentCollisionLastWins(t *testing.T) {
	fs := models.NewFileSet()
	mustPut(t, fs, "/index.js", `import "./components/Card";
import "./widgets/Card";
`)
	mustPut(t, fs, "/components/Card.js", `export default () => "component card";
`)
	mustPut(t, fs, "/widgets/Card.js", `export default () => "widget card";
`)

	res := Bundle(fs)

	// Both declarations are emitted; the later one is the effective binding.
	assert.Equal(t, 2, strings.Count(res.Script, "const Card = "))
	collisions := res.Symbols.Collisions()
	assert.Equal(t, []string{"/components/Card.js", "/widgets/Card.js"}, collisions["Card"])
	declared := res.Symbols.DeclaredBy("Card")
	assert.Equal(t, "/widgets/Card.js", declared[len(declared)-1])
}
