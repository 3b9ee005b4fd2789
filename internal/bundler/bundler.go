package bundler

import (
	"encoding/json"
	"log"
	"path"
	"regexp"
	"strings"

	"webforge/internal/models"
)

// Conventional entry filenames, probed in order.
var entryCandidates = []string{
	"/index.js", "/index.jsx", "/index.tsx",
	"/App.js", "/App.jsx", "/App.tsx",
	"/main.js",
	"/src/index.js", "/src/App.js",
}

var (
	// At-rules the hosting runtime already provides (reset/utility
	// directives) and remote font imports pre-loaded by the host page.
	frameworkAtRuleRe = regexp.MustCompile(`(?m)^[ \t]*@(?:tailwind|apply)[^;\n]*;?[ \t]*\r?\n?`)
	remoteImportRe    = regexp.MustCompile(`(?m)^[ \t]*@import[ \t]+(?:url\()?['"]?https?://[^;\n]*;[ \t]*\r?\n?`)

	topLevelDeclRe = regexp.MustCompile(`(?m)^(?:const|let|var|async[ \t]+function|function|class)[ \t]+([A-Za-z_$][A-Za-z0-9_$]*)`)

	dataIdentRe = regexp.MustCompile(`[^A-Za-z0-9]+`)
)

// SymbolTable records which file declared each top-level identifier, in
// emission order. The bundle runs in one flat scope; a name declared by two
// files is a collision where the later declaration is the effective binding.
type SymbolTable struct {
	names []string
	decls map[string][]string
}

func newSymbolTable() *SymbolTable {
	return &SymbolTable{decls: make(map[string][]string)}
}

func (t *SymbolTable) declare(name, filePath string) {
	if _, seen := t.decls[name]; !seen {
		t.names = append(t.names, name)
	}
	t.decls[name] = append(t.decls[name], filePath)
}

// DeclaredBy returns the paths that declared name, in emission order. The
// last entry is the effective binding.
func (t *SymbolTable) DeclaredBy(name string) []string {
	return t.decls[name]
}

// Collisions returns every identifier declared by more than one file.
func (t *SymbolTable) Collisions() map[string][]string {
	out := make(map[string][]string)
	for _, name := range t.names {
		if paths := t.decls[name]; len(paths) > 1 {
			out[name] = paths
		}
	}
	return out
}

// Result is one bundle pass over a full FileSet.
type Result struct {
	CSS    string
	Script string
	// Entry is the resolved entry path, empty when none was found.
	Entry string
	// Partial is set when no entry was found and every script was emitted
	// best-effort as an orphan.
	Partial bool
	// ScriptOrder is the script emission order, dependencies first.
	ScriptOrder []string
	// DataOrder lists structured-data files in declaration order.
	DataOrder []string
	Symbols   *SymbolTable
	// Processed counts every file in the set, including kinds the bundler
	// ignores, so nothing can silently reappear twice.
	Processed int
	// Fingerprint identifies the input FileSet; equal inputs produce
	// byte-identical output.
	Fingerprint uint64
}

type fileKind int

const (
	kindScript fileKind = iota
	kindStyle
	kindData
	kindOther
)

func kindOf(p string) fileKind {
	switch strings.ToLower(path.Ext(p)) {
	case ".js", ".jsx", ".ts", ".tsx":
		return kindScript
	case ".css":
		return kindStyle
	case ".json":
		return kindData
	default:
		return kindOther
	}
}

// DataIdent collapses every non-alphanumeric run in a path to a single
// underscore, yielding the variable name a structured-data file declares.
func DataIdent(p string) string {
	return dataIdentRe.ReplaceAllString(p, "_")
}

// Bundle flattens the full FileSet into one CSS blob and one executable
// script blob in dependency order. It is a pure function of files: no
// caching, no partial passes. Resolution misses degrade to library
// references and never abort the pass.
func Bundle(files *models.FileSet) *Result {
	res := &Result{
		Symbols:     newSymbolTable(),
		Processed:   files.Len(),
		Fingerprint: files.Fingerprint(),
	}

	var styles, data, scripts []string
	for _, p := range files.Paths() {
		switch kindOf(p) {
		case kindStyle:
			styles = append(styles, p)
		case kindData:
			data = append(data, p)
		case kindScript:
			scripts = append(scripts, p)
		}
	}

	// Stylesheets: FileSet iteration order, host-provided rules stripped.
	var css strings.Builder
	for _, p := range styles {
		content, _ := files.Get(p)
		content = frameworkAtRuleRe.ReplaceAllString(content, "")
		content = remoteImportRe.ReplaceAllString(content, "")
		css.WriteString("/* " + p + " */\n")
		css.WriteString(strings.TrimRight(content, "\n"))
		css.WriteString("\n")
	}
	res.CSS = css.String()

	// Scripts: post-order DFS from the entry. Marking a file visited before
	// walking its imports both prevents duplicate emission and breaks
	// cycles: a file already in progress is never re-entered.
	visited := make(map[string]bool)
	var emit func(p string)
	emit = func(p string) {
		if visited[p] {
			return
		}
		visited[p] = true
		src, _ := files.Get(p)
		for _, spec := range ImportSpecifiers(src) {
			dep, ok := Resolve(spec, p, files)
			if !ok {
				log.Printf("bundler: unresolved import %q in %s, treating as library reference", spec, p)
				continue
			}
			if kindOf(dep) == kindScript {
				emit(dep)
			}
		}
		res.ScriptOrder = append(res.ScriptOrder, p)
	}

	for _, candidate := range entryCandidates {
		if _, ok := files.Get(candidate); ok {
			res.Entry = candidate
			break
		}
	}
	if res.Entry != "" {
		emit(res.Entry)
	} else if len(scripts) > 0 {
		res.Partial = true
		log.Printf("bundler: no entry file found, emitting %d script(s) best-effort", len(scripts))
	}

	// Orphans: scripts unreachable from the entry still appear exactly once,
	// appended in FileSet iteration order.
	for _, p := range scripts {
		if !visited[p] {
			emit(p)
		}
	}

	var script strings.Builder
	script.WriteString(cssBootstrap(res.CSS))

	// Structured-data declarations come before any script body.
	for _, p := range data {
		content, _ := files.Get(p)
		ident := DataIdent(p)
		script.WriteString("var " + ident + " = " + strings.TrimSpace(content) + ";\n")
		res.DataOrder = append(res.DataOrder, p)
		res.Symbols.declare(ident, p)
	}

	for _, p := range res.ScriptOrder {
		src, _ := files.Get(p)
		body := Normalize(p, src)
		for _, m := range topLevelDeclRe.FindAllStringSubmatch(body, -1) {
			res.Symbols.declare(m[1], p)
		}
		script.WriteString("// --- " + p + " ---\n")
		script.WriteString(strings.TrimRight(body, "\n"))
		script.WriteString("\n")
	}
	res.Script = script.String()

	for name, paths := range res.Symbols.Collisions() {
		log.Printf("bundler: identifier %q declared by %v, last declaration wins", name, paths)
	}

	return res
}

// cssBootstrap returns the snippet that injects the CSS blob into the page
// at runtime, emitted ahead of every data and script section.
func cssBootstrap(css string) string {
	encoded, _ := json.Marshal(css)
	var b strings.Builder
	b.WriteString("(function () {\n")
	b.WriteString("  var style = document.createElement(\"style\");\n")
	b.WriteString("  style.setAttribute(\"data-webforge\", \"bundle\");\n")
	b.WriteString("  style.textContent = " + string(encoded) + ";\n")
	b.WriteString("  document.head.appendChild(style);\n")
	b.WriteString("})();\n")
	return b.String()
}
