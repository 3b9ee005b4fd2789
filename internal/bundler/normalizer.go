package bundler

import (
	"path"
	"regexp"
	"strings"
)

// The target execution environment is one flat script scope, so module
// syntax is rewritten away at the text level. Each rule is a standalone
// rewrite; together they leave no import/export keyword behind.
var (
	// import X from "p"; import { a, b } from "p"; import "p";
	importSpecRe = regexp.MustCompile(`(?m)^[ \t]*import[ \t]+(?:[^'";]+?\bfrom[ \t]*)?['"]([^'"]+)['"][ \t]*;?`)
	importStmtRe = regexp.MustCompile(`(?m)^[ \t]*import[ \t]+(?:[^'";]+?\bfrom[ \t]*)?['"][^'"]+['"][ \t]*;?[ \t]*\r?\n?`)

	// export default function Name(...) / export default class Name {...}
	exportDefaultNamedRe = regexp.MustCompile(`(?m)^([ \t]*)export[ \t]+default[ \t]+((?:async[ \t]+)?function[ \t]+[A-Za-z_$][A-Za-z0-9_$]*|class[ \t]+[A-Za-z_$][A-Za-z0-9_$]*)`)
	// export default Identifier;
	exportDefaultIdentRe = regexp.MustCompile(`(?m)^[ \t]*export[ \t]+default[ \t]+([A-Za-z_$][A-Za-z0-9_$]*)[ \t]*;?[ \t]*$\r?\n?`)
	// export default <anonymous function / arrow / expression>
	exportDefaultAnonRe = regexp.MustCompile(`(?m)^([ \t]*)export[ \t]+default[ \t]+`)

	// export const|let|var|function|class X
	exportDeclRe = regexp.MustCompile(`(?m)^([ \t]*)export[ \t]+(const|let|var|async[ \t]+function|function|class)\b`)
	// export { A, B }; re-exports are not propagated
	exportListRe = regexp.MustCompile(`(?m)^[ \t]*export[ \t]*\{[^}]*\}[ \t]*(?:from[ \t]*['"][^'"]*['"])?[ \t]*;?[ \t]*\r?\n?`)

	identCharRe = regexp.MustCompile(`[^A-Za-z0-9_$]`)
)

// ImportSpecifiers extracts every import specifier in source order. Named
// imports and bare side-effect imports are discovered identically so that
// initialization-only modules still get ordered.
func ImportSpecifiers(src string) []string {
	matches := importSpecRe.FindAllStringSubmatch(src, -1)
	if len(matches) == 0 {
		return nil
	}
	specifiers := make([]string, 0, len(matches))
	for _, m := range matches {
		specifiers = append(specifiers, m[1])
	}
	return specifiers
}

// DefaultExportIdent derives the identifier an anonymous default export binds
// to: the file's base name, extension stripped, sanitized to an identifier.
func DefaultExportIdent(filePath string) string {
	base := path.Base(filePath)
	base = strings.TrimSuffix(base, path.Ext(base))
	ident := identCharRe.ReplaceAllString(base, "_")
	if ident == "" {
		return "_default"
	}
	if ident[0] >= '0' && ident[0] <= '9' {
		ident = "_" + ident
	}
	return ident
}

// Normalize rewrites one file's text so it is safe to concatenate into the
// shared global scope: no residual module syntax, default exports bound to
// top-level declarations. If two files derive the same default-export
// identifier both declarations are emitted and the later one wins; that is
// the documented flat-scope behavior, not something to patch here.
func Normalize(filePath, src string) string {
	out := exportDefaultNamedRe.ReplaceAllString(src, "$1$2")
	out = exportDefaultIdentRe.ReplaceAllString(out, "")
	out = exportDefaultAnonRe.ReplaceAllString(out, "${1}const "+DefaultExportIdent(filePath)+" = ")
	out = exportDeclRe.ReplaceAllString(out, "$1$2")
	out = exportListRe.ReplaceAllString(out, "")
	out = importStmtRe.ReplaceAllString(out, "")
	return out
}
