package els

import (
	"regexp"
	"strings"
)

var (
	scriptOpen  = regexp.MustCompile(`(?i)<script(\s[^>]*)?>`)
	scriptClose = regexp.MustCompile(`(?i)</script\s*>`)
	declLine    = regexp.MustCompile(`^(export\s+)?(let|const|var)\s+([A-Za-z_$][A-Za-z0-9_$]*)\s*=\s*(.+?);?$`)
	propLine    = regexp.MustCompile(`^export\s+let\s+([A-Za-z_$][A-Za-z0-9_$]*)\s*;?$`)
)

// script is the component logic block of a template.
type script struct {
	from, to int // byte range of the whole <script>...</script> element
	imports  []string
	decls    []declaration
}

// declaration binds Name to the value of an expression at render time.
// Props (export let) only apply when the caller did not pass the name.
type declaration struct {
	name string
	expr *expression
	prop bool
}

// findScript locates the component logic block: the first <script> element
// without src or type attributes. Other script elements stay in the body as
// client-side code.
func findScript(src string) (from, to, bodyFrom, bodyTo int, ok bool) {
	offset := 0
	for {
		loc := scriptOpen.FindStringSubmatchIndex(src[offset:])
		if loc == nil {
			return 0, 0, 0, 0, false
		}
		openFrom, openTo := offset+loc[0], offset+loc[1]
		closeLoc := scriptClose.FindStringIndex(src[openTo:])
		if closeLoc == nil {
			return 0, 0, 0, 0, false
		}
		closeFrom, closeTo := openTo+closeLoc[0], openTo+closeLoc[1]

		attrs := ""
		if loc[2] >= 0 {
			attrs = strings.ToLower(src[offset+loc[2] : offset+loc[3]])
		}
		if !strings.Contains(attrs, "src=") && !strings.Contains(attrs, "type=") {
			return openFrom, closeTo, openTo, closeFrom, true
		}
		offset = closeTo
	}
}

// parseScript splits the logic block into import lines and declarations.
func parseScript(l *lexer, from, to, bodyFrom, bodyTo int) (*script, error) {
	s := &script{from: from, to: to}
	lines := strings.Split(l.src[bodyFrom:bodyTo], "\n")
	offset := bodyFrom

	var pendingImport []string
	for _, raw := range lines {
		lineOffset := offset
		offset += len(raw) + 1
		line := strings.TrimSpace(raw)

		if pendingImport != nil {
			pendingImport = append(pendingImport, line)
			if strings.Contains(line, "from") || strings.HasSuffix(line, ";") {
				s.imports = append(s.imports, strings.Join(pendingImport, " "))
				pendingImport = nil
			}
			continue
		}

		switch {
		case line == "" || strings.HasPrefix(line, "//"):
			continue

		case strings.HasPrefix(line, "import ") || strings.HasPrefix(line, "import{"):
			if strings.Contains(line, "{") && !strings.Contains(line, "}") {
				pendingImport = []string{line}
				continue
			}
			s.imports = append(s.imports, line)

		case propLine.MatchString(line):
			m := propLine.FindStringSubmatch(line)
			s.decls = append(s.decls, declaration{name: m[1], prop: true})

		case declLine.MatchString(line):
			m := declLine.FindStringSubmatch(line)
			col := lineOffset + strings.Index(raw, m[4])
			e, err := compileExpression(l, col, m[4])
			if err != nil {
				return nil, err
			}
			s.decls = append(s.decls, declaration{name: m[3], expr: e, prop: m[1] != ""})

		default:
			return nil, l.errorAt(lineOffset+strings.Index(raw, line), ErrScript,
				"only import lines and let/const/var declarations are supported, got "+line)
		}
	}
	if pendingImport != nil {
		return nil, l.errorAt(bodyFrom, ErrScript, "unterminated import statement")
	}
	return s, nil
}
