package csstoken

import "strings"

// ImportTarget is one target of an @import rule.
type ImportTarget struct {
	Target string
	// URL is set when the target was written as url(...).
	URL bool
}

// References lists every url() reference and @import target in src, in
// source order.
func References(src []byte) []string {
	var refs []string
	inImport := false
	_ = Walk(src, func(t Token) error {
		switch t.Kind {
		case URL:
			refs = append(refs, t.Ref)
		case String:
			if inImport {
				refs = append(refs, t.Ref)
			}
		case AtKeyword:
			inImport = t.Ref == "@import"
		case Delim:
			if t.Ref != "," {
				inImport = false
			}
		}
		return nil
	})
	return refs
}

// Imports lists the @import targets of a stylesheet source, skipping
// anything inside comments. Line comments are honoured as well as block ones.
func Imports(src []byte) []ImportTarget {
	var out []ImportTarget
	inImport := false
	_ = Walk(StripLineComments(src), func(t Token) error {
		switch t.Kind {
		case AtKeyword:
			inImport = t.Ref == "@import"
		case Delim:
			if t.Ref != "," {
				inImport = false
			}
		case String:
			if inImport {
				out = append(out, ImportTarget{Target: t.Ref})
			}
		case URL:
			if inImport {
				out = append(out, ImportTarget{Target: t.Ref, URL: true})
			}
		}
		return nil
	})
	return out
}

// StripLineComments blanks out `//` comments, leaving every other byte in
// place. Strings, block comments and unquoted url() bodies are left alone.
func StripLineComments(src []byte) []byte {
	out := make([]byte, len(src))
	copy(out, src)

	n := len(out)
	i := 0
	for i < n {
		c := out[i]
		switch {
		case c == '"' || c == '\'':
			i++
			for i < n && out[i] != c && out[i] != '\n' {
				if out[i] == '\\' {
					i++
				}
				i++
			}
			i++
		case c == '/' && i+1 < n && out[i+1] == '*':
			end := strings.Index(string(out[i+2:]), "*/")
			if end < 0 {
				return out
			}
			i += 2 + end + 2
		case c == '/' && i+1 < n && out[i+1] == '/':
			for i < n && out[i] != '\n' {
				out[i] = ' '
				i++
			}
		case (c == 'u' || c == 'U') && isURLOpen(out, i):
			i += 4
			for i < n && (out[i] == ' ' || out[i] == '\t') {
				i++
			}
			if i < n && (out[i] == '"' || out[i] == '\'') {
				continue
			}
			for i < n && out[i] != ')' && out[i] != '\n' {
				i++
			}
		default:
			i++
		}
	}
	return out
}

func isURLOpen(b []byte, i int) bool {
	if i+4 > len(b) || !strings.EqualFold(string(b[i:i+4]), "url(") {
		return false
	}
	if i == 0 {
		return true
	}
	p := b[i-1]
	return !(p == '-' || p == '_' || p >= 'a' && p <= 'z' || p >= 'A' && p <= 'Z' || p >= '0' && p <= '9')
}
