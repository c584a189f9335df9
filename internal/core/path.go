package core

import (
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

var schemePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.\-]*:`)

// SlashRel returns target relative to base using '/' separators on every OS.
func SlashRel(base, target string) (string, error) {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(filepath.ToSlash(rel), `\`, "/"), nil
}

// RebaseOffset is the prefix that relocates a reference written in originDir
// into a document living in outputDir. Both directories must be absolute.
func RebaseOffset(originDir, outputDir string) (string, error) {
	return SlashRel(outputDir, originDir)
}

// IsRelativeReference reports whether ref is a document-relative URL that
// must follow its stylesheet when relocated.
func IsRelativeReference(ref string) bool {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return false
	}
	switch {
	case strings.HasPrefix(ref, "/"):
		return false
	case strings.HasPrefix(ref, "#"):
		return false
	case strings.HasPrefix(ref, "\\"):
		return false
	case schemePattern.MatchString(ref):
		return false
	}
	return true
}

// IsLocalReference reports whether ref points at a file on disk, rooted or not.
func IsLocalReference(ref string) bool {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.HasPrefix(ref, "//") || strings.HasPrefix(ref, "#") {
		return false
	}
	return !schemePattern.MatchString(ref)
}

func SplitReference(ref string) (string, string) {
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		return ref[:i], ref[i:]
	}
	return ref, ""
}

func JoinReference(offset, ref string) string {
	if offset == "" || offset == "." {
		return ref
	}
	p, suffix := SplitReference(ref)
	joined := path.Join(offset, p)
	if strings.HasSuffix(p, "/") && !strings.HasSuffix(joined, "/") {
		joined += "/"
	}
	return joined + suffix
}
