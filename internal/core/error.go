package core

import (
	"errors"
	"fmt"
	"strings"
)

var ErrImportNotFound = errors.New("import not found")

// ResolveError reports an import that matched neither the direct candidate
// nor its underscore-prefixed partial.
type ResolveError struct {
	Specifier  string
	From       string
	Candidates []string
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("cannot resolve import %q from %s (tried %s)", e.Specifier, e.From, strings.Join(e.Candidates, ", "))
}

func (e *ResolveError) Unwrap() error {
	return ErrImportNotFound
}

// Candidate is the path a missing import would have lived at.
func (e *ResolveError) Candidate() string {
	if len(e.Candidates) == 0 {
		return ""
	}
	return e.Candidates[0]
}

type CompileError struct {
	File    string
	Message string
}

func (e *CompileError) Error() string {
	if e.File == "" {
		return "compile failed: " + e.Message
	}
	return fmt.Sprintf("compile failed in %s: %s", e.File, e.Message)
}

// ScanError is a dependency scan failure unrelated to a missing file.
type ScanError struct {
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("dependency scan of %s failed: %v", e.Path, e.Err)
}

func (e *ScanError) Unwrap() error {
	return e.Err
}
