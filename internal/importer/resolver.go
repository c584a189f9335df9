package importer

import (
	"path/filepath"

	"github.com/3-lines-studio/sassbuild/internal/adapters/fs"
	"github.com/3-lines-studio/sassbuild/internal/core"
)

// Resolver maps an import specifier onto a stylesheet on disk. The specifier
// is tried next to the importing file first, then under each include path,
// each time as written and with the partial underscore prefix.
type Resolver struct {
	fs           fs.FileSystem
	workDir      string
	includePaths []string
}

func NewResolver(fsys fs.FileSystem, workDir string, includePaths []string) *Resolver {
	abs := make([]string, 0, len(includePaths))
	for _, p := range includePaths {
		if p == "" {
			continue
		}
		if !filepath.IsAbs(p) {
			p = filepath.Join(workDir, p)
		}
		abs = append(abs, filepath.Clean(p))
	}
	return &Resolver{fs: fsys, workDir: workDir, includePaths: abs}
}

func (r *Resolver) WorkDir() string {
	return r.workDir
}

// Candidates lists the paths Resolve tries for specifier, in order.
func (r *Resolver) Candidates(specifier, prev string) []string {
	spec := filepath.FromSlash(specifier)
	if filepath.Ext(spec) == "" {
		spec += core.DefaultExtension
	}

	var bases []string
	if filepath.IsAbs(spec) {
		bases = append(bases, "")
	} else {
		dir := r.workDir
		if prev != "" {
			dir = filepath.Dir(r.abs(prev))
		}
		bases = append(bases, dir)
		bases = append(bases, r.includePaths...)
	}

	out := make([]string, 0, 2*len(bases))
	for _, base := range bases {
		candidate := r.abs(filepath.Join(base, spec))
		out = append(out, candidate)
		if !core.IsPartial(candidate) {
			out = append(out, core.PartialName(candidate))
		}
	}
	return out
}

// Resolve returns the first candidate that exists as a file. When none does
// the error is a *core.ResolveError wrapping core.ErrImportNotFound.
func (r *Resolver) Resolve(specifier, prev string) (string, error) {
	candidates := r.Candidates(specifier, prev)
	for _, c := range candidates {
		if fs.IsFile(r.fs, c) {
			return c, nil
		}
	}
	return "", &core.ResolveError{Specifier: specifier, From: prev, Candidates: candidates}
}

// Relative renders path relative to the working directory with forward
// slashes, as embedded in region markers.
func (r *Resolver) Relative(path string) string {
	rel, err := core.SlashRel(r.workDir, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return rel
}

func (r *Resolver) abs(p string) string {
	if p == "" {
		return r.workDir
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(r.workDir, p)
	}
	return filepath.Clean(p)
}
