package depgraph

import (
	"context"
	"errors"
	"strings"

	"github.com/3-lines-studio/sassbuild/internal/core"
	"github.com/3-lines-studio/sassbuild/internal/csstoken"
	"github.com/3-lines-studio/sassbuild/internal/ctxlog"
)

// scanSource walks the import tree depth first, emitting the entry and then
// each distinct file in the order it is first imported.
func (b *Builder) scanSource(ctx context.Context, entry string, emit func(core.Dependency) error) error {
	logger := ctxlog.FromContext(ctx)
	seen := make(map[string]struct{})

	var walk func(path string) error
	walk = func(path string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, ok := seen[path]; ok {
			return nil
		}
		seen[path] = struct{}{}

		imports, err := b.imports(path)
		if err != nil {
			logger.Debug("dependency unreadable", "path", path, "error", err)
			return emit(core.Missing(path))
		}
		if err := emit(core.Resolved(path)); err != nil {
			return err
		}

		for _, imp := range imports {
			if IsPlainCSSImport(imp) {
				continue
			}
			resolved, err := b.resolver.Resolve(imp.Target, path)
			if err != nil {
				var rerr *core.ResolveError
				if !errors.As(err, &rerr) {
					return err
				}
				missing := rerr.Candidate()
				if _, ok := seen[missing]; ok {
					continue
				}
				seen[missing] = struct{}{}
				logger.Debug("import not found", "specifier", imp.Target, "from", path)
				if err := emit(core.Missing(missing)); err != nil {
					return err
				}
				continue
			}
			if err := walk(resolved); err != nil {
				return err
			}
		}
		return nil
	}

	return walk(entry)
}

// imports returns the @import targets of path, reusing a previous parse when
// the file has not changed since.
func (b *Builder) imports(path string) ([]csstoken.ImportTarget, error) {
	info, err := b.fs.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, errors.New("is a directory")
	}
	key := parseKey{path: path, modTime: info.ModTime().UnixNano(), size: info.Size()}
	if cached, ok := b.parsed.Get(key); ok {
		return cached, nil
	}

	data, err := b.fs.ReadFile(path)
	if err != nil {
		return nil, err
	}
	imports := csstoken.Imports(data)
	b.parsed.Add(key, imports)
	return imports, nil
}

// IsPlainCSSImport reports whether an @import is left for the browser to
// load instead of being inlined by the compiler.
func IsPlainCSSImport(imp csstoken.ImportTarget) bool {
	if imp.URL {
		return true
	}
	target := strings.ToLower(imp.Target)
	switch {
	case strings.HasSuffix(target, ".css"):
		return true
	case strings.HasPrefix(target, "http://"), strings.HasPrefix(target, "https://"):
		return true
	case strings.HasPrefix(target, "//"):
		return true
	}
	return false
}
