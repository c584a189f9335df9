package depgraph

import (
	"context"
	"net/url"
	"path/filepath"

	"github.com/3-lines-studio/sassbuild/internal/adapters/fs"
	"github.com/3-lines-studio/sassbuild/internal/core"
	"github.com/3-lines-studio/sassbuild/internal/csstoken"
)

// scanCompiled treats every local url() and @import target in data as a path
// under the working directory. Rooted references resolve against it too.
func (b *Builder) scanCompiled(ctx context.Context, data []byte, emit func(core.Dependency) error) error {
	seen := make(map[string]struct{})
	for _, ref := range csstoken.References(data) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !core.IsLocalReference(ref) {
			continue
		}
		p, _ := core.SplitReference(ref)
		if p == "" {
			continue
		}
		if unescaped, err := url.PathUnescape(p); err == nil {
			p = unescaped
		}

		path := filepath.Join(b.workDir, filepath.FromSlash(p))
		if _, ok := seen[path]; ok {
			continue
		}
		seen[path] = struct{}{}

		dep := core.Missing(path)
		if fs.IsFile(b.fs, path) {
			dep = core.Resolved(path)
		}
		if err := emit(dep); err != nil {
			return err
		}
	}
	return nil
}
