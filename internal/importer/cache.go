package importer

import (
	"fmt"
	"log/slog"

	"github.com/3-lines-studio/sassbuild/internal/adapters/fs"
	"github.com/3-lines-studio/sassbuild/internal/compiler"
	"github.com/3-lines-studio/sassbuild/internal/core"
)

// Cache is the import hook of a single render. Each resolved path is read and
// wrapped in region markers the first time it is imported; later imports of
// the same path get empty contents. A Cache must not outlive its render and
// is not safe for concurrent use.
type Cache struct {
	resolver *Resolver
	fs       fs.FileSystem
	markers  core.MarkerFormat
	logger   *slog.Logger

	visited    map[string]struct{}
	order      []string
	duplicates int
}

func NewCache(resolver *Resolver, fsys fs.FileSystem, markers core.MarkerFormat, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		resolver: resolver,
		fs:       fsys,
		markers:  markers,
		logger:   logger,
		visited:  make(map[string]struct{}),
	}
}

// ResolveAndTag has the compiler.ImportHook signature.
func (c *Cache) ResolveAndTag(specifier, prev string) (compiler.Import, error) {
	path, err := c.resolver.Resolve(specifier, prev)
	if err != nil {
		c.logger.Debug("import not found", "specifier", specifier, "from", prev)
		return compiler.Import{}, err
	}

	if _, seen := c.visited[path]; seen {
		c.duplicates++
		c.logger.Debug("import already included", "path", path, "from", prev)
		return compiler.Import{Path: path}, nil
	}
	c.visited[path] = struct{}{}
	c.order = append(c.order, path)

	data, err := c.fs.ReadFile(path)
	if err != nil {
		return compiler.Import{}, fmt.Errorf("failed to read import %s: %w", path, err)
	}

	contents := string(data)
	if contents != "" {
		contents = c.markers.Wrap(c.resolver.Relative(path), contents)
	}
	c.logger.Debug("import resolved", "specifier", specifier, "path", path)
	return compiler.Import{Path: path, Contents: contents}, nil
}

func (c *Cache) Hook() compiler.ImportHook {
	return c.ResolveAndTag
}

// Visited lists resolved paths in first-import order.
func (c *Cache) Visited() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

func (c *Cache) Duplicates() int {
	return c.duplicates
}
