// Package depgraph lists the files a stylesheet depends on, either by
// following @import statements from an entry file on disk or by collecting
// the references left in compiled output.
package depgraph

import (
	"context"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/3-lines-studio/sassbuild/internal/adapters/fs"
	"github.com/3-lines-studio/sassbuild/internal/core"
	"github.com/3-lines-studio/sassbuild/internal/csstoken"
	"github.com/3-lines-studio/sassbuild/internal/importer"
)

const DefaultParseCacheSize = 512

// Source selects the scan mode. It is implemented by EntryFile and Compiled
// only.
type Source interface {
	isSource()
}

// EntryFile scans a stylesheet and its imports from disk. An empty path
// yields no dependencies.
type EntryFile string

// Compiled scans compiled output for references relative to the working
// directory.
type Compiled []byte

func (EntryFile) isSource() {}
func (Compiled) isSource()  {}

type Config struct {
	FileSystem fs.FileSystem
	Resolver   *importer.Resolver
	// ParseCacheSize bounds the number of parsed import lists kept between
	// scans. Zero means DefaultParseCacheSize.
	ParseCacheSize int
}

type parseKey struct {
	path    string
	modTime int64
	size    int64
}

type Builder struct {
	fs       fs.FileSystem
	resolver *importer.Resolver
	workDir  string
	parsed   *lru.Cache[parseKey, []csstoken.ImportTarget]
}

func New(cfg Config) (*Builder, error) {
	size := cfg.ParseCacheSize
	if size <= 0 {
		size = DefaultParseCacheSize
	}
	parsed, err := lru.New[parseKey, []csstoken.ImportTarget](size)
	if err != nil {
		return nil, err
	}
	return &Builder{
		fs:       cfg.FileSystem,
		resolver: cfg.Resolver,
		workDir:  cfg.Resolver.WorkDir(),
		parsed:   parsed,
	}, nil
}

// Dependencies drains Stream into a slice in discovery order.
func (b *Builder) Dependencies(ctx context.Context, src Source) ([]core.Dependency, error) {
	out, errCh := b.Stream(ctx, src)
	deps := make([]core.Dependency, 0)
	for dep := range out {
		deps = append(deps, dep)
	}
	if err := <-errCh; err != nil {
		return deps, err
	}
	return deps, nil
}

func (b *Builder) abs(path string) string {
	if !filepath.IsAbs(path) {
		path = filepath.Join(b.workDir, path)
	}
	return filepath.Clean(path)
}
