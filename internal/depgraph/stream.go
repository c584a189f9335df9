package depgraph

import (
	"context"
	"fmt"

	"github.com/3-lines-studio/sassbuild/internal/core"
)

// Stream scans src and sends dependencies over a channel as they are found.
// errCh receives a single error (nil on success) after out is closed. A
// missing file is reported as a dependency, never as an error.
func (b *Builder) Stream(ctx context.Context, src Source) (<-chan core.Dependency, <-chan error) {
	out := make(chan core.Dependency, 32)
	errCh := make(chan error, 1)

	go func() {
		defer close(errCh)
		err := b.scan(ctx, src, func(dep core.Dependency) error {
			select {
			case out <- dep:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		close(out)
		errCh <- err
	}()

	return out, errCh
}

func (b *Builder) scan(ctx context.Context, src Source, emit func(core.Dependency) error) error {
	switch s := src.(type) {
	case nil:
		return nil
	case EntryFile:
		if s == "" {
			return nil
		}
		entry := b.abs(string(s))
		if err := b.scanSource(ctx, entry, emit); err != nil {
			return &core.ScanError{Path: entry, Err: err}
		}
	case Compiled:
		if len(s) == 0 {
			return nil
		}
		if err := b.scanCompiled(ctx, s, emit); err != nil {
			return &core.ScanError{Path: b.workDir, Err: err}
		}
	default:
		return &core.ScanError{Path: b.workDir, Err: fmt.Errorf("unsupported source %T", src)}
	}
	return nil
}
