package usecase

import (
	"context"
	"errors"
	"fmt"
	iofs "io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/gobwas/glob"
	"golang.org/x/sync/errgroup"

	"github.com/3-lines-studio/sassbuild/internal/adapters/cli"
	"github.com/3-lines-studio/sassbuild/internal/core"
)

type BuildInput struct {
	SourceDir string
	OutDir    string
	// Include and Exclude are globs matched against entry paths relative to
	// SourceDir, with forward slashes. An empty Include matches everything.
	Include      []string
	Exclude      []string
	ManifestPath string
	Incremental  bool
	Concurrency  int
}

type BuildOutput struct {
	Success  bool
	Built    []string
	Skipped  []string
	Failed   []string
	Manifest *core.Manifest
	Error    error
}

type BuildService struct {
	renderer Renderer
	fs       FileSystem
	cli      CLIOutput
	logger   *slog.Logger
	now      func() time.Time
}

func NewBuildService(renderer Renderer, fs FileSystem, cli CLIOutput) *BuildService {
	return &BuildService{
		renderer: renderer,
		fs:       fs,
		cli:      cli,
		logger:   slog.Default(),
		now:      time.Now,
	}
}

func (s *BuildService) WithLogger(logger *slog.Logger) *BuildService {
	s.logger = logger
	return s
}

type buildEntry struct {
	rel    string
	path   string
	output string
}

type renderOutcome struct {
	result *core.Result
	err    error
}

func (s *BuildService) Build(ctx context.Context, input BuildInput) BuildOutput {
	s.cli.PrintHeader("sassbuild")

	include, err := compileGlobs(input.Include)
	if err != nil {
		return BuildOutput{Error: fmt.Errorf("invalid include pattern: %w", err)}
	}
	exclude, err := compileGlobs(input.Exclude)
	if err != nil {
		return BuildOutput{Error: fmt.Errorf("invalid exclude pattern: %w", err)}
	}

	entries, err := s.discover(input, include, exclude)
	if err != nil {
		return BuildOutput{Error: fmt.Errorf("failed to scan entries: %w", err)}
	}
	if len(entries) == 0 {
		return BuildOutput{Error: fmt.Errorf("no entry stylesheets found in %s", input.SourceDir)}
	}

	report := cli.NewBuildReport(s.cli, input.OutDir)
	report.SetEntryCount(len(entries))

	stepDirs := report.StartStep("Creating output directory")
	if err := s.fs.MkdirAll(input.OutDir, 0755); err != nil {
		report.EndStep(stepDirs, false, err.Error())
		return BuildOutput{Error: fmt.Errorf("failed to create output dir: %w", err)}
	}
	report.EndStep(stepDirs, true, "")

	previous := s.loadManifest(input, report)
	manifest := core.NewManifest()
	out := BuildOutput{Manifest: manifest}

	var pending []buildEntry
	for _, e := range entries {
		if prev, ok := previous.Entries[e.rel]; ok && input.Incremental && prev.Output == e.output && !core.IsStale(prev, s.stat) {
			manifest.Entries[e.rel] = prev
			out.Skipped = append(out.Skipped, e.rel)
			report.AddSkipped()
			s.logger.Debug("entry up to date", "entry", e.rel)
			continue
		}
		pending = append(pending, e)
	}

	stepRender := report.StartStep("Rendering stylesheets")
	outcomes := s.renderAll(ctx, pending, input.Concurrency)

	for i, e := range pending {
		oc := outcomes[i]
		if oc.err != nil {
			out.Failed = append(out.Failed, e.rel)
			report.AddError(e.rel, failureMessage(oc), missingPaths(oc.result))
			if oc.result != nil {
				manifest.Entries[e.rel] = core.ManifestEntry{
					Output:       e.output,
					Dependencies: oc.result.Dependencies,
					BuiltAt:      s.now(),
				}
			}
			continue
		}

		names, err := s.writeBinaries(oc.result.Binaries)
		if err != nil {
			out.Failed = append(out.Failed, e.rel)
			report.AddError(e.rel, "failed to write output", []string{err.Error()})
			continue
		}

		_, missing := core.CountByStatus(oc.result.Dependencies)
		if missing > 0 {
			report.AddWarning(e.rel, fmt.Sprintf("%d unresolved references", missing), missingPaths(oc.result))
		}
		report.AddBuilt(missing)
		out.Built = append(out.Built, e.rel)

		entry := core.ManifestEntry{
			Output:       e.output,
			Dependencies: oc.result.Dependencies,
			BuiltAt:      s.now(),
		}
		for _, name := range names {
			if name != e.output {
				entry.Binaries = append(entry.Binaries, name)
			}
		}
		manifest.Entries[e.rel] = entry
	}
	report.EndStep(stepRender, len(out.Failed) == 0, "")

	if input.ManifestPath != "" {
		stepManifest := report.StartStep("Writing dependency manifest")
		if err := s.writeManifest(input.ManifestPath, manifest); err != nil {
			report.EndStep(stepManifest, false, err.Error())
			report.AddError("manifest", "failed to write dependency manifest", []string{err.Error()})
		} else {
			report.EndStep(stepManifest, true, "")
		}
	}

	report.Render()

	out.Success = !report.HasFailures()
	if !out.Success {
		out.Error = fmt.Errorf("%d of %d entries failed", len(out.Failed), len(entries))
		if len(out.Failed) == 0 {
			out.Error = errors.New("build finished with errors")
		}
	}
	return out
}

func (s *BuildService) discover(input BuildInput, include, exclude []glob.Glob) ([]buildEntry, error) {
	var entries []buildEntry
	err := s.fs.WalkDir(input.SourceDir, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".scss" && ext != ".sass" {
			return nil
		}
		if core.IsPartial(path) {
			return nil
		}
		rel, err := core.SlashRel(input.SourceDir, path)
		if err != nil {
			return err
		}
		if len(include) > 0 && !matchAny(include, rel) {
			return nil
		}
		if matchAny(exclude, rel) {
			return nil
		}
		outDir := filepath.Join(input.OutDir, filepath.Dir(filepath.FromSlash(rel)))
		entries = append(entries, buildEntry{
			rel:    rel,
			path:   path,
			output: core.OutputNameForEntry(path, outDir),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].rel < entries[j].rel })
	return entries, nil
}

// renderAll renders entries with at most limit renders in flight. Outcomes
// are indexed like entries.
func (s *BuildService) renderAll(ctx context.Context, entries []buildEntry, limit int) []renderOutcome {
	outcomes := make([]renderOutcome, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	if limit < 1 {
		limit = 1
	}
	g.SetLimit(limit)
	for i, e := range entries {
		g.Go(func() error {
			res, err := s.renderer.Render(gctx, e.path, e.output)
			outcomes[i] = renderOutcome{result: res, err: err}
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

func (s *BuildService) writeBinaries(binaries []core.Binary) ([]string, error) {
	names := make([]string, 0, len(binaries))
	for _, b := range binaries {
		if err := s.fs.MkdirAll(filepath.Dir(b.Name), 0755); err != nil {
			return names, err
		}
		if err := s.fs.WriteFile(b.Name, b.Data, 0644); err != nil {
			return names, fmt.Errorf("failed to write %s: %w", b.Name, err)
		}
		names = append(names, b.Name)
	}
	return names, nil
}

func (s *BuildService) loadManifest(input BuildInput, report *cli.BuildReport) *core.Manifest {
	if !input.Incremental || input.ManifestPath == "" || !s.fs.FileExists(input.ManifestPath) {
		return core.NewManifest()
	}
	data, err := s.fs.ReadFile(input.ManifestPath)
	if err != nil {
		report.AddWarning("manifest", "failed to read previous manifest, rebuilding everything", []string{err.Error()})
		return core.NewManifest()
	}
	m, err := core.ParseManifest(data)
	if err != nil {
		report.AddWarning("manifest", "invalid previous manifest, rebuilding everything", []string{err.Error()})
		return core.NewManifest()
	}
	return m
}

func (s *BuildService) writeManifest(path string, m *core.Manifest) error {
	data, err := m.Marshal()
	if err != nil {
		return err
	}
	if err := s.fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return s.fs.WriteFile(path, data, 0644)
}

func (s *BuildService) stat(path string) core.FileStamp {
	info, err := s.fs.Stat(path)
	if err != nil || info.IsDir() {
		return core.FileStamp{}
	}
	return core.FileStamp{Exists: true, ModTime: info.ModTime()}
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("%q: %w", p, err)
		}
		out = append(out, g)
	}
	return out, nil
}

func matchAny(globs []glob.Glob, path string) bool {
	for _, g := range globs {
		if g.Match(path) {
			return true
		}
	}
	return false
}

func failureMessage(oc renderOutcome) string {
	if oc.result != nil && oc.result.Error != nil {
		return fmt.Sprintf("%s: %s", oc.result.Error.File, oc.result.Error.Message)
	}
	return oc.err.Error()
}

func missingPaths(result *core.Result) []string {
	if result == nil {
		return nil
	}
	var out []string
	for _, dep := range result.Dependencies {
		if dep.Status == core.StatusMissing {
			out = append(out, dep.Path)
		}
	}
	return out
}
