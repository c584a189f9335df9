package main

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/3-lines-studio/sassbuild"
	"github.com/3-lines-studio/sassbuild/internal/core"
	"github.com/3-lines-studio/sassbuild/internal/usecase"
)

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Render one entry stylesheet",
		Args:  cobra.ExactArgs(1),
		RunE:  runRender,
	}
	cmd.Flags().StringP("output", "o", sassbuild.DefaultOutputName, "Output path, relative to the work dir")
	cmd.Flags().Bool("json", false, "Print the render result as JSON instead of writing files")
	return cmd
}

func runRender(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.writeMetrics(cmd)

	output, _ := cmd.Flags().GetString("output")
	asJSON, _ := cmd.Flags().GetBool("json")

	result, renderErr := a.plugin.Render(cmd.Context(), args[0], output)
	if asJSON && result != nil {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
		return renderErr
	}

	if renderErr != nil {
		var cerr *sassbuild.CompileError
		if errors.As(renderErr, &cerr) {
			a.out.PrintError("%s", cerr.File)
			a.out.PrintStep("%s", cerr.Message)
			return renderErr
		}
		return fail(a.out, "render failed: %v", renderErr)
	}

	for _, b := range result.Binaries {
		name := b.Name
		if !filepath.IsAbs(name) {
			name = filepath.Join(a.plugin.WorkDir(), name)
		}
		if err := a.fs.WriteFile(name, b.Data, 0644); err != nil {
			return fail(a.out, "failed to write %s: %v", name, err)
		}
		a.out.PrintSuccess("%s", name)
	}
	printMissing(a, result.Dependencies)
	return nil
}

func newDepsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deps <file>",
		Short: "List the files an entry stylesheet depends on without compiling it",
		Args:  cobra.ExactArgs(1),
		RunE:  runDeps,
	}
	cmd.Flags().Bool("compiled", false, "Treat the file as compiled CSS and list its references")
	cmd.Flags().Bool("json", false, "Print dependencies as JSON")
	return cmd
}

func runDeps(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.writeMetrics(cmd)

	compiled, _ := cmd.Flags().GetBool("compiled")
	asJSON, _ := cmd.Flags().GetBool("json")

	var src sassbuild.Source = sassbuild.EntryFile(args[0])
	if compiled {
		data, err := a.fs.ReadFile(args[0])
		if err != nil {
			return fail(a.out, "failed to read %s: %v", args[0], err)
		}
		src = sassbuild.Compiled(data)
	}

	deps, err := a.plugin.Dependencies(cmd.Context(), src)
	if err != nil {
		return fail(a.out, "%v", err)
	}

	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(deps)
	}
	for _, dep := range deps {
		if dep.Status == sassbuild.StatusMissing {
			a.out.PrintWarning("%s (missing)", dep.Path)
			continue
		}
		a.out.PrintFile(dep.Path)
	}
	return nil
}

func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build <dir>",
		Short: "Render every entry stylesheet under a directory",
		Args:  cobra.ExactArgs(1),
		RunE:  runBuild,
	}
	cmd.Flags().String("out", "dist", "Output directory")
	cmd.Flags().StringSlice("include", nil, "Only build entries matching these globs")
	cmd.Flags().StringSlice("exclude", nil, "Skip entries matching these globs")
	cmd.Flags().String("manifest", "", "Dependency manifest path (default: <out>/sassbuild-deps.json)")
	cmd.Flags().Bool("incremental", false, "Skip entries whose outputs are newer than their dependencies")
	cmd.Flags().Int("concurrency", runtime.NumCPU(), "Maximum renders in flight")
	return cmd
}

func runBuild(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.writeMetrics(cmd)

	flags := cmd.Flags()
	outDir, _ := flags.GetString("out")
	include, _ := flags.GetStringSlice("include")
	exclude, _ := flags.GetStringSlice("exclude")
	manifest, _ := flags.GetString("manifest")
	incremental, _ := flags.GetBool("incremental")
	concurrency, _ := flags.GetInt("concurrency")

	sourceDir := absFrom(a.plugin.WorkDir(), args[0])
	outDir = absFrom(a.plugin.WorkDir(), outDir)
	if manifest == "" {
		manifest = filepath.Join(outDir, "sassbuild-deps.json")
	}

	service := usecase.NewBuildService(a.plugin, a.fs, a.out).WithLogger(a.logger)
	result := service.Build(cmd.Context(), usecase.BuildInput{
		SourceDir:    sourceDir,
		OutDir:       outDir,
		Include:      include,
		Exclude:      exclude,
		ManifestPath: absFrom(a.plugin.WorkDir(), manifest),
		Incremental:  incremental,
		Concurrency:  concurrency,
	})
	if result.Error != nil {
		if len(result.Failed) == 0 {
			a.out.PrintError("%v", result.Error)
		}
		return result.Error
	}
	return nil
}

func printMissing(a *app, deps []core.Dependency) {
	for _, dep := range deps {
		if dep.Status == core.StatusMissing {
			a.out.PrintWarning("unresolved reference %s", dep.Path)
		}
	}
}

func absFrom(base, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(base, path)
}
