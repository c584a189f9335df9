package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/3-lines-studio/sassbuild"
	"github.com/3-lines-studio/sassbuild/internal/adapters/cli"
	"github.com/3-lines-studio/sassbuild/internal/adapters/fs"
	"github.com/3-lines-studio/sassbuild/internal/adapters/libsass"
	"github.com/3-lines-studio/sassbuild/internal/config"
	"github.com/3-lines-studio/sassbuild/internal/ctxlog"
	"github.com/3-lines-studio/sassbuild/internal/depgraph"
)

var version = "0.1.0-dev"

// app holds what every subcommand shares once flags are parsed.
type app struct {
	out      *cli.Output
	logger   *slog.Logger
	fs       fs.FileSystem
	registry *prometheus.Registry
	plugin   *sassbuild.Plugin
}

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "sassbuild",
		Short:         "Compile SCSS entries and report the files they depend on",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "YAML or JSON file with compiler options")
	pf.String("style", "", "Output style: nested|expanded|compact|compressed")
	pf.Int("precision", 0, "Decimal precision of numbers in the output")
	pf.StringSliceP("include-path", "I", nil, "Extra directories searched for imports")
	pf.Bool("source-map", false, "Emit a source map next to the output")
	pf.Bool("source-map-embed", false, "Inline the source map into the output")
	pf.String("work-dir", "", "Directory region paths and compiled references are relative to (default: current directory)")
	pf.String("log-level", "info", "Log level: debug|info|warn|error")
	pf.String("log-format", "text", "Log format: text|json")
	pf.String("metrics-file", "", "Write Prometheus metrics to this file when done")
	pf.Int("parse-cache-size", depgraph.DefaultParseCacheSize, "Parsed sources kept between dependency scans")

	rootCmd.AddCommand(newRenderCmd(), newDepsCmd(), newBuildCmd())
	return rootCmd
}

// setup reads the persistent flags and builds the plugin around libsass.
func setup(cmd *cobra.Command) (*app, error) {
	flags := cmd.Flags()
	level, _ := flags.GetString("log-level")
	format, _ := flags.GetString("log-format")
	workDir, _ := flags.GetString("work-dir")
	cacheSize, _ := flags.GetInt("parse-cache-size")

	a := &app{
		out:      cli.NewOutput(),
		logger:   ctxlog.NewLogger(level, format, os.Stderr),
		fs:       fs.NewOSFileSystem(),
		registry: prometheus.NewRegistry(),
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	a.plugin = sassbuild.New(libsass.New(a.fs), cfg,
		sassbuild.WithLogger(a.logger),
		sassbuild.WithFileSystem(a.fs),
		sassbuild.WithWorkDir(workDir),
		sassbuild.WithMetrics(a.registry),
		sassbuild.WithParseCacheSize(cacheSize),
	)
	return a, nil
}

// loadConfig merges the --config file with the option flags the user set
// explicitly; flags win.
func loadConfig(cmd *cobra.Command) (map[string]any, error) {
	flags := cmd.Flags()
	fileCfg := map[string]any{}
	if path, _ := flags.GetString("config"); path != "" {
		var err error
		fileCfg, err = config.LoadFile(path)
		if err != nil {
			return nil, err
		}
	}

	flagCfg := map[string]any{}
	if flags.Changed("style") {
		flagCfg["outputStyle"], _ = flags.GetString("style")
	}
	if flags.Changed("precision") {
		flagCfg["precision"], _ = flags.GetInt("precision")
	}
	if flags.Changed("include-path") {
		flagCfg["includePaths"], _ = flags.GetStringSlice("include-path")
	}
	if flags.Changed("source-map") {
		flagCfg["sourceMap"], _ = flags.GetBool("source-map")
	}
	if flags.Changed("source-map-embed") {
		embed, _ := flags.GetBool("source-map-embed")
		flagCfg["sourceMapEmbed"] = embed
		if embed {
			flagCfg["sourceMap"] = true
		}
	}

	return config.Merge(fileCfg, flagCfg)
}

func (a *app) writeMetrics(cmd *cobra.Command) {
	path, _ := cmd.Flags().GetString("metrics-file")
	if path == "" {
		return
	}
	if err := prometheus.WriteToTextfile(path, a.registry); err != nil {
		a.out.PrintWarning("Failed to write metrics to %s: %v", path, err)
	}
}

func fail(out *cli.Output, format string, args ...any) error {
	err := fmt.Errorf(format, args...)
	out.PrintError("%v", err)
	return err
}
