package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/codalotl/linkmerge/internal/config"
	"github.com/codalotl/linkmerge/internal/diff"
	"github.com/codalotl/linkmerge/internal/linkedmerge"
	"github.com/codalotl/linkmerge/internal/simplelogger"
)

// globalFlags are the root command's persistent flags.
type globalFlags struct {
	configPath string
	verbose    bool
}

// inputFlags are shared by commands that merge.
type inputFlags struct {
	original string
	style    string
	lang     string
	workers  int
}

func newRootCommand() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:   "linkmerge",
		Short: "linkmerge folds divergent copies of a linked source file back into one.",
		Long: `linkmerge folds divergent copies of a linked source file back into one.

Each copy is an edited version of the same original (typically one per project that links the file). Changes made by one copy, or
identically by several, are applied. Where copies changed the same lines differently, the first copy's text wins and every other
copy's text is kept in a comment above it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageErrorf("%v", err)
	})
	root.PersistentFlags().StringVar(&g.configPath, "config", "", "read configuration from `FILE` instead of .linkmerge.yaml")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "log debug details to stderr")

	root.AddCommand(
		newMergeCommand(g),
		newReportCommand(g),
		newStylesCommand(g),
		newConfigCommand(g),
		newVersionCommand(),
	)
	return root
}

func addInputFlags(cmd *cobra.Command, in *inputFlags) {
	cmd.Flags().StringVar(&in.original, "original", "", "the original (common ancestor) `FILE`")
	cmd.Flags().StringVar(&in.style, "style", "", "comment style: auto, block, or line:TOKEN (default from config, else auto)")
	cmd.Flags().StringVar(&in.lang, "lang", "", "language `TAG` of comment text, ex: en, de (default from config, else en)")
	cmd.Flags().IntVar(&in.workers, "workers", 0, "max copies diffed at once (default from config, else GOMAXPROCS)")
	_ = cmd.MarkFlagRequired("original")
}

// load returns the configuration with any input flags set on cmd applied.
func (g *globalFlags) load(cmd *cobra.Command, in *inputFlags) (config.Config, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return config.Config{}, failed(err)
	}
	if in != nil {
		flags := cmd.Flags()
		if flags.Changed("style") {
			cfg.Style = in.style
		}
		if flags.Changed("lang") {
			cfg.Lang = in.lang
		}
		if flags.Changed("workers") {
			cfg.Workers = in.workers
		}
		if err := cfg.Validate(); err != nil {
			return config.Config{}, usageErrorf("%v", err)
		}
	}
	return cfg, nil
}

func (g *globalFlags) logger(errW io.Writer) *zap.Logger {
	if g.verbose {
		return simplelogger.NewVerbose(errW)
	}
	return simplelogger.New()
}

// job is a merge of the files named on the command line.
type job struct {
	originalPath string
	original     string
	paths        []string
	labels       []string // labels[i] names paths[i]
	sources      []linkedmerge.Source
	merger       *linkedmerge.Merger
	logger       *zap.Logger
}

func prepareJob(cmd *cobra.Command, g *globalFlags, in *inputFlags, paths []string) (*job, error) {
	cfg, err := g.load(cmd, in)
	if err != nil {
		return nil, err
	}
	style, err := cfg.ResolveStyle(in.original)
	if err != nil {
		return nil, usageErrorf("%v", err)
	}
	strs, err := cfg.CommentStrings()
	if err != nil {
		return nil, usageErrorf("%v", err)
	}

	original, err := os.ReadFile(in.original)
	if err != nil {
		return nil, failed(fmt.Errorf("read original: %w", err))
	}
	sources := make([]linkedmerge.Source, len(paths))
	for i, p := range paths {
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, failed(fmt.Errorf("read copy: %w", err))
		}
		sources[i] = linkedmerge.Source{ID: i, Text: string(b)}
	}

	labels := projectLabels(paths)
	logger := g.logger(cmd.ErrOrStderr())
	logger.Debug("loaded inputs",
		zap.String("original", in.original),
		zap.Strings("copies", paths),
		zap.String("style", style.String()),
		zap.String("config", cfg.File),
	)

	return &job{
		originalPath: in.original,
		original:     string(original),
		paths:        paths,
		labels:       labels,
		sources:      sources,
		logger:       logger,
		merger: linkedmerge.New(linkedmerge.Options{
			Style:   style,
			Strings: strs,
			Label:   func(id int) string { return labels[id] },
			Workers: cfg.Workers,
			Diff:    diff.Options{Timeout: cfg.DiffTimeout},
			Logger:  logger,
		}),
	}, nil
}

func (j *job) run(ctx context.Context) (*linkedmerge.Result, error) {
	defer func() { _ = j.logger.Sync() }()
	res, err := j.merger.Merge(ctx, j.original, j.sources)
	if err != nil {
		return nil, failed(err)
	}
	return res, nil
}

// projectLabels names each copy by its parent directory (the project that links it). Copies whose directory name is ambiguous are named by their path.
func projectLabels(paths []string) []string {
	labels := make([]string, len(paths))
	counts := make(map[string]int)
	for i, p := range paths {
		name := ""
		if abs, err := filepath.Abs(p); err == nil {
			name = filepath.Base(filepath.Dir(abs))
		}
		if name == "" || name == "." || name == string(filepath.Separator) {
			name = p
		}
		labels[i] = name
		counts[name]++
	}
	for i, l := range labels {
		if counts[l] > 1 {
			labels[i] = paths[i]
		}
	}
	return labels
}

// writeOutput writes data to path, or to w if path is empty.
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := w.Write(data)
		return failed(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return failed(fmt.Errorf("write output: %w", err))
	}
	return nil
}

func newStylesCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "styles",
		Short: "List the file extension to comment style table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load(cmd, nil)
			if err != nil {
				return err
			}
			table, err := cfg.StyleTable()
			if err != nil {
				return failed(err)
			}

			exts := make([]string, 0, len(table))
			width := 0
			for ext := range table {
				exts = append(exts, ext)
				width = max(width, runewidth.StringWidth(ext))
			}
			sort.Strings(exts)

			out := cmd.OutOrStdout()
			if cfg.Style != config.StyleAuto {
				fmt.Fprintf(out, "style %s is configured for all files; the table applies with style auto\n", cfg.Style)
			}
			for _, ext := range exts {
				fmt.Fprintf(out, "%s  %s\n", runewidth.FillRight(ext, width), table[ext])
			}
			return nil
		},
	}
}

func newConfigCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load(cmd, nil)
			if err != nil {
				return err
			}
			if cfg.File != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "config file: %s\n", cfg.File)
			}
			return failed(config.WriteJSON(cmd.OutOrStdout(), cfg))
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the linkmerge version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "linkmerge %s\n", Version)
			return nil
		},
	}
}
