// Package main provides the CLI entrypoint for keyladder.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/keyladder/internal/config"
	"github.com/verte-zerg/keyladder/internal/drill"
	"github.com/verte-zerg/keyladder/internal/generator"
	"github.com/verte-zerg/keyladder/internal/model"
	"github.com/verte-zerg/keyladder/internal/stats"
	"github.com/verte-zerg/keyladder/internal/statsui"
	"github.com/verte-zerg/keyladder/internal/store"
	"github.com/verte-zerg/keyladder/internal/tui"
)

const (
	defaultLang        = "en"
	defaultStage       = 1
	defaultLevel       = 0
	defaultWeakTop     = 8
	defaultWeakFactor  = 2.0
	defaultWeakWindow  = 20
	defaultCurveWindow = 20
	defaultErrorTop    = 10
	defaultPreview     = 0
	defaultLogLevel    = "info"
)

var (
	practiceLang         string
	practiceStage        int
	practiceLevel        int
	practiceEndless      bool
	practiceZeroMistakes bool
	practiceSeed         int64
	practiceFocusWeak    bool
	practiceWeakTop      int
	practiceWeakFactor   float64
	practiceWeakWindow   int

	logLevel string

	drillRounds   int
	previewChunks int

	statsLang        string
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsStage       int
	statsPlain       bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "keyladder",
		Short:         "Stage-based touch typing tutor",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	addPracticeFlags(rootCmd)

	rootCmd.AddCommand(newDrillCmd())
	rootCmd.AddCommand(newPreviewCmd())
	rootCmd.AddCommand(newStagesCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newLangsCmd())
	rootCmd.AddCommand(newConfigCmd())
	return rootCmd
}

func addPracticeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&practiceLang, "lang", defaultLang, "corpus language code")
	cmd.Flags().IntVar(&practiceStage, "stage", defaultStage, "stage id (see: keyladder stages)")
	cmd.Flags().IntVar(&practiceLevel, "level", defaultLevel, fmt.Sprintf("sub-level within the stage (0-%d)", generator.MaxSubLevel))
	cmd.Flags().BoolVar(&practiceEndless, "endless", false, "practice an endless stream of mixed content")
	cmd.Flags().BoolVar(&practiceZeroMistakes, "zero-mistakes", false, "restart with fresh text on the first mistake")
	cmd.Flags().Int64Var(&practiceSeed, "seed", 0, "random seed for repeatable content (0 = time based)")
	cmd.Flags().BoolVar(&practiceFocusWeak, "focus-weak", false, "bias practice toward weak characters")
	cmd.Flags().IntVar(&practiceWeakTop, "weak-top", defaultWeakTop, "number of weak characters to focus on")
	cmd.Flags().Float64Var(&practiceWeakFactor, "weak-factor", defaultWeakFactor, "weight factor for weak characters")
	cmd.Flags().IntVar(&practiceWeakWindow, "weak-window", defaultWeakWindow, "number of recent sessions to compute weak chars")
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	cfg := resolvePracticeConfig(cmd, fileCfg)
	if err := validateConfig(cfg); err != nil {
		return err
	}
	env, err := loadEnvironment(cmd, fileCfg, true)
	if err != nil {
		return err
	}
	defer env.sync()

	stage, err := env.stage(cfg)
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	m := tui.NewModel(tui.Options{
		Config:    cfg,
		Stage:     stage,
		Mix:       env.mix,
		Generator: env.generator(cfg),
		Store:     st,
		Logger:    env.log,
	})
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newDrillCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drill",
		Short: "Practice in the plain terminal without the full-screen UI",
		Args:  cobra.NoArgs,
		RunE:  runDrillCmd,
	}
	addPracticeFlags(cmd)
	cmd.Flags().IntVar(&drillRounds, "rounds", 1, "number of texts to type (0 = until Esc)")
	return cmd
}

func runDrillCmd(cmd *cobra.Command, _ []string) error {
	if drillRounds < 0 {
		return fmt.Errorf("--rounds must be >= 0")
	}
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	cfg := resolvePracticeConfig(cmd, fileCfg)
	if err := validateConfig(cfg); err != nil {
		return err
	}
	env, err := loadEnvironment(cmd, fileCfg, false)
	if err != nil {
		return err
	}
	defer env.sync()

	stage, err := env.stage(cfg)
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	gen := env.generator(cfg)
	if cfg.FocusWeak {
		focusWeak(ctx, st, gen, cfg)
	}

	kb, err := drill.OpenKeyboard()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := kb.Close(); cerr != nil {
			logErrf("failed to restore terminal: %v\n", cerr)
		}
	}()

	runner := drill.NewRunner(kb, cmd.OutOrStdout(), drill.Options{
		Config:    cfg,
		Stage:     stage,
		Mix:       env.mix,
		Generator: gen,
		Recorder:  st,
		Logger:    env.log,
	})
	_, err = runner.Run(ctx, drillRounds)
	return err
}

// focusWeak feeds the weakest recent characters to gen.
func focusWeak(ctx context.Context, st *store.Store, gen *generator.Generator, cfg model.Config) {
	aggs, err := st.RecentErrors(ctx, cfg.WeakWindow, cfg.Lang)
	if err != nil {
		logErrf("failed to load weak chars: %v\n", err)
		return
	}
	weak := stats.SelectWeakChars(aggs, cfg.WeakTop)
	if len(weak) == 0 {
		logErrln("no stats available for weak-char focus yet; using normal generator")
		return
	}
	gen.SetFocus(weak, cfg.WeakFactor)
}

func newPreviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Print generated practice text",
		Args:  cobra.NoArgs,
		RunE:  runPreviewCmd,
	}
	addPracticeFlags(cmd)
	cmd.Flags().IntVar(&previewChunks, "chunks", defaultPreview, "print N endless chunks instead of one level text")
	return cmd
}

func runPreviewCmd(cmd *cobra.Command, _ []string) error {
	if previewChunks < 0 {
		return fmt.Errorf("--chunks must be >= 0")
	}
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	cfg := resolvePracticeConfig(cmd, fileCfg)
	if err := validateConfig(cfg); err != nil {
		return err
	}
	env, err := loadEnvironment(cmd, fileCfg, false)
	if err != nil {
		return err
	}
	defer env.sync()

	stage, err := env.stage(cfg)
	if err != nil {
		return err
	}
	gen := env.generator(cfg)
	out := cmd.OutOrStdout()

	chunks := previewChunks
	if chunks == 0 && cfg.Endless {
		chunks = 3
	}
	if chunks == 0 {
		if _, err := fmt.Fprintln(out, gen.Level(stage, cfg.Level, cfg.Lang)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	supplier := generator.NewChunkSupplier(gen, env.catalog.Full(), env.mix)
	for i := 0; i < chunks; i++ {
		if i > 0 {
			if _, err := fmt.Fprintln(out); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}
		if _, err := fmt.Fprintln(out, supplier.NextChunk(cfg.Lang)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newStagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stages",
		Short: "List the stage catalog",
		Args:  cobra.NoArgs,
		RunE:  runStagesCmd,
	}
}

func runStagesCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	env, err := loadEnvironment(cmd, fileCfg, false)
	if err != nil {
		return err
	}
	defer env.sync()

	out := cmd.OutOrStdout()
	for _, st := range env.catalog.Stages() {
		labels := make([]string, 0, len(st.NewChars))
		for _, ch := range st.NewChars {
			labels = append(labels, stats.CharLabel(ch))
		}
		line := fmt.Sprintf("%3d  %-20s %s", st.ID, st.Name, strings.Join(labels, " "))
		if st.Category != model.CategoryNone {
			line += fmt.Sprintf(" [%s]", st.Category)
		}
		if _, err := fmt.Fprintln(out, strings.TrimRight(line, " ")); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	th := env.catalog.Thresholds()
	if _, err := fmt.Fprintf(out, "\ncapitals from stage %d, punctuation from stage %d, curated texts from stage %d\n",
		th.Caps, th.Punct, th.Mastery); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsLang, "lang", "", "language filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().IntVar(&statsStage, "stage", 0, "stage filter")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a text report instead of the interactive view")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveStatsConfig()
	if err != nil {
		return err
	}
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	plain := statsPlain || !term.IsTerminal(int(os.Stdout.Fd()))
	env, err := loadEnvironment(cmd, fileCfg, !plain)
	if err != nil {
		return err
	}
	defer env.sync()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	names := env.stageNames()
	if plain {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		report, err := stats.BuildReport(ctx, st, cfg)
		if err != nil {
			return fmt.Errorf("failed to build report: %w", err)
		}
		return report.Render(cmd.OutOrStdout(), cfg.CurveWindow, names, stats.TerminalWidth(os.Stdout), defaultErrorTop)
	}

	m := statsui.NewModel(st, cfg, names)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func resolveStatsConfig() (model.StatsConfig, error) {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return model.StatsConfig{}, fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if statsLast < 0 {
		return model.StatsConfig{}, fmt.Errorf("--last must be >= 0")
	}
	if statsCurveWindow <= 0 {
		return model.StatsConfig{}, fmt.Errorf("--curve-window must be > 0")
	}
	return model.StatsConfig{
		Lang:        statsLang,
		Since:       sinceTime,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
		Stage:       statsStage,
	}, nil
}

func newLangsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "langs",
		Short: "List corpus languages",
		Args:  cobra.NoArgs,
		RunE:  runLangsCmd,
	}
}

func runLangsCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	env, err := loadEnvironment(cmd, fileCfg, false)
	if err != nil {
		return err
	}
	defer env.sync()

	for _, lang := range env.library.Languages() {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), lang); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := writeConfigTemplate(path); err != nil {
		return err
	}
	args, err := config.EditorCommand(os.Getenv("EDITOR"), path)
	if err != nil {
		return err
	}
	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

// writeConfigTemplate creates the commented config file unless one exists.
func writeConfigTemplate(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}
	return nil
}

func openStore() (*store.Store, error) {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, nil
}

func closeStore(st *store.Store) {
	if cerr := st.Close(); cerr != nil {
		logErrf("failed to close db: %v\n", cerr)
	}
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
