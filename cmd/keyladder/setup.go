package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/keyladder/internal/config"
	"github.com/verte-zerg/keyladder/internal/corpus"
	"github.com/verte-zerg/keyladder/internal/generator"
	"github.com/verte-zerg/keyladder/internal/logging"
	"github.com/verte-zerg/keyladder/internal/model"
	"github.com/verte-zerg/keyladder/internal/stages"
)

// dotenvPath is read from the working directory before KEYLADDER_* variables are parsed.
const dotenvPath = ".env"

// environment bundles what every command builds from the resolved config.
type environment struct {
	catalog *stages.Catalog
	library *corpus.Library
	mix     generator.Mix
	tuning  generator.Tuning
	log     *zap.SugaredLogger
	sync    func()
}

// loadFileConfig reads the TOML file and overlays the environment on it.
func loadFileConfig() (config.FileConfig, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return config.FileConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	ec, err := config.LoadEnv(dotenvPath)
	if err != nil {
		return config.FileConfig{}, err
	}
	fileCfg.ApplyEnv(ec)
	return fileCfg, nil
}

// resolvePracticeConfig merges flags over file and environment values.
func resolvePracticeConfig(cmd *cobra.Command, fileCfg config.FileConfig) model.Config {
	p := fileCfg.Practice
	applyStringConfig(cmd, "lang", &practiceLang, p.Lang)
	applyIntConfig(cmd, "stage", &practiceStage, p.Stage)
	applyIntConfig(cmd, "level", &practiceLevel, p.Level)
	applyBoolConfig(cmd, "endless", &practiceEndless, p.Endless)
	applyBoolConfig(cmd, "zero-mistakes", &practiceZeroMistakes, p.ZeroMistakes)
	applyInt64Config(cmd, "seed", &practiceSeed, p.Seed)
	applyBoolConfig(cmd, "focus-weak", &practiceFocusWeak, p.FocusWeak)
	applyIntConfig(cmd, "weak-top", &practiceWeakTop, p.WeakTop)
	applyFloatConfig(cmd, "weak-factor", &practiceWeakFactor, p.WeakFactor)
	applyIntConfig(cmd, "weak-window", &practiceWeakWindow, p.WeakWindow)

	return model.Config{
		Lang:         practiceLang,
		Stage:        practiceStage,
		Level:        practiceLevel,
		Endless:      practiceEndless,
		ZeroMistakes: practiceZeroMistakes,
		Seed:         practiceSeed,
		FocusWeak:    practiceFocusWeak,
		WeakTop:      practiceWeakTop,
		WeakFactor:   practiceWeakFactor,
		WeakWindow:   practiceWeakWindow,
	}
}

// resolveGenerator reads the content ratios, falling back to the stock values.
func resolveGenerator(g config.GeneratorConfig) (generator.Mix, generator.Tuning) {
	mix := generator.DefaultMix()
	tuning := generator.DefaultTuning()
	setFloat(&mix.Paragraph, g.ParagraphMix)
	setFloat(&mix.Sentences, g.SentenceMix)
	setFloat(&mix.Generated, g.GeneratedMix)
	setFloat(&tuning.MegaRealWords, g.MegaRealWords)
	setFloat(&tuning.MegaDrills, g.MegaDrills)
	return mix, tuning
}

func setFloat(dst, src *float64) {
	if src != nil {
		*dst = *src
	}
}

// loadEnvironment builds the logger, stage catalog and corpus. Full-screen commands log
// to a file so output never lands on the alt screen.
func loadEnvironment(cmd *cobra.Command, fileCfg config.FileConfig, fullScreen bool) (*environment, error) {
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)
	logFile := ""
	if fileCfg.Log.File != nil {
		logFile = *fileCfg.Log.File
	}
	if logFile == "" && fullScreen {
		logFile = config.DefaultLogPath()
	}
	log, sync, err := logging.New(logging.Options{Level: logLevel, File: logFile})
	if err != nil {
		return nil, err
	}

	mix, tuning := resolveGenerator(fileCfg.Generator)
	if err := validateGenerator(mix, tuning); err != nil {
		sync()
		return nil, err
	}

	catalog, err := loadCatalog(fileCfg.Paths.Stages)
	if err != nil {
		sync()
		return nil, err
	}

	library := corpus.Default()
	corpusDir := config.DefaultCorpusDir()
	if fileCfg.Paths.CorpusDir != nil && *fileCfg.Paths.CorpusDir != "" {
		corpusDir = *fileCfg.Paths.CorpusDir
	}
	loaded, err := corpus.LoadDir(library, corpusDir)
	if err != nil {
		sync()
		return nil, fmt.Errorf("failed to load corpus: %w", err)
	}
	for _, path := range loaded {
		log.Debugw("corpus file loaded", "path", path)
	}

	return &environment{
		catalog: catalog,
		library: library,
		mix:     mix,
		tuning:  tuning,
		log:     log,
		sync:    sync,
	}, nil
}

// loadCatalog reads a stage catalog file. Without an explicit path the default location
// is tried and the built-in catalog used when it is absent.
func loadCatalog(explicit *string) (*stages.Catalog, error) {
	path := config.DefaultStagesPath()
	if explicit != nil && *explicit != "" {
		path = *explicit
	} else if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return stages.Default(), nil
		}
		return nil, fmt.Errorf("failed to stat stages file: %w", err)
	}
	catalog, err := stages.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load stages: %w", err)
	}
	return catalog, nil
}

// stage resolves the practiced stage. Endless practice draws from every character.
func (e *environment) stage(cfg model.Config) (model.Stage, error) {
	if cfg.Endless {
		return e.catalog.Full(), nil
	}
	st, err := e.catalog.Find(cfg.Stage)
	if err != nil {
		if errors.Is(err, stages.ErrUnknownStage) {
			return model.Stage{}, fmt.Errorf("--stage must be between 1 and %d", e.catalog.Last().ID)
		}
		return model.Stage{}, err
	}
	return st, nil
}

func (e *environment) generator(cfg model.Config) *generator.Generator {
	if _, err := e.library.Lang(cfg.Lang); err != nil {
		e.log.Warnw("unknown corpus language, using fallback", "lang", cfg.Lang, "fallback", corpus.DefaultLang)
	}
	return generator.New(
		generator.WithSeed(cfg.Seed),
		generator.WithCorpus(e.library),
		generator.WithThresholds(e.catalog.Thresholds()),
		generator.WithTuning(e.tuning),
		generator.WithLogger(e.log),
	)
}

func (e *environment) stageNames() map[int]string {
	names := make(map[int]string)
	for _, st := range e.catalog.Stages() {
		names[st.ID] = st.Name
	}
	return names
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyInt64Config(cmd *cobra.Command, name string, target, value *int64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	mix := generator.DefaultMix()
	tuning := generator.DefaultTuning()
	return fmt.Sprintf(`# keyladder configuration
# Uncomment a value to enable it. KEYLADDER_* environment variables override
# config values and CLI flags override both.

[practice]
# lang = %q               # Corpus language code
# stage = %d                # Stage id (see: keyladder stages)
# level = %d                # Sub-level within the stage (0-%d)
# endless = false          # Endless stream of mixed content
# zero-mistakes = false    # Restart with fresh text on the first mistake
# seed = 0                 # Random seed (0 = time based)
# focus-weak = false       # Bias practice toward weak characters
# weak-top = %d             # Number of weak characters to focus on
# weak-factor = %.1f        # Weight factor for weak characters
# weak-window = %d         # Number of recent sessions to compute weak chars

[generator]
# paragraph-mix = %.2f     # Endless: weight of curated paragraphs
# sentence-mix = %.2f      # Endless: weight of curated sentences
# generated-mix = %.2f     # Endless: weight of generated text
# mega-real-words = %.2f   # Practice level: share of real words
# mega-drills = %.2f       # Practice level: share of character drills

[log]
# level = %q           # debug, info, warn, error
# file = ""                # Log file (full-screen commands default to the data dir)

[paths]
# stages = ""              # TOML stage catalog (default: stages.toml next to this file)
# corpus-dir = ""          # Directory of <lang>.yaml, <lang>.lua and <lang>.txt corpora
`,
		defaultLang,
		defaultStage,
		defaultLevel,
		generator.MaxSubLevel,
		defaultWeakTop,
		defaultWeakFactor,
		defaultWeakWindow,
		mix.Paragraph,
		mix.Sentences,
		mix.Generated,
		tuning.MegaRealWords,
		tuning.MegaDrills,
		defaultLogLevel,
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.Lang == "" {
		return fmt.Errorf("--lang must not be empty")
	}
	if cfg.Stage < 1 {
		return fmt.Errorf("--stage must be >= 1")
	}
	if cfg.Level < 0 || cfg.Level > generator.MaxSubLevel {
		return fmt.Errorf("--level must be between 0 and %d", generator.MaxSubLevel)
	}
	if cfg.WeakTop < 0 {
		return fmt.Errorf("--weak-top must be >= 0")
	}
	if cfg.WeakFactor < 0 {
		return fmt.Errorf("--weak-factor must be >= 0")
	}
	if cfg.WeakWindow < 0 {
		return fmt.Errorf("--weak-window must be >= 0")
	}
	return nil
}

func validateGenerator(mix generator.Mix, tuning generator.Tuning) error {
	for name, v := range map[string]float64{
		"paragraph-mix":   mix.Paragraph,
		"sentence-mix":    mix.Sentences,
		"generated-mix":   mix.Generated,
		"mega-real-words": tuning.MegaRealWords,
		"mega-drills":     tuning.MegaDrills,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("generator.%s must be between 0 and 1", name)
		}
	}
	if mix.Paragraph+mix.Sentences+mix.Generated <= 0 {
		return fmt.Errorf("generator mix ratios must sum to more than 0")
	}
	if tuning.MegaRealWords+tuning.MegaDrills > 1 {
		return fmt.Errorf("generator.mega-real-words plus generator.mega-drills must not exceed 1")
	}
	return nil
}
