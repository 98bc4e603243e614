package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// EnvConfig holds KEYLADDER_* environment overrides. Unset variables stay nil.
type EnvConfig struct {
	Lang         *string `env:"KEYLADDER_LANG"`
	Stage        *int    `env:"KEYLADDER_STAGE"`
	Level        *int    `env:"KEYLADDER_LEVEL"`
	Endless      *bool   `env:"KEYLADDER_ENDLESS"`
	ZeroMistakes *bool   `env:"KEYLADDER_ZERO_MISTAKES"`
	Seed         *int64  `env:"KEYLADDER_SEED"`
	LogLevel     *string `env:"KEYLADDER_LOG_LEVEL"`
	LogFile      *string `env:"KEYLADDER_LOG_FILE"`
	Stages       *string `env:"KEYLADDER_STAGES"`
	CorpusDir    *string `env:"KEYLADDER_CORPUS_DIR"`
}

// LoadEnv loads dotenvPath into the process environment when the file exists, then
// parses the overrides. Variables already set in the environment win over the file.
func LoadEnv(dotenvPath string) (EnvConfig, error) {
	if dotenvPath != "" {
		if err := godotenv.Load(dotenvPath); err != nil && !os.IsNotExist(err) {
			return EnvConfig{}, fmt.Errorf("failed to load %s: %w", dotenvPath, err)
		}
	}
	var ec EnvConfig
	if err := env.Parse(&ec); err != nil {
		return EnvConfig{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	return ec, nil
}

// ApplyEnv overlays environment overrides onto values read from the config file.
func (c *FileConfig) ApplyEnv(e EnvConfig) {
	override(&c.Practice.Lang, e.Lang)
	override(&c.Practice.Stage, e.Stage)
	override(&c.Practice.Level, e.Level)
	override(&c.Practice.Endless, e.Endless)
	override(&c.Practice.ZeroMistakes, e.ZeroMistakes)
	override(&c.Practice.Seed, e.Seed)
	override(&c.Log.Level, e.LogLevel)
	override(&c.Log.File, e.LogFile)
	override(&c.Paths.Stages, e.Stages)
	override(&c.Paths.CorpusDir, e.CorpusDir)
}

func override[T any](dst **T, src *T) {
	if src != nil {
		*dst = src
	}
}
