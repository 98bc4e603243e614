// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Practice  PracticeConfig  `toml:"practice"`
	Generator GeneratorConfig `toml:"generator"`
	Log       LogConfig       `toml:"log"`
	Paths     PathsConfig     `toml:"paths"`
}

// PracticeConfig maps practice-related settings.
type PracticeConfig struct {
	Lang         *string  `toml:"lang"`
	Stage        *int     `toml:"stage"`
	Level        *int     `toml:"level"`
	Endless      *bool    `toml:"endless"`
	ZeroMistakes *bool    `toml:"zero-mistakes"`
	Seed         *int64   `toml:"seed"`
	FocusWeak    *bool    `toml:"focus-weak"`
	WeakTop      *int     `toml:"weak-top"`
	WeakFactor   *float64 `toml:"weak-factor"`
	WeakWindow   *int     `toml:"weak-window"`
}

// GeneratorConfig maps the content mix ratios.
type GeneratorConfig struct {
	ParagraphMix  *float64 `toml:"paragraph-mix"`
	SentenceMix   *float64 `toml:"sentence-mix"`
	GeneratedMix  *float64 `toml:"generated-mix"`
	MegaRealWords *float64 `toml:"mega-real-words"`
	MegaDrills    *float64 `toml:"mega-drills"`
}

// LogConfig maps logger settings.
type LogConfig struct {
	Level *string `toml:"level"`
	File  *string `toml:"file"`
}

// PathsConfig maps optional data file locations.
type PathsConfig struct {
	Stages    *string `toml:"stages"`
	CorpusDir *string `toml:"corpus-dir"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
