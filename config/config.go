// Package config — tmxkit.yaml configuration file support.
//
// When a tmxkit.yaml file exists in the project root it declares the
// conversion project: the TMX document, the corpus base name, the
// language pair, and the per-side tokenization policy. Environment
// variables (TMXKIT_*) override individual fields, so CI runs can
// redirect the registry or toolchain without editing the file.
//
// Nothing here touches process-wide locale state; every component that
// needs a language code receives it explicitly.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file name.
const FileName = "tmxkit.yaml"

// Config is the tmxkit.yaml schema. Env tags are overrides applied
// after the file is read.
type Config struct {
	// Base is the corpus base name; corpus names derive from it plus
	// each language code.
	Base string `yaml:"base" env:"TMXKIT_BASE"`
	// TMX is the path to the TMX document, relative to the project
	// root.
	TMX string `yaml:"tmx" env:"TMXKIT_TMX"`
	// SourceLang and TargetLang are optional language hints; when
	// absent the pair is resolved from the document alone.
	SourceLang string `yaml:"source_lang,omitempty" env:"TMXKIT_SOURCE_LANG"`
	TargetLang string `yaml:"target_lang,omitempty" env:"TMXKIT_TARGET_LANG"`
	// Registry is the corpus registry root directory.
	Registry string `yaml:"registry,omitempty" env:"TMXKIT_REGISTRY"`
	// StagingDir is where the staging triple is written.
	StagingDir string `yaml:"staging_dir,omitempty" env:"TMXKIT_STAGING_DIR"`

	// SourceTokenizer and TargetTokenizer are external tokenizer
	// command lines (command plus arguments). Empty means whitespace
	// splitting for that side.
	SourceTokenizer []string `yaml:"source_tokenizer,omitempty"`
	TargetTokenizer []string `yaml:"target_tokenizer,omitempty"`

	// Builder selects the indexing engine: "registry" (built-in,
	// default) or "tool" (external toolchain).
	Builder string `yaml:"builder,omitempty" env:"TMXKIT_BUILDER"`
	// EncodeCmd and AlignCmd are the external toolchain commands,
	// used only when Builder is "tool".
	EncodeCmd string `yaml:"encode_cmd,omitempty" env:"TMXKIT_ENCODE_CMD"`
	AlignCmd  string `yaml:"align_cmd,omitempty" env:"TMXKIT_ALIGN_CMD"`
}

// Builder kinds.
const (
	BuilderRegistry = "registry"
	BuilderTool     = "tool"
)

// Defaults fills unset fields with their defaults.
func (c *Config) Defaults() {
	if c.Registry == "" {
		c.Registry = "registry"
	}
	if c.StagingDir == "" {
		c.StagingDir = "staging"
	}
	if c.Builder == "" {
		c.Builder = BuilderRegistry
	}
}

// Validate checks the fields every conversion run needs.
func (c *Config) Validate() error {
	if c.Base == "" {
		return fmt.Errorf("config: base corpus name is required")
	}
	switch c.Builder {
	case BuilderRegistry:
	case BuilderTool:
		if c.EncodeCmd == "" || c.AlignCmd == "" {
			return fmt.Errorf("config: builder %q needs encode_cmd and align_cmd", c.Builder)
		}
	default:
		return fmt.Errorf("config: unknown builder %q", c.Builder)
	}
	return nil
}

// StagingPaths returns the staging triple paths for a language pair:
// source file, target file, alignment map.
func (c *Config) StagingPaths(srcLang, tgtLang string) (string, string, string) {
	name := func(lang string) string {
		return filepath.Join(c.StagingDir, strings.ToLower(c.Base)+"_"+strings.ToLower(lang)+".vrt")
	}
	mapPath := filepath.Join(c.StagingDir, strings.ToLower(c.Base)+".align")
	return name(srcLang), name(tgtLang), mapPath
}

// Load reads tmxkit.yaml from dir (if present), applies defaults, then
// applies environment overrides. A missing file yields a config built
// from defaults and environment alone.
func Load(dir string) (*Config, error) {
	cfg := &Config{}

	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// env-only configuration
	default:
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config environment: %w", err)
	}
	cfg.Defaults()
	return cfg, nil
}

// Save writes the configuration to dir/tmxkit.yaml.
func (c *Config) Save(dir string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, FileName), data, 0o644)
}
