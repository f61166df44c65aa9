// Package config loads the editor configuration from a TOML file,
// falling back to built-in defaults when no file exists.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the user-tunable editor configuration. Zero values are
// replaced with defaults on load so a partial file stays valid.
type Config struct {
	TabWidth int    `toml:"tab_width"`
	Gutter   bool   `toml:"gutter"`
	Language string `toml:"language"`
	Theme    Theme  `toml:"theme"`
}

// Theme holds hex colors ("#rrggbb") for the UI and token categories.
type Theme struct {
	Background  string `toml:"background"`
	Foreground  string `toml:"foreground"`
	CurrentLine string `toml:"current_line"`
	Selection   string `toml:"selection"`
	GutterBg    string `toml:"gutter_bg"`
	GutterFg    string `toml:"gutter_fg"`

	Keyword  string `toml:"keyword"`
	Type     string `toml:"type"`
	Number   string `toml:"number"`
	String   string `toml:"string"`
	Comment  string `toml:"comment"`
	Preproc  string `toml:"preproc"`
	Callable string `toml:"callable"`
}

// Default returns the built-in configuration: a dark palette with the
// gutter enabled and 4-cell tabs.
func Default() Config {
	return Config{
		TabWidth: 4,
		Gutter:   true,
		Language: "en",
		Theme: Theme{
			Background:  "#282c34",
			Foreground:  "#abb2bf",
			CurrentLine: "#2c313c",
			Selection:   "#3e4451",
			GutterBg:    "#21252b",
			GutterFg:    "#5c6370",
			Keyword:     "#e06c75",
			Type:        "#61afef",
			Number:      "#d19a66",
			String:      "#98c379",
			Comment:     "#5c6370",
			Preproc:     "#c678dd",
			Callable:    "#56b6c2",
		},
	}
}

// DefaultPath is where Load looks when LC_CONFIG is unset:
// $XDG_CONFIG_HOME/lc/config.toml or ~/.config/lc/config.toml.
func DefaultPath() string {
	if p := os.Getenv("LC_CONFIG"); p != "" {
		return p
	}
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "lc", "config.toml")
}

// Load reads path and merges it over the defaults. A missing file is
// not an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Default(), fmt.Errorf("load config %s: %w", path, err)
	}
	// "gutter" missing entirely means "keep the default on", not false.
	if !meta.IsDefined("gutter") {
		cfg.Gutter = Default().Gutter
	}
	cfg.normalise()
	return cfg, nil
}

func (c *Config) normalise() {
	def := Default()
	if c.TabWidth <= 0 || c.TabWidth > 16 {
		c.TabWidth = def.TabWidth
	}
	if c.Language == "" {
		c.Language = def.Language
	}
	fillTheme(&c.Theme, def.Theme)
}

func fillTheme(t *Theme, def Theme) {
	pick := func(dst *string, fallback string) {
		if *dst == "" {
			*dst = fallback
		}
	}
	pick(&t.Background, def.Background)
	pick(&t.Foreground, def.Foreground)
	pick(&t.CurrentLine, def.CurrentLine)
	pick(&t.Selection, def.Selection)
	pick(&t.GutterBg, def.GutterBg)
	pick(&t.GutterFg, def.GutterFg)
	pick(&t.Keyword, def.Keyword)
	pick(&t.Type, def.Type)
	pick(&t.Number, def.Number)
	pick(&t.String, def.String)
	pick(&t.Comment, def.Comment)
	pick(&t.Preproc, def.Preproc)
	pick(&t.Callable, def.Callable)
}
