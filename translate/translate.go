// Package translate provides the UI string catalog. Catalogs are plain
// JSON maps of language code -> key -> string; anything missing falls
// back to English, then to the key itself.
package translate

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Catalog holds the loaded translations. The zero value is unusable;
// build one with Default or Load.
type Catalog struct {
	table map[string]map[string]string
}

// Default returns the built-in English-only catalog used when no
// language file is present.
func Default() *Catalog {
	return &Catalog{table: map[string]map[string]string{
		"en": {
			"name":            "English",
			"new":             "New",
			"open":            "Open",
			"save":            "Save",
			"run":             "Build & Run",
			"untitled":        "untitled",
			"open_file":       "Open File",
			"save_file":       "Save File",
			"change_language": "Change Language",
			"select_language": "Select Language",
		},
	}}
}

// Load reads a JSON catalog from path and merges it over the defaults.
// A missing file yields the default catalog without error.
func Load(path string) (*Catalog, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return c, fmt.Errorf("load translations %s: %w", path, err)
	}
	var loaded map[string]map[string]string
	if err := json.Unmarshal(data, &loaded); err != nil {
		return c, fmt.Errorf("parse translations %s: %w", path, err)
	}
	for lang, entries := range loaded {
		if c.table[lang] == nil {
			c.table[lang] = map[string]string{}
		}
		for k, v := range entries {
			c.table[lang][k] = v
		}
	}
	return c, nil
}

// T resolves key in lang, falling back to English and then the key.
func (c *Catalog) T(lang, key string) string {
	if v, ok := c.table[lang][key]; ok {
		return v
	}
	if v, ok := c.table["en"][key]; ok {
		return v
	}
	return key
}

// Has reports whether lang exists in the catalog.
func (c *Catalog) Has(lang string) bool {
	_, ok := c.table[lang]
	return ok
}

// Name returns the display name of a language, defaulting to its code.
func (c *Catalog) Name(lang string) string {
	if v, ok := c.table[lang]["name"]; ok {
		return v
	}
	return lang
}

// Languages lists the known language codes in sorted order.
func (c *Catalog) Languages() []string {
	out := make([]string, 0, len(c.table))
	for lang := range c.table {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}

// Next returns the language after lang in sorted order, wrapping
// around. Unknown langs start the cycle from the beginning.
func (c *Catalog) Next(lang string) string {
	langs := c.Languages()
	if len(langs) == 0 {
		return "en"
	}
	for i, l := range langs {
		if l == lang {
			return langs[(i+1)%len(langs)]
		}
	}
	return langs[0]
}
