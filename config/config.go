// Package config — .transkit.yaml configuration file support.
//
// The configuration declares the translation modules (directories of
// per-language string tables), the target languages, and how legacy file
// encodings are resolved. There is no auto-detection: every module must be
// declared explicitly.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/minios-linux/transkit/charset"
	"github.com/minios-linux/transkit/guard"
	"github.com/minios-linux/transkit/strfile"
)

// FileName is the configuration file name looked up in the project root.
const FileName = ".transkit.yaml"

// ---------------------------------------------------------------------------
// YAML schema
// ---------------------------------------------------------------------------

// Config is the top-level .transkit.yaml structure.
type Config struct {
	// SourceLang is the source language code (default "en").
	SourceLang string `yaml:"source_lang,omitempty"`
	// Languages is the default target language list for all modules.
	Languages []string `yaml:"languages,omitempty"`
	// Encoding controls legacy file encoding resolution.
	Encoding Encoding `yaml:"encoding,omitempty"`
	// Modules is the list of translation modules.
	Modules []Module `yaml:"modules"`

	root string
}

// Encoding is the encoding-resolution section.
type Encoding struct {
	// Mode: "utf8" (default), "explicit", "legacy", or "auto".
	Mode string `yaml:"mode,omitempty"`
	// Name is the encoding for mode "explicit".
	Name string `yaml:"name,omitempty"`
	// Overrides forces a specific encoding per language regardless of mode.
	Overrides map[string]string `yaml:"overrides,omitempty"`
}

// Module describes one directory of string tables.
type Module struct {
	// Name is a human-readable label shown in status/logs.
	Name string `yaml:"name"`
	// Dir holds the per-language .str files, relative to the project root.
	Dir string `yaml:"dir"`
	// Template is the source table file relative to Dir
	// (default "<source_lang>.str").
	Template string `yaml:"template,omitempty"`
	// Format: "text" (default) or "markup".
	Format string `yaml:"format,omitempty"`
	// LegacyDir holds human-translated files in their historical encodings,
	// relative to Dir (default "legacy").
	LegacyDir string `yaml:"legacy_dir,omitempty"`
	// Languages overrides the global language list for this module.
	Languages []string `yaml:"languages,omitempty"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads and validates .transkit.yaml from root.
func Load(root string) (*Config, error) {
	path := filepath.Join(root, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.root = root

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// Exists reports whether root carries a .transkit.yaml.
func Exists(root string) bool {
	_, err := os.Stat(filepath.Join(root, FileName))
	return err == nil
}

// Validate checks the configuration for problems a run would trip over.
func (c *Config) Validate() error {
	if len(c.Modules) == 0 {
		return fmt.Errorf("no modules declared")
	}
	if _, err := c.Mode(); err != nil {
		return err
	}
	seen := make(map[string]bool)
	for i, m := range c.Modules {
		if m.Dir == "" {
			return fmt.Errorf("module %d (%s): dir is required", i, m.Name)
		}
		if seen[m.Dir] {
			return fmt.Errorf("module %d (%s): duplicate dir %s", i, m.Name, m.Dir)
		}
		seen[m.Dir] = true
		if _, ok := guard.ParseFormat(m.Format); !ok {
			return fmt.Errorf("module %d (%s): unknown format %q", i, m.Name, m.Format)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Resolved accessors
// ---------------------------------------------------------------------------

// Source returns the source language code.
func (c *Config) Source() string {
	if c.SourceLang != "" {
		return c.SourceLang
	}
	return "en"
}

// Mode maps the encoding mode string onto a charset.Mode.
func (c *Config) Mode() (charset.Mode, error) {
	switch strings.ToLower(strings.TrimSpace(c.Encoding.Mode)) {
	case "", "utf8", "utf-8":
		return charset.ModeUTF8Default, nil
	case "explicit":
		if c.Encoding.Name == "" {
			return 0, fmt.Errorf("encoding mode explicit requires a name")
		}
		return charset.ModeExplicit, nil
	case "legacy":
		return charset.ModeLegacyMap, nil
	case "auto":
		return charset.ModeAutoDetect, nil
	}
	return 0, fmt.Errorf("unknown encoding mode %q", c.Encoding.Mode)
}

// LangEncoding returns the forced encoding for lang, if one is configured.
func (c *Config) LangEncoding(lang string) (string, bool) {
	enc, ok := c.Encoding.Overrides[lang]
	return enc, ok
}

// ModuleLanguages returns the target languages for a module, excluding the
// source language.
func (c *Config) ModuleLanguages(m Module) []string {
	langs := m.Languages
	if len(langs) == 0 {
		langs = c.Languages
	}
	out := make([]string, 0, len(langs))
	for _, l := range langs {
		if l != c.Source() {
			out = append(out, l)
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Paths
// ---------------------------------------------------------------------------

// TemplatePath returns the source table path for a module.
func (c *Config) TemplatePath(m Module) string {
	tmpl := m.Template
	if tmpl == "" {
		tmpl = c.Source() + strfile.Ext
	}
	return filepath.Join(c.root, m.Dir, tmpl)
}

// LangPath returns the translated table path for a module/language pair.
func (c *Config) LangPath(m Module, lang string) string {
	return filepath.Join(c.root, m.Dir, lang+strfile.Ext)
}

// LegacyPath returns the human-translated legacy file path for a
// module/language pair.
func (c *Config) LegacyPath(m Module, lang string) string {
	dir := m.LegacyDir
	if dir == "" {
		dir = "legacy"
	}
	return filepath.Join(c.root, m.Dir, dir, lang+strfile.Ext)
}

// Root returns the project root the configuration was loaded from.
func (c *Config) Root() string {
	return c.root
}

// ---------------------------------------------------------------------------
// Skeleton
// ---------------------------------------------------------------------------

// Skeleton is the annotated starter configuration written by `transkit init`.
const Skeleton = `# transkit configuration
#
# source_lang: en
# languages: [de, fr, ru, ja]
#
# encoding:
#   mode: legacy          # utf8 | explicit | legacy | auto
#   overrides:
#     ru: koi8-r
#
modules:
  - name: core
    dir: strings/core
    format: text
`

// WriteSkeleton writes the starter configuration to root. It refuses to
// overwrite an existing file.
func WriteSkeleton(root string) (string, error) {
	path := filepath.Join(root, FileName)
	if _, err := os.Stat(path); err == nil {
		return path, fmt.Errorf("%s already exists", path)
	}
	if err := os.WriteFile(path, []byte(Skeleton), 0644); err != nil {
		return path, fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}
