package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/minios-linux/transkit/charset"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return dir
}

const sample = `
source_lang: en
languages: [de, ru, ja]
encoding:
  mode: legacy
  overrides:
    ru: koi8-r
modules:
  - name: core
    dir: strings/core
    format: text
  - name: docs
    dir: strings/docs
    format: markup
    template: template.str
    legacy_dir: old
    languages: [de]
`

func TestLoadSample(t *testing.T) {
	dir := writeConfig(t, sample)
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Source() != "en" {
		t.Fatalf("Source = %q", cfg.Source())
	}
	mode, err := cfg.Mode()
	if err != nil || mode != charset.ModeLegacyMap {
		t.Fatalf("Mode = %v, %v", mode, err)
	}
	if enc, ok := cfg.LangEncoding("ru"); !ok || enc != "koi8-r" {
		t.Fatalf("LangEncoding(ru) = %q, %v", enc, ok)
	}
	if _, ok := cfg.LangEncoding("de"); ok {
		t.Fatal("de has no override")
	}
	if len(cfg.Modules) != 2 {
		t.Fatalf("Modules = %d", len(cfg.Modules))
	}
}

func TestModuleLanguagesExcludesSource(t *testing.T) {
	dir := writeConfig(t, sample)
	cfg, _ := Load(dir)

	core := cfg.Modules[0]
	langs := cfg.ModuleLanguages(core)
	if len(langs) != 3 {
		t.Fatalf("core languages = %v", langs)
	}
	for _, l := range langs {
		if l == "en" {
			t.Fatal("source language must be excluded")
		}
	}

	docs := cfg.Modules[1]
	if langs := cfg.ModuleLanguages(docs); len(langs) != 1 || langs[0] != "de" {
		t.Fatalf("docs languages = %v, want module override [de]", langs)
	}
}

func TestPaths(t *testing.T) {
	dir := writeConfig(t, sample)
	cfg, _ := Load(dir)

	core := cfg.Modules[0]
	if got := cfg.TemplatePath(core); got != filepath.Join(dir, "strings/core", "en.str") {
		t.Fatalf("TemplatePath = %q", got)
	}
	if got := cfg.LangPath(core, "ru"); got != filepath.Join(dir, "strings/core", "ru.str") {
		t.Fatalf("LangPath = %q", got)
	}
	if got := cfg.LegacyPath(core, "ru"); got != filepath.Join(dir, "strings/core", "legacy", "ru.str") {
		t.Fatalf("LegacyPath = %q, want default legacy dir", got)
	}

	docs := cfg.Modules[1]
	if got := cfg.TemplatePath(docs); got != filepath.Join(dir, "strings/docs", "template.str") {
		t.Fatalf("docs TemplatePath = %q", got)
	}
	if got := cfg.LegacyPath(docs, "de"); got != filepath.Join(dir, "strings/docs", "old", "de.str") {
		t.Fatalf("docs LegacyPath = %q", got)
	}
}

func TestValidateErrors(t *testing.T) {
	cases := []struct {
		name    string
		content string
		wantErr string
	}{
		{"no modules", "languages: [de]\n", "no modules"},
		{"missing dir", "modules:\n  - name: x\n", "dir is required"},
		{"duplicate dir", "modules:\n  - name: a\n    dir: s\n  - name: b\n    dir: s\n", "duplicate dir"},
		{"bad format", "modules:\n  - name: a\n    dir: s\n    format: binary\n", "unknown format"},
		{"bad mode", "encoding:\n  mode: psychic\nmodules:\n  - name: a\n    dir: s\n", "unknown encoding mode"},
		{"explicit without name", "encoding:\n  mode: explicit\nmodules:\n  - name: a\n    dir: s\n", "requires a name"},
	}
	for _, c := range cases {
		dir := writeConfig(t, c.content)
		_, err := Load(dir)
		if err == nil || !strings.Contains(err.Error(), c.wantErr) {
			t.Errorf("%s: err = %v, want %q", c.name, err, c.wantErr)
		}
	}
}

func TestDefaultMode(t *testing.T) {
	dir := writeConfig(t, "modules:\n  - name: a\n    dir: s\n")
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	mode, err := cfg.Mode()
	if err != nil || mode != charset.ModeUTF8Default {
		t.Fatalf("Mode = %v, %v; want utf8 default", mode, err)
	}
	if cfg.Source() != "en" {
		t.Fatalf("Source = %q, want en default", cfg.Source())
	}
}

func TestWriteSkeleton(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteSkeleton(dir)
	if err != nil {
		t.Fatalf("WriteSkeleton: %v", err)
	}
	if !Exists(dir) {
		t.Fatal("Exists = false after WriteSkeleton")
	}
	// The skeleton must be loadable as-is.
	if _, err := Load(dir); err != nil {
		t.Fatalf("skeleton does not load: %v", err)
	}
	// A second write must refuse.
	if _, err := WriteSkeleton(dir); err == nil {
		t.Fatalf("overwrote existing %s", path)
	}
}
