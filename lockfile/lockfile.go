// Package lockfile implements transkit.lock — per-language checksums of the
// source strings each translated value was produced from.
//
// The lock enables incremental runs: a key whose source string checksum is
// unchanged since the last run keeps its translation and is never re-sent to
// the translation service. The file lives next to .transkit.yaml.
package lockfile

import (
	"crypto/md5"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Name is the lock file name.
const Name = "transkit.lock"

// Version is the lock file format version.
const Version = 1

// Lock is the on-disk transkit.lock structure.
type Lock struct {
	Version int `yaml:"version"`
	// Checksums is language → key → md5 of the source string that was
	// current when the key was last translated.
	Checksums map[string]map[string]string `yaml:"checksums"`

	mu   sync.Mutex `yaml:"-"`
	path string     `yaml:"-"`
}

// Load reads the lock file from dir. A missing file yields an empty lock.
func Load(dir string) (*Lock, error) {
	path := filepath.Join(dir, Name)
	l := &Lock{
		Version:   Version,
		Checksums: make(map[string]map[string]string),
		path:      path,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return l, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, l); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if l.Checksums == nil {
		l.Checksums = make(map[string]map[string]string)
	}
	return l, nil
}

// Save writes the lock file back to disk.
func (l *Lock) Save() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := yaml.Marshal(l)
	if err != nil {
		return fmt.Errorf("marshaling lock: %w", err)
	}
	if err := os.WriteFile(l.path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", l.path, err)
	}
	return nil
}

// Known reports whether a checksum was recorded for lang/key. Values
// predating the lock file have no checksum and must not be treated as stale.
func (l *Lock) Known(lang, key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, ok := l.Checksums[lang][key]
	return ok
}

// Changed reports whether the source string for lang/key differs from the
// checksum recorded at the last run. Unknown keys count as changed.
func (l *Lock) Changed(lang, key, source string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	byKey, ok := l.Checksums[lang]
	if !ok {
		return true
	}
	return byKey[key] != checksum(source)
}

// Update records the source string checksum for lang/key.
func (l *Lock) Update(lang, key, source string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.Checksums[lang] == nil {
		l.Checksums[lang] = make(map[string]string)
	}
	l.Checksums[lang][key] = checksum(source)
}

// Prune drops recorded keys that no longer exist in the template.
func (l *Lock) Prune(lang string, live map[string]bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key := range l.Checksums[lang] {
		if !live[key] {
			delete(l.Checksums[lang], key)
		}
	}
}

func checksum(s string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(s)))
}
