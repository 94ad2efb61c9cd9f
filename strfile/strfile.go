// Package strfile implements reading and writing of flat key-value string
// tables — the per-module, per-language files that hold translatable UI
// strings.
//
// Format: one "key=value" mapping per line. Lines starting with '#' are
// comments and are preserved verbatim. Blank lines are preserved too, so a
// round trip reproduces the source layout with translated values. Values may
// embed positional placeholders ($1, $2, ...) and inline markup tags; the
// table treats them as opaque text.
//
// Naming convention: one file per language in a module directory:
//
//	module_dir/en.str   (source template)
//	module_dir/ru.str   (translation)
//
// A table is read once per module/language pair and updated only by applying
// a pipeline output mapping; values are never rewritten in place during
// translation.
package strfile

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Ext is the file extension for string tables.
const Ext = ".str"

// ---------------------------------------------------------------------------
// Table model
// ---------------------------------------------------------------------------

// rowKind classifies each line of the file.
type rowKind int

const (
	rowBlank   rowKind = iota // blank / whitespace-only line
	rowComment                // comment line (starts with #)
	rowEntry                  // key=value mapping
)

// row is one line of the table in document order.
type row struct {
	kind  rowKind
	raw   string // verbatim text for comments/blanks
	key   string // only for rowEntry
	value string // only for rowEntry
}

// File is a parsed string table.
type File struct {
	rows  []row
	index map[string]int // key → position in rows
}

// New returns an empty string table.
func New() *File {
	return &File{index: make(map[string]int)}
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// ParseFile reads and parses a string table from disk.
func ParseFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return f, nil
}

// Parse parses string-table content from a byte slice. Input must already be
// UTF-8; legacy encodings are handled by the transcode package before the
// bytes reach the parser.
func Parse(data []byte) (*File, error) {
	f := New()

	text := string(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")))
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")

	// A trailing newline produces one empty trailing element; drop it.
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	for _, raw := range lines {
		trimmed := strings.TrimSpace(raw)

		switch {
		case trimmed == "":
			f.rows = append(f.rows, row{kind: rowBlank, raw: raw})

		case strings.HasPrefix(trimmed, "#"):
			f.rows = append(f.rows, row{kind: rowComment, raw: raw})

		default:
			key, value, ok := strings.Cut(trimmed, "=")
			key = strings.TrimSpace(key)
			if !ok || key == "" {
				// No separator or empty key — keep the line verbatim so
				// nothing is silently lost on rewrite.
				f.rows = append(f.rows, row{kind: rowComment, raw: raw})
				continue
			}
			value = strings.TrimSpace(value)
			if at, dup := f.index[key]; dup {
				// Later duplicate wins, original position kept.
				f.rows[at].value = value
				continue
			}
			f.index[key] = len(f.rows)
			f.rows = append(f.rows, row{kind: rowEntry, key: key, value: value})
		}
	}

	return f, nil
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

// Keys returns all keys in document order.
func (f *File) Keys() []string {
	keys := make([]string, 0, len(f.index))
	for _, r := range f.rows {
		if r.kind == rowEntry {
			keys = append(keys, r.key)
		}
	}
	return keys
}

// Missing returns keys whose value is empty, in document order.
func (f *File) Missing() []string {
	var keys []string
	for _, r := range f.rows {
		if r.kind == rowEntry && r.value == "" {
			keys = append(keys, r.key)
		}
	}
	return keys
}

// Get returns the value for key and whether the key exists.
func (f *File) Get(key string) (string, bool) {
	if at, ok := f.index[key]; ok {
		return f.rows[at].value, true
	}
	return "", false
}

// Set replaces the value of an existing key. It returns false when the key
// is not present; new keys are only introduced via FromTemplate.
func (f *File) Set(key, value string) bool {
	at, ok := f.index[key]
	if !ok {
		return false
	}
	f.rows[at].value = value
	return true
}

// Len returns the number of key-value entries.
func (f *File) Len() int {
	return len(f.index)
}

// Values returns a key → value snapshot of all entries.
func (f *File) Values() map[string]string {
	m := make(map[string]string, len(f.index))
	for _, r := range f.rows {
		if r.kind == rowEntry {
			m[r.key] = r.value
		}
	}
	return m
}

// Apply copies every mapping whose key exists in the table. Unknown keys are
// ignored and returned so the caller can report them.
func (f *File) Apply(m map[string]string) (unknown []string) {
	for k, v := range m {
		if !f.Set(k, v) {
			unknown = append(unknown, k)
		}
	}
	return unknown
}

// Stats returns (total, filled, percent filled).
func (f *File) Stats() (total, filled int, pct float64) {
	for _, r := range f.rows {
		if r.kind == rowEntry {
			total++
			if r.value != "" {
				filled++
			}
		}
	}
	if total > 0 {
		pct = float64(filled) / float64(total) * 100
	}
	return total, filled, pct
}

// ---------------------------------------------------------------------------
// Serialization
// ---------------------------------------------------------------------------

// Marshal serialises the table back to key=value text. Output is always
// UTF-8 regardless of the encoding the source bytes were decoded from.
func (f *File) Marshal() []byte {
	var buf bytes.Buffer
	for _, r := range f.rows {
		switch r.kind {
		case rowBlank:
			buf.WriteByte('\n')
		case rowComment:
			buf.WriteString(r.raw)
			buf.WriteByte('\n')
		case rowEntry:
			buf.WriteString(r.key)
			buf.WriteByte('=')
			buf.WriteString(r.value)
			buf.WriteByte('\n')
		}
	}
	return buf.Bytes()
}

// WriteFile serialises the table to path, creating parent directories.
func (f *File) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, f.Marshal(), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Template derivation
// ---------------------------------------------------------------------------

// FromTemplate returns a new table mirroring the template's structure with
// every value cleared, ready to be filled for a target language.
func FromTemplate(template *File) *File {
	f := New()
	for _, r := range template.rows {
		cp := r
		if r.kind == rowEntry {
			cp.value = ""
			f.index[r.key] = len(f.rows)
		}
		f.rows = append(f.rows, cp)
	}
	return f
}
