// Package charset resolves which byte encoding applies to a legacy
// human-translated string table.
//
// Translation files predate the project-wide move to UTF-8, so each language
// may still be stored in its historical code page. The resolver picks a
// concrete encoding from one of four modes: a fixed UTF-8 default, an
// explicitly supplied name, the legacy per-language table (with statistical
// detection as fallback), or pure statistical detection.
package charset

import (
	"errors"
	"fmt"
	"strings"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// UTF8 is the canonical name of the project-wide target encoding.
const UTF8 = "utf-8"

// ---------------------------------------------------------------------------
// Modes
// ---------------------------------------------------------------------------

// Mode selects the resolution strategy.
type Mode int

const (
	// ModeUTF8Default always resolves to UTF-8.
	ModeUTF8Default Mode = iota
	// ModeExplicit returns a caller-supplied encoding name verbatim.
	ModeExplicit
	// ModeLegacyMap consults the historical per-language table, then
	// statistical detection, then forces UTF-8.
	ModeLegacyMap
	// ModeAutoDetect always runs statistical detection and never guesses:
	// an undetectable file requires a caller-supplied encoding.
	ModeAutoDetect
)

func (m Mode) String() string {
	switch m {
	case ModeExplicit:
		return "explicit"
	case ModeLegacyMap:
		return "legacy"
	case ModeAutoDetect:
		return "auto"
	default:
		return "utf8"
	}
}

// Profile is the outcome of encoding resolution for one language file. It is
// computed once per language/run and immutable afterwards.
type Profile struct {
	// Mode the profile was resolved under.
	Mode Mode
	// Name is the concrete encoding name.
	Name string
	// Forced is true when legacy-map resolution fell through both the table
	// and detection and UTF-8 was forced.
	Forced bool
}

// FallbackFunc supplies an encoding name for a language whose file could not
// be detected in auto mode. The original interactive "please type the
// encoding" prompt becomes this callback in a headless context.
type FallbackFunc func(lang string) (string, error)

// ---------------------------------------------------------------------------
// Legacy per-language table
// ---------------------------------------------------------------------------

// legacyTable maps base language codes to the historical code page their
// translation files were stored in. Names are WHATWG encoding labels so they
// resolve through htmlindex.
var legacyTable = map[string]string{
	// CJK double-byte encodings
	"ja":    "shift_jis",
	"ko":    "euc-kr",
	"zh":    "gbk",
	"zh-cn": "gbk",
	"zh-tw": "big5",
	"zh-hk": "big5",

	// Cyrillic
	"be": "windows-1251",
	"bg": "windows-1251",
	"mk": "windows-1251",
	"ru": "windows-1251",
	"sr": "windows-1251",
	"uk": "windows-1251",

	// Central European
	"bs": "windows-1250",
	"cs": "windows-1250",
	"hr": "windows-1250",
	"hu": "windows-1250",
	"pl": "windows-1250",
	"ro": "windows-1250",
	"sk": "windows-1250",
	"sl": "windows-1250",

	// Baltic
	"et": "windows-1257",
	"lt": "windows-1257",
	"lv": "windows-1257",

	// Single-language code pages
	"ar": "windows-1256",
	"el": "windows-1253",
	"he": "windows-1255",
	"th": "windows-874",
	"tr": "windows-1254",
	"vi": "windows-1258",

	// Western European
	"ca": "windows-1252",
	"da": "windows-1252",
	"de": "windows-1252",
	"es": "windows-1252",
	"fi": "windows-1252",
	"fr": "windows-1252",
	"is": "windows-1252",
	"it": "windows-1252",
	"nb": "windows-1252",
	"nl": "windows-1252",
	"no": "windows-1252",
	"pt": "windows-1252",
	"sv": "windows-1252",
}

// LegacyEncoding returns the historical code page for a language code, if
// the language is covered by the table. Locale variants fall back to their
// base language ("pt_BR" → "pt") after the variant itself is tried.
func LegacyEncoding(lang string) (string, bool) {
	norm := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(lang), "_", "-"))
	if enc, ok := legacyTable[norm]; ok {
		return enc, true
	}
	if base, _, ok := strings.Cut(norm, "-"); ok {
		if enc, found := legacyTable[base]; found {
			return enc, true
		}
	}
	return "", false
}

// ---------------------------------------------------------------------------
// Statistical detection
// ---------------------------------------------------------------------------

// detectConfidence is the minimum chardet confidence accepted as a result.
const detectConfidence = 30

// detectAliases maps chardet charset names to WHATWG labels where they
// differ.
var detectAliases = map[string]string{
	"GB-18030":    "gb18030",
	"ISO-2022-JP": "iso-2022-jp",
	"UTF-16BE":    "utf-16be",
	"UTF-16LE":    "utf-16le",
}

// Detect runs statistical charset detection over file bytes. It reports
// false for empty input, low-confidence guesses, and charsets with no
// resolvable decoder.
func Detect(data []byte) (string, bool) {
	if len(data) == 0 {
		return "", false
	}
	best, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil || best == nil || best.Confidence < detectConfidence {
		return "", false
	}
	name := best.Charset
	if alias, ok := detectAliases[name]; ok {
		name = alias
	}
	name = strings.ToLower(name)
	if _, err := htmlindex.Get(name); err != nil {
		return "", false
	}
	return name, true
}

// Lookup returns the decoder-bearing encoding for a resolved name.
func Lookup(name string) (encoding.Encoding, error) {
	enc, err := htmlindex.Get(strings.ToLower(strings.TrimSpace(name)))
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	return enc, nil
}

// ---------------------------------------------------------------------------
// Resolution
// ---------------------------------------------------------------------------

// ErrUndetectable reports that auto-detection yielded nothing and no
// fallback was available. Callers must supply an encoding explicitly.
var ErrUndetectable = errors.New("encoding not detectable")

// UndetectableError carries the language whose file defeated detection.
type UndetectableError struct {
	Lang string
}

func (e *UndetectableError) Error() string {
	return fmt.Sprintf("cannot detect encoding of %s translation file: supply one explicitly", e.Lang)
}

func (e *UndetectableError) Unwrap() error { return ErrUndetectable }

// Resolve computes the encoding profile for one language file.
//
// The file bytes are only consulted on detection paths; a missing file is
// the caller's concern (it means no human translation exists) and must not
// reach the resolver. The explicit name is only used in ModeExplicit, and
// fallback only in ModeAutoDetect.
func Resolve(lang string, mode Mode, explicit string, data []byte, fallback FallbackFunc) (Profile, error) {
	switch mode {
	case ModeExplicit:
		return Profile{Mode: mode, Name: explicit}, nil

	case ModeLegacyMap:
		if enc, ok := LegacyEncoding(lang); ok {
			return Profile{Mode: mode, Name: enc}, nil
		}
		if enc, ok := Detect(data); ok {
			return Profile{Mode: mode, Name: enc}, nil
		}
		return Profile{Mode: mode, Name: UTF8, Forced: true}, nil

	case ModeAutoDetect:
		if enc, ok := Detect(data); ok {
			return Profile{Mode: mode, Name: enc}, nil
		}
		if fallback != nil {
			enc, err := fallback(lang)
			if err != nil {
				return Profile{}, fmt.Errorf("encoding fallback for %s: %w", lang, err)
			}
			return Profile{Mode: mode, Name: enc}, nil
		}
		return Profile{}, &UndetectableError{Lang: lang}

	default:
		return Profile{Mode: ModeUTF8Default, Name: UTF8}, nil
	}
}
