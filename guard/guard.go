// Package guard shields inline tokens from an external translation call and
// repairs the text that comes back.
//
// The translation service is known to mangle positional placeholders ($1,
// $2, ...), file paths, and inline markup. Protect wraps the fragile tokens
// in no-translate markers before the call; Normalize strips the markers and
// runs an ordered chain of repair rules over the returned text. Both are
// stateless pure transforms and safe to call concurrently.
package guard

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Format selects which guard and repair rules apply to a string.
type Format int

const (
	// FormatText is plain UI text: placeholders are the fragile tokens.
	FormatText Format = iota
	// FormatMarkup is text with inline tags: path tokens are also fragile
	// and tag structure must survive.
	FormatMarkup
)

// ParseFormat maps a config/flag value onto a Format.
func ParseFormat(s string) (Format, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return FormatText, true
	case "markup", "html":
		return FormatMarkup, true
	}
	return FormatText, false
}

func (f Format) String() string {
	if f == FormatMarkup {
		return "markup"
	}
	return "text"
}

// No-translate marker. The class name is honoured by the translation
// service; everything between the tags passes through unaltered (modulo the
// damage Normalize repairs).
const (
	markerOpen  = `<span class="notranslate">`
	markerClose = `</span>`
)

var (
	// placeholderRe matches positional placeholders like $1 or $12.
	placeholderRe = regexp.MustCompile(`\$\d+`)

	// pathTokenRe matches a path-like token: a leading '/' after start of
	// string or whitespace, running to the next comma, period, or space.
	pathTokenRe = regexp.MustCompile(`(^|\s)(/[^\s,.]+)`)
)

// Protect wraps every fragile token of text in a no-translate marker. Each
// placeholder or path present in the input appears exactly once, unmodified,
// inside exactly one marker in the output.
func Protect(text string, format Format) string {
	if format == FormatMarkup {
		return pathTokenRe.ReplaceAllString(text, `${1}`+markerOpen+`${2}`+markerClose)
	}
	return protectPlaceholders(text)
}

// protectPlaceholders wraps each $N token that is not already enclosed in
// quoting punctuation. Quoted placeholders are left alone: the quotes
// themselves keep the translator from touching them.
func protectPlaceholders(text string) string {
	locs := placeholderRe.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text) + len(locs)*(len(markerOpen)+len(markerClose)))
	last := 0
	for _, loc := range locs {
		start, end := loc[0], loc[1]
		b.WriteString(text[last:start])
		token := text[start:end]
		if quotedAt(text, start, end) {
			b.WriteString(token)
		} else {
			b.WriteString(markerOpen)
			b.WriteString(token)
			b.WriteString(markerClose)
		}
		last = end
	}
	b.WriteString(text[last:])
	return b.String()
}

// quotedAt reports whether the token at [start,end) sits between quoting
// punctuation on both sides.
func quotedAt(text string, start, end int) bool {
	prev, _ := utf8.DecodeLastRuneInString(text[:start])
	next, _ := utf8.DecodeRuneInString(text[end:])
	return isQuoteRune(prev) && isQuoteRune(next)
}

// isQuoteRune covers straight and curly quotes, backticks, and guillemets.
func isQuoteRune(r rune) bool {
	switch r {
	case '"', '\'', '`', '«', '»', '“', '”', '‘', '’':
		return true
	}
	return false
}

// Placeholders returns the placeholder tokens of a string in order of
// appearance. Used to verify that a translated value still carries every
// token of its source.
func Placeholders(text string) []string {
	return placeholderRe.FindAllString(text, -1)
}
