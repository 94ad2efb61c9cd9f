package guard

import (
	"regexp"
	"strings"
)

// Normalize repairs raw translator output so it matches the source string's
// punctuation, spacing, and placeholder conventions.
//
// The repair rules run in a fixed order and each one operates on the output
// of the previous. The order is empirical and load-bearing: in particular
// the trailing-colon restoration runs after the general whitespace collapse
// and only when the original source string ends in a spaced colon. A rule
// that cannot apply leaves its input untouched, and a rule that fails
// internally is skipped, so Normalize always returns a string — the best
// result computed so far, never an empty fallback.
func Normalize(translated, original string, format Format) string {
	out := translated
	for _, r := range repairRules {
		out = applyRule(r, out, original, format)
	}
	return out
}

// repairRule is one named rewrite step of the chain.
type repairRule struct {
	name  string
	apply func(out, original string, format Format) string
}

// repairRules in application order. Do not reorder: later rules depend on
// the shape earlier rules leave behind.
var repairRules = []repairRule{
	{"tag-delimiters", fixTagDelimiters},
	{"strip-markers", stripMarkers},
	{"tag-pairing", repairTagPairs},
	{"spacing", fixSpacing},
	{"trailing-colon", restoreTrailingColon},
}

// applyRule runs one rule, falling back to its input if the rule panics.
func applyRule(r repairRule, out, original string, format Format) (result string) {
	result = out
	defer func() {
		_ = recover()
	}()
	result = r.apply(out, original, format)
	return result
}

// ---------------------------------------------------------------------------
// Rule 1: tag delimiters
// ---------------------------------------------------------------------------

// brokenTagRe matches a tag whose delimiters picked up stray interior
// whitespace: "< b>", "</ span >", "<b >".
var brokenTagRe = regexp.MustCompile(`<\s*(/?)\s*([A-Za-z][^<>]*?)\s*>`)

func fixTagDelimiters(out, _ string, _ Format) string {
	return brokenTagRe.ReplaceAllString(out, `<$1$2>`)
}

// ---------------------------------------------------------------------------
// Rule 2: strip no-translate markers
// ---------------------------------------------------------------------------

var (
	// markerPairRe tolerates attribute damage the translator may have
	// inflicted on the marker itself. (?s) keeps a pair intact when the
	// guarded content picked up a line break.
	markerPairRe = regexp.MustCompile(`(?is)<span[^<>]*notranslate[^<>]*>\s*(.*?)\s*</span>`)

	quoteEscaper = strings.NewReplacer(`\"`, `"`, `\'`, `'`)
)

func stripMarkers(out, _ string, format Format) string {
	out = markerPairRe.ReplaceAllString(out, `$1`)

	// Orphaned marker halves carry no information; drop them rather than
	// leak markup into the final string. The close tag is only dropped in
	// text format, where no legitimate spans exist.
	out = strings.ReplaceAll(out, markerOpen, "")
	if format == FormatText {
		out = strings.ReplaceAll(out, markerClose, "")
	}

	if format == FormatMarkup {
		// Undo quote escaping the translator introduces inside markup.
		out = quoteEscaper.Replace(out)
	}
	return out
}

// ---------------------------------------------------------------------------
// Rule 3: open/close tag pairing
// ---------------------------------------------------------------------------

var (
	tagTokenRe = regexp.MustCompile(`</?[A-Za-z][^<>]*>`)
	tagNameRe  = regexp.MustCompile(`^</?\s*([A-Za-z][A-Za-z0-9]*)`)
)

// repairTagPairs restores proper nesting when the translator flattened or
// reordered close tags, e.g. "<b><i>x</b></i>" → "<b><i>x</i></b>". Close
// tags are re-emitted in last-opened-first-closed order. When the tag
// population is not balanced the rule is a no-op.
func repairTagPairs(out, _ string, _ Format) string {
	locs := tagTokenRe.FindAllStringIndex(out, -1)
	if len(locs) == 0 {
		return out
	}

	counts := map[string]int{}
	balanced := true
	for _, loc := range locs {
		raw := out[loc[0]:loc[1]]
		if strings.HasSuffix(raw, "/>") {
			continue
		}
		name := tagName(raw)
		if name == "" {
			return out
		}
		if strings.HasPrefix(raw, "</") {
			counts[name]--
		} else {
			counts[name]++
		}
	}
	for _, c := range counts {
		if c != 0 {
			balanced = false
			break
		}
	}
	if !balanced {
		return out
	}

	var b strings.Builder
	b.Grow(len(out))
	var stack []string
	last := 0
	for _, loc := range locs {
		b.WriteString(out[last:loc[0]])
		last = loc[1]
		raw := out[loc[0]:loc[1]]

		switch {
		case strings.HasSuffix(raw, "/>"):
			b.WriteString(raw)
		case strings.HasPrefix(raw, "</"):
			if len(stack) == 0 {
				return out
			}
			b.WriteString("</" + stack[len(stack)-1] + ">")
			stack = stack[:len(stack)-1]
		default:
			b.WriteString(raw)
			stack = append(stack, tagName(raw))
		}
	}
	if len(stack) != 0 {
		return out
	}
	b.WriteString(out[last:])
	return b.String()
}

func tagName(raw string) string {
	m := tagNameRe.FindStringSubmatch(raw)
	if m == nil {
		return ""
	}
	return strings.ToLower(m[1])
}

// ---------------------------------------------------------------------------
// Rule 4: spacing and punctuation
// ---------------------------------------------------------------------------

var (
	wordPlaceholderColonRe = regexp.MustCompile(`(\pL) (\$\d+\s*:)`)
	spaceRunRe             = regexp.MustCompile(`\s{2,}`)
	strayPunctRe           = regexp.MustCompile(`(\S) ([,.;:!?])`)
	dateTripleRe           = regexp.MustCompile(`(\$\d+|\d+)\s*/\s*(\$\d+|\d+)\s*/\s*(\$\d+|\d+)`)
	tagSpanRe              = regexp.MustCompile(`<[^<>]+>`)
	attrAssignRe           = regexp.MustCompile(`\s*=\s*`)
	looseEllipsisRe        = regexp.MustCompile(`([^\s.])(\.\.)$`)
)

func fixSpacing(out, _ string, _ Format) string {
	// A word and its placeholder-colon group lose the stray space between.
	out = wordPlaceholderColonRe.ReplaceAllString(out, `${1}${2}`)

	// Whitespace runs collapse to a single space.
	out = spaceRunRe.ReplaceAllString(out, " ")

	// Punctuation drifted one space away from its word.
	out = strayPunctRe.ReplaceAllString(out, `${1}${2}`)

	// Date-like triples keep their tight slash form: $1/$2/$3, 01/02/2003.
	out = dateTripleRe.ReplaceAllString(out, `${1}/${2}/${3}`)

	// Attribute assignments inside tags lose padding: href = "x" → href="x".
	out = tagSpanRe.ReplaceAllStringFunc(out, func(tag string) string {
		return attrAssignRe.ReplaceAllString(tag, "=")
	})

	// A trailing double-dot ellipsis takes a leading space.
	out = looseEllipsisRe.ReplaceAllString(out, `${1} ${2}`)

	return out
}

// ---------------------------------------------------------------------------
// Rule 5: conditional trailing-colon restoration
// ---------------------------------------------------------------------------

var (
	origTrailingColonRe   = regexp.MustCompile(`\s:( ?\$\d+)?\s*$`)
	outTrailingColonRe    = regexp.MustCompile(`\s*:\s*(\$\d+)?\s*$`)
	adjacentPlaceholderRe = regexp.MustCompile(`(\$\d+) :(\$\d+)`)
)

// restoreTrailingColon re-inserts the spaced colon the whitespace collapse
// removed, but only when the original source string ended with " :" or
// " : $N". It deliberately runs after fixSpacing; reordering the two changes
// observable output.
func restoreTrailingColon(out, original string, _ Format) string {
	if !origTrailingColonRe.MatchString(original) {
		return out
	}
	if !outTrailingColonRe.MatchString(out) {
		return out
	}
	out = outTrailingColonRe.ReplaceAllStringFunc(out, func(m string) string {
		g := outTrailingColonRe.FindStringSubmatch(m)
		if g[1] == "" {
			return " :"
		}
		return " : " + g[1]
	})
	// Repair the malformed "$N :$M" shape restoration can produce.
	return adjacentPlaceholderRe.ReplaceAllString(out, `${1} : ${2}`)
}
