// Package i18n localises transkit's own user-facing strings.
//
// It wraps gotext: translations are embedded in the binary and selected at
// startup from the usual locale environment variables. Library packages
// never call into this package; only the CLI does.
package i18n

import (
	"embed"
	"os"
	"strings"

	"github.com/leonelquinteros/gotext"
)

// locales embeds the compiled translation catalogs:
// locales/{lang}/LC_MESSAGES/transkit.po
//
//go:embed all:locales
var locales embed.FS

// domain is the gettext domain name.
const domain = "transkit"

var locale *gotext.Locale

// Init loads the catalog for lang, auto-detecting from the environment when
// lang is empty. Call once at program startup.
func Init(lang string) {
	if lang == "" {
		lang = detectLanguage()
	}
	locale = gotext.NewLocaleFSWithPath(lang, locales, "locales")
	locale.AddDomain(domain)
	locale.SetDomain(domain)
}

// T translates msgid, returning it unchanged when no translation exists.
func T(msgid string) string {
	if locale == nil {
		return msgid
	}
	return locale.Get(msgid)
}

// N translates with plural forms, choosing by n.
func N(singular, plural string, n int) string {
	if locale == nil {
		if n == 1 {
			return singular
		}
		return plural
	}
	return locale.GetN(singular, plural, n)
}

// detectLanguage follows the GNU gettext environment variable priority:
// LANGUAGE > LC_ALL > LC_MESSAGES > LANG.
func detectLanguage() string {
	for _, env := range []string{"LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"} {
		val := os.Getenv(env)
		if val == "" {
			continue
		}
		if env == "LANGUAGE" {
			val, _, _ = strings.Cut(val, ":")
		}
		if at := strings.IndexByte(val, '.'); at >= 0 {
			val = val[:at]
		}
		if val == "" || val == "C" || val == "POSIX" {
			continue
		}
		return val
	}
	return "en"
}
