// Package langmeta provides display metadata (native names and emoji flags)
// for the language codes transkit works with.
package langmeta

import "strings"

// Meta describes one language.
type Meta struct {
	// Native is the language's name in itself.
	Native string
	// Flag is the emoji flag shown in CLI output.
	Flag string
}

// registry covers the languages the legacy encoding table and the default
// target sets know about. Locale variants resolve via their base language.
var registry = map[string]Meta{
	"ar":    {Native: "العربية", Flag: "🇸🇦"},
	"be":    {Native: "Беларуская", Flag: "🇧🇾"},
	"bg":    {Native: "Български", Flag: "🇧🇬"},
	"bs":    {Native: "Bosanski", Flag: "🇧🇦"},
	"ca":    {Native: "Català", Flag: "🇪🇸"},
	"cs":    {Native: "Čeština", Flag: "🇨🇿"},
	"da":    {Native: "Dansk", Flag: "🇩🇰"},
	"de":    {Native: "Deutsch", Flag: "🇩🇪"},
	"el":    {Native: "Ελληνικά", Flag: "🇬🇷"},
	"en":    {Native: "English", Flag: "🇺🇸"},
	"es":    {Native: "Español", Flag: "🇪🇸"},
	"et":    {Native: "Eesti", Flag: "🇪🇪"},
	"fi":    {Native: "Suomi", Flag: "🇫🇮"},
	"fr":    {Native: "Français", Flag: "🇫🇷"},
	"he":    {Native: "עברית", Flag: "🇮🇱"},
	"hr":    {Native: "Hrvatski", Flag: "🇭🇷"},
	"hu":    {Native: "Magyar", Flag: "🇭🇺"},
	"is":    {Native: "Íslenska", Flag: "🇮🇸"},
	"it":    {Native: "Italiano", Flag: "🇮🇹"},
	"ja":    {Native: "日本語", Flag: "🇯🇵"},
	"ko":    {Native: "한국어", Flag: "🇰🇷"},
	"lt":    {Native: "Lietuvių", Flag: "🇱🇹"},
	"lv":    {Native: "Latviešu", Flag: "🇱🇻"},
	"mk":    {Native: "Македонски", Flag: "🇲🇰"},
	"nb":    {Native: "Norsk bokmål", Flag: "🇳🇴"},
	"nl":    {Native: "Nederlands", Flag: "🇳🇱"},
	"no":    {Native: "Norsk", Flag: "🇳🇴"},
	"pl":    {Native: "Polski", Flag: "🇵🇱"},
	"pt":    {Native: "Português", Flag: "🇵🇹"},
	"pt-br": {Native: "Português (Brasil)", Flag: "🇧🇷"},
	"ro":    {Native: "Română", Flag: "🇷🇴"},
	"ru":    {Native: "Русский", Flag: "🇷🇺"},
	"sk":    {Native: "Slovenčina", Flag: "🇸🇰"},
	"sl":    {Native: "Slovenščina", Flag: "🇸🇮"},
	"sr":    {Native: "Српски", Flag: "🇷🇸"},
	"sv":    {Native: "Svenska", Flag: "🇸🇪"},
	"th":    {Native: "ไทย", Flag: "🇹🇭"},
	"tr":    {Native: "Türkçe", Flag: "🇹🇷"},
	"uk":    {Native: "Українська", Flag: "🇺🇦"},
	"vi":    {Native: "Tiếng Việt", Flag: "🇻🇳"},
	"zh":    {Native: "中文", Flag: "🇨🇳"},
	"zh-cn": {Native: "简体中文", Flag: "🇨🇳"},
	"zh-tw": {Native: "繁體中文", Flag: "🇹🇼"},
}

// Resolve returns the metadata for a language code, trying the normalized
// code first and its base language second.
func Resolve(code string) (Meta, bool) {
	norm := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(code), "_", "-"))
	if m, ok := registry[norm]; ok {
		return m, true
	}
	if base, _, ok := strings.Cut(norm, "-"); ok {
		if m, found := registry[base]; found {
			return m, true
		}
	}
	return Meta{}, false
}

// Native returns the language's native name, or the code itself when the
// language is unknown.
func Native(code string) string {
	if m, ok := Resolve(code); ok {
		return m.Native
	}
	return code
}

// Label formats a language for CLI output: "🇩🇪 Deutsch (de)".
func Label(code string) string {
	m, ok := Resolve(code)
	if !ok {
		return code
	}
	if m.Flag == "" {
		return m.Native + " (" + code + ")"
	}
	return m.Flag + " " + m.Native + " (" + code + ")"
}
