// Package langmeta provides language code normalization and display
// names for CLI output and diagnostics.
package langmeta

import "strings"

// names maps canonical language codes to native display names.
var names = map[string]string{
	"ar":    "العربية",
	"bg":    "Български",
	"cs":    "Čeština",
	"da":    "Dansk",
	"de":    "Deutsch",
	"el":    "Ελληνικά",
	"en":    "English",
	"en-GB": "English (UK)",
	"en-US": "English (US)",
	"es":    "Español",
	"fi":    "Suomi",
	"fr":    "Français",
	"he":    "עברית",
	"hi":    "हिन्दी",
	"hr":    "Hrvatski",
	"hu":    "Magyar",
	"it":    "Italiano",
	"ja":    "日本語",
	"ko":    "한국어",
	"lt":    "Lietuvių",
	"lv":    "Latviešu",
	"nl":    "Nederlands",
	"no":    "Norsk",
	"pl":    "Polski",
	"pt":    "Português",
	"pt-BR": "Português (Brasil)",
	"pt-PT": "Português (Portugal)",
	"ro":    "Română",
	"ru":    "Русский",
	"sk":    "Slovenčina",
	"sv":    "Svenska",
	"tr":    "Türkçe",
	"uk":    "Українська",
	"vi":    "Tiếng Việt",
	"zh":    "中文",
	"zh-CN": "简体中文",
	"zh-TW": "繁體中文",
}

// Canonical normalizes a language code: trims whitespace, lowers the
// base subtag, uppers the region subtag, and rewrites underscores to
// hyphens (pt_br → pt-BR).
func Canonical(lang string) string {
	normalized := strings.ReplaceAll(strings.TrimSpace(lang), "_", "-")
	if normalized == "" {
		return ""
	}
	parts := strings.Split(normalized, "-")
	parts[0] = strings.ToLower(parts[0])
	if len(parts) >= 2 {
		parts[1] = strings.ToUpper(parts[1])
	}
	return strings.Join(parts, "-")
}

// Name returns the native display name for a language code, falling
// back from the exact variant to the base language, then to the code
// itself.
func Name(lang string) string {
	if n, ok := names[lang]; ok {
		return n
	}
	canonical := Canonical(lang)
	if n, ok := names[canonical]; ok {
		return n
	}
	if base, _, ok := strings.Cut(canonical, "-"); ok {
		if n, ok := names[base]; ok {
			return n
		}
	}
	return lang
}
