// Package locale holds the static locale table: display labels and the
// ordered fallback chain tried when localized text is missing for the
// requested locale. Configuration, not runtime derivation.
package locale

import "strings"

// Default is the terminal locale of every fallback chain.
const Default = "en"

type entry struct {
	Label string
	Chain []string
}

// table maps each supported locale to its display label and fallback chain.
// Every chain terminates in Default; Lookup enforces that even if a future
// edit here forgets it.
var table = map[string]entry{
	"en":    {Label: "English", Chain: []string{"en"}},
	"de":    {Label: "Deutsch", Chain: []string{"de", "en"}},
	"fr":    {Label: "Français", Chain: []string{"fr", "en"}},
	"es":    {Label: "Español", Chain: []string{"es", "en"}},
	"es-MX": {Label: "Español (México)", Chain: []string{"es-MX", "es", "en"}},
	"pt":    {Label: "Português", Chain: []string{"pt", "en"}},
	"pt-BR": {Label: "Português (Brasil)", Chain: []string{"pt-BR", "pt", "en"}},
	"it":    {Label: "Italiano", Chain: []string{"it", "en"}},
	"nl":    {Label: "Nederlands", Chain: []string{"nl", "en"}},
	"pl":    {Label: "Polski", Chain: []string{"pl", "en"}},
	"tr":    {Label: "Türkçe", Chain: []string{"tr", "en"}},
}

// Supported reports whether we have an entry for the locale.
func Supported(loc string) bool {
	_, ok := table[canonical(loc)]
	return ok
}

// Label returns the display label for a locale, or the locale itself when
// unknown.
func Label(loc string) string {
	if e, ok := table[canonical(loc)]; ok {
		return e.Label
	}
	return loc
}

// Chain returns the ordered fallback chain for a locale. Unknown locales
// fall straight through to the default. The returned slice always ends
// with Default and must not be mutated by callers.
func Chain(loc string) []string {
	e, ok := table[canonical(loc)]
	if !ok {
		return []string{Default}
	}
	if e.Chain[len(e.Chain)-1] != Default {
		return append(append([]string{}, e.Chain...), Default)
	}
	return e.Chain
}

// canonical normalizes case: language lowercased, region uppercased.
func canonical(loc string) string {
	loc = strings.TrimSpace(loc)
	if i := strings.IndexByte(loc, '-'); i > 0 {
		return strings.ToLower(loc[:i]) + "-" + strings.ToUpper(loc[i+1:])
	}
	return strings.ToLower(loc)
}
