// Package textnorm holds the pure text-normalization helpers used by the
// recommendation pipeline: comparison normalization, franchise keys, script
// admissibility and URL slugs. Everything here is deterministic and total.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldDiacritics decomposes accented characters and strips the combining
// marks, so "Amélie" and "Amelie" normalize to the same string. The chain
// is stateful (Reset/Transform mutate its link buffers), so callers get a
// fresh one per call rather than sharing a package-level instance across
// goroutines.
func foldDiacritics(s string) string {
	chain := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(chain, s)
	if err != nil {
		return s
	}
	return folded
}

// Normalize converts a string to its canonical comparison form: diacritics
// folded, lowercased, punctuation treated as spaces, whitespace collapsed.
func Normalize(s string) string {
	s = foldDiacritics(s)
	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))
	prevSpace := true
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			prevSpace = false
			continue
		}
		if !prevSpace {
			b.WriteRune(' ')
			prevSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}

// franchiseStopWords are title tokens that distinguish editions and sequels
// of the same underlying work, not the work itself.
var franchiseStopWords = map[string]struct{}{
	"part": {}, "season": {}, "chapter": {}, "episode": {},
	"director": {}, "cut": {}, "edition": {}, "extended": {},
	"ultimate": {}, "movie": {}, "film": {},
}

// romanNumeral matches sequel-style roman numerals up to XXXIX. Restricted
// to i/v/x on purpose: allowing l/c/d/m would swallow ordinary words like
// "mix" and no franchise numbers its sequels past the thirties.
var romanNumeral = regexp.MustCompile(`^x{0,3}(ix|iv|v?i{0,3})$`)

var bareInteger = regexp.MustCompile(`^[0-9]+$`)

// FranchiseKey derives the grouping signature for a title: two items with
// the same non-empty key are editions/sequels of the same franchise.
// An empty key means "no identifying tokens left" and must be treated by
// callers as unique, never as a collision class.
func FranchiseKey(title string) string {
	tokens := strings.Fields(Normalize(title))
	kept := tokens[:0]
	for _, tok := range tokens {
		if _, stop := franchiseStopWords[tok]; stop {
			continue
		}
		if bareInteger.MatchString(tok) {
			continue
		}
		if romanNumeral.MatchString(tok) {
			continue
		}
		// single letters are possessive fragments ("director s") or
		// sequel markers, never identifying
		if len(tok) == 1 {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}

// blockedScripts are the non-Latin scripts we refuse to surface titles in.
// The check is conservative: one blocked character anywhere rejects the
// whole title even when Latin substrings are present.
var blockedScripts = []*unicode.RangeTable{
	unicode.Han,
	unicode.Hiragana,
	unicode.Katakana,
	unicode.Hangul,
	unicode.Arabic,
	unicode.Devanagari,
	unicode.Telugu,
	unicode.Tamil,
	unicode.Gurmukhi,
	unicode.Bengali,
	unicode.Thai,
	unicode.Tibetan,
	unicode.Cyrillic,
	unicode.Hebrew,
	unicode.Greek,
}

// ScriptAdmissible reports whether a title is displayable for our Latin
// audience: it needs at least one Latin letter and no character from any
// blocked script range.
func ScriptAdmissible(title string) bool {
	hasLatin := false
	for _, r := range title {
		for _, tbl := range blockedScripts {
			if unicode.Is(tbl, r) {
				return false
			}
		}
		if unicode.IsLetter(r) && unicode.Is(unicode.Latin, r) {
			hasLatin = true
		}
	}
	return hasLatin
}

// Slugify turns free text into a URL token: lowercase a-z0-9 runs joined by
// single dashes. Lossy; Unslug is only an approximate inverse.
func Slugify(s string) string {
	s = strings.ToLower(foldDiacritics(s))

	var b strings.Builder
	b.Grow(len(s))
	prevDash := true
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			prevDash = false
			continue
		}
		if !prevDash {
			b.WriteByte('-')
			prevDash = true
		}
	}
	return strings.Trim(b.String(), "-")
}

// Unslug recovers readable text from a slug. Punctuation is gone for good,
// so this is for display only, never for identity.
func Unslug(slug string) string {
	return strings.Join(strings.Split(slug, "-"), " ")
}
