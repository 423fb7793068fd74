package textnorm

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"The Matrix", "the matrix"},
		{"Amélie", "amelie"},
		{"  Spider-Man:   Homecoming!  ", "spider man homecoming"},
		{"WALL·E", "wall e"},
		{"", ""},
		{"...", ""},
		{"Blade Runner 2049", "blade runner 2049"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Normalize(c.in), "Normalize(%q)", c.in)
	}
}

// Normalize and Slugify run on concurrent request goroutines, so the
// diacritics fold must not share mutable state between calls. Run with
// -race to catch regressions.
func TestNormalizeConcurrent(t *testing.T) {
	const in = "Amélie à Montréal — Édition Spéciale"
	want := Normalize(in)
	wantSlug := Slugify(in)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				assert.Equal(t, want, Normalize(in))
				assert.Equal(t, wantSlug, Slugify(in))
			}
		}()
	}
	wg.Wait()
}

func TestFranchiseKey(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Dune Part Two (Director's Cut)", "dune two"},
		{"Dune", "dune"},
		{"Rocky II", "rocky"},
		{"Rocky", "rocky"},
		{"Toy Story 2", "toy story"},
		{"The Godfather Part III", "the godfather"},
		{"Blade Runner: The Final Cut", "blade runner the final"},
		{"Season 3", ""}, // nothing identifying left
		{"2012", ""},
		{"Harry Potter and the Chamber of Secrets", "harry potter and the chamber of secrets"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, FranchiseKey(c.in), "FranchiseKey(%q)", c.in)
	}
}

func TestFranchiseKeySameFranchise(t *testing.T) {
	a := FranchiseKey("Rocky II")
	b := FranchiseKey("Rocky IV (Ultimate Director's Cut)")
	assert.Equal(t, "rocky", a)
	assert.Equal(t, a, b)
}

func TestScriptAdmissible(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"The Matrix", true},
		{"Movie 2024", true},
		{"2024", false},       // no Latin letter
		{"ワンピース", false},      // pure Katakana
		{"進撃の巨人", false},      // CJK
		{"One Piece ワンピース", false}, // mixed still rejected
		{"Война и мир", false}, // Cyrillic
		{"שלום", false},        // Hebrew
		{"Το Χαμόγελο", false}, // Greek
		{"Amélie", true},       // Latin with diacritics stays admissible
		{"", false},
		{"!!!", false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ScriptAdmissible(c.in), "ScriptAdmissible(%q)", c.in)
	}
}

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"The Matrix", "the-matrix"},
		{"Spider-Man: Homecoming", "spider-man-homecoming"},
		{"Amélie", "amelie"},
		{"  --weird--  input  ", "weird-input"},
		{"", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Slugify(c.in), "Slugify(%q)", c.in)
	}
}

func TestUnslugIsApproximateInverse(t *testing.T) {
	assert.Equal(t, "the matrix", Unslug(Slugify("The Matrix!")))
}
