// Package matcher scores approximate matches between drug names.
// Scores are in [0,100]; 100 is an exact match after folding.
package matcher

import (
	"math"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	tokenSortScale     = 0.95
	partialScale       = 0.9
	longPartialScale   = 0.6
	partialMinLength   = 3
	partialLengthRatio = 1.5
	longLengthRatio    = 8.0
)

// Fold lower-cases s, trims it, strips diacritics and collapses inner whitespace.
func Fold(s string) string {
	// transform.Chain keeps state, so it is built per call
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(stripMarks, strings.ToLower(s))
	if err != nil {
		folded = strings.ToLower(s)
	}
	return strings.Join(strings.Fields(folded), " ")
}

// Score compares two strings after folding them.
func Score(a, b string) float64 {
	return score(Fold(a), Fold(b))
}

// score compares two already folded strings.
// It takes the best of a plain ratio, a token-order independent ratio
// and, for strings of very different length, a best-window ratio.
func score(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 100
	}

	best := ratio(a, b)

	if strings.ContainsRune(a, ' ') || strings.ContainsRune(b, ' ') {
		best = math.Max(best, ratio(sortTokens(a), sortTokens(b))*tokenSortScale)
	}

	lenA, lenB := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	shorter, longer := min(lenA, lenB), max(lenA, lenB)
	if shorter >= partialMinLength && float64(longer)/float64(shorter) >= partialLengthRatio {
		scale := partialScale
		if float64(longer)/float64(shorter) >= longLengthRatio {
			scale = longPartialScale
		}
		best = math.Max(best, partialRatio(a, b)*scale)
	}

	return math.Round(best*100) / 100
}

// ratio is the normalized edit similarity of a and b
func ratio(a, b string) float64 {
	maxLen := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if maxLen == 0 {
		return 100
	}
	distance := levenshtein.ComputeDistance(a, b)
	return 100 * (1 - float64(distance)/float64(maxLen))
}

// partialRatio aligns the shorter string against every window of the longer one
func partialRatio(a, b string) float64 {
	shortRunes, longRunes := []rune(a), []rune(b)
	if len(shortRunes) > len(longRunes) {
		shortRunes, longRunes = longRunes, shortRunes
	}
	short := string(shortRunes)

	best := 0.0
	for start := 0; start+len(shortRunes) <= len(longRunes); start++ {
		r := ratio(short, string(longRunes[start:start+len(shortRunes)]))
		if r > best {
			best = r
			if best == 100 {
				break
			}
		}
	}
	return best
}

func sortTokens(s string) string {
	tokens := strings.Fields(s)
	slices.Sort(tokens)
	return strings.Join(tokens, " ")
}
