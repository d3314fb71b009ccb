// Package detect finds recurring subscriptions in a single statement's
// worth of transactions: it clusters transactions by fuzzy merchant-name
// similarity, picks a dominant charge amount per cluster, and classifies
// the charge cadence from the gaps between occurrences.
package detect

import (
	"regexp"
	"strings"
)

var (
	nonWordChars = regexp.MustCompile(`[^\w\s]`)
	spaceRuns    = regexp.MustCompile(`\s+`)
)

// NormalizeMerchant reduces a merchant name to its canonical grouping key:
// punctuation becomes spaces, whitespace collapses, result is lower-cased.
// Idempotent, and used both for similarity scoring and as the persisted
// (user, merchant) natural key.
func NormalizeMerchant(name string) string {
	s := nonWordChars.ReplaceAllString(name, " ")
	s = spaceRuns.ReplaceAllString(s, " ")
	return strings.ToLower(strings.TrimSpace(s))
}

// Similarity scores two merchant strings in [0,1] using edit distance over
// their normalized forms: identical keys score 1, an empty key scores 0,
// otherwise 1 - distance/maxLen. Symmetric in its arguments.
func Similarity(a, b string) float64 {
	na := NormalizeMerchant(a)
	nb := NormalizeMerchant(b)
	if na == nb {
		return 1
	}
	if len(na) == 0 || len(nb) == 0 {
		return 0
	}

	dist := levenshtein(na, nb)
	maxLen := len(na)
	if len(nb) > maxLen {
		maxLen = len(nb)
	}
	return 1 - float64(dist)/float64(maxLen)
}

// levenshtein computes classic edit distance with unit costs for
// insertion, deletion and substitution.
func levenshtein(a, b string) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
