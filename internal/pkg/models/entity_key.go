package models

import (
	"strings"
	"time"
	"unicode"
)

// SameEntityThreshold is the minimum name similarity for two team names to be
// treated as the same club. Below it, a candidate keeps its own key.
const SameEntityThreshold = 0.8

// clubPrefixes are organizational prefixes stripped during normalization so
// "FC Barcelona" and "Barcelona" resolve to the same key. At most one leading
// prefix is removed.
var clubPrefixes = []string{
	"fc ", "afc ", "ssc ", "ac ", "ss ", "as ", "cf ", "cd ", "sc ", "rc ",
	"real ", "sporting ", "club ",
}

// NormalizeTeamName builds the canonical form of a team name: lower-case,
// punctuation stripped, one leading club prefix removed, whitespace collapsed,
// each remaining word title-cased.
//
// IMPORTANT: this assumes providers deliver names in the same language.
// It is a heuristic, not a guarantee; distinct clubs with near-identical
// names can still collide.
func NormalizeTeamName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	if s == "" {
		return ""
	}

	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	s = strings.Join(strings.Fields(b.String()), " ")

	for _, p := range clubPrefixes {
		if strings.HasPrefix(s, p) {
			s = strings.TrimSpace(s[len(p):])
			break
		}
	}

	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// TeamKey resolves a raw name to its entity key. Unresolvable names degrade to
// their trimmed literal form so that resolution never fails.
func TeamKey(name string) string {
	if k := NormalizeTeamName(name); k != "" {
		return k
	}
	return strings.TrimSpace(name)
}

// MatchKey identifies a match across providers by calendar date plus the
// normalized team names. The date (not the exact kickoff time) absorbs small
// timestamp disagreements between sources.
func MatchKey(date time.Time, homeTeam, awayTeam string) string {
	return date.UTC().Format("2006-01-02") + "|" + TeamKey(homeTeam) + "|" + TeamKey(awayTeam)
}

// NameSimilarity scores how alike two team names are: the length of their
// longest common substring divided by the average of the two lengths.
// Returns a value in [0, 1].
func NameSimilarity(name1, name2 string) float64 {
	if name1 == "" || name2 == "" {
		return 0
	}

	a := strings.ToLower(name1)
	b := strings.ToLower(name2)
	if a == b {
		return 1.0
	}

	ra := []rune(a)
	rb := []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	longest := 0
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				curr[j] = prev[j-1] + 1
				if curr[j] > longest {
					longest = curr[j]
				}
			} else {
				curr[j] = 0
			}
		}
		prev, curr = curr, prev
	}

	avg := float64(len(ra)+len(rb)) / 2
	if avg == 0 {
		return 0
	}
	return float64(longest) / avg
}
