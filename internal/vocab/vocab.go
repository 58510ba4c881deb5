// Package vocab scores player writing against the Academic Word List.
// Words are tiered by AWL sublist; each word awards XP once per character,
// ever.
package vocab

import (
	"regexp"
	"sort"
	"strings"
)

// XP awarded for a newly learned word, by sublist tier.
const (
	xpCommon      = 3  // sublists 1-3
	xpMedium      = 5  // sublists 4-7
	xpChallenging = 10 // sublists 8-10
)

// Strip punctuation but keep intra-word hyphens.
var cleanRe = regexp.MustCompile(`[^\w\s-]`)

// XPFor returns the XP value of one AWL headword, or 0 for non-AWL words.
func XPFor(word string) int {
	sublist, ok := awlWords[word]
	if !ok {
		return 0
	}
	switch {
	case sublist <= 3:
		return xpCommon
	case sublist <= 7:
		return xpMedium
	default:
		return xpChallenging
	}
}

// Known reports whether a word is an AWL headword.
func Known(word string) bool {
	_, ok := awlWords[word]
	return ok
}

// Score scans raw player input for AWL headwords the player has not been
// credited for yet. It returns the XP earned and the newly found words in
// sorted order. The learned set is not modified; callers decide when to
// commit the new words.
func Score(input string, learned map[string]bool) (int, []string) {
	if strings.TrimSpace(input) == "" {
		return 0, nil
	}

	cleaned := cleanRe.ReplaceAllString(strings.ToLower(input), "")
	seen := map[string]bool{}
	total := 0
	var found []string
	for _, word := range strings.Fields(cleaned) {
		if seen[word] {
			continue
		}
		seen[word] = true
		if learned[word] {
			continue
		}
		if xp := XPFor(word); xp > 0 {
			total += xp
			found = append(found, word)
		}
	}
	sort.Strings(found)
	return total, found
}
