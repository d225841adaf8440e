package detect

import (
	"sort"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/kzcompliance/offshore-radar/internal/model"
)

// Matching cascade similarities.
const (
	substringSimilarity = 1.0
	tokenSimilarity     = 0.95

	// DefaultThreshold is the minimum similarity retained as a match.
	DefaultThreshold = 0.80

	// Inputs longer than this are compared token-wise instead of as whole
	// strings; whole-string edit distance between a long free-text phrase
	// and a short jurisdiction name is meaningless.
	longInputLimit = 20

	// MaxMatches caps the number of signals returned per call.
	MaxMatches = 5
)

// diacriticStripper removes combining marks after NFD decomposition.
var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Matcher performs fuzzy matching of free-text fields against a fixed list
// of jurisdiction candidate names.
type Matcher struct {
	threshold float64
}

// NewMatcher creates a matcher with the given similarity threshold.
// A non-positive threshold falls back to the default.
func NewMatcher(threshold float64) *Matcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Matcher{threshold: threshold}
}

// Normalize lowercases the input, strips diacritics and punctuation, and
// collapses whitespace.
func Normalize(s string) string {
	if stripped, _, err := transform.String(diacriticStripper, s); err == nil {
		s = stripped
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Match returns the fuzzy matches of value against the candidate names,
// ordered by similarity descending (ties keep candidate order) and capped at
// MaxMatches. Each signal is tagged with the given source field name.
func (m *Matcher) Match(field, value string, candidates []string) []model.MatchSignal {
	input := Normalize(value)
	if input == "" {
		return nil
	}

	var matches []model.MatchSignal
	for _, candidate := range candidates {
		target := Normalize(candidate)
		if target == "" {
			continue
		}

		similarity, ok := m.score(input, target)
		if !ok || similarity < m.threshold {
			continue
		}
		matches = append(matches, model.MatchSignal{
			Field:        field,
			Jurisdiction: candidate,
			Similarity:   similarity,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	if len(matches) > MaxMatches {
		matches = matches[:MaxMatches]
	}
	return matches
}

// score applies the matching cascade: substring containment, exact token
// match, then edit-distance similarity (token-wise for long inputs). The
// second return value is false when no comparison was possible.
func (m *Matcher) score(input, target string) (float64, bool) {
	if strings.Contains(input, target) || strings.Contains(target, input) {
		return substringSimilarity, true
	}

	inputTokens := strings.Fields(input)
	targetTokens := strings.Fields(target)
	for _, it := range inputTokens {
		for _, tt := range targetTokens {
			if it == tt {
				return tokenSimilarity, true
			}
		}
	}

	if len(input) > longInputLimit {
		best := 0.0
		found := false
		for _, it := range inputTokens {
			for _, tt := range targetTokens {
				if sim, ok := editSimilarity(it, tt); ok {
					found = true
					if sim > best {
						best = sim
					}
				}
			}
		}
		return best, found
	}

	return editSimilarity(input, target)
}

// editSimilarity is 1 - levenshtein/maxLen. Both strings empty yields no
// comparison; the empty-input check upstream should already exclude it, but
// the guard stays to rule out a division by zero.
func editSimilarity(a, b string) (float64, bool) {
	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return 0, false
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(dist)/float64(maxLen), true
}
