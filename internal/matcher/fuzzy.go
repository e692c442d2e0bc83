// Package matcher resolves base join-key values to reference key values by
// normalized string similarity.
//
// Scores are on a 0-100 scale. Both sides go through default preprocessing
// (case folding, punctuation and whitespace normalization) before scoring.
// The weighted score is the best of the full ratio, the token-sort ratio and
// a slightly discounted partial ratio, which tolerates case, punctuation and
// token-order variants while rejecting unrelated keys.
package matcher

import (
	"sort"
	"strings"
	"unicode"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// DefaultScoreCutoff is the minimum weighted score for a candidate to be
// accepted as a match.
const DefaultScoreCutoff = 60.0

// NoMatchSentinel is the join key assigned to base values with no accepted
// candidate. It is distinct from any real key so unmatched values never
// spuriously join through null-key ambiguity.
const NoMatchSentinel = "No Match"

// partialDiscount scales the partial ratio so substring hits rank below
// equally strong full-string hits.
const partialDiscount = 0.9

// Matcher scores candidate keys and builds fuzzy join-key mappings.
type Matcher struct {
	// ScoreCutoff is the minimum acceptance score (0-100).
	ScoreCutoff float64
}

// NewMatcher returns a matcher with the default cutoff.
func NewMatcher() *Matcher {
	return &Matcher{ScoreCutoff: DefaultScoreCutoff}
}

// preprocess applies default text normalization: lower-case, replace every
// non-alphanumeric rune with a space, collapse runs of spaces, trim.
func preprocess(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastSpace := true
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastSpace = false
		} else if !lastSpace {
			b.WriteRune(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}

// ratioOptions price a substitution as a delete plus an insert, so the
// ratio matches the classic sequence-matcher formula 2M/(len(a)+len(b)).
var ratioOptions = levenshtein.Options{
	InsCost: 1,
	DelCost: 1,
	SubCost: 2,
	Matches: levenshtein.IdenticalRunes,
}

// fullRatio is the normalized edit-distance similarity of two strings on a
// 0-100 scale.
func fullRatio(a, b string) float64 {
	if a == b {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}
	return levenshtein.RatioForStrings([]rune(a), []rune(b), ratioOptions) * 100
}

// tokenSortRatio compares the two strings with their tokens sorted, so token
// order does not matter.
func tokenSortRatio(a, b string) float64 {
	return fullRatio(sortTokens(a), sortTokens(b))
}

func sortTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// partialRatio slides the shorter string across the longer one and returns
// the best window similarity.
func partialRatio(a, b string) float64 {
	shorter, longer := []rune(a), []rune(b)
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if len(shorter) == 0 {
		return 0
	}
	if len(shorter) == len(longer) {
		return fullRatio(string(shorter), string(longer))
	}

	best := 0.0
	for i := 0; i+len(shorter) <= len(longer); i++ {
		window := string(longer[i : i+len(shorter)])
		if r := fullRatio(string(shorter), window); r > best {
			best = r
			if best == 100 {
				break
			}
		}
	}
	return best
}

// Score returns the weighted similarity of two raw values on a 0-100 scale.
func (m *Matcher) Score(a, b string) float64 {
	pa, pb := preprocess(a), preprocess(b)
	if pa == "" || pb == "" {
		return 0
	}

	score := fullRatio(pa, pb)
	if ts := tokenSortRatio(pa, pb); ts > score {
		score = ts
	}
	if pr := partialRatio(pa, pb) * partialDiscount; pr > score {
		score = pr
	}
	return score
}

// BestMatch returns the candidate with the highest weighted score, provided
// it reaches the cutoff. Ties keep the earlier candidate.
func (m *Matcher) BestMatch(value string, candidates []string) (string, float64, bool) {
	cutoff := m.ScoreCutoff
	if cutoff <= 0 {
		cutoff = DefaultScoreCutoff
	}

	best := ""
	bestScore := 0.0
	found := false
	for _, c := range candidates {
		score := m.Score(value, c)
		if score >= cutoff && score > bestScore {
			best, bestScore, found = c, score, true
		}
	}
	return best, bestScore, found
}

// BuildKeyMap resolves each distinct base value to its best-scoring
// reference value, computed once per distinct value rather than once per
// row. Base values with no accepted candidate map to NoMatchSentinel.
func (m *Matcher) BuildKeyMap(baseValues, refValues []string) map[string]string {
	out := make(map[string]string, len(baseValues))
	for _, v := range baseValues {
		if _, seen := out[v]; seen {
			continue
		}
		if match, _, ok := m.BestMatch(v, refValues); ok {
			out[v] = match
		} else {
			out[v] = NoMatchSentinel
		}
	}
	return out
}
