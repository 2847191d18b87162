package evaluation

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/hbollon/go-edlib"
)

const (
	// DefaultThreshold is the minimum similarity (0-100) for a fuzzy match.
	DefaultThreshold = 80.0
	// DefaultFuzzyLimit caps fuzzy candidates per ground-truth name.
	DefaultFuzzyLimit = 3
)

// MatcherConfig tunes name matching.
type MatcherConfig struct {
	Threshold  float64 `json:"threshold" yaml:"threshold"`
	FuzzyLimit int     `json:"fuzzy_limit" yaml:"fuzzy_limit"`
}

// DefaultMatcherConfig returns threshold 80 and three fuzzy candidates.
func DefaultMatcherConfig() MatcherConfig {
	return MatcherConfig{Threshold: DefaultThreshold, FuzzyLimit: DefaultFuzzyLimit}
}

// Match pairs a ground-truth name with a predicted name.
type Match struct {
	GroundTruth string  `json:"ground_truth"`
	Predicted   string  `json:"predicted"`
	Score       float64 `json:"score"`
}

// MatchResult is a partial one-to-one mapping plus the names left over.
type MatchResult struct {
	Matches              []Match  `json:"matches"`
	UnmatchedGroundTruth []string `json:"unmatched_ground_truth"`
	UnmatchedPredicted   []string `json:"unmatched_predicted"`
}

// Mapping returns ground truth → predicted.
func (r MatchResult) Mapping() map[string]string {
	out := make(map[string]string, len(r.Matches))
	for _, m := range r.Matches {
		out[m.GroundTruth] = m.Predicted
	}
	return out
}

var parenthetical = regexp.MustCompile(`\s*\([^)]*\)`)

// normalizeName drops parenthetical suffixes such as "(she/her)" and lower-cases.
func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(parenthetical.ReplaceAllString(name, "")))
}

// TokenSortRatio scores two strings 0-100 after sorting their whitespace
// separated tokens: 200 * LCS / (len(a) + len(b)).
func TokenSortRatio(a, b string) float64 {
	a, b = sortTokens(a), sortTokens(b)
	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	if total == 0 {
		return 100
	}
	return 200 * float64(edlib.LCS(a, b)) / float64(total)
}

func sortTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// MatchNames aligns ground-truth names with predicted names.
//
// For each ground-truth name, every predicted name where one normalised name is a
// prefix of the other becomes a candidate at the threshold score, and the best
// FuzzyLimit predicted names by TokenSortRatio become candidates when they reach
// the threshold. Candidates are stably sorted by descending score, so ties keep
// generation order (ground-truth order, prefix candidates before fuzzy ones), and
// accepted greedily while both names are still free.
func MatchNames(groundTruth, predicted []string, cfg MatcherConfig) MatchResult {
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.FuzzyLimit <= 0 {
		cfg.FuzzyLimit = DefaultFuzzyLimit
	}

	predNorm := make([]string, len(predicted))
	for i, p := range predicted {
		predNorm[i] = normalizeName(p)
	}

	type scored struct {
		idx   int
		score float64
	}

	var candidates []Match
	for _, gt := range groundTruth {
		g := normalizeName(gt)
		// 只剩括号内容的名字无法比较
		if g == "" {
			continue
		}

		for i, p := range predNorm {
			if p == "" {
				continue
			}
			if strings.HasPrefix(g, p) || strings.HasPrefix(p, g) {
				candidates = append(candidates, Match{GroundTruth: gt, Predicted: predicted[i], Score: cfg.Threshold})
			}
		}

		ranked := make([]scored, 0, len(predNorm))
		for i, p := range predNorm {
			if p == "" {
				continue
			}
			ranked = append(ranked, scored{idx: i, score: TokenSortRatio(g, p)})
		}
		sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
		for k := 0; k < len(ranked) && k < cfg.FuzzyLimit; k++ {
			if ranked[k].score >= cfg.Threshold {
				candidates = append(candidates, Match{GroundTruth: gt, Predicted: predicted[ranked[k].idx], Score: ranked[k].score})
			}
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].Score > candidates[j].Score })

	var result MatchResult
	usedGT := make(map[string]bool, len(groundTruth))
	usedPred := make(map[string]bool, len(predicted))
	for _, c := range candidates {
		if usedGT[c.GroundTruth] || usedPred[c.Predicted] {
			continue
		}
		usedGT[c.GroundTruth] = true
		usedPred[c.Predicted] = true
		result.Matches = append(result.Matches, c)
	}

	for _, gt := range groundTruth {
		if !usedGT[gt] {
			result.UnmatchedGroundTruth = append(result.UnmatchedGroundTruth, gt)
			usedGT[gt] = true
		}
	}
	for _, p := range predicted {
		if !usedPred[p] {
			result.UnmatchedPredicted = append(result.UnmatchedPredicted, p)
			usedPred[p] = true
		}
	}
	return result
}
