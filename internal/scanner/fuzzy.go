package scanner

import (
	"strings"
)

const (
	// DefaultFuzzyThreshold is the minimum similarity for a near-copy reflection
	DefaultFuzzyThreshold = 0.8

	// minFuzzyProbe skips fuzzy search for short probes, which match almost anything
	minFuzzyProbe = 8

	// maxFuzzyBody bounds the document size searched with the sliding window
	maxFuzzyBody = 256 * 1024
)

// FuzzyMatcher finds near-copies of a probe, e.g. a payload echoed with
// one attribute or a few characters stripped by the server
type FuzzyMatcher struct {
	threshold float64
}

// NewFuzzyMatcher creates a matcher with DefaultFuzzyThreshold
func NewFuzzyMatcher() *FuzzyMatcher {
	return &FuzzyMatcher{threshold: DefaultFuzzyThreshold}
}

// SetThreshold sets the similarity threshold; values outside (0, 1] are ignored
func (fm *FuzzyMatcher) SetThreshold(t float64) {
	if t > 0 && t <= 1.0 {
		fm.threshold = t
	}
}

// LevenshteinDistance returns the byte edit distance between s1 and s2
func LevenshteinDistance(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	// two rows are enough for the distance alone
	prev := make([]int, len(s2)+1)
	curr := make([]int, len(s2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(s1); i++ {
		curr[0] = i
		for j := 1; j <= len(s2); j++ {
			cost := 0
			if s1[i-1] != s2[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(s2)]
}

// SimilarityRatio returns 1 - distance/maxLen, in [0, 1]
func SimilarityRatio(s1, s2 string) float64 {
	maxLen := max(len(s1), len(s2))
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(LevenshteinDistance(s1, s2))/float64(maxLen)
}

// IsFuzzyMatch reports whether two strings are similar enough
func (fm *FuzzyMatcher) IsFuzzyMatch(original, reflected string) bool {
	return SimilarityRatio(original, reflected) >= fm.threshold
}

// FindFuzzyReflection slides a payload-sized window over body and returns the
// most similar window at or above the threshold, or "" and -1.
// Comparison is case-insensitive.
func (fm *FuzzyMatcher) FindFuzzyReflection(body, payload string) (string, int) {
	if len(payload) < minFuzzyProbe || len(body) < len(payload) || len(body) > maxFuzzyBody {
		return "", -1
	}

	lowerBody := strings.ToLower(body)
	lowerPayload := strings.ToLower(payload)

	if len(lowerBody) != len(body) || len(lowerPayload) != len(payload) {
		// case folding changed byte offsets
		lowerBody, lowerPayload = body, payload
	}

	if idx := strings.Index(lowerBody, lowerPayload); idx != -1 {
		return body[idx : idx+len(payload)], idx
	}

	bestMatch := ""
	bestIdx := -1
	bestRatio := 0.0

	for i := 0; i+len(payload) <= len(body); i++ {
		ratio := SimilarityRatio(lowerPayload, lowerBody[i:i+len(payload)])
		if ratio > bestRatio && ratio >= fm.threshold {
			bestRatio = ratio
			bestMatch = body[i : i+len(payload)]
			bestIdx = i
		}
	}

	return bestMatch, bestIdx
}
