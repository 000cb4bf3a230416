package analyzer

import (
	"strings"
	"unicode/utf8"

	"placementprep/internal/types"
)

const (
	baseScore          = 35
	categoryBonus      = 5
	maxCategoryBonus   = 30
	metadataBonus      = 10
	longDocumentBonus  = 10
	longDocumentLength = 800

	knownDelta         = 2
	needsPracticeDelta = -2
)

// Score bands reported alongside a score
const (
	BandStrong   = "strong"
	BandModerate = "moderate"
	BandLow      = "low"
)

// Score computes the readiness score for a document. The fallback category
// does not count towards the category bonus.
func Score(text, company, role string, skills types.ExtractedSkills) int {
	score := baseScore

	categories := 0
	for name := range skills.All() {
		if name != FallbackCategory {
			categories++
		}
	}
	score += min(maxCategoryBonus, categories*categoryBonus)

	if runeLen(company) > 1 {
		score += metadataBonus
	}
	if runeLen(role) > 1 {
		score += metadataBonus
	}
	if runeLen(text) > longDocumentLength {
		score += longDocumentBonus
	}

	return clamp(score)
}

// AdjustedScore applies the confidence deltas to a base score. Values other
// than known and needs-practice are ignored. The base is clamped before the
// deltas are applied.
func AdjustedScore(base int, confidence types.SkillConfidenceMap) int {
	delta := 0
	for _, c := range confidence {
		switch c {
		case types.ConfidenceKnown:
			delta += knownDelta
		case types.ConfidenceNeedsPractice:
			delta += needsPracticeDelta
		}
	}
	return clamp(clamp(base) + delta)
}

// ScoreBand buckets a score for display
func ScoreBand(score int) string {
	switch {
	case score >= 70:
		return BandStrong
	case score >= 40:
		return BandModerate
	default:
		return BandLow
	}
}

func runeLen(s string) int {
	return utf8.RuneCountInString(strings.TrimSpace(s))
}

func clamp(score int) int {
	return max(0, min(100, score))
}
