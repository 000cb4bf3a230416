package types

import "maps"

// Confidence is a user's self-assessment for one skill
type Confidence string

const (
	ConfidenceKnown         Confidence = "known"
	ConfidenceNeedsPractice Confidence = "needs-practice"
)

// Valid reports whether c is one of the known confidence values
func (c Confidence) Valid() bool {
	return c == ConfidenceKnown || c == ConfidenceNeedsPractice
}

// SkillConfidenceMap maps a skill keyword to the user's confidence in it
type SkillConfidenceMap map[string]Confidence

// Clone returns an independent copy; a nil map clones to an empty one
func (m SkillConfidenceMap) Clone() SkillConfidenceMap {
	out := make(SkillConfidenceMap, len(m))
	maps.Copy(out, m)
	return out
}

// ToggleSkill returns a new map with the skill flipped: a skill that is absent
// or marked needs-practice becomes known, a known skill becomes needs-practice.
// The input map is left untouched.
func ToggleSkill(current SkillConfidenceMap, skill string) SkillConfidenceMap {
	next := current.Clone()
	if current[skill] == ConfidenceKnown {
		next[skill] = ConfidenceNeedsPractice
	} else {
		next[skill] = ConfidenceKnown
	}
	return next
}
