package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
	"slices"
	"strings"
)

// CategoryMatch is one category together with the keywords matched for it
type CategoryMatch struct {
	Category string
	Skills   []string
}

// ExtractedSkills is an ordered, read-only mapping from category to matched
// keywords. Category order is the order the categories were supplied in.
type ExtractedSkills struct {
	order  []string
	skills map[string][]string
}

// NewExtractedSkills builds an ExtractedSkills value. Repeated categories are
// merged and repeated keywords within a category are dropped, keeping the
// first occurrence.
func NewExtractedSkills(matches ...CategoryMatch) ExtractedSkills {
	s := ExtractedSkills{skills: make(map[string][]string, len(matches))}
	for _, m := range matches {
		existing, seen := s.skills[m.Category]
		if !seen {
			s.order = append(s.order, m.Category)
			existing = []string{}
		}
		for _, skill := range m.Skills {
			if !slices.Contains(existing, skill) {
				existing = append(existing, skill)
			}
		}
		s.skills[m.Category] = existing
	}
	return s
}

// Len returns the number of categories
func (s ExtractedSkills) Len() int {
	return len(s.order)
}

// Categories returns category names in order
func (s ExtractedSkills) Categories() []string {
	return slices.Clone(s.order)
}

// Has reports whether the category is present
func (s ExtractedSkills) Has(category string) bool {
	_, ok := s.skills[category]
	return ok
}

// Skills returns the keywords matched for a category
func (s ExtractedSkills) Skills(category string) []string {
	return slices.Clone(s.skills[category])
}

// HasSkill reports whether any category holds the keyword, ignoring case
func (s ExtractedSkills) HasSkill(keyword string) bool {
	for _, skills := range s.skills {
		for _, skill := range skills {
			if strings.EqualFold(skill, keyword) {
				return true
			}
		}
	}
	return false
}

// CategoryHasAny reports whether the category holds any of the keywords, ignoring case
func (s ExtractedSkills) CategoryHasAny(category string, keywords ...string) bool {
	for _, skill := range s.skills[category] {
		for _, kw := range keywords {
			if strings.EqualFold(skill, kw) {
				return true
			}
		}
	}
	return false
}

// All iterates categories in order
func (s ExtractedSkills) All() iter.Seq2[string, []string] {
	return func(yield func(string, []string) bool) {
		for _, category := range s.order {
			if !yield(category, slices.Clone(s.skills[category])) {
				return
			}
		}
	}
}

// Flatten returns every keyword across categories in order
func (s ExtractedSkills) Flatten() []string {
	var out []string
	for _, category := range s.order {
		out = append(out, s.skills[category]...)
	}
	return out
}

// Equal reports whether both values hold the same categories and keywords in the same order
func (s ExtractedSkills) Equal(other ExtractedSkills) bool {
	if !slices.Equal(s.order, other.order) {
		return false
	}
	for _, category := range s.order {
		if !slices.Equal(s.skills[category], other.skills[category]) {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the mapping as an object whose keys keep category order
func (s ExtractedSkills) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, category := range s.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(category)
		if err != nil {
			return nil, err
		}
		skills := s.skills[category]
		if skills == nil {
			skills = []string{}
		}
		value, err := json.Marshal(skills)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object, keeping the document's key order
func (s *ExtractedSkills) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("extracted skills: %w", err)
	}
	if tok == nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("extracted skills: expected object, got %v", tok)
	}

	var matches []CategoryMatch
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("extracted skills: %w", err)
		}
		category, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("extracted skills: unexpected key %v", keyTok)
		}
		var skills []string
		if err := dec.Decode(&skills); err != nil {
			return fmt.Errorf("extracted skills: category %q: %w", category, err)
		}
		matches = append(matches, CategoryMatch{Category: category, Skills: skills})
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("extracted skills: %w", err)
	}

	*s = NewExtractedSkills(matches...)
	return nil
}
