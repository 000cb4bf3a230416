package analyzer

import (
	"cmp"
	"slices"
	"strings"

	"placementprep/internal/types"
)

// FallbackCategory is reported when a document matches no taxonomy keyword
const FallbackCategory = "General"

// FallbackSkill is the single keyword listed under FallbackCategory
const FallbackSkill = "General fresher stack"

// Category names used by the downstream rules
const (
	CategoryCoreCS    = "Core CS"
	CategoryLanguages = "Languages"
	CategoryWeb       = "Web"
	CategoryData      = "Data"
	CategoryCloud     = "Cloud/DevOps"
	CategoryTesting   = "Testing"
)

type category struct {
	name     string
	keywords []string
	// lowered holds the keywords lower-cased once at construction
	lowered []string
}

// Taxonomy is an ordered, read-only mapping from category to keywords.
// A Taxonomy is safe for concurrent use.
type Taxonomy struct {
	categories []category
}

var defaultTaxonomy = NewTaxonomy(
	types.CategoryMatch{Category: CategoryCoreCS, Skills: []string{
		"DSA", "Data Structures", "Algorithms", "OOP", "Object Oriented", "DBMS", "Database Management",
		"OS", "Operating Systems", "Networks", "Computer Networks", "System Design", "Distributed Systems",
	}},
	types.CategoryMatch{Category: CategoryLanguages, Skills: []string{
		"Java", "Python", "JavaScript", "JS", "TypeScript", "TS", "C++", "C#", "Go", "Golang",
		"Ruby", "Swift", "Kotlin", "Rust", "PHP",
	}},
	types.CategoryMatch{Category: CategoryWeb, Skills: []string{
		"React", "React.js", "Next.js", "Node", "Node.js", "Express", "Express.js", "Vue", "Angular",
		"HTML", "CSS", "REST", "GraphQL", "API", "Frontend", "Backend", "Full Stack",
	}},
	types.CategoryMatch{Category: CategoryData, Skills: []string{
		"SQL", "MySQL", "PostgreSQL", "Mongo", "MongoDB", "NoSQL", "Redis", "Cassandra", "Kafka",
		"Data Engineering", "ETL",
	}},
	types.CategoryMatch{Category: CategoryCloud, Skills: []string{
		"AWS", "Azure", "GCP", "Google Cloud", "Docker", "Kubernetes", "K8s", "Jenkins", "CI/CD",
		"DevOps", "Linux", "Bash", "Shell",
	}},
	types.CategoryMatch{Category: CategoryTesting, Skills: []string{
		"Selenium", "Cypress", "Playwright", "Jest", "Mocha", "JUnit", "PyTest", "Testing", "QA",
	}},
)

// DefaultTaxonomy returns the built-in skill taxonomy
func DefaultTaxonomy() *Taxonomy {
	return defaultTaxonomy
}

// NewTaxonomy builds a taxonomy from categories in the given order.
// Keywords repeated within a category are kept once.
func NewTaxonomy(categories ...types.CategoryMatch) *Taxonomy {
	t := &Taxonomy{categories: make([]category, 0, len(categories))}
	for _, c := range categories {
		cat := category{name: c.Category}
		seen := make(map[string]bool, len(c.Skills))
		for _, kw := range c.Skills {
			lower := strings.ToLower(kw)
			if kw == "" || seen[lower] {
				continue
			}
			seen[lower] = true
			cat.keywords = append(cat.keywords, kw)
			cat.lowered = append(cat.lowered, lower)
		}
		t.categories = append(t.categories, cat)
	}
	return t
}

// Categories returns the category names in order
func (t *Taxonomy) Categories() []string {
	names := make([]string, len(t.categories))
	for i, c := range t.categories {
		names[i] = c.name
	}
	return names
}

// Keywords returns a copy of the keywords listed for a category
func (t *Taxonomy) Keywords(name string) []string {
	for _, c := range t.categories {
		if c.name == name {
			return append([]string(nil), c.keywords...)
		}
	}
	return nil
}

// Extract returns the taxonomy keywords that occur as whole words or phrases
// in text, grouped by category in taxonomy order. An occurrence that lies
// strictly inside a longer matched keyword (node in node.js) does not count.
// When nothing matches the result holds only the fallback category.
func (t *Taxonomy) Extract(text string) types.ExtractedSkills {
	lower := strings.ToLower(text)

	found := make([][][]span, len(t.categories))
	var all []span
	for ci, c := range t.categories {
		found[ci] = make([][]span, len(c.lowered))
		for ki, kw := range c.lowered {
			spans := wordSpans(lower, kw)
			found[ci][ki] = spans
			all = append(all, spans...)
		}
	}
	cover := newSpanIndex(all)

	var matches []types.CategoryMatch
	for ci, c := range t.categories {
		var skills []string
		for ki, spans := range found[ci] {
			if slices.ContainsFunc(spans, func(s span) bool { return !cover.inside(s) }) {
				skills = append(skills, c.keywords[ki])
			}
		}
		if len(skills) > 0 {
			matches = append(matches, types.CategoryMatch{Category: c.name, Skills: skills})
		}
	}

	if len(matches) == 0 {
		return types.NewExtractedSkills(types.CategoryMatch{
			Category: FallbackCategory,
			Skills:   []string{FallbackSkill},
		})
	}
	return types.NewExtractedSkills(matches...)
}

// span is a byte range [start, end) of a keyword occurrence
type span struct {
	start, end int
}

func (s span) len() int { return s.end - s.start }

// spanIndex answers whether a span lies strictly inside a longer one
type spanIndex struct {
	spans  []span // sorted by start
	maxLen int
}

func newSpanIndex(spans []span) spanIndex {
	idx := spanIndex{spans: slices.Clone(spans)}
	slices.SortFunc(idx.spans, func(a, b span) int { return cmp.Compare(a.start, b.start) })
	for _, s := range spans {
		idx.maxLen = max(idx.maxLen, s.len())
	}
	return idx
}

func (idx spanIndex) inside(s span) bool {
	// A covering span starts no earlier than s.end-maxLen and no later than s.start.
	lo, _ := slices.BinarySearchFunc(idx.spans, s.end-idx.maxLen, func(o span, target int) int {
		return cmp.Compare(o.start, target)
	})
	for _, o := range idx.spans[lo:] {
		if o.start > s.start {
			break
		}
		if o.end >= s.end && o.len() > s.len() {
			return true
		}
	}
	return false
}

// containsWord reports whether kw occurs in text with a boundary on both
// sides. Both arguments are expected to be lower-cased already.
func containsWord(text, kw string) bool {
	_, ok := nextWord(text, kw, 0)
	return ok
}

// wordSpans returns every bounded occurrence of kw in text
func wordSpans(text, kw string) []span {
	var spans []span
	for from := 0; ; {
		s, ok := nextWord(text, kw, from)
		if !ok {
			return spans
		}
		spans = append(spans, s)
		from = s.start + 1
	}
}

func nextWord(text, kw string, from int) (span, bool) {
	if kw == "" {
		return span{}, false
	}
	for from+len(kw) <= len(text) {
		idx := strings.Index(text[from:], kw)
		if idx < 0 {
			return span{}, false
		}
		start := from + idx
		end := start + len(kw)
		if (start == 0 || !isWordByte(text[start-1])) && (end == len(text) || !isWordByte(text[end])) {
			return span{start: start, end: end}, true
		}
		from = start + 1
	}
	return span{}, false
}

func isWordByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}
