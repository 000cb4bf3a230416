package analyzer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"placementprep/internal/types"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []types.CategoryMatch
	}{
		{
			name: "react node sql",
			text: "We need a React and Node.js developer with SQL experience",
			expected: []types.CategoryMatch{
				{Category: CategoryWeb, Skills: []string{"React", "Node.js"}},
				{Category: CategoryData, Skills: []string{"SQL"}},
			},
		},
		{
			name: "dotted token is one word",
			text: "NODE.JS",
			expected: []types.CategoryMatch{
				{Category: CategoryWeb, Skills: []string{"Node.js"}},
			},
		},
		{
			name: "dotted frameworks match their base keyword",
			text: "Looking for a Vue.js and Angular.js developer",
			expected: []types.CategoryMatch{
				{Category: CategoryLanguages, Skills: []string{"JS"}},
				{Category: CategoryWeb, Skills: []string{"Vue", "Angular"}},
			},
		},
		{
			name: "keywords inside a longer keyword are dropped",
			text: "Express.js and Next.js services",
			expected: []types.CategoryMatch{
				{Category: CategoryWeb, Skills: []string{"Next.js", "Express.js"}},
			},
		},
		{
			name: "standalone node still matches next to node.js",
			text: "Node.js, or plain Node",
			expected: []types.CategoryMatch{
				{Category: CategoryWeb, Skills: []string{"Node", "Node.js"}},
			},
		},
		{
			name: "go and python",
			text: "Experience with Go and Python",
			expected: []types.CategoryMatch{
				{Category: CategoryLanguages, Skills: []string{"Python", "Go"}},
			},
		},
		{
			name:     "go inside good does not match in a sentence",
			text:     "I am really good at this",
			expected: []types.CategoryMatch{{Category: FallbackCategory, Skills: []string{FallbackSkill}}},
		},
		{
			name: "sentence-final dot is a boundary",
			text: "Experience with Go.",
			expected: []types.CategoryMatch{
				{Category: CategoryLanguages, Skills: []string{"Go"}},
			},
		},
		{
			name:     "go inside good does not match",
			text:     "good communication",
			expected: []types.CategoryMatch{{Category: FallbackCategory, Skills: []string{FallbackSkill}}},
		},
		{
			name: "java inside javascript does not match",
			text: "Javascript",
			expected: []types.CategoryMatch{
				{Category: CategoryLanguages, Skills: []string{"JavaScript"}},
			},
		},
		{
			name: "metacharacters are literal",
			text: "c++ and C# with a CI/CD pipeline",
			expected: []types.CategoryMatch{
				{Category: CategoryLanguages, Skills: []string{"C++", "C#"}},
				{Category: CategoryCloud, Skills: []string{"CI/CD"}},
			},
		},
		{
			name: "multi word phrase",
			text: "Knowledge of system design and distributed systems",
			expected: []types.CategoryMatch{
				{Category: CategoryCoreCS, Skills: []string{"System Design", "Distributed Systems"}},
			},
		},
		{
			name: "taxonomy order not text order",
			text: "pytest, then Testing, then Python",
			expected: []types.CategoryMatch{
				{Category: CategoryLanguages, Skills: []string{"Python"}},
				{Category: CategoryTesting, Skills: []string{"PyTest", "Testing"}},
			},
		},
		{
			name:     "empty",
			text:     "",
			expected: []types.CategoryMatch{{Category: FallbackCategory, Skills: []string{FallbackSkill}}},
		},
		{
			name:     "whitespace",
			text:     " \n\t ",
			expected: []types.CategoryMatch{{Category: FallbackCategory, Skills: []string{FallbackSkill}}},
		},
		{
			name:     "symbols only",
			text:     "!!!@@@###$$$%%%^^^&&&***((()))",
			expected: []types.CategoryMatch{{Category: FallbackCategory, Skills: []string{FallbackSkill}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DefaultTaxonomy().Extract(tt.text)
			want := types.NewExtractedSkills(tt.expected...)
			assert.True(t, want.Equal(got), "want %v, got %v", want.Categories(), got.Categories())
		})
	}
}

func TestExtractFallbackIsExclusive(t *testing.T) {
	got := DefaultTaxonomy().Extract("Python")
	assert.False(t, got.Has(FallbackCategory))
	assert.Equal(t, []string{CategoryLanguages}, got.Categories())
}

func TestExtractHugeInput(t *testing.T) {
	text := strings.Repeat("lorem ipsum dolor ", 50000) + "kubernetes"
	got := DefaultTaxonomy().Extract(text)
	assert.Equal(t, []string{"Kubernetes"}, got.Skills(CategoryCloud))
}

func TestNewTaxonomyDropsRepeatedKeywords(t *testing.T) {
	tax := NewTaxonomy(types.CategoryMatch{Category: "Lang", Skills: []string{"Go", "go", "Rust", "Go"}})
	assert.Equal(t, []string{"Go", "Rust"}, tax.Keywords("Lang"))

	got := tax.Extract("go and rust and Go")
	assert.Equal(t, []string{"Go", "Rust"}, got.Skills("Lang"))
}

func TestDefaultTaxonomyOrder(t *testing.T) {
	assert.Equal(t, []string{
		CategoryCoreCS, CategoryLanguages, CategoryWeb, CategoryData, CategoryCloud, CategoryTesting,
	}, DefaultTaxonomy().Categories())
	assert.Nil(t, DefaultTaxonomy().Keywords("Missing"))
}

func TestContainsWord(t *testing.T) {
	tests := []struct {
		text string
		kw   string
		want bool
	}{
		{"go", "go", true},
		{"let's go!", "go", true},
		{"golang", "go", false},
		{"ago", "go", false},
		{"go_lang", "go", false},
		{"node.js", "node", true},
		{"node.js", "js", true},
		{"node.js", "node.js", true},
		{"vue.js", "vue", true},
		{"angular.js", "angular", true},
		{"node .js", "node", true},
		{"(react)", "react", true},
		{"react.", "react", true},
		{"c++11", "c++", false},
		{"pos pos os", "os", true},
		{"", "os", false},
		{"os", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.text+"/"+tt.kw, func(t *testing.T) {
			assert.Equal(t, tt.want, containsWord(tt.text, tt.kw))
		})
	}
}

func TestWordSpans(t *testing.T) {
	assert.Equal(t, []span{{0, 2}, {7, 9}}, wordSpans("go and go, golang", "go"))
	assert.Nil(t, wordSpans("golang", "go"))
}

func TestSpanIndexInside(t *testing.T) {
	idx := newSpanIndex([]span{{0, 4}, {0, 7}, {5, 7}, {12, 16}})
	assert.True(t, idx.inside(span{0, 4}))
	assert.True(t, idx.inside(span{5, 7}))
	assert.False(t, idx.inside(span{0, 7}), "a span is not inside itself")
	assert.False(t, idx.inside(span{12, 16}))
}

func BenchmarkExtract(b *testing.B) {
	text := strings.Repeat("We need a React and Node.js developer with SQL experience. ", 40)
	tax := DefaultTaxonomy()
	for b.Loop() {
		_ = tax.Extract(text)
	}
}

func TestExtractResultIsIndependent(t *testing.T) {
	got := DefaultTaxonomy().Extract("React")
	skills := got.Skills(CategoryWeb)
	require.Len(t, skills, 1)
	skills[0] = "changed"
	assert.Equal(t, []string{"React"}, got.Skills(CategoryWeb))
	assert.Equal(t, []string{"React"}, DefaultTaxonomy().Extract("React").Skills(CategoryWeb))
}
