package analyzer

import (
	"slices"

	"placementprep/internal/types"
)

// MaxQuestions caps the question bank
const MaxQuestions = 10

var openingQuestions = []string{
	"Tell me about a project you are most proud of.",
	"Why do you want to join our company?",
}

var genericQuestions = []string{
	"Explain the difference between Process and Thread.",
	"What is ACID property in databases?",
	"Explain standard HTTP methods (GET, POST, PUT, DELETE).",
	"How does a hash map work?",
	"Explain the concept of Polymorphism.",
}

type questionTrigger struct {
	matches  func(types.ExtractedSkills) bool
	question string
}

func anySkill(keywords ...string) func(types.ExtractedSkills) bool {
	return func(s types.ExtractedSkills) bool {
		for _, kw := range keywords {
			if s.HasSkill(kw) {
				return true
			}
		}
		return false
	}
}

func hasCategory(name string) func(types.ExtractedSkills) bool {
	return func(s types.ExtractedSkills) bool {
		return s.Has(name)
	}
}

// Evaluated in order; each firing trigger contributes one question.
var questionTriggers = []questionTrigger{
	{anySkill("react", "react.js"), "Explain the Virtual DOM and how React handles updates."},
	{anySkill("node", "node.js"), "How does the Event Loop work in Node.js?"},
	{func(s types.ExtractedSkills) bool { return s.HasSkill("sql") || s.Has(CategoryData) },
		"Explain Indexing in databases. When does it fail?"},
	{anySkill("java"), "Explain the difference between JDK, JRE, and JVM."},
	{anySkill("python"), "How is memory managed in Python? Explain garbage collection."},
	{hasCategory(CategoryCoreCS), "What is a Deadlock? What are the necessary conditions for it?"},
	{hasCategory(CategoryCloud), "What is the difference between Docker and a Virtual Machine?"},
	{anySkill("javascript", "js"), "Explain Closures and Hoisting with examples."},
}

// GenerateQuestions builds the interview question bank: the openers, one
// question per firing skill trigger, then generic questions up to MaxQuestions.
func GenerateQuestions(skills types.ExtractedSkills) []string {
	questions := slices.Clone(openingQuestions)

	for _, trigger := range questionTriggers {
		if trigger.matches(skills) && !slices.Contains(questions, trigger.question) {
			questions = append(questions, trigger.question)
		}
	}

	for _, q := range genericQuestions {
		if len(questions) >= MaxQuestions {
			break
		}
		if !slices.Contains(questions, q) {
			questions = append(questions, q)
		}
	}

	if len(questions) > MaxQuestions {
		questions = questions[:MaxQuestions]
	}
	return questions
}
