package analyzer

import "placementprep/internal/types"

var (
	frontendKeywords = []string{"react", "react.js", "vue", "angular", "html", "css"}
	backendKeywords  = []string{"node", "node.js", "express", "express.js", "api"}
)

const (
	taskFrontend = "Revise React Lifecycle / Hooks / State Management"
	taskBackend  = "Review API Design, Auth, and Database normalization"
	taskGeneral  = "Review OOP principles and Design Patterns"
	taskOS       = "Revise OS concepts: Processes, Threads, Deadlocks"
	taskSQL      = "Practice SQL Queries (Joins, Aggregates)"
)

// GeneratePlan builds the seven day preparation plan. Days 5 and 6 depend on
// the extracted skills, the rest are fixed.
func GeneratePlan(skills types.ExtractedSkills) []types.DayPlan {
	day5 := []string{"Build/Review a mini-project"}
	switch {
	case skills.CategoryHasAny(CategoryWeb, frontendKeywords...):
		day5 = append(day5, taskFrontend)
	case skills.CategoryHasAny(CategoryWeb, backendKeywords...) || skills.Has(CategoryData):
		day5 = append(day5, taskBackend)
	default:
		day5 = append(day5, taskGeneral)
	}

	day6 := []string{"Mock Interview practice (Behavioral)"}
	if skills.Has(CategoryCoreCS) {
		day6 = append(day6, taskOS)
	}
	if skills.Has(CategoryData) {
		day6 = append(day6, taskSQL)
	}

	return []types.DayPlan{
		{Day: 1, Title: "Fundamentals Refresh", Tasks: []string{
			"Review Aptitude basics (Time/Work, Percentages)",
			"Brush up on Core CS concepts (OS, DBMS)",
		}},
		{Day: 2, Title: "Language Mastery", Tasks: []string{
			"Deep dive into your primary language features",
			"Practice basic list/string manipulation problems",
		}},
		{Day: 3, Title: "Data Structures", Tasks: []string{
			"Focus on Arrays, Linked Lists, and Stacks",
			"Solve 5 medium difficulty problems",
		}},
		{Day: 4, Title: "Algorithms & Logic", Tasks: []string{
			"Practice Sorting and Searching algorithms",
			"Solve problems involving Recursion",
		}},
		{Day: 5, Title: "Specialization & Projects", Tasks: day5},
		{Day: 6, Title: "Interview Simulation", Tasks: day6},
		{Day: 7, Title: "Final Polish", Tasks: []string{
			"Review resume and align with JD",
			"Relax and sleep well before the big day",
		}},
	}
}
