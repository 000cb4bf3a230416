package analyzer

import (
	"strings"

	"placementprep/internal/types"
)

// Company archetypes
const (
	CompanyTypeEnterprise = "Enterprise / Service-Based"
	CompanyTypeStartup    = "Startup / Product-Based"
	CompanyTypeUnknown    = "Unknown"
)

var enterpriseEmployers = []string{
	"infosys", "tcs", "wipro", "amazon", "google", "microsoft", "oracle", "ibm",
	"capgemini", "accenture", "deloitte", "cognizant", "tech mahindra", "hcl",
}

var (
	unknownIntel = types.CompanyIntel{
		Type:  CompanyTypeUnknown,
		Size:  "Unknown",
		Focus: "General Competency",
		Color: "gray",
	}
	enterpriseIntel = types.CompanyIntel{
		Type:  CompanyTypeEnterprise,
		Size:  "Large (2000+)",
		Focus: "Strong fundamentals in Aptitude, Core CS (OS/DBMS), and standard DSA. Expect consistent, established interview patterns.",
		Color: "blue",
	}
	startupIntel = types.CompanyIntel{
		Type:  CompanyTypeStartup,
		Size:  "Mid-size or Startup (<2000)",
		Focus: "Practical problem solving, development skills (Projects), and system design. Expect adaptibility and culture fit checks.",
		Color: "purple",
	}
)

// ClassifyCompany maps a company name onto a hiring archetype using substring
// containment against the known enterprise employers.
func ClassifyCompany(name string) types.CompanyIntel {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return unknownIntel
	}

	lower := strings.ToLower(trimmed)
	for _, employer := range enterpriseEmployers {
		if strings.Contains(lower, employer) {
			return enterpriseIntel
		}
	}
	return startupIntel
}

// IsEnterprise reports whether a company type string names the enterprise archetype
func IsEnterprise(companyType string) bool {
	return strings.Contains(companyType, "Enterprise")
}

// IntelColor returns the presentation tag for a company type string
func IntelColor(companyType string) string {
	switch {
	case IsEnterprise(companyType):
		return enterpriseIntel.Color
	case companyType == CompanyTypeStartup:
		return startupIntel.Color
	default:
		return unknownIntel.Color
	}
}
