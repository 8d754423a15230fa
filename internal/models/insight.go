package models

// Insight is the monthly "wrapped" narrative.
type Insight struct {
	MonthTitle    string   `json:"monthTitle"`
	ImpactSummary string   `json:"impactSummary"`
	TeamInsight   string   `json:"teamInsight"`
	TopStrengths  []string `json:"topStrengths"`
}

// CategoryCount is one bar of the OKR breakdown.
type CategoryCount struct {
	Category OKRCategory
	Count    int
}
