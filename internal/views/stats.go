package views

import "github.com/dmitrijs2005/winvault/internal/models"

// QuarterlyGoal is the number of logged wins that fills the velocity bar.
const QuarterlyGoal = 50

// VelocityStats is the quarterly progress summary.
type VelocityStats struct {
	Logged  int
	Goal    int
	Percent float64
}

// Velocity counts every logged win against QuarterlyGoal, capped at 100%.
func Velocity(wins []models.Win) VelocityStats {
	pct := float64(len(wins)) / QuarterlyGoal * 100
	return VelocityStats{Logged: len(wins), Goal: QuarterlyGoal, Percent: min(100, pct)}
}

// Breakdown counts wins per OKR category in canonical order, omitting
// categories with no wins.
func Breakdown(wins []models.Win) []models.CategoryCount {
	counts := make(map[models.OKRCategory]int, len(models.OKRCategories))
	for _, w := range wins {
		counts[w.OKRCategory]++
	}
	out := make([]models.CategoryCount, 0, len(counts))
	for _, c := range models.OKRCategories {
		if n := counts[c]; n > 0 {
			out = append(out, models.CategoryCount{Category: c, Count: n})
		}
	}
	return out
}
