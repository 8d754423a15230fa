package models

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/winvault/internal/common"
)

// OKRCategory is the strategic alignment tag of a win.
type OKRCategory string

const (
	OKRGrowth     OKRCategory = "Growth"
	OKREfficiency OKRCategory = "Efficiency"
	OKRInnovation OKRCategory = "Innovation"
	OKRCulture    OKRCategory = "Culture"
	OKRRevenue    OKRCategory = "Revenue"
)

// OKRCategories lists the categories in canonical order.
var OKRCategories = []OKRCategory{OKRGrowth, OKREfficiency, OKRInnovation, OKRCulture, OKRRevenue}

// ParseOKR accepts a category name in any letter case.
func ParseOKR(s string) (OKRCategory, error) {
	for _, c := range OKRCategories {
		if strings.EqualFold(string(c), strings.TrimSpace(s)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", common.ErrInvalidOKR, s)
}

// TeamPool is the organizational scope of a user or a win.
type TeamPool string

const (
	Team1    TeamPool = "Team 1"
	Team2    TeamPool = "Team 2"
	Director TeamPool = "Director"
)

var TeamPools = []TeamPool{Team1, Team2, Director}

// ParseTeam accepts "Team 1", "team1", "TEAM_1" and the like.
func ParseTeam(s string) (TeamPool, error) {
	norm := strings.NewReplacer(" ", "", "_", "", "-", "").Replace(strings.ToLower(s))
	for _, t := range TeamPools {
		if strings.ReplaceAll(strings.ToLower(string(t)), " ", "") == norm {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", common.ErrInvalidTeam, s)
}

// WinStatus is the visibility/finality of a win.
type WinStatus string

const (
	StatusDraft     WinStatus = "Draft"
	StatusSubmitted WinStatus = "Submitted"
)

func ParseStatus(s string) (WinStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "draft":
		return StatusDraft, nil
	case "submitted", "submit":
		return StatusSubmitted, nil
	}
	return "", fmt.Errorf("%w: %q", common.ErrInvalidStatus, s)
}

// Theme is the display theme preference.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// DefaultTheme is used when nothing valid is persisted.
const DefaultTheme = ThemeDark

func (t Theme) Valid() bool {
	return t == ThemeDark || t == ThemeLight
}

// Toggle returns the opposite theme.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}
