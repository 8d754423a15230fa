// Package views derives the visible subsets of the win collection. Every
// function is pure: inputs are never modified and results are fresh slices
// that keep the input order.
package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/winvault/internal/models"
)

// Scope selects personal or team-feed visibility.
type Scope string

const (
	ScopeAll  Scope = "all"
	ScopeMine Scope = "mine"
)

func ParseScope(s string) (Scope, error) {
	switch Scope(strings.ToLower(strings.TrimSpace(s))) {
	case ScopeAll, "feed", "":
		return ScopeAll, nil
	case ScopeMine:
		return ScopeMine, nil
	}
	return "", fmt.Errorf("unknown scope %q", s)
}

// Tab restricts the list to one team pool.
type Tab string

const (
	TabAll   Tab = "all"
	TabTeam1 Tab = "team1"
	TabTeam2 Tab = "team2"
)

func ParseTab(s string) (Tab, error) {
	norm := strings.NewReplacer(" ", "", "_", "", "-", "").Replace(strings.ToLower(s))
	switch Tab(norm) {
	case TabAll, "":
		return TabAll, nil
	case TabTeam1, "1":
		return TabTeam1, nil
	case TabTeam2, "2":
		return TabTeam2, nil
	}
	return "", fmt.Errorf("unknown tab %q", s)
}

func (t Tab) pool() (models.TeamPool, bool) {
	switch t {
	case TabTeam1:
		return models.Team1, true
	case TabTeam2:
		return models.Team2, true
	}
	return "", false
}

// Criteria is the full input of Filter. A nil Session means nobody is signed in.
type Criteria struct {
	Session *models.User
	Scope   Scope
	Tab     Tab
}

// Filter applies the scope filter and then the tab filter.
//
// With ScopeMine and a session, a win is kept when the session user authored
// it or is listed as a collaborator. Otherwise only submitted wins are kept,
// plus the session user's own wins in any status so drafts stay visible to
// their author.
func Filter(wins []models.Win, c Criteria) []models.Win {
	out := make([]models.Win, 0, len(wins))
	pool, byTeam := c.Tab.pool()

	for _, w := range wins {
		if !inScope(w, c) {
			continue
		}
		if byTeam && w.Team != pool {
			continue
		}
		out = append(out, w.Clone())
	}
	return out
}

func inScope(w models.Win, c Criteria) bool {
	own := c.Session != nil && w.UserID == c.Session.ID
	if c.Scope == ScopeMine && c.Session != nil {
		return own || w.HasCollaborator(c.Session.Name)
	}
	return w.Status == models.StatusSubmitted || own
}

// MonthSubmitted returns the submitted wins of the given YYYY-MM month.
func MonthSubmitted(wins []models.Win, month string) []models.Win {
	out := make([]models.Win, 0)
	for _, w := range wins {
		if w.Month == month && w.Status == models.StatusSubmitted {
			out = append(out, w.Clone())
		}
	}
	return out
}

// CurrentMonth is the UTC YYYY-MM bucket of now.
func CurrentMonth(now time.Time) string {
	return models.MonthOf(now)
}

// Heading is the list title shown for c.
func Heading(c Criteria) string {
	if c.Scope == ScopeMine {
		return "Personal Archive"
	}
	switch c.Tab {
	case TabTeam1:
		return "Team 1 Sector"
	case TabTeam2:
		return "Team 2 Sector"
	default:
		return "Consolidated Sector"
	}
}
