package models

import (
	"fmt"
	"slices"
	"time"
)

// MonthLayout is the layout of the Win.Month bucket.
const MonthLayout = "2006-01"

// MonthOf returns the UTC year-month bucket of t.
func MonthOf(t time.Time) string {
	return t.UTC().Format(MonthLayout)
}

// Artifact is a named link attached to a win.
type Artifact struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Win is one recorded achievement.
type Win struct {
	ID            string      `json:"id"`
	Title         string      `json:"title"`
	Description   string      `json:"description"`
	Impact        string      `json:"impact"`
	OKRCategory   OKRCategory `json:"okrCategory"`
	Team          TeamPool    `json:"team"`
	Collaborators []string    `json:"collaborators"`
	Artifacts     []Artifact  `json:"artifacts"`
	Status        WinStatus   `json:"status"`
	UserID        string      `json:"userId"`
	UserName      string      `json:"userName"`
	CreatedAt     time.Time   `json:"createdAt"`
	Month         string      `json:"month"`
}

// HasCollaborator reports whether name is listed as a collaborator.
func (w Win) HasCollaborator(name string) bool {
	return slices.Contains(w.Collaborators, name)
}

// Clone returns a deep copy so callers cannot alias the slices.
func (w Win) Clone() Win {
	w.Collaborators = slices.Clone(w.Collaborators)
	w.Artifacts = slices.Clone(w.Artifacts)
	return w
}

func (w Win) String() string {
	return fmt.Sprintf("%s [%s] %s (%s, %s) by %s", w.ID, w.Status, w.Title, w.OKRCategory, w.Team, w.UserName)
}

// WinPatch is a partial update of a Win. A nil field means "keep the current
// value"; a non-nil field replaces it, even with an equal or empty value.
// ID selects the record to update; an empty ID means create.
type WinPatch struct {
	ID            string
	Title         *string
	Description   *string
	Impact        *string
	OKRCategory   *OKRCategory
	Team          *TeamPool
	Collaborators *[]string
	Artifacts     *[]Artifact
	Status        *WinStatus
	CreatedAt     *time.Time
	Month         *string
}

// IsUpdate reports whether the patch targets an existing record.
func (p WinPatch) IsUpdate() bool {
	return p.ID != ""
}

// Apply returns a copy of w with every supplied field of p merged over it.
// ID, UserID and UserName are never touched by a patch.
func (w Win) Apply(p WinPatch) Win {
	out := w.Clone()
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.Impact != nil {
		out.Impact = *p.Impact
	}
	if p.OKRCategory != nil {
		out.OKRCategory = *p.OKRCategory
	}
	if p.Team != nil {
		out.Team = *p.Team
	}
	if p.Collaborators != nil {
		out.Collaborators = slices.Clone(*p.Collaborators)
	}
	if p.Artifacts != nil {
		out.Artifacts = slices.Clone(*p.Artifacts)
	}
	if p.Status != nil {
		out.Status = *p.Status
	}
	if p.CreatedAt != nil {
		out.CreatedAt = *p.CreatedAt
	}
	if p.Month != nil {
		out.Month = *p.Month
	}
	return out
}
