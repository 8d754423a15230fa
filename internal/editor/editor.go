// Package editor implements the editing session of a single win. An Editor
// holds the form state, runs dictation and refinement per field, and turns
// the result into a models.WinPatch for the store.
package editor

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/dmitrijs2005/winvault/internal/common"
	"github.com/dmitrijs2005/winvault/internal/logging"
	"github.com/dmitrijs2005/winvault/internal/models"
	"github.com/dmitrijs2005/winvault/internal/roster"
	"github.com/dmitrijs2005/winvault/internal/speech"
)

// ArtifactName labels the single link an editor attaches.
const ArtifactName = "Artifact"

// Refiner rewrites text according to an instruction.
type Refiner interface {
	Refine(ctx context.Context, instruction, text string) (string, error)
}

// Notifier shows a message to the user.
type Notifier interface {
	Notify(msg string)
}

type NotifierFunc func(msg string)

func (f NotifierFunc) Notify(msg string) { f(msg) }

// Deps are the collaborators of an Editor. Refiner and Recognizer may be nil,
// which disables the matching affordance.
type Deps struct {
	Roster     *roster.Roster
	Refiner    Refiner
	Recognizer speech.Recognizer
	Notifier   Notifier
	Log        logging.Logger
}

type Editor struct {
	mu sync.Mutex

	user    models.User
	initial *models.Win
	deps    Deps

	fields        map[Field]*fieldState
	okr           models.OKRCategory
	collaborators []string
	artifactURL   string
}

// New opens an editing session for user. A nil initial starts a new win.
func New(user models.User, initial *models.Win, deps Deps) *Editor {
	if deps.Log == nil {
		deps.Log = logging.NewNop()
	}
	if deps.Roster == nil {
		deps.Roster = roster.Default()
	}
	deps.Log = deps.Log.With("component", "editor", "user_id", user.ID)

	e := &Editor{
		user:          user,
		deps:          deps,
		fields:        make(map[Field]*fieldState, len(Fields)),
		okr:           models.OKRGrowth,
		collaborators: []string{},
	}
	for _, f := range Fields {
		e.fields[f] = &fieldState{}
	}

	if initial != nil {
		w := initial.Clone()
		e.initial = &w
		e.fields[Title].value = w.Title
		e.fields[Description].value = w.Description
		e.fields[Impact].value = w.Impact
		if w.OKRCategory != "" {
			e.okr = w.OKRCategory
		}
		if w.Collaborators != nil {
			e.collaborators = w.Collaborators
		}
		if len(w.Artifacts) > 0 {
			e.artifactURL = w.Artifacts[0].URL
		}
	}
	return e
}

// IsUpdate reports whether the session edits an existing win.
func (e *Editor) IsUpdate() bool {
	return e.initial != nil
}

func (e *Editor) User() models.User {
	return e.user
}

func (e *Editor) state(f Field) *fieldState {
	st, ok := e.fields[f]
	if !ok {
		panic(fmt.Sprintf("editor: unknown field %d", int(f)))
	}
	return st
}

func (e *Editor) Value(f Field) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state(f).value
}

func (e *Editor) SetText(f Field, v string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state(f).value = v
}

// CanRevert reports whether a pre-refinement value is remembered for f.
func (e *Editor) CanRevert(f Field) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state(f).previous != nil
}

func (e *Editor) Listening(f Field) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state(f).listening
}

func (e *Editor) Refining(f Field) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state(f).refining
}

func (e *Editor) OKR() models.OKRCategory {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.okr
}

func (e *Editor) SetOKR(c models.OKRCategory) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.okr = c
}

func (e *Editor) Collaborators() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.collaborators)
}

// authorID is the owner of the win: the original author on an update, the
// editing user otherwise.
func (e *Editor) authorID() string {
	if e.initial != nil && e.initial.UserID != "" {
		return e.initial.UserID
	}
	return e.user.ID
}

// Candidates lists the roster users that may be named as collaborators:
// everyone except the win's author.
func (e *Editor) Candidates() []models.User {
	return e.deps.Roster.Others(e.authorID())
}

// ToggleCollaborator adds or removes a teammate, matched by id or name, among
// Candidates. It returns the canonical name and whether it is now listed.
func (e *Editor) ToggleCollaborator(who string) (string, bool, error) {
	var match *models.User
	for _, u := range e.Candidates() {
		if u.ID == who || strings.EqualFold(u.Name, strings.TrimSpace(who)) {
			match = &u
			break
		}
	}
	if match == nil {
		return "", false, fmt.Errorf("%w: %q is not a teammate", common.ErrUnknownUser, who)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if i := slices.Index(e.collaborators, match.Name); i >= 0 {
		e.collaborators = slices.Delete(e.collaborators, i, i+1)
		return match.Name, false, nil
	}
	e.collaborators = append(e.collaborators, match.Name)
	return match.Name, true, nil
}

func (e *Editor) ArtifactURL() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.artifactURL
}

func (e *Editor) SetArtifactURL(u string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.artifactURL = strings.TrimSpace(u)
}

// Submit validates the form and returns the patch to persist with status.
// For an update the patch carries the original id, team, creation time and
// month; for a create the store stamps them.
func (e *Editor) Submit(status models.WinStatus) (models.WinPatch, error) {
	if status != models.StatusDraft && status != models.StatusSubmitted {
		return models.WinPatch{}, fmt.Errorf("%w: %q", common.ErrInvalidStatus, status)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	title := e.fields[Title].value
	if strings.TrimSpace(title) == "" {
		return models.WinPatch{}, common.ErrTitleRequired
	}

	desc := e.fields[Description].value
	impact := e.fields[Impact].value
	okr := e.okr
	collab := slices.Clone(e.collaborators)
	artifacts := []models.Artifact{}
	if e.artifactURL != "" {
		artifacts = append(artifacts, models.Artifact{Name: ArtifactName, URL: e.artifactURL})
	}
	team := e.user.Team
	if e.initial != nil && e.initial.Team != "" {
		team = e.initial.Team
	}

	p := models.WinPatch{
		Title:         &title,
		Description:   &desc,
		Impact:        &impact,
		OKRCategory:   &okr,
		Team:          &team,
		Collaborators: &collab,
		Artifacts:     &artifacts,
		Status:        &status,
	}

	if e.initial != nil {
		created, month := e.initial.CreatedAt, e.initial.Month
		p.ID = e.initial.ID
		p.CreatedAt = &created
		p.Month = &month
	}
	return p, nil
}

// Preview renders the current form as the win it would produce.
func (e *Editor) Preview() models.Win {
	var base models.Win
	if e.initial != nil {
		base = e.initial.Clone()
	} else {
		base = models.Win{UserID: e.user.ID, UserName: e.user.Name, Status: models.StatusDraft}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	base.Title = e.fields[Title].value
	base.Description = e.fields[Description].value
	base.Impact = e.fields[Impact].value
	base.OKRCategory = e.okr
	base.Collaborators = slices.Clone(e.collaborators)
	if base.Team == "" {
		base.Team = e.user.Team
	}
	base.Artifacts = nil
	if e.artifactURL != "" {
		base.Artifacts = []models.Artifact{{Name: ArtifactName, URL: e.artifactURL}}
	}
	return base
}

func (e *Editor) notify(msg string) {
	if msg != "" && e.deps.Notifier != nil {
		e.deps.Notifier.Notify(msg)
	}
}
