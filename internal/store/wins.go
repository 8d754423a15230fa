package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/winvault/internal/common"
	"github.com/dmitrijs2005/winvault/internal/models"
)

// SaveWin creates a win when p carries no ID and updates the matching win
// otherwise, then persists the collection.
//
// A created win is authored by the session user, filed under the user's team
// and stamped with the current time and month; fields supplied by p override
// those defaults. An update merges p over the stored win. If the write fails
// the in-memory change is kept and the error is returned.
func (s *Store) SaveWin(ctx context.Context, p models.WinPatch) (models.Win, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return models.Win{}, common.ErrNoSession
	}

	var saved models.Win
	if p.IsUpdate() {
		i := s.indexOf(p.ID)
		if i < 0 {
			return models.Win{}, fmt.Errorf("%w: %s", common.ErrWinNotFound, p.ID)
		}
		saved = s.wins[i].Apply(p)
		s.wins[i] = saved
		s.log.Info(ctx, "win updated", "id", saved.ID, "status", saved.Status)
	} else {
		w := s.newWin().Apply(p)
		if strings.TrimSpace(w.Title) == "" {
			return models.Win{}, common.ErrTitleRequired
		}
		saved = w
		s.wins = append([]models.Win{saved}, s.wins...)
		s.log.Info(ctx, "win created", "id", saved.ID, "status", saved.Status)
	}

	if err := s.saveLocked(ctx); err != nil {
		return saved.Clone(), err
	}
	return saved.Clone(), nil
}

func (s *Store) newWin() models.Win {
	now := s.now().UTC()
	return models.Win{
		ID:            s.uniqueID(),
		OKRCategory:   models.OKRGrowth,
		Team:          s.session.Team,
		Collaborators: []string{},
		Artifacts:     []models.Artifact{},
		Status:        models.StatusDraft,
		UserID:        s.session.ID,
		UserName:      s.session.Name,
		CreatedAt:     now,
		Month:         models.MonthOf(now),
	}
}

func (s *Store) uniqueID() string {
	for {
		id := s.newID()
		if id != "" && s.indexOf(id) < 0 {
			return id
		}
	}
}
