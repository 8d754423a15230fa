package store

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/winvault/internal/common"
	"github.com/dmitrijs2005/winvault/internal/models"
)

// Session returns the active user, if any.
func (s *Store) Session() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return models.User{}, false
	}
	return *s.session, true
}

func (s *Store) sessionID() string {
	if s.session == nil {
		return ""
	}
	return s.session.ID
}

// SetSession persists u as the active identity, or clears it when u is nil.
// u must be a roster user.
func (s *Store) SetSession(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u == nil {
		if err := s.repo.Delete(ctx, KeySession); err != nil {
			return fmt.Errorf("clear session: %w", err)
		}
		s.session = nil
		return nil
	}

	known, ok := s.roster.Lookup(u.ID)
	if !ok {
		return fmt.Errorf("%w: %s", common.ErrUnknownUser, u.ID)
	}
	if err := s.repo.Set(ctx, KeySession, []byte(known.ID)); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	s.session = &known
	return nil
}

// Login resolves id against the roster and makes it the active session.
func (s *Store) Login(ctx context.Context, id string) (models.User, error) {
	u, ok := s.roster.Lookup(id)
	if !ok {
		return models.User{}, fmt.Errorf("%w: %s", common.ErrUnknownUser, id)
	}
	if err := s.SetSession(ctx, &u); err != nil {
		return models.User{}, err
	}
	return u, nil
}

// Logout clears the active session.
func (s *Store) Logout(ctx context.Context) error {
	return s.SetSession(ctx, nil)
}

func (s *Store) Theme() models.Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme
}

func (s *Store) SetTheme(ctx context.Context, t models.Theme) error {
	if !t.Valid() {
		return fmt.Errorf("%w: %q", common.ErrInvalidTheme, t)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.repo.Set(ctx, KeyTheme, []byte(t)); err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	s.theme = t
	return nil
}

// ToggleTheme flips between dark and light and returns the new theme.
func (s *Store) ToggleTheme(ctx context.Context) (models.Theme, error) {
	next := s.Theme().Toggle()
	if err := s.SetTheme(ctx, next); err != nil {
		return s.Theme(), err
	}
	return next, nil
}
