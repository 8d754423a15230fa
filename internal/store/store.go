// Package store is the persisted record store of the vault. It owns the win
// collection, the active session and the display theme, and is the only
// writer of the key-value substrate.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/winvault/internal/logging"
	"github.com/dmitrijs2005/winvault/internal/models"
	"github.com/dmitrijs2005/winvault/internal/repositories/kv"
	"github.com/dmitrijs2005/winvault/internal/roster"
	"github.com/google/uuid"
)

// Keys of the persisted bundle.
const (
	KeyWins    = "win-vault-data"
	KeySession = "win-vault-session-user"
	KeyTheme   = "vault-theme"
)

// LastSyncLayout formats the last successful write time.
const LastSyncLayout = "15:04:05"

type Store struct {
	mu     sync.RWMutex
	repo   kv.Store
	roster *roster.Roster
	log    logging.Logger
	now    func() time.Time
	newID  func() string

	wins     []models.Win // newest first
	session  *models.User
	theme    models.Theme
	lastSync string
}

type Option func(*Store)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides the UUID generator used for new wins.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

func New(repo kv.Store, r *roster.Roster, log logging.Logger, opts ...Option) *Store {
	if log == nil {
		log = logging.NewNop()
	}
	s := &Store{
		repo:   repo,
		roster: r,
		log:    log.With("component", "store"),
		now:    time.Now,
		newID:  uuid.NewString,
		wins:   []models.Win{},
		theme:  models.DefaultTheme,
	}
	for _, o := range opts {
		o(s)
	}
	s.lastSync = s.now().Format(LastSyncLayout)
	return s
}

// Load restores the collection, the session and the theme. Unreadable or
// corrupt values are replaced by defaults and logged; Load never fails.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.wins = s.loadWins(ctx)
	s.session = s.loadSession(ctx)
	s.theme = s.loadTheme(ctx)

	s.log.Info(ctx, "vault loaded", "wins", len(s.wins), "session", s.sessionID(), "theme", s.theme)
}

func (s *Store) loadWins(ctx context.Context) []models.Win {
	raw, err := s.repo.Get(ctx, KeyWins)
	if err != nil {
		s.log.Warn(ctx, "failed to read vault data", "error", err)
		return []models.Win{}
	}
	if len(raw) == 0 {
		return []models.Win{}
	}

	var wins []models.Win
	if err := json.Unmarshal(raw, &wins); err != nil {
		s.log.Warn(ctx, "failed to parse vault data", "error", err)
		return []models.Win{}
	}

	out := make([]models.Win, 0, len(wins))
	seen := make(map[string]struct{}, len(wins))
	for _, w := range wins {
		if _, dup := seen[w.ID]; dup {
			s.log.Warn(ctx, "skipping duplicate win id", "id", w.ID)
			continue
		}
		seen[w.ID] = struct{}{}
		if w.Collaborators == nil {
			w.Collaborators = []string{}
		}
		if w.Artifacts == nil {
			w.Artifacts = []models.Artifact{}
		}
		out = append(out, w)
	}
	return out
}

func (s *Store) loadSession(ctx context.Context) *models.User {
	raw, err := s.repo.Get(ctx, KeySession)
	if err != nil {
		s.log.Warn(ctx, "failed to read session", "error", err)
		return nil
	}
	if len(raw) == 0 {
		return nil
	}
	u, ok := s.roster.Lookup(string(raw))
	if !ok {
		s.log.Warn(ctx, "saved session user is not in the roster", "user_id", string(raw))
		return nil
	}
	return &u
}

func (s *Store) loadTheme(ctx context.Context) models.Theme {
	raw, err := s.repo.Get(ctx, KeyTheme)
	if err != nil {
		s.log.Warn(ctx, "failed to read theme", "error", err)
		return models.DefaultTheme
	}
	t := models.Theme(raw)
	if !t.Valid() {
		return models.DefaultTheme
	}
	return t
}

// Save writes the collection and refreshes the last sync time.
func (s *Store) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(ctx)
}

func (s *Store) saveLocked(ctx context.Context) error {
	data, err := s.encodeWins()
	if err != nil {
		return err
	}
	if err := s.repo.Set(ctx, KeyWins, data); err != nil {
		return fmt.Errorf("save wins: %w", err)
	}
	s.lastSync = s.now().Format(LastSyncLayout)
	return nil
}

func (s *Store) encodeWins() ([]byte, error) {
	data, err := json.Marshal(s.wins)
	if err != nil {
		return nil, fmt.Errorf("encode wins: %w", err)
	}
	return data, nil
}

// Backup rewrites all three keys in a single batch.
func (s *Store) Backup(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.encodeWins()
	if err != nil {
		return err
	}

	err = s.repo.Batch(ctx, func(ctx context.Context, r kv.Repository) error {
		if err := r.Set(ctx, KeyWins, data); err != nil {
			return err
		}
		if s.session == nil {
			if err := r.Delete(ctx, KeySession); err != nil {
				return err
			}
		} else if err := r.Set(ctx, KeySession, []byte(s.session.ID)); err != nil {
			return err
		}
		return r.Set(ctx, KeyTheme, []byte(s.theme))
	})
	if err != nil {
		return fmt.Errorf("backup: %w", err)
	}

	s.lastSync = s.now().Format(LastSyncLayout)
	s.log.Info(ctx, "vault backed up", "wins", len(s.wins))
	return nil
}

func (s *Store) LastSync() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSync
}

// Wins returns a copy of the collection, newest first.
func (s *Store) Wins() []models.Win {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Win, len(s.wins))
	for i, w := range s.wins {
		out[i] = w.Clone()
	}
	return out
}

// Win returns a copy of the win with the given id.
func (s *Store) Win(id string) (models.Win, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return models.Win{}, false
	}
	return s.wins[i].Clone(), true
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.wins, func(w models.Win) bool { return w.ID == id })
}
