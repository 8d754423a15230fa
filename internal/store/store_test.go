package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/winvault/internal/common"
	"github.com/dmitrijs2005/winvault/internal/database"
	"github.com/dmitrijs2005/winvault/internal/models"
	"github.com/dmitrijs2005/winvault/internal/repositories/kv"
	"github.com/dmitrijs2005/winvault/internal/roster"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, time.October, 16, 9, 30, 15, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func seqIDs(ids ...string) func() string {
	i := 0
	return func() string {
		id := ids[i%len(ids)]
		i++
		return id
	}
}

func newTestStore(t *testing.T, repo kv.Store, opts ...Option) *Store {
	t.Helper()
	opts = append([]Option{WithClock(fixedClock)}, opts...)
	return New(repo, roster.Default(), nil, opts...)
}

func ptr[T any](v T) *T { return &v }

// failingKV fails every Set after armed is true.
type failingKV struct {
	kv.Store
	armed bool
}

var errDisk = errors.New("disk full")

func (f *failingKV) Set(ctx context.Context, key string, value []byte) error {
	if f.armed {
		return errDisk
	}
	return f.Store.Set(ctx, key, value)
}

func (f *failingKV) Batch(ctx context.Context, fn func(ctx context.Context, r kv.Repository) error) error {
	if f.armed {
		return errDisk
	}
	return f.Store.Batch(ctx, fn)
}

func login(t *testing.T, s *Store, id string) models.User {
	t.Helper()
	u, err := s.Login(context.Background(), id)
	require.NoError(t, err)
	return u
}

func TestLoad_EmptySubstrate(t *testing.T) {
	s := newTestStore(t, kv.NewMemoryStore())
	s.Load(context.Background())

	assert.Empty(t, s.Wins())
	_, ok := s.Session()
	assert.False(t, ok)
	assert.Equal(t, models.ThemeDark, s.Theme())
}

func TestLoad_CorruptDataStartsEmpty(t *testing.T) {
	repo := kv.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, repo.Set(ctx, KeyWins, []byte(`[{"id": "a", "title": `)))
	require.NoError(t, repo.Set(ctx, KeySession, []byte("t1-2")))

	s := newTestStore(t, repo)
	s.Load(ctx)

	assert.Empty(t, s.Wins())
	u, ok := s.Session()
	require.True(t, ok, "a corrupt collection must not affect the session")
	assert.Equal(t, "Karim Sumilo", u.Name)
}

func TestLoad_StaleSessionIsDropped(t *testing.T) {
	repo := kv.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, repo.Set(ctx, KeySession, []byte("former-employee")))

	s := newTestStore(t, repo)
	s.Load(ctx)

	_, ok := s.Session()
	assert.False(t, ok)
}

func TestLoad_InvalidThemeFallsBackToDark(t *testing.T) {
	repo := kv.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, repo.Set(ctx, KeyTheme, []byte("sepia")))

	s := newTestStore(t, repo)
	s.Load(ctx)
	assert.Equal(t, models.ThemeDark, s.Theme())

	require.NoError(t, repo.Set(ctx, KeyTheme, []byte("light")))
	s.Load(ctx)
	assert.Equal(t, models.ThemeLight, s.Theme())
}

func TestLoad_DropsDuplicateIDsAndFillsSlices(t *testing.T) {
	repo := kv.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, repo.Set(ctx, KeyWins, []byte(`[
		{"id":"a","title":"first","status":"Submitted"},
		{"id":"a","title":"dupe","status":"Draft"},
		{"id":"b","title":"second","status":"Draft","collaborators":null}
	]`)))

	s := newTestStore(t, repo)
	s.Load(ctx)

	wins := s.Wins()
	require.Len(t, wins, 2)
	assert.Equal(t, "first", wins[0].Title)
	assert.NotNil(t, wins[1].Collaborators)
	assert.NotNil(t, wins[1].Artifacts)
}

func TestSaveWin_RequiresSession(t *testing.T) {
	s := newTestStore(t, kv.NewMemoryStore())
	_, err := s.SaveWin(context.Background(), models.WinPatch{Title: ptr("x")})
	require.ErrorIs(t, err, common.ErrNoSession)
}

func TestSaveWin_CreateStampsDefaults(t *testing.T) {
	repo := kv.NewMemoryStore()
	s := newTestStore(t, repo, WithIDGenerator(seqIDs("w-1")))
	ctx := context.Background()
	login(t, s, "t2-1")

	got, err := s.SaveWin(ctx, models.WinPatch{Title: ptr("Launched X"), Impact: ptr("+$1M")})
	require.NoError(t, err)

	want := models.Win{
		ID:            "w-1",
		Title:         "Launched X",
		Impact:        "+$1M",
		OKRCategory:   models.OKRGrowth,
		Team:          models.Team2,
		Collaborators: []string{},
		Artifacts:     []models.Artifact{},
		Status:        models.StatusDraft,
		UserID:        "t2-1",
		UserName:      "Agnes Ong",
		CreatedAt:     fixedNow,
		Month:         "2026-10",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("created win mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "09:30:15", s.LastSync())

	raw, err := repo.Get(ctx, KeyWins)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"okrCategory":"Growth"`)
	assert.Contains(t, string(raw), `"team":"Team 2"`)
	assert.Contains(t, string(raw), `"userId":"t2-1"`)
	assert.Contains(t, string(raw), `"month":"2026-10"`)
}

func TestSaveWin_CreateRequiresTitle(t *testing.T) {
	s := newTestStore(t, kv.NewMemoryStore())
	login(t, s, "t1-1")

	_, err := s.SaveWin(context.Background(), models.WinPatch{Title: ptr("   ")})
	require.ErrorIs(t, err, common.ErrTitleRequired)
	assert.Empty(t, s.Wins())
}

func TestSaveWin_IDsAreUniqueAndNewestFirst(t *testing.T) {
	s := newTestStore(t, kv.NewMemoryStore(), WithIDGenerator(seqIDs("a", "a", "b", "c")))
	ctx := context.Background()
	login(t, s, "t1-1")

	for i := range 3 {
		_, err := s.SaveWin(ctx, models.WinPatch{Title: ptr(fmt.Sprintf("win %d", i))})
		require.NoError(t, err)
	}

	wins := s.Wins()
	require.Len(t, wins, 3)
	ids := map[string]bool{}
	for _, w := range wins {
		assert.False(t, ids[w.ID], "duplicate id %s", w.ID)
		ids[w.ID] = true
	}
	assert.Equal(t, "win 2", wins[0].Title)
	assert.Equal(t, "win 0", wins[2].Title)
}

func TestSaveWin_UpdateMergesPatch(t *testing.T) {
	s := newTestStore(t, kv.NewMemoryStore(), WithIDGenerator(seqIDs("w-1")))
	ctx := context.Background()
	login(t, s, "t1-1")

	orig, err := s.SaveWin(ctx, models.WinPatch{
		Title:         ptr("Launched X"),
		Description:   ptr("context"),
		Impact:        ptr("+$1M"),
		Collaborators: &[]string{"Agnes Ong"},
	})
	require.NoError(t, err)

	updated, err := s.SaveWin(ctx, models.WinPatch{
		ID:     orig.ID,
		Impact: ptr("+$2M"),
		Status: ptr(models.StatusSubmitted),
	})
	require.NoError(t, err)

	want := orig
	want.Impact = "+$2M"
	want.Status = models.StatusSubmitted
	if diff := cmp.Diff(want, updated); diff != "" {
		t.Fatalf("update mismatch (-want +got):\n%s", diff)
	}

	stored, ok := s.Win(orig.ID)
	require.True(t, ok)
	assert.Equal(t, updated, stored)
	assert.Len(t, s.Wins(), 1)
}

func TestSaveWin_UpdateUnknownID(t *testing.T) {
	s := newTestStore(t, kv.NewMemoryStore())
	login(t, s, "t1-1")

	_, err := s.SaveWin(context.Background(), models.WinPatch{ID: "nope", Title: ptr("x")})
	require.ErrorIs(t, err, common.ErrWinNotFound)
	assert.Empty(t, s.Wins())
}

func TestSaveWin_WriteFailureIsReturned(t *testing.T) {
	repo := &failingKV{Store: kv.NewMemoryStore()}
	s := newTestStore(t, repo)
	ctx := context.Background()
	login(t, s, "t1-1")

	repo.armed = true
	_, err := s.SaveWin(ctx, models.WinPatch{Title: ptr("unsaved")})
	require.ErrorIs(t, err, errDisk)
	assert.Len(t, s.Wins(), 1, "the in-memory collection keeps the change")
}

func TestWins_ReturnsCopies(t *testing.T) {
	s := newTestStore(t, kv.NewMemoryStore(), WithIDGenerator(seqIDs("w-1")))
	login(t, s, "t1-1")
	_, err := s.SaveWin(context.Background(), models.WinPatch{Title: ptr("a"), Collaborators: &[]string{"Agnes Ong"}})
	require.NoError(t, err)

	wins := s.Wins()
	wins[0].Title = "mutated"
	wins[0].Collaborators[0] = "mutated"

	w, _ := s.Win("w-1")
	assert.Equal(t, "a", w.Title)
	assert.Equal(t, []string{"Agnes Ong"}, w.Collaborators)
}

func TestSession_LoginLogout(t *testing.T) {
	repo := kv.NewMemoryStore()
	s := newTestStore(t, repo)
	ctx := context.Background()

	_, err := s.Login(ctx, "ghost")
	require.ErrorIs(t, err, common.ErrUnknownUser)

	login(t, s, "d-1")
	raw, _ := repo.Get(ctx, KeySession)
	assert.Equal(t, "d-1", string(raw))

	require.NoError(t, s.Logout(ctx))
	raw, _ = repo.Get(ctx, KeySession)
	assert.Nil(t, raw)
	_, ok := s.Session()
	assert.False(t, ok)
}

func TestSetSession_RejectsUsersOutsideRoster(t *testing.T) {
	s := newTestStore(t, kv.NewMemoryStore())
	err := s.SetSession(context.Background(), &models.User{ID: "x", Name: "X", Team: models.Team1})
	require.ErrorIs(t, err, common.ErrUnknownUser)
}

func TestTheme_SetAndToggle(t *testing.T) {
	repo := kv.NewMemoryStore()
	s := newTestStore(t, repo)
	ctx := context.Background()

	require.ErrorIs(t, s.SetTheme(ctx, "neon"), common.ErrInvalidTheme)

	next, err := s.ToggleTheme(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.ThemeLight, next)

	raw, _ := repo.Get(ctx, KeyTheme)
	assert.Equal(t, "light", string(raw))

	next, err = s.ToggleTheme(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.ThemeDark, next)
}

func TestBackup_WritesAllKeys(t *testing.T) {
	repo := kv.NewMemoryStore()
	s := newTestStore(t, repo)
	ctx := context.Background()
	login(t, s, "t1-3")
	require.NoError(t, repo.Clear(ctx))

	require.NoError(t, s.Backup(ctx))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(all[KeyWins]))
	assert.Equal(t, "t1-3", string(all[KeySession]))
	assert.Equal(t, "dark", string(all[KeyTheme]))
}

func TestBackup_FailureIsWrapped(t *testing.T) {
	repo := &failingKV{Store: kv.NewMemoryStore(), armed: true}
	s := newTestStore(t, repo)

	err := s.Backup(context.Background())
	require.ErrorIs(t, err, errDisk)
	assert.ErrorContains(t, err, "backup")
}

// Draft wins stay private to the author until submitted; the whole flow
// survives a restart over a real SQLite file.
func TestSQLite_RoundTripAcrossRestart(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "vault.db")

	db, err := database.InitDatabase(ctx, dsn)
	require.NoError(t, err)

	s := newTestStore(t, kv.NewSQLiteStore(db), WithIDGenerator(seqIDs("w-1")))
	s.Load(ctx)
	login(t, s, "t1-1")
	_, err = s.ToggleTheme(ctx)
	require.NoError(t, err)
	created, err := s.SaveWin(ctx, models.WinPatch{
		Title:       ptr("Launched X"),
		Impact:      ptr("+$1M"),
		OKRCategory: ptr(models.OKRGrowth),
		Artifacts:   &[]models.Artifact{{Name: "Artifact", URL: "https://example.com/x"}},
	})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = database.InitDatabase(ctx, dsn)
	require.NoError(t, err)
	defer db.Close()

	reopened := newTestStore(t, kv.NewSQLiteStore(db))
	reopened.Load(ctx)

	u, ok := reopened.Session()
	require.True(t, ok)
	assert.Equal(t, "t1-1", u.ID)
	assert.Equal(t, models.ThemeLight, reopened.Theme())

	got, ok := reopened.Win("w-1")
	require.True(t, ok)
	if diff := cmp.Diff(created, got); diff != "" {
		t.Fatalf("win changed across restart (-want +got):\n%s", diff)
	}
}
