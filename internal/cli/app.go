package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/winvault/internal/config"
	"github.com/dmitrijs2005/winvault/internal/database"
	"github.com/dmitrijs2005/winvault/internal/editor"
	"github.com/dmitrijs2005/winvault/internal/filex"
	"github.com/dmitrijs2005/winvault/internal/gemini"
	"github.com/dmitrijs2005/winvault/internal/insight"
	"github.com/dmitrijs2005/winvault/internal/logging"
	"github.com/dmitrijs2005/winvault/internal/models"
	"github.com/dmitrijs2005/winvault/internal/repositories/kv"
	"github.com/dmitrijs2005/winvault/internal/roster"
	"github.com/dmitrijs2005/winvault/internal/speech"
	"github.com/dmitrijs2005/winvault/internal/store"
	"github.com/dmitrijs2005/winvault/internal/views"
	"golang.org/x/term"
)

// isTerminal is a test seam for term.IsTerminal.
var isTerminal = term.IsTerminal

type App struct {
	store      *store.Store
	roster     *roster.Roster
	refiner    editor.Refiner
	recognizer speech.Recognizer
	insights   *insight.Generator
	log        logging.Logger

	reader      *bufio.Reader
	out         io.Writer
	now         func() time.Time
	interactive bool

	scope views.Scope
	tab   views.Tab

	closers []func() error
}

type Option func(*App)

// WithIO sets the input and output streams.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(a *App) {
		a.reader = bufio.NewReader(in)
		a.out = out
	}
}

func WithLogger(l logging.Logger) Option {
	return func(a *App) { a.log = l }
}

func WithRefiner(r editor.Refiner) Option {
	return func(a *App) { a.refiner = r }
}

func WithRecognizer(r speech.Recognizer) Option {
	return func(a *App) { a.recognizer = r }
}

func WithInsights(g *insight.Generator) Option {
	return func(a *App) { a.insights = g }
}

func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

func newApp(st *store.Store, r *roster.Roster, opts ...Option) *App {
	a := &App{
		store:  st,
		roster: r,
		log:    logging.NewNop(),
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
		now:    time.Now,
		scope:  views.ScopeAll,
		tab:    views.TabAll,
	}
	for _, o := range opts {
		o(a)
	}
	if a.insights == nil {
		a.insights = insight.New(nil, a.log)
	}
	if a.recognizer == nil {
		a.recognizer = speech.NewConsoleRecognizer(a.reader, a.out)
	}
	if f, ok := a.out.(*os.File); ok {
		a.interactive = isTerminal(int(f.Fd()))
	}
	return a
}

// NewApp opens the vault described by cfg and wires every service. Gemini
// features are enabled only when an API key is configured.
func NewApp(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	var closers []func() error
	fail := func(err error) (*App, error) {
		for _, c := range closers {
			_ = c()
		}
		return nil, err
	}

	dataDir, err := filex.EnsureDir(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}
	cfg.DataDir = dataDir

	logOut := io.Writer(os.Stderr)
	if p := cfg.LogPath(); p != "" {
		f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		logOut = f
		closers = append(closers, f.Close)
	}
	log, err := logging.New(cfg.Log.Backend, cfg.Log.Level, logOut)
	if err != nil {
		return fail(err)
	}
	if s, ok := log.(interface{ Sync() error }); ok {
		closers = append([]func() error{s.Sync}, closers...)
	}

	db, err := database.InitDatabase(ctx, cfg.DBPath())
	if err != nil {
		log.Error(ctx, "error initializing database", "error", err)
		return fail(err)
	}
	closers = append([]func() error{db.Close}, closers...)

	r := roster.Default()
	st := store.New(kv.NewSQLiteStore(db), r, log)
	st.Load(ctx)

	all := []Option{WithLogger(log)}
	if cfg.Gemini.APIKey != "" {
		client, err := gemini.New(ctx, gemini.Config{
			APIKey:          cfg.Gemini.APIKey,
			Model:           cfg.Gemini.Model,
			TranscribeModel: cfg.Gemini.TranscribeModel,
			BaseURL:         cfg.Gemini.BaseURL,
			Timeout:         cfg.RequestTimeout,
		})
		if err != nil {
			log.Warn(ctx, "gemini disabled", "error", err)
		} else {
			all = append(all, WithRefiner(client), WithInsights(insight.New(client, log)))
			if cfg.AudioPath != "" {
				all = append(all, WithRecognizer(speech.NewAudioFileRecognizer(cfg.AudioPath, client)))
			}
		}
	} else {
		log.Info(ctx, "no Gemini API key configured, refinement and insights use local fallbacks")
	}

	a := newApp(st, r, append(all, opts...)...)
	a.closers = closers
	return a, nil
}

// Close releases the database and flushes logs.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) isLoggedIn() bool {
	_, ok := a.store.Session()
	return ok
}

func (a *App) session() *models.User {
	u, ok := a.store.Session()
	if !ok {
		return nil
	}
	return &u
}

func (a *App) criteria() views.Criteria {
	return views.Criteria{Session: a.session(), Scope: a.scope, Tab: a.tab}
}

func (a *App) getStatus() string {
	u, ok := a.store.Session()
	if !ok {
		return ""
	}
	return fmt.Sprintf("(%s · %s)", u.Name, u.Team)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) write(s string) {
	fmt.Fprint(a.out, s)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
