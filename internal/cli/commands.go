package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/winvault/internal/common"
	"github.com/dmitrijs2005/winvault/internal/insight"
	"github.com/dmitrijs2005/winvault/internal/models"
	"github.com/dmitrijs2005/winvault/internal/views"
)

func (a *App) styles() styles {
	return newStyles(a.out, a.store.Theme())
}

func (a *App) notify(msg string) {
	a.println(a.styles().err.Render("! " + msg))
}

// Users prints the roster, marking the signed-in identity.
func (a *App) Users(_ context.Context) error {
	s := a.styles()
	current, _ := a.store.Session()
	for _, u := range a.roster.All() {
		mark := " "
		if u.ID == current.ID {
			mark = "*"
		}
		a.printf("%s %-6s %-18s %s\n", mark, u.ID, u.Name, s.muted.Render(string(u.Team)))
	}
	return nil
}

// Login signs in as the roster identity id, asking for it when empty.
func (a *App) Login(ctx context.Context, id string) error {
	if id == "" {
		if err := a.Users(ctx); err != nil {
			return err
		}
		v, err := GetSimpleText(a.reader, "Enter user id", a.out)
		if err != nil {
			return err
		}
		id = v
	}

	u, err := a.store.Login(ctx, id)
	if err != nil {
		return err
	}
	a.println(a.styles().accent.Render(fmt.Sprintf("Welcome, %s (%s)", u.Name, u.Team)))
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.store.Logout(ctx); err != nil {
		return err
	}
	a.scope, a.tab = views.ScopeAll, views.TabAll
	a.println("Logged out.")
	return nil
}

// List prints the wins of the current scope and tab.
func (a *App) List(ctx context.Context) error {
	return a.ListFor(ctx, a.criteria())
}

// ListFor prints the wins selected by c.
func (a *App) ListFor(_ context.Context, c views.Criteria) error {
	a.write(renderList(a.styles(), views.Heading(c), views.Filter(a.store.Wins(), c)))
	return nil
}

// SetScope switches between the team feed and the personal archive.
func (a *App) SetScope(ctx context.Context, scope string) error {
	sc, err := views.ParseScope(scope)
	if err != nil {
		return err
	}
	a.scope = sc
	return a.List(ctx)
}

// SetTab filters the feed by team pool.
func (a *App) SetTab(ctx context.Context, tab string) error {
	t, err := views.ParseTab(tab)
	if err != nil {
		return err
	}
	a.tab = t
	return a.List(ctx)
}

// visibleWin returns the win id if it appears in the signed-in user's team
// feed or personal archive, on any tab.
func (a *App) visibleWin(id string) (models.Win, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return models.Win{}, fmt.Errorf("usage: <command> <win-id>")
	}
	w, ok := a.store.Win(id)
	if !ok {
		return models.Win{}, fmt.Errorf("%w: %s", common.ErrWinNotFound, id)
	}
	for _, sc := range []views.Scope{views.ScopeAll, views.ScopeMine} {
		c := views.Criteria{Session: a.session(), Scope: sc, Tab: views.TabAll}
		if len(views.Filter([]models.Win{w}, c)) > 0 {
			return w, nil
		}
	}
	return models.Win{}, fmt.Errorf("%w: %s", common.ErrWinNotFound, id)
}

func (a *App) ShowWin(_ context.Context, id string) error {
	w, err := a.visibleWin(id)
	if err != nil {
		return err
	}
	a.write(renderWinDetail(a.styles(), w))
	return nil
}

// Wrap shows the insight for the current month.
func (a *App) Wrap(ctx context.Context) error {
	return a.WrapMonth(ctx, views.CurrentMonth(a.now()))
}

// WrapMonth shows the insight built from the submitted wins of month.
func (a *App) WrapMonth(ctx context.Context, month string) error {
	wins := views.MonthSubmitted(a.store.Wins(), month)
	a.println(a.styles().muted.Render("Syncing " + insight.MonthName(month) + "..."))

	in := a.insights.Generate(ctx, wins, month)
	md := wrapMarkdown(in, month, wins)
	a.write(renderMarkdown(md, a.store.Theme(), a.interactive))
	return nil
}

func (a *App) Stats(_ context.Context) error {
	a.write(renderStats(a.styles(), views.Velocity(a.store.Wins()), a.store.LastSync()))
	return nil
}

// Sync forces a backup of the whole vault.
func (a *App) Sync(ctx context.Context) error {
	if err := a.store.Backup(ctx); err != nil {
		return err
	}
	a.println("Vault backed up at " + a.store.LastSync())
	return nil
}

func (a *App) ToggleTheme(ctx context.Context) error {
	t, err := a.store.ToggleTheme(ctx)
	if err != nil {
		return err
	}
	a.println("Theme: " + string(t))
	return nil
}

func (a *App) NewWin(ctx context.Context) error {
	u, ok := a.store.Session()
	if !ok {
		return common.ErrNoSession
	}
	return a.runForm(ctx, u, nil)
}

func (a *App) EditWin(ctx context.Context, id string) error {
	u, ok := a.store.Session()
	if !ok {
		return common.ErrNoSession
	}
	w, err := a.visibleWin(id)
	if err != nil {
		return err
	}
	return a.runForm(ctx, u, &w)
}
