package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/dmitrijs2005/winvault/internal/insight"
	"github.com/dmitrijs2005/winvault/internal/models"
	"github.com/dmitrijs2005/winvault/internal/views"
)

const (
	wrapWidth = 80
	barWidth  = 30
)

type palette struct {
	accent lipgloss.Color
	ok     lipgloss.Color
	warn   lipgloss.Color
	muted  lipgloss.Color
	brand  lipgloss.Color
}

var palettes = map[models.Theme]palette{
	models.ThemeDark: {
		accent: lipgloss.Color("#3B82F6"),
		ok:     lipgloss.Color("#34D399"),
		warn:   lipgloss.Color("#FBBF24"),
		muted:  lipgloss.Color("#94A3B8"),
		brand:  lipgloss.Color("#A78BFA"),
	},
	models.ThemeLight: {
		accent: lipgloss.Color("#2563EB"),
		ok:     lipgloss.Color("#10B981"),
		warn:   lipgloss.Color("#D97706"),
		muted:  lipgloss.Color("#64748B"),
		brand:  lipgloss.Color("#7C3AED"),
	},
}

type styles struct {
	title     lipgloss.Style
	heading   lipgloss.Style
	accent    lipgloss.Style
	muted     lipgloss.Style
	draft     lipgloss.Style
	submitted lipgloss.Style
	err       lipgloss.Style
	bar       lipgloss.Style
}

// newStyles binds the theme palette to out, so color is dropped when out is
// not a terminal.
func newStyles(out io.Writer, theme models.Theme) styles {
	p, ok := palettes[theme]
	if !ok {
		p = palettes[models.DefaultTheme]
	}
	r := lipgloss.NewRenderer(out)
	return styles{
		title:     r.NewStyle().Bold(true).Foreground(p.brand),
		heading:   r.NewStyle().Bold(true).Underline(true),
		accent:    r.NewStyle().Foreground(p.accent),
		muted:     r.NewStyle().Foreground(p.muted),
		draft:     r.NewStyle().Foreground(p.warn),
		submitted: r.NewStyle().Foreground(p.ok),
		err:       r.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444")),
		bar:       r.NewStyle().Foreground(p.accent),
	}
}

func (s styles) status(st models.WinStatus) string {
	label := "[" + strings.ToUpper(string(st)) + "]"
	if st == models.StatusDraft {
		return s.draft.Render(label)
	}
	return s.submitted.Render(label)
}

// renderWin is the one-line feed entry plus an optional impact line.
func renderWin(s styles, w models.Win) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s  %s\n", s.status(w.Status), s.accent.Render(w.Title), s.muted.Render(w.ID))
	meta := []string{string(w.OKRCategory), string(w.Team), w.UserName, w.Month}
	fmt.Fprintf(&b, "    %s\n", s.muted.Render(strings.Join(meta, " · ")))
	if w.Impact != "" {
		fmt.Fprintf(&b, "    Impact: %s\n", w.Impact)
	}
	if len(w.Collaborators) > 0 {
		fmt.Fprintf(&b, "    With: %s\n", strings.Join(w.Collaborators, ", "))
	}
	return b.String()
}

// renderWinDetail shows every field of w.
func renderWinDetail(s styles, w models.Win) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", s.status(w.Status), s.title.Render(w.Title))
	row := func(k, v string) {
		if v == "" {
			v = s.muted.Render("-")
		}
		fmt.Fprintf(&b, "  %-14s %s\n", k+":", v)
	}
	row("ID", w.ID)
	row("Author", w.UserName)
	row("Team", string(w.Team))
	row("OKR", string(w.OKRCategory))
	row("Impact", w.Impact)
	row("Description", w.Description)
	row("Collaborators", strings.Join(w.Collaborators, ", "))
	for _, a := range w.Artifacts {
		row(a.Name, a.URL)
	}
	if !w.CreatedAt.IsZero() {
		row("Created", w.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	row("Month", w.Month)
	return b.String()
}

func renderList(s styles, heading string, wins []models.Win) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", s.heading.Render(heading), s.muted.Render(fmt.Sprintf("(%d)", len(wins))))
	if len(wins) == 0 {
		b.WriteString(s.muted.Render("No wins recorded yet.") + "\n")
		return b.String()
	}
	for _, w := range wins {
		b.WriteString(renderWin(s, w))
	}
	return b.String()
}

func progressBar(percent float64, width int) string {
	filled := min(width, max(0, int(percent*float64(width)/100)))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func renderStats(s styles, v views.VelocityStats, lastSync string) string {
	var b strings.Builder
	b.WriteString(s.heading.Render("Quarterly Velocity") + "\n")
	fmt.Fprintf(&b, "  Logged Wins  %d / %d\n", v.Logged, v.Goal)
	fmt.Fprintf(&b, "  %s %.0f%%\n", s.bar.Render(progressBar(v.Percent, barWidth)), v.Percent)
	fmt.Fprintf(&b, "  Last Vault Sync  %s\n", s.accent.Render(lastSync))
	return b.String()
}

// wrapMarkdown lays out the monthly wrap as markdown.
func wrapMarkdown(in models.Insight, month string, wins []models.Win) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Vault Wrapped: %s\n\n", insight.MonthName(month))
	fmt.Fprintf(&b, "**%d Major Successes Archived**\n\n", len(wins))

	b.WriteString("## Strategic Focus\n\n")
	breakdown := views.Breakdown(wins)
	if len(breakdown) == 0 {
		b.WriteString("_No submitted wins this month._\n\n")
	} else {
		b.WriteString("| OKR | Wins | Share |\n|---|---:|---:|\n")
		for _, c := range breakdown {
			fmt.Fprintf(&b, "| %s | %d | %d%% |\n", c.Category, c.Count, c.Count*100/len(wins))
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "## %s\n\n", in.MonthTitle)
	if in.ImpactSummary != "" {
		fmt.Fprintf(&b, "%s\n\n", in.ImpactSummary)
	}
	fmt.Fprintf(&b, "> %s\n\n", in.TeamInsight)
	if len(in.TopStrengths) > 0 {
		b.WriteString("**Top strengths:** ")
		b.WriteString(strings.Join(in.TopStrengths, " · "))
		b.WriteString("\n")
	}
	return b.String()
}

// glamourStyle maps the theme to a glamour style; plain output gets notty.
func glamourStyle(theme models.Theme, interactive bool) string {
	if !interactive {
		return "notty"
	}
	if theme == models.ThemeLight {
		return "light"
	}
	return "dark"
}

// renderMarkdown renders md for the terminal, returning md unchanged when
// glamour cannot.
func renderMarkdown(md string, theme models.Theme, interactive bool) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(glamourStyle(theme, interactive)),
		glamour.WithWordWrap(wrapWidth),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}
