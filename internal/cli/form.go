package cli

import (
	"context"
	"slices"
	"strings"

	"github.com/dmitrijs2005/winvault/internal/editor"
	"github.com/dmitrijs2005/winvault/internal/models"
	"golang.org/x/sync/errgroup"
)

const formHelp = `Editor commands:
  title|impact|desc <text>   set a field
  okr <category>             Growth, Efficiency, Innovation, Culture, Revenue
  collab <name|id>           add or remove a collaborator
  collabs                    list possible collaborators
  artifact <url>             attach a link (empty clears it)
  dictate <field>            append dictated text to a field
  refine <field|all>         rewrite with AI, keeping the previous text
  revert <field>             undo the last refinement
  show                       preview the win
  draft | submit             save and close
  cancel                     close without saving`

// runForm is the editing sub-REPL for one win. It returns nil when the user
// cancels or the win is saved; only store failures are returned.
func (a *App) runForm(ctx context.Context, u models.User, initial *models.Win) error {
	ed := editor.New(u, initial, editor.Deps{
		Roster:     a.roster,
		Refiner:    a.refiner,
		Recognizer: a.recognizer,
		Notifier:   editor.NotifierFunc(a.notify),
		Log:        a.log,
	})

	s := a.styles()
	if ed.IsUpdate() {
		a.println(s.title.Render("Edit Win"))
	} else {
		a.println(s.title.Render("Record Win"))
	}
	a.println(s.muted.Render("Type 'help' for editor commands."))

	for {
		a.printf("win> ")
		line, err := readLine(a.reader)
		if err != nil {
			a.println()
			a.println("Editing cancelled.")
			return nil
		}
		cmd, arg := splitCommand(line)

		switch cmd {
		case "":
			continue

		case "help", "?":
			a.println(formHelp)

		case "title", "impact", "desc", "description":
			f, _ := editor.ParseField(cmd)
			ed.SetText(f, arg)

		case "okr":
			c, err := models.ParseOKR(arg)
			if err != nil {
				a.println("Error:", err)
				continue
			}
			ed.SetOKR(c)

		case "collab":
			name, added, err := ed.ToggleCollaborator(arg)
			if err != nil {
				a.println("Error:", err)
				continue
			}
			if added {
				a.println("Added " + name)
			} else {
				a.println("Removed " + name)
			}

		case "collabs":
			a.printCollaborators(ed)

		case "artifact":
			ed.SetArtifactURL(arg)

		case "dictate":
			f, err := editor.ParseField(arg)
			if err != nil {
				a.println("Error:", err)
				continue
			}
			if ed.Dictate(ctx, f) == nil {
				a.printf("%s: %s\n", f, ed.Value(f))
			}

		case "refine":
			a.refine(ctx, ed, arg)

		case "revert":
			f, err := editor.ParseField(arg)
			if err != nil {
				a.println("Error:", err)
				continue
			}
			if ed.Revert(f) {
				a.printf("%s: %s\n", f, ed.Value(f))
			} else {
				a.println("Nothing to revert for " + f.String())
			}

		case "show":
			a.write(renderWinDetail(s, ed.Preview()))

		case "draft", "submit":
			status := models.StatusSubmitted
			if cmd == "draft" {
				status = models.StatusDraft
			}
			p, err := ed.Submit(status)
			if err != nil {
				a.println("Error:", err)
				continue
			}
			w, err := a.store.SaveWin(ctx, p)
			if err != nil {
				return err
			}
			a.printf("Saved %s %s\n", s.status(w.Status), w.ID)
			return nil

		case "cancel", "exit", "quit":
			a.println("Editing cancelled.")
			return nil

		default:
			a.println("Unknown editor command:", cmd)
		}
	}
}

func (a *App) printCollaborators(ed *editor.Editor) {
	s := a.styles()
	for _, u := range ed.Candidates() {
		mark := " "
		if slices.Contains(ed.Collaborators(), u.Name) {
			mark = "x"
		}
		a.printf("[%s] %-6s %s %s\n", mark, u.ID, u.Name, s.muted.Render(string(u.Team)))
	}
}

// refine rewrites one field, or every field concurrently for "all".
func (a *App) refine(ctx context.Context, ed *editor.Editor, arg string) {
	if a.refiner == nil {
		a.notify("AI refinement is unavailable: no Gemini API key configured.")
		return
	}

	fields := editor.Fields
	if !strings.EqualFold(arg, "all") {
		f, err := editor.ParseField(arg)
		if err != nil {
			a.println("Error:", err)
			return
		}
		fields = []editor.Field{f}
	}

	changed := make([]bool, len(fields))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range fields {
		g.Go(func() error {
			changed[i] = ed.Refine(gctx, f)
			return nil
		})
	}
	_ = g.Wait()

	for i, f := range fields {
		if changed[i] {
			a.printf("%s: %s\n", f, ed.Value(f))
		} else {
			a.printf("%s unchanged\n", f)
		}
	}
}
