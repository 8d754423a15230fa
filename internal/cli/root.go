package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/winvault/internal/buildinfo"
	"github.com/dmitrijs2005/winvault/internal/common"
	"github.com/dmitrijs2005/winvault/internal/config"
	"github.com/dmitrijs2005/winvault/internal/models"
	"github.com/dmitrijs2005/winvault/internal/views"
	"github.com/spf13/cobra"
)

// Run prints the banner and serves the REPL until the user leaves.
func (a *App) Run(ctx context.Context) {
	buildinfo.PrintBuildData(a.out)
	a.println(a.styles().title.Render("Win Vault") + " - documenting wins, securing the archive.")
	if u, ok := a.store.Session(); ok {
		a.printf("Signed in as %s (%s). Type 'help' for commands.\n", u.Name, u.Team)
	} else {
		a.println("Type 'users' to see the roster, then 'login <user-id>'.")
	}
	runREPL(ctx, a, a.getStatus, a.reader, a.out)
}

// NewRootCmd builds the winvault command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "winvault",
		Short:         "Win Vault - a local achievement tracker for Team 1 and Team 2",
		Version:       buildinfo.Version(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *App) error {
				a.Run(ctx)
				return nil
			})
		},
	}
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(newUsersCmd(), newListCmd(), newWrapCmd(), newVersionCmd())
	return root
}

// withApp loads the configuration, opens the vault and runs fn against it.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *App) error) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := NewApp(ctx, cfg, WithIO(cmd.InOrStdin(), cmd.OutOrStdout()))
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(ctx, a)
}

func newUsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List the roster identities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *App) error {
				return a.Users(ctx)
			})
		},
	}
}

func newListCmd() *cobra.Command {
	var userID, scope, tab string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the team feed or a personal archive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sc, err := views.ParseScope(scope)
			if err != nil {
				return err
			}
			t, err := views.ParseTab(tab)
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *App) error {
				c := views.Criteria{Session: a.session(), Scope: sc, Tab: t}
				if userID != "" {
					u, ok := a.roster.Lookup(userID)
					if !ok {
						return fmt.Errorf("%w: %s", common.ErrUnknownUser, userID)
					}
					c.Session = &u
				}
				return a.ListFor(ctx, c)
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "view as this roster user (default: the saved session)")
	cmd.Flags().StringVar(&scope, "scope", string(views.ScopeAll), "all or mine")
	cmd.Flags().StringVar(&tab, "tab", string(views.TabAll), "all, team1 or team2")
	return cmd
}

func newWrapCmd() *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "wrap",
		Short: "Show the monthly wrap of submitted wins",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if month != "" {
				if _, err := time.Parse(models.MonthLayout, month); err != nil {
					return fmt.Errorf("invalid --month %q, want YYYY-MM", month)
				}
			}
			return withApp(cmd, func(ctx context.Context, a *App) error {
				if month == "" {
					return a.Wrap(ctx)
				}
				return a.WrapMonth(ctx, month)
			})
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "month as YYYY-MM (default: current month)")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			buildinfo.PrintBuildData(cmd.OutOrStdout())
		},
	}
}

// Execute runs the winvault command line.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}
