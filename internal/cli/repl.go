package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
)

// printlnFn and printFn are test seams for REPL output.
var (
	printlnFn = fmt.Fprintln
	printFn   = fmt.Fprint
)

// execIface is the command surface the REPL dispatches to. *App satisfies it;
// tests use a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Users(ctx context.Context) error
	Login(ctx context.Context, id string) error
	Logout(ctx context.Context) error
	List(ctx context.Context) error
	SetScope(ctx context.Context, scope string) error
	SetTab(ctx context.Context, tab string) error
	NewWin(ctx context.Context) error
	EditWin(ctx context.Context, id string) error
	ShowWin(ctx context.Context, id string) error
	Wrap(ctx context.Context) error
	Stats(ctx context.Context) error
	Sync(ctx context.Context) error
	ToggleTheme(ctx context.Context) error
}

const (
	helpSignedOut = "Available commands: users, login <user-id>, theme, help, exit"
	helpSignedIn  = "Available commands: (l)ist, mine, feed, tab all|team1|team2, new, edit <id>, show <id>, wrap, stats, sync, theme, logout, help, exit"
)

// runREPL reads commands from reader until EOF or exit/quit and dispatches
// them to a, writing prompts and messages to out. The prompt shows statusFn.
// Handler errors are printed and the loop continues.
//
//	Not signed in:
//	  users            list the roster
//	  login <id>       sign in as a roster identity
//	  theme            toggle dark/light
//
//	Signed in:
//	  list | l         show the current view
//	  mine | feed      switch between the personal archive and the team feed
//	  tab <tab>        filter the feed by team pool
//	  new | edit <id>  open the win editor
//	  show <id>        print one win
//	  wrap             monthly insight for the current month
//	  stats            quarterly velocity and last sync time
//	  sync             force a backup of the vault
//	  logout           end the session
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, out io.Writer) {
	for {
		printFn(out, fmt.Sprintf("wv%s> ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			printlnFn(out)
			return
		}
		cmd, arg := splitCommand(line)
		if cmd == "" {
			continue
		}

		var cmdErr error
		switch cmd {
		case "help", "?":
			if a.isLoggedIn() {
				printlnFn(out, helpSignedIn)
			} else {
				printlnFn(out, helpSignedOut)
			}

		case "users":
			cmdErr = a.Users(ctx)

		case "login":
			cmdErr = a.Login(ctx, arg)

		case "theme":
			cmdErr = a.ToggleTheme(ctx)

		case "exit", "quit":
			printlnFn(out, "Bye!")
			return

		default:
			if !a.isLoggedIn() {
				printlnFn(out, "Please login first. Type 'help' for commands.")
				continue
			}
			cmdErr = dispatchSignedIn(ctx, a, cmd, arg, out)
		}

		if cmdErr != nil {
			printlnFn(out, "Error:", cmdErr)
		}
	}
}

func dispatchSignedIn(ctx context.Context, a execIface, cmd, arg string, out io.Writer) error {
	switch cmd {
	case "l", "list":
		return a.List(ctx)
	case "mine", "feed":
		return a.SetScope(ctx, cmd)
	case "tab":
		return a.SetTab(ctx, arg)
	case "new":
		return a.NewWin(ctx)
	case "edit":
		return a.EditWin(ctx, arg)
	case "show":
		return a.ShowWin(ctx, arg)
	case "wrap":
		return a.Wrap(ctx)
	case "stats":
		return a.Stats(ctx)
	case "sync":
		return a.Sync(ctx)
	case "logout":
		return a.Logout(ctx)
	default:
		printlnFn(out, "Unknown command:", cmd)
		return nil
	}
}
