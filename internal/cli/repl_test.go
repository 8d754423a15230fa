package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool
	failSync bool

	calls []string
}

func (f *fakeExec) record(call string) error {
	f.calls = append(f.calls, call)
	return nil
}

func (f *fakeExec) isLoggedIn() bool                      { return f.loggedIn }
func (f *fakeExec) Users(ctx context.Context) error       { return f.record("users") }
func (f *fakeExec) List(ctx context.Context) error        { return f.record("list") }
func (f *fakeExec) NewWin(ctx context.Context) error      { return f.record("new") }
func (f *fakeExec) Wrap(ctx context.Context) error        { return f.record("wrap") }
func (f *fakeExec) Stats(ctx context.Context) error       { return f.record("stats") }
func (f *fakeExec) ToggleTheme(ctx context.Context) error { return f.record("theme") }

func (f *fakeExec) Login(ctx context.Context, id string) error {
	f.loggedIn = true
	return f.record("login:" + id)
}

func (f *fakeExec) Logout(ctx context.Context) error {
	f.loggedIn = false
	return f.record("logout")
}

func (f *fakeExec) SetScope(ctx context.Context, scope string) error {
	return f.record("scope:" + scope)
}

func (f *fakeExec) SetTab(ctx context.Context, tab string) error {
	return f.record("tab:" + tab)
}

func (f *fakeExec) EditWin(ctx context.Context, id string) error {
	return f.record("edit:" + id)
}

func (f *fakeExec) ShowWin(ctx context.Context, id string) error {
	return f.record("show:" + id)
}

func (f *fakeExec) Sync(ctx context.Context) error {
	f.record("sync")
	if f.failSync {
		return errors.New("disk full")
	}
	return nil
}

func captureOutput(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	origPrintln, origPrint := printlnFn, printFn
	printlnFn = func(_ io.Writer, a ...any) (int, error) {
		lines = append(lines, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	printFn = func(io.Writer, ...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn, printFn = origPrintln, origPrint })
	return &lines
}

func TestRunREPL_LoginFlowAndCommands(t *testing.T) {
	out := captureOutput(t)

	input := strings.NewReader(strings.Join([]string{
		"help",
		"list",
		"login t1-1",
		"help",
		"list",
		"mine",
		"feed",
		"tab team1",
		"new",
		"edit abc123",
		"show abc123",
		"wrap",
		"stats",
		"sync",
		"theme",
		"foobar",
		"",
		"logout",
		"exit",
		"list",
	}, "\n"))

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(input), io.Discard)

	assert.Equal(t, []string{
		"login:t1-1",
		"list",
		"scope:mine",
		"scope:feed",
		"tab:team1",
		"new",
		"edit:abc123",
		"show:abc123",
		"wrap",
		"stats",
		"sync",
		"theme",
		"logout",
	}, exec.calls)

	assert.Equal(t, helpSignedOut, (*out)[0])
	assert.Contains(t, *out, "Please login first. Type 'help' for commands.")
	assert.Contains(t, *out, helpSignedIn)
	assert.Contains(t, *out, "Unknown command: foobar")
	assert.Equal(t, "Bye!", (*out)[len(*out)-1])
}

func TestRunREPL_PrintsHandlerErrorsAndContinues(t *testing.T) {
	out := captureOutput(t)

	input := strings.NewReader("sync\nstats\n")
	exec := &fakeExec{loggedIn: true, failSync: true}
	runREPL(context.Background(), exec, func() string { return "(x)" }, bufio.NewReader(input), io.Discard)

	assert.Equal(t, []string{"sync", "stats"}, exec.calls)
	assert.Contains(t, *out, "Error: disk full")
}

func TestRunREPL_ThemeAndUsersWorkSignedOut(t *testing.T) {
	captureOutput(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(strings.NewReader("users\ntheme\nquit\n")), io.Discard)

	assert.Equal(t, []string{"users", "theme"}, exec.calls)
	assert.False(t, exec.loggedIn)
}

func TestRunREPL_WritesToGivenWriter(t *testing.T) {
	var out strings.Builder
	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "(me)" }, bufio.NewReader(strings.NewReader("help\nexit\n")), &out)

	assert.Equal(t, "wv(me)> "+helpSignedOut+"\nwv(me)> Bye!\n", out.String())
}

func TestSplitCommand(t *testing.T) {
	tests := []struct {
		line, cmd, rest string
	}{
		{"", "", ""},
		{"  LIST  ", "list", ""},
		{"title  Launched the  portal ", "title", "Launched the  portal"},
		{"login t1-1", "login", "t1-1"},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			cmd, rest := splitCommand(tt.line)
			assert.Equal(t, tt.cmd, cmd)
			assert.Equal(t, tt.rest, rest)
		})
	}
}

func TestGetSimpleText(t *testing.T) {
	var sb strings.Builder
	v, err := GetSimpleText(bufio.NewReader(strings.NewReader("  t2-1  ")), "Enter user id", &sb)

	assert.NoError(t, err)
	assert.Equal(t, "t2-1", v)
	assert.Equal(t, "Enter user id\n> ", sb.String())

	_, err = GetSimpleText(bufio.NewReader(strings.NewReader("")), "x", &sb)
	assert.Error(t, err)
}
