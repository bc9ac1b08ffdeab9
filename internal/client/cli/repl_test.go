package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/dmitrijs2005/civicstate/internal/client/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExec struct {
	scr   services.Screen
	calls []string
	args  map[string][]string
	err   error
}

func newFakeExec(s services.Screen) *fakeExec {
	return &fakeExec{scr: s, args: map[string][]string{}}
}

func (f *fakeExec) rec(name string, args []string) error {
	f.calls = append(f.calls, name)
	f.args[name] = args
	return f.err
}

func (f *fakeExec) screen() services.Screen { return f.scr }

func (f *fakeExec) Onboard(ctx context.Context) error {
	f.scr = services.ScreenAnonSetup
	return f.rec("onboard", nil)
}
func (f *fakeExec) AnonSetup(ctx context.Context, args []string) error {
	f.scr = services.ScreenMain
	return f.rec("anonsetup", args)
}
func (f *fakeExec) Personas(ctx context.Context) error { return f.rec("personas", nil) }
func (f *fakeExec) Status(ctx context.Context) error   { return f.rec("status", nil) }
func (f *fakeExec) Profile(ctx context.Context, args []string) error {
	return f.rec("profile", args)
}
func (f *fakeExec) AwardXP(ctx context.Context, args []string) error { return f.rec("xp", args) }
func (f *fakeExec) Trust(ctx context.Context, args []string) error   { return f.rec("trust", args) }
func (f *fakeExec) Streak(ctx context.Context) error                 { return f.rec("streak", nil) }
func (f *fakeExec) Badges(ctx context.Context) error                 { return f.rec("badges", nil) }
func (f *fakeExec) Badge(ctx context.Context, args []string) error   { return f.rec("badge", args) }
func (f *fakeExec) Level(ctx context.Context) error                  { return f.rec("level", nil) }
func (f *fakeExec) Can(ctx context.Context, args []string) error     { return f.rec("can", args) }
func (f *fakeExec) Clear(ctx context.Context) error                  { return f.rec("clear", nil) }
func (f *fakeExec) StaffLogin(ctx context.Context) error             { return f.rec("stafflogin", nil) }
func (f *fakeExec) AssignRole(ctx context.Context, args []string) error {
	return f.rec("assignrole", args)
}
func (f *fakeExec) RevokeRole(ctx context.Context, args []string) error {
	return f.rec("revokerole", args)
}
func (f *fakeExec) Users(ctx context.Context) error                 { return f.rec("users", nil) }
func (f *fakeExec) History(ctx context.Context, args []string) error { return f.rec("history", args) }
func (f *fakeExec) Content(ctx context.Context, args []string) error { return f.rec("content", args) }
func (f *fakeExec) Logout(ctx context.Context) error                 { return f.rec("logout", nil) }

// capturePrintln collects every line the REPL prints.
func capturePrintln(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func scannerOf(lines ...string) *bufio.Scanner {
	return bufio.NewScanner(strings.NewReader(strings.Join(lines, "\n") + "\n"))
}

func TestRunREPL_ScreenGatedFlow(t *testing.T) {
	out := capturePrintln(t)
	f := newFakeExec(services.ScreenFirstTime)

	runREPL(context.Background(), f, func() string { return f.scr.String() }, scannerOf(
		"xp 10 read",
		"onboard",
		"anonsetup owl Civic Sam",
		"",
		"xp 10 read 2",
		"can comments edit",
		"exit",
		"status",
	))

	require.Equal(t, []string{"onboard", "anonsetup", "xp", "can"}, f.calls)
	assert.Equal(t, []string{"owl", "Civic", "Sam"}, f.args["anonsetup"])
	assert.Equal(t, []string{"10", "read", "2"}, f.args["xp"])

	joined := strings.Join(*out, "\n")
	assert.Contains(t, joined, `Command "xp" is not available on the first-time screen`)
	assert.Contains(t, joined, "civic> anon-setup > ")
	assert.Contains(t, joined, "Bye!")
}

func TestRunREPL_HelpDependsOnScreen(t *testing.T) {
	out := capturePrintln(t)
	f := newFakeExec(services.ScreenAnonSetup)

	runREPL(context.Background(), f, func() string { return "" }, scannerOf("help"))

	require.Contains(t, *out, "Available commands: anonsetup, personas, help, exit")
	assert.Empty(t, f.calls)
}

func TestRunREPL_UnknownCommandAndErrors(t *testing.T) {
	out := capturePrintln(t)
	f := newFakeExec(services.ScreenMain)
	f.err = errors.New("boom")

	runREPL(context.Background(), f, func() string { return "" }, scannerOf("frobnicate", "streak", "quit"))

	assert.Equal(t, []string{"streak"}, f.calls)
	assert.Contains(t, *out, "Unknown command: frobnicate")
	assert.Contains(t, *out, "Error: boom")
}

func TestRunREPL_EOFStops(t *testing.T) {
	capturePrintln(t)
	f := newFakeExec(services.ScreenMain)
	runREPL(context.Background(), f, func() string { return "" }, bufio.NewScanner(strings.NewReader("")))
	assert.Empty(t, f.calls)
}

func TestCommandsFor_MainIncludesStaffCommands(t *testing.T) {
	cmds := commandsFor(services.ScreenMain)
	for _, c := range []string{"stafflogin", "users", "content", "logout", "xp"} {
		assert.Contains(t, cmds, c)
	}
	assert.NotContains(t, cmds, "onboard")
	assert.Equal(t, []string{"help", "exit"}, commandsFor(services.ScreenLoading))
}
