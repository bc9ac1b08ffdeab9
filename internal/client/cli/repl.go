package cli

import (
	"bufio"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrijs2005/civicstate/internal/client/services"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	screen() services.Screen

	Onboard(ctx context.Context) error
	AnonSetup(ctx context.Context, args []string) error
	Personas(ctx context.Context) error

	Status(ctx context.Context) error
	Profile(ctx context.Context, args []string) error
	AwardXP(ctx context.Context, args []string) error
	Trust(ctx context.Context, args []string) error
	Streak(ctx context.Context) error
	Badges(ctx context.Context) error
	Badge(ctx context.Context, args []string) error
	Level(ctx context.Context) error
	Can(ctx context.Context, args []string) error
	Clear(ctx context.Context) error

	StaffLogin(ctx context.Context) error
	AssignRole(ctx context.Context, args []string) error
	RevokeRole(ctx context.Context, args []string) error
	Users(ctx context.Context) error
	History(ctx context.Context, args []string) error
	Content(ctx context.Context, args []string) error
	Logout(ctx context.Context) error
}

// commandsFor lists what may be typed on each screen, in help order.
func commandsFor(s services.Screen) []string {
	switch s {
	case services.ScreenFirstTime:
		return []string{"onboard", "help", "exit"}
	case services.ScreenAnonSetup:
		return []string{"anonsetup", "personas", "help", "exit"}
	case services.ScreenMain:
		return []string{
			"status", "profile", "xp", "trust", "streak", "badges", "badge", "level", "can", "clear",
			"stafflogin", "assignrole", "revokerole", "users", "history", "content", "logout",
			"help", "exit",
		}
	}
	return []string{"help", "exit"}
}

// runREPL reads commands from scanner until EOF or "exit"/"quit" and
// dispatches them to a. A command is accepted only on the screen that owns
// it. Handler errors are printed and the loop carries on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("civic> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if cmd == "exit" || cmd == "quit" {
			printlnFn("Bye!")
			return
		}

		allowed := commandsFor(a.screen())
		if cmd == "help" {
			printlnFn("Available commands:", strings.Join(allowed, ", "))
			continue
		}
		if !slices.Contains(allowed, cmd) {
			if knownCommand(cmd) {
				printlnFn(fmt.Sprintf("Command %q is not available on the %s screen", cmd, a.screen()))
			} else {
				printlnFn("Unknown command:", cmd)
			}
			continue
		}

		if err := dispatch(ctx, a, cmd, args); err != nil {
			printlnFn("Error:", err)
		}
	}
}

func knownCommand(cmd string) bool {
	for _, s := range []services.Screen{services.ScreenFirstTime, services.ScreenAnonSetup, services.ScreenMain} {
		if slices.Contains(commandsFor(s), cmd) {
			return true
		}
	}
	return false
}

func dispatch(ctx context.Context, a execIface, cmd string, args []string) error {
	switch cmd {
	case "onboard":
		return a.Onboard(ctx)
	case "anonsetup":
		return a.AnonSetup(ctx, args)
	case "personas":
		return a.Personas(ctx)
	case "status":
		return a.Status(ctx)
	case "profile":
		return a.Profile(ctx, args)
	case "xp":
		return a.AwardXP(ctx, args)
	case "trust":
		return a.Trust(ctx, args)
	case "streak":
		return a.Streak(ctx)
	case "badges":
		return a.Badges(ctx)
	case "badge":
		return a.Badge(ctx, args)
	case "level":
		return a.Level(ctx)
	case "can":
		return a.Can(ctx, args)
	case "clear":
		return a.Clear(ctx)
	case "stafflogin":
		return a.StaffLogin(ctx)
	case "assignrole":
		return a.AssignRole(ctx, args)
	case "revokerole":
		return a.RevokeRole(ctx, args)
	case "users":
		return a.Users(ctx)
	case "history":
		return a.History(ctx, args)
	case "content":
		return a.Content(ctx, args)
	case "logout":
		return a.Logout(ctx)
	}
	return fmt.Errorf("unknown command %q", cmd)
}
