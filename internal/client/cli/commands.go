package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/civicstate/internal/client/badges"
	"github.com/dmitrijs2005/civicstate/internal/client/permissions"
	"github.com/dmitrijs2005/civicstate/internal/client/services"
)

var errUsage = errors.New("usage")

func usage(format string) error {
	return fmt.Errorf("%w: %s", errUsage, format)
}

func (a *App) screen() services.Screen {
	return a.session.Screen()
}

// status is shown in the prompt.
func (a *App) status() string {
	parts := []string{a.screen().String(), string(a.mode())}
	if u := a.session.User(); u != nil {
		parts = append(parts, u.DisplayName)
	}
	if st := a.session.Staff(); st != nil {
		parts = append(parts, "staff:"+st.Email)
	}
	return strings.Join(parts, " | ")
}

// personaGlyph maps a persona key to its glyph; anything else is taken as a
// glyph typed directly.
func personaGlyph(s string) string {
	if p := badges.ResolvePersona(s); p.Key != badges.UnknownPersona.Key {
		return p.Glyph
	}
	return s
}

func (a *App) Onboard(ctx context.Context) error {
	if _, err := a.boot.CompleteOnboarding(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Welcome! Pick a nickname and an avatar with 'anonsetup <persona> <nickname>'.")
	fmt.Fprintln(a.out, "Type 'personas' to see the avatars.")
	return nil
}

func (a *App) Personas(ctx context.Context) error {
	for _, p := range badges.Personas() {
		fmt.Fprintf(a.out, "%-8s %s %s: %s\n", p.Key, p.Glyph, p.Name, p.Description)
	}
	return nil
}

// profileArgs reads "<persona|glyph> <nickname...>" or prompts for both.
func (a *App) profileArgs(args []string) (name, glyph string, err error) {
	if len(args) >= 2 {
		return strings.Join(args[1:], " "), personaGlyph(args[0]), nil
	}
	name, err = getSimpleText(a.reader, "Choose a nickname", a.out)
	if err != nil {
		return "", "", err
	}
	p, err := getSimpleText(a.reader, "Choose an avatar (persona key or emoji)", a.out)
	if err != nil {
		return "", "", err
	}
	return name, personaGlyph(p), nil
}

func (a *App) AnonSetup(ctx context.Context, args []string) error {
	name, glyph, err := a.profileArgs(args)
	if err != nil {
		return err
	}
	if _, err := a.boot.CompleteAnonSetup(ctx, name, glyph); err != nil {
		return err
	}
	if _, err := a.ledger.UpdateStreak(ctx); err != nil {
		a.log.Warn(ctx, "streak update failed", "error", err)
	}
	return a.Status(ctx)
}

func (a *App) Status(ctx context.Context) error {
	u := a.session.User()
	if u == nil {
		fmt.Fprintf(a.out, "Screen: %s\n", a.screen())
		return nil
	}
	lvl := badges.LevelFor(u.ExperiencePoints)
	tier := permissions.TrustTier(u.TrustScore)
	fmt.Fprintf(a.out, "%s %s (%s)\n", u.AvatarGlyph, u.DisplayName, u.Role)
	fmt.Fprintf(a.out, "  id:     %s\n", u.ID)
	fmt.Fprintf(a.out, "  xp:     %d (level %d, %s)\n", u.ExperiencePoints, lvl.Number, lvl.Name)
	fmt.Fprintf(a.out, "  trust:  %.2f (%s)\n", u.TrustScore, tier.Name)
	fmt.Fprintf(a.out, "  streak: %d day(s)\n", u.StreakDays)
	fmt.Fprintf(a.out, "  badges: %d\n", len(u.Badges))
	fmt.Fprintf(a.out, "  mode:   %s\n", a.mode())
	return nil
}

func (a *App) Profile(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return a.Status(ctx)
	}
	if len(args) < 2 {
		return usage("profile <persona|glyph> <nickname>")
	}
	name, glyph, err := a.profileArgs(args)
	if err != nil {
		return err
	}
	u, err := a.boot.UpdateProfile(ctx, name, glyph)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Profile updated: %s %s\n", u.AvatarGlyph, u.DisplayName)
	return nil
}

// badgeSet snapshots the badges currently held.
func (a *App) badgeSet() map[string]bool {
	set := map[string]bool{}
	if u := a.session.User(); u != nil {
		for _, b := range u.Badges {
			set[b] = true
		}
	}
	return set
}

func (a *App) announceBadges(before map[string]bool) {
	u := a.session.User()
	if u == nil {
		return
	}
	for _, key := range u.Badges {
		if !before[key] {
			b := badges.Resolve(key)
			fmt.Fprintf(a.out, "New badge: %s %s\n", b.Glyph, b.Name)
		}
	}
}

func (a *App) AwardXP(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return usage("xp <amount> <reason> [multiplier]")
	}
	amount, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return usage("xp <amount> <reason> [multiplier]")
	}
	var opts []services.XPOption
	if len(args) > 2 {
		m, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return usage("xp <amount> <reason> [multiplier]")
		}
		opts = append(opts, services.WithMultiplier(m))
	}

	before := a.badgeSet()
	granted, err := a.ledger.AwardXP(ctx, amount, args[1], opts...)
	if err != nil {
		return err
	}
	var total int64
	if u := a.session.User(); u != nil {
		total = u.ExperiencePoints
	}
	lvl := badges.LevelFor(total)
	fmt.Fprintf(a.out, "+%d XP (total %d, level %d, %s)\n", granted, total, lvl.Number, lvl.Name)
	a.announceBadges(before)
	return nil
}

func (a *App) Trust(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return usage("trust <delta> <reason>")
	}
	delta, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return usage("trust <delta> <reason>")
	}
	before := a.badgeSet()
	score, err := a.ledger.UpdateTrustScore(ctx, delta, strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Trust: %.2f (%s)\n", score, permissions.TrustTier(score).Name)
	a.announceBadges(before)
	return nil
}

func (a *App) Streak(ctx context.Context) error {
	before := a.badgeSet()
	days, err := a.ledger.UpdateStreak(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Streak: %d day(s)\n", days)
	a.announceBadges(before)
	return nil
}

func (a *App) Badges(ctx context.Context) error {
	u := a.session.User()
	if u == nil || len(u.Badges) == 0 {
		fmt.Fprintln(a.out, "No badges yet.")
		return nil
	}
	for _, b := range badges.ResolveAll(u.Badges) {
		fmt.Fprintf(a.out, "%s %-18s %s\n", b.Glyph, b.Name, b.Description)
	}
	return nil
}

func (a *App) Badge(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("badge <key>")
	}
	b := badges.Resolve(args[0])
	fmt.Fprintf(a.out, "%s %s (%s): %s\n", b.Glyph, b.Name, b.Color, b.Description)
	return nil
}

func (a *App) Level(ctx context.Context) error {
	u := a.session.User()
	if u == nil {
		return services.ErrNoSession
	}
	lvl := badges.LevelFor(u.ExperiencePoints)
	fmt.Fprintf(a.out, "Level %d: %s\n", lvl.Number, lvl.Name)
	if next, ok := badges.NextLevel(u.ExperiencePoints); ok {
		fmt.Fprintf(a.out, "%d XP to level %d (%s)\n", next.MinXP-u.ExperiencePoints, next.Number, next.Name)
	} else {
		fmt.Fprintln(a.out, "Top level reached.")
	}
	return nil
}

// Can answers "can <permission>" or "can <module> <action>"; with no
// arguments it lists the effective permissions.
func (a *App) Can(ctx context.Context, args []string) error {
	var allowed bool
	switch len(args) {
	case 0:
		for _, p := range a.session.Permissions() {
			fmt.Fprintln(a.out, p)
		}
		return nil
	case 1:
		allowed = a.session.Can(args[0])
	case 2:
		allowed = a.session.CanModule(args[0], args[1])
	default:
		return usage("can [<permission> | <module> <action>]")
	}
	if allowed {
		fmt.Fprintln(a.out, "yes")
	} else {
		fmt.Fprintln(a.out, "no")
	}
	return nil
}

func (a *App) Clear(ctx context.Context) error {
	answer, err := getSimpleText(a.reader, "This erases your profile, XP and badges on this device. Type 'yes' to continue", a.out)
	if err != nil {
		return err
	}
	if !strings.EqualFold(answer, "yes") {
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	}
	if err := a.boot.ClearAllData(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "All local data cleared.")
	return nil
}
