package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/civicstate/internal/client/models"
	"github.com/dmitrijs2005/civicstate/internal/client/services"
)

// report prints a failed Result and turns it into an error for the REPL.
func report(r services.Result) error {
	if r.Success {
		return nil
	}
	return errors.New(r.Error)
}

func (a *App) StaffLogin(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter staff email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer wipe(password)

	if err := report(a.staff.Login(ctx, email, string(password))); err != nil {
		return err
	}
	st := a.session.Staff()
	fmt.Fprintf(a.out, "Logged in as %s (%s)\n", st.Email, st.Role)
	return nil
}

func (a *App) roleArgs(args []string, cmd string) (string, models.Role, string, error) {
	if len(args) < 2 {
		return "", "", "", usage(cmd + " <user-id> <role> [reason]")
	}
	role, err := models.ParseRole(args[1])
	if err != nil {
		return "", "", "", err
	}
	return args[0], role, strings.Join(args[2:], " "), nil
}

func (a *App) AssignRole(ctx context.Context, args []string) error {
	userID, role, reason, err := a.roleArgs(args, "assignrole")
	if err != nil {
		return err
	}
	if err := report(a.staff.AssignRole(ctx, userID, role, reason)); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Assigned %s to %s\n", role, userID)
	return nil
}

func (a *App) RevokeRole(ctx context.Context, args []string) error {
	userID, role, reason, err := a.roleArgs(args, "revokerole")
	if err != nil {
		return err
	}
	if err := report(a.staff.RevokeRole(ctx, userID, role, reason)); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Revoked %s from %s\n", role, userID)
	return nil
}

func (a *App) Users(ctx context.Context) error {
	users, r := a.staff.ListUsers(ctx)
	if err := report(r); err != nil {
		return err
	}
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tROLE\tTRUST\tCREATED")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2f\t%s\n",
			u.ID, u.DisplayName, u.Email, u.Role, u.TrustScore, u.CreatedAt.Format(time.DateOnly))
	}
	return w.Flush()
}

func (a *App) History(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("history <user-id>")
	}
	changes, r := a.staff.RoleHistory(ctx, args[0])
	if err := report(r); err != nil {
		return err
	}
	if len(changes) == 0 {
		fmt.Fprintln(a.out, "No role changes.")
		return nil
	}
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tACTION\tROLE\tBY\tREASON")
	for _, c := range changes {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			c.ChangedAt.Format(time.DateTime), c.Action, c.Role, c.ChangedBy, c.Reason)
	}
	return w.Flush()
}

// Content handles "content list|save|delete <kind> [id]".
func (a *App) Content(ctx context.Context, args []string) error {
	const help = "content list <kind> | content save <kind> [id] | content delete <kind> <id>"
	if len(args) < 2 {
		return usage(help)
	}
	kind, err := models.ParseContentKind(args[1])
	if err != nil {
		return err
	}

	switch args[0] {
	case "list":
		items, r := a.staff.ListContent(ctx, kind)
		if err := report(r); err != nil {
			return err
		}
		for _, e := range items {
			fmt.Fprintf(a.out, "%s  %s\n", e.ID, e.Payload)
		}
		fmt.Fprintf(a.out, "%d %s item(s)\n", len(items), kind)
		return nil

	case "save":
		e := models.Envelope{Kind: kind}
		if len(args) > 2 {
			e.ID = args[2]
		}
		body, err := getMultiline(a.reader, fmt.Sprintf("Enter %s as JSON", kind), a.out)
		if err != nil {
			return err
		}
		if !json.Valid([]byte(body)) {
			return fmt.Errorf("%w: payload is not valid JSON", services.ErrValidation)
		}
		e.Payload = json.RawMessage(body)
		saved, r := a.staff.SaveContent(ctx, e)
		if err := report(r); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Saved %s %s\n", saved.Kind, saved.ID)
		return nil

	case "delete":
		if len(args) != 3 {
			return usage(help)
		}
		if err := report(a.staff.DeleteContent(ctx, kind, args[2])); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Deleted %s %s\n", kind, args[2])
		return nil
	}
	return usage(help)
}

// Logout revokes every session server-side and wipes the device.
func (a *App) Logout(ctx context.Context) error {
	if err := report(a.staff.GlobalLogout(ctx)); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out everywhere. Local data cleared.")
	return nil
}
