package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/dmitrijs2005/civicstate/internal/client/client"
	"github.com/dmitrijs2005/civicstate/internal/client/models"
	"github.com/dmitrijs2005/civicstate/internal/client/permissions"
	"github.com/dmitrijs2005/civicstate/internal/client/repositories/kv"
	"github.com/dmitrijs2005/civicstate/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

const MinPasswordLen = 8

// StaffService covers the staff login and the admin screens. Every method
// reports its outcome as a Result; nothing here returns an error to the UI.
type StaffService interface {
	Login(ctx context.Context, email, password string) Result
	// Restore reloads a persisted, unexpired staff session.
	Restore(ctx context.Context) bool
	GlobalLogout(ctx context.Context) Result

	AssignRole(ctx context.Context, userID string, role models.Role, reason string) Result
	RevokeRole(ctx context.Context, userID string, role models.Role, reason string) Result
	ListUsers(ctx context.Context) ([]models.AdminUser, Result)
	RoleHistory(ctx context.Context, userID string) ([]models.RoleChange, Result)

	ListContent(ctx context.Context, kind models.ContentKind) ([]models.Envelope, Result)
	SaveContent(ctx context.Context, e models.Envelope) (models.Envelope, Result)
	DeleteContent(ctx context.Context, kind models.ContentKind, id string) Result
}

type staffService struct {
	store   kv.Store
	api     client.Client
	session *Session
	boot    Bootstrapper
	log     logging.Logger
	now     func() time.Time
}

// NewStaffService builds a StaffService; boot performs the local wipe on
// global logout.
func NewStaffService(d Deps, boot Bootstrapper) StaffService {
	return &staffService{
		store:   d.Store,
		api:     d.API,
		session: d.Session,
		boot:    boot,
		log:     d.Logger,
		now:     d.clock(),
	}
}

type validator func() error

// validate runs checks in order and stops at the first failure.
func validate(checks ...validator) error {
	for _, c := range checks {
		if err := c(); err != nil {
			return err
		}
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func loginValidators(email, password string) []validator {
	return []validator{
		func() error {
			if email == "" {
				return invalid("email is required")
			}
			return nil
		},
		func() error {
			a, err := mail.ParseAddress(email)
			if err != nil || a.Address != email || !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
				return invalid("email is not valid")
			}
			return nil
		},
		func() error {
			if password == "" {
				return invalid("password is required")
			}
			return nil
		},
		func() error {
			if len(password) < MinPasswordLen {
				return invalid("password must be at least %d characters", MinPasswordLen)
			}
			return nil
		},
	}
}

// tokenClaims reads expiry and role from a JWT without verifying its
// signature; the backend verifies it on every call.
func tokenClaims(token string) (exp *time.Time, role models.Role, ok bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, "", false
	}
	if e, err := claims.GetExpirationTime(); err == nil && e != nil {
		t := e.Time
		exp = &t
	}
	if r, _ := claims["role"].(string); r != "" {
		if parsed, err := models.ParseRole(r); err == nil {
			role = parsed
		}
	}
	return exp, role, true
}

func (s *staffService) expired(token string) bool {
	exp, _, ok := tokenClaims(token)
	return ok && exp != nil && !s.now().Before(*exp)
}

func (s *staffService) Login(ctx context.Context, email, password string) Result {
	email = strings.TrimSpace(email)
	if err := validate(loginValidators(email, password)...); err != nil {
		return failure(err)
	}

	st, err := s.api.StaffLogin(ctx, email, password)
	if err != nil {
		s.log.Warn(ctx, "staff login failed", "email", email, "error", err)
		if errors.Is(err, client.ErrUnauthorized) {
			return Result{Error: "Invalid email or password."}
		}
		return failure(err)
	}
	if s.expired(st.Token) {
		s.api.SetToken("")
		return Result{Error: "Received an expired session token."}
	}
	if !st.Role.Valid() {
		if _, role, ok := tokenClaims(st.Token); ok && role != "" {
			st.Role = role
		}
	}

	if err := kv.SetJSON(ctx, s.store, KeyStaffToken, st); err != nil {
		s.log.Warn(ctx, "persist staff session failed", "error", err)
	}
	s.session.setStaff(st)
	s.log.Info(ctx, "staff logged in", "staff_id", st.UserID, "role", st.Role)
	return success()
}

func (s *staffService) Restore(ctx context.Context) bool {
	var st models.StaffSession
	found, err := kv.GetJSON(ctx, s.store, KeyStaffToken, &st)
	if err != nil || !found || st.Token == "" {
		if err != nil {
			s.log.Warn(ctx, "stored staff session unreadable", "error", err)
		}
		return false
	}
	if s.expired(st.Token) {
		s.log.Info(ctx, "stored staff session expired")
		_ = s.store.Delete(ctx, KeyStaffToken)
		return false
	}
	s.api.SetToken(st.Token)
	s.session.setStaff(&st)
	return true
}

// GlobalLogout asks the backend to revoke all sessions and wipes local data
// whether or not the backend answered.
func (s *staffService) GlobalLogout(ctx context.Context) Result {
	if err := s.api.GlobalLogout(ctx); err != nil {
		s.log.Warn(ctx, "remote global logout failed", "error", err)
	}
	if err := s.boot.ClearAllData(ctx); err != nil {
		return failure(err)
	}
	return success()
}

// current returns the live staff session, dropping it once the token expired.
func (s *staffService) current(ctx context.Context) (*models.StaffSession, error) {
	st := s.session.Staff()
	if st == nil {
		return nil, ErrNotLoggedIn
	}
	if s.expired(st.Token) {
		s.session.setStaff(nil)
		s.api.SetToken("")
		_ = s.store.Delete(ctx, KeyStaffToken)
		return nil, fmt.Errorf("%w: session expired", ErrNotLoggedIn)
	}
	return st, nil
}

func (s *staffService) requireAdmin(ctx context.Context) error {
	st, err := s.current(ctx)
	if err != nil {
		return err
	}
	if !permissions.IsAdmin(st.Role) {
		return ErrAdminRequired
	}
	return nil
}

func (s *staffService) requireModule(ctx context.Context, kind models.ContentKind, action string) error {
	st, err := s.current(ctx)
	if err != nil {
		return err
	}
	if !permissions.HasModulePermission(st.Role, kind.Module(), action, st.Permissions) {
		return fmt.Errorf("%w: %s", ErrPermissionDenied, permissions.Module(kind.Module(), action))
	}
	return nil
}

func roleValidators(userID string, role models.Role) []validator {
	return []validator{
		func() error {
			if strings.TrimSpace(userID) == "" {
				return invalid("user id is required")
			}
			return nil
		},
		func() error {
			if !role.Valid() {
				return invalid("unknown role %q", role)
			}
			return nil
		},
	}
}

func (s *staffService) changeRole(ctx context.Context, op string, userID string, role models.Role, reason string,
	call func(context.Context, models.RoleAssignment) error) Result {
	if err := s.requireAdmin(ctx); err != nil {
		return failure(err)
	}
	if err := validate(roleValidators(userID, role)...); err != nil {
		return failure(err)
	}
	a := models.RoleAssignment{UserID: strings.TrimSpace(userID), Role: role, Reason: reason}
	if err := call(ctx, a); err != nil {
		s.log.Warn(ctx, "role change failed", "op", op, "user_id", a.UserID, "role", role, "error", err)
		return failure(err)
	}
	s.log.Info(ctx, "role changed", "op", op, "user_id", a.UserID, "role", role)
	return success()
}

func (s *staffService) AssignRole(ctx context.Context, userID string, role models.Role, reason string) Result {
	return s.changeRole(ctx, "assign", userID, role, reason, s.api.AssignRole)
}

func (s *staffService) RevokeRole(ctx context.Context, userID string, role models.Role, reason string) Result {
	return s.changeRole(ctx, "revoke", userID, role, reason, s.api.RevokeRole)
}

func (s *staffService) ListUsers(ctx context.Context) ([]models.AdminUser, Result) {
	if err := s.requireAdmin(ctx); err != nil {
		return nil, failure(err)
	}
	users, err := s.api.ListUsers(ctx)
	if err != nil {
		return nil, failure(err)
	}
	return users, success()
}

func (s *staffService) RoleHistory(ctx context.Context, userID string) ([]models.RoleChange, Result) {
	if err := s.requireAdmin(ctx); err != nil {
		return nil, failure(err)
	}
	if strings.TrimSpace(userID) == "" {
		return nil, failure(invalid("user id is required"))
	}
	h, err := s.api.RoleHistory(ctx, userID)
	if err != nil {
		return nil, failure(err)
	}
	return h, success()
}

func (s *staffService) ListContent(ctx context.Context, kind models.ContentKind) ([]models.Envelope, Result) {
	if err := s.requireModule(ctx, kind, "read"); err != nil {
		return nil, failure(err)
	}
	list, err := s.api.ListContent(ctx, kind)
	if err != nil {
		return nil, failure(err)
	}
	return list, success()
}

func (s *staffService) SaveContent(ctx context.Context, e models.Envelope) (models.Envelope, Result) {
	action := "update"
	if e.ID == "" {
		action = "create"
	}
	if err := s.requireModule(ctx, e.Kind, action); err != nil {
		return models.Envelope{}, failure(err)
	}
	if _, err := e.Unwrap(); err != nil {
		return models.Envelope{}, failure(invalid("payload does not match %s: %v", e.Kind, err))
	}
	saved, err := s.api.SaveContent(ctx, e)
	if err != nil {
		return models.Envelope{}, failure(err)
	}
	return saved, success()
}

func (s *staffService) DeleteContent(ctx context.Context, kind models.ContentKind, id string) Result {
	if err := s.requireModule(ctx, kind, "delete"); err != nil {
		return failure(err)
	}
	if strings.TrimSpace(id) == "" {
		return failure(invalid("id is required"))
	}
	if err := s.api.DeleteContent(ctx, kind, id); err != nil {
		return failure(err)
	}
	return success()
}
