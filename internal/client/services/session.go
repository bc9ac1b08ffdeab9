package services

import (
	"slices"
	"sync"

	"github.com/dmitrijs2005/civicstate/internal/client/models"
	"github.com/dmitrijs2005/civicstate/internal/client/permissions"
)

// Screen is the one top-level view the session resolves to.
type Screen int

const (
	ScreenLoading Screen = iota
	ScreenFirstTime
	ScreenAnonSetup
	ScreenMain
)

func (s Screen) String() string {
	switch s {
	case ScreenLoading:
		return "loading"
	case ScreenFirstTime:
		return "first-time"
	case ScreenAnonSetup:
		return "anon-setup"
	case ScreenMain:
		return "main"
	}
	return "unknown"
}

// Session is the in-memory state shared by the services. It is owned by the
// application and passed to each service at construction. A user record is
// present only on ScreenMain.
//
// Getters return copies.
type Session struct {
	// writeMu serializes persisted mutations of the user record.
	writeMu sync.Mutex

	mu     sync.RWMutex
	screen Screen
	user   *models.User
	perms  []string
	staff  *models.StaffSession
}

func NewSession() *Session {
	return &Session{screen: ScreenLoading}
}

func (s *Session) Screen() Screen {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.screen
}

func (s *Session) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.Clone()
}

// Permissions is the cached effective permission set.
func (s *Session) Permissions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.perms)
}

// Can answers from the cached set, so trust-tier features count as well as
// the role table and overrides.
func (s *Session) Can(perm string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return false
	}
	if permissions.IsAdmin(s.user.Role) {
		return true
	}
	return slices.Contains(s.perms, perm) || slices.Contains(s.perms, permissions.Wildcard)
}

func (s *Session) CanModule(module, action string) bool {
	return s.Can(permissions.Module(module, action))
}

func (s *Session) Staff() *models.StaffSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.staff == nil {
		return nil
	}
	c := *s.staff
	c.Permissions = slices.Clone(s.staff.Permissions)
	return &c
}

func (s *Session) setScreen(sc Screen) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.screen = sc
	if sc != ScreenMain {
		s.user = nil
		s.perms = nil
	}
}

// setMain enters the main screen with u and computes its permissions.
func (s *Session) setMain(u *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.screen = ScreenMain
	s.user = u.Clone()
	s.perms = permissions.Effective(u.Role, u.PermissionOverrides, u.TrustScore)
}

// setUser replaces the record and leaves the cached permissions alone.
func (s *Session) setUser(u *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = u.Clone()
}

func (s *Session) recomputePermissions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		s.perms = nil
		return nil
	}
	s.perms = permissions.Effective(s.user.Role, s.user.PermissionOverrides, s.user.TrustScore)
	return slices.Clone(s.perms)
}

func (s *Session) setStaff(st *models.StaffSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staff = st
}

// reset returns to the state of a first launch.
func (s *Session) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.screen = ScreenFirstTime
	s.user = nil
	s.perms = nil
	s.staff = nil
}
