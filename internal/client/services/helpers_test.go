package services

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/civicstate/internal/client/client"
	"github.com/dmitrijs2005/civicstate/internal/client/models"
	"github.com/dmitrijs2005/civicstate/internal/client/repositories/kv"
	"github.com/dmitrijs2005/civicstate/internal/logging"
	"github.com/stretchr/testify/require"
)

// ---- fake client ----

type fakeClient struct {
	mu sync.Mutex

	GetUserRet *models.User
	GetUserErr error
	SyncErr    error
	XPErr      error
	TrustErr   error
	LoginRet   *models.StaffSession
	LoginErr   error
	LogoutErr  error
	AdminErr   error

	Users   []models.AdminUser
	Content []models.Envelope

	Calls   map[string]int
	Synced  []*models.User
	XP      []models.XPTransaction
	Trust   []models.TrustEvent
	Assigns []models.RoleAssignment
	Token   string
}

func newFakeClient() *fakeClient {
	return &fakeClient{Calls: map[string]int{}}
}

func (f *fakeClient) hit(name string) {
	f.mu.Lock()
	f.Calls[name]++
	f.mu.Unlock()
}

func (f *fakeClient) calls(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Calls[name]
}

func (f *fakeClient) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.Calls {
		n += c
	}
	return n
}

func (f *fakeClient) Ping(ctx context.Context) error { f.hit("Ping"); return nil }

func (f *fakeClient) SetToken(token string) {
	f.mu.Lock()
	f.Token = token
	f.mu.Unlock()
}

func (f *fakeClient) GetUser(ctx context.Context, id string) (*models.User, error) {
	f.hit("GetUser")
	if f.GetUserErr != nil {
		return nil, f.GetUserErr
	}
	return f.GetUserRet.Clone(), nil
}

func (f *fakeClient) SyncUser(ctx context.Context, u *models.User) (*models.User, error) {
	f.hit("SyncUser")
	f.mu.Lock()
	f.Synced = append(f.Synced, u.Clone())
	f.mu.Unlock()
	return nil, f.SyncErr
}

func (f *fakeClient) RecordXP(ctx context.Context, tx models.XPTransaction) error {
	f.hit("RecordXP")
	f.mu.Lock()
	f.XP = append(f.XP, tx)
	f.mu.Unlock()
	return f.XPErr
}

func (f *fakeClient) RecordTrustEvent(ctx context.Context, ev models.TrustEvent) error {
	f.hit("RecordTrustEvent")
	f.mu.Lock()
	f.Trust = append(f.Trust, ev)
	f.mu.Unlock()
	return f.TrustErr
}

func (f *fakeClient) StaffLogin(ctx context.Context, email, password string) (*models.StaffSession, error) {
	f.hit("StaffLogin")
	if f.LoginErr != nil {
		return nil, f.LoginErr
	}
	s := *f.LoginRet
	f.SetToken(s.Token)
	return &s, nil
}

func (f *fakeClient) GlobalLogout(ctx context.Context) error {
	f.hit("GlobalLogout")
	f.SetToken("")
	return f.LogoutErr
}

func (f *fakeClient) AssignRole(ctx context.Context, a models.RoleAssignment) error {
	f.hit("AssignRole")
	f.mu.Lock()
	f.Assigns = append(f.Assigns, a)
	f.mu.Unlock()
	return f.AdminErr
}

func (f *fakeClient) RevokeRole(ctx context.Context, a models.RoleAssignment) error {
	f.hit("RevokeRole")
	return f.AdminErr
}

func (f *fakeClient) ListUsers(ctx context.Context) ([]models.AdminUser, error) {
	f.hit("ListUsers")
	return f.Users, f.AdminErr
}

func (f *fakeClient) RoleHistory(ctx context.Context, userID string) ([]models.RoleChange, error) {
	f.hit("RoleHistory")
	return []models.RoleChange{{UserID: userID, Role: models.RoleTrusted, Action: "assign"}}, f.AdminErr
}

func (f *fakeClient) ListContent(ctx context.Context, kind models.ContentKind) ([]models.Envelope, error) {
	f.hit("ListContent")
	return f.Content, f.AdminErr
}

func (f *fakeClient) SaveContent(ctx context.Context, e models.Envelope) (models.Envelope, error) {
	f.hit("SaveContent")
	if e.ID == "" {
		e.ID = "new-id"
	}
	return e, f.AdminErr
}

func (f *fakeClient) DeleteContent(ctx context.Context, kind models.ContentKind, id string) error {
	f.hit("DeleteContent")
	return f.AdminErr
}

var _ client.Client = (*fakeClient)(nil)

// ---- recording logger ----

type recLogger struct {
	mu      sync.Mutex
	entries []string
}

func (l *recLogger) add(level, msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, level+" "+msg+" "+fmt.Sprint(args...))
}

func (l *recLogger) Debug(_ context.Context, msg string, args ...any) { l.add("DEBUG", msg, args...) }
func (l *recLogger) Info(_ context.Context, msg string, args ...any)  { l.add("INFO", msg, args...) }
func (l *recLogger) Warn(_ context.Context, msg string, args ...any)  { l.add("WARN", msg, args...) }
func (l *recLogger) Error(_ context.Context, msg string, args ...any) { l.add("ERROR", msg, args...) }
func (l *recLogger) With(args ...any) logging.Logger                  { return l }

func (l *recLogger) has(level, msg string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if len(e) >= len(level)+1+len(msg) && e[:len(level)+1+len(msg)] == level+" "+msg {
			return true
		}
	}
	return false
}

// ---- harness ----

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

type harness struct {
	store   kv.Store
	api     *fakeClient
	session *Session
	syncer  *Syncer
	log     *recLogger
	clock   *clock
	boot    *bootstrapper
	ledger  Ledger
	staff   StaffService
}

func newStore(t *testing.T) kv.Store {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "civic.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return kv.NewSQLiteStore(db)
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		store:   newStore(t),
		api:     newFakeClient(),
		session: NewSession(),
		log:     &recLogger{},
		clock:   &clock{now: time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)},
	}
	h.syncer = NewSyncer(h.log, 2, time.Millisecond)
	d := Deps{Store: h.store, API: h.api, Session: h.session, Syncer: h.syncer, Logger: h.log, Now: h.clock.Now}
	h.boot = NewBootstrapper(d).(*bootstrapper)
	h.ledger = NewLedger(d, 1)
	h.staff = NewStaffService(d, h.boot)
	t.Cleanup(h.syncer.Wait)
	return h
}

func (h *harness) setFlags(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		require.NoError(t, kv.SetJSON(context.Background(), h.store, k, true))
	}
}

// toMain bootstraps straight into the main screen with a fresh user.
func (h *harness) toMain(t *testing.T) *models.User {
	t.Helper()
	h.setFlags(t, KeyOnboardingCompleted, KeyAnonSetupCompleted)
	h.api.GetUserErr = client.ErrNotFound
	sc, err := h.boot.Bootstrap(context.Background())
	require.NoError(t, err)
	require.Equal(t, ScreenMain, sc)
	h.syncer.Wait()
	return h.session.User()
}

func (h *harness) storedUser(t *testing.T) *models.User {
	t.Helper()
	var u models.User
	found, err := kv.GetJSON(context.Background(), h.store, KeyUserProfile, &u)
	require.NoError(t, err)
	require.True(t, found)
	return &u
}
