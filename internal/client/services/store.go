package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/civicstate/internal/client/models"
	"github.com/dmitrijs2005/civicstate/internal/client/repositories/kv"
	"github.com/dmitrijs2005/civicstate/internal/logging"
)

// userStore reads and writes the persisted session. Read-modify-write of the
// user record is serialized on the session, so stores built by different
// services over one Session never lose each other's updates.
type userStore struct {
	kv      kv.Store
	session *Session
	log     logging.Logger
}

func newUserStore(store kv.Store, session *Session, log logging.Logger) *userStore {
	return &userStore{kv: store, session: session, log: log}
}

// flag reads a boolean key. Unreadable values count as false.
func (s *userStore) flag(ctx context.Context, key string) bool {
	var v bool
	found, err := kv.GetJSON(ctx, s.kv, key, &v)
	if err != nil {
		s.log.Warn(ctx, "unreadable flag treated as unset", "key", key, "error", err)
		return false
	}
	return found && v
}

func (s *userStore) setFlag(ctx context.Context, key string) error {
	return kv.SetJSON(ctx, s.kv, key, true)
}

// load returns the persisted user, or nil when none is stored or none can be
// recovered. A corrupt record is rebuilt from the backup subset when that is
// intact. Read failures other than corruption are returned.
func (s *userStore) load(ctx context.Context) (*models.User, error) {
	var u models.User
	found, err := kv.GetJSON(ctx, s.kv, KeyUserProfile, &u)
	switch {
	case err == nil && found && u.ID != "":
		if u.Badges == nil {
			u.Badges = []string{}
		}
		return &u, nil
	case err != nil && !errors.Is(err, kv.ErrCorrupt):
		return nil, err
	case err != nil:
		s.log.Warn(ctx, "stored user record is corrupt", "error", err)
	}

	var b models.Backup
	if _, err := kv.GetJSON(ctx, s.kv, KeyUserBackup, &b); err != nil {
		if !errors.Is(err, kv.ErrCorrupt) {
			return nil, err
		}
		s.log.Warn(ctx, "stored user backup is corrupt", "error", err)
		return nil, nil
	}
	if !b.Valid() {
		return nil, nil
	}

	p := s.anonProfile(ctx)
	restored := models.NewAnonymousUser(b.ID, p.DisplayName, p.AvatarGlyph, b.CreatedAt)
	restored.TrustScore = models.ClampTrust(b.TrustScore)
	s.log.Info(ctx, "user restored from backup", "user_id", b.ID)
	return restored, nil
}

func (s *userStore) anonProfile(ctx context.Context) anonProfile {
	var p anonProfile
	if _, err := kv.GetJSON(ctx, s.kv, KeyAnonProfile, &p); err != nil {
		s.log.Warn(ctx, "stored anon profile is unreadable", "error", err)
		return anonProfile{}
	}
	return p
}

// save writes the record and its backup subset in one batch.
func (s *userStore) save(ctx context.Context, u *models.User) error {
	pairs, err := kv.Encode(map[string]any{
		KeyUserProfile: u,
		KeyUserBackup:  u.Backup(),
	})
	if err != nil {
		return err
	}
	if err := s.kv.SetMany(ctx, pairs); err != nil {
		return fmt.Errorf("persist user: %w", err)
	}
	return nil
}

// mutate applies fn to a copy of the session user, bumps its version,
// persists it and publishes it to the session. fn returning errSkip leaves
// everything untouched and reports no error.
func (s *userStore) mutate(ctx context.Context, fn func(u *models.User) error) (*models.User, error) {
	s.session.writeMu.Lock()
	defer s.session.writeMu.Unlock()

	if s.session.Screen() != ScreenMain {
		return nil, ErrNoSession
	}
	u := s.session.User()
	if u == nil {
		return nil, ErrNoSession
	}

	if err := fn(u); err != nil {
		if errors.Is(err, errSkip) {
			return u, nil
		}
		return nil, err
	}
	u.Version++

	if err := s.save(ctx, u); err != nil {
		return nil, err
	}
	s.session.setUser(u)
	return u.Clone(), nil
}

var errSkip = errors.New("skip")

func (s *userStore) clear(ctx context.Context) error {
	s.session.writeMu.Lock()
	defer s.session.writeMu.Unlock()
	if err := s.kv.Clear(ctx); err != nil {
		return fmt.Errorf("clear local data: %w", err)
	}
	return nil
}
