package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/civicstate/internal/client/client"
	"github.com/dmitrijs2005/civicstate/internal/client/models"
	"github.com/dmitrijs2005/civicstate/internal/client/repositories/kv"
	"github.com/dmitrijs2005/civicstate/internal/logging"
	"github.com/google/uuid"
)

const MaxDisplayNameLen = 30

// Bootstrapper resolves the session once per start and owns the
// onboarding steps and the data reset.
type Bootstrapper interface {
	Bootstrap(ctx context.Context) (Screen, error)
	CompleteOnboarding(ctx context.Context) (Screen, error)
	CompleteAnonSetup(ctx context.Context, displayName, glyph string) (Screen, error)
	UpdateProfile(ctx context.Context, displayName, glyph string) (*models.User, error)
	ClearAllData(ctx context.Context) error
}

type bootstrapper struct {
	store   *userStore
	api     client.Client
	session *Session
	syncer  *Syncer
	log     logging.Logger
	now     func() time.Time
	newID   func() string
}

// Deps is what every service is built from.
type Deps struct {
	Store   kv.Store
	API     client.Client
	Session *Session
	Syncer  *Syncer
	Logger  logging.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

func (d Deps) clock() func() time.Time {
	if d.Now != nil {
		return d.Now
	}
	return time.Now
}

func NewBootstrapper(d Deps) Bootstrapper {
	return newBootstrapper(d, newUserStore(d.Store, d.Session, d.Logger))
}

func newBootstrapper(d Deps, store *userStore) *bootstrapper {
	return &bootstrapper{
		store:   store,
		api:     d.API,
		session: d.Session,
		syncer:  d.Syncer,
		log:     d.Logger,
		now:     d.clock(),
		newID:   uuid.NewString,
	}
}

// Bootstrap decides the screen from the persisted flags and, for the main
// screen, loads or creates the user. Network failures fall back to the
// local record. A failing local store is returned as an error and nothing
// is written, so an unreadable record is never replaced by a new user.
func (b *bootstrapper) Bootstrap(ctx context.Context) (Screen, error) {
	b.session.writeMu.Lock()
	defer b.session.writeMu.Unlock()

	b.session.setScreen(ScreenLoading)

	if !b.store.flag(ctx, KeyOnboardingCompleted) {
		b.session.setScreen(ScreenFirstTime)
		return ScreenFirstTime, nil
	}
	if !b.store.flag(ctx, KeyAnonSetupCompleted) {
		b.session.setScreen(ScreenAnonSetup)
		return ScreenAnonSetup, nil
	}

	local, err := b.store.load(ctx)
	if err != nil {
		b.log.Error(ctx, "error reading local user", "error", err)
		return ScreenLoading, fmt.Errorf("load user: %w", err)
	}

	var u *models.User
	if local != nil {
		u = b.reconcile(ctx, local)
	} else {
		p := b.store.anonProfile(ctx)
		u = models.NewAnonymousUser(b.newID(), p.DisplayName, p.AvatarGlyph, b.now())
		b.log.Info(ctx, "anonymous user created", "user_id", u.ID)
	}

	if err := b.store.save(ctx, u); err != nil {
		return ScreenLoading, err
	}
	b.session.setMain(u)
	b.pushUser(ctx, u)
	return ScreenMain, nil
}

// reconcile merges the authoritative remote record into local, keeping
// local when the backend cannot be reached.
func (b *bootstrapper) reconcile(ctx context.Context, local *models.User) *models.User {
	remote, err := b.api.GetUser(ctx, local.ID)
	if err != nil {
		if errors.Is(err, client.ErrNotFound) {
			b.log.Info(ctx, "user unknown to backend, keeping local record", "user_id", local.ID)
		} else {
			b.log.Warn(ctx, "fetch user failed, using local record", "user_id", local.ID, "error", err)
		}
		return local
	}
	if remote.ID != "" && remote.ID != local.ID {
		b.log.Warn(ctx, "backend returned another user, ignoring", "user_id", local.ID, "remote_id", remote.ID)
		return local
	}
	return models.Merge(local, remote)
}

func (b *bootstrapper) pushUser(ctx context.Context, u *models.User) {
	snapshot := u.Clone()
	b.syncer.Go(ctx, "sync_user", u.ID, func(ctx context.Context) error {
		_, err := b.api.SyncUser(ctx, snapshot)
		return err
	})
}

func (b *bootstrapper) CompleteOnboarding(ctx context.Context) (Screen, error) {
	if b.session.Screen() != ScreenFirstTime {
		return b.session.Screen(), ErrWrongScreen
	}
	if err := b.store.setFlag(ctx, KeyOnboardingCompleted); err != nil {
		return ScreenFirstTime, fmt.Errorf("save onboarding flag: %w", err)
	}
	return b.Bootstrap(ctx)
}

func validateProfile(displayName, glyph string) (string, string, error) {
	displayName = strings.TrimSpace(displayName)
	glyph = strings.TrimSpace(glyph)
	switch {
	case displayName == "":
		return "", "", fmt.Errorf("%w: display name is required", ErrValidation)
	case utf8.RuneCountInString(displayName) > MaxDisplayNameLen:
		return "", "", fmt.Errorf("%w: display name is longer than %d characters", ErrValidation, MaxDisplayNameLen)
	case glyph == "":
		return "", "", fmt.Errorf("%w: avatar is required", ErrValidation)
	}
	return displayName, glyph, nil
}

// CompleteAnonSetup stores the chosen nickname and glyph, marks the step
// done and bootstraps into the main screen.
func (b *bootstrapper) CompleteAnonSetup(ctx context.Context, displayName, glyph string) (Screen, error) {
	if b.session.Screen() != ScreenAnonSetup {
		return b.session.Screen(), ErrWrongScreen
	}
	displayName, glyph, err := validateProfile(displayName, glyph)
	if err != nil {
		return ScreenAnonSetup, err
	}

	pairs, err := kv.Encode(map[string]any{
		KeyAnonProfile:        anonProfile{DisplayName: displayName, AvatarGlyph: glyph},
		KeyAnonSetupCompleted: true,
	})
	if err != nil {
		return ScreenAnonSetup, err
	}
	if err := b.store.kv.SetMany(ctx, pairs); err != nil {
		return ScreenAnonSetup, fmt.Errorf("save anon profile: %w", err)
	}

	sc, err := b.Bootstrap(ctx)
	if err != nil || sc != ScreenMain {
		return sc, err
	}

	// A record restored or fetched during bootstrap may predate this setup.
	if u := b.session.User(); u.DisplayName != displayName || u.AvatarGlyph != glyph {
		if _, err := b.UpdateProfile(ctx, displayName, glyph); err != nil {
			return sc, err
		}
	}
	return sc, nil
}

// UpdateProfile changes the locally owned cosmetic fields.
func (b *bootstrapper) UpdateProfile(ctx context.Context, displayName, glyph string) (*models.User, error) {
	displayName, glyph, err := validateProfile(displayName, glyph)
	if err != nil {
		return nil, err
	}
	u, err := b.store.mutate(ctx, func(u *models.User) error {
		u.DisplayName = displayName
		u.AvatarGlyph = glyph
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := kv.SetJSON(ctx, b.store.kv, KeyAnonProfile, anonProfile{DisplayName: displayName, AvatarGlyph: glyph}); err != nil {
		b.log.Warn(ctx, "save anon profile failed", "error", err)
	}
	b.pushUser(ctx, u)
	return u, nil
}

// ClearAllData erases every persisted key, drops the staff token and returns
// the session to the first-time screen.
func (b *bootstrapper) ClearAllData(ctx context.Context) error {
	if err := b.store.clear(ctx); err != nil {
		return err
	}
	b.api.SetToken("")
	b.session.reset()
	b.log.Info(ctx, "local data cleared")
	return nil
}
