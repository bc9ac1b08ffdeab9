package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/dmitrijs2005/civicstate/internal/client/badges"
	"github.com/dmitrijs2005/civicstate/internal/client/client"
	"github.com/dmitrijs2005/civicstate/internal/client/models"
	"github.com/dmitrijs2005/civicstate/internal/client/permissions"
	"github.com/dmitrijs2005/civicstate/internal/logging"
)

// Ledger applies XP, trust and streak changes to the local record first and
// reports them to the backend in the background.
type Ledger interface {
	AwardXP(ctx context.Context, amount int64, reason string, opts ...XPOption) (int64, error)
	UpdateTrustScore(ctx context.Context, delta float64, reason string) (float64, error)
	UpdateStreak(ctx context.Context) (int, error)
}

type xpOptions struct {
	multiplier float64
}

type XPOption func(*xpOptions)

// WithMultiplier scales an award. The default is 1.0.
func WithMultiplier(m float64) XPOption {
	return func(o *xpOptions) { o.multiplier = m }
}

type ledger struct {
	store     *userStore
	api       client.Client
	session   *Session
	syncer    *Syncer
	log       logging.Logger
	now       func() time.Time
	graceDays int
}

// NewLedger builds a Ledger. A streak survives up to graceDays calendar days
// between activities; values below 1 mean "yesterday only".
func NewLedger(d Deps, graceDays int) Ledger {
	if graceDays < 1 {
		graceDays = 1
	}
	return &ledger{
		store:     newUserStore(d.Store, d.Session, d.Logger),
		api:       d.API,
		session:   d.Session,
		syncer:    d.Syncer,
		log:       d.Logger,
		now:       d.clock(),
		graceDays: graceDays,
	}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// grantMilestones adds every badge u newly qualifies for.
func grantMilestones(u *models.User) []string {
	earned := badges.Earned(u)
	for _, k := range earned {
		u.GrantBadge(k)
	}
	return earned
}

// AwardXP adds floor(amount * multiplier), capped at math.MaxInt64, and
// returns that amount. Calls are not de-duplicated.
func (l *ledger) AwardXP(ctx context.Context, amount int64, reason string, opts ...XPOption) (int64, error) {
	o := xpOptions{multiplier: 1.0}
	for _, opt := range opts {
		opt(&o)
	}
	if amount < 0 {
		return 0, ErrInvalidAmount
	}
	if !finite(o.multiplier) || o.multiplier <= 0 {
		return 0, ErrInvalidMultiplier
	}

	granted := int64(math.MaxInt64)
	if product := math.Floor(float64(amount) * o.multiplier); product < float64(math.MaxInt64) {
		granted = int64(product)
	}
	var (
		trustBonus bool
		newBadges  []string
	)
	u, err := l.store.mutate(ctx, func(u *models.User) error {
		trustBonus = u.TrustScore > permissions.TrustBonusThreshold
		if granted > math.MaxInt64-u.ExperiencePoints {
			u.ExperiencePoints = math.MaxInt64
		} else {
			u.ExperiencePoints += granted
		}
		newBadges = grantMilestones(u)
		return nil
	})
	if err != nil {
		return 0, err
	}

	l.log.Debug(ctx, "xp awarded", "user_id", u.ID, "reason", reason, "xp", granted, "total", u.ExperiencePoints)
	tx := models.XPTransaction{
		UserID:     u.ID,
		Action:     reason,
		XPEarned:   granted,
		Multiplier: o.multiplier,
		TrustBonus: trustBonus,
	}
	l.syncer.Go(ctx, "record_xp", u.ID, func(ctx context.Context) error {
		return l.api.RecordXP(ctx, tx)
	})
	l.afterBadges(ctx, u, newBadges)
	return granted, nil
}

// UpdateTrustScore adds delta, clamps to [MinTrustScore, MaxTrustScore] and
// returns the new score. Crossing a trust tier boundary refreshes the cached
// permissions.
func (l *ledger) UpdateTrustScore(ctx context.Context, delta float64, reason string) (float64, error) {
	if !finite(delta) {
		return 0, fmt.Errorf("%w: trust delta %v", ErrInvalidAmount, delta)
	}

	var (
		before    float64
		newBadges []string
	)
	u, err := l.store.mutate(ctx, func(u *models.User) error {
		before = u.TrustScore
		u.TrustScore = models.ClampTrust(u.TrustScore + delta)
		newBadges = grantMilestones(u)
		return nil
	})
	if err != nil {
		return 0, err
	}

	if permissions.CrossesThreshold(before, u.TrustScore) {
		perms := l.session.recomputePermissions()
		l.log.Info(ctx, "trust tier changed", "user_id", u.ID,
			"tier", permissions.TrustTier(u.TrustScore).Name, "permissions", len(perms))
	}

	eventType := models.TrustEventIncrease
	if delta < 0 {
		eventType = models.TrustEventDecrease
	}
	ev := models.TrustEvent{
		UserID:      u.ID,
		EventType:   eventType,
		TrustChange: u.TrustScore - before,
		Reason:      reason,
	}
	l.syncer.Go(ctx, "trust_event", u.ID, func(ctx context.Context) error {
		return l.api.RecordTrustEvent(ctx, ev)
	})
	l.afterBadges(ctx, u, newBadges)
	return u.TrustScore, nil
}

// calendarDays counts midnights between from and to in to's location.
func calendarDays(from, to time.Time) int {
	from = from.In(to.Location())
	y1, m1, d1 := from.Date()
	y2, m2, d2 := to.Date()
	a := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	b := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// UpdateStreak is evaluated on demand. Same calendar day: only the
// last-active stamp moves. Within the grace window: +1. Otherwise the streak
// restarts at 1. A clock behind the stored stamp changes nothing.
func (l *ledger) UpdateStreak(ctx context.Context) (int, error) {
	now := l.now()
	var (
		changed   bool
		newBadges []string
	)
	u, err := l.store.mutate(ctx, func(u *models.User) error {
		days := calendarDays(u.LastActiveAt, now)
		switch {
		case days < 0:
			return errSkip
		case days == 0:
			u.LastActiveAt = now
			return nil
		case days <= l.graceDays:
			u.StreakDays++
		default:
			u.StreakDays = 1
		}
		u.LastActiveAt = now
		newBadges = grantMilestones(u)
		changed = true
		return nil
	})
	if err != nil {
		return 0, err
	}
	if changed {
		l.logBadges(ctx, u, newBadges)
		l.pushUser(ctx, u)
	}
	return u.StreakDays, nil
}

// afterBadges pushes the record when new badges were granted, since badges
// travel only with the full user sync.
func (l *ledger) afterBadges(ctx context.Context, u *models.User, newBadges []string) {
	if len(newBadges) == 0 {
		return
	}
	l.logBadges(ctx, u, newBadges)
	l.pushUser(ctx, u)
}

func (l *ledger) logBadges(ctx context.Context, u *models.User, newBadges []string) {
	for _, k := range newBadges {
		l.log.Info(ctx, "badge earned", "user_id", u.ID, "badge", badges.Resolve(k).Name)
	}
}

func (l *ledger) pushUser(ctx context.Context, u *models.User) {
	snapshot := u.Clone()
	l.syncer.Go(ctx, "sync_user", u.ID, func(ctx context.Context) error {
		_, err := l.api.SyncUser(ctx, snapshot)
		return err
	})
}
