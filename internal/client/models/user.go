// Package models defines the client-side data model of the civic app: the
// locally persisted user profile, the records exchanged with the backend and
// the admin content entities.
package models

import (
	"slices"
	"time"
)

const (
	MinTrustScore     = 0.1
	MaxTrustScore     = 5.0
	DefaultTrustScore = 1.0
)

// User is the single persistent entity of the client. It is created once per
// device (see NewAnonymousUser) and mutated in place afterwards.
type User struct {
	// ID is generated on first run and never regenerated while local data exists.
	ID string `json:"uuid"`

	// DisplayName and AvatarGlyph are locally owned: a remote merge never
	// overwrites a non-empty local value.
	DisplayName string `json:"display_name"`
	AvatarGlyph string `json:"avatar_glyph"`

	ExperiencePoints int64   `json:"experience_points"`
	StreakDays       int     `json:"streak_days"`
	TrustScore       float64 `json:"trust_score"`

	// Role is assigned by an administrator only.
	Role Role `json:"role"`

	// PermissionOverrides are unioned with the role's permission set.
	PermissionOverrides []string `json:"permissions,omitempty"`

	// Badges is append-only.
	Badges []string `json:"badges"`

	CreatedAt    time.Time `json:"created_at"`
	LastActiveAt time.Time `json:"last_active_at"`

	// Version is bumped on every local mutation and compared on merge.
	Version int64 `json:"version"`
}

// NewAnonymousUser builds a fresh profile with zero XP and the anonymous role.
func NewAnonymousUser(id, displayName, glyph string, now time.Time) *User {
	return &User{
		ID:           id,
		DisplayName:  displayName,
		AvatarGlyph:  glyph,
		StreakDays:   1,
		TrustScore:   DefaultTrustScore,
		Role:         RoleAnonymous,
		Badges:       []string{},
		CreatedAt:    now,
		LastActiveAt: now,
		Version:      1,
	}
}

// Clone returns a deep copy safe to hand to another goroutine.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Badges = slices.Clone(u.Badges)
	c.PermissionOverrides = slices.Clone(u.PermissionOverrides)
	return &c
}

func (u *User) HasBadge(key string) bool {
	return slices.Contains(u.Badges, key)
}

// GrantBadge appends key unless already present and reports whether it was new.
func (u *User) GrantBadge(key string) bool {
	if u.HasBadge(key) {
		return false
	}
	u.Badges = append(u.Badges, key)
	return true
}

// Backup returns the subset kept alongside the full record so identity and
// trust survive a corrupted profile.
func (u *User) Backup() Backup {
	return Backup{ID: u.ID, CreatedAt: u.CreatedAt, TrustScore: u.TrustScore}
}

// ClampTrust bounds v to [MinTrustScore, MaxTrustScore].
func ClampTrust(v float64) float64 {
	return min(max(v, MinTrustScore), MaxTrustScore)
}

type Backup struct {
	ID         string    `json:"uuid"`
	CreatedAt  time.Time `json:"created_at"`
	TrustScore float64   `json:"trust_score"`
}

// Valid reports whether the backup carries an identity worth restoring.
func (b Backup) Valid() bool {
	return b.ID != ""
}
