package models

import "slices"

// Merge reconciles the cached local record with the authoritative remote one.
//
// Remote wins by default. Exceptions: Role always comes from remote; the
// locally owned display name and avatar win when set; badges are the union of
// both sides; counters come from local when it carries a newer Version than
// remote (i.e. it has mutations the backend has not seen yet).
func Merge(local, remote *User) *User {
	if remote == nil {
		return local.Clone()
	}
	if local == nil {
		return remote.Clone()
	}

	out := remote.Clone()
	out.ID = local.ID

	if local.DisplayName != "" {
		out.DisplayName = local.DisplayName
	}
	if local.AvatarGlyph != "" {
		out.AvatarGlyph = local.AvatarGlyph
	}
	if out.CreatedAt.IsZero() || (!local.CreatedAt.IsZero() && local.CreatedAt.Before(out.CreatedAt)) {
		out.CreatedAt = local.CreatedAt
	}

	if local.Version > remote.Version {
		out.ExperiencePoints = local.ExperiencePoints
		out.StreakDays = local.StreakDays
		out.TrustScore = local.TrustScore
		out.LastActiveAt = local.LastActiveAt
	}
	out.ExperiencePoints = max(out.ExperiencePoints, 0)
	out.TrustScore = ClampTrust(out.TrustScore)
	if !out.Role.Valid() {
		out.Role = local.Role
	}

	out.Badges = slices.Clone(local.Badges)
	for _, b := range remote.Badges {
		if !slices.Contains(out.Badges, b) {
			out.Badges = append(out.Badges, b)
		}
	}

	if out.Badges == nil {
		out.Badges = []string{}
	}

	out.Version = max(local.Version, remote.Version)
	return out
}
