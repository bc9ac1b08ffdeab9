// Package badges maps badge and persona keys to their static display records
// and decides which milestones a profile has reached.
package badges

import "github.com/dmitrijs2005/civicstate/internal/client/models"

type Badge struct {
	Key         string
	Name        string
	Glyph       string
	Description string
	Color       string
}

// Unknown is returned for keys missing from the catalogue.
var Unknown = Badge{
	Key:         "unknown",
	Name:        "Unknown Badge",
	Glyph:       "❓",
	Description: "This badge is not recognised.",
	Color:       "#9E9E9E",
}

const (
	FirstSteps     = "first_steps"
	EngagedCitizen = "engaged_citizen"
	CivicChampion  = "civic_champion"
	DemocracyHero  = "democracy_hero"
	WeekStreak     = "week_streak"
	MonthStreak    = "month_streak"
	TrustedVoice   = "trusted_voice"
)

var catalogue = map[string]Badge{
	FirstSteps:     {FirstSteps, "First Steps", "👣", "Earned your first experience points.", "#8BC34A"},
	EngagedCitizen: {EngagedCitizen, "Engaged Citizen", "🗳️", "Reached 100 XP by taking part.", "#03A9F4"},
	CivicChampion:  {CivicChampion, "Civic Champion", "🏅", "Reached 500 XP.", "#FF9800"},
	DemocracyHero:  {DemocracyHero, "Democracy Hero", "🦸", "Reached 1000 XP.", "#E91E63"},
	WeekStreak:     {WeekStreak, "Week Streak", "🔥", "Active seven days in a row.", "#FF5722"},
	MonthStreak:    {MonthStreak, "Month Streak", "📅", "Active thirty days in a row.", "#795548"},
	TrustedVoice:   {TrustedVoice, "Trusted Voice", "🤝", "Reached a trust score of 2.5.", "#673AB7"},
}

// Resolve never fails: unknown keys yield Unknown.
func Resolve(key string) Badge {
	if b, ok := catalogue[key]; ok {
		return b
	}
	return Unknown
}

// ResolveAll resolves keys in order.
func ResolveAll(keys []string) []Badge {
	out := make([]Badge, 0, len(keys))
	for _, k := range keys {
		out = append(out, Resolve(k))
	}
	return out
}

// Milestone grants Badge once Reached holds for a profile.
type Milestone struct {
	Badge   string
	Reached func(u *models.User) bool
}

var milestones = []Milestone{
	{FirstSteps, xpAtLeast(10)},
	{EngagedCitizen, xpAtLeast(100)},
	{CivicChampion, xpAtLeast(500)},
	{DemocracyHero, xpAtLeast(1000)},
	{WeekStreak, streakAtLeast(7)},
	{MonthStreak, streakAtLeast(30)},
	{TrustedVoice, func(u *models.User) bool { return u.TrustScore >= 2.5 }},
}

func xpAtLeast(n int64) func(*models.User) bool {
	return func(u *models.User) bool { return u.ExperiencePoints >= n }
}

func streakAtLeast(n int) func(*models.User) bool {
	return func(u *models.User) bool { return u.StreakDays >= n }
}

// Earned lists the milestone badges u qualifies for and does not hold yet.
func Earned(u *models.User) []string {
	var out []string
	for _, m := range milestones {
		if m.Reached(u) && !u.HasBadge(m.Badge) {
			out = append(out, m.Badge)
		}
	}
	return out
}
