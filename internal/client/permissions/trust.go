package permissions

// Tier is a band of trust score. Crossing a tier boundary changes the
// features a user can reach and forces the permission cache to refresh.
type Tier struct {
	Name     string
	Min      float64
	Features []string
}

const (
	FeatureTrustBonusXP   = "trust_bonus_xp"
	FeaturePriorityReport = "priority_report"
	FeatureSuggestEdit    = SuggestEdit
)

// TrustBonusThreshold is the score above which XP awards carry a trust bonus.
const TrustBonusThreshold = 2.0

// tiers is ordered by Min ascending.
var tiers = []Tier{
	{Name: "newcomer", Min: 0},
	{Name: "contributor", Min: 2.0, Features: []string{FeatureTrustBonusXP, FeatureSuggestEdit}},
	{Name: "verified", Min: 2.5, Features: []string{FeatureTrustBonusXP, FeatureSuggestEdit, FeaturePriorityReport}},
}

// Thresholds returns the tier boundaries above zero.
func Thresholds() []float64 {
	out := make([]float64, 0, len(tiers)-1)
	for _, t := range tiers[1:] {
		out = append(out, t.Min)
	}
	return out
}

func TrustTier(score float64) Tier {
	cur := tiers[0]
	for _, t := range tiers {
		if score >= t.Min {
			cur = t
		}
	}
	return cur
}

func TrustFeatures(score float64) []string {
	return TrustTier(score).Features
}

// CrossesThreshold reports whether moving from before to after changes tier.
func CrossesThreshold(before, after float64) bool {
	return TrustTier(before).Name != TrustTier(after).Name
}
