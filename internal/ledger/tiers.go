package ledger

// Tier is an achievement rank earned by total completion count.
type Tier string

const (
	TierBronze   Tier = "bronze"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
)

var tierThresholds = []struct {
	tier Tier
	min  int
}{
	{TierBronze, 5},
	{TierSilver, 10},
	{TierGold, 25},
	{TierPlatinum, 50},
}

// Tiers returns every tier held at the given all-time completion count, in
// ascending order. Tiers are cumulative: holding platinum implies the rest.
// Below bronze the result is empty.
func Tiers(count int) []Tier {
	var held []Tier
	for _, t := range tierThresholds {
		if count >= t.min {
			held = append(held, t.tier)
		}
	}
	return held
}

// HighestTier returns the top tier held, or "" when none is.
func HighestTier(count int) Tier {
	held := Tiers(count)
	if len(held) == 0 {
		return ""
	}
	return held[len(held)-1]
}
