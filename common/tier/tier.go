package tier

import (
	"fmt"
)

// Tier is a ranked trust/rights level. Valid values come from the ordered
// hierarchy; never compare tiers lexicographically.
type Tier string

const (
	General   Tier = "general"
	Supporter Tier = "supporter"
	Legacy    Tier = "legacy"
	Founder   Tier = "founder"
	Mythic    Tier = "mythic"

	// Unknown is the soft-failure sentinel returned by rights resolution
	// when the origin artifact cannot be loaded. It is not a member of the
	// hierarchy and never persists.
	Unknown Tier = "unknown"
)

// ErrUnknownTier indicates a tier value outside the fixed ranked list.
// This is data corruption or a schema mismatch, never silently coerced.
var ErrUnknownTier = fmt.Errorf("unknown tier")

// hierarchy is the single source of truth for rank comparisons,
// ordered lowest to highest.
var hierarchy = []Tier{General, Supporter, Legacy, Founder, Mythic}

// Ordered returns the tier hierarchy from lowest to highest.
func Ordered() []Tier {
	out := make([]Tier, len(hierarchy))
	copy(out, hierarchy)
	return out
}

// Rank returns the index of t in the hierarchy.
func Rank(t Tier) (int, error) {
	for i, h := range hierarchy {
		if h == t {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q", ErrUnknownTier, t)
}

// Valid reports whether t is a member of the hierarchy.
func Valid(t Tier) bool {
	_, err := Rank(t)
	return err == nil
}

// Lowest returns the bottom of the hierarchy.
func Lowest() Tier {
	return hierarchy[0]
}

// Highest returns the top of the hierarchy.
func Highest() Tier {
	return hierarchy[len(hierarchy)-1]
}

// Max returns whichever of a or b ranks higher.
func Max(a, b Tier) (Tier, error) {
	ra, err := Rank(a)
	if err != nil {
		return Unknown, err
	}
	rb, err := Rank(b)
	if err != nil {
		return Unknown, err
	}
	if rb > ra {
		return b, nil
	}
	return a, nil
}
