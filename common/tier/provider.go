package tier

import "context"

// ActorTierProvider resolves an actor's currently assigned tier from the
// membership/billing source. Implementations must return Lowest() for
// unknown actors rather than an error.
type ActorTierProvider interface {
	ActorTier(ctx context.Context, actor string) (Tier, error)
}

// StaticProvider serves tiers from a fixed map. This is the reference
// implementation backed by config; production swaps in the billing system.
type StaticProvider struct {
	assignments map[string]Tier
}

// NewStaticProvider builds a provider from an actor -> tier map.
// Entries with invalid tiers are dropped so a bad seed can never leak a
// value outside the hierarchy.
func NewStaticProvider(assignments map[string]Tier) *StaticProvider {
	m := make(map[string]Tier, len(assignments))
	for actor, t := range assignments {
		if Valid(t) {
			m[actor] = t
		}
	}
	return &StaticProvider{assignments: m}
}

// ActorTier returns the assigned tier, or Lowest() for unknown actors.
func (p *StaticProvider) ActorTier(_ context.Context, actor string) (Tier, error) {
	if t, ok := p.assignments[actor]; ok {
		return t, nil
	}
	return Lowest(), nil
}
