// Package faction tracks per-faction reputation, derives relation
// tiers, and applies cross-faction spillover.
package faction

import (
	"go.uber.org/zap"

	"github.com/mirren/emberfall/engine/events"
	"github.com/mirren/emberfall/engine/state"
	"github.com/mirren/emberfall/types"
)

// Relation tier names, from worst to best standing.
const (
	TierHostile    = "hostile"
	TierUnfriendly = "unfriendly"
	TierNeutral    = "neutral"
	TierFriendly   = "friendly"
	TierAllied     = "allied"
	TierDevoted    = "devoted"
)

// tierOrder lists tiers worst-first. Tier derivation scans it from the
// end: the best tier whose threshold the reputation reaches wins.
var tierOrder = []string{
	TierHostile,
	TierUnfriendly,
	TierNeutral,
	TierFriendly,
	TierAllied,
	TierDevoted,
}

// defaultThresholds is the minimum reputation for each tier, used when
// the loaded faction config does not override it.
var defaultThresholds = map[string]int{
	TierHostile:    -60,
	TierUnfriendly: -30,
	TierNeutral:    0,
	TierFriendly:   30,
	TierAllied:     60,
	TierDevoted:    90,
}

// neutralEffects is the fallback when the loaded tier→effects table has
// no entry for the current tier: no discount, public access, no hunters.
var neutralEffects = types.TierEffects{AreaAccess: AccessPublic}

// Area access levels, worst to best. CanAccessArea compares ordinals.
const (
	AccessRestricted = "restricted"
	AccessLimited    = "limited"
	AccessPublic     = "public"
	AccessExtended   = "extended"
	AccessFull       = "full"
)

var accessRank = map[string]int{
	AccessRestricted: 0,
	AccessLimited:    1,
	AccessPublic:     2,
	AccessExtended:   3,
	AccessFull:       4,
}

// Reputation bounds. GameState stores raw values; this system owns the
// domain.
const (
	minRep = -100
	maxRep = 100
)

// System owns the reputation domain for all factions.
type System struct {
	state *state.GameState
	defs  *state.Defs
	bus   *events.Bus
	log   *zap.Logger
}

// NewSystem creates a faction system over the given state and content.
func NewSystem(gs *state.GameState, defs *state.Defs, bus *events.Bus, log *zap.Logger) *System {
	return &System{state: gs, defs: defs, bus: bus, log: log}
}

// Reputation returns the current reputation with a faction. Unknown
// factions read as 0.
func (s *System) Reputation(id string) int {
	return s.state.FactionRep(id)
}

// SetReputation stores a reputation value clamped to [-100, 100],
// announcing the change. No tier notification and no spillover: Set is
// for load/debug paths, AddReputation for gameplay.
func (s *System) SetReputation(id string, v int) {
	old := s.state.FactionRep(id)
	v = clampRep(v)
	if v == old {
		return
	}
	s.state.SetFactionRep(id, v)
	s.bus.Publish(events.RepChanged{Faction: id, Old: old, New: v})
}

// AddReputation shifts reputation by delta, clamped to [-100, 100].
// A tier-change notification fires only when the relation tier actually
// moves. Positive deltas additionally spill over: every other faction
// holding a negative relations score toward this one loses
// floor(delta * 0.15 * |score| / 50) reputation, recursively through
// AddReputation so rivals get their own notifications. Losses never
// spill, so the recursion terminates. Unknown faction ids warn and
// change nothing.
func (s *System) AddReputation(id string, delta int) {
	if !s.known(id) {
		s.log.Warn("reputation change for unknown faction", zap.String("faction", id))
		return
	}

	old := s.state.FactionRep(id)
	oldTier := s.tierFor(old)

	nv := clampRep(old + delta)
	if nv != old {
		s.state.SetFactionRep(id, nv)
		s.bus.Publish(events.RepChanged{Faction: id, Old: old, New: nv})
	}

	newTier := s.tierFor(nv)
	if newTier != oldTier {
		s.log.Info("faction relation changed",
			zap.String("faction", id),
			zap.String("from", oldTier),
			zap.String("to", newTier))
		s.bus.Publish(events.RelationChanged{Faction: id, Old: oldTier, New: newTier})
	}

	if delta <= 0 {
		return
	}
	for _, rival := range s.defs.Factions.Factions {
		if rival.ID == id {
			continue
		}
		score := rival.Relations[id]
		if score >= 0 {
			continue
		}
		score = -score
		loss := delta * 15 * score / 5000 // floor(delta * 0.15 * score/50)
		if loss > 0 {
			s.AddReputation(rival.ID, -loss)
		}
	}
}

func (s *System) known(id string) bool {
	for _, f := range s.defs.Factions.Factions {
		if f.ID == id {
			return true
		}
	}
	return false
}

// Tier returns the current relation tier name for a faction.
func (s *System) Tier(id string) string {
	return s.tierFor(s.state.FactionRep(id))
}

// tierFor derives the tier for a reputation value: the best tier whose
// threshold is reached. Below every threshold is hostile.
func (s *System) tierFor(rep int) string {
	for i := len(tierOrder) - 1; i >= 0; i-- {
		if rep >= s.threshold(tierOrder[i]) {
			return tierOrder[i]
		}
	}
	return TierHostile
}

// threshold returns the configured minimum for a tier, falling back to
// the defaults for tiers the config does not mention.
func (s *System) threshold(tier string) int {
	if t, ok := s.defs.Factions.ReputationThresholds[tier]; ok {
		return t
	}
	return defaultThresholds[tier]
}

// Effects returns the gameplay effects of the current tier with a
// faction. A tier missing from the loaded table gets the neutral
// default.
func (s *System) Effects(id string) types.TierEffects {
	if eff, ok := s.defs.Factions.ReputationEffects[s.Tier(id)]; ok {
		return eff
	}
	return neutralEffects
}

// ShopDiscount returns the price discount fraction granted by the
// faction's shops, e.g. 0.1 for 10% off. Negative values are markups.
func (s *System) ShopDiscount(id string) float64 {
	return s.Effects(id).ShopDiscount
}

// AreaAccess returns the access level the faction currently grants.
func (s *System) AreaAccess(id string) string {
	if a := s.Effects(id).AreaAccess; a != "" {
		return a
	}
	return AccessPublic
}

// BountyHuntersActive reports whether the faction is sending hunters
// after the player.
func (s *System) BountyHuntersActive(id string) bool {
	return s.Effects(id).BountyHunters
}

// CanAccessArea reports whether the faction's current access level
// reaches the required one on the restricted < limited < public <
// extended < full ladder. Unrecognized levels rank as public.
func (s *System) CanAccessArea(id, required string) bool {
	return rankOf(s.AreaAccess(id)) >= rankOf(required)
}

func rankOf(level string) int {
	if r, ok := accessRank[level]; ok {
		return r
	}
	return accessRank[AccessPublic]
}

func clampRep(v int) int {
	if v < minRep {
		return minRep
	}
	if v > maxRep {
		return maxRep
	}
	return v
}
