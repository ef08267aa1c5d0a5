package optimizer

import (
	"errors"

	"golang.org/x/exp/rand"

	"github.com/stitts-dev/h2h-sim/internal/types"
)

// MaxMutationAttempts caps how many random moves Mutate tries before giving
// up on finding a changed starter set
const MaxMutationAttempts = 256

var (
	ErrInfeasibleRoster = errors.New("no legal move can change the starting lineup")
	ErrNoNeighbor       = errors.New("no neighbor found within the attempt limit")
)

// NeighborGenerator produces single-move mutations of a legal roster
type NeighborGenerator struct {
	legality *LegalityModel
	rng      *rand.Rand
}

// NewNeighborGenerator creates a generator drawing from rng. The generator is
// not safe for concurrent use.
func NewNeighborGenerator(legality *LegalityModel, rng *rand.Rand) *NeighborGenerator {
	return &NeighborGenerator{legality: legality, rng: rng}
}

// Mutate returns a legal roster whose starter set differs from the input.
// A move picks a non-forbidden starter (or the virtual fill-an-open-slot
// move), then uniformly picks one of its candidates: a swap partner, a
// demotion to the bench, or a benched player for an open slot.
func (g *NeighborGenerator) Mutate(roster types.Roster, forbid map[string]bool, excludeInjured bool) (types.Roster, error) {
	movers := make([]*types.Player, 0, len(roster.Players))
	for _, p := range roster.Starters() {
		if !forbid[p.Key] {
			movers = append(movers, p)
		}
	}

	open := g.legality.OpenSlots(roster)
	fill := g.fillCandidates(roster, open, forbid, excludeInjured)
	if len(movers) == 0 && len(fill) == 0 {
		return roster, ErrInfeasibleRoster
	}

	moves := len(movers)
	if len(open) > 0 {
		moves++
	}

	base := roster.StarterSet()
	for attempt := 0; attempt < MaxMutationAttempts; attempt++ {
		choice := g.rng.Intn(moves)

		var next types.Roster
		if choice == len(movers) {
			if len(fill) == 0 {
				continue
			}
			p := fill[g.rng.Intn(len(fill))]
			slots := g.legality.eligibleOpenSlots(p, open)
			next = roster.Copy()
			next.Positions[p.Key] = slots[g.rng.Intn(len(slots))]
		} else {
			mover := movers[choice]
			partners := g.partners(roster, mover, forbid, excludeInjured)

			// the extra index is "demote to bench"
			pick := g.rng.Intn(len(partners) + 1)
			next = roster.Copy()
			if pick == len(partners) {
				next.Positions[mover.Key] = types.SlotBN
			} else {
				partner := partners[pick]
				next.Positions[mover.Key], next.Positions[partner.Key] = roster.SlotOf(partner.Key), roster.SlotOf(mover.Key)
			}
		}

		if next.StarterSet() != base {
			return next, nil
		}
	}
	return roster, ErrNoNeighbor
}

// partners lists players that can trade slots with mover: they must fit the
// mover's slot, and be benched or hold a slot the mover fits
func (g *NeighborGenerator) partners(roster types.Roster, mover *types.Player, forbid map[string]bool, excludeInjured bool) []*types.Player {
	moverSlot := roster.SlotOf(mover.Key)
	partners := make([]*types.Player, 0, len(roster.Players))
	for _, p := range roster.Players {
		if p == mover || forbid[p.Key] || (excludeInjured && p.Injured()) {
			continue
		}
		if !g.legality.IsEligible(p, moverSlot) {
			continue
		}
		slot := roster.SlotOf(p.Key)
		if slot == types.SlotBN || (!slot.IsSink() && g.legality.IsEligible(mover, slot)) {
			partners = append(partners, p)
		}
	}
	return partners
}

func (g *NeighborGenerator) fillCandidates(roster types.Roster, open []types.Slot, forbid map[string]bool, excludeInjured bool) []*types.Player {
	if len(open) == 0 {
		return nil
	}
	candidates := make([]*types.Player, 0)
	for _, p := range roster.Players {
		if roster.SlotOf(p.Key) != types.SlotBN || forbid[p.Key] || (excludeInjured && p.Injured()) {
			continue
		}
		if len(g.legality.eligibleOpenSlots(p, open)) > 0 {
			candidates = append(candidates, p)
		}
	}
	return candidates
}
