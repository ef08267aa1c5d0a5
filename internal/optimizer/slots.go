package optimizer

import (
	"errors"
	"fmt"

	"github.com/stitts-dev/h2h-sim/internal/types"
)

var ErrIllegalRoster = errors.New("illegal roster")

// DefaultCapacities is the head-to-head roster template. BN and IL are
// sinks with unbounded occupancy and never appear here.
var DefaultCapacities = map[types.Slot]int{
	types.SlotG:    1,
	types.SlotSG:   1,
	types.SlotPG:   1,
	types.SlotF:    1,
	types.SlotSF:   1,
	types.SlotPF:   1,
	types.SlotC:    2,
	types.SlotUtil: 2,
}

// LegalityModel encodes slot capacities and player eligibility
type LegalityModel struct {
	slots      []types.Slot
	capacities map[types.Slot]int
	size       int
}

// NewLegalityModel builds a model from a capacity table. Slots are kept in
// canonical order; sink and zero-capacity entries are ignored.
func NewLegalityModel(capacities map[types.Slot]int) *LegalityModel {
	m := &LegalityModel{capacities: make(map[types.Slot]int, len(capacities))}
	for _, slot := range types.StarterSlots {
		if c := capacities[slot]; c > 0 {
			m.slots = append(m.slots, slot)
			m.capacities[slot] = c
			m.size += c
		}
	}
	return m
}

// DefaultLegality returns the model for DefaultCapacities
func DefaultLegality() *LegalityModel {
	return NewLegalityModel(DefaultCapacities)
}

// Slots returns the starting slots in canonical order
func (m *LegalityModel) Slots() []types.Slot {
	return m.slots
}

// Capacity returns how many players a slot holds. Sinks report zero.
func (m *LegalityModel) Capacity(slot types.Slot) int {
	return m.capacities[slot]
}

// RosterSize is the number of starters in a full lineup
func (m *LegalityModel) RosterSize() int {
	return m.size
}

// IsEligible reports whether the player may occupy the slot
func (m *LegalityModel) IsEligible(p *types.Player, slot types.Slot) bool {
	if slot.IsSink() {
		return true
	}
	return m.capacities[slot] > 0 && p.CanFill(slot)
}

// Validate checks every player has a slot it is eligible for and no slot
// is over capacity
func (m *LegalityModel) Validate(r types.Roster) error {
	counts := make(map[types.Slot]int, len(m.slots))
	for _, p := range r.Players {
		slot, ok := r.Positions[p.Key]
		if !ok {
			return fmt.Errorf("%w: %s has no slot", ErrIllegalRoster, p.Name)
		}
		if !m.IsEligible(p, slot) {
			return fmt.Errorf("%w: %s is not eligible for %s", ErrIllegalRoster, p.Name, slot)
		}
		if !slot.IsSink() {
			counts[slot]++
		}
	}
	for _, slot := range m.slots {
		if counts[slot] > m.capacities[slot] {
			return fmt.Errorf("%w: %d players in %s, capacity %d", ErrIllegalRoster, counts[slot], slot, m.capacities[slot])
		}
	}
	return nil
}

// OpenSlots lists starting slots with spare capacity, in canonical order
func (m *LegalityModel) OpenSlots(r types.Roster) []types.Slot {
	counts := r.SlotCounts()
	open := make([]types.Slot, 0, len(m.slots))
	for _, slot := range m.slots {
		if counts[slot] < m.capacities[slot] {
			open = append(open, slot)
		}
	}
	return open
}

// eligibleOpenSlots intersects the player's eligibility with open slots
func (m *LegalityModel) eligibleOpenSlots(p *types.Player, open []types.Slot) []types.Slot {
	slots := make([]types.Slot, 0, len(open))
	for _, slot := range open {
		if m.IsEligible(p, slot) {
			slots = append(slots, slot)
		}
	}
	return slots
}
