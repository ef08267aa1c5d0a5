package optimizer

import (
	"sort"

	"github.com/stitts-dev/h2h-sim/internal/types"
)

// Pack places players into starting slots greedily, most constrained
// first: each goes to the first eligible non-Util slot with room, then to
// Util. It reports false when some player cannot be placed. The input
// order only breaks ties between equally constrained players.
func (m *LegalityModel) Pack(players []*types.Player) (types.Assignment, bool) {
	remaining := make([]int, len(m.slots))
	utilIndex := -1
	for i, slot := range m.slots {
		remaining[i] = m.capacities[slot]
		if slot == types.SlotUtil {
			utilIndex = i
		}
	}

	ordered := append([]*types.Player(nil), players...)
	constraint := make(map[string]int, len(ordered))
	for _, p := range ordered {
		n := 0
		for _, slot := range m.slots {
			if slot != types.SlotUtil && m.IsEligible(p, slot) {
				n++
			}
		}
		constraint[p.Key] = n
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return constraint[ordered[i].Key] < constraint[ordered[j].Key]
	})

	assignment := make(types.Assignment, len(ordered))
	for _, p := range ordered {
		placed := false
		for i, slot := range m.slots {
			if i == utilIndex || remaining[i] == 0 || !m.IsEligible(p, slot) {
				continue
			}
			assignment[p.Key] = slot
			remaining[i]--
			placed = true
			break
		}
		if !placed && utilIndex >= 0 && remaining[utilIndex] > 0 && m.IsEligible(p, types.SlotUtil) {
			assignment[p.Key] = types.SlotUtil
			remaining[utilIndex]--
			placed = true
		}
		if !placed {
			return nil, false
		}
	}
	return assignment, true
}

// packRoster starts the selected players in base and sends everyone else to
// the bench, keeping IL players on IL
func (m *LegalityModel) packRoster(base types.Roster, selected []*types.Player) (types.Roster, bool) {
	assignment, ok := m.Pack(selected)
	if !ok {
		return types.Roster{}, false
	}
	positions := make(types.Assignment, len(base.Players))
	for _, p := range base.Players {
		if slot, starting := assignment[p.Key]; starting {
			positions[p.Key] = slot
		} else if base.SlotOf(p.Key) == types.SlotIL {
			positions[p.Key] = types.SlotIL
		} else {
			positions[p.Key] = types.SlotBN
		}
	}
	return types.Roster{Players: base.Players, Positions: positions}, true
}
