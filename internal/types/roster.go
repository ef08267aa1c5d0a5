package types

import (
	"sort"
	"strings"
)

// Assignment maps a player key to the slot that player occupies
type Assignment map[string]Slot

// Copy returns an independent copy of the assignment
func (a Assignment) Copy() Assignment {
	out := make(Assignment, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Roster is an ordered set of players plus their slot assignment. Methods
// that change the roster return a new value and leave the receiver intact.
type Roster struct {
	Players   []*Player  `json:"players"`
	Positions Assignment `json:"positions"`
}

// NewRoster builds a roster. Players missing from positions are benched.
func NewRoster(players []*Player, positions Assignment) Roster {
	r := Roster{
		Players:   append([]*Player(nil), players...),
		Positions: make(Assignment, len(players)),
	}
	for _, p := range players {
		slot, ok := positions[p.Key]
		if !ok || slot == "" {
			slot = SlotBN
		}
		r.Positions[p.Key] = slot
	}
	return r
}

// Copy deep-copies the assignment and player slice. Players are shared.
func (r Roster) Copy() Roster {
	return Roster{
		Players:   append([]*Player(nil), r.Players...),
		Positions: r.Positions.Copy(),
	}
}

// Len returns the number of players on the roster
func (r Roster) Len() int {
	return len(r.Players)
}

// SlotOf returns the slot of the player with the given key
func (r Roster) SlotOf(key string) Slot {
	return r.Positions[key]
}

// Add returns a copy with the player added in the given slot, or on the
// bench when slot is empty. Adding a player already present only moves it.
func (r Roster) Add(p *Player, slot Slot) Roster {
	if slot == "" {
		slot = SlotBN
	}
	out := r.Copy()
	if _, exists := out.Positions[p.Key]; !exists {
		out.Players = append(out.Players, p)
	}
	out.Positions[p.Key] = slot
	return out
}

// Remove returns a copy without the player with the given key
func (r Roster) Remove(key string) Roster {
	out := Roster{
		Players:   make([]*Player, 0, len(r.Players)),
		Positions: r.Positions.Copy(),
	}
	for _, p := range r.Players {
		if p.Key != key {
			out.Players = append(out.Players, p)
		}
	}
	delete(out.Positions, key)
	return out
}

// Starters returns the players outside BN and IL, in roster order
func (r Roster) Starters() []*Player {
	starters := make([]*Player, 0, len(r.Players))
	for _, p := range r.Players {
		if !r.Positions[p.Key].IsSink() {
			starters = append(starters, p)
		}
	}
	return starters
}

// Bench returns the players in the BN slot
func (r Roster) Bench() []*Player {
	bench := make([]*Player, 0)
	for _, p := range r.Players {
		if r.Positions[p.Key] == SlotBN {
			bench = append(bench, p)
		}
	}
	return bench
}

// StarterSet returns a canonical string of the starters' keys, used to
// compare two rosters' starting lineups
func (r Roster) StarterSet() string {
	keys := make([]string, 0, len(r.Players))
	for _, p := range r.Starters() {
		keys = append(keys, p.Key)
	}
	sort.Strings(keys)
	return strings.Join(keys, ",")
}

// PlayerByKey returns the player with the given key
func (r Roster) PlayerByKey(key string) (*Player, bool) {
	for _, p := range r.Players {
		if p.Key == key {
			return p, true
		}
	}
	return nil, false
}

// PlayerByName returns the first player whose name matches, ignoring case
func (r Roster) PlayerByName(name string) (*Player, bool) {
	for _, p := range r.Players {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return nil, false
}

// SlotCounts counts occupants per non-sink slot
func (r Roster) SlotCounts() map[Slot]int {
	counts := make(map[Slot]int, len(StarterSlots))
	for _, p := range r.Players {
		slot := r.Positions[p.Key]
		if !slot.IsSink() {
			counts[slot]++
		}
	}
	return counts
}
