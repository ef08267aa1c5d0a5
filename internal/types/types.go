package types

import (
	"strings"
	"time"
)

// Slot is a roster position a player can be assigned to
type Slot string

const (
	SlotPG   Slot = "PG"
	SlotSG   Slot = "SG"
	SlotG    Slot = "G"
	SlotSF   Slot = "SF"
	SlotPF   Slot = "PF"
	SlotF    Slot = "F"
	SlotC    Slot = "C"
	SlotUtil Slot = "Util"
	SlotBN   Slot = "BN"
	SlotIL   Slot = "IL"
)

// StarterSlots lists the non-sink slots in canonical fill order
var StarterSlots = []Slot{SlotPG, SlotSG, SlotG, SlotSF, SlotPF, SlotF, SlotC, SlotUtil}

// IsSink reports whether the slot is bench or inactive list. Sinks have no
// capacity limit and are always eligible.
func (s Slot) IsSink() bool {
	return s == SlotBN || s == SlotIL
}

// ParseSlot normalizes provider spellings ("UTIL", "bn") to a Slot
func ParseSlot(raw string) Slot {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "UTIL":
		return SlotUtil
	case "BN", "BENCH":
		return SlotBN
	case "IL", "IL+", "INJ":
		return SlotIL
	default:
		return Slot(strings.ToUpper(strings.TrimSpace(raw)))
	}
}

// HealthStatus is the provider-reported availability of a player
type HealthStatus string

const (
	StatusActive       HealthStatus = "ACTIVE"
	StatusDayToDay     HealthStatus = "DTD"
	StatusGameTimeCall HealthStatus = "GTD"
	StatusOut          HealthStatus = "O"
	StatusInjured      HealthStatus = "INJ"
)

// Player represents a fantasy player. Players are shared reference data:
// rosters hold pointers and never copy them.
type Player struct {
	Key           string       `json:"player_key"`
	ID            string       `json:"player_id"`
	Name          string       `json:"name"`
	Status        HealthStatus `json:"status,omitempty"`
	Team          string       `json:"team"`
	TeamKey       string       `json:"team_key"`
	EligibleSlots []Slot       `json:"eligible_positions"`
}

// CanFill checks if the player may occupy the slot. Sinks are always
// eligible.
func (p *Player) CanFill(slot Slot) bool {
	if slot.IsSink() {
		return true
	}
	for _, s := range p.EligibleSlots {
		if s == slot {
			return true
		}
	}
	return false
}

// StarterEligibility returns the player's eligible non-sink slots in
// canonical order
func (p *Player) StarterEligibility() []Slot {
	eligible := make([]Slot, 0, len(p.EligibleSlots))
	for _, slot := range StarterSlots {
		if p.CanFill(slot) {
			eligible = append(eligible, slot)
		}
	}
	return eligible
}

// Injured reports whether the player is flagged out or injured
func (p *Player) Injured() bool {
	return p.Status == StatusInjured || p.Status == StatusOut || p.Status == "OUT"
}

func (p *Player) String() string {
	return "Player<" + p.Name + ">"
}

// Calendar maps fantasy weeks onto dates
type Calendar struct {
	SeasonStart time.Time
	WeekLength  int
}

// WeekStart returns the first day of the given 1-based week
func (c Calendar) WeekStart(week int) time.Time {
	length := c.WeekLength
	if length <= 0 {
		length = 7
	}
	return truncateDay(c.SeasonStart).AddDate(0, 0, length*(week-1))
}

// ProjectionWindow returns the [start, end) dates simulated for a week
func (c Calendar) ProjectionWindow(week int) (time.Time, time.Time) {
	length := c.WeekLength
	if length <= 0 {
		length = 7
	}
	start := c.WeekStart(week)
	return start, start.AddDate(0, 0, length)
}

// LogWindow returns the [start, end) dates of trailing game logs used to
// estimate a week
func (c Calendar) LogWindow(week, numDays int) (time.Time, time.Time) {
	end := c.WeekStart(week)
	return end.AddDate(0, 0, -numDays), end
}

// DaysBetween counts whole days from a to b
func DaysBetween(a, b time.Time) int {
	return int(truncateDay(b).Sub(truncateDay(a)).Hours() / 24)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
