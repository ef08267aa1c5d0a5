package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitts-dev/h2h-sim/internal/types"
)

func TestDefaultLegality(t *testing.T) {
	m := DefaultLegality()

	assert.Equal(t, 10, m.RosterSize())
	assert.Equal(t, []types.Slot{
		types.SlotPG, types.SlotSG, types.SlotG, types.SlotSF,
		types.SlotPF, types.SlotF, types.SlotC, types.SlotUtil,
	}, m.Slots())
	assert.Equal(t, 2, m.Capacity(types.SlotC))
	assert.Equal(t, 0, m.Capacity(types.SlotBN))
}

func TestValidate(t *testing.T) {
	m := DefaultLegality()
	require.NoError(t, m.Validate(leagueRoster()))

	tests := []struct {
		name   string
		mutate func(r types.Roster) types.Roster
	}{
		{
			name: "over capacity",
			mutate: func(r types.Roster) types.Roster {
				r.Positions["b1"] = types.SlotPG
				return r
			},
		},
		{
			name: "ineligible slot",
			mutate: func(r types.Roster) types.Roster {
				r.Positions["p7"], r.Positions["p1"] = types.SlotPG, types.SlotC
				return r
			},
		},
		{
			name: "missing slot",
			mutate: func(r types.Roster) types.Roster {
				delete(r.Positions, "p1")
				return r
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := m.Validate(tt.mutate(leagueRoster()))
			assert.ErrorIs(t, err, ErrIllegalRoster)
		})
	}
}

func TestOpenSlots(t *testing.T) {
	m := DefaultLegality()
	r := leagueRoster()
	assert.Empty(t, m.OpenSlots(r))

	r.Positions["p7"] = types.SlotBN
	r.Positions["p9"] = types.SlotBN
	assert.Equal(t, []types.Slot{types.SlotC, types.SlotUtil}, m.OpenSlots(r))
}

func TestCustomCapacities(t *testing.T) {
	m := NewLegalityModel(map[types.Slot]int{types.SlotC: 1, types.SlotBN: 5, types.SlotG: 0})

	assert.Equal(t, 1, m.RosterSize())
	assert.Equal(t, []types.Slot{types.SlotC}, m.Slots())
	assert.False(t, m.IsEligible(player("x", types.SlotG), types.SlotG), "zero-capacity slots are never eligible")
	assert.True(t, m.IsEligible(player("x", types.SlotG), types.SlotBN))
}
