package optimizer

import (
	"github.com/stitts-dev/h2h-sim/internal/types"
)

func player(key string, slots ...types.Slot) *types.Player {
	return &types.Player{Key: key, Name: key, EligibleSlots: append(slots, types.SlotUtil)}
}

// leagueRoster is a legal thirteen-player roster: ten starters, two bench
// players and one injured player on IL
func leagueRoster() types.Roster {
	players := []*types.Player{
		player("p1", types.SlotPG, types.SlotG),
		player("p2", types.SlotSG, types.SlotG),
		player("p3", types.SlotPG, types.SlotSG, types.SlotG),
		player("p4", types.SlotSF, types.SlotF),
		player("p5", types.SlotPF, types.SlotF),
		player("p6", types.SlotSF, types.SlotPF, types.SlotF),
		player("p7", types.SlotC),
		player("p8", types.SlotC),
		player("p9", types.SlotSG, types.SlotSF, types.SlotG, types.SlotF),
		player("p10", types.SlotPF, types.SlotC, types.SlotF),
		player("b1", types.SlotPG, types.SlotG),
		player("b2", types.SlotC),
		player("i1", types.SlotSF, types.SlotF),
	}
	players[12].Status = types.StatusInjured

	return types.NewRoster(players, types.Assignment{
		"p1": types.SlotPG, "p2": types.SlotSG, "p3": types.SlotG,
		"p4": types.SlotSF, "p5": types.SlotPF, "p6": types.SlotF,
		"p7": types.SlotC, "p8": types.SlotC,
		"p9": types.SlotUtil, "p10": types.SlotUtil,
		"b1": types.SlotBN, "b2": types.SlotBN, "i1": types.SlotIL,
	})
}

var testWeights = map[string]float64{
	"p1": 1, "p2": 1, "p3": 1, "p4": 1, "p5": 1, "p6": 1, "p7": 1, "p8": 1, "p9": 1, "p10": 1,
	"b1": 3, "b2": 0.1, "i1": 8,
}

// starterSum scores a roster by the summed weight of its starters
func starterSum(r types.Roster) float64 {
	total := 0.0
	for _, p := range r.Starters() {
		total += testWeights[p.Key]
	}
	return total
}
