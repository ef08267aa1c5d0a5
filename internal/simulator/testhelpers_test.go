package simulator

import (
	"github.com/stitts-dev/h2h-sim/internal/types"
)

// fixedSummary builds a zero-variance summary with the given per-game means
func fixedSummary(p *types.Player, games int, means map[string]float64) StatSummary {
	return StatSummary{
		Player:         p,
		Mean:           types.StatLineFromMap(means),
		GamesPlayed:    5,
		GamesRemaining: games,
		FGM:            40,
		FGA:            90,
		FTM:            20,
		FTA:            25,
	}
}

func singlePlayerRoster(key string, slot types.Slot) types.Roster {
	p := &types.Player{Key: key, Name: key, EligibleSlots: []types.Slot{types.SlotC, types.SlotUtil}}
	return types.NewRoster([]*types.Player{p}, types.Assignment{key: slot})
}

var strongLine = map[string]float64{
	"FGA": 18, "FTA": 5, "3PTM": 3, "PTS": 30, "REB": 12, "AST": 8, "ST": 2, "BLK": 2, "TO": 4,
}

var weakLine = map[string]float64{
	"FGA": 12, "FTA": 3, "3PTM": 1, "PTS": 20, "REB": 5, "AST": 3, "ST": 1, "BLK": 0, "TO": 1,
}
