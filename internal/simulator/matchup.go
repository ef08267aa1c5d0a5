package simulator

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/stitts-dev/h2h-sim/internal/types"
)

// MatchupResult is the category-by-category outcome of two projected teams
// over every sample
type MatchupResult struct {
	NumSamples int `json:"num_samples"`

	// CategoriesA and CategoriesB hold per-sample category values (S x 9)
	CategoriesA *mat.Dense `json:"-"`
	CategoriesB *mat.Dense `json:"-"`
	// Wins holds A's per-sample win indicators (S x 9)
	Wins *mat.Dense `json:"-"`
	// Scores holds A's per-sample count of categories won
	Scores []int `json:"-"`

	CategoryWinProb [types.NumCategories]float64 `json:"category_win_prob"`
	ScoreHistogram  [types.NumCategories + 1]int `json:"score_histogram"`
	WinningProb     float64                      `json:"winning_prob"`
	ExpectedScore   float64                      `json:"expected_score"`
	DegenerateA     bool                         `json:"degenerate_a"`
	DegenerateB     bool                         `json:"degenerate_b"`
}

// CategoryReport is one row of the per-category diagnostic table
type CategoryReport struct {
	Category string  `json:"category"`
	MeanA    float64 `json:"mean_a"`
	MeanB    float64 `json:"mean_b"`
	WinProb  float64 `json:"win_prob"`
}

// Percentage divides makes by attempts, treating 0/0 as 0
func Percentage(makes, attempts float64) float64 {
	if attempts == 0 {
		return 0
	}
	return makes / attempts
}

// TeamCategories converts a projection's per-sample team totals into the
// nine scoring categories
func TeamCategories(p *ProjectionSample) *mat.Dense {
	out := mat.NewDense(p.NumSamples, int(types.NumCategories), nil)
	for s := 0; s < p.NumSamples; s++ {
		out.Set(s, int(types.CatFGPct), Percentage(p.Total(s, types.StatFGM), p.Total(s, types.StatFGA)))
		out.Set(s, int(types.CatFTPct), Percentage(p.Total(s, types.StatFTM), p.Total(s, types.StatFTA)))
		for c := types.Cat3PTM; c < types.NumCategories; c++ {
			stat, _ := c.CountingStat()
			out.Set(s, int(c), p.Total(s, stat))
		}
	}
	return out
}

// WinsCategory reports whether value a beats value b in the category.
// Comparisons are strict, so ties credit neither side.
func WinsCategory(c types.Category, a, b float64) bool {
	if c.LowerIsBetter() {
		return a < b
	}
	return a > b
}

// Compare scores team A against team B sample by sample
func Compare(a, b *ProjectionSample) (*MatchupResult, error) {
	if a.NumSamples != b.NumSamples {
		return nil, fmt.Errorf("sample counts differ: %d vs %d", a.NumSamples, b.NumSamples)
	}
	if a.NumSamples <= 0 {
		return nil, ErrInvalidSamples
	}
	return compareCategories(TeamCategories(a), TeamCategories(b), a.Degenerate(), b.Degenerate()), nil
}

func compareCategories(catsA, catsB *mat.Dense, degenerateA, degenerateB bool) *MatchupResult {
	numSamples, _ := catsA.Dims()
	result := &MatchupResult{
		NumSamples:  numSamples,
		CategoriesA: catsA,
		CategoriesB: catsB,
		Wins:        mat.NewDense(numSamples, int(types.NumCategories), nil),
		Scores:      make([]int, numSamples),
		DegenerateA: degenerateA,
		DegenerateB: degenerateB,
	}

	var winCounts [types.NumCategories]float64
	var wins, scoreSum int
	for s := 0; s < numSamples; s++ {
		score := 0
		for c := types.Category(0); c < types.NumCategories; c++ {
			if WinsCategory(c, catsA.At(s, int(c)), catsB.At(s, int(c))) {
				result.Wins.Set(s, int(c), 1)
				winCounts[c]++
				score++
			}
		}
		result.Scores[s] = score
		result.ScoreHistogram[score]++
		scoreSum += score
		if score >= types.MajorityCategories {
			wins++
		}
	}

	n := float64(numSamples)
	for c := range winCounts {
		result.CategoryWinProb[c] = winCounts[c] / n
	}
	result.WinningProb = float64(wins) / n
	result.ExpectedScore = float64(scoreSum) / n
	return result
}

// Report returns per-category means for both teams and A's win probability
func (r *MatchupResult) Report() []CategoryReport {
	rows := make([]CategoryReport, 0, types.NumCategories)
	n := float64(r.NumSamples)
	for c := types.Category(0); c < types.NumCategories; c++ {
		rows = append(rows, CategoryReport{
			Category: c.String(),
			MeanA:    floats.Sum(mat.Col(nil, int(c), r.CategoriesA)) / n,
			MeanB:    floats.Sum(mat.Col(nil, int(c), r.CategoriesB)) / n,
			WinProb:  r.CategoryWinProb[c],
		})
	}
	return rows
}

// Reverse returns the result from team B's point of view
func (r *MatchupResult) Reverse() *MatchupResult {
	return compareCategories(r.CategoriesB, r.CategoriesA, r.DegenerateB, r.DegenerateA)
}
