package types

import "time"

// Stat indexes the box-score columns tracked per game
type Stat int

const (
	StatFGA Stat = iota
	StatFGM
	StatFTA
	StatFTM
	Stat3PTM
	StatPTS
	StatREB
	StatAST
	StatST
	StatBLK
	StatTO
	NumStats
)

var statNames = [NumStats]string{"FGA", "FGM", "FTA", "FTM", "3PTM", "PTS", "REB", "AST", "ST", "BLK", "TO"}

func (s Stat) String() string {
	if s < 0 || s >= NumStats {
		return "unknown"
	}
	return statNames[s]
}

// ParseStat looks up a stat column by name
func ParseStat(name string) (Stat, bool) {
	for i, n := range statNames {
		if n == name {
			return Stat(i), true
		}
	}
	return 0, false
}

// StatLine holds one value per stat column
type StatLine [NumStats]float64

// StatLineFromMap converts a name-keyed stat map. Unknown names are ignored.
func StatLineFromMap(m map[string]float64) StatLine {
	var line StatLine
	for name, v := range m {
		if s, ok := ParseStat(name); ok {
			line[s] = v
		}
	}
	return line
}

// Map returns the line keyed by stat name
func (l StatLine) Map() map[string]float64 {
	m := make(map[string]float64, NumStats)
	for i, v := range l {
		m[statNames[i]] = v
	}
	return m
}

// GameLogEntry is one game's box score for one player
type GameLogEntry struct {
	Date    time.Time `json:"date"`
	DaysAgo int       `json:"days_ago"`
	Stats   StatLine  `json:"-"`
}

// Category is one of the nine head-to-head scoring categories
type Category int

const (
	CatFGPct Category = iota
	CatFTPct
	Cat3PTM
	CatPTS
	CatREB
	CatAST
	CatST
	CatBLK
	CatTO
	NumCategories
)

var categoryNames = [NumCategories]string{"FG%", "FT%", "3PTM", "PTS", "REB", "AST", "ST", "BLK", "TO"}

func (c Category) String() string {
	if c < 0 || c >= NumCategories {
		return "unknown"
	}
	return categoryNames[c]
}

// LowerIsBetter reports whether the category is won by the smaller value
func (c Category) LowerIsBetter() bool {
	return c == CatTO
}

// CountingStat returns the stat column backing a counting category
func (c Category) CountingStat() (Stat, bool) {
	switch c {
	case Cat3PTM:
		return Stat3PTM, true
	case CatPTS:
		return StatPTS, true
	case CatREB:
		return StatREB, true
	case CatAST:
		return StatAST, true
	case CatST:
		return StatST, true
	case CatBLK:
		return StatBLK, true
	case CatTO:
		return StatTO, true
	}
	return 0, false
}

// MajorityCategories is the number of categories a team must win to win
// the week
const MajorityCategories = int(NumCategories)/2 + 1
