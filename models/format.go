package models

type FormatType string

const (
	FormatSingle FormatType = "single"
	FormatBestOf FormatType = "best_of"
)

// MatchFormat configures how a single match is scored. Rounds of a bracket
// may carry different formats, e.g. single-game early rounds and a
// best-of-3 final.
type MatchFormat struct {
	Type        FormatType `json:"type"`
	GamesToWin  int        `json:"games_to_win"`
	PointsToWin int        `json:"points_to_win"`
	WinByTwo    bool       `json:"win_by_two"`
	PointCap    int        `json:"point_cap"` // 0 means no cap
}

// DefaultFormat is the standard club format: one game to 11, win by two,
// capped at 15.
func DefaultFormat() MatchFormat {
	return MatchFormat{
		Type:        FormatSingle,
		GamesToWin:  1,
		PointsToWin: 11,
		WinByTwo:    true,
		PointCap:    15,
	}
}

// GamesNeeded reports how many game wins decide a match under this format.
// A single format always decides after one game regardless of what was stored.
func (f MatchFormat) GamesNeeded() int {
	if f.Type == FormatSingle || f.GamesToWin < 1 {
		return 1
	}
	return f.GamesToWin
}
