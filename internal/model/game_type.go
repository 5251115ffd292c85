package model

import "strings"

// GameType is the game variant label as written on the score sheet.
type GameType string

const (
	FourPlayerEast  GameType = "四麻東風"
	FourPlayerFull  GameType = "四麻半荘"
	ThreePlayerEast GameType = "三麻東風"
	ThreePlayerFull GameType = "三麻半荘"
)

// GameTypes lists the known variants in display order.
var GameTypes = []GameType{FourPlayerEast, FourPlayerFull, ThreePlayerEast, ThreePlayerFull}

var gameTypeCodes = map[string]GameType{
	"four_player_east":  FourPlayerEast,
	"four_player_full":  FourPlayerFull,
	"three_player_east": ThreePlayerEast,
	"three_player_full": ThreePlayerFull,
}

// ParseGameType accepts either the label or its ASCII code.
// Unknown input is returned trimmed with ok=false; callers may still score it.
func ParseGameType(s string) (GameType, bool) {
	s = strings.TrimSpace(s)
	if gt, ok := gameTypeCodes[strings.ToLower(s)]; ok {
		return gt, true
	}
	gt := GameType(s)
	return gt, gt.Known()
}

// Known reports whether g is one of the four supported variants.
func (g GameType) Known() bool {
	switch g {
	case FourPlayerEast, FourPlayerFull, ThreePlayerEast, ThreePlayerFull:
		return true
	default:
		return false
	}
}

// ThreePlayer reports whether the label denotes sanma.
func (g GameType) ThreePlayer() bool {
	s := string(g)
	return strings.Contains(s, "三麻") || strings.HasPrefix(strings.ToLower(s), "three_")
}

// SeatCount is 3 for three-player variants and 4 for everything else.
func (g GameType) SeatCount() int {
	if g.ThreePlayer() {
		return 3
	}
	return 4
}
