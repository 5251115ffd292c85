package stats

import (
	"cmp"
	"slices"
	"strings"

	"github.com/maxviazov/mahjong-score-service/internal/model"
)

// firstValidSeat returns the points of the first valid seat held by name.
func firstValidSeat(seats []model.Seat, name string) (int, bool) {
	for _, s := range seats {
		if s.Valid() && s.Name() == name {
			return *s.FinalPoints, true
		}
	}
	return 0, false
}

// HeadToHead compares two players over every record in which both hold a valid seat.
// The higher final total wins the game; equal totals are a draw.
func (a *Aggregator) HeadToHead(records []model.GameRecord, player1, player2 string) model.HeadToHead {
	player1 = strings.TrimSpace(player1)
	player2 = strings.TrimSpace(player2)
	out := model.HeadToHead{Player1: player1, Player2: player2, Games: make([]model.HeadToHeadGame, 0)}
	if player1 == "" || player2 == "" || player1 == player2 {
		return out
	}

	for _, r := range records {
		seats := seatsOf(r)
		p1, ok1 := firstValidSeat(seats, player1)
		p2, ok2 := firstValidSeat(seats, player2)
		if !ok1 || !ok2 {
			continue
		}
		g := model.HeadToHeadGame{
			Row:           r.Row,
			Date:          r.Date,
			Time:          r.Time,
			GameType:      r.GameType,
			Player1Points: p1,
			Player2Points: p2,
		}
		switch {
		case p1 > p2:
			g.Winner = player1
			out.Player1Wins++
		case p2 > p1:
			g.Winner = player2
			out.Player2Wins++
		default:
			g.Winner = model.DrawWinner
			out.Draws++
		}
		out.Games = append(out.Games, g)
	}
	out.TotalGames = len(out.Games)
	return out
}

// ScoreTrend returns the player's games in chronological order with rank and score.
// Games sharing a date and time keep their record order.
func (a *Aggregator) ScoreTrend(records []model.GameRecord, name string) []model.TrendPoint {
	entries := EntriesFor(records, name)
	points := make([]model.TrendPoint, 0, len(entries))
	for _, e := range entries {
		points = append(points, model.TrendPoint{
			Row:         e.Row,
			Date:        e.Date,
			Time:        e.Time,
			GameType:    e.GameType,
			FinalPoints: e.FinalPoints,
			Rank:        RankOf(e.FinalPoints, e.OtherPlayers),
			Score:       a.GameScore(e),
		})
	}
	slices.SortStableFunc(points, func(x, y model.TrendPoint) int {
		if c := cmp.Compare(x.Date, y.Date); c != 0 {
			return c
		}
		return cmp.Compare(x.Time, y.Time)
	})
	return points
}

// Recent returns up to n trend points, newest first.
func Recent(trend []model.TrendPoint, n int) []model.TrendPoint {
	if n <= 0 || n > len(trend) {
		n = len(trend)
	}
	out := slices.Clone(trend[len(trend)-n:])
	slices.Reverse(out)
	return out
}
