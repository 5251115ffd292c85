// Package ranking builds the season leaderboard from raw records.
// Nothing is cached: every call recomputes from the record set it is given.
package ranking

import (
	"cmp"
	"slices"

	"github.com/maxviazov/mahjong-score-service/internal/model"
	"github.com/maxviazov/mahjong-score-service/internal/stats"
)

// Builder orders players by their average normalized score.
type Builder struct {
	agg *stats.Aggregator
}

func NewBuilder(agg *stats.Aggregator) *Builder {
	if agg == nil {
		agg = stats.NewAggregator(nil)
	}
	return &Builder{agg: agg}
}

// Standings returns every player with at least one scored game, in leaderboard order.
func (b *Builder) Standings(records []model.GameRecord) []model.PlayerStanding {
	names := stats.PlayerNames(records)
	out := make([]model.PlayerStanding, 0, len(names))
	for _, name := range names {
		st := b.agg.StatisticsFor(records, name)
		if st.TotalGames == 0 {
			continue
		}
		out = append(out, model.PlayerStanding{Name: name, Stats: st})
	}
	// Average score, not raw points: uma decides the table. Stable so ties keep name order.
	slices.SortStableFunc(out, func(x, y model.PlayerStanding) int {
		return cmp.Compare(y.Stats.AvgScore, x.Stats.AvgScore)
	})
	return out
}

// Build returns the leaderboard rows. A row's position is its index + 1.
func (b *Builder) Build(records []model.GameRecord) []model.RankingEntry {
	standings := b.Standings(records)
	out := make([]model.RankingEntry, 0, len(standings))
	for _, s := range standings {
		out = append(out, model.RankingEntry{
			Name:         s.Name,
			TotalGames:   s.Stats.TotalGames,
			AvgScore:     s.Stats.AvgScore,
			AvgRawPoints: s.Stats.AvgRawPoints,
			AvgRank:      s.Stats.AvgRank,
			WinRate:      s.Stats.WinRate,
			MaxRawPoints: s.Stats.MaxRawPoints,
			MinRawPoints: s.Stats.MinRawPoints,
		})
	}
	return out
}
