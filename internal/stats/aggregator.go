// Package stats derives per-player views and aggregates from raw game records.
// Every function here is pure: records are only read and results are freshly built.
package stats

import (
	"cmp"
	"slices"
	"strings"

	"github.com/maxviazov/mahjong-score-service/internal/model"
	"github.com/maxviazov/mahjong-score-service/internal/scoring"
	"github.com/shopspring/decimal"
)

// seatsOf caps a record at the four seat columns the store can hold.
func seatsOf(r model.GameRecord) []model.Seat {
	if len(r.Seats) > model.MaxSeats {
		return r.Seats[:model.MaxSeats]
	}
	return r.Seats
}

// PlayerNames lists every seated name, most frequent first.
// Names with the same number of appearances are ordered alphabetically.
func PlayerNames(records []model.GameRecord) []string {
	counts := make(map[string]int)
	names := make([]string, 0)
	for _, r := range records {
		for _, s := range seatsOf(r) {
			n := s.Name()
			if n == "" {
				continue
			}
			if counts[n] == 0 {
				names = append(names, n)
			}
			counts[n]++
		}
	}
	slices.SortFunc(names, func(a, b string) int {
		if c := cmp.Compare(counts[b], counts[a]); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	return names
}

// EntriesFor returns at most one entry per record in which name holds a valid seat.
// The first matching seat wins; any further seat with the same name counts as an opponent.
// Malformed seats are skipped, never fatal.
func EntriesFor(records []model.GameRecord, name string) []model.PlayerGameEntry {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	out := make([]model.PlayerGameEntry, 0)
	for _, r := range records {
		seats := seatsOf(r)
		own := -1
		for i, s := range seats {
			if s.Valid() && s.Name() == name {
				own = i
				break
			}
		}
		if own < 0 {
			continue
		}
		others := make([]model.OtherPlayer, 0, len(seats)-1)
		for i, s := range seats {
			if i == own || !s.Valid() {
				continue
			}
			others = append(others, model.OtherPlayer{Name: s.Name(), FinalPoints: *s.FinalPoints})
		}
		out = append(out, model.PlayerGameEntry{
			Row:          r.Row,
			FinalPoints:  *seats[own].FinalPoints,
			OtherPlayers: others,
			GameType:     r.GameType,
			Date:         r.Date,
			Time:         r.Time,
		})
	}
	return out
}

// RankOf is the number of strictly higher totals plus one, so tied players share the better rank.
func RankOf(points int, others []model.OtherPlayer) int {
	rank := 1
	for _, o := range others {
		if o.FinalPoints > points {
			rank++
		}
	}
	return rank
}

// Aggregator turns per-player entries into scores and statistics under one ruleset.
type Aggregator struct {
	engine *scoring.Engine
}

// NewAggregator binds the aggregator to a scoring engine; nil means the default rules.
func NewAggregator(engine *scoring.Engine) *Aggregator {
	if engine == nil {
		engine = scoring.Default()
	}
	return &Aggregator{engine: engine}
}

// Engine exposes the scoring engine in use.
func (a *Aggregator) Engine() *scoring.Engine { return a.engine }

// GameScore scores a single entry.
func (a *Aggregator) GameScore(entry model.PlayerGameEntry) float64 {
	return a.gameScore(entry).InexactFloat64()
}

func (a *Aggregator) gameScore(entry model.PlayerGameEntry) decimal.Decimal {
	rank := RankOf(entry.FinalPoints, entry.OtherPlayers)
	return a.engine.ComputeScoreDecimal(entry.FinalPoints, entry.GameType, rank, a.engine.SeatCount(entry.GameType))
}

// StatisticsFor aggregates a player's season. A player without games gets the zero
// statistics with all rank buckets present.
func (a *Aggregator) StatisticsFor(records []model.GameRecord, name string) model.PlayerStatistics {
	entries := EntriesFor(records, name)
	st := model.PlayerStatistics{RankDistribution: model.NewRankDistribution()}
	if len(entries) == 0 {
		return st
	}

	n := len(entries)
	total := decimal.Zero
	var rawSum, rankSum int64
	st.MaxRawPoints = entries[0].FinalPoints
	st.MinRawPoints = entries[0].FinalPoints
	for _, e := range entries {
		rank := RankOf(e.FinalPoints, e.OtherPlayers)
		total = total.Add(a.gameScore(e))
		rawSum += int64(e.FinalPoints)
		rankSum += int64(rank)
		st.RankDistribution[rank]++
		st.MaxRawPoints = max(st.MaxRawPoints, e.FinalPoints)
		st.MinRawPoints = min(st.MinRawPoints, e.FinalPoints)
	}

	count := decimal.NewFromInt(int64(n))
	st.TotalGames = n
	st.TotalScore = total.InexactFloat64()
	st.AvgScore = total.Div(count).InexactFloat64()
	st.AvgRawPoints = float64(rawSum) / float64(n)
	st.AvgRank = float64(rankSum) / float64(n)
	st.WinRate = float64(st.RankDistribution[1]) / float64(n) * 100
	return st
}
