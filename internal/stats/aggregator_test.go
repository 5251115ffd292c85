package stats

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/maxviazov/mahjong-score-service/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pts(v int) *int { return &v }

func seat(name string, points int) model.Seat {
	return model.Seat{PlayerName: name, FinalPoints: pts(points)}
}

func game(row int64, date string, gt model.GameType, seats ...model.Seat) model.GameRecord {
	return model.GameRecord{Row: row, Date: date, Time: "20:00", GameType: gt, Seats: seats}
}

func TestRankOf_TiesShareBetterRank(t *testing.T) {
	others := func(vals ...int) []model.OtherPlayer {
		out := make([]model.OtherPlayer, 0, len(vals))
		for _, v := range vals {
			out = append(out, model.OtherPlayer{FinalPoints: v})
		}
		return out
	}
	cases := []struct {
		name   string
		points int
		others []model.OtherPlayer
		want   int
	}{
		{"tied top", 30000, others(30000, 20000, 20000), 1},
		{"below a tie", 20000, others(30000, 30000, 20000), 3},
		{"clear last", 10000, others(30000, 20000, 25000), 4},
		{"alone", 25000, nil, 1},
		{"all tied", 25000, others(25000, 25000, 25000), 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, RankOf(tc.points, tc.others))
		})
	}
}

func TestEntriesFor_DuplicateSeatYieldsOneEntry(t *testing.T) {
	records := []model.GameRecord{
		game(1, "2025-01-01", model.FourPlayerFull,
			seat("A", 40000), seat("B", 30000), seat("A", 20000), seat("C", 10000)),
	}
	entries := EntriesFor(records, "A")
	require.Len(t, entries, 1)
	assert.Equal(t, 40000, entries[0].FinalPoints)
	want := []model.OtherPlayer{{Name: "B", FinalPoints: 30000}, {Name: "A", FinalPoints: 20000}, {Name: "C", FinalPoints: 10000}}
	if diff := cmp.Diff(want, entries[0].OtherPlayers); diff != "" {
		t.Fatalf("other players mismatch (-want +got):\n%s", diff)
	}
}

func TestEntriesFor_TrimsNames(t *testing.T) {
	records := []model.GameRecord{
		game(1, "2025-01-01", model.FourPlayerEast, seat("  A ", 30000), seat("B", 20000)),
	}
	require.Len(t, EntriesFor(records, "A"), 1)
	require.Len(t, EntriesFor(records, " A"), 1)
	assert.Empty(t, EntriesFor(records, ""))
}

func TestStatisticsFor_ZeroGames(t *testing.T) {
	agg := NewAggregator(nil)
	records := []model.GameRecord{
		game(1, "2025-01-01", model.FourPlayerFull, seat("A", 30000), seat("B", 20000)),
	}
	st := agg.StatisticsFor(records, "NoSuchPlayer")
	assert.Equal(t, 0, st.TotalGames)
	assert.Equal(t, 0.0, st.AvgScore)
	assert.Equal(t, 0.0, st.WinRate)
	assert.Equal(t, model.RankDistribution{1: 0, 2: 0, 3: 0, 4: 0}, st.RankDistribution)

	assert.Equal(t, 0, agg.StatisticsFor(nil, "A").TotalGames)
}

func TestStatisticsFor_Aggregates(t *testing.T) {
	agg := NewAggregator(nil)
	records := []model.GameRecord{
		// A first: (40000-25000)/1000 + 15 + 10 = 40
		game(1, "2025-01-01", model.FourPlayerFull, seat("A", 40000), seat("B", 30000), seat("C", 20000), seat("D", 10000)),
		// A last: (10000-25000)/1000 - 15 + 10 = -20
		game(2, "2025-01-02", model.FourPlayerFull, seat("B", 40000), seat("C", 30000), seat("D", 20000), seat("A", 10000)),
		// A second in sanma: (35000-35000)/1000 + 0 + 10 = 10
		game(3, "2025-01-03", model.ThreePlayerFull, seat("B", 45000), seat("A", 35000), seat("C", 25000)),
		// not A's game
		game(4, "2025-01-04", model.FourPlayerEast, seat("B", 25000), seat("C", 25000), seat("D", 25000), seat("E", 25000)),
	}

	st := agg.StatisticsFor(records, "A")
	assert.Equal(t, 3, st.TotalGames)
	assert.InDelta(t, 30.0, st.TotalScore, 1e-9)
	assert.InDelta(t, 10.0, st.AvgScore, 1e-9)
	assert.InDelta(t, 85000.0/3, st.AvgRawPoints, 1e-9)
	assert.Equal(t, 40000, st.MaxRawPoints)
	assert.Equal(t, 10000, st.MinRawPoints)
	assert.Equal(t, model.RankDistribution{1: 1, 2: 1, 3: 0, 4: 1}, st.RankDistribution)
	assert.InDelta(t, 7.0/3, st.AvgRank, 1e-9)
	assert.InDelta(t, 100.0/3, st.WinRate, 1e-9)
}

func TestStatisticsFor_SkipsMalformedSeat(t *testing.T) {
	agg := NewAggregator(nil)
	records := []model.GameRecord{
		game(1, "2025-01-01", model.FourPlayerFull,
			seat("A", 40000), model.Seat{PlayerName: "B"}, seat("C", 20000), seat("D", 10000)),
	}

	for name, wantRank := range map[string]int{"A": 1, "C": 2, "D": 3} {
		st := agg.StatisticsFor(records, name)
		require.Equal(t, 1, st.TotalGames, name)
		assert.Equal(t, 1, st.RankDistribution[wantRank], name)
	}
	assert.Equal(t, 0, agg.StatisticsFor(records, "B").TotalGames)
}

func TestEntriesFor_MalformedOwnSeatFallsThroughToNextSeat(t *testing.T) {
	records := []model.GameRecord{
		game(1, "2025-01-01", model.FourPlayerFull, model.Seat{PlayerName: "A"}, seat("B", 30000), seat("A", 20000)),
	}
	entries := EntriesFor(records, "A")
	require.Len(t, entries, 1)
	assert.Equal(t, 20000, entries[0].FinalPoints)
	assert.Equal(t, []model.OtherPlayer{{Name: "B", FinalPoints: 30000}}, entries[0].OtherPlayers)
}

func TestStatisticsFor_TiedPlayersBothWin(t *testing.T) {
	agg := NewAggregator(nil)
	records := []model.GameRecord{
		game(1, "2025-01-01", model.FourPlayerFull, seat("A", 30000), seat("B", 30000), seat("C", 20000), seat("D", 20000)),
	}
	assert.Equal(t, 1, agg.StatisticsFor(records, "A").RankDistribution[1])
	assert.Equal(t, 1, agg.StatisticsFor(records, "B").RankDistribution[1])
	assert.Equal(t, 1, agg.StatisticsFor(records, "C").RankDistribution[3])
	assert.Equal(t, 1, agg.StatisticsFor(records, "D").RankDistribution[3])
}

func TestPlayerNames_Ordering(t *testing.T) {
	records := []model.GameRecord{
		game(1, "2025-01-01", model.FourPlayerFull, seat("Zed", 1), seat("Bob", 2), seat("Amy", 3)),
		game(2, "2025-01-02", model.FourPlayerFull, seat("Bob", 1), model.Seat{PlayerName: "  "}, seat(" Carl ", 3)),
		game(3, "2025-01-03", model.FourPlayerFull, seat("Bob", 1), seat("Carl", 2)),
	}
	assert.Equal(t, []string{"Bob", "Carl", "Amy", "Zed"}, PlayerNames(records))
	assert.Empty(t, PlayerNames(nil))
}

func TestHeadToHead(t *testing.T) {
	agg := NewAggregator(nil)
	records := []model.GameRecord{
		game(1, "2025-01-01", model.FourPlayerFull, seat("A", 40000), seat("B", 30000)),
		game(2, "2025-01-02", model.FourPlayerFull, seat("A", 20000), seat("B", 35000)),
		game(3, "2025-01-03", model.FourPlayerFull, seat("A", 25000), seat("B", 25000)),
		game(4, "2025-01-04", model.FourPlayerFull, seat("A", 25000), seat("C", 25000)),
	}
	h := agg.HeadToHead(records, "A", "B")
	assert.Equal(t, 3, h.TotalGames)
	assert.Equal(t, 1, h.Player1Wins)
	assert.Equal(t, 1, h.Player2Wins)
	assert.Equal(t, 1, h.Draws)
	require.Len(t, h.Games, 3)
	assert.Equal(t, "A", h.Games[0].Winner)
	assert.Equal(t, "B", h.Games[1].Winner)
	assert.Equal(t, model.DrawWinner, h.Games[2].Winner)

	assert.Equal(t, 0, agg.HeadToHead(records, "A", "A").TotalGames)
}

func TestScoreTrend_ChronologicalAndRecent(t *testing.T) {
	agg := NewAggregator(nil)
	records := []model.GameRecord{
		game(1, "2025-02-01", model.FourPlayerFull, seat("A", 40000), seat("B", 30000)),
		game(2, "2025-01-01", model.FourPlayerFull, seat("A", 10000), seat("B", 30000)),
		game(3, "2025-03-01", model.ThreePlayerFull, seat("A", 35000), seat("B", 45000), seat("C", 25000)),
	}
	trend := agg.ScoreTrend(records, "A")
	require.Len(t, trend, 3)
	assert.Equal(t, []int64{2, 1, 3}, []int64{trend[0].Row, trend[1].Row, trend[2].Row})
	assert.Equal(t, 2, trend[0].Rank)
	assert.InDelta(t, 40.0, trend[1].Score, 1e-9)
	assert.InDelta(t, 10.0, trend[2].Score, 1e-9)

	recent := Recent(trend, 2)
	require.Len(t, recent, 2)
	assert.Equal(t, int64(3), recent[0].Row)
	assert.Equal(t, int64(1), recent[1].Row)
	assert.Len(t, Recent(trend, 0), 3)
}
