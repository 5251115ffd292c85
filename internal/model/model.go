// Package model contains domain entities and DTOs used across layers.
// I keep it lean and focused on data shapes; the only behavior is seat normalization.
package model

import (
	"strings"
	"time"
)

// Seat is one slot of a game record. An empty name means the seat is unused;
// a named seat without points is malformed and ignored by aggregation.
type Seat struct {
	PlayerName  string `json:"player_name"`
	FinalPoints *int   `json:"final_points"`
}

// Name returns the trimmed player name.
func (s Seat) Name() string { return strings.TrimSpace(s.PlayerName) }

// Occupied reports whether a player name is present, regardless of points.
func (s Seat) Occupied() bool { return s.Name() != "" }

// Valid reports whether the seat can take part in rank and score computation.
func (s Seat) Valid() bool { return s.Occupied() && s.FinalPoints != nil }

// GameRecord represents one completed game as stored by the record store.
type GameRecord struct {
	Row       int64     `json:"row"`
	Season    string    `json:"season"`
	Date      string    `json:"date"` // YYYY-MM-DD
	Time      string    `json:"time"` // HH:MM
	GameType  GameType  `json:"game_type"`
	Seats     []Seat    `json:"seats"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

// MaxSeats is the number of seat columns a record can carry.
const MaxSeats = 4

// OtherPlayer is an opponent's result within one game.
type OtherPlayer struct {
	Name        string `json:"name"`
	FinalPoints int    `json:"final_points"`
}

// PlayerGameEntry is a per-player view of a single record.
// It is derived on demand and never persisted.
type PlayerGameEntry struct {
	Row          int64         `json:"row"`
	FinalPoints  int           `json:"final_points"`
	OtherPlayers []OtherPlayer `json:"other_players"`
	GameType     GameType      `json:"game_type"`
	Date         string        `json:"date"`
	Time         string        `json:"time"`
}

// RankDistribution counts finishes per rank. Keys 1..4 are always present.
type RankDistribution map[int]int

// NewRankDistribution returns a distribution with all four buckets zeroed.
func NewRankDistribution() RankDistribution {
	return RankDistribution{1: 0, 2: 0, 3: 0, 4: 0}
}

// PlayerStatistics holds season aggregates for one player.
// This model is designed for read-only query results and is not persisted directly.
type PlayerStatistics struct {
	TotalGames       int              `json:"total_games"`
	AvgScore         float64          `json:"avg_score"`
	TotalScore       float64          `json:"total_score"`
	AvgRawPoints     float64          `json:"avg_raw_points"`
	MaxRawPoints     int              `json:"max_raw_points"`
	MinRawPoints     int              `json:"min_raw_points"`
	RankDistribution RankDistribution `json:"rank_distribution"`
	AvgRank          float64          `json:"avg_rank"`
	WinRate          float64          `json:"win_rate"`
}

// PlayerStanding pairs a player with their statistics.
type PlayerStanding struct {
	Name  string           `json:"name"`
	Stats PlayerStatistics `json:"stats"`
}

// RankingEntry is one leaderboard row. The position is the slice index + 1.
type RankingEntry struct {
	Name         string  `json:"name"`
	TotalGames   int     `json:"total_games"`
	AvgScore     float64 `json:"avg_score"`
	AvgRawPoints float64 `json:"avg_raw_points"`
	AvgRank      float64 `json:"avg_rank"`
	WinRate      float64 `json:"win_rate"`
	MaxRawPoints int     `json:"max_raw_points"`
	MinRawPoints int     `json:"min_raw_points"`
}

// DrawWinner marks a head-to-head game with equal points.
const DrawWinner = "draw"

// HeadToHeadGame is a single game in which both compared players took part.
type HeadToHeadGame struct {
	Row           int64    `json:"row"`
	Date          string   `json:"date"`
	Time          string   `json:"time"`
	GameType      GameType `json:"game_type"`
	Player1Points int      `json:"player1_points"`
	Player2Points int      `json:"player2_points"`
	Winner        string   `json:"winner"`
}

// HeadToHead summarizes the direct record between two players.
type HeadToHead struct {
	Player1     string           `json:"player1"`
	Player2     string           `json:"player2"`
	TotalGames  int              `json:"total_games"`
	Player1Wins int              `json:"player1_wins"`
	Player2Wins int              `json:"player2_wins"`
	Draws       int              `json:"draws"`
	Games       []HeadToHeadGame `json:"games"`
}

// TrendPoint is one game in a player's chronological score history.
type TrendPoint struct {
	Row         int64    `json:"row"`
	Date        string   `json:"date"`
	Time        string   `json:"time"`
	GameType    GameType `json:"game_type"`
	FinalPoints int      `json:"final_points"`
	Rank        int      `json:"rank"`
	Score       float64  `json:"score"`
}

// Season identifies one partition of game records.
type Season struct {
	Key     string `json:"key" mapstructure:"key" validate:"required"`
	Name    string `json:"name" mapstructure:"name"`
	Current bool   `json:"current" mapstructure:"-"`
}

// ScoreTrend is a player's full history plus the most recent games, newest first.
type ScoreTrend struct {
	Player string       `json:"player"`
	Games  []TrendPoint `json:"games"`
	Recent []TrendPoint `json:"recent"`
}
