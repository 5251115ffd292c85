// Package scoring converts one player's result in one game into a normalized score.
//
//	score = (final points - starting points) / divisor + uma(rank) + participation bonus
//
// The Engine is immutable once built, so a single instance is shared by every request.
package scoring

import (
	"fmt"
	"maps"
	"slices"

	"github.com/go-playground/validator/v10"
	"github.com/maxviazov/mahjong-score-service/internal/model"
	"github.com/shopspring/decimal"
)

// Ruleset is the static scoring configuration. Uma tables are indexed by rank-1.
type Ruleset struct {
	StartingPoints        map[model.GameType]int `json:"starting_points" validate:"required"`
	DefaultStartingPoints int                    `json:"default_starting_points"`
	FourPlayerUma         []int                  `json:"four_player_uma" validate:"len=4"`
	ThreePlayerUma        []int                  `json:"three_player_uma" validate:"len=3"`
	ParticipationBonus    int                    `json:"participation_bonus"`
	PointDivisor          int                    `json:"point_divisor" validate:"gt=0"`
}

// DefaultRuleset returns the house rules: 25000/35000 starting points,
// +15/+5/-5/-15 and +15/0/-15 uma, +10 for showing up, points counted per 1000.
func DefaultRuleset() Ruleset {
	return Ruleset{
		StartingPoints: map[model.GameType]int{
			model.FourPlayerEast:  25000,
			model.FourPlayerFull:  25000,
			model.ThreePlayerEast: 35000,
			model.ThreePlayerFull: 35000,
		},
		DefaultStartingPoints: 25000,
		FourPlayerUma:         []int{15, 5, -5, -15},
		ThreePlayerUma:        []int{15, 0, -15},
		ParticipationBonus:    10,
		PointDivisor:          1000,
	}
}

// Engine evaluates a Ruleset.
type Engine struct {
	rules   Ruleset
	divisor decimal.Decimal
}

// New validates the ruleset and returns an engine holding a private copy of it.
func New(r Ruleset) (*Engine, error) {
	if err := validator.New().Struct(r); err != nil {
		return nil, fmt.Errorf("scoring ruleset validation error: %w", err)
	}
	r.StartingPoints = maps.Clone(r.StartingPoints)
	r.FourPlayerUma = slices.Clone(r.FourPlayerUma)
	r.ThreePlayerUma = slices.Clone(r.ThreePlayerUma)
	return &Engine{rules: r, divisor: decimal.NewFromInt(int64(r.PointDivisor))}, nil
}

// Default returns an engine over DefaultRuleset.
func Default() *Engine {
	e, err := New(DefaultRuleset())
	if err != nil {
		panic(err) // literal defaults always validate
	}
	return e
}

// Ruleset returns a copy of the active rules.
func (e *Engine) Ruleset() Ruleset {
	r := e.rules
	r.StartingPoints = maps.Clone(r.StartingPoints)
	r.FourPlayerUma = slices.Clone(r.FourPlayerUma)
	r.ThreePlayerUma = slices.Clone(r.ThreePlayerUma)
	return r
}

// StartingPoints looks up the starting stack, falling back to the four-player East value.
func (e *Engine) StartingPoints(gt model.GameType) int {
	if p, ok := e.rules.StartingPoints[gt]; ok {
		return p
	}
	return e.rules.DefaultStartingPoints
}

// SeatCount returns 3 or 4.
func (e *Engine) SeatCount(gt model.GameType) int { return gt.SeatCount() }

// RankBonus returns the uma for a 1-based rank; unknown ranks earn nothing.
func (e *Engine) RankBonus(rank, seatCount int) int {
	table := e.rules.FourPlayerUma
	if seatCount == 3 {
		table = e.rules.ThreePlayerUma
	}
	if rank < 1 || rank > len(table) {
		return 0
	}
	return table[rank-1]
}

// ComputeScoreDecimal is ComputeScore without the final float conversion.
func (e *Engine) ComputeScoreDecimal(finalPoints int, gt model.GameType, rank, seatCount int) decimal.Decimal {
	diff := decimal.NewFromInt(int64(finalPoints - e.StartingPoints(gt)))
	bonus := decimal.NewFromInt(int64(e.RankBonus(rank, seatCount) + e.rules.ParticipationBonus))
	return diff.Div(e.divisor).Add(bonus)
}

// ComputeScore never fails; out-of-range points just produce an extreme score.
func (e *Engine) ComputeScore(finalPoints int, gt model.GameType, rank, seatCount int) float64 {
	return e.ComputeScoreDecimal(finalPoints, gt, rank, seatCount).InexactFloat64()
}
