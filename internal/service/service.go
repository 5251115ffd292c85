// Package service holds use-case orchestration between the record stores, the
// scoring engine and the handlers. It owns request validation and error shaping.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/maxviazov/mahjong-score-service/internal/model"
	"github.com/maxviazov/mahjong-score-service/internal/repository"
	"github.com/maxviazov/mahjong-score-service/internal/scoring"
)

// ErrInvalidInput is the marker error for aggregated validation failures (maps to HTTP 400).
// Field-level details are retrieved via FieldErrors(err).
var ErrInvalidInput = errors.New("invalid input")

// FieldError describes a single invalid field in a client request.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// invalidInputError aggregates multiple FieldError instances and unwraps to ErrInvalidInput.
type invalidInputError struct {
	fields []FieldError
}

func (e *invalidInputError) Error() string        { return ErrInvalidInput.Error() }
func (e *invalidInputError) Unwrap() error        { return ErrInvalidInput }
func (e *invalidInputError) Fields() []FieldError { return e.fields }

// NewInvalidInputError aggregates fe into one error; it returns nil when fe is empty.
func NewInvalidInputError(fe []FieldError) error {
	if len(fe) == 0 {
		return nil
	}
	return &invalidInputError{fields: fe}
}

// FieldErrors extracts field errors from an aggregated validation error.
func FieldErrors(err error) []FieldError {
	var fe interface{ Fields() []FieldError }
	if errors.As(err, &fe) && errors.Is(err, ErrInvalidInput) {
		return fe.Fields()
	}
	return nil
}

// RecordService defines game record use cases.
type RecordService interface {
	ListRecords(ctx context.Context, season string, page repository.Page) (repository.PageResult[model.GameRecord], error)
	GetRecord(ctx context.Context, season string, row int64) (model.GameRecord, error)
	CreateRecord(ctx context.Context, season string, in RecordInput) (model.GameRecord, error)
	UpdateRecord(ctx context.Context, season string, row int64, in RecordInput) (model.GameRecord, error)
	DeleteRecord(ctx context.Context, season string, row int64) error
	// ImportRecords appends all records or none of them.
	ImportRecords(ctx context.Context, season string, in []RecordInput) ([]model.GameRecord, error)
}

// StatsService defines the read-side use cases. Every call recomputes from the
// season's records; nothing is cached between requests.
type StatsService interface {
	Seasons() []model.Season
	Scoring() scoring.Ruleset
	ListPlayers(ctx context.Context, season string) ([]string, error)
	GetPlayerStatistics(ctx context.Context, season, name string) (model.PlayerStatistics, error)
	GetRanking(ctx context.Context, season string) ([]model.RankingEntry, error)
	GetHeadToHead(ctx context.Context, season, player1, player2 string) (model.HeadToHead, error)
	GetScoreTrend(ctx context.Context, season, name string, recent int) (model.ScoreTrend, error)
	RankingChart(ctx context.Context, season string) ([]byte, error)
	RankDistributionChart(ctx context.Context, season string) ([]byte, error)
	ScoreTrendChart(ctx context.Context, season, name string) ([]byte, error)
}

// Recorder observes ranking computations. The metrics package implements it.
type Recorder interface {
	RankingBuilt(season string, players int, took time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) RankingBuilt(string, int, time.Duration) {}
