package handler_test

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/maxviazov/mahjong-score-service/internal/handler"
	"github.com/maxviazov/mahjong-score-service/internal/model"
	"github.com/maxviazov/mahjong-score-service/internal/repository"
	"github.com/maxviazov/mahjong-score-service/internal/scoring"
	"github.com/maxviazov/mahjong-score-service/internal/service"
	"github.com/rs/zerolog"
)

// fakeInvalid replicates aggregated validation error semantics.
type fakeInvalid struct{ fe []service.FieldError }

func (f *fakeInvalid) Error() string                { return service.ErrInvalidInput.Error() }
func (f *fakeInvalid) Unwrap() error                { return service.ErrInvalidInput }
func (f *fakeInvalid) Fields() []service.FieldError { return f.fe }

// stubRecordService records the arguments it was called with and returns canned results.
type stubRecordService struct {
	season string
	row    int64
	page   repository.Page
	input  service.RecordInput
	batch  []service.RecordInput

	rec  model.GameRecord
	list repository.PageResult[model.GameRecord]
	err  error
}

func (s *stubRecordService) ListRecords(_ context.Context, season string, p repository.Page) (repository.PageResult[model.GameRecord], error) {
	s.season, s.page = season, p
	return s.list, s.err
}

func (s *stubRecordService) GetRecord(_ context.Context, season string, row int64) (model.GameRecord, error) {
	s.season, s.row = season, row
	return s.rec, s.err
}

func (s *stubRecordService) CreateRecord(_ context.Context, season string, in service.RecordInput) (model.GameRecord, error) {
	s.season, s.input = season, in
	return s.rec, s.err
}

func (s *stubRecordService) UpdateRecord(_ context.Context, season string, row int64, in service.RecordInput) (model.GameRecord, error) {
	s.season, s.row, s.input = season, row, in
	return s.rec, s.err
}

func (s *stubRecordService) DeleteRecord(_ context.Context, season string, row int64) error {
	s.season, s.row = season, row
	return s.err
}

func (s *stubRecordService) ImportRecords(_ context.Context, season string, in []service.RecordInput) ([]model.GameRecord, error) {
	s.season, s.batch = season, in
	if s.err != nil {
		return nil, s.err
	}
	out := make([]model.GameRecord, len(in))
	for i := range out {
		out[i] = s.rec
		out[i].Row = int64(i + 1)
	}
	return out, nil
}

type stubStatsService struct {
	season  string
	name    string
	pair    [2]string
	recent  int
	players []string
	stats   model.PlayerStatistics
	ranking []model.RankingEntry
	h2h     model.HeadToHead
	trend   model.ScoreTrend
	png     []byte
	err     error
}

func (s *stubStatsService) Seasons() []model.Season {
	return []model.Season{{Key: "season1", Name: "Season 1", Current: true}}
}

func (s *stubStatsService) Scoring() scoring.Ruleset { return scoring.DefaultRuleset() }

func (s *stubStatsService) ListPlayers(_ context.Context, season string) ([]string, error) {
	s.season = season
	return s.players, s.err
}

func (s *stubStatsService) GetPlayerStatistics(_ context.Context, season, name string) (model.PlayerStatistics, error) {
	s.season, s.name = season, name
	return s.stats, s.err
}

func (s *stubStatsService) GetRanking(_ context.Context, season string) ([]model.RankingEntry, error) {
	s.season = season
	return s.ranking, s.err
}

func (s *stubStatsService) GetHeadToHead(_ context.Context, season, p1, p2 string) (model.HeadToHead, error) {
	s.season, s.pair = season, [2]string{p1, p2}
	return s.h2h, s.err
}

func (s *stubStatsService) GetScoreTrend(_ context.Context, season, name string, recent int) (model.ScoreTrend, error) {
	s.season, s.name, s.recent = season, name, recent
	return s.trend, s.err
}

func (s *stubStatsService) RankingChart(_ context.Context, season string) ([]byte, error) {
	s.season = season
	return s.png, s.err
}

func (s *stubStatsService) RankDistributionChart(_ context.Context, season string) ([]byte, error) {
	s.season = season
	return s.png, s.err
}

func (s *stubStatsService) ScoreTrendChart(_ context.Context, season, name string) ([]byte, error) {
	s.season, s.name = season, name
	return s.png, s.err
}

func newRouter(rs service.RecordService, ss service.StatsService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler.Register(r, handler.Deps{Pinger: stubPinger{}, Records: rs, Stats: ss, Logger: zerolog.Nop()})
	return r
}
