package service

import (
	"context"
	"strings"
	"time"

	"github.com/maxviazov/mahjong-score-service/internal/chart"
	"github.com/maxviazov/mahjong-score-service/internal/model"
	"github.com/maxviazov/mahjong-score-service/internal/ranking"
	"github.com/maxviazov/mahjong-score-service/internal/repository"
	"github.com/maxviazov/mahjong-score-service/internal/scoring"
	"github.com/maxviazov/mahjong-score-service/internal/stats"
	"github.com/rs/zerolog"
)

// DefaultRecentGames is how many games the trend's recent list holds when the caller does not say.
const DefaultRecentGames = 10

type statsService struct {
	records  repository.RecordRepository
	agg      *stats.Aggregator
	ranking  *ranking.Builder
	seasons  *SeasonCatalog
	palette  chart.Palette
	recorder Recorder
	log      zerolog.Logger
}

// NewStatsService wires the read side. A nil engine means the default ruleset,
// a nil recorder disables ranking observations.
func NewStatsService(records repository.RecordRepository, engine *scoring.Engine, seasons *SeasonCatalog, recorder Recorder, logger zerolog.Logger) StatsService {
	l := logger.With().Str("module", "service").Str("component", "stats").Logger()
	if recorder == nil {
		recorder = nopRecorder{}
	}
	agg := stats.NewAggregator(engine)
	return &statsService{
		records:  records,
		agg:      agg,
		ranking:  ranking.NewBuilder(agg),
		seasons:  seasons,
		palette:  chart.DefaultPalette(),
		recorder: recorder,
		log:      l,
	}
}

func (s *statsService) Seasons() []model.Season { return s.seasons.List() }

func (s *statsService) Scoring() scoring.Ruleset { return s.agg.Engine().Ruleset() }

// load resolves the season and reads its records.
func (s *statsService) load(ctx context.Context, season string) (string, []model.GameRecord, error) {
	season, err := s.seasons.Resolve(season)
	if err != nil {
		return "", nil, err
	}
	records, err := s.records.List(ctx, season)
	if err != nil {
		s.log.Error().Err(err).Str("season", season).Msg("load records failed")
		return "", nil, err
	}
	return season, records, nil
}

func requireName(field, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", NewInvalidInputError([]FieldError{{Field: field, Message: "must not be empty"}})
	}
	return name, nil
}

func (s *statsService) ListPlayers(ctx context.Context, season string) ([]string, error) {
	_, records, err := s.load(ctx, season)
	if err != nil {
		return nil, err
	}
	return stats.PlayerNames(records), nil
}

// GetPlayerStatistics returns zero statistics for a player without games.
func (s *statsService) GetPlayerStatistics(ctx context.Context, season, name string) (model.PlayerStatistics, error) {
	name, err := requireName("name", name)
	if err != nil {
		return model.PlayerStatistics{}, err
	}
	_, records, err := s.load(ctx, season)
	if err != nil {
		return model.PlayerStatistics{}, err
	}
	return s.agg.StatisticsFor(records, name), nil
}

func (s *statsService) standings(ctx context.Context, season string) ([]model.PlayerStanding, error) {
	season, records, err := s.load(ctx, season)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	out := s.ranking.Standings(records)
	s.recorder.RankingBuilt(season, len(out), time.Since(start))
	s.log.Debug().Str("season", season).Int("records", len(records)).Int("players", len(out)).Msg("standings built")
	return out, nil
}

func (s *statsService) GetRanking(ctx context.Context, season string) ([]model.RankingEntry, error) {
	season, records, err := s.load(ctx, season)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	rows := s.ranking.Build(records)
	s.recorder.RankingBuilt(season, len(rows), time.Since(start))
	return rows, nil
}

func (s *statsService) GetHeadToHead(ctx context.Context, season, player1, player2 string) (model.HeadToHead, error) {
	var ferrs []FieldError
	p1, err := requireName("player1", player1)
	ferrs = append(ferrs, FieldErrors(err)...)
	p2, err := requireName("player2", player2)
	ferrs = append(ferrs, FieldErrors(err)...)
	if p1 != "" && p1 == p2 {
		ferrs = append(ferrs, FieldError{Field: "player2", Message: "must differ from player1"})
	}
	if err := NewInvalidInputError(ferrs); err != nil {
		return model.HeadToHead{}, err
	}
	_, records, err := s.load(ctx, season)
	if err != nil {
		return model.HeadToHead{}, err
	}
	return s.agg.HeadToHead(records, p1, p2), nil
}

// GetScoreTrend returns the player's chronological history. recent <= 0 means DefaultRecentGames.
func (s *statsService) GetScoreTrend(ctx context.Context, season, name string, recent int) (model.ScoreTrend, error) {
	name, err := requireName("name", name)
	if err != nil {
		return model.ScoreTrend{}, err
	}
	_, records, err := s.load(ctx, season)
	if err != nil {
		return model.ScoreTrend{}, err
	}
	if recent <= 0 {
		recent = DefaultRecentGames
	}
	games := s.agg.ScoreTrend(records, name)
	return model.ScoreTrend{Player: name, Games: games, Recent: stats.Recent(games, recent)}, nil
}

func (s *statsService) RankingChart(ctx context.Context, season string) ([]byte, error) {
	rows, err := s.GetRanking(ctx, season)
	if err != nil {
		return nil, err
	}
	return chart.AverageScores(rows, s.palette)
}

func (s *statsService) RankDistributionChart(ctx context.Context, season string) ([]byte, error) {
	standings, err := s.standings(ctx, season)
	if err != nil {
		return nil, err
	}
	return chart.RankDistribution(standings, s.palette)
}

func (s *statsService) ScoreTrendChart(ctx context.Context, season, name string) ([]byte, error) {
	trend, err := s.GetScoreTrend(ctx, season, name, 0)
	if err != nil {
		return nil, err
	}
	return chart.ScoreTrend(trend.Player, trend.Games, s.palette)
}
