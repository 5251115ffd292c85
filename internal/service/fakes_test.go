package service_test

import (
	"context"
	"errors"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/maxviazov/mahjong-score-service/internal/model"
	"github.com/maxviazov/mahjong-score-service/internal/repository"
	"github.com/maxviazov/mahjong-score-service/internal/service"
	"github.com/rs/zerolog"
)

// fakeRecordRepo keys rows by position like the spreadsheet store.
type fakeRecordRepo struct {
	mu      sync.Mutex
	seasons map[string][]model.GameRecord
	failOn  int // Append call number that fails, 0 = never
	appends int
	listErr error
}

func newFakeRecordRepo() *fakeRecordRepo {
	return &fakeRecordRepo{seasons: map[string][]model.GameRecord{}}
}

func (f *fakeRecordRepo) List(_ context.Context, season string) ([]model.GameRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return slices.Clone(f.seasons[season]), nil
}

func (f *fakeRecordRepo) Get(_ context.Context, season string, row int64) (model.GameRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	recs := f.seasons[season]
	if row < 1 || row > int64(len(recs)) {
		return model.GameRecord{}, repository.ErrNotFound
	}
	return recs[row-1], nil
}

func (f *fakeRecordRepo) Append(_ context.Context, season string, rec model.GameRecord) (model.GameRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appends++
	if f.failOn != 0 && f.appends == f.failOn {
		return model.GameRecord{}, errors.New("disk full")
	}
	rec.Season = season
	rec.Row = int64(len(f.seasons[season]) + 1)
	f.seasons[season] = append(f.seasons[season], rec)
	return rec, nil
}

func (f *fakeRecordRepo) Update(_ context.Context, season string, row int64, rec model.GameRecord) (model.GameRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	recs := f.seasons[season]
	if row < 1 || row > int64(len(recs)) {
		return model.GameRecord{}, repository.ErrNotFound
	}
	rec.Row, rec.Season, rec.CreatedAt = row, season, recs[row-1].CreatedAt
	recs[row-1] = rec
	return rec, nil
}

func (f *fakeRecordRepo) Delete(_ context.Context, season string, row int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	recs := f.seasons[season]
	if row < 1 || row > int64(len(recs)) {
		return repository.ErrNotFound
	}
	recs = slices.Delete(recs, int(row-1), int(row))
	for i := range recs {
		recs[i].Row = int64(i + 1)
	}
	f.seasons[season] = recs
	return nil
}

// WithinTx snapshots every season and restores the snapshot when fn fails.
func (f *fakeRecordRepo) WithinTx(ctx context.Context, fn repository.TxFunc) error {
	f.mu.Lock()
	snapshot := make(map[string][]model.GameRecord, len(f.seasons))
	for k, v := range f.seasons {
		snapshot[k] = slices.Clone(v)
	}
	f.mu.Unlock()

	if err := fn(ctx); err != nil {
		f.mu.Lock()
		f.seasons = snapshot
		f.mu.Unlock()
		return err
	}
	return nil
}

var (
	_ repository.RecordRepository = (*fakeRecordRepo)(nil)
	_ repository.TxManager        = (*fakeRecordRepo)(nil)
)

type fakeRecorder struct {
	calls   int
	season  string
	players int
}

func (r *fakeRecorder) RankingBuilt(season string, players int, _ time.Duration) {
	r.calls++
	r.season, r.players = season, players
}

func pts(v int) *int { return &v }

func seat(name string, points int) service.SeatInput {
	return service.SeatInput{PlayerName: name, FinalPoints: pts(points)}
}

func input(gameType string, seats ...service.SeatInput) service.RecordInput {
	return service.RecordInput{Date: "2025-04-01", Time: "19:00", GameType: gameType, Seats: seats}
}

func catalog() *service.SeasonCatalog {
	return service.NewSeasonCatalog([]model.Season{
		{Key: "season1", Name: "Spring"},
		{Key: "season2", Name: "Summer", Current: true},
	})
}

func discard() zerolog.Logger { return zerolog.New(io.Discard) }

func hasField(fes []service.FieldError, field string) bool {
	return slices.ContainsFunc(fes, func(fe service.FieldError) bool { return fe.Field == field })
}
