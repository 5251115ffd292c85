package service

import (
	"context"
	"errors"
	"time"

	"github.com/maxviazov/mahjong-score-service/internal/model"
	"github.com/maxviazov/mahjong-score-service/internal/repository"
	"github.com/rs/zerolog"
)

type recordService struct {
	records repository.RecordRepository
	tx      repository.TxManager
	seasons *SeasonCatalog
	now     func() time.Time
	log     zerolog.Logger
}

func NewRecordService(records repository.RecordRepository, tx repository.TxManager, seasons *SeasonCatalog, logger zerolog.Logger) RecordService {
	l := logger.With().Str("module", "service").Str("component", "record").Logger()
	return &recordService{records: records, tx: tx, seasons: seasons, now: time.Now, log: l}
}

func invalidRow(row int64) error {
	if row <= 0 {
		return NewInvalidInputError([]FieldError{{Field: "row", Message: "must be > 0"}})
	}
	return nil
}

// storeError surfaces rows the database refused as client errors.
func storeError(err error) error {
	if errors.Is(err, repository.ErrInvalidData) {
		return NewInvalidInputError([]FieldError{{Field: "record", Message: "rejected by the record store"}})
	}
	return err
}

func (s *recordService) ListRecords(ctx context.Context, season string, page repository.Page) (repository.PageResult[model.GameRecord], error) {
	season, err := s.seasons.Resolve(season)
	if err != nil {
		return repository.PageResult[model.GameRecord]{}, err
	}
	all, err := s.records.List(ctx, season)
	if err != nil {
		s.log.Error().Err(err).Str("season", season).Msg("list records failed")
		return repository.PageResult[model.GameRecord]{}, err
	}
	return repository.Paginate(all, page), nil
}

func (s *recordService) GetRecord(ctx context.Context, season string, row int64) (model.GameRecord, error) {
	season, err := s.seasons.Resolve(season)
	if err != nil {
		return model.GameRecord{}, err
	}
	if err := invalidRow(row); err != nil {
		return model.GameRecord{}, err
	}
	return s.records.Get(ctx, season, row)
}

func (s *recordService) CreateRecord(ctx context.Context, season string, in RecordInput) (model.GameRecord, error) {
	start := time.Now()
	season, err := s.seasons.Resolve(season)
	if err != nil {
		return model.GameRecord{}, err
	}
	rec, err := toRecord(in)
	if err != nil {
		s.log.Debug().Interface("field_errors", FieldErrors(err)).Msg("record validation failed")
		return model.GameRecord{}, err
	}
	rec.Season = season
	rec.CreatedAt = s.now().UTC()

	out, err := s.records.Append(ctx, season, rec)
	if err != nil {
		s.log.Error().Err(err).Str("season", season).Str("date", rec.Date).Msg("create record failed")
		return model.GameRecord{}, storeError(err)
	}
	s.log.Info().Dur("took", time.Since(start)).Str("season", season).Int64("row", out.Row).Msg("record created")
	return out, nil
}

func (s *recordService) UpdateRecord(ctx context.Context, season string, row int64, in RecordInput) (model.GameRecord, error) {
	season, err := s.seasons.Resolve(season)
	if err != nil {
		return model.GameRecord{}, err
	}
	if err := invalidRow(row); err != nil {
		return model.GameRecord{}, err
	}
	rec, err := toRecord(in)
	if err != nil {
		return model.GameRecord{}, err
	}
	rec.Season = season

	out, err := s.records.Update(ctx, season, row, rec)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.Error().Err(err).Str("season", season).Int64("row", row).Msg("update record failed")
		}
		return model.GameRecord{}, storeError(err)
	}
	s.log.Info().Str("season", season).Int64("row", row).Msg("record updated")
	return out, nil
}

func (s *recordService) DeleteRecord(ctx context.Context, season string, row int64) error {
	season, err := s.seasons.Resolve(season)
	if err != nil {
		return err
	}
	if err := invalidRow(row); err != nil {
		return err
	}
	if err := s.records.Delete(ctx, season, row); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.Error().Err(err).Str("season", season).Int64("row", row).Msg("delete record failed")
		}
		return err
	}
	s.log.Info().Str("season", season).Int64("row", row).Msg("record deleted")
	return nil
}

func (s *recordService) ImportRecords(ctx context.Context, season string, in []RecordInput) ([]model.GameRecord, error) {
	start := time.Now()
	season, err := s.seasons.Resolve(season)
	if err != nil {
		return nil, err
	}
	// one bad row rejects the batch before any write
	recs, err := toRecords(in)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	out := make([]model.GameRecord, 0, len(recs))
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		for _, rec := range recs {
			rec.Season = season
			rec.CreatedAt = now
			created, err := s.records.Append(ctx, season, rec)
			if err != nil {
				return err
			}
			out = append(out, created)
		}
		return nil
	})
	if err != nil {
		s.log.Error().Err(err).Str("season", season).Int("records", len(recs)).Msg("import failed")
		return nil, storeError(err)
	}
	s.log.Info().Dur("took", time.Since(start)).Str("season", season).Int("records", len(out)).Msg("records imported")
	return out, nil
}
