package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/maxviazov/mahjong-score-service/internal/model"
	"github.com/maxviazov/mahjong-score-service/internal/repository"
)

type recordRepository struct{ pool *pgxpool.Pool }

// NewRecordRepository stores records in game_records with the seats as a jsonb array.
func NewRecordRepository(pool *pgxpool.Pool) repository.RecordRepository {
	return &recordRepository{pool: pool}
}

const recordColumns = `id, season, to_char(played_on, 'YYYY-MM-DD'), played_at, game_type, seats, notes, created_at`

func scanRecord(row pgx.Row) (model.GameRecord, error) {
	var (
		out      model.GameRecord
		gameType string
		seats    []byte
	)
	if err := row.Scan(&out.Row, &out.Season, &out.Date, &out.Time, &gameType, &seats, &out.Notes, &out.CreatedAt); err != nil {
		return model.GameRecord{}, err
	}
	out.GameType = model.GameType(gameType)
	out.Seats = decodeSeats(seats)
	out.CreatedAt = out.CreatedAt.UTC()
	return out, nil
}

func seatsParam(seats []model.Seat) []model.Seat {
	if seats == nil {
		return []model.Seat{}
	}
	return seats
}

func (r *recordRepository) List(ctx context.Context, season string) ([]model.GameRecord, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	rows, err := getQ(ctx, r.pool).Query(ctx,
		`SELECT `+recordColumns+`
		 FROM game_records
		 WHERE season = $1
		 ORDER BY id`, season,
	)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	defer rows.Close()

	out := make([]model.GameRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, repository.MapPgError(err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, repository.MapPgError(err)
	}
	return out, nil
}

func (r *recordRepository) Get(ctx context.Context, season string, row int64) (model.GameRecord, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.GameRecord{}, err
	}
	rec, err := scanRecord(getQ(ctx, r.pool).QueryRow(ctx,
		`SELECT `+recordColumns+`
		 FROM game_records
		 WHERE season = $1 AND id = $2`, season, row,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.GameRecord{}, repository.ErrNotFound
		}
		return model.GameRecord{}, repository.MapPgError(err)
	}
	return rec, nil
}

func (r *recordRepository) Append(ctx context.Context, season string, rec model.GameRecord) (model.GameRecord, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.GameRecord{}, err
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	out, err := scanRecord(getQ(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO game_records (season, played_on, played_at, game_type, seats, notes, created_at)
		 VALUES ($1, to_date($2, 'YYYY-MM-DD'), $3, $4, $5, $6, $7)
		 RETURNING `+recordColumns,
		season, rec.Date, rec.Time, string(rec.GameType), seatsParam(rec.Seats), rec.Notes, createdAt,
	))
	if err != nil {
		return model.GameRecord{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *recordRepository) Update(ctx context.Context, season string, row int64, rec model.GameRecord) (model.GameRecord, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.GameRecord{}, err
	}
	out, err := scanRecord(getQ(ctx, r.pool).QueryRow(ctx,
		`UPDATE game_records
		 SET played_on = to_date($3, 'YYYY-MM-DD'), played_at = $4, game_type = $5, seats = $6, notes = $7, updated_at = NOW()
		 WHERE season = $1 AND id = $2
		 RETURNING `+recordColumns,
		season, row, rec.Date, rec.Time, string(rec.GameType), seatsParam(rec.Seats), rec.Notes,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.GameRecord{}, repository.ErrNotFound
		}
		return model.GameRecord{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *recordRepository) Delete(ctx context.Context, season string, row int64) error {
	if err := ensurePool(r.pool); err != nil {
		return err
	}
	tag, err := getQ(ctx, r.pool).Exec(ctx, `DELETE FROM game_records WHERE season = $1 AND id = $2`, season, row)
	if err != nil {
		return repository.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.RecordRepository = (*recordRepository)(nil)
