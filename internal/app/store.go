// Package app wires configuration into concrete record stores.
package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/maxviazov/mahjong-score-service/internal/config"
	"github.com/maxviazov/mahjong-score-service/internal/repository"
	"github.com/maxviazov/mahjong-score-service/internal/repository/postgres"
	"github.com/maxviazov/mahjong-score-service/internal/repository/xlsx"
	"github.com/rs/zerolog"
)

// Store bundles the three views of one record backend.
type Store struct {
	Backend string
	Records repository.RecordRepository
	Tx      repository.TxManager
	Pinger  repository.Pinger

	close func() error
}

func (s *Store) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// OpenStore opens the backend selected by cfg.Storage.Backend.
func OpenStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Store, error) {
	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		pool, err := repository.NewPool(ctx, cfg.Postgres, &logger)
		if err != nil {
			return nil, err
		}
		return postgresStore(pool), nil
	case config.BackendXLSX:
		return OpenWorkbook(cfg.Storage.XLSXPath, logger)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// OpenWorkbook opens a spreadsheet store regardless of the configured backend.
func OpenWorkbook(path string, logger zerolog.Logger) (*Store, error) {
	wb, err := xlsx.Open(path, logger)
	if err != nil {
		return nil, err
	}
	return &Store{Backend: config.BackendXLSX, Records: wb, Tx: wb, Pinger: wb, close: wb.Close}, nil
}

func postgresStore(pool *pgxpool.Pool) *Store {
	return &Store{
		Backend: config.BackendPostgres,
		Records: postgres.NewRecordRepository(pool),
		Tx:      postgres.NewTxManager(pool),
		Pinger:  postgres.NewPinger(pool),
		close: func() error {
			pool.Close()
			return nil
		},
	}
}
