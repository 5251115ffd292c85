package repository

import (
	"context"

	"github.com/maxviazov/mahjong-score-service/internal/model"
)

// Pinger represents a minimal readiness probe capability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// TxFunc is the unit of work executed within a transaction boundary.
type TxFunc func(ctx context.Context) error

// TxManager abstracts transactional execution for stores that support it.
// Repository calls made with the ctx handed to fn join the transaction.
type TxManager interface {
	WithinTx(ctx context.Context, fn TxFunc) error
}

// RecordRepository persists game records partitioned by season.
//
// The row key is assigned by the store: the spreadsheet store uses the 1-based
// data row (deleting a row shifts the rows below it), postgres uses the id.
// Implementations return ErrNotFound for unknown rows and never reorder records:
// List returns them in insertion order.
type RecordRepository interface {
	List(ctx context.Context, season string) ([]model.GameRecord, error)
	Get(ctx context.Context, season string, row int64) (model.GameRecord, error)
	Append(ctx context.Context, season string, rec model.GameRecord) (model.GameRecord, error)
	Update(ctx context.Context, season string, row int64, rec model.GameRecord) (model.GameRecord, error)
	Delete(ctx context.Context, season string, row int64) error
}
