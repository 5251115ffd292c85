package repository

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// Domain-level errors bubbled up from store implementations.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrConflict      = errors.New("conflict")
	ErrInvalidData   = errors.New("invalid data")
)

// MapPgError translates the Postgres error codes higher layers handle explicitly;
// everything else passes through.
func MapPgError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return ErrAlreadyExists
		case pgerrcode.ForeignKeyViolation, pgerrcode.SerializationFailure:
			return ErrConflict
		case pgerrcode.CheckViolation, pgerrcode.NotNullViolation,
			pgerrcode.InvalidDatetimeFormat, pgerrcode.DatetimeFieldOverflow:
			return ErrInvalidData
		}
	}
	return err
}
