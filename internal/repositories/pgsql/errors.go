package pgsql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/victorotene80/sirara-core/internal/apperrors"
)

// MapPgError translates a pgx/Postgres error into the repository error
// taxonomy by Postgres error code: unique violations become
// conflicts, constraint/FK/not-null violations become integrity
// errors, serialization and deadlock failures and an expired context
// deadline (such as a timed-out pool acquire) become transient errors,
// everything else is unexpected.
func MapPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFoundError("row")
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewTransientError(err, "transient database error: deadline exceeded")
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return apperrors.NewConflictError("unique constraint violated: %s", pgErr.ConstraintName)
		case "23503", "23514", "23502":
			return apperrors.NewIntegrityError("constraint violated: %s", pgErr.Message)
		case "40001", "40P01", "55P03":
			return apperrors.NewTransientError(err, "transient database error: %s", pgErr.Code)
		default:
			return apperrors.NewUnexpectedError(err, "unexpected database error: %s", pgErr.Code)
		}
	}

	return apperrors.NewUnexpectedError(err, "unexpected database error")
}
