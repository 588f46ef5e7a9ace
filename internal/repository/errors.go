package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/m-mizutani/goerr/v2"
	"gorm.io/gorm"

	"taskboard/internal/apperr"
)

// Postgres error codes that mean "retry the whole request".
var transientCodes = map[string]struct{}{
	"40001": {}, // serialization_failure
	"40P01": {}, // deadlock_detected
	"55P03": {}, // lock_not_available
}

// translate maps driver errors onto the apperr kinds.
func translate(err error, msg string, values ...goerr.Option) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return goerr.Wrap(apperr.ErrNotFound, msg, values...)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if _, ok := transientCodes[pgErr.Code]; ok {
			values = append(values, goerr.V("pg_code", pgErr.Code))
			return goerr.Wrap(errors.Join(apperr.ErrTransientStore, err), msg, values...)
		}
	}
	return goerr.Wrap(err, msg, values...)
}
