package postgres

import (
	"errors"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"cv-tracker-backend/internal/domain"
)

// PostgreSQL error codes
const (
	pgUniqueViolation   = "23505"
	pgInvalidTextFormat = "22P02"
)

// Unique constraint names from the migrations
const (
	constraintCelular           = "curriculums_celular_key"
	constraintClienteComentario = "listas_cliente_comentario_key"
	constraintUserEmail         = "users_email_key"
)

// mapError turns driver errors into domain errors. A malformed UUID can
// never match a row, so it is reported as not found.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgInvalidTextFormat:
			return domain.ErrNotFound
		case pgUniqueViolation:
			switch pgErr.ConstraintName {
			case constraintCelular:
				return domain.ErrDuplicateCelular
			case constraintClienteComentario:
				return domain.ErrDuplicateLista
			case constraintUserEmail:
				return domain.ErrDuplicateEmail
			}
		}
	}
	return err
}

func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// sortedUnion returns the distinct ids of both slices in ascending order.
// Rows are locked in this order so concurrent transactions cannot deadlock.
func sortedUnion(a, b []string) []string {
	out := domain.UniqueIDs(append(append([]string{}, a...), b...))
	sort.Strings(out)
	return out
}
