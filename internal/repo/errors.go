package repo

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jayt-piggie/my-trip-planner/internal/domain"
)

// mapError converts pgx/pgconn errors into domain errors.
// Missing rows become domain.ErrNotFound, constraint violations become
// domain.ErrValidation and everything else (network, timeouts, rejected
// statements) is a domain.ErrTransport with the cause kept in the chain.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrValidation) || errors.Is(err, domain.ErrTransport) {
		return err
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505", "23514", "22P02": // unique_violation, check_violation, invalid_text_representation
			return fmt.Errorf("%w: %w", domain.ErrValidation, err)
		}
	}

	return fmt.Errorf("%w: %w", domain.ErrTransport, err)
}
