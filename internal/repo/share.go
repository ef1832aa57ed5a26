package repo

import (
	"context"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"

	"github.com/jayt-piggie/my-trip-planner/internal/domain"
)

// GetSnapshot retrieves a snapshot by share token.
func (s *pgStore) GetSnapshot(ctx context.Context, token string) (domain.Snapshot, error) {
	const q = `
		SELECT token, days, updated_at
		FROM share_snapshots
		WHERE token = @token`

	var (
		snap domain.Snapshot
		raw  []byte
	)
	err := s.db.QueryRow(ctx, q, pgx.NamedArgs{"token": token}).Scan(&snap.Token, &raw, &snap.UpdatedAt)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("repo.Store.GetSnapshot: %w", mapError(err))
	}
	if err := json.Unmarshal(raw, &snap.Days); err != nil {
		return domain.Snapshot{}, fmt.Errorf("repo.Store.GetSnapshot: decode days: %w", err)
	}
	return snap, nil
}

// PutSnapshot stores the snapshot under token, overwriting in place on re-share.
func (s *pgStore) PutSnapshot(ctx context.Context, owner, token string, days []domain.DayRecord) error {
	const q = `
		INSERT INTO share_snapshots (token, owner_key, days)
		VALUES (@token, @owner_key, @days)
		ON CONFLICT (token) DO UPDATE
		SET days       = EXCLUDED.days,
		    updated_at = now()
		WHERE share_snapshots.owner_key = EXCLUDED.owner_key`

	raw, err := json.Marshal(days)
	if err != nil {
		return fmt.Errorf("repo.Store.PutSnapshot: encode days: %w", err)
	}

	tag, err := s.db.Exec(ctx, q, pgx.NamedArgs{"token": token, "owner_key": owner, "days": raw})
	if err != nil {
		return fmt.Errorf("repo.Store.PutSnapshot: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		// The token belongs to another owner.
		return fmt.Errorf("repo.Store.PutSnapshot: %w: token owned by another owner", domain.ErrValidation)
	}
	return nil
}

// GetShareToken returns the token previously issued to owner.
func (s *pgStore) GetShareToken(ctx context.Context, owner string) (string, error) {
	const q = `SELECT token FROM share_tokens WHERE owner_key = @owner_key`

	var token string
	if err := s.db.QueryRow(ctx, q, pgx.NamedArgs{"owner_key": owner}).Scan(&token); err != nil {
		return "", fmt.Errorf("repo.Store.GetShareToken: %w", mapError(err))
	}
	return token, nil
}

// SetShareToken records the owner's token, replacing any previous one.
func (s *pgStore) SetShareToken(ctx context.Context, owner, token string) error {
	const q = `
		INSERT INTO share_tokens (owner_key, token)
		VALUES (@owner_key, @token)
		ON CONFLICT (owner_key) DO UPDATE SET token = EXCLUDED.token`

	if _, err := s.db.Exec(ctx, q, pgx.NamedArgs{"owner_key": owner, "token": token}); err != nil {
		return fmt.Errorf("repo.Store.SetShareToken: %w", mapError(err))
	}
	return nil
}
