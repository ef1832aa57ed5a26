package repo

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	json "github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/jayt-piggie/my-trip-planner/internal/domain"
)

// psql builds statements with Postgres-style $n placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var dayColumns = []string{
	"owner_key", "id", "date", "day_of_week", "title", "city", "icon",
	"notes", "photo_url", "locations", "is_published",
}

// pgStore is the Postgres implementation of Store.
type pgStore struct {
	db db
}

// NewPostgresStore constructs a Store backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewPostgresStore(db db) Store {
	return &pgStore{db: db}
}

// AtomicBatch is always true: PutAll runs in a single transaction.
func (s *pgStore) AtomicBatch() bool { return true }

// GetAll returns every day of the owner ordered by date.
func (s *pgStore) GetAll(ctx context.Context, owner string) ([]domain.DayRecord, error) {
	const q = `
		SELECT id, date, day_of_week, title, city, icon, notes, photo_url, locations, is_published
		FROM day_records
		WHERE owner_key = @owner_key
		ORDER BY date`

	rows, err := s.db.Query(ctx, q, pgx.NamedArgs{"owner_key": owner})
	if err != nil {
		return nil, fmt.Errorf("repo.Store.GetAll: %w", mapError(err))
	}
	defer rows.Close()

	days := []domain.DayRecord{}
	for rows.Next() {
		d, err := scanDay(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.Store.GetAll: scan: %w", mapError(err))
		}
		days = append(days, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.Store.GetAll: rows: %w", mapError(err))
	}
	return days, nil
}

// PutAll upserts every record in one multi-row statement inside a
// transaction. Either all rows are written or none are.
func (s *pgStore) PutAll(ctx context.Context, owner string, records []domain.DayRecord) error {
	if len(records) == 0 {
		return nil
	}

	ins := psql.Insert("day_records").Columns(dayColumns...)
	for _, d := range records {
		locs, err := encodeLocations(d.Locations)
		if err != nil {
			return fmt.Errorf("repo.Store.PutAll: %w", err)
		}
		ins = ins.Values(owner, d.ID, d.Date, d.DayOfWeek, d.Title, d.City, d.Icon,
			d.Notes, d.PhotoURL, locs, d.IsPublished)
	}
	ins = ins.Suffix(`
		ON CONFLICT (owner_key, id) DO UPDATE
		SET title        = EXCLUDED.title,
		    city         = EXCLUDED.city,
		    icon         = EXCLUDED.icon,
		    notes        = EXCLUDED.notes,
		    photo_url    = EXCLUDED.photo_url,
		    locations    = EXCLUDED.locations,
		    is_published = EXCLUDED.is_published,
		    updated_at   = now()`)

	q, args, err := ins.ToSql()
	if err != nil {
		return fmt.Errorf("repo.Store.PutAll: build: %w", err)
	}

	err = runInTx(ctx, s.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, q, args...)
		if err != nil {
			return err
		}
		if n := tag.RowsAffected(); n != int64(len(records)) {
			return fmt.Errorf("wrote %d of %d records", n, len(records))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("repo.Store.PutAll: %w", mapError(err))
	}
	return nil
}

// GetOne retrieves a day by owner and id.
func (s *pgStore) GetOne(ctx context.Context, owner, id string) (domain.DayRecord, error) {
	const q = `
		SELECT id, date, day_of_week, title, city, icon, notes, photo_url, locations, is_published
		FROM day_records
		WHERE owner_key = @owner_key AND id = @id`

	row := s.db.QueryRow(ctx, q, pgx.NamedArgs{"owner_key": owner, "id": id})
	d, err := scanDay(row)
	if err != nil {
		return domain.DayRecord{}, fmt.Errorf("repo.Store.GetOne: %w", mapError(err))
	}
	return d, nil
}

// PutOne overwrites the mutable fields of an existing day.
// The id, date and weekday are never rewritten.
func (s *pgStore) PutOne(ctx context.Context, owner string, record domain.DayRecord) error {
	const q = `
		UPDATE day_records
		SET title        = @title,
		    city         = @city,
		    icon         = @icon,
		    notes        = @notes,
		    photo_url    = @photo_url,
		    locations    = @locations,
		    is_published = @is_published,
		    updated_at   = now()
		WHERE owner_key = @owner_key AND id = @id`

	locs, err := encodeLocations(record.Locations)
	if err != nil {
		return fmt.Errorf("repo.Store.PutOne: %w", err)
	}

	args := pgx.NamedArgs{
		"owner_key":    owner,
		"id":           record.ID,
		"title":        record.Title,
		"city":         record.City,
		"icon":         record.Icon,
		"notes":        record.Notes,
		"photo_url":    record.PhotoURL,
		"locations":    locs,
		"is_published": record.IsPublished,
	}

	tag, err := s.db.Exec(ctx, q, args)
	if err != nil {
		return fmt.Errorf("repo.Store.PutOne: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.Store.PutOne: %w", domain.ErrNotFound)
	}
	return nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing scanDay to be
// reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanDay maps a single database row into a domain.DayRecord.
// It handles the date and JSONB locations conversions.
func scanDay(s scanner) (domain.DayRecord, error) {
	var (
		d    domain.DayRecord
		date pgtype.Date
		locs []byte
	)

	err := s.Scan(&d.ID, &date, &d.DayOfWeek, &d.Title, &d.City, &d.Icon,
		&d.Notes, &d.PhotoURL, &locs, &d.IsPublished)
	if err != nil {
		return domain.DayRecord{}, err
	}

	d.Date = date.Time
	if d.Locations, err = decodeLocations(locs); err != nil {
		return domain.DayRecord{}, err
	}
	return d, nil
}

// encodeLocations renders locations as a JSON array; nil becomes [].
func encodeLocations(locs []domain.Location) ([]byte, error) {
	if locs == nil {
		locs = []domain.Location{}
	}
	b, err := json.Marshal(locs)
	if err != nil {
		return nil, fmt.Errorf("encode locations: %w", err)
	}
	return b, nil
}

func decodeLocations(b []byte) ([]domain.Location, error) {
	locs := []domain.Location{}
	if len(b) == 0 {
		return locs, nil
	}
	if err := json.Unmarshal(b, &locs); err != nil {
		return nil, fmt.Errorf("decode locations: %w", err)
	}
	return locs, nil
}
