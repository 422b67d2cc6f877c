package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/diaryfi/diaryfi-api/internal/domain/entity"
	"github.com/diaryfi/diaryfi-api/internal/domain/repository"
)

type EntryRepository struct {
	pool *pgxpool.Pool
}

func NewEntryRepository(pool *pgxpool.Pool) *EntryRepository {
	return &EntryRepository{pool: pool}
}

const entryColumns = `
	id, user_id, COALESCE(journal_id::text, ''),
	title, description, format_spans, media, location,
	created_at, updated_at`

func scanEntry(row rowScanner) (*entity.Entry, error) {
	e := &entity.Entry{}
	var spans, media, location []byte
	if err := row.Scan(
		&e.ID, &e.UserID, &e.JournalID,
		&e.Title, &e.Description, &spans, &media, &location,
		&e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if len(spans) > 0 {
		if err := json.Unmarshal(spans, &e.FormatSpans); err != nil {
			return nil, fmt.Errorf("decode format_spans: %w", err)
		}
	}
	if len(media) > 0 {
		if err := json.Unmarshal(media, &e.Media); err != nil {
			return nil, fmt.Errorf("decode media: %w", err)
		}
	}
	if len(location) > 0 && string(location) != "null" {
		e.Location = &entity.Location{}
		if err := json.Unmarshal(location, e.Location); err != nil {
			return nil, fmt.Errorf("decode location: %w", err)
		}
	}
	return e, nil
}

func entryJSON(e *entity.Entry) (spans, media, location []byte, err error) {
	if e.FormatSpans == nil {
		e.FormatSpans = []entity.FormatSpan{}
	}
	if e.Media == nil {
		e.Media = []entity.Media{}
	}
	if spans, err = json.Marshal(e.FormatSpans); err != nil {
		return nil, nil, nil, err
	}
	if media, err = json.Marshal(e.Media); err != nil {
		return nil, nil, nil, err
	}
	if e.Location != nil {
		if location, err = json.Marshal(e.Location); err != nil {
			return nil, nil, nil, err
		}
	}
	return spans, media, location, nil
}

func (r *EntryRepository) Create(ctx context.Context, e *entity.Entry) error {
	spans, media, location, err := entryJSON(e)
	if err != nil {
		return err
	}
	// created_at is client-overridable (backdated entries); the zero value
	// falls back to now() in SQL.
	row := r.pool.QueryRow(ctx, `
		INSERT INTO entries (user_id, journal_id, title, description, format_spans, media, location, created_at)
		VALUES ($1, NULLIF($2, '')::uuid, $3, $4, $5, $6, $7,
			CASE WHEN $8::timestamptz IS NULL THEN now() ELSE $8::timestamptz END)
		RETURNING id, created_at, updated_at
	`, e.UserID, e.JournalID, e.Title, e.Description, spans, media, location, nullableTime(e))
	return row.Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

func nullableTime(e *entity.Entry) any {
	if e.CreatedAt.IsZero() {
		return nil
	}
	return e.CreatedAt
}

func (r *EntryRepository) GetByID(ctx context.Context, userID, id string) (*entity.Entry, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+entryColumns+` FROM entries WHERE id = $1 AND user_id = $2`, id, userID)
	return scanEntry(row)
}

func (r *EntryRepository) ListByUser(ctx context.Context, userID string, f repository.EntryFilter) ([]*entity.Entry, int64, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 10
	}

	where := `WHERE user_id = $1`
	args := []any{userID}
	if f.JournalID != "" && f.JournalID != "all" {
		where += ` AND journal_id = $2`
		args = append(args, f.JournalID)
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM entries `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	order := "DESC"
	if !f.SortDesc {
		order = "ASC"
	}
	offset := (f.Page - 1) * f.Limit
	query := fmt.Sprintf(`SELECT %s FROM entries %s ORDER BY created_at %s LIMIT %d OFFSET %d`,
		entryColumns, where, order, f.Limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*entity.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, e)
	}
	return out, total, rows.Err()
}

// haversineMeters computes the great-circle distance from the query point to
// the entry's stored location. Plain trig keeps it extension-free; the per-user
// row counts here do not warrant PostGIS.
const haversineMeters = `
	2 * 6371000 * asin(sqrt(
		power(sin(radians(((location->>'latitude')::float8 - $3) / 2)), 2) +
		cos(radians($3)) * cos(radians((location->>'latitude')::float8)) *
		power(sin(radians(((location->>'longitude')::float8 - $2) / 2)), 2)
	))`

func (r *EntryRepository) ListNearby(ctx context.Context, userID string, lon, lat, radiusMeters float64) ([]*entity.Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+entryColumns+` FROM (
			SELECT *, `+haversineMeters+` AS distance_m
			FROM entries
			WHERE user_id = $1 AND location IS NOT NULL
		) located
		WHERE distance_m <= $4
		ORDER BY distance_m
	`, userID, lon, lat, radiusMeters)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *EntryRepository) Stats(ctx context.Context, userID string) (*repository.EntryStats, error) {
	stats := &repository.EntryStats{}
	if err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(jsonb_array_length(media)), 0)
		FROM entries WHERE user_id = $1
	`, userID).Scan(&stats.TotalEntries, &stats.TotalMedia); err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT EXTRACT(YEAR FROM created_at)::int,
		       EXTRACT(MONTH FROM created_at)::int,
		       COUNT(*)
		FROM entries WHERE user_id = $1
		GROUP BY 1, 2
		ORDER BY 1 DESC, 2 DESC
		LIMIT 12
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var mc repository.MonthCount
		if err := rows.Scan(&mc.Year, &mc.Month, &mc.Count); err != nil {
			return nil, err
		}
		stats.ByMonth = append(stats.ByMonth, mc)
	}
	return stats, rows.Err()
}

func (r *EntryRepository) Update(ctx context.Context, e *entity.Entry) error {
	spans, media, location, err := entryJSON(e)
	if err != nil {
		return err
	}
	res, err := r.pool.Exec(ctx, `
		UPDATE entries SET
			journal_id   = NULLIF($3, '')::uuid,
			title        = $4,
			description  = $5,
			format_spans = $6,
			media        = $7,
			location     = $8,
			updated_at   = now()
		WHERE id = $1 AND user_id = $2
	`, e.ID, e.UserID, e.JournalID, e.Title, e.Description, spans, media, location)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *EntryRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM entries WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.EntryRepository = (*EntryRepository)(nil)
