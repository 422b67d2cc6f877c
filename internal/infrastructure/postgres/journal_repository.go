package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/diaryfi/diaryfi-api/internal/domain/entity"
	"github.com/diaryfi/diaryfi-api/internal/domain/repository"
)

type JournalRepository struct {
	pool *pgxpool.Pool
}

func NewJournalRepository(pool *pgxpool.Pool) *JournalRepository {
	return &JournalRepository{pool: pool}
}

// journalSelect includes a correlated entry count; listings are small enough
// (free tier caps at 3) that a subquery per row is fine.
const journalSelect = `
	SELECT j.id, j.user_id, j.name, j.description, j.color, j.icon,
		(SELECT COUNT(*) FROM entries e WHERE e.journal_id = j.id) AS entry_count,
		j.created_at, j.updated_at
	FROM journals j`

func scanJournal(row rowScanner) (*entity.Journal, error) {
	j := &entity.Journal{}
	if err := row.Scan(
		&j.ID, &j.UserID, &j.Name, &j.Description, &j.Color, &j.Icon,
		&j.EntryCount, &j.CreatedAt, &j.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return j, nil
}

func (r *JournalRepository) Create(ctx context.Context, j *entity.Journal) error {
	if j.Color == "" {
		j.Color = entity.DefaultJournalColor
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO journals (user_id, name, description, color, icon)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, j.UserID, j.Name, j.Description, j.Color, j.Icon)
	return row.Scan(&j.ID, &j.CreatedAt, &j.UpdatedAt)
}

func (r *JournalRepository) GetByID(ctx context.Context, userID, id string) (*entity.Journal, error) {
	row := r.pool.QueryRow(ctx, journalSelect+` WHERE j.id = $1 AND j.user_id = $2`, id, userID)
	return scanJournal(row)
}

func (r *JournalRepository) ListByUser(ctx context.Context, userID string) ([]*entity.Journal, error) {
	// Oldest first so the default journal stays on top for new users.
	rows, err := r.pool.Query(ctx, journalSelect+` WHERE j.user_id = $1 ORDER BY j.created_at ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Journal
	for rows.Next() {
		j, err := scanJournal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

func (r *JournalRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM journals WHERE user_id = $1`, userID).Scan(&n)
	return n, err
}

func (r *JournalRepository) Update(ctx context.Context, j *entity.Journal) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE journals SET
			name        = CASE WHEN $3 <> '' THEN $3 ELSE name END,
			description = $4,
			color       = CASE WHEN $5 <> '' THEN $5 ELSE color END,
			icon        = $6,
			updated_at  = now()
		WHERE id = $1 AND user_id = $2
	`, j.ID, j.UserID, j.Name, j.Description, j.Color, j.Icon)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes the journal; entries.journal_id is cleared by the
// ON DELETE SET NULL constraint, never cascading to the entries themselves.
func (r *JournalRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM journals WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.JournalRepository = (*JournalRepository)(nil)
