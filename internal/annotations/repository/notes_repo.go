package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/stateboard/stateboard-backend/internal/annotations/domain"
)

const noteColumns = "id, target_type, target_key, title, content, category, ticket, status, created_at, updated_at"

// NoteRepository provides persistence operations for notes.
type NoteRepository struct {
	db *sql.DB
}

func NewNoteRepository(db *sql.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

// Create inserts the note under a fresh UUID.
func (r *NoteRepository) Create(ctx context.Context, n *domain.Note) (*domain.Note, error) {
	const q = `
INSERT INTO notes (id, target_type, target_key, title, content, category, ticket, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING ` + noteColumns + `;
`
	for i := 0; i < 2; i++ {
		id := uuid.New().String()

		var out domain.Note
		err := r.db.QueryRowContext(ctx, q,
			id, n.TargetType, n.TargetKey, n.Title, n.Content, n.Category, n.Ticket, n.Status, n.CreatedAt, n.UpdatedAt).
			Scan(&out.ID, &out.TargetType, &out.TargetKey, &out.Title, &out.Content,
				&out.Category, &out.Ticket, &out.Status, &out.CreatedAt, &out.UpdatedAt)
		if err == nil {
			return &out, nil
		}

		// unique violation on id → retry once with a new UUID
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			continue
		}
		return nil, err
	}

	return nil, fmt.Errorf("failed to generate unique note id")
}

// ByTarget returns the notes for one state or transition, newest first.
func (r *NoteRepository) ByTarget(ctx context.Context, targetType, targetKey string) ([]domain.Note, error) {
	const q = `
SELECT ` + noteColumns + `
FROM notes
WHERE target_type = $1 AND target_key = $2
ORDER BY created_at DESC;
`
	rows, err := r.db.QueryContext(ctx, q, targetType, targetKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Note, 0, 16)
	for rows.Next() {
		var n domain.Note
		if err := rows.Scan(&n.ID, &n.TargetType, &n.TargetKey, &n.Title, &n.Content,
			&n.Category, &n.Ticket, &n.Status, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *NoteRepository) Get(ctx context.Context, id string) (*domain.Note, error) {
	const q = `
SELECT ` + noteColumns + `
FROM notes
WHERE id = $1;
`
	var n domain.Note
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&n.ID, &n.TargetType, &n.TargetKey, &n.Title, &n.Content,
			&n.Category, &n.Ticket, &n.Status, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &n, nil
}

// Update rewrites the editable fields of an existing note.
func (r *NoteRepository) Update(ctx context.Context, n *domain.Note) (*domain.Note, error) {
	const q = `
UPDATE notes
SET title = $2, content = $3, category = $4, ticket = $5, status = $6, updated_at = $7
WHERE id = $1
RETURNING ` + noteColumns + `;
`
	var out domain.Note
	err := r.db.QueryRowContext(ctx, q,
		n.ID, n.Title, n.Content, n.Category, n.Ticket, n.Status, n.UpdatedAt).
		Scan(&out.ID, &out.TargetType, &out.TargetKey, &out.Title, &out.Content,
			&out.Category, &out.Ticket, &out.Status, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

func (r *NoteRepository) Delete(ctx context.Context, id string) error {
	const q = `
DELETE FROM notes
WHERE id = $1;
`
	result, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CountByTarget returns how many notes point at one target. The detail
// panel shows this as a badge without loading the notes themselves.
func (r *NoteRepository) CountByTarget(ctx context.Context, targetType, targetKey string) (int, error) {
	const q = `
SELECT count(*)
FROM notes
WHERE target_type = $1 AND target_key = $2;
`
	var n int
	if err := r.db.QueryRowContext(ctx, q, targetType, targetKey).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
