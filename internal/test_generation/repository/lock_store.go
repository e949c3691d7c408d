package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stateboard/stateboard-backend/internal/test_generation/domain"
)

// LockStore persists per-test-file regeneration locks.
type LockStore struct {
	db *pgxpool.Pool
}

func NewLockStore(db *pgxpool.Pool) *LockStore {
	return &LockStore{db: db}
}

func (s *LockStore) Get(ctx context.Context, testFile string) (*domain.Lock, error) {
	const q = `
select test_file, locked, coalesce(reason, ''), locked_at, updated_at
from generation_locks
where test_file = $1;
`
	var l domain.Lock
	err := s.db.QueryRow(ctx, q, testFile).
		Scan(&l.TestFile, &l.Locked, &l.Reason, &l.LockedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}

// ListByState returns the locks for a state's derived test file names.
func (s *LockStore) ListByState(ctx context.Context, stateID string) ([]domain.Lock, error) {
	const q = `
select test_file, locked, coalesce(reason, ''), locked_at, updated_at
from generation_locks
where test_file = $1
order by test_file;
`
	rows, err := s.db.Query(ctx, q, domain.TestFileName(stateID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Lock, 0, 4)
	for rows.Next() {
		var l domain.Lock
		if err := rows.Scan(&l.TestFile, &l.Locked, &l.Reason, &l.LockedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Toggle flips the lock for a test file, inserting the row on first
// use. Locking stamps locked_at and keeps the reason; unlocking clears
// both.
func (s *LockStore) Toggle(ctx context.Context, testFile, reason string) (*domain.Lock, error) {
	const q = `
insert into generation_locks (test_file, locked, reason, locked_at, updated_at)
values ($1, true, nullif($2, ''), now(), now())
on conflict (test_file) do update
set
  locked = not generation_locks.locked,
  reason = case when generation_locks.locked then null else nullif(excluded.reason, '') end,
  locked_at = case when generation_locks.locked then null else now() end,
  updated_at = now()
returning test_file, locked, coalesce(reason, ''), locked_at, updated_at;
`
	var l domain.Lock
	err := s.db.QueryRow(ctx, q, testFile, reason).
		Scan(&l.TestFile, &l.Locked, &l.Reason, &l.LockedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// IsLocked satisfies the detail panel's lock-state dependency. A
// missing row means the file was never locked.
func (s *LockStore) IsLocked(ctx context.Context, testFile string) (bool, error) {
	l, err := s.Get(ctx, testFile)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return l.Locked, nil
}
