package repository

import (
	"context"
	"database/sql"

	"skillgap/internal/database"

	"github.com/google/uuid"
)

// fakeDB answers every statement from canned functions and records what ran.
type fakeDB struct {
	execs    []string
	affected int64
	row      func(query string) database.Row

	committed  bool
	rolledBack bool
}

func (f *fakeDB) Ping(context.Context) error { return nil }
func (f *fakeDB) Close() error { return nil }
func (f *fakeDB) SQLDB() *sql.DB { return nil }

func (f *fakeDB) Exec(_ context.Context, query string, _ ...any) (int64, error) {
	f.execs = append(f.execs, query)
	return f.affected, nil
}

func (f *fakeDB) Query(context.Context, string, ...any) (database.Rows, error) {
	return nil, sql.ErrConnDone
}

func (f *fakeDB) QueryRow(_ context.Context, query string, _ ...any) database.Row {
	return f.row(query)
}

func (f *fakeDB) Begin(context.Context) (database.Tx, error) { return &fakeTx{db: f}, nil }

type fakeTx struct{ db *fakeDB }

func (t *fakeTx) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	return t.db.Exec(ctx, query, args...)
}

func (t *fakeTx) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	return t.db.Query(ctx, query, args...)
}

func (t *fakeTx) QueryRow(ctx context.Context, query string, args ...any) database.Row {
	return t.db.QueryRow(ctx, query, args...)
}

func (t *fakeTx) Commit(context.Context) error {
	t.db.committed = true
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	t.db.rolledBack = true
	return nil
}

// idRow scans a single uuid column, or fails with err.
type idRow struct {
	id  uuid.UUID
	err error
}

func (r idRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*uuid.UUID)) = r.id
	return nil
}
