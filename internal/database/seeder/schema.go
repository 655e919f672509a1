package seeder

import (
	"context"

	"skillgap/internal/database"

	"github.com/pkg/errors"
)

var ErrSchemaMismatch = errors.New("schema mismatch")

// EnsureTableColumns fails when table lacks any of columns, which usually
// means migrations have not run.
func EnsureTableColumns(ctx context.Context, db database.Querier, table string, columns ...string) error {
	if db == nil {
		return errors.New("nil db")
	}
	if table == "" {
		return errors.New("empty table")
	}

	rows, err := db.Query(
		ctx,
		`SELECT column_name FROM information_schema.columns WHERE table_schema='public' AND table_name=$1`,
		table,
	)
	if err != nil {
		return errors.Wrapf(err, "inspect %s", table)
	}
	defer rows.Close()

	existing := map[string]struct{}{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return errors.Wrapf(err, "inspect %s", table)
		}
		existing[c] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return errors.Wrapf(err, "inspect %s", table)
	}

	for _, col := range columns {
		if _, ok := existing[col]; !ok {
			return errors.Wrapf(ErrSchemaMismatch, "missing column %s.%s", table, col)
		}
	}
	return nil
}
