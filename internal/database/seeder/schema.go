package seeder

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"careerboard/internal/database"
)

// ErrSchemaMismatch means a table the seeders write to lacks expected columns.
var ErrSchemaMismatch = errors.New("schema mismatch")

// requireColumns fails with every column of table that is absent from the current schema.
func requireColumns(ctx context.Context, db database.DB, table string, columns ...string) error {
	rows, err := db.Query(
		ctx,
		`SELECT column_name FROM information_schema.columns WHERE table_schema = current_schema() AND table_name = $1`,
		table,
	)
	if err != nil {
		return fmt.Errorf("inspect %s: %w", table, err)
	}
	defer rows.Close()

	existing := map[string]struct{}{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return fmt.Errorf("inspect %s: %w", table, err)
		}
		existing[c] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("inspect %s: %w", table, err)
	}

	var missing []string
	for _, col := range columns {
		if _, ok := existing[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s is missing %s", ErrSchemaMismatch, table, strings.Join(missing, ", "))
	}
	return nil
}
