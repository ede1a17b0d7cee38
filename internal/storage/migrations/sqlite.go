package migrations

import (
	"context"

	"memecoin-hunter/internal/storage/sqlite"
)

// RunSQLite applies all embedded SQLite files in lexical order, one statement at a time.
func RunSQLite(ctx context.Context, db *sqlite.DB) error {
	return applyEach(ctx, SQLiteFS, "sqlite", func(ctx context.Context, stmt string) error {
		_, err := db.ExecContext(ctx, stmt)
		return err
	})
}
