package migrations

import (
	"context"
	"fmt"

	"memecoin-hunter/internal/storage/postgres"
)

// RunPostgres applies all embedded PostgreSQL files in lexical order. Each file
// is sent whole; files must be idempotent.
func RunPostgres(ctx context.Context, pool *postgres.Pool) error {
	files, err := load(PostgresFS, "postgres")
	if err != nil {
		return err
	}
	for _, m := range files {
		if _, err := pool.Exec(ctx, m.body); err != nil {
			return fmt.Errorf("apply migration %s: %w", m.name, err)
		}
	}
	return nil
}
