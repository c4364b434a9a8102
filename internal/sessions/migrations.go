package sessions

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// SessionIndexes enforce per-user session number uniqueness and speed up the
// per-user listing the dashboard views issue on every load.
var SessionIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_sessions_user_number ON sessions (user_id, session_number)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions (user_id)`,
}

// MeasurementIndexes speed up the cascade deletes and the relation join.
var MeasurementIndexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_measurements_session_id ON measurements (session_id)`,
	`CREATE INDEX IF NOT EXISTS idx_measurements_band ON measurements (brainwave_band)`,
}

// CreateTables creates the session data tables
func CreateTables(ctx context.Context, db *bun.DB) error {
	models := []interface{}{
		(*SessionSchema)(nil),
		(*MeasurementSchema)(nil),
	}

	for _, model := range models {
		_, err := db.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create table for model %T: %w", model, err)
		}
	}

	return nil
}

// CreateIndexes creates all indexes for the session data tables
func CreateIndexes(ctx context.Context, db *bun.DB) error {
	allIndexes := append(SessionIndexes, MeasurementIndexes...)

	for _, indexSQL := range allIndexes {
		_, err := db.ExecContext(ctx, indexSQL)
		if err != nil {
			return fmt.Errorf("failed to create index with SQL %q: %w", indexSQL, err)
		}
	}

	return nil
}
