package sessions

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"
)

// PostgresStore implements SessionStore with PostgreSQL storage
type PostgresStore struct {
	db *bun.DB
}

// NewPostgresStore creates a new PostgreSQL store
func NewPostgresStore(db *bun.DB) *PostgresStore {
	return &PostgresStore{
		db: db,
	}
}

// SessionSchema represents the sessions table schema
type SessionSchema struct {
	bun.BaseModel `bun:"table:sessions,alias:s"`

	ID            int64                `bun:"id,pk,autoincrement" json:"id"`
	SessionNumber int                  `bun:"session_number,notnull" json:"session_number"`
	UserID        string               `bun:"user_id,notnull" json:"user_id"`
	CreatedAt     time.Time            `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	Measurements  []*MeasurementSchema `bun:"rel:has-many,join:id=session_id" json:"measurements"`
}

// MeasurementSchema represents the measurements table schema
type MeasurementSchema struct {
	bun.BaseModel `bun:"table:measurements,alias:m"`

	ID                       int64     `bun:"id,pk,autoincrement" json:"id"`
	Band                     string    `bun:"brainwave_band,notnull" json:"brainwave_band"`
	ZScore                   float64   `bun:"z_score,notnull" json:"z_score"`
	Frequency                float64   `bun:"frequency,notnull" json:"frequency"`
	Lobe                     *string   `bun:"lobe,nullzero" json:"lobe,omitempty"`
	Region                   *string   `bun:"region,nullzero" json:"region,omitempty"`
	BrodmannArea             int       `bun:"brodmann_area,notnull" json:"brodmann_area"`
	Functions                *string   `bun:"functions,nullzero" json:"functions,omitempty"`
	PossibleSymptomsOfDefect *string   `bun:"possible_symptoms_of_defect,nullzero" json:"possible_symptoms_of_defect,omitempty"`
	CreatedAt                time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	SessionID                int64     `bun:"session_id,notnull" json:"session_id"`
}

// ListSessionsByUser retrieves all sessions for a user with their
// measurements, ordered by ascending session number.
func (s *PostgresStore) ListSessionsByUser(ctx context.Context, userID string) ([]*Session, error) {
	var schemas []*SessionSchema
	err := s.db.NewSelect().
		Model(&schemas).
		Relation("Measurements", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("m.id ASC")
		}).
		Where("s.user_id = ?", userID).
		Order("s.session_number ASC").
		Scan(ctx)
	if err != nil {
		return nil, NewStorageQueryError("list_sessions", err)
	}

	result := make([]*Session, len(schemas))
	for i, schema := range schemas {
		result[i] = schemaToSession(schema)
	}
	return result, nil
}

// GetSession retrieves one session by its user-scoped number. Returns nil
// without error when the session does not exist.
func (s *PostgresStore) GetSession(ctx context.Context, userID string, sessionNumber int) (*Session, error) {
	var schema SessionSchema
	err := s.db.NewSelect().
		Model(&schema).
		Relation("Measurements", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("m.id ASC")
		}).
		Where("s.user_id = ?", userID).
		Where("s.session_number = ?", sessionNumber).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, NewStorageQueryError("get_session", err)
	}

	return schemaToSession(&schema), nil
}

// ReplaceSession replaces the session identified by (user, session number)
// with the given session and its measurement batch, deleting any prior data
// for that pair first. Delete and insert run in one transaction so a partial
// replacement is never observable.
func (s *PostgresStore) ReplaceSession(ctx context.Context, session *Session) (*Session, error) {
	var created *Session

	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var existing SessionSchema
		err := tx.NewSelect().
			Model(&existing).
			Column("id").
			Where("user_id = ?", session.UserID).
			Where("session_number = ?", session.SessionNumber).
			Scan(ctx)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		if err == nil {
			// Cascade: measurements go first, then the owning session.
			if _, err := tx.NewDelete().
				Model((*MeasurementSchema)(nil)).
				Where("session_id = ?", existing.ID).
				Exec(ctx); err != nil {
				return err
			}
			if _, err := tx.NewDelete().
				Model((*SessionSchema)(nil)).
				Where("id = ?", existing.ID).
				Exec(ctx); err != nil {
				return err
			}
		}

		schema := &SessionSchema{
			SessionNumber: session.SessionNumber,
			UserID:        session.UserID,
			CreatedAt:     session.CreatedAt,
		}
		if _, err := tx.NewInsert().
			Model(schema).
			Returning("*").
			Exec(ctx); err != nil {
			return err
		}

		measurementSchemas := make([]*MeasurementSchema, len(session.Measurements))
		for i, m := range session.Measurements {
			measurementSchemas[i] = measurementToSchema(m, schema.ID)
		}
		if len(measurementSchemas) > 0 {
			if _, err := tx.NewInsert().
				Model(&measurementSchemas).
				Returning("*").
				Exec(ctx); err != nil {
				return err
			}
		}

		schema.Measurements = measurementSchemas
		created = schemaToSession(schema)
		return nil
	})
	if err != nil {
		return nil, NewStorageTransactionError("replace_session", err)
	}

	return created, nil
}

// DeleteSession deletes one session and all of its measurements. Returns
// false when no session matched (not an error, mirroring the API contract).
func (s *PostgresStore) DeleteSession(ctx context.Context, userID string, sessionNumber int) (bool, error) {
	deleted := false

	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var existing SessionSchema
		err := tx.NewSelect().
			Model(&existing).
			Column("id").
			Where("user_id = ?", userID).
			Where("session_number = ?", sessionNumber).
			Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}

		if _, err := tx.NewDelete().
			Model((*MeasurementSchema)(nil)).
			Where("session_id = ?", existing.ID).
			Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.NewDelete().
			Model((*SessionSchema)(nil)).
			Where("id = ?", existing.ID).
			Exec(ctx); err != nil {
			return err
		}

		deleted = true
		return nil
	})
	if err != nil {
		return false, NewStorageTransactionError("delete_session", err)
	}

	return deleted, nil
}

// DeleteAllSessions deletes every session a user owns, cascading to all
// measurements.
func (s *PostgresStore) DeleteAllSessions(ctx context.Context, userID string) error {
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*MeasurementSchema)(nil)).
			Where("session_id IN (SELECT id FROM sessions WHERE user_id = ?)", userID).
			Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.NewDelete().
			Model((*SessionSchema)(nil)).
			Where("user_id = ?", userID).
			Exec(ctx); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return NewStorageTransactionError("delete_all_sessions", err)
	}

	return nil
}

// Helper conversion functions

func schemaToSession(schema *SessionSchema) *Session {
	measurements := make([]*Measurement, len(schema.Measurements))
	for i, m := range schema.Measurements {
		measurements[i] = schemaToMeasurement(m)
	}

	return &Session{
		ID:            schema.ID,
		SessionNumber: schema.SessionNumber,
		UserID:        schema.UserID,
		CreatedAt:     schema.CreatedAt,
		Measurements:  measurements,
	}
}

func schemaToMeasurement(schema *MeasurementSchema) *Measurement {
	var lobe *Lobe
	if schema.Lobe != nil {
		l := Lobe(*schema.Lobe)
		lobe = &l
	}

	return &Measurement{
		ID:                       schema.ID,
		Band:                     Band(schema.Band),
		ZScore:                   schema.ZScore,
		Frequency:                schema.Frequency,
		Lobe:                     lobe,
		Region:                   schema.Region,
		BrodmannArea:             schema.BrodmannArea,
		Functions:                schema.Functions,
		PossibleSymptomsOfDefect: schema.PossibleSymptomsOfDefect,
		SessionID:                schema.SessionID,
	}
}

func measurementToSchema(m *Measurement, sessionID int64) *MeasurementSchema {
	var lobe *string
	if m.Lobe != nil {
		l := string(*m.Lobe)
		lobe = &l
	}

	return &MeasurementSchema{
		Band:                     string(m.Band),
		ZScore:                   m.ZScore,
		Frequency:                m.Frequency,
		Lobe:                     lobe,
		Region:                   m.Region,
		BrodmannArea:             m.BrodmannArea,
		Functions:                m.Functions,
		PossibleSymptomsOfDefect: m.PossibleSymptomsOfDefect,
		SessionID:                sessionID,
	}
}
