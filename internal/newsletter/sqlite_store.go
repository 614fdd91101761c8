package newsletter

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLiteStore opens dsn with the modernc driver and migrates the schema
func OpenSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open newsletter db: %w", err)
	}
	// one writer at a time; also keeps ":memory:" databases on a single connection
	db.SetMaxOpenConns(1)
	store, err := NewSQLiteStore(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate newsletter db: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS newsletter_subscriptions (
		email TEXT PRIMARY KEY,
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		consent INTEGER NOT NULL DEFAULT 0,
		revision INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);`
	_, err := s.db.ExecContext(context.Background(), query)
	return err
}

// upsertQuery creates or updates in a single statement; NULL parameters keep
// the stored value.
const upsertQuery = `
INSERT INTO newsletter_subscriptions (email, first_name, last_name, phone, consent, created_at, updated_at)
VALUES (?1, COALESCE(?2, ''), COALESCE(?3, ''), COALESCE(?4, ''), COALESCE(?5, 0), ?6, ?6)
ON CONFLICT(email) DO UPDATE SET
	first_name = COALESCE(?2, first_name),
	last_name = COALESCE(?3, last_name),
	phone = COALESCE(?4, phone),
	consent = COALESCE(?5, consent),
	revision = revision + 1,
	updated_at = ?6
RETURNING email, first_name, last_name, phone, consent, revision, created_at, updated_at`

func (s *SQLiteStore) Upsert(ctx context.Context, key string, fields Fields) (Record, error) {
	now := s.now().UTC().Format(time.RFC3339Nano)

	var consent sql.NullInt64
	if fields.Consent != nil {
		consent.Valid = true
		if *fields.Consent {
			consent.Int64 = 1
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Record{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var (
		r                    Record
		consentVal, revision int64
		createdAt, updatedAt string
	)
	err = tx.QueryRowContext(ctx, upsertQuery,
		key, nullString(fields.FirstName), nullString(fields.LastName), nullString(fields.Phone), consent, now,
	).Scan(&r.Email, &r.FirstName, &r.LastName, &r.Phone, &consentVal, &revision, &createdAt, &updatedAt)
	if err != nil {
		return Record{}, fmt.Errorf("failed to upsert subscription: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Record{}, err
	}

	r.Consent = consentVal != 0
	r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	r.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	r.Created = revision == 1
	return r, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}
