//go:build sqlite

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/cheatbot1234/thrust-vector-forge/internal/model"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) SaveStudy(ctx context.Context, study model.Study) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := EncodeStudy(study)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO studies (id, created_at, schema_version, codec_version, payload)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			created_at = excluded.created_at,
			schema_version = excluded.schema_version,
			codec_version = excluded.codec_version,
			payload = excluded.payload
	`, study.ID, study.CreatedAt, study.SchemaVersion, study.CodecVersion, payload)
	return err
}

func (s *SQLiteStore) Study(ctx context.Context, id string) (model.Study, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return model.Study{}, false, err
	}

	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT payload FROM studies WHERE id = ?`, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Study{}, false, nil
		}
		return model.Study{}, false, err
	}

	study, err := DecodeStudy(payload)
	if err != nil {
		return model.Study{}, false, fmt.Errorf("decode study %s: %w", id, err)
	}
	return study, true, nil
}

func (s *SQLiteStore) Studies(ctx context.Context) ([]model.StudySummary, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT payload FROM studies ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []model.StudySummary
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		study, err := DecodeStudy(payload)
		if err != nil {
			return nil, fmt.Errorf("decode study listing: %w", err)
		}
		summaries = append(summaries, summaryOf(study))
	}
	return summaries, rows.Err()
}

func (s *SQLiteStore) DeleteStudy(ctx context.Context, id string) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `DELETE FROM studies WHERE id = ?`, id)
	return err
}

func (s *SQLiteStore) SaveSimulation(ctx context.Context, record model.SimulationRecord) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := EncodeSimulation(record)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO simulations (id, created_at, schema_version, codec_version, payload)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			created_at = excluded.created_at,
			schema_version = excluded.schema_version,
			codec_version = excluded.codec_version,
			payload = excluded.payload
	`, record.ID, record.Timestamp, record.SchemaVersion, record.CodecVersion, payload)
	return err
}

func (s *SQLiteStore) Simulation(ctx context.Context, id string) (model.SimulationRecord, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return model.SimulationRecord{}, false, err
	}

	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT payload FROM simulations WHERE id = ?`, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.SimulationRecord{}, false, nil
		}
		return model.SimulationRecord{}, false, err
	}

	record, err := DecodeSimulation(payload)
	if err != nil {
		return model.SimulationRecord{}, false, fmt.Errorf("decode simulation %s: %w", id, err)
	}
	return record, true, nil
}

func (s *SQLiteStore) Simulations(ctx context.Context, limit int) ([]model.SimulationRecord, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	// SQLite treats a negative LIMIT as unlimited.
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.QueryContext(ctx, `
		SELECT payload FROM simulations
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.SimulationRecord
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		record, err := DecodeSimulation(payload)
		if err != nil {
			return nil, fmt.Errorf("decode simulation listing: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS studies (
			id TEXT PRIMARY KEY,
			created_at INTEGER NOT NULL,
			schema_version INTEGER NOT NULL,
			codec_version INTEGER NOT NULL,
			payload BLOB NOT NULL
		);
		CREATE TABLE IF NOT EXISTS simulations (
			id TEXT PRIMARY KEY,
			created_at INTEGER NOT NULL,
			schema_version INTEGER NOT NULL,
			codec_version INTEGER NOT NULL,
			payload BLOB NOT NULL
		);
	`)
	return err
}
