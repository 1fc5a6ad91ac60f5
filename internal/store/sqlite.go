package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/okatev/whiteboard/internal/domain"
)

type SQLiteStore struct {
	db *sql.DB
}

func Open(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	s := &SQLiteStore{db: db}
	if err := s.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Info().Str("module", "store").Str("path", path).Msg("sqlite store ready")
	return s, nil
}

func (s *SQLiteStore) init() error {
	_, err := s.db.Exec(
		`CREATE TABLE IF NOT EXISTS sessions (
		id text not null primary key,
		canvas blob,
		participants text not null default '[]',
		updated_at timestamp
		)`,
	)
	if err != nil {
		return fmt.Errorf("create sessions table: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Save(ctx context.Context, id domain.SessionID, state []byte, participants []string) error {
	if participants == nil {
		participants = []string{}
	}
	roster, err := json.Marshal(participants)
	if err != nil {
		return fmt.Errorf("encode roster: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, canvas, participants, updated_at) VALUES ($1, $2, $3, $4)
		ON CONFLICT(id) DO UPDATE SET canvas = excluded.canvas, participants = excluded.participants, updated_at = excluded.updated_at`,
		string(id), state, string(roster), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save session %s: %w", id, err)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context, id domain.SessionID) (Snapshot, bool, error) {
	var state []byte
	var roster string
	err := s.db.QueryRowContext(ctx,
		`SELECT canvas, participants FROM sessions WHERE id = $1`,
		string(id),
	).Scan(&state, &roster)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("load session %s: %w", id, err)
	}
	var participants []string
	if err := json.Unmarshal([]byte(roster), &participants); err != nil {
		return Snapshot{}, false, fmt.Errorf("decode roster for %s: %w", id, err)
	}
	return Snapshot{State: state, Participants: participants}, true, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
