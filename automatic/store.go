package automatic

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS games (
	run         TEXT NOT NULL,
	id          INTEGER NOT NULL,
	random_plies INTEGER NOT NULL,
	plies       INTEGER NOT NULL,
	turn        INTEGER NOT NULL,
	result      TEXT NOT NULL,
	fingerprint TEXT NOT NULL,
	moves       TEXT NOT NULL,
	final       TEXT NOT NULL,
	PRIMARY KEY (run, id)
);`

// ResultStore keeps self-play results in a sqlite file.
type ResultStore struct {
	db  *sql.DB
	run string
}

// OpenResultStore opens (creating if needed) the database at path. Games are
// recorded under run, so several runs can share one file.
func OpenResultStore(path, run string) (*ResultStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// sqlite allows a single writer.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema in %s: %w", path, err)
	}
	log.Debug().Str("path", path).Str("run", run).Msg("opened-result-store")
	return &ResultStore{db: db, run: run}, nil
}

// Record inserts one game.
func (s *ResultStore) Record(ctx context.Context, rec *GameRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO games (run, id, random_plies, plies, turn, result, fingerprint, moves, final)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.run, rec.ID, rec.RandomPlies, rec.Plies, rec.Turn, rec.Result,
		fmt.Sprintf("%016x", rec.Fingerprint), strings.Join(rec.Moves, " "), rec.Final)
	return err
}

// Tally counts this run's games by result.
func (s *ResultStore) Tally(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT result, COUNT(*) FROM games WHERE run = ? GROUP BY result`, s.run)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tally := map[string]int{}
	for rows.Next() {
		var result string
		var n int
		if err := rows.Scan(&result, &n); err != nil {
			return nil, err
		}
		tally[result] = n
	}
	return tally, rows.Err()
}

// DistinctGames counts this run's games with different move sequences.
func (s *ResultStore) DistinctGames(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT fingerprint) FROM games WHERE run = ?`, s.run).Scan(&n)
	return n, err
}

func (s *ResultStore) Close() error {
	return s.db.Close()
}
