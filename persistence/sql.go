// persistence/sql.go
package persistence

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/wfunc/rpsls/models"
)

// SQLStore is the database/sql leaderboard store. It runs on sqlite for a
// single LAN host (the default) or postgres when one is shared.
type SQLStore struct {
	db     *sql.DB
	driver string
}

// NewSQLiteStore opens (and migrates) a local sqlite leaderboard file.
func NewSQLiteStore(path string) (*SQLStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// WAL keeps reads from blocking the game-over write path.
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000;"); err != nil {
		db.Close()
		return nil, err
	}

	s := &SQLStore{db: db, driver: "sqlite"}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewPostgresStore connects to a shared postgres leaderboard.
func NewPostgresStore(host string, port int, user, password, dbname string) (*SQLStore, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	s := &SQLStore{db: db, driver: "postgres"}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) migrate() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS leaderboard (
			username TEXT PRIMARY KEY,
			wins INTEGER NOT NULL DEFAULT 0,
			losses INTEGER NOT NULL DEFAULT 0,
			draws INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS match_records (
			room_id TEXT NOT NULL,
			winner TEXT NOT NULL,
			best_of INTEGER NOT NULL,
			rounds_played INTEGER NOT NULL,
			participants TEXT NOT NULL,
			finished_at TIMESTAMP NOT NULL
		);`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// placeholder renders the driver's positional parameter syntax.
func (s *SQLStore) placeholder(n int) string {
	if s.driver == "postgres" {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

func (s *SQLStore) RecordMatch(result models.MatchResult) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	upsert := fmt.Sprintf(`INSERT INTO leaderboard (username, wins, losses, draws)
		VALUES (%s, %s, %s, %s)
		ON CONFLICT (username) DO UPDATE SET
			wins = leaderboard.wins + excluded.wins,
			losses = leaderboard.losses + excluded.losses,
			draws = leaderboard.draws + excluded.draws`,
		s.placeholder(1), s.placeholder(2), s.placeholder(3), s.placeholder(4))

	for _, p := range result.Participants {
		if _, err := tx.Exec(upsert, p.Username, p.Wins, p.Losses, p.Draws); err != nil {
			return err
		}
	}

	participants, err := json.Marshal(result.Participants)
	if err != nil {
		return err
	}
	insert := fmt.Sprintf(`INSERT INTO match_records
		(room_id, winner, best_of, rounds_played, participants, finished_at)
		VALUES (%s, %s, %s, %s, %s, %s)`,
		s.placeholder(1), s.placeholder(2), s.placeholder(3),
		s.placeholder(4), s.placeholder(5), s.placeholder(6))
	if _, err := tx.Exec(insert, result.RoomID, result.Winner, result.BestOf,
		result.RoundsPlayed, string(participants), result.FinishedAt); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SQLStore) Leaderboard(limit int) ([]models.LeaderboardEntry, error) {
	query := fmt.Sprintf(`SELECT username, wins, losses, draws
		FROM leaderboard
		ORDER BY wins DESC, losses ASC, username ASC
		LIMIT %s`, s.placeholder(1))

	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.LeaderboardEntry
	for rows.Next() {
		var e models.LeaderboardEntry
		if err := rows.Scan(&e.Username, &e.Wins, &e.Losses, &e.Draws); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *SQLStore) PlayerRecord(username string) (models.LeaderboardEntry, error) {
	query := fmt.Sprintf(`SELECT username, wins, losses, draws
		FROM leaderboard WHERE username = %s`, s.placeholder(1))

	var e models.LeaderboardEntry
	err := s.db.QueryRow(query, username).Scan(&e.Username, &e.Wins, &e.Losses, &e.Draws)
	if err == sql.ErrNoRows {
		return e, ErrRecordNotFound
	}
	return e, err
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
