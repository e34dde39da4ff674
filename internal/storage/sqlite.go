// Package storage provides the optional SQLite archive of finished games.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
//
// The archive is write-mostly history. Live relay state is never restored
// from it.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/chess-relay/internal/multiplayer"
)

// Store manages the SQLite database connection for the game archive.
type Store struct {
	db *sql.DB
}

// GameRecord is one archived game.
type GameRecord struct {
	ID            int64
	GameID        string
	White         string
	Black         string
	Result        string // "1-0", "0-1", "1/2-1/2"
	EndReason     string // "resignation", "Checkmate", "Stalemate", ...
	FinalPosition string
	Moves         int
	Duration      int // Duration in seconds
	CreatedAt     time.Time
}

// Winner returns the winning identity, or "" for a draw.
func (g GameRecord) Winner() string {
	switch g.Result {
	case "1-0":
		return g.White
	case "0-1":
		return g.Black
	default:
		return ""
	}
}

// PlayerStats aggregates one identity's archived results.
type PlayerStats struct {
	Player     string
	Games      int
	Wins       int
	Losses     int
	Draws      int
	LastPlayed time.Time
}

const gameColumns = `id, game_id, white, black, result, end_reason,
	final_position, moves, duration_secs, created_at`

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	// Games are archived from concurrent goroutines; SQLite allows one writer.
	db.SetMaxOpenConns(1)

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS games (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			game_id TEXT NOT NULL UNIQUE,
			white TEXT NOT NULL,
			black TEXT NOT NULL,
			result TEXT NOT NULL,
			end_reason TEXT NOT NULL,
			final_position TEXT NOT NULL,
			moves INTEGER NOT NULL DEFAULT 0,
			duration_secs INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_games_white ON games(white);
		CREATE INDEX IF NOT EXISTS idx_games_black ON games(black);
		CREATE INDEX IF NOT EXISTS idx_games_created ON games(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveGame archives a finished game.
// Returns the ID of the inserted record.
func (s *Store) SaveGame(game GameRecord) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO games
		 (game_id, white, black, result, end_reason, final_position, moves, duration_secs)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		game.GameID,
		game.White,
		game.Black,
		game.Result,
		game.EndReason,
		game.FinalPosition,
		game.Moves,
		game.Duration,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save game: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// GameByID retrieves an archived game by its game ID.
// Returns nil, nil if no such game was archived.
func (s *Store) GameByID(gameID string) (*GameRecord, error) {
	row := s.db.QueryRow(
		`SELECT `+gameColumns+` FROM games WHERE game_id = ?`,
		gameID,
	)

	game, err := scanGame(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query game: %w", err)
	}
	return &game, nil
}

// RecentGames retrieves the most recent archived games.
func (s *Store) RecentGames(limit int) ([]GameRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT `+gameColumns+`
		 FROM games
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query games: %w", err)
	}
	return collectGames(rows)
}

// PlayerHistory retrieves the games a player took part in, newest first.
func (s *Store) PlayerHistory(player string, limit int) ([]GameRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT `+gameColumns+`
		 FROM games
		 WHERE white = ? OR black = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		player, player, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query player games: %w", err)
	}
	return collectGames(rows)
}

// PlayerStats aggregates a player's archived results.
func (s *Store) PlayerStats(player string) (*PlayerStats, error) {
	stats := &PlayerStats{Player: player}

	var lastPlayed any
	err := s.db.QueryRow(
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN (white = ? AND result = '1-0') OR (black = ? AND result = '0-1') THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN (white = ? AND result = '0-1') OR (black = ? AND result = '1-0') THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN result = '1/2-1/2' THEN 1 ELSE 0 END), 0),
		        MAX(created_at)
		 FROM games WHERE white = ? OR black = ?`,
		player, player, player, player, player, player,
	).Scan(&stats.Games, &stats.Wins, &stats.Losses, &stats.Draws, &lastPlayed)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get player stats: %w", err)
	}
	stats.LastPlayed = parseTime(lastPlayed)

	return stats, nil
}

// SaveGameResult implements multiplayer.GameResultSaver.
// This adapter allows the coordinator to archive games without direct storage dependency.
func (s *Store) SaveGameResult(data multiplayer.GameResultData) error {
	_, err := s.SaveGame(GameRecord{
		GameID:        data.GameID,
		White:         data.White,
		Black:         data.Black,
		Result:        data.Result,
		EndReason:     data.EndReason,
		FinalPosition: data.FinalPosition,
		Moves:         data.Moves,
		Duration:      data.DurationSecs,
	})
	return err
}

// Ensure Store implements GameResultSaver
var _ multiplayer.GameResultSaver = (*Store)(nil)

type scanner interface {
	Scan(dest ...any) error
}

func scanGame(row scanner) (GameRecord, error) {
	var g GameRecord
	var createdAt any
	err := row.Scan(
		&g.ID,
		&g.GameID,
		&g.White,
		&g.Black,
		&g.Result,
		&g.EndReason,
		&g.FinalPosition,
		&g.Moves,
		&g.Duration,
		&createdAt,
	)
	if err != nil {
		return g, err
	}
	g.CreatedAt = parseTime(createdAt)
	return g, nil
}

func collectGames(rows *sql.Rows) ([]GameRecord, error) {
	defer rows.Close()

	var games []GameRecord
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		games = append(games, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return games, nil
}

// parseTime handles both time.Time and string datetimes from the driver.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
