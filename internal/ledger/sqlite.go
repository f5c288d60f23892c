package ledger

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dkeye/Tracklist/internal/domain"
	"github.com/dkeye/Tracklist/internal/leaderboard"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var embeddedSchema embed.FS

// SQLite is a single-node durable Store.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens dsn (a file path or "file::memory:?cache=shared").
// One connection is kept so writers queue in Go instead of hitting SQLITE_BUSY.
func OpenSQLite(ctx context.Context, dsn string) (*SQLite, error) {
	if dsn == "" {
		dsn = "tracklist.db"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("ledger.OpenSQLite: open: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, `
		PRAGMA journal_mode = WAL;
		PRAGMA busy_timeout = 5000;
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("ledger.OpenSQLite: configure: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

func (s *SQLite) Migrate(ctx context.Context) error {
	b, err := embeddedSchema.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("ledger.SQLite.Migrate: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, strings.TrimSpace(string(b))); err != nil {
		return fmt.Errorf("ledger.SQLite.Migrate: %w", err)
	}
	return nil
}

func (s *SQLite) CastVote(ctx context.Context, room domain.RoomCode, track domain.TrackID, voter domain.VoterID) (domain.VoteOutcome, error) {
	out := domain.VoteOutcome{TrackID: track}
	now := time.Now().UnixMilli()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return out, fmt.Errorf("ledger.SQLite.CastVote: begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO track_voters(room_code, track_id, voter_id, voted_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT DO NOTHING`,
		room, track, voter, now)
	if err != nil {
		return out, fmt.Errorf("ledger.SQLite.CastVote: insert voter: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return out, fmt.Errorf("ledger.SQLite.CastVote: rows affected: %w", err)
	}

	if n == 0 {
		err = tx.QueryRowContext(ctx,
			`SELECT count FROM track_votes WHERE room_code = ? AND track_id = ?`,
			room, track).Scan(&out.Count)
		if err != nil {
			return out, fmt.Errorf("ledger.SQLite.CastVote: read count: %w", err)
		}
		return out, tx.Commit()
	}

	err = tx.QueryRowContext(ctx,
		`INSERT INTO track_votes(room_code, track_id, count, first_voted_at) VALUES (?, ?, 1, ?)
		 ON CONFLICT(room_code, track_id) DO UPDATE SET count = track_votes.count + 1
		 RETURNING count`,
		room, track, now).Scan(&out.Count)
	if err != nil {
		return out, fmt.Errorf("ledger.SQLite.CastVote: bump count: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return out, fmt.Errorf("ledger.SQLite.CastVote: commit: %w", err)
	}
	out.Recorded = true
	return out, nil
}

func (s *SQLite) VotesForRoom(ctx context.Context, room domain.RoomCode) (map[domain.TrackID]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT track_id, count FROM track_votes WHERE room_code = ?`, room)
	if err != nil {
		return nil, fmt.Errorf("ledger.SQLite.VotesForRoom: %w", err)
	}
	defer rows.Close()

	out := make(map[domain.TrackID]int)
	for rows.Next() {
		var (
			track domain.TrackID
			n     int
		)
		if err := rows.Scan(&track, &n); err != nil {
			return nil, fmt.Errorf("ledger.SQLite.VotesForRoom: scan: %w", err)
		}
		out[track] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ledger.SQLite.VotesForRoom: %w", err)
	}
	return out, nil
}

func (s *SQLite) VotedTracks(ctx context.Context, room domain.RoomCode, voter domain.VoterID) ([]domain.TrackID, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT track_id FROM track_voters WHERE room_code = ? AND voter_id = ? ORDER BY track_id`,
		room, voter)
	if err != nil {
		return nil, fmt.Errorf("ledger.SQLite.VotedTracks: %w", err)
	}
	defer rows.Close()

	out := []domain.TrackID{}
	for rows.Next() {
		var track domain.TrackID
		if err := rows.Scan(&track); err != nil {
			return nil, fmt.Errorf("ledger.SQLite.VotedTracks: scan: %w", err)
		}
		out = append(out, track)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ledger.SQLite.VotedTracks: %w", err)
	}
	return out, nil
}

// TopForRoom ranks in SQL. SQLite's default BINARY collation orders
// track ids the same way leaderboard.Compare does.
func (s *SQLite) TopForRoom(ctx context.Context, room domain.RoomCode, limit int) ([]domain.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = leaderboard.DefaultLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT track_id, count FROM track_votes
		 WHERE room_code = ? AND count > 0
		 ORDER BY count DESC, track_id ASC
		 LIMIT ?`,
		room, limit)
	if err != nil {
		return nil, fmt.Errorf("ledger.SQLite.TopForRoom: %w", err)
	}
	defer rows.Close()

	out := []domain.LeaderboardEntry{}
	for rows.Next() {
		var e domain.LeaderboardEntry
		if err := rows.Scan(&e.TrackID, &e.Count); err != nil {
			return nil, fmt.Errorf("ledger.SQLite.TopForRoom: scan: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ledger.SQLite.TopForRoom: %w", err)
	}
	return out, nil
}

func (s *SQLite) CreateRoom(ctx context.Context, room domain.Room) error {
	if room.CreatedAt.IsZero() {
		room.CreatedAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO rooms(room_code, host_id, created_at) VALUES (?, ?, ?) ON CONFLICT DO NOTHING`,
		room.Code, room.HostID, room.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("ledger.SQLite.CreateRoom: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("ledger.SQLite.CreateRoom: %w", err)
	}
	if n == 0 {
		return domain.ErrRoomExists
	}
	return nil
}

func (s *SQLite) GetRoom(ctx context.Context, code domain.RoomCode) (domain.Room, error) {
	var (
		r       domain.Room
		created int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT room_code, host_id, created_at FROM rooms WHERE room_code = ?`, code).
		Scan(&r.Code, &r.HostID, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Room{}, domain.ErrRoomNotFound
	}
	if err != nil {
		return domain.Room{}, fmt.Errorf("ledger.SQLite.GetRoom: %w", err)
	}
	r.CreatedAt = time.UnixMilli(created).UTC()
	return r, nil
}
