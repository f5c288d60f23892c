package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dkeye/Tracklist/internal/domain"
	"github.com/dkeye/Tracklist/internal/leaderboard"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

type TrackVote struct {
	bun.BaseModel `bun:"table:track_votes,alias:tv"`

	RoomCode     string    `bun:"room_code,pk"`
	TrackID      string    `bun:"track_id,pk"`
	Count        int       `bun:"count,notnull,default:0"`
	FirstVotedAt time.Time `bun:"first_voted_at,notnull,default:current_timestamp"`
}

type TrackVoter struct {
	bun.BaseModel `bun:"table:track_voters,alias:tvr"`

	RoomCode string    `bun:"room_code,pk"`
	TrackID  string    `bun:"track_id,pk"`
	VoterID  string    `bun:"voter_id,pk"`
	VotedAt  time.Time `bun:"voted_at,notnull,default:current_timestamp"`
}

type RoomRecord struct {
	bun.BaseModel `bun:"table:rooms,alias:r"`

	Code      string    `bun:"room_code,pk"`
	HostID    string    `bun:"host_id,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// Postgres is the shared Store for multi-process deployments.
type Postgres struct {
	db *bun.DB
}

func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	if err := sqldb.PingContext(ctx); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("ledger.OpenPostgres: ping: %w", err)
	}
	return NewPostgres(bun.NewDB(sqldb, pgdialect.New())), nil
}

func NewPostgres(db *bun.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Close() error { return p.db.Close() }

func (p *Postgres) Migrate(ctx context.Context) error {
	return p.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, model := range []any{(*RoomRecord)(nil), (*TrackVote)(nil), (*TrackVoter)(nil)} {
			if _, err := tx.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
				return fmt.Errorf("ledger.Postgres.Migrate: %w", err)
			}
		}
		for _, q := range []string{
			`CREATE INDEX IF NOT EXISTS idx_track_voters_voter ON track_voters (room_code, voter_id)`,
			`CREATE INDEX IF NOT EXISTS idx_track_votes_rank ON track_votes (room_code, count DESC, track_id COLLATE "C")`,
		} {
			if _, err := tx.NewRaw(q).Exec(ctx); err != nil {
				return fmt.Errorf("ledger.Postgres.Migrate: %w", err)
			}
		}
		return nil
	})
}

func (p *Postgres) CastVote(ctx context.Context, room domain.RoomCode, track domain.TrackID, voter domain.VoterID) (domain.VoteOutcome, error) {
	out := domain.VoteOutcome{TrackID: track}
	now := time.Now().UTC()

	err := p.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewInsert().
			Model(&TrackVoter{RoomCode: string(room), TrackID: string(track), VoterID: string(voter), VotedAt: now}).
			On("CONFLICT DO NOTHING").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("insert voter: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if n == 0 {
			return tx.NewSelect().
				Model((*TrackVote)(nil)).
				Column("count").
				Where("room_code = ? AND track_id = ?", string(room), string(track)).
				Scan(ctx, &out.Count)
		}
		out.Recorded = true
		return tx.NewRaw(`
			INSERT INTO track_votes (room_code, track_id, count, first_voted_at)
			VALUES (?, ?, 1, ?)
			ON CONFLICT (room_code, track_id) DO UPDATE SET count = track_votes.count + 1
			RETURNING count`,
			string(room), string(track), now).Scan(ctx, &out.Count)
	})
	if err != nil {
		return domain.VoteOutcome{TrackID: track}, fmt.Errorf("ledger.Postgres.CastVote: %w", err)
	}
	return out, nil
}

func (p *Postgres) VotesForRoom(ctx context.Context, room domain.RoomCode) (map[domain.TrackID]int, error) {
	var rows []TrackVote
	err := p.db.NewSelect().
		Model(&rows).
		Column("track_id", "count").
		Where("room_code = ?", string(room)).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("ledger.Postgres.VotesForRoom: %w", err)
	}
	out := make(map[domain.TrackID]int, len(rows))
	for _, r := range rows {
		out[domain.TrackID(r.TrackID)] = r.Count
	}
	return out, nil
}

func (p *Postgres) VotedTracks(ctx context.Context, room domain.RoomCode, voter domain.VoterID) ([]domain.TrackID, error) {
	var ids []string
	err := p.db.NewSelect().
		Model((*TrackVoter)(nil)).
		Column("track_id").
		Where("room_code = ? AND voter_id = ?", string(room), string(voter)).
		OrderExpr(`track_id COLLATE "C" ASC`).
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("ledger.Postgres.VotedTracks: %w", err)
	}
	out := make([]domain.TrackID, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.TrackID(id))
	}
	return out, nil
}

// TopForRoom uses the "C" collation so ties match leaderboard.Compare.
func (p *Postgres) TopForRoom(ctx context.Context, room domain.RoomCode, limit int) ([]domain.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = leaderboard.DefaultLimit
	}
	var rows []TrackVote
	err := p.db.NewSelect().
		Model(&rows).
		Column("track_id", "count").
		Where("room_code = ?", string(room)).
		Where("count > 0").
		OrderExpr(`count DESC, track_id COLLATE "C" ASC`).
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("ledger.Postgres.TopForRoom: %w", err)
	}
	out := make([]domain.LeaderboardEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.LeaderboardEntry{TrackID: domain.TrackID(r.TrackID), Count: r.Count})
	}
	return out, nil
}

func (p *Postgres) CreateRoom(ctx context.Context, room domain.Room) error {
	if room.CreatedAt.IsZero() {
		room.CreatedAt = time.Now().UTC()
	}
	res, err := p.db.NewInsert().
		Model(&RoomRecord{Code: string(room.Code), HostID: string(room.HostID), CreatedAt: room.CreatedAt}).
		On("CONFLICT DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("ledger.Postgres.CreateRoom: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("ledger.Postgres.CreateRoom: %w", err)
	}
	if n == 0 {
		return domain.ErrRoomExists
	}
	return nil
}

func (p *Postgres) GetRoom(ctx context.Context, code domain.RoomCode) (domain.Room, error) {
	var rec RoomRecord
	err := p.db.NewSelect().Model(&rec).Where("room_code = ?", string(code)).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Room{}, domain.ErrRoomNotFound
	}
	if err != nil {
		return domain.Room{}, fmt.Errorf("ledger.Postgres.GetRoom: %w", err)
	}
	return domain.Room{Code: domain.RoomCode(rec.Code), HostID: domain.VoterID(rec.HostID), CreatedAt: rec.CreatedAt.UTC()}, nil
}
