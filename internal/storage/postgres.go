package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS completed_games (
	id                BIGSERIAL PRIMARY KEY,
	room_code         TEXT        NOT NULL,
	winner_name       TEXT        NOT NULL,
	player_names      TEXT[]      NOT NULL,
	started_at        TIMESTAMPTZ NOT NULL,
	ended_at          TIMESTAMPTZ NOT NULL,
	total_turns       INT         NOT NULL DEFAULT 0,
	cards_drawn       INT         NOT NULL DEFAULT 0,
	eights_played     INT         NOT NULL DEFAULT 0,
	direction_changes INT         NOT NULL DEFAULT 0,
	skips_issued      INT         NOT NULL DEFAULT 0,
	penalties_issued  INT         NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS completed_game_players (
	game_id         BIGINT  NOT NULL REFERENCES completed_games(id) ON DELETE CASCADE,
	seat            INT     NOT NULL,
	name            TEXT    NOT NULL,
	is_bot          BOOLEAN NOT NULL DEFAULT FALSE,
	is_winner       BOOLEAN NOT NULL DEFAULT FALSE,
	cards_played    INT     NOT NULL DEFAULT 0,
	eights_played   INT     NOT NULL DEFAULT 0,
	final_hand_size INT     NOT NULL DEFAULT 0,
	PRIMARY KEY (game_id, seat)
);`

// PostgresRecorder 将已完成对局归档到 Postgres
type PostgresRecorder struct {
	pool *pgxpool.Pool
}

// NewPostgresRecorder 连接数据库并确保表结构存在
func NewPostgresRecorder(ctx context.Context, dsn string) (*PostgresRecorder, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("创建连接池失败: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("初始化表结构失败: %w", err)
	}
	return &PostgresRecorder{pool: pool}, nil
}

// RecordCompletedGame 在一个事务中写入对局和玩家明细
func (pr *PostgresRecorder) RecordCompletedGame(ctx context.Context, rec *GameRecord) error {
	err := pgx.BeginFunc(ctx, pr.pool, func(tx pgx.Tx) error {
		var gameID int64
		err := tx.QueryRow(ctx, `
			INSERT INTO completed_games (
				room_code, winner_name, player_names, started_at, ended_at,
				total_turns, cards_drawn, eights_played, direction_changes, skips_issued, penalties_issued
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING id`,
			rec.RoomCode, rec.WinnerName, rec.PlayerNames(), rec.StartedAt, rec.EndedAt,
			rec.Stats.TotalTurns, rec.Stats.CardsDrawn, rec.Stats.EightsPlayed,
			rec.Stats.DirectionChanges, rec.Stats.SkipsIssued, rec.Stats.PenaltiesIssued,
		).Scan(&gameID)
		if err != nil {
			return err
		}

		batch := &pgx.Batch{}
		for _, p := range rec.Players {
			batch.Queue(`
				INSERT INTO completed_game_players (
					game_id, seat, name, is_bot, is_winner, cards_played, eights_played, final_hand_size
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				gameID, p.Seat, p.Name, p.IsBot, p.IsWinner, p.CardsPlayed, p.EightsPlayed, p.FinalHandSize,
			)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return fmt.Errorf("归档对局 %s 失败: %w", rec.RoomCode, err)
	}
	return nil
}

// Close 关闭连接池
func (pr *PostgresRecorder) Close() {
	pr.pool.Close()
}
