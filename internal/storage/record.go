package storage

import (
	"context"
	"errors"
	"time"
)

// GameStats 一局游戏的统计数据
type GameStats struct {
	TotalTurns       int `json:"total_turns"`
	CardsDrawn       int `json:"cards_drawn"`
	EightsPlayed     int `json:"eights_played"`
	DirectionChanges int `json:"direction_changes"`
	SkipsIssued      int `json:"skips_issued"`
	PenaltiesIssued  int `json:"penalties_issued"`
}

// PlayerRecord 单个玩家在一局中的表现
type PlayerRecord struct {
	Name          string `json:"name"`
	Seat          int    `json:"seat"`
	IsBot         bool   `json:"is_bot"`
	IsWinner      bool   `json:"is_winner"`
	CardsPlayed   int    `json:"cards_played"`
	EightsPlayed  int    `json:"eights_played"`
	FinalHandSize int    `json:"final_hand_size"`
}

// GameRecord 已完成对局的记录
type GameRecord struct {
	RoomCode   string         `json:"room_code"`
	WinnerName string         `json:"winner_name"`
	Players    []PlayerRecord `json:"players"`
	Stats      GameStats      `json:"stats"`
	StartedAt  time.Time      `json:"started_at"`
	EndedAt    time.Time      `json:"ended_at"`
}

// PlayerNames 返回按座位排列的玩家名
func (g *GameRecord) PlayerNames() []string {
	names := make([]string, len(g.Players))
	for i, p := range g.Players {
		names[i] = p.Name
	}
	return names
}

// Duration 对局时长
func (g *GameRecord) Duration() time.Duration {
	return g.EndedAt.Sub(g.StartedAt)
}

// Recorder 对局记录的持久化接口
type Recorder interface {
	RecordCompletedGame(ctx context.Context, rec *GameRecord) error
}

// MultiRecorder 将记录分发给多个后端，单个后端失败不影响其他后端
type MultiRecorder []Recorder

// RecordCompletedGame 依次写入所有后端，返回合并后的错误
func (m MultiRecorder) RecordCompletedGame(ctx context.Context, rec *GameRecord) error {
	var errs []error
	for _, r := range m {
		if r == nil {
			continue
		}
		if err := r.RecordCompletedGame(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
