package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// Redis key
	playerStatsKey = "player:stats:"
	leaderboardKey = "leaderboard:score"

	maxStatsRetries = 100
)

// 积分规则
const (
	WinScore  = 20
	LoseScore = -5

	// 连胜加成
	StreakBonus3  = 5
	StreakBonus5  = 10
	StreakBonus10 = 20
)

// PlayerStats 玩家统计数据（按显示名聚合）
type PlayerStats struct {
	PlayerName string `json:"player_name"`

	TotalGames int `json:"total_games"`
	Wins       int `json:"wins"`
	Losses     int `json:"losses"`

	CardsPlayed  int `json:"cards_played"`
	EightsPlayed int `json:"eights_played"`

	Score         int `json:"score"`
	CurrentStreak int `json:"current_streak"` // 正数为连胜，负数为连败
	MaxWinStreak  int `json:"max_win_streak"`

	LastPlayedAt int64 `json:"last_played_at"`
	CreatedAt    int64 `json:"created_at"`
}

// WinRate 胜率（百分比）
func (s *PlayerStats) WinRate() float64 {
	if s.TotalGames == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.TotalGames) * 100
}

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	Rank       int
	PlayerName string
	Score      int
	Wins       int
	TotalGames int
	WinRate    float64
}

// Leaderboard Redis 排行榜
type Leaderboard struct {
	redis *redis.Client
}

// NewLeaderboard 创建排行榜
func NewLeaderboard(client *redis.Client) *Leaderboard {
	return &Leaderboard{redis: client}
}

// GetPlayerStats 获取玩家统计，不存在时返回 nil
func (lb *Leaderboard) GetPlayerStats(ctx context.Context, name string) (*PlayerStats, error) {
	return loadStats(ctx, lb.redis, name)
}

// getter 由 *redis.Client 和 *redis.Tx 实现
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// loadStats 供普通读取和 WATCH 事务内读取共用
func loadStats(ctx context.Context, c getter, name string) (*PlayerStats, error) {
	data, err := c.Get(ctx, playerStatsKey+name).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var stats PlayerStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("反序列化玩家统计失败: %w", err)
	}
	return &stats, nil
}

// RecordCompletedGame 更新每个真人玩家的统计，机器人不参与排行
func (lb *Leaderboard) RecordCompletedGame(ctx context.Context, rec *GameRecord) error {
	for _, p := range rec.Players {
		if p.IsBot {
			continue
		}
		if err := lb.recordPlayer(ctx, p, rec.EndedAt); err != nil {
			return fmt.Errorf("更新玩家 %s 统计失败: %w", p.Name, err)
		}
	}
	return nil
}

// recordPlayer 在 WATCH 下读改写，并发更新同一玩家时冲突方重试
func (lb *Leaderboard) recordPlayer(ctx context.Context, p PlayerRecord, playedAt time.Time) error {
	key := playerStatsKey + p.Name
	update := func(tx *redis.Tx) error {
		stats, err := loadStats(ctx, tx, p.Name)
		if err != nil {
			return err
		}
		if stats == nil {
			stats = &PlayerStats{PlayerName: p.Name, CreatedAt: playedAt.Unix()}
		}
		applyResult(stats, p, playedAt)

		data, err := json.Marshal(stats)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			pipe.ZAdd(ctx, leaderboardKey, redis.Z{Score: float64(stats.Score), Member: stats.PlayerName})
			return nil
		})
		return err
	}

	for range maxStatsRetries {
		err := lb.redis.Watch(ctx, update, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("玩家 %s 统计更新冲突次数过多", p.Name)
}

// applyResult 把一局结果计入统计
func applyResult(stats *PlayerStats, p PlayerRecord, playedAt time.Time) {
	stats.TotalGames++
	stats.CardsPlayed += p.CardsPlayed
	stats.EightsPlayed += p.EightsPlayed
	stats.LastPlayedAt = playedAt.Unix()

	scoreChange := LoseScore
	if p.IsWinner {
		stats.Wins++
		stats.CurrentStreak = max(1, stats.CurrentStreak+1)
		scoreChange = WinScore + streakBonus(stats.CurrentStreak)
	} else {
		stats.Losses++
		stats.CurrentStreak = min(-1, stats.CurrentStreak-1)
	}
	stats.MaxWinStreak = max(stats.MaxWinStreak, stats.CurrentStreak)
	stats.Score = max(0, stats.Score+scoreChange)
}

// streakBonus 计算连胜加成
func streakBonus(streak int) int {
	switch {
	case streak >= 10:
		return StreakBonus10
	case streak >= 5:
		return StreakBonus5
	case streak >= 3:
		return StreakBonus3
	default:
		return 0
	}
}

// GetLeaderboard 获取积分前 limit 名
func (lb *Leaderboard) GetLeaderboard(ctx context.Context, limit int) ([]*LeaderboardEntry, error) {
	if limit <= 0 {
		return nil, nil
	}

	results, err := lb.redis.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]*LeaderboardEntry, 0, len(results))
	for i, result := range results {
		name, _ := result.Member.(string)
		stats, err := lb.GetPlayerStats(ctx, name)
		if err != nil || stats == nil {
			continue
		}

		entries = append(entries, &LeaderboardEntry{
			Rank:       i + 1,
			PlayerName: name,
			Score:      int(result.Score),
			Wins:       stats.Wins,
			TotalGames: stats.TotalGames,
			WinRate:    stats.WinRate(),
		})
	}
	return entries, nil
}

// GetPlayerRank 获取玩家排名，未上榜返回 -1
func (lb *Leaderboard) GetPlayerRank(ctx context.Context, name string) (int64, error) {
	rank, err := lb.redis.ZRevRank(ctx, leaderboardKey, name).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return -1, nil
		}
		return -1, err
	}
	return rank + 1, nil
}
