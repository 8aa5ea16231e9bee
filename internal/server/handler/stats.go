package handler

import (
	"cmp"
	"context"
	"strings"
	"time"

	"github.com/palemoky/crazy-eights/internal/logger"
	"github.com/palemoky/crazy-eights/internal/protocol"
	"github.com/palemoky/crazy-eights/internal/protocol/codec"
	"github.com/palemoky/crazy-eights/internal/types"
)

const (
	queryTimeout            = 3 * time.Second
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 50
)

// --- 排行榜处理 ---

// handleGetStats 获取个人统计，name 为空时查询自己的昵称
func (h *Handler) handleGetStats(client types.ClientInterface, msg *protocol.Message) {
	if h.leaderboard == nil {
		client.SendMessage(codec.NewErrorMessageWithText(protocol.ErrCodeUnknown, "排行榜未启用"))
		return
	}

	payload, err := codec.ParsePayload[protocol.GetStatsPayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}
	name := cmp.Or(strings.TrimSpace(payload.Name), client.GetName())

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	playerStats, err := h.leaderboard.GetPlayerStats(ctx, name)
	if err != nil {
		logger.LogError("获取玩家 %s 统计失败: %v", name, err)
		client.SendMessage(codec.NewErrorMessageWithText(protocol.ErrCodeUnknown, "获取统计失败"))
		return
	}

	if playerStats == nil {
		// 没有统计数据，返回空数据
		client.SendMessage(codec.MustNewMessage(protocol.MsgStatsResult, protocol.StatsResultPayload{
			Name: name,
			Rank: -1,
		}))
		return
	}

	// 排名失败不影响统计结果
	rank, err := h.leaderboard.GetPlayerRank(ctx, name)
	if err != nil {
		rank = -1
	}

	client.SendMessage(codec.MustNewMessage(protocol.MsgStatsResult, protocol.StatsResultPayload{
		Name:         playerStats.PlayerName,
		GamesPlayed:  playerStats.TotalGames,
		GamesWon:     playerStats.Wins,
		GamesLost:    playerStats.Losses,
		CardsPlayed:  playerStats.CardsPlayed,
		EightsPlayed: playerStats.EightsPlayed,
		WinRate:      playerStats.WinRate(),
		Score:        playerStats.Score,
		MaxWinStreak: playerStats.MaxWinStreak,
		Rank:         rank,
	}))
}

// handleGetLeaderboard 获取排行榜
func (h *Handler) handleGetLeaderboard(client types.ClientInterface, msg *protocol.Message) {
	if h.leaderboard == nil {
		client.SendMessage(codec.NewErrorMessageWithText(protocol.ErrCodeUnknown, "排行榜未启用"))
		return
	}

	limit := defaultLeaderboardLimit
	if payload, err := codec.ParsePayload[protocol.GetLeaderboardPayload](msg); err == nil {
		limit = payload.Limit
	}

	// 限制请求数量
	if limit <= 0 || limit > maxLeaderboardLimit {
		limit = defaultLeaderboardLimit
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	entries, err := h.leaderboard.GetLeaderboard(ctx, limit)
	if err != nil {
		logger.LogError("获取排行榜失败: %v", err)
		client.SendMessage(codec.NewErrorMessageWithText(protocol.ErrCodeUnknown, "获取排行榜失败"))
		return
	}

	// 转换为协议格式
	protocolEntries := make([]protocol.LeaderboardEntry, 0, len(entries))
	for _, entry := range entries {
		protocolEntries = append(protocolEntries, protocol.LeaderboardEntry{
			Rank:        entry.Rank,
			Name:        entry.PlayerName,
			Score:       entry.Score,
			GamesWon:    entry.Wins,
			GamesPlayed: entry.TotalGames,
			WinRate:     entry.WinRate,
		})
	}

	client.SendMessage(codec.MustNewMessage(protocol.MsgLeaderboardResult, protocol.LeaderboardResultPayload{
		Entries: protocolEntries,
	}))
}

// handleGetRoomList 获取可加入的房间列表和在线人数
func (h *Handler) handleGetRoomList(client types.ClientInterface) {
	client.SendMessage(codec.MustNewMessage(protocol.MsgRoomListResult, protocol.RoomListResultPayload{
		Rooms:       h.roomManager.GetRoomList(),
		OnlineCount: h.server.GetOnlineCount(),
	}))
}
