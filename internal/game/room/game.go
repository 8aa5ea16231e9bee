package room

import (
	"context"
	"time"

	"github.com/palemoky/crazy-eights/internal/apperrors"
	"github.com/palemoky/crazy-eights/internal/game/card"
	"github.com/palemoky/crazy-eights/internal/logger"
	"github.com/palemoky/crazy-eights/internal/protocol"
	"github.com/palemoky/crazy-eights/internal/protocol/codec"
	"github.com/palemoky/crazy-eights/internal/storage"
	"github.com/palemoky/crazy-eights/internal/types"
)

// 对局操作。每个操作在房间锁内完成校验、变更和通知，
// 因此同一房间的操作严格串行，通知顺序与提交顺序一致。

// StartGame 房主开始游戏
func (rm *RoomManager) StartGame(client types.ClientInterface, code string) error {
	return rm.withSeat(client, code, func(r *Room, seat int) error {
		if r.status == StatusWaiting && !r.players[seat].IsHost {
			return apperrors.ErrNotHost
		}
		if err := r.start(); err != nil {
			return err
		}
		logger.Room(r.Code).Info().Int("players", len(r.players)).Msg("🎮 游戏开始")
		rm.announceStart(r)
		return nil
	})
}

// PlayCard 出牌
func (rm *RoomManager) PlayCard(client types.ClientInterface, code string, cardIndex int, turn int64) error {
	return rm.withSeat(client, code, func(r *Room, seat int) error {
		c, err := r.applyPlay(seat, cardIndex, turn)
		if err != nil {
			return err
		}
		logger.LogDebug("🃏 房间 %s 玩家 %s 打出 %s", r.Code, r.players[seat].Name, c)
		rm.afterCommit(r)
		return nil
	})
}

// ChooseSuit 打出 8 后指定花色
func (rm *RoomManager) ChooseSuit(client types.ClientInterface, code, suitName string) error {
	suit, err := card.ParseSuit(suitName)
	if err != nil {
		return apperrors.ErrInvalidSuit
	}
	return rm.withSeat(client, code, func(r *Room, seat int) error {
		if err := r.applySuitChoice(seat, suit); err != nil {
			return err
		}
		rm.afterCommit(r)
		return nil
	})
}

// DrawCard 摸牌
func (rm *RoomManager) DrawCard(client types.ClientInterface, code string, turn int64) error {
	return rm.withSeat(client, code, func(r *Room, seat int) error {
		n, err := r.applyDraw(seat, turn)
		if err != nil {
			return err
		}
		logger.LogDebug("📥 房间 %s 玩家 %s 摸了 %d 张", r.Code, r.players[seat].Name, n)
		rm.afterCommit(r)
		return nil
	})
}

// withSeat 定位房间和座位，在房间锁内执行 fn
// code 为空时使用客户端当前所在房间
func (rm *RoomManager) withSeat(client types.ClientInterface, code string, fn func(r *Room, seat int) error) error {
	if code == "" {
		code = client.GetRoom()
	}
	if code == "" {
		return apperrors.ErrNotInRoom
	}
	r := rm.GetRoom(code)
	if r == nil {
		return apperrors.ErrRoomNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	seat := r.seatOf(client.GetID())
	if seat < 0 {
		return apperrors.ErrNotInRoom
	}
	return fn(r, seat)
}

// announceStart 通知开始并推送初始状态（调用方持有 r.mu）
func (rm *RoomManager) announceStart(r *Room) {
	r.broadcast(codec.MustNewMessage(protocol.MsgGameStarted, protocol.GameStartedPayload{RoomCode: r.Code}))
	rm.persist(r)
	rm.afterCommit(r)
}

// afterCommit 状态变更提交后：推送快照，结束或调度机器人（调用方持有 r.mu）
func (rm *RoomManager) afterCommit(r *Room) {
	rm.broadcastState(r)
	if r.status == StatusCompleted {
		rm.finishGame(r)
		return
	}
	rm.scheduleBot(r)
}

// broadcastState 向每个真人玩家推送各自视角的快照
func (rm *RoomManager) broadcastState(r *Room) {
	for seat, p := range r.players {
		if c := p.Client(); c != nil {
			c.SendMessage(codec.MustNewMessage(protocol.MsgGameState, r.stateFor(seat)))
		}
	}
}

// finishGame 广播结果、注销房间并异步记录对局
func (rm *RoomManager) finishGame(r *Room) {
	winner := r.players[r.winner]
	r.broadcast(codec.MustNewMessage(protocol.MsgGameOver, protocol.GameOverPayload{
		RoomCode:   r.Code,
		WinnerName: winner.Name,
		WinnerSeat: r.winner,
	}))
	r.detachClients()
	rm.removeRoom(r.Code)

	rec := r.toRecord()
	logger.Room(r.Code).Info().
		Str("winner", winner.Name).
		Int("turns", rec.Stats.TotalTurns).
		Dur("duration", rec.Duration()).
		Msg("🏆 游戏结束")

	rm.record(rec)
}

// record 尽力而为地持久化对局，失败只记录日志
func (rm *RoomManager) record(rec *storage.GameRecord) {
	if rm.recorder == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), rm.opts.StoreTimeout)
		defer cancel()
		if err := rm.recorder.RecordCompletedGame(ctx, rec); err != nil {
			logger.LogError("❌ 记录对局 %s 失败: %v", rec.RoomCode, err)
		}
	}()
}

// scheduleBot 当前座位是机器人时，延迟后代为行动（调用方持有 r.mu）
func (rm *RoomManager) scheduleBot(r *Room) {
	if r.status != StatusInProgress || !r.players[r.current].IsBot() {
		return
	}
	version := r.version
	time.AfterFunc(rm.opts.BotDelay, func() { rm.runBot(r, version) })
}

// runBot 仅当状态版本未变化时执行，避免与其他操作重复行动
func (rm *RoomManager) runBot(r *Room, version int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	defer func() {
		if p := recover(); p != nil {
			logger.LogPanic(p)
		}
	}()

	if r.status != StatusInProgress || r.version != version {
		return
	}
	if err := r.botMove(); err != nil {
		logger.LogWarn("🤖 房间 %s 机器人行动失败: %v", r.Code, err)
		return
	}
	rm.afterCommit(r)
}
