package room

import (
	"time"

	"github.com/palemoky/crazy-eights/internal/apperrors"
	"github.com/palemoky/crazy-eights/internal/game/card"
	"github.com/palemoky/crazy-eights/internal/game/rule"
	"github.com/palemoky/crazy-eights/internal/logger"
	"github.com/palemoky/crazy-eights/internal/protocol"
	"github.com/palemoky/crazy-eights/internal/protocol/codec"
)

// startingHandSize 起手张数，两人局多发两张
func startingHandSize(players int) int {
	if players == 2 {
		return baseHandSize + twoPlayerBonus
	}
	return baseHandSize
}

// start 洗牌、发牌、翻出起始牌，房间进入 in_progress（调用方持有 mu）
func (r *Room) start() error {
	if r.status != StatusWaiting {
		return apperrors.ErrGameStarted
	}
	if len(r.players) < MinPlayers {
		return apperrors.ErrNotEnoughPlayers
	}

	r.deck = card.NewDeck(r.rng)
	r.discard = &card.DiscardPile{}
	for _, p := range r.players {
		p.Hand = make(card.Hand, 0, startingHandSize(len(r.players)))
	}

	if err := r.deal(); err != nil {
		return err
	}
	if err := r.seedStarter(); err != nil {
		return err
	}

	r.status = StatusInProgress
	r.phase = PhaseAwaitingPlayOrDraw
	r.current = 0
	r.direction = 1
	r.pendingPenalty = 0
	r.forcedSuit = nil
	r.startedAt = time.Now()
	r.version++
	return nil
}

// deal 轮流发牌
func (r *Room) deal() error {
	for range startingHandSize(len(r.players)) {
		for _, p := range r.players {
			c, err := r.deck.Draw()
			if err != nil {
				return err
			}
			p.Hand = append(p.Hand, c)
		}
	}
	return nil
}

// seedStarter 翻出起始牌：特殊牌放回牌堆底部重新洗牌再翻，直到翻出普通牌
func (r *Room) seedStarter() error {
	c, err := r.deck.Draw()
	if err != nil {
		return err
	}
	for rule.IsSpecial(c) && r.deckHasNeutral() {
		r.deck.PutBottom(c)
		r.deck.Shuffle()
		if c, err = r.deck.Draw(); err != nil {
			return err
		}
	}
	r.discard.Push(c)
	return nil
}

// deckHasNeutral 牌堆中是否还有普通牌（8 人局时剩余牌可能全是特殊牌）
func (r *Room) deckHasNeutral() bool {
	for _, c := range r.deck.Cards() {
		if !rule.IsSpecial(c) {
			return true
		}
	}
	return false
}

// abandon 对局中途终止
func (r *Room) abandon() {
	r.status = StatusAbandoned
	r.phase = PhaseNone
	r.endedAt = time.Now()
	r.version++
}

// cleanupLoop 定期清理超时的等待房间
func (rm *RoomManager) cleanupLoop() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-rm.done:
			return
		case now := <-ticker.C:
			rm.cleanup(now)
		}
	}
}

// cleanup 关闭创建时间超过 roomTimeout 仍未开始的房间
func (rm *RoomManager) cleanup(now time.Time) {
	for _, r := range rm.snapshotRooms() {
		r.mu.Lock()
		if r.status == StatusWaiting && now.Sub(r.CreatedAt) > rm.opts.RoomTimeout {
			r.broadcast(codec.MustNewMessage(protocol.MsgRoomClosed, protocol.RoomClosedPayload{
				RoomCode: r.Code,
				Reason:   "房间超时已关闭",
			}))
			r.detachClients()
			r.status = StatusAbandoned
			rm.removeRoom(r.Code)
			logger.LogInfo("🧹 房间 %s 超时已清理", r.Code)
		}
		r.mu.Unlock()
	}
}
