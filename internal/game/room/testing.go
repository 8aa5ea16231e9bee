//go:build !production

package room

import (
	"github.com/palemoky/crazy-eights/internal/apperrors"
	"github.com/palemoky/crazy-eights/internal/game/card"
)

// RiggedGame 测试用的牌局布置
type RiggedGame struct {
	Top     card.Card
	Deck    []card.Card // 末尾为堆顶
	Hands   []card.Hand // 按座位
	Current int
}

// rig 直接把房间布置为进行中的牌局，跳过洗牌与发牌
func (r *Room) rig(g RiggedGame) {
	r.deck = card.NewDeckFrom(g.Deck, r.rng)
	r.discard = &card.DiscardPile{}
	r.discard.Push(g.Top)
	for i, p := range r.players {
		if i < len(g.Hands) {
			p.Hand = append(card.Hand(nil), g.Hands[i]...)
		}
	}
	r.status = StatusInProgress
	r.phase = PhaseAwaitingPlayOrDraw
	r.current = g.Current
	r.direction = 1
	r.pendingPenalty = 0
	r.forcedSuit = nil
	r.version++
}

// RigForTest 把房间布置为指定牌局（仅测试使用）
func (rm *RoomManager) RigForTest(code string, g RiggedGame) error {
	r := rm.GetRoom(code)
	if r == nil {
		return apperrors.ErrRoomNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(g.Hands) != len(r.players) {
		return apperrors.ErrNotEnoughPlayers
	}
	r.rig(g)
	return nil
}

// AddRoomForTest 添加房间用于测试
func (rm *RoomManager) AddRoomForTest(r *Room) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.rooms[r.Code] = r
}
