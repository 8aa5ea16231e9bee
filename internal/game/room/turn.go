package room

import (
	"time"

	"github.com/palemoky/crazy-eights/internal/apperrors"
	"github.com/palemoky/crazy-eights/internal/game/card"
	"github.com/palemoky/crazy-eights/internal/game/rule"
)

// 回合控制。所有方法要求调用方持有 r.mu 写锁；
// 任何校验失败都直接返回错误，房间状态保持不变。

// checkTurn 校验对局状态、座位和状态版本
// turn 为客户端看到的版本号，0 表示不校验
func (r *Room) checkTurn(seat int, turn int64) error {
	switch r.status {
	case StatusWaiting:
		return apperrors.ErrGameNotStart
	case StatusCompleted, StatusAbandoned:
		return apperrors.ErrGameOver
	}
	if seat != r.current {
		return apperrors.ErrNotYourTurn
	}
	if turn != 0 && turn != r.version {
		return apperrors.ErrStaleIntent
	}
	return nil
}

// applyPlay 打出手牌中第 cardIndex 张牌
func (r *Room) applyPlay(seat, cardIndex int, turn int64) (card.Card, error) {
	if err := r.checkTurn(seat, turn); err != nil {
		return card.Card{}, err
	}
	if r.phase == PhaseAwaitingSuitChoice {
		return card.Card{}, apperrors.ErrSuitPending
	}

	p := r.players[seat]
	c, err := p.Hand.At(cardIndex)
	if err != nil {
		return card.Card{}, apperrors.ErrInvalidCard
	}
	if !rule.IsLegalPlay(r.table(), c) {
		return card.Card{}, apperrors.ErrIllegalMove
	}

	p.Hand = p.Hand.RemoveAt(cardIndex)
	r.discard.Push(c)
	r.forcedSuit = nil
	r.version++

	eff := rule.EffectOf(c)
	r.pendingPenalty += eff.DrawPenaltyDelta
	if eff.ReverseDirection {
		r.direction = -r.direction
	}
	r.countPlay(p, eff)

	if rule.IsWin(p.Hand) {
		r.finish(seat)
		return c, nil
	}
	if eff.RequiresSuitChoice {
		// 等待同一玩家指定花色，不推进回合
		r.phase = PhaseAwaitingSuitChoice
		return c, nil
	}

	steps := 1
	if eff.Skip {
		steps = 2
	}
	r.advance(steps)
	return c, nil
}

// applySuitChoice 打出 8 后指定花色，然后推进一步
func (r *Room) applySuitChoice(seat int, suit card.Suit) error {
	if err := r.checkTurn(seat, 0); err != nil {
		return err
	}
	if r.phase != PhaseAwaitingSuitChoice {
		return apperrors.ErrNoSuitPending
	}
	if !suit.Valid() {
		return apperrors.ErrInvalidSuit
	}

	r.forcedSuit = &suit
	r.phase = PhaseAwaitingPlayOrDraw
	r.version++
	r.advance(1)
	return nil
}

// applyDraw 摸牌：有罚摸时摸罚摸张数并清零，否则摸一张；之后总是推进一步
// 牌堆和弃牌堆都摸不出牌时，能摸几张算几张，回合照常推进
func (r *Room) applyDraw(seat int, turn int64) (int, error) {
	if err := r.checkTurn(seat, turn); err != nil {
		return 0, err
	}
	if r.phase == PhaseAwaitingSuitChoice {
		return 0, apperrors.ErrSuitPending
	}

	want := 1
	if r.pendingPenalty > 0 {
		want = r.pendingPenalty
	}

	p := r.players[seat]
	drawn := 0
	for drawn < want {
		if r.deck.IsEmpty() {
			r.deck.RecycleFromDiscard(r.discard)
		}
		c, err := r.deck.Draw()
		if err != nil {
			break
		}
		p.Hand = append(p.Hand, c)
		drawn++
	}

	r.pendingPenalty = 0
	r.stats.CardsDrawn += drawn
	r.version++
	r.advance(1)
	return drawn, nil
}

// advance 按当前方向推进 steps 个座位
func (r *Room) advance(steps int) {
	r.current = rule.NextIndex(r.current, r.direction, steps, len(r.players))
	r.phase = PhaseAwaitingPlayOrDraw
	r.stats.TotalTurns++
}

// finish 玩家出完手牌，对局结束
func (r *Room) finish(seat int) {
	r.status = StatusCompleted
	r.phase = PhaseGameOver
	r.winner = seat
	r.endedAt = time.Now()
	r.stats.TotalTurns++
}

func (r *Room) countPlay(p *Player, eff rule.Effect) {
	p.cardsPlayed++
	switch {
	case eff.RequiresSuitChoice:
		p.eightsPlayed++
		r.stats.EightsPlayed++
	case eff.DrawPenaltyDelta > 0:
		r.stats.PenaltiesIssued++
	case eff.Skip:
		r.stats.SkipsIssued++
	case eff.ReverseDirection:
		r.stats.DirectionChanges++
	}
}
