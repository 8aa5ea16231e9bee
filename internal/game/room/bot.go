package room

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/palemoky/crazy-eights/internal/game/card"
	"github.com/palemoky/crazy-eights/internal/game/rule"
)

// Strategy 机器人决策
type Strategy interface {
	// ChoosePlay 返回要打出的手牌下标，-1 表示摸牌
	ChoosePlay(hand card.Hand, t rule.Table) int
	// ChooseSuit 打出 8 之后指定的花色
	ChooseSuit(hand card.Hand) card.Suit
}

// SimpleStrategy 优先出非 8 的合法牌，其次出 8，否则摸牌；指定手中最多的花色
type SimpleStrategy struct{}

func (SimpleStrategy) ChoosePlay(hand card.Hand, t rule.Table) int {
	return rule.FindBestPlay(hand, t)
}

func (SimpleStrategy) ChooseSuit(hand card.Hand) card.Suit {
	return hand.MostHeldSuit()
}

func newBotPlayer(n int, strategy Strategy) *Player {
	return &Player{
		ID:         "bot-" + uuid.NewString(),
		Name:       fmt.Sprintf("Bot %d", n),
		Controller: Bot{Strategy: strategy},
	}
}

// botMove 执行当前机器人座位的一步（调用方持有 mu）
func (r *Room) botMove() error {
	seat := r.current
	p := r.players[seat]
	bot, ok := p.Controller.(Bot)
	if !ok {
		return nil
	}

	if r.phase == PhaseAwaitingSuitChoice {
		return r.applySuitChoice(seat, bot.Strategy.ChooseSuit(p.Hand))
	}

	if idx := bot.Strategy.ChoosePlay(p.Hand, r.table()); idx >= 0 {
		if _, err := r.applyPlay(seat, idx, 0); err == nil {
			return nil
		}
	}
	// 策略无牌可出或选了不合法的牌时摸牌
	_, err := r.applyDraw(seat, 0)
	return err
}
