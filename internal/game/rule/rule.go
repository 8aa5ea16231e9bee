package rule

import (
	"github.com/palemoky/crazy-eights/internal/game/card"
)

const (
	// PenaltyRank 可叠加罚摸的点数
	PenaltyRank = card.Rank2
	// SkipRank 跳过下家
	SkipRank = card.Rank7
	// ReverseRank 反转方向
	ReverseRank = card.RankJ
	// WildRank 万能牌，打出后指定花色
	WildRank = card.Rank8

	// PenaltyPerCard 每张罚摸牌累加的张数
	PenaltyPerCard = 2
)

// Table 判定出牌所需的牌桌状态
type Table struct {
	Top            card.Card  // 弃牌堆顶牌
	ForcedSuit     *card.Suit // 万能牌指定的花色，nil 表示未指定
	PendingPenalty int        // 累积罚摸张数
}

// EffectiveSuit 当前必须跟的花色：指定花色优先，否则为顶牌花色
func (t Table) EffectiveSuit() card.Suit {
	if t.ForcedSuit != nil {
		return *t.ForcedSuit
	}
	return t.Top.Suit
}

// IsLegalPlay 判断一张牌能否打出
func IsLegalPlay(t Table, c card.Card) bool {
	if t.PendingPenalty > 0 {
		return c.Rank == PenaltyRank
	}
	return c.Rank == WildRank || c.Suit == t.EffectiveSuit() || c.Rank == t.Top.Rank
}

// Effect 一张牌打出后产生的效果
type Effect struct {
	DrawPenaltyDelta   int
	Skip               bool
	ReverseDirection   bool
	RequiresSuitChoice bool
}

// IsSpecial 是否有任何特殊效果
func (e Effect) IsSpecial() bool {
	return e != Effect{}
}

// effects 特殊牌效果表
var effects = map[card.Rank]Effect{
	PenaltyRank: {DrawPenaltyDelta: PenaltyPerCard},
	SkipRank:    {Skip: true},
	ReverseRank: {ReverseDirection: true},
	WildRank:    {RequiresSuitChoice: true},
}

// EffectOf 返回一张牌的效果，普通牌返回零值
func EffectOf(c card.Card) Effect {
	return effects[c.Rank]
}

// IsSpecial 是否为特殊牌（起始牌不能是特殊牌）
func IsSpecial(c card.Card) bool {
	return EffectOf(c).IsSpecial()
}

// IsWin 出牌后手牌为空即获胜
func IsWin(hand card.Hand) bool {
	return len(hand) == 0
}

// NextIndex 按方向前进 steps 步后的座位号
func NextIndex(current, direction, steps, n int) int {
	return ((current+direction*steps)%n + n) % n
}
