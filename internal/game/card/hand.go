package card

import (
	"fmt"
	"slices"
)

// Hand 玩家手牌
type Hand []Card

// At 返回指定位置的牌
func (h Hand) At(idx int) (Card, error) {
	if idx < 0 || idx >= len(h) {
		return Card{}, fmt.Errorf("手牌位置 %d 越界（共 %d 张）", idx, len(h))
	}
	return h[idx], nil
}

// RemoveAt 移除指定位置的牌，返回新手牌
func (h Hand) RemoveAt(idx int) Hand {
	return slices.Delete(h, idx, idx+1)
}

// MostHeldSuit 返回张数最多的花色，8 不计入；并列时按 Suits 顺序取第一个
func (h Hand) MostHeldSuit() Suit {
	counts := make(map[Suit]int, len(Suits))
	for _, c := range h {
		if c.Rank != Rank8 {
			counts[c.Suit]++
		}
	}
	best := Suits[0]
	for _, s := range Suits[1:] {
		if counts[s] > counts[best] {
			best = s
		}
	}
	return best
}

