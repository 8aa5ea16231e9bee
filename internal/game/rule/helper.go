package rule

import "github.com/palemoky/crazy-eights/internal/game/card"

// PlayableIndices 返回手牌中所有可以打出的牌的位置
func PlayableIndices(hand card.Hand, t Table) []int {
	var result []int
	for i, c := range hand {
		if IsLegalPlay(t, c) {
			result = append(result, i)
		}
	}
	return result
}

// FindBestPlay 为自动出牌挑一张牌，找不到返回 -1。
// 优先出非 8 的牌，同等情况下优先出特殊牌；8 留到最后。
func FindBestPlay(hand card.Hand, t Table) int {
	best, eight := -1, -1
	for _, i := range PlayableIndices(hand, t) {
		c := hand[i]
		if c.Rank == WildRank {
			if eight < 0 {
				eight = i
			}
			continue
		}
		if best < 0 || (IsSpecial(c) && !IsSpecial(hand[best])) {
			best = i
		}
	}
	if best >= 0 {
		return best
	}
	return eight
}
