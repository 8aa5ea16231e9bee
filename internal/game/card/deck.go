package card

import (
	"errors"
	"math/rand/v2"
)

// ErrEmptyDeck 牌堆已空
var ErrEmptyDeck = errors.New("牌堆已空")

// Deck 未发出的牌堆，从尾部摸牌
type Deck struct {
	cards []Card
	rng   *rand.Rand
}

// NewDeck 创建一副洗好的 52 张牌，rng 为 nil 时使用全局随机源
func NewDeck(rng *rand.Rand) *Deck {
	d := &Deck{cards: Standard(), rng: rng}
	d.Shuffle()
	return d
}

// NewDeckFrom 用指定顺序的牌创建牌堆（末尾为堆顶），不洗牌
func NewDeckFrom(cards []Card, rng *rand.Rand) *Deck {
	return &Deck{cards: append([]Card(nil), cards...), rng: rng}
}

// Shuffle Fisher–Yates 洗牌
func (d *Deck) Shuffle() {
	swap := func(i, j int) { d.cards[i], d.cards[j] = d.cards[j], d.cards[i] }
	if d.rng != nil {
		d.rng.Shuffle(len(d.cards), swap)
		return
	}
	rand.Shuffle(len(d.cards), swap)
}

// Draw 摸走堆顶的牌
func (d *Deck) Draw() (Card, error) {
	n := len(d.cards)
	if n == 0 {
		return Card{}, ErrEmptyDeck
	}
	c := d.cards[n-1]
	d.cards = d.cards[:n-1]
	return c, nil
}

// PutBottom 把牌放回牌堆底部
func (d *Deck) PutBottom(c Card) {
	d.cards = append([]Card{c}, d.cards...)
}

// Len 剩余张数
func (d *Deck) Len() int {
	return len(d.cards)
}

// IsEmpty 牌堆是否为空
func (d *Deck) IsEmpty() bool {
	return len(d.cards) == 0
}

// Cards 返回剩余牌的副本
func (d *Deck) Cards() []Card {
	return append([]Card(nil), d.cards...)
}

// RecycleFromDiscard 牌堆为空时，把弃牌堆除顶牌外的牌洗回牌堆。
// 返回回收的张数；弃牌堆不足两张或牌堆非空时不做任何事。
func (d *Deck) RecycleFromDiscard(pile *DiscardPile) int {
	if !d.IsEmpty() || pile.Len() <= 1 {
		return 0
	}
	buried := pile.takeBuried()
	d.cards = append(d.cards, buried...)
	d.Shuffle()
	return len(buried)
}

// DiscardPile 弃牌堆，最后一张为顶牌
type DiscardPile struct {
	cards []Card
}

// Push 打出一张牌
func (p *DiscardPile) Push(c Card) {
	p.cards = append(p.cards, c)
}

// Top 返回顶牌
func (p *DiscardPile) Top() (Card, bool) {
	if len(p.cards) == 0 {
		return Card{}, false
	}
	return p.cards[len(p.cards)-1], true
}

// Len 弃牌张数
func (p *DiscardPile) Len() int {
	return len(p.cards)
}

// Cards 返回弃牌堆副本
func (p *DiscardPile) Cards() []Card {
	return append([]Card(nil), p.cards...)
}

// takeBuried 取走顶牌以下的所有牌，只保留顶牌
func (p *DiscardPile) takeBuried() []Card {
	n := len(p.cards)
	buried := make([]Card, n-1)
	copy(buried, p.cards[:n-1])
	p.cards = []Card{p.cards[n-1]}
	return buried
}
