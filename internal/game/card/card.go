package card

import (
	"fmt"
	"strings"
)

// Suit 定义花色
type Suit int

// Rank 定义点数
type Rank int

const (
	Hearts Suit = iota
	Diamonds
	Clubs
	Spades
)

// Suits 按发牌顺序排列的全部花色
var Suits = [...]Suit{Hearts, Diamonds, Clubs, Spades}

var suitNames = map[Suit]string{
	Hearts:   "hearts",
	Diamonds: "diamonds",
	Clubs:    "clubs",
	Spades:   "spades",
}

var suitSymbols = map[Suit]string{
	Hearts:   "♥",
	Diamonds: "♦",
	Clubs:    "♣",
	Spades:   "♠",
}

func (s Suit) String() string {
	if name, ok := suitNames[s]; ok {
		return name
	}
	return fmt.Sprintf("suit(%d)", int(s))
}

// Symbol 返回花色符号
func (s Suit) Symbol() string {
	return suitSymbols[s]
}

// Valid 判断花色是否合法
func (s Suit) Valid() bool {
	_, ok := suitNames[s]
	return ok
}

// ParseSuit 解析花色名称（大小写不敏感）
func ParseSuit(name string) (Suit, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for s, n := range suitNames {
		if n == name {
			return s, nil
		}
	}
	return -1, fmt.Errorf("无法识别的花色: %q", name)
}

const (
	Rank2 Rank = iota + 2
	Rank3
	Rank4
	Rank5
	Rank6
	Rank7
	Rank8
	Rank9
	Rank10
	RankJ // Jack
	RankQ // Queen
	RankK // King
	RankA // Ace
)

// rankNames 牌面值字符串映射表
var rankNames = map[Rank]string{
	Rank2:  "2",
	Rank3:  "3",
	Rank4:  "4",
	Rank5:  "5",
	Rank6:  "6",
	Rank7:  "7",
	Rank8:  "8",
	Rank9:  "9",
	Rank10: "10",
	RankJ:  "J",
	RankQ:  "Q",
	RankK:  "K",
	RankA:  "A",
}

func (r Rank) String() string {
	if name, ok := rankNames[r]; ok {
		return name
	}
	return fmt.Sprintf("rank(%d)", int(r))
}

// Valid 判断点数是否合法
func (r Rank) Valid() bool {
	return r >= Rank2 && r <= RankA
}

// ParseRank 解析点数字符串
func ParseRank(s string) (Rank, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for r, n := range rankNames {
		if n == s {
			return r, nil
		}
	}
	return -1, fmt.Errorf("无法识别的点数: %q", s)
}

// Card 一张牌，按 (Suit, Rank) 值相等
type Card struct {
	Suit Suit
	Rank Rank
}

// New 创建一张牌
func New(s Suit, r Rank) Card {
	return Card{Suit: s, Rank: r}
}

// ID 返回牌的唯一标识，例如 "10-hearts"
func (c Card) ID() string {
	return c.Rank.String() + "-" + c.Suit.String()
}

func (c Card) String() string {
	return c.Rank.String() + c.Suit.Symbol()
}

// DeckSize 一副标准牌的张数
const DeckSize = 52

// Standard 返回按花色、点数排列的 52 张牌（未洗牌）
func Standard() []Card {
	cards := make([]Card, 0, DeckSize)
	for _, s := range Suits {
		for r := Rank2; r <= RankA; r++ {
			cards = append(cards, Card{Suit: s, Rank: r})
		}
	}
	return cards
}
