package room

import (
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/palemoky/crazy-eights/internal/game/card"
	"github.com/palemoky/crazy-eights/internal/game/rule"
	"github.com/palemoky/crazy-eights/internal/protocol"
	"github.com/palemoky/crazy-eights/internal/storage"
	"github.com/palemoky/crazy-eights/internal/types"
)

const (
	roomCodeLength = 6            // 房间号长度
	roomCodeChars  = "0123456789" // 房间号字符集

	MinPlayers = 2
	MaxPlayers = 8

	baseHandSize   = 5 // 每人起手张数
	twoPlayerBonus = 2 // 两人局额外张数
)

// Controller 座位的控制方，只有 Human 和 Bot 两种
type Controller interface {
	isController()
}

// Human 由客户端连接驱动
type Human struct {
	Client types.ClientInterface
}

// Bot 由房间管理器按策略调度
type Bot struct {
	Strategy Strategy
}

func (Human) isController() {}
func (Bot) isController()   {}

// Player 房间中的玩家，座位顺序即出牌顺序
type Player struct {
	ID         string
	Name       string
	Hand       card.Hand
	IsHost     bool
	Controller Controller

	cardsPlayed  int
	eightsPlayed int
}

// Client 真人玩家的连接，机器人返回 nil
func (p *Player) Client() types.ClientInterface {
	if h, ok := p.Controller.(Human); ok {
		return h.Client
	}
	return nil
}

// IsBot 是否为机器人
func (p *Player) IsBot() bool {
	_, ok := p.Controller.(Bot)
	return ok
}

// Room 一局游戏的全部状态，所有字段由 mu 保护
type Room struct {
	Code       string
	MaxPlayers int
	CreatedAt  time.Time

	status         Status
	phase          Phase
	players        []*Player
	deck           *card.Deck
	discard        *card.DiscardPile
	current        int
	direction      int
	pendingPenalty int
	forcedSuit     *card.Suit
	winner         int
	version        int64 // 每次提交状态变更后递增
	startedAt      time.Time
	endedAt        time.Time
	stats          storage.GameStats
	rng            *rand.Rand

	mu sync.RWMutex
}

func newRoom(code string, maxPlayers int, rng *rand.Rand) *Room {
	return &Room{
		Code:       code,
		MaxPlayers: maxPlayers,
		CreatedAt:  time.Now(),
		status:     StatusWaiting,
		players:    make([]*Player, 0, maxPlayers),
		discard:    &card.DiscardPile{},
		direction:  1,
		winner:     -1,
		rng:        rng,
	}
}

// Status 当前状态
func (r *Room) Status() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status
}

// Version 当前状态版本
func (r *Room) Version() int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}

// PlayerCount 玩家数
func (r *Room) PlayerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.players)
}

// PlayerList 房间玩家的公开信息
func (r *Room) PlayerList() []protocol.PlayerInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.playerInfos()
}

// StateFor 指定玩家视角的状态快照，玩家不在房间时返回 false
func (r *Room) StateFor(playerID string) (protocol.GameStatePayload, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seat := r.seatOf(playerID)
	if seat < 0 || r.status == StatusWaiting {
		return protocol.GameStatePayload{}, false
	}
	return r.stateFor(seat), true
}

// --- 以下方法要求调用方持有 mu ---

// nameTaken 统计按显示名聚合，同一房间内不允许重名
func (r *Room) nameTaken(name string) bool {
	for _, p := range r.players {
		if strings.EqualFold(p.Name, name) {
			return true
		}
	}
	return false
}

func (r *Room) seatOf(playerID string) int {
	for i, p := range r.players {
		if p.ID == playerID {
			return i
		}
	}
	return -1
}

func (r *Room) table() rule.Table {
	top, _ := r.discard.Top()
	return rule.Table{
		Top:            top,
		ForcedSuit:     r.forcedSuit,
		PendingPenalty: r.pendingPenalty,
	}
}

func (r *Room) hasHumans() bool {
	for _, p := range r.players {
		if !p.IsBot() {
			return true
		}
	}
	return false
}

// cardCount 牌堆、弃牌堆与所有手牌的总张数
func (r *Room) cardCount() int {
	n := r.discard.Len()
	if r.deck != nil {
		n += r.deck.Len()
	}
	for _, p := range r.players {
		n += len(p.Hand)
	}
	return n
}

// broadcast 推送给所有真人玩家，SendMessage 不阻塞
func (r *Room) broadcast(msg *protocol.Message) {
	for _, p := range r.players {
		if c := p.Client(); c != nil {
			c.SendMessage(msg)
		}
	}
}

// broadcastExcept 推送给除指定玩家外的真人玩家
func (r *Room) broadcastExcept(playerID string, msg *protocol.Message) {
	for _, p := range r.players {
		if c := p.Client(); c != nil && p.ID != playerID {
			c.SendMessage(msg)
		}
	}
}

// detachClients 清除所有真人玩家的房间归属
func (r *Room) detachClients() {
	for _, p := range r.players {
		if c := p.Client(); c != nil && c.GetRoom() == r.Code {
			c.SetRoom("")
		}
	}
}
