package room

import (
	"github.com/palemoky/crazy-eights/internal/protocol"
	"github.com/palemoky/crazy-eights/internal/protocol/convert"
)

// 状态视图：每个接收者只看到自己的手牌，其他玩家只暴露张数。
// 以下方法要求调用方持有 mu。

func (r *Room) playerInfo(seat int) protocol.PlayerInfo {
	p := r.players[seat]
	return protocol.PlayerInfo{
		Seat:       seat,
		Name:       p.Name,
		IsHost:     p.IsHost,
		IsBot:      p.IsBot(),
		CardsCount: len(p.Hand),
	}
}

func (r *Room) playerInfos() []protocol.PlayerInfo {
	infos := make([]protocol.PlayerInfo, len(r.players))
	for i := range r.players {
		infos[i] = r.playerInfo(i)
	}
	return infos
}

func (r *Room) playerListPayload() protocol.PlayerListPayload {
	return protocol.PlayerListPayload{
		RoomCode:   r.Code,
		MaxPlayers: r.MaxPlayers,
		Players:    r.playerInfos(),
	}
}

func (r *Room) stateFor(seat int) protocol.GameStatePayload {
	state := protocol.GameStatePayload{
		RoomCode:       r.Code,
		Status:         string(r.status),
		Phase:          string(r.phase),
		Version:        r.version,
		YourSeat:       seat,
		Hand:           convert.CardsToInfos(r.players[seat].Hand),
		Players:        r.playerInfos(),
		CurrentTurn:    r.current,
		Direction:      r.direction,
		PendingPenalty: r.pendingPenalty,
	}
	if r.deck != nil {
		state.DeckSize = r.deck.Len()
	}
	if top, ok := r.discard.Top(); ok {
		info := convert.CardToInfo(top)
		state.TopCard = &info
	}
	if r.forcedSuit != nil {
		state.ForcedSuit = r.forcedSuit.String()
	}
	return state
}

// roomCreatedPayload 房主（0 号座位）视角的创建结果
func (r *Room) roomCreatedPayload() protocol.RoomCreatedPayload {
	return protocol.RoomCreatedPayload{
		RoomCode:   r.Code,
		MaxPlayers: r.MaxPlayers,
		Player:     r.playerInfo(0),
	}
}

func (r *Room) roomListItem() protocol.RoomListItem {
	item := protocol.RoomListItem{
		RoomCode:    r.Code,
		PlayerCount: len(r.players),
		MaxPlayers:  r.MaxPlayers,
	}
	if len(r.players) > 0 {
		item.HostName = r.players[0].Name
	}
	return item
}
