package handler

import (
	"github.com/palemoky/crazy-eights/internal/apperrors"
	"github.com/palemoky/crazy-eights/internal/protocol"
	"github.com/palemoky/crazy-eights/internal/protocol/codec"
	"github.com/palemoky/crazy-eights/internal/protocol/convert"
	"github.com/palemoky/crazy-eights/internal/types"
)

// 成功的操作由房间广播新的状态快照，这里只处理拒绝

// handlePlayCard 处理出牌
func (h *Handler) handlePlayCard(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.PlayCardPayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	if payload.Card != nil {
		if err := h.checkCardAt(client, payload.RoomCode, payload.CardIndex, *payload.Card); err != nil {
			sendError(client, err)
			return
		}
	}

	if err := h.roomManager.PlayCard(client, payload.RoomCode, payload.CardIndex, payload.Turn); err != nil {
		sendError(client, err)
	}
}

// checkCardAt 校验手牌第 idx 张是否为客户端声明的牌。
// 玩家的手牌只会被自己的操作改变，而同一连接的消息按顺序处理，所以校验后到出牌前不会变化。
// 房间不存在或位置越界时交给 PlayCard 报告。
func (h *Handler) checkCardAt(client types.ClientInterface, code string, idx int, info protocol.CardInfo) error {
	want, err := convert.InfoToCard(info)
	if err != nil {
		return apperrors.ErrInvalidCard
	}

	r := h.roomManager.GetRoom(code)
	if r == nil {
		return nil
	}
	state, ok := r.StateFor(client.GetID())
	if !ok || idx < 0 || idx >= len(state.Hand) {
		return nil
	}
	if state.Hand[idx] != convert.CardToInfo(want) {
		return apperrors.ErrInvalidCard
	}
	return nil
}

// handleChooseSuit 处理指定花色
func (h *Handler) handleChooseSuit(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.ChooseSuitPayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	if err := h.roomManager.ChooseSuit(client, payload.RoomCode, payload.Suit); err != nil {
		sendError(client, err)
	}
}

// handleDrawCard 处理摸牌
func (h *Handler) handleDrawCard(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.DrawCardPayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	if err := h.roomManager.DrawCard(client, payload.RoomCode, payload.Turn); err != nil {
		sendError(client, err)
	}
}
