package handler

import (
	"github.com/palemoky/crazy-eights/internal/protocol"
	"github.com/palemoky/crazy-eights/internal/protocol/codec"
	"github.com/palemoky/crazy-eights/internal/types"
)

// handleCreateRoom 处理创建房间，bots > 0 时创建单人房间并立即开始
func (h *Handler) handleCreateRoom(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.CreateRoomPayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	// 如果已在房间中，先离开
	if client.GetRoom() != "" {
		h.roomManager.LeaveRoom(client)
	}

	if payload.Bots > 0 {
		_, err = h.roomManager.CreateSoloRoom(client, payload.Name, payload.Bots)
	} else {
		_, err = h.roomManager.CreateRoom(client, payload.Name, payload.MaxPlayers)
	}
	if err != nil {
		sendError(client, err)
	}
}

// handleJoinRoom 处理加入房间
func (h *Handler) handleJoinRoom(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.JoinRoomPayload](msg)
	if err != nil || payload.RoomCode == "" {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	// 如果在其他房间中，先离开
	if current := client.GetRoom(); current != "" && current != payload.RoomCode {
		h.roomManager.LeaveRoom(client)
	}

	if _, err := h.roomManager.JoinRoom(client, payload.RoomCode, payload.Name); err != nil {
		sendError(client, err)
	}
}

// handleLeaveRoom 处理离开房间
func (h *Handler) handleLeaveRoom(client types.ClientInterface) {
	h.roomManager.LeaveRoom(client)
}

// handleStartGame 处理房主开始游戏
func (h *Handler) handleStartGame(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.StartGamePayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	if err := h.roomManager.StartGame(client, payload.RoomCode); err != nil {
		sendError(client, err)
	}
}
