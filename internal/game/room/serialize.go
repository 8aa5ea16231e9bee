package room

import (
	"github.com/palemoky/crazy-eights/internal/storage"
)

// toRoomData 房间元数据快照，用于 Redis 镜像（调用方持有 mu）
func (r *Room) toRoomData() *storage.RoomData {
	data := &storage.RoomData{
		Code:       r.Code,
		Status:     string(r.status),
		MaxPlayers: r.MaxPlayers,
		Players:    make([]storage.PlayerData, 0, len(r.players)),
		CreatedAt:  r.CreatedAt.Unix(),
	}
	if !r.startedAt.IsZero() {
		data.StartedAt = r.startedAt.Unix()
	}

	for seat, p := range r.players {
		data.Players = append(data.Players, storage.PlayerData{
			ID:     p.ID,
			Name:   p.Name,
			Seat:   seat,
			IsHost: p.IsHost,
			IsBot:  p.IsBot(),
		})
	}
	return data
}

// toRecord 已完成对局的记录（调用方持有 mu）
func (r *Room) toRecord() *storage.GameRecord {
	rec := &storage.GameRecord{
		RoomCode:  r.Code,
		Players:   make([]storage.PlayerRecord, 0, len(r.players)),
		Stats:     r.stats,
		StartedAt: r.startedAt,
		EndedAt:   r.endedAt,
	}
	if r.winner >= 0 {
		rec.WinnerName = r.players[r.winner].Name
	}

	for seat, p := range r.players {
		rec.Players = append(rec.Players, storage.PlayerRecord{
			Name:          p.Name,
			Seat:          seat,
			IsBot:         p.IsBot(),
			IsWinner:      seat == r.winner,
			CardsPlayed:   p.cardsPlayed,
			EightsPlayed:  p.eightsPlayed,
			FinalHandSize: len(p.Hand),
		})
	}
	return rec
}
