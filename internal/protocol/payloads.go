package protocol

// --- 客户端请求 Payloads ---

// PingPayload 心跳请求
type PingPayload struct {
	Timestamp int64 `json:"timestamp"` // 客户端时间戳（毫秒）
}

// CreateRoomPayload 创建房间请求
type CreateRoomPayload struct {
	Name       string `json:"name"`
	MaxPlayers int    `json:"max_players"`    // 0 使用服务器默认值
	Bots       int    `json:"bots,omitempty"` // >0 为单人模式，自动开始
}

// JoinRoomPayload 加入房间请求
type JoinRoomPayload struct {
	RoomCode string `json:"room_code"`
	Name     string `json:"name"`
}

// StartGamePayload 开始游戏请求
type StartGamePayload struct {
	RoomCode string `json:"room_code"`
}

// PlayCardPayload 出牌请求
type PlayCardPayload struct {
	RoomCode  string `json:"room_code"`
	CardIndex int       `json:"card_index"`
	Card      *CardInfo `json:"card,omitempty"` // 可选，校验该位置上的牌，防止手牌视图过期
	Turn      int64     `json:"turn,omitempty"` // 客户端看到的状态版本，0 表示不校验
}

// ChooseSuitPayload 指定花色请求
type ChooseSuitPayload struct {
	RoomCode string `json:"room_code"`
	Suit     string `json:"suit"`
}

// DrawCardPayload 摸牌请求
type DrawCardPayload struct {
	RoomCode string `json:"room_code"`
	Turn     int64  `json:"turn,omitempty"`
}

// GetStatsPayload 获取统计请求
type GetStatsPayload struct {
	Name string `json:"name"`
}

// GetLeaderboardPayload 获取排行榜请求
type GetLeaderboardPayload struct {
	Limit int `json:"limit"`
}

// --- 服务端响应 Payloads ---

// ConnectedPayload 连接成功响应
type ConnectedPayload struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
}

// PongPayload 心跳响应
type PongPayload struct {
	ClientTimestamp int64 `json:"client_timestamp"`
	ServerTimestamp int64 `json:"server_timestamp"`
}

// CardInfo 牌信息
type CardInfo struct {
	Suit string `json:"suit"`
	Rank string `json:"rank"`
}

// PlayerInfo 玩家公开信息
type PlayerInfo struct {
	Seat       int    `json:"seat"`
	Name       string `json:"name"`
	IsHost     bool   `json:"is_host"`
	IsBot      bool   `json:"is_bot,omitempty"`
	CardsCount int    `json:"cards_count"`
}

// RoomCreatedPayload 房间创建成功响应
type RoomCreatedPayload struct {
	RoomCode   string     `json:"room_code"`
	MaxPlayers int        `json:"max_players"`
	Player     PlayerInfo `json:"player"`
}

// RoomJoinedPayload 加入房间成功响应
type RoomJoinedPayload struct {
	RoomCode   string       `json:"room_code"`
	MaxPlayers int          `json:"max_players"`
	Player     PlayerInfo   `json:"player"`
	Players    []PlayerInfo `json:"players"`
}

// PlayerListPayload 房间玩家列表
type PlayerListPayload struct {
	RoomCode   string       `json:"room_code"`
	MaxPlayers int          `json:"max_players"`
	Players    []PlayerInfo `json:"players"`
}

// RoomClosedPayload 房间关闭通知
type RoomClosedPayload struct {
	RoomCode string `json:"room_code"`
	Reason   string `json:"reason"`
}

// GameStartedPayload 游戏开始通知
type GameStartedPayload struct {
	RoomCode string `json:"room_code"`
}

// GameStatePayload 状态快照，只包含接收者自己的手牌
type GameStatePayload struct {
	RoomCode       string       `json:"room_code"`
	Status         string       `json:"status"`
	Phase          string       `json:"phase"`
	Version        int64        `json:"version"`
	YourSeat       int          `json:"your_seat"`
	Hand           []CardInfo   `json:"hand"`
	Players        []PlayerInfo `json:"players"`
	TopCard        *CardInfo    `json:"top_card,omitempty"`
	CurrentTurn    int          `json:"current_turn"`
	Direction      int          `json:"direction"`
	ForcedSuit     string       `json:"forced_suit,omitempty"`
	PendingPenalty int          `json:"pending_penalty"`
	DeckSize       int          `json:"deck_size"`
}

// GameOverPayload 游戏结束通知
type GameOverPayload struct {
	RoomCode   string `json:"room_code"`
	WinnerName string `json:"winner_name"`
	WinnerSeat int    `json:"winner_seat"`
}

// RoomListItem 房间列表项
type RoomListItem struct {
	RoomCode    string `json:"room_code"`
	HostName    string `json:"host_name"`
	PlayerCount int    `json:"player_count"`
	MaxPlayers  int    `json:"max_players"`
}

// RoomListResultPayload 房间列表结果
type RoomListResultPayload struct {
	Rooms       []RoomListItem `json:"rooms"`
	OnlineCount int            `json:"online_count"`
}

// StatsResultPayload 个人统计结果
type StatsResultPayload struct {
	Name         string  `json:"name"`
	GamesPlayed  int     `json:"games_played"`
	GamesWon     int     `json:"games_won"`
	GamesLost    int     `json:"games_lost"`
	CardsPlayed  int     `json:"cards_played"`
	EightsPlayed int     `json:"eights_played"`
	WinRate      float64 `json:"win_rate"`
	Score        int     `json:"score"`
	MaxWinStreak int     `json:"max_win_streak"`
	Rank         int64   `json:"rank"` // -1 表示未上榜
}

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	Rank        int     `json:"rank"`
	Name        string  `json:"name"`
	Score       int     `json:"score"`
	GamesWon    int     `json:"games_won"`
	GamesPlayed int     `json:"games_played"`
	WinRate     float64 `json:"win_rate"`
}

// LeaderboardResultPayload 排行榜结果
type LeaderboardResultPayload struct {
	Entries []LeaderboardEntry `json:"entries"`
}

// ErrorPayload 错误消息
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
