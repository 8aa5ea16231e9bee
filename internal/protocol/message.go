package protocol

import "encoding/json"

// Message 基础消息结构
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MessageType 消息类型
type MessageType string

// 客户端 → 服务端 消息类型
const (
	// 连接操作
	MsgPing MessageType = "ping" // 心跳 ping

	// 房间操作
	MsgCreateRoom MessageType = "create_room" // 创建房间（可带机器人）
	MsgJoinRoom   MessageType = "join_room"   // 加入房间
	MsgLeaveRoom  MessageType = "leave_room"  // 离开房间
	MsgStartGame  MessageType = "start_game"  // 房主开始游戏

	// 游戏操作
	MsgPlayCard   MessageType = "play_card"   // 出牌
	MsgChooseSuit MessageType = "choose_suit" // 打出 8 后指定花色
	MsgDrawCard   MessageType = "draw_card"   // 摸牌

	// 查询
	MsgGetRoomList    MessageType = "get_room_list"   // 获取房间列表
	MsgGetStats       MessageType = "get_stats"       // 获取个人统计
	MsgGetLeaderboard MessageType = "get_leaderboard" // 获取排行榜
)

// 服务端 → 客户端 消息类型
const (
	// 连接相关
	MsgConnected MessageType = "connected" // 连接成功
	MsgPong      MessageType = "pong"      // 心跳 pong

	// 房间相关
	MsgRoomCreated MessageType = "room_created" // 房间创建成功
	MsgRoomJoined  MessageType = "room_joined"  // 加入房间成功
	MsgPlayerList  MessageType = "player_list"  // 房间玩家列表
	MsgRoomClosed  MessageType = "room_closed"  // 房间被关闭（中途解散/超时）

	// 游戏流程
	MsgGameStarted MessageType = "game_started" // 游戏开始
	MsgGameState   MessageType = "game_state"   // 状态快照（每个玩家各自的视图）
	MsgGameOver    MessageType = "game_over"    // 游戏结束

	// 查询结果
	MsgRoomListResult    MessageType = "room_list_result"
	MsgStatsResult       MessageType = "stats_result"
	MsgLeaderboardResult MessageType = "leaderboard_result"

	// 错误
	MsgError MessageType = "error" // 错误消息
)
