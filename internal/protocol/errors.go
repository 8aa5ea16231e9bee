package protocol

// 错误码
const (
	ErrCodeUnknown           = 1000
	ErrCodeInvalidMsg        = 1001
	ErrCodeRateLimit         = 1002 // 速率限制
	ErrCodeRoomNotFound      = 2001
	ErrCodeRoomFull          = 2002
	ErrCodeNotInRoom         = 2003
	ErrCodeGameStarted       = 2004 // 游戏已开始
	ErrCodeAlreadyInRoom     = 2005
	ErrCodeNotHost           = 2006
	ErrCodeNotEnoughPlayers  = 2007
	ErrCodeInvalidMaxPlayers = 2008
	ErrCodeNameTaken         = 2009 // 房间内昵称重复
	ErrCodeGameNotStart      = 3001
	ErrCodeNotYourTurn       = 3002
	ErrCodeIllegalMove       = 3003
	ErrCodeInvalidCard       = 3004
	ErrCodeSuitPending       = 3005 // 等待指定花色
	ErrCodeNoSuitPending     = 3006
	ErrCodeInvalidSuit       = 3007
	ErrCodeStaleIntent       = 3008 // 回合已推进
	ErrCodeGameOver          = 3009
)

// ErrorMessages 错误码对应的消息
var ErrorMessages = map[int]string{
	ErrCodeUnknown:           "未知错误",
	ErrCodeInvalidMsg:        "无效的消息格式",
	ErrCodeRateLimit:         "请求过于频繁",
	ErrCodeRoomNotFound:      "房间不存在",
	ErrCodeRoomFull:          "房间已满",
	ErrCodeNotInRoom:         "您不在房间中",
	ErrCodeGameStarted:       "游戏已开始",
	ErrCodeAlreadyInRoom:     "您已在其他房间中",
	ErrCodeNotHost:           "只有房主可以开始游戏",
	ErrCodeNotEnoughPlayers:  "至少需要 2 名玩家",
	ErrCodeInvalidMaxPlayers: "人数上限必须在 2-8 之间",
	ErrCodeNameTaken:         "房间内已有同名玩家",
	ErrCodeGameNotStart:      "游戏尚未开始",
	ErrCodeNotYourTurn:       "还没轮到您",
	ErrCodeIllegalMove:       "这张牌不能出",
	ErrCodeInvalidCard:       "无效的牌",
	ErrCodeSuitPending:       "请先指定花色",
	ErrCodeNoSuitPending:     "当前无需指定花色",
	ErrCodeInvalidSuit:       "无效的花色",
	ErrCodeStaleIntent:       "操作已过期，请刷新状态",
	ErrCodeGameOver:          "游戏已结束",
}
