package types

import (
	"github.com/palemoky/crazy-eights/internal/protocol"
)

// ClientInterface 定义客户端接口（用于打破 room 与 server 之间的循环依赖）
type ClientInterface interface {
	GetID() string
	GetName() string
	GetRoom() string
	SetRoom(code string)
	SendMessage(msg *protocol.Message)
	Close()
}

// ServerInterface 定义处理器需要的服务器能力
type ServerInterface interface {
	GetOnlineCount() int
}
