package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/palemoky/crazy-eights/internal/logger"
	"github.com/palemoky/crazy-eights/internal/protocol"
	"github.com/palemoky/crazy-eights/internal/protocol/codec"
)

const (
	// 写入超时
	writeWait = 10 * time.Second

	// 读取超时（pong 等待时间）
	pongWait = 60 * time.Second

	// ping 发送间隔（必须小于 pongWait）
	pingPeriod = (pongWait * 9) / 10

	// 消息最大大小
	maxMessageSize = 4096

	sendBufferSize = 256

	// 超速次数达到该值后断开连接
	maxRateStrikes = 5
)

// frame 待写出的一帧
type frame struct {
	kind int // websocket.TextMessage 或 websocket.BinaryMessage
	data []byte
}

// Client 代表一个连接的玩家
type Client struct {
	ID   string // 连接唯一 ID
	Name string // 随机昵称
	IP   string // 客户端 IP 地址

	server  *Server
	conn    *websocket.Conn
	send    chan frame
	limiter *rate.Limiter
	strikes int // 只在 ReadPump 中访问

	mu       sync.RWMutex
	roomCode string
	format   codec.Format // 按客户端最近一次使用的帧格式回复
	closed   bool
}

// NewClient 创建新客户端
func NewClient(s *Server, conn *websocket.Conn, ip string) *Client {
	limits := s.config.Limits
	return &Client{
		ID:      uuid.New().String(),
		Name:    GenerateNickname(),
		IP:      ip,
		server:  s,
		conn:    conn,
		send:    make(chan frame, sendBufferSize),
		limiter: rate.NewLimiter(rate.Limit(limits.MessagesPerSecond), limits.Burst),
	}
}

// ReadPump 从 WebSocket 读取消息
func (c *Client) ReadPump() {
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
		}
		c.handleDisconnect()
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		kind, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.LogDebug("读取错误: %v", err)
			}
			return
		}

		format := codec.FormatJSON
		if kind == websocket.BinaryMessage {
			format = codec.FormatBinary
		}
		c.setFormat(format)

		// 消息速率限制检查
		if !c.limiter.Allow() {
			c.strikes++
			logger.LogWarn("⚠️ 客户端 %s (IP: %s) 消息过于频繁", c.Name, c.IP)
			c.SendMessage(codec.NewErrorMessage(protocol.ErrCodeRateLimit))
			if c.strikes >= maxRateStrikes {
				logger.LogWarn("🚫 客户端 %s 因多次超速被断开连接", c.Name)
				return
			}
			continue
		}

		// 解析消息
		msg, err := codec.Decode(data, format)
		if err != nil {
			logger.LogDebug("消息解析错误: %v", err)
			c.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
			continue
		}

		// 交给处理器处理
		c.server.handler.Handle(c, msg)
	}
}

// WritePump 向 WebSocket 写入消息
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
		}
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case f, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// 通道已关闭
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(f.kind, f.data); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendMessage 发送消息给客户端，不阻塞；缓冲区满时断开连接
func (c *Client) SendMessage(msg *protocol.Message) {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return
	}

	f := frame{kind: websocket.TextMessage}
	if c.format == codec.FormatBinary {
		f.kind = websocket.BinaryMessage
	}
	data, err := codec.Encode(msg, c.format)
	if err != nil {
		c.mu.RUnlock()
		logger.LogError("消息编码错误: %v", err)
		return
	}
	f.data = data

	full := false
	select {
	case c.send <- f:
	default:
		full = true
	}
	c.mu.RUnlock()

	if full {
		logger.LogWarn("客户端 %s 发送缓冲区已满", c.ID)
		c.Close()
	}
}

// handleDisconnect 处理断开连接：离开房间并注销
func (c *Client) handleDisconnect() {
	c.server.roomManager.LeaveRoom(c)
	c.server.unregisterClient(c)
	c.Close()
}

// Close 关闭发送通道，WritePump 随后关闭连接
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Client) setFormat(f codec.Format) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.format = f
}

// GetID 获取连接 ID
func (c *Client) GetID() string {
	return c.ID
}

// GetName 获取昵称
func (c *Client) GetName() string {
	return c.Name
}

// SetRoom 设置客户端所在房间
func (c *Client) SetRoom(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roomCode = code
}

// GetRoom 获取客户端所在房间
func (c *Client) GetRoom() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roomCode
}
