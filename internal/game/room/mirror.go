package room

import (
	"context"
	"sync"
	"time"

	"github.com/palemoky/crazy-eights/internal/logger"
	"github.com/palemoky/crazy-eights/internal/storage"
)

// mirrorOp 一次房间镜像写入，data 为 nil 表示删除
type mirrorOp struct {
	code string
	data *storage.RoomData
}

// roomMirror 按提交顺序串行写入房间镜像。
// 入队发生在 Room.mu 内，所以同一房间的保存和删除不会乱序。
type roomMirror struct {
	store   RoomStore
	timeout time.Duration

	mu    sync.Mutex
	queue []mirrorOp
	busy  bool
	wake  chan struct{}
}

func newRoomMirror(store RoomStore, timeout time.Duration) *roomMirror {
	return &roomMirror{
		store:   store,
		timeout: timeout,
		wake:    make(chan struct{}, 1),
	}
}

// enqueue 追加一次写入，不阻塞
func (m *roomMirror) enqueue(op mirrorOp) {
	m.mu.Lock()
	m.queue = append(m.queue, op)
	m.mu.Unlock()

	select {
	case m.wake <- struct{}{}:
	default:
	}
}

// run 写入循环，done 关闭后写完剩余操作再退出
func (m *roomMirror) run(done <-chan struct{}) {
	for {
		select {
		case <-m.wake:
			m.drain()
		case <-done:
			m.drain()
			return
		}
	}
}

func (m *roomMirror) drain() {
	for {
		m.mu.Lock()
		if len(m.queue) == 0 {
			m.busy = false
			m.mu.Unlock()
			return
		}
		op := m.queue[0]
		m.queue[0] = mirrorOp{}
		m.queue = m.queue[1:]
		m.busy = true
		m.mu.Unlock()

		m.apply(op)
	}
}

func (m *roomMirror) apply(op mirrorOp) {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	if op.data == nil {
		if err := m.store.DeleteRoom(ctx, op.code); err != nil {
			logger.LogWarn("删除房间 %s 的 Redis 数据失败: %v", op.code, err)
		}
		return
	}
	if err := m.store.SaveRoom(ctx, op.code, op.data); err != nil {
		logger.LogWarn("保存房间 %s 到 Redis 失败: %v", op.code, err)
	}
}

// idle 队列为空且没有进行中的写入
func (m *roomMirror) idle() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue) == 0 && !m.busy
}
