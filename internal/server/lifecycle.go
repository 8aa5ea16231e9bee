package server

import (
	"context"
	"runtime"
	"time"

	"github.com/palemoky/crazy-eights/internal/logger"
)

const (
	monitorInterval = 30 * time.Second
	ipIdleTimeout   = 10 * time.Minute
)

// monitorStats 定期监控服务器状态
func (s *Server) monitorStats() {
	ticker := time.NewTicker(monitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			var m runtime.MemStats
			runtime.ReadMemStats(&m)

			if n := s.ipLimiter.Cleanup(ipIdleTimeout); n > 0 {
				logger.LogDebug("清理了 %d 个空闲 IP 限流记录", n)
			}

			logger.LogInfo("📊 [监控] 在线: %d | 房间: %d | 对局: %d | Goroutines: %d | 活跃连接: %d/%d | 内存: %.2f MB",
				s.GetOnlineCount(),
				s.roomManager.RoomCount(),
				s.roomManager.GetActiveGamesCount(),
				runtime.NumGoroutine(),
				len(s.semaphore),
				cap(s.semaphore),
				float64(m.Alloc)/1024/1024)
		}
	}
}

// Shutdown 优雅关闭服务器：停止接收连接，断开客户端，释放存储连接
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)

		err = s.httpServer.Shutdown(ctx)

		// 关闭所有客户端连接
		s.closeAllClients()

		s.roomManager.Close()
		s.closeStores()

		logger.LogInfo("服务器已关闭")
	})
	return err
}

func (s *Server) closeStores() {
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			logger.LogWarn("关闭 Redis 失败: %v", err)
		}
	}
	if s.archive != nil {
		s.archive.Close()
	}
}
