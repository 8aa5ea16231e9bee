package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"github.com/palemoky/crazy-eights/internal/config"
	"github.com/palemoky/crazy-eights/internal/game/room"
	"github.com/palemoky/crazy-eights/internal/logger"
	"github.com/palemoky/crazy-eights/internal/server/handler"
	"github.com/palemoky/crazy-eights/internal/storage"
)

const (
	storeConnectTimeout  = 5 * time.Second
	connectionsPerSecond = 2  // 单 IP 建立连接的速率
	connectionBurst      = 10 // 单 IP 突发连接数
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// 来源已在升级前由 OriginChecker 校验
	CheckOrigin: func(r *http.Request) bool { return true },
	// 消息都很小，压缩得不偿失
	EnableCompression: false,
}

// Server WebSocket 服务器
type Server struct {
	config      *config.Config
	redis       *redis.Client
	archive     *storage.PostgresRecorder
	roomManager *room.RoomManager
	handler     *handler.Handler
	clients     map[string]*Client
	clientsMu   sync.RWMutex

	// 安全组件
	originChecker *OriginChecker
	ipLimiter     *IPRateLimiter

	// 连接控制
	semaphore chan struct{}

	httpServer *http.Server
	done       chan struct{}
	closeOnce  sync.Once
}

// NewServer 创建服务器实例。Redis 和 Postgres 均为可选，
// 配置了却连接失败时返回错误。
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	s := &Server{
		config:        cfg,
		clients:       make(map[string]*Client),
		originChecker: NewOriginChecker(cfg.Server.AllowedOrigins),
		ipLimiter:     NewIPRateLimiter(connectionsPerSecond, connectionBurst),
		semaphore:     make(chan struct{}, cfg.Server.MaxConnections),
		done:          make(chan struct{}),
	}

	var (
		store       room.RoomStore
		leaderboard handler.Leaderboard
		recorders   storage.MultiRecorder
	)

	if cfg.Redis.Addr != "" {
		rdb, err := connectRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		s.redis = rdb

		redisStore := storage.NewRedisStore(rdb)
		s.purgeStaleRooms(ctx, redisStore)

		lb := storage.NewLeaderboard(rdb)
		store = redisStore
		leaderboard = lb
		recorders = append(recorders, lb)
	} else {
		logger.LogWarn("未配置 Redis，房间镜像和排行榜已禁用")
	}

	if cfg.Postgres.DSN != "" {
		archive, err := storage.NewPostgresRecorder(ctx, cfg.Postgres.DSN)
		if err != nil {
			s.closeStores()
			return nil, fmt.Errorf("postgres 连接失败: %w", err)
		}
		s.archive = archive
		recorders = append(recorders, archive)
	}

	var recorder storage.Recorder
	if len(recorders) > 0 {
		recorder = recorders
	}

	s.roomManager = room.NewRoomManager(store, recorder, room.Options{
		DefaultMaxPlayers: cfg.Game.DefaultMaxPlayers,
		RoomTimeout:       cfg.Game.RoomTimeoutDuration(),
		BotDelay:          cfg.Game.BotDelayDuration(),
		StoreTimeout:      cfg.Game.RecordTimeoutDuration(),
	})

	s.handler = handler.NewHandler(handler.HandlerDeps{
		Server:      s,
		RoomManager: s.roomManager,
		Leaderboard: leaderboard,
	})

	s.httpServer = &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second, // 防止 Slowloris 攻击
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.LogInfo("🔒 安全配置: 消息限制=%d/s (突发 %d), 最大连接数=%d",
		cfg.Limits.MessagesPerSecond, cfg.Limits.Burst, cfg.Server.MaxConnections)

	return s, nil
}

func connectRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, storeConnectTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis 连接失败: %w", err)
	}
	return rdb, nil
}

// purgeStaleRooms 清理上一个进程遗留的房间镜像，内存中的房间不会跨进程保留
func (s *Server) purgeStaleRooms(ctx context.Context, store *storage.RedisStore) {
	purgeCtx, cancel := context.WithTimeout(ctx, storeConnectTimeout)
	defer cancel()

	s.reportInterruptedGames(purgeCtx, store)

	n, err := store.PurgeRooms(purgeCtx)
	if err != nil {
		logger.LogWarn("清理残留房间失败: %v", err)
		return
	}
	if n > 0 {
		logger.LogInfo("🧹 已清理 %d 个残留房间", n)
	}
}

// reportInterruptedGames 记录因上次进程退出而中断的对局
func (s *Server) reportInterruptedGames(ctx context.Context, store *storage.RedisStore) {
	codes, err := store.GetAllRoomCodes(ctx)
	if err != nil {
		return
	}
	for _, code := range codes {
		data, err := store.LoadRoom(ctx, code)
		if err != nil || data == nil || data.Status != "in_progress" {
			continue
		}
		logger.LogWarn("⚠️ 房间 %s 的对局因服务重启中断（%d 名玩家）", code, len(data.Players))
	}
}

// Routes 返回 HTTP 路由
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("GET /health", s.handleHealth)
	return mux
}

// Start 启动服务器，阻塞直到 Shutdown
func (s *Server) Start() error {
	// 启动监控 goroutine
	go s.monitorStats()

	logger.LogInfo("🚀 服务器启动在 ws://%s/ws", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
