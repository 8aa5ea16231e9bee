package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultHost              = "0.0.0.0"
	defaultPort              = 1780
	defaultMaxConnections    = 10000
	defaultMaxPlayers        = 7
	defaultRoomTimeout       = 10  // 分钟
	defaultBotDelay          = 800 // 毫秒
	defaultRecordTimeout     = 5   // 秒
	defaultMessagesPerSecond = 20
	defaultBurst             = 40
	defaultLogLevel          = "info"
)

// Config 服务端配置
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Redis    RedisConfig    `yaml:"redis"`
	Postgres PostgresConfig `yaml:"postgres"`
	Game     GameConfig     `yaml:"game"`
	Limits   LimitsConfig   `yaml:"limits"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig WebSocket 服务器配置
type ServerConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	MaxConnections int      `yaml:"max_connections"`
	AllowedOrigins []string `yaml:"allowed_origins"` // 为空或包含 "*" 时不校验来源
}

// RedisConfig Redis 配置，Addr 为空时不启用
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// PostgresConfig 对局归档配置，DSN 为空时不启用
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// GameConfig 游戏配置
type GameConfig struct {
	DefaultMaxPlayers int `yaml:"default_max_players"`
	RoomTimeout       int `yaml:"room_timeout"`   // 等待中房间超时（分钟）
	BotDelay          int `yaml:"bot_delay"`      // 机器人行动延迟（毫秒）
	RecordTimeout     int `yaml:"record_timeout"` // 持久化超时（秒）
}

// LimitsConfig 单连接消息限流（令牌桶）
type LimitsConfig struct {
	MessagesPerSecond int `yaml:"messages_per_second"`
	Burst             int `yaml:"burst"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// RoomTimeoutDuration 返回房间等待超时时长
func (c *GameConfig) RoomTimeoutDuration() time.Duration {
	return time.Duration(c.RoomTimeout) * time.Minute
}

// BotDelayDuration 返回机器人行动延迟
func (c *GameConfig) BotDelayDuration() time.Duration {
	return time.Duration(c.BotDelay) * time.Millisecond
}

// RecordTimeoutDuration 返回持久化超时时长
func (c *GameConfig) RecordTimeoutDuration() time.Duration {
	return time.Duration(c.RecordTimeout) * time.Second
}

// Load 加载配置文件，随后应用默认值和环境变量
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	cfg.applyEnv()
	return &cfg, nil
}

// Default 返回默认配置（同样应用环境变量）
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	cfg.applyEnv()
	return &cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = defaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = defaultPort
	}
	if c.Server.MaxConnections <= 0 {
		c.Server.MaxConnections = defaultMaxConnections
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"*"}
	}
	if c.Game.DefaultMaxPlayers == 0 {
		c.Game.DefaultMaxPlayers = defaultMaxPlayers
	}
	if c.Game.RoomTimeout == 0 {
		c.Game.RoomTimeout = defaultRoomTimeout
	}
	if c.Game.BotDelay == 0 {
		c.Game.BotDelay = defaultBotDelay
	}
	if c.Game.RecordTimeout == 0 {
		c.Game.RecordTimeout = defaultRecordTimeout
	}
	if c.Limits.MessagesPerSecond <= 0 {
		c.Limits.MessagesPerSecond = defaultMessagesPerSecond
	}
	if c.Limits.Burst <= 0 {
		c.Limits.Burst = defaultBurst
	}
	if c.Log.Level == "" {
		c.Log.Level = defaultLogLevel
	}
}

// applyEnv 环境变量覆盖配置文件
func (c *Config) applyEnv() {
	if v := os.Getenv("CRAZY8_HOST"); v != "" {
		c.Server.Host = v
	}
	if v, ok := envInt("CRAZY8_PORT"); ok {
		c.Server.Port = v
	}
	if v := os.Getenv("CRAZY8_ALLOWED_ORIGINS"); v != "" {
		c.Server.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("CRAZY8_REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("CRAZY8_REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("CRAZY8_POSTGRES_DSN"); v != "" {
		c.Postgres.DSN = v
	}
	if v := os.Getenv("CRAZY8_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func splitList(v string) []string {
	var out []string
	for s := range strings.SplitSeq(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
