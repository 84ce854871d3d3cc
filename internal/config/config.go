package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// 环境变量覆盖项
const (
	EnvRedisAddr = "GDY_REDIS_ADDR"
	EnvPort      = "GDY_PORT"
)

// Config 主机端配置
type Config struct {
	Server ServerConfig `yaml:"server"`
	Redis  RedisConfig  `yaml:"redis"`
	Game   GameConfig   `yaml:"game"`
}

// ServerConfig WebSocket 服务器配置
type ServerConfig struct {
	Host              string   `yaml:"host"`
	Port              int      `yaml:"port"`
	MaxConnections    int      `yaml:"max_connections"`
	AllowedOrigins    []string `yaml:"allowed_origins"`     // "*" 表示不限制
	ConnectsPerMinute int      `yaml:"connects_per_minute"` // 单个 IP 每分钟建连次数
	MessagesPerSecond int      `yaml:"messages_per_second"` // 单个客人每秒消息数
}

// Addr 监听地址
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RedisConfig Redis 配置，未启用时不保存战报
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// GameConfig 牌桌节奏
type GameConfig struct {
	Seats            int `yaml:"seats"`             // 座位数（含电脑）
	BotThinkMs       int `yaml:"bot_think_ms"`      // 电脑思考时间
	CelebrateMs      int `yaml:"celebrate_ms"`      // 出完牌后的庆祝时间
	ScoringMs        int `yaml:"scoring_ms"`        // 结算展示时间
	DealMs           int `yaml:"deal_ms"`           // 发牌动画时间
	HeartbeatSeconds int `yaml:"heartbeat_seconds"` // 主机心跳间隔
}

// BotThink 电脑思考时长
func (c *GameConfig) BotThink() time.Duration {
	return time.Duration(c.BotThinkMs) * time.Millisecond
}

// Celebrate 庆祝阶段时长
func (c *GameConfig) Celebrate() time.Duration {
	return time.Duration(c.CelebrateMs) * time.Millisecond
}

// Scoring 结算阶段时长
func (c *GameConfig) Scoring() time.Duration {
	return time.Duration(c.ScoringMs) * time.Millisecond
}

// Deal 发牌阶段时长
func (c *GameConfig) Deal() time.Duration {
	return time.Duration(c.DealMs) * time.Millisecond
}

// Heartbeat 心跳间隔
func (c *GameConfig) Heartbeat() time.Duration {
	return time.Duration(c.HeartbeatSeconds) * time.Second
}

// Load 加载配置文件，未设置的字段使用默认值，最后应用环境变量覆盖
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.fillDefaults()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault 配置文件不存在时使用默认配置
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = Default()
		return cfg, cfg.applyEnv()
	}
	return cfg, err
}

// LoadEnv 读取 .env 文件到环境变量，已存在的变量不会被覆盖；文件不存在时忽略
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// applyEnv 环境变量优先于配置文件
func (c *Config) applyEnv() error {
	if addr := os.Getenv(EnvRedisAddr); addr != "" {
		c.Redis.Addr = addr
		c.Redis.Enabled = true
	}
	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPort, err)
		}
		c.Server.Port = port
	}
	return nil
}

// fillDefaults 显式写成 0 的字段回退到默认值
func (c *Config) fillDefaults() {
	d := Default()
	if c.Server.Host == "" {
		c.Server.Host = d.Server.Host
	}
	if c.Server.Port == 0 {
		c.Server.Port = d.Server.Port
	}
	if c.Server.MaxConnections == 0 {
		c.Server.MaxConnections = d.Server.MaxConnections
	}
	if c.Server.ConnectsPerMinute == 0 {
		c.Server.ConnectsPerMinute = d.Server.ConnectsPerMinute
	}
	if c.Server.MessagesPerSecond == 0 {
		c.Server.MessagesPerSecond = d.Server.MessagesPerSecond
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = d.Redis.Addr
	}
	if c.Game.Seats == 0 {
		c.Game.Seats = d.Game.Seats
	}
	if c.Game.BotThinkMs == 0 {
		c.Game.BotThinkMs = d.Game.BotThinkMs
	}
	if c.Game.CelebrateMs == 0 {
		c.Game.CelebrateMs = d.Game.CelebrateMs
	}
	if c.Game.ScoringMs == 0 {
		c.Game.ScoringMs = d.Game.ScoringMs
	}
	if c.Game.DealMs == 0 {
		c.Game.DealMs = d.Game.DealMs
	}
	if c.Game.HeartbeatSeconds == 0 {
		c.Game.HeartbeatSeconds = d.Game.HeartbeatSeconds
	}
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              1780,
			MaxConnections:    64,
			AllowedOrigins:    []string{"*"},
			ConnectsPerMinute: 30,
			MessagesPerSecond: 10,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Game: GameConfig{
			Seats:            4,
			BotThinkMs:       800,
			CelebrateMs:      2500,
			ScoringMs:        4000,
			DealMs:           1200,
			HeartbeatSeconds: 10,
		},
	}
}
