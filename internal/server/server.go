// Package server 房主的 WebSocket 入口：客人通过 /ws 接入牌桌，
// 另外提供健康检查、战报和排行榜的 HTTP 接口。
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/palemoky/gan-deng-yan/internal/apperrors"
	"github.com/palemoky/gan-deng-yan/internal/config"
	"github.com/palemoky/gan-deng-yan/internal/game/session"
	"github.com/palemoky/gan-deng-yan/internal/logger"
	"github.com/palemoky/gan-deng-yan/internal/protocol"
	"github.com/palemoky/gan-deng-yan/internal/storage"
	"github.com/palemoky/gan-deng-yan/internal/transport"
)

const (
	// 建连超限后的封禁时长
	banDuration = time.Minute
	// 监控日志间隔
	monitorInterval = 30 * time.Second
	// 排行榜默认和最大条数
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
)

// StateSource 提供当前牌局状态，table.Table 实现了它
type StateSource interface {
	Snapshot() session.GameState
}

// Endpoint 接收客人连接的一端，netsync.Host 实现了它
type Endpoint interface {
	Handlers() transport.Handlers
	Peers() int
}

// Server 房主的 HTTP/WebSocket 服务
type Server struct {
	cfg      config.ServerConfig
	endpoint Endpoint
	source   StateSource
	store    *storage.ReportStore // 未启用 Redis 时为 nil

	upgrader   websocket.Upgrader
	origins    *OriginChecker
	limiter    *RateLimiter
	msgLimiter *MessageRateLimiter

	// 信号量控制并发连接数
	semaphore chan struct{}
}

// New 创建服务，store 可以为 nil
func New(cfg config.ServerConfig, endpoint Endpoint, source StateSource, store *storage.ReportStore) *Server {
	s := &Server{
		cfg:        cfg,
		endpoint:   endpoint,
		source:     source,
		store:      store,
		origins:    NewOriginChecker(cfg.AllowedOrigins),
		limiter:    NewRateLimiter(cfg.ConnectsPerMinute, banDuration),
		msgLimiter: NewMessageRateLimiter(cfg.MessagesPerSecond),
		semaphore:  make(chan struct{}, max(cfg.MaxConnections, 1)),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.origins.Check,
	}
	return s
}

// Handler 路由
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /report", s.handleReport)
	mux.HandleFunc("GET /leaderboard", s.handleLeaderboard)
	return mux
}

// Run 监听并服务，ctx 结束时优雅关闭
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve 在给定的 listener 上服务
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go s.monitor(ctx)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.LogInfo("🚀 房间已开在 ws://%s/ws (CPU核心数: %d)", ln.Addr(), runtime.NumCPU())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.LogInfo("服务器已关闭")
	return nil
}

// ActiveConnections 当前占用的连接数
func (s *Server) ActiveConnections() int {
	return len(s.semaphore)
}

// handleWebSocket 客人接入
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	clientIP := GetClientIP(r)

	if !s.origins.Check(r) {
		logger.LogWarn("🚫 来源验证失败: %s (IP: %s)", r.Header.Get("Origin"), clientIP)
		http.Error(w, "Origin not allowed", http.StatusForbidden)
		return
	}
	if !s.limiter.Allow(clientIP) {
		http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
		return
	}

	// 信号量在通道关闭时释放
	select {
	case s.semaphore <- struct{}{}:
	default:
		logger.LogWarn("🚫 达到最大连接数限制 (%d), IP: %s", s.cfg.MaxConnections, clientIP)
		http.Error(w, "Server Full", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		<-s.semaphore
		logger.LogError("WebSocket 升级失败: %v", err)
		return
	}

	peerID := r.URL.Query().Get(transport.PeerQueryKey)
	if peerID == "" {
		peerID = uuid.NewString()
	}
	logger.WithFields(map[string]any{"peer": peerID, "ip": clientIP}).Info("✅ 客人已连接")

	transport.NewWSChannel(conn, peerID, s.guard(s.endpoint.Handlers())).Start()
}

// guard 在客人的回调外加一层限速和连接计数
func (s *Server) guard(h transport.Handlers) transport.Handlers {
	inner := h
	h.OnData = func(ch transport.Channel, msg *protocol.Message) {
		if !s.msgLimiter.Allow(ch.PeerID()) {
			_ = ch.Send(apperrors.ToMessage(apperrors.ErrRateLimited))
			return
		}
		if inner.OnData != nil {
			inner.OnData(ch, msg)
		}
	}
	h.OnClose = func(ch transport.Channel) {
		<-s.semaphore
		s.msgLimiter.Remove(ch.PeerID())
		if inner.OnClose != nil {
			inner.OnClose(ch)
		}
	}
	return h
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleReport 当前房间的战报
func (s *Server) handleReport(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, storage.BuildReport(s.source.Snapshot()))
}

// handleLeaderboard 排行榜，?limit=N
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "leaderboard disabled", http.StatusNotFound)
		return
	}

	limit := defaultLeaderboardLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = min(n, maxLeaderboardLimit)
	}

	entries, err := s.store.Leaderboard(r.Context(), limit)
	if err != nil {
		logger.LogError("读取排行榜失败: %v", err)
		http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
		return
	}
	if entries == nil {
		entries = []storage.LeaderboardEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.LogError("写出 JSON 失败: %v", err)
	}
}

// monitor 定期记录服务状态并清理限速记录
func (s *Server) monitor(ctx context.Context) {
	ticker := time.NewTicker(monitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			logger.LogInfo("📊 [监控] 客人: %d | Goroutines: %d | 活跃连接: %d/%d | 内存: %.2f MB",
				s.endpoint.Peers(), runtime.NumGoroutine(), s.ActiveConnections(), s.cfg.MaxConnections,
				float64(m.Alloc)/1024/1024)
			s.limiter.Cleanup()
		}
	}
}
