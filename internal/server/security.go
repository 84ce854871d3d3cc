package server

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/palemoky/gan-deng-yan/internal/logger"
)

// RateLimiter 按 IP 限制建连频率，超限后封禁一段时间
type RateLimiter struct {
	requests map[string]*clientRate
	mu       sync.Mutex

	maxPerMinute int
	banDuration  time.Duration
	now          func() time.Time
}

type clientRate struct {
	count       int
	windowStart time.Time
	bannedUntil time.Time
}

// NewRateLimiter 创建建连限速器
func NewRateLimiter(maxPerMinute int, banDuration time.Duration) *RateLimiter {
	return &RateLimiter{
		requests:     make(map[string]*clientRate),
		maxPerMinute: maxPerMinute,
		banDuration:  banDuration,
		now:          time.Now,
	}
}

// Allow 检查是否允许该 IP 建连
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rate, ok := rl.requests[ip]
	if !ok {
		rl.requests[ip] = &clientRate{count: 1, windowStart: now}
		return true
	}

	if now.Before(rate.bannedUntil) {
		return false
	}
	if now.Sub(rate.windowStart) >= time.Minute {
		rate.count = 0
		rate.windowStart = now
	}

	rate.count++
	if rate.count > rl.maxPerMinute {
		rate.bannedUntil = now.Add(rl.banDuration)
		logger.LogWarn("⚠️ IP %s 建连过于频繁，封禁 %v", ip, rl.banDuration)
		return false
	}
	return true
}

// IsBanned 检查 IP 是否被封禁
func (rl *RateLimiter) IsBanned(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rate, ok := rl.requests[ip]
	return ok && rl.now().Before(rate.bannedUntil)
}

// Cleanup 清除长时间没有活动的记录
func (rl *RateLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for ip, rate := range rl.requests {
		if now.Sub(rate.windowStart) > 10*time.Minute && now.After(rate.bannedUntil) {
			delete(rl.requests, ip)
		}
	}
}

// MessageRateLimiter 限制单个客人每秒发送的消息数
type MessageRateLimiter struct {
	mu     sync.Mutex
	limits map[string]*messageRate

	maxPerSecond int
	now          func() time.Time
}

type messageRate struct {
	count     int
	lastReset time.Time
}

// NewMessageRateLimiter 创建消息限速器
func NewMessageRateLimiter(maxPerSecond int) *MessageRateLimiter {
	return &MessageRateLimiter{
		limits:       make(map[string]*messageRate),
		maxPerSecond: maxPerSecond,
		now:          time.Now,
	}
}

// Allow 检查是否允许 peer 再发一条消息
func (ml *MessageRateLimiter) Allow(peerID string) bool {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	now := ml.now()
	rate, ok := ml.limits[peerID]
	if !ok || now.Sub(rate.lastReset) >= time.Second {
		ml.limits[peerID] = &messageRate{count: 1, lastReset: now}
		return true
	}

	rate.count++
	return rate.count <= ml.maxPerSecond
}

// Remove 客人断开后清除记录
func (ml *MessageRateLimiter) Remove(peerID string) {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	delete(ml.limits, peerID)
}

// OriginChecker 来源验证
type OriginChecker struct {
	allowed  map[string]bool
	allowAll bool
}

// NewOriginChecker 创建来源验证器，"*" 表示不限制
func NewOriginChecker(origins []string) *OriginChecker {
	oc := &OriginChecker{allowed: make(map[string]bool)}
	for _, origin := range origins {
		if origin == "*" {
			oc.allowAll = true
			return oc
		}
		oc.allowed[strings.ToLower(origin)] = true
	}
	return oc
}

// Check 检查请求来源
func (oc *OriginChecker) Check(r *http.Request) bool {
	if oc.allowAll {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		// 终端客户端不带 Origin
		return true
	}
	return oc.allowed[strings.ToLower(origin)]
}

// GetClientIP 获取客户端真实 IP
func GetClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
