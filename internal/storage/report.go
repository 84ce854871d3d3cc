// Package storage 战报与排行榜的 Redis 存储。
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/palemoky/gan-deng-yan/internal/game/score"
	"github.com/palemoky/gan-deng-yan/internal/game/session"
)

const (
	// Redis key
	reportKeyPrefix = "gdy:report:"
	leaderboardKey  = "gdy:leaderboard"
	handsKey        = "gdy:hands"

	// 战报过期时间
	reportExpiration = 24 * time.Hour
)

// ReportPlayer 战报中的玩家
type ReportPlayer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	IsAI  bool   `json:"isAI"`
	Score int    `json:"score"`
}

// Report 一个房间的战报：总分和每手的得分记录
type Report struct {
	RoomID     string           `json:"roomId"`
	HandNumber int              `json:"handNumber"`
	Players    []ReportPlayer   `json:"players"`
	History    []map[string]int `json:"history"`
	UpdatedAt  int64            `json:"updatedAt"`
}

// BuildReport 从牌局状态生成战报
func BuildReport(state session.GameState) *Report {
	r := &Report{
		RoomID:     state.Network.RoomID,
		HandNumber: state.HandNumber,
		Players:    make([]ReportPlayer, len(state.Players)),
		History:    state.GameHistory,
		UpdatedAt:  time.Now().Unix(),
	}
	for i, p := range state.Players {
		r.Players[i] = ReportPlayer{ID: p.ID, Name: p.Name, IsAI: p.IsAI, Score: state.Scores[p.ID]}
	}
	if r.History == nil {
		r.History = []map[string]int{}
	}
	return r
}

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	Rank  int    `json:"rank"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// ReportStore Redis 战报存储
type ReportStore struct {
	client *redis.Client
}

// NewReportStore 创建战报存储
func NewReportStore(client *redis.Client) *ReportStore {
	return &ReportStore{client: client}
}

// Ping 检查 Redis 是否可用
func (rs *ReportStore) Ping(ctx context.Context) error {
	return rs.client.Ping(ctx).Err()
}

// SaveReport 保存房间战报
func (rs *ReportStore) SaveReport(ctx context.Context, r *Report) error {
	if r == nil || r.RoomID == "" {
		return nil
	}

	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("序列化战报失败: %w", err)
	}
	return rs.client.Set(ctx, reportKeyPrefix+r.RoomID, data, reportExpiration).Err()
}

// LoadReport 读取房间战报，不存在时返回 nil
func (rs *ReportStore) LoadReport(ctx context.Context, roomID string) (*Report, error) {
	data, err := rs.client.Get(ctx, reportKeyPrefix+roomID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("反序列化战报失败: %w", err)
	}
	return &r, nil
}

// RecordHand 把一手的得分累加到排行榜，电脑玩家不上榜
func (rs *ReportStore) RecordHand(ctx context.Context, state session.GameState, res score.Result) error {
	pipe := rs.client.TxPipeline()
	for _, p := range state.Players {
		if p.IsAI {
			continue
		}
		delta, ok := res.Deltas[p.ID]
		if !ok {
			continue
		}
		pipe.ZIncrBy(ctx, leaderboardKey, float64(delta), p.Name)
	}
	pipe.Incr(ctx, handsKey)
	_, err := pipe.Exec(ctx)
	return err
}

// SaveScored 结算后的完整保存：战报和排行榜
func (rs *ReportStore) SaveScored(ctx context.Context, state session.GameState, res score.Result) error {
	if err := rs.SaveReport(ctx, BuildReport(state)); err != nil {
		return err
	}
	return rs.RecordHand(ctx, state, res)
}

// Leaderboard 前 limit 名
func (rs *ReportStore) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		return nil, nil
	}
	results, err := rs.client.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, len(results))
	for i, z := range results {
		name, _ := z.Member.(string)
		entries[i] = LeaderboardEntry{Rank: i + 1, Name: name, Score: int(z.Score)}
	}
	return entries, nil
}

// HandsPlayed 累计结算的手数
func (rs *ReportStore) HandsPlayed(ctx context.Context) (int64, error) {
	n, err := rs.client.Get(ctx, handsKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}
