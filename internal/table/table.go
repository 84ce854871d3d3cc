// Package table 单个牌桌的运行时。
//
// Table 持有权威的 session.GameState，所有修改都经过同一把锁串行执行。
// 电脑出牌、庆祝、结算、发牌等延时动作由 time.AfterFunc 驱动，
// 任何一次修改都会取消尚未触发的定时器并按新状态重新安排。
package table

import (
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/palemoky/gan-deng-yan/internal/config"
	"github.com/palemoky/gan-deng-yan/internal/game/score"
	"github.com/palemoky/gan-deng-yan/internal/game/session"
	"github.com/palemoky/gan-deng-yan/internal/logger"
)

// ErrClosed 牌桌已关闭
var ErrClosed = errors.New("table: closed")

// Options 牌桌节奏与回调
type Options struct {
	BotThink  time.Duration // 电脑思考时间
	Celebrate time.Duration // 出完牌后到结算
	Scoring   time.Duration // 结算展示到下一手发牌
	Deal      time.Duration // 发牌动画

	// Rand 洗牌和选庄的随机源，nil 使用全局随机源
	Rand *rand.Rand

	// OnScored 每手结算后在独立的 goroutine 中调用，用于保存战报
	OnScored func(state session.GameState, res score.Result)
}

// OptionsFromConfig 从配置构造 Options
func OptionsFromConfig(cfg config.GameConfig) Options {
	return Options{
		BotThink:  cfg.BotThink(),
		Celebrate: cfg.Celebrate(),
		Scoring:   cfg.Scoring(),
		Deal:      cfg.Deal(),
	}
}

// Listener 接收每次修改后的快照和版本号
type Listener = func(state session.GameState, version uint64)

// Table 牌桌
type Table struct {
	mu      sync.Mutex
	gs      *session.GameState
	opts    Options
	version uint64
	closed  bool

	timer *time.Timer // 当前唯一的延时动作

	listeners map[int]Listener
	nextID    int
}

// New 创建处于大厅阶段的牌桌
func New(opts Options) *Table {
	gs := session.New()
	gs.SetRand(opts.Rand)
	return &Table{
		gs:        gs,
		opts:      opts,
		listeners: make(map[int]Listener),
	}
}

// Snapshot 当前状态的深拷贝
func (t *Table) Snapshot() session.GameState {
	state, _ := t.VersionedSnapshot()
	return state
}

// VersionedSnapshot 快照和对应的版本号，版本号每次修改加一
func (t *Table) VersionedSnapshot() (session.GameState, uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked(), t.version
}

func (t *Table) snapshotLocked() session.GameState {
	snap := t.gs.Clone()
	snap.SetRand(nil)
	return *snap
}

// Subscribe 订阅状态变化，返回取消函数
func (t *Table) Subscribe(fn func(session.GameState)) func() {
	return t.SubscribeVersioned(func(state session.GameState, _ uint64) { fn(state) })
}

// SubscribeVersioned 订阅状态变化（带版本号）。
// 回调在牌桌的锁内按修改顺序同步调用，不能再调用 Table 的方法，也不应阻塞。
func (t *Table) SubscribeVersioned(fn Listener) func() {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.nextID
	t.nextID++
	t.listeners[id] = fn
	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		delete(t.listeners, id)
	}
}

// Close 停止所有定时器，之后的修改都返回 ErrClosed
func (t *Table) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.closed = true
	t.stopTimer()
}

// update 串行执行一次修改。fn 返回错误时认为状态未变，不通知订阅者。
func (t *Table) update(fn func(gs *session.GameState) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return ErrClosed
	}
	return t.applyLocked(fn)
}

// updateIf 只有版本号仍是 version 时才执行，供定时器使用
func (t *Table) updateIf(version uint64, fn func(gs *session.GameState) error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed || t.version != version {
		return
	}
	if err := t.applyLocked(fn); err != nil {
		logger.LogError("❌ 定时动作失败: %v", err)
	}
}

func (t *Table) applyLocked(fn func(gs *session.GameState) error) error {
	if err := fn(t.gs); err != nil {
		return err
	}

	t.version++
	if err := t.gs.CheckInvariants(); err != nil {
		logger.LogError("❌ 状态不一致 (version %d): %v", t.version, err)
	}

	t.schedule()
	t.notify()
	return nil
}

// notify 每个订阅者拿到独立的拷贝
func (t *Table) notify() {
	for _, fn := range t.listeners {
		fn(t.snapshotLocked(), t.version)
	}
}

func (t *Table) stopTimer() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
