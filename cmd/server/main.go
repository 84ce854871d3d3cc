package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/palemoky/gan-deng-yan/internal/config"
	"github.com/palemoky/gan-deng-yan/internal/game/score"
	"github.com/palemoky/gan-deng-yan/internal/game/session"
	"github.com/palemoky/gan-deng-yan/internal/logger"
	"github.com/palemoky/gan-deng-yan/internal/netsync"
	"github.com/palemoky/gan-deng-yan/internal/server"
	"github.com/palemoky/gan-deng-yan/internal/sound"
	"github.com/palemoky/gan-deng-yan/internal/storage"
	"github.com/palemoky/gan-deng-yan/internal/table"
	"github.com/palemoky/gan-deng-yan/internal/ui"
	"github.com/palemoky/gan-deng-yan/internal/ui/model"
)

// 房主进程：本机玩家坐庄开房，客人通过 WebSocket 加入
func main() {
	configPath := flag.String("config", "configs/config.yaml", "配置文件路径")
	name := flag.String("name", "房主", "玩家名字")
	flag.Parse()

	if err := config.LoadEnv(); err != nil {
		log.Printf("读取 .env 失败: %v", err)
	}
	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		log.Fatalf("加载配置文件失败: %v", err)
	}
	if err := logger.Init(); err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := openStore(ctx, cfg.Redis)

	opts := table.OptionsFromConfig(cfg.Game)
	if store != nil {
		opts.OnScored = func(state session.GameState, res score.Result) {
			saveCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if err := store.SaveScored(saveCtx, state, res); err != nil {
				logger.LogError("保存战报失败: %v", err)
			}
		}
	}
	tbl := table.New(opts)
	defer tbl.Close()

	if _, err := tbl.SeatLocal(*name, session.RoleHost); err != nil {
		log.Fatalf("入座失败: %v", err)
	}
	roomID := strings.ToUpper(uuid.NewString()[:6])
	if err := tbl.OpenRoom(roomID); err != nil {
		log.Fatalf("开房失败: %v", err)
	}

	host := netsync.NewHost(tbl)
	defer host.Close()
	srv := server.New(cfg.Server, host, tbl, store)

	sounds := sound.NewSoundManager()
	if err := sounds.Init(sound.DefaultDir); err != nil {
		logger.LogWarn("音效不可用: %v", err)
	}
	defer sounds.Close()

	m := ui.NewGameModel(tbl, model.Options{Seats: cfg.Game.Seats, Sounds: sounds})
	defer m.Close()

	g, gctx := errgroup.WithContext(ctx)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(gctx))
	g.Go(func() error { return srv.Run(gctx) })
	g.Go(func() error {
		host.Run(gctx, cfg.Game.Heartbeat())
		return nil
	})
	g.Go(func() error {
		defer stop()
		_, err := p.Run()
		return err
	})

	if err := g.Wait(); err != nil && !isShutdown(err) {
		log.Fatalf("房间异常退出: %v", err)
	}
}

// openStore 启用 Redis 时连接战报存储，连不上则不保存战报
func openStore(ctx context.Context, cfg config.RedisConfig) *storage.ReportStore {
	if !cfg.Enabled {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	store := storage.NewReportStore(client)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		logger.LogWarn("Redis 不可用，不保存战报: %v", err)
		_ = client.Close()
		return nil
	}
	logger.LogInfo("📦 战报保存到 Redis %s", cfg.Addr)
	return store
}

// isShutdown 信号或房主退出导致的程序结束不算错误
func isShutdown(err error) bool {
	return errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, context.Canceled)
}
