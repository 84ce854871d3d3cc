package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/palemoky/gan-deng-yan/internal/config"
	"github.com/palemoky/gan-deng-yan/internal/game/session"
	"github.com/palemoky/gan-deng-yan/internal/logger"
	"github.com/palemoky/gan-deng-yan/internal/netsync"
	"github.com/palemoky/gan-deng-yan/internal/sound"
	"github.com/palemoky/gan-deng-yan/internal/table"
	"github.com/palemoky/gan-deng-yan/internal/transport"
	"github.com/palemoky/gan-deng-yan/internal/ui"
	"github.com/palemoky/gan-deng-yan/internal/ui/common"
	"github.com/palemoky/gan-deng-yan/internal/ui/model"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "配置文件路径")
	serverAddr := flag.String("server", "", "房主地址，如 localhost:1780；为空时单机和电脑对战")
	name := flag.String("name", "", "玩家名字，为空时随机生成")
	seats := flag.Int("seats", 0, "单机模式的座位数（含电脑），为 0 时取配置")
	flag.Parse()

	if err := config.LoadEnv(); err != nil {
		log.Printf("读取 .env 失败: %v", err)
	}
	cfg, err := loadConfig(*configPath, *seats)
	if err != nil {
		log.Fatalf("加载配置文件失败: %v", err)
	}

	if err := logger.Init(); err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer logger.Close()

	sounds := sound.NewSoundManager()
	if err := sounds.Init(sound.DefaultDir); err != nil {
		logger.LogWarn("音效不可用: %v", err)
	}
	defer sounds.Close()

	if *name == "" {
		*name = common.GenerateNickname()
	}

	if *serverAddr == "" {
		runLocal(cfg.Game, *name, sounds)
		return
	}
	runGuest(cfg.Game, fmt.Sprintf("ws://%s/ws", *serverAddr), *name, sounds)
}

// loadConfig 读配置文件，命令行指定的座位数优先
func loadConfig(path string, seats int) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, err
	}
	if seats > 0 {
		cfg.Game.Seats = seats
	}
	return cfg, nil
}

// runLocal 单机：本地牌桌，其余座位由电脑补足
func runLocal(game config.GameConfig, name string, sounds *sound.SoundManager) {
	tbl := table.New(table.OptionsFromConfig(game))
	defer tbl.Close()

	if _, err := tbl.SeatLocal(name, session.RoleLocal); err != nil {
		log.Fatalf("入座失败: %v", err)
	}

	m := ui.NewGameModel(tbl, model.Options{Seats: game.Seats, Sounds: sounds})
	defer m.Close()
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		log.Fatalf("启动客户端时出错: %v", err)
	}
}

// runGuest 以客人身份加入房主的牌桌
func runGuest(game config.GameConfig, serverURL, name string, sounds *sound.SoundManager) {
	g := netsync.NewGuest(uuid.NewString(), name)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	ch, err := transport.Dial(ctx, serverURL, g.PeerID(), g.Handlers())
	cancel()
	if err != nil {
		log.Fatalf("连接房主失败: %v", err)
	}
	defer ch.Close()

	m := ui.NewGameModel(g, model.Options{Sounds: sounds})
	defer m.Close()
	p := tea.NewProgram(m, tea.WithAltScreen())

	unsubscribe := g.OnNotice(func(n netsync.Notice) {
		// 回调在通道的读协程里，Send 会阻塞到程序开始处理消息
		go p.Send(model.NoticeMsg{Text: n.Text, IsError: n.IsError, Duration: n.Duration})
	})
	defer unsubscribe()

	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	go g.Watch(watchCtx, 3*game.Heartbeat())

	if _, err := p.Run(); err != nil {
		log.Fatalf("启动客户端时出错: %v", err)
	}
}
