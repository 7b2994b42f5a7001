package app

import (
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/receitas-next/internal/config"
	"github.com/receitas-next/internal/logger"

	"go.uber.org/zap"
)

// 进程运行模式
const (
	ModeAll    = "all"    // API 与后台任务同进程
	ModeAPI    = "api"    // 仅 HTTP 接口
	ModeWorker = "worker" // 仅成熟扫描与通知投递
)

const defaultShutdownTimeout = 15 * time.Second

// Options 启动参数
type Options struct {
	Config          *config.Config
	Logger          *zap.SugaredLogger
	Signals         []os.Signal
	ShutdownTimeout time.Duration
	Mode            string
}

// ParseMode 规范化运行模式，空值视为 all
func ParseMode(raw string) (string, error) {
	mode := strings.ToLower(strings.TrimSpace(raw))
	switch mode {
	case "":
		return ModeAll, nil
	case ModeAll, ModeAPI, ModeWorker:
		return mode, nil
	default:
		return "", fmt.Errorf("unknown mode: %s", raw)
	}
}

func (o Options) servesHTTP() bool {
	return o.Mode == ModeAll || o.Mode == ModeAPI
}

func (o Options) runsJobs() bool {
	return o.Mode == ModeAll || o.Mode == ModeWorker
}

func listenAddr(cfg *config.Config) string {
	return net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
}

func normalizeOptions(opts Options) (Options, error) {
	if opts.Logger == nil {
		opts.Logger = logger.S()
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = defaultShutdownTimeout
	}
	mode, err := ParseMode(opts.Mode)
	if err != nil {
		return opts, err
	}
	opts.Mode = mode
	return opts, nil
}
