package app

import (
	"errors"

	"github.com/receitas-next/internal/config"
	"github.com/receitas-next/internal/logger"
	"github.com/receitas-next/internal/provider"
	"github.com/receitas-next/internal/router"
	"github.com/receitas-next/internal/worker"
)

// BuildRunner 构建服务运行器
func BuildRunner(cfg *config.Config, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	opts, err := normalizeOptions(Options{Config: cfg, Mode: mode})
	if err != nil {
		return nil, err
	}

	container := provider.NewContainer(cfg)

	var services []Service

	// 初始化 HTTP 服务
	if opts.servesHTTP() {
		engine := router.SetupRouter(cfg, container)
		services = append(services, NewHTTPService(listenAddr(cfg), engine))
	}

	// 初始化 Worker 服务；队列关闭时退化为进程内成熟扫描
	if opts.runsJobs() {
		consumer := worker.NewConsumer(container)
		if cfg.Queue.Enabled && container.QueueClient != nil {
			workerService, err := worker.NewService(cfg, consumer)
			if err != nil {
				container.Close()
				return nil, err
			}
			services = append(services, workerService)
		} else {
			logger.Warnw("app_queue_disabled_inline_maturation", "mode", opts.Mode)
			scheduler, err := worker.NewMaturationScheduler(consumer, worker.MaturationInterval(cfg.Ledger))
			if err != nil {
				container.Close()
				return nil, err
			}
			services = append(services, scheduler)
		}
	}

	if len(services) == 0 {
		container.Close()
		return nil, errors.New("no services initialized (check mode and config)")
	}

	return NewRunner(services...).WithCleanup(container.Close), nil
}

// Run 应用启动入口
func Run(opts Options) error {
	opts, err := normalizeOptions(opts)
	if err != nil {
		return err
	}
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	runner, err := BuildRunner(opts.Config, opts.Mode)
	if err != nil {
		return err
	}

	opts.Logger.Infow("app_start", "addr", listenAddr(opts.Config), "mode", opts.Mode, "queue", opts.Config.Queue.Enabled)
	return RunWithOptions(runner, opts)
}
