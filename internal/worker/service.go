package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/receitas-next/internal/config"
	"github.com/receitas-next/internal/constants"
	"github.com/receitas-next/internal/logger"
	"github.com/receitas-next/internal/queue"

	"github.com/hibiken/asynq"
)

const (
	defaultMaturationInterval = time.Hour
	maturationSourceSchedule  = "schedule"
	maturationSourceBoot      = "boot"
)

// Service 消费队列任务，并用 asynq 调度器定期投递成熟扫描
type Service struct {
	server    *asynq.Server
	scheduler *asynq.Scheduler
	mux       *asynq.ServeMux
	consumer  *Consumer
	interval  time.Duration
}

// NewService 仅在队列启用时可用
func NewService(cfg *config.Config, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Queue.Enabled {
		return nil, queue.ErrQueueDisabled
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(&cfg.Queue)
	serverCfg.Logger = logger.S()
	serverCfg.ErrorHandler = asynq.ErrorHandlerFunc(func(_ context.Context, task *asynq.Task, err error) {
		logger.Warnw("worker_task_failed", "task", task.Type(), "error", err)
	})

	mux := asynq.NewServeMux()
	consumer.Register(mux)

	interval := MaturationInterval(cfg.Ledger)
	scheduler := asynq.NewScheduler(opt, &asynq.SchedulerOpts{
		Logger: logger.S(),
		PostEnqueueFunc: func(info *asynq.TaskInfo, err error) {
			if err != nil && !errors.Is(err, asynq.ErrDuplicateTask) {
				logger.Warnw("worker_maturation_schedule_failed", "error", err)
			}
		},
	})
	task, err := queue.NewMatureCommissionsTask(queue.MatureCommissionsPayload{Source: maturationSourceSchedule})
	if err != nil {
		return nil, err
	}
	// 多副本共用同一 Redis 时，Unique 保证同一周期只投递一次
	if _, err := scheduler.Register(fmt.Sprintf("@every %s", interval), task,
		asynq.Queue(constants.QueueCritical), asynq.MaxRetry(3), asynq.Unique(interval/2)); err != nil {
		return nil, fmt.Errorf("register maturation schedule: %w", err)
	}

	return &Service{
		server:    asynq.NewServer(opt, serverCfg),
		scheduler: scheduler,
		mux:       mux,
		consumer:  consumer,
		interval:  interval,
	}, nil
}

// MaturationInterval 成熟扫描周期，未配置时每小时
func MaturationInterval(cfg config.LedgerConfig) time.Duration {
	if cfg.MaturationIntervalMinutes <= 0 {
		return defaultMaturationInterval
	}
	return time.Duration(cfg.MaturationIntervalMinutes) * time.Minute
}

func (s *Service) Name() string { return "worker" }

// Start 启动消费与调度，阻塞到 ctx 结束
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil {
		return errors.New("worker not initialized")
	}
	if err := s.server.Start(s.mux); err != nil {
		return fmt.Errorf("start asynq server: %w", err)
	}
	if err := s.scheduler.Start(); err != nil {
		return fmt.Errorf("start asynq scheduler: %w", err)
	}
	logger.Infow("worker_started", "maturation_interval", s.interval)
	s.consumer.enqueueMaturation(ctx, maturationSourceBoot)
	<-ctx.Done()
	return nil
}

// Stop 先停调度再停消费，进行中的任务会被等待
func (s *Service) Stop(context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	s.scheduler.Shutdown()
	s.server.Shutdown()
	return nil
}

// enqueueMaturation 投递一次扫描，队列不可用时当场执行
func (c *Consumer) enqueueMaturation(ctx context.Context, source string) {
	err := c.QueueClient.EnqueueMatureCommissions(queue.MatureCommissionsPayload{Source: source}, time.Minute)
	if err == nil {
		return
	}
	if !errors.Is(err, queue.ErrQueueDisabled) {
		logger.Warnw("worker_maturation_enqueue_failed", "source", source, "error", err)
	}
	c.matureInline(ctx)
}
