package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/receitas-next/internal/logger"
)

// MaturationScheduler 队列关闭时的进程内成熟扫描
type MaturationScheduler struct {
	consumer *Consumer
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewMaturationScheduler 创建进程内成熟扫描
func NewMaturationScheduler(consumer *Consumer, interval time.Duration) (*MaturationScheduler, error) {
	if consumer == nil || consumer.CommissionService == nil {
		return nil, errors.New("commission service is nil")
	}
	return &MaturationScheduler{consumer: consumer, interval: interval}, nil
}

// Name 服务名称
func (s *MaturationScheduler) Name() string {
	return "maturation"
}

// Start 阻塞运行直至 ctx 取消或 Stop
func (s *MaturationScheduler) Start(ctx context.Context) error {
	if s == nil || s.consumer == nil {
		return errors.New("maturation scheduler not initialized")
	}
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.mu.Lock()
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	defer close(done)
	runMaturationLoop(runCtx, s.interval, s.consumer.matureInline)
	return nil
}

// Stop 停止扫描并等待当前一轮结束
func (s *MaturationScheduler) Stop(ctx context.Context) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Consumer) matureInline(ctx context.Context) {
	if _, err := c.CommissionService.MatureDueCommissions(ctx, c.now()); err != nil {
		logger.Warnw("worker_maturation_inline_failed", "error", err)
	}
}

// runMaturationLoop 启动即执行一轮，之后按周期执行
func runMaturationLoop(ctx context.Context, interval time.Duration, runOnce func(context.Context)) {
	if interval <= 0 {
		interval = defaultMaturationInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		runOnce(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
