package queue

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/receitas-next/internal/config"
	"github.com/receitas-next/internal/constants"

	"github.com/hibiken/asynq"
)

// DefaultQueue 通知等普通任务所在队列
const DefaultQueue = constants.QueueDefault

// ErrQueueDisabled 队列未启用，调用方应改为同步执行
var ErrQueueDisabled = errors.New("queue disabled")

// Client 账本异步任务投递端
type Client struct {
	inner *asynq.Client
}

// NewClient 队列关闭时返回可用但始终报 ErrQueueDisabled 的客户端
func NewClient(cfg *config.QueueConfig) (*Client, error) {
	if cfg == nil || !cfg.Enabled {
		return &Client{}, nil
	}
	return &Client{inner: asynq.NewClient(redisOpt(cfg))}, nil
}

func (c *Client) Enabled() bool {
	return c != nil && c.inner != nil
}

func (c *Client) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.inner.Close()
}

func (c *Client) enqueue(task *asynq.Task, opts ...asynq.Option) error {
	if !c.Enabled() {
		return ErrQueueDisabled
	}
	if _, err := c.inner.Enqueue(task, opts...); err != nil {
		return fmt.Errorf("enqueue %s: %w", task.Type(), err)
	}
	return nil
}

// EnqueueLedgerNotify 投递站内通知，失败最多重试 5 次
func (c *Client) EnqueueLedgerNotify(payload LedgerNotifyPayload, opts ...asynq.Option) error {
	task, err := NewLedgerNotifyTask(payload)
	if err != nil {
		return err
	}
	base := []asynq.Option{asynq.Queue(DefaultQueue), asynq.MaxRetry(5), asynq.Timeout(30 * time.Second)}
	return c.enqueue(task, append(base, opts...)...)
}

// EnqueueMatureCommissions 投递成熟扫描；uniqueFor 内重复投递视为成功
func (c *Client) EnqueueMatureCommissions(payload MatureCommissionsPayload, uniqueFor time.Duration) error {
	task, err := NewMatureCommissionsTask(payload)
	if err != nil {
		return err
	}
	opts := []asynq.Option{asynq.Queue(constants.QueueCritical), asynq.MaxRetry(3)}
	if uniqueFor > 0 {
		opts = append(opts, asynq.Unique(uniqueFor))
	}
	err = c.enqueue(task, opts...)
	if errors.Is(err, asynq.ErrDuplicateTask) {
		return nil
	}
	return err
}

// BuildServerConfig 消费端配置，critical 队列权重高于 default
func BuildServerConfig(cfg *config.QueueConfig) (asynq.RedisClientOpt, asynq.Config) {
	serverCfg := asynq.Config{
		Concurrency: 10,
		Queues:      map[string]int{constants.QueueCritical: 6, DefaultQueue: 3},
	}
	if cfg != nil && cfg.Concurrency > 0 {
		serverCfg.Concurrency = cfg.Concurrency
	}
	if cfg != nil && len(cfg.Queues) > 0 {
		serverCfg.Queues = cfg.Queues
	}
	return redisOpt(cfg), serverCfg
}

func redisOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	opt := asynq.RedisClientOpt{Addr: "127.0.0.1:6379"}
	if cfg == nil {
		return opt
	}
	host, port := strings.TrimSpace(cfg.Host), cfg.Port
	if host == "" {
		host = "127.0.0.1"
	}
	if port <= 0 {
		port = 6379
	}
	opt.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	opt.Password = cfg.Password
	opt.DB = cfg.DB
	return opt
}
