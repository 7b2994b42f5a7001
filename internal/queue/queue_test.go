package queue

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/receitas-next/internal/config"
)

func TestNewLedgerNotifyTask(t *testing.T) {
	task, err := NewLedgerNotifyTask(LedgerNotifyPayload{UserID: 3, Type: "commission_accrued", Title: "t", Message: "m"})
	if err != nil {
		t.Fatalf("create task failed: %v", err)
	}
	if task.Type() != TaskLedgerNotify {
		t.Fatalf("unexpected task type: %s", task.Type())
	}
	var payload LedgerNotifyPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		t.Fatalf("decode payload failed: %v", err)
	}
	if payload.UserID != 3 || payload.Type != "commission_accrued" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestDisabledClientReportsDisabled(t *testing.T) {
	client, err := NewClient(&config.QueueConfig{Enabled: false})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	if client.Enabled() {
		t.Fatalf("client should be disabled")
	}
	if err := client.EnqueueLedgerNotify(LedgerNotifyPayload{UserID: 1}); !errors.Is(err, ErrQueueDisabled) {
		t.Fatalf("expected ErrQueueDisabled, got %v", err)
	}
	if err := client.EnqueueMatureCommissions(MatureCommissionsPayload{}, 0); !errors.Is(err, ErrQueueDisabled) {
		t.Fatalf("expected ErrQueueDisabled, got %v", err)
	}
}

func TestBuildServerConfigDefaults(t *testing.T) {
	opt, cfg := BuildServerConfig(&config.QueueConfig{Host: " redis ", Port: 6380, DB: 2})
	if opt.Addr != "redis:6380" || opt.DB != 2 {
		t.Fatalf("unexpected redis opt: %+v", opt)
	}
	if cfg.Concurrency != 10 || cfg.Queues["critical"] <= cfg.Queues["default"] {
		t.Fatalf("unexpected server config: %+v", cfg)
	}
}
