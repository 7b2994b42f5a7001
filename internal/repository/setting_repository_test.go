package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/receitas-next/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func TestSettingRepositoryUpsertOverwrites(t *testing.T) {
	dsn := fmt.Sprintf("file:setting_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Setting{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	repo := NewSettingRepository(db)

	missing, err := repo.GetByKey("ledger_config")
	if err != nil || missing != nil {
		t.Fatalf("expected nil for missing key, got %+v err=%v", missing, err)
	}

	if _, err := repo.Upsert("ledger_config", models.JSON{"commission_value": "9.90"}); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}
	if _, err := repo.Upsert("ledger_config", models.JSON{"commission_value": "12.00"}); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	var count int64
	if err := db.Model(&models.Setting{}).Count(&count).Error; err != nil {
		t.Fatalf("count settings failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected single row, got %d", count)
	}
	stored, err := repo.GetByKey("ledger_config")
	if err != nil || stored == nil {
		t.Fatalf("reload failed: %+v err=%v", stored, err)
	}
	if stored.ValueJSON["commission_value"] != "12.00" {
		t.Fatalf("expected overwritten value, got %+v", stored.ValueJSON)
	}
}
