package service

import (
	"strings"
	"time"

	"github.com/receitas-next/internal/logger"
	"github.com/receitas-next/internal/models"
	"github.com/receitas-next/internal/repository"
)

// AdminAuditRecordInput 后台审计记录输入
type AdminAuditRecordInput struct {
	OperatorAdminID  uint
	OperatorUsername string
	Action           string
	TargetType       string
	TargetID         uint
	RequestID        string
	Detail           models.JSON
}

// AdminAuditService 后台操作审计服务
type AdminAuditService struct {
	repo repository.AdminAuditLogRepository
	now  func() time.Time
}

// NewAdminAuditService 创建后台审计服务
func NewAdminAuditService(repo repository.AdminAuditLogRepository) *AdminAuditService {
	return &AdminAuditService{repo: repo, now: time.Now}
}

// Record 写入审计日志，失败只记录告警，不影响已提交的业务操作
func (s *AdminAuditService) Record(input AdminAuditRecordInput) {
	if s == nil || s.repo == nil {
		return
	}
	action := strings.TrimSpace(input.Action)
	if input.OperatorAdminID == 0 || action == "" {
		return
	}

	item := &models.AdminAuditLog{
		OperatorAdminID:  input.OperatorAdminID,
		OperatorUsername: strings.TrimSpace(input.OperatorUsername),
		Action:           action,
		TargetType:       strings.TrimSpace(input.TargetType),
		RequestID:        strings.TrimSpace(input.RequestID),
		DetailJSON:       input.Detail,
		CreatedAt:        s.now(),
	}
	if input.TargetID != 0 {
		targetID := input.TargetID
		item.TargetID = &targetID
	}
	if err := s.repo.Create(item); err != nil {
		logger.Warnw("admin_audit_record_failed",
			"operator_admin_id", input.OperatorAdminID,
			"action", action,
			"target_type", item.TargetType,
			"target_id", input.TargetID,
			"error", err,
		)
	}
}

// ListForAdmin 管理端查询审计日志
func (s *AdminAuditService) ListForAdmin(filter repository.AdminAuditLogListFilter) ([]models.AdminAuditLog, int64, error) {
	if s == nil || s.repo == nil {
		return []models.AdminAuditLog{}, 0, nil
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.PageSize > 100 {
		filter.PageSize = 100
	}
	return s.repo.ListAdmin(filter)
}
