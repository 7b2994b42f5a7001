package service

import (
	"errors"
	"strings"

	"github.com/receitas-next/internal/i18n"
	"github.com/receitas-next/internal/logger"
	"github.com/receitas-next/internal/models"
	"github.com/receitas-next/internal/queue"
	"github.com/receitas-next/internal/repository"
)

// LedgerNotification 账本站内通知
type LedgerNotification struct {
	UserID  uint
	Type    string
	Title   string
	Message string
}

// NotificationService 站内通知服务
type NotificationService struct {
	repo        repository.NotificationRepository
	queueClient *queue.Client
}

// NewNotificationService 创建通知服务
func NewNotificationService(repo repository.NotificationRepository, queueClient *queue.Client) *NotificationService {
	return &NotificationService{repo: repo, queueClient: queueClient}
}

// Notify 发送通知（尽力而为）：队列可用时异步投递，否则直接落库，失败只记录日志
func (s *NotificationService) Notify(n LedgerNotification) {
	if s == nil || n.UserID == 0 {
		return
	}
	err := s.queueClient.EnqueueLedgerNotify(queue.LedgerNotifyPayload{
		UserID:  n.UserID,
		Type:    n.Type,
		Title:   n.Title,
		Message: n.Message,
	})
	if err == nil {
		return
	}
	if !errors.Is(err, queue.ErrQueueDisabled) {
		logger.Warnw("ledger_notify_enqueue_failed",
			"user_id", n.UserID,
			"type", n.Type,
			"error", err,
		)
	}
	if err := s.Dispatch(n); err != nil {
		logger.Warnw("ledger_notify_dispatch_failed",
			"user_id", n.UserID,
			"type", n.Type,
			"error", err,
		)
	}
}

// Dispatch 写入站内通知（队列消费者与同步回退共用）
func (s *NotificationService) Dispatch(n LedgerNotification) error {
	if s == nil || s.repo == nil || n.UserID == 0 {
		return nil
	}
	title := strings.TrimSpace(n.Title)
	if title == "" {
		title = n.Type
	}
	return s.repo.Create(&models.Notificacao{
		IDUsuario: n.UserID,
		Tipo:      strings.TrimSpace(n.Type),
		Titulo:    title,
		Mensagem:  strings.TrimSpace(n.Message),
	})
}

// List 用户通知列表
func (s *NotificationService) List(filter repository.NotificationListFilter) ([]models.Notificacao, int64, error) {
	if filter.UserID == 0 {
		return []models.Notificacao{}, 0, nil
	}
	return s.repo.List(filter)
}

// MarkRead 标记已读，ids 为空时标记全部
func (s *NotificationService) MarkRead(userID uint, ids []uint) (int64, error) {
	if userID == 0 {
		return 0, ErrNotFound
	}
	return s.repo.MarkRead(userID, ids)
}

func buildLedgerNotification(userID uint, kind string, args ...interface{}) LedgerNotification {
	return LedgerNotification{
		UserID:  userID,
		Type:    kind,
		Title:   i18n.T(i18n.DefaultLocale, "notification."+kind+".title"),
		Message: i18n.Sprintf(i18n.DefaultLocale, "notification."+kind+".message", args...),
	}
}
