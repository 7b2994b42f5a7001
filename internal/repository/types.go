package repository

import "time"

// UserListFilter 查询用户列表的过滤条件
type UserListFilter struct {
	Page        int
	PageSize    int
	Keyword     string
	Status      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// NotificationListFilter 查询站内通知的过滤条件
type NotificationListFilter struct {
	UserID     uint
	OnlyUnread bool
	Page       int
	PageSize   int
}

// AdminAuditLogListFilter 查询后台审计日志的过滤条件
type AdminAuditLogListFilter struct {
	Page            int
	PageSize        int
	OperatorAdminID uint
	Action          string
	TargetType      string
	TargetID        uint
	CreatedFrom     *time.Time
	CreatedTo       *time.Time
}
