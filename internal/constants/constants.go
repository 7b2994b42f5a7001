package constants

// 佣金状态常量（pending -> available -> paid）
const (
	CommissionStatusPending   = "pending"
	CommissionStatusAvailable = "available"
	CommissionStatusPaid      = "paid"
)

// 提现状态常量
const (
	WithdrawalStatusPending  = "pendente"
	WithdrawalStatusApproved = "aprovado"
	WithdrawalStatusRejected = "rejeitado"
)

// PaymentStatusApproved 只记录网关确认成功的支付
const PaymentStatusApproved = "approved"

// 支付流程（网关）常量，决定佣金成熟天数
const (
	PaymentFlowStripe      = "stripe"
	PaymentFlowMercadoPago = "mercadopago"
	PaymentFlowAsaas       = "asaas"
	PaymentFlowDefault     = "default"
)

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 通知类型常量
const (
	NotificationTypeCommissionAccrued  = "commission_accrued"
	NotificationTypeCommissionMatured  = "commission_matured"
	NotificationTypeBalanceReleased    = "balance_released"
	NotificationTypeWithdrawalApproved = "withdrawal_approved"
	NotificationTypeWithdrawalRejected = "withdrawal_rejected"
)

// 账本事件路由键
const (
	LedgerEventCommissionAccrued   = "commission.accrued"
	LedgerEventCommissionMatured   = "commission.matured"
	LedgerEventBalanceReleased     = "balance.released"
	LedgerEventWithdrawalRequested = "withdrawal.requested"
	LedgerEventWithdrawalProcessed = "withdrawal.processed"
)

// 队列名称常量
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

// 队列任务类型常量
const (
	TaskLedgerNotify           = "ledger:notify"
	TaskLedgerMatureCommission = "ledger:mature_commissions"
)

// 设置键常量
const (
	SettingKeyLedgerConfig = "ledger_config"
)

// 上下文键常量
const (
	ContextKeyUserID  = "user_id"
	ContextKeyAdminID = "admin_id"
)

// 后台审计动作常量
const (
	AuditActionWithdrawalProcess = "withdrawal.process"
	AuditActionBalanceRelease    = "balance.release"
	AuditActionBalanceRecompute  = "balance.recompute"
	AuditActionCommissionMature  = "commission.mature"
	AuditActionLedgerSettings    = "settings.ledger.update"
	AuditActionAdminRolesAssign  = "authz.admin_roles.assign"
	AuditActionUserStatus        = "usuario.status"
	AuditActionPolicyGrant       = "authz.policy.grant"
	AuditActionPolicyRevoke      = "authz.policy.revoke"
)

// 审计目标类型常量
const (
	AuditTargetWithdrawal = "saque"
	AuditTargetUser       = "usuario"
	AuditTargetAdmin      = "admin"
	AuditTargetSetting    = "setting"
)
