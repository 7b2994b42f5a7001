package i18n

var messages = map[string]map[string]string{
	LocalePtBR: {
		"error.bad_request":                        "Requisição inválida",
		"error.payload_too_large":                  "Corpo da requisição muito grande",
		"error.unauthorized":                       "Não autenticado",
		"error.forbidden":                          "Acesso negado",
		"error.internal":                           "Erro interno, tente novamente",
		"error.rate_limited":                       "Muitas tentativas, aguarde %d segundos",
		"error.rate_limit_unavailable":             "Limitador indisponível",
		"error.auth_header_missing":                "Cabeçalho Authorization ausente",
		"error.auth_header_invalid":                "Cabeçalho Authorization inválido",
		"error.token_invalid":                      "Token inválido ou expirado",
		"error.token_revoked":                      "Token revogado",
		"error.jwt_secret_missing":                 "Segredo JWT não configurado",
		"error.user_disabled":                      "Usuário desativado",
		"error.invalid_credentials":                "E-mail ou senha incorretos",
		"error.email_exists":                       "E-mail já cadastrado",
		"error.password_too_short":                 "A senha deve ter pelo menos %d caracteres",
		"error.referral_code_invalid":              "Código de indicação inválido",
		"error.user_not_found":                     "Usuário não encontrado",
		"error.withdrawal_amount_invalid":          "Valor de saque inválido",
		"error.withdrawal_amount_below_minimum":    "Valor abaixo do mínimo para saque",
		"error.withdrawal_destination_missing":     "Informe a chave PIX ou os dados bancários",
		"error.withdrawal_insufficient_balance":    "Saldo disponível insuficiente",
		"error.withdrawal_allocation_conflict":     "Saldo alterado durante a solicitação, tente novamente",
		"error.withdrawal_not_found":               "Saque não encontrado",
		"error.withdrawal_already_processed":       "Saque já processado",
		"error.withdrawal_decision_invalid":        "Status deve ser aprovado ou rejeitado",
		"error.release_amount_invalid":             "Valor de liberação inválido",
		"error.release_insufficient_pending":       "Saldo pendente insuficiente",
		"error.ledger_busy":                        "Operação em andamento, tente novamente",
		"error.ledger_config_invalid":              "Configuração do ledger inválida",
		"error.webhook_signature_invalid":          "Assinatura do webhook inválida",
		"error.webhook_payload_invalid":            "Payload do webhook inválido",
		"error.gateway_unavailable":                "Gateway de pagamento indisponível",
		"error.user_id_invalid":                    "ID de usuário inválido",
		"error.user_id_type_invalid":               "Tipo de ID de usuário inválido",
		"error.admin_id_invalid":                   "ID de administrador inválido",
		"error.admin_id_type_invalid":              "Tipo de ID de administrador inválido",
		"error.email_invalid":                      "E-mail inválido",
		"error.password_too_long":                  "A senha deve ter no máximo %d bytes",
		"error.withdrawal_status_invalid":          "Filtro de status inválido",
		"error.gateway_not_found":                  "Gateway de pagamento não habilitado",
		"error.admin_not_found":                    "Administrador não encontrado",
		"message.user_registered":                  "Cadastro realizado",
		"message.commission_maturation_queued":     "Maturação agendada",
		"notification.commission_accrued.title":    "Nova comissão",
		"notification.commission_accrued.message":  "Você recebeu uma comissão de R$ %s, liberada em %s",
		"notification.commission_matured.title":    "Comissões liberadas",
		"notification.commission_matured.message":  "%d comissão(ões) somando R$ %s estão disponíveis para saque",
		"notification.balance_released.title":      "Saldo liberado",
		"notification.balance_released.message":    "O administrador liberou R$ %s para saque",
		"notification.withdrawal_approved.title":   "Saque aprovado",
		"notification.withdrawal_approved.message": "Seu saque de R$ %[1]s foi aprovado",
		"notification.withdrawal_rejected.title":   "Saque rejeitado",
		"notification.withdrawal_rejected.message": "Seu saque de R$ %[1]s foi rejeitado: %[2]s",
		"message.withdrawal_requested":             "Solicitação de saque registrada",
		"message.withdrawal_processed":             "Saque processado",
		"message.balance_released":                 "Saldo liberado",
	},
	LocaleEnUS: {
		"error.bad_request":                        "Bad request",
		"error.payload_too_large":                  "Request body too large",
		"error.unauthorized":                       "Unauthorized",
		"error.forbidden":                          "Forbidden",
		"error.internal":                           "Internal error, please retry",
		"error.rate_limited":                       "Too many attempts, retry in %d seconds",
		"error.rate_limit_unavailable":             "Rate limiter unavailable",
		"error.auth_header_missing":                "Missing Authorization header",
		"error.auth_header_invalid":                "Invalid Authorization header",
		"error.token_invalid":                      "Invalid or expired token",
		"error.token_revoked":                      "Token revoked",
		"error.jwt_secret_missing":                 "JWT secret not configured",
		"error.user_disabled":                      "User disabled",
		"error.invalid_credentials":                "Wrong e-mail or password",
		"error.email_exists":                       "E-mail already registered",
		"error.password_too_short":                 "Password must have at least %d characters",
		"error.referral_code_invalid":              "Invalid referral code",
		"error.user_not_found":                     "User not found",
		"error.withdrawal_amount_invalid":          "Invalid withdrawal amount",
		"error.withdrawal_amount_below_minimum":    "Amount below the withdrawal minimum",
		"error.withdrawal_destination_missing":     "A PIX key or bank details are required",
		"error.withdrawal_insufficient_balance":    "Insufficient available balance",
		"error.withdrawal_allocation_conflict":     "Balance changed during the request, please retry",
		"error.withdrawal_not_found":               "Withdrawal not found",
		"error.withdrawal_already_processed":       "Withdrawal already processed",
		"error.withdrawal_decision_invalid":        "Status must be aprovado or rejeitado",
		"error.release_amount_invalid":             "Invalid release amount",
		"error.release_insufficient_pending":       "Insufficient pending balance",
		"error.ledger_busy":                        "Ledger busy, please retry",
		"error.ledger_config_invalid":              "Invalid ledger configuration",
		"error.webhook_signature_invalid":          "Invalid webhook signature",
		"error.webhook_payload_invalid":            "Invalid webhook payload",
		"error.gateway_unavailable":                "Payment gateway unavailable",
		"error.user_id_invalid":                    "Invalid user id",
		"error.user_id_type_invalid":               "Invalid user id type",
		"error.admin_id_invalid":                   "Invalid admin id",
		"error.admin_id_type_invalid":              "Invalid admin id type",
		"error.email_invalid":                      "Invalid e-mail",
		"error.password_too_long":                  "Password must have at most %d bytes",
		"error.withdrawal_status_invalid":          "Invalid status filter",
		"error.gateway_not_found":                  "Payment gateway not enabled",
		"error.admin_not_found":                    "Admin not found",
		"message.user_registered":                  "Registration completed",
		"message.commission_maturation_queued":     "Maturation scheduled",
		"notification.commission_accrued.title":    "New commission",
		"notification.commission_accrued.message":  "You earned a commission of R$ %s, released on %s",
		"notification.commission_matured.title":    "Commissions released",
		"notification.commission_matured.message":  "%d commission(s) totaling R$ %s are available for withdrawal",
		"notification.balance_released.title":      "Balance released",
		"notification.balance_released.message":    "An administrator released R$ %s for withdrawal",
		"notification.withdrawal_approved.title":   "Withdrawal approved",
		"notification.withdrawal_approved.message": "Your withdrawal of R$ %[1]s was approved",
		"notification.withdrawal_rejected.title":   "Withdrawal rejected",
		"notification.withdrawal_rejected.message": "Your withdrawal of R$ %[1]s was rejected: %[2]s",
		"message.withdrawal_requested":             "Withdrawal request registered",
		"message.withdrawal_processed":             "Withdrawal processed",
		"message.balance_released":                 "Balance released",
	},
	LocaleZhCN: {
		"error.bad_request":                      "请求参数错误",
		"error.payload_too_large":                "请求体过大",
		"error.unauthorized":                     "未登录",
		"error.forbidden":                        "无权限",
		"error.internal":                         "服务器内部错误，请重试",
		"error.rate_limited":                     "操作过于频繁，请 %d 秒后再试",
		"error.rate_limit_unavailable":           "限流服务不可用",
		"error.token_invalid":                    "Token 无效或已过期",
		"error.invalid_credentials":              "邮箱或密码错误",
		"error.withdrawal_insufficient_balance":  "可提现余额不足",
		"error.withdrawal_already_processed":     "提现申请已处理",
		"error.withdrawal_not_found":             "提现申请不存在",
		"error.ledger_busy":                      "账本繁忙，请稍后重试",
		"error.webhook_signature_invalid":        "回调签名校验失败",
		"error.user_id_invalid":                  "用户ID无效",
		"error.admin_id_invalid":                 "管理员ID无效",
		"error.email_invalid":                    "邮箱格式错误",
		"error.password_too_short":               "密码长度至少 %d 位",
		"error.withdrawal_status_invalid":        "状态筛选无效",
		"error.gateway_not_found":                "支付网关未启用",
		"notification.withdrawal_approved.title": "提现已通过",
		"notification.withdrawal_rejected.title": "提现被驳回",
	},
}
