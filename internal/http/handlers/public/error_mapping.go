package public

import (
	handlershared "github.com/receitas-next/internal/http/handlers/shared"
	"github.com/receitas-next/internal/http/response"
	"github.com/receitas-next/internal/payment"
	"github.com/receitas-next/internal/service"

	"github.com/gin-gonic/gin"
)

var userRegisterErrorRules = []handlershared.MappedError{
	{Target: service.ErrInvalidEmail, Code: response.CodeBadRequest, Key: "error.email_invalid"},
	{Target: service.ErrEmailExists, Code: response.CodeBadRequest, Key: "error.email_exists"},
	{Target: service.ErrReferralCodeInvalid, Code: response.CodeBadRequest, Key: "error.referral_code_invalid"},
}

var userLoginErrorRules = []handlershared.MappedError{
	{Target: service.ErrInvalidEmail, Code: response.CodeBadRequest, Key: "error.email_invalid"},
	{Target: service.ErrInvalidCredentials, Code: response.CodeUnauthorized, Key: "error.invalid_credentials"},
	{Target: service.ErrUserDisabled, Code: response.CodeUnauthorized, Key: "error.user_disabled"},
}

var withdrawalRequestErrorRules = []handlershared.MappedError{
	{Target: service.ErrWithdrawalAmountInvalid, Code: response.CodeBadRequest, Key: "error.withdrawal_amount_invalid"},
	{Target: service.ErrWithdrawalAmountBelowMinimum, Code: response.CodeBadRequest, Key: "error.withdrawal_amount_below_minimum"},
	{Target: service.ErrWithdrawalDestinationMissing, Code: response.CodeBadRequest, Key: "error.withdrawal_destination_missing"},
	{Target: service.ErrInsufficientBalance, Code: response.CodeBadRequest, Key: "error.withdrawal_insufficient_balance"},
	{Target: service.ErrAllocationConflict, Code: response.CodeConflict, Key: "error.withdrawal_allocation_conflict"},
	{Target: service.ErrUserDisabled, Code: response.CodeForbidden, Key: "error.user_disabled"},
	{Target: service.ErrNotFound, Code: response.CodeNotFound, Key: "error.user_not_found"},
	{Target: service.ErrLedgerBusy, Code: response.CodeInternal, Key: "error.ledger_busy"},
}

// 网关据 4xx/5xx 决定是否重试：签名与载荷错误不重试，基础设施错误需要重试
var paymentWebhookErrorRules = []handlershared.MappedError{
	{Target: payment.ErrSignatureInvalid, Code: response.CodeBadRequest, Key: "error.webhook_signature_invalid"},
	{Target: payment.ErrPayloadInvalid, Code: response.CodeBadRequest, Key: "error.webhook_payload_invalid"},
	{Target: payment.ErrGatewayNotFound, Code: response.CodeNotFound, Key: "error.gateway_not_found"},
	{Target: service.ErrLedgerBusy, Code: response.CodeInternal, Key: "error.ledger_busy"},
}

func respondUserRegisterError(c *gin.Context, err error) {
	if handlershared.RespondPasswordPolicyError(c, err) {
		return
	}
	handlershared.RespondWithMappedError(c, err, userRegisterErrorRules, response.CodeInternal, "error.internal")
}

func respondUserLoginError(c *gin.Context, err error) {
	handlershared.RespondWithMappedError(c, err, userLoginErrorRules, response.CodeInternal, "error.internal")
}

func respondWithdrawalRequestError(c *gin.Context, err error) {
	handlershared.RespondWithMappedError(c, err, withdrawalRequestErrorRules, response.CodeInternal, "error.internal")
}

func respondPaymentWebhookError(c *gin.Context, err error) {
	handlershared.RespondWithMappedError(c, err, paymentWebhookErrorRules, response.CodeInternal, "error.gateway_unavailable")
}
