package admin

import (
	handlershared "github.com/receitas-next/internal/http/handlers/shared"
	"github.com/receitas-next/internal/http/response"
	"github.com/receitas-next/internal/service"

	"github.com/gin-gonic/gin"
)

var ledgerBusyErrorRules = []handlershared.MappedError{
	{Target: service.ErrLedgerBusy, Code: response.CodeInternal, Key: "error.ledger_busy"},
}

var withdrawalProcessErrorRules = []handlershared.MappedError{
	{Target: service.ErrWithdrawalDecisionInvalid, Code: response.CodeBadRequest, Key: "error.withdrawal_decision_invalid"},
	{Target: service.ErrWithdrawalAlreadyProcessed, Code: response.CodeBadRequest, Key: "error.withdrawal_already_processed"},
	{Target: service.ErrNotFound, Code: response.CodeNotFound, Key: "error.withdrawal_not_found"},
}

var balanceReleaseErrorRules = []handlershared.MappedError{
	{Target: service.ErrReleaseAmountInvalid, Code: response.CodeBadRequest, Key: "error.release_amount_invalid"},
	{Target: service.ErrInsufficientPendingBalance, Code: response.CodeBadRequest, Key: "error.release_insufficient_pending"},
	{Target: service.ErrNotFound, Code: response.CodeNotFound, Key: "error.user_not_found"},
}

func respondWithdrawalProcessError(c *gin.Context, err error) {
	handlershared.RespondWithMappedError(c, err, handlershared.ConcatMappedErrors(withdrawalProcessErrorRules, ledgerBusyErrorRules), response.CodeInternal, "error.internal")
}

func respondBalanceReleaseError(c *gin.Context, err error) {
	handlershared.RespondWithMappedError(c, err, handlershared.ConcatMappedErrors(balanceReleaseErrorRules, ledgerBusyErrorRules), response.CodeInternal, "error.internal")
}

func respondBalanceRecomputeError(c *gin.Context, err error) {
	rules := []handlershared.MappedError{
		{Target: service.ErrNotFound, Code: response.CodeNotFound, Key: "error.user_not_found"},
	}
	handlershared.RespondWithMappedError(c, err, handlershared.ConcatMappedErrors(rules, ledgerBusyErrorRules), response.CodeInternal, "error.internal")
}
