package admin

import (
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/receitas-next/internal/constants"
	handlershared "github.com/receitas-next/internal/http/handlers/shared"
	"github.com/receitas-next/internal/http/response"
	"github.com/receitas-next/internal/i18n"
	"github.com/receitas-next/internal/models"
	"github.com/receitas-next/internal/repository"
	"github.com/receitas-next/internal/service"

	"github.com/gin-gonic/gin"
)

const withdrawalExportTimeLayout = "2006-01-02 15:04:05"

// ProcessWithdrawalRequest 审核请求
type ProcessWithdrawalRequest struct {
	Status string `json:"status" binding:"required"`
	Motivo string `json:"motivo"`
}

// GetAdminWithdrawals 提现列表
func (h *Handler) GetAdminWithdrawals(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)

	filter, err := buildAdminWithdrawalFilter(c, page, pageSize)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	items, total, err := h.WithdrawalService.ListWithdrawals(filter)
	if err != nil {
		if errors.Is(err, service.ErrWithdrawalStatusInvalid) {
			respondError(c, response.CodeBadRequest, "error.withdrawal_status_invalid", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, items, response.BuildPagination(page, pageSize, total))
}

// ExportAdminWithdrawals 按同一筛选条件导出 CSV（不分页）
func (h *Handler) ExportAdminWithdrawals(c *gin.Context) {
	filter, err := buildAdminWithdrawalFilter(c, 0, 0)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	items, _, err := h.WithdrawalService.ListWithdrawals(filter)
	if err != nil {
		if errors.Is(err, service.ErrWithdrawalStatusInvalid) {
			respondError(c, response.CodeBadRequest, "error.withdrawal_status_invalid", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}

	filename := fmt.Sprintf("saques_%s.csv", time.Now().UTC().Format("20060102150405"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	writer := csv.NewWriter(c.Writer)
	_ = writer.Write([]string{
		"id", "id_afiliado", "nome_solicitante", "email_solicitante", "valor", "valor_alocado",
		"status", "chave_pix_usada", "data_solicitacao", "data_processamento", "processado_por", "motivo_rejeicao",
	})
	for _, item := range items {
		processedAt := ""
		if item.DataProcessamento != nil {
			processedAt = item.DataProcessamento.UTC().Format(withdrawalExportTimeLayout)
		}
		processedBy := ""
		if item.ProcessadoPor != nil {
			processedBy = strconv.FormatUint(uint64(*item.ProcessadoPor), 10)
		}
		_ = writer.Write([]string{
			strconv.FormatUint(uint64(item.ID), 10),
			strconv.FormatUint(uint64(item.IDAfiliado), 10),
			item.NomeSolicitante,
			item.EmailSolicitante,
			item.Valor.String(),
			item.ValorAlocado.String(),
			item.Status,
			item.ChavePixUsada,
			item.DataSolicitacao.UTC().Format(withdrawalExportTimeLayout),
			processedAt,
			processedBy,
			item.MotivoRejeicao,
		})
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		requestLog(c).Errorw("admin_withdrawal_export_failed", "error", err)
	}
}

// ProcessWithdrawal 审核提现：aprovado / rejeitado
func (h *Handler) ProcessWithdrawal(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	withdrawalID, ok := parseIDParam(c, "error.withdrawal_not_found")
	if !ok {
		return
	}

	var req ProcessWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	withdrawal, err := h.WithdrawalService.ProcessWithdrawal(c.Request.Context(), service.WithdrawalProcessInput{
		WithdrawalID: withdrawalID,
		AdminID:      adminID,
		Decision:     req.Status,
		Reason:       req.Motivo,
	})
	if err != nil {
		requestLog(c).Warnw("admin_withdrawal_process_failed",
			"withdrawal_id", withdrawalID,
			"admin_id", adminID,
			"decision", req.Status,
			"error", err,
		)
		respondWithdrawalProcessError(c, err)
		return
	}

	h.recordAudit(c, constants.AuditActionWithdrawalProcess, constants.AuditTargetWithdrawal, withdrawalID, models.JSON{
		"status":        withdrawal.Status,
		"valor":         withdrawal.Valor.String(),
		"valor_alocado": withdrawal.ValorAlocado.String(),
		"motivo":        withdrawal.MotivoRejeicao,
	})
	response.SuccessWithMsg(c, i18n.T(i18n.ResolveLocale(c), "message.withdrawal_processed"), withdrawal)
}

func buildAdminWithdrawalFilter(c *gin.Context, page, pageSize int) (repository.WithdrawalListFilter, error) {
	filter := repository.WithdrawalListFilter{
		Status:   strings.TrimSpace(c.Query("status")),
		Keyword:  strings.TrimSpace(c.Query("keyword")),
		Page:     page,
		PageSize: pageSize,
	}
	if raw := strings.TrimSpace(c.Query("user_id")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return filter, err
		}
		filter.AffiliateID = uint(id)
	}
	if raw := strings.TrimSpace(c.Query("created_from")); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, err
		}
		filter.CreatedFrom = &from
	}
	if raw := strings.TrimSpace(c.Query("created_to")); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, err
		}
		filter.CreatedTo = &to
	}
	return filter, nil
}
