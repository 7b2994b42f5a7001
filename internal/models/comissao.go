package models

import "time"

// Comissao 推广佣金记录
//
// 状态只允许 pending -> available -> paid；仅提现被驳回时 paid 回退为 available。
type Comissao struct {
	ID                uint       `gorm:"primarykey" json:"id"`                                                               // 主键
	IDAfiliado        uint       `gorm:"column:id_afiliado;index:idx_comissoes_afiliado_status;not null" json:"id_afiliado"` // 推广者用户ID
	IDUsuarioPagador  uint       `gorm:"column:id_usuario_pagador;index;not null" json:"id_usuario_pagador"`                 // 付款用户ID
	IDPagamentoOrigem *uint      `gorm:"column:id_pagamento_origem;uniqueIndex" json:"id_pagamento_origem"`                  // 来源支付ID（一笔支付至多一条佣金）
	Fluxo             string     `gorm:"type:varchar(32);not null;default:'default'" json:"fluxo"`                           // 支付流程
	Valor             Money      `gorm:"type:decimal(20,2);not null" json:"valor"`                                           // 佣金金额
	Status            string     `gorm:"index:idx_comissoes_afiliado_status;index;not null" json:"status"`                   // 状态
	DataLiberacao     time.Time  `gorm:"column:data_liberacao;index;not null" json:"data_liberacao"`                         // 成熟时间
	DataDisponivel    *time.Time `gorm:"column:data_disponivel;index" json:"data_disponivel"`                                // 实际变为可提现时间
	IDSaque           *uint      `gorm:"column:id_saque;index" json:"id_saque"`                                              // 占用该佣金的提现ID
	CreatedAt         time.Time  `gorm:"index" json:"created_at"`                                                            // 创建时间
	UpdatedAt         time.Time  `gorm:"index" json:"updated_at"`                                                            // 更新时间
}

// TableName 指定表名
func (Comissao) TableName() string {
	return "comissoes"
}
