package models

import "time"

// Saque 提现申请
type Saque struct {
	ID                uint       `gorm:"primarykey" json:"id"`                                                  // 主键
	IDAfiliado        uint       `gorm:"column:id_afiliado;index;not null" json:"id_afiliado"`                  // 申请人用户ID
	Valor             Money      `gorm:"type:decimal(20,2);not null" json:"valor"`                              // 申请金额
	ValorAlocado      Money      `gorm:"column:valor_alocado;type:decimal(20,2);not null" json:"valor_alocado"` // 实际占用佣金合计（整条占用，可大于申请金额）
	Status            string     `gorm:"index;not null" json:"status"`                                          // 状态
	ChavePixUsada     string     `gorm:"column:chave_pix_usada;type:varchar(140)" json:"chave_pix_usada"`       // 收款 PIX
	DadosBancarios    JSON       `gorm:"column:dados_bancarios;type:json" json:"dados_bancarios"`               // 银行账户信息
	DataSolicitacao   time.Time  `gorm:"column:data_solicitacao;index;not null" json:"data_solicitacao"`        // 申请时间
	DataProcessamento *time.Time `gorm:"column:data_processamento;index" json:"data_processamento"`             // 审核时间
	ProcessadoPor     *uint      `gorm:"column:processado_por;index" json:"processado_por"`                     // 审核管理员ID
	MotivoRejeicao    string     `gorm:"column:motivo_rejeicao;type:text" json:"motivo_rejeicao"`               // 驳回原因
	CreatedAt         time.Time  `gorm:"index" json:"created_at"`                                               // 创建时间
	UpdatedAt         time.Time  `gorm:"index" json:"updated_at"`                                               // 更新时间

	Usuario   *Usuario   `gorm:"foreignKey:IDAfiliado" json:"usuario,omitempty"`
	Comissoes []Comissao `gorm:"foreignKey:IDSaque" json:"comissoes,omitempty"`
}

// TableName 指定表名
func (Saque) TableName() string {
	return "saques"
}
