package models

import "time"

// Pagamento 网关确认的支付记录，id_pagamento_gateway 为幂等键
type Pagamento struct {
	ID                 uint      `gorm:"primarykey" json:"id"`                                                                           // 主键
	IDUsuario          uint      `gorm:"column:id_usuario;index;not null" json:"id_usuario"`                                             // 付款用户ID
	IDPagamentoGateway string    `gorm:"column:id_pagamento_gateway;type:varchar(120);uniqueIndex;not null" json:"id_pagamento_gateway"` // 网关支付ID
	Gateway            string    `gorm:"type:varchar(32);index;not null" json:"gateway"`                                                 // 网关
	Valor              Money     `gorm:"type:decimal(20,2);not null" json:"valor"`                                                       // 支付金额
	Moeda              string    `gorm:"type:varchar(8);not null;default:'BRL'" json:"moeda"`                                            // 币种
	Status             string    `gorm:"index;not null" json:"status"`                                                                   // 支付状态
	MetodoPagamento    string    `gorm:"column:metodo_pagamento;type:varchar(40)" json:"metodo_pagamento"`                               // 支付方式
	IDAfiliadoMetadata *uint     `gorm:"column:id_afiliado_metadata" json:"id_afiliado_metadata"`                                        // 网关元数据携带的推广者
	Payload            JSON      `gorm:"type:json" json:"-"`                                                                             // 回调原文
	DataPagamento      time.Time `gorm:"column:data_pagamento;index;not null" json:"data_pagamento"`                                     // 支付时间
	CreatedAt          time.Time `gorm:"index" json:"created_at"`                                                                        // 创建时间
}

// TableName 指定表名
func (Pagamento) TableName() string {
	return "pagamentos"
}
