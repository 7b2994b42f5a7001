package models

import "time"

// Notificacao 站内通知
type Notificacao struct {
	ID        uint      `gorm:"primarykey" json:"id"`                               // 主键
	IDUsuario uint      `gorm:"column:id_usuario;index;not null" json:"id_usuario"` // 接收用户
	Tipo      string    `gorm:"type:varchar(40);index;not null" json:"tipo"`        // 类型
	Titulo    string    `gorm:"type:varchar(200);not null" json:"titulo"`           // 标题
	Mensagem  string    `gorm:"type:text" json:"mensagem"`                          // 内容
	Lida      bool      `gorm:"not null;default:false" json:"lida"`                 // 是否已读
	CreatedAt time.Time `gorm:"index" json:"created_at"`                            // 创建时间
}

// TableName 指定表名
func (Notificacao) TableName() string {
	return "notificacoes"
}
