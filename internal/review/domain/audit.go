package domain

import (
	"gorm.io/gorm"
)

// AuditCategory 审计分类
type AuditCategory string

const (
	// CategoriaEsportivo 体育投注
	CategoriaEsportivo AuditCategory = "ESPORTIVO"
	// CategoriaCassino 娱乐场
	CategoriaCassino AuditCategory = "CASSINO"
)

// Valid 判断审计分类是否合法
func (c AuditCategory) Valid() bool {
	return c == CategoriaEsportivo || c == CategoriaCassino
}

// AuditEntry 审计登记，只追加，不更新不删除。
// 它在创建时逻辑上指向该客户当时最近的一条审核，但不存外键，
// 指向关系在查询时按跨表最高 id 重新推导。
type AuditEntry struct {
	gorm.Model
	ClientID  string        `gorm:"column:client_id;type:varchar(64);index;not null" json:"client_id"`
	Reason    string        `gorm:"column:reason;type:text;not null" json:"reason"`
	Categoria AuditCategory `gorm:"column:categoria;type:varchar(20);not null" json:"categoria"`
	AnalystID string        `gorm:"column:analyst_id;type:varchar(64);not null" json:"analyst_id"`
}

func (AuditEntry) TableName() string { return "audit_entries" }
