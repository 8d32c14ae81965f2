package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReviewType 审核类型
type ReviewType string

const (
	// TipoSaque 提款审核
	TipoSaque ReviewType = "SAQUE"
	// TipoDeposito 存款审核
	TipoDeposito ReviewType = "DEPOSITO"
)

// Valid 判断审核类型是否合法
func (t ReviewType) Valid() bool {
	return t == TipoSaque || t == TipoDeposito
}

// ClientStatus 客户风险状态
type ClientStatus string

const (
	// StatusOK 正常
	StatusOK ClientStatus = "OK"
	// StatusMonitorar 监控中，由欺诈上报单向升级，不会自动回退
	StatusMonitorar ClientStatus = "MONITORAR"
	// StatusCritico 严重
	StatusCritico ClientStatus = "CRITICO"
)

// Client 客户实体。首次审核时隐式创建，审核记录只能引用已存在的客户。
type Client struct {
	gorm.Model
	ClientID string       `gorm:"column:client_id;type:varchar(64);uniqueIndex;not null" json:"client_id"`
	Name     string       `gorm:"column:name;type:varchar(128)" json:"name"`
	Status   ClientStatus `gorm:"column:status;type:varchar(20);not null;default:'OK'" json:"status"`
}

func (Client) TableName() string { return "clients" }

// Analyst 分析师实体，聚合查询时用于补全展示名
type Analyst struct {
	gorm.Model
	AnalystID string `gorm:"column:analyst_id;type:varchar(64);uniqueIndex;not null" json:"analyst_id"`
	Name      string `gorm:"column:name;type:varchar(128);not null" json:"name"`
}

func (Analyst) TableName() string { return "analysts" }

// ReviewBase 两张审核表共有的列。
// analysis_date 统一存 YYYY-MM-DD；(client_id, analysis_date) 的复合唯一索引
// 是"每客户每日每类型至多一条审核"不变量在并发下的兜底，应用层查重仍然先行，
// 以便把冲突记录返回给调用方。
type ReviewBase struct {
	gorm.Model
	ClientID         string          `gorm:"column:client_id;type:varchar(64);uniqueIndex:idx_client_analysis_date;not null" json:"client_id"`
	AnalysisDate     string          `gorm:"column:analysis_date;type:varchar(10);uniqueIndex:idx_client_analysis_date;not null" json:"analysis_date"`
	AccountCreatedAt *string         `gorm:"column:account_created_at;type:varchar(10)" json:"account_created_at,omitempty"`
	Note             string          `gorm:"column:note;type:text" json:"note"`
	AnalystID        string          `gorm:"column:analyst_id;type:varchar(64);index;not null" json:"analyst_id"`
	DurationSeconds  int             `gorm:"column:duration_seconds;not null;default:0" json:"duration_seconds"`
	Audited          bool            `gorm:"column:audited;not null;default:false" json:"audited"`
	AuditedAt        *time.Time      `gorm:"column:audited_at" json:"audited_at,omitempty"`
	Valor            decimal.Decimal `gorm:"column:valor;type:decimal(20,2);not null;default:0" json:"valor"`
}

// SaqueReview 提款审核记录，独立物理表，id 仅在本表内自增
type SaqueReview struct {
	ReviewBase
	MetodoSaque string `gorm:"column:metodo_saque;type:varchar(50)" json:"metodo_saque"`
}

func (SaqueReview) TableName() string { return "saque_reviews" }

// DepositoReview 存款审核记录，独立物理表，id 仅在本表内自增
type DepositoReview struct {
	ReviewBase
	OrigemDeposito string `gorm:"column:origem_deposito;type:varchar(50)" json:"origem_deposito"`
}

func (DepositoReview) TableName() string { return "deposito_reviews" }

// Review 两张物理表之上的统一视图。所有跨表逻辑（查重、最近一条、聚合）
// 都通过它表达，表的物理拆分只存在于仓储实现内部。
type Review struct {
	ID               uint            `json:"id"`
	Tipo             ReviewType      `json:"tipo"`
	ClientID         string          `json:"client_id"`
	AnalysisDate     string          `json:"analysis_date"`
	AccountCreatedAt *string         `json:"account_created_at,omitempty"`
	Valor            decimal.Decimal `json:"valor"`
	Detail           string          `json:"detail"`
	Note             string          `json:"note"`
	AnalystID        string          `json:"analyst_id"`
	AnalystName      string          `json:"analyst_name"`
	DurationSeconds  int             `json:"duration_seconds"`
	Audited          bool            `json:"audited"`
	AuditedAt        *time.Time      `json:"audited_at,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// AsReview 转换为统一视图
func (s *SaqueReview) AsReview() Review {
	r := baseAsReview(&s.ReviewBase, TipoSaque)
	r.Detail = s.MetodoSaque
	return r
}

// AsReview 转换为统一视图
func (d *DepositoReview) AsReview() Review {
	r := baseAsReview(&d.ReviewBase, TipoDeposito)
	r.Detail = d.OrigemDeposito
	return r
}

func baseAsReview(b *ReviewBase, tipo ReviewType) Review {
	return Review{
		ID:               b.ID,
		Tipo:             tipo,
		ClientID:         b.ClientID,
		AnalysisDate:     b.AnalysisDate,
		AccountCreatedAt: b.AccountCreatedAt,
		Valor:            b.Valor,
		Note:             b.Note,
		AnalystID:        b.AnalystID,
		DurationSeconds:  b.DurationSeconds,
		Audited:          b.Audited,
		AuditedAt:        b.AuditedAt,
		CreatedAt:        b.CreatedAt,
	}
}

// MoreRecentThan 跨表"较新"判定。两张表各自自增，原始 id 只是插入时序的
// 启发式代理而非严格保证；先比 id，再比审计时间，最后比分析日期。
func (r *Review) MoreRecentThan(other *Review) bool {
	if other == nil {
		return true
	}
	if r.ID != other.ID {
		return r.ID > other.ID
	}
	rAt, oAt := auditedAtOrZero(r), auditedAtOrZero(other)
	if !rAt.Equal(oAt) {
		return rAt.After(oAt)
	}
	return r.AnalysisDate > other.AnalysisDate
}

func auditedAtOrZero(r *Review) time.Time {
	if r.AuditedAt == nil {
		return time.Time{}
	}
	return *r.AuditedAt
}
