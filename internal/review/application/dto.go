package application

import (
	"github.com/shopspring/decimal"

	"github.com/wyfcoding/fraudreview/internal/review/domain"
)

// CreateReviewRequest 创建审核请求 DTO
type CreateReviewRequest struct {
	ClientID         string            `json:"client_id"`
	ClientName       string            `json:"client_name"`
	Tipo             domain.ReviewType `json:"tipo"`
	AnalysisDate     string            `json:"analysis_date"`
	AccountCreatedAt string            `json:"account_created_at"`
	Valor            decimal.Decimal   `json:"valor"`
	Detail           string            `json:"detail"`
	Note             string            `json:"note"`
	AnalystID        string            `json:"analyst_id"`
	AnalystName      string            `json:"analyst_name"`
	DurationSeconds  int               `json:"duration_seconds"`
}

// RegisterAuditRequest 审计登记请求 DTO
type RegisterAuditRequest struct {
	ClientID  string               `json:"client_id"`
	Reason    string               `json:"reason"`
	Categoria domain.AuditCategory `json:"categoria"`
	AnalystID string               `json:"analyst_id"`
}

// ReportFraudRequest 欺诈上报请求 DTO
type ReportFraudRequest struct {
	ClientID     string             `json:"client_id"`
	AnalysisDate string             `json:"analysis_date"`
	Description  string             `json:"description"`
	Reason       domain.FraudReason `json:"reason"`
	FreeReason   string             `json:"free_reason"`
	AnalystID    string             `json:"analyst_id"`
}

// MetricsFilter 聚合查询过滤条件 DTO
type MetricsFilter struct {
	AnalystID      string            `json:"analyst_id"`
	DateFrom       string            `json:"date_from"`
	DateTo         string            `json:"date_to"`
	Tipo           domain.ReviewType `json:"tipo"`
	ClientContains string            `json:"client_contains"`
}

// MetricsReview 聚合结果中的一行：统一审核视图加欺诈/状态标注
type MetricsReview struct {
	domain.Review
	TemFraude     bool                `json:"tem_fraude"`
	StatusCliente domain.ClientStatus `json:"status_cliente"`
}

// ClientStatusDTO 客户审计状态
type ClientStatusDTO struct {
	HasAudit bool               `json:"has_audit"`
	Latest   *domain.AuditEntry `json:"latest,omitempty"`
}

// FraudStatusDTO 客户欺诈状态
type FraudStatusDTO struct {
	HasFraud bool                 `json:"has_fraud"`
	Reports  []domain.FraudReport `json:"reports"`
}
