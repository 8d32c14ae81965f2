package domain

import (
	"context"
	"time"
)

// 事件主题
const (
	TopicReviewCreated   = "review.created"
	TopicAuditRegistered = "audit.registered"
	TopicFraudReported   = "fraud.reported"
)

// ReviewCreatedEvent 审核创建事件
type ReviewCreatedEvent struct {
	ReviewID     uint       `json:"review_id"`
	Tipo         ReviewType `json:"tipo"`
	ClientID     string     `json:"client_id"`
	AnalysisDate string     `json:"analysis_date"`
	AnalystID    string     `json:"analyst_id"`
	CreatedAt    time.Time  `json:"created_at"`
}

// AuditRegisteredEvent 审计登记事件
type AuditRegisteredEvent struct {
	AuditID     uint          `json:"audit_id"`
	ClientID    string        `json:"client_id"`
	Categoria   AuditCategory `json:"categoria"`
	AnalystID   string        `json:"analyst_id"`
	StampedID   uint          `json:"stamped_review_id,omitempty"`
	StampedTipo ReviewType    `json:"stamped_review_tipo,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

// FraudReportedEvent 欺诈上报事件
type FraudReportedEvent struct {
	ReportID     uint        `json:"report_id"`
	ClientID     string      `json:"client_id"`
	AnalysisDate string      `json:"analysis_date"`
	Reason       FraudReason `json:"reason"`
	AnalystID    string      `json:"analyst_id"`
	CreatedAt    time.Time   `json:"created_at"`
}

// EventPublisher 领域事件出站端口。发布是尽力而为的旁路：
// 实现自身负责记录失败，写路径不因发布失败而失败。
type EventPublisher interface {
	Publish(ctx context.Context, topic string, key string, event any) error
}
