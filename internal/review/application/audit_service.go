package application

import (
	"context"
	"fmt"
	"time"

	"github.com/wyfcoding/fraudreview/internal/review/domain"
	"github.com/wyfcoding/fraudreview/pkg/logger"
	"github.com/wyfcoding/fraudreview/pkg/metrics"
)

// AuditService 审计关联服务：登记审计并把标记盖到正确的历史审核上
type AuditService struct {
	audits    domain.AuditRepository
	reviews   domain.ReviewRepository
	co        *coherency
	metrics   *metrics.Metrics
	publisher domain.EventPublisher

	statusTTL    time.Duration
	auditListTTL time.Duration
}

// NewAuditService 创建审计服务
func NewAuditService(
	audits domain.AuditRepository,
	reviews domain.ReviewRepository,
	co *coherency,
	m *metrics.Metrics,
	publisher domain.EventPublisher,
	statusTTL, auditListTTL time.Duration,
) *AuditService {
	return &AuditService{
		audits:       audits,
		reviews:      reviews,
		co:           co,
		metrics:      m,
		publisher:    publisher,
		statusTTL:    statusTTL,
		auditListTTL: auditListTTL,
	}
}

// RegisterAudit 审计登记，按序执行：
//  1. 写入 AuditEntry（只追加）；
//  2. 跨两张表定位该客户最近的一条审核（每表各取最高 id，再比较）；
//  3. 给它盖审计标记和时间戳。
//
// 客户只在一张表有审核时用那一条；完全没有审核时登记照样保留而不盖章
// （审计可以先于正式审核发生）。第 2、3 步失败不回滚第 1 步——
// 状态读取路径独立于盖章重新推导可见性，孤儿登记是可容忍的。
// 同客户并发登记在盖章上竞争时按后写者胜处理。
func (s *AuditService) RegisterAudit(ctx context.Context, req *RegisterAuditRequest) error {
	if req.ClientID == "" {
		return domain.NewValidationError("client_id", "is required")
	}
	if len(req.Reason) < 3 {
		return domain.NewValidationError("reason", "must be at least 3 characters")
	}
	if !req.Categoria.Valid() {
		return domain.NewValidationError("categoria", "must be ESPORTIVO or CASSINO")
	}
	if req.AnalystID == "" {
		return domain.NewValidationError("analyst_id", "is required")
	}

	entry := domain.AuditEntry{
		ClientID:  req.ClientID,
		Reason:    req.Reason,
		Categoria: req.Categoria,
		AnalystID: req.AnalystID,
	}
	if err := s.audits.Create(ctx, &entry); err != nil {
		return fmt.Errorf("failed to create audit entry: %w", err)
	}

	s.metrics.AuditsRegisteredTotal.Inc()

	var stampedID uint
	var stampedTipo domain.ReviewType

	latest, err := s.reviews.LatestByClient(ctx, req.ClientID)
	if err != nil {
		// 登记已持久化，定位失败只能向上报告，不得回滚
		s.invalidateAfterAudit(ctx, req.ClientID)
		return fmt.Errorf("audit entry %d persisted but latest review lookup failed: %w", entry.ID, err)
	}

	if latest != nil {
		if err := s.reviews.StampAudit(ctx, latest.ID, latest.Tipo, time.Now()); err != nil {
			s.invalidateAfterAudit(ctx, req.ClientID)
			return fmt.Errorf("audit entry %d persisted but review stamp failed: %w", entry.ID, err)
		}
		stampedID = latest.ID
		stampedTipo = latest.Tipo
	} else {
		logger.Info(ctx, "Audit registered for client with no reviews", "client_id", req.ClientID)
	}

	s.invalidateAfterAudit(ctx, req.ClientID)

	_ = s.publisher.Publish(ctx, domain.TopicAuditRegistered, req.ClientID, domain.AuditRegisteredEvent{
		AuditID:     entry.ID,
		ClientID:    entry.ClientID,
		Categoria:   entry.Categoria,
		AnalystID:   entry.AnalystID,
		StampedID:   stampedID,
		StampedTipo: stampedTipo,
		CreatedAt:   entry.CreatedAt,
	})

	logger.Info(ctx, "Audit registered",
		"client_id", req.ClientID,
		"categoria", req.Categoria,
		"audit_id", entry.ID,
		"stamped_review_id", stampedID,
	)

	return nil
}

// invalidateAfterAudit 审计影响客户状态键、审计列表命名空间，以及
// 被盖章审核出现过的 metrics/last-review 结果
func (s *AuditService) invalidateAfterAudit(ctx context.Context, clientID string) {
	s.co.invalidate(ctx, keyStatus(clientID), keyLastReview(clientID))
	s.co.invalidatePrefix(ctx, keyPrefixAuditList)
	s.co.invalidatePrefix(ctx, keyPrefixMetrics)
}

// GetStatus 客户审计状态，读穿缓存。可见性从审计登记表独立推导，
// 不依赖审核上的盖章是否成功。
func (s *AuditService) GetStatus(ctx context.Context, clientID string) (*ClientStatusDTO, error) {
	if clientID == "" {
		return nil, domain.NewValidationError("client_id", "is required")
	}

	dto, err := readThrough(ctx, s.co, keyStatus(clientID), s.statusTTL,
		func(ctx context.Context) (ClientStatusDTO, error) {
			latest, err := s.audits.LatestByClient(ctx, clientID)
			if err != nil {
				return ClientStatusDTO{}, err
			}
			return ClientStatusDTO{HasAudit: latest != nil, Latest: latest}, nil
		})
	if err != nil {
		return nil, err
	}
	return &dto, nil
}

// ListAudits 审计登记列表，按创建时间倒序翻页，读穿缓存
func (s *AuditService) ListAudits(ctx context.Context, limit, offset int) ([]domain.AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	return readThrough(ctx, s.co, keyAuditList(limit, offset), s.auditListTTL,
		func(ctx context.Context) ([]domain.AuditEntry, error) {
			return s.audits.List(ctx, limit, offset)
		})
}
