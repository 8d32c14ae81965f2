package application

import (
	"context"
	"time"

	"github.com/wyfcoding/fraudreview/internal/review/domain"
	"github.com/wyfcoding/fraudreview/pkg/cache"
	"github.com/wyfcoding/fraudreview/pkg/metrics"
)

// Config 应用层缓存 TTL 配置
type Config struct {
	LastReviewTTL time.Duration
	StatusTTL     time.Duration
	AuditListTTL  time.Duration
}

// Service 审核域门面，整合审核、审计、欺诈与聚合四个子服务
type Service struct {
	reviews *ReviewService
	audits  *AuditService
	frauds  *FraudService
	agg     *MetricsService
}

// NewService 构造函数
func NewService(
	reviewRepo domain.ReviewRepository,
	clientRepo domain.ClientRepository,
	analystRepo domain.AnalystRepository,
	auditRepo domain.AuditRepository,
	fraudRepo domain.FraudRepository,
	c cache.Cache,
	m *metrics.Metrics,
	publisher domain.EventPublisher,
	cfg Config,
) *Service {
	co := newCoherency(c, m)

	frauds := NewFraudService(fraudRepo, clientRepo, co, m, publisher)

	return &Service{
		reviews: NewReviewService(reviewRepo, clientRepo, analystRepo, co, m, publisher, cfg.LastReviewTTL),
		audits:  NewAuditService(auditRepo, reviewRepo, co, m, publisher, cfg.StatusTTL, cfg.AuditListTTL),
		frauds:  frauds,
		agg:     NewMetricsService(reviewRepo, clientRepo, frauds),
	}
}

// --- 写路径 ---

func (s *Service) CreateReview(ctx context.Context, req *CreateReviewRequest) (*domain.Review, error) {
	return s.reviews.CreateReview(ctx, req)
}

func (s *Service) RegisterAudit(ctx context.Context, req *RegisterAuditRequest) error {
	return s.audits.RegisterAudit(ctx, req)
}

func (s *Service) ReportFraud(ctx context.Context, req *ReportFraudRequest) error {
	return s.frauds.ReportFraud(ctx, req)
}

// --- 读路径 ---

func (s *Service) GetStatus(ctx context.Context, clientID string) (*ClientStatusDTO, error) {
	return s.audits.GetStatus(ctx, clientID)
}

func (s *Service) GetFraudStatus(ctx context.Context, clientID string) (*FraudStatusDTO, error) {
	return s.frauds.GetFraudStatus(ctx, clientID)
}

func (s *Service) ListMetrics(ctx context.Context, filter MetricsFilter) ([]MetricsReview, error) {
	return s.agg.ListMetrics(ctx, filter)
}

func (s *Service) GetLastReview(ctx context.Context, clientID string) (*domain.Review, error) {
	return s.reviews.GetLastReview(ctx, clientID)
}

func (s *Service) GetByIDAndType(ctx context.Context, id uint, tipo domain.ReviewType) (*domain.Review, error) {
	return s.reviews.GetByIDAndType(ctx, id, tipo)
}

func (s *Service) GetAccountCreationDate(ctx context.Context, clientID string) (*string, error) {
	return s.reviews.GetAccountCreationDate(ctx, clientID)
}

func (s *Service) ListAudits(ctx context.Context, limit, offset int) ([]domain.AuditEntry, error) {
	return s.audits.ListAudits(ctx, limit, offset)
}
