package application

import (
	"context"
	"fmt"
	"time"

	"github.com/wyfcoding/fraudreview/internal/review/domain"
	"github.com/wyfcoding/fraudreview/pkg/logger"
	"github.com/wyfcoding/fraudreview/pkg/metrics"
)

// ReviewService 审核服务：查重守卫、创建、最近一条与开户日期查询
type ReviewService struct {
	reviews   domain.ReviewRepository
	clients   domain.ClientRepository
	analysts  domain.AnalystRepository
	co        *coherency
	metrics   *metrics.Metrics
	publisher domain.EventPublisher

	lastReviewTTL time.Duration
}

// NewReviewService 创建审核服务
func NewReviewService(
	reviews domain.ReviewRepository,
	clients domain.ClientRepository,
	analysts domain.AnalystRepository,
	co *coherency,
	m *metrics.Metrics,
	publisher domain.EventPublisher,
	lastReviewTTL time.Duration,
) *ReviewService {
	return &ReviewService{
		reviews:       reviews,
		clients:       clients,
		analysts:      analysts,
		co:            co,
		metrics:       m,
		publisher:     publisher,
		lastReviewTTL: lastReviewTTL,
	}
}

// IsDuplicate 判断 (客户, 日期, 类型) 是否已有审核
func (s *ReviewService) IsDuplicate(ctx context.Context, clientID, date string, tipo domain.ReviewType) (bool, error) {
	conflict, err := s.GetConflict(ctx, clientID, date, tipo)
	if err != nil {
		return false, err
	}
	return conflict != nil, nil
}

// GetConflict 返回冲突记录；无冲突返回 (nil, nil)。存储不可用时报错，
// 不允许把不可用当成"无冲突"放行。
func (s *ReviewService) GetConflict(ctx context.Context, clientID, date string, tipo domain.ReviewType) (*domain.Review, error) {
	if !tipo.Valid() {
		return nil, domain.NewValidationError("tipo", "must be SAQUE or DEPOSITO")
	}
	normalized, err := domain.NormalizeDate(date)
	if err != nil {
		return nil, domain.NewValidationError("analysis_date", err.Error())
	}
	return s.reviews.FindConflict(ctx, clientID, normalized, tipo)
}

// CreateReview 创建审核。校验 → 隐式建客户/分析师 → 查重 → 写入。
// 查重与写入是两次独立往返，并发同键请求可能同时通过查重；
// 落库时的复合唯一索引兜底，唯一键冲突被翻译成同样的 DuplicateError。
func (s *ReviewService) CreateReview(ctx context.Context, req *CreateReviewRequest) (*domain.Review, error) {
	if err := s.validateCreate(req); err != nil {
		return nil, err
	}

	date, err := domain.ValidateAnalysisDate(req.AnalysisDate)
	if err != nil {
		return nil, domain.NewValidationError("analysis_date", err.Error())
	}

	var accountCreatedAt *string
	if req.AccountCreatedAt != "" {
		normalized, err := domain.NormalizeDate(req.AccountCreatedAt)
		if err != nil {
			return nil, domain.NewValidationError("account_created_at", err.Error())
		}
		accountCreatedAt = &normalized
	}

	if err := s.clients.EnsureExists(ctx, req.ClientID, req.ClientName); err != nil {
		return nil, fmt.Errorf("failed to ensure client: %w", err)
	}
	if err := s.analysts.EnsureExists(ctx, req.AnalystID, req.AnalystName); err != nil {
		return nil, fmt.Errorf("failed to ensure analyst: %w", err)
	}

	conflict, err := s.reviews.FindConflict(ctx, req.ClientID, date, req.Tipo)
	if err != nil {
		return nil, fmt.Errorf("duplicate check failed: %w", err)
	}
	if conflict != nil {
		s.metrics.DuplicateConflictsTotal.Inc()
		return nil, domain.NewDuplicateError(conflict)
	}

	base := domain.ReviewBase{
		ClientID:         req.ClientID,
		AnalysisDate:     date,
		AccountCreatedAt: accountCreatedAt,
		Note:             req.Note,
		AnalystID:        req.AnalystID,
		DurationSeconds:  req.DurationSeconds,
		Valor:            req.Valor,
	}

	var created domain.Review
	switch req.Tipo {
	case domain.TipoSaque:
		row := domain.SaqueReview{ReviewBase: base, MetodoSaque: req.Detail}
		if err := s.reviews.CreateSaque(ctx, &row); err != nil {
			return nil, s.translateInsertError(ctx, err, req.ClientID, date, req.Tipo)
		}
		created = row.AsReview()
	case domain.TipoDeposito:
		row := domain.DepositoReview{ReviewBase: base, OrigemDeposito: req.Detail}
		if err := s.reviews.CreateDeposito(ctx, &row); err != nil {
			return nil, s.translateInsertError(ctx, err, req.ClientID, date, req.Tipo)
		}
		created = row.AsReview()
	}

	s.metrics.ReviewsCreatedTotal.WithLabelValues(string(req.Tipo)).Inc()

	// 新记录改变"最近一条"、"当日记录"以及任意 metrics 结果
	s.co.invalidate(ctx,
		keyLastReview(req.ClientID),
		keyReviewOnDate(req.ClientID, date, string(req.Tipo)),
	)
	s.co.invalidatePrefix(ctx, keyPrefixMetrics)

	_ = s.publisher.Publish(ctx, domain.TopicReviewCreated, req.ClientID, domain.ReviewCreatedEvent{
		ReviewID:     created.ID,
		Tipo:         created.Tipo,
		ClientID:     created.ClientID,
		AnalysisDate: created.AnalysisDate,
		AnalystID:    created.AnalystID,
		CreatedAt:    created.CreatedAt,
	})

	logger.Info(ctx, "Review created",
		"client_id", created.ClientID,
		"tipo", created.Tipo,
		"analysis_date", created.AnalysisDate,
		"review_id", created.ID,
	)

	return &created, nil
}

// translateInsertError 把唯一键冲突（查重与写入之间的竞态窗口被索引挡下）
// 翻译成携带冲突记录的 DuplicateError
func (s *ReviewService) translateInsertError(ctx context.Context, err error, clientID, date string, tipo domain.ReviewType) error {
	if !s.reviews.IsDuplicateKeyError(err) {
		return err
	}
	s.metrics.DuplicateConflictsTotal.Inc()
	conflict, findErr := s.reviews.FindConflict(ctx, clientID, date, tipo)
	if findErr != nil {
		logger.Warn(ctx, "Failed to load conflicting review after duplicate key error", "error", findErr)
		return domain.NewDuplicateError(nil)
	}
	return domain.NewDuplicateError(conflict)
}

func (s *ReviewService) validateCreate(req *CreateReviewRequest) error {
	if req.ClientID == "" {
		return domain.NewValidationError("client_id", "is required")
	}
	if req.AnalystID == "" {
		return domain.NewValidationError("analyst_id", "is required")
	}
	if !req.Tipo.Valid() {
		return domain.NewValidationError("tipo", "must be SAQUE or DEPOSITO")
	}
	if req.Valor.IsNegative() {
		return domain.NewValidationError("valor", "must not be negative")
	}
	if req.DurationSeconds < 0 {
		return domain.NewValidationError("duration_seconds", "must not be negative")
	}
	return nil
}

// lastReviewEnvelope 让"客户尚无审核"也能被缓存且不与 miss 混淆
type lastReviewEnvelope struct {
	Review *domain.Review `json:"review"`
}

// GetLastReview 跨两张表的最近一条审核，读穿缓存；无审核返回 (nil, nil)
func (s *ReviewService) GetLastReview(ctx context.Context, clientID string) (*domain.Review, error) {
	if clientID == "" {
		return nil, domain.NewValidationError("client_id", "is required")
	}

	envelope, err := readThrough(ctx, s.co, keyLastReview(clientID), s.lastReviewTTL,
		func(ctx context.Context) (lastReviewEnvelope, error) {
			latest, err := s.reviews.LatestByClient(ctx, clientID)
			if err != nil {
				return lastReviewEnvelope{}, err
			}
			return lastReviewEnvelope{Review: latest}, nil
		})
	if err != nil {
		return nil, err
	}
	return envelope.Review, nil
}

// GetByIDAndType 定点查询，不存在返回 ErrNotFound
func (s *ReviewService) GetByIDAndType(ctx context.Context, id uint, tipo domain.ReviewType) (*domain.Review, error) {
	if !tipo.Valid() {
		return nil, domain.NewValidationError("tipo", "must be SAQUE or DEPOSITO")
	}
	review, err := s.reviews.FindByIDAndType(ctx, id, tipo)
	if err != nil {
		return nil, err
	}
	if review == nil {
		return nil, fmt.Errorf("review %d (%s): %w", id, tipo, domain.ErrNotFound)
	}
	return review, nil
}

// GetAccountCreationDate 跨两张表已知最早的开户日期，不缓存；未知返回 (nil, nil)
func (s *ReviewService) GetAccountCreationDate(ctx context.Context, clientID string) (*string, error) {
	if clientID == "" {
		return nil, domain.NewValidationError("client_id", "is required")
	}
	return s.reviews.EarliestAccountCreation(ctx, clientID)
}
