package mysql

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/wyfcoding/fraudreview/internal/review/domain"
)

// GormReviewRepository 审核仓储实现。saque_reviews 与 deposito_reviews
// 的物理拆分只在本文件可见，所有跨表语义集中在这里。
type GormReviewRepository struct {
	db *gorm.DB
}

var _ domain.ReviewRepository = (*GormReviewRepository)(nil)

// NewGormReviewRepository 创建审核仓储
func NewGormReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

func (r *GormReviewRepository) CreateSaque(ctx context.Context, review *domain.SaqueReview) error {
	return r.db.WithContext(ctx).Create(review).Error
}

func (r *GormReviewRepository) CreateDeposito(ctx context.Context, review *domain.DepositoReview) error {
	return r.db.WithContext(ctx).Create(review).Error
}

// FindConflict 查重。冲突多于一条时按 id 倒序、审计时间倒序、日期倒序取第一条。
func (r *GormReviewRepository) FindConflict(ctx context.Context, clientID, date string, tipo domain.ReviewType) (*domain.Review, error) {
	order := "id DESC, audited_at DESC, analysis_date DESC"

	switch tipo {
	case domain.TipoSaque:
		var row domain.SaqueReview
		err := r.db.WithContext(ctx).
			Where("client_id = ? AND analysis_date = ?", clientID, date).
			Order(order).
			First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		review := row.AsReview()
		return &review, nil
	case domain.TipoDeposito:
		var row domain.DepositoReview
		err := r.db.WithContext(ctx).
			Where("client_id = ? AND analysis_date = ?", clientID, date).
			Order(order).
			First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		review := row.AsReview()
		return &review, nil
	default:
		return nil, domain.NewValidationError("tipo", "unknown review type")
	}
}

// LatestByClient 每张表各取该客户 id 最大的一条，再在（至多两个）候选之间
// 按 Review.MoreRecentThan 决出最近一条。
func (r *GormReviewRepository) LatestByClient(ctx context.Context, clientID string) (*domain.Review, error) {
	var latest *domain.Review

	var saque domain.SaqueReview
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("id DESC").
		First(&saque).Error
	switch {
	case err == nil:
		review := saque.AsReview()
		latest = &review
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return nil, err
	}

	var deposito domain.DepositoReview
	err = r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("id DESC").
		First(&deposito).Error
	switch {
	case err == nil:
		review := deposito.AsReview()
		if review.MoreRecentThan(latest) {
			latest = &review
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return nil, err
	}

	return latest, nil
}

func (r *GormReviewRepository) FindByIDAndType(ctx context.Context, id uint, tipo domain.ReviewType) (*domain.Review, error) {
	switch tipo {
	case domain.TipoSaque:
		var row domain.SaqueReview
		err := r.db.WithContext(ctx).First(&row, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		review := row.AsReview()
		return &review, nil
	case domain.TipoDeposito:
		var row domain.DepositoReview
		err := r.db.WithContext(ctx).First(&row, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		review := row.AsReview()
		return &review, nil
	default:
		return nil, domain.NewValidationError("tipo", "unknown review type")
	}
}

func (r *GormReviewRepository) StampAudit(ctx context.Context, id uint, tipo domain.ReviewType, at time.Time) error {
	updates := map[string]interface{}{
		"audited":    true,
		"audited_at": at,
	}

	switch tipo {
	case domain.TipoSaque:
		return r.db.WithContext(ctx).Model(&domain.SaqueReview{}).Where("id = ?", id).Updates(updates).Error
	case domain.TipoDeposito:
		return r.db.WithContext(ctx).Model(&domain.DepositoReview{}).Where("id = ?", id).Updates(updates).Error
	default:
		return domain.NewValidationError("tipo", "unknown review type")
	}
}

// reviewScan 带分析师展示名的查询投影
type reviewScan struct {
	ID               uint
	ClientID         string
	AnalysisDate     string
	AccountCreatedAt *string
	Valor            decimal.Decimal
	Note             string
	AnalystID        string
	AnalystName      string
	DurationSeconds  int
	Audited          bool
	AuditedAt        *time.Time
	CreatedAt        time.Time
	Detail           string
}

func (s *reviewScan) asReview(tipo domain.ReviewType) domain.Review {
	return domain.Review{
		ID:               s.ID,
		Tipo:             tipo,
		ClientID:         s.ClientID,
		AnalysisDate:     s.AnalysisDate,
		AccountCreatedAt: s.AccountCreatedAt,
		Valor:            s.Valor,
		Detail:           s.Detail,
		Note:             s.Note,
		AnalystID:        s.AnalystID,
		AnalystName:      s.AnalystName,
		DurationSeconds:  s.DurationSeconds,
		Audited:          s.Audited,
		AuditedAt:        s.AuditedAt,
		CreatedAt:        s.CreatedAt,
	}
}

// ListByFilter 只查类型过滤所蕴含的表（未过滤则两张都查），逐表投影统一
// 字段集并左联分析师表补展示名。结果不排序，顺序由聚合层决定。
func (r *GormReviewRepository) ListByFilter(ctx context.Context, filter domain.ReviewFilter) ([]domain.Review, error) {
	var out []domain.Review

	if filter.Tipo == "" || filter.Tipo == domain.TipoSaque {
		rows, err := r.listTable(ctx, "saque_reviews", "metodo_saque", filter)
		if err != nil {
			return nil, err
		}
		for i := range rows {
			out = append(out, rows[i].asReview(domain.TipoSaque))
		}
	}

	if filter.Tipo == "" || filter.Tipo == domain.TipoDeposito {
		rows, err := r.listTable(ctx, "deposito_reviews", "origem_deposito", filter)
		if err != nil {
			return nil, err
		}
		for i := range rows {
			out = append(out, rows[i].asReview(domain.TipoDeposito))
		}
	}

	return out, nil
}

func (r *GormReviewRepository) listTable(ctx context.Context, table, detailColumn string, filter domain.ReviewFilter) ([]reviewScan, error) {
	query := r.db.WithContext(ctx).
		Table(table+" AS r").
		Select("r.id, r.client_id, r.analysis_date, r.account_created_at, r.valor, r.note, "+
			"r.analyst_id, COALESCE(a.name, r.analyst_id) AS analyst_name, r.duration_seconds, "+
			"r.audited, r.audited_at, r.created_at, r."+detailColumn+" AS detail").
		Joins("LEFT JOIN analysts a ON a.analyst_id = r.analyst_id AND a.deleted_at IS NULL").
		Where("r.deleted_at IS NULL")

	if filter.AnalystID != "" {
		query = query.Where("r.analyst_id = ?", filter.AnalystID)
	}
	if filter.DateFrom != "" {
		query = query.Where("r.analysis_date >= ?", filter.DateFrom)
	}
	if filter.DateTo != "" {
		query = query.Where("r.analysis_date <= ?", filter.DateTo)
	}
	if filter.ClientContains != "" {
		query = query.Where("r.client_id LIKE ?", "%"+filter.ClientContains+"%")
	}

	var rows []reviewScan
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// EarliestAccountCreation 两张表各取最早的非空开户日期，取字典序较小者。
// 日期统一是 YYYY-MM-DD，字符串比较即日期比较。
func (r *GormReviewRepository) EarliestAccountCreation(ctx context.Context, clientID string) (*string, error) {
	var earliest *string

	for _, table := range []string{"saque_reviews", "deposito_reviews"} {
		var minDate *string
		err := r.db.WithContext(ctx).
			Table(table).
			Where("client_id = ? AND account_created_at IS NOT NULL AND deleted_at IS NULL", clientID).
			Select("MIN(account_created_at)").
			Scan(&minDate).Error
		if err != nil {
			return nil, err
		}
		if minDate != nil && (earliest == nil || *minDate < *earliest) {
			earliest = minDate
		}
	}

	return earliest, nil
}

func (r *GormReviewRepository) IsDuplicateKeyError(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
