package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/wyfcoding/fraudreview/internal/review/domain"
)

// GormFraudRepository 欺诈上报仓储实现
type GormFraudRepository struct {
	db *gorm.DB
}

var _ domain.FraudRepository = (*GormFraudRepository)(nil)

// NewGormFraudRepository 创建欺诈仓储
func NewGormFraudRepository(db *gorm.DB) *GormFraudRepository {
	return &GormFraudRepository{db: db}
}

func (r *GormFraudRepository) Create(ctx context.Context, report *domain.FraudReport) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *GormFraudRepository) ListByClient(ctx context.Context, clientID string) ([]domain.FraudReport, error) {
	var reports []domain.FraudReport
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("id DESC").
		Find(&reports).Error
	if err != nil {
		return nil, err
	}
	return reports, nil
}

// ListByClients 取一组客户的全部上报。故意不按日期过滤：任意日期的上报
// 都必须能命中同 (客户, 日期) 键的审核。
func (r *GormFraudRepository) ListByClients(ctx context.Context, clientIDs []string) ([]domain.FraudReport, error) {
	if len(clientIDs) == 0 {
		return nil, nil
	}
	var reports []domain.FraudReport
	err := r.db.WithContext(ctx).
		Where("client_id IN ?", clientIDs).
		Find(&reports).Error
	if err != nil {
		return nil, err
	}
	return reports, nil
}
