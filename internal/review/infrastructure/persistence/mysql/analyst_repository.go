package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wyfcoding/fraudreview/internal/review/domain"
)

// GormAnalystRepository 分析师仓储实现
type GormAnalystRepository struct {
	db *gorm.DB
}

var _ domain.AnalystRepository = (*GormAnalystRepository)(nil)

// NewGormAnalystRepository 创建分析师仓储
func NewGormAnalystRepository(db *gorm.DB) *GormAnalystRepository {
	return &GormAnalystRepository{db: db}
}

// EnsureExists 不存在则创建；名称缺省为分析师 id，之后出现真名再覆盖
func (r *GormAnalystRepository) EnsureExists(ctx context.Context, analystID, name string) error {
	if name == "" {
		name = analystID
	}

	analyst := domain.Analyst{
		AnalystID: analystID,
		Name:      name,
	}

	conflict := clause.OnConflict{
		Columns:   []clause.Column{{Name: "analyst_id"}},
		DoNothing: true,
	}
	if name != analystID {
		conflict.DoNothing = false
		conflict.DoUpdates = clause.Assignments(map[string]interface{}{"name": name})
	}

	return r.db.WithContext(ctx).Clauses(conflict).Create(&analyst).Error
}
