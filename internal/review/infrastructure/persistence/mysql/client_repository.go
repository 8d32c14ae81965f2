package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wyfcoding/fraudreview/internal/review/domain"
)

// GormClientRepository 客户仓储实现
type GormClientRepository struct {
	db *gorm.DB
}

var _ domain.ClientRepository = (*GormClientRepository)(nil)

// NewGormClientRepository 创建客户仓储
func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

// EnsureExists 不存在则创建（状态 OK），已存在且带来了新名称则更新名称
func (r *GormClientRepository) EnsureExists(ctx context.Context, clientID, name string) error {
	client := domain.Client{
		ClientID: clientID,
		Name:     name,
		Status:   domain.StatusOK,
	}

	conflict := clause.OnConflict{
		Columns:   []clause.Column{{Name: "client_id"}},
		DoNothing: true,
	}
	if name != "" {
		conflict.DoNothing = false
		conflict.DoUpdates = clause.Assignments(map[string]interface{}{"name": name})
	}

	return r.db.WithContext(ctx).Clauses(conflict).Create(&client).Error
}

func (r *GormClientRepository) Get(ctx context.Context, clientID string) (*domain.Client, error) {
	var client domain.Client
	err := r.db.WithContext(ctx).Where("client_id = ?", clientID).First(&client).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// StatusMap 批量取状态；结果集中缺席的客户不出现在 map 里，调用方按 OK 兜底
func (r *GormClientRepository) StatusMap(ctx context.Context, clientIDs []string) (map[string]domain.ClientStatus, error) {
	result := make(map[string]domain.ClientStatus, len(clientIDs))
	if len(clientIDs) == 0 {
		return result, nil
	}

	var clients []domain.Client
	err := r.db.WithContext(ctx).
		Where("client_id IN ?", clientIDs).
		Find(&clients).Error
	if err != nil {
		return nil, err
	}

	for i := range clients {
		result[clients[i].ClientID] = clients[i].Status
	}
	return result, nil
}

// Escalate 单向升级。状态只会沿 OK → MONITORAR → CRITICO 前进，
// 已处于同级或更高级别时不做任何修改。
func (r *GormClientRepository) Escalate(ctx context.Context, clientID string, status domain.ClientStatus) error {
	var lower []domain.ClientStatus
	switch status {
	case domain.StatusMonitorar:
		lower = []domain.ClientStatus{domain.StatusOK}
	case domain.StatusCritico:
		lower = []domain.ClientStatus{domain.StatusOK, domain.StatusMonitorar}
	default:
		return domain.NewValidationError("status", "cannot escalate to "+string(status))
	}

	return r.db.WithContext(ctx).
		Model(&domain.Client{}).
		Where("client_id = ? AND status IN ?", clientID, lower).
		Update("status", status).Error
}
