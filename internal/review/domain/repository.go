package domain

import (
	"context"
	"time"
)

// ReviewFilter 聚合查询过滤条件，零值字段表示不过滤
type ReviewFilter struct {
	AnalystID      string
	DateFrom       string
	DateTo         string
	Tipo           ReviewType
	ClientContains string
}

// ReviewRepository 审核仓储。两张物理表的拆分被封装在实现内部，
// 跨表语义（查重、最近一条、按过滤条件合并）只在这一个接口上表达。
type ReviewRepository interface {
	// CreateSaque 写入提款审核
	CreateSaque(ctx context.Context, review *SaqueReview) error
	// CreateDeposito 写入存款审核
	CreateDeposito(ctx context.Context, review *DepositoReview) error
	// FindConflict 返回与 (客户, 日期, 类型) 冲突的记录；无冲突返回 (nil, nil)。
	// 存储不可用时必须报错，绝不能把不可用当成"无冲突"。
	FindConflict(ctx context.Context, clientID, date string, tipo ReviewType) (*Review, error)
	// LatestByClient 返回该客户跨两张表最近的一条审核；没有则 (nil, nil)
	LatestByClient(ctx context.Context, clientID string) (*Review, error)
	// FindByIDAndType 定点查询；不存在返回 (nil, nil)
	FindByIDAndType(ctx context.Context, id uint, tipo ReviewType) (*Review, error)
	// StampAudit 给指定记录盖审计标记与时间戳
	StampAudit(ctx context.Context, id uint, tipo ReviewType, at time.Time) error
	// ListByFilter 按过滤条件合并两张表的记录，连带分析师展示名；
	// 不排序不翻页，顺序由聚合层决定
	ListByFilter(ctx context.Context, filter ReviewFilter) ([]Review, error)
	// EarliestAccountCreation 跨两张表已知最早的开户日期；未知返回 (nil, nil)
	EarliestAccountCreation(ctx context.Context, clientID string) (*string, error)
	// IsDuplicateKeyError 判断底层写入错误是否为唯一键冲突
	IsDuplicateKeyError(err error) bool
}

// ClientRepository 客户仓储
type ClientRepository interface {
	// EnsureExists 不存在则创建，存在则只在提供了新名称时更新名称
	EnsureExists(ctx context.Context, clientID, name string) error
	// Get 不存在返回 (nil, nil)
	Get(ctx context.Context, clientID string) (*Client, error)
	// StatusMap 批量取客户状态，缺失的客户按 OK 处理
	StatusMap(ctx context.Context, clientIDs []string) (map[string]ClientStatus, error)
	// Escalate 单向升级客户状态，已处于同级或更高级别时为幂等空操作
	Escalate(ctx context.Context, clientID string, status ClientStatus) error
}

// AnalystRepository 分析师仓储
type AnalystRepository interface {
	// EnsureExists 不存在则创建，名称缺省为分析师 id
	EnsureExists(ctx context.Context, analystID, name string) error
}

// AuditRepository 审计登记仓储，只追加
type AuditRepository interface {
	Create(ctx context.Context, entry *AuditEntry) error
	// LatestByClient 不存在返回 (nil, nil)
	LatestByClient(ctx context.Context, clientID string) (*AuditEntry, error)
	// List 按创建时间倒序翻页
	List(ctx context.Context, limit, offset int) ([]AuditEntry, error)
}

// FraudRepository 欺诈上报仓储，只追加
type FraudRepository interface {
	Create(ctx context.Context, report *FraudReport) error
	ListByClient(ctx context.Context, clientID string) ([]FraudReport, error)
	// ListByClients 批量取一组客户的全部上报（不按日期过滤——任意日期的
	// 上报都要能命中同键的审核）
	ListByClients(ctx context.Context, clientIDs []string) ([]FraudReport, error)
}
