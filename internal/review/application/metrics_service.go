package application

import (
	"context"
	"fmt"
	"sort"

	"github.com/wyfcoding/fraudreview/internal/review/domain"
)

// MetricsService 聚合服务：合并两张审核表、标注欺诈/状态并给出稳定排序。
// 这是系统里最贵的读（两张表各一次扫描加客户级的欺诈与状态扇出），
// 过滤组合无界，输出不做整体缓存，需要的话由表现层用 MetricsFilterKey 缓存。
type MetricsService struct {
	reviews domain.ReviewRepository
	clients domain.ClientRepository
	frauds  *FraudService
}

// NewMetricsService 创建聚合服务
func NewMetricsService(reviews domain.ReviewRepository, clients domain.ClientRepository, frauds *FraudService) *MetricsService {
	return &MetricsService{reviews: reviews, clients: clients, frauds: frauds}
}

// ListMetrics 聚合查询：
//  1. 只查类型过滤蕴含的表，投影统一字段并连分析师展示名；
//  2. 拼接两个结果集；
//  3. 对结果集中出现的客户批量推导欺诈污染集与状态表；
//  4. 逐行标注 TemFraude 与 StatusCliente；
//  5. 全序排序：被标记行（有审计时间戳或被污染）在前，同档内按分析
//     日期倒序，再按 id 倒序，最后按类型定序兜底。
//
// 排序只依赖结果集内容，同样的数据同样的过滤必得同样的顺序。
func (s *MetricsService) ListMetrics(ctx context.Context, filter MetricsFilter) ([]MetricsReview, error) {
	domainFilter, err := s.normalizeFilter(filter)
	if err != nil {
		return nil, err
	}

	rows, err := s.reviews.ListByFilter(ctx, domainFilter)
	if err != nil {
		return nil, fmt.Errorf("metrics query failed: %w", err)
	}
	if len(rows) == 0 {
		return []MetricsReview{}, nil
	}

	clientIDs := distinctClients(rows)

	taint, err := s.frauds.TaintSet(ctx, clientIDs)
	if err != nil {
		return nil, err
	}

	statusMap, err := s.clients.StatusMap(ctx, clientIDs)
	if err != nil {
		return nil, fmt.Errorf("client status lookup failed: %w", err)
	}

	result := make([]MetricsReview, 0, len(rows))
	for i := range rows {
		row := rows[i]
		_, tainted := taint[domain.TaintKey(row.ClientID, row.AnalysisDate)]

		status, ok := statusMap[row.ClientID]
		if !ok {
			status = domain.StatusOK
		}

		result = append(result, MetricsReview{
			Review:        row,
			TemFraude:     tainted,
			StatusCliente: status,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return lessMetrics(&result[i], &result[j])
	})

	return result, nil
}

// lessMetrics 聚合结果的全序比较器
func lessMetrics(a, b *MetricsReview) bool {
	aFlagged := a.AuditedAt != nil || a.TemFraude
	bFlagged := b.AuditedAt != nil || b.TemFraude
	if aFlagged != bFlagged {
		return aFlagged
	}
	if a.AnalysisDate != b.AnalysisDate {
		return a.AnalysisDate > b.AnalysisDate
	}
	if a.ID != b.ID {
		return a.ID > b.ID
	}
	// id 只在各自表内唯一，类型定序保证跨表比较仍是全序
	return a.Tipo < b.Tipo
}

func (s *MetricsService) normalizeFilter(filter MetricsFilter) (domain.ReviewFilter, error) {
	out := domain.ReviewFilter{
		AnalystID:      filter.AnalystID,
		Tipo:           filter.Tipo,
		ClientContains: filter.ClientContains,
	}

	if filter.Tipo != "" && !filter.Tipo.Valid() {
		return out, domain.NewValidationError("tipo", "must be SAQUE or DEPOSITO")
	}

	if filter.DateFrom != "" {
		normalized, err := domain.NormalizeDate(filter.DateFrom)
		if err != nil {
			return out, domain.NewValidationError("date_from", err.Error())
		}
		out.DateFrom = normalized
	}
	if filter.DateTo != "" {
		normalized, err := domain.NormalizeDate(filter.DateTo)
		if err != nil {
			return out, domain.NewValidationError("date_to", err.Error())
		}
		out.DateTo = normalized
	}

	return out, nil
}

func distinctClients(rows []domain.Review) []string {
	seen := make(map[string]struct{}, len(rows))
	out := make([]string, 0, len(rows))
	for i := range rows {
		if _, ok := seen[rows[i].ClientID]; ok {
			continue
		}
		seen[rows[i].ClientID] = struct{}{}
		out = append(out, rows[i].ClientID)
	}
	return out
}
