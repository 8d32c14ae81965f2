package application

import (
	"context"
	"fmt"

	"github.com/wyfcoding/fraudreview/internal/review/domain"
	"github.com/wyfcoding/fraudreview/pkg/logger"
	"github.com/wyfcoding/fraudreview/pkg/metrics"
)

// FraudService 欺诈关联服务：上报、客户状态升级与读取侧的污染推导
type FraudService struct {
	frauds    domain.FraudRepository
	clients   domain.ClientRepository
	co        *coherency
	metrics   *metrics.Metrics
	publisher domain.EventPublisher
}

// NewFraudService 创建欺诈服务
func NewFraudService(
	frauds domain.FraudRepository,
	clients domain.ClientRepository,
	co *coherency,
	m *metrics.Metrics,
	publisher domain.EventPublisher,
) *FraudService {
	return &FraudService{
		frauds:    frauds,
		clients:   clients,
		co:        co,
		metrics:   m,
		publisher: publisher,
	}
}

// ReportFraud 欺诈上报：写入 FraudReport 后无条件把客户状态升到
// MONITORAR（单向，已在 MONITORAR 或 CRITICO 时为幂等空操作）。
// 上报针对的是某个审核日期，但对应审核可以尚不存在——匹配在读取时
// 按 (客户, 归一化日期) 键推导，对插入顺序对称。
func (s *FraudService) ReportFraud(ctx context.Context, req *ReportFraudRequest) error {
	if req.ClientID == "" {
		return domain.NewValidationError("client_id", "is required")
	}
	if len(req.Description) < 10 {
		return domain.NewValidationError("description", "must be at least 10 characters")
	}
	if !req.Reason.Valid() {
		return domain.NewValidationError("reason", "unknown standard reason")
	}
	if req.AnalystID == "" {
		return domain.NewValidationError("analyst_id", "is required")
	}

	date, err := domain.ValidateAnalysisDate(req.AnalysisDate)
	if err != nil {
		return domain.NewValidationError("analysis_date", err.Error())
	}

	// 升级状态需要客户行存在；上报可以先于首次审核到达
	if err := s.clients.EnsureExists(ctx, req.ClientID, ""); err != nil {
		return fmt.Errorf("failed to ensure client: %w", err)
	}

	report := domain.FraudReport{
		ClientID:     req.ClientID,
		AnalysisDate: date,
		Description:  req.Description,
		Reason:       req.Reason,
		FreeReason:   req.FreeReason,
		AnalystID:    req.AnalystID,
	}
	if err := s.frauds.Create(ctx, &report); err != nil {
		return fmt.Errorf("failed to create fraud report: %w", err)
	}

	if err := s.clients.Escalate(ctx, req.ClientID, domain.StatusMonitorar); err != nil {
		return fmt.Errorf("fraud report %d persisted but status escalation failed: %w", report.ID, err)
	}

	s.metrics.FraudsReportedTotal.Inc()

	// 一条上报可以追溯性地改变任意多已缓存行的污染标记，只能按前缀清
	s.co.invalidatePrefix(ctx, keyPrefixMetrics)

	_ = s.publisher.Publish(ctx, domain.TopicFraudReported, req.ClientID, domain.FraudReportedEvent{
		ReportID:     report.ID,
		ClientID:     report.ClientID,
		AnalysisDate: report.AnalysisDate,
		Reason:       report.Reason,
		AnalystID:    report.AnalystID,
		CreatedAt:    report.CreatedAt,
	})

	logger.Info(ctx, "Fraud reported",
		"client_id", req.ClientID,
		"analysis_date", date,
		"reason", req.Reason,
		"report_id", report.ID,
	)

	return nil
}

// GetFraudStatus 客户欺诈状态。只追加且查询廉价，不走缓存。
func (s *FraudService) GetFraudStatus(ctx context.Context, clientID string) (*FraudStatusDTO, error) {
	if clientID == "" {
		return nil, domain.NewValidationError("client_id", "is required")
	}

	reports, err := s.frauds.ListByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return &FraudStatusDTO{HasFraud: len(reports) > 0, Reports: reports}, nil
}

// IsFraudTainted 单键污染判定
func (s *FraudService) IsFraudTainted(ctx context.Context, clientID, date string) (bool, error) {
	taint, err := s.TaintSet(ctx, []string{clientID})
	if err != nil {
		return false, err
	}
	_, tainted := taint[domain.TaintKey(clientID, date)]
	return tainted, nil
}

// TaintSet 批量污染推导：一次查询取出给定客户的全部上报（不按日期过滤，
// 任意日期的上报都要能命中同键审核），构造 client|date 归一化键集合。
func (s *FraudService) TaintSet(ctx context.Context, clientIDs []string) (map[string]struct{}, error) {
	taint := make(map[string]struct{})
	if len(clientIDs) == 0 {
		return taint, nil
	}

	reports, err := s.frauds.ListByClients(ctx, clientIDs)
	if err != nil {
		return nil, fmt.Errorf("fraud taint lookup failed: %w", err)
	}

	for i := range reports {
		taint[domain.TaintKey(reports[i].ClientID, reports[i].AnalysisDate)] = struct{}{}
	}
	return taint, nil
}
