package application

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/wyfcoding/fraudreview/internal/review/domain"
	"github.com/wyfcoding/fraudreview/pkg/cache"
	"github.com/wyfcoding/fraudreview/pkg/metrics"
)

var errStoreDown = errors.New("store unavailable")

var errDuplicateKey = errors.New("duplicate key violation")

// mockReviewRepo 内存审核仓储，模拟两张独立自增的物理表
type mockReviewRepo struct {
	mu        sync.Mutex
	saques    []domain.SaqueReview
	depositos []domain.DepositoReview

	nextSaqueID    uint
	nextDepositoID uint

	analystNames map[string]string

	// FailReads 置位后所有读操作返回 errStoreDown
	FailReads bool
	// FailCreateWithDuplicate 置位后下一次写入返回唯一键冲突
	FailCreateWithDuplicate bool
	// FailStamp 置位后 StampAudit 返回 errStoreDown
	FailStamp bool
}

var _ domain.ReviewRepository = (*mockReviewRepo)(nil)

func newMockReviewRepo() *mockReviewRepo {
	return &mockReviewRepo{
		nextSaqueID:    1,
		nextDepositoID: 1,
		analystNames:   make(map[string]string),
	}
}

func (m *mockReviewRepo) CreateSaque(ctx context.Context, review *domain.SaqueReview) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailCreateWithDuplicate {
		m.FailCreateWithDuplicate = false
		return errDuplicateKey
	}
	review.ID = m.nextSaqueID
	m.nextSaqueID++
	review.CreatedAt = time.Now()
	m.saques = append(m.saques, *review)
	return nil
}

func (m *mockReviewRepo) CreateDeposito(ctx context.Context, review *domain.DepositoReview) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailCreateWithDuplicate {
		m.FailCreateWithDuplicate = false
		return errDuplicateKey
	}
	review.ID = m.nextDepositoID
	m.nextDepositoID++
	review.CreatedAt = time.Now()
	m.depositos = append(m.depositos, *review)
	return nil
}

func (m *mockReviewRepo) FindConflict(ctx context.Context, clientID, date string, tipo domain.ReviewType) (*domain.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailReads {
		return nil, errStoreDown
	}

	var candidates []domain.Review
	switch tipo {
	case domain.TipoSaque:
		for i := range m.saques {
			if m.saques[i].ClientID == clientID && m.saques[i].AnalysisDate == date {
				candidates = append(candidates, m.saques[i].AsReview())
			}
		}
	case domain.TipoDeposito:
		for i := range m.depositos {
			if m.depositos[i].ClientID == clientID && m.depositos[i].AnalysisDate == date {
				candidates = append(candidates, m.depositos[i].AsReview())
			}
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].MoreRecentThan(&candidates[j])
	})
	return &candidates[0], nil
}

func (m *mockReviewRepo) LatestByClient(ctx context.Context, clientID string) (*domain.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailReads {
		return nil, errStoreDown
	}

	var latest *domain.Review
	for i := range m.saques {
		if m.saques[i].ClientID != clientID {
			continue
		}
		r := m.saques[i].AsReview()
		if latest == nil || r.ID > latest.ID {
			latest = &r
		}
	}
	var latestDeposito *domain.Review
	for i := range m.depositos {
		if m.depositos[i].ClientID != clientID {
			continue
		}
		r := m.depositos[i].AsReview()
		if latestDeposito == nil || r.ID > latestDeposito.ID {
			latestDeposito = &r
		}
	}
	if latestDeposito != nil && latestDeposito.MoreRecentThan(latest) {
		latest = latestDeposito
	}
	return latest, nil
}

func (m *mockReviewRepo) FindByIDAndType(ctx context.Context, id uint, tipo domain.ReviewType) (*domain.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailReads {
		return nil, errStoreDown
	}

	switch tipo {
	case domain.TipoSaque:
		for i := range m.saques {
			if m.saques[i].ID == id {
				r := m.saques[i].AsReview()
				return &r, nil
			}
		}
	case domain.TipoDeposito:
		for i := range m.depositos {
			if m.depositos[i].ID == id {
				r := m.depositos[i].AsReview()
				return &r, nil
			}
		}
	}
	return nil, nil
}

func (m *mockReviewRepo) StampAudit(ctx context.Context, id uint, tipo domain.ReviewType, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailStamp {
		return errStoreDown
	}

	switch tipo {
	case domain.TipoSaque:
		for i := range m.saques {
			if m.saques[i].ID == id {
				m.saques[i].Audited = true
				stamped := at
				m.saques[i].AuditedAt = &stamped
				return nil
			}
		}
	case domain.TipoDeposito:
		for i := range m.depositos {
			if m.depositos[i].ID == id {
				m.depositos[i].Audited = true
				stamped := at
				m.depositos[i].AuditedAt = &stamped
				return nil
			}
		}
	}
	return errStoreDown
}

func (m *mockReviewRepo) ListByFilter(ctx context.Context, filter domain.ReviewFilter) ([]domain.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailReads {
		return nil, errStoreDown
	}

	var out []domain.Review
	if filter.Tipo == "" || filter.Tipo == domain.TipoSaque {
		for i := range m.saques {
			r := m.saques[i].AsReview()
			if m.matches(&r, filter) {
				m.joinName(&r)
				out = append(out, r)
			}
		}
	}
	if filter.Tipo == "" || filter.Tipo == domain.TipoDeposito {
		for i := range m.depositos {
			r := m.depositos[i].AsReview()
			if m.matches(&r, filter) {
				m.joinName(&r)
				out = append(out, r)
			}
		}
	}
	return out, nil
}

func (m *mockReviewRepo) matches(r *domain.Review, filter domain.ReviewFilter) bool {
	if filter.AnalystID != "" && r.AnalystID != filter.AnalystID {
		return false
	}
	if filter.DateFrom != "" && r.AnalysisDate < filter.DateFrom {
		return false
	}
	if filter.DateTo != "" && r.AnalysisDate > filter.DateTo {
		return false
	}
	if filter.ClientContains != "" && !strings.Contains(r.ClientID, filter.ClientContains) {
		return false
	}
	return true
}

func (m *mockReviewRepo) joinName(r *domain.Review) {
	if name, ok := m.analystNames[r.AnalystID]; ok {
		r.AnalystName = name
	} else {
		r.AnalystName = r.AnalystID
	}
}

func (m *mockReviewRepo) EarliestAccountCreation(ctx context.Context, clientID string) (*string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailReads {
		return nil, errStoreDown
	}

	var earliest *string
	consider := func(date *string) {
		if date == nil {
			return
		}
		if earliest == nil || *date < *earliest {
			d := *date
			earliest = &d
		}
	}
	for i := range m.saques {
		if m.saques[i].ClientID == clientID {
			consider(m.saques[i].AccountCreatedAt)
		}
	}
	for i := range m.depositos {
		if m.depositos[i].ClientID == clientID {
			consider(m.depositos[i].AccountCreatedAt)
		}
	}
	return earliest, nil
}

func (m *mockReviewRepo) IsDuplicateKeyError(err error) bool {
	return errors.Is(err, errDuplicateKey)
}

// countReviews 返回 (客户, 日期, 类型) 现存记录数，用于断言去重不变量
func (m *mockReviewRepo) countReviews(clientID, date string, tipo domain.ReviewType) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	switch tipo {
	case domain.TipoSaque:
		for i := range m.saques {
			if m.saques[i].ClientID == clientID && m.saques[i].AnalysisDate == date {
				count++
			}
		}
	case domain.TipoDeposito:
		for i := range m.depositos {
			if m.depositos[i].ClientID == clientID && m.depositos[i].AnalysisDate == date {
				count++
			}
		}
	}
	return count
}

// mockClientRepo 内存客户仓储
type mockClientRepo struct {
	mu      sync.Mutex
	clients map[string]*domain.Client
}

var _ domain.ClientRepository = (*mockClientRepo)(nil)

func newMockClientRepo() *mockClientRepo {
	return &mockClientRepo{clients: make(map[string]*domain.Client)}
}

func (m *mockClientRepo) EnsureExists(ctx context.Context, clientID, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.clients[clientID]; ok {
		if name != "" {
			existing.Name = name
		}
		return nil
	}
	m.clients[clientID] = &domain.Client{ClientID: clientID, Name: name, Status: domain.StatusOK}
	return nil
}

func (m *mockClientRepo) Get(ctx context.Context, clientID string) (*domain.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.clients[clientID]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, nil
}

func (m *mockClientRepo) StatusMap(ctx context.Context, clientIDs []string) (map[string]domain.ClientStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]domain.ClientStatus)
	for _, id := range clientIDs {
		if c, ok := m.clients[id]; ok {
			out[id] = c.Status
		}
	}
	return out, nil
}

// Drop 删除客户行，用于模拟审核存在而 clients 表缺行的情形
func (m *mockClientRepo) Drop(clientID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.clients, clientID)
}

func (m *mockClientRepo) Escalate(ctx context.Context, clientID string, status domain.ClientStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.clients[clientID]
	if !ok {
		return nil
	}
	rank := map[domain.ClientStatus]int{
		domain.StatusOK:        0,
		domain.StatusMonitorar: 1,
		domain.StatusCritico:   2,
	}
	if rank[status] > rank[c.Status] {
		c.Status = status
	}
	return nil
}

// mockAnalystRepo 内存分析师仓储
type mockAnalystRepo struct {
	mu    sync.Mutex
	names map[string]string
}

var _ domain.AnalystRepository = (*mockAnalystRepo)(nil)

func newMockAnalystRepo() *mockAnalystRepo {
	return &mockAnalystRepo{names: make(map[string]string)}
}

func (m *mockAnalystRepo) EnsureExists(ctx context.Context, analystID, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if name == "" {
		name = analystID
	}
	m.names[analystID] = name
	return nil
}

// mockAuditRepo 内存审计仓储
type mockAuditRepo struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
	nextID  uint

	FailCreate bool
}

var _ domain.AuditRepository = (*mockAuditRepo)(nil)

func newMockAuditRepo() *mockAuditRepo {
	return &mockAuditRepo{nextID: 1}
}

func (m *mockAuditRepo) Create(ctx context.Context, entry *domain.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailCreate {
		return errStoreDown
	}
	entry.ID = m.nextID
	m.nextID++
	entry.CreatedAt = time.Now()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *mockAuditRepo) LatestByClient(ctx context.Context, clientID string) (*domain.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *domain.AuditEntry
	for i := range m.entries {
		if m.entries[i].ClientID != clientID {
			continue
		}
		if latest == nil || m.entries[i].ID > latest.ID {
			latest = &m.entries[i]
		}
	}
	if latest == nil {
		return nil, nil
	}
	copied := *latest
	return &copied, nil
}

func (m *mockAuditRepo) List(ctx context.Context, limit, offset int) ([]domain.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sorted := make([]domain.AuditEntry, len(m.entries))
	copy(sorted, m.entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID > sorted[j].ID })
	if offset >= len(sorted) {
		return nil, nil
	}
	end := offset + limit
	if end > len(sorted) {
		end = len(sorted)
	}
	return sorted[offset:end], nil
}

// mockFraudRepo 内存欺诈仓储
type mockFraudRepo struct {
	mu      sync.Mutex
	reports []domain.FraudReport
	nextID  uint
}

var _ domain.FraudRepository = (*mockFraudRepo)(nil)

func newMockFraudRepo() *mockFraudRepo {
	return &mockFraudRepo{nextID: 1}
}

func (m *mockFraudRepo) Create(ctx context.Context, report *domain.FraudReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	report.ID = m.nextID
	m.nextID++
	report.CreatedAt = time.Now()
	m.reports = append(m.reports, *report)
	return nil
}

func (m *mockFraudRepo) ListByClient(ctx context.Context, clientID string) ([]domain.FraudReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.FraudReport
	for i := range m.reports {
		if m.reports[i].ClientID == clientID {
			out = append(out, m.reports[i])
		}
	}
	return out, nil
}

func (m *mockFraudRepo) ListByClients(ctx context.Context, clientIDs []string) ([]domain.FraudReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := make(map[string]struct{}, len(clientIDs))
	for _, id := range clientIDs {
		want[id] = struct{}{}
	}
	var out []domain.FraudReport
	for i := range m.reports {
		if _, ok := want[m.reports[i].ClientID]; ok {
			out = append(out, m.reports[i])
		}
	}
	return out, nil
}

// mockPublisher 记录发布的事件
type mockPublisher struct {
	mu     sync.Mutex
	topics []string
}

var _ domain.EventPublisher = (*mockPublisher)(nil)

func (m *mockPublisher) Publish(ctx context.Context, topic string, key string, event any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.topics = append(m.topics, topic)
	return nil
}

// testEnv 组装一套完整的被测服务及其可观察的依赖
type testEnv struct {
	svc      *Service
	reviews  *mockReviewRepo
	clients  *mockClientRepo
	analysts *mockAnalystRepo
	audits   *mockAuditRepo
	frauds   *mockFraudRepo
	cache    *cache.Memory
	pub      *mockPublisher
}

func newTestEnv() *testEnv {
	env := &testEnv{
		reviews:  newMockReviewRepo(),
		clients:  newMockClientRepo(),
		analysts: newMockAnalystRepo(),
		audits:   newMockAuditRepo(),
		frauds:   newMockFraudRepo(),
		cache:    cache.NewMemory(),
		pub:      &mockPublisher{},
	}
	env.reviews.analystNames = env.analysts.names

	env.svc = NewService(
		env.reviews,
		env.clients,
		env.analysts,
		env.audits,
		env.frauds,
		env.cache,
		metrics.New("test"),
		env.pub,
		Config{
			LastReviewTTL: 3 * time.Minute,
			StatusTTL:     5 * time.Minute,
			AuditListTTL:  2 * time.Minute,
		},
	)
	return env
}
