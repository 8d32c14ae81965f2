package application

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/wyfcoding/fraudreview/pkg/cache"
	"github.com/wyfcoding/fraudreview/pkg/logger"
	"github.com/wyfcoding/fraudreview/pkg/metrics"
)

// 缓存键命名空间。键是查询语义的确定性函数，每个写路径负责删掉
// 它可能影响到的全部键；metrics 与 audits 的过滤组合无界，只能按前缀清。
const (
	keyPrefixLastReview = "review:last:"
	keyPrefixOnDate     = "review:one:"
	keyPrefixStatus     = "review:status:"
	keyPrefixAuditList  = "review:audits:"
	keyPrefixMetrics    = "review:metrics:"
)

func keyLastReview(clientID string) string {
	return keyPrefixLastReview + clientID
}

func keyReviewOnDate(clientID, date, tipo string) string {
	return fmt.Sprintf("%s%s:%s:%s", keyPrefixOnDate, clientID, date, tipo)
}

func keyStatus(clientID string) string {
	return keyPrefixStatus + clientID
}

func keyAuditList(limit, offset int) string {
	return fmt.Sprintf("%s%d:%d", keyPrefixAuditList, limit, offset)
}

// MetricsFilterKey 过滤条件的确定性缓存键，供表现层缓存聚合结果时使用。
// 本服务不缓存聚合输出，但写路径按 keyPrefixMetrics 前缀统一失效。
func MetricsFilterKey(f MetricsFilter) string {
	canonical := fmt.Sprintf("%s|%s|%s|%s|%s", f.AnalystID, f.DateFrom, f.DateTo, f.Tipo, f.ClientContains)
	sum := md5.Sum([]byte(canonical))
	return keyPrefixMetrics + hex.EncodeToString(sum[:])
}

// coherency 缓存一致性层。缓存只是加速器：任何缓存错误都被记录并吞掉，
// 读降级为直接读库，写照常进行——绝不把缓存不可用误当成"值为空"。
type coherency struct {
	cache   cache.Cache
	metrics *metrics.Metrics
}

func newCoherency(c cache.Cache, m *metrics.Metrics) *coherency {
	return &coherency{cache: c, metrics: m}
}

// readThrough 读穿缓存。命中直接返回；未命中调用 producer，异步回填后
// 返回结果（调用方不等待回填完成）。
func readThrough[T any](ctx context.Context, co *coherency, key string, ttl time.Duration, producer func(context.Context) (T, error)) (T, error) {
	var cached T
	hit, err := co.cache.GetJSON(ctx, key, &cached)
	if err != nil {
		logger.Warn(ctx, "Cache read failed, falling back to store", "key", key, "error", err)
		co.metrics.CacheFallbacksTotal.Inc()
		return producer(ctx)
	}
	if hit {
		co.metrics.CacheHitsTotal.Inc()
		return cached, nil
	}
	co.metrics.CacheMissesTotal.Inc()

	value, err := producer(ctx)
	if err != nil {
		return value, err
	}

	go func() {
		// 回填脱离请求生命周期，带自己的短超时
		bgCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := co.cache.SetJSON(bgCtx, key, value, ttl); err != nil {
			logger.Warn(bgCtx, "Cache populate failed", "key", key, "error", err)
		}
	}()

	return value, nil
}

// invalidate 删除精确键，失败只记日志
func (co *coherency) invalidate(ctx context.Context, keys ...string) {
	if err := co.cache.Delete(ctx, keys...); err != nil {
		logger.Warn(ctx, "Cache invalidation failed", "keys", keys, "error", err)
	}
}

// invalidatePrefix 按前缀清整个命名空间，失败只记日志
func (co *coherency) invalidatePrefix(ctx context.Context, prefix string) {
	if err := co.cache.DeletePattern(ctx, prefix+"*"); err != nil {
		logger.Warn(ctx, "Cache prefix invalidation failed", "prefix", prefix, "error", err)
	}
}
