// Package cache 提供注入式缓存端口，支持 Redis、内存与空实现
package cache

import (
	"context"
	"time"
)

// Cache 缓存端口。所有实现必须把"键不存在"表示为空字符串加 nil 错误，
// 错误只用于缓存本身不可用的场景，调用方据此降级为直接读库。
type Cache interface {
	// Get 获取缓存值，键不存在时返回 ("", nil)
	Get(ctx context.Context, key string) (string, error)
	// GetJSON 获取并反序列化缓存值，键不存在时不修改 dest
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	// Set 设置缓存值
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	// SetJSON 序列化并设置缓存值
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	// Delete 删除指定键
	Delete(ctx context.Context, keys ...string) error
	// DeletePattern 按前缀删除整个命名空间（pattern 为 "prefix*" 形式）
	DeletePattern(ctx context.Context, pattern string) error
	// Ping 探活
	Ping(ctx context.Context) error
	// Close 释放底层资源
	Close() error
}

// Noop 空实现，缓存关闭时使用，所有读都 miss，所有写都成功
type Noop struct{}

// NewNoop 创建空缓存
func NewNoop() *Noop { return &Noop{} }

func (n *Noop) Get(ctx context.Context, key string) (string, error) { return "", nil }

func (n *Noop) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	return false, nil
}

func (n *Noop) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return nil
}

func (n *Noop) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}

func (n *Noop) Delete(ctx context.Context, keys ...string) error { return nil }

func (n *Noop) DeletePattern(ctx context.Context, pattern string) error { return nil }

func (n *Noop) Ping(ctx context.Context) error { return nil }

func (n *Noop) Close() error { return nil }
