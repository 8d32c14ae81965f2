package domain

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout 归一化后的日期格式
const DateLayout = "2006-01-02"

var datetimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	DateLayout,
}

// NormalizeDate 把纯日期字符串、完整时间戳或 time.Time 统一收敛为
// YYYY-MM-DD。所有做日期比较的路径（查重、欺诈匹配）都必须先过这里。
func NormalizeDate(v interface{}) (string, error) {
	switch d := v.(type) {
	case time.Time:
		return d.Format(DateLayout), nil
	case *time.Time:
		if d == nil {
			return "", fmt.Errorf("nil date")
		}
		return d.Format(DateLayout), nil
	case string:
		s := strings.TrimSpace(d)
		if s == "" {
			return "", fmt.Errorf("empty date")
		}
		for _, layout := range datetimeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.Format(DateLayout), nil
			}
		}
		return "", fmt.Errorf("unrecognized date format: %q", s)
	default:
		return "", fmt.Errorf("unsupported date type %T", v)
	}
}

// ValidateAnalysisDate 归一化并拒绝未来日期
func ValidateAnalysisDate(v interface{}) (string, error) {
	normalized, err := NormalizeDate(v)
	if err != nil {
		return "", err
	}
	today := time.Now().Format(DateLayout)
	if normalized > today {
		return "", fmt.Errorf("analysis date %s is in the future", normalized)
	}
	return normalized, nil
}
