package retry

import (
	"fmt"
	"math"
	"time"
)

// Backoff 将重试次数映射为等待时长
type Backoff interface {
	Delay(retryCount int) time.Duration
}

type fixedBackoff time.Duration

// NewFixedBackoff 每次重试等待固定秒数
func NewFixedBackoff(seconds int) (Backoff, error) {
	if seconds < 0 {
		return nil, fmt.Errorf("retry: backoff seconds must be a non-negative integer, got %d", seconds)
	}
	return fixedBackoff(time.Duration(seconds) * time.Second), nil
}

func (b fixedBackoff) Delay(int) time.Duration {
	return time.Duration(b)
}

type stepBackoff []time.Duration

// NewStepBackoff 按重试次数索引的延迟序列，元素为秒，
// 次数超出序列长度时复用最后一个元素
func NewStepBackoff(seconds []int) (Backoff, error) {
	if len(seconds) == 0 {
		return nil, fmt.Errorf("retry: backoff sequence must not be empty")
	}
	b := make(stepBackoff, len(seconds))
	for i, s := range seconds {
		if s < 0 {
			return nil, fmt.Errorf("retry: backoff sequence element must be a non-negative integer, got %d", s)
		}
		b[i] = time.Duration(s) * time.Second
	}
	return b, nil
}

func (b stepBackoff) Delay(retryCount int) time.Duration {
	if retryCount < 0 {
		retryCount = 0
	}
	if retryCount >= len(b) {
		retryCount = len(b) - 1
	}
	return b[retryCount]
}

type expBackoff struct {
	initialMs  float64
	multiplier float64
}

// NewExpBackoff 指数退避，初始延迟为毫秒，
// 第n次重试等待 floor(initialDelay × multiplier^n) 毫秒
func NewExpBackoff(initialDelayMs int, multiplier float64) (Backoff, error) {
	if initialDelayMs < 0 {
		return nil, fmt.Errorf("retry: backoff initial delay must be a non-negative integer, got %d", initialDelayMs)
	}
	if multiplier < 0 || math.IsNaN(multiplier) || math.IsInf(multiplier, 0) {
		return nil, fmt.Errorf("retry: backoff multiplier must be a non-negative number, got %v", multiplier)
	}
	return expBackoff{initialMs: float64(initialDelayMs), multiplier: multiplier}, nil
}

func (b expBackoff) Delay(retryCount int) time.Duration {
	if retryCount < 0 {
		retryCount = 0
	}
	ms := math.Floor(b.initialMs * math.Pow(b.multiplier, float64(retryCount)))
	return time.Duration(ms) * time.Millisecond
}

// ParseBackoff 解析配置中的退避描述，三种形态：
// 整数（秒）、整数序列（秒）、{initialDelay,delayMultiplier}（毫秒+倍率）
// 配置经json中转后数字为float64、对象为map[string]any，这里一并接受
func ParseBackoff(v any) (Backoff, error) {
	switch val := v.(type) {
	case nil:
		return nil, fmt.Errorf("retry: backoff value must not be nil")
	case int:
		return NewFixedBackoff(val)
	case int64:
		return NewFixedBackoff(int(val))
	case float64:
		n, ok := toInt(val)
		if !ok {
			return nil, fmt.Errorf("retry: backoff value must be an integer, got %v (%T)", val, val)
		}
		return NewFixedBackoff(n)
	case []int:
		return NewStepBackoff(val)
	case []any:
		seconds := make([]int, 0, len(val))
		for _, e := range val {
			n, ok := toInt(e)
			if !ok {
				return nil, fmt.Errorf("retry: backoff sequence element must be an integer, got %v (%T)", e, e)
			}
			seconds = append(seconds, n)
		}
		return NewStepBackoff(seconds)
	case map[string]any:
		initial, ok := toInt(val["initialDelay"])
		if !ok {
			return nil, fmt.Errorf("retry: backoff initialDelay must be an integer, got %v (%T)", val["initialDelay"], val["initialDelay"])
		}
		mult, ok := toFloat(val["delayMultiplier"])
		if !ok {
			return nil, fmt.Errorf("retry: backoff delayMultiplier must be a number, got %v (%T)", val["delayMultiplier"], val["delayMultiplier"])
		}
		return NewExpBackoff(initial, mult)
	default:
		return nil, fmt.Errorf("retry: unsupported backoff type %T", v)
	}
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if math.Trunc(n) != n {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
