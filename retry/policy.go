package retry

import (
	"fmt"
	"time"
)

// Decision 一次重试决策，Retry为false时其余字段无意义
type Decision struct {
	Retry          bool
	Delay          time.Duration
	NextRetryCount int
}

// Policy 重试策略求值器
// 纯计算，不持有调度器和传输，构造后不可变，可在goroutine间共享
type Policy struct {
	retryOnStatus      map[int]struct{}
	maxRetries         int
	backoff            Backoff
	retryOnConnFailure bool
}

type options struct {
	retryOnStatus      []int
	maxRetries         int
	backoff            Backoff
	backoffValue       any
	hasBackoffValue    bool
	retryOnConnFailure bool
}

var defaultOptions = options{
	retryOnStatus: []int{500, 502, 503, 504},
	maxRetries:    3,
}

type Option func(opt *options)

func WithRetryOnStatus(statuses ...int) Option {
	return func(opt *options) {
		opt.retryOnStatus = statuses
	}
}

func WithMaxRetries(maxRetries int) Option {
	return func(opt *options) {
		opt.maxRetries = maxRetries
	}
}

func WithBackoff(backoff Backoff) Option {
	return func(opt *options) {
		opt.backoff = backoff
	}
}

// WithBackoffValue 原始配置值，构造时经ParseBackoff校验
func WithBackoffValue(v any) Option {
	return func(opt *options) {
		opt.backoffValue = v
		opt.hasBackoffValue = true
	}
}

func WithRetryOnConnFailure(retry bool) Option {
	return func(opt *options) {
		opt.retryOnConnFailure = retry
	}
}

// NewPolicy 校验在构造时完成，之后的求值不再产生错误
func NewPolicy(opts ...Option) (*Policy, error) {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}
	if options.maxRetries < 0 {
		return nil, fmt.Errorf("retry: max retries must be non-negative, got %d", options.maxRetries)
	}
	backoff := options.backoff
	if options.hasBackoffValue {
		b, err := ParseBackoff(options.backoffValue)
		if err != nil {
			return nil, err
		}
		backoff = b
	}
	if backoff == nil {
		// 未配置退避时固定等待1秒
		b, err := NewFixedBackoff(1)
		if err != nil {
			return nil, err
		}
		backoff = b
	}
	p := &Policy{
		retryOnStatus:      make(map[int]struct{}, len(options.retryOnStatus)),
		maxRetries:         options.maxRetries,
		backoff:            backoff,
		retryOnConnFailure: options.retryOnConnFailure,
	}
	for _, s := range options.retryOnStatus {
		p.retryOnStatus[s] = struct{}{}
	}

	return p, nil
}

// ForStatus 根据HTTP状态码求值
func (p *Policy) ForStatus(statusCode, retryCount int) Decision {
	if _, ok := p.retryOnStatus[statusCode]; !ok {
		return Decision{}
	}
	return p.decide(retryCount)
}

// ForError 根据传输层失败求值
func (p *Policy) ForError(retryCount int) Decision {
	if !p.retryOnConnFailure {
		return Decision{}
	}
	return p.decide(retryCount)
}

func (p *Policy) decide(retryCount int) Decision {
	if retryCount < 0 {
		retryCount = 0
	}
	if retryCount >= p.maxRetries {
		return Decision{}
	}

	return Decision{
		Retry:          true,
		Delay:          p.backoff.Delay(retryCount),
		NextRetryCount: retryCount + 1,
	}
}
