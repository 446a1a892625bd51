package middleware

import (
	"time"

	"github.com/teandr/crawler/collect"
	"github.com/teandr/crawler/retry"
	"go.uber.org/zap"
)

// DropReasonRetry 因重试被丢弃的响应携带的原因，
// 下游据此区分主动重试和真正的失败
const DropReasonRetry = "Request being retried"

// Scheduler Retry中间件需要的最小调度能力
type Scheduler interface {
	PushDelayed(req *collect.Request, delay time.Duration)
}

// Retry 响应/异常阶段的重试钩子，不触碰请求阶段
// 决策由Policy纯计算得出，日志与调度副作用在决策之后一并执行
type Retry struct {
	policy    *retry.Policy
	scheduler Scheduler
	logger    *zap.Logger
}

func NewRetry(policy *retry.Policy, scheduler Scheduler, opts ...Option) *Retry {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}
	return &Retry{
		policy:    policy,
		scheduler: scheduler,
		logger:    options.logger,
	}
}

// OnResponse 状态码可重试时调度延迟副本并丢弃当前响应，
// 不可重试时原样返回
func (m *Retry) OnResponse(resp *collect.Response) *collect.Response {
	d := m.policy.ForStatus(resp.StatusCode, resp.Request.RetryCount())
	if !d.Retry {
		return resp
	}
	m.logger.Info("retrying request",
		zap.String("url", resp.Request.Url),
		zap.Int("status", resp.StatusCode),
		zap.Int("retry_count", d.NextRetryCount),
		zap.Duration("delay", d.Delay),
	)
	next := resp.Request.
		WithRetryCount(d.NextRetryCount).
		WithOption(collect.OptionDelay, d.Delay.Milliseconds()).
		WithResponse(resp)
	m.scheduler.PushDelayed(next, d.Delay)
	resp.Drop(DropReasonRetry)

	return resp
}

// OnException 传输层失败没有响应，可重试时只产生新的调度条目
func (m *Retry) OnException(req *collect.Request, err error) {
	d := m.policy.ForError(req.RetryCount())
	if !d.Retry {
		return
	}
	m.logger.Info("retrying request after transport failure",
		zap.String("url", req.Url),
		zap.Int("retry_count", d.NextRetryCount),
		zap.Duration("delay", d.Delay),
		zap.Error(err),
	)
	next := req.
		WithRetryCount(d.NextRetryCount).
		WithOption(collect.OptionDelay, d.Delay.Milliseconds())
	m.scheduler.PushDelayed(next, d.Delay)
}
