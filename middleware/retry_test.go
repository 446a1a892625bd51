package middleware

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/teandr/crawler/collect"
	"github.com/teandr/crawler/retry"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeScheduler struct {
	reqs   []*collect.Request
	delays []time.Duration
}

func (f *fakeScheduler) PushDelayed(req *collect.Request, delay time.Duration) {
	f.reqs = append(f.reqs, req)
	f.delays = append(f.delays, delay)
}

func newRetryPolicy(t *testing.T, opts ...retry.Option) *retry.Policy {
	t.Helper()
	p, err := retry.NewPolicy(opts...)
	assert.Nil(t, err)
	return p
}

func resp503(url string) *collect.Response {
	return &collect.Response{
		Request:    &collect.Request{Url: url, Method: "GET"},
		StatusCode: http.StatusServiceUnavailable,
		Status:     "503 Service Unavailable",
	}
}

func TestRetryOnResponse(t *testing.T) {
	policy := newRetryPolicy(t,
		retry.WithRetryOnStatus(503),
		retry.WithMaxRetries(2),
		retry.WithBackoffValue([]int{1, 2, 3}),
	)
	scheduler := &fakeScheduler{}
	core, logs := observer.New(zap.InfoLevel)
	m := NewRetry(policy, scheduler, WithLogger(zap.New(core)))

	resp := resp503("https://example.com")
	got := m.OnResponse(resp)

	// 响应被原样返回但标记为丢弃
	assert.Same(t, resp, got)
	assert.True(t, got.Dropped())
	assert.Equal(t, "Request being retried", got.DropReason())

	// 恰好一个带延迟的重试副本进入调度器
	assert.Equal(t, 1, len(scheduler.reqs))
	next := scheduler.reqs[0]
	assert.Equal(t, "https://example.com", next.Url)
	assert.Equal(t, 1, next.RetryCount())
	delayMs, ok := next.Option(collect.OptionDelay)
	assert.True(t, ok)
	assert.Equal(t, int64(1000), delayMs)
	assert.Same(t, resp, next.PrevResponse())
	assert.Equal(t, 1*time.Second, scheduler.delays[0])

	// 原请求保持不变
	assert.Equal(t, 0, resp.Request.RetryCount())
	_, ok = resp.Request.Option(collect.OptionDelay)
	assert.False(t, ok)

	// 结构化重试事件
	entries := logs.FilterMessage("retrying request").All()
	assert.Equal(t, 1, len(entries))
	fields := entries[0].ContextMap()
	assert.Equal(t, "https://example.com", fields["url"])
	assert.Equal(t, int64(503), fields["status"])
	assert.Equal(t, int64(1), fields["retry_count"])
}

func TestRetryOnResponsePassThrough(t *testing.T) {
	policy := newRetryPolicy(t, retry.WithRetryOnStatus(503), retry.WithMaxRetries(2))
	scheduler := &fakeScheduler{}
	m := NewRetry(policy, scheduler)

	for _, status := range []int{200, 301, 404, 500} {
		resp := &collect.Response{
			Request:    &collect.Request{Url: "https://example.com"},
			StatusCode: status,
		}
		got := m.OnResponse(resp)
		assert.Same(t, resp, got)
		assert.False(t, got.Dropped())
	}
	assert.Empty(t, scheduler.reqs)
}

func TestRetryStopsAtMaxRetries(t *testing.T) {
	policy := newRetryPolicy(t,
		retry.WithRetryOnStatus(503),
		retry.WithMaxRetries(2),
		retry.WithBackoffValue([]int{1, 2, 3}),
	)
	scheduler := &fakeScheduler{}
	m := NewRetry(policy, scheduler)

	// 连续失败直至耗尽重试额度
	req := &collect.Request{Url: "https://example.com", Method: "GET"}
	for i := 0; i < 5; i++ {
		resp := &collect.Response{Request: req, StatusCode: 503}
		m.OnResponse(resp)
		if len(scheduler.reqs) == 0 || scheduler.reqs[len(scheduler.reqs)-1] == req {
			break
		}
		req = scheduler.reqs[len(scheduler.reqs)-1]
	}

	assert.Equal(t, 2, len(scheduler.reqs))
	assert.Equal(t, 1, scheduler.reqs[0].RetryCount())
	assert.Equal(t, 2, scheduler.reqs[1].RetryCount())
	// 退避序列按当前重试次数取值
	assert.Equal(t, 1*time.Second, scheduler.delays[0])
	assert.Equal(t, 2*time.Second, scheduler.delays[1])

	resp := &collect.Response{Request: scheduler.reqs[1], StatusCode: 503}
	got := m.OnResponse(resp)
	assert.False(t, got.Dropped())
	assert.Equal(t, 2, len(scheduler.reqs))
}

func TestRetryOnException(t *testing.T) {
	scheduler := &fakeScheduler{}
	m := NewRetry(newRetryPolicy(t), scheduler)

	// 默认不重试传输失败
	req := &collect.Request{Url: "https://example.com"}
	m.OnException(req, errors.New("connection refused"))
	assert.Empty(t, scheduler.reqs)

	scheduler = &fakeScheduler{}
	m = NewRetry(newRetryPolicy(t, retry.WithRetryOnConnFailure(true)), scheduler)
	m.OnException(req, errors.New("connection refused"))
	assert.Equal(t, 1, len(scheduler.reqs))
	next := scheduler.reqs[0]
	assert.Equal(t, 1, next.RetryCount())
	delayMs, ok := next.Option(collect.OptionDelay)
	assert.True(t, ok)
	assert.Equal(t, int64(1000), delayMs)
	assert.Equal(t, 0, req.RetryCount())
}
