package middleware

import (
	"sync"

	"github.com/teandr/crawler/collect"
	"go.uber.org/zap"
)

// Dedupe 丢弃指纹重复的请求
// 重试的再投递（retry_count>0）不算重复，任务声明Reload时直接放行
type Dedupe struct {
	mu      sync.Mutex
	visited map[string]bool
	logger  *zap.Logger
}

func NewDedupe(opts ...Option) *Dedupe {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}
	return &Dedupe{
		visited: map[string]bool{},
		logger:  options.logger,
	}
}

func (d *Dedupe) OnRequest(req *collect.Request) *collect.Request {
	if req.RetryCount() > 0 {
		return req
	}
	if req.Task != nil && req.Task.Reload {
		return req
	}
	unique := req.Unique()
	d.mu.Lock()
	seen := d.visited[unique]
	if !seen {
		d.visited[unique] = true
	}
	d.mu.Unlock()
	if seen {
		req.Drop("duplicate request")
		d.logger.Debug("duplicate request dropped", zap.String("url", req.Url))
	}

	return req
}
