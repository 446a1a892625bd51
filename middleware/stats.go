package middleware

import (
	"sync/atomic"

	"github.com/teandr/crawler/collect"
	"go.uber.org/zap"
)

// Stats 流量计数，注册在最前面时统计全部经过管道的条目
type Stats struct {
	requests   atomic.Int64
	responses  atomic.Int64
	exceptions atomic.Int64
	logger     *zap.Logger
}

func NewStats(opts ...Option) *Stats {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}
	return &Stats{logger: options.logger}
}

func (s *Stats) OnRequest(req *collect.Request) *collect.Request {
	s.requests.Add(1)
	return req
}

func (s *Stats) OnResponse(resp *collect.Response) *collect.Response {
	s.responses.Add(1)
	return resp
}

func (s *Stats) OnException(_ *collect.Request, _ error) {
	s.exceptions.Add(1)
}

func (s *Stats) Requests() int64 {
	return s.requests.Load()
}

func (s *Stats) Responses() int64 {
	return s.responses.Load()
}

func (s *Stats) Exceptions() int64 {
	return s.exceptions.Load()
}

// LogSummary 输出一次计数汇总
func (s *Stats) LogSummary() {
	s.logger.Info("crawl stats",
		zap.Int64("requests", s.requests.Load()),
		zap.Int64("responses", s.responses.Load()),
		zap.Int64("exceptions", s.exceptions.Load()),
	)
}
