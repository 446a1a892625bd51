package middleware

import (
	"github.com/teandr/crawler/collect"
	"go.uber.org/zap"
)

// MaxDepth 丢弃超过任务深度上限的请求
type MaxDepth struct {
	logger *zap.Logger
}

func NewMaxDepth(opts ...Option) *MaxDepth {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}
	return &MaxDepth{logger: options.logger}
}

func (m *MaxDepth) OnRequest(req *collect.Request) *collect.Request {
	if err := req.Check(); err != nil {
		req.Drop(err.Error())
		m.logger.Debug("request dropped",
			zap.String("url", req.Url),
			zap.Int("depth", req.Depth),
			zap.String("reason", err.Error()),
		)
	}

	return req
}
