package middleware

import (
	"fmt"

	"github.com/teandr/crawler/collect"
	"go.uber.org/zap"
)

// 钩子接口，中间件按需实现任意子集
type RequestHook interface {
	OnRequest(req *collect.Request) *collect.Request
}

type ResponseHook interface {
	OnResponse(resp *collect.Response) *collect.Response
}

type ExceptionHook interface {
	OnException(req *collect.Request, err error)
}

// Pipeline 按注册顺序执行钩子
// 被丢弃的条目不再传给后续钩子，终止语义由运行器统一保证
type Pipeline struct {
	requestHooks   []RequestHook
	responseHooks  []ResponseHook
	exceptionHooks []ExceptionHook
	logger         *zap.Logger
}

func NewPipeline(opts ...Option) *Pipeline {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}
	return &Pipeline{logger: options.logger}
}

// Register 依中间件实现的钩子接口挂到对应阶段
func (p *Pipeline) Register(mws ...any) {
	for _, mw := range mws {
		registered := false
		if h, ok := mw.(RequestHook); ok {
			p.requestHooks = append(p.requestHooks, h)
			registered = true
		}
		if h, ok := mw.(ResponseHook); ok {
			p.responseHooks = append(p.responseHooks, h)
			registered = true
		}
		if h, ok := mw.(ExceptionHook); ok {
			p.exceptionHooks = append(p.exceptionHooks, h)
			registered = true
		}
		if !registered {
			p.logger.Warn("middleware implements no hook interface",
				zap.String("type", fmt.Sprintf("%T", mw)))
		}
	}
}

// HandleRequest 请求阶段，返回可能被替换或被丢弃的请求
func (p *Pipeline) HandleRequest(req *collect.Request) *collect.Request {
	for _, h := range p.requestHooks {
		req = h.OnRequest(req)
		if req == nil || req.Dropped() {
			return req
		}
	}
	return req
}

// HandleResponse 响应阶段
func (p *Pipeline) HandleResponse(resp *collect.Response) *collect.Response {
	for _, h := range p.responseHooks {
		resp = h.OnResponse(resp)
		if resp == nil || resp.Dropped() {
			return resp
		}
	}
	return resp
}

// HandleException 异常阶段，所有异常钩子都会执行
func (p *Pipeline) HandleException(req *collect.Request, err error) {
	for _, h := range p.exceptionHooks {
		h.OnException(req, err)
	}
}
