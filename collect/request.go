package collect

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
)

// 请求元数据和选项的稳定key
const (
	// MetaRetryCount 当前请求已重试的次数，缺省为0
	MetaRetryCount = "retry_count"
	// OptionDelay 重新调度时实际采用的延迟，毫秒，仅用于观测
	OptionDelay = "delay"
)

// Request 单个请求
// 写时复制：WithMeta等方法返回新的副本，原值不会被修改，
// 因此构造之后可以在多个goroutine间安全传递
type Request struct {
	Task     *Task
	Url      string
	Method   string
	Depth    int
	Priority int
	RuleName string

	meta    map[string]any
	options map[string]any
	// prevResp 上一次失败尝试的响应，仅重试请求携带
	prevResp *Response

	dropped    bool
	dropReason string
}

type ParseResult struct {
	Requests []*Request
	Items    []any
}

func (r *Request) clone() *Request {
	r2 := *r
	if r.meta != nil {
		m := make(map[string]any, len(r.meta))
		for k, v := range r.meta {
			m[k] = v
		}
		r2.meta = m
	}
	if r.options != nil {
		o := make(map[string]any, len(r.options))
		for k, v := range r.options {
			o[k] = v
		}
		r2.options = o
	}
	return &r2
}

// WithMeta 返回携带新元数据的副本
func (r *Request) WithMeta(key string, val any) *Request {
	r2 := r.clone()
	if r2.meta == nil {
		r2.meta = map[string]any{}
	}
	r2.meta[key] = val
	return r2
}

func (r *Request) Meta(key string) (any, bool) {
	v, ok := r.meta[key]
	return v, ok
}

// WithOption 返回携带新选项的副本
func (r *Request) WithOption(key string, val any) *Request {
	r2 := r.clone()
	if r2.options == nil {
		r2.options = map[string]any{}
	}
	r2.options[key] = val
	return r2
}

func (r *Request) Option(key string) (any, bool) {
	v, ok := r.options[key]
	return v, ok
}

// RetryCount 已重试次数，未设置时为0
func (r *Request) RetryCount() int {
	v, ok := r.meta[MetaRetryCount]
	if !ok {
		return 0
	}
	n, ok := v.(int)
	if !ok {
		return 0
	}
	return n
}

func (r *Request) WithRetryCount(n int) *Request {
	return r.WithMeta(MetaRetryCount, n)
}

// WithResponse 返回关联了上次失败响应的副本
func (r *Request) WithResponse(resp *Response) *Request {
	r2 := r.clone()
	r2.prevResp = resp
	return r2
}

func (r *Request) PrevResponse() *Response {
	return r.prevResp
}

// Drop 将请求标记为终止，后续钩子不再处理
func (r *Request) Drop(reason string) {
	r.dropped = true
	r.dropReason = reason
}

func (r *Request) Dropped() bool {
	return r.dropped
}

func (r *Request) DropReason() string {
	return r.dropReason
}

func (r *Request) Check() error {
	if r.Task != nil && r.Depth > r.Task.MaxDepth {
		return errors.New("max depth limit reached")
	}

	return nil
}

// Unique 请求指纹，url+method相同视为同一请求
func (r *Request) Unique() string {
	block := md5.Sum([]byte(r.Url + r.Method))
	return hex.EncodeToString(block[:])
}
