package collect

import (
	"github.com/teandr/crawler/collector"
	"go.uber.org/zap"
)

// Options 任务的运行期选项。Reload和MaxDepth由去重和深度
// 检查钩子消费，Fetcher/Storage/Logger是运行期依赖
type Options struct {
	Name     string `json:"name"`      // 任务名称，保证唯一
	Url      string `json:"url"`       // 任务入口url
	Cookie   string `json:"cookie"`    // 任务cookie
	Reload   bool   `json:"reload"`    // 允许重复抓取同一地址
	MaxDepth int    `json:"max_depth"` // 超过该深度的请求被丢弃
	Fetcher  Fetcher
	Storage  collector.Storager
	Logger   *zap.Logger
}

var defaultOptions = Options{
	MaxDepth: 5,
	Logger:   zap.NewNop(),
}

type Option func(options *Options)

func WithLogger(logger *zap.Logger) Option {
	return func(options *Options) {
		options.Logger = logger
	}
}

func WithName(name string) Option {
	return func(options *Options) {
		options.Name = name
	}
}

func WithUrl(url string) Option {
	return func(options *Options) {
		options.Url = url
	}
}

func WithCookie(cookie string) Option {
	return func(options *Options) {
		options.Cookie = cookie
	}
}

func WithReload(reload bool) Option {
	return func(options *Options) {
		options.Reload = reload
	}
}

func WithMaxDepth(maxDepth int) Option {
	return func(options *Options) {
		options.MaxDepth = maxDepth
	}
}

func WithFetcher(fetcher Fetcher) Option {
	return func(options *Options) {
		options.Fetcher = fetcher
	}
}

func WithStorage(storage collector.Storager) Option {
	return func(options *Options) {
		options.Storage = storage
	}
}
