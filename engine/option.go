package engine

import (
	"time"

	"github.com/teandr/crawler/collect"
	"github.com/teandr/crawler/collector"
	"github.com/teandr/crawler/middleware"
	"go.uber.org/zap"
)

type Option func(opt *options)

type options struct {
	WorkCount int
	// BatchSize 每次轮询最多取走的请求数
	BatchSize int
	// PollInterval 派发循环轮询调度器的间隔
	PollInterval time.Duration
	Fetcher      collect.Fetcher
	Logger       *zap.Logger
	Seeds        []*collect.Task
	scheduler    Scheduler
	pipeline     *middleware.Pipeline
	Storage      collector.Storager
}

var defaultOptions = options{
	WorkCount:    5,
	BatchSize:    10,
	PollInterval: 100 * time.Millisecond,
	Logger:       zap.NewNop(),
}

func WithLogger(logger *zap.Logger) Option {
	return func(opt *options) {
		opt.Logger = logger
	}
}

func WithFetcher(fetcher collect.Fetcher) Option {
	return func(opt *options) {
		opt.Fetcher = fetcher
	}
}

func WithWorkCount(workCount int) Option {
	return func(opt *options) {
		opt.WorkCount = workCount
	}
}

func WithBatchSize(batchSize int) Option {
	return func(opt *options) {
		opt.BatchSize = batchSize
	}
}

func WithPollInterval(d time.Duration) Option {
	return func(opt *options) {
		opt.PollInterval = d
	}
}

func WithSeeds(seeds []*collect.Task) Option {
	return func(opt *options) {
		opt.Seeds = seeds
	}
}

func WithScheduler(scheduler Scheduler) Option {
	return func(opt *options) {
		opt.scheduler = scheduler
	}
}

func WithPipeline(pipeline *middleware.Pipeline) Option {
	return func(opt *options) {
		opt.pipeline = pipeline
	}
}

func WithStorage(storage collector.Storager) Option {
	return func(opt *options) {
		opt.Storage = storage
	}
}
