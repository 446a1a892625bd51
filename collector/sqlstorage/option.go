package sqlstorage

import "go.uber.org/zap"

type options struct {
	logger *zap.Logger
	dsn    string
	// BatchCount 缓存多少条后批量写入
	BatchCount int
}

var defaultOptions = options{
	logger:     zap.NewNop(),
	BatchCount: 10,
}

type Option func(opts *options)

func WithLogger(logger *zap.Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}

func WithDSN(dsn string) Option {
	return func(opts *options) {
		opts.dsn = dsn
	}
}

func WithBatchCount(batchCount int) Option {
	return func(opts *options) {
		opts.BatchCount = batchCount
	}
}
