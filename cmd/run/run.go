package run

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/teandr/crawler/collect"
	"github.com/teandr/crawler/collector"
	"github.com/teandr/crawler/collector/sqlstorage"
	cCfg "github.com/teandr/crawler/config"
	"github.com/teandr/crawler/engine"
	cLog "github.com/teandr/crawler/log"
	"github.com/teandr/crawler/middleware"
	"github.com/teandr/crawler/proxy"
	"go.uber.org/zap"
)

var RunCmd = &cobra.Command{
	Use:   "run",
	Short: "run crawler tasks",
	Long:  "run crawler tasks listed in config.toml until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Run()
	},
}

func Run() error {
	logger, err := cLog.TomLog()
	if err != nil {
		return err
	}
	rawCfg, err := cCfg.GetCfg()
	if err != nil {
		return err
	}
	cfg, err := cCfg.LoadCrawler(rawCfg)
	if err != nil {
		logger.Error("load config failed", zap.Error(err))
		return err
	}
	logger.Sugar().Debugf("crawler config:%+v", cfg)

	fetcher, err := GetFetcher(cfg)
	if err != nil {
		logger.Error("init fetcher failed", zap.Error(err))
		return err
	}
	storage, err := GetStorage(cfg, logger)
	if err != nil {
		logger.Error("init storage failed", zap.Error(err))
		return err
	}
	policy, err := cfg.Retry.Policy()
	if err != nil {
		logger.Error("init retry policy failed", zap.Error(err))
		return err
	}

	schedule := engine.NewSchedule(engine.WithScheduleLogger(logger))
	stats := middleware.NewStats(middleware.WithLogger(logger))
	pipeline := middleware.NewPipeline(middleware.WithLogger(logger))
	pipeline.Register(
		stats,
		middleware.NewMaxDepth(middleware.WithLogger(logger)),
		middleware.NewDedupe(middleware.WithLogger(logger)),
		middleware.NewRetry(policy, schedule, middleware.WithLogger(logger)),
	)

	crawler := engine.NewCrawler(
		engine.WithFetcher(fetcher),
		engine.WithStorage(storage),
		engine.WithLogger(logger),
		engine.WithSeeds(GetSeeds(cfg, fetcher, storage)),
		engine.WithWorkCount(cfg.Engine.WorkCount),
		engine.WithBatchSize(cfg.Engine.BatchSize),
		engine.WithPollInterval(time.Duration(cfg.Engine.PollIntervalMs)*time.Millisecond),
		engine.WithScheduler(schedule),
		engine.WithPipeline(pipeline),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	logger.Info("crawler start", zap.Strings("tasks", cfg.Engine.Tasks))
	crawler.Run(ctx)
	stats.LogSummary()

	return nil
}

func GetFetcher(cfg *cCfg.CrawlerConfig) (collect.Fetcher, error) {
	f := &collect.BrowserFetch{
		Timeout:     time.Duration(cfg.Engine.FetchTimeoutMs) * time.Millisecond,
		MaxBodySize: cfg.Engine.MaxBodySize,
	}
	if len(cfg.Engine.ProxyURLs) > 0 {
		p, err := proxy.RoundRobinProxySwitcher(cfg.Engine.ProxyURLs...)
		if err != nil {
			return nil, err
		}
		f.Proxy = p
	}

	return f, nil
}

// GetStorage 未配置SqlURL时返回nil，结果只打日志不落库
func GetStorage(cfg *cCfg.CrawlerConfig, logger *zap.Logger) (collector.Storager, error) {
	if cfg.Storage.SqlURL == "" {
		return nil, nil
	}

	return sqlstorage.NewSqlStore(
		sqlstorage.WithDSN(cfg.Storage.SqlURL),
		sqlstorage.WithBatchCount(cfg.Storage.BatchCount),
		sqlstorage.WithLogger(logger),
	)
}

// GetSeeds 种子只带任务名和运行期依赖，规则在engine.Store中注册
func GetSeeds(cfg *cCfg.CrawlerConfig, fetcher collect.Fetcher, storage collector.Storager) []*collect.Task {
	seeds := make([]*collect.Task, 0, len(cfg.Engine.Tasks))
	for _, name := range cfg.Engine.Tasks {
		seeds = append(seeds, &collect.Task{
			Options: collect.Options{
				Name:    name,
				Fetcher: fetcher,
				Storage: storage,
			},
		})
	}

	return seeds
}
