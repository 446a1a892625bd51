package config

import (
	"fmt"
	"os"

	"github.com/go-micro/plugins/v4/config/encoder/toml"
	"github.com/go-playground/validator/v10"
	"github.com/teandr/crawler/retry"
	"go-micro.dev/v4/config"
	"go-micro.dev/v4/config/reader"
	"go-micro.dev/v4/config/reader/json"
	"go-micro.dev/v4/config/source"
	"go-micro.dev/v4/config/source/file"
)

// EngineConfig 引擎运行参数，对应config.toml的[engine]段
type EngineConfig struct {
	WorkCount      int   `validate:"gte=0"`
	BatchSize      int   `validate:"gte=0"`
	PollIntervalMs int   `validate:"gte=0"`
	FetchTimeoutMs int   `validate:"gte=0"`
	MaxBodySize    int64 `validate:"gte=0"`
	ProxyURLs      []string
	Tasks          []string
}

// StorageConfig 结果存储配置，对应[storage]段
type StorageConfig struct {
	SqlURL     string
	BatchCount int `validate:"gte=0"`
}

// RetryConfig 重试规则配置，对应[retry]段
// Backoff承载原始toml值：标量、序列或{initialDelay, delayMultiplier}表
type RetryConfig struct {
	RetryOnStatus            []int `validate:"dive,gte=100,lte=599"`
	MaxRetries               int   `validate:"gte=0"`
	Backoff                  any
	RetryOnConnectionFailure bool
}

// CrawlerConfig config.toml的完整映射，缺失段保留默认值
type CrawlerConfig struct {
	LogLevel string `validate:"omitempty,oneof=DEBUG INFO WARN ERROR debug info warn error"`
	LogFile  string
	Engine   EngineConfig
	Storage  StorageConfig
	Retry    RetryConfig
}

var validate = validator.New()

func defaultConfig() CrawlerConfig {
	return CrawlerConfig{
		LogLevel: "INFO",
		Engine: EngineConfig{
			WorkCount:      5,
			BatchSize:      10,
			PollIntervalMs: 100,
			FetchTimeoutMs: 3000,
		},
		Storage: StorageConfig{
			BatchCount: 10,
		},
		Retry: RetryConfig{
			RetryOnStatus: []int{500, 502, 503, 504},
			MaxRetries:    3,
		},
	}
}

// GetCfg 读取当前目录下的config.toml
func GetCfg() (config.Config, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	return GetCfgWithPath(fmt.Sprintf("%s/config.toml", dir))
}

// GetCfgWithPath 从指定路径加载toml配置
func GetCfgWithPath(configPath string) (config.Config, error) {
	enc := toml.NewEncoder()
	cfg, err := config.NewConfig(config.WithReader(json.NewReader(reader.WithEncoder(enc))))
	if err != nil {
		return nil, err
	}
	err = cfg.Load(file.NewSource(
		file.WithPath(configPath),
		source.WithEncoder(enc),
	))
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadCrawler 把已加载的配置展开为类型化的CrawlerConfig并校验
// 退避值在此做一次试解析，保证配置错误在启动时暴露而不是留到第一次重试
func LoadCrawler(cfg config.Config) (*CrawlerConfig, error) {
	c := defaultConfig()
	if err := cfg.Scan(&c); err != nil {
		return nil, fmt.Errorf("scan config failed:%w", err)
	}
	if err := validate.Struct(c); err != nil {
		return nil, fmt.Errorf("validate config failed:%w", err)
	}
	if c.Retry.Backoff != nil {
		if _, err := retry.ParseBackoff(c.Retry.Backoff); err != nil {
			return nil, err
		}
	}

	return &c, nil
}

// Policy 根据重试段构造策略，默认值已在LoadCrawler时填入
func (c RetryConfig) Policy() (*retry.Policy, error) {
	opts := []retry.Option{
		retry.WithRetryOnStatus(c.RetryOnStatus...),
		retry.WithMaxRetries(c.MaxRetries),
		retry.WithRetryOnConnFailure(c.RetryOnConnectionFailure),
	}
	if c.Backoff != nil {
		opts = append(opts, retry.WithBackoffValue(c.Backoff))
	}

	return retry.NewPolicy(opts...)
}
