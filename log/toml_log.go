package log

import (
	"github.com/teandr/crawler/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TomLog 读取config.toml的日志配置并替换zap全局logger。
// logLevel控制最低输出级别,logFile非空时日志写入滚动文件,否则输出到stdout。
func TomLog() (*zap.Logger, error) {
	cfg, err := config.GetCfg()
	if err != nil {
		return nil, err
	}

	logText := cfg.Get("logLevel").String("INFO")
	logLevel, err := zapcore.ParseLevel(logText)
	if err != nil {
		return nil, err
	}
	var plugin zapcore.Core
	if logFile := cfg.Get("logFile").String(""); logFile != "" {
		// 进程退出前日志文件保持打开,closer交由操作系统回收
		plugin, _ = NewFilePlugin(logFile, logLevel)
	} else {
		plugin = NewStdoutPlugin(logLevel)
	}
	logger := NewLogger(plugin)
	logger.Info("log init end")

	// set zap global logger
	zap.ReplaceGlobals(logger)

	return logger, nil
}
