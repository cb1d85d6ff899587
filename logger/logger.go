package logger

import (
	"go.uber.org/zap"
)

var Log *zap.SugaredLogger

func Init() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize zap logger: " + err.Error())
	}
	Log = logger.Sugar()
}

// InitNop 安装空日志器，测试时使用
func InitNop() {
	Log = zap.NewNop().Sugar()
}

func init() {
	// 默认空日志器，避免未初始化时崩溃
	if Log == nil {
		Log = zap.NewNop().Sugar()
	}
}
