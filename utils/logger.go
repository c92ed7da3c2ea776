package utils

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var Logger = zap.NewNop()

// FileOptions 滚动日志文件参数，Path 为空时不写文件
type FileOptions struct {
	Path       string
	MaxSize    int
	MaxBackups int
	MaxAge     int
}

func InitLogger(mode string, file FileOptions) error {
	var config zap.Config

	if mode == "release" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	logger, err := config.Build()
	if err != nil {
		return err
	}

	// release 模式额外输出 JSON 到滚动文件
	if mode == "release" && file.Path != "" {
		logger = logger.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			return zapcore.NewTee(core, newFileCore(file, config.Level))
		}))
	}

	Logger = logger
	return nil
}

func newFileCore(file FileOptions, level zapcore.LevelEnabler) zapcore.Core {
	writer := &lumberjack.Logger{
		Filename:   file.Path,
		MaxSize:    file.MaxSize,
		MaxBackups: file.MaxBackups,
		MaxAge:     file.MaxAge,
		LocalTime:  true,
	}
	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	return zapcore.NewCore(encoder, zapcore.AddSync(writer), level)
}

func Sync() {
	if Logger != nil {
		_ = Logger.Sync()
	}
}
