package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"gearguard/pkg/config"
)

// NewLogger собирает zap-логгер с консольным кодировщиком.
// Уровень и пути вывода берутся из конфигурации.
func NewLogger(cfg config.LogConfig) *zap.Logger {
	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	if cfg.Level != "" {
		if parsed, err := zapcore.ParseLevel(cfg.Level); err == nil {
			level = zap.NewAtomicLevelAt(parsed)
		}
	}

	outputs := cfg.Outputs
	if len(outputs) == 0 {
		outputs = []string{"stdout"}
	}

	logConfig := zap.Config{
		Encoding:         "console",
		Level:            level,
		OutputPaths:      outputs,
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig:    zap.NewProductionEncoderConfig(),
	}
	logConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	l, err := logConfig.Build()
	if err != nil {
		panic(err)
	}

	return l
}
