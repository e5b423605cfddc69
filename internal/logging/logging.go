package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the service logger used by the async paths (propagator,
// reconciler, audit recorder, event bus).
func New() *zap.SugaredLogger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig = encoderCfg

	logger, err := cfg.Build()
	if err != nil {
		panic("cannot build logger: " + err.Error())
	}
	return logger.Sugar()
}

// NewNop returns a discard logger for tests that don't assert on output.
func NewNop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
