package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps the zap logger with additional functionality
type Logger struct {
	*zap.Logger
}

// NewLogger creates a new logger instance with production configuration
func NewLogger() (*Logger, error) {
	return newLogger([]string{"stdout"})
}

// NewStderrLogger creates a logger that writes only to stderr. This is used by
// commands whose stdout is a machine-readable channel (the predict CLI emits a
// single JSON object on stdout).
func NewStderrLogger() (*Logger, error) {
	return newLogger([]string{"stderr"})
}

func newLogger(outputPaths []string) (*Logger, error) {
	config := zap.NewProductionConfig()

	config.OutputPaths = outputPaths
	config.ErrorOutputPaths = []string{"stderr"}
	config.Level = zap.NewAtomicLevelAt(logLevelFromEnv())

	zapLogger, err := config.Build()
	if err != nil {
		return nil, err
	}

	return &Logger{
		Logger: zapLogger,
	}, nil
}

// logLevelFromEnv reads SIGNAL_ML_LOG_LEVEL, defaulting to info.
func logLevelFromEnv() zapcore.Level {
	switch os.Getenv("SIGNAL_ML_LOG_LEVEL") {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Sync flushes any buffered log entries
func (l *Logger) Sync() error {
	if l.Logger != nil {
		return l.Logger.Sync()
	}

	return nil
}
