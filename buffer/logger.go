package buffer

import (
	"sync"

	"go.uber.org/zap"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the buffer package's logger instance.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger configures the buffer package's logger. This is the engine's
// diagnostic channel; reclaim-time invariant violations surface here.
func SetLogger(l *zap.Logger) {
	logger = l
}
