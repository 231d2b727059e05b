package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the process logger. It discards everything until Init is called.
var Log = zap.NewNop()

// Init installs a development logger writing to stderr.
func Init() {
	InitWithLevel(zapcore.DebugLevel)
}

// InitWithLevel installs a logger that drops entries below level.
func InitWithLevel(level zapcore.Level) {
	config := zap.NewDevelopmentConfig()
	config.Level = zap.NewAtomicLevelAt(level)
	config.DisableStacktrace = true

	l, err := config.Build()
	if err != nil {
		// Keep the previous logger; there is nowhere else to report this.
		return
	}
	Log = l.Named("sunlight")
}

// Sync flushes buffered entries. Safe to call on the no-op logger.
func Sync() {
	_ = Log.Sync()
}
