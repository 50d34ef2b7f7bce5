package log

import (
	"context"
	"sync/atomic"
)

var global atomic.Pointer[Logger]

func init() {
	global.Store(New(Config{Level: "info", Encoding: "json"}))
}

func SetGlobalConfig(cfg Config) {
	global.Store(New(cfg))
}

func SetGlobalLogger(l *Logger) {
	global.Store(l)
}

func GetGlobalLogger() *Logger {
	return global.Load()
}

func DebugEnabled(ctx context.Context) bool {
	return GetGlobalLogger().DebugEnabled()
}

func Debug(ctx context.Context, msg string, fields ...Field) {
	GetGlobalLogger().Debug(ctx, msg, fields...)
}

func Info(ctx context.Context, msg string, fields ...Field) {
	GetGlobalLogger().Info(ctx, msg, fields...)
}

func Warn(ctx context.Context, msg string, fields ...Field) {
	GetGlobalLogger().Warn(ctx, msg, fields...)
}

func Error(ctx context.Context, msg string, fields ...Field) {
	GetGlobalLogger().Error(ctx, msg, fields...)
}
