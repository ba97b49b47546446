package logging

import (
	"go.temporal.io/sdk/log"
	"go.uber.org/zap"
)

// TemporalLogger adapts a zap logger to the Temporal SDK logger interface.
type TemporalLogger struct {
	l *zap.SugaredLogger
}

var (
	_ log.Logger     = (*TemporalLogger)(nil)
	_ log.WithLogger = (*TemporalLogger)(nil)
)

func NewTemporalLogger(l *zap.SugaredLogger) *TemporalLogger {
	return &TemporalLogger{l: l.WithOptions(zap.AddCallerSkip(1))}
}

func (t *TemporalLogger) Debug(msg string, keyvals ...interface{}) { t.l.Debugw(msg, keyvals...) }
func (t *TemporalLogger) Info(msg string, keyvals ...interface{})  { t.l.Infow(msg, keyvals...) }
func (t *TemporalLogger) Warn(msg string, keyvals ...interface{})  { t.l.Warnw(msg, keyvals...) }
func (t *TemporalLogger) Error(msg string, keyvals ...interface{}) { t.l.Errorw(msg, keyvals...) }

func (t *TemporalLogger) With(keyvals ...interface{}) log.Logger {
	return &TemporalLogger{l: t.l.With(keyvals...)}
}
