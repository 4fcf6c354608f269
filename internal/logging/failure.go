package logging

import (
	"go.uber.org/zap"
)

// FailureLogger reports individual transport failures. A nil *FailureLogger
// discards everything.
type FailureLogger struct {
	log *zap.Logger
}

func NewFailureLogger(log *zap.Logger) *FailureLogger {
	if log == nil {
		return nil
	}
	return &FailureLogger{log: log.Named("request")}
}

// LogFailure records one failed request. reason is the classified error
// category shown in the report's error breakdown.
func (f *FailureLogger) LogFailure(method, target, reason string, err error) {
	if f == nil || err == nil {
		return
	}
	f.log.Warn("request failed",
		zap.String("method", method),
		zap.String("url", target),
		zap.String("reason", reason),
		zap.Error(err),
	)
}
