package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/fmu-runtime/fmi"
)

// ZapLogger returns a host logger callback that writes to z. The message is
// expanded with fmt.Sprintf when arguments are present.
func ZapLogger(z *zap.Logger) fmi.Logger {
	return fmi.LoggerFunc(func(c fmi.Component, instanceName string, status fmi.Status, category, message string, args ...any) {
		msg := message
		if len(args) > 0 {
			msg = fmt.Sprintf(message, args...)
		}
		if ce := z.Check(LevelFor(status), msg); ce != nil {
			ce.Write(
				zap.String("instance", instanceName),
				zap.String("category", category),
				zap.Stringer("status", status),
				zap.Uintptr("component", uintptr(c)))
		}
	})
}

// LevelFor maps a status to a log level. Fatal maps to Error: a fatal model
// status must not terminate the host process.
func LevelFor(status fmi.Status) zapcore.Level {
	switch status {
	case fmi.Warning, fmi.Discard:
		return zapcore.WarnLevel
	case fmi.Error, fmi.Fatal:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
