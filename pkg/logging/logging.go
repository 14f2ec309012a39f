package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TraceLevel also enables logr's V(2). zapr maps V(n) to zap level -n, so "debug" already shows V(1).
const TraceLevel = zapcore.Level(-2)

func ParseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(level) {
	case "trace":
		return TraceLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	case "info", "":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", level)
	}
}

// New builds a logr.Logger backed by zap, writing to stderr so stdout is left for command output.
// The returned func flushes buffered entries.
func New(level string, json bool) (logr.Logger, func() error, error) {
	return NewTo(os.Stderr, level, json)
}

func NewTo(w io.Writer, level string, json bool) (logr.Logger, func() error, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return logr.Discard(), func() error { return nil }, err
	}

	var enc zapcore.Encoder
	if json {
		encoderCfg := zap.NewProductionEncoderConfig()
		encoderCfg.TimeKey = "ts"
		encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		enc = zapcore.NewJSONEncoder(encoderCfg)
	} else {
		encoderCfg := zap.NewDevelopmentEncoderConfig()
		encoderCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		enc = zapcore.NewConsoleEncoder(encoderCfg)
	}

	core := zapcore.NewCore(
		enc,
		zapcore.AddSync(zapcore.Lock(zapcore.AddSync(w))),
		lvl,
	)

	zl := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	return zapr.NewLogger(zl), zl.Sync, nil
}
