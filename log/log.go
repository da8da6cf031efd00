package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	zaplogfmt "github.com/jsternberg/zap-logfmt"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewRootLogger creates a root logger writing to w in the given format
// ("json", "console"/"auto", or "logfmt") at the given level.
func NewRootLogger(format string, level string, w io.Writer) (*zap.Logger, error) {
	ec := zap.NewProductionEncoderConfig()
	ec.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	switch format {
	case "json":
		enc = zapcore.NewJSONEncoder(ec)
	case "auto", "console":
		enc = zapcore.NewConsoleEncoder(ec)
	case "logfmt":
		enc = zaplogfmt.NewEncoder(ec)
	default:
		return nil, fmt.Errorf("unsupported log format: %s", format)
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("unsupported log level: %s", level)
	}

	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), lvl)), nil
}

// NewRootLoggerWithFile creates a root logger that writes to both
// stderr and the given log file, creating the file's directory if
// needed.
func NewRootLoggerWithFile(logFile string, level string) (*zap.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(logFile), 0o740); err != nil {
		return nil, fmt.Errorf("failed to create log dir: %w", err)
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	mw := io.MultiWriter(os.Stderr, f)

	return NewRootLogger("logfmt", level, mw)
}
