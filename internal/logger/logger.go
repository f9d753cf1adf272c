package logger

import (
	"os"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a sugared logger. JSON output uses the zap production config for
// machine consumption; otherwise a compact console encoder writes to stderr so
// stdout stays free for command output.
func New(jsonOutput bool, level string) (*zap.SugaredLogger, error) {
	lvl := zap.NewAtomicLevelAt(zap.InfoLevel)
	if level != "" {
		parsed, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, errors.WithHint(errors.Wrapf(err, "log level %q", level), "use debug, info, warn or error")
		}
		lvl = parsed
	}

	if jsonOutput {
		config := zap.NewProductionConfig()
		config.Level = lvl
		config.OutputPaths = []string{"stderr"}
		l, err := config.Build()
		if err != nil {
			return nil, errors.Wrap(err, "build json logger")
		}
		return l.Sugar(), nil
	}

	enc := zapcore.EncoderConfig{
		TimeKey:        "T",
		LevelKey:       "L",
		NameKey:        "N",
		MessageKey:     "M",
		EncodeTime:     zapcore.TimeEncoderOfLayout("15:04:05"),
		EncodeLevel:    zapcore.CapitalColorLevelEncoder,
		EncodeName:     zapcore.FullNameEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(os.Stderr), lvl)
	return zap.New(core).Sugar(), nil
}
