// Package logging builds the zap loggers used by the command line tool.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/san-kum/trajsim/internal/dynamo"
)

// Config selects the level and encoding of a logger.
type Config struct {
	Level    string `yaml:"level"`
	Encoding string `yaml:"encoding"`
	// Output is a zap sink URL or path; empty means stderr.
	Output string `yaml:"output,omitempty"`
}

func DefaultConfig() Config {
	return Config{Level: "info", Encoding: "console"}
}

func (c Config) Validate() error {
	if _, err := zapcore.ParseLevel(c.Level); err != nil {
		return fmt.Errorf("%w: log level %q", dynamo.ErrInvalidArgument, c.Level)
	}
	switch c.Encoding {
	case "console", "json":
		return nil
	default:
		return fmt.Errorf("%w: log encoding %q (want console or json)", dynamo.ErrInvalidArgument, c.Encoding)
	}
}

// ZapConfig returns the zap configuration: no stack traces, ISO8601 times and
// capitalized levels, coloured on the console.
func (c Config) ZapConfig() (zap.Config, error) {
	if err := c.Validate(); err != nil {
		return zap.Config{}, err
	}
	level, _ := zapcore.ParseLevel(c.Level)

	encodeLevel := zapcore.CapitalColorLevelEncoder
	if c.Encoding == "json" {
		encodeLevel = zapcore.CapitalLevelEncoder
	}
	output := c.Output
	if output == "" {
		output = "stderr"
	}

	return zap.Config{
		Level:    zap.NewAtomicLevelAt(level),
		Encoding: c.Encoding,
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "ts",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    encodeLevel,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		DisableStacktrace: true,
		OutputPaths:       []string{output},
		ErrorOutputPaths:  []string{"stderr"},
	}, nil
}

func New(c Config) (*zap.Logger, error) {
	zc, err := c.ZapConfig()
	if err != nil {
		return nil, err
	}
	return zc.Build()
}
