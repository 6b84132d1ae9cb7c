package config

import (
	"fmt"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the run logger from the logging.* keys:
//
//	logging.level   debug, info, warn, error (default info)
//	logging.format  console or json (default console)
//	logging.output  stderr, stdout or a file path (default stderr)
func NewLogger(v *viper.Viper) (*zap.Logger, error) {
	level := v.GetString("logging.level")
	if level == "" {
		level = "info"
	}
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		return nil, &Error{Field: "logging.level", Message: fmt.Sprintf("invalid log level %q", level)}
	}

	var cfg zap.Config
	switch format := v.GetString("logging.format"); format {
	case "console", "":
		cfg = zap.NewDevelopmentConfig()
		cfg.DisableStacktrace = true
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	case "json":
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "time"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	default:
		return nil, &Error{Field: "logging.format", Message: fmt.Sprintf("invalid log format %q: must be \"json\" or \"console\"", format)}
	}

	output := v.GetString("logging.output")
	if output == "" {
		output = "stderr"
	}
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	cfg.OutputPaths = []string{output}
	cfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := cfg.Build()
	if err != nil {
		return nil, &Error{Field: "logging.output", Message: err.Error()}
	}
	return logger, nil
}
