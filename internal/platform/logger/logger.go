package logger

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options tunes the optional rotating file sink.
type Options struct {
	// LogPath is the directory for the rotating log file. Empty disables the file sink.
	LogPath    string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// NewNamed builds a zap logger for the given environment, named after the service.
// Development uses a colored console encoder at debug level; every other
// environment logs JSON at info level.
func NewNamed(env, name string, opts ...Options) (*zap.Logger, error) {
	var opt Options
	if len(opts) > 0 {
		opt = opts[0]
	}
	dev := env == "development"

	encoderConfig := zap.NewProductionEncoderConfig()
	if dev {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	encoder := zapcore.NewJSONEncoder(encoderConfig)
	if dev {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	level := zap.InfoLevel
	if dev {
		level = zap.DebugLevel
	}

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), level),
	}

	if opt.LogPath != "" {
		if err := os.MkdirAll(opt.LogPath, 0o755); err != nil {
			return nil, err
		}
		fileWriter := zapcore.AddSync(&lumberjack.Logger{
			Filename:   filepath.Join(opt.LogPath, name+".log"),
			MaxSize:    orDefault(opt.MaxSizeMB, 10),
			MaxBackups: orDefault(opt.MaxBackups, 7),
			MaxAge:     orDefault(opt.MaxAgeDays, 28),
			Compress:   true,
		})
		// File output is always JSON so it can be shipped as-is.
		fileEncoder := zapcore.NewJSONEncoder(encoderConfig)
		cores = append(cores, zapcore.NewCore(fileEncoder, fileWriter, level))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()).Named(name), nil
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
