package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Options struct {
	Level string
	// Dir receives one log file per run; empty disables file output.
	Dir string
	// JSON switches the console output to JSON.
	JSON bool
}

// New builds a logger writing to stderr and, when Dir is set, to
// Dir/<timestamp>.log. The returned close func syncs and closes the file.
func New(opts Options) (*zap.Logger, func() error, error) {
	level, err := zapcore.ParseLevel(strings.TrimSpace(opts.Level))
	if err != nil || opts.Level == "" {
		level = zapcore.InfoLevel
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var console zapcore.Encoder
	if opts.JSON {
		console = zapcore.NewJSONEncoder(encCfg)
	} else {
		devCfg := encCfg
		devCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		console = zapcore.NewConsoleEncoder(devCfg)
	}
	cores := []zapcore.Core{zapcore.NewCore(console, zapcore.Lock(os.Stderr), level)}

	closeFn := func() error { return nil }
	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("logger: %w", err)
		}
		name := time.Now().Format("01_02_2006_15_04_05") + ".log"
		file, err := os.OpenFile(filepath.Join(opts.Dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("logger: %w", err)
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(file), level))
		closeFn = func() error {
			_ = file.Sync()
			return file.Close()
		}
	}

	log := zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	return log, func() error {
		_ = log.Sync()
		return closeFn()
	}, nil
}
