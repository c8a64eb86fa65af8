// Package logging builds the process logger from configuration.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/danpilch/winmem/pkg/config"
)

// New returns a logger writing to stderr, or to a rotating file when
// cfg.File is set. The returned closer releases the file and is never nil.
func New(cfg config.LogConfig) (*logrus.Logger, io.Closer, error) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("log level: %w", err)
	}

	logger := logrus.New()
	logger.SetLevel(level)

	switch cfg.Format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if cfg.File == "" {
		logger.SetOutput(os.Stderr)
		return logger, nopCloser{}, nil
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}
	logger.SetOutput(rotator)
	return logger, rotator, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
