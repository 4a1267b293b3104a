// Package logging configures the shared logrus logger and its optional
// rotating file sink.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation limits for the file sink. Rotated files are gzip-compressed.
const (
	maxSizeMB  = 50
	maxBackups = 5
	maxAgeDays = 14
)

// New builds the application logger. With an empty path logs go to
// stderr only; otherwise they are mirrored into a size-rotated file.
// The returned closer is non-nil only when a file sink is attached.
func New(verbose bool, path string) (*logrus.Logger, io.Closer) {
	logger := logrus.New()
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})

	if path == "" {
		return logger, nil
	}

	sink := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		Compress:   true,
	}
	logger.SetOutput(io.MultiWriter(os.Stderr, sink))
	return logger, sink
}
