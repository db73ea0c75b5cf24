// Package logging configures the process-wide logrus logger.
package logging

import (
	"io"
	"os"

	logger "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls logger setup
type Options struct {
	Verbose bool
	JSON    bool
	File    string // also write logs to this file, rotated; empty disables
}

// Setup configures the standard logrus logger and returns a closer for any log file it opened
func Setup(opts Options) io.Closer {
	return configure(logger.StandardLogger(), os.Stderr, opts)
}

func configure(l *logger.Logger, stderr io.Writer, opts Options) io.Closer {
	if opts.Verbose {
		l.SetLevel(logger.DebugLevel)
	} else {
		l.SetLevel(logger.InfoLevel)
	}

	if opts.JSON {
		l.SetFormatter(&logger.JSONFormatter{})
	} else {
		l.SetFormatter(&logger.TextFormatter{DisableTimestamp: true})
	}

	if opts.File == "" {
		l.SetOutput(stderr)
		return nopCloser{}
	}

	file := newRotatingFile(opts.File)
	l.SetOutput(io.MultiWriter(stderr, file))
	return file
}

func newRotatingFile(path string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    1, // megabytes
		MaxBackups: 2,
		MaxAge:     30, // days
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
