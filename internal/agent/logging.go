package agent

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

var logger zerolog.Logger

func init() {
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
}

// Logger returns the package logger.
func Logger() zerolog.Logger {
	return logger
}

// AttachLogFile routes the package logger to both stderr and an
// append-only snapshot.log under dir, creating dir if needed. Existing
// log content is never truncated. The returned closer flushes the file
// sink; console logging survives the close.
func AttachLogFile(dir string) (io.Closer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(filepath.Join(dir, "snapshot.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}

	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	file := zerolog.ConsoleWriter{Out: f, NoColor: true, TimeFormat: time.RFC3339}
	logger = zerolog.New(zerolog.MultiLevelWriter(console, file)).
		With().Timestamp().Logger()

	return &logFileCloser{f: f}, nil
}

type logFileCloser struct {
	f *os.File
}

func (c *logFileCloser) Close() error {
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
	return c.f.Close()
}
