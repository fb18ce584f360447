package zerolog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/jask/confirmform/internal/json"
	loglib "github.com/jask/confirmform/internal/log"
)

type Config struct {
	Level string
	// File receives the log output when set. The TUI owns the terminal, so
	// interactive sessions always log to a file.
	File string
	// Out receives console output when File is empty. Defaults to stderr.
	Out io.Writer
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.TimestampFieldName = "timestamp"
	zerolog.ErrorFieldName = "error.message"
}

type Logger struct {
	zerologger *zerolog.Logger
	fields     loglib.Fields
}

// non-JSON byte values above this size are truncated
const logMaxBytes = 10000

func NewLogger(zl *zerolog.Logger) *Logger {
	return &Logger{zerologger: zl}
}

// New builds a zerolog logger from cfg. The returned closer releases the log
// file, if one was opened.
func New(cfg Config) (*Logger, io.Closer, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("parse log level %q: %w", cfg.Level, err)
	}

	var out io.Writer
	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, nil, fmt.Errorf("mkdir log dir: %w", err)
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		out, closer = f, f
	} else {
		out = zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
			w.Out = os.Stderr
			if cfg.Out != nil {
				w.Out = cfg.Out
			}
			w.TimeFormat = time.Kitchen
		})
	}

	zl := zerolog.New(out).Level(level).With().Timestamp().Logger()
	return NewLogger(&zl), closer, nil
}

func (l *Logger) Trace(msg string, fields ...loglib.Fields) {
	withFields(l.zerologger.Trace(), append(fields, l.fields)...).Msg(msg)
}

func (l *Logger) Debug(msg string, fields ...loglib.Fields) {
	withFields(l.zerologger.Debug(), append(fields, l.fields)...).Msg(msg)
}

func (l *Logger) Info(msg string, fields ...loglib.Fields) {
	withFields(l.zerologger.Info(), append(fields, l.fields)...).Msg(msg)
}

func (l *Logger) Warn(err error, msg string, fields ...loglib.Fields) {
	withFields(l.zerologger.Warn().Err(err), append(fields, l.fields)...).Msg(msg)
}

func (l *Logger) Error(err error, msg string, fields ...loglib.Fields) {
	withFields(l.zerologger.Error().Err(err), append(fields, l.fields)...).Msg(msg)
}

func (l *Logger) WithFields(fields loglib.Fields) loglib.Logger {
	return &Logger{
		zerologger: l.zerologger,
		fields:     loglib.MergeFields(l.fields, fields),
	}
}

func withFields(event *zerolog.Event, fieldMaps ...loglib.Fields) *zerolog.Event {
	for _, m := range fieldMaps {
		for key, value := range m {
			switch v := value.(type) {
			case string:
				event = event.Str(key, v)
			case int:
				event = event.Int(key, v)
			case bool:
				event = event.Bool(key, v)
			case []byte:
				event = addBytesToLog(event, key, v)
			case time.Time:
				event = event.Time(key, v)
			case time.Duration:
				event = event.Dur(key, v)
			case []string:
				event = event.Strs(key, v)
			default:
				event = event.Interface(key, v)
			}
		}
	}
	return event
}

// JSON payloads are embedded whole so the line stays parseable; anything
// else is logged as a capped string
func addBytesToLog(event *zerolog.Event, key string, value []byte) *zerolog.Event {
	if json.Valid(value) {
		return event.RawJSON(key, value)
	}
	if len(value) > logMaxBytes {
		value = value[:logMaxBytes]
	}
	return event.Bytes(key, value)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
