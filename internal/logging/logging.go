// Package logging builds the diagnostic logger. Logs always go to stderr so
// stdout carries only command output.
package logging

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	FormatPlain = "plain"
	FormatJSON  = "json"
)

// New returns a logger writing to w at the given level. Plain format uses a
// console writer; json writes raw zerolog events.
func New(w io.Writer, level, format string, noColor bool) (zerolog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}
	out, err := newWriter(w, format, noColor)
	if err != nil {
		return zerolog.Nop(), err
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}

func ParseLevel(level string) (zerolog.Level, error) {
	v := strings.ToLower(strings.TrimSpace(level))
	if v == "" {
		return zerolog.WarnLevel, nil
	}
	lvl, err := zerolog.ParseLevel(v)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("unsupported log level: %s", level)
	}
	return lvl, nil
}

func newWriter(w io.Writer, format string, noColor bool) (io.Writer, error) {
	switch strings.ToLower(format) {
	case "", FormatPlain:
		return &zerolog.ConsoleWriter{
			Out:        w,
			NoColor:    noColor,
			TimeFormat: time.RFC3339,
			FormatLevel: func(i interface{}) string {
				if ll, ok := i.(string); ok {
					return strings.ToUpper(ll)
				}
				return "????"
			},
		}, nil
	case FormatJSON:
		return w, nil
	default:
		return nil, fmt.Errorf("unsupported log format: %s", format)
	}
}
