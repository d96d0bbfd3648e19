package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

const (
	colorRed     = 31
	colorGreen   = 32
	colorYellow  = 33
	colorMagenta = 35

	colorBold = 1
)

func colorize(s interface{}, c int, noColor bool) string {
	if noColor {
		return fmt.Sprintf("%v", s)
	}
	return fmt.Sprintf("\x1b[%dm%v\x1b[0m", c, s)
}

// New creates a console logger for development and a JSON logger otherwise.
// Console output is only coloured when w is a terminal.
func New(w io.Writer, production bool, level string) zerolog.Logger {
	var l zerolog.Logger
	if production {
		l = NewProduction(w)
	} else {
		l = NewDevelopment(w, !isTerminal(w))
	}
	return l.Level(ParseLevel(level))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func NewDevelopment(w io.Writer, noColor bool) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    noColor,
		TimeFormat: "2006-01-02 15:04:05",
		FormatLevel: func(i interface{}) string {
			ll, ok := i.(string)
			if !ok {
				return strings.ToUpper(fmt.Sprintf("%s", i))
			}
			switch ll {
			case "trace":
				return colorize("TRC", colorMagenta, noColor)
			case "debug":
				return colorize("DBG", colorYellow, noColor)
			case "info":
				return colorize("INF", colorGreen, noColor)
			case "warn":
				return colorize("WRN", colorRed, noColor)
			case "error":
				return colorize("ERR", colorRed, noColor)
			case "fatal":
				return colorize("FTL", colorRed, noColor)
			case "panic":
				return colorize("PNC", colorRed, noColor)
			}
			if len(ll) >= 3 {
				return colorize(strings.ToUpper(ll)[0:3], colorBold, noColor)
			}
			return colorize(strings.ToUpper(ll), colorBold, noColor)
		},
	}
	return zerolog.New(output).With().Timestamp().Logger()
}

func NewProduction(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger()
}

func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// OpenFile opens today's log file in dir. The terminal viewer logs here so
// its output does not tear the screen. The caller closes the file.
func OpenFile(dir string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("lyricbar-%s.log", time.Now().Format("20060102")))
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}
