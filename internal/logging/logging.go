// Package logging provides leveled, per-component loggers that share echo's
// logger implementation so service and request logs look the same.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/labstack/gommon/log"
)

// Header is the line prefix used by every component logger.
const Header = "${time_rfc3339} ${level} [${prefix}]"

var (
	mu      sync.Mutex
	level   = log.INFO
	output  io.Writer = os.Stdout
	loggers = make(map[string]*log.Logger)
)

// New returns the logger for a component, creating it on first use.
func New(component string) *log.Logger {
	mu.Lock()
	defer mu.Unlock()

	if l, ok := loggers[component]; ok {
		return l
	}
	l := log.New(component)
	l.SetHeader(Header)
	l.SetLevel(level)
	l.SetOutput(output)
	loggers[component] = l
	return l
}

// ParseLevel maps a config level name to a gommon level. Unknown names fall
// back to INFO.
func ParseLevel(name string) log.Lvl {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off", "none":
		return log.OFF
	default:
		return log.INFO
	}
}

// SetLevel applies a level to every existing and future component logger.
func SetLevel(name string) log.Lvl {
	mu.Lock()
	defer mu.Unlock()

	level = ParseLevel(name)
	for _, l := range loggers {
		l.SetLevel(level)
	}
	return level
}

// SetOutput redirects every component logger.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	output = w
	for _, l := range loggers {
		l.SetOutput(w)
	}
}
