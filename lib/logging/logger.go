// Package logging provides leveled, component-scoped logging for the
// application. Each component obtains a named logger through GetLogger;
// all loggers share one output format so log lines from different layers
// line up.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// LogLevel controls which messages a logger emits
type LogLevel int

const (
	ERROR LogLevel = iota
	WARNING
	INFO
	DEBUG
)

// ParseLevel converts a string level to a LogLevel
func ParseLevel(level string) (LogLevel, error) {
	switch strings.ToLower(level) {
	case "debug":
		return DEBUG, nil
	case "info":
		return INFO, nil
	case "warning", "warn":
		return WARNING, nil
	case "error":
		return ERROR, nil
	default:
		return INFO, fmt.Errorf("invalid log level: %s. must be one of debug, info, warn, error", level)
	}
}

// --------------------------------------------------------------------------
// Logger
// --------------------------------------------------------------------------

// Logger is a leveled logger scoped to one named component
type Logger struct {
	name   string
	level  LogLevel
	logger *log.Logger
}

// SetLevel changes the minimum level this logger emits
func (l *Logger) SetLevel(level LogLevel) {
	l.level = level
}

func (l *Logger) Debugf(format string, args ...interface{}) {
	if l.level >= DEBUG {
		l.log("DEBUG", format, args...)
	}
}

func (l *Logger) Infof(format string, args ...interface{}) {
	if l.level >= INFO {
		l.log("INFO", format, args...)
	}
}

func (l *Logger) Warningf(format string, args ...interface{}) {
	if l.level >= WARNING {
		l.log("WARN", format, args...)
	}
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	if l.level >= ERROR {
		l.log("ERROR", format, args...)
	}
}

func (l *Logger) Panicf(format string, args ...interface{}) {
	panic(fmt.Sprintf(format, args...))
}

// log formats and writes a log message. this internal helper is used by the public methods
func (l *Logger) log(levelStr string, format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	l.logger.Printf("%-5s | %-15s | %s", levelStr, l.name, message)
}

// --------------------------------------------------------------------------
// Registry
// --------------------------------------------------------------------------

var (
	mu      sync.Mutex
	loggers = map[string]*Logger{}
	output  io.Writer = os.Stdout
)

// GetLogger returns the logger registered under the given component name,
// creating it at INFO level on first use. Repeated calls with the same name
// return the same instance, so a SetLevel is seen by every holder.
func GetLogger(name string) *Logger {
	mu.Lock()
	defer mu.Unlock()

	if l, ok := loggers[name]; ok {
		return l
	}
	l := &Logger{
		name:   name,
		level:  INFO,
		logger: log.New(output, "", log.Ldate|log.Ltime),
	}
	loggers[name] = l
	return l
}

// SetGlobalLevel applies a level to every registered logger. Loggers created
// afterwards start at INFO again; call this after all components are wired.
func SetGlobalLevel(level LogLevel) {
	mu.Lock()
	defer mu.Unlock()

	for _, l := range loggers {
		l.level = level
	}
}

// SetOutput redirects all loggers created afterwards to the given writer.
// Intended for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}
