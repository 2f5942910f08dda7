// Package common holds the pieces every entry point shares: the leveled
// logger and the server/client configuration structs. Grounded on the
// teacher's rpc/common package of the same name and purpose.
package common

import (
	"fmt"
	"log"
	"os"
	"strings"

	dblogger "github.com/lni/dragonboat/v4/logger"
)

// Level is Apocrypha's own leveled-logging scale, independent of
// Dragonboat's - used by the serve command, the transports and the
// persistence loop, not only the parts touched by cluster mode.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel converts a config string (case-insensitive) to a Level. Unknown
// values fall back to LevelInfo rather than panicking, since this is read
// from user-supplied configuration at startup.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Logger is a small named, leveled wrapper around the standard logger, in
// the style of the teacher's dKVLogger (rpc/common/logger.go): each call
// site gets its own named instance via New, and messages below the
// configured level are dropped before formatting.
type Logger struct {
	name   string
	level  Level
	logger *log.Logger
}

// New returns a Logger that writes to os.Stdout, tagged with name.
func New(name string, level Level) *Logger {
	return &Logger{
		name:   name,
		level:  level,
		logger: log.New(os.Stdout, "", log.Ldate|log.Ltime),
	}
}

func (l *Logger) Debugf(format string, args ...interface{}) {
	if l.level <= LevelDebug {
		l.log("DEBUG", format, args...)
	}
}

func (l *Logger) Infof(format string, args ...interface{}) {
	if l.level <= LevelInfo {
		l.log("INFO", format, args...)
	}
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	if l.level <= LevelWarn {
		l.log("WARN", format, args...)
	}
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	if l.level <= LevelError {
		l.log("ERROR", format, args...)
	}
}

func (l *Logger) log(levelStr, format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	l.logger.Printf("%-5s | %-15s | %s", levelStr, l.name, message)
}

// --------------------------------------------------------------------------
// Dragonboat adapter (cluster mode only)
// --------------------------------------------------------------------------

// dragonboatAdapter satisfies dragonboat's logger.ILogger by delegating to a
// *Logger, so cluster mode logs in the exact same format as the rest of the
// process instead of Dragonboat's own default logger.
type dragonboatAdapter struct {
	*Logger
}

func (a *dragonboatAdapter) SetLevel(level dblogger.LogLevel) {
	switch {
	case level >= dblogger.DEBUG:
		a.level = LevelDebug
	case level >= dblogger.INFO:
		a.level = LevelInfo
	case level >= dblogger.WARNING:
		a.level = LevelWarn
	default:
		a.level = LevelError
	}
}

func (a *dragonboatAdapter) Warningf(format string, args ...interface{}) { a.Warnf(format, args...) }

func (a *dragonboatAdapter) Panicf(format string, args ...interface{}) {
	panic(fmt.Sprintf(format, args...))
}

// InitClusterLoggers installs Apocrypha's logger as Dragonboat's logger
// factory and sets every Dragonboat subsystem logger to level. Called once,
// only when the server is started with --cluster - single-node mode never
// calls into dragonboat.
func InitClusterLoggers(level Level) {
	dblogger.SetLoggerFactory(func(pkgName string) dblogger.ILogger {
		return &dragonboatAdapter{Logger: New(pkgName, level)}
	})

	dbLevel := toDragonboatLevel(level)
	for _, name := range []string{"raft", "raftdb", "rsm", "transport", "dragonboat", "grpc", "util", "logdb"} {
		dblogger.GetLogger(name).SetLevel(dbLevel)
	}
}

func toDragonboatLevel(level Level) dblogger.LogLevel {
	switch level {
	case LevelDebug:
		return dblogger.DEBUG
	case LevelWarn:
		return dblogger.WARNING
	case LevelError:
		return dblogger.ERROR
	default:
		return dblogger.INFO
	}
}
