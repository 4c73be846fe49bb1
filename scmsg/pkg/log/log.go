package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/kataras/pio"
)

type Level uint32

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	DisableLevel
)

var levelTags = map[Level]struct {
	title string
	color int
}{
	DebugLevel: {"[DBUG]", pio.Yellow},
	InfoLevel:  {"[INFO]", pio.Cyan},
	WarnLevel:  {"[WARN]", pio.Magenta},
	ErrorLevel: {"[ERRO]", pio.Red},
}

const timeFormat = "2006/01/02 15:04:05"

type logger struct {
	mu      sync.Mutex
	printer *pio.Printer
	level   Level
	color   bool
}

var std = &logger{
	printer: newPrinter(os.Stdout),
	level:   InfoLevel,
}

// newPrinter writes marshaled lines straight to w. Without the text
// marshaler pio skips string values.
func newPrinter(w io.Writer) *pio.Printer {
	return pio.NewPrinter("scmsg", w).Marshal(pio.Text).EnableDirectOutput()
}

// ParseLevel maps a level name to a Level, unknown names map to InfoLevel.
func ParseLevel(name string) Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return DebugLevel
	case "info", "":
		return InfoLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	case "disable", "off":
		return DisableLevel
	default:
		return InfoLevel
	}
}

func SetLevel(name string) {
	std.mu.Lock()
	std.level = ParseLevel(name)
	std.mu.Unlock()
}

func GetLevel() Level {
	std.mu.Lock()
	defer std.mu.Unlock()
	return std.level
}

// SetOutput replaces the destination of every subsequent log line.
func SetOutput(w io.Writer) {
	std.mu.Lock()
	std.printer = newPrinter(w)
	std.mu.Unlock()
}

func SetColor(enabled bool) {
	std.mu.Lock()
	std.color = enabled
	std.mu.Unlock()
}

func (l *logger) print(level Level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.level {
		return
	}
	tag := levelTags[level]
	title := tag.title
	if l.color {
		title = pio.Rich(title, tag.color)
	}
	line := fmt.Sprintf("%s %s %s", title, time.Now().Format(timeFormat), msg)
	if _, err := l.printer.Println(line); err != nil {
		fmt.Fprintf(os.Stderr, "log: %v: %s\n", err, line)
	}
}

func Debug(v ...interface{}) {
	std.print(DebugLevel, fmt.Sprint(v...))
}

func Debugf(format string, args ...interface{}) {
	std.print(DebugLevel, fmt.Sprintf(format, args...))
}

func Info(v ...interface{}) {
	std.print(InfoLevel, fmt.Sprint(v...))
}

func Infof(format string, args ...interface{}) {
	std.print(InfoLevel, fmt.Sprintf(format, args...))
}

func Warn(v ...interface{}) {
	std.print(WarnLevel, fmt.Sprint(v...))
}

func Warnf(format string, args ...interface{}) {
	std.print(WarnLevel, fmt.Sprintf(format, args...))
}

func Error(v ...interface{}) {
	std.print(ErrorLevel, fmt.Sprint(v...))
}

func Errorf(format string, args ...interface{}) {
	std.print(ErrorLevel, fmt.Sprintf(format, args...))
}
