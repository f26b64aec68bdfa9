package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/mattn/go-isatty"
	"gopkg.in/natefinch/lumberjack.v2"
)

const defaultTimeFormat = "2006-01-02 15:04:05"

// Rotation controls the size-based rotation of the log file.
type Rotation struct {
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
}

// Options configures a Logger.
type Options struct {
	Name  string
	Level Level
	// File, when set, receives a copy of every line and is rotated.
	File string
	JSON bool
	// NoTerminal suppresses terminal output. It is ignored without a File.
	NoTerminal bool
	NoColor    bool
	Rotation   *Rotation
	// Terminal overrides os.Stderr as the terminal stream.
	Terminal io.Writer
}

// Logger writes leveled lines to the terminal and, optionally, a
// rotated file.
type Logger struct {
	mu     *sync.Mutex
	writer io.Writer
	closer io.Closer

	name       string
	level      Level
	json       bool
	color      bool
	timeFormat string
}

type logEntry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Service   string `json:"service,omitempty"`
	Message   string `json:"message"`
}

// New builds a Logger from opts.
func New(opts Options) *Logger {
	l := &Logger{
		mu:         &sync.Mutex{},
		name:       opts.Name,
		level:      opts.Level,
		json:       opts.JSON,
		timeFormat: defaultTimeFormat,
	}

	term := opts.Terminal
	if term == nil {
		term = os.Stderr
	}

	var writers []io.Writer
	if !opts.NoTerminal || opts.File == "" {
		writers = append(writers, term)
		l.color = !opts.NoColor && !opts.JSON && isTerminal(term)
	}

	if opts.File != "" {
		rot := opts.Rotation
		if rot == nil {
			rot = &Rotation{MaxSize: 128, MaxBackups: 5, MaxAge: 16}
		}
		fileWriter := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    rot.MaxSize,
			MaxBackups: rot.MaxBackups,
			MaxAge:     rot.MaxAge,
			Compress:   rot.Compress,
		}
		writers = append(writers, fileWriter)
		l.closer = fileWriter
		// escape codes would end up in the file
		l.color = false
	}

	l.writer = io.MultiWriter(writers...)
	return l
}

// Discard returns a Logger that writes nothing.
func Discard() *Logger {
	return New(Options{Terminal: io.Discard, Level: Error + 1})
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (l *Logger) log(level Level, msg string, args ...any) {
	if level < l.level {
		return
	}

	timestamp := time.Now().Format(l.timeFormat)
	formatted := fmt.Sprintf(msg, args...)

	var line string
	if l.json {
		entry := logEntry{
			Timestamp: timestamp,
			Level:     level.String(),
			Service:   l.name,
			Message:   formatted,
		}
		b, err := json.Marshal(entry)
		if err != nil {
			return
		}
		line = string(b)
	} else {
		prefix := fmt.Sprintf("[%s] %-5s", timestamp, level)
		if l.name != "" {
			prefix = fmt.Sprintf("%s [%s]", prefix, l.name)
		}
		line = prefix + " " + formatted
		if l.color {
			c := level.color()
			c.EnableColor()
			line = c.Sprint(line)
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.writer, line)
}

func (l *Logger) Debug(msg string, args ...any) { l.log(Debug, msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.log(Info, msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.log(Warn, msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.log(Error, msg, args...) }

// Enabled reports whether messages at level are written.
func (l *Logger) Enabled(level Level) bool { return level >= l.level }

// Named returns a Logger sharing l's output under a sub-name.
func (l *Logger) Named(name string) *Logger {
	child := *l
	if l.name != "" {
		child.name = l.name + "/" + name
	} else {
		child.name = name
	}
	child.closer = nil
	return &child
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}
