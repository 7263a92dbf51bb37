// A lightweight, levelled logging package. Log lines and log file names are
// driven by user templates ({message}, {time}, {date}, {file}, {line},
// {level}, {module} plus <color> regions); file output supports rotation by
// size, elapsed period or daily clock time, and zip archival of retired
// files.
package loggit

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

const (
	// Error messages used across store operations (used for testing).
	_ERROR_MESSAGE_FILE_NOT_SET  = "file output is not configured"
	_ERROR_MESSAGE_UNKNOWN_LEVEL = "unknown log level"
)

var (
	ErrFileNotSet   = errors.New(_ERROR_MESSAGE_FILE_NOT_SET)
	ErrUnknownLevel = errors.New(_ERROR_MESSAGE_UNKNOWN_LEVEL)
)

// Init constructs a configuration store with the built-in defaults: INFO
// threshold, terminal output on, colors off, the default line formats, no
// file output.
func Init() *Logger {
	l := new(Logger)
	l.terminal = os.Stdout
	l.fallbck = os.Stderr
	l.applyDefaults()
	return l
}

// applyDefaults resets everything but the output writers. Caller holds the
// write lock (or owns the value exclusively).
func (l *Logger) applyDefaults() {
	l.level = DEFAULT_LOG_LEVEL
	l.printTerm = true
	l.colorized = false
	def := mustFormatter(DEFAULT_LINE_FORMAT)
	for i := range l.formats {
		l.formats[i] = def
	}
	l.formats[LVL_ERROR] = mustFormatter(DEFAULT_ERROR_FORMAT)
	l.fmanager = nil
	l.archiveDir = ""
}

// Reset reinitializes the store to the built-in defaults, dropping any
// installed file manager.
func (l *Logger) Reset() {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	l.applyDefaults()
}

// SetFallback redirects internal complaints (failed file writes, failed
// archivals). io.Discard is used instead of nil to silently drop them.
func (l *Logger) SetFallback(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	l.mtx.Lock()
	defer l.mtx.Unlock()
	l.fallbck = w
}

// Setters. Every setter either succeeds completely or leaves the previous
// state unchanged and returns an error.

// SetLogLevel sets the minimum level to emit; records below it are ignored.
func (l *Logger) SetLogLevel(level Level) error {
	if level >= _LVL_MAX_for_checks_only {
		return fmt.Errorf("%w: %d", ErrUnknownLevel, level)
	}
	l.mtx.Lock()
	defer l.mtx.Unlock()
	l.level = level
	return nil
}

// SetPrintToTerminal enables or disables terminal output.
func (l *Logger) SetPrintToTerminal(val bool) {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	l.printTerm = val
}

// SetColorized enables or disables color regions in terminal output.
// File output is never colorized.
func (l *Logger) SetColorized(val bool) {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	l.colorized = val
}

// SetLevelFormat installs a line format for one level. The template is
// compiled before anything is mutated.
func (l *Logger) SetLevelFormat(level Level, format string) error {
	if level >= _LVL_MAX_for_checks_only {
		return fmt.Errorf("%w: %d", ErrUnknownLevel, level)
	}
	f, err := parseFormatter(format)
	if err != nil {
		return err
	}
	l.mtx.Lock()
	defer l.mtx.Unlock()
	l.formats[level] = f
	return nil
}

// SetGlobalFormat installs one line format for every level.
func (l *Logger) SetGlobalFormat(format string) error {
	f, err := parseFormatter(format)
	if err != nil {
		return err
	}
	l.mtx.Lock()
	defer l.mtx.Unlock()
	for i := range l.formats {
		l.formats[i] = f
	}
	return nil
}

// SetFile configures file output from a file-name template, replacing any
// previously installed file manager. Rotation rules and compression of the
// old manager do not carry over.
func (l *Logger) SetFile(template string) error {
	fm, err := newFileManager(template, l.LogLevel())
	if err != nil {
		return err
	}
	l.mtx.Lock()
	defer l.mtx.Unlock()
	l.fmanager = fm
	return nil
}

// SetCompression enables archival of rotated files; "zip" is the only
// recognized value. Requires file output to be configured.
func (l *Logger) SetCompression(kind string) error {
	fm := l.fileManager()
	if fm == nil {
		return ErrFileNotSet
	}
	return fm.setCompression(kind)
}

// RemoveCompression disables archival of rotated files.
func (l *Logger) RemoveCompression() error {
	fm := l.fileManager()
	if fm == nil {
		return ErrFileNotSet
	}
	fm.removeCompression()
	return nil
}

// AddRotation adds one rotation rule ("500 KB", "1 day", "12:30", ...).
// Requires file output to be configured; a rejected rule leaves the
// existing rules untouched.
func (l *Logger) AddRotation(rule string) error {
	fm := l.fileManager()
	if fm == nil {
		return ErrFileNotSet
	}
	return fm.addRotation(rule)
}

// RemoveRotations drops every configured rotation rule.
func (l *Logger) RemoveRotations() error {
	fm := l.fileManager()
	if fm == nil {
		return ErrFileNotSet
	}
	fm.removeRotations()
	return nil
}

// SetArchiveDir sets the directory receiving zip archives, creating it
// eagerly so a misconfiguration surfaces here and not during rotation.
func (l *Logger) SetArchiveDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("%w %q: %v", ErrArchiveDir, path, err)
	}
	l.mtx.Lock()
	defer l.mtx.Unlock()
	l.archiveDir = path
	return nil
}

// Getters.

func (l *Logger) LogLevel() Level {
	l.mtx.RLock()
	defer l.mtx.RUnlock()
	return l.level
}

func (l *Logger) PrintToTerminal() bool {
	l.mtx.RLock()
	defer l.mtx.RUnlock()
	return l.printTerm
}

func (l *Logger) Colorized() bool {
	l.mtx.RLock()
	defer l.mtx.RUnlock()
	return l.colorized
}

// LevelFormat returns the template text the level's line format was
// compiled from.
func (l *Logger) LevelFormat(level Level) (string, error) {
	if level >= _LVL_MAX_for_checks_only {
		return "", fmt.Errorf("%w: %d", ErrUnknownLevel, level)
	}
	l.mtx.RLock()
	defer l.mtx.RUnlock()
	return l.formats[level].text, nil
}

func (l *Logger) fileManager() *fileManager {
	l.mtx.RLock()
	defer l.mtx.RUnlock()
	return l.fmanager
}

// Logging entry points. Messages are formatted with fmt.Sprintf.

func (l *Logger) Trace(format string, args ...any) { l.logAt(LVL_TRACE, 3, format, args...) }
func (l *Logger) Debug(format string, args ...any) { l.logAt(LVL_DEBUG, 3, format, args...) }
func (l *Logger) Info(format string, args ...any)  { l.logAt(LVL_INFO, 3, format, args...) }
func (l *Logger) Warn(format string, args ...any)  { l.logAt(LVL_WARN, 3, format, args...) }
func (l *Logger) Error(format string, args ...any) { l.logAt(LVL_ERROR, 3, format, args...) }

// logAt snapshots the needed configuration under a short read lock, releases
// it, and only then renders and performs I/O. File output is serialized by
// the file manager's own lock.
func (l *Logger) logAt(level Level, calldepth int, format string, args ...any) {
	l.mtx.RLock()
	threshold := l.level
	printTerm := l.printTerm
	colorized := l.colorized
	f := l.formats[normLevel(level)]
	fm := l.fmanager
	archiveDir := l.archiveDir
	terminal := l.terminal
	fallback := l.fallbck
	l.mtx.RUnlock()

	if level < threshold {
		return
	}
	file, line, module := callSite(calldepth)
	rec := &logRecord{
		when:    time.Now(),
		message: fmt.Sprintf(format, args...),
		file:    file,
		module:  module,
		line:    line,
		level:   level,
	}
	if printTerm {
		fmt.Fprintln(terminal, f.render(rec, colorized))
	}
	if fm != nil {
		if err := fm.writeLog(f.render(rec, false), threshold, archiveDir); err != nil {
			fmt.Fprintf(fallback, "loggit: file log failed: %v\n", err)
		}
	}
}

// callSite captures the file base name, line and package path of the log
// call for the {file}, {line} and {module} placeholders.
func callSite(calldepth int) (file string, line int, module string) {
	pc, path, line, ok := runtime.Caller(calldepth)
	if !ok {
		return "???", 0, "???"
	}
	file = filepath.Base(path)
	module = "???"
	if fn := runtime.FuncForPC(pc); fn != nil {
		name := fn.Name() // e.g. github.com/abyssdigger/loggit.Init
		slash := strings.LastIndex(name, "/")
		if dot := strings.Index(name[slash+1:], "."); dot >= 0 {
			module = name[:slash+1+dot]
		}
	}
	return file, line, module
}

// Package-level default instance, for callers that don't want to carry a
// *Logger around. The core stays testable as a plain value.

var std = Init()

// Default returns the shared package-level store.
func Default() *Logger { return std }

func Trace(format string, args ...any) { std.logAt(LVL_TRACE, 3, format, args...) }
func Debug(format string, args ...any) { std.logAt(LVL_DEBUG, 3, format, args...) }
func Info(format string, args ...any)  { std.logAt(LVL_INFO, 3, format, args...) }
func Warn(format string, args ...any)  { std.logAt(LVL_WARN, 3, format, args...) }
func Error(format string, args ...any) { std.logAt(LVL_ERROR, 3, format, args...) }

func SetLogLevel(level Level) error                   { return std.SetLogLevel(level) }
func SetPrintToTerminal(val bool)                     { std.SetPrintToTerminal(val) }
func SetColorized(val bool)                           { std.SetColorized(val) }
func SetLevelFormat(level Level, format string) error { return std.SetLevelFormat(level, format) }
func SetGlobalFormat(format string) error             { return std.SetGlobalFormat(format) }
func SetFile(template string) error                   { return std.SetFile(template) }
func SetCompression(kind string) error                { return std.SetCompression(kind) }
func RemoveCompression() error                        { return std.RemoveCompression() }
func AddRotation(rule string) error                   { return std.AddRotation(rule) }
func RemoveRotations() error                          { return std.RemoveRotations() }
func SetArchiveDir(path string) error                 { return std.SetArchiveDir(path) }
func SetFallback(w io.Writer)                         { std.SetFallback(w) }
func Reset()                                          { std.Reset() }
