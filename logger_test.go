package loggit

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// FakeWriter collects everything written to it. Safe for concurrent use,
// the store renders and writes outside its own lock.
type FakeWriter struct {
	mtx    sync.Mutex
	buffer []byte
}

func (f *FakeWriter) Write(b []byte) (int, error) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	f.buffer = append(f.buffer, b...)
	return len(b), nil
}

func (f *FakeWriter) String() string {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	return string(f.buffer)
}

func (f *FakeWriter) Clear() {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	f.buffer = f.buffer[:0]
}

// newTestLogger returns a store writing to fake terminal and fallback
// writers with a bare {message} format, so assertions see raw messages.
func newTestLogger(t *testing.T) (*Logger, *FakeWriter, *FakeWriter) {
	t.Helper()
	l := Init()
	term := &FakeWriter{}
	ferr := &FakeWriter{}
	l.terminal = term
	l.SetFallback(ferr)
	require.NoError(t, l.SetGlobalFormat("{message}"))
	return l, term, ferr
}

func Test_Init_defaults(t *testing.T) {
	l := Init()
	assert.Equal(t, DEFAULT_LOG_LEVEL, l.LogLevel())
	assert.True(t, l.PrintToTerminal())
	assert.False(t, l.Colorized())
	assert.Nil(t, l.fileManager(), "no file output until SetFile")

	info, err := l.LevelFormat(LVL_INFO)
	require.NoError(t, err)
	assert.Equal(t, DEFAULT_LINE_FORMAT, info)
	erro, err := l.LevelFormat(LVL_ERROR)
	require.NoError(t, err)
	assert.Equal(t, DEFAULT_ERROR_FORMAT, erro, "errors carry their own default format")
}

func Test_Logger_level_filtering(t *testing.T) {
	chdirT(t, t.TempDir())
	l, term, _ := newTestLogger(t)
	require.NoError(t, l.SetLogLevel(LVL_WARN))
	require.NoError(t, l.SetFile("app.txt"))

	l.Trace("t")
	l.Debug("d")
	l.Info("i")
	l.Warn("w")
	l.Error("e")

	assert.Equal(t, "w\ne\n", term.String(), "records below the threshold must be dropped")
	got, err := os.ReadFile("app.txt")
	require.NoError(t, err)
	assert.Equal(t, "w\ne\n", string(got), "filtered records must not reach the file either")
}

func Test_Logger_message_formatting(t *testing.T) {
	l, term, _ := newTestLogger(t)
	l.Info("answer is %d (%s)", 42, "known")
	assert.Equal(t, "answer is 42 (known)\n", term.String())
}

func Test_Logger_print_to_terminal_off(t *testing.T) {
	l, term, _ := newTestLogger(t)
	l.SetPrintToTerminal(false)
	l.Info("quiet")
	assert.Empty(t, term.String())
}

func Test_Logger_colorized_terminal_only(t *testing.T) {
	chdirT(t, t.TempDir())
	l, term, _ := newTestLogger(t)
	require.NoError(t, l.SetGlobalFormat("<red>{message}<red>"))
	require.NoError(t, l.SetFile("app.txt"))
	l.SetColorized(true)

	l.Info("hello")

	assert.Equal(t, ANSI_COL_PRFX+"38;2;255;0;0"+ANSI_COL_SUFX+"hello"+ANSI_COL_RESET+"\n",
		term.String(), "terminal output must carry the color escapes")

	got, err := os.ReadFile(l.fileManager().currentPath())
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(got), "file output must never be colorized")
}

func Test_Logger_per_level_format(t *testing.T) {
	l, term, _ := newTestLogger(t)
	require.NoError(t, l.SetLogLevel(LVL_TRACE))
	require.NoError(t, l.SetLevelFormat(LVL_WARN, "[{level}] {message}"))

	l.Info("plain")
	l.Warn("careful")

	assert.Equal(t, "plain\n[WARN] careful\n", term.String())

	got, err := l.LevelFormat(LVL_WARN)
	require.NoError(t, err)
	assert.Equal(t, "[{level}] {message}", got)
	_, err = l.LevelFormat(Level(99))
	assert.ErrorIs(t, err, ErrUnknownLevel)
}

func Test_Logger_callsite_placeholders(t *testing.T) {
	l, term, _ := newTestLogger(t)
	require.NoError(t, l.SetGlobalFormat("{file}:{module} {message}"))

	l.Info("here")

	line := term.String()
	assert.True(t, strings.HasPrefix(line, "logger_test.go:"), "got %q", line)
	assert.Contains(t, line, "loggit here", "module placeholder must hold the package path tail")
}

func Test_Logger_setters_reject_without_mutation(t *testing.T) {
	l, _, _ := newTestLogger(t)

	t.Run("unknown_level", func(t *testing.T) {
		assert.ErrorIs(t, l.SetLogLevel(Level(99)), ErrUnknownLevel)
		assert.Equal(t, DEFAULT_LOG_LEVEL, l.LogLevel())
		assert.ErrorIs(t, l.SetLevelFormat(Level(99), "{message}"), ErrUnknownLevel)
	})
	t.Run("bad_format", func(t *testing.T) {
		before := l.formats[LVL_INFO]
		assert.ErrorIs(t, l.SetGlobalFormat("{message"), ErrUnterminatedTag)
		assert.ErrorIs(t, l.SetLevelFormat(LVL_INFO, "{nope}"), ErrUnknownPlaceholder)
		assert.Same(t, before, l.formats[LVL_INFO], "rejected format must not replace the old one")
	})
	t.Run("bad_file_template", func(t *testing.T) {
		assert.Error(t, l.SetFile("app"))
		assert.Nil(t, l.fileManager())
	})
}

func Test_Logger_file_ops_require_file(t *testing.T) {
	l, _, _ := newTestLogger(t)

	assert.ErrorIs(t, l.SetCompression("zip"), ErrFileNotSet)
	assert.ErrorIs(t, l.RemoveCompression(), ErrFileNotSet)
	assert.ErrorIs(t, l.AddRotation("1 day"), ErrFileNotSet)
	assert.ErrorIs(t, l.RemoveRotations(), ErrFileNotSet)
}

func Test_Logger_file_ops_after_setfile(t *testing.T) {
	chdirT(t, t.TempDir())
	l, _, _ := newTestLogger(t)
	require.NoError(t, l.SetFile("app.log"))

	assert.ErrorIs(t, l.SetCompression("rar"), ErrBadCompression)
	assert.NoError(t, l.SetCompression("zip"))
	assert.NoError(t, l.RemoveCompression())
	assert.ErrorIs(t, l.AddRotation("never"), ErrBadRotation)
	assert.NoError(t, l.AddRotation("5 MB"))
	assert.NoError(t, l.RemoveRotations())
}

func Test_Logger_setfile_replaces_manager(t *testing.T) {
	chdirT(t, t.TempDir())
	l, _, _ := newTestLogger(t)

	require.NoError(t, l.SetFile("first.log"))
	require.NoError(t, l.AddRotation("1 KB"))
	require.NoError(t, l.SetCompression("zip"))

	require.NoError(t, l.SetFile("second.log"))
	fm := l.fileManager()
	assert.Equal(t, "second.log", fm.currentPath())
	assert.Empty(t, fm.rules, "rotation rules must not carry over")
	assert.Equal(t, COMPRESS_NONE, fm.compression, "compression must not carry over")
}

func Test_Logger_set_archive_dir(t *testing.T) {
	dir := t.TempDir()
	l, _, _ := newTestLogger(t)

	sub := dir + "/made/on/demand"
	require.NoError(t, l.SetArchiveDir(sub))
	info, err := os.Stat(sub)
	require.NoError(t, err)
	assert.True(t, info.IsDir(), "archive directory must be created eagerly")

	blocker := dir + "/blocker"
	require.NoError(t, os.WriteFile(blocker, []byte{}, 0o644))
	assert.ErrorIs(t, l.SetArchiveDir(blocker), ErrArchiveDir)
}

func Test_Logger_failed_file_write_hits_fallback(t *testing.T) {
	chdirT(t, t.TempDir())
	l, term, ferr := newTestLogger(t)
	require.NoError(t, l.SetFile("app.txt"))
	// replace the active file with a directory so appends fail
	require.NoError(t, os.Mkdir(l.fileManager().currentPath(), 0o755))

	l.Info("doomed")

	assert.Equal(t, "doomed\n", term.String(), "terminal output must still happen")
	assert.Contains(t, ferr.String(), "file log failed")
}

func Test_Logger_failed_archive_reported_once(t *testing.T) {
	chdirT(t, t.TempDir())
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte{}, 0o644))

	l, _, ferr := newTestLogger(t)
	l.SetPrintToTerminal(false)
	require.NoError(t, l.SetFile("app.txt"))
	require.NoError(t, l.AddRotation("1 KB"))
	require.NoError(t, l.SetCompression("zip"))
	l.archiveDir = blocker // SetArchiveDir validates eagerly, bypass to break rotation

	l.Info(strings.Repeat("x", 2048))
	l.Info("after")

	report := ferr.String()
	assert.Contains(t, report, "file log failed")
	assert.Equal(t, 1, strings.Count(report, "unable to create archive directory"),
		"one failure, one complaint")
}

func Test_Logger_setfallback_during_writes(t *testing.T) {
	chdirT(t, t.TempDir())
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte{}, 0o644))

	l, _, _ := newTestLogger(t)
	l.SetPrintToTerminal(false)
	require.NoError(t, l.SetFile("app.txt"))
	require.NoError(t, l.AddRotation("1 KB"))
	require.NoError(t, l.SetCompression("zip"))
	l.archiveDir = blocker // every rotation hits the failure reporting path

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			l.SetFallback(&FakeWriter{})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			l.Info(strings.Repeat("x", 2048))
		}
	}()
	wg.Wait()
}

func Test_Logger_reset(t *testing.T) {
	chdirT(t, t.TempDir())
	l, _, _ := newTestLogger(t)
	require.NoError(t, l.SetLogLevel(LVL_ERROR))
	l.SetColorized(true)
	l.SetPrintToTerminal(false)
	require.NoError(t, l.SetFile("app.log"))

	l.Reset()

	assert.Equal(t, DEFAULT_LOG_LEVEL, l.LogLevel())
	assert.False(t, l.Colorized())
	assert.True(t, l.PrintToTerminal())
	assert.Nil(t, l.fileManager(), "file output must be dropped")
}

func Test_Logger_concurrent_writers(t *testing.T) {
	const goroutines = 8
	const lines = 200

	chdirT(t, t.TempDir())
	l, _, ferr := newTestLogger(t)
	l.SetPrintToTerminal(false)
	require.NoError(t, l.SetFile("app.txt"))

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		g := g
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < lines; i++ {
				l.Info("worker %d line %d", g, i)
			}
		}()
	}
	wg.Wait()

	got, err := os.ReadFile("app.txt")
	require.NoError(t, err)
	assert.Empty(t, ferr.String(), "no write may fail")

	emitted := strings.Split(strings.TrimSuffix(string(got), "\n"), "\n")
	assert.Len(t, emitted, goroutines*lines, "every line must land exactly once")
	for _, line := range emitted {
		var g, i int
		_, serr := fmt.Sscanf(line, "worker %d line %d", &g, &i)
		assert.NoError(t, serr, "line %q is interleaved or truncated", line)
	}
}

func Test_package_level_default(t *testing.T) {
	l := Default()
	require.NotNil(t, l)
	prev := l.terminal
	t.Cleanup(func() {
		Reset()
		l.terminal = prev
	})

	term := &FakeWriter{}
	l.terminal = term
	require.NoError(t, SetGlobalFormat("{message}"))
	require.NoError(t, SetLogLevel(LVL_TRACE))

	Trace("via package funcs")
	assert.Equal(t, "via package funcs\n", term.String())
	assert.ErrorIs(t, SetCompression("zip"), ErrFileNotSet)
	assert.ErrorIs(t, RemoveCompression(), ErrFileNotSet)
	assert.ErrorIs(t, AddRotation("1 day"), ErrFileNotSet)
	assert.ErrorIs(t, RemoveRotations(), ErrFileNotSet)

	SetFallback(nil) // must coerce to a discard writer, not panic on use
	l.Error("fallbackless")

	t.Run("undo_forwarders", func(t *testing.T) {
		chdirT(t, t.TempDir())
		require.NoError(t, SetFile("pkg.log"))
		require.NoError(t, SetCompression("zip"))
		require.NoError(t, AddRotation("1 KB"))

		require.NoError(t, RemoveCompression())
		require.NoError(t, RemoveRotations())
		fm := l.fileManager()
		assert.Equal(t, COMPRESS_NONE, fm.compression)
		assert.Empty(t, fm.rules)
		Reset() // drop the file manager before the directory is restored
	})
}
