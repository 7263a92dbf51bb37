package loggit

/*
File manager: glues the namer, the rotation engine and the archiver into
"write a line, rotating and archiving first if needed". The whole check ->
rotate -> append sequence runs under the manager's exclusive lock, so
concurrent writers are totally ordered and a rotation can never interleave
with another thread's in-flight append.
*/

import (
	"errors"
	"fmt"
	"os"
	"time"
)

var (
	ErrBadCompression = errors.New("incorrect compression value")
	ErrFileCreate     = errors.New("unable to create log file")
	ErrFileStat       = errors.New("unable to stat log file")
	ErrFileWrite      = errors.New("unable to write log file")
)

const logFileMode = 0o644

// newFileManager validates the template and expands the initial file name.
// No file is touched until the first write.
func newFileManager(template string, level Level) (*fileManager, error) {
	t, err := parseFileTemplate(template)
	if err != nil {
		return nil, err
	}
	return &fileManager{
		template: t,
		current:  t.expand(time.Now(), level),
	}, nil
}

// setCompression accepts exactly "zip"; anything else leaves the previous
// setting unchanged.
func (m *fileManager) setCompression(kind string) error {
	if kind != "zip" {
		return fmt.Errorf("%w: %q", ErrBadCompression, kind)
	}
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.compression = COMPRESS_ZIP
	return nil
}

func (m *fileManager) removeCompression() {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.compression = COMPRESS_NONE
}

// addRotation parses and appends one rotation rule. A parse failure leaves
// the existing rule list untouched.
func (m *fileManager) addRotation(rule string) error {
	r, err := parseRotation(rule, time.Now())
	if err != nil {
		return err
	}
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.rules = append(m.rules, r)
	return nil
}

func (m *fileManager) removeRotations() {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.rules = nil
}

// currentPath returns the path of the active log file.
func (m *fileManager) currentPath() string {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return m.current.String()
}

// createLocked makes a fresh log file and switches the manager to it.
// Collision policy: the template is first re-expanded at the current moment
// (picking up a fresh time), and only if that name is also taken does the
// numeric disambiguator start growing. The loop terminates because the
// disambiguator only increases. Caller holds m.mtx.
func (m *fileManager) createLocked(level Level) error {
	name := m.template.expand(time.Now(), level)
	if ok, err := tryCreate(name.String()); err != nil {
		return err
	} else if ok {
		m.current = name
		return nil
	}
	name = m.template.expand(time.Now(), level)
	for {
		if ok, err := tryCreate(name.String()); err != nil {
			return err
		} else if ok {
			m.current = name
			return nil
		}
		name.bump()
	}
}

// tryCreate attempts an exclusive create, reporting "taken" without error.
func tryCreate(path string) (created bool, err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, logFileMode)
	if err != nil {
		if os.IsExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("%w %q: %v", ErrFileCreate, path, err)
	}
	f.Close()
	return true, nil
}

// writeLog appends one formatted line, rotating and archiving first when a
// rule demands it. A failed rotation or archival never drops the line: the
// append is still attempted against the last known-good path and the
// failure is surfaced alongside.
func (m *fileManager) writeLog(line string, level Level, archiveDir string) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	var errs []error

	// First use: make sure the current file exists.
	path := m.current.String()
	size, err := ensureFile(path)
	if err != nil {
		errs = append(errs, err)
	}

	if err == nil && shouldRotate(m.rules, time.Now(), size) {
		old := path
		if cerr := m.createLocked(level); cerr != nil {
			// keep writing to the old file, surface the failure
			errs = append(errs, cerr)
		} else if m.compression == COMPRESS_ZIP {
			if aerr := compressAndDiscard(old, archiveDir); aerr != nil {
				// the old file stays on disk; surface but keep going
				errs = append(errs, aerr)
			}
		}
	}

	path = m.current.String()
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, logFileMode)
	if err != nil {
		errs = append(errs, fmt.Errorf("%w %q: %v", ErrFileWrite, path, err))
		return errors.Join(errs...)
	}
	_, werr := f.WriteString(line + "\n")
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		errs = append(errs, fmt.Errorf("%w %q: %v", ErrFileWrite, path, werr))
	}
	return errors.Join(errs...)
}

// ensureFile creates path if missing and returns its current byte length.
func ensureFile(path string) (int64, error) {
	info, err := os.Stat(path)
	if err == nil {
		return info.Size(), nil
	}
	if !os.IsNotExist(err) {
		return 0, fmt.Errorf("%w %q: %v", ErrFileStat, path, err)
	}
	if _, cerr := tryCreate(path); cerr != nil {
		return 0, cerr
	}
	return 0, nil
}
