package loggit

/*
Archival of retired log files. A rotated file is packed into a single-entry
deflate zip named "<original-file-name>.zip" inside the archive directory,
then the original is deleted. The directory is the one configured on the
store, or a fixed subpath under the platform cache directory.

Every failure mode is reported distinctly: the archive directory, the source
file, the archive itself and the final deletion can each fail on their own
(an archive may legitimately exist while the source is still on disk).
*/

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/flate"
)

var (
	ErrArchiveDir    = errors.New("unable to create archive directory")
	ErrArchiveSource = errors.New("unable to read file to archive")
	ErrArchiveWrite  = errors.New("unable to write archive")
	ErrArchiveDelete = errors.New("unable to delete archived file")
)

// defaultArchiveDir is used when no archive directory was configured:
// the platform cache directory plus a fixed subpath, with the temp
// directory as a last resort.
func defaultArchiveDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, filepath.FromSlash(DEFAULT_ARCHIVE_SUBDIR))
}

// resolveArchiveDir picks the configured directory or the default.
func resolveArchiveDir(configured string) string {
	if configured != "" {
		return configured
	}
	return defaultArchiveDir()
}

// compressAndDiscard packs path into <dir>/<base(path)>.zip and removes the
// original. On any error before deletion the original stays on disk.
func compressAndDiscard(path, dir string) error {
	dir = resolveArchiveDir(dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w %q: %v", ErrArchiveDir, dir, err)
	}

	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w %q: %v", ErrArchiveSource, path, err)
	}
	defer src.Close()

	archivePath := filepath.Join(dir, filepath.Base(path)+".zip")
	out, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("%w %q: %v", ErrArchiveWrite, archivePath, err)
	}

	zw := zip.NewWriter(out)
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, flate.BestSpeed)
	})
	entry, err := zw.Create(filepath.Base(path))
	if err == nil {
		_, err = io.Copy(entry, src)
	}
	if err == nil {
		err = zw.Close()
	} else {
		zw.Close()
	}
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(archivePath) // don't leave a truncated archive behind
		return fmt.Errorf("%w %q: %v", ErrArchiveWrite, archivePath, err)
	}

	src.Close()
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("%w %q: %v", ErrArchiveDelete, path, err)
	}
	return nil
}
