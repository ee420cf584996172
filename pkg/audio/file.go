package audio

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Overridden in tests to inject faults before the final commit.
var (
	createTemp = os.CreateTemp
	rename     = os.Rename
)

// filePerm is applied to written files; os.CreateTemp creates 0600 files,
// which static-file servers running as another user could not read.
const filePerm = 0o644

// WriteFile writes samples as a WAV file at path, creating parent
// directories as needed.
//
// The data is written to a temporary file in the destination directory,
// synced, and renamed over path only after every byte has been written. On
// any failure the temporary file is removed and path is left untouched: it
// either does not exist or still holds its previous contents.
//
// Format problems return an error wrapping [ErrInvalidFormat]; filesystem
// failures wrap [ErrIO].
func WriteFile(path string, samples []int16, f Format) error {
	if err := f.Validate(); err != nil {
		return err
	}
	return atomicWrite(path, func(w io.Writer) error {
		_, err := WriteTo(w, samples, f)
		return err
	})
}

// WriteEncoded atomically replaces path with data, typically the output of
// [Encode]. It follows the same commit rules as [WriteFile].
func WriteEncoded(path string, data []byte) error {
	return atomicWrite(path, func(w io.Writer) error {
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("%w: %w", ErrIO, err)
		}
		return nil
	})
}

func atomicWrite(path string, fill func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create directory %q: %w", ErrIO, dir, err)
	}

	tmp, err := createTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp file for %q: %w", ErrIO, path, err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if err := fill(tmp); err != nil {
		return fmt.Errorf("write %q: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("%w: sync %q: %w", ErrIO, tmpName, err)
	}
	if err := tmp.Chmod(filePerm); err != nil {
		return fmt.Errorf("%w: chmod %q: %w", ErrIO, tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %q: %w", ErrIO, tmpName, err)
	}
	if err := rename(tmpName, path); err != nil {
		return fmt.Errorf("%w: rename %q to %q: %w", ErrIO, tmpName, path, err)
	}
	committed = true
	return nil
}

// SameContent reports whether the file at path already holds exactly data.
// A missing or unreadable file reports false.
func SameContent(path string, data []byte) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil || st.Size() != int64(len(data)) {
		return false
	}
	existing, err := io.ReadAll(f)
	if err != nil {
		return false
	}
	return bytes.Equal(existing, data)
}
