package fileutil

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"
)

// ErrDestinationExists is returned when a no-replace operation finds its
// destination already taken. It matches os.ErrExist.
var ErrDestinationExists = fmt.Errorf("destination exists: %w", os.ErrExist)

// CopyFileVerified streams src to dst with SHA256 + size integrity
// verification, replacing dst if it exists. Removes dst on mismatch.
func CopyFileVerified(src, dst string) error {
	return copyVerified(src, dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC)
}

// CopyFileExclusive is CopyFileVerified that refuses to touch an existing dst.
func CopyFileExclusive(src, dst string) error {
	return copyVerified(src, dst, os.O_CREATE|os.O_WRONLY|os.O_EXCL)
}

func copyVerified(src, dst string, flags int) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	srcInfo, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	srcSize := srcInfo.Size()

	out, err := os.OpenFile(dst, flags, srcInfo.Mode().Perm())
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w: %s", ErrDestinationExists, dst)
		}
		return err
	}
	defer func() {
		_ = out.Close()
	}()

	srcHasher := sha256.New()
	dstHasher := sha256.New()
	tee := io.TeeReader(in, srcHasher)
	multi := io.MultiWriter(out, dstHasher)

	written, err := io.Copy(multi, tee)
	if err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	if err := out.Sync(); err != nil {
		return fmt.Errorf("sync destination: %w", err)
	}
	if err := out.Close(); err != nil {
		return err
	}

	if written != srcSize {
		_ = os.Remove(dst)
		return fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", srcSize, written)
	}

	if !bytes.Equal(srcHasher.Sum(nil), dstHasher.Sum(nil)) {
		_ = os.Remove(dst)
		return fmt.Errorf("copy hash mismatch: file corrupted during copy")
	}

	return nil
}

// removeFile is swapped in tests to make unlinking the source fail.
var removeFile = os.Remove

// MoveNoReplace moves src to dst and fails with ErrDestinationExists rather
// than overwrite. The move is a hard link plus unlink; when the filesystem
// cannot link (different device, no hard link support) it falls back to an
// exclusive verified copy and removes src. If src cannot be removed, the new
// dst is removed again so a failed move leaves only src.
func MoveNoReplace(src, dst string) error {
	if err := os.Link(src, dst); err != nil {
		var linkErr *os.LinkError
		switch {
		case errors.Is(err, os.ErrExist):
			return fmt.Errorf("%w: %s", ErrDestinationExists, dst)
		case errors.As(err, &linkErr) && linkUnsupported(linkErr.Err):
			if err := CopyFileExclusive(src, dst); err != nil {
				return fmt.Errorf("copy file across devices: %w", err)
			}
		default:
			return fmt.Errorf("move file: %w", err)
		}
	}
	if err := removeFile(src); err != nil {
		if undoErr := os.Remove(dst); undoErr != nil {
			return errors.Join(fmt.Errorf("remove source after move: %w", err), fmt.Errorf("undo move: %w", undoErr))
		}
		return fmt.Errorf("remove source after move: %w", err)
	}
	return nil
}

func linkUnsupported(err error) bool {
	return errors.Is(err, syscall.EXDEV) ||
		errors.Is(err, syscall.EPERM) ||
		errors.Is(err, syscall.ENOTSUP) ||
		errors.Is(err, syscall.EMLINK)
}

// Exists reports whether path names an existing file or directory. Errors
// other than not-exist are returned so callers do not mistake an unreadable
// path for a free one.
func Exists(path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}
