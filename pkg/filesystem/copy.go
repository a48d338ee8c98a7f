package filesystem

import (
	"os"
	"path/filepath"

	"github.com/arthur-debert/deez/pkg/errors"
	"github.com/arthur-debert/deez/pkg/types"
)

// CopyPath copies src to dst. Symbolic links are recreated as links
// pointing at their original target, directories are copied
// recursively, and regular files keep their permission bits and
// modification time.
func CopyPath(fsys types.FS, src, dst string) error {
	info, err := fsys.Lstat(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", src)
	}

	switch {
	case info.Mode()&os.ModeSymlink != 0:
		return copySymlink(fsys, src, dst)
	case info.IsDir():
		return CopyDir(fsys, src, dst)
	default:
		return CopyFile(fsys, src, dst)
	}
}

// CopyFile copies a regular file, preserving its permission bits and
// modification time. Parent directories of dst are created as needed.
func CopyFile(fsys types.FS, src, dst string) error {
	info, err := fsys.Stat(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", src)
	}

	data, err := fsys.ReadFile(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileCopy, "cannot read %s", src)
	}

	if err := fsys.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create parent of %s", dst)
	}

	if err := fsys.WriteFile(dst, data, info.Mode().Perm()); err != nil {
		return errors.Wrapf(err, errors.ErrFileCopy, "cannot write %s", dst)
	}

	// WriteFile leaves the original mode in place when dst already
	// existed, so set it explicitly.
	if err := fsys.Chmod(dst, info.Mode().Perm()); err != nil {
		return errors.Wrapf(err, errors.ErrFileCopy, "cannot chmod %s", dst)
	}

	if err := fsys.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return errors.Wrapf(err, errors.ErrFileCopy, "cannot set times on %s", dst)
	}

	return nil
}

// CopyDir recursively copies a directory tree, recreating symbolic
// links rather than following them.
func CopyDir(fsys types.FS, src, dst string) error {
	info, err := fsys.Stat(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", src)
	}

	if err := fsys.MkdirAll(dst, info.Mode().Perm()); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", dst)
	}

	entries, err := fsys.ReadDir(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", src)
	}

	for _, entry := range entries {
		if err := CopyPath(fsys, filepath.Join(src, entry.Name()), filepath.Join(dst, entry.Name())); err != nil {
			return err
		}
	}

	return nil
}

func copySymlink(fsys types.FS, src, dst string) error {
	target, err := fsys.Readlink(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileCopy, "cannot read link %s", src)
	}

	if err := fsys.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create parent of %s", dst)
	}

	// Symlink fails if dst exists; replace it.
	if _, err := fsys.Lstat(dst); err == nil {
		if err := fsys.RemoveAll(dst); err != nil {
			return errors.Wrapf(err, errors.ErrFileCopy, "cannot replace %s", dst)
		}
	}

	if err := fsys.Symlink(target, dst); err != nil {
		return errors.Wrapf(err, errors.ErrFileCopy, "cannot link %s", dst)
	}

	return nil
}
