package profile

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

const (
	defaultPerm os.FileMode = 0644
	dirPerm     os.FileMode = 0755
	maxLinks                = 16
)

// ResolveLinks follows symlinks so that a dotfile-managed profile keeps its
// link and the target is rewritten instead. Filesystems without link support
// return path unchanged.
func ResolveLinks(fsys afero.Fs, path string) (string, error) {
	lst, ok := fsys.(afero.Lstater)
	if !ok {
		return path, nil
	}
	lr, ok := fsys.(afero.LinkReader)
	if !ok {
		return path, nil
	}

	for i := 0; i < maxLinks; i++ {
		info, _, err := lst.LstatIfPossible(path)
		if errors.Is(err, fs.ErrNotExist) {
			return path, nil
		}
		if err != nil {
			return "", &FilesystemError{Op: "lstat", Path: path, Err: err}
		}
		if info.Mode()&os.ModeSymlink == 0 {
			return path, nil
		}
		target, err := lr.ReadlinkIfPossible(path)
		if err != nil {
			return "", &FilesystemError{Op: "readlink", Path: path, Err: err}
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(path), target)
		}
		path = target
	}
	return "", &FilesystemError{Op: "resolve", Path: path, Err: errors.New("too many levels of symbolic links")}
}

// readProfile returns the content and permission bits of path. A missing file
// is empty content with the default permission.
func readProfile(fsys afero.Fs, path string) (string, os.FileMode, error) {
	info, err := fsys.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", defaultPerm, nil
	}
	if err != nil {
		return "", 0, &FilesystemError{Op: "stat", Path: path, Err: err}
	}
	if info.IsDir() {
		return "", 0, &FilesystemError{Op: "read", Path: path, Err: errors.New("is a directory")}
	}

	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return "", 0, &FilesystemError{Op: "read", Path: path, Err: err}
	}
	return string(data), info.Mode().Perm(), nil
}

// ensureDir creates the parent directory of path when it does not exist.
func ensureDir(fsys afero.Fs, path string) error {
	dir := filepath.Dir(path)
	info, err := fsys.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return &FilesystemError{Op: "mkdir", Path: dir, Err: errors.New("not a directory")}
		}
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return &FilesystemError{Op: "stat", Path: dir, Err: err}
	}
	if err := fsys.MkdirAll(dir, dirPerm); err != nil {
		return &FilesystemError{Op: "mkdir", Path: dir, Err: err}
	}
	return nil
}

// writeAtomic replaces path with data through a temporary file in the same
// directory and a rename. The temporary file never survives a failure.
func writeAtomic(fsys afero.Fs, path string, data []byte, perm os.FileMode) (err error) {
	tmp, err := afero.TempFile(fsys, filepath.Dir(path), "."+filepath.Base(path)+".vagrant-shim-*")
	if err != nil {
		return &FilesystemError{Op: "create temp", Path: path, Err: err}
	}
	tmpName := tmp.Name()
	closed := false
	defer func() {
		if err == nil {
			return
		}
		if !closed {
			_ = tmp.Close()
		}
		_ = fsys.Remove(tmpName)
	}()

	if _, err = tmp.Write(data); err != nil {
		return &FilesystemError{Op: "write", Path: tmpName, Err: err}
	}
	if err = tmp.Sync(); err != nil {
		return &FilesystemError{Op: "sync", Path: tmpName, Err: err}
	}
	closed = true
	if err = tmp.Close(); err != nil {
		return &FilesystemError{Op: "close", Path: tmpName, Err: err}
	}
	if err = fsys.Chmod(tmpName, perm); err != nil {
		return &FilesystemError{Op: "chmod", Path: tmpName, Err: err}
	}
	if err = fsys.Rename(tmpName, path); err != nil {
		return &FilesystemError{Op: "rename", Path: path, Err: err}
	}
	return nil
}
