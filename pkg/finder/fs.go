package finder

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// lstat describes path without following a final symlink when the filesystem
// can tell links apart. Filesystems without link support fall back to Stat.
func lstat(fs afero.Fs, path string) (os.FileInfo, error) {
	if l, ok := fs.(afero.Lstater); ok {
		info, _, err := l.LstatIfPossible(path)
		return info, err
	}
	return fs.Stat(path)
}

// realPath resolves every link in path on the OS filesystem. Other filesystems
// have no links to resolve, so the cleaned path is returned.
func realPath(fs afero.Fs, path string) (string, error) {
	if isOsFs(fs) {
		resolved, err := filepath.EvalSymlinks(path)
		if err != nil {
			return "", err
		}
		return filepath.ToSlash(resolved), nil
	}
	return filepath.ToSlash(filepath.Clean(path)), nil
}

func isOsFs(fs afero.Fs) bool {
	_, ok := fs.(*afero.OsFs)
	return ok
}

// readDirNames lists the entry names of dir in filesystem order. The handle is
// closed before returning.
func readDirNames(fs afero.Fs, dir string) ([]string, error) {
	f, err := fs.Open(dir)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	names, err := f.Readdirnames(-1)
	if err != nil {
		return nil, err
	}

	out := names[:0]
	for _, name := range names {
		if name == "." || name == ".." {
			continue
		}
		out = append(out, name)
	}
	return out, nil
}

// joinPath appends name to a slash-separated directory path.
func joinPath(dir, name string) string {
	if strings.HasSuffix(dir, "/") {
		return dir + name
	}
	return dir + "/" + name
}

// resolveRoot turns a user-supplied root into the absolute slash-separated path
// the walk starts from. ok is false when the root is missing or not a directory.
func resolveRoot(fs afero.Fs, root string) (string, bool) {
	abs, err := filepath.Abs(filepath.FromSlash(strings.ReplaceAll(root, `\`, "/")))
	if err != nil {
		return "", false
	}

	if isOsFs(fs) {
		if resolved, err := filepath.EvalSymlinks(abs); err == nil {
			abs = resolved
		}
	}

	info, err := fs.Stat(abs)
	if err != nil || !info.IsDir() {
		return "", false
	}

	return filepath.ToSlash(abs), true
}
