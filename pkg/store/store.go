// Package store persists catalog documents. Every write replaces the target
// in a single rename so readers see either the old or the new document.
package store

import (
	"bytes"
	"encoding/json"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"

	"github.com/spf13/afero"

	"github.com/hdwx/mrms/pkg/constants"
	"github.com/hdwx/mrms/pkg/errors"
)

// Store loads and saves JSON documents addressed by slash separated paths
// relative to the output root.
type Store interface {
	// Load decodes the document at p into v. found is false, with a nil
	// error, when the document does not exist.
	Load(p string, v any) (found bool, err error)

	// Save atomically replaces the document at p with v.
	Save(p string, v any) error

	// List returns the names of the regular files in dir, sorted. A missing
	// directory lists as empty.
	List(dir string) ([]string, error)

	// Dirs returns the names of the subdirectories of dir, sorted.
	Dirs(dir string) ([]string, error)

	// Exists reports whether p exists.
	Exists(p string) (bool, error)
}

// Validator is implemented by documents that can check themselves after
// decoding.
type Validator interface {
	Validate() error
}

// Compile-time interface check.
var _ Store = (*FS)(nil)

// FS is a Store over an afero filesystem.
type FS struct {
	fs       afero.Fs
	dirPerm  os.FileMode
	filePerm os.FileMode
}

// Option configures an FS.
type Option func(*FS)

// WithFilePermissions sets the mode applied to every saved document.
func WithFilePermissions(mode os.FileMode) Option {
	return func(s *FS) {
		s.filePerm = mode
	}
}

// WithDirPermissions sets the mode of created parent directories.
func WithDirPermissions(mode os.FileMode) Option {
	return func(s *FS) {
		s.dirPerm = mode
	}
}

// New returns a store over fsys.
func New(fsys afero.Fs, opts ...Option) *FS {
	s := &FS{
		fs:       fsys,
		dirPerm:  constants.DirPermissions,
		filePerm: constants.FilePermissions,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewOS returns a store rooted at dir on the local filesystem, creating dir
// if needed.
func NewOS(dir string, opts ...Option) (*FS, error) {
	if dir == "" {
		return nil, errors.NewValidationError("output_root", dir, "output root is required")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.WrapIO("resolve", dir, err)
	}
	osfs := afero.NewOsFs()
	if err := osfs.MkdirAll(abs, constants.DirPermissions); err != nil {
		return nil, errors.WrapIO("create", abs, err)
	}
	return New(afero.NewBasePathFs(osfs, abs), opts...), nil
}

// NewMemory returns a store backed by an in-memory filesystem.
func NewMemory(opts ...Option) *FS {
	return New(afero.NewMemMapFs(), opts...)
}

// Fs returns the underlying filesystem.
func (s *FS) Fs() afero.Fs {
	return s.fs
}

// Load implements Store.
func (s *FS) Load(p string, v any) (bool, error) {
	name := filepath.FromSlash(p)
	data, err := afero.ReadFile(s.fs, name)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.WrapIO("read", p, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return true, errors.WrapParse("json", p, err)
	}
	if val, ok := v.(Validator); ok {
		if err := val.Validate(); err != nil {
			return true, errors.WrapParse("json", p, err)
		}
	}
	return true, nil
}

// Save implements Store. The document is encoded first, then written to a
// hidden temp file beside the target, synced, closed, chmodded and renamed
// over the target. On any failure the temp file is removed and the target is
// left as it was.
func (s *FS) Save(p string, v any) error {
	data, err := Encode(v)
	if err != nil {
		return errors.NewIOError("encode", p, err)
	}

	name := filepath.FromSlash(p)
	dir := filepath.Dir(name)
	if err := s.fs.MkdirAll(dir, s.dirPerm); err != nil {
		return errors.WrapIO("create", path.Dir(p), err)
	}

	f, err := afero.TempFile(s.fs, dir, "."+filepath.Base(name)+".*.tmp")
	if err != nil {
		return errors.WrapIO("create", p, err)
	}
	tmp := filepath.Join(dir, filepath.Base(f.Name()))

	committed := false
	defer func() {
		if !committed {
			_ = f.Close()
			_ = s.fs.Remove(tmp)
		}
	}()

	if _, err := f.Write(data); err != nil {
		return errors.WrapIO("write", p, err)
	}
	if err := f.Sync(); err != nil {
		return errors.WrapIO("sync", p, err)
	}
	if err := f.Close(); err != nil {
		return errors.WrapIO("close", p, err)
	}
	if err := s.fs.Chmod(tmp, s.filePerm); err != nil {
		return errors.WrapIO("chmod", p, err)
	}
	if err := s.fs.Rename(tmp, name); err != nil {
		return errors.WrapIO("rename", p, err)
	}
	committed = true
	return nil
}

// List implements Store.
func (s *FS) List(dir string) ([]string, error) {
	return s.entries(dir, func(fi fs.FileInfo) bool { return fi.Mode().IsRegular() })
}

// Dirs implements Store.
func (s *FS) Dirs(dir string) ([]string, error) {
	return s.entries(dir, func(fi fs.FileInfo) bool { return fi.IsDir() })
}

func (s *FS) entries(dir string, keep func(fs.FileInfo) bool) ([]string, error) {
	infos, err := afero.ReadDir(s.fs, filepath.FromSlash(dir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.WrapIO("list", dir, err)
	}
	var names []string
	for _, fi := range infos {
		if keep(fi) {
			names = append(names, fi.Name())
		}
	}
	slices.Sort(names)
	return names, nil
}

// Exists implements Store.
func (s *FS) Exists(p string) (bool, error) {
	ok, err := afero.Exists(s.fs, filepath.FromSlash(p))
	if err != nil {
		return false, errors.WrapIO("stat", p, err)
	}
	return ok, nil
}

// Encode renders v as the on-disk JSON form: four space indentation and a
// trailing newline.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
