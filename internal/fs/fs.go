// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/edmundito/agsscript/internal/exc"
	"github.com/edmundito/agsscript/internal/script"
)

const (
	scriptExt = ".asc" // Script module body
	headerExt = ".ash" // Script module header
)

var knownExts = map[string]script.FileKind{
	scriptExt: script.FileKindScript,
	headerExt: script.FileKindHeader,
}

// KindOf returns the file kind implied by the path's extension. Matching is
// case-insensitive because AGS projects are frequently authored on Windows.
func KindOf(path string) script.FileKind {
	return knownExts[strings.ToLower(filepath.Ext(path))]
}

var _ script.FileSystem = FileSystemMulti{}

// FileSystemMulti is an ordered set of FileSystem implementations that are
// tried in order. Note that this type does not implement write operations.
// Those must be performed on individual backends.
type FileSystemMulti []script.FileSystem

func (r FileSystemMulti) Open(ctx context.Context, uri string) ([]script.File, error) {
	for _, fs := range r {
		files, err := fs.Open(ctx, uri)
		if err != nil {
			continue
		}
		return files, nil
	}
	return nil, exc.New(exc.Location{URI: uri}, exc.CodeFileNotFound, fmt.Sprintf("could not open %s from any file system", uri))
}

func (r FileSystemMulti) Write(ctx context.Context, uri string, content string) error {
	return exc.New(exc.Location{URI: uri}, exc.CodeUnsuportedFileSystemOperation, "cannot write to a composite file system")
}

// FileFilter is a filter function type used to select which files to open when
// the path being opened is a directory. Implementations should return true if
// the file should be opened, false otherwise.
type FileFilter func(ctx context.Context, fname string) bool

type FileSystemLocalOption func(*fileSystemLocal)

// WithOptionFSFactory installs a custom factory function used to generate the
// underlying file system handle. The default value is os.DirFS. The string
// value provided to the factory function is the root directory of the file
// system. All paths given to open or write are considered relative to this
// root.
func WithOptionFSFactory(v func(root string) fs.FS) FileSystemLocalOption {
	return func(rfs *fileSystemLocal) {
		rfs.fsFactory = v
	}
}

// WithOptionFileFilter installs a custom filter function used to select files
// when a target is a directory. The default accepts script bodies and
// headers.
func WithOptionFileFilter(v FileFilter) FileSystemLocalOption {
	return func(rfs *fileSystemLocal) {
		rfs.fileFilter = v
	}
}

// WithOptionRecursive makes a directory target include the files of its
// subdirectories. Hidden directories, such as version control metadata, are
// skipped.
func WithOptionRecursive(v bool) FileSystemLocalOption {
	return func(rfs *fileSystemLocal) {
		rfs.recursive = v
	}
}

type fileSystemLocal struct {
	root       string
	fsFactory  func(string) fs.FS
	fileFilter FileFilter
	recursive  bool
}

// NewFileSystemLocal creates a new FileSystem that uses the local file system.
func NewFileSystemLocal(root string, options ...FileSystemLocalOption) (script.FileSystem, error) {
	absroot, err := filepath.Abs(root)
	if err != nil {
		return nil, exc.WrapUnknown(exc.Location{URI: root}, err)
	}
	result := &fileSystemLocal{
		root:      absroot,
		fsFactory: os.DirFS,
		fileFilter: func(ctx context.Context, fname string) bool {
			return KindOf(fname) != script.FileKindNone
		},
	}
	for _, option := range options {
		option(result)
	}
	return result, nil
}

// Open returns the file at uri, or the selected files of the directory at
// uri in lexical order. Every returned path is rooted, e.g. "/rooms/1.asc".
func (r *fileSystemLocal) Open(ctx context.Context, uri string) ([]script.File, error) {
	path := uri
	u, err := url.Parse(uri)
	if err == nil {
		path = u.Path
	}
	// fs.FS requires an un-rooted path, and exactly "." for the root itself.
	p := strings.TrimPrefix(filepath.ToSlash(filepath.Clean(filepath.Join("/", path))), "/")
	if p == "" {
		p = "."
	}

	dir := r.fsFactory(r.root)
	stat, err := fs.Stat(dir, p)
	if err != nil {
		return nil, fsErr(p, err)
	}
	if !stat.IsDir() {
		return []script.File{r.file(dir, p)}, nil
	}

	var files []script.File
	err = fs.WalkDir(dir, p, func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if name == p {
				return nil
			}
			if !r.recursive || strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if r.fileFilter(ctx, d.Name()) {
			files = append(files, r.file(dir, name))
		}
		return nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, exc.Wrap(exc.Location{URI: uri}, exc.CodeCanceled, ctxErr)
		}
		return nil, fsErr(p, err)
	}
	if len(files) < 1 {
		return nil, exc.New(exc.Location{URI: path}, exc.CodeFileNotFound, fmt.Sprintf("found directory %s but it contains no scripts", path))
	}
	return files, nil
}

func (r *fileSystemLocal) file(dir fs.FS, name string) script.File {
	return NewFileFN("/"+name, func() (io.ReadCloser, error) {
		return dir.Open(name)
	}, KindOf(name))
}

func (r *fileSystemLocal) Write(ctx context.Context, uri string, content string) error {
	path := uri
	u, err := url.Parse(uri)
	if err == nil {
		path = u.Path
	}
	path = filepath.Join(r.root, "/", path)
	p := filepath.Clean(path)

	d := filepath.Dir(p)
	if err = os.MkdirAll(d, os.ModeDir|0o755); err != nil {
		return fsErr(d, err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		return fsErr(p, err)
	}
	return nil
}

func fsErr(path string, err error) error {
	var errT *fs.PathError
	if errors.As(err, &errT) {
		path = errT.Path
	}
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return exc.Wrap(exc.Location{URI: path}, exc.CodeFileNotFound, err)
	case errors.Is(err, fs.ErrPermission):
		return exc.Wrap(exc.Location{URI: path}, exc.CodePermissionDenied, err)
	}
	return exc.WrapUnknown(exc.Location{URI: path}, err)
}
