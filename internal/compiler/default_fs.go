// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package compiler

import (
	"path/filepath"

	"github.com/edmundito/agsscript/internal/fs"
	"github.com/edmundito/agsscript/internal/script"
)

// EnvPath names the variable holding extra search roots, separated like
// PATH.
const EnvPath = "AGSPARSE_PATH"

// NewDefaultFS searches the working directory first, then the roots named
// by EnvPath or the platform data directories, then the file system root so
// that absolute paths resolve. The options apply to every root.
func NewDefaultFS(lookup func(string) (string, bool), options ...fs.FileSystemLocalOption) (script.FileSystem, error) {
	roots := []string{"."}
	if v, ok := lookup(EnvPath); ok && v != "" {
		roots = append(roots, filepath.SplitList(v)...)
	} else {
		roots = append(roots, getDefaultRoots(lookup)...)
	}
	roots = append(roots, getSystemRoot(lookup))
	f := make(fs.FileSystemMulti, 0, len(roots))
	for _, root := range roots {
		absRoot, errAbs := filepath.Abs(root)
		if errAbs != nil {
			return nil, errAbs
		}
		rf, err := fs.NewFileSystemLocal(absRoot, options...)
		if err != nil {
			return nil, err
		}
		f = append(f, rf)
	}
	return f, nil
}
