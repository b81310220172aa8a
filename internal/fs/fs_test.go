// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package fs

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edmundito/agsscript/internal/exc"
	"github.com/edmundito/agsscript/internal/script"
)

func readAll(t *testing.T, ctx context.Context, f script.File) string {
	t.Helper()
	body, err := f.Body(ctx)
	require.NoError(t, err)
	defer body.Close(ctx)
	var out []byte
	for {
		b, err := body.Read(ctx, 4)
		out = append(out, b...)
		if err != nil {
			require.True(t, errors.Is(err, io.EOF))
			return string(out)
		}
	}
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	require.Equal(t, script.FileKindScript, KindOf("GlobalScript.asc"))
	require.Equal(t, script.FileKindHeader, KindOf("dir/GlobalScript.ASH"))
	require.Equal(t, script.FileKindNone, KindOf("Game.agf"))
}

func TestFileSystemLocal(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "room1.asc"), []byte("function room_Load() {}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "room1.ash"), []byte("import int x;"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("ignored"), 0o644))

	lfs, err := NewFileSystemLocal(root)
	require.NoError(t, err)

	files, err := lfs.Open(ctx, "/")
	require.NoError(t, err)
	require.Len(t, files, 2)
	require.Equal(t, "/room1.asc", files[0].Path(ctx))
	require.Equal(t, "/room1.ash", files[1].Path(ctx))
	require.Equal(t, script.FileKindScript, files[0].Kind(ctx))
	require.Equal(t, script.FileKindHeader, files[1].Kind(ctx))
	require.Equal(t, "import int x;", readAll(t, ctx, files[1]))

	single, err := lfs.Open(ctx, "room1.asc")
	require.NoError(t, err)
	require.Len(t, single, 1)
	require.Equal(t, "function room_Load() {}", readAll(t, ctx, single[0]))

	_, err = lfs.Open(ctx, "missing.asc")
	var e exc.Exception
	require.True(t, errors.As(err, &e))
	require.Equal(t, exc.CodeFileNotFound, e.Code())
}

func TestFileString(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := NewFileString("/inline.asc", "int x;", script.FileKindScript)
	require.Equal(t, "/inline.asc", f.Path(ctx))
	require.Equal(t, "int x;", readAll(t, ctx, f))
	// Body may be requested more than once.
	require.Equal(t, "int x;", readAll(t, ctx, f))
}

func TestFileSystemLocalRecursive(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "rooms", "intro"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "GlobalScript.asc"), []byte("int a;"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "rooms", "room1.asc"), []byte("int b;"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "rooms", "intro", "room2.asc"), []byte("int c;"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".git", "stash.asc"), []byte("int d;"), 0o644))

	testCases := []struct {
		name      string
		recursive bool
		target    string
		expected  []string
	}{
		{
			name:     "flat",
			target:   "/",
			expected: []string{"/GlobalScript.asc"},
		},
		{
			name:      "recursive",
			recursive: true,
			target:    "/",
			expected:  []string{"/GlobalScript.asc", "/rooms/intro/room2.asc", "/rooms/room1.asc"},
		},
		{
			name:      "subdirectory",
			recursive: true,
			target:    "rooms",
			expected:  []string{"/rooms/intro/room2.asc", "/rooms/room1.asc"},
		},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			lfs, err := NewFileSystemLocal(root, WithOptionRecursive(testCase.recursive))
			require.NoError(t, err)
			files, err := lfs.Open(ctx, testCase.target)
			require.NoError(t, err)
			paths := make([]string, 0, len(files))
			for _, f := range files {
				paths = append(paths, f.Path(ctx))
			}
			require.Equal(t, testCase.expected, paths)
		})
	}
}

func TestFileSystemLocalEmptyDirectory(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "Game.agf"), []byte("<xml/>"), 0o644))
	lfs, err := NewFileSystemLocal(root)
	require.NoError(t, err)
	_, err = lfs.Open(context.Background(), "/")
	var e exc.Exception
	require.True(t, errors.As(err, &e))
	require.Equal(t, exc.CodeFileNotFound, e.Code())
}

func TestFileDecoded(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	// "café" as saved by a Windows-1252 editor.
	ansi := string([]byte{'c', 'a', 'f', 0xE9})

	testCases := []struct {
		name     string
		encoding string
		content  string
		expected string
	}{
		{name: "utf-8 passes through", encoding: EncodingUTF8, content: "café", expected: "café"},
		{name: "windows-1252", encoding: EncodingWindows1252, content: ansi, expected: "café"},
		{name: "latin-1", encoding: "ISO-8859-1", content: ansi, expected: "café"},
		{name: "auto keeps utf-8", encoding: EncodingAuto, content: "café €", expected: "café €"},
		{name: "auto decodes ansi", encoding: EncodingAuto, content: ansi + string([]byte{0x80}), expected: "café€"},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			f, err := NewFileDecoded(NewFileString("/x.asc", testCase.content, script.FileKindScript), testCase.encoding)
			require.NoError(t, err)
			require.Equal(t, "/x.asc", f.Path(ctx))
			require.Equal(t, script.FileKindScript, f.Kind(ctx))
			require.Equal(t, testCase.expected, readAll(t, ctx, f))
		})
	}

	require.True(t, KnownEncoding("Windows-1252"))
	require.False(t, KnownEncoding("ebcdic"))
	_, err := NewFileDecoded(NewFileString("/x.asc", "", script.FileKindScript), "ebcdic")
	var e exc.Exception
	require.True(t, errors.As(err, &e))
	require.Equal(t, exc.CodeUnsupportedFileFormat, e.Code())
}

func TestFileBodyCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	body, err := NewFileString("/x.asc", "int x;", script.FileKindScript).Body(ctx)
	require.NoError(t, err)
	_, err = body.Read(ctx, 4)
	var e exc.Exception
	require.True(t, errors.As(err, &e))
	require.Equal(t, exc.CodeCanceled, e.Code())
	require.True(t, errors.Is(err, context.Canceled))
}
