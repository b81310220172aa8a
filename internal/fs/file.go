// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package fs

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/edmundito/agsscript/internal/exc"
	"github.com/edmundito/agsscript/internal/script"
)

// NewFileString wraps static string content in script.File.
func NewFileString(path string, content string, kind script.FileKind) script.File {
	return NewFileFN(path, func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(content)), nil
	}, kind)
}

type fileIOFunc struct {
	path string
	kind script.FileKind
	body func() (io.ReadCloser, error)
}

// NewFileFN is intended to wrap actual file based content in the script.File
// interface. The given body function is used each time there is a call to the
// script.File.Body method so it must return a new io.ReadCloser handle.
func NewFileFN(path string, body func() (io.ReadCloser, error), kind script.FileKind) script.File {
	return &fileIOFunc{
		path: path,
		kind: kind,
		body: body,
	}
}

func (f *fileIOFunc) Path(ctx context.Context) string {
	return f.path
}

func (f *fileIOFunc) Kind(ctx context.Context) script.FileKind {
	return f.kind
}

func (f *fileIOFunc) Body(ctx context.Context) (script.FileBody, error) {
	rc, err := f.body()
	if err != nil {
		return nil, err
	}
	return bodyFromIO(&bufioReaderCloser{
		Reader: bufio.NewReader(rc),
		Closer: rc,
	}), nil
}

type bufioReaderCloser struct {
	*bufio.Reader
	io.Closer
}

// Source encodings accepted by NewFileDecoded.
const (
	EncodingUTF8        = "utf-8"
	EncodingWindows1252 = "windows-1252"
	EncodingLatin1      = "iso-8859-1"
	// EncodingAuto keeps bodies that are valid UTF-8 and reads any other
	// body as Windows-1252, the code page older AGS editors saved in.
	EncodingAuto = "auto"
)

var encodings = map[string]encoding.Encoding{
	EncodingUTF8:        nil,
	EncodingWindows1252: charmap.Windows1252,
	EncodingLatin1:      charmap.ISO8859_1,
	EncodingAuto:        charmap.Windows1252,
}

// KnownEncoding reports whether name is accepted by NewFileDecoded.
func KnownEncoding(name string) bool {
	_, ok := encodings[strings.ToLower(name)]
	return ok
}

// NewFileDecoded returns f with a body transcoded to UTF-8 from the named
// encoding. Locations reported for the file are positions in the UTF-8 text.
func NewFileDecoded(f script.File, name string) (script.File, error) {
	name = strings.ToLower(name)
	enc, ok := encodings[name]
	if !ok {
		return nil, exc.New(exc.Location{URI: f.Path(context.Background())}, exc.CodeUnsupportedFileFormat, fmt.Sprintf("unknown source encoding %q", name))
	}
	if enc == nil {
		return f, nil
	}
	return &fileDecoded{File: f, enc: enc, auto: name == EncodingAuto}, nil
}

type fileDecoded struct {
	script.File
	enc  encoding.Encoding
	auto bool
}

func (f *fileDecoded) Body(ctx context.Context) (script.FileBody, error) {
	body, err := f.File.Body(ctx)
	if err != nil {
		return nil, err
	}
	src := &ioFromBody{ctx: ctx, body: body}
	if !f.auto {
		return bodyFromIO(&bufioReaderCloser{
			Reader: bufio.NewReader(transform.NewReader(src, f.enc.NewDecoder())),
			Closer: src,
		}), nil
	}
	// Detection needs the whole body. Scripts are small enough to hold.
	b, err := io.ReadAll(src)
	_ = src.Close()
	if err != nil {
		return nil, exc.WrapUnknown(exc.Location{URI: f.Path(ctx)}, err)
	}
	if !utf8.Valid(b) {
		b, err = f.enc.NewDecoder().Bytes(b)
		if err != nil {
			return nil, exc.Wrap(exc.Location{URI: f.Path(ctx)}, exc.CodeUnsupportedFileFormat, err)
		}
	}
	return bodyFromIO(io.NopCloser(bytes.NewReader(b))), nil
}
