// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package iter

import (
	"bufio"
	"context"
	"errors"
	"io"

	"github.com/edmundito/agsscript/internal/optional"
	"github.com/edmundito/agsscript/internal/script"
)

// NewUnicodeFileBodyCtx converts a FileBody into an iterator of code points.
// The given context is used for every read of the body. Bytes that are not
// valid UTF-8 are returned as U+FFFD, one per byte.
func NewUnicodeFileBodyCtx(ctx context.Context, b script.FileBody) script.Iterator[script.CodePoint] {
	rc := &fileBodyIO{
		ctx:  ctx,
		body: b,
	}
	return &fileBody{
		readCloser: rc,
		reader:     bufio.NewReader(rc),
	}
}

type fileBody struct {
	readCloser io.ReadCloser
	reader     *bufio.Reader
	err        error
}

func (f *fileBody) Next(ctx context.Context) optional.Optional[script.CodePoint] {
	if f.err != nil {
		return optional.None[script.CodePoint]()
	}
	r, _, err := f.reader.ReadRune()
	if err != nil {
		f.err = err
		return optional.None[script.CodePoint]()
	}
	return optional.Some(script.CodePoint(r))
}

// Close releases the body and returns the error that ended iteration early,
// if any.
func (f *fileBody) Close(context.Context) error {
	_ = f.readCloser.Close()
	if f.err != nil && !errors.Is(f.err, io.EOF) {
		return f.err
	}
	return nil
}

type fileBodyIO struct {
	ctx  context.Context
	body script.FileBody
}

func (self *fileBodyIO) Read(p []byte) (int, error) {
	b, err := self.body.Read(self.ctx, int32(len(p)))
	n := copy(p, b)
	if errors.Is(err, io.EOF) {
		return n, io.EOF
	}
	return n, err
}

func (self *fileBodyIO) Close() error {
	return self.body.Close(self.ctx)
}
