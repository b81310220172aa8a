// © 2026 The agsscript Authors
//
// SPDX-License-Identifier: Apache-2.0

package exc

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edmundito/agsscript/internal/script"
)

func TestReporter(t *testing.T) {
	t.Parallel()

	loc := Location{URI: "/a.asc", Location: script.Location{Line: 2, Column: 5, Offset: 9}}
	testCases := []struct {
		name      string
		nonFatal  []string
		exception Exception
		fatal     bool
	}{
		{
			name:      "syntax error is fatal by default",
			exception: NewSyntax(loc, CodeUnexpectedToken, "", `";"`, []string{"expression"}),
			fatal:     true,
		},
		{
			name:      "syntax error is recoverable when listed",
			nonFatal:  RecoverableCodes(),
			exception: NewSyntax(loc, CodeUnexpectedToken, "", `";"`, []string{"expression"}),
			fatal:     false,
		},
		{
			name:      "warnings never fail",
			exception: NewWarning(loc, CodeExtendsCycle, "cycle"),
			fatal:     false,
		},
		{
			name:      "config errors stay fatal in recovery mode",
			nonFatal:  RecoverableCodes(),
			exception: New(loc, CodeInvalidConfig, "bad"),
			fatal:     true,
		},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			r := NewReporter(testCase.nonFatal)
			out := r.Report(testCase.exception)
			if testCase.fatal {
				require.NotNil(t, out)
			} else {
				require.Nil(t, out)
			}
			require.Equal(t, testCase.fatal, r.Failed())
			require.Len(t, r.Reported(), 1)
		})
	}
}

func TestSyntaxMessage(t *testing.T) {
	t.Parallel()

	e := NewSyntax(Location{URI: "x.asc", Location: script.Location{Line: 1, Column: 9}}, CodeUnexpectedToken, "", `";"`, []string{"expression"})
	require.Equal(t, `x.asc:1:9 -- A0200: unexpected ";" (expecting expression)`, e.Error())
	require.Equal(t, KindParse, e.Kind())
	require.Equal(t, []string{"expression"}, e.Expected())
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	require.Equal(t, KindLex, KindOf(CodeInvalidEscape))
	require.Equal(t, KindParse, KindOf(CodeUnexpectedEOF))
	require.Equal(t, KindConfig, KindOf(CodeInvalidConfig))
	require.Equal(t, KindSemantic, KindOf(CodeExtendsCycle))
	require.Equal(t, KindIO, KindOf(CodeFileNotFound))
	require.Equal(t, KindUnknown, KindOf("M0001"))
}

func TestWrap(t *testing.T) {
	t.Parallel()

	require.Nil(t, Wrap(Location{}, CodeUnknownFatal, nil))
	e := Wrap(Location{URI: "f"}, CodeFileNotFound, io.ErrUnexpectedEOF)
	require.True(t, errors.Is(e, io.ErrUnexpectedEOF))
	require.Equal(t, CodeFileNotFound, e.Code())
}
