// © 2026 The agsscript Authors
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edmundito/agsscript/internal/exc"
)

func TestLoad(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		expected Config
		code     string
	}{
		{
			name:     "empty document keeps defaults",
			input:    "",
			expected: Config{TrackTrivia: true, SourceEncoding: "auto"},
		},
		{
			name:     "recovery with a limit",
			input:    "recoverOnError: true\nmaxErrors: 10\n",
			expected: Config{RecoverOnError: true, TrackTrivia: true, MaxErrors: 10, SourceEncoding: "auto"},
		},
		{
			name:     "trivia disabled",
			input:    "trackTrivia: false\n",
			expected: Config{SourceEncoding: "auto"},
		},
		{
			name:     "explicit encoding",
			input:    "sourceEncoding: windows-1252\n",
			expected: Config{TrackTrivia: true, SourceEncoding: "windows-1252"},
		},
		{
			name:  "unknown encoding",
			input: "sourceEncoding: ebcdic\n",
			code:  exc.CodeInvalidConfig,
		},
		{
			name:  "limit without recovery",
			input: "maxErrors: 3\n",
			code:  exc.CodeInvalidConfig,
		},
		{
			name:  "negative limit",
			input: "recoverOnError: true\nmaxErrors: -1\n",
			code:  exc.CodeInvalidConfig,
		},
		{
			name:  "unknown key",
			input: "recover: true\n",
			code:  exc.CodeInvalidConfig,
		},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			c, err := Load(strings.NewReader(testCase.input))
			if testCase.code != "" {
				var e exc.Exception
				require.True(t, errors.As(err, &e))
				require.Equal(t, testCase.code, e.Code())
				require.Equal(t, exc.KindConfig, e.Kind())
				return
			}
			require.NoError(t, err)
			require.Equal(t, testCase.expected, c)
		})
	}
}

func TestNonFatalCodes(t *testing.T) {
	t.Parallel()

	require.Empty(t, Default().NonFatalCodes())
	c := Default()
	c.RecoverOnError = true
	require.Contains(t, c.NonFatalCodes(), exc.CodeUnexpectedToken)
	require.Contains(t, c.NonFatalCodes(), exc.CodeInvalidEscape)
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "agsparse.yaml")
	require.NoError(t, os.WriteFile(path, []byte("recoverOnError: true\n"), 0o644))
	c, err := LoadFile(path)
	require.NoError(t, err)
	require.True(t, c.RecoverOnError)

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	var e exc.Exception
	require.True(t, errors.As(err, &e))
	require.Equal(t, exc.CodeFileNotFound, e.Code())
}
