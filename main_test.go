package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeScript(t *testing.T, dir string, name string, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestFlagsExist(t *testing.T) {
	t.Parallel()

	cmd := newRootCmd(&bytes.Buffer{}, &bytes.Buffer{})
	for _, name := range []string{
		"format", "output", "config", "dump-tokens", "recover", "trivia",
		"max-errors", "check-extends", "watch", "max-concurrency", "verbose",
		"encoding", "recursive",
	} {
		require.NotNil(t, cmd.Flags().Lookup(name), name)
	}
}

func TestFormats(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	p := writeScript(t, dir, "Room.asc", "int x = 5;\n")

	testCases := []struct {
		format string
		check  func(t *testing.T, out string)
	}{
		{
			format: "sexp",
			check: func(t *testing.T, out string) {
				require.Equal(t, "(source_file (declaration (primitive_type) (init_declarator (identifier) (number_literal))))\n", out)
			},
		},
		{
			format: "source",
			check: func(t *testing.T, out string) {
				require.Contains(t, out, "int x = 5 ;")
			},
		},
		{
			format: "json",
			check: func(t *testing.T, out string) {
				var decoded map[string]interface{}
				require.NoError(t, json.Unmarshal([]byte(out), &decoded))
				require.Equal(t, "source_file", decoded["kind"])
			},
		},
		{
			format: "yaml",
			check: func(t *testing.T, out string) {
				var decoded map[string]interface{}
				require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))
				require.Equal(t, "source_file", decoded["kind"])
			},
		},
		{
			format: "proto",
			check: func(t *testing.T, out string) {
				require.NotEmpty(t, out)
			},
		},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.format, func(t *testing.T) {
			t.Parallel()
			out, errOut, err := execute(t, "--format", testCase.format, p)
			require.NoError(t, err)
			require.Empty(t, errOut)
			testCase.check(t, out)
		})
	}
}

func TestUnknownFormat(t *testing.T) {
	t.Parallel()

	p := writeScript(t, t.TempDir(), "Room.asc", "int x;\n")
	_, _, err := execute(t, "--format", "xml", p)
	require.ErrorContains(t, err, `unknown format "xml"`)
}

func TestSyntaxErrors(t *testing.T) {
	t.Parallel()

	p := writeScript(t, t.TempDir(), "Room.asc", "int x = ;\nint y;\n")

	out, errOut, err := execute(t, p)
	require.True(t, errors.Is(err, errReported))
	require.Empty(t, out)
	require.Contains(t, errOut, "A0200")
	require.Contains(t, errOut, "Room.asc:1:9")

	out, errOut, err = execute(t, "--recover", p)
	require.NoError(t, err)
	require.Contains(t, out, "(source_file")
	require.Contains(t, errOut, "A0200")
}

func TestConfigFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	p := writeScript(t, dir, "Room.asc", "int x = ;\nint y = ;\nint z = ;\n")
	cfg := writeScript(t, dir, "agsparse.yaml", "recoverOnError: true\nmaxErrors: 1\n")

	out, errOut, err := execute(t, "--config", cfg, p)
	require.NoError(t, err)
	require.Contains(t, out, "(source_file")
	require.Contains(t, errOut, "A0206")

	_, _, err = execute(t, "--config", cfg, "--recover=false", p)
	require.ErrorContains(t, err, "maxErrors requires recoverOnError")

	bad := writeScript(t, dir, "bad.yaml", "recover: true\n")
	_, _, err = execute(t, "--config", bad, p)
	require.Error(t, err)
}

func TestOutputDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := writeScript(t, dir, "a.asc", "int a;\n")
	b := writeScript(t, dir, "b.ash", "int b;\n")
	outDir := filepath.Join(dir, "out")

	out, _, err := execute(t, "--output", outDir, a, b)
	require.NoError(t, err)
	require.Empty(t, out)
	for _, name := range []string{"a.asc.sexp", "b.ash.sexp"} {
		content, err := os.ReadFile(filepath.Join(outDir, name))
		require.NoError(t, err)
		require.Contains(t, string(content), "(source_file")
	}
}

func TestMultipleFilesOnStdout(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := writeScript(t, dir, "a.asc", "int a;\n")
	b := writeScript(t, dir, "b.ash", "int b;\n")

	out, _, err := execute(t, a, b)
	require.NoError(t, err)
	require.Contains(t, out, "; "+a+"\n")
	require.Contains(t, out, "; "+b+"\n")
}

func TestDumpTokens(t *testing.T) {
	t.Parallel()

	p := writeScript(t, t.TempDir(), "Room.asc", "int x;\n")
	out, _, err := execute(t, "--dump-tokens", p)
	require.NoError(t, err)
	require.Contains(t, out, "'int'")
	require.Contains(t, out, "'x'")
	require.Contains(t, out, "(source_file")
}

func TestCheckExtends(t *testing.T) {
	t.Parallel()

	p := writeScript(t, t.TempDir(), "Game.ash", "struct A extends Missing {\n  int x;\n};\n")

	_, errOut, err := execute(t, p)
	require.NoError(t, err)
	require.Empty(t, errOut)

	_, errOut, err = execute(t, "--check-extends", p)
	require.NoError(t, err)
	require.Contains(t, errOut, "A0401")
	require.Contains(t, errOut, "warning")
}

func TestEncoding(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	// "café" saved as Windows-1252.
	p := filepath.Join(dir, "Room.asc")
	require.NoError(t, os.WriteFile(p, []byte("String s = \"caf\xe9\";\n"), 0o644))

	out, _, err := execute(t, "--format", "source", p)
	require.NoError(t, err)
	require.Contains(t, out, "\"café\"")

	_, _, err = execute(t, "--encoding", "ebcdic", p)
	require.ErrorContains(t, err, "unknown sourceEncoding")
}

func TestRecursive(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeScript(t, dir, "a.asc", "int a;\n")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "rooms"), 0o755))
	writeScript(t, filepath.Join(dir, "rooms"), "room1.asc", "int r;\n")

	out, _, err := execute(t, dir)
	require.NoError(t, err)
	require.NotContains(t, out, "room1.asc")

	out, _, err = execute(t, "--recursive", dir)
	require.NoError(t, err)
	require.Contains(t, out, "room1.asc")
}

func TestMissingInput(t *testing.T) {
	t.Parallel()

	_, _, err := execute(t, filepath.Join(t.TempDir(), "missing.asc"))
	require.ErrorContains(t, err, "A0001")

	_, _, err = execute(t)
	require.Error(t, err)
}
