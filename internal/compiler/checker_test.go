package compiler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edmundito/agsscript/internal/config"
	"github.com/edmundito/agsscript/internal/exc"
	"github.com/edmundito/agsscript/internal/fs"
	"github.com/edmundito/agsscript/internal/script"
)

type CheckerTestFile struct {
	kind     script.FileKind
	uri      string
	contents string
}

func TestChecker(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name        string
		files       []CheckerTestFile
		expectCodes []string
	}{
		{
			name: "nothing",
			files: []CheckerTestFile{
				{
					kind:     script.FileKindScript,
					uri:      "/test.asc",
					contents: "int x;\n",
				},
			},
		},
		{
			name: "no inheritance",
			files: []CheckerTestFile{
				{
					kind:     script.FileKindHeader,
					uri:      "/test.ash",
					contents: "struct A {\n  int x;\n};\n",
				},
			},
		},
		{
			name: "base declared in another file",
			files: []CheckerTestFile{
				{
					kind:     script.FileKindHeader,
					uri:      "/base.ash",
					contents: "struct Base {\n  int x;\n};\n",
				},
				{
					kind:     script.FileKindHeader,
					uri:      "/derived.ash",
					contents: "struct Derived extends Base {\n  int y;\n};\n",
				},
			},
		},
		{
			name: "forward declared base",
			files: []CheckerTestFile{
				{
					kind:     script.FileKindHeader,
					uri:      "/test.ash",
					contents: "struct Base;\nstruct Derived extends Base {\n  int y;\n};\n",
				},
			},
		},
		{
			name: "undefined base",
			files: []CheckerTestFile{
				{
					kind:     script.FileKindHeader,
					uri:      "/test.ash",
					contents: "struct Derived extends Missing {\n  int y;\n};\n",
				},
			},
			expectCodes: []string{exc.CodeExtendsUndefined},
		},
		{
			name: "conditional declarations are checked",
			files: []CheckerTestFile{
				{
					kind:     script.FileKindHeader,
					uri:      "/test.ash",
					contents: "#ifdef DEBUG\nstruct Derived extends Missing {\n  int y;\n};\n#endif\n",
				},
			},
			expectCodes: []string{exc.CodeExtendsUndefined},
		},
		{
			name: "self inheritance",
			files: []CheckerTestFile{
				{
					kind:     script.FileKindHeader,
					uri:      "/test.ash",
					contents: "struct A extends A {\n  int x;\n};\n",
				},
			},
			expectCodes: []string{exc.CodeExtendsCycle},
		},
		{
			name: "cycle across files",
			files: []CheckerTestFile{
				{
					kind:     script.FileKindHeader,
					uri:      "/a.ash",
					contents: "struct A extends C {\n  int x;\n};\n",
				},
				{
					kind:     script.FileKindHeader,
					uri:      "/b.ash",
					contents: "struct B extends A {\n  int x;\n};\nstruct C extends B {\n  int x;\n};\n",
				},
			},
			expectCodes: []string{exc.CodeExtendsCycle},
		},
		{
			name: "chain into a cycle",
			files: []CheckerTestFile{
				{
					kind:     script.FileKindHeader,
					uri:      "/test.ash",
					contents: "struct A extends B {\n  int x;\n};\nstruct B extends C {\n  int x;\n};\nstruct C extends B {\n  int x;\n};\n",
				},
			},
			expectCodes: []string{exc.CodeExtendsCycle},
		},
	}

	ctx := context.Background()
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			subcompilers := DefaultSubCompilers(config.Default(), nil)
			results := make([]*Result, 0, len(testCase.files))
			for _, f := range testCase.files {
				r := exc.NewReporter(nil)
				file := fs.NewFileString(f.uri, f.contents, f.kind)
				result, err := subcompilers[f.kind].CompileFile(ctx, r, file, false)
				require.NoError(t, err, f.uri)
				require.Empty(t, r.Reported(), f.uri)
				require.NotNil(t, result.Tree, f.uri)
				results = append(results, result)
			}

			r := exc.NewReporter(nil)
			check(results, r)
			require.False(t, r.Failed())
			codes := make([]string, 0, len(r.Reported()))
			for _, e := range r.Reported() {
				require.Equal(t, exc.SeverityWarning, e.Severity())
				codes = append(codes, e.Code())
			}
			if len(testCase.expectCodes) == 0 {
				require.Empty(t, codes)
			} else {
				require.Equal(t, testCase.expectCodes, codes)
			}
		})
	}
}

func TestCheckerLocations(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	file := fs.NewFileString("/test.ash", "struct Base { int x; };\nstruct A extends B {\n  int x;\n};\nstruct B extends A {\n  int y;\n};\nstruct D extends Gone { int z; };\n", script.FileKindHeader)
	result, err := (&SubCompilerAGS{Config: config.Default()}).CompileFile(ctx, exc.NewReporter(nil), file, false)
	require.NoError(t, err)
	require.Len(t, result.Deferred, 4)
	require.Equal(t, "Base", result.Deferred[0].Struct)
	require.Empty(t, result.Deferred[0].Base)

	r := exc.NewReporter(nil)
	check([]*Result{result}, r)
	reported := r.Reported()
	require.Len(t, reported, 2)

	require.Equal(t, exc.CodeExtendsUndefined, reported[0].Code())
	require.Equal(t, int32(8), reported[0].Location().Line)
	require.Contains(t, reported[0].Message(), `"Gone"`)

	require.Equal(t, exc.CodeExtendsCycle, reported[1].Code())
	require.Equal(t, "/test.ash", reported[1].Location().URI)
	require.Equal(t, int32(2), reported[1].Location().Line)
	require.Equal(t, int32(10), reported[1].Location().Column)
	require.Contains(t, reported[1].Message(), "A -> B -> A")
}
