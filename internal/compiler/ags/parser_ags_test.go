package ags

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/edmundito/agsscript/internal/config"
	"github.com/edmundito/agsscript/internal/cst"
	"github.com/edmundito/agsscript/internal/exc"
	"github.com/edmundito/agsscript/internal/fs"
	"github.com/edmundito/agsscript/internal/script"
)

type corpusCase struct {
	Name  string `yaml:"name"`
	Input string `yaml:"input"`
	Tree  string `yaml:"tree"`
}

func loadCorpus(t *testing.T) []corpusCase {
	t.Helper()
	b, err := os.ReadFile("testdata/corpus.yaml")
	require.Nil(t, err)
	var cases []corpusCase
	require.Nil(t, yaml.Unmarshal(b, &cases))
	require.NotEmpty(t, cases)
	return cases
}

func normalizeTree(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func parseString(t *testing.T, input string, cfg config.Config, rep exc.Reporter) (*cst.Node, error) {
	t.Helper()
	ctx := context.Background()
	lexerFile, err := NewLexerAGS(rep).Lex(ctx, fs.NewFileString("/test.asc", input, script.FileKindScript))
	require.Nil(t, err)
	return NewParserAGS(rep, cfg, nil).Parse(ctx, lexerFile)
}

func newTestParser(t *testing.T, input string) *parserAGSTokens {
	t.Helper()
	ctx := context.Background()
	rep := exc.NewReporter(nil)
	lexerFile, err := NewLexerAGS(rep).Lex(ctx, fs.NewFileString("/test.asc", input, script.FileKindScript))
	require.Nil(t, err)
	p, err := NewParserAGS(rep, config.Default(), nil).PrepareParse(ctx, lexerFile)
	require.Nil(t, err)
	return p
}

func TestParserCorpus(t *testing.T) {
	t.Parallel()

	for _, testCase := range loadCorpus(t) {
		testCase := testCase
		t.Run(testCase.Name, func(t *testing.T) {
			t.Parallel()

			rep := exc.NewReporter(nil)
			tree, err := parseString(t, testCase.Input, config.Default(), rep)
			require.Nil(t, err)
			require.Empty(t, rep.Reported())
			require.NotNil(t, tree)
			require.Equal(t, normalizeTree(testCase.Tree), tree.String())
		})
	}
}

func TestParserFormatRoundTrip(t *testing.T) {
	t.Parallel()

	for _, testCase := range loadCorpus(t) {
		testCase := testCase
		t.Run(testCase.Name, func(t *testing.T) {
			t.Parallel()

			tree, err := parseString(t, testCase.Input, config.Default(), exc.NewReporter(nil))
			require.Nil(t, err)
			require.NotNil(t, tree)
			formatted := cst.Format(tree, cst.FormatOptions{})
			again, err := parseString(t, formatted, config.Default(), exc.NewReporter(nil))
			require.Nil(t, err)
			require.NotNil(t, again, formatted)
			require.Equal(t, tree.String(), again.String())
			require.Equal(t, formatted, cst.Format(again, cst.FormatOptions{}))
		})
	}
}

func TestParserTokensCovered(t *testing.T) {
	t.Parallel()

	input := "managed struct Foo extends Bar { import int x[3]; };\nfunction f(int a) { if (a) { a++; } }\n"
	tree, err := parseString(t, input, config.Default(), exc.NewReporter(nil))
	require.Nil(t, err)
	toks := lexAll(t, input, exc.NewReporter(nil))
	leaves := cst.Tokens(tree)
	require.Len(t, leaves, len(toks))
	for x := range toks {
		require.Equal(t, toks[x].Value, leaves[x].Value)
		require.Equal(t, toks[x].Span, leaves[x].Span)
	}
	require.Equal(t, toks[0].Span.Start, tree.Span.Start)
	require.Equal(t, toks[len(toks)-1].Span.End, tree.Span.End)
}

func TestParserSyntaxErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		code     string
		expected []string
		loc      script.Location
		message  string
	}{
		{
			name:     "missing initializer",
			input:    "int x = ;",
			code:     exc.CodeUnexpectedToken,
			expected: []string{"expression"},
			loc:      script.Location{Line: 1, Column: 9, Offset: 8},
			message:  `unexpected ";" (expecting expression)`,
		},
		{
			name:     "missing terminator",
			input:    "function f() {\n  return 5 x\n}",
			code:     exc.CodeMissingTerminator,
			expected: []string{`";"`},
			loc:      script.Location{Line: 2, Column: 12, Offset: 26},
		},
		{
			name:    "misplaced extender",
			input:   "import function F(int a, this Character *);",
			code:    exc.CodeMisplacedExtender,
			loc:     script.Location{Line: 1, Column: 26, Offset: 25},
			message: "the extender parameter must be the first parameter",
		},
		{
			name:  "missing endif",
			input: "#ifdef A\nint x;\n",
			code:  exc.CodeUnbalancedDirective,
			loc:   script.Location{Line: 2, Column: 7, Offset: 15},
		},
		{
			name:  "stray endif",
			input: "int x;\n#endif\n",
			code:  exc.CodeUnbalancedDirective,
			loc:   script.Location{Line: 2, Column: 1, Offset: 7},
		},
		{
			name:  "missing endregion inside braces",
			input: "struct S {\n#region fields\n  int a;\n};",
			code:  exc.CodeUnbalancedDirective,
			loc:   script.Location{Line: 4, Column: 1, Offset: 35},
		},
		{
			name:  "unexpected end of file",
			input: "function f() {",
			code:  exc.CodeUnexpectedEOF,
			loc:   script.Location{Line: 1, Column: 15, Offset: 14},
		},
		{
			name:     "enumerators need commas",
			input:    "enum E { A B };",
			code:     exc.CodeUnexpectedToken,
			expected: []string{`","`, `"}"`},
			loc:      script.Location{Line: 1, Column: 12, Offset: 11},
		},
		{
			name:  "modulo assignment",
			input: "function f() {\n  a %= 3;\n}",
			code:  exc.CodeUnexpectedToken,
			loc:   script.Location{Line: 2, Column: 6, Offset: 20},
		},
		{
			name:  "define inside a struct",
			input: "struct S {\n#define X\n};",
			code:  exc.CodeUnexpectedToken,
			loc:   script.Location{Line: 2, Column: 1, Offset: 11},
		},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			rep := exc.NewReporter(nil)
			tree, err := parseString(t, testCase.input, config.Default(), rep)
			require.Nil(t, err)
			require.Nil(t, tree)
			reported := rep.Reported()
			require.Len(t, reported, 1)
			e := reported[0]
			require.Equal(t, testCase.code, e.Code())
			require.Equal(t, testCase.loc, e.Location().Location)
			require.Equal(t, "/test.asc", e.Location().URI)
			require.Equal(t, exc.KindParse, e.Kind())
			if testCase.expected != nil {
				require.Equal(t, testCase.expected, e.Expected())
			}
			if testCase.message != "" {
				require.Equal(t, testCase.message, e.Message())
			}
			require.True(t, rep.Failed())
		})
	}
}

func TestParserLexErrorHaltsParse(t *testing.T) {
	t.Parallel()

	rep := exc.NewReporter(nil)
	tree, err := parseString(t, "int x = \"open\n;", config.Default(), rep)
	require.Nil(t, err)
	require.Nil(t, tree)
	reported := rep.Reported()
	require.Len(t, reported, 1)
	require.Equal(t, exc.CodeUnterminatedLiteral, reported[0].Code())
}

const recoveryInput = `int a = ;
int b;
function f() {
  x = ;
  y();
}
`

func TestParserRecovery(t *testing.T) {
	t.Parallel()

	cfg := config.Config{RecoverOnError: true}
	rep := exc.NewReporter(cfg.NonFatalCodes())
	tree, err := parseString(t, recoveryInput, cfg, rep)
	require.Nil(t, err)
	require.NotNil(t, tree)
	require.False(t, rep.Failed())
	reported := rep.Reported()
	require.Len(t, reported, 2)
	require.Equal(t, int32(1), reported[0].Location().Line)
	require.Equal(t, int32(4), reported[1].Location().Line)
	require.Equal(t, normalizeTree(`(source_file
		(declaration (primitive_type) (identifier))
		(function_definition (function_type)
			(function_declarator (identifier) (parameter_list))
			(compound_statement
				(expression_statement (call_expression (identifier) (argument_list))))))`), tree.String())
}

func TestParserMaxErrors(t *testing.T) {
	t.Parallel()

	cfg := config.Config{RecoverOnError: true, MaxErrors: 1}
	require.Nil(t, cfg.Validate())
	rep := exc.NewReporter(cfg.NonFatalCodes())
	tree, err := parseString(t, recoveryInput, cfg, rep)
	require.Nil(t, err)
	require.NotNil(t, tree)
	require.Equal(t, "(source_file)", tree.String())
	reported := rep.Reported()
	require.Len(t, reported, 2)
	require.Equal(t, exc.CodeTooManyErrors, reported[1].Code())
	require.Equal(t, exc.SeverityWarning, reported[1].Severity())
}

func TestParserTrivia(t *testing.T) {
	t.Parallel()

	input := "// leading\nint x; /* inline */ int y;\n// trailing\n"
	tree, err := parseString(t, input, config.Config{TrackTrivia: true}, exc.NewReporter(nil))
	require.Nil(t, err)
	require.NotNil(t, tree)
	toks := cst.Tokens(tree)
	require.Len(t, toks[0].Trivia, 1)
	require.Contains(t, toks[0].Trivia[0].Value, "leading")
	require.Len(t, toks[3].Trivia, 1)
	require.Contains(t, toks[3].Trivia[0].Value, "inline")
	require.Len(t, tree.Trivia, 1)
	require.Contains(t, tree.Trivia[0].Value, "trailing")

	tree, err = parseString(t, input, config.Config{}, exc.NewReporter(nil))
	require.Nil(t, err)
	require.Empty(t, cst.Tokens(tree)[0].Trivia)
	require.Empty(t, tree.Trivia)
}

func TestParserGuards(t *testing.T) {
	t.Parallel()

	input := "#ifnver 3.6.1\nint a;\n#endif\n#ifndef DEBUG\n#endif\n#region Helpers and more\n#endregion\n"
	tree, err := parseString(t, input, config.Default(), exc.NewReporter(nil))
	require.Nil(t, err)
	require.Len(t, tree.Children, 3)

	ver, ok := cst.AsConditionalBlock(tree.Children[0])
	require.True(t, ok)
	require.True(t, ver.Guard.Negated)
	require.Equal(t, "3.6.1", ver.Guard.Literal)
	require.Equal(t, uint64(6), ver.Guard.Version.Minor())
	require.Len(t, ver.Items, 1)

	def, ok := cst.AsConditionalBlock(tree.Children[1])
	require.True(t, ok)
	require.True(t, def.Guard.Negated)
	require.Equal(t, "DEBUG", def.Guard.Name)
	require.Empty(t, def.Items)

	region, ok := cst.AsConditionalBlock(tree.Children[2])
	require.True(t, ok)
	require.False(t, region.Guard.Negated)
	require.Equal(t, "Helpers and more", region.Guard.Description)
}

func TestParserViews(t *testing.T) {
	t.Parallel()

	input := `managed struct Hero extends Character {
  import attribute int Health;
  import function Heal(int amount = 10);
};
enum Mood { eHappy, eSad = 3 };
int Hero::Heal(int amount) {
  return amount;
}
`
	tree, err := parseString(t, input, config.Default(), exc.NewReporter(nil))
	require.Nil(t, err)
	require.Len(t, tree.Children, 3)

	s, ok := cst.AsStructDeclaration(tree.Children[0])
	require.True(t, ok)
	require.Equal(t, "Hero", s.Name)
	require.True(t, s.Managed)
	require.Equal(t, "Character", s.Extends)
	require.Len(t, s.Fields, 2)
	require.Equal(t, []string{"import", "attribute"}, s.Fields[0].Access)
	require.Equal(t, []string{"Health"}, s.Fields[0].Names)
	require.True(t, s.Fields[1].Method)

	e, ok := cst.AsEnumDeclaration(tree.Children[1])
	require.True(t, ok)
	require.Equal(t, "Mood", e.Name)
	require.Len(t, e.Enumerators, 2)
	require.Nil(t, e.Enumerators[0].Value)
	require.Equal(t, "3", e.Enumerators[1].Value.Text())

	fd, ok := cst.AsFunctionDefinition(tree.Children[2])
	require.True(t, ok)
	require.Equal(t, "Heal", fd.Name)
	require.Equal(t, "Hero", fd.Scope)
	require.Equal(t, "int", fd.ReturnType)
	require.Len(t, fd.Parameters.Parameters, 1)
	require.Equal(t, "amount", fd.Parameters.Parameters[0].Name)
}

func TestParserDefaultParameterView(t *testing.T) {
	t.Parallel()

	tree, err := parseString(t, "import void Wait(int loops = 40, Object *);", config.Default(), exc.NewReporter(nil))
	require.Nil(t, err)
	decl := tree.Children[0].Child("function_declaration").Child("function_declarator")
	params, ok := cst.AsParameterList(decl.Child("parameter_list"))
	require.True(t, ok)
	require.Len(t, params.Parameters, 2)
	require.Equal(t, "loops", params.Parameters[0].Name)
	require.Equal(t, "40", params.Parameters[0].Default.Text())
	require.Equal(t, "", params.Parameters[1].Name)
	require.True(t, params.Parameters[1].Pointer)
}

func TestChooseAmbiguity(t *testing.T) {
	t.Parallel()

	p := newTestParser(t, "a;")
	leaf := func(kind string) func() *astNode {
		return func() *astNode {
			return newLeaf(kind, p.advance())
		}
	}
	n := p.choose(
		alternative{name: "left", rank: rankExpression, parse: leaf("identifier")},
		alternative{name: "right", rank: rankExpression, parse: leaf("type_identifier")},
	)
	require.Nil(t, n)
	require.NotNil(t, p.failure)
	require.Equal(t, exc.CodeAmbiguousConstruct, p.failure.code)
	require.Equal(t, "ambiguous construct: left or right", p.failure.message)
	require.Equal(t, 0, p.tokens.Mark())
}

func TestChoosePrefersRankThenLength(t *testing.T) {
	t.Parallel()

	p := newTestParser(t, "a b;")
	one := func(kind string) func() *astNode {
		return func() *astNode {
			return newLeaf(kind, p.advance())
		}
	}
	two := func() *astNode {
		first := p.advance()
		return newNode("pair", newLeaf("identifier", first), newLeaf("identifier", p.advance()))
	}
	n := p.choose(
		alternative{name: "short", rank: rankExpression, parse: one("identifier")},
		alternative{name: "long", rank: rankExpression, parse: two},
		alternative{name: "never", rank: rankFunctionType, parse: func() *astNode { return nil }},
	)
	require.NotNil(t, n)
	require.Equal(t, "pair", n.kind)
	require.Equal(t, 2, p.tokens.Mark())

	p = newTestParser(t, "a b;")
	n = p.choose(
		alternative{name: "long", rank: rankExpression, parse: two},
		alternative{name: "type", rank: rankTypeSpecifier, parse: one("type_identifier")},
	)
	require.NotNil(t, n)
	require.Equal(t, "type_identifier", n.kind)
	require.Equal(t, 1, p.tokens.Mark())
}

func TestChoosePrefersPointerDeclarator(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name         string
		pointerFirst bool
	}{
		{name: "pointer listed first", pointerFirst: true},
		{name: "product listed first", pointerFirst: false},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			p := newTestParser(t, "a * b;")
			declaration := alternative{name: "declaration", rank: rankExpression, parse: func() *astNode {
				typ := newLeaf("type_identifier", p.advance())
				star := newAnonymous(p.advance())
				return newNode("declaration", typ, newNode("pointer_declarator", star, newLeaf("identifier", p.advance())))
			}}
			product := alternative{name: "product", rank: rankExpression, parse: func() *astNode {
				left := newLeaf("identifier", p.advance())
				star := newAnonymous(p.advance())
				return newNode("math_expression", left, star, newLeaf("identifier", p.advance()))
			}}
			alternatives := []alternative{product, declaration}
			if testCase.pointerFirst {
				alternatives = []alternative{declaration, product}
			}
			n := p.choose(alternatives...)
			require.NotNil(t, n)
			require.Nil(t, p.failure)
			require.Equal(t, "declaration", n.kind)
			require.Equal(t, 1, n.count("pointer_declarator"))
			require.Equal(t, 3, p.tokens.Mark())
		})
	}
}

func TestValueScopes(t *testing.T) {
	t.Parallel()

	s := newValueScopes()
	s.declare("global")
	s.commit()
	mark := s.mark()
	s.push()
	s.declare("local")
	require.True(t, s.isValue("local"))
	require.True(t, s.isValue("global"))
	s.pop()
	require.False(t, s.isValue("local"))
	s.push()
	s.declare("other")
	s.rollback(mark)
	require.False(t, s.isValue("other"))
	require.True(t, s.isValue("global"))
	require.Len(t, s.frames, 1)
}

func BenchmarkParser(b *testing.B) {
	ctx := context.Background()
	input := fs.NewFileString("/bench.asc", strings.Repeat(benchScript, 8), script.FileKindScript)
	rep := exc.NewReporter(nil)
	lexerFile, _ := NewLexerAGS(rep).Lex(ctx, input)
	parser := NewParserAGS(rep, config.Default(), nil)
	b.ResetTimer()
	for x := 0; x < b.N; x = x + 1 {
		if _, err := parser.Parse(ctx, lexerFile); err != nil {
			b.Fatal(err)
		}
	}
}
