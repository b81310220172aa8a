package compiler

import (
	"context"
	"log/slog"

	"github.com/edmundito/agsscript/internal/compiler/ags"
	"github.com/edmundito/agsscript/internal/config"
	"github.com/edmundito/agsscript/internal/exc"
	"github.com/edmundito/agsscript/internal/fs"
	"github.com/edmundito/agsscript/internal/optional"
	"github.com/edmundito/agsscript/internal/script"
)

type SubCompilerAGS struct {
	Config config.Config
	Logger *slog.Logger
}

func (self *SubCompilerAGS) CompileFile(ctx context.Context, r exc.Reporter, file script.File, dumpTokens bool) (*Result, error) {
	lexer := ags.NewLexerAGS(r)
	parser := ags.NewParserAGS(r, self.Config, self.Logger)
	if self.Config.SourceEncoding != "" {
		decoded, err := fs.NewFileDecoded(file, self.Config.SourceEncoding)
		if err != nil {
			return nil, err
		}
		file = decoded
	}
	lf, err := lexer.Lex(ctx, file)
	if err != nil {
		return nil, err
	}
	var recorder *recordingLexerFile
	if dumpTokens {
		recorder = &recordingLexerFile{LexerFile: lf}
		lf = recorder
	}
	tree, err := parser.Parse(ctx, lf)
	if err != nil {
		return nil, err
	}
	uri := file.Path(ctx)
	result := &Result{
		URI:      uri,
		Kind:     file.Kind(ctx),
		Tree:     tree,
		Deferred: collectDeferred(uri, tree),
	}
	if recorder != nil {
		result.Tokens = recorder.tokens
	}
	return result, nil
}

// recordingLexerFile keeps a copy of every token the parser pulls from the
// lexer, comments included.
type recordingLexerFile struct {
	script.LexerFile
	tokens []*script.Token
}

func (self *recordingLexerFile) Tokens(ctx context.Context) (script.Iterator[*script.Token], error) {
	stream, err := self.LexerFile.Tokens(ctx)
	if err != nil {
		return nil, err
	}
	return &recordingTokens{stream: stream, file: self}, nil
}

type recordingTokens struct {
	stream script.Iterator[*script.Token]
	file   *recordingLexerFile
}

func (self *recordingTokens) Next(ctx context.Context) optional.Optional[*script.Token] {
	tok := self.stream.Next(ctx)
	if tok.IsPresent() {
		self.file.tokens = append(self.file.tokens, tok.Value())
	}
	return tok
}

func (self *recordingTokens) Close(ctx context.Context) error {
	return self.stream.Close(ctx)
}

// Halted forwards the lexer's halt state so the parser can still stop on
// lexical errors.
func (self *recordingTokens) Halted() bool {
	if h, ok := self.stream.(interface{ Halted() bool }); ok {
		return h.Halted()
	}
	return false
}
