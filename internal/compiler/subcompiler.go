package compiler

import (
	"context"
	"log/slog"

	"github.com/edmundito/agsscript/internal/config"
	"github.com/edmundito/agsscript/internal/exc"
	"github.com/edmundito/agsscript/internal/script"
)

// SubCompiler parses one kind of file. Diagnostics go to r; the returned
// error is reserved for failures that stop the whole compilation, such as
// an unreadable file or a canceled context.
type SubCompiler interface {
	CompileFile(ctx context.Context, r exc.Reporter, file script.File, dumpTokens bool) (*Result, error)
}

func DefaultSubCompilers(cfg config.Config, logger *slog.Logger) map[script.FileKind]SubCompiler {
	scags := &SubCompilerAGS{
		Config: cfg,
		Logger: logger,
	}
	// Headers share the script grammar.
	return map[script.FileKind]SubCompiler{
		script.FileKindScript: scags,
		script.FileKindHeader: scags,
	}
}
