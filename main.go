package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/edmundito/agsscript/internal/compiler"
	"github.com/edmundito/agsscript/internal/config"
	"github.com/edmundito/agsscript/internal/cst"
	"github.com/edmundito/agsscript/internal/exc"
	"github.com/edmundito/agsscript/internal/fs"
	"github.com/edmundito/agsscript/internal/watch"
)

var version = "0.1.0"

var formats = map[string]string{
	"sexp":   ".sexp",
	"source": ".asc",
	"json":   ".json",
	"yaml":   ".yaml",
	"proto":  ".pb",
}

// errReported is returned once the diagnostics of a failed run have been
// written, so that the error is not printed a second time.
var errReported = errors.New("errors reported")

type opts struct {
	Format         string
	Output         string
	ConfigPath     string
	DumpTokens     bool
	Recover        bool
	Trivia         bool
	MaxErrors      int
	CheckExtends   bool
	Watch          bool
	MaxConcurrency int
	Verbose        bool
	Encoding       string
	Recursive      bool
}

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	rootCmd := newRootCmd(os.Stdout, os.Stderr)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, err.Error())
		}
		return 1
	}
	return 0
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	op := &opts{}
	rootCmd := &cobra.Command{
		Use:   "agsparse [flags] FILE|DIR...",
		Short: "agsparse parses AGS scripts and headers into syntax trees",
		Long: `agsparse parses Adventure Game Studio scripts (.asc) and headers
(.ash) into concrete syntax trees. Preprocessor directives are kept in the
tree as written and never evaluated.`,
		Version:       version,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, ok := formats[op.Format]; !ok {
				return fmt.Errorf("unknown format %q", op.Format)
			}
			cfg, err := op.config(cmd.Flags())
			if err != nil {
				return err
			}
			level := slog.LevelWarn
			if op.Verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: level}))
			files, err := compiler.NewDefaultFS(os.LookupEnv, fs.WithOptionRecursive(op.Recursive))
			if err != nil {
				return err
			}
			c, err := compiler.New(
				compiler.OptionWithFS(files),
				compiler.OptionWithLookupEnv(os.LookupEnv),
				compiler.OptionWithConfig(cfg),
				compiler.OptionWithLogger(logger),
				compiler.OptionWithMaxConcurrency(op.MaxConcurrency),
			)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			err = compileAndWrite(ctx, c, op, args, out, errOut)
			if !op.Watch {
				return err
			}
			if err != nil && !errors.Is(err, errReported) {
				return err
			}
			w, err := watch.New(args, watch.OptionWithLogger(logger))
			if err != nil {
				return err
			}
			defer w.Close()
			logger.InfoContext(ctx, "watching for changes", slog.Int("targets", len(args)))
			err = w.Run(ctx, func(ctx context.Context, changed []string) error {
				logger.DebugContext(ctx, "recompiling", slog.String("changed", strings.Join(changed, ",")))
				err := compileAndWrite(ctx, c, op, args, out, errOut)
				if err != nil && !errors.Is(err, errReported) {
					fmt.Fprintln(errOut, err.Error())
				}
				return nil
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	flags := rootCmd.Flags()
	flags.StringVarP(&op.Format, "format", "f", "sexp", "Output format: sexp, source, json, yaml or proto.")
	flags.StringVarP(&op.Output, "output", "o", "-", "Output directory or - for STDOUT.")
	flags.StringVar(&op.ConfigPath, "config", "", "YAML file with parse options. Flags override its values.")
	flags.BoolVar(&op.DumpTokens, "dump-tokens", false, "Output the token stream consumed by the parser.")
	flags.BoolVar(&op.Recover, "recover", false, "Keep parsing after errors and output partial trees.")
	flags.BoolVar(&op.Trivia, "trivia", true, "Attach comments to the tokens that follow them.")
	flags.IntVar(&op.MaxErrors, "max-errors", 0, "Stop a recovering parse after this many errors. 0 means no limit.")
	flags.BoolVar(&op.CheckExtends, "check-extends", false, "Warn about undefined and cyclic struct inheritance across all inputs.")
	flags.BoolVarP(&op.Watch, "watch", "w", false, "Parse again whenever an input changes.")
	flags.IntVar(&op.MaxConcurrency, "max-concurrency", 0, "Number of files parsed at once. 0 picks the number of CPUs.")
	flags.BoolVarP(&op.Verbose, "verbose", "v", false, "Log progress to STDERR.")
	flags.StringVar(&op.Encoding, "encoding", fs.EncodingAuto, "Source encoding: auto, utf-8, windows-1252 or iso-8859-1.")
	flags.BoolVarP(&op.Recursive, "recursive", "r", false, "Descend into subdirectories of directory inputs.")

	return rootCmd
}

// config loads the configuration file, if any, and applies the flags that
// were set explicitly on top of it.
func (op *opts) config(flags *pflag.FlagSet) (config.Config, error) {
	cfg := config.Default()
	if op.ConfigPath != "" {
		loaded, err := config.LoadFile(op.ConfigPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}
	if flags.Changed("recover") {
		cfg.RecoverOnError = op.Recover
	}
	if flags.Changed("trivia") {
		cfg.TrackTrivia = op.Trivia
	}
	if flags.Changed("max-errors") {
		cfg.MaxErrors = op.MaxErrors
	}
	if flags.Changed("encoding") {
		cfg.SourceEncoding = op.Encoding
	}
	return cfg, cfg.Validate()
}

func compileAndWrite(ctx context.Context, c compiler.Compiler, op *opts, targets []string, out, errOut io.Writer) error {
	resp, err := c.Compile(ctx, &compiler.Request{
		Files:        targets,
		DumpTokens:   op.DumpTokens,
		CheckExtends: op.CheckExtends,
	})
	var me compiler.MultiException
	if err != nil && !errors.As(err, &me) {
		return err
	}

	failed := false
	for _, result := range resp.Results {
		for _, e := range result.Diagnostics {
			writeException(errOut, e)
		}
		failed = failed || result.Failed
		if op.DumpTokens {
			for _, token := range result.Tokens {
				fmt.Fprintf(out, "%-24s'%s'\n", token.Type, token.Value)
			}
		}
		if result.Tree == nil {
			continue
		}
		if op.Output == "-" && op.Format == "sexp" && len(resp.Results) > 1 {
			fmt.Fprintf(out, "; %s\n", result.URI)
		}
		if err := writeTree(out, op, result); err != nil {
			return err
		}
	}
	for _, e := range resp.Diagnostics {
		writeException(errOut, e)
	}
	if failed {
		return errReported
	}
	return nil
}

func writeException(w io.Writer, e exc.Exception) {
	fmt.Fprintf(w, "%s %s\n", e.Severity(), e.Error())
}

func encodeTree(op *opts, tree *cst.Node) ([]byte, error) {
	switch op.Format {
	case "json":
		b, err := cst.MarshalJSON(tree)
		return append(b, '\n'), err
	case "yaml":
		return cst.MarshalYAML(tree)
	case "proto":
		return cst.MarshalProto(tree)
	case "source":
		return []byte(cst.Format(tree, cst.FormatOptions{Trivia: true})), nil
	}
	return []byte(tree.String() + "\n"), nil
}

func writeTree(out io.Writer, op *opts, result *compiler.Result) error {
	b, err := encodeTree(op, result.Tree)
	if err != nil {
		return exc.WrapUnknown(exc.Location{URI: result.URI}, err)
	}
	if op.Output == "-" {
		_, err = out.Write(b)
		return err
	}
	name := filepath.Join(op.Output, filepath.Base(result.URI)+formats[op.Format])
	if err := os.MkdirAll(op.Output, 0o770); err != nil {
		return err
	}
	return os.WriteFile(name, b, 0o644)
}
