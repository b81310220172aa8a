package compiler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/edmundito/agsscript/internal/config"
	"github.com/edmundito/agsscript/internal/cst"
	"github.com/edmundito/agsscript/internal/exc"
	"github.com/edmundito/agsscript/internal/script"
)

type Option func(c *compiler) error

func OptionWithFS(fs script.FileSystem) Option {
	return func(c *compiler) error {
		c.FS = fs
		return nil
	}
}

func OptionWithLookupEnv(lookupEnv func(string) (string, bool)) Option {
	return func(c *compiler) error {
		c.LookupENV = lookupEnv
		return nil
	}
}

// OptionWithConfig sets the parse options used for every file. The
// configuration is validated when the option is applied.
func OptionWithConfig(cfg config.Config) Option {
	return func(c *compiler) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		c.Config = cfg
		c.configured = true
		return nil
	}
}

func OptionWithLogger(logger *slog.Logger) Option {
	return func(c *compiler) error {
		c.Logger = logger
		return nil
	}
}

// OptionWithMaxConcurrency limits how many files are parsed at once.
func OptionWithMaxConcurrency(n int) Option {
	return func(c *compiler) error {
		if n < 0 {
			return exc.New(exc.Location{}, exc.CodeInvalidConfig, fmt.Sprintf("max concurrency must not be negative, got %d", n))
		}
		c.MaxConcurrency = n
		return nil
	}
}

func OptionWithSubCompilers(subCompilers map[script.FileKind]SubCompiler) Option {
	return func(c *compiler) error {
		c.SubCompilers = subCompilers
		return nil
	}
}

// Compiler parses a set of scripts and headers into syntax trees.
type Compiler interface {
	Compile(ctx context.Context, req *Request) (*Response, error)
}

type Request struct {
	// Files are paths or URIs. A directory selects every script and header
	// directly inside it.
	Files []string
	// DumpTokens records the tokens the parser consumed on each Result.
	DumpTokens bool
	// CheckExtends runs the cross-file struct inheritance checks once every
	// file is parsed.
	CheckExtends bool
}

type Response struct {
	// Results are in the order the files were requested.
	Results []*Result
	// Diagnostics holds the findings of the cross-file checks.
	Diagnostics []exc.Exception
}

// Result is the outcome of parsing one file.
type Result struct {
	URI  string
	Kind script.FileKind
	// Tree is nil when a fatal error was reported for the file.
	Tree        *cst.Node
	Tokens      []*script.Token
	Diagnostics []exc.Exception
	// Deferred lists the checks that need the trees of other files.
	Deferred []DeferredCheck
	// Failed is set when any diagnostic of the file was fatal.
	Failed bool
}

func New(opts ...Option) (Compiler, error) {
	c := &compiler{}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.LookupENV == nil {
		c.LookupENV = os.LookupEnv
	}
	if c.FS == nil {
		dfs, err := NewDefaultFS(c.LookupENV)
		if err != nil {
			return nil, err
		}
		c.FS = dfs
	}
	if !c.configured {
		c.Config = config.Default()
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if c.MaxConcurrency == 0 {
		max := runtime.GOMAXPROCS(-1)
		cpus := runtime.NumCPU()
		if max > cpus {
			max = cpus
		}
		c.MaxConcurrency = max
	}
	if c.SubCompilers == nil {
		c.SubCompilers = DefaultSubCompilers(c.Config, c.Logger)
	}
	return c, nil
}

type compiler struct {
	LookupENV      func(string) (string, bool)
	FS             script.FileSystem
	Config         config.Config
	Logger         *slog.Logger
	MaxConcurrency int
	SubCompilers   map[script.FileKind]SubCompiler

	configured bool
}

func (self *compiler) Compile(ctx context.Context, req *Request) (*Response, error) {
	files, err := self.open(ctx, req.Files)
	if err != nil {
		return nil, err
	}

	results := make([]*Result, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(self.MaxConcurrency)
	for offset, file := range files {
		offset, file := offset, file
		g.Go(func() error {
			result, err := self.compileFile(gctx, file, req.DumpTokens)
			if err != nil {
				return err
			}
			results[offset] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resp := &Response{Results: results}
	if req.CheckExtends {
		r := exc.NewReporter(nil)
		check(results, r)
		resp.Diagnostics = r.Reported()
	}

	var caught []exc.Exception
	failed := false
	for _, result := range results {
		caught = append(caught, result.Diagnostics...)
		failed = failed || result.Failed
	}
	if failed {
		return resp, MultiException(caught)
	}
	return resp, nil
}

// open resolves the requested targets into files. A file reached through
// more than one target is parsed once.
func (self *compiler) open(ctx context.Context, targets []string) ([]script.File, error) {
	files := make([]script.File, 0, len(targets))
	loaded := make(map[string]bool, len(targets))
	for _, target := range targets {
		in, err := self.FS.Open(ctx, self.targetURI(ctx, target))
		if err != nil {
			return nil, err
		}
		for _, inf := range in {
			if inf.Kind(ctx) == script.FileKindNone {
				self.Logger.DebugContext(ctx, "skipping file of unknown kind", slog.String("uri", inf.Path(ctx)))
				continue
			}
			if loaded[inf.Path(ctx)] {
				continue
			}
			loaded[inf.Path(ctx)] = true
			files = append(files, inf)
		}
	}
	return files, nil
}

func (self *compiler) compileFile(ctx context.Context, file script.File, dumpTokens bool) (*Result, error) {
	uri := file.Path(ctx)
	r := exc.NewReporter(self.Config.NonFatalCodes())
	sc := self.SubCompilers[file.Kind(ctx)]
	if sc == nil {
		r.Report(exc.New(exc.Location{URI: uri}, exc.CodeUnsupportedFileFormat, "Unsupported file format"))
		return &Result{URI: uri, Kind: file.Kind(ctx), Diagnostics: r.Reported(), Failed: true}, nil
	}
	self.Logger.DebugContext(ctx, "parsing", slog.String("uri", uri))
	result, err := sc.CompileFile(ctx, r, file, dumpTokens)
	if err != nil {
		return nil, err
	}
	result.Diagnostics = r.Reported()
	result.Failed = r.Failed()
	self.Logger.DebugContext(ctx, "parsed",
		slog.String("uri", uri),
		slog.Int("diagnostics", len(result.Diagnostics)),
		slog.Bool("failed", result.Failed),
	)
	return result, nil
}

func (self *compiler) targetURI(ctx context.Context, target string) string {
	// Targets may be any valid URI or file path. File paths and file URIs
	// are made absolute to work with the local FileSystem. Other URIs are
	// left as-is for some other FileSystem to handle.
	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "" && u.Scheme != "file") {
		return target
	}
	if u.Scheme == "file" {
		target = u.Path
	}
	if !filepath.IsAbs(target) {
		return filepath.Join("/", target)
	}
	return target
}

type MultiException []exc.Exception

func (self MultiException) Error() string {
	if len(self) == 0 {
		return "no exceptions"
	}
	var b strings.Builder
	for _, err := range self[:len(self)-1] {
		b.WriteString(err.Error())
		b.WriteString("; ")
	}
	b.WriteString(self[len(self)-1].Error())
	return b.String()
}
