package compiler

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/wavesplatform/goaccel/pkg/codegen"
	"github.com/wavesplatform/goaccel/pkg/logging"
	"github.com/wavesplatform/goaccel/pkg/schema"
)

const (
	SourceExt     = ".accel"
	DefaultSuffix = "_accel.go"
)

// ErrCompilation is returned for schemas with error diagnostics.
var ErrCompilation = errors.New("compilation failed")

type Config struct {
	// OutputDir receives generated files. Empty means next to the source.
	OutputDir string
	Suffix    string
	// Parallelism limits concurrently compiled files, values below 1 mean no limit.
	Parallelism int
	// Check only parses the schemas.
	Check bool
}

func DefaultConfig() Config {
	return Config{Suffix: DefaultSuffix, Parallelism: 4}
}

type Result struct {
	Source      string
	Output      string
	Diagnostics schema.Diagnostics
	Err         error
}

type Stats struct {
	Files     int64
	Generated int64
	Failed    int64
	Warnings  int64
}

type Compiler struct {
	fs  afero.Fs
	gen codegen.Generator
	log *slog.Logger
	cfg Config

	files     atomic.Int64
	generated atomic.Int64
	failed    atomic.Int64
	warnings  atomic.Int64
}

func New(fs afero.Fs, gen codegen.Generator, log *slog.Logger, cfg Config) *Compiler {
	if cfg.Suffix == "" {
		cfg.Suffix = DefaultSuffix
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Compiler{fs: fs, gen: gen, log: logging.Named(log, "compiler"), cfg: cfg}
}

// CompileFile parses the schema at path and writes the generated code.
func (c *Compiler) CompileFile(ctx context.Context, path string) (Result, error) {
	res := Result{Source: path}
	res.Err = c.compile(ctx, &res)
	if res.Err != nil {
		c.failed.Inc()
	}
	return res, res.Err
}

func (c *Compiler) compile(ctx context.Context, res *Result) error {
	c.files.Inc()
	if err := ctx.Err(); err != nil {
		return err
	}
	src, err := afero.ReadFile(c.fs, res.Source)
	if err != nil {
		return errors.Wrapf(err, "failed to read schema %s", res.Source)
	}
	f, diags := schema.ParseFile(res.Source, src)
	res.Diagnostics = diags
	for _, d := range diags {
		if d.Severity == schema.SeverityWarning {
			c.warnings.Inc()
			c.log.Warn("Schema warning", slog.String("code", d.Code), slog.String("position", d.Pos.String()),
				slog.String("file", d.File), slog.String("message", d.Message))
		}
	}
	if diags.HasErrors() {
		return errors.Wrapf(ErrCompilation, "%s", diags.Errors().Error())
	}
	if c.cfg.Check {
		c.log.Debug("Schema checked", slog.String("file", res.Source))
		return nil
	}
	code, err := c.gen.Generate(f)
	if err != nil {
		return errors.Wrapf(err, "failed to generate code for %s", res.Source)
	}
	res.Output = c.outputPath(res.Source)
	if err := c.fs.MkdirAll(filepath.Dir(res.Output), 0o755); err != nil {
		return errors.Wrap(err, "failed to create output directory")
	}
	if err := afero.WriteFile(c.fs, res.Output, code, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", res.Output)
	}
	c.generated.Inc()
	c.log.Info("Generated", slog.String("source", res.Source), slog.String("output", res.Output))
	return nil
}

func (c *Compiler) outputPath(source string) string {
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source)) + c.cfg.Suffix
	dir := c.cfg.OutputDir
	if dir == "" {
		dir = filepath.Dir(source)
	}
	return filepath.Join(dir, base)
}

// Compile compiles all paths concurrently. Every file is attempted, the first error is returned.
func (c *Compiler) Compile(ctx context.Context, paths ...string) ([]Result, error) {
	results := make([]Result, len(paths))
	var eg errgroup.Group
	if c.cfg.Parallelism > 0 {
		eg.SetLimit(c.cfg.Parallelism)
	}
	for i, path := range paths {
		eg.Go(func() error {
			var err error
			results[i], err = c.CompileFile(ctx, path)
			return err
		})
	}
	return results, eg.Wait()
}

func (c *Compiler) Stats() Stats {
	return Stats{
		Files:     c.files.Load(),
		Generated: c.generated.Load(),
		Failed:    c.failed.Load(),
		Warnings:  c.warnings.Load(),
	}
}

// Discover returns the schema files under root in lexical order. A root naming a file is returned as is.
func Discover(fs afero.Fs, root string) ([]string, error) {
	info, err := fs.Stat(root)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to stat %s", root)
	}
	if !info.IsDir() {
		return []string{root}, nil
	}
	var paths []string
	err = afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == SourceExt {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to walk %s", root)
	}
	return paths, nil
}
