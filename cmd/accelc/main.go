package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"

	"github.com/wavesplatform/goaccel/pkg/codegen"
	"github.com/wavesplatform/goaccel/pkg/compiler"
	"github.com/wavesplatform/goaccel/pkg/logging"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], afero.NewOsFs(), os.Stderr)
	cancel()
	if err != nil {
		os.Exit(1)
	}
}

type config struct {
	compiler compiler.Config
	pkg      string
	logging  logging.Parameters
	paths    []string
}

func (c *config) parse(args []string) error {
	fs := pflag.NewFlagSet("accelc", pflag.ContinueOnError)
	c.compiler = compiler.DefaultConfig()
	fs.StringVarP(&c.compiler.OutputDir, "out", "o", "", "Directory for generated files. If empty, files are written next to the schemas.")
	fs.StringVar(&c.compiler.Suffix, "suffix", compiler.DefaultSuffix, "Suffix replacing the schema extension in generated file names.")
	fs.IntVarP(&c.compiler.Parallelism, "parallel", "j", runtime.GOMAXPROCS(0), "Number of schemas compiled concurrently.")
	fs.BoolVar(&c.compiler.Check, "check", false, "Only check the schemas, do not generate code.")
	fs.StringVar(&c.pkg, "package", "", "Go package name of generated files. If empty, it is derived from the schema.")
	c.logging.Initialize(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := c.logging.Parse(); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("no schema files or directories given")
	}
	c.paths = fs.Args()
	return nil
}

// run compiles the schemas named by args. Diagnostics and errors are printed to stderr.
func run(ctx context.Context, args []string, fs afero.Fs, stderr io.Writer) error {
	var c config
	if err := c.parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		fmt.Fprintf(stderr, "accelc: %v\n", err)
		return err
	}
	log := logging.Named(slog.New(logging.NewHandler(c.logging.Type, c.logging.Level, stderr)), "accelc")

	var files []string
	for _, p := range c.paths {
		found, err := compiler.Discover(fs, p)
		if err != nil {
			log.Error("Failed to find schemas", logging.Error(err))
			return err
		}
		files = append(files, found...)
	}
	gen := &codegen.GoGenerator{Package: c.pkg}
	comp := compiler.New(fs, gen, log, c.compiler)
	results, err := comp.Compile(ctx, files...)
	for _, res := range results {
		for _, d := range res.Diagnostics {
			fmt.Fprintln(stderr, d.Error())
		}
		if res.Err != nil && !errors.Is(res.Err, compiler.ErrCompilation) {
			fmt.Fprintf(stderr, "%s: %v\n", res.Source, res.Err)
		}
	}
	st := comp.Stats()
	log.Info("Compilation finished", slog.Int64("files", st.Files), slog.Int64("generated", st.Generated),
		slog.Int64("failed", st.Failed), slog.Int64("warnings", st.Warnings))
	return err
}
