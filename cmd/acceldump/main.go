package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/wavesplatform/goaccel/pkg/inspect"
	"github.com/wavesplatform/goaccel/pkg/logging"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "acceldump: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.ReadCloser, stdout io.WriteCloser) error {
	var c config
	if err := c.parse(args, stdin, stdout); err != nil {
		return err
	}
	log := logging.Named(slog.New(logging.DefaultHandler(c.logging)), "acceldump")
	defer func() {
		if c.in != stdin {
			if err := c.in.Close(); err != nil {
				log.Warn("Failed to close input", logging.Error(err))
			}
		}
		if c.out != stdout {
			if err := c.out.Close(); err != nil {
				log.Warn("Failed to close output", logging.Error(err))
			}
		}
	}()

	raw, err := io.ReadAll(c.in)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	data, err := c.decodeInput(raw)
	if err != nil {
		return fmt.Errorf("failed to decode %s input: %w", c.input, err)
	}
	log.Debug("Decoding message", slog.Int("size", len(data)), slog.Bool("nested", c.opts.Nested))
	doc, err := inspect.Decode(data, c.opts)
	if err != nil {
		return err
	}
	return render(c.out, c.format, doc)
}

func render(w io.Writer, format string, doc *inspect.Document) error {
	var (
		out []byte
		err error
	)
	switch format {
	case formatJSON:
		out, err = inspect.JSON(doc)
		out = append(out, '\n')
	case formatCBOR:
		out, err = inspect.CBOR(doc)
	default:
		return inspect.Text(w, doc)
	}
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}
