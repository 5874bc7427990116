package main

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/mr-tron/base58"
	"github.com/spf13/pflag"

	"github.com/wavesplatform/goaccel/pkg/inspect"
	"github.com/wavesplatform/goaccel/pkg/logging"
)

const (
	inputRaw    = "raw"
	inputHex    = "hex"
	inputBase64 = "base64"
	inputBase58 = "base58"

	formatText = "text"
	formatJSON = "json"
	formatCBOR = "cbor"
)

type config struct {
	input   string
	format  string
	opts    inspect.Options
	in      io.ReadCloser
	out     io.WriteCloser
	logging logging.Parameters
}

func (c *config) parse(args []string, stdin io.ReadCloser, stdout io.WriteCloser) error {
	fs := pflag.NewFlagSet("acceldump", pflag.ContinueOnError)
	var out string
	fs.StringVar(&c.input, "input", inputRaw, "Input encoding. Supported values: raw, hex, base64, base58.")
	fs.StringVar(&c.format, "format", formatText, "Output format. Supported values: text, json, cbor.")
	fs.BoolVar(&c.opts.Nested, "nested", false, "Try to decode payloads as embedded messages.")
	fs.IntVar(&c.opts.MaxDepth, "max-depth", inspect.DefaultMaxDepth, "Maximum depth of embedded messages.")
	fs.StringVarP(&out, "out", "o", "", "Output file path. If empty, writes to STDOUT.")
	c.logging.Initialize(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := c.logging.Parse(); err != nil {
		return err
	}
	switch c.input {
	case inputRaw, inputHex, inputBase64, inputBase58:
	default:
		return fmt.Errorf("invalid input encoding %q", c.input)
	}
	switch c.format {
	case formatText, formatJSON, formatCBOR:
	default:
		return fmt.Errorf("invalid output format %q", c.format)
	}
	if fs.NArg() > 1 {
		return fmt.Errorf("expected at most one input file, got %d", fs.NArg())
	}
	if err := c.setInput(fs.Arg(0), stdin); err != nil {
		return err
	}
	if err := c.setOutput(out, stdout); err != nil {
		if c.in != stdin {
			_ = c.in.Close()
		}
		return err
	}
	return nil
}

func (c *config) setInput(str string, stdin io.ReadCloser) error {
	if len(str) == 0 || str == "-" {
		c.in = stdin
		return nil
	}
	fi, err := os.Stat(str)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("file %q does not exist", str)
	}
	if err != nil {
		return fmt.Errorf("invalid file path: %w", err)
	}
	if fi.IsDir() {
		return fmt.Errorf("path %q is not a file", str)
	}
	c.in, err = os.Open(path.Clean(str))
	if err != nil {
		return fmt.Errorf("failed to open input file %q: %w", str, err)
	}
	return nil
}

func (c *config) setOutput(str string, stdout io.WriteCloser) error {
	if len(str) == 0 {
		c.out = stdout
		return nil
	}
	fi, err := os.Stat(str)
	if err == nil && fi.IsDir() {
		return fmt.Errorf("path %q is not a file", str)
	}
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("invalid file path: %w", err)
	}
	f, err := os.Create(path.Clean(str))
	if err != nil {
		return fmt.Errorf("failed to open output file %q: %w", str, err)
	}
	c.out = f
	return nil
}

func (c *config) decodeInput(data []byte) ([]byte, error) {
	text := strings.TrimSpace(string(data))
	switch c.input {
	case inputHex:
		return hex.DecodeString(strings.TrimPrefix(text, "0x"))
	case inputBase64:
		return base64.StdEncoding.DecodeString(text)
	case inputBase58:
		return base58.Decode(text)
	default:
		return data, nil
	}
}
