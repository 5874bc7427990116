package codegen

import (
	"bytes"
	"fmt"
	"go/format"
	"slices"

	"github.com/pkg/errors"
)

// Coder accumulates the lines of a Go source file. Indentation is left to gofmt.
type Coder struct {
	pkg     string
	header  []string
	imports []string
	body    bytes.Buffer
}

func NewCoder(pkg string) *Coder {
	return &Coder{pkg: pkg}
}

// Comment adds a line to the comment block above the package clause.
func (c *Coder) Comment(format string, args ...any) {
	c.header = append(c.header, fmt.Sprintf(format, args...))
}

func (c *Coder) Import(path string) {
	if !slices.Contains(c.imports, path) {
		c.imports = append(c.imports, path)
	}
}

func (c *Coder) Line(format string, args ...any) {
	fmt.Fprintf(&c.body, format, args...)
	c.body.WriteByte('\n')
}

// Bytes returns the gofmt'ed source.
func (c *Coder) Bytes() ([]byte, error) {
	var src bytes.Buffer
	for _, h := range c.header {
		fmt.Fprintf(&src, "// %s\n", h)
	}
	if len(c.header) > 0 {
		src.WriteByte('\n')
	}
	fmt.Fprintf(&src, "package %s\n\n", c.pkg)
	if len(c.imports) > 0 {
		imports := slices.Clone(c.imports)
		slices.Sort(imports)
		src.WriteString("import (\n")
		for _, imp := range imports {
			fmt.Fprintf(&src, "%q\n", imp)
		}
		src.WriteString(")\n\n")
	}
	src.Write(c.body.Bytes())
	out, err := format.Source(src.Bytes())
	if err != nil {
		return nil, errors.Wrap(err, "failed to format generated code")
	}
	return out, nil
}
