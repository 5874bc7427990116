package codegen

import (
	"github.com/wavesplatform/goaccel/pkg/schema"
)

//go:generate mockgen -destination=../mock/generator.go -package=mock github.com/wavesplatform/goaccel/pkg/codegen Generator

// Generator turns a parsed schema into source code.
type Generator interface {
	Generate(f *schema.File) ([]byte, error)
}
