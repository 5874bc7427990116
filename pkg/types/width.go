package types

import (
	"unsafe"

	"golang.org/x/exp/constraints"
)

// Width returns the size of T in bytes.
func Width[T constraints.Integer | constraints.Float | ~bool]() int {
	var v T
	return int(unsafe.Sizeof(v))
}

// Signed reports whether the integer type T can hold negative values.
func Signed[T constraints.Integer]() bool {
	var zero T
	return zero-1 < zero
}
