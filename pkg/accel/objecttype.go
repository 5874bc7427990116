package accel

import (
	"golang.org/x/exp/constraints"

	"github.com/wavesplatform/goaccel/pkg/types"
)

// ObjectType is the 4-bit wire type stored in the low bits of every field tag.
//
//go:generate stringer -type ObjectType -output objecttype_string.go
type ObjectType uint8

const (
	Missing ObjectType = iota
	Fixed8
	Fixed16
	Fixed24
	Fixed32
	Fixed40
	Fixed48
	Fixed56
	Fixed64
	Fixed72
	Fixed80
	Fixed88
	Fixed96
	Fixed104
	Fixed128
	LengthPrefixed
)

// FixedSize returns the payload size of fixed object types.
// It returns false for Missing and LengthPrefixed.
func (t ObjectType) FixedSize() (int, bool) {
	switch {
	case t >= Fixed8 && t <= Fixed104:
		return int(t), true
	case t == Fixed128:
		return 16, true
	default:
		return 0, false
	}
}

// objectTypeByLength picks the object type able to carry n bytes without a length prefix.
func objectTypeByLength(n int) ObjectType {
	switch {
	case n >= 1 && n <= 13:
		return ObjectType(n)
	case n == 16:
		return Fixed128
	default:
		return LengthPrefixed
	}
}

// fixedOf returns the fixed object type carrying a value of T.
func fixedOf[T constraints.Integer | constraints.Float | ~bool]() ObjectType {
	return objectTypeByLength(types.Width[T]())
}
