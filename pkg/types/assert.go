package types

import "unsafe"

// Compile-time width checks: an index out of range fails the build if any
// alias stops having the documented size.
var (
	_ = [1]struct{}{}[unsafe.Sizeof(Boolean(false))-SizeBoolean]
	_ = [1]struct{}{}[unsafe.Sizeof(Int8(0))-SizeInt8]
	_ = [1]struct{}{}[unsafe.Sizeof(UInt8(0))-SizeUInt8]
	_ = [1]struct{}{}[unsafe.Sizeof(Int16(0))-SizeInt16]
	_ = [1]struct{}{}[unsafe.Sizeof(UInt16(0))-SizeUInt16]
	_ = [1]struct{}{}[unsafe.Sizeof(Int32(0))-SizeInt32]
	_ = [1]struct{}{}[unsafe.Sizeof(UInt32(0))-SizeUInt32]
	_ = [1]struct{}{}[unsafe.Sizeof(Int64(0))-SizeInt64]
	_ = [1]struct{}{}[unsafe.Sizeof(UInt64(0))-SizeUInt64]
)

// Signed aliases hold their negative minimum, unsigned ones their full range.
const (
	_ Int8   = -1 << 7
	_ Int16  = -1 << 15
	_ Int32  = -1 << 31
	_ UInt8  = 1<<8 - 1
	_ UInt16 = 1<<16 - 1
	_ UInt32 = 1<<32 - 1
)
