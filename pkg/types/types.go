// Package types binds the fixed-width primitive names used by the Accelbuffer
// wire format. The names are aliases, so values of the aliased Go types are
// accepted wherever these names appear.
package types

type (
	Boolean = bool
	Int8    = int8
	UInt8   = uint8
	Int16   = int16
	UInt16  = uint16
	Int32   = int32
	UInt32  = uint32
)

// Wider primitives carried by the codec.
type (
	Int64   = int64
	UInt64  = uint64
	Float32 = float32
	Float64 = float64
)

// The sizes of the basic types in bytes.
const (
	SizeBoolean = 1
	SizeInt8    = 1
	SizeUInt8   = 1
	SizeInt16   = 2
	SizeUInt16  = 2
	SizeInt32   = 4
	SizeUInt32  = 4
	SizeInt64   = 8
	SizeUInt64  = 8
	SizeFloat32 = 4
	SizeFloat64 = 8
)
