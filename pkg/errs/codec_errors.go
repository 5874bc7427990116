package errs

import "fmt"

// MaxFieldIndex is the largest index that fits a 32-bit tag next to the 4-bit object type.
const MaxFieldIndex = 1<<28 - 1

type InvalidFieldIndex struct {
	message string
}

func NewInvalidFieldIndex(index int) *InvalidFieldIndex {
	return &InvalidFieldIndex{
		message: fmt.Sprintf("invalid field index %d, expected value in range [1, %d]", index, MaxFieldIndex),
	}
}

func (a InvalidFieldIndex) Error() string {
	return a.message
}

func (a InvalidFieldIndex) Extend(message string) error {
	return &InvalidFieldIndex{message: fmtExtend(a, message)}
}

func (a InvalidFieldIndex) Is(target error) bool {
	switch target.(type) {
	case InvalidFieldIndex, *InvalidFieldIndex:
		return true
	default:
		return false
	}
}

type StreamTooShort struct {
	message string
}

func NewStreamTooShort(expected, found int) *StreamTooShort {
	return &StreamTooShort{
		message: fmt.Sprintf("not enough bytes, expected at least %d, found %d", expected, found),
	}
}

func (a StreamTooShort) Error() string {
	return a.message
}

func (a StreamTooShort) Extend(message string) error {
	return &StreamTooShort{message: fmtExtend(a, message)}
}

func (a StreamTooShort) Is(target error) bool {
	switch target.(type) {
	case StreamTooShort, *StreamTooShort:
		return true
	default:
		return false
	}
}

// InvalidCast reports a wire object type that cannot be read as the requested type.
type InvalidCast struct {
	Got     string
	Want    string
	message string
}

func NewInvalidCast(got, want string) *InvalidCast {
	return &InvalidCast{
		Got:     got,
		Want:    want,
		message: fmt.Sprintf("can not read object of type %s as %s", got, want),
	}
}

func (a InvalidCast) Error() string {
	return a.message
}

func (a InvalidCast) Extend(message string) error {
	return &InvalidCast{Got: a.Got, Want: a.Want, message: fmtExtend(a, message)}
}

func (a InvalidCast) Is(target error) bool {
	switch target.(type) {
	case InvalidCast, *InvalidCast:
		return true
	default:
		return false
	}
}

type UnsupportedType struct {
	message string
}

func NewUnsupportedType(typeName string) *UnsupportedType {
	return &UnsupportedType{message: fmt.Sprintf("type %s is not supported", typeName)}
}

func (a UnsupportedType) Error() string {
	return a.message
}

func (a UnsupportedType) Extend(message string) error {
	return &UnsupportedType{message: fmtExtend(a, message)}
}

func (a UnsupportedType) Is(target error) bool {
	switch target.(type) {
	case UnsupportedType, *UnsupportedType:
		return true
	default:
		return false
	}
}

// UnknownField is returned in strict mode when a message carries an index
// the target type does not declare.
type UnknownField struct {
	Index   int
	message string
}

func NewUnknownField(index int, typeName string) *UnknownField {
	return &UnknownField{
		Index:   index,
		message: fmt.Sprintf("unknown field index %d for %s", index, typeName),
	}
}

func (a UnknownField) Error() string {
	return a.message
}

func (a UnknownField) Extend(message string) error {
	return &UnknownField{Index: a.Index, message: fmtExtend(a, message)}
}

func (a UnknownField) Is(target error) bool {
	switch target.(type) {
	case UnknownField, *UnknownField:
		return true
	default:
		return false
	}
}
