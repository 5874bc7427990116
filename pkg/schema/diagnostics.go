package schema

import (
	"fmt"
	"strings"
)

type Severity uint8

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Error codes.
const (
	CodeInvalidChar                = "AS001"
	CodeMissingDocumentEnd         = "AS002"
	CodeMissingIdentifier          = "AS003"
	CodeMissingSemicolon           = "AS004"
	CodeInvalidPackage             = "AS006"
	CodeInvalidToken               = "AS007"
	CodeRepeatedKeyword            = "AS008"
	CodeConflictingAccess          = "AS009"
	CodeFinalWithoutRef            = "AS010"
	CodeMissingIntLiteral          = "AS011"
	CodeMissingOpenBrace           = "AS012"
	CodeInvalidFieldIndex          = "AS013"
	CodeMissingColonOrBar          = "AS014"
	CodeMissingSemicolonOrObsolete = "AS015"
	CodeMissingType                = "AS016"
	CodeMissingCloseBrace          = "AS017"
	CodePrivateNotNested           = "AS018"
	CodeProtectedNotNested         = "AS019"
	CodeDuplicateFieldIndex        = "AS020"
	CodeMissingCloseParen          = "AS021"
	CodeDuplicateStruct            = "AS022"
)

// Warning codes.
const (
	CodeZeroSizeHint       = "AS001"
	CodeNonContinuousIndex = "AS003"
)

// Diagnostic is a problem found in a schema file.
type Diagnostic struct {
	Severity Severity
	Code     string
	Message  string
	File     string
	Pos      Position
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s:%s: %s %s: %s", d.File, d.Pos, d.Severity, d.Code, d.Message)
}

type Diagnostics []Diagnostic

func (ds Diagnostics) HasErrors() bool {
	for _, d := range ds {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Errors returns only the error-severity diagnostics.
func (ds Diagnostics) Errors() Diagnostics {
	var out Diagnostics
	for _, d := range ds {
		if d.Severity == SeverityError {
			out = append(out, d)
		}
	}
	return out
}

func (ds Diagnostics) Error() string {
	lines := make([]string, len(ds))
	for i, d := range ds {
		lines[i] = d.Error()
	}
	return strings.Join(lines, "\n")
}
