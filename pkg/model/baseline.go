package model

import "fmt"

// BaselineName is a validated baseline identifier used for `*.base@<name>`
// artifact files. Only ASCII alphanumerics and underscore are permitted,
// since the name is embedded directly into a filename segment.
type BaselineName string

// ParseBaselineName validates s and returns it as a BaselineName.
func ParseBaselineName(s string) (BaselineName, error) {
	for _, c := range s {
		if !isBaselineNameChar(c) {
			return "", fmt.Errorf("a baseline name can only consist of ascii alphanumeric characters or '_' but found: %q", c)
		}
	}
	return BaselineName(s), nil
}

func isBaselineNameChar(c rune) bool {
	switch {
	case c >= 'a' && c <= 'z':
		return true
	case c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return true
	case c == '_':
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer.
func (n BaselineName) String() string { return string(n) }

// BaselineKindVariant tags which member of BaselineKind is active.
type BaselineKindVariant int

const (
	// BaselineKindOld compares new output against rotated `*.old` files.
	BaselineKindOld BaselineKindVariant = iota
	// BaselineKindName compares new output against a named `*.base@<name>`.
	BaselineKindName
)

// BaselineKind describes which files on disk serve as the old side of a
// comparison.
type BaselineKind struct {
	Variant BaselineKindVariant
	Name    BaselineName
}

// NewOldBaseline builds the Old variant.
func NewOldBaseline() BaselineKind { return BaselineKind{Variant: BaselineKindOld} }

// NewNamedBaseline builds the Name(X) variant.
func NewNamedBaseline(name BaselineName) BaselineKind {
	return BaselineKind{Variant: BaselineKindName, Name: name}
}

// IsNamed reports whether k names a fixed baseline rather than `*.old`.
func (k BaselineKind) IsNamed() bool { return k.Variant == BaselineKindName }

// Baseline pairs a BaselineKind with the concrete path it resolves to.
type Baseline struct {
	Kind BaselineKind
	Path string
}
