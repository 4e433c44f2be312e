package validation

import "fmt"

// ViolationKind classifies a rule-table violation.
type ViolationKind string

const (
	ViolationMissing         ViolationKind = "missing"
	ViolationTooLong         ViolationKind = "too_long"
	ViolationPatternMismatch ViolationKind = "pattern_mismatch"
)

// RuleViolationError is a rule-table failure on a named field.
type RuleViolationError struct {
	Field string
	Kind  ViolationKind
	Limit int
}

func (e *RuleViolationError) Error() string {
	switch e.Kind {
	case ViolationTooLong:
		return fmt.Sprintf("field %s exceeds maximum length of %d", e.Field, e.Limit)
	case ViolationPatternMismatch:
		return fmt.Sprintf("field %s does not match required pattern", e.Field)
	default:
		return fmt.Sprintf("required field %s is missing", e.Field)
	}
}

// ElementMissingError is a missing structural element for the message type.
type ElementMissingError struct {
	Element string
}

func (e *ElementMissingError) Error() string {
	return fmt.Sprintf("required element %s is missing", e.Element)
}

// InvalidBICError is a BIC-tagged element whose content is not an 8- or
// 11-character bank identifier code.
type InvalidBICError struct {
	Value string
}

func (e *InvalidBICError) Error() string {
	return fmt.Sprintf("invalid BIC %q", e.Value)
}

// InvalidAmountFormatError is an amount element whose content is not a
// non-negative decimal with at most 5 fractional digits.
type InvalidAmountFormatError struct {
	Value string
}

func (e *InvalidAmountFormatError) Error() string {
	return fmt.Sprintf("invalid amount format %q", e.Value)
}
