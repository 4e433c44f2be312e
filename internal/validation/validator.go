package validation

import (
	"context"
	"fmt"
	"regexp"

	"github.com/beevik/etree"

	"github.com/example/iso-gateway/internal/iso20022"
)

var (
	// bicPattern matches 8- or 11-character bank identifier codes:
	// 6 letters, 2 alphanumerics, optional 3-character branch suffix.
	bicPattern = regexp.MustCompile(`^[A-Z]{6}[A-Z0-9]{2}([A-Z0-9]{3})?$`)

	// amountPattern matches non-negative decimals with at most 5 fractional
	// digits, the ceiling both schemas put on amount values.
	amountPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]{1,5})?$`)
)

// bicTags and amountTags name the elements subject to format checks.
var (
	bicTags    = []string{"BICFI", "BIC"}
	amountTags = []string{"IntrBkSttlmAmt", "InstdAmt"}
)

// Result is the outcome of validating one document. It is created fresh per
// call and never mutated after return.
type Result struct {
	IsValid  bool            `json:"is_valid"`
	Errors   []string        `json:"errors"`
	Warnings []string        `json:"warnings"`
	External *ExternalResult `json:"external,omitempty"`
}

// Validator checks generated ISO 20022 documents against a rule table plus
// structural and format rules, optionally delegating to an external
// conformance service. The rule table is read-only, so a single Validator is
// safe for concurrent use.
type Validator struct {
	rules    *RuleTable
	external *ExternalChecker
}

// NewValidator creates a validator over the given rule table. The external
// checker is optional; nil disables the external conformance step.
func NewValidator(rules *RuleTable, external *ExternalChecker) *Validator {
	return &Validator{rules: rules, external: external}
}

// Validate runs all checks against the document and aggregates every
// discovered problem rather than stopping at the first. Only a document that
// fails to parse short-circuits. The returned error is reserved for caller
// mistakes (an unsupported message type); conformance problems are reported
// through the Result.
func (v *Validator) Validate(ctx context.Context, xml string, mt iso20022.MessageType) (*Result, error) {
	rules, ok := v.rules.Rules(mt)
	if !ok {
		return nil, &iso20022.UnsupportedMessageTypeError{MessageType: mt}
	}

	res := &Result{}

	doc := etree.NewDocument()
	if err := doc.ReadFromString(xml); err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("malformed XML: %v", err))
		return res, nil
	}
	root := doc.Root()
	if root == nil {
		res.Errors = append(res.Errors, "malformed XML: document has no root element")
		return res, nil
	}

	v.checkFieldRules(root, rules, res)
	v.checkElements(root, rules, res)
	v.checkFormats(root, res)

	res.IsValid = len(res.Errors) == 0

	if v.external != nil {
		ext, err := v.external.Check(ctx, xml, mt)
		if err != nil {
			// Unreachable or timed-out external checker degrades to a
			// warning, never a validation failure.
			res.Warnings = append(res.Warnings, fmt.Sprintf("external validator unavailable: %v", err))
		} else {
			res.External = ext
			res.Errors = append(res.Errors, ext.Errors...)
			res.Warnings = append(res.Warnings, ext.Warnings...)
			// Recompute after the merge: an external response claiming
			// valid while still listing errors must not leave the result
			// valid with a non-empty error list.
			res.IsValid = res.IsValid && ext.Valid && len(ext.Errors) == 0
		}
	}

	return res, nil
}

// checkFieldRules applies required-field, max-length, and pattern rules.
// Every violation is recorded; the loop never exits early.
func (v *Validator) checkFieldRules(root *etree.Element, rules FieldRules, res *Result) {
	for _, field := range rules.RequiredFields {
		if findFirst(root, field) == nil {
			res.Errors = append(res.Errors, (&RuleViolationError{Field: field, Kind: ViolationMissing}).Error())
		}
	}

	for field, limit := range rules.MaxLength {
		el := findFirst(root, field)
		if el != nil && len(el.Text()) > limit {
			res.Errors = append(res.Errors, (&RuleViolationError{Field: field, Kind: ViolationTooLong, Limit: limit}).Error())
		}
	}

	for field, pattern := range rules.Patterns {
		el := findFirst(root, field)
		if el != nil && !pattern.MatchString(el.Text()) {
			res.Errors = append(res.Errors, (&RuleViolationError{Field: field, Kind: ViolationPatternMismatch}).Error())
		}
	}
}

// checkElements verifies the message-type-specific structural elements exist.
func (v *Validator) checkElements(root *etree.Element, rules FieldRules, res *Result) {
	for _, element := range rules.RequiredElements {
		if findFirst(root, element) == nil {
			res.Errors = append(res.Errors, (&ElementMissingError{Element: element}).Error())
		}
	}
}

// checkFormats verifies every BIC-tagged element and every amount element in
// the document, not just the first of each.
func (v *Validator) checkFormats(root *etree.Element, res *Result) {
	for _, tag := range bicTags {
		for _, el := range findAll(root, tag) {
			if !bicPattern.MatchString(el.Text()) {
				res.Errors = append(res.Errors, (&InvalidBICError{Value: el.Text()}).Error())
			}
		}
	}

	for _, tag := range amountTags {
		for _, el := range findAll(root, tag) {
			if !amountPattern.MatchString(el.Text()) {
				res.Errors = append(res.Errors, (&InvalidAmountFormatError{Value: el.Text()}).Error())
			}
		}
	}
}

// findFirst returns the first element with the given tag in document order,
// searching depth-first. When several elements share a tag the first wins;
// this cannot distinguish same-named fields under different transaction
// blocks, which is acceptable only while NbOfTxs is pinned to "1". A
// multi-transaction message needs a path-qualified lookup instead.
func findFirst(el *etree.Element, tag string) *etree.Element {
	if el.Tag == tag {
		return el
	}
	for _, child := range el.ChildElements() {
		if found := findFirst(child, tag); found != nil {
			return found
		}
	}
	return nil
}

// findAll returns every element with the given tag in document order.
func findAll(el *etree.Element, tag string) []*etree.Element {
	var out []*etree.Element
	if el.Tag == tag {
		out = append(out, el)
	}
	for _, child := range el.ChildElements() {
		out = append(out, findAll(child, tag)...)
	}
	return out
}
