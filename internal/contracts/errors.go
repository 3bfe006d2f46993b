package contracts

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotRecord is returned when a validator is handed something other than a JSON object
var ErrNotRecord = errors.New("value is not a record")

// Kind tells shape violations apart from broken cross-field invariants
type Kind string

const (
	KindStructural Kind = "structural"
	KindSemantic   Kind = "semantic"
)

// ValidationError is a single contract violation
type ValidationError struct {
	Kind      Kind   `json:"kind,omitempty"`
	FieldPath string `json:"field"`
	Message   string `json:"message"`
}

func (e ValidationError) Error() string {
	if e.FieldPath == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.FieldPath, e.Message)
}

// ValidationErrors collects every violation found in one pass
type ValidationErrors struct {
	Errors []ValidationError
}

func (ve *ValidationErrors) Add(fieldPath, message string) {
	ve.Errors = append(ve.Errors, ValidationError{FieldPath: fieldPath, Message: message})
}

func (ve *ValidationErrors) Addf(fieldPath, format string, args ...any) {
	ve.Add(fieldPath, fmt.Sprintf(format, args...))
}

func (ve *ValidationErrors) HasErrors() bool {
	return len(ve.Errors) > 0
}

func (ve *ValidationErrors) Error() string {
	msgs := make([]string, 0, len(ve.Errors))
	for _, e := range ve.Errors {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "\n")
}

// StructuralError reports an artifact with the wrong shape
type StructuralError struct {
	Artifact string
	Errors   []ValidationError
}

func (e *StructuralError) Error() string {
	return formatContractError(e.Artifact, "structure", e.Errors)
}

// SemanticError reports a well-shaped artifact that breaks a cross-field invariant
type SemanticError struct {
	Artifact string
	Errors   []ValidationError
}

func (e *SemanticError) Error() string {
	return formatContractError(e.Artifact, "invariants", e.Errors)
}

func formatContractError(artifact, phase string, errs []ValidationError) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s failed %s validation (%d):", artifact, phase, len(errs))
	for _, e := range errs {
		sb.WriteString("\n- ")
		sb.WriteString(e.Error())
	}
	return sb.String()
}

// Violations returns the field-level errors carried by a contract error, if any
func Violations(err error) []ValidationError {
	var structural *StructuralError
	if errors.As(err, &structural) {
		return structural.Errors
	}
	var semantic *SemanticError
	if errors.As(err, &semantic) {
		return semantic.Errors
	}
	return nil
}

// IsStructural reports whether err is a StructuralError
func IsStructural(err error) bool {
	var structural *StructuralError
	return errors.As(err, &structural)
}

// IsSemantic reports whether err is a SemanticError
func IsSemantic(err error) bool {
	var semantic *SemanticError
	return errors.As(err, &semantic)
}

func structuralOrNil(artifact string, errs *ValidationErrors) error {
	if !errs.HasErrors() {
		return nil
	}
	return &StructuralError{Artifact: artifact, Errors: withKind(errs.Errors, KindStructural)}
}

func semanticOrNil(artifact string, errs *ValidationErrors) error {
	if !errs.HasErrors() {
		return nil
	}
	return &SemanticError{Artifact: artifact, Errors: withKind(errs.Errors, KindSemantic)}
}

func withKind(errs []ValidationError, kind Kind) []ValidationError {
	out := make([]ValidationError, len(errs))
	for i, e := range errs {
		e.Kind = kind
		out[i] = e
	}
	return out
}
