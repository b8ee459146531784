package filter

import (
	"errors"
	"fmt"

	"github.com/expr-lang/expr/file"

	"github.com/s0up4200/mixwatch/growatt"
)

// ErrNotBool is wrapped when an expression yields something other than a bool
var ErrNotBool = errors.New("filter result is not a bool")

// CompilationError reports an expression that expr-lang rejected
type CompilationError struct {
	Expression string
	// Column is 1-based, 0 when expr did not report a position
	Column int
	Reason string
	Err    error
}

func newCompilationError(expression string, err error) *CompilationError {
	ce := &CompilationError{Expression: expression, Reason: err.Error(), Err: err}
	var fileErr *file.Error
	if errors.As(err, &fileErr) {
		ce.Reason = fileErr.Message
		ce.Column = fileErr.Column + 1
	}
	return ce
}

func (e *CompilationError) Error() string {
	if e.Column > 0 {
		return fmt.Sprintf("compilation error in '%s' at column %d: %s", e.Expression, e.Column, e.Reason)
	}
	return fmt.Sprintf("compilation error in '%s': %s", e.Expression, e.Reason)
}

func (e *CompilationError) Unwrap() error {
	return e.Err
}

// EvaluationError reports the chart point an expression failed on
type EvaluationError struct {
	Expression string
	Time       string
	Fields     growatt.Value
	Err        error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluation error for filter '%s' at %s %s: %v", e.Expression, e.Time, e.Fields, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}
