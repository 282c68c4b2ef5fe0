package codebase

import (
	"fmt"

	"github.com/dhamidi/kaleido/kal/parser"
)

type Severity int

const (
	SeverityError Severity = iota + 1
	SeverityWarning
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// Diagnostic is a problem found in a source file. Positions are 1-based.
type Diagnostic struct {
	Start    parser.Position
	End      parser.Position
	Severity Severity
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Start, d.Severity, d.Message)
}
