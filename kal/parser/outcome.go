package parser

import (
	"errors"
	"fmt"
)

// ErrIncomplete reports that the token buffer ran out before a construct
// could be judged well-formed or malformed. Nothing has been consumed when
// it is returned.
var ErrIncomplete = errors.New("incomplete input")

// SyntaxError is a hard parse failure. Token is the offending token, or nil
// when the failure is not tied to one (an arity violation, for example).
type SyntaxError struct {
	Msg   string
	Token *Token
}

func (e *SyntaxError) Error() string {
	if e.Token != nil && e.Token.Span.Start.Line > 0 {
		return fmt.Sprintf("%s: %s", e.Token.Span.Start, e.Msg)
	}
	return e.Msg
}

func syntaxErrorf(tok *Token, format string, args ...any) error {
	return &SyntaxError{Msg: fmt.Sprintf(format, args...), Token: tok}
}

// State names the three outcomes of a parse operation.
type State int

const (
	Success State = iota
	Incomplete
	Failure
)

func (s State) String() string {
	switch s {
	case Success:
		return "Success"
	case Incomplete:
		return "Incomplete"
	default:
		return "Failure"
	}
}

// StateOf classifies the error returned by a parse operation.
func StateOf(err error) State {
	switch {
	case err == nil:
		return Success
	case IsIncomplete(err):
		return Incomplete
	default:
		return Failure
	}
}

// IsIncomplete reports whether err only means that more input is needed:
// either the parser ran out of tokens or the lexer hit end of input inside
// a block comment.
func IsIncomplete(err error) bool {
	if errors.Is(err, ErrIncomplete) {
		return true
	}
	var lexErr *LexError
	return errors.As(err, &lexErr) && lexErr.Unterminated
}

// attempt runs one parse operation under a checkpoint. Whatever the
// operation took from the buffer is put back unless it succeeded.
func attempt[T any](p *Parser, parse func() (T, error)) (T, error) {
	mark := p.tokens.mark()
	v, err := parse()
	if err != nil {
		p.tokens.rewind(mark)
	}
	return v, err
}
