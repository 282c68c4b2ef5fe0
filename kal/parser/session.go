package parser

import (
	"github.com/tliron/commonlog"
)

type Option func(*Session)

// WithOperatorTable makes the session parse against t instead of a freshly
// seeded table.
func WithOperatorTable(t *OperatorTable) Option {
	return func(s *Session) {
		s.ops = t
	}
}

func WithLogger(log commonlog.Logger) Option {
	return func(s *Session) {
		s.log = log
	}
}

// Session carries parsing state across calls: the operator table and the
// tokens that did not yet form a complete top-level item. It is the
// intended driver for interactive input, one Feed per line.
//
// A Session is not safe for concurrent use.
type Session struct {
	ops     *OperatorTable
	pending []Token
	log     commonlog.Logger
}

func NewSession(opts ...Option) *Session {
	s := &Session{
		ops: NewOperatorTable(),
		log: commonlog.GetLogger("kal.parser"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Feed appends tokens to whatever is pending and parses. It returns the
// items completed by this call; tokens of an unfinished item stay pending.
// On a syntax error the pending tokens are discarded.
func (s *Session) Feed(tokens []Token) ([]TopLevelItem, error) {
	input := make([]Token, 0, len(s.pending)+len(tokens))
	input = append(input, s.pending...)
	input = append(input, tokens...)

	items, rest, err := Parse(input, s.ops)
	if err != nil {
		s.log.Debugf("dropping %d pending tokens: %s", len(input), err)
		s.pending = nil
		return nil, err
	}

	s.pending = rest
	s.log.Debugf("parsed %d items, %d tokens pending", len(items), len(rest))
	return items, nil
}

func (s *Session) Pending() []Token {
	return s.pending
}

// Complete reports whether no unfinished item is waiting for more tokens.
func (s *Session) Complete() bool {
	return len(s.pending) == 0
}

func (s *Session) Operators() *OperatorTable {
	return s.ops
}

// Reset drops pending tokens. Operators declared so far stay declared.
func (s *Session) Reset() {
	s.pending = nil
}
