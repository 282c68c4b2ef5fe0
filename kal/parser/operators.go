package parser

import "sort"

const (
	MinPrecedence     = 1
	MaxPrecedence     = 100
	DefaultPrecedence = 30
)

// OperatorTable maps binary operator symbols to their binding precedence.
// It lives as long as a parsing session and is never shrunk: declaring a
// symbol again, built-in or not, overwrites its precedence for every parse
// that follows.
type OperatorTable struct {
	precedence map[string]int
}

func NewOperatorTable() *OperatorTable {
	return &OperatorTable{
		precedence: map[string]int{
			"(": 100,
			")": 100,
			"=": 2,
			"<": 10,
			"+": 20,
			"-": 20,
			"*": 40,
		},
	}
}

func (t *OperatorTable) Lookup(symbol string) (int, bool) {
	prec, ok := t.precedence[symbol]
	return prec, ok
}

func (t *OperatorTable) Declare(symbol string, precedence int) {
	t.precedence[symbol] = precedence
}

// Symbols returns the known symbols ordered by precedence, then by symbol.
func (t *OperatorTable) Symbols() []string {
	symbols := make([]string, 0, len(t.precedence))
	for sym := range t.precedence {
		symbols = append(symbols, sym)
	}
	sort.Slice(symbols, func(i, j int) bool {
		pi, pj := t.precedence[symbols[i]], t.precedence[symbols[j]]
		if pi != pj {
			return pi < pj
		}
		return symbols[i] < symbols[j]
	})
	return symbols
}
