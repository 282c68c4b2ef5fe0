package grammar

import (
	"fmt"
	"sort"

	"golang.org/x/exp/ebnf"

	"github.com/dhamidi/kaleido/kal/parser"
)

// LexicalKinds maps the lexical productions of the Kal grammar to the
// token kinds the lexer produces for them. Lexical productions are matched
// as single tokens; their bodies are never expanded.
var LexicalKinds = map[string]parser.TokenKind{
	"identifier": parser.TokenIdent,
	"number":     parser.TokenNumber,
	"operator":   parser.TokenOperator,
}

// symbol is one element on the right-hand side of a rule. Exactly one
// field is set.
type symbol struct {
	nonterminal string
	literal     string
	lexical     string
}

func (s symbol) String() string {
	switch {
	case s.nonterminal != "":
		return s.nonterminal
	case s.lexical != "":
		return s.lexical
	default:
		return fmt.Sprintf("%q", s.literal)
	}
}

type rule struct {
	lhs string
	rhs []symbol
}

// Recognizer decides whether a token sequence is derivable from a
// grammar. The EBNF is first flattened into plain rules: every group,
// option, and repetition becomes a fresh nonterminal. Recognition is
// Earley's algorithm, so ambiguous and left-recursive grammars are fine.
type Recognizer struct {
	start    string
	rules    []rule
	byLHS    map[string][]int
	nullable map[string]bool
	fresh    int
}

// NewRecognizer flattens every non-lexical production of g. Recognition
// starts from the production named start.
func NewRecognizer(g ebnf.Grammar, start string) (*Recognizer, error) {
	if _, ok := g[start]; !ok {
		return nil, fmt.Errorf("production %q not found in grammar", start)
	}
	r := &Recognizer{
		start: start,
		byLHS: make(map[string][]int),
	}

	names := make([]string, 0, len(g))
	for name := range g {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if isLexical(name) {
			continue
		}
		alts, err := r.expand(name, g[name].Expr)
		if err != nil {
			return nil, err
		}
		for _, rhs := range alts {
			r.addRule(name, rhs)
		}
	}
	r.computeNullable()
	return r, nil
}

// NewKalRecognizer returns a recognizer for the embedded Kal grammar.
func NewKalRecognizer() (*Recognizer, error) {
	g, err := Load()
	if err != nil {
		return nil, err
	}
	return NewRecognizer(g, Start)
}

func isLexical(name string) bool {
	return name != "" && name[0] >= 'a' && name[0] <= 'z'
}

func (r *Recognizer) addRule(lhs string, rhs []symbol) {
	r.byLHS[lhs] = append(r.byLHS[lhs], len(r.rules))
	r.rules = append(r.rules, rule{lhs: lhs, rhs: rhs})
}

func (r *Recognizer) freshName(context string) string {
	r.fresh++
	return fmt.Sprintf("%s#%d", context, r.fresh)
}

// expand returns the alternatives of expr as symbol sequences.
func (r *Recognizer) expand(context string, expr ebnf.Expression) ([][]symbol, error) {
	switch e := expr.(type) {
	case nil:
		return [][]symbol{{}}, nil
	case ebnf.Alternative:
		var alts [][]symbol
		for _, alt := range e {
			more, err := r.expand(context, alt)
			if err != nil {
				return nil, err
			}
			alts = append(alts, more...)
		}
		return alts, nil
	case ebnf.Sequence:
		seq := make([]symbol, 0, len(e))
		for _, elem := range e {
			sym, err := r.symbolFor(context, elem)
			if err != nil {
				return nil, err
			}
			seq = append(seq, sym)
		}
		return [][]symbol{seq}, nil
	default:
		sym, err := r.symbolFor(context, expr)
		if err != nil {
			return nil, err
		}
		return [][]symbol{{sym}}, nil
	}
}

func (r *Recognizer) symbolFor(context string, expr ebnf.Expression) (symbol, error) {
	switch e := expr.(type) {
	case *ebnf.Name:
		if isLexical(e.String) {
			return symbol{lexical: e.String}, nil
		}
		return symbol{nonterminal: e.String}, nil
	case *ebnf.Token:
		return symbol{literal: e.String}, nil
	case *ebnf.Group:
		name := r.freshName(context)
		alts, err := r.expand(context, e.Body)
		if err != nil {
			return symbol{}, err
		}
		for _, rhs := range alts {
			r.addRule(name, rhs)
		}
		return symbol{nonterminal: name}, nil
	case *ebnf.Option:
		name := r.freshName(context)
		alts, err := r.expand(context, e.Body)
		if err != nil {
			return symbol{}, err
		}
		for _, rhs := range alts {
			r.addRule(name, rhs)
		}
		r.addRule(name, nil)
		return symbol{nonterminal: name}, nil
	case *ebnf.Repetition:
		name := r.freshName(context)
		alts, err := r.expand(context, e.Body)
		if err != nil {
			return symbol{}, err
		}
		for _, rhs := range alts {
			r.addRule(name, append(append([]symbol{}, rhs...), symbol{nonterminal: name}))
		}
		r.addRule(name, nil)
		return symbol{nonterminal: name}, nil
	case ebnf.Alternative, ebnf.Sequence:
		name := r.freshName(context)
		alts, err := r.expand(context, e)
		if err != nil {
			return symbol{}, err
		}
		for _, rhs := range alts {
			r.addRule(name, rhs)
		}
		return symbol{nonterminal: name}, nil
	case *ebnf.Range:
		return symbol{}, fmt.Errorf("%s: character range in non-lexical production %s", e.Pos(), context)
	default:
		return symbol{}, fmt.Errorf("production %s: unsupported expression %T", context, expr)
	}
}

func (r *Recognizer) computeNullable() {
	r.nullable = make(map[string]bool)
	for changed := true; changed; {
		changed = false
		for _, ru := range r.rules {
			if r.nullable[ru.lhs] {
				continue
			}
			all := true
			for _, sym := range ru.rhs {
				if sym.nonterminal == "" || !r.nullable[sym.nonterminal] {
					all = false
					break
				}
			}
			if all {
				r.nullable[ru.lhs] = true
				changed = true
			}
		}
	}
}

// item is an Earley item: a rule with a dot position and the chart
// position where recognition of the rule started.
type item struct {
	rule   int
	dot    int
	origin int
}

type itemSet struct {
	items []item
	seen  map[item]bool
}

func newItemSet() *itemSet {
	return &itemSet{seen: make(map[item]bool)}
}

func (s *itemSet) add(it item) {
	if s.seen[it] {
		return
	}
	s.seen[it] = true
	s.items = append(s.items, it)
}

func (r *Recognizer) next(it item) (symbol, bool) {
	rhs := r.rules[it.rule].rhs
	if it.dot >= len(rhs) {
		return symbol{}, false
	}
	return rhs[it.dot], true
}

// matches reports whether tok is an instance of the terminal sym.
func matches(sym symbol, tok parser.Token) bool {
	if sym.lexical != "" {
		kind, ok := LexicalKinds[sym.lexical]
		return ok && tok.Kind == kind
	}
	if tok.Kind == parser.TokenIdent || tok.Kind == parser.TokenNumber {
		return false
	}
	return tok.Literal == sym.literal
}

// Recognize reports whether tokens form a sentence of the start
// production. The error names the first token that no rule can accept.
func (r *Recognizer) Recognize(tokens []parser.Token) error {
	chart := make([]*itemSet, len(tokens)+1)
	for i := range chart {
		chart[i] = newItemSet()
	}
	for _, idx := range r.byLHS[r.start] {
		chart[0].add(item{rule: idx})
	}

	for i := 0; i <= len(tokens); i++ {
		// items may be added while iterating
		for j := 0; j < len(chart[i].items); j++ {
			it := chart[i].items[j]
			sym, ok := r.next(it)
			switch {
			case !ok:
				r.complete(chart, i, it)
			case sym.nonterminal != "":
				r.predict(chart, i, it, sym.nonterminal)
			case i < len(tokens) && matches(sym, tokens[i]):
				chart[i+1].add(item{rule: it.rule, dot: it.dot + 1, origin: it.origin})
			}
		}
		if i < len(tokens) && len(chart[i+1].items) == 0 {
			tok := tokens[i]
			return fmt.Errorf("%s: %s is not allowed here by the grammar", tok.Span.Start, tok)
		}
	}

	for _, it := range chart[len(tokens)].items {
		if it.origin == 0 && r.rules[it.rule].lhs == r.start {
			if _, more := r.next(it); !more {
				return nil
			}
		}
	}
	return fmt.Errorf("unexpected end of input: %s is not complete", r.start)
}

func (r *Recognizer) predict(chart []*itemSet, pos int, it item, name string) {
	for _, idx := range r.byLHS[name] {
		chart[pos].add(item{rule: idx, origin: pos})
	}
	if r.nullable[name] {
		chart[pos].add(item{rule: it.rule, dot: it.dot + 1, origin: it.origin})
	}
}

func (r *Recognizer) complete(chart []*itemSet, pos int, done item) {
	lhs := r.rules[done.rule].lhs
	for _, waiting := range chart[done.origin].items {
		if sym, ok := r.next(waiting); ok && sym.nonterminal == lhs {
			chart[pos].add(item{rule: waiting.rule, dot: waiting.dot + 1, origin: waiting.origin})
		}
	}
}

// Rules renders the flattened rules, one per line, for debugging.
func (r *Recognizer) Rules() []string {
	out := make([]string, 0, len(r.rules))
	for _, ru := range r.rules {
		line := ru.lhs + " ="
		for _, sym := range ru.rhs {
			line += " " + sym.String()
		}
		out = append(out, line+" .")
	}
	return out
}
