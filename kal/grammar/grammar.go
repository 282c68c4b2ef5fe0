// Package grammar carries the reference EBNF grammar of the Kal language
// and verifies grammars with golang.org/x/exp/ebnf.
package grammar

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"reflect"
	"sort"

	"golang.org/x/exp/ebnf"
)

// Start is the start production of the Kal grammar.
const Start = "Program"

//go:embed kal.ebnf
var source []byte

// Source returns the text of the embedded Kal grammar.
func Source() []byte {
	return bytes.Clone(source)
}

// Load parses and verifies the embedded Kal grammar.
func Load() (ebnf.Grammar, error) {
	return Check("kal.ebnf", bytes.NewReader(source), Start)
}

// Check parses the grammar read from src. When start is not empty the
// grammar is also verified: every production must be defined and
// reachable from start.
func Check(filename string, src io.Reader, start string) (ebnf.Grammar, error) {
	g, err := ebnf.Parse(filename, src)
	if err != nil {
		return nil, err
	}
	if start == "" {
		return g, nil
	}
	if err := ebnf.Verify(g, start); err != nil {
		return g, err
	}
	return g, nil
}

// Productions returns the production names of g in sorted order.
func Productions(g ebnf.Grammar) []string {
	names := make([]string, 0, len(g))
	for name := range g {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Errors flattens the error list returned by Check into one error per
// problem.
func Errors(err error) []error {
	if err == nil {
		return nil
	}
	v := reflect.ValueOf(err)
	if v.Kind() != reflect.Slice {
		return []error{err}
	}
	errs := make([]error, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		if e, ok := v.Index(i).Interface().(error); ok {
			errs = append(errs, e)
		} else {
			errs = append(errs, fmt.Errorf("%v", v.Index(i).Interface()))
		}
	}
	return errs
}
