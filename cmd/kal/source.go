package main

import (
	"fmt"
	"io"
	"os"

	"github.com/dhamidi/kaleido/kal/parser"
)

// readSource reads the named file, or stdin when args is empty or "-".
func readSource(stdin io.Reader, args []string) (source []byte, filename string, err error) {
	if len(args) == 0 || args[0] == "-" {
		source, err = io.ReadAll(stdin)
		if err != nil {
			return nil, "", fmt.Errorf("read stdin: %w", err)
		}
		return source, "<stdin>", nil
	}
	filename = args[0]
	source, err = os.ReadFile(filename)
	if err != nil {
		return nil, "", fmt.Errorf("read file: %w", err)
	}
	return source, filename, nil
}

// parseProgram parses a whole file. Unlike interactive input, a file that
// ends inside an item is an error.
func parseProgram(source []byte, filename string) ([]parser.TopLevelItem, error) {
	tokens, err := parser.Tokenize(source, filename)
	if err != nil {
		return nil, err
	}
	items, leftover, err := parser.Parse(tokens, nil)
	if err != nil {
		return nil, err
	}
	if len(leftover) > 0 {
		return nil, fmt.Errorf("%s: unexpected end of input: unfinished item starting with %s", leftover[0].Span.Start, leftover[0])
	}
	return items, nil
}
