// Package parser turns Kal tokens into an abstract syntax tree.
//
// # Overview
//
// Kal is a small expression language: every function body is a single
// expression, and new binary operators can be declared in the program
// itself. The parser is incremental. It consumes a flat token slice and
// returns the complete top-level items it found plus the tokens it could not
// use yet, so interactive callers can append more input and try again.
//
// # Architecture
//
//	┌─────────────┐     ┌─────────────┐     ┌─────────────┐
//	│   Source    │────▶│   Lexer     │────▶│   Parser    │────▶ []TopLevelItem
//	│  (bytes)    │     │  (tokens)   │     │   (AST)     │
//	└─────────────┘     └─────────────┘     └─────────────┘
//	                                               │  ▲
//	                                               ▼  │
//	                                        ┌─────────────┐
//	                                        │  Operator   │
//	                                        │   Table     │
//	                                        └─────────────┘
//
// # Outcomes
//
// Every parse operation ends in one of three states:
//
//	Success     value, nil           tokens of the construct are consumed
//	Incomplete  ErrIncomplete        tokens ran out; nothing is consumed
//	Failure     *SyntaxError         the construct is malformed
//
// Incomplete and Failure propagate unchanged to the top level. Parse turns
// Incomplete into leftover tokens and Failure into its error; there is no
// recovery after a syntax error.
//
// # Grammar
//
//	top       = "function" proto expr | "extern" proto | expr | ";"
//	proto     = ident "(" params ")"
//	          | "unary" op "(" params ")"
//	          | "binary" op [number] "(" params ")"
//	expr      = primary { op primary }          precedence climbing
//	primary   = ident | ident "(" args ")" | number | "(" expr ")"
//	          | "if" expr "then" expr "else" expr
//	          | "for" ident "=" expr ["," expr] [expr] "in" expr
//	          | "let" ident ["=" expr] {"," ident ["=" expr]} "in" expr
//	          | op primary
//
// Commas between parameters and call arguments are optional.
//
// # Operator Table
//
// Binary operators resolve through an OperatorTable seeded with
//
//	=  2    <  10    +  20    -  20    *  40
//
// A definition such as
//
//	function binary | 5 (a b) if a then 1 else b;
//
// declares "|" with precedence 5 before its body is parsed. The table is
// shared by every later parse in the same session, including re-parses of
// earlier code.
//
// # Example Usage
//
//	s := parser.NewSession()
//	tokens, _ := parser.Tokenize([]byte("let x = 1 in"), "repl")
//	items, _ := s.Feed(tokens)   // no items, s.Complete() == false
//	tokens, _ = parser.Tokenize([]byte("x + 1;"), "repl")
//	items, _ = s.Feed(tokens)    // one anonymous FunctionDef
package parser
