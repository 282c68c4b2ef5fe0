package parser

type Parser struct {
	ops    *OperatorTable
	tokens *tokenBuffer
}

func newParser(tokens []Token, ops *OperatorTable) *Parser {
	if ops == nil {
		ops = NewOperatorTable()
	}
	return &Parser{
		ops:    ops,
		tokens: newTokenBuffer(tokens),
	}
}

// Parse consumes as many complete top-level items from tokens as it can.
//
// It stops cleanly when the remaining tokens do not yet form a complete
// item and returns them, in order, as leftover; the caller appends newly
// arrived tokens to the leftover and calls Parse again. A syntax error
// aborts the whole call: no items and no leftover are returned.
//
// Binary operator definitions are declared in ops as a side effect and stay
// declared for every later call that shares the table.
func Parse(tokens []Token, ops *OperatorTable) ([]TopLevelItem, []Token, error) {
	p := newParser(tokens, ops)
	items, err := p.parseTopLevel()
	if err != nil {
		return nil, nil, err
	}
	return items, p.tokens.drain(), nil
}

// ParseExpression parses a single expression. On ErrIncomplete the returned
// tokens are the untouched input.
func ParseExpression(tokens []Token, ops *OperatorTable) (Expr, []Token, error) {
	p := newParser(tokens, ops)
	expr, err := p.parseExpr()
	switch StateOf(err) {
	case Incomplete:
		return nil, p.tokens.drain(), err
	case Failure:
		return nil, nil, err
	}
	return expr, p.tokens.drain(), nil
}

func (p *Parser) parseTopLevel() ([]TopLevelItem, error) {
	var items []TopLevelItem
	for {
		tok, ok := p.tokens.peek()
		if !ok {
			return items, nil
		}

		var item TopLevelItem
		var err error
		switch tok.Kind {
		case TokenDelimiter:
			p.tokens.next()
			p.tokens.commit()
			continue
		case TokenFunction:
			item, err = attempt(p, p.parseFunction)
		case TokenExtern:
			item, err = attempt(p, p.parseExtern)
		default:
			item, err = attempt(p, p.parseTopLevelExpr)
		}

		switch StateOf(err) {
		case Incomplete:
			return items, nil
		case Failure:
			return nil, err
		}
		p.tokens.commit()
		items = append(items, item)
	}
}

func (p *Parser) peek() (Token, bool) {
	return p.tokens.peek()
}

// expect consumes the next token if it has the given kind. Running out of
// tokens is ErrIncomplete; any other token is a syntax error.
func (p *Parser) expect(kind TokenKind, what string) (Token, error) {
	tok, ok := p.peek()
	if !ok {
		return Token{}, ErrIncomplete
	}
	if tok.Kind != kind {
		return Token{}, syntaxErrorf(&tok, "expected %s, got %s", what, tok)
	}
	p.tokens.next()
	return tok, nil
}

// accept consumes the next token only if it has the given kind.
func (p *Parser) accept(kind TokenKind) (Token, bool) {
	tok, ok := p.peek()
	if !ok || tok.Kind != kind {
		return Token{}, false
	}
	p.tokens.next()
	return tok, true
}

func (p *Parser) parseExtern() (TopLevelItem, error) {
	p.tokens.next()

	proto, err := p.parsePrototype()
	if err != nil {
		return nil, err
	}
	return &ExternDecl{Proto: proto}, nil
}

func (p *Parser) parseFunction() (TopLevelItem, error) {
	p.tokens.next()

	proto, err := p.parsePrototype()
	if err != nil {
		return nil, err
	}

	// Declared before the body so the operator can be used recursively.
	if proto.Kind == KindBinaryOp {
		p.ops.Declare(proto.Operator, proto.Precedence)
	}

	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &FunctionDef{Proto: proto, Body: body}, nil
}

func (p *Parser) parseTopLevelExpr() (TopLevelItem, error) {
	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return anonymousFunction(body), nil
}

func (p *Parser) parsePrototype() (*Prototype, error) {
	return attempt(p, func() (*Prototype, error) {
		tok, ok := p.tokens.next()
		if !ok {
			return nil, ErrIncomplete
		}

		proto := &Prototype{Kind: KindNormal}
		switch tok.Kind {
		case TokenIdent:
			proto.Name = tok.Literal
		case TokenUnary:
			op, err := p.expect(TokenOperator, "unary operator")
			if err != nil {
				return nil, err
			}
			proto.Name = "unary" + op.Literal
			proto.Kind = KindUnaryOp
			proto.Operator = op.Literal
		case TokenBinary:
			op, err := p.expect(TokenOperator, "binary operator")
			if err != nil {
				return nil, err
			}
			proto.Name = "binary" + op.Literal
			proto.Kind = KindBinaryOp
			proto.Operator = op.Literal
			proto.Precedence = DefaultPrecedence
			if num, ok := p.accept(TokenNumber); ok {
				// fractional precedences truncate toward zero
				if num.Value < MinPrecedence || num.Value >= MaxPrecedence+1 {
					return nil, syntaxErrorf(&num, "invalid precedence %s: must be %d..%d", num.Literal, MinPrecedence, MaxPrecedence)
				}
				proto.Precedence = int(num.Value)
			}
		default:
			return nil, syntaxErrorf(&tok, "expected function name in prototype, got %s", tok)
		}

		if _, err := p.expect(TokenLParen, "'(' in prototype"); err != nil {
			return nil, err
		}

		proto.Params = []string{}
	params:
		for {
			tok, ok := p.tokens.next()
			if !ok {
				return nil, ErrIncomplete
			}
			switch tok.Kind {
			case TokenIdent:
				proto.Params = append(proto.Params, tok.Literal)
			case TokenComma:
			case TokenRParen:
				break params
			default:
				return nil, syntaxErrorf(&tok, "expected ')' in prototype, got %s", tok)
			}
		}

		switch {
		case proto.Kind == KindUnaryOp && len(proto.Params) != 1:
			return nil, syntaxErrorf(nil, "invalid number of operands for unary operator %q: want 1, got %d", proto.Operator, len(proto.Params))
		case proto.Kind == KindBinaryOp && len(proto.Params) != 2:
			return nil, syntaxErrorf(nil, "invalid number of operands for binary operator %q: want 2, got %d", proto.Operator, len(proto.Params))
		}
		return proto, nil
	})
}

func (p *Parser) parseExpr() (Expr, error) {
	return attempt(p, func() (Expr, error) {
		lhs, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		return p.parseBinary(0, lhs)
	})
}

func (p *Parser) parsePrimary() (Expr, error) {
	tok, ok := p.peek()
	if !ok {
		return nil, ErrIncomplete
	}

	switch tok.Kind {
	case TokenIdent:
		return attempt(p, p.parseIdentExpr)
	case TokenNumber:
		p.tokens.next()
		return &LiteralExpr{Value: tok.Value}, nil
	case TokenIf:
		return attempt(p, p.parseConditionalExpr)
	case TokenFor:
		return attempt(p, p.parseLoopExpr)
	case TokenLet:
		return attempt(p, p.parseLetExpr)
	case TokenOperator:
		return attempt(p, p.parseUnaryExpr)
	case TokenLParen:
		return attempt(p, p.parseParenExpr)
	default:
		return nil, syntaxErrorf(&tok, "unexpected %s when expecting an expression", tok)
	}
}

func (p *Parser) parseIdentExpr() (Expr, error) {
	name, _ := p.tokens.next()

	if _, ok := p.accept(TokenLParen); !ok {
		return &VariableExpr{Name: name.Literal}, nil
	}

	var args []Expr
	for {
		if _, ok := p.accept(TokenRParen); ok {
			break
		}
		if _, ok := p.accept(TokenComma); ok {
			continue
		}
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	return &CallExpr{Callee: name.Literal, Args: args}, nil
}

func (p *Parser) parseParenExpr() (Expr, error) {
	p.tokens.next()

	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenRParen, "')'"); err != nil {
		return nil, err
	}
	return expr, nil
}

func (p *Parser) parseUnaryExpr() (Expr, error) {
	op, _ := p.tokens.next()

	operand, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	return &UnaryExpr{Op: op.Literal, Operand: operand}, nil
}

// peekOperator inspects the next token without consuming it. ok is false
// when the token is not an operator symbol at all; an operator symbol that
// the table does not know is a syntax error.
func (p *Parser) peekOperator() (op string, prec int, ok bool, err error) {
	tok, found := p.peek()
	if !found || tok.Kind != TokenOperator {
		return "", 0, false, nil
	}
	prec, known := p.ops.Lookup(tok.Literal)
	if !known {
		return "", 0, false, syntaxErrorf(&tok, "unknown operator %q", tok.Literal)
	}
	return tok.Literal, prec, true, nil
}

// parseBinary folds operators of at least minPrec onto lhs. The right
// operand only absorbs operators that bind strictly tighter, which makes
// equal precedence associate to the left.
func (p *Parser) parseBinary(minPrec int, lhs Expr) (Expr, error) {
	return attempt(p, func() (Expr, error) {
		result := lhs
		for {
			op, prec, ok, err := p.peekOperator()
			if err != nil {
				return nil, err
			}
			if !ok || prec < minPrec {
				return result, nil
			}
			p.tokens.next()

			rhs, err := p.parsePrimary()
			if err != nil {
				return nil, err
			}

			for {
				_, next, ok, err := p.peekOperator()
				if err != nil {
					return nil, err
				}
				if !ok || next <= prec {
					break
				}
				rhs, err = p.parseBinary(next, rhs)
				if err != nil {
					return nil, err
				}
			}

			result = &BinaryExpr{Op: op, Left: result, Right: rhs}
		}
	})
}

func (p *Parser) parseConditionalExpr() (Expr, error) {
	p.tokens.next()

	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenThen, "'then'"); err != nil {
		return nil, err
	}
	then, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenElse, "'else'"); err != nil {
		return nil, err
	}
	els, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ConditionalExpr{Cond: cond, Then: then, Else: els}, nil
}

// expectAssign consumes the "=" operator symbol.
func (p *Parser) expectAssign(context string) error {
	tok, err := p.expect(TokenOperator, "'=' "+context)
	if err != nil {
		return err
	}
	if tok.Literal != "=" {
		return syntaxErrorf(&tok, "expected '=' %s, got %s", context, tok)
	}
	return nil
}

func (p *Parser) parseLoopExpr() (Expr, error) {
	p.tokens.next()

	name, err := p.expect(TokenIdent, "identifier after 'for'")
	if err != nil {
		return nil, err
	}
	if err := p.expectAssign("after 'for'"); err != nil {
		return nil, err
	}

	start, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	var step Expr = &LiteralExpr{Value: 1}
	if _, ok := p.accept(TokenComma); ok {
		step, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}

	tok, ok := p.peek()
	if !ok {
		return nil, ErrIncomplete
	}
	var end Expr = &LiteralExpr{Value: 0}
	if tok.Kind != TokenIn {
		end, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(TokenIn, "'in' after 'for'"); err != nil {
		return nil, err
	}
	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	return &LoopExpr{
		Var:   name.Literal,
		Start: start,
		End:   end,
		Step:  step,
		Body:  body,
	}, nil
}

func (p *Parser) parseLetExpr() (Expr, error) {
	p.tokens.next()

	var bindings []Binding
	for {
		name, err := p.expect(TokenIdent, "identifier list after 'let'")
		if err != nil {
			return nil, err
		}

		var value Expr = &LiteralExpr{Value: 1}
		if tok, ok := p.peek(); ok && tok.Kind == TokenOperator {
			if err := p.expectAssign("in variable initialization"); err != nil {
				return nil, err
			}
			value, err = p.parseExpr()
			if err != nil {
				return nil, err
			}
		}
		bindings = append(bindings, Binding{Name: name.Literal, Init: value})

		if _, ok := p.accept(TokenComma); !ok {
			break
		}
	}

	if _, err := p.expect(TokenIn, "'in' after 'let'"); err != nil {
		return nil, err
	}
	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &LetExpr{Bindings: bindings, Body: body}, nil
}
