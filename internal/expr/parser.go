package expr

// Compile lexes and parses text into a Tree.
func Compile(text string) (*Tree, error) {
	tokens, err := Lex(text)
	if err != nil {
		return nil, err
	}
	tree, err := Parse(tokens)
	if err != nil {
		return nil, err
	}
	tree.Source = text
	return tree, nil
}

// MustCompile is like Compile but panics on error. Intended for tests and
// package-level expressions.
func MustCompile(text string) *Tree {
	tree, err := Compile(text)
	if err != nil {
		panic(err)
	}
	return tree
}

// Parse builds a Tree from the output of Lex using precedence climbing.
func Parse(tokens []Token) (*Tree, error) {
	if len(tokens) == 0 || tokens[len(tokens)-1].Kind != TokenEOF {
		tokens = append(tokens, Token{Kind: TokenEOF})
	}
	p := &parser{tokens: tokens}

	if p.peek().Kind == TokenEOF {
		return nil, parseError(p.peek(), 0, "empty expression")
	}

	root, err := p.parseExpr(1)
	if err != nil {
		return nil, err
	}

	switch tok := p.peek(); tok.Kind {
	case TokenEOF:
	case TokenRParen:
		return nil, parseError(tok, p.pos, "unmatched ')'")
	default:
		return nil, parseError(tok, p.pos, "unexpected %s %q after complete expression", tok.Kind, tok)
	}

	return &Tree{Root: root, Tokens: tokens, leaves: p.leaves}, nil
}

type parser struct {
	tokens []Token
	pos    int
	leaves int
}

func (p *parser) peek() Token { return p.tokens[p.pos] }

func (p *parser) next() Token {
	tok := p.tokens[p.pos]
	if tok.Kind != TokenEOF {
		p.pos++
	}
	return tok
}

// parseExpr parses atoms joined by operators binding at least minPrec.
func (p *parser) parseExpr(minPrec int) (*Node, error) {
	left, err := p.parseAtom()
	if err != nil {
		return nil, err
	}

	for {
		tok := p.peek()
		if tok.Kind != TokenOperator {
			return left, nil
		}
		prec := tok.Op.Precedence()
		if prec < minPrec {
			return left, nil
		}
		p.next()

		// prec+1 keeps equal-precedence operators left-associative.
		right, err := p.parseExpr(prec + 1)
		if err != nil {
			return nil, err
		}
		left = &Node{Kind: BinaryNode, Op: tok.Op, Left: left, Right: right}
	}
}

func (p *parser) parseAtom() (*Node, error) {
	index := p.pos
	tok := p.next()

	switch tok.Kind {
	case TokenNumber:
		return &Node{Kind: LiteralNode, Value: tok.Value}, nil

	case TokenParam:
		arg := tok.Param.DefaultArg()
		if tok.HasArg {
			arg = tok.Arg
		}
		n := &Node{Kind: ParamNode, Param: tok.Param, Arg: arg, Site: p.leaves}
		p.leaves++
		return n, nil

	case TokenLParen:
		if p.peek().Kind == TokenRParen {
			return nil, parseError(p.peek(), p.pos, "empty sub-expression")
		}
		inner, err := p.parseExpr(1)
		if err != nil {
			return nil, err
		}
		if p.peek().Kind != TokenRParen {
			if p.peek().Kind == TokenEOF {
				return nil, parseError(tok, index, "unmatched '('")
			}
			return nil, parseError(p.peek(), p.pos, "expected ')' but found %s %q", p.peek().Kind, p.peek())
		}
		p.next()
		return inner, nil

	case TokenRParen:
		return nil, parseError(tok, index, "missing operand before ')'")

	case TokenOperator:
		return nil, parseError(tok, index, "missing operand before %q", tok)
	}

	return nil, parseError(tok, index, "missing operand at end of expression")
}
