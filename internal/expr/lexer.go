package expr

import (
	"strconv"

	"github.com/alecthomas/participle/v2/lexer"
)

// Rules are tried in order; Invalid catches any character the others reject
// so that every failure is reported with its own offset.
var exprLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Number", Pattern: `[0-9]+`},
	{Name: "Param", Pattern: `[A-Za-z][0-9]*`},
	{Name: "Operator", Pattern: `[-+*/%#&|:^<>?@]`},
	{Name: "Paren", Pattern: `[()]`},
	{Name: "Invalid", Pattern: `.`},
})

var (
	symWhitespace = exprLexer.Symbols()["Whitespace"]
	symNumber     = exprLexer.Symbols()["Number"]
	symParam      = exprLexer.Symbols()["Param"]
	symOperator   = exprLexer.Symbols()["Operator"]
	symParen      = exprLexer.Symbols()["Paren"]
)

// Lex splits text into tokens. The returned slice always ends with a
// TokenEOF whose offset is len(text).
func Lex(text string) ([]Token, error) {
	lex, err := exprLexer.LexString("", text)
	if err != nil {
		return nil, lexError(0, "%v", err)
	}

	var tokens []Token
	for {
		lt, err := lex.Next()
		if err != nil {
			return nil, lexError(len(text), "%v", err)
		}
		if lt.EOF() {
			break
		}

		offset := lt.Pos.Offset
		switch lt.Type {
		case symWhitespace:
			continue

		case symNumber:
			n, err := strconv.Atoi(lt.Value)
			if err != nil {
				return nil, lexError(offset, "number %q is too large", lt.Value)
			}
			tokens = append(tokens, Token{Kind: TokenNumber, Offset: offset, Value: n})

		case symParam:
			tok, err := lexParam(lt.Value, offset)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)

		case symOperator:
			tokens = append(tokens, Token{Kind: TokenOperator, Offset: offset, Op: Operator(lt.Value[0])})

		case symParen:
			kind := TokenLParen
			if lt.Value == ")" {
				kind = TokenRParen
			}
			tokens = append(tokens, Token{Kind: kind, Offset: offset})

		default:
			return nil, lexError(offset, "invalid character %q", lt.Value)
		}
	}

	return append(tokens, Token{Kind: TokenEOF, Offset: len(text)}), nil
}

// lexParam validates a letter and its optional numeric suffix.
func lexParam(value string, offset int) (Token, error) {
	p := Param(value[0])
	if !p.Valid() {
		return Token{}, lexError(offset, "unknown parameter %q", value[:1])
	}

	tok := Token{Kind: TokenParam, Offset: offset, Param: p}
	if len(value) == 1 {
		return tok, nil
	}

	if !p.TakesArg() {
		return Token{}, lexError(offset+1, "malformed numeric suffix: parameter %q takes no suffix", value[:1])
	}
	arg, err := strconv.Atoi(value[1:])
	if err != nil {
		return Token{}, lexError(offset+1, "malformed numeric suffix %q", value[1:])
	}
	tok.HasArg = true
	tok.Arg = arg
	return tok, nil
}
