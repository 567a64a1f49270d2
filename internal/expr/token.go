package expr

import (
	"fmt"
	"strconv"
)

// Operator is a binary operator, stored as its source symbol.
type Operator byte

const (
	OpPow     Operator = '#'
	OpMul     Operator = '*'
	OpDiv     Operator = '/'
	OpMod     Operator = '%'
	OpAdd     Operator = '+'
	OpSub     Operator = '-'
	OpShl     Operator = '<'
	OpShr     Operator = '>'
	OpAnd     Operator = '&'
	OpAndNot  Operator = ':'
	OpXor     Operator = '^'
	OpOr      Operator = '|'
	OpGreater Operator = '?'
	OpWeight  Operator = '@'
)

// Precedence returns the binding power of op; higher binds tighter.
// Unknown operators return 0.
func (op Operator) Precedence() int {
	switch op {
	case OpPow:
		return 8
	case OpMul, OpDiv, OpMod:
		return 7
	case OpAdd, OpSub:
		return 6
	case OpShl, OpShr:
		return 5
	case OpAnd, OpAndNot:
		return 4
	case OpXor:
		return 3
	case OpOr:
		return 2
	case OpGreater, OpWeight:
		return 1
	}
	return 0
}

// Describe returns a human-readable operator name.
func (op Operator) Describe() string {
	switch op {
	case OpPow:
		return "Power"
	case OpMul:
		return "Multiplication"
	case OpDiv:
		return "Division"
	case OpMod:
		return "Modulus"
	case OpAdd:
		return "Addition"
	case OpSub:
		return "Subtraction"
	case OpShl:
		return "Bitwise Left Shift"
	case OpShr:
		return "Bitwise Right Shift"
	case OpAnd:
		return "Bitwise AND"
	case OpAndNot:
		return "Bitwise AND NOT"
	case OpXor:
		return "Bitwise XOR"
	case OpOr:
		return "Bitwise OR"
	case OpGreater:
		return "Greater"
	case OpWeight:
		return "Weight"
	}
	return "Unknown"
}

func (op Operator) String() string { return string(op) }

// Operators lists every operator, tightest binding first.
var Operators = []Operator{
	OpPow, OpMul, OpDiv, OpMod, OpAdd, OpSub, OpShl, OpShr,
	OpAnd, OpAndNot, OpXor, OpOr, OpGreater, OpWeight,
}

// Param is a parameter letter.
type Param byte

const (
	ParamCurrent    Param = 'c'
	ParamBlur       Param = 'b'
	ParamFlipH      Param = 'h'
	ParamFlipV      Param = 'v'
	ParamFlipD      Param = 'd'
	ParamLuma       Param = 'Y'
	ParamNoise      Param = 'N'
	ParamRed        Param = 'R'
	ParamGreen      Param = 'G'
	ParamBlue       Param = 'B'
	ParamSaved      Param = 's'
	ParamNeighbor   Param = 'r'
	ParamNeighbor16 Param = 't'
	ParamAnywhere   Param = 'g'
	ParamEdge       Param = 'e'
	ParamX          Param = 'x'
	ParamY          Param = 'y'
	ParamMax        Param = 'H'
	ParamMin        Param = 'L'
	ParamBrightness Param = 'V'
	ParamInvert     Param = 'I'
	ParamSmooth     Param = 'u'
)

type paramInfo struct {
	describe   string
	takesArg   bool
	defaultArg int
}

var params = map[Param]paramInfo{
	ParamCurrent:    {describe: "Current Pixel Value"},
	ParamBlur:       {describe: "Blurred"},
	ParamFlipH:      {describe: "Horizontal"},
	ParamFlipV:      {describe: "Vertical"},
	ParamFlipD:      {describe: "Diagonal"},
	ParamLuma:       {describe: "Luminosity"},
	ParamNoise:      {describe: "Noise"},
	ParamRed:        {describe: "Red", takesArg: true, defaultArg: 255},
	ParamGreen:      {describe: "Green", takesArg: true, defaultArg: 255},
	ParamBlue:       {describe: "Blue", takesArg: true, defaultArg: 255},
	ParamSaved:      {describe: "Previous Saved Pixel Value"},
	ParamNeighbor:   {describe: "Random Neighbor", takesArg: true, defaultArg: 8},
	ParamNeighbor16: {describe: "Random Neighbor of the 16 Nearest"},
	ParamAnywhere:   {describe: "Random Color in the Entire Image"},
	ParamEdge:       {describe: "Edge"},
	ParamX:          {describe: "X Coordinate"},
	ParamY:          {describe: "Y Coordinate"},
	ParamMax:        {describe: "Highest Value"},
	ParamMin:        {describe: "Lowest Value"},
	ParamBrightness: {describe: "Brightness", takesArg: true, defaultArg: 255},
	ParamInvert:     {describe: "Invert"},
	ParamSmooth:     {describe: "Smoothed", takesArg: true, defaultArg: 2},
}

// Params lists the parameter alphabet in a stable order.
var Params = []Param{
	ParamCurrent, ParamBlur, ParamFlipH, ParamFlipV, ParamFlipD, ParamLuma,
	ParamNoise, ParamRed, ParamGreen, ParamBlue, ParamSaved, ParamNeighbor,
	ParamNeighbor16, ParamAnywhere, ParamEdge, ParamX, ParamY, ParamMax,
	ParamMin, ParamBrightness, ParamInvert, ParamSmooth,
}

// Valid reports whether p belongs to the parameter alphabet.
func (p Param) Valid() bool {
	_, ok := params[p]
	return ok
}

// TakesArg reports whether p accepts a numeric suffix.
func (p Param) TakesArg() bool { return params[p].takesArg }

// DefaultArg is the suffix value used when none is written.
func (p Param) DefaultArg() int { return params[p].defaultArg }

// Describe returns a human-readable parameter name.
func (p Param) Describe() string {
	if info, ok := params[p]; ok {
		return info.describe
	}
	return "Unknown"
}

func (p Param) String() string { return string(p) }

// TokenKind identifies the class of a Token.
type TokenKind uint8

const (
	TokenEOF TokenKind = iota
	TokenNumber
	TokenOperator
	TokenParam
	TokenLParen
	TokenRParen
)

func (k TokenKind) String() string {
	switch k {
	case TokenEOF:
		return "end of expression"
	case TokenNumber:
		return "number"
	case TokenOperator:
		return "operator"
	case TokenParam:
		return "parameter"
	case TokenLParen:
		return "'('"
	case TokenRParen:
		return "')'"
	}
	return "unknown"
}

// Token is one lexical unit of an expression.
type Token struct {
	Kind   TokenKind
	Offset int // byte offset in the source text

	Value  int      // TokenNumber
	Op     Operator // TokenOperator
	Param  Param    // TokenParam
	HasArg bool     // TokenParam: a numeric suffix was written
	Arg    int      // TokenParam: the suffix value
}

// String renders the token as it would appear in source.
func (t Token) String() string {
	switch t.Kind {
	case TokenNumber:
		return strconv.Itoa(t.Value)
	case TokenOperator:
		return t.Op.String()
	case TokenParam:
		if t.HasArg {
			return fmt.Sprintf("%c%d", t.Param, t.Arg)
		}
		return t.Param.String()
	case TokenLParen:
		return "("
	case TokenRParen:
		return ")"
	}
	return "EOF"
}

// Describe is the verbose listing form: "r16 -> Random Neighbor (16)".
func (t Token) Describe() string {
	switch t.Kind {
	case TokenOperator:
		return fmt.Sprintf("%s -> %s", t, t.Op.Describe())
	case TokenParam:
		if t.Param.TakesArg() {
			arg := t.Param.DefaultArg()
			if t.HasArg {
				arg = t.Arg
			}
			return fmt.Sprintf("%s -> %s (%d)", t, t.Param.Describe(), arg)
		}
		return fmt.Sprintf("%s -> %s", t, t.Param.Describe())
	case TokenNumber:
		return fmt.Sprintf("%s -> Number", t)
	}
	return t.String()
}
