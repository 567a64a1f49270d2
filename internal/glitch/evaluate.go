package glitch

import (
	"github.com/ironsheep/image-glitch/internal/expr"
)

// saturate clamps an integer into [0, 255].
func saturate(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// Evaluate computes the value of n for the pixel and channel ctx points at.
// The left operand is evaluated before the right one.
func Evaluate(n *expr.Node, ctx *Context) uint8 {
	switch n.Kind {
	case expr.LiteralNode:
		return saturate(n.Value)
	case expr.ParamNode:
		return ctx.param(n)
	case expr.BinaryNode:
		l := Evaluate(n.Left, ctx)
		r := Evaluate(n.Right, ctx)
		return Operate(n.Op, l, r)
	}
	return 0
}

// Operate applies op to two 8-bit operands. Every result is defined: there
// is no overflow, and division or modulo by zero yields 0.
func Operate(op expr.Operator, l, r uint8) uint8 {
	a, b := int(l), int(r)
	switch op {
	case expr.OpAdd:
		return saturate(a + b)
	case expr.OpSub:
		return saturate(a - b)
	case expr.OpMul:
		return saturate(a * b)
	case expr.OpDiv:
		if b == 0 {
			return 0
		}
		return uint8(a / b)
	case expr.OpMod:
		if b == 0 {
			return 0
		}
		return uint8(a % b)
	case expr.OpPow:
		return power(a, b)
	case expr.OpAnd:
		return l & r
	case expr.OpOr:
		return l | r
	case expr.OpXor:
		return l ^ r
	case expr.OpAndNot:
		return l &^ r
	case expr.OpShl:
		if b >= 8 {
			return 0
		}
		return uint8(a << b)
	case expr.OpShr:
		return l >> r
	case expr.OpGreater:
		if l > r {
			return 255
		}
		return 0
	case expr.OpWeight:
		return uint8(a * b / 255)
	}
	return 0
}

// power returns base**exp saturated at 255, with 0**0 == 1.
func power(base, exp int) uint8 {
	switch {
	case exp == 0 || base == 1:
		return 1
	case base == 0:
		return 0
	}
	result := 1
	for i := 0; i < exp; i++ {
		result *= base
		if result > 255 {
			return 255
		}
	}
	return uint8(result)
}

func (c *Context) param(n *expr.Node) uint8 {
	switch n.Param {
	case expr.ParamCurrent:
		return c.current()
	case expr.ParamBlur:
		return c.blur()
	case expr.ParamFlipH:
		return c.flipH()
	case expr.ParamFlipV:
		return c.flipV()
	case expr.ParamFlipD:
		return c.flipD()
	case expr.ParamLuma:
		return c.luma()
	case expr.ParamNoise:
		return uint8(c.random(siteNoise | uint64(n.Site)))
	case expr.ParamRed:
		return c.constant(Red, n.Arg)
	case expr.ParamGreen:
		return c.constant(Green, n.Arg)
	case expr.ParamBlue:
		return c.constant(Blue, n.Arg)
	case expr.ParamSaved:
		return c.saved()
	case expr.ParamNeighbor:
		return c.neighbor(n.Arg, n.Site)
	case expr.ParamNeighbor16:
		return c.neighbor(16, n.Site)
	case expr.ParamAnywhere:
		return c.anywhere(n.Site)
	case expr.ParamEdge:
		return c.edge()
	case expr.ParamX:
		return scaled(c.X, c.Source.Width)
	case expr.ParamY:
		return scaled(c.Y, c.Source.Height)
	case expr.ParamMax:
		_, hi := c.extremes()
		return hi
	case expr.ParamMin:
		lo, _ := c.extremes()
		return lo
	case expr.ParamBrightness:
		return c.brightness(saturate(n.Arg))
	case expr.ParamInvert:
		return 255 - c.current()
	case expr.ParamSmooth:
		return c.smooth(n.Arg)
	}
	return 0
}

func (c *Context) constant(ch, magnitude int) uint8 {
	if c.Channel != ch {
		return 0
	}
	return saturate(magnitude)
}
