// Package expr compiles glitch expressions into an immutable expression tree.
//
// A glitch expression is a tiny infix language evaluated once for every color
// channel of every pixel. Operands are 8-bit values: integer literals and
// single-letter parameters that sample the source image in some way.
//
// # Grammar
//
//	expr   = atom { op atom }
//	atom   = number | param [ number ] | "(" expr ")"
//
// All binary operators are left-associative. Precedence, tightest first:
//
//	#          power
//	* / %      multiply, divide, modulo
//	+ -        add, subtract
//	< >        shift left, shift right
//	& :        and, and-not
//	^          xor
//	|          or
//	? @        greater-than, weight
//
// # Parameters
//
// Parameters are single letters; some accept a numeric suffix written without
// a separating space (R128, r24, u4). See Param for the full alphabet.
//
// # Errors
//
// Compile reports failures as *Error. Use errors.Is with ErrLex or ErrParse to
// tell lexical failures (bad characters, bad suffixes) from grammatical ones
// (missing operands, unbalanced parentheses, trailing input).
package expr
