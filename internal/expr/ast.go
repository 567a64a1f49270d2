package expr

import (
	"fmt"
	"strconv"
	"strings"
)

// NodeKind tags the variant held by a Node.
type NodeKind uint8

const (
	LiteralNode NodeKind = iota + 1
	ParamNode
	BinaryNode
)

// Node is one vertex of the expression tree. Only the fields of its Kind
// are meaningful:
//
//	LiteralNode: Value
//	ParamNode:   Param, Arg, Site
//	BinaryNode:  Op, Left, Right
type Node struct {
	Kind NodeKind

	Value int

	Param Param
	Arg   int
	// Site is the ordinal of this parameter leaf within the tree, used to
	// give each random leaf its own draw.
	Site int

	Op          Operator
	Left, Right *Node
}

// String prints the node fully parenthesized.
func (n *Node) String() string {
	if n == nil {
		return ""
	}
	switch n.Kind {
	case LiteralNode:
		return strconv.Itoa(n.Value)
	case ParamNode:
		if n.Param.TakesArg() {
			return fmt.Sprintf("%c%d", n.Param, n.Arg)
		}
		return n.Param.String()
	case BinaryNode:
		return fmt.Sprintf("(%s %c %s)", n.Left, n.Op, n.Right)
	}
	return "?"
}

// Equal reports structural equality. Sites are ignored.
func (n *Node) Equal(o *Node) bool {
	if n == nil || o == nil {
		return n == o
	}
	if n.Kind != o.Kind {
		return false
	}
	switch n.Kind {
	case LiteralNode:
		return n.Value == o.Value
	case ParamNode:
		return n.Param == o.Param && n.Arg == o.Arg
	case BinaryNode:
		return n.Op == o.Op && n.Left.Equal(o.Left) && n.Right.Equal(o.Right)
	}
	return false
}

// Tree is a compiled expression. It is read-only after Compile and safe to
// evaluate from many goroutines.
type Tree struct {
	Root   *Node
	Source string
	Tokens []Token

	leaves int
}

// Leaves returns the number of parameter leaves in the tree.
func (t *Tree) Leaves() int { return t.leaves }

// Equal reports whether both trees have the same structure.
func (t *Tree) Equal(o *Tree) bool {
	if t == nil || o == nil {
		return t == o
	}
	return t.Root.Equal(o.Root)
}

func (t *Tree) String() string { return t.Root.String() }

// Walk visits every node depth-first, left before right.
func (t *Tree) Walk(fn func(*Node)) {
	var walk func(*Node)
	walk = func(n *Node) {
		if n == nil {
			return
		}
		fn(n)
		walk(n.Left)
		walk(n.Right)
	}
	walk(t.Root)
}

// Uses reports whether any leaf of the tree is the parameter p.
func (t *Tree) Uses(p Param) bool {
	found := false
	t.Walk(func(n *Node) {
		if n.Kind == ParamNode && n.Param == p {
			found = true
		}
	})
	return found
}

// Describe lists the tokens one per line in their verbose form.
func (t *Tree) Describe() string {
	var sb strings.Builder
	for _, tok := range t.Tokens {
		if tok.Kind == TokenEOF {
			continue
		}
		sb.WriteString(tok.Describe())
		sb.WriteByte('\n')
	}
	return sb.String()
}
