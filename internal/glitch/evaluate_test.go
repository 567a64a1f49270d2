package glitch

import (
	"testing"

	"github.com/ironsheep/image-glitch/internal/expr"
)

func TestOperate(t *testing.T) {
	tests := []struct {
		name string
		op   expr.Operator
		l, r uint8
		want uint8
	}{
		{"add", expr.OpAdd, 100, 55, 155},
		{"add saturates", expr.OpAdd, 200, 200, 255},
		{"sub", expr.OpSub, 200, 10, 190},
		{"sub saturates", expr.OpSub, 10, 200, 0},
		{"mul", expr.OpMul, 12, 10, 120},
		{"mul saturates", expr.OpMul, 16, 16, 255},
		{"div", expr.OpDiv, 200, 3, 66},
		{"div by zero", expr.OpDiv, 5, 0, 0},
		{"mod", expr.OpMod, 200, 7, 4},
		{"mod by zero", expr.OpMod, 5, 0, 0},
		{"pow", expr.OpPow, 2, 7, 128},
		{"pow saturates", expr.OpPow, 2, 8, 255},
		{"pow large exponent", expr.OpPow, 3, 255, 255},
		{"pow zero exponent", expr.OpPow, 9, 0, 1},
		{"pow zero base", expr.OpPow, 0, 5, 0},
		{"pow zero zero", expr.OpPow, 0, 0, 1},
		{"pow one base", expr.OpPow, 1, 200, 1},
		{"and", expr.OpAnd, 0xF0, 0x3C, 0x30},
		{"or", expr.OpOr, 0xF0, 0x0F, 0xFF},
		{"xor", expr.OpXor, 0xFF, 0x0F, 0xF0},
		{"and not", expr.OpAndNot, 0xFF, 0x0F, 0xF0},
		{"shl", expr.OpShl, 3, 2, 12},
		{"shl masks", expr.OpShl, 0xFF, 4, 0xF0},
		{"shl wide", expr.OpShl, 1, 8, 0},
		{"shr", expr.OpShr, 128, 3, 16},
		{"shr wide", expr.OpShr, 255, 9, 0},
		{"greater true", expr.OpGreater, 5, 4, 255},
		{"greater equal", expr.OpGreater, 4, 4, 0},
		{"greater false", expr.OpGreater, 3, 4, 0},
		{"weight full", expr.OpWeight, 200, 255, 200},
		{"weight half", expr.OpWeight, 200, 128, 100},
		{"weight zero", expr.OpWeight, 200, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Operate(tt.op, tt.l, tt.r); got != tt.want {
				t.Errorf("%d %s %d: got %d, want %d", tt.l, tt.op, tt.r, got, tt.want)
			}
		})
	}
}

// evalAt compiles text and evaluates it at one pixel and channel.
func evalAt(t *testing.T, text string, src *Image, x, y, ch int) uint8 {
	t.Helper()
	tree, err := expr.Compile(text)
	if err != nil {
		t.Fatalf("Compile(%q) failed: %v", text, err)
	}
	ctx := NewContext(src, nil, 1)
	ctx.Move(x, y, ch)
	return Evaluate(tree.Root, ctx)
}

func TestEvaluate_Literals(t *testing.T) {
	src := NewImage(1, 1)
	tests := []struct {
		text string
		want uint8
	}{
		{"1+2*3", 7},
		{"1+(2*3)", 7},
		{"(1+2)*3", 9},
		{"256", 255},
		{"1000-900", 0},
		{"5/0", 0},
		{"5%0", 0},
		{"200+200", 255},
		{"10-200", 0},
		{"10-20+15", 15},
		{"2#3#2", 64},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := evalAt(t, tt.text, src, 0, 0, Red); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestEvaluate_ChannelConstants(t *testing.T) {
	src := NewImage(1, 1)
	tests := []struct {
		text string
		want Pixel
	}{
		{"R", Pixel{255, 0, 0}},
		{"G", Pixel{0, 255, 0}},
		{"B", Pixel{0, 0, 255}},
		{"R40", Pixel{40, 0, 0}},
		{"B999", Pixel{0, 0, 255}},
		{"R+G+B", Pixel{255, 255, 255}},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			var got Pixel
			for ch := 0; ch < Channels; ch++ {
				got[ch] = evalAt(t, tt.text, src, 0, 0, ch)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluate_SourceParams(t *testing.T) {
	src := NewImage(2, 1)
	src.SetPixel(0, 0, Pixel{100, 50, 10})
	src.SetPixel(1, 0, Pixel{0, 0, 0})

	tests := []struct {
		text string
		ch   int
		want uint8
	}{
		{"c", Red, 100},
		{"c", Blue, 10},
		{"I", Red, 155},
		{"Y", Red, 60},
		{"Y", Blue, 60},
		{"s", Red, 0},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := evalAt(t, tt.text, src, 0, 0, tt.ch); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestEvaluate_Saved(t *testing.T) {
	src := NewImage(1, 1)
	saved := solid(1, 1, Pixel{7, 8, 9})

	tree := expr.MustCompile("s + 1")
	ctx := NewContext(src, saved, 0)
	ctx.Move(0, 0, Blue)
	if got := Evaluate(tree.Root, ctx); got != 10 {
		t.Errorf("got %d, want 10", got)
	}
}

func TestEvaluate_Coordinates(t *testing.T) {
	src := NewImage(11, 3)
	tests := []struct {
		text string
		x, y int
		want uint8
	}{
		{"x", 0, 0, 0},
		{"x", 10, 0, 255},
		{"x", 5, 0, 127},
		{"y", 0, 1, 127},
		{"y", 0, 2, 255},
	}

	for _, tt := range tests {
		if got := evalAt(t, tt.text, src, tt.x, tt.y, Red); got != tt.want {
			t.Errorf("%s at (%d,%d): got %d, want %d", tt.text, tt.x, tt.y, got, tt.want)
		}
	}

	single := NewImage(1, 1)
	if got := evalAt(t, "x+y", single, 0, 0, Red); got != 0 {
		t.Errorf("x+y on a 1x1 image: got %d, want 0", got)
	}
}

func TestEvaluate_Brightness(t *testing.T) {
	src := NewImage(1, 1)
	src.SetPixel(0, 0, Pixel{200, 100, 50})

	for ch := 0; ch < Channels; ch++ {
		if got := evalAt(t, "V0", src, 0, 0, ch); got != 0 {
			t.Errorf("V0 channel %d: got %d, want 0", ch, got)
		}
		full := int(evalAt(t, "V", src, 0, 0, ch))
		want := int(src.Value(0, 0, ch))
		if full < want-1 || full > want+1 {
			t.Errorf("V channel %d: got %d, want %d", ch, full, want)
		}
	}

	// V128 roughly halves the largest channel.
	if got := evalAt(t, "V128", src, 0, 0, Red); got < 99 || got > 101 {
		t.Errorf("V128 red: got %d, want about 100", got)
	}
}

func TestEvaluate_NoiseLeavesDrawIndependently(t *testing.T) {
	src := NewImage(16, 16)
	tree := expr.MustCompile("N ^ N")
	ctx := NewContext(src, nil, 42)

	nonzero := false
	for y := 0; y < src.Height && !nonzero; y++ {
		for x := 0; x < src.Width; x++ {
			ctx.Move(x, y, Red)
			if Evaluate(tree.Root, ctx) != 0 {
				nonzero = true
				break
			}
		}
	}
	if !nonzero {
		t.Error("two N leaves should not always draw the same value")
	}

	same := expr.MustCompile("r ^ r")
	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			ctx.Move(x, y, Green)
			if got := Evaluate(same.Root, ctx); got != 0 {
				t.Fatalf("r ^ r at (%d,%d): got %d, want 0", x, y, got)
			}
		}
	}
}
