// Package glitch evaluates compiled glitch expressions over RGB images.
//
// Every output byte is produced by evaluating the expression tree for one
// (pixel, channel) pair against a Context that holds the frozen source image,
// the frozen saved image of an earlier pass, and the run seed. Evaluations
// never observe each other, so a Transformer can split rows across goroutines
// and still produce exactly the image a single goroutine would.
//
// # Arithmetic
//
// All values are bytes and every operator saturates into [0, 255]. Division
// and modulo by zero give 0, shifts of 8 or more give 0, and a # b saturates
// at 255.
//
// # Randomness
//
// Random parameters (N, r, t, g) draw from a PCG generator seeded from the
// run seed, the coordinate, the channel, and a per-parameter draw site. Two N
// leaves in one expression draw independently; two r8 leaves agree.
//
// # Example
//
//	tree, err := expr.Compile("c ^ r12")
//	if err != nil {
//	    return err
//	}
//	out, err := glitch.NewTransformer(glitch.WithWorkers(4)).Apply(tree, src, nil, seed)
package glitch
