// Package pipeline turns a run configuration into output files: it compiles
// the expression chain, decodes the input (every frame of an animated GIF),
// applies the passes, and writes the result.
//
// A chain of expressions runs in order. Each pass's output becomes the saved
// image (s) of the next pass and, unless Feedback is set, its source too. The
// whole chain repeats Iterations times. Every frame replays the same seeds, so
// animations glitch consistently.
//
// Watcher re-runs the pipeline when the input image, expression file, or
// config file changes.
package pipeline
