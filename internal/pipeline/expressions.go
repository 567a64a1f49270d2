package pipeline

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/ironsheep/image-glitch/internal/expr"
)

// ReadExpressions returns one expression per line of r. Blank lines and lines
// starting with '#' are skipped.
func ReadExpressions(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "reading expressions")
	}
	return out, nil
}

// LoadExpressionFile reads an expression file from disk.
func LoadExpressionFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening expression file")
	}
	defer f.Close()
	return ReadExpressions(f)
}

// AllExpressions gathers the inline expressions followed by those of the
// expression file.
func (c *Config) AllExpressions() ([]string, error) {
	exprs := append([]string(nil), c.Expressions...)
	if c.ExpressionFile != "" {
		more, err := LoadExpressionFile(c.ExpressionFile)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, more...)
	}
	if len(exprs) == 0 {
		return nil, errors.New("no expressions")
	}
	return exprs, nil
}

// CompileAll compiles every expression, failing on the first error with its
// position in the chain.
func CompileAll(exprs []string) ([]*expr.Tree, error) {
	trees := make([]*expr.Tree, 0, len(exprs))
	for i, text := range exprs {
		tree, err := expr.Compile(text)
		if err != nil {
			return nil, errors.Wrapf(err, "expression %d %q", i+1, text)
		}
		trees = append(trees, tree)
	}
	return trees, nil
}
