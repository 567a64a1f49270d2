package pipeline

import (
	"os"
	"path/filepath"
	"regexp"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/ironsheep/image-glitch/internal/imaging"
)

const (
	// ConfigEnv names an alternative config file when -config is not given.
	ConfigEnv = "GLITCH_CONFIG"

	// DefaultConfigFile is looked for in the working directory last.
	DefaultConfigFile = "glitch.yaml"

	// DefaultOutputName is the base name written when no output path is
	// configured; the extension follows the input format.
	DefaultOutputName = "output"
)

// DefaultOutput returns the output path used for an input decoded as format.
// JPEG and GIF inputs keep their format; WebP and everything else become PNG.
func DefaultOutput(format string) string {
	switch format {
	case "jpeg":
		return DefaultOutputName + ".jpg"
	case "gif":
		return DefaultOutputName + ".gif"
	}
	return DefaultOutputName + ".png"
}

// Config describes one glitch run.
type Config struct {
	Input          string         `yaml:"input"`
	Output         string         `yaml:"output"`
	Expressions    []string       `yaml:"expressions"`
	ExpressionFile string         `yaml:"expression_file"`
	Seed           *uint64        `yaml:"seed"` // nil picks a wall-clock seed
	Workers        int            `yaml:"workers"`
	Iterations     int            `yaml:"iterations"`
	Feedback       bool           `yaml:"feedback"`
	Region         imaging.Region `yaml:"region"`
	Verbose        bool           `yaml:"verbose"`

	// NoState gives every random leaf (r, t, g) its own draw per pixel.
	NoState bool `yaml:"no_state"`

	// Open hands the written output to the desktop's default viewer.
	Open bool `yaml:"open"`

	// Path is the file the config was read from, empty for defaults.
	Path string `yaml:"-"`
}

// Defaults returns a config with every optional field filled in.
func Defaults() *Config {
	return &Config{
		Iterations: 1,
	}
}

// Load reads the config file named by path, GLITCH_CONFIG, or ./glitch.yaml,
// in that order. An explicit path or env var that does not exist is an error;
// a missing ./glitch.yaml yields Defaults().
func Load(path string, getenv func(string) string) (*Config, error) {
	resolved, err := resolveConfigPath(path, getenv)
	if err != nil {
		return nil, err
	}
	if resolved == "" {
		return Defaults(), nil
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}
	cfg, err := Parse(data, getenv)
	if err != nil {
		return nil, errors.Wrapf(err, "config %s", resolved)
	}
	cfg.Path = resolved

	// Relative paths inside the file are relative to the file.
	base := filepath.Dir(resolved)
	cfg.Input = relativeTo(base, cfg.Input)
	cfg.Output = relativeTo(base, cfg.Output)
	cfg.ExpressionFile = relativeTo(base, cfg.ExpressionFile)
	return cfg, nil
}

// Parse decodes YAML config data on top of Defaults. ${VAR} and
// ${VAR:-default} references are expanded first.
func Parse(data []byte, getenv func(string) string) (*Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	cfg := Defaults()
	if err := yaml.Unmarshal([]byte(interpolateEnv(string(data), getenv)), cfg); err != nil {
		return nil, errors.Wrap(err, "parsing config")
	}
	return cfg, nil
}

func resolveConfigPath(explicit string, getenv func(string) string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", errors.Wrap(err, "config file")
		}
		return explicit, nil
	}

	if getenv == nil {
		getenv = os.Getenv
	}
	if env := getenv(ConfigEnv); env != "" {
		if _, err := os.Stat(env); err != nil {
			return "", errors.Wrapf(err, "config file from %s", ConfigEnv)
		}
		return env, nil
	}

	if _, err := os.Stat(DefaultConfigFile); err == nil {
		return DefaultConfigFile, nil
	}
	return "", nil
}

var envPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func interpolateEnv(s string, getenv func(string) string) string {
	return envPattern.ReplaceAllStringFunc(s, func(match string) string {
		m := envPattern.FindStringSubmatch(match)
		if v := getenv(m[1]); v != "" {
			return v
		}
		return m[2]
	})
}

func relativeTo(base, path string) string {
	if path == "" || filepath.IsAbs(path) || imaging.IsURL(path) {
		return path
	}
	return filepath.Join(base, path)
}

// Validate reports configuration that can never produce a run.
func (c *Config) Validate() error {
	if c.Input == "" {
		return errors.New("no input image")
	}
	if len(c.Expressions) == 0 && c.ExpressionFile == "" {
		return errors.New("no expressions")
	}
	if c.Iterations < 1 {
		return errors.Errorf("iterations must be at least 1, got %d", c.Iterations)
	}
	if c.Workers < 0 {
		return errors.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.Output != "" {
		if err := imaging.CheckOutput(c.Output); err != nil {
			return err
		}
	}
	return nil
}

// SetSeed pins the seed.
func (c *Config) SetSeed(seed uint64) { c.Seed = &seed }
