// Package palette maps category labels to display colours.
package palette

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// Palette is the YAML colour table for category labels.
type Palette struct {
	DefaultColor string            `json:"defaultColor" yaml:"default_color"`
	Labels       map[string]string `json:"labels" yaml:"labels"`
}

// Default returns the built-in palette.
func Default() *Palette {
	p, err := Parse(bytes.NewReader(defaultYAML))
	if err != nil {
		panic(fmt.Sprintf("palette: embedded default is invalid: %v", err))
	}
	return p
}

// Load reads a palette file. An empty path yields the built-in palette.
func Load(path string) (*Palette, error) {
	if path == "" {
		return Default(), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open palette: %w", err)
	}
	defer file.Close()

	p, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse palette %s: %w", path, err)
	}
	return p, nil
}

// Parse parses a palette from an io.Reader.
func Parse(r io.Reader) (*Palette, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var p Palette
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	if p.Labels == nil {
		p.Labels = make(map[string]string)
	}
	if p.DefaultColor == "" {
		p.DefaultColor = "#9ca3af"
	}

	return &p, nil
}

// Color returns the colour for label, or the default colour.
func (p *Palette) Color(label string) string {
	if c, ok := p.Labels[label]; ok {
		return c
	}
	return p.DefaultColor
}
