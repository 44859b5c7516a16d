// Package styles defines the visual styling for switchtower's terminal
// output.
//
// Styles use semantic names ("Error", "Host", "Pretend") and adaptive
// colors, both read from the embedded styles.yaml. A Palette binds them
// to one output stream and decides once whether that stream gets color.
package styles

import (
	_ "embed"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"gopkg.in/yaml.v3"
)

// ColorMode controls whether output is colored.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// ParseColorMode accepts auto, always and never. Empty means auto.
func ParseColorMode(s string) (ColorMode, error) {
	switch ColorMode(s) {
	case "", ColorAuto:
		return ColorAuto, nil
	case ColorAlways:
		return ColorAlways, nil
	case ColorNever:
		return ColorNever, nil
	default:
		return ColorAuto, fmt.Errorf("unknown color mode %q (want auto, always or never)", s)
	}
}

// ColorDef represents an adaptive color definition in YAML
type ColorDef struct {
	Light string `yaml:"light"`
	Dark  string `yaml:"dark"`
}

// StyleDef represents a style definition in YAML
type StyleDef struct {
	Bold       bool   `yaml:"bold,omitempty"`
	Italic     bool   `yaml:"italic,omitempty"`
	Underline  bool   `yaml:"underline,omitempty"`
	Foreground string `yaml:"foreground,omitempty"`
	Background string `yaml:"background,omitempty"`
}

// Config represents the complete styles configuration
type Config struct {
	Colors map[string]ColorDef `yaml:"colors"`
	Styles map[string]StyleDef `yaml:"styles"`
}

//go:embed styles.yaml
var embeddedStyles []byte

// Default is the parsed embedded configuration.
var Default = mustParse(embeddedStyles)

func mustParse(data []byte) Config {
	cfg, err := Parse(data)
	if err != nil {
		panic(fmt.Sprintf("embedded styles.yaml is invalid: %v", err))
	}
	return cfg
}

// Parse reads a styles configuration from YAML.
func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse styles data: %w", err)
	}
	return cfg, nil
}

// Palette renders named styles for one writer.
type Palette struct {
	renderer *lipgloss.Renderer
	styles   map[string]lipgloss.Style
}

// New builds a palette from the embedded styles for w.
func New(w io.Writer, mode ColorMode) *Palette {
	return NewFromConfig(Default, w, mode)
}

// NewFromConfig builds a palette from cfg for w.
func NewFromConfig(cfg Config, w io.Writer, mode ColorMode) *Palette {
	renderer := lipgloss.NewRenderer(w)
	if !UseColor(w, mode) {
		renderer.SetColorProfile(termenv.Ascii)
	} else if mode == ColorAlways {
		renderer.SetColorProfile(termenv.ANSI256)
		renderer.SetHasDarkBackground(true)
	}

	colors := make(map[string]lipgloss.AdaptiveColor, len(cfg.Colors))
	for name, def := range cfg.Colors {
		colors[name] = lipgloss.AdaptiveColor{Light: def.Light, Dark: def.Dark}
	}

	p := &Palette{renderer: renderer, styles: make(map[string]lipgloss.Style, len(cfg.Styles))}
	for name, def := range cfg.Styles {
		p.styles[name] = buildStyle(renderer, colors, def)
	}
	return p
}

// UseColor decides whether w gets colored output. In auto mode that is
// only when w is a terminal and NO_COLOR is unset.
func UseColor(w io.Writer, mode ColorMode) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}

	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// buildStyle constructs a lipgloss style from a style definition
func buildStyle(r *lipgloss.Renderer, colors map[string]lipgloss.AdaptiveColor, def StyleDef) lipgloss.Style {
	style := r.NewStyle()

	if def.Bold {
		style = style.Bold(true)
	}
	if def.Italic {
		style = style.Italic(true)
	}
	if def.Underline {
		style = style.Underline(true)
	}

	if color, ok := colors[def.Foreground]; ok {
		style = style.Foreground(color)
	}
	if color, ok := colors[def.Background]; ok {
		style = style.Background(color)
	}

	return style
}

// Style returns the named style, or a plain one if it is not defined.
func (p *Palette) Style(name string) lipgloss.Style {
	if style, ok := p.styles[name]; ok {
		return style
	}
	return p.renderer.NewStyle()
}

// Render renders text in the named style.
func (p *Palette) Render(name, text string) string {
	return p.Style(name).Render(text)
}

// Sprintf formats and renders in the named style.
func (p *Palette) Sprintf(name, format string, args ...interface{}) string {
	return p.Render(name, fmt.Sprintf(format, args...))
}
