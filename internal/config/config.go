// Package config defines the map configuration, view dimensions and theme
// consumed by the engine, with their defaults and YAML loading.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/elektrokombinacija/venuemap/internal/geom"
)

// ErrInvalidConfig is returned by Validate for configurations the engine
// cannot honour.
var ErrInvalidConfig = errors.New("invalid map configuration")

// SizeShape is the logical size of one marker kind.
type SizeShape struct {
	Width        float64 `yaml:"width"`
	Height       float64 `yaml:"height"`
	Stroke       float64 `yaml:"stroke"`
	CornerRadius float64 `yaml:"corner_radius"`
	Padding      float64 `yaml:"padding"`
	OffsetLeft   float64 `yaml:"offset_left"`
	OffsetTop    float64 `yaml:"offset_top"`
}

// ZoomPolicy bounds every camera zoom.
type ZoomPolicy struct {
	Min                float64 `yaml:"min"`
	Max                float64 `yaml:"max"`
	Step               float64 `yaml:"step"`
	ShowMiniMapAtLevel float64 `yaml:"show_minimap_at_level"`
}

// Clamp limits v to [Min, Max].
func (z ZoomPolicy) Clamp(v float64) float64 {
	return geom.Clamp(v, z.Min, z.Max)
}

// MiniMap configures the minimap.
type MiniMap struct {
	Scale   float64 `yaml:"scale"`
	Opacity float64 `yaml:"opacity"`
}

// Paths accepts either a single YAML string or a sequence of strings.
type Paths []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (p *Paths) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*p = Paths{node.Value}
		return nil
	}
	var list []string
	if err := node.Decode(&list); err != nil {
		return err
	}
	*p = list
	return nil
}

// MapConfiguration describes one loaded map. All sizes are logical units.
// It is replaced wholesale on reconfiguration.
type MapConfiguration struct {
	// Path is one image, or several "col_row" tiles composed on a grid.
	Path Paths `yaml:"path"`

	Width        float64 `yaml:"width"`
	Height       float64 `yaml:"height"`
	OffsetHeight float64 `yaml:"offset_height"`
	FontSize     float64 `yaml:"font_size"`

	Bubble SizeShape `yaml:"bubble"`
	Corner SizeShape `yaml:"corner"`
	Arrow  SizeShape `yaml:"arrow"`
	Circle SizeShape `yaml:"circle"`

	Zoom    ZoomPolicy `yaml:"zoom"`
	MiniMap MiniMap    `yaml:"minimap"`

	Theme Theme `yaml:"theme"`
}

// ViewDimensions is the rendered viewport size and the derived scale
// (viewport height over logical map height).
type ViewDimensions struct {
	Width  float64
	Height float64
	Scale  float64
}

// NewViewDimensions derives the scale for a viewport of the given size
// showing a map of the given logical height.
func NewViewDimensions(width, height, mapHeight float64) ViewDimensions {
	scale := 1.0
	if mapHeight > 0 {
		scale = height / mapHeight
	}
	return ViewDimensions{Width: width, Height: height, Scale: scale}
}

// Default returns the stock configuration.
func Default() MapConfiguration {
	return MapConfiguration{
		FontSize:     20,
		OffsetHeight: 106,
		Circle:       SizeShape{Width: 50, Height: 50, Stroke: 2, Padding: 10},
		Bubble:       SizeShape{Width: 30, Height: 20},
		Corner:       SizeShape{Width: 20},
		Arrow:        SizeShape{Width: 15, Height: 10, Padding: 12},
		MiniMap:      MiniMap{Scale: 0.12, Opacity: 0.5},
		Zoom:         ZoomPolicy{Min: 1, Max: 2.5, Step: 0.2, ShowMiniMapAtLevel: 1.2},
		Theme:        DefaultTheme(),
	}
}

func (c *MapConfiguration) defaults() {
	d := Default()
	if c.FontSize <= 0 {
		c.FontSize = d.FontSize
	}
	if c.OffsetHeight <= 0 {
		c.OffsetHeight = d.OffsetHeight
	}
	if c.Circle == (SizeShape{}) {
		c.Circle = d.Circle
	}
	if c.Bubble == (SizeShape{}) {
		c.Bubble = d.Bubble
	}
	if c.Corner == (SizeShape{}) {
		c.Corner = d.Corner
	}
	if c.Arrow == (SizeShape{}) {
		c.Arrow = d.Arrow
	}
	if c.MiniMap.Scale <= 0 {
		c.MiniMap.Scale = d.MiniMap.Scale
	}
	if c.Zoom.Min <= 0 {
		c.Zoom.Min = d.Zoom.Min
	}
	if c.Zoom.Max <= 0 {
		c.Zoom.Max = d.Zoom.Max
	}
	if c.Zoom.Step <= 0 {
		c.Zoom.Step = d.Zoom.Step
	}
	if c.Zoom.ShowMiniMapAtLevel <= 0 {
		c.Zoom.ShowMiniMapAtLevel = d.Zoom.ShowMiniMapAtLevel
	}
	c.Theme.defaults()
}

// Validate checks the policy fields the engine treats as hard limits.
func (c *MapConfiguration) Validate() error {
	if c.Zoom.Min <= 0 {
		return fmt.Errorf("%w: zoom.min must be positive, got %v", ErrInvalidConfig, c.Zoom.Min)
	}
	if c.Zoom.Max < c.Zoom.Min {
		return fmt.Errorf("%w: zoom.max %v below zoom.min %v", ErrInvalidConfig, c.Zoom.Max, c.Zoom.Min)
	}
	if c.MiniMap.Scale <= 0 || c.MiniMap.Scale > 1 {
		return fmt.Errorf("%w: minimap.scale must be in (0,1], got %v", ErrInvalidConfig, c.MiniMap.Scale)
	}
	if c.MiniMap.Opacity < 0 || c.MiniMap.Opacity > 1 {
		return fmt.Errorf("%w: minimap.opacity must be in [0,1], got %v", ErrInvalidConfig, c.MiniMap.Opacity)
	}
	if _, err := c.Theme.Palette(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Parse decodes a YAML configuration, fills defaults and validates it.
// Zero is a valid minimap opacity, so its default is only used when the key
// is absent.
func Parse(data []byte) (*MapConfiguration, error) {
	cfg := &MapConfiguration{MiniMap: MiniMap{Opacity: Default().MiniMap.Opacity}}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("decode map config: %w", err)
	}
	cfg.defaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (*MapConfiguration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read map config: %w", err)
	}
	return Parse(data)
}
