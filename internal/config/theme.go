package config

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Theme holds the map colours as hex strings (#RRGGBB or #RRGGBBAA).
type Theme struct {
	CanvasBackground  string `yaml:"canvas_background"`
	GradeStroke       string `yaml:"grade_stroke"`
	GradeText         string `yaml:"grade_text"`
	PriceBackground   string `yaml:"price_background"`
	PriceText         string `yaml:"price_text"`
	PriceBubbleStroke string `yaml:"price_bubble_stroke"`
	MiniMapViewport   string `yaml:"minimap_viewport"`
	DisabledGrade     string `yaml:"disabled_grade"`
	Shadow            string `yaml:"shadow"`
}

// DefaultTheme returns the stock colours.
func DefaultTheme() Theme {
	return Theme{
		CanvasBackground:  "#ffffff",
		GradeStroke:       "#ffffff",
		GradeText:         "#ffffff",
		PriceBackground:   "#ffffff",
		PriceText:         "#000000",
		PriceBubbleStroke: "#ffffff",
		MiniMapViewport:   "#EE2039",
		DisabledGrade:     "#2F2F2F",
		Shadow:            "#00000038",
	}
}

func (t *Theme) defaults() {
	d := DefaultTheme()
	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fill(&t.CanvasBackground, d.CanvasBackground)
	fill(&t.GradeStroke, d.GradeStroke)
	fill(&t.GradeText, d.GradeText)
	fill(&t.PriceBackground, d.PriceBackground)
	fill(&t.PriceText, d.PriceText)
	fill(&t.PriceBubbleStroke, d.PriceBubbleStroke)
	fill(&t.MiniMapViewport, d.MiniMapViewport)
	fill(&t.DisabledGrade, d.DisabledGrade)
	fill(&t.Shadow, d.Shadow)
}

// Palette is the parsed form of a Theme.
type Palette struct {
	CanvasBackground  color.NRGBA
	GradeStroke       color.NRGBA
	GradeText         color.NRGBA
	PriceBackground   color.NRGBA
	PriceText         color.NRGBA
	PriceBubbleStroke color.NRGBA
	MiniMapViewport   color.NRGBA
	DisabledGrade     color.NRGBA
	Shadow            color.NRGBA
}

// Palette parses every colour of the theme.
func (t Theme) Palette() (Palette, error) {
	var p Palette
	fields := []struct {
		name string
		src  string
		dst  *color.NRGBA
	}{
		{"canvas_background", t.CanvasBackground, &p.CanvasBackground},
		{"grade_stroke", t.GradeStroke, &p.GradeStroke},
		{"grade_text", t.GradeText, &p.GradeText},
		{"price_background", t.PriceBackground, &p.PriceBackground},
		{"price_text", t.PriceText, &p.PriceText},
		{"price_bubble_stroke", t.PriceBubbleStroke, &p.PriceBubbleStroke},
		{"minimap_viewport", t.MiniMapViewport, &p.MiniMapViewport},
		{"disabled_grade", t.DisabledGrade, &p.DisabledGrade},
		{"shadow", t.Shadow, &p.Shadow},
	}
	for _, f := range fields {
		c, err := ParseColor(f.src)
		if err != nil {
			return Palette{}, fmt.Errorf("theme.%s: %w", f.name, err)
		}
		*f.dst = c
	}
	return p, nil
}

// ParseColor parses #RGB, #RRGGBB or #RRGGBBAA.
func ParseColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("bad colour %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("bad colour %q: %w", s, err)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
