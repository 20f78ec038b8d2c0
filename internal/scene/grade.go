package scene

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/elektrokombinacija/venuemap/internal/config"
	"github.com/elektrokombinacija/venuemap/internal/geom"
)

// Grade is a seating/pricing category drawn as one or more regions.
type Grade struct {
	ID           string         `yaml:"id"`
	Name         string         `yaml:"name"`
	Abbreviation string         `yaml:"abbreviation"`
	Price        float64        `yaml:"price"`
	Disabled     bool           `yaml:"disabled"`
	Settings     []GradeSetting `yaml:"settings"`
}

// GradeSetting is one region of a grade in logical units.
type GradeSetting struct {
	Angle  float64      `yaml:"angle"`
	Circle geom.Point   `yaml:"circle"`
	Points []geom.Point `yaml:"points"`
	Color  string       `yaml:"color"`
}

// GradeFile is the on-disk grade list.
type GradeFile struct {
	// MapWidth is the logical width the points were authored against; zero
	// means the current map width.
	MapWidth float64 `yaml:"map_width"`
	Grades   []Grade `yaml:"grades"`
}

// LoadGrades reads a YAML grade file.
func LoadGrades(path string) (*GradeFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read grades: %w", err)
	}
	var f GradeFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode grades: %w", err)
	}
	return &f, nil
}

// Builder turns grades into scene objects.
type Builder interface {
	Build(g Grade, cfg *config.MapConfiguration, view config.ViewDimensions, gradeMapWidth float64) []*Object
}

// PolygonBuilder builds a region polygon plus an abbreviation circle and a
// price bubble for each grade setting.
type PolygonBuilder struct{}

// Build implements Builder.
func (PolygonBuilder) Build(g Grade, cfg *config.MapConfiguration, view config.ViewDimensions, gradeMapWidth float64) []*Object {
	var out []*Object
	for i, st := range g.Settings {
		pts := make([]geom.Point, len(st.Points))
		for j, p := range st.Points {
			pts[j] = geom.ScalePointGrade(p, cfg.Width, gradeMapWidth, view.Scale)
		}

		col, err := config.ParseColor(st.Color)
		if err != nil {
			col, _ = config.ParseColor(cfg.Theme.DisabledGrade)
		}

		region := NewObject(g.ID, i, KindRegion, pts)
		region.Label = g.Name
		region.Color = col
		region.Disabled = g.Disabled
		out = append(out, region)

		center := geom.ScalePointGrade(st.Circle, cfg.Width, gradeMapWidth, view.Scale)
		if st.Circle == (geom.Point{}) {
			center = region.Center()
		}

		r := geom.ScaleValue(cfg.Circle.Width/2, view.Scale)
		abbr := NewObject(g.ID, i, KindAbbreviation, circlePoints(center, r))
		abbr.Label = g.Abbreviation
		abbr.Color = col
		out = append(out, abbr)

		bw := geom.ScaleValue(cfg.Bubble.Width, view.Scale)
		bh := geom.ScaleValue(cfg.Bubble.Height, view.Scale)
		price := NewObject(g.ID, i, KindPrice, []geom.Point{
			{X: center.X - bw, Y: center.Y - bh},
			{X: center.X + bw, Y: center.Y - bh},
			{X: center.X + bw, Y: center.Y + bh},
			{X: center.X - bw, Y: center.Y + bh},
		})
		price.Label = fmt.Sprintf("%.0f", g.Price)
		out = append(out, price)
	}
	return out
}

func circlePoints(c geom.Point, r float64) []geom.Point {
	const segments = 16
	pts := make([]geom.Point, segments)
	for i := range pts {
		a := float64(i) * 2 * math.Pi / segments
		pts[i] = geom.Point{X: c.X + r*math.Cos(a), Y: c.Y + r*math.Sin(a)}
	}
	return pts
}
