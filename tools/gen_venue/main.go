// Package main generates a deterministic sample venue: a map configuration,
// a grade list, and a tiled PNG background.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"math/rand"
	"os"
	"path/filepath"

	xdraw "golang.org/x/image/draw"
	"gopkg.in/yaml.v3"

	"github.com/elektrokombinacija/venuemap/internal/config"
	"github.com/elektrokombinacija/venuemap/internal/geom"
	"github.com/elektrokombinacija/venuemap/internal/imageload"
	"github.com/elektrokombinacija/venuemap/internal/scene"
)

// VenueParams defines the generated layout.
type VenueParams struct {
	Seed     int64
	Width    int
	Height   int
	Rings    int // grade tiers around the stage
	Sections int // sections per ring
	Cols     int // background tiles across
	Rows     int // background tiles down
}

var gradeNames = []string{"VIP", "Gold", "Silver", "Bronze", "Standard", "Balcony"}

var (
	floorColor   = color.RGBA{R: 236, G: 236, B: 232, A: 255}
	stageColor   = color.RGBA{R: 60, G: 60, B: 70, A: 255}
	sectionColor = color.RGBA{R: 214, G: 214, B: 208, A: 255}
)

// stage returns the stage rectangle and the centre the rings fan out from.
func stage(p VenueParams) (image.Rectangle, geom.Point) {
	w := p.Width / 3
	h := p.Height / 10
	r := image.Rect((p.Width-w)/2, p.Height/20, (p.Width+w)/2, p.Height/20+h)
	return r, geom.Pt(float64(p.Width)/2, float64(r.Max.Y))
}

// sectionPolygon is one annular section below the stage, as a quad with
// arc edges approximated by four segments each.
func sectionPolygon(c geom.Point, r0, r1, a0, a1 float64) []geom.Point {
	const steps = 4
	pts := make([]geom.Point, 0, 2*(steps+1))
	for i := 0; i <= steps; i++ {
		a := a0 + (a1-a0)*float64(i)/steps
		pts = append(pts, geom.Pt(c.X+r0*math.Cos(a), c.Y+r0*math.Sin(a)))
	}
	for i := steps; i >= 0; i-- {
		a := a0 + (a1-a0)*float64(i)/steps
		pts = append(pts, geom.Pt(c.X+r1*math.Cos(a), c.Y+r1*math.Sin(a)))
	}
	return pts
}

func generateGrades(p VenueParams) []scene.Grade {
	rng := rand.New(rand.NewSource(p.Seed))
	_, c := stage(p)

	maxR := math.Min(float64(p.Width)/2, float64(p.Height)-c.Y) * 0.95
	ringW := maxR / float64(p.Rings+1)
	gap := 0.02

	grades := make([]scene.Grade, 0, p.Rings)
	for ring := 0; ring < p.Rings; ring++ {
		name := gradeNames[ring%len(gradeNames)]
		if ring >= len(gradeNames) {
			name = fmt.Sprintf("%s %d", name, ring/len(gradeNames)+1)
		}
		g := scene.Grade{
			ID:           fmt.Sprintf("grade-%d", ring),
			Name:         name,
			Abbreviation: name[:1],
			Price:        float64(200-ring*30) + float64(rng.Intn(10))*5,
		}
		if g.Price < 10 {
			g.Price = 10
		}
		col := fmt.Sprintf("#%02X%02X%02X", 80+rng.Intn(170), 40+rng.Intn(160), 40+rng.Intn(200))

		r0 := ringW * float64(ring+1)
		r1 := r0 + ringW*0.85
		for s := 0; s < p.Sections; s++ {
			span := math.Pi / float64(p.Sections)
			a0 := float64(s)*span + gap
			a1 := float64(s+1)*span - gap
			pts := sectionPolygon(c, r0, r1, a0, a1)
			mid := (a0 + a1) / 2
			rm := (r0 + r1) / 2
			g.Settings = append(g.Settings, scene.GradeSetting{
				Color:  col,
				Points: pts,
				Circle: geom.Pt(math.Round(c.X+rm*math.Cos(mid)), math.Round(c.Y+rm*math.Sin(mid))),
			})
		}
		grades = append(grades, g)
	}
	return grades
}

func renderBackground(p VenueParams, grades []scene.Grade) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, p.Width, p.Height))
	xdraw.Draw(img, img.Bounds(), image.NewUniform(floorColor), image.Point{}, xdraw.Src)

	st, _ := stage(p)
	xdraw.Draw(img, st, image.NewUniform(stageColor), image.Point{}, xdraw.Src)

	for _, g := range grades {
		for _, s := range g.Settings {
			f := geom.FrameOf(s.Points)
			box := image.Rect(int(f.Left), int(f.Top), int(f.Right)+1, int(f.Bottom)+1).Intersect(img.Bounds())
			for y := box.Min.Y; y < box.Max.Y; y++ {
				for x := box.Min.X; x < box.Max.X; x++ {
					if geom.ContainsPoint(s.Points, geom.Pt(float64(x)+0.5, float64(y)+0.5)) {
						img.SetRGBA(x, y, sectionColor)
					}
				}
			}
		}
	}
	return img
}

func writeTiles(dir string, img *image.RGBA, cols, rows int) ([]string, error) {
	if err := os.MkdirAll(filepath.Join(dir, "parts"), 0755); err != nil {
		return nil, err
	}
	b := img.Bounds()
	rel := imageload.TilePaths("parts/{col}_{row}.png", cols, rows)
	for i, name := range rel {
		col, row := i%cols, i/cols
		r := image.Rect(
			b.Dx()*col/cols, b.Dy()*row/rows,
			b.Dx()*(col+1)/cols, b.Dy()*(row+1)/rows,
		)
		f, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		err = png.Encode(f, img.SubImage(r))
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return nil, fmt.Errorf("write %s: %w", name, err)
		}
	}
	return rel, nil
}

func writeYAML(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func main() {
	seed := flag.Int64("seed", 42, "Random seed for deterministic generation")
	width := flag.Int("width", 2400, "Map width in logical units")
	height := flag.Int("height", 1600, "Map height in logical units")
	rings := flag.Int("rings", 4, "Number of grade tiers")
	sections := flag.Int("sections", 5, "Sections per tier")
	cols := flag.Int("cols", 2, "Background tiles across (1x1 writes a single image)")
	rows := flag.Int("rows", 2, "Background tiles down")
	outputDir := flag.String("output", "testdata/venue", "Output directory")

	flag.Parse()

	p := VenueParams{
		Seed: *seed, Width: *width, Height: *height,
		Rings: max(*rings, 1), Sections: max(*sections, 1),
		Cols: max(*cols, 1), Rows: max(*rows, 1),
	}

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	grades := generateGrades(p)
	bg := renderBackground(p, grades)

	var paths []string
	if p.Cols == 1 && p.Rows == 1 {
		f, err := os.Create(filepath.Join(*outputDir, "map.png"))
		if err == nil {
			err = png.Encode(f, bg)
			f.Close()
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error writing background: %v\n", err)
			os.Exit(1)
		}
		paths = []string{"map.png"}
	} else {
		var err error
		paths, err = writeTiles(*outputDir, bg, p.Cols, p.Rows)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error writing tiles: %v\n", err)
			os.Exit(1)
		}
	}

	cfg := config.Default()
	cfg.Path = paths
	cfg.Width = float64(p.Width)
	cfg.Height = float64(p.Height)

	if err := writeYAML(filepath.Join(*outputDir, "map.yaml"), cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing config: %v\n", err)
		os.Exit(1)
	}
	gf := scene.GradeFile{MapWidth: float64(p.Width), Grades: grades}
	if err := writeYAML(filepath.Join(*outputDir, "grades.yaml"), gf); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing grades: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Generated: %s (%dx%d, %d grades x %d sections, %d background files)\n",
		*outputDir, p.Width, p.Height, len(grades), p.Sections, len(paths))
}
