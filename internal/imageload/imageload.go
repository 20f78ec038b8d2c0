// Package imageload loads the map background: a single image file, or a grid
// of col_row tiles composed into one image.
package imageload

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"io"
	"io/fs"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register decoder
	"golang.org/x/sync/errgroup"
)

var (
	// ErrNoPaths is returned when there is nothing to load.
	ErrNoPaths = errors.New("imageload: no image paths")
	// ErrBadTileName is returned when no tile path matches col_row.ext.
	ErrBadTileName = errors.New("imageload: tile name is not col_row")
)

// maxParallel bounds concurrent tile decodes.
const maxParallel = 8

// Tile is one grid cell of a tiled background.
type Tile struct {
	Path string
	Col  int
	Row  int
}

// ParseTileName extracts the grid cell from a path whose base name is
// col_row.ext, such as "parts/2_0.webp".
func ParseTileName(p string) (Tile, error) {
	base := path.Base(strings.ReplaceAll(p, "\\", "/"))
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	colS, rowS, ok := strings.Cut(base, "_")
	if !ok {
		return Tile{}, fmt.Errorf("%w: %q", ErrBadTileName, p)
	}
	col, err1 := strconv.Atoi(colS)
	row, err2 := strconv.Atoi(rowS)
	if err1 != nil || err2 != nil || col < 0 || row < 0 {
		return Tile{}, fmt.Errorf("%w: %q", ErrBadTileName, p)
	}
	return Tile{Path: p, Col: col, Row: row}, nil
}

// GridSize returns the grid dimensions covered by tiles.
func GridSize(tiles []Tile) (cols, rows int) {
	for _, t := range tiles {
		cols = max(cols, t.Col+1)
		rows = max(rows, t.Row+1)
	}
	return cols, rows
}

// TilePaths expands a pattern containing {col} and {row} into the paths of a
// cols x rows grid, row by row.
func TilePaths(pattern string, cols, rows int) []string {
	paths := make([]string, 0, cols*rows)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			p := strings.ReplaceAll(pattern, "{col}", strconv.Itoa(col))
			paths = append(paths, strings.ReplaceAll(p, "{row}", strconv.Itoa(row)))
		}
	}
	return paths
}

// Loader reads and decodes background images. PNG, JPEG and WebP are
// supported.
type Loader struct {
	// FS is the file system paths are resolved in; nil means the OS.
	FS  fs.FS
	Log zerolog.Logger
}

// New creates a loader reading from fsys (nil for the OS file system).
func New(fsys fs.FS, log zerolog.Logger) *Loader {
	return &Loader{FS: fsys, Log: log.With().Str("component", "imageload").Logger()}
}

// Load returns the background for paths. One path loads that image as is.
// Several paths are tiles composed into a width x height image; a zero size
// is derived from the first tile times the grid size.
func (l *Loader) Load(ctx context.Context, paths []string, width, height int) (image.Image, error) {
	switch len(paths) {
	case 0:
		return nil, ErrNoPaths
	case 1:
		img, err := l.decode(paths[0])
		if err != nil {
			return nil, err
		}
		b := img.Bounds()
		l.Log.Info().Str("path", paths[0]).Int("width", b.Dx()).Int("height", b.Dy()).Msg("background loaded")
		return img, nil
	}
	return l.loadTiles(ctx, paths, width, height)
}

func (l *Loader) loadTiles(ctx context.Context, paths []string, width, height int) (image.Image, error) {
	tiles := make([]Tile, 0, len(paths))
	for _, p := range paths {
		t, err := ParseTileName(p)
		if err != nil {
			l.Log.Warn().Err(err).Msg("tile skipped")
			continue
		}
		tiles = append(tiles, t)
	}
	if len(tiles) == 0 {
		return nil, ErrBadTileName
	}
	cols, rows := GridSize(tiles)

	decoded := make([]image.Image, len(tiles))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)
	for i, t := range tiles {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			img, err := l.decode(t.Path)
			if err != nil {
				// A missing tile leaves a hole rather than failing the map.
				l.Log.Error().Err(err).Str("path", t.Path).Msg("tile failed")
				return nil
			}
			decoded[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load tiles: %w", err)
	}

	var first image.Image
	for _, img := range decoded {
		if img != nil {
			first = img
			break
		}
	}
	if first == nil {
		return nil, fmt.Errorf("load tiles: every tile of %d failed", len(tiles))
	}
	if width <= 0 || height <= 0 {
		width = first.Bounds().Dx() * cols
		height = first.Bounds().Dy() * rows
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	partW := float64(width) / float64(cols)
	partH := float64(height) / float64(rows)

	placed := 0
	for i, t := range tiles {
		img := decoded[i]
		if img == nil {
			continue
		}
		r := image.Rect(
			int(float64(t.Col)*partW+0.5), int(float64(t.Row)*partH+0.5),
			int(float64(t.Col+1)*partW+0.5), int(float64(t.Row+1)*partH+0.5),
		)
		if r.Dx() == img.Bounds().Dx() && r.Dy() == img.Bounds().Dy() {
			xdraw.Draw(dst, r, img, img.Bounds().Min, xdraw.Src)
		} else {
			xdraw.ApproxBiLinear.Scale(dst, r, img, img.Bounds(), xdraw.Src, nil)
		}
		placed++
	}

	l.Log.Info().
		Int("tiles", placed).
		Int("cols", cols).
		Int("rows", rows).
		Int("width", width).
		Int("height", height).
		Msg("tiled background composed")
	return dst, nil
}

func (l *Loader) decode(p string) (image.Image, error) {
	rc, err := l.open(p)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", p, err)
	}
	defer rc.Close()

	img, _, err := image.Decode(rc)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", p, err)
	}
	return img, nil
}

func (l *Loader) open(p string) (io.ReadCloser, error) {
	if l.FS == nil {
		return os.Open(p)
	}
	return l.FS.Open(p)
}
