package scene

import "github.com/elektrokombinacija/venuemap/internal/geom"

// Mode selects which label each grade shape shows.
type Mode int

const (
	ModeGrade Mode = iota // abbreviation circles
	ModePrice             // price bubbles
)

// Store holds the scene objects in draw order.
type Store struct {
	objects []*Object
	mode    Mode
}

// NewStore returns an empty store in grade mode.
func NewStore() *Store {
	return &Store{}
}

// Add appends objects, applying the current mode's visibility.
func (s *Store) Add(objs ...*Object) {
	for _, o := range objs {
		s.applyMode(o)
		s.objects = append(s.objects, o)
	}
}

// Objects returns the objects in draw order. The slice must not be modified.
func (s *Store) Objects() []*Object {
	return s.objects
}

// Len returns the number of objects.
func (s *Store) Len() int {
	return len(s.objects)
}

// RemoveAll drops every object.
func (s *Store) RemoveAll() {
	s.objects = nil
}

// FindByGrade returns the region object of the given grade shape.
func (s *Store) FindByGrade(gradeID string, shapeIndex int) *Object {
	if gradeID == "" {
		return nil
	}
	for _, o := range s.objects {
		if o.GradeID == gradeID && o.ShapeIndex == shapeIndex && o.Kind == KindRegion {
			return o
		}
	}
	return nil
}

// HitTest returns the topmost visible, enabled region containing p.
func (s *Store) HitTest(p geom.Point) *Object {
	for i := len(s.objects) - 1; i >= 0; i-- {
		o := s.objects[i]
		if o.Kind != KindRegion || o.Disabled || !o.Visible() {
			continue
		}
		if o.Contains(p) {
			return o
		}
	}
	return nil
}

// Mode returns the current label mode.
func (s *Store) Mode() Mode {
	return s.mode
}

// SetMode switches between abbreviation and price labels.
func (s *Store) SetMode(m Mode) {
	s.mode = m
	for _, o := range s.objects {
		s.applyMode(o)
	}
}

func (s *Store) applyMode(o *Object) {
	switch o.Kind {
	case KindPrice:
		o.Opacity = boolOpacity(s.mode == ModePrice)
	case KindAbbreviation:
		o.Opacity = boolOpacity(s.mode == ModeGrade)
	}
}

func boolOpacity(visible bool) float64 {
	if visible {
		return 1
	}
	return 0
}

// Visible returns the objects whose frame intersects the bounds.
func (s *Store) Visible(b geom.Bounds) []*Object {
	var out []*Object
	for _, o := range s.objects {
		f := o.Frame
		if f.Right < b.Left || f.Left > b.Right || f.Bottom < b.Top || f.Top > b.Bottom {
			continue
		}
		out = append(out, o)
	}
	return out
}
