package pointcloud

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// OutlineSource turns a single line of text into closed outlines in world
// units, Y up, with the line's pen origin at (0, 0).
type OutlineSource interface {
	Outlines(text string, size float64) ([]Outline, error)
}

// Outline is one closed contour, flattened into a polyline. The last point
// connects back to the first.
type Outline struct {
	Points []Vec2
}

// Perimeter returns the length of the closed polyline.
func (o Outline) Perimeter() float64 {
	n := len(o.Points)
	if n < 2 {
		return 0
	}
	var l float64
	for i := 0; i < n; i++ {
		a := o.Points[i]
		b := o.Points[(i+1)%n]
		l += math.Hypot(b.X-a.X, b.Y-a.Y)
	}
	return l
}

// Bounds returns the axis-aligned bounding box of the outline's points.
func (o Outline) Bounds() Rect {
	if len(o.Points) == 0 {
		return Rect{}
	}
	minX, minY := o.Points[0].X, o.Points[0].Y
	maxX, maxY := minX, minY
	for _, p := range o.Points[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// SpacedPoints returns n points evenly spaced by arc length around the
// outline, starting at Points[0]. The closing point is not repeated.
func (o Outline) SpacedPoints(n int) []Vec2 {
	if n <= 0 || len(o.Points) == 0 {
		return nil
	}
	out := make([]Vec2, 0, n)
	perim := o.Perimeter()
	if perim == 0 {
		for i := 0; i < n; i++ {
			out = append(out, o.Points[0])
		}
		return out
	}

	step := perim / float64(n)
	seg := 0
	segStart := 0.0 // arc length at the start of seg
	count := len(o.Points)
	for k := 0; k < n; k++ {
		target := float64(k) * step
		for {
			a := o.Points[seg]
			b := o.Points[(seg+1)%count]
			segLen := math.Hypot(b.X-a.X, b.Y-a.Y)
			if target <= segStart+segLen || seg == count-1 {
				t := 0.0
				if segLen > 0 {
					t = (target - segStart) / segLen
				}
				t = clamp01(t)
				out = append(out, Vec2{X: lerp(a.X, b.X, t), Y: lerp(a.Y, b.Y, t)})
				break
			}
			segStart += segLen
			seg++
		}
	}
	return out
}

// ErrNoGlyphs is returned by LoadFont for fonts without any glyphs.
var ErrNoGlyphs = errors.New("pointcloud: font has no glyphs")

// isNilSource reports whether src is nil or wraps a nil *SFNTFont, as
// happens when a failed LoadFont result is stored in an OutlineSource.
func isNilSource(src OutlineSource) bool {
	if src == nil {
		return true
	}
	f, ok := src.(*SFNTFont)
	return ok && f == nil
}

// defaultCurveSteps is the number of line segments per Bézier curve.
const defaultCurveSteps = 12

// SFNTFont is an OutlineSource backed by a TrueType or OpenType font.
// It is not safe for concurrent use.
type SFNTFont struct {
	// CurveSteps is the number of line segments each quadratic or cubic
	// segment is flattened into.
	CurveSteps int

	font *sfnt.Font
	buf  sfnt.Buffer
}

// LoadFont parses TrueType or OpenType data.
func LoadFont(data []byte) (*SFNTFont, error) {
	f, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}
	if f.NumGlyphs() == 0 {
		return nil, ErrNoGlyphs
	}
	return &SFNTFont{CurveSteps: defaultCurveSteps, font: f}, nil
}

// DefaultFont returns the Go Regular font.
func DefaultFont() (*SFNTFont, error) {
	return LoadFont(goregular.TTF)
}

// Outlines lays out text on a single baseline and returns every glyph
// contour, scaled so the em square is size units tall.
func (f *SFNTFont) Outlines(text string, size float64) ([]Outline, error) {
	if f == nil || f.font == nil {
		return nil, ErrNoFont
	}
	if size <= 0 {
		return nil, fmt.Errorf("outlines %q: size %v must be positive", text, size)
	}
	ppem := fixed.Int26_6(math.Round(size * 64))
	steps := f.CurveSteps
	if steps <= 0 {
		steps = defaultCurveSteps
	}

	var (
		outlines []Outline
		penX     fixed.Int26_6
		prev     sfnt.GlyphIndex
		hasPrev  bool
	)
	for _, r := range text {
		idx, err := f.font.GlyphIndex(&f.buf, r)
		if err != nil {
			return nil, fmt.Errorf("outlines %q: glyph index %q: %w", text, r, err)
		}
		if hasPrev {
			// Fonts without a kern table report an error here; treat as zero.
			if k, err := f.font.Kern(&f.buf, prev, idx, ppem, font.HintingNone); err == nil {
				penX += k
			}
		}

		segs, err := f.font.LoadGlyph(&f.buf, idx, ppem, nil)
		if err != nil {
			return nil, fmt.Errorf("outlines %q: load glyph %q: %w", text, r, err)
		}
		outlines = appendContours(outlines, segs, fixedToFloat(penX), steps)

		adv, err := f.font.GlyphAdvance(&f.buf, idx, ppem, font.HintingNone)
		if err != nil {
			return nil, fmt.Errorf("outlines %q: advance %q: %w", text, r, err)
		}
		penX += adv
		prev, hasPrev = idx, true
	}
	return outlines, nil
}

// appendContours flattens glyph segments into closed outlines shifted right
// by offsetX. sfnt uses Y down; outlines are Y up.
func appendContours(dst []Outline, segs sfnt.Segments, offsetX float64, steps int) []Outline {
	var cur []Vec2
	flush := func() {
		if len(cur) > 1 {
			// Drop the explicit closing point if the contour returns to its start.
			if first, last := cur[0], cur[len(cur)-1]; first == last {
				cur = cur[:len(cur)-1]
			}
		}
		if len(cur) > 1 {
			dst = append(dst, Outline{Points: cur})
		}
		cur = nil
	}
	pt := func(p fixed.Point26_6) Vec2 {
		return Vec2{X: fixedToFloat(p.X) + offsetX, Y: -fixedToFloat(p.Y)}
	}

	for _, s := range segs {
		switch s.Op {
		case sfnt.SegmentOpMoveTo:
			flush()
			cur = append(cur, pt(s.Args[0]))
		case sfnt.SegmentOpLineTo:
			cur = append(cur, pt(s.Args[0]))
		case sfnt.SegmentOpQuadTo:
			if len(cur) == 0 {
				continue
			}
			p0, p1, p2 := cur[len(cur)-1], pt(s.Args[0]), pt(s.Args[1])
			for i := 1; i <= steps; i++ {
				cur = append(cur, quadAt(p0, p1, p2, float64(i)/float64(steps)))
			}
		case sfnt.SegmentOpCubeTo:
			if len(cur) == 0 {
				continue
			}
			p0, p1, p2, p3 := cur[len(cur)-1], pt(s.Args[0]), pt(s.Args[1]), pt(s.Args[2])
			for i := 1; i <= steps; i++ {
				cur = append(cur, cubeAt(p0, p1, p2, p3, float64(i)/float64(steps)))
			}
		}
	}
	flush()
	return dst
}

func quadAt(p0, p1, p2 Vec2, t float64) Vec2 {
	u := 1 - t
	return Vec2{
		X: u*u*p0.X + 2*u*t*p1.X + t*t*p2.X,
		Y: u*u*p0.Y + 2*u*t*p1.Y + t*t*p2.Y,
	}
}

func cubeAt(p0, p1, p2, p3 Vec2, t float64) Vec2 {
	u := 1 - t
	a, b, c, d := u*u*u, 3*u*u*t, 3*u*t*t, t*t*t
	return Vec2{
		X: a*p0.X + b*p1.X + c*p2.X + d*p3.X,
		Y: a*p0.Y + b*p1.Y + c*p2.Y + d*p3.Y,
	}
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
