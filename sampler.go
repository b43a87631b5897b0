package pointcloud

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// ParticleSet is the buffer bundle for one text build. Rest is never written
// after SampleText returns; Position, Color and Size are rewritten every
// frame by ParticleField.
type ParticleSet struct {
	Rest     *AttributeBuffer // xyz
	Position *AttributeBuffer // xyz
	Color    *AttributeBuffer // rgb
	Size     *AttributeBuffer // scalar
}

// Len returns the number of particles.
func (s *ParticleSet) Len() int {
	if s == nil {
		return 0
	}
	return s.Rest.Count()
}

// SampleOptions controls SampleText.
type SampleOptions struct {
	Text         string
	Amount       int
	Distribution Distribution
	TextSize     float64
	LineHeight   float64
	VerticalBias float64
	ParticleSize float64
}

// sampleOptions extracts the sampler settings from a ParticleConfig.
func (p ParticleConfig) sampleOptions() SampleOptions {
	return SampleOptions{
		Text:         p.Text,
		Amount:       p.Amount,
		Distribution: p.Distribution,
		TextSize:     p.TextSize,
		LineHeight:   p.LineHeight,
		VerticalBias: p.VerticalBias,
		ParticleSize: p.ParticleSize,
	}
}

// SampleText converts multi-line text into particle rest positions.
//
// Every line gets floor(Amount/lines) points. Shorter lines are centered
// against the widest one, line i is shifted down by i*TextSize*LineHeight,
// and the whole block is centered on the origin and lifted by VerticalBias.
func SampleText(src OutlineSource, opts SampleOptions) (*ParticleSet, error) {
	if isNilSource(src) {
		return nil, ErrNoFont
	}
	lines := strings.Split(opts.Text, "\n")
	perLine := 0
	if opts.Amount > 0 {
		perLine = opts.Amount / len(lines)
	}

	shapes := make([][]Outline, len(lines))
	widths := make([]float64, len(lines))
	maxWidth := 0.0
	for i, line := range lines {
		outlines, err := src.Outlines(line, opts.TextSize)
		if err != nil {
			return nil, fmt.Errorf("sample line %d: %w", i, err)
		}
		shapes[i] = outlines
		widths[i] = outlinesWidth(outlines)
		maxWidth = math.Max(maxWidth, widths[i])
	}

	var points []Vec2
	for i, outlines := range shapes {
		xOffset := (maxWidth - widths[i]) / 2
		yOffset := -float64(i) * opts.TextSize * opts.LineHeight

		var counts []int
		switch opts.Distribution {
		case DistributePerOutline:
			counts = make([]int, len(outlines))
			for j := range counts {
				counts[j] = perLine
			}
		default:
			counts = distributeByPerimeter(outlines, perLine)
		}

		for j, o := range outlines {
			for _, p := range o.SpacedPoints(counts[j]) {
				points = append(points, Vec2{X: p.X + xOffset, Y: p.Y + yOffset})
			}
		}
	}

	// Center the block, then lift it.
	var cx, cy float64
	if len(points) > 0 {
		b := Outline{Points: points}.Bounds()
		cx = b.X + b.Width/2
		cy = b.Y + b.Height/2
	}

	n := len(points)
	set := &ParticleSet{
		Rest:     NewAttributeBuffer(n, 3),
		Position: NewAttributeBuffer(n, 3),
		Color:    NewAttributeBuffer(n, 3),
		Size:     NewAttributeBuffer(n, 1),
	}
	for i, p := range points {
		set.Rest.SetXYZ(i, p.X-cx, p.Y-cy+opts.VerticalBias, 0)
		set.Color.SetXYZ(i, 1, 1, 1)
		set.Size.SetX(i, opts.ParticleSize)
	}
	copy(set.Position.Data, set.Rest.Data)
	return set, nil
}

// outlinesWidth is the bounding-box width of all outlines on a line.
func outlinesWidth(outlines []Outline) float64 {
	minX, maxX := math.Inf(1), math.Inf(-1)
	for _, o := range outlines {
		if len(o.Points) == 0 {
			continue
		}
		b := o.Bounds()
		minX = math.Min(minX, b.X)
		maxX = math.Max(maxX, b.X+b.Width)
	}
	if minX > maxX {
		return 0
	}
	return maxX - minX
}

// distributeByPerimeter splits total points over outlines in proportion to
// their perimeters using the largest-remainder method. The result sums to
// total whenever there is at least one outline.
func distributeByPerimeter(outlines []Outline, total int) []int {
	counts := make([]int, len(outlines))
	if len(outlines) == 0 || total <= 0 {
		return counts
	}

	perims := make([]float64, len(outlines))
	var sum float64
	for i, o := range outlines {
		perims[i] = o.Perimeter()
		sum += perims[i]
	}
	if sum == 0 {
		for i := range perims {
			perims[i] = 1
		}
		sum = float64(len(perims))
	}

	type share struct {
		index int
		frac  float64
	}
	shares := make([]share, len(outlines))
	assigned := 0
	for i, p := range perims {
		exact := float64(total) * p / sum
		counts[i] = int(math.Floor(exact))
		assigned += counts[i]
		shares[i] = share{index: i, frac: exact - float64(counts[i])}
	}
	slices.SortStableFunc(shares, func(a, b share) int {
		switch {
		case a.frac > b.frac:
			return -1
		case a.frac < b.frac:
			return 1
		}
		return 0
	})
	for k := 0; assigned < total; k = (k + 1) % len(shares) {
		counts[shares[k].index]++
		assigned++
	}
	return counts
}
