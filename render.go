package pointcloud

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
)

// Attenuation selects how a batch converts point size into screen pixels.
type Attenuation uint8

const (
	// AttenuateFixed draws size*300/distance pixels, the text particle rule.
	AttenuateFixed Attenuation = iota
	// AttenuateViewport draws size*(viewportHeight/2)/distance pixels, the
	// grid rule.
	AttenuateViewport
)

// particleSizeScale is the numerator used by AttenuateFixed.
const particleSizeScale = 300

// PointBatch draws a set of world-space points as textured, per-vertex tinted
// quads. Buffers are copied in by Upload at the end of a tick and turned into
// screen-space vertices by Draw.
type PointBatch struct {
	Texture     *ebiten.Image
	BlendMode   BlendMode
	Tint        Color
	Size        float64 // used when no size buffer is uploaded
	Attenuation Attenuation

	positions []float32
	colors    []float32
	sizes     []float32

	verts []ebiten.Vertex
	inds  []uint32
}

// NewPointBatch creates a batch drawing texture with the given blend and tint.
func NewPointBatch(texture *ebiten.Image, blend BlendMode, tint Color) *PointBatch {
	return &PointBatch{
		Texture:   texture,
		BlendMode: blend,
		Tint:      tint,
		Size:      1,
	}
}

// Upload copies the buffers into the batch's staging arrays. colors and sizes
// may be nil, in which case every point is white and Size units big.
func (b *PointBatch) Upload(positions, colors, sizes *AttributeBuffer) {
	b.positions = copyInto(b.positions, positions)
	b.colors = copyInto(b.colors, colors)
	b.sizes = copyInto(b.sizes, sizes)
}

// Len returns the number of uploaded points.
func (b *PointBatch) Len() int {
	return len(b.positions) / 3
}

func copyInto(dst []float32, src *AttributeBuffer) []float32 {
	if src == nil {
		return dst[:0]
	}
	if cap(dst) < len(src.Data) {
		dst = make([]float32, len(src.Data))
	}
	dst = dst[:len(src.Data)]
	copy(dst, src.Data)
	return dst
}

// Draw projects the uploaded points through cam and submits them to dst in a
// single DrawTriangles32 call.
func (b *PointBatch) Draw(dst *ebiten.Image, cam *Camera) {
	if b.Texture == nil || b.Len() == 0 {
		return
	}
	bounds := dst.Bounds()
	b.buildVertices(cam, float64(bounds.Dx()), float64(bounds.Dy()))
	if len(b.verts) == 0 {
		return
	}

	var triOp ebiten.DrawTrianglesOptions
	triOp.Blend = b.BlendMode.EbitenBlend()
	triOp.ColorScaleMode = ebiten.ColorScaleModePremultipliedAlpha
	triOp.Filter = ebiten.FilterLinear

	dst.DrawTriangles32(b.verts, b.inds, b.Texture, &triOp)
}

// buildVertices fills b.verts and b.inds with one quad per visible point.
func (b *PointBatch) buildVertices(cam *Camera, w, h float64) {
	b.verts = b.verts[:0]
	b.inds = b.inds[:0]

	tb := b.Texture.Bounds()
	su0, sv0 := float32(tb.Min.X), float32(tb.Min.Y)
	su1, sv1 := float32(tb.Max.X), float32(tb.Max.Y)
	psx := [4]float32{su0, su1, su0, su1}
	psy := [4]float32{sv0, sv0, sv1, sv1}

	scale := float64(particleSizeScale)
	if b.Attenuation == AttenuateViewport {
		scale = h / 2
	}
	tint := b.Tint
	hasColor := len(b.colors) == len(b.positions)
	hasSize := len(b.sizes)*3 == len(b.positions)

	for i, n := 0, b.Len(); i < n; i++ {
		p := mgl64.Vec3{
			float64(b.positions[i*3]),
			float64(b.positions[i*3+1]),
			float64(b.positions[i*3+2]),
		}
		ndc, dist, ok := cam.Project(p)
		if !ok || dist < cam.Near {
			continue
		}
		sx, sy := NDCToScreen(ndc, w, h)

		size := b.Size
		if hasSize {
			size = float64(b.sizes[i])
		}
		half := size * scale / dist / 2
		if half <= 0 {
			continue
		}

		r, g, bl := 1.0, 1.0, 1.0
		if hasColor {
			r, g, bl = float64(b.colors[i*3]), float64(b.colors[i*3+1]), float64(b.colors[i*3+2])
		}
		a := tint.A
		cr := float32(r * tint.R * a)
		cg := float32(g * tint.G * a)
		cb := float32(bl * tint.B * a)
		ca := float32(a)

		qx := [4]float64{sx - half, sx + half, sx - half, sx + half}
		qy := [4]float64{sy - half, sy - half, sy + half, sy + half}

		base := uint32(len(b.verts))
		for j := 0; j < 4; j++ {
			b.verts = append(b.verts, ebiten.Vertex{
				DstX:   float32(qx[j]),
				DstY:   float32(qy[j]),
				SrcX:   psx[j],
				SrcY:   psy[j],
				ColorR: cr,
				ColorG: cg,
				ColorB: cb,
				ColorA: ca,
			})
		}
		// Two triangles: TL-TR-BL, TR-BR-BL
		b.inds = append(b.inds,
			base+0, base+1, base+2,
			base+1, base+3, base+2,
		)
	}
}
