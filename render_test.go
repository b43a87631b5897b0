package pointcloud

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

func pointBuffer(points ...[3]float64) *AttributeBuffer {
	b := NewAttributeBuffer(len(points), 3)
	for i, p := range points {
		b.SetXYZ(i, p[0], p[1], p[2])
	}
	return b
}

func TestPointBatchFixedAttenuation(t *testing.T) {
	cam := newTestCamera(1)
	b := NewPointBatch(ebiten.NewImage(8, 8), BlendAdd, ColorWhite)
	b.Upload(pointBuffer([3]float64{0, 0, 0}), nil, nil)
	if b.Len() != 1 {
		t.Fatalf("Len = %d, want 1", b.Len())
	}

	b.buildVertices(cam, 800, 800)
	if len(b.verts) != 4 || len(b.inds) != 6 {
		t.Fatalf("verts/inds = %d/%d, want 4/6", len(b.verts), len(b.inds))
	}
	// size 1 at distance 100: 1*300/100 = 3 pixels across.
	tl, br := b.verts[0], b.verts[3]
	assertNear(t, "left", float64(tl.DstX), 398.5)
	assertNear(t, "top", float64(tl.DstY), 398.5)
	assertNear(t, "right", float64(br.DstX), 401.5)
	assertNear(t, "bottom", float64(br.DstY), 401.5)
	if br.SrcX != 8 || br.SrcY != 8 {
		t.Errorf("bottom right src = %v,%v, want 8,8", br.SrcX, br.SrcY)
	}
}

func TestPointBatchViewportAttenuation(t *testing.T) {
	cam := newTestCamera(1)
	b := NewPointBatch(ebiten.NewImage(1, 1), BlendAdd, Color{0, 1, 1, 0.5})
	b.Size = 2
	b.Attenuation = AttenuateViewport
	b.Upload(pointBuffer([3]float64{0, 0, 0}), nil, nil)

	b.buildVertices(cam, 800, 800)
	if len(b.verts) != 4 {
		t.Fatalf("verts = %d, want 4", len(b.verts))
	}
	// size 2 * (800/2) / 100 = 8 pixels across.
	assertNear(t, "width", float64(b.verts[1].DstX-b.verts[0].DstX), 8)

	v := b.verts[0]
	if v.ColorR != 0 || v.ColorG != 0.5 || v.ColorB != 0.5 || v.ColorA != 0.5 {
		t.Errorf("color = %v,%v,%v,%v, want premultiplied 0,0.5,0.5,0.5", v.ColorR, v.ColorG, v.ColorB, v.ColorA)
	}
}

func TestPointBatchPerPointAttributes(t *testing.T) {
	cam := newTestCamera(1)
	b := NewPointBatch(ebiten.NewImage(4, 4), BlendAdd, ColorWhite)
	colors := NewAttributeBuffer(2, 3)
	colors.SetXYZ(0, 1, 0, 0)
	colors.SetXYZ(1, 0, 0, 1)
	sizes := NewAttributeBuffer(2, 1)
	sizes.SetX(0, 1)
	sizes.SetX(1, 2)
	b.Upload(pointBuffer([3]float64{-10, 0, 0}, [3]float64{10, 0, 0}), colors, sizes)

	b.buildVertices(cam, 800, 800)
	if len(b.verts) != 8 {
		t.Fatalf("verts = %d, want 8", len(b.verts))
	}
	if b.verts[0].ColorR != 1 || b.verts[0].ColorB != 0 {
		t.Error("first point should be red")
	}
	if b.verts[4].ColorR != 0 || b.verts[4].ColorB != 1 {
		t.Error("second point should be blue")
	}
	w0 := b.verts[1].DstX - b.verts[0].DstX
	w1 := b.verts[5].DstX - b.verts[4].DstX
	assertNear(t, "size ratio", float64(w1/w0), 2)
	if b.inds[6] != 4 {
		t.Errorf("second quad starts at index %d, want 4", b.inds[6])
	}
}

func TestPointBatchSkipsBehindCamera(t *testing.T) {
	cam := newTestCamera(1)
	b := NewPointBatch(ebiten.NewImage(4, 4), BlendAdd, ColorWhite)
	b.Upload(pointBuffer(
		[3]float64{0, 0, 200},  // behind the eye
		[3]float64{0, 0, 99.5}, // closer than the near plane
		[3]float64{0, 0, -50},
	), nil, nil)
	b.buildVertices(cam, 800, 800)
	if len(b.verts) != 4 {
		t.Errorf("verts = %d, want 4 (one visible point)", len(b.verts))
	}
}

func TestPointBatchUploadNil(t *testing.T) {
	b := NewPointBatch(ebiten.NewImage(4, 4), BlendAdd, ColorWhite)
	b.Upload(pointBuffer([3]float64{0, 0, 0}), nil, nil)
	b.Upload(nil, nil, nil)
	if b.Len() != 0 {
		t.Errorf("Len after nil upload = %d, want 0", b.Len())
	}
}

func TestBlendModeEbitenBlend(t *testing.T) {
	if BlendAdd.EbitenBlend() != ebiten.BlendLighter {
		t.Error("BlendAdd should map to BlendLighter")
	}
	if BlendNormal.EbitenBlend() != ebiten.BlendSourceOver {
		t.Error("BlendNormal should map to BlendSourceOver")
	}
}
