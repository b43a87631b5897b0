package pointcloud

import (
	"bytes"
	"fmt"
	"image"
	_ "image/png" // register PNG decoder for LoadParticleTexture
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// LoadParticleTexture decodes an image (PNG or any registered format) into
// the sprite drawn for each text particle.
func LoadParticleTexture(data []byte) (*ebiten.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("load particle texture: %w", err)
	}
	return ebiten.NewImageFromImage(img), nil
}

// NewParticleTexture generates a size×size soft round dot: opaque white in
// the middle, fading quadratically to transparent at the edge.
func NewParticleTexture(size int) *ebiten.Image {
	if size < 1 {
		size = 1
	}
	img := ebiten.NewImage(size, size)
	img.WritePixels(particlePixels(size))
	return img
}

// particlePixels returns premultiplied RGBA bytes for NewParticleTexture.
func particlePixels(size int) []byte {
	pix := make([]byte, 4*size*size)
	c := float64(size) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := (float64(x) + 0.5 - c) / c
			dy := (float64(y) + 0.5 - c) / c
			d := math.Sqrt(dx*dx + dy*dy)
			a := clamp01(1 - d)
			a *= a
			v := uint8(math.Round(a * 255))
			i := 4 * (y*size + x)
			pix[i], pix[i+1], pix[i+2], pix[i+3] = v, v, v, v
		}
	}
	return pix
}

// --- White pixel singleton (game loop only, no sync.Once) ---

var whitePixelImage *ebiten.Image

// ensureWhitePixel returns a lazily-initialized 1x1 white pixel image.
// Used by the grid, which draws plain square points.
func ensureWhitePixel() *ebiten.Image {
	if whitePixelImage == nil {
		whitePixelImage = ebiten.NewImage(1, 1)
		whitePixelImage.Fill(ColorWhite.toRGBA())
	}
	return whitePixelImage
}
