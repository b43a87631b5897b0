package pointcloud

import (
	"fmt"
	"math"
	"os"
	"time"
)

// debugStats holds per-frame timings and counts.
// Only populated when Scene.debug is true.
type debugStats struct {
	inputTime    time.Duration
	gridTime     time.Duration
	particleTime time.Duration
	flushTime    time.Duration
	events       int
	particles    int
	gridPoints   int
	particleHit  bool
}

// debugLog prints timing and count stats to stderr.
func (s *Scene) debugLog(stats *debugStats) {
	if !s.debug {
		return
	}
	total := stats.inputTime + stats.gridTime + stats.particleTime + stats.flushTime
	_, _ = fmt.Fprintf(os.Stderr,
		"[pointcloud] input: %v | grid: %v | particles: %v | flush: %v | total: %v\n",
		stats.inputTime, stats.gridTime, stats.particleTime, stats.flushTime, total)
	_, _ = fmt.Fprintf(os.Stderr,
		"[pointcloud] frame %d | events: %d | particles: %d (hit %t) | grid points: %d | smooth: %.3f\n",
		s.frame, stats.events, stats.particles, stats.particleHit, stats.gridPoints, s.grid.ClickSmooth())
}

// debugCheckFinite warns on stderr when any rendered buffer holds a NaN or
// infinite value. Positions must stay finite even with the pointer exactly
// on a particle.
func (s *Scene) debugCheckFinite() {
	set := s.particles.Set()
	debugCheckBuffer("particle position", set.Position)
	debugCheckBuffer("particle color", set.Color)
	debugCheckBuffer("particle size", set.Size)
	debugCheckBuffer("grid position", s.grid.Positions())
}

func debugCheckBuffer(name string, buf *AttributeBuffer) {
	if i := firstNonFinite(buf); i >= 0 {
		_, _ = fmt.Fprintf(os.Stderr, "[pointcloud] warning: %s buffer has non-finite value at item %d\n",
			name, i/buf.ItemSize)
	}
}

// firstNonFinite returns the index of the first NaN or Inf component in buf,
// or -1.
func firstNonFinite(buf *AttributeBuffer) int {
	if buf == nil {
		return -1
	}
	for i, v := range buf.Data {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return i
		}
	}
	return -1
}
