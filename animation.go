package pointcloud

import (
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// burstTween is the click size pulse: a linear gween tween from its start
// scale down to 1. It is sampled by elapsed time with Set rather than stepped
// with Update, so frame drops never stretch the pulse.
type burstTween struct {
	tween *gween.Tween
	from  float64
	over  time.Duration
}

func newBurstTween(from float64, over time.Duration) *burstTween {
	return &burstTween{
		tween: gween.New(float32(from), 1, float32(over.Seconds()), ease.Linear),
		from:  from,
		over:  over,
	}
}

// matches reports whether the tween was built for these settings.
func (b *burstTween) matches(from float64, over time.Duration) bool {
	return b != nil && b.from == from && b.over == over
}

// at returns the scale elapsed after the press. It is exactly 1 from the
// end of the pulse on and never drops below 1.
func (b *burstTween) at(elapsed time.Duration) float64 {
	if elapsed >= b.over {
		return 1
	}
	if elapsed < 0 {
		elapsed = 0
	}
	v, _ := b.tween.Set(float32(elapsed.Seconds()))
	return max(1, float64(v))
}
