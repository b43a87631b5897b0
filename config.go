package pointcloud

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// CameraConfig describes the perspective camera.
type CameraConfig struct {
	// FOV is the vertical field of view in degrees.
	FOV  float64 `json:"fov"`
	Near float64 `json:"near"`
	Far  float64 `json:"far"`
	// X, Y, Z is the eye position. The camera always looks down -Z.
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Duration is a time.Duration that JSON reads as milliseconds when given a
// number ("burstDuration": 300) or as a Go duration string ("300ms").
type Duration time.Duration

func (d Duration) String() string {
	return time.Duration(d).String()
}

// MarshalJSON writes whole milliseconds, or a duration string when d has a
// sub-millisecond part.
func (d Duration) MarshalJSON() ([]byte, error) {
	td := time.Duration(d)
	if td%time.Millisecond != 0 {
		return json.Marshal(td.String())
	}
	return json.Marshal(td.Milliseconds())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch v := v.(type) {
	case float64:
		*d = Duration(v * float64(time.Millisecond))
	case string:
		td, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("duration %q: %w", v, err)
		}
		*d = Duration(td)
	default:
		return fmt.Errorf("duration: want milliseconds or a duration string, got %s", b)
	}
	return nil
}

// Distribution selects how a line's point budget is split over its outlines.
type Distribution uint8

const (
	// DistributePerLine spreads floor(Amount/lines) points over each line's
	// outlines in proportion to their perimeter.
	DistributePerLine Distribution = iota
	// DistributePerOutline gives every contour floor(Amount/lines) points,
	// so glyphs with holes get one budget per hole as well.
	DistributePerOutline
)

// MarshalText implements encoding.TextMarshaler.
func (d Distribution) MarshalText() ([]byte, error) {
	switch d {
	case DistributePerLine:
		return []byte("line"), nil
	case DistributePerOutline:
		return []byte("outline"), nil
	}
	return nil, fmt.Errorf("unknown distribution %d", d)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Distribution) UnmarshalText(b []byte) error {
	switch string(b) {
	case "line", "":
		*d = DistributePerLine
	case "outline":
		*d = DistributePerOutline
	default:
		return fmt.Errorf("unknown distribution %q", b)
	}
	return nil
}

// ParticleConfig controls the text particle block and its force field.
type ParticleConfig struct {
	// Text is the content rendered as particles. Lines are split on '\n'.
	Text string `json:"text"`
	// Amount is the total particle budget, divided evenly between lines.
	Amount int `json:"amount"`
	// Distribution selects how each line's budget is spread over outlines.
	Distribution Distribution `json:"distribution"`
	// TextSize is the glyph em size in world units.
	TextSize float64 `json:"textSize"`
	// LineHeight is the line advance as a multiple of TextSize.
	LineHeight float64 `json:"lineHeight"`
	// VerticalBias lifts the centered block above the origin.
	VerticalBias float64 `json:"verticalBias"`
	// ParticleSize is the base point size.
	ParticleSize float64 `json:"particleSize"`

	// Area is both the force numerator and the interaction radius.
	Area float64 `json:"area"`
	// Ease is the per-frame return rate toward rest.
	Ease float64 `json:"ease"`
	// DragEase replaces Ease while the pointer button is held.
	DragEase float64 `json:"dragEase"`
	// MaxDisplacement clamps the per-frame force step. 0 leaves it unbounded.
	MaxDisplacement float64 `json:"maxDisplacement"`
	// StirEvery selects every n-th particle for the constant stir nudge.
	// 0 disables the stir.
	StirEvery int `json:"stirEvery"`
	// StirStep is the length of the stir nudge.
	StirStep float64 `json:"stirStep"`

	// ColorRadius is the pointer distance at which NearColor has fully
	// become FarColor.
	ColorRadius float64 `json:"colorRadius"`
	NearColor   Color   `json:"nearColor"`
	FarColor    Color   `json:"farColor"`
	HoverColor  Color   `json:"hoverColor"`
	HoverBlend  float64 `json:"hoverBlend"`

	// BurstScale is the size multiplier at the instant of a click; it decays
	// linearly to 1 over BurstDuration.
	BurstScale    float64  `json:"burstScale"`
	BurstDuration Duration `json:"burstDuration"`

	// PlaneDepth is the world Z of the interaction plane.
	PlaneDepth float64 `json:"planeDepth"`
	// PlaneScale multiplies the visible size at PlaneDepth to get the plane
	// extent used for hit testing.
	PlaneScale float64 `json:"planeScale"`

	// Workers > 1 splits each frame over that many goroutines.
	Workers int `json:"workers"`

	BlendMode BlendMode `json:"blendMode"`
}

// GridConfig controls the background grid.
type GridConfig struct {
	Rows  int     `json:"rows"`
	Cols  int     `json:"cols"`
	Depth float64 `json:"depth"`

	// WarpEase is the per-frame rate toward the warped or rest target.
	WarpEase float64 `json:"warpEase"`
	// RampUp and RampDown are the click intensity rates while pressed and
	// released.
	RampUp   float64 `json:"rampUp"`
	RampDown float64 `json:"rampDown"`
	// IdleThreshold is the click intensity below which the grid only eases
	// back to rest.
	IdleThreshold float64 `json:"idleThreshold"`

	// Threshold is the pointer warp falloff radius.
	Threshold       float64 `json:"threshold"`
	MouseInfluence  float64 `json:"mouseInfluence"`
	MaxRippleOffset float64 `json:"maxRippleOffset"`

	PointSize float64   `json:"pointSize"`
	Color     Color     `json:"color"`
	Opacity   float64   `json:"opacity"`
	BlendMode BlendMode `json:"blendMode"`
}

// Config bundles everything a Scene needs.
type Config struct {
	Camera    CameraConfig   `json:"camera"`
	Particles ParticleConfig `json:"particles"`
	Grid      GridConfig     `json:"grid"`
}

// DefaultCameraConfig returns a 65° camera at (0, 0, 100).
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{FOV: 65, Near: 1, Far: 10000, Z: 100}
}

// DefaultParticleConfig returns the stock "GREAT DESIGN" particle block.
func DefaultParticleConfig() ParticleConfig {
	return ParticleConfig{
		Text:          "GREAT\nDESIGN",
		Amount:        1500,
		TextSize:      14,
		LineHeight:    1.2,
		VerticalBias:  30,
		ParticleSize:  1,
		Area:          250,
		Ease:          0.05,
		DragEase:      0.01,
		StirEvery:     5,
		StirStep:      0.03,
		ColorRadius:   100,
		NearColor:     ColorWhite,
		FarColor:      ColorYellow,
		HoverColor:    ColorOrange,
		HoverBlend:    0.3,
		BurstScale:    1.5,
		BurstDuration: Duration(300 * time.Millisecond),
		PlaneScale:    2,
		Workers:       1,
		BlendMode:     BlendAdd,
	}
}

// DefaultGridConfig returns the stock 20×30 cyan grid at Z = -150.
func DefaultGridConfig() GridConfig {
	return GridConfig{
		Rows:            20,
		Cols:            30,
		Depth:           -150,
		WarpEase:        0.1,
		RampUp:          0.05,
		RampDown:        0.8,
		IdleThreshold:   0.001,
		Threshold:       300,
		MouseInfluence:  0.1,
		MaxRippleOffset: 0.1,
		PointSize:       2,
		Color:           ColorCyan,
		Opacity:         0.5,
		BlendMode:       BlendAdd,
	}
}

// DefaultConfig returns the full default configuration.
func DefaultConfig() Config {
	return Config{
		Camera:    DefaultCameraConfig(),
		Particles: DefaultParticleConfig(),
		Grid:      DefaultGridConfig(),
	}
}

// LoadConfig decodes JSON over DefaultConfig. Unknown keys are rejected so a
// misspelled setting does not silently fall back to its default. Durations
// are milliseconds, or strings such as "300ms".
func LoadConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first setting that would make the simulation
// degenerate.
func (c Config) Validate() error {
	cam := c.Camera
	if cam.FOV <= 0 || cam.FOV >= 180 {
		return fmt.Errorf("config: camera fov %v out of range (0, 180)", cam.FOV)
	}
	if cam.Near <= 0 || cam.Far <= cam.Near {
		return fmt.Errorf("config: camera near/far %v/%v invalid", cam.Near, cam.Far)
	}

	p := c.Particles
	if p.Amount < 0 {
		return fmt.Errorf("config: particles amount %d is negative", p.Amount)
	}
	if p.TextSize <= 0 {
		return fmt.Errorf("config: particles textSize %v must be positive", p.TextSize)
	}
	if !inUnit(p.Ease) || !inUnit(p.DragEase) {
		return fmt.Errorf("config: particles ease %v/%v must be in [0, 1]", p.Ease, p.DragEase)
	}
	if p.Area < 0 || p.ColorRadius <= 0 {
		return fmt.Errorf("config: particles area %v / colorRadius %v invalid", p.Area, p.ColorRadius)
	}
	if p.BurstDuration < 0 || p.BurstScale < 1 {
		return fmt.Errorf("config: particles burst %v over %v invalid", p.BurstScale, p.BurstDuration)
	}
	if p.PlaneScale <= 0 {
		return fmt.Errorf("config: particles planeScale %v must be positive", p.PlaneScale)
	}

	g := c.Grid
	if g.Rows < 2 || g.Cols < 2 {
		return fmt.Errorf("config: grid %dx%d needs at least 2 rows and 2 columns", g.Rows, g.Cols)
	}
	if g.Depth >= cam.Z {
		return fmt.Errorf("config: grid depth %v is not in front of the camera at z=%v", g.Depth, cam.Z)
	}
	if !inUnit(g.WarpEase) || !inUnit(g.RampUp) || !inUnit(g.RampDown) {
		return fmt.Errorf("config: grid rates %v/%v/%v must be in [0, 1]", g.WarpEase, g.RampUp, g.RampDown)
	}
	if g.Threshold <= 0 {
		return fmt.Errorf("config: grid threshold %v must be positive", g.Threshold)
	}
	return nil
}

func inUnit(v float64) bool {
	return v >= 0 && v <= 1
}
