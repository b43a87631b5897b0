package pointcloud

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// defaultMaxPixelRatio caps the device scale factor so HiDPI screens don't
// quadruple the fill cost.
const defaultMaxPixelRatio = 2

// RunConfig configures the window and game loop created by Run.
type RunConfig struct {
	Title  string
	Width  int
	Height int
	// ShowFPS draws the FPS/TPS overlay in the top left corner.
	ShowFPS bool
	// MaxPixelRatio caps the device scale factor. Zero means 2.
	MaxPixelRatio float64
	// Resizable lets the user resize the window; the grid follows.
	Resizable bool
	// ExitWhenScriptDone ends the loop once an attached TestRunner finishes.
	ExitWhenScriptDone bool
	// ScreenshotDir overrides Scene.ScreenshotDir when set.
	ScreenshotDir string
}

// Run opens a window and runs scene until the window is closed or the update
// callback returns an error. ebiten.Termination ends the loop without error.
func Run(scene *Scene, cfg RunConfig) error {
	if cfg.Width <= 0 {
		cfg.Width = defaultViewportW
	}
	if cfg.Height <= 0 {
		cfg.Height = defaultViewportH
	}
	if cfg.MaxPixelRatio <= 0 {
		cfg.MaxPixelRatio = defaultMaxPixelRatio
	}
	scene.SetShowFPS(cfg.ShowFPS)
	if cfg.ScreenshotDir != "" {
		scene.ScreenshotDir = cfg.ScreenshotDir
	}

	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	if cfg.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}
	return ebiten.RunGame(&gameShell{scene: scene, cfg: cfg})
}

// gameShell adapts a Scene to ebiten.Game.
type gameShell struct {
	scene *Scene
	cfg   RunConfig
}

func (g *gameShell) Update() error {
	g.scene.Update()
	if fn := g.scene.updateFunc; fn != nil {
		if err := fn(); err != nil {
			return err
		}
	}
	if g.cfg.ExitWhenScriptDone && g.scene.testRunner != nil && g.scene.testRunner.Done() &&
		len(g.scene.screenshotQueue) == 0 {
		return ebiten.Termination
	}
	return nil
}

func (g *gameShell) Draw(screen *ebiten.Image) {
	g.scene.Draw(screen)
}

// Layout renders at device resolution, capped at MaxPixelRatio, and keeps
// the scene's camera and grid in step with the window size.
func (g *gameShell) Layout(outsideW, outsideH int) (int, int) {
	ratio := pixelRatio(ebiten.Monitor().DeviceScaleFactor(), g.cfg.MaxPixelRatio)
	w := int(float64(outsideW) * ratio)
	h := int(float64(outsideH) * ratio)
	g.scene.Resize(w, h, ratio)
	return w, h
}

// pixelRatio clamps a device scale factor to [1, limit].
func pixelRatio(scale, limit float64) float64 {
	if scale < 1 {
		scale = 1
	}
	if limit > 0 && scale > limit {
		scale = limit
	}
	return scale
}
