// Package pointcloud renders a line of text as a cloud of particles for
// [Ebitengine]. The particles are pushed around by the pointer and snap back
// to the glyph outlines they were sampled from, over a background grid that
// warps toward the pointer and ripples while the button is held.
//
// # Quick start
//
// The simplest way to get started is [Run], which creates a window and game
// loop for you:
//
//	font, err := pointcloud.DefaultFont()
//	if err != nil {
//		log.Fatal(err)
//	}
//	scene, err := pointcloud.NewScene(font, pointcloud.NewParticleTexture(64),
//		pointcloud.DefaultConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//	pointcloud.Run(scene, pointcloud.RunConfig{
//		Title: "Point Cloud", Width: 1280, Height: 720,
//	})
//
// For full control, implement [ebiten.Game] yourself and call
// [Scene.Update], [Scene.Draw] and [Scene.Resize] directly.
//
// # Components
//
// [SampleText] turns text into a [ParticleSet] of rest positions spread
// along glyph outlines from an [OutlineSource] such as [SFNTFont].
//
// [ParticleField] steps the text particles each tick: an inverse-square
// push away from the pointer (a pull while the button is held), a color
// gradient by pointer distance, and a size burst on press that decays over
// [ParticleConfig.BurstDuration] (via [gween]).
//
// [GridField] keeps a lattice of points behind the text that always covers
// the visible area. It warps toward the pointer and ripples away from the
// press origin while the button is held.
//
// [Interaction] turns [PointerEvent] values into the shared
// [InteractionState]. Events can be posted from any goroutine and are
// applied at the start of the next tick.
//
// [Camera] is a perspective camera (via [mathgl]) used to unproject the
// pointer onto the particle and grid planes and to project points for
// drawing.
//
// # Configuration
//
// [DefaultConfig] returns the tuned defaults. [LoadConfig] reads a JSON
// document over those defaults and validates it.
//
// # Automated testing
//
// [Scene.InjectMove], [Scene.InjectClick], [Scene.InjectDrag] and friends
// queue synthetic pointer input. [LoadTestScript] reads a JSON script of
// such actions plus waits, text changes and screenshots; attach it with
// [Scene.SetTestRunner].
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
// [mathgl]: https://github.com/go-gl/mathgl
package pointcloud
