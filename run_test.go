package pointcloud

import "testing"

func TestPixelRatio(t *testing.T) {
	tests := []struct {
		scale, limit, want float64
	}{
		{1, 2, 1},
		{1.5, 2, 1.5},
		{3, 2, 2},
		{0.5, 2, 1},
		{3, 0, 3},
	}
	for _, tt := range tests {
		if got := pixelRatio(tt.scale, tt.limit); got != tt.want {
			t.Errorf("pixelRatio(%v, %v) = %v, want %v", tt.scale, tt.limit, got, tt.want)
		}
	}
}

func TestGameShellExitsWhenScriptDone(t *testing.T) {
	s := newTestScene(t)
	runner, err := LoadTestScript([]byte(`{"steps": [{"action": "move", "x": 10, "y": 10}]}`))
	if err != nil {
		t.Fatal(err)
	}
	s.SetTestRunner(runner)
	g := &gameShell{scene: s, cfg: RunConfig{ExitWhenScriptDone: true}}

	var err2 error
	for i := 0; i < 5 && err2 == nil; i++ {
		err2 = g.Update()
	}
	if err2 == nil {
		t.Fatal("expected the loop to terminate once the script finished")
	}
	if !runner.Done() {
		t.Error("runner not done at termination")
	}
}
