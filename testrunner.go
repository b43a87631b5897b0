package pointcloud

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// scriptStep is one entry of a test script. Coordinates are screen pixels.
type scriptStep struct {
	Action string  `json:"action"`
	Label  string  `json:"label,omitempty"`
	Text   string  `json:"text,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	FromX  float64 `json:"fromX,omitempty"`
	FromY  float64 `json:"fromY,omitempty"`
	ToX    float64 `json:"toX,omitempty"`
	ToY    float64 `json:"toY,omitempty"`
	Frames int     `json:"frames,omitempty"`
}

// scriptAction performs a step against the scene and returns how many extra
// frames the runner should idle afterwards.
type scriptAction func(s *Scene, st scriptStep) (hold int)

var scriptActions = map[string]scriptAction{
	"screenshot": func(s *Scene, st scriptStep) int {
		s.Screenshot(st.Label)
		return 0
	},
	"move": func(s *Scene, st scriptStep) int {
		s.InjectMove(st.X, st.Y)
		return 0
	},
	"press": func(s *Scene, st scriptStep) int {
		s.InjectPress(st.X, st.Y)
		return 0
	},
	"release": func(s *Scene, st scriptStep) int {
		s.InjectRelease(st.X, st.Y)
		return 0
	},
	"click": func(s *Scene, st scriptStep) int {
		s.InjectClick(st.X, st.Y)
		return 0
	},
	"drag": func(s *Scene, st scriptStep) int {
		s.InjectDrag(st.FromX, st.FromY, st.ToX, st.ToY, st.Frames)
		return 0
	},
	// The frame that starts a wait counts toward it.
	"wait": func(_ *Scene, st scriptStep) int {
		return max(st.Frames-1, 0)
	},
	"text": func(s *Scene, st scriptStep) int {
		if err := s.SetText(st.Text); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "[pointcloud] test script: %v\n", err)
		}
		return 0
	},
}

// TestRunner plays a JSON script of pointer input, text changes and
// screenshots, one step per frame. A step only runs once every injected
// event from the previous one has been consumed.
type TestRunner struct {
	steps []scriptStep
	next  int
	hold  int
	done  bool
}

// LoadTestScript parses a script of the form {"steps": [{"action": ...}]}.
// Unknown actions and fields are rejected.
func LoadTestScript(jsonData []byte) (*TestRunner, error) {
	var script struct {
		Steps []scriptStep `json:"steps"`
	}
	dec := json.NewDecoder(bytes.NewReader(jsonData))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&script); err != nil {
		return nil, fmt.Errorf("parse test script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, errors.New("parse test script: no steps")
	}
	for i, st := range script.Steps {
		if _, ok := scriptActions[st.Action]; !ok {
			return nil, fmt.Errorf("parse test script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &TestRunner{steps: script.Steps}, nil
}

// SetTestRunner attaches runner to the scene; Update advances it before
// polling input.
func (s *Scene) SetTestRunner(runner *TestRunner) {
	s.testRunner = runner
}

// Done reports whether every step has run and its input has been consumed.
func (r *TestRunner) Done() bool {
	return r.done
}

func (r *TestRunner) step(s *Scene) {
	switch {
	case r.done, len(s.injectQueue) > 0:
		return
	case r.hold > 0:
		r.hold--
		return
	case r.next == len(r.steps):
		r.done = true
		return
	}

	st := r.steps[r.next]
	r.next++
	r.hold = scriptActions[st.Action](s, st)
	r.done = r.next == len(r.steps) && r.hold == 0 && len(s.injectQueue) == 0
}
