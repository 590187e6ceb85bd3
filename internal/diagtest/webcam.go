package diagtest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/techbench/diagstation/internal/capture"
)

// WebcamPreviewDuration is how long the camera streams before the operator
// is asked to confirm.
const WebcamPreviewDuration = 5 * time.Second

// WebcamTest streams the default camera for a fixed duration, keeps the last
// frame, and requires explicit operator confirmation. Success is never
// inferred from a clean capture alone.
type WebcamTest struct {
	state    State
	prompter Prompter
	camera   capture.Camera

	tempDir string
	result  Result
}

// NewWebcam builds a webcam test against the given camera device.
func NewWebcam(p Prompter, cam capture.Camera) *WebcamTest {
	return &WebcamTest{state: StateUninitialized, prompter: p, camera: cam}
}

func (t *WebcamTest) ID() ID       { return IDWebcam }
func (t *WebcamTest) State() State { return t.state }

func (t *WebcamTest) Initialize(_ context.Context) error {
	if !t.camera.Available() {
		err := fmt.Errorf("no camera device available")
		t.result = Result{ID: IDWebcam, Message: "initialization failed", Error: err.Error()}
		return err
	}

	dir, err := os.MkdirTemp("", "webcamtest-")
	if err != nil {
		err = fmt.Errorf("create scratch directory: %w", err)
		t.result = Result{ID: IDWebcam, Message: "initialization failed", Error: err.Error()}
		return err
	}
	t.tempDir = dir
	t.state = StateInitialized
	return nil
}

func (t *WebcamTest) Execute(ctx context.Context) error {
	if t.state != StateInitialized {
		return fmt.Errorf("webcam test not initialized")
	}
	t.state = StateRunning

	snapshot := filepath.Join(t.tempDir, "webcam_frame.jpg")
	t.prompter.Notify(fmt.Sprintf("Streaming camera preview for %s...", WebcamPreviewDuration))

	frames, err := t.camera.Capture(ctx, WebcamPreviewDuration, snapshot)
	if err != nil {
		t.finish(StateAborted, Result{
			ID:      IDWebcam,
			Message: "camera capture failed",
			Error:   err.Error(),
			Details: WebcamDetails{FramesCaptured: frames},
		})
		return nil
	}

	ok, err := t.prompter.Confirm("Did the camera preview show a live image?")
	if err != nil {
		t.finish(StateAborted, Result{
			ID:      IDWebcam,
			Message: "test interrupted by operator",
			Details: WebcamDetails{FramesCaptured: frames, SnapshotPath: snapshot},
		})
		return nil
	}

	details := WebcamDetails{
		FramesCaptured: frames,
		SnapshotPath:   snapshot,
		Confirmed:      ok,
	}
	res := Result{ID: IDWebcam, Success: ok, Details: details}
	if ok {
		res.Message = "operator confirmed live image"
	} else {
		res.Message = "operator reported no usable image"
	}
	t.finish(StateCompleted, res)
	return nil
}

func (t *WebcamTest) finish(state State, res Result) {
	t.state = state
	t.result = res
}

func (t *WebcamTest) Result() Result { return t.result }

func (t *WebcamTest) FormattedResult() string {
	d, _ := t.result.Details.(WebcamDetails)
	if t.result.Success {
		return fmt.Sprintf("Webcam Test: PASS\nFrames captured: %d\nConfirmed by operator: yes", d.FramesCaptured)
	}
	if t.result.Error != "" {
		return fmt.Sprintf("Webcam Test: FAIL\nError: %s", t.result.Error)
	}
	return fmt.Sprintf("Webcam Test: FAIL\nReason: %s", t.result.Message)
}

func (t *WebcamTest) Cleanup() error {
	if t.tempDir != "" {
		err := os.RemoveAll(t.tempDir)
		t.tempDir = ""
		return err
	}
	return nil
}
