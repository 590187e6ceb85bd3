package diagtest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/techbench/diagstation/internal/capture"
)

// AudioRecordDuration is how long the microphone records before playback.
const AudioRecordDuration = 10 * time.Second

// AudioTest records the microphone into a buffer, writes it to an
// uncompressed WAV file, plays it back, and requires explicit operator
// confirmation of what they heard.
type AudioTest struct {
	state    State
	prompter Prompter
	recorder capture.Recorder
	player   capture.Player

	tempDir string
	result  Result
}

// NewAudio builds an audio loopback test.
func NewAudio(p Prompter, rec capture.Recorder, play capture.Player) *AudioTest {
	return &AudioTest{state: StateUninitialized, prompter: p, recorder: rec, player: play}
}

func (t *AudioTest) ID() ID       { return IDAudio }
func (t *AudioTest) State() State { return t.state }

func (t *AudioTest) Initialize(_ context.Context) error {
	if !t.recorder.Available() {
		err := fmt.Errorf("no microphone capture available")
		t.result = Result{ID: IDAudio, Message: "initialization failed", Error: err.Error()}
		return err
	}
	if !t.player.Available() {
		err := fmt.Errorf("no audio playback available")
		t.result = Result{ID: IDAudio, Message: "initialization failed", Error: err.Error()}
		return err
	}

	dir, err := os.MkdirTemp("", "audiotest-")
	if err != nil {
		err = fmt.Errorf("create scratch directory: %w", err)
		t.result = Result{ID: IDAudio, Message: "initialization failed", Error: err.Error()}
		return err
	}
	t.tempDir = dir
	t.state = StateInitialized
	return nil
}

func (t *AudioTest) Execute(ctx context.Context) error {
	if t.state != StateInitialized {
		return fmt.Errorf("audio test not initialized")
	}
	t.state = StateRunning

	duration := int(AudioRecordDuration.Seconds())
	t.prompter.Notify(fmt.Sprintf("Recording microphone for %d seconds. Speak into it now.", duration))

	pcm, err := t.recorder.Record(ctx, AudioRecordDuration)
	if err != nil {
		t.finish(StateAborted, Result{
			ID:      IDAudio,
			Message: "microphone recording failed",
			Error:   err.Error(),
			Details: AudioDetails{DurationSeconds: duration},
		})
		return nil
	}

	wavPath := filepath.Join(t.tempDir, "audio_test.wav")
	wav := encodeWAV(pcm, capture.SampleRate, capture.Channels, capture.BitsPerSample)
	if err := os.WriteFile(wavPath, wav, 0o644); err != nil {
		t.finish(StateAborted, Result{
			ID:      IDAudio,
			Message: "writing recording failed",
			Error:   err.Error(),
			Details: AudioDetails{DurationSeconds: duration},
		})
		return nil
	}

	t.prompter.Notify("Playing the recording back...")
	if err := t.player.Play(ctx, wavPath); err != nil {
		t.finish(StateAborted, Result{
			ID:      IDAudio,
			Message: "playback failed",
			Error:   err.Error(),
			Details: AudioDetails{DurationSeconds: duration, RecordingPath: wavPath},
		})
		return nil
	}

	ok, err := t.prompter.Confirm("Did you hear your recording clearly?")
	if err != nil {
		t.finish(StateAborted, Result{
			ID:      IDAudio,
			Message: "test interrupted by operator",
			Details: AudioDetails{DurationSeconds: duration, RecordingPath: wavPath},
		})
		return nil
	}

	details := AudioDetails{
		DurationSeconds: duration,
		RecordingPath:   wavPath,
		Confirmed:       ok,
	}
	res := Result{ID: IDAudio, Success: ok, Details: details}
	if ok {
		res.Message = "operator confirmed recording and playback"
	} else {
		res.Message = "operator reported playback problem"
	}
	t.finish(StateCompleted, res)
	return nil
}

func (t *AudioTest) finish(state State, res Result) {
	t.state = state
	t.result = res
}

func (t *AudioTest) Result() Result { return t.result }

func (t *AudioTest) FormattedResult() string {
	d, _ := t.result.Details.(AudioDetails)
	if t.result.Success {
		return fmt.Sprintf("Audio Test: PASS\nRecording duration: %d s\nConfirmed by operator: yes", d.DurationSeconds)
	}
	if t.result.Error != "" {
		return fmt.Sprintf("Audio Test: FAIL\nError: %s", t.result.Error)
	}
	return fmt.Sprintf("Audio Test: FAIL\nReason: %s", t.result.Message)
}

func (t *AudioTest) Cleanup() error {
	if t.tempDir != "" {
		err := os.RemoveAll(t.tempDir)
		t.tempDir = ""
		return err
	}
	return nil
}
