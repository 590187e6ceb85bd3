// Package capture wraps the platform capture collaborators (default camera
// and microphone) behind small interfaces so the test modules never branch
// on platform specifics and tests can substitute fakes.
package capture

import (
	"context"
	"time"
)

// Camera streams frames from the default video device.
type Camera interface {
	// Available reports whether a capture device and tooling are present.
	Available() bool
	// Capture previews frames for the given duration and saves the last one
	// to snapshotPath. Returns the number of frames captured.
	Capture(ctx context.Context, duration time.Duration, snapshotPath string) (int, error)
}

// Recorder records raw PCM from the default microphone.
type Recorder interface {
	Available() bool
	// Record captures signed 16-bit little-endian mono PCM at SampleRate for
	// the given duration.
	Record(ctx context.Context, duration time.Duration) ([]byte, error)
}

// Player plays back an audio file on the default output device.
type Player interface {
	Available() bool
	Play(ctx context.Context, path string) error
}

// PCM parameters shared by the recorder implementations and the WAV writer.
const (
	SampleRate    = 44100
	Channels      = 1
	BitsPerSample = 16
)
