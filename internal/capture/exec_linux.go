//go:build linux

package capture

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"time"
)

const defaultVideoDevice = "/dev/video0"

// FFmpegCamera captures from the default V4L2 device via ffmpeg.
type FFmpegCamera struct {
	Device string
}

// NewCamera returns the default camera implementation.
func NewCamera() Camera {
	return &FFmpegCamera{Device: defaultVideoDevice}
}

func (c *FFmpegCamera) Available() bool {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return false
	}
	_, err := os.Stat(c.Device)
	return err == nil
}

var frameCountRe = regexp.MustCompile(`frame=\s*(\d+)`)

func (c *FFmpegCamera) Capture(ctx context.Context, duration time.Duration, snapshotPath string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, duration+10*time.Second)
	defer cancel()

	// -update 1 keeps overwriting the output, leaving the last frame behind.
	cmd := exec.CommandContext(ctx, "ffmpeg", "-y",
		"-f", "v4l2", "-i", c.Device,
		"-t", fmt.Sprintf("%.0f", duration.Seconds()),
		"-update", "1", snapshotPath,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("camera capture: %w (%s)", err, lastLine(stderr.String()))
	}

	frames := 0
	if m := frameCountRe.FindAllStringSubmatch(stderr.String(), -1); len(m) > 0 {
		frames, _ = strconv.Atoi(m[len(m)-1][1])
	}
	return frames, nil
}

// ALSARecorder records from the default capture device via arecord.
type ALSARecorder struct{}

// NewRecorder returns the default microphone implementation.
func NewRecorder() Recorder {
	return &ALSARecorder{}
}

func (r *ALSARecorder) Available() bool {
	_, err := exec.LookPath("arecord")
	return err == nil
}

func (r *ALSARecorder) Record(ctx context.Context, duration time.Duration) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, duration+10*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "arecord",
		"-t", "raw",
		"-f", "S16_LE",
		"-r", strconv.Itoa(SampleRate),
		"-c", strconv.Itoa(Channels),
		"-d", fmt.Sprintf("%.0f", duration.Seconds()),
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("microphone capture: %w (%s)", err, lastLine(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// ALSAPlayer plays WAV files via aplay.
type ALSAPlayer struct{}

// NewPlayer returns the default playback implementation.
func NewPlayer() Player {
	return &ALSAPlayer{}
}

func (p *ALSAPlayer) Available() bool {
	_, err := exec.LookPath("aplay")
	return err == nil
}

func (p *ALSAPlayer) Play(ctx context.Context, path string) error {
	cmd := exec.CommandContext(ctx, "aplay", "-q", path)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("playback: %w (%s)", err, lastLine(stderr.String()))
	}
	return nil
}

func lastLine(s string) string {
	lines := bytes.Split(bytes.TrimSpace([]byte(s)), []byte("\n"))
	if len(lines) == 0 {
		return ""
	}
	return string(bytes.TrimSpace(lines[len(lines)-1]))
}
