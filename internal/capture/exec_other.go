//go:build !linux

package capture

import (
	"context"
	"errors"
	"time"
)

var errUnsupported = errors.New("capture devices not supported on this platform")

type unsupportedCamera struct{}

func NewCamera() Camera { return unsupportedCamera{} }

func (unsupportedCamera) Available() bool { return false }

func (unsupportedCamera) Capture(context.Context, time.Duration, string) (int, error) {
	return 0, errUnsupported
}

type unsupportedRecorder struct{}

func NewRecorder() Recorder { return unsupportedRecorder{} }

func (unsupportedRecorder) Available() bool { return false }

func (unsupportedRecorder) Record(context.Context, time.Duration) ([]byte, error) {
	return nil, errUnsupported
}

type unsupportedPlayer struct{}

func NewPlayer() Player { return unsupportedPlayer{} }

func (unsupportedPlayer) Available() bool { return false }

func (unsupportedPlayer) Play(context.Context, string) error { return errUnsupported }
