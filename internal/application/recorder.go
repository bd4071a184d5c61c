package application

import (
	"context"
	"errors"
)

var (
	ErrAlreadyRecording = errors.New("already recording")
	ErrNotRecording     = errors.New("not currently recording")
)

// Recorder captures microphone audio between Start and Stop. Stop returns
// the path of the written audio file.
type Recorder interface {
	Start(ctx context.Context) error
	Stop() (string, error)
}
