//go:build portaudio
// +build portaudio

package audio

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// OpenMicrophone opens the default input device as a mono 16-bit stream.
func OpenMicrophone(sampleRate, frameSize int) (Stream, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initializing portaudio: %w", err)
	}

	buf := make([]int16, frameSize)

	stream, err := portaudio.OpenDefaultStream(1, 0, float64(sampleRate), frameSize, buf)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("opening stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("starting stream: %w", err)
	}

	return &micStream{stream: stream, buf: buf}, nil
}

type micStream struct {
	stream *portaudio.Stream
	buf    []int16
}

func (s *micStream) ReadFrame() ([]int16, error) {
	if err := s.stream.Read(); err != nil {
		return nil, fmt.Errorf("reading from stream: %w", err)
	}
	frame := make([]int16, len(s.buf))
	copy(frame, s.buf)
	return frame, nil
}

func (s *micStream) Close() error {
	s.stream.Stop()
	s.stream.Close()
	portaudio.Terminate()
	return nil
}
