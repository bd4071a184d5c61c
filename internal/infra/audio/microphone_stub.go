//go:build !portaudio
// +build !portaudio

package audio

import "fmt"

// OpenMicrophone stub when portaudio is not available.
func OpenMicrophone(_, _ int) (Stream, error) {
	return nil, fmt.Errorf("microphone not available: rebuild with -tags portaudio")
}
