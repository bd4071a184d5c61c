package audio_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/go-audio/wav"

	"mood-journal/internal/application"
	"mood-journal/internal/infra/audio"
)

type fakeStream struct {
	mu     sync.Mutex
	frames [][]int16
	closed bool
}

func (f *fakeStream) ReadFrame() ([]int16, error) {
	f.mu.Lock()
	if len(f.frames) > 0 {
		frame := f.frames[0]
		f.frames = f.frames[1:]
		f.mu.Unlock()
		return frame, nil
	}
	f.mu.Unlock()
	time.Sleep(time.Millisecond)
	return nil, nil
}

func (f *fakeStream) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeStream) drained() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.frames) == 0
}

func makeFrame(n int, value int16) []int16 {
	frame := make([]int16, n)
	for i := range frame {
		frame[i] = value
	}
	return frame
}

func newTestRecorder(t *testing.T, stream audio.Stream, opens *int) (*audio.Recorder, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "output.wav")
	open := func(sampleRate, frameSize int) (audio.Stream, error) {
		if opens != nil {
			*opens++
		}
		return stream, nil
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return audio.NewRecorder(44100, 1024, path, open, logger), path
}

func TestRecorder_FullCycle(t *testing.T) {
	stream := &fakeStream{
		frames: [][]int16{
			makeFrame(1024, 100),
			makeFrame(1024, -200),
			makeFrame(512, 300),
		},
	}
	recorder, path := newTestRecorder(t, stream, nil)

	if err := recorder.Start(context.Background()); err != nil {
		t.Fatalf("starting recorder: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for !stream.drained() {
		if time.Now().After(deadline) {
			t.Fatal("timeout waiting for frames to be captured")
		}
		time.Sleep(time.Millisecond)
	}

	got, err := recorder.Stop()
	if err != nil {
		t.Fatalf("stopping recorder: %v", err)
	}
	if got != path {
		t.Errorf("output path: got %s, want %s", got, path)
	}
	if !stream.closed {
		t.Error("stream was not closed")
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening output: %v", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("decoding output: %v", err)
	}

	if want := 1024 + 1024 + 512; len(buf.Data) != want {
		t.Errorf("sample count: got %d, want %d", len(buf.Data), want)
	}
	if dec.NumChans != 1 {
		t.Errorf("channels: got %d, want 1", dec.NumChans)
	}
	if dec.BitDepth != 16 {
		t.Errorf("bit depth: got %d, want 16", dec.BitDepth)
	}
	if dec.SampleRate != 44100 {
		t.Errorf("sample rate: got %d, want 44100", dec.SampleRate)
	}
	if buf.Data[0] != 100 || buf.Data[1024] != -200 || buf.Data[2048] != 300 {
		t.Error("samples not concatenated in capture order")
	}
}

func TestRecorder_DoubleStart(t *testing.T) {
	opens := 0
	recorder, _ := newTestRecorder(t, &fakeStream{}, &opens)

	if err := recorder.Start(context.Background()); err != nil {
		t.Fatalf("first start: %v", err)
	}
	defer recorder.Stop()

	err := recorder.Start(context.Background())
	if !errors.Is(err, application.ErrAlreadyRecording) {
		t.Fatalf("second start: got %v, want ErrAlreadyRecording", err)
	}
	if opens != 1 {
		t.Errorf("streams opened: got %d, want 1", opens)
	}
}

func TestRecorder_StopWhenIdle(t *testing.T) {
	recorder, path := newTestRecorder(t, &fakeStream{}, nil)

	_, err := recorder.Stop()
	if !errors.Is(err, application.ErrNotRecording) {
		t.Fatalf("stop when idle: got %v, want ErrNotRecording", err)
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("idle stop should not write a file")
	}
}

func TestRecorder_StopWithoutFrames(t *testing.T) {
	recorder, _ := newTestRecorder(t, &fakeStream{}, nil)

	if err := recorder.Start(context.Background()); err != nil {
		t.Fatalf("starting recorder: %v", err)
	}

	got, err := recorder.Stop()
	if err != nil {
		t.Fatalf("stopping recorder with empty buffer: %v", err)
	}

	info, err := os.Stat(got)
	if err != nil {
		t.Fatalf("stat on output: %v", err)
	}
	if info.Size() == 0 {
		t.Error("expected at least a wav header")
	}
}

func TestRecorder_StreamErrorEndsCapture(t *testing.T) {
	stream := &errorStream{err: errors.New("device gone")}
	recorder, _ := newTestRecorder(t, stream, nil)

	if err := recorder.Start(context.Background()); err != nil {
		t.Fatalf("starting recorder: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for !stream.isClosed() {
		if time.Now().After(deadline) {
			t.Fatal("timeout waiting for capture loop to exit")
		}
		time.Sleep(time.Millisecond)
	}

	// The failed capture still stops cleanly and writes the file.
	if _, err := recorder.Stop(); err != nil {
		t.Fatalf("stopping after stream error: %v", err)
	}
}

type errorStream struct {
	mu     sync.Mutex
	err    error
	closed bool
}

func (e *errorStream) ReadFrame() ([]int16, error) {
	return nil, e.err
}

func (e *errorStream) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

func (e *errorStream) isClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}
