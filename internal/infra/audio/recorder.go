package audio

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"mood-journal/internal/application"
)

// Stream delivers fixed-size frames of 16-bit PCM samples from an input
// device. ReadFrame blocks until a frame is available.
type Stream interface {
	ReadFrame() ([]int16, error)
	Close() error
}

// OpenStreamFunc opens a mono input stream at the given sample rate reading
// frameSize samples per call.
type OpenStreamFunc func(sampleRate, frameSize int) (Stream, error)

// Recorder buffers frames from an input stream between Start and Stop, then
// writes them as one mono 16-bit WAV file. All state transitions happen
// under the mutex, so concurrent start or stop calls cannot double-start a
// capture or process the same buffer twice.
type Recorder struct {
	sampleRate int
	frameSize  int
	outPath    string
	open       OpenStreamFunc
	logger     *slog.Logger

	mu     sync.Mutex
	active bool
	frames [][]int16
	cancel context.CancelFunc
	done   chan struct{}
}

func NewRecorder(sampleRate, frameSize int, outPath string, open OpenStreamFunc, logger *slog.Logger) *Recorder {
	return &Recorder{
		sampleRate: sampleRate,
		frameSize:  frameSize,
		outPath:    outPath,
		open:       open,
		logger:     logger,
	}
}

func (r *Recorder) Start(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active {
		return application.ErrAlreadyRecording
	}

	stream, err := r.open(r.sampleRate, r.frameSize)
	if err != nil {
		return fmt.Errorf("opening input stream: %w", err)
	}

	captureCtx, cancel := context.WithCancel(context.Background())
	r.active = true
	r.frames = nil
	r.cancel = cancel
	r.done = make(chan struct{})

	go r.capture(captureCtx, stream, r.done)

	return nil
}

// capture reads frames until cancelled. A stream error ends the loop and
// closes the stream; the buffered frames survive for Stop to flush.
func (r *Recorder) capture(ctx context.Context, stream Stream, done chan struct{}) {
	defer close(done)
	defer func() {
		if err := stream.Close(); err != nil {
			r.logger.Error("closing input stream", "error", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		frame, err := stream.ReadFrame()
		if err != nil {
			r.logger.Error("reading from input stream", "error", err)
			return
		}
		if len(frame) == 0 {
			continue
		}

		r.mu.Lock()
		r.frames = append(r.frames, frame)
		r.mu.Unlock()
	}
}

func (r *Recorder) Stop() (string, error) {
	r.mu.Lock()
	if !r.active {
		r.mu.Unlock()
		return "", application.ErrNotRecording
	}
	r.active = false
	cancel := r.cancel
	done := r.done
	r.mu.Unlock()

	cancel()
	<-done

	r.mu.Lock()
	frames := r.frames
	r.frames = nil
	r.mu.Unlock()

	samples := concat(frames)
	r.logger.Info("capture finished", "frames", len(frames), "samples", len(samples))

	if err := writeWAV(r.outPath, samples, r.sampleRate); err != nil {
		return "", fmt.Errorf("writing %s: %w", r.outPath, err)
	}

	return r.outPath, nil
}

// concat flattens the captured frames in order. Zero frames yield an empty
// sample slice, which still produces a valid header-only WAV file.
func concat(frames [][]int16) []int16 {
	total := 0
	for _, f := range frames {
		total += len(f)
	}
	samples := make([]int16, 0, total)
	for _, f := range frames {
		samples = append(samples, f...)
	}
	return samples
}

func writeWAV(path string, samples []int16, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	buf := &gaudio.IntBuffer{
		Format: &gaudio.Format{
			NumChannels: 1,
			SampleRate:  sampleRate,
		},
		Data:           make([]int, len(samples)),
		SourceBitDepth: 16,
	}
	for i, s := range samples {
		buf.Data[i] = int(s)
	}

	if err := enc.Write(buf); err != nil {
		enc.Close()
		f.Close()
		return fmt.Errorf("encoding samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("finalizing wav: %w", err)
	}

	return f.Close()
}
