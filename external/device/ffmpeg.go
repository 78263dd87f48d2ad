// Package device captures microphone audio on the local machine through ffmpeg.
package device

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"github.com/foxseedlab/debrief/internal/capture"
)

const (
	mediaType     = "audio/webm;codecs=opus"
	readChunkSize = 32 * 1024
	startupWindow = 300 * time.Millisecond
)

type FFmpegConfig struct {
	Path        string
	InputFormat string
	InputDevice string
}

// FFmpegDevice records from a local input and encodes WebM/Opus on stdout.
type FFmpegDevice struct {
	path        string
	inputFormat string
	inputDevice string
}

func NewFFmpegDevice(cfg FFmpegConfig) capture.Device {
	path := cfg.Path
	if path == "" {
		path = "ffmpeg"
	}
	return &FFmpegDevice{
		path:        path,
		inputFormat: cfg.InputFormat,
		inputDevice: cfg.InputDevice,
	}
}

func (d *FFmpegDevice) Args(c capture.Constraints) []string {
	args := []string{"-hide_banner", "-loglevel", "error", "-nostdin"}
	if d.inputFormat != "" {
		args = append(args, "-f", d.inputFormat)
	}
	args = append(args, "-i", d.inputDevice)
	if c.NoiseSuppression {
		args = append(args, "-af", "afftdn")
	}
	if c.SampleRate > 0 {
		args = append(args, "-ar", strconv.Itoa(opusSampleRate(c.SampleRate)))
	}
	return append(args, "-c:a", "libopus", "-f", "webm", "pipe:1")
}

// Acquire starts ffmpeg. A process that exits within the startup window is
// treated as a refused device.
func (d *FFmpegDevice) Acquire(ctx context.Context, c capture.Constraints, timeslice time.Duration) (capture.Recorder, error) {
	cmd := exec.Command(d.path, d.Args(c)...)
	// A plain pipe instead of StdoutPipe so Wait can run while the tail of
	// the container is still being read.
	stdout, pw, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	cmd.Stdout = pw
	stderr := &tailBuffer{limit: 4096}
	cmd.Stderr = stderr
	if err := cmd.Start(); err != nil {
		_ = stdout.Close()
		_ = pw.Close()
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}
	_ = pw.Close()

	r := &ffmpegRecorder{
		cmd:    cmd,
		chunks: make(chan []byte, 8),
		exited: make(chan struct{}),
	}
	go func() {
		r.waitErr = cmd.Wait()
		close(r.exited)
	}()

	select {
	case <-r.exited:
		_ = stdout.Close()
		return nil, fmt.Errorf("ffmpeg exited during startup: %v: %s", r.waitErr, stderr.String())
	case <-ctx.Done():
		r.Release()
		_ = stdout.Close()
		return nil, ctx.Err()
	case <-time.After(startupWindow):
	}

	go func() {
		r.pump(stdout, timeslice)
		_ = stdout.Close()
	}()
	slog.Info("ffmpeg capture started", "pid", cmd.Process.Pid, "input_format", d.inputFormat, "input_device", d.inputDevice)
	return r, nil
}

type ffmpegRecorder struct {
	cmd     *exec.Cmd
	chunks  chan []byte
	exited  chan struct{}
	waitErr error

	releaseOnce sync.Once
}

func (r *ffmpegRecorder) MediaType() string {
	return mediaType
}

func (r *ffmpegRecorder) Chunks() <-chan []byte {
	return r.chunks
}

// pump forwards stdout, batching reads so each chunk covers about one timeslice.
func (r *ffmpegRecorder) pump(stdout io.Reader, timeslice time.Duration) {
	defer close(r.chunks)
	buf := make([]byte, readChunkSize)
	var pending []byte
	lastFlush := time.Now()
	for {
		n, err := stdout.Read(buf)
		if n > 0 {
			pending = append(pending, buf[:n]...)
			if time.Since(lastFlush) >= timeslice {
				r.chunks <- pending
				pending = nil
				lastFlush = time.Now()
			}
		}
		if err != nil {
			if len(pending) > 0 {
				r.chunks <- pending
			}
			if !errors.Is(err, io.EOF) && !errors.Is(err, os.ErrClosed) {
				slog.Warn("ffmpeg stdout read failed", "error", err)
			}
			return
		}
	}
}

// Stop asks ffmpeg to finish the container. Chunks closes once it exits.
func (r *ffmpegRecorder) Stop() error {
	select {
	case <-r.exited:
		return nil
	default:
	}
	return r.cmd.Process.Signal(os.Interrupt)
}

func (r *ffmpegRecorder) Release() {
	r.releaseOnce.Do(func() {
		select {
		case <-r.exited:
			return
		default:
		}
		if err := r.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			slog.Warn("failed to kill ffmpeg", "error", err)
		}
	})
}

func opusSampleRate(requested int) int {
	for _, rate := range []int{8000, 12000, 16000, 24000, 48000} {
		if requested <= rate {
			return rate
		}
	}
	return 48000
}

type tailBuffer struct {
	mu    sync.Mutex
	limit int
	buf   []byte
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = append(b.buf, p...)
	if len(b.buf) > b.limit {
		b.buf = b.buf[len(b.buf)-b.limit:]
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.buf)
}
