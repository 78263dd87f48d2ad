package device

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/foxseedlab/debrief/internal/capture"
)

func TestArgs(t *testing.T) {
	d := NewFFmpegDevice(FFmpegConfig{InputFormat: "pulse", InputDevice: "default"}).(*FFmpegDevice)
	got := strings.Join(d.Args(capture.DefaultConstraints), " ")
	want := "-hide_banner -loglevel error -nostdin -f pulse -i default -af afftdn -ar 48000 -c:a libopus -f webm pipe:1"
	if got != want {
		t.Fatalf("unexpected args:\n got: %s\nwant: %s", got, want)
	}
	if d.path != "ffmpeg" {
		t.Fatalf("expected default ffmpeg path, got %q", d.path)
	}

	got = strings.Join(d.Args(capture.Constraints{}), " ")
	if strings.Contains(got, "afftdn") || strings.Contains(got, "-ar") {
		t.Fatalf("unexpected filters without constraints: %s", got)
	}
}

func TestOpusSampleRate(t *testing.T) {
	cases := map[int]int{8000: 8000, 11025: 12000, 16000: 16000, 44100: 48000, 96000: 48000}
	for in, want := range cases {
		if got := opusSampleRate(in); got != want {
			t.Fatalf("opusSampleRate(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestPump_FlushesRemainderOnEOF(t *testing.T) {
	r := &ffmpegRecorder{chunks: make(chan []byte, 8)}
	go r.pump(io.MultiReader(bytes.NewReader([]byte("abc")), bytes.NewReader([]byte("def"))), time.Hour)

	var got []byte
	for chunk := range r.chunks {
		got = append(got, chunk...)
	}
	if string(got) != "abcdef" {
		t.Fatalf("unexpected data: %q", got)
	}
}

func TestAcquire_MissingBinaryFails(t *testing.T) {
	d := NewFFmpegDevice(FFmpegConfig{Path: "/nonexistent/ffmpeg-binary", InputDevice: "default"})
	if _, err := d.Acquire(context.Background(), capture.DefaultConstraints, time.Second); err == nil {
		t.Fatal("expected error for missing binary")
	}
}

func TestTailBuffer_KeepsLastBytes(t *testing.T) {
	b := &tailBuffer{limit: 4}
	_, _ = b.Write([]byte("abcdef"))
	if b.String() != "cdef" {
		t.Fatalf("unexpected tail: %q", b.String())
	}
}
