package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/foxseedlab/debrief/internal/apperror"
	"github.com/foxseedlab/debrief/internal/capture"
	"github.com/gorilla/websocket"
)

// Messages exchanged on the capture stream. Audio travels as binary frames
// from the client; everything else is a JSON text frame.
const (
	protocolVersion = 1

	msgAcquire = "acquire"
	msgGranted = "granted"
	msgDenied  = "denied"
	msgStop    = "stop"
	msgStopped = "stopped"
	msgError   = "error"

	writeTimeout = 5 * time.Second
)

var errStreamClosed = errors.New("capture stream closed")

type controlMessage struct {
	Version     int                  `json:"v"`
	Type        string               `json:"type"`
	Constraints *capture.Constraints `json:"constraints,omitempty"`
	TimesliceMs int64                `json:"timesliceMs,omitempty"`
	MimeType    string               `json:"mimeType,omitempty"`
	Error       string               `json:"error,omitempty"`
	Kind        apperror.Kind        `json:"kind,omitempty"`
}

type wsConn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// streamDevice is a capture.Device backed by a browser MediaRecorder on the
// other end of a WebSocket. It is also the Recorder it hands out.
type streamDevice struct {
	conn    wsConn
	writeMu sync.Mutex

	replies chan controlMessage
	chunks  chan []byte
	done    chan struct{}

	mu        sync.Mutex
	mediaType string
	recording bool

	releaseOnce sync.Once
}

func newStreamDevice(conn wsConn) *streamDevice {
	return &streamDevice{
		conn:    conn,
		replies: make(chan controlMessage, 1),
		chunks:  make(chan []byte, 64),
		done:    make(chan struct{}),
	}
}

func (d *streamDevice) Done() <-chan struct{} {
	return d.done
}

func (d *streamDevice) Acquire(ctx context.Context, constraints capture.Constraints, timeslice time.Duration) (capture.Recorder, error) {
	if err := d.send(controlMessage{
		Version:     protocolVersion,
		Type:        msgAcquire,
		Constraints: &constraints,
		TimesliceMs: timeslice.Milliseconds(),
	}); err != nil {
		return nil, err
	}
	select {
	case reply := <-d.replies:
		if reply.Type == msgDenied {
			if reply.Error == "" {
				reply.Error = "permission denied"
			}
			return nil, errors.New(reply.Error)
		}
		return d, nil
	case <-d.done:
		return nil, errStreamClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (d *streamDevice) MediaType() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mediaType
}

func (d *streamDevice) Chunks() <-chan []byte {
	return d.chunks
}

// Stop asks the client to flush its recorder; the client answers with the
// last binary frame followed by "stopped".
func (d *streamDevice) Stop() error {
	return d.send(controlMessage{Version: protocolVersion, Type: msgStop})
}

func (d *streamDevice) Release() {
	d.releaseOnce.Do(func() {
		_ = d.conn.Close()
	})
}

func (d *streamDevice) sendError(message string, kind apperror.Kind) {
	if err := d.send(controlMessage{Version: protocolVersion, Type: msgError, Error: message, Kind: kind}); err != nil {
		slog.Debug("failed to send stream error", "error", err)
	}
}

func (d *streamDevice) send(msg controlMessage) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	d.writeMu.Lock()
	defer d.writeMu.Unlock()
	_ = d.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return d.conn.WriteMessage(websocket.TextMessage, b)
}

// readPump is the only writer to chunks, so it alone closes it: on "stopped"
// or when the connection drops.
func (d *streamDevice) readPump() {
	defer close(d.done)
	chunksOpen := true
	closeChunks := func() {
		if chunksOpen {
			close(d.chunks)
			chunksOpen = false
		}
	}
	defer closeChunks()

	for {
		mt, data, err := d.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Debug("capture stream read ended", "error", err)
			}
			return
		}
		switch mt {
		case websocket.BinaryMessage:
			if chunksOpen && d.isRecording() && len(data) > 0 {
				d.chunks <- data
			}
		case websocket.TextMessage:
			var msg controlMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				slog.Warn("invalid capture control message", "error", err)
				continue
			}
			if msg.Version != protocolVersion {
				slog.Warn("unsupported capture protocol version", "version", msg.Version, "type", msg.Type)
				continue
			}
			switch msg.Type {
			case msgGranted, msgDenied:
				if msg.Type == msgGranted {
					d.mu.Lock()
					d.mediaType = msg.MimeType
					d.recording = true
					d.mu.Unlock()
				}
				select {
				case d.replies <- msg:
				default:
				}
			case msgStopped:
				closeChunks()
			}
		}
	}
}

func (d *streamDevice) isRecording() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.recording
}
