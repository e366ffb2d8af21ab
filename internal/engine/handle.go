package engine

import (
	"log/slog"
	"sync"
	"sync/atomic"

	tflite "github.com/tphakala/go-tflite"
)

// controlQueueSize bounds the fire-and-forget control channel. The queue is
// drained by a single goroutine so send order is preserved; when the queue
// is full messages are dropped rather than blocking the caller.
const controlQueueSize = 16

// controlHandle pumps control messages from a buffered channel into
// parameters the real-time path reads atomically. There is no
// acknowledgement: a successful Send means queued, not applied.
type controlHandle struct {
	ctrl chan ControlMessage
	done chan struct{}
	wg   sync.WaitGroup
	log  *slog.Logger

	// Parameters read by the real-time path.
	level  atomic.Int64
	bypass atomic.Bool

	disconnectOnce sync.Once

	interpreter *tflite.Interpreter
	modelData   []byte
}

func newControlHandle(log *slog.Logger) *controlHandle {
	return &controlHandle{
		ctrl: make(chan ControlMessage, controlQueueSize),
		done: make(chan struct{}),
		log:  log,
	}
}

// start launches the control pump.
func (h *controlHandle) start() {
	h.wg.Add(1)
	go h.pump()
}

func (h *controlHandle) pump() {
	defer h.wg.Done()
	for {
		select {
		case <-h.done:
			return
		case msg := <-h.ctrl:
			h.apply(msg)
		}
	}
}

func (h *controlHandle) apply(msg ControlMessage) {
	switch msg.Type {
	case MessageSetSuppressionLevel:
		h.level.Store(int64(msg.Level))
	case MessageSetBypass:
		h.bypass.Store(msg.Bypass)
	default:
		h.log.Warn("unknown control message type", "type", string(msg.Type))
	}
}

// Send queues a control message. Never blocks; drops the message if the
// handle is disconnected or the queue is full.
func (h *controlHandle) Send(msg ControlMessage) {
	select {
	case <-h.done:
		return
	default:
	}
	select {
	case h.ctrl <- msg:
	default:
		h.log.Warn("control queue full, message dropped", "type", string(msg.Type))
	}
}

// Disconnect stops the control pump and releases the interpreter. Safe to
// call more than once.
func (h *controlHandle) Disconnect() error {
	h.disconnectOnce.Do(func() {
		close(h.done)
		h.wg.Wait()
		if h.interpreter != nil {
			h.interpreter.Delete()
			h.interpreter = nil
		}
		h.modelData = nil
		h.log.Debug("execution handle disconnected")
	})
	return nil
}

// suppressionLevel returns the last applied suppression intensity.
func (h *controlHandle) suppressionLevel() int {
	return int(h.level.Load())
}

// bypassed returns the last applied bypass state.
func (h *controlHandle) bypassed() bool {
	return h.bypass.Load()
}
