package engine

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestHandle(t *testing.T) *controlHandle {
	t.Helper()
	h := newControlHandle(slog.Default())
	h.start()
	t.Cleanup(func() {
		_ = h.Disconnect()
	})
	return h
}

func TestControlHandle_AppliesSuppressionLevel(t *testing.T) {
	h := newTestHandle(t)

	h.Send(ControlMessage{Type: MessageSetSuppressionLevel, Level: 40})

	assert.Eventually(t, func() bool {
		return h.suppressionLevel() == 40
	}, time.Second, time.Millisecond, "pump should apply the level message")
}

func TestControlHandle_AppliesBypass(t *testing.T) {
	h := newTestHandle(t)

	h.Send(ControlMessage{Type: MessageSetBypass, Bypass: true})

	assert.Eventually(t, func() bool {
		return h.bypassed()
	}, time.Second, time.Millisecond, "pump should apply the bypass message")
}

func TestControlHandle_PreservesSendOrder(t *testing.T) {
	h := newTestHandle(t)

	// Last write wins: the pump drains a single channel in send order.
	h.Send(ControlMessage{Type: MessageSetSuppressionLevel, Level: 10})
	h.Send(ControlMessage{Type: MessageSetSuppressionLevel, Level: 90})
	h.Send(ControlMessage{Type: MessageSetSuppressionLevel, Level: 55})

	assert.Eventually(t, func() bool {
		return h.suppressionLevel() == 55
	}, time.Second, time.Millisecond, "last message in send order should win")
}

func TestControlHandle_SendAfterDisconnectIsNoop(t *testing.T) {
	h := newTestHandle(t)

	assert.NoError(t, h.Disconnect())

	// Delivery is assumed, not confirmed: a post-disconnect send is
	// silently dropped and must never panic.
	h.Send(ControlMessage{Type: MessageSetSuppressionLevel, Level: 70})
	assert.NotEqual(t, 70, h.suppressionLevel(), "message after disconnect must be dropped")
}

func TestControlHandle_DisconnectIdempotent(t *testing.T) {
	h := newTestHandle(t)

	assert.NoError(t, h.Disconnect(), "first disconnect")
	assert.NoError(t, h.Disconnect(), "second disconnect must be a no-op")
}

func TestControlHandle_UnknownMessageIgnored(t *testing.T) {
	h := newTestHandle(t)

	h.Send(ControlMessage{Type: "SET_WARP_SPEED", Level: 9})
	h.Send(ControlMessage{Type: MessageSetSuppressionLevel, Level: 33})

	assert.Eventually(t, func() bool {
		return h.suppressionLevel() == 33
	}, time.Second, time.Millisecond, "unknown message must not stall the pump")
}
