package notify

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Domenick1991/tourbooking/internal/kafka"
	"github.com/Domenick1991/tourbooking/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMessage(t *testing.T) {
	expires := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	held := kafka.BookingEvent{Type: kafka.EventBookingHeld, PackageID: "pkg-1", SeatIDs: []string{"L-A1", "L-A2"}, TotalAmount: 2000, HoldExpiresAt: &expires}

	text, ok := Message(held)
	require.True(t, ok)
	assert.Contains(t, text, "seats L-A1, L-A2")
	assert.Contains(t, text, "Sat, 17 Oct 2026 12:00:00 UTC")

	text, ok = Message(kafka.BookingEvent{Type: kafka.EventHoldExpired, BookingID: "bk-1"})
	require.True(t, ok)
	assert.Contains(t, text, "no assigned seats")

	text, ok = Message(kafka.BookingEvent{Type: kafka.EventBookingCancelled, BookingID: "bk-1", LeadGuest: "Karim"})
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(text, "Dear Karim, Booking bk-1"), text)

	_, ok = Message(kafka.BookingEvent{Type: "something_else", LeadGuest: "Karim"})
	assert.False(t, ok)
}

func TestNotifier_Handle(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	n := NewNotifier(&logger.Logger{Logger: zap.New(core)})

	err := n.Handle(context.Background(), kafka.BookingEvent{
		Type:      kafka.EventBookingCancelled,
		BookingID: "bk-1",
		Guests: []kafka.EventGuest{
			{Name: "Karim", Phone: "+8801700000000"},
			{Name: "Lina"},
		},
	})

	require.NoError(t, err)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "+8801700000000", logs.All()[0].ContextMap()["phone"])
}
