package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_IsMatchesKind(t *testing.T) {
	err := SeatUnavailable("pkg-1", "L-A1")

	assert.True(t, errors.Is(err, ErrSeatUnavailable))
	assert.False(t, errors.Is(err, ErrUnknownSeat))
	assert.Equal(t, "seat unavailable: package pkg-1: seat L-A1", err.Error())
}

func TestError_WrappedKeepsContext(t *testing.T) {
	wrapped := fmt.Errorf("checkout: %w", SeatCountMismatch("pkg-2", 3, 2))

	require.True(t, errors.Is(wrapped, ErrSeatCountMismatch))
	de, ok := AsError(wrapped)
	require.True(t, ok)
	assert.Equal(t, "pkg-2", de.PackageID)
	assert.Contains(t, de.Error(), "3 named guests but 2 seats selected")
}

func TestError_UnwrapCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := &Error{Kind: ErrNotFound, Err: cause}

	assert.True(t, errors.Is(err, cause))
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestArrangementTable(t *testing.T) {
	cases := []struct {
		arrangement Arrangement
		left, right int
	}{
		{Arrangement1x1, 1, 1},
		{Arrangement2x1, 2, 1},
		{Arrangement2x2, 2, 2},
		{Arrangement2x3, 2, 3},
		{Arrangement3x2, 3, 2},
	}
	for _, tc := range cases {
		t.Run(string(tc.arrangement), func(t *testing.T) {
			left, right := tc.arrangement.Split()
			assert.Equal(t, tc.left, left)
			assert.Equal(t, tc.right, right)
			assert.Equal(t, tc.left+tc.right, tc.arrangement.SeatsPerRow())
			assert.True(t, tc.arrangement.Valid())
		})
	}
	assert.False(t, Arrangement("4x4").Valid())
	assert.Zero(t, Arrangement("4x4").SeatsPerRow())
}

func TestSeatChange_ApplyClearsForeignFields(t *testing.T) {
	seat := Seat{ID: "L-A1", Status: SeatBlocked, BlockedReason: "driver"}

	SeatChange{Status: SeatBooked, BookedBy: &Passenger{Name: "Rahim", Gender: "male"}}.Apply(&seat)
	assert.Equal(t, SeatBooked, seat.Status)
	assert.Empty(t, seat.BlockedReason)
	require.NotNil(t, seat.BookedBy)
	assert.Equal(t, "Rahim", seat.BookedBy.Name)

	SeatChange{Status: SeatAvailable}.Apply(&seat)
	assert.Nil(t, seat.BookedBy)
	assert.Equal(t, SeatAvailable, seat.Status)
}

func TestPackageBooking_NamedGuests(t *testing.T) {
	pb := PackageBooking{Guests: []Guest{{Name: "A"}, {Name: "  "}, {Name: "B"}}}
	named := pb.NamedGuests()
	require.Len(t, named, 2)
	assert.Equal(t, "B", named[1].Name)
}
