package seatmap

import (
	"github.com/Domenick1991/tourbooking/internal/domain"
)

// Booked and sold seats go back to held only when a hold confirmation is undone.
var transitions = map[domain.SeatStatus][]domain.SeatStatus{
	domain.SeatAvailable: {domain.SeatBlocked, domain.SeatHeld, domain.SeatBooked, domain.SeatSold},
	domain.SeatBlocked:   {domain.SeatAvailable},
	domain.SeatHeld:      {domain.SeatAvailable, domain.SeatBooked, domain.SeatSold},
	domain.SeatBooked:    {domain.SeatAvailable, domain.SeatHeld},
	domain.SeatSold:      {domain.SeatAvailable, domain.SeatHeld},
}

// CanTransition reports whether a seat may move from one status to another.
func CanTransition(from, to domain.SeatStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition validates and applies a change to a single seat. The seat must be
// in status expected, otherwise nothing is written and SeatUnavailable is returned.
func Transition(packageID string, seat *domain.Seat, expected domain.SeatStatus, change domain.SeatChange) error {
	if !CanTransition(expected, change.Status) {
		return domain.InvalidState("seat %s cannot move from %s to %s", seat.ID, expected, change.Status)
	}
	if seat.Status != expected {
		return &domain.Error{
			Kind:      domain.ErrSeatUnavailable,
			PackageID: packageID,
			SeatID:    seat.ID,
			Msg:       "seat is " + string(seat.Status),
		}
	}
	change.Apply(seat)
	return nil
}

// ReleaseChange returns seats to the pool.
func ReleaseChange() domain.SeatChange {
	return domain.SeatChange{Status: domain.SeatAvailable}
}

func BookChange(p domain.Passenger) domain.SeatChange {
	return domain.SeatChange{Status: domain.SeatBooked, BookedBy: &p}
}

func HoldChange(bookingID string) domain.SeatChange {
	return domain.SeatChange{Status: domain.SeatHeld, HeldFor: bookingID}
}

func BlockChange(reason string) domain.SeatChange {
	return domain.SeatChange{Status: domain.SeatBlocked, BlockedReason: reason}
}
