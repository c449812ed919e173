package domain

type SeatStatus string

const (
	SeatAvailable SeatStatus = "available"
	SeatBlocked   SeatStatus = "blocked"
	SeatHeld      SeatStatus = "held"
	SeatBooked    SeatStatus = "booked"
	SeatSold      SeatStatus = "sold"
)

func (s SeatStatus) Valid() bool {
	switch s {
	case SeatAvailable, SeatBlocked, SeatHeld, SeatBooked, SeatSold:
		return true
	}
	return false
}

// SeatChange is the payload written together with a seat status.
// Fields that do not belong to Status are cleared on apply.
type SeatChange struct {
	Status        SeatStatus
	BookedBy      *Passenger
	BlockedReason string
	HeldFor       string
}

// Apply writes the change onto the seat, keeping only fields valid for the new status.
func (c SeatChange) Apply(seat *Seat) {
	seat.Status = c.Status
	seat.BookedBy = nil
	seat.BlockedReason = ""
	seat.HeldFor = ""
	switch c.Status {
	case SeatBooked, SeatSold:
		if c.BookedBy != nil {
			p := *c.BookedBy
			seat.BookedBy = &p
		}
	case SeatBlocked:
		seat.BlockedReason = c.BlockedReason
	case SeatHeld:
		seat.HeldFor = c.HeldFor
	}
}
