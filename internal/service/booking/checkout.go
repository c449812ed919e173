package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/Domenick1991/tourbooking/internal/holdexpiry"
	"github.com/Domenick1991/tourbooking/internal/kafka"
	"github.com/Domenick1991/tourbooking/internal/pricing"
	"github.com/Domenick1991/tourbooking/internal/seatmap"
	"go.uber.org/zap"
)

type CheckoutInput struct {
	AgencyID       string                  `json:"agency_id"`
	Initiator      domain.Initiator        `json:"initiator"`
	Packages       []domain.PackageBooking `json:"packages"`
	DiscountAmount int64                   `json:"discount_amount"`
	AdvancePaid    int64                   `json:"advance_paid"`
	PaymentMethod  domain.PaymentMethod    `json:"payment_method"`
	TransactionRef string                  `json:"transaction_ref"`
	Hold           bool                    `json:"hold"`
}

type CheckoutResult struct {
	CheckoutID     string           `json:"checkout_id"`
	Bookings       []domain.Booking `json:"bookings"`
	Subtotal       int64            `json:"subtotal"`
	DiscountAmount int64            `json:"discount_amount"`
	TotalAmount    int64            `json:"total_amount"`
	MinimumAdvance int64            `json:"minimum_advance"`
	AdvancePaid    int64            `json:"advance_paid"`
	DueAmount      int64            `json:"due_amount"`
	Hold           bool             `json:"hold"`
	HoldExpiresAt  *time.Time       `json:"hold_expires_at,omitempty"`
}

// draft is one package of a checkout after validation.
type draft struct {
	pkg      domain.PackageBooking
	named    []domain.Guest
	layout   *domain.SeatLayout
	subtotal int64
}

type seatClaim struct {
	packageID string
	seatID    string
	status    domain.SeatStatus
}

// Checkout validates every package, prices the whole order, claims all seats
// and stores one booking per package. Either every package is booked or
// nothing is written.
func (s *BookingService) Checkout(ctx context.Context, input CheckoutInput) (*CheckoutResult, error) {
	drafts, err := s.prepare(ctx, input.Packages)
	if err != nil {
		return nil, err
	}

	agencyID := input.AgencyID
	if agencyID == "" {
		agencyID = drafts[0].pkg.Package.AgencyID
	}

	subtotals := make([]int64, len(drafts))
	var subtotal int64
	for i, d := range drafts {
		subtotals[i] = d.subtotal
		subtotal += d.subtotal
	}
	if input.DiscountAmount < 0 || input.DiscountAmount > subtotal {
		return nil, domain.InvalidAmount("discount %d must be between 0 and %d", input.DiscountAmount, subtotal)
	}
	total := subtotal - input.DiscountAmount

	discounts := pricing.Proportional(input.DiscountAmount, subtotals)
	finals := make([]int64, len(drafts))
	for i := range drafts {
		finals[i] = subtotals[i] - discounts[i]
	}

	settings, err := s.settingsFor(ctx, agencyID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	result := &CheckoutResult{
		CheckoutID:     s.newID(),
		Subtotal:       subtotal,
		DiscountAmount: input.DiscountAmount,
		TotalAmount:    total,
		MinimumAdvance: pricing.MinimumAdvance(total, settings.MinimumAdvanceAmount, settings.MinimumAdvancePercentage, settings.UsePercentage),
		Hold:           input.Hold,
	}

	advances := make([]int64, len(drafts))
	if input.Hold {
		if input.Initiator.Role != domain.RoleAgencyAdmin && !settings.AllowAgentHold {
			return nil, domain.HoldNotPermitted(agencyID)
		}
		minutes := settings.HoldDurationMinutes
		if minutes <= 0 {
			minutes = s.holdMinutes
		}
		expiresAt := holdexpiry.ExpiresAt(now, minutes)
		result.HoldExpiresAt = &expiresAt
	} else {
		payment := PaymentInput{AdvancePaid: input.AdvancePaid, PaymentMethod: input.PaymentMethod, TransactionRef: input.TransactionRef}
		if err := validatePayment(total, payment, settings); err != nil {
			return nil, err
		}
		advances = pricing.Allocate(input.AdvancePaid, finals)
		result.AdvancePaid = input.AdvancePaid
	}

	bookings := make([]domain.Booking, len(drafts))
	for i, d := range drafts {
		b := domain.Booking{
			ID:             s.newID(),
			CheckoutID:     result.CheckoutID,
			AgencyID:       agencyID,
			PackageID:      d.pkg.PackageID,
			Guests:         assignSeats(d),
			BoardingPoint:  d.pkg.BoardingPoint,
			DroppingPoint:  d.pkg.DroppingPoint,
			Subtotal:       subtotals[i],
			DiscountAmount: discounts[i],
			TotalAmount:    finals[i],
			AdvancePaid:    advances[i],
			DueAmount:      finals[i] - advances[i],
			CreatedBy:      input.Initiator.UserID,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if d.layout != nil {
			b.SeatIDs = append([]string(nil), d.pkg.SelectedSeatIDs...)
		}
		if input.Hold {
			b.Status = domain.BookingStatusHold
			b.HoldExpiresAt = result.HoldExpiresAt
		} else {
			b.Status = paidStatus(b.DueAmount)
			b.PaymentMethod = input.PaymentMethod.Name
			b.TransactionRef = strings.TrimSpace(input.TransactionRef)
		}
		result.DueAmount += b.DueAmount
		bookings[i] = b
	}

	claimed, err := s.claimSeats(ctx, bookings)
	if err != nil {
		return nil, err
	}
	if err := s.bookings.CreateMany(ctx, bookings); err != nil {
		s.rollback(ctx, claimed)
		return nil, fmt.Errorf("save bookings for checkout %s: %w", result.CheckoutID, err)
	}

	event := kafka.EventBookingCreated
	if input.Hold {
		event = kafka.EventBookingHeld
	}
	s.publishAll(ctx, event, bookings)

	s.log.InfoContext(ctx, "checkout completed",
		zap.String("checkout_id", result.CheckoutID),
		zap.Int("packages", len(bookings)),
		zap.Bool("hold", input.Hold),
		zap.Int64("total", total))

	result.Bookings = bookings
	return result, nil
}

// prepare runs the ordered validation: empty selection, then fares and guest
// types, then seat counts for every package, then availability of every
// selected seat.
func (s *BookingService) prepare(ctx context.Context, packages []domain.PackageBooking) ([]draft, error) {
	drafts := make([]draft, 0, len(packages))
	for _, pb := range packages {
		named := pb.NamedGuests()
		if len(named) == 0 {
			continue
		}
		drafts = append(drafts, draft{pkg: pb, named: named, subtotal: pricing.PackageSubtotal(pb)})
	}
	if len(drafts) == 0 {
		return nil, domain.EmptySelection()
	}
	for _, d := range drafts {
		if err := pricing.Validate(d.pkg); err != nil {
			return nil, err
		}
	}

	for i := range drafts {
		d := &drafts[i]
		l, err := s.seats.GetLayout(ctx, d.pkg.PackageID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			if len(d.pkg.SelectedSeatIDs) > 0 {
				return nil, domain.UnknownSeat(d.pkg.PackageID, d.pkg.SelectedSeatIDs[0])
			}
			continue
		case err != nil:
			return nil, fmt.Errorf("load seat layout for package %s: %w", d.pkg.PackageID, err)
		}
		if len(d.pkg.SelectedSeatIDs) != len(d.named) {
			return nil, domain.SeatCountMismatch(d.pkg.PackageID, len(d.named), len(d.pkg.SelectedSeatIDs))
		}
		d.layout = l
	}

	for _, d := range drafts {
		if d.layout == nil {
			continue
		}
		if err := checkAvailable(d.pkg.PackageID, d.layout, d.pkg.SelectedSeatIDs); err != nil {
			return nil, err
		}
	}
	return drafts, nil
}

func checkAvailable(packageID string, l *domain.SeatLayout, ids []string) error {
	reg := seatmap.NewRegistry(*l)
	if err := reg.Lookup(ids); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return &domain.Error{Kind: domain.ErrSeatUnavailable, PackageID: packageID, SeatID: id, Msg: "seat selected more than once"}
		}
		seen[id] = struct{}{}
		if seat, _ := reg.Seat(id); seat.Status != domain.SeatAvailable {
			return &domain.Error{Kind: domain.ErrSeatUnavailable, PackageID: packageID, SeatID: id, Msg: "seat is " + string(seat.Status)}
		}
	}
	return nil
}

// assignSeats gives the i-th named guest the i-th selected seat.
func assignSeats(d draft) []domain.Guest {
	guests := make([]domain.Guest, len(d.named))
	copy(guests, d.named)
	for i := range guests {
		guests[i].SeatID = ""
		if d.layout != nil && i < len(d.pkg.SelectedSeatIDs) {
			guests[i].SeatID = d.pkg.SelectedSeatIDs[i]
		}
	}
	return guests
}

// claimSeats moves every seat of every booking out of available. On the first
// failure all seats claimed so far are released again.
func (s *BookingService) claimSeats(ctx context.Context, bookings []domain.Booking) ([]seatClaim, error) {
	var claimed []seatClaim
	for _, b := range bookings {
		for _, g := range b.Guests {
			if g.SeatID == "" {
				continue
			}
			var change domain.SeatChange
			if b.Status == domain.BookingStatusHold {
				change = seatmap.HoldChange(b.ID)
			} else {
				change = domain.SeatChange{Status: seatStatusFor(b.Status), BookedBy: &domain.Passenger{Name: g.Name, Gender: g.Gender}}
			}
			err := s.seats.CompareAndSwapSeatStatus(ctx, b.PackageID, g.SeatID, domain.SeatAvailable, change)
			if err != nil {
				s.rollback(ctx, claimed)
				if errors.Is(err, domain.ErrSeatUnavailable) || errors.Is(err, domain.ErrUnknownSeat) {
					return nil, err
				}
				return nil, fmt.Errorf("claim seat %s of package %s: %w", g.SeatID, b.PackageID, err)
			}
			claimed = append(claimed, seatClaim{packageID: b.PackageID, seatID: g.SeatID, status: change.Status})
		}
	}
	return claimed, nil
}

func (s *BookingService) rollback(ctx context.Context, claimed []seatClaim) {
	ctx = context.WithoutCancel(ctx)
	for i := len(claimed) - 1; i >= 0; i-- {
		c := claimed[i]
		if err := s.seats.CompareAndSwapSeatStatus(ctx, c.packageID, c.seatID, c.status, seatmap.ReleaseChange()); err != nil {
			s.log.ErrorContext(ctx, "failed to roll back seat claim",
				zap.String("package_id", c.packageID), zap.String("seat_id", c.seatID), zap.Error(err))
		}
	}
}

func blank(v string) bool {
	return strings.TrimSpace(v) == ""
}
