// Package pricing computes guest and package prices for tour bookings.
// Amounts are whole currency units.
package pricing

import (
	"fmt"

	"github.com/Domenick1991/tourbooking/internal/domain"
)

// childRatePermille is the child fare as a share of the adult fare.
const childRatePermille = 700

type Tariff struct {
	PricePerPerson int64
	CouplePrice    *int64
	ChildPrice     *int64
}

func TariffOf(p domain.PackageSnapshot) Tariff {
	return Tariff{PricePerPerson: p.PricePerPerson, CouplePrice: p.CouplePrice, ChildPrice: p.ChildPrice}
}

// Validate rejects negative fares and named guests of an unknown type. Blank
// placeholder guests are not checked.
func Validate(pb domain.PackageBooking) error {
	t := TariffOf(pb.Package)
	if t.PricePerPerson < 0 {
		return &domain.Error{Kind: domain.ErrInvalidAmount, PackageID: pb.PackageID,
			Msg: fmt.Sprintf("price per person %d is negative", t.PricePerPerson)}
	}
	if t.CouplePrice != nil && *t.CouplePrice < 0 {
		return &domain.Error{Kind: domain.ErrInvalidAmount, PackageID: pb.PackageID,
			Msg: fmt.Sprintf("couple price %d is negative", *t.CouplePrice)}
	}
	if t.ChildPrice != nil && *t.ChildPrice < 0 {
		return &domain.Error{Kind: domain.ErrInvalidAmount, PackageID: pb.PackageID,
			Msg: fmt.Sprintf("child price %d is negative", *t.ChildPrice)}
	}
	for _, g := range pb.NamedGuests() {
		if !g.Type.Valid() {
			return &domain.Error{Kind: domain.ErrInvalidConfiguration, PackageID: pb.PackageID,
				Msg: fmt.Sprintf("guest %q has unknown type %q", g.Name, g.Type)}
		}
	}
	return nil
}

// GuestPrice prices one guest. Callers run Validate first; an unknown type
// falls through to the adult fare.
func GuestPrice(t Tariff, guestType domain.GuestType) int64 {
	switch guestType {
	case domain.GuestCouple:
		if t.CouplePrice != nil {
			return *t.CouplePrice
		}
		return t.PricePerPerson * 2
	case domain.GuestChild:
		if t.ChildPrice != nil {
			return *t.ChildPrice
		}
		return roundHalfUp(t.PricePerPerson*childRatePermille, 1000)
	default:
		return t.PricePerPerson
	}
}

// Subtotal sums the prices of named guests; blank placeholders are free.
func Subtotal(t Tariff, guests []domain.Guest) int64 {
	var total int64
	for _, g := range guests {
		if g.Named() {
			total += GuestPrice(t, g.Type)
		}
	}
	return total
}

func PackageSubtotal(pb domain.PackageBooking) int64 {
	return Subtotal(TariffOf(pb.Package), pb.Guests)
}

type LineItem struct {
	GuestName string           `json:"guest_name"`
	GuestType domain.GuestType `json:"guest_type"`
	Price     int64            `json:"price"`
}

type Quote struct {
	PackageID string     `json:"package_id"`
	Items     []LineItem `json:"items"`
	Subtotal  int64      `json:"subtotal"`
}

func QuotePackage(pb domain.PackageBooking) Quote {
	t := TariffOf(pb.Package)
	q := Quote{PackageID: pb.PackageID, Items: make([]LineItem, 0, len(pb.Guests))}
	for _, g := range pb.NamedGuests() {
		price := GuestPrice(t, g.Type)
		q.Items = append(q.Items, LineItem{GuestName: g.Name, GuestType: g.Type, Price: price})
		q.Subtotal += price
	}
	return q
}

// roundHalfUp divides num by den rounding halves away from zero.
func roundHalfUp(num, den int64) int64 {
	if num < 0 {
		return -roundHalfUp(-num, den)
	}
	return (num + den/2) / den
}
