// Package layout turns a declarative bus configuration into the seat map of a vehicle.
package layout

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/tourbooking/internal/domain"
)

const maxSeatsPerRow = 10

// Generate builds the ordered seats of every configured deck: lower deck first,
// rows by character code from SerialStart to SerialEnd, columns left to right.
// The result depends only on cfg.
func Generate(cfg domain.BusConfiguration) ([]domain.Seat, error) {
	if err := Validate(cfg); err != nil {
		return nil, err
	}

	seats := generateDeck(nil, domain.DeckLower, cfg.LowerDeck)
	if cfg.UpperDeck != nil {
		seats = generateDeck(seats, domain.DeckUpper, *cfg.UpperDeck)
	}
	return seats, nil
}

// TotalSeats is always len(Generate(cfg)).
func TotalSeats(cfg domain.BusConfiguration) (int, error) {
	seats, err := Generate(cfg)
	if err != nil {
		return 0, err
	}
	return len(seats), nil
}

// Normalize returns cfg with serials upper-cased and the derived fields
// (SeatsPerSerial, TotalSeats) recomputed from the generator.
func Normalize(cfg domain.BusConfiguration) (domain.BusConfiguration, error) {
	out := cfg
	out.LowerDeck = normalizeFloor(cfg.LowerDeck)
	if cfg.UpperDeck != nil {
		upper := normalizeFloor(*cfg.UpperDeck)
		out.UpperDeck = &upper
	}

	total, err := TotalSeats(out)
	if err != nil {
		return domain.BusConfiguration{}, err
	}
	out.TotalSeats = total
	return out, nil
}

// NewSeatLayout generates a fresh layout for a package. Every seat starts available.
func NewSeatLayout(packageID string, cfg domain.BusConfiguration, now time.Time) (*domain.SeatLayout, error) {
	if strings.TrimSpace(packageID) == "" {
		return nil, domain.InvalidConfiguration("package id is required")
	}
	normalized, err := Normalize(cfg)
	if err != nil {
		return nil, err
	}
	seats, err := Generate(normalized)
	if err != nil {
		return nil, err
	}
	return &domain.SeatLayout{
		PackageID:        packageID,
		BusConfiguration: normalized,
		Seats:            seats,
		LastUpdated:      now.UTC(),
	}, nil
}

func generateDeck(seats []domain.Seat, deck domain.Deck, floor domain.FloorConfiguration) []domain.Seat {
	first, _ := parseSerial(floor.SerialStart)
	last, _ := parseSerial(floor.SerialEnd)

	for row := first; row <= last; row++ {
		plan := planRow(floor, row == first, row == last)
		label := string(row)
		for col := 1; col <= plan.count; col++ {
			side := domain.SideLeft
			if col > plan.left {
				side = domain.SideRight
			}
			seatLabel := label + strconv.Itoa(col)
			seats = append(seats, domain.Seat{
				ID:       deck.Prefix() + "-" + seatLabel,
				Deck:     deck,
				Position: domain.Position{Row: label, Column: col},
				Side:     side,
				Label:    seatLabel,
				Status:   domain.SeatAvailable,
			})
		}
	}
	return seats
}

type rowPlan struct {
	arrangement domain.Arrangement
	count       int
	left        int
}

// planRow resolves the effective arrangement of a row. When a deck has a single
// row and both overrides are set, the last-row override wins.
func planRow(floor domain.FloorConfiguration, isFirst, isLast bool) rowPlan {
	plan := overrideRow(floor.Arrangement, "", 0)
	if isFirst && floor.HasFirstRowOverride() {
		plan = overrideRow(floor.Arrangement, floor.FirstRowLayout, floor.FirstRowSeats)
	}
	if isLast && floor.HasLastRowOverride() {
		plan = overrideRow(floor.Arrangement, floor.LastRowLayout, floor.LastRowSeats)
	}
	return plan
}

func overrideRow(base, layout domain.Arrangement, seats int) rowPlan {
	arrangement := base
	if layout != "" {
		arrangement = layout
	}
	count := arrangement.SeatsPerRow()
	if seats > 0 {
		count = seats
	}
	left, _ := arrangement.Split()
	if left > count {
		left = count
	}
	return rowPlan{arrangement: arrangement, count: count, left: left}
}

func normalizeFloor(floor domain.FloorConfiguration) domain.FloorConfiguration {
	floor.SerialStart = strings.ToUpper(strings.TrimSpace(floor.SerialStart))
	floor.SerialEnd = strings.ToUpper(strings.TrimSpace(floor.SerialEnd))
	floor.SeatsPerSerial = floor.Arrangement.SeatsPerRow()
	return floor
}

func parseSerial(serial string) (rune, error) {
	s := strings.ToUpper(strings.TrimSpace(serial))
	if len(s) != 1 || s[0] < 'A' || s[0] > 'Z' {
		return 0, fmt.Errorf("row serial %q must be a single letter A-Z", serial)
	}
	return rune(s[0]), nil
}
