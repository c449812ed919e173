package layout

import (
	"github.com/Domenick1991/tourbooking/internal/domain"
)

func Validate(cfg domain.BusConfiguration) error {
	switch cfg.NumberOfFloors {
	case 1:
		if cfg.UpperDeck != nil {
			return domain.InvalidConfiguration("upper deck given for a single-floor vehicle")
		}
	case 2:
		if cfg.UpperDeck == nil {
			return domain.InvalidConfiguration("upper deck is required for a two-floor vehicle")
		}
	default:
		return domain.InvalidConfiguration("number of floors must be 1 or 2, got %d", cfg.NumberOfFloors)
	}

	if err := validateFloor(domain.DeckLower, cfg.LowerDeck); err != nil {
		return err
	}
	if cfg.UpperDeck != nil {
		return validateFloor(domain.DeckUpper, *cfg.UpperDeck)
	}
	return nil
}

func validateFloor(deck domain.Deck, floor domain.FloorConfiguration) error {
	if !floor.Arrangement.Valid() {
		return domain.InvalidConfiguration("%s deck: unknown arrangement %q", deck, floor.Arrangement)
	}
	start, err := parseSerial(floor.SerialStart)
	if err != nil {
		return domain.InvalidConfiguration("%s deck: %v", deck, err)
	}
	end, err := parseSerial(floor.SerialEnd)
	if err != nil {
		return domain.InvalidConfiguration("%s deck: %v", deck, err)
	}
	if start > end {
		return domain.InvalidConfiguration("%s deck: serial start %c is after serial end %c", deck, start, end)
	}

	overrides := []struct {
		name   string
		layout domain.Arrangement
		seats  int
	}{
		{"first row", floor.FirstRowLayout, floor.FirstRowSeats},
		{"last row", floor.LastRowLayout, floor.LastRowSeats},
	}
	for _, o := range overrides {
		if o.layout != "" && !o.layout.Valid() {
			return domain.InvalidConfiguration("%s deck: %s layout %q is unknown", deck, o.name, o.layout)
		}
		if o.seats < 0 || o.seats > maxSeatsPerRow {
			return domain.InvalidConfiguration("%s deck: %s seats must be between 0 and %d", deck, o.name, maxSeatsPerRow)
		}
	}
	return nil
}
