package domain

import "time"

type Arrangement string

const (
	Arrangement1x1 Arrangement = "1x1"
	Arrangement2x1 Arrangement = "2x1"
	Arrangement2x2 Arrangement = "2x2"
	Arrangement2x3 Arrangement = "2x3"
	Arrangement3x2 Arrangement = "3x2"
)

type arrangementShape struct {
	left  int
	right int
}

var arrangementShapes = map[Arrangement]arrangementShape{
	Arrangement1x1: {left: 1, right: 1},
	Arrangement2x1: {left: 2, right: 1},
	Arrangement2x2: {left: 2, right: 2},
	Arrangement2x3: {left: 2, right: 3},
	Arrangement3x2: {left: 3, right: 2},
}

func (a Arrangement) Valid() bool {
	_, ok := arrangementShapes[a]
	return ok
}

// Split returns the canonical number of seats left and right of the aisle.
func (a Arrangement) Split() (left, right int) {
	shape := arrangementShapes[a]
	return shape.left, shape.right
}

// SeatsPerRow is the canonical row size for the arrangement, 0 if unknown.
func (a Arrangement) SeatsPerRow() int {
	shape := arrangementShapes[a]
	return shape.left + shape.right
}

type VehicleCategory string

const (
	VehicleBus      VehicleCategory = "bus"
	VehicleMicrobus VehicleCategory = "microbus"
	VehicleHiace    VehicleCategory = "hiace"
	VehicleCar      VehicleCategory = "car"
)

type Deck string

const (
	DeckLower Deck = "lower"
	DeckUpper Deck = "upper"
)

// Prefix is the deck part of a seat id ("L" or "U").
func (d Deck) Prefix() string {
	if d == DeckUpper {
		return "U"
	}
	return "L"
}

type SeatSide string

const (
	SideLeft  SeatSide = "left"
	SideRight SeatSide = "right"
)

type FloorConfiguration struct {
	Arrangement    Arrangement `json:"arrangement"`
	SerialStart    string      `json:"serial_start"`
	SerialEnd      string      `json:"serial_end"`
	SeatsPerSerial int         `json:"seats_per_serial"`
	FirstRowLayout Arrangement `json:"first_row_layout,omitempty"`
	FirstRowSeats  int         `json:"first_row_seats,omitempty"`
	LastRowLayout  Arrangement `json:"last_row_layout,omitempty"`
	LastRowSeats   int         `json:"last_row_seats,omitempty"`
}

func (f FloorConfiguration) HasFirstRowOverride() bool {
	return f.FirstRowLayout != "" || f.FirstRowSeats > 0
}

func (f FloorConfiguration) HasLastRowOverride() bool {
	return f.LastRowLayout != "" || f.LastRowSeats > 0
}

type BusConfiguration struct {
	VehicleCategory VehicleCategory     `json:"vehicle_category"`
	NumberOfFloors  int                 `json:"number_of_floors"`
	ACType          string              `json:"ac_type"`
	Brand           string              `json:"brand"`
	LowerDeck       FloorConfiguration  `json:"lower_deck"`
	UpperDeck       *FloorConfiguration `json:"upper_deck,omitempty"`
	TotalSeats      int                 `json:"total_seats"`
}

type Position struct {
	Row    string `json:"row"`
	Column int    `json:"column"`
}

type Passenger struct {
	Name   string `json:"passenger_name"`
	Gender string `json:"gender"`
}

type Seat struct {
	ID            string     `json:"id"`
	Deck          Deck       `json:"deck"`
	Position      Position   `json:"position"`
	Side          SeatSide   `json:"side"`
	Label         string     `json:"label"`
	Status        SeatStatus `json:"status"`
	BookedBy      *Passenger `json:"booked_by,omitempty"`
	BlockedReason string     `json:"blocked_reason,omitempty"`
	HeldFor       string     `json:"held_for,omitempty"`
}

type SeatLayout struct {
	PackageID        string           `json:"package_id"`
	BusConfiguration BusConfiguration `json:"bus_configuration"`
	Seats            []Seat           `json:"seats"`
	LastUpdated      time.Time        `json:"last_updated"`
}
