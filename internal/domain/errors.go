package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidConfiguration        = errors.New("invalid configuration")
	ErrSeatCountMismatch           = errors.New("seat count mismatch")
	ErrSeatUnavailable             = errors.New("seat unavailable")
	ErrUnknownSeat                 = errors.New("unknown seat")
	ErrEmptySelection              = errors.New("empty selection")
	ErrInsufficientAdvance         = errors.New("insufficient advance")
	ErrMissingTransactionReference = errors.New("missing transaction reference")
	ErrHoldNotPermitted            = errors.New("hold not permitted")
	ErrInvalidAmount               = errors.New("invalid amount")
	ErrInvalidState                = errors.New("invalid state")
	ErrNotFound                    = errors.New("not found")
)

// Error carries a taxonomy kind plus the package/seat it is about.
// errors.Is matches the kind sentinel, errors.As exposes the context.
type Error struct {
	Kind      error
	PackageID string
	SeatID    string
	Msg       string
	Err       error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.PackageID != "" {
		fmt.Fprintf(&b, ": package %s", e.PackageID)
	}
	if e.SeatID != "" {
		fmt.Fprintf(&b, ": seat %s", e.SeatID)
	}
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Is(target error) bool {
	return e.Kind == target
}

func (e *Error) Unwrap() error { return e.Err }

func InvalidConfiguration(format string, args ...any) error {
	return &Error{Kind: ErrInvalidConfiguration, Msg: fmt.Sprintf(format, args...)}
}

func SeatCountMismatch(packageID string, want, got int) error {
	return &Error{
		Kind:      ErrSeatCountMismatch,
		PackageID: packageID,
		Msg:       fmt.Sprintf("%d named guests but %d seats selected", want, got),
	}
}

func SeatUnavailable(packageID, seatID string) error {
	return &Error{Kind: ErrSeatUnavailable, PackageID: packageID, SeatID: seatID}
}

func UnknownSeat(packageID, seatID string) error {
	return &Error{Kind: ErrUnknownSeat, PackageID: packageID, SeatID: seatID, Msg: "seat layout was regenerated or seat does not exist"}
}

func EmptySelection() error {
	return &Error{Kind: ErrEmptySelection, Msg: "at least one package with a named guest is required"}
}

func InsufficientAdvance(minimum, paid int64) error {
	return &Error{Kind: ErrInsufficientAdvance, Msg: fmt.Sprintf("minimum advance is %d, got %d", minimum, paid)}
}

func MissingTransactionReference(method string) error {
	return &Error{Kind: ErrMissingTransactionReference, Msg: fmt.Sprintf("payment method %q requires a transaction reference", method)}
}

func HoldNotPermitted(agencyID string) error {
	return &Error{Kind: ErrHoldNotPermitted, Msg: fmt.Sprintf("agency %s does not allow agents to hold seats", agencyID)}
}

func InvalidAmount(format string, args ...any) error {
	return &Error{Kind: ErrInvalidAmount, Msg: fmt.Sprintf(format, args...)}
}

func InvalidState(format string, args ...any) error {
	return &Error{Kind: ErrInvalidState, Msg: fmt.Sprintf(format, args...)}
}

func NotFound(resource, id string) error {
	return &Error{Kind: ErrNotFound, Msg: fmt.Sprintf("%s %s", resource, id)}
}

// AsError extracts the taxonomy error, if any.
func AsError(err error) (*Error, bool) {
	var target *Error
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}
