package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/Domenick1991/tourbooking/internal/holdexpiry"
	"github.com/Domenick1991/tourbooking/internal/kafka"
	"github.com/Domenick1991/tourbooking/internal/logger"
	"github.com/Domenick1991/tourbooking/internal/pricing"
	"github.com/Domenick1991/tourbooking/internal/seatmap"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultHoldMinutes = 30
	defaultExpiryBatch = 100
)

type BookingUseCase interface {
	Checkout(ctx context.Context, input CheckoutInput) (*CheckoutResult, error)
	ConfirmHold(ctx context.Context, bookingID string, input PaymentInput) (*domain.Booking, error)
	CancelBooking(ctx context.Context, bookingID string) (*domain.Booking, error)
	ExpireHolds(ctx context.Context) ([]domain.Booking, error)
	GetBooking(ctx context.Context, bookingID string) (*domain.Booking, error)
}

// SeatStore is the seat side of persistence. CompareAndSwapSeatStatus must
// apply change only while the seat is still in status expected and report
// ErrSeatUnavailable otherwise.
type SeatStore interface {
	GetLayout(ctx context.Context, packageID string) (*domain.SeatLayout, error)
	CompareAndSwapSeatStatus(ctx context.Context, packageID, seatID string, expected domain.SeatStatus, change domain.SeatChange) error
}

// BookingRepository persists bookings. UpdateStatus and UpdatePayment only
// succeed while the stored status still equals the expected one.
type BookingRepository interface {
	CreateMany(ctx context.Context, bookings []domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, id string, expected, status domain.BookingStatus) (*domain.Booking, error)
	UpdatePayment(ctx context.Context, id string, payment domain.PaymentUpdate) (*domain.Booking, error)
	ListExpiredHolds(ctx context.Context, now time.Time, limit int) ([]domain.Booking, error)
}

type SettingsRepository interface {
	GetAgencyBookingSettings(ctx context.Context, agencyID string) (*domain.AgencyBookingSettings, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingService struct {
	seats              SeatStore
	bookings           BookingRepository
	settings           SettingsRepository
	producer           Producer
	bookingTopic       string
	notificationsTopic string
	holdMinutes        int
	expiryBatch        int
	log                *logger.Logger
	now                func() time.Time
	newID              func() string
}

type BookingServiceOption func(*BookingService)

func WithProducer(producer Producer, bookingTopic string) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = producer
		s.bookingTopic = bookingTopic
	}
}

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

// WithDefaultHoldMinutes is used when an agency has no hold duration of its own.
func WithDefaultHoldMinutes(minutes int) BookingServiceOption {
	return func(s *BookingService) {
		if minutes > 0 {
			s.holdMinutes = minutes
		}
	}
}

func WithExpiryBatchSize(n int) BookingServiceOption {
	return func(s *BookingService) {
		if n > 0 {
			s.expiryBatch = n
		}
	}
}

func WithLogger(l *logger.Logger) BookingServiceOption {
	return func(s *BookingService) {
		if l != nil {
			s.log = l
		}
	}
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func WithIDGenerator(gen func() string) BookingServiceOption {
	return func(s *BookingService) {
		s.newID = gen
	}
}

func NewBookingService(
	seats SeatStore,
	bookings BookingRepository,
	settings SettingsRepository,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		seats:       seats,
		bookings:    bookings,
		settings:    settings,
		holdMinutes: defaultHoldMinutes,
		expiryBatch: defaultExpiryBatch,
		log:         logger.NewNop(),
		now:         time.Now,
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *BookingService) GetBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	return s.bookings.GetByID(ctx, bookingID)
}

type PaymentInput struct {
	AdvancePaid    int64                `json:"advance_paid"`
	PaymentMethod  domain.PaymentMethod `json:"payment_method"`
	TransactionRef string               `json:"transaction_ref"`
}

// ConfirmHold turns a live hold into a paid booking. The held seats move first
// and the booking swap out of hold commits the confirmation, so a concurrent
// expiry sweep and a confirmation cannot both win. If either step fails the
// moved seats are handed back.
func (s *BookingService) ConfirmHold(ctx context.Context, bookingID string, input PaymentInput) (*domain.Booking, error) {
	current, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if current.Status != domain.BookingStatusHold {
		return nil, domain.InvalidState("booking %s is %s, not on hold", current.ID, current.Status)
	}
	if current.HoldExpiresAt != nil && holdexpiry.IsExpired(*current.HoldExpiresAt, s.now()) {
		return nil, domain.InvalidState("hold %s expired at %s", current.ID, current.HoldExpiresAt.Format(time.RFC3339))
	}

	settings, err := s.settingsFor(ctx, current.AgencyID)
	if err != nil {
		return nil, err
	}
	if err := validatePayment(current.TotalAmount, input, settings); err != nil {
		return nil, err
	}

	due := current.TotalAmount - input.AdvancePaid
	update := domain.PaymentUpdate{
		Status:         paidStatus(due),
		AdvancePaid:    input.AdvancePaid,
		DueAmount:      due,
		PaymentMethod:  input.PaymentMethod.Name,
		TransactionRef: input.TransactionRef,
	}
	seatStatus := seatStatusFor(update.Status)

	moved, err := s.bookHeldSeats(ctx, *current, seatStatus)
	if err != nil {
		s.returnSeats(ctx, *current, moved, seatStatus)
		return nil, err
	}
	updated, err := s.bookings.UpdatePayment(ctx, current.ID, update)
	if err != nil {
		s.returnSeats(ctx, *current, moved, seatStatus)
		return nil, err
	}

	s.log.InfoContext(ctx, "hold confirmed",
		zap.String("booking_id", updated.ID),
		zap.String("status", string(updated.Status)),
		zap.Duration("time_left", holdexpiry.Remaining(derefTime(current.HoldExpiresAt), s.now())))
	s.publishAll(ctx, kafka.EventHoldConfirmed, []domain.Booking{*updated})
	return updated, nil
}

// bookHeldSeats moves the booking's held seats to status and returns the ids
// it moved, also on error.
func (s *BookingService) bookHeldSeats(ctx context.Context, b domain.Booking, status domain.SeatStatus) ([]string, error) {
	moved := make([]string, 0, len(b.Guests))
	for _, g := range b.Guests {
		if g.SeatID == "" {
			continue
		}
		change := domain.SeatChange{Status: status, BookedBy: &domain.Passenger{Name: g.Name, Gender: g.Gender}}
		if err := s.seats.CompareAndSwapSeatStatus(ctx, b.PackageID, g.SeatID, domain.SeatHeld, change); err != nil {
			s.log.ErrorContext(ctx, "held seat could not be booked",
				zap.String("booking_id", b.ID), zap.String("seat_id", g.SeatID), zap.Error(err))
			return moved, fmt.Errorf("book held seat %s: %w", g.SeatID, err)
		}
		moved = append(moved, g.SeatID)
	}
	return moved, nil
}

// returnSeats undoes bookHeldSeats. Seats go back on hold for the booking, or
// straight to available when the booking has ended in the meantime.
func (s *BookingService) returnSeats(ctx context.Context, b domain.Booking, seatIDs []string, from domain.SeatStatus) {
	if len(seatIDs) == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)
	change := seatmap.HoldChange(b.ID)
	if latest, err := s.bookings.GetByID(ctx, b.ID); err == nil && latest.Status.Terminal() {
		change = seatmap.ReleaseChange()
	}
	for i := len(seatIDs) - 1; i >= 0; i-- {
		if err := s.seats.CompareAndSwapSeatStatus(ctx, b.PackageID, seatIDs[i], from, change); err != nil {
			s.log.ErrorContext(ctx, "failed to return seat",
				zap.String("booking_id", b.ID), zap.String("seat_id", seatIDs[i]),
				zap.String("target", string(change.Status)), zap.Error(err))
		}
	}
}

// CancelBooking releases the booking's seats. Terminal bookings are returned as is.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	current, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if current.Status.Terminal() {
		return current, nil
	}

	updated, err := s.bookings.UpdateStatus(ctx, current.ID, current.Status, domain.BookingStatusCancelled)
	if err != nil {
		return nil, err
	}
	s.releaseSeats(ctx, current.PackageID, current.SeatIDs, seatStatusFor(current.Status))
	s.publishAll(ctx, kafka.EventBookingCancelled, []domain.Booking{*updated})
	return updated, nil
}

// ExpireHolds runs the release contract for every lapsed hold it can claim.
// A hold confirmed between listing and expiring is skipped.
func (s *BookingService) ExpireHolds(ctx context.Context) ([]domain.Booking, error) {
	now := s.now()
	candidates, err := s.bookings.ListExpiredHolds(ctx, now, s.expiryBatch)
	if err != nil {
		return nil, err
	}

	expired := make([]domain.Booking, 0, len(candidates))
	for _, b := range candidates {
		plan, ok := holdexpiry.PlanRelease(b, now)
		if !ok {
			continue
		}
		updated, err := s.bookings.UpdateStatus(ctx, plan.BookingID, domain.BookingStatusHold, plan.FinalStatus)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidState) {
				s.log.WithContext(ctx).Debug("hold changed before expiry", zap.String("booking_id", plan.BookingID))
				continue
			}
			s.log.ErrorContext(ctx, "failed to expire hold", zap.String("booking_id", plan.BookingID), zap.Error(err))
			continue
		}
		s.releaseSeats(ctx, plan.PackageID, plan.SeatIDs, domain.SeatHeld)
		expired = append(expired, *updated)
	}

	s.publishAll(ctx, kafka.EventHoldExpired, expired)
	return expired, nil
}

func (s *BookingService) settingsFor(ctx context.Context, agencyID string) (domain.AgencyBookingSettings, error) {
	settings, err := s.settings.GetAgencyBookingSettings(ctx, agencyID)
	if err != nil {
		return domain.AgencyBookingSettings{}, fmt.Errorf("load booking settings for agency %s: %w", agencyID, err)
	}
	return *settings, nil
}

// validatePayment checks a non-hold payment against the amount it settles.
func validatePayment(total int64, input PaymentInput, settings domain.AgencyBookingSettings) error {
	if input.AdvancePaid < 0 || input.AdvancePaid > total {
		return domain.InvalidAmount("advance %d must be between 0 and %d", input.AdvancePaid, total)
	}
	minimum := pricing.MinimumAdvance(total, settings.MinimumAdvanceAmount, settings.MinimumAdvancePercentage, settings.UsePercentage)
	if input.AdvancePaid < minimum {
		return domain.InsufficientAdvance(minimum, input.AdvancePaid)
	}
	if input.PaymentMethod.RequiresTxn && settings.RequireTransactionID && blank(input.TransactionRef) {
		return domain.MissingTransactionReference(input.PaymentMethod.Name)
	}
	return nil
}

// paidStatus is confirmed once nothing is due, pending while a balance remains.
func paidStatus(due int64) domain.BookingStatus {
	if due == 0 {
		return domain.BookingStatusConfirmed
	}
	return domain.BookingStatusPending
}

// seatStatusFor maps a booking status to the status its seats are kept in.
func seatStatusFor(status domain.BookingStatus) domain.SeatStatus {
	switch status {
	case domain.BookingStatusHold:
		return domain.SeatHeld
	case domain.BookingStatusConfirmed:
		return domain.SeatSold
	default:
		return domain.SeatBooked
	}
}

// releaseSeats returns seats to available. Failures are logged, not returned:
// the booking status has already moved on.
func (s *BookingService) releaseSeats(ctx context.Context, packageID string, seatIDs []string, expected domain.SeatStatus) {
	ctx = context.WithoutCancel(ctx)
	for _, id := range seatIDs {
		if err := s.seats.CompareAndSwapSeatStatus(ctx, packageID, id, expected, seatmap.ReleaseChange()); err != nil {
			s.log.WarnContext(ctx, "failed to release seat",
				zap.String("package_id", packageID), zap.String("seat_id", id), zap.Error(err))
		}
	}
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func (s *BookingService) publishAll(ctx context.Context, eventType string, bookings []domain.Booking) {
	for _, b := range bookings {
		if err := s.publish(ctx, eventType, b); err != nil {
			s.log.WarnContext(ctx, "failed to publish booking event",
				zap.String("type", eventType), zap.String("booking_id", b.ID), zap.Error(err))
		}
	}
}

func (s *BookingService) publish(ctx context.Context, eventType string, b domain.Booking) error {
	if s.producer == nil || s.bookingTopic == "" {
		return nil
	}
	event := kafka.NewBookingEvent(eventType, b, s.now())
	if err := s.producer.Publish(ctx, s.bookingTopic, b.ID, event); err != nil {
		return err
	}
	if s.notificationsTopic != "" {
		return s.producer.Publish(ctx, s.notificationsTopic, b.ID, event)
	}
	return nil
}

var _ BookingUseCase = (*BookingService)(nil)
