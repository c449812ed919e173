package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const bookingColumns = `id, checkout_id, agency_id, package_id, status, guests, seat_ids, boarding_point, dropping_point,
	subtotal, discount_amount, total_amount, advance_paid, due_amount, payment_method, transaction_ref,
	hold_expires_at, created_by, created_at, updated_at`

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

// CreateMany inserts all bookings of a checkout in one transaction.
func (r *PGBookingRepository) CreateMany(ctx context.Context, bookings []domain.Booking) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, b := range bookings {
		batch.Queue(`INSERT INTO bookings (`+bookingColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`,
			b.ID, b.CheckoutID, b.AgencyID, b.PackageID, string(b.Status), b.Guests, b.SeatIDs, b.BoardingPoint, b.DroppingPoint,
			b.Subtotal, b.DiscountAmount, b.TotalAmount, b.AdvancePaid, b.DueAmount, b.PaymentMethod, b.TransactionRef,
			b.HoldExpiresAt, b.CreatedBy, b.CreatedAt, b.UpdatedAt)
	}
	results := tx.SendBatch(ctx, batch)
	for _, b := range bookings {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return fmt.Errorf("insert booking %s: %w", b.ID, err)
		}
	}
	if err := results.Close(); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	b, err := scanBooking(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound("booking", id)
	}
	return b, err
}

func (r *PGBookingRepository) UpdateStatus(ctx context.Context, id string, expected, status domain.BookingStatus) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `UPDATE bookings SET status = $1, updated_at = now()
		WHERE id = $2 AND status = $3 RETURNING `+bookingColumns, string(status), id, string(expected))
	b, err := scanBooking(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.staleStatus(ctx, id, expected)
	}
	return b, err
}

// UpdatePayment settles a hold. Only bookings still on hold are touched.
func (r *PGBookingRepository) UpdatePayment(ctx context.Context, id string, payment domain.PaymentUpdate) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `UPDATE bookings
		SET status = $1, advance_paid = $2, due_amount = $3, payment_method = $4, transaction_ref = $5,
			hold_expires_at = NULL, updated_at = now()
		WHERE id = $6 AND status = $7 RETURNING `+bookingColumns,
		string(payment.Status), payment.AdvancePaid, payment.DueAmount, payment.PaymentMethod, payment.TransactionRef,
		id, string(domain.BookingStatusHold))
	b, err := scanBooking(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.staleStatus(ctx, id, domain.BookingStatusHold)
	}
	return b, err
}

func (r *PGBookingRepository) ListExpiredHolds(ctx context.Context, now time.Time, limit int) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings
		WHERE status = $1 AND hold_expires_at <= $2 ORDER BY hold_expires_at LIMIT $3`,
		string(domain.BookingStatusHold), now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expired []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		expired = append(expired, *b)
	}
	return expired, rows.Err()
}

// staleStatus explains why a conditional update matched no row.
func (r *PGBookingRepository) staleStatus(ctx context.Context, id string, expected domain.BookingStatus) error {
	var current domain.BookingStatus
	err := r.db.QueryRow(ctx, `SELECT status FROM bookings WHERE id = $1`, id).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.NotFound("booking", id)
	}
	if err != nil {
		return err
	}
	return domain.InvalidState("booking %s is %s, expected %s", id, current, expected)
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	if err := row.Scan(&b.ID, &b.CheckoutID, &b.AgencyID, &b.PackageID, &b.Status, &b.Guests, &b.SeatIDs,
		&b.BoardingPoint, &b.DroppingPoint, &b.Subtotal, &b.DiscountAmount, &b.TotalAmount, &b.AdvancePaid,
		&b.DueAmount, &b.PaymentMethod, &b.TransactionRef, &b.HoldExpiresAt, &b.CreatedBy, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
