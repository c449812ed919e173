package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/Domenick1991/tourbooking/internal/seatmap"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGSeatLayoutRepository struct {
	db *pgxpool.Pool
}

func NewSeatLayoutRepository(db *pgxpool.Pool) SeatLayoutRepository {
	return &PGSeatLayoutRepository{db: db}
}

func (r *PGSeatLayoutRepository) Save(ctx context.Context, layout *domain.SeatLayout) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Seat swaps lock this row too, so none can run between the
	// occupancy check and the delete below.
	if _, err := tx.Exec(ctx, `SELECT 1 FROM seat_layouts WHERE package_id = $1 FOR UPDATE`, layout.PackageID); err != nil {
		return fmt.Errorf("lock seat layout: %w", err)
	}
	var occupied int
	if err := tx.QueryRow(ctx, `SELECT count(*) FROM layout_seats
		WHERE package_id = $1 AND status IN ('held', 'booked', 'sold')`, layout.PackageID).Scan(&occupied); err != nil {
		return fmt.Errorf("count occupied seats: %w", err)
	}
	if occupied > 0 {
		return &domain.Error{
			Kind:      domain.ErrInvalidState,
			PackageID: layout.PackageID,
			Msg:       fmt.Sprintf("%d occupied seats, release them before regenerating the layout", occupied),
		}
	}

	if _, err := tx.Exec(ctx, `INSERT INTO seat_layouts (package_id, configuration, total_seats, last_updated)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (package_id) DO UPDATE SET configuration = EXCLUDED.configuration,
			total_seats = EXCLUDED.total_seats, last_updated = EXCLUDED.last_updated`,
		layout.PackageID, layout.BusConfiguration, layout.BusConfiguration.TotalSeats, layout.LastUpdated); err != nil {
		return fmt.Errorf("upsert seat layout: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM layout_seats WHERE package_id = $1`, layout.PackageID); err != nil {
		return fmt.Errorf("delete old seats: %w", err)
	}

	rows := make([][]any, 0, len(layout.Seats))
	for i, s := range layout.Seats {
		name, gender := passengerColumns(s.BookedBy)
		rows = append(rows, []any{
			layout.PackageID, s.ID, i, string(s.Deck), s.Position.Row, s.Position.Column, string(s.Side), s.Label,
			string(s.Status), name, gender, s.BlockedReason, s.HeldFor,
		})
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"layout_seats"},
		[]string{"package_id", "seat_id", "ordinal", "deck", "row_label", "col", "side", "label",
			"status", "booked_by_name", "booked_by_gender", "blocked_reason", "held_for"},
		pgx.CopyFromRows(rows)); err != nil {
		return fmt.Errorf("insert seats: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *PGSeatLayoutRepository) GetLayout(ctx context.Context, packageID string) (*domain.SeatLayout, error) {
	layout := domain.SeatLayout{PackageID: packageID}
	err := r.db.QueryRow(ctx, `SELECT configuration, last_updated FROM seat_layouts WHERE package_id = $1`, packageID).
		Scan(&layout.BusConfiguration, &layout.LastUpdated)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound("seat layout", packageID)
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, `SELECT seat_id, deck, row_label, col, side, label, status,
			booked_by_name, booked_by_gender, blocked_reason, held_for
		FROM layout_seats WHERE package_id = $1 ORDER BY ordinal`, packageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	layout.Seats = make([]domain.Seat, 0, layout.BusConfiguration.TotalSeats)
	for rows.Next() {
		var (
			s            domain.Seat
			name, gender string
		)
		if err := rows.Scan(&s.ID, &s.Deck, &s.Position.Row, &s.Position.Column, &s.Side, &s.Label, &s.Status,
			&name, &gender, &s.BlockedReason, &s.HeldFor); err != nil {
			return nil, err
		}
		if !s.Status.Valid() {
			return nil, fmt.Errorf("seat %s of package %s has unknown status %q", s.ID, packageID, s.Status)
		}
		if name != "" {
			s.BookedBy = &domain.Passenger{Name: name, Gender: gender}
		}
		layout.Seats = append(layout.Seats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &layout, nil
}

// CompareAndSwapSeatStatus is a conditional UPDATE on the seat row. Zero
// affected rows means another writer changed the seat first.
func (r *PGSeatLayoutRepository) CompareAndSwapSeatStatus(ctx context.Context, packageID, seatID string, expected domain.SeatStatus, change domain.SeatChange) error {
	if !seatmap.CanTransition(expected, change.Status) {
		return domain.InvalidState("seat %s cannot move from %s to %s", seatID, expected, change.Status)
	}
	var next domain.Seat
	change.Apply(&next)
	name, gender := passengerColumns(next.BookedBy)

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var locked int
	err = tx.QueryRow(ctx, `SELECT 1 FROM seat_layouts WHERE package_id = $1 FOR NO KEY UPDATE`, packageID).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.NotFound("seat layout", packageID)
	}
	if err != nil {
		return err
	}

	res, err := tx.Exec(ctx, `UPDATE layout_seats
		SET status = $1, booked_by_name = $2, booked_by_gender = $3, blocked_reason = $4, held_for = $5, updated_at = now()
		WHERE package_id = $6 AND seat_id = $7 AND status = $8`,
		string(next.Status), name, gender, next.BlockedReason, next.HeldFor, packageID, seatID, string(expected))
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		var current domain.SeatStatus
		err := tx.QueryRow(ctx, `SELECT status FROM layout_seats WHERE package_id = $1 AND seat_id = $2`, packageID, seatID).Scan(&current)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.UnknownSeat(packageID, seatID)
		}
		if err != nil {
			return err
		}
		return &domain.Error{Kind: domain.ErrSeatUnavailable, PackageID: packageID, SeatID: seatID, Msg: "seat is " + string(current)}
	}

	if _, err := tx.Exec(ctx, `UPDATE seat_layouts SET last_updated = now() WHERE package_id = $1`, packageID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func passengerColumns(p *domain.Passenger) (name, gender string) {
	if p == nil {
		return "", ""
	}
	return p.Name, p.Gender
}

var _ SeatLayoutRepository = (*PGSeatLayoutRepository)(nil)
