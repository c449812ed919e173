package repository

import (
	"context"
	"errors"

	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGSettingsRepository reads per-agency booking rules. Agencies without a row
// get the configured defaults.
type PGSettingsRepository struct {
	db       *pgxpool.Pool
	defaults domain.AgencyBookingSettings
}

func NewSettingsRepository(db *pgxpool.Pool, defaults domain.AgencyBookingSettings) SettingsRepository {
	return &PGSettingsRepository{db: db, defaults: defaults}
}

func (r *PGSettingsRepository) GetAgencyBookingSettings(ctx context.Context, agencyID string) (*domain.AgencyBookingSettings, error) {
	s := domain.AgencyBookingSettings{AgencyID: agencyID}
	err := r.db.QueryRow(ctx, `SELECT minimum_advance_amount, minimum_advance_percentage, use_percentage,
			hold_duration_minutes, allow_agent_hold, require_transaction_id
		FROM agency_booking_settings WHERE agency_id = $1`, agencyID).
		Scan(&s.MinimumAdvanceAmount, &s.MinimumAdvancePercentage, &s.UsePercentage,
			&s.HoldDurationMinutes, &s.AllowAgentHold, &s.RequireTransactionID)
	if errors.Is(err, pgx.ErrNoRows) {
		return withDefaults(r.defaults, agencyID), nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

var _ SettingsRepository = (*PGSettingsRepository)(nil)
