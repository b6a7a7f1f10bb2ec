package meter

import (
	"time"

	"github.com/shopspring/decimal"

	ierr "github.com/waterbills/waterbills/internal/errors"
	"github.com/waterbills/waterbills/internal/types"
)

// Meter is a physical water meter. Council and borehole meters belong to a
// building only; a submeter belongs to exactly one premise and its building.
// Meters are created once and never reassigned.
type Meter struct {
	ID         string          `json:"id"`
	BuildingID string          `json:"building_id"`
	MeterType  types.MeterType `json:"meter_type"`
	// PremiseID is set only for submeters.
	PremiseID string `json:"premise_id,omitempty"`
	Label     string `json:"label"`
	Unit      string `json:"unit"`

	types.BaseModel
}

func (m *Meter) Validate() error {
	if m.BuildingID == "" {
		return ierr.NewError("building id is required").
			WithHint("Meter must belong to a building").
			Mark(ierr.ErrValidation)
	}
	if err := m.MeterType.Validate(); err != nil {
		return err
	}
	if m.MeterType == types.MeterTypeSubmeter && m.PremiseID == "" {
		return ierr.NewError("premise id is required for submeters").
			WithHint("A submeter must belong to a premise").
			Mark(ierr.ErrValidation)
	}
	if m.MeterType.IsBulk() && m.PremiseID != "" {
		return ierr.NewError("bulk meters cannot belong to a premise").
			WithHint("Council and borehole meters belong to the building only").
			Mark(ierr.ErrValidation)
	}
	if m.Label == "" {
		return ierr.NewError("meter label is required").
			WithHint("Meter label is required").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// Reading is a cumulative meter reading for one period. (MeterID, Period) is
// unique; once billing has consumed a reading it is treated as immutable.
type Reading struct {
	ID         string `json:"id"`
	MeterID    string `json:"meter_id"`
	BuildingID string `json:"building_id"`
	// PremiseID is carried for submeter readings.
	PremiseID   string          `json:"premise_id,omitempty"`
	Period      types.Period    `json:"period"`
	Reading     decimal.Decimal `json:"reading"`
	ReadingDate time.Time       `json:"reading_date"`
	Notes       string          `json:"notes,omitempty"`

	types.BaseModel
}

func (r *Reading) Validate() error {
	if r.MeterID == "" {
		return ierr.NewError("meter id is required").
			WithHint("Reading must reference a meter").
			Mark(ierr.ErrValidation)
	}
	if err := r.Period.Validate(); err != nil {
		return err
	}
	if r.Reading.IsNegative() {
		return ierr.NewError("reading must be non-negative").
			WithHint("Meter reading must be non-negative").
			WithReportableDetails(map[string]any{
				"reading": r.Reading.String(),
			}).
			Mark(ierr.ErrValidation)
	}
	if r.ReadingDate.IsZero() {
		return ierr.NewError("reading date is required").
			WithHint("Reading date is required").
			Mark(ierr.ErrValidation)
	}
	return nil
}
