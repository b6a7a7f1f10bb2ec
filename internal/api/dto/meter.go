package dto

import (
	"time"

	"github.com/shopspring/decimal"

	ierr "github.com/waterbills/waterbills/internal/errors"
	"github.com/waterbills/waterbills/internal/service"
	"github.com/waterbills/waterbills/internal/types"
)

// CreateMeterRequest represents a request to register a meter
type CreateMeterRequest struct {
	BuildingID string          `json:"building_id" binding:"required"`
	MeterType  types.MeterType `json:"meter_type" binding:"required"`
	// PremiseID is required for submeters and forbidden for bulk meters.
	PremiseID string `json:"premise_id,omitempty"`
	Label     string `json:"label"`
	Unit      string `json:"unit"`
}

func (r *CreateMeterRequest) Validate() error {
	if r.BuildingID == "" {
		return ierr.NewError("building id is required").
			WithHint("Meter must belong to a building").
			Mark(ierr.ErrValidation)
	}
	if err := r.MeterType.Validate(); err != nil {
		return err
	}
	if r.MeterType == types.MeterTypeSubmeter && r.PremiseID == "" {
		return ierr.NewError("submeter requires a premise").
			WithHint("Submeters must reference the premise they measure").
			Mark(ierr.ErrValidation)
	}
	if r.MeterType != types.MeterTypeSubmeter && r.PremiseID != "" {
		return ierr.NewError("bulk meters cannot reference a premise").
			WithHint("Council and borehole meters measure the whole building").
			Mark(ierr.ErrValidation)
	}
	return nil
}

func (r *CreateMeterRequest) ToInput() service.CreateMeterInput {
	return service.CreateMeterInput{
		BuildingID: r.BuildingID,
		MeterType:  r.MeterType,
		PremiseID:  r.PremiseID,
		Label:      r.Label,
		Unit:       r.Unit,
	}
}

// CreateReadingRequest represents one recorded meter reading for a period
type CreateReadingRequest struct {
	MeterID     string          `json:"meter_id" binding:"required"`
	Period      types.Period    `json:"period" binding:"required"`
	Reading     decimal.Decimal `json:"reading"`
	ReadingDate time.Time       `json:"reading_date"`
	Notes       string          `json:"notes,omitempty"`
}

func (r *CreateReadingRequest) Validate() error {
	if r.MeterID == "" {
		return ierr.NewError("meter id is required").
			WithHint("Reading must reference a meter").
			Mark(ierr.ErrValidation)
	}
	if err := r.Period.Validate(); err != nil {
		return err
	}
	if r.Reading.IsNegative() {
		return ierr.NewError("reading cannot be negative").
			WithHint("Meter readings are cumulative and cannot be negative").
			Mark(ierr.ErrValidation)
	}
	return nil
}

func (r *CreateReadingRequest) ToInput() service.RecordReadingInput {
	readingDate := r.ReadingDate
	if readingDate.IsZero() {
		readingDate = time.Now().UTC()
	}
	return service.RecordReadingInput{
		MeterID:     r.MeterID,
		Period:      r.Period,
		Reading:     r.Reading,
		ReadingDate: readingDate,
		Notes:       r.Notes,
	}
}
