package types

import (
	"github.com/samber/lo"

	ierr "github.com/waterbills/waterbills/internal/errors"
)

// MeterType distinguishes the two whole-building bulk meters from the
// per-premise submeters.
type MeterType string

const (
	// MeterTypeCouncil measures municipal water intake for the whole building.
	MeterTypeCouncil MeterType = "council"
	// MeterTypeBorehole measures borehole water intake for the whole building.
	MeterTypeBorehole MeterType = "borehole"
	// MeterTypeSubmeter measures a single premise's own consumption.
	MeterTypeSubmeter MeterType = "submeter"
)

func (t MeterType) String() string {
	return string(t)
}

func (t MeterType) Validate() error {
	allowed := []MeterType{
		MeterTypeCouncil,
		MeterTypeBorehole,
		MeterTypeSubmeter,
	}
	if !lo.Contains(allowed, t) {
		return ierr.NewError("invalid meter type").
			WithHint("Meter type must be one of: council, borehole, submeter").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsBulk reports whether the meter measures whole-building intake.
func (t MeterType) IsBulk() bool {
	return t == MeterTypeCouncil || t == MeterTypeBorehole
}

// DefaultMeterUnit is the volume unit recorded when a meter does not specify
// its own.
const DefaultMeterUnit = "m3"
