package types

import (
	"fmt"
	"regexp"
	"time"

	ierr "github.com/waterbills/waterbills/internal/errors"
)

// Period is a billing month in `YYYY-MM` form. It is the unit of billing
// granularity and one half of every billing idempotency key.
type Period string

var periodRegex = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

func (p Period) String() string {
	return string(p)
}

func (p Period) Validate() error {
	if !periodRegex.MatchString(string(p)) {
		return ierr.NewError("invalid period").
			WithHint("Period must be in YYYY-MM format").
			WithReportableDetails(map[string]any{
				"period": string(p),
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// Time returns midnight UTC on the first day of the period's month.
func (p Period) Time() (time.Time, error) {
	t, err := time.Parse("2006-01", string(p))
	if err != nil {
		return time.Time{}, ierr.WithError(err).
			WithHint("Period must be in YYYY-MM format").
			Mark(ierr.ErrValidation)
	}
	return t, nil
}

// Previous returns the calendar month before this period, independent of
// day-of-month.
func (p Period) Previous() Period {
	t, err := p.Time()
	if err != nil {
		return ""
	}
	return PeriodFromTime(t.AddDate(0, -1, 0))
}

// Next returns the calendar month after this period.
func (p Period) Next() Period {
	t, err := p.Time()
	if err != nil {
		return ""
	}
	return PeriodFromTime(t.AddDate(0, 1, 0))
}

// DueDate returns the invoice due date for this period: the 8th calendar day
// of the following month, at midnight UTC. This is a fixed business rule, not
// configuration.
func (p Period) DueDate() (time.Time, error) {
	t, err := p.Time()
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month()+1, 8, 0, 0, 0, 0, time.UTC), nil
}

// PeriodFromTime returns the period containing t.
func PeriodFromTime(t time.Time) Period {
	return Period(fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month())))
}

// CurrentPeriod returns the period containing now.
func CurrentPeriod(now time.Time) Period {
	return PeriodFromTime(now.UTC())
}

// NextPeriod returns the period after the one containing now. Invoice
// generation scheduled near the end of a month targets this period.
func NextPeriod(now time.Time) Period {
	return CurrentPeriod(now).Next()
}
