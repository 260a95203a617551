// Package source loads lecture periods and project weeks from the published
// university pages, a YAML file or the database.
package source

import (
	"context"
	"fmt"

	"github.com/noah-isme/exam-period-api/internal/models"
)

// Periods holds lecture periods and project weeks keyed by canonical semester name.
type Periods struct {
	Lectures map[string]models.Period `json:"lectures"`
	HIPs     map[string]models.Period `json:"hips"`
}

// NewPeriods returns empty period maps.
func NewPeriods() Periods {
	return Periods{Lectures: map[string]models.Period{}, HIPs: map[string]models.Period{}}
}

// Clone deep-copies the maps so callers may mutate the result.
func (p Periods) Clone() Periods {
	out := NewPeriods()
	for k, v := range p.Lectures {
		out.Lectures[k] = v
	}
	for k, v := range p.HIPs {
		out.HIPs[k] = v
	}
	return out
}

// PeriodSource yields the known semester periods.
type PeriodSource interface {
	FetchPeriods(ctx context.Context) (Periods, error)
}

// Static serves a fixed set of periods.
type Static struct {
	Periods Periods
	Err     error
}

// FetchPeriods returns a copy of the configured periods.
func (s Static) FetchPeriods(ctx context.Context) (Periods, error) {
	if err := ctx.Err(); err != nil {
		return Periods{}, err
	}
	if s.Err != nil {
		return Periods{}, s.Err
	}
	return s.Periods.Clone(), nil
}

// put canonicalizes name and validates the period before storing it.
func put(target map[string]models.Period, name string, period models.Period) error {
	canonical, ok := models.CanonicalSemesterName(name)
	if !ok {
		return fmt.Errorf("unrecognised semester %q", name)
	}
	if period.Start.IsZero() || period.End.IsZero() {
		return fmt.Errorf("%s: start and end are required", canonical)
	}
	if period.End.Before(period.Start) {
		return fmt.Errorf("%s: period ends before it starts", canonical)
	}
	target[canonical] = period
	return nil
}
