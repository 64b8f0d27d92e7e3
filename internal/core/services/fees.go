package services

import (
	"fmt"
	"time"

	"libracirc/internal/adapters/persistence/models"
	"libracirc/internal/config"
	"libracirc/internal/core/domain"
)

// dateOnly truncates a timestamp to midnight UTC. All circulation
// arithmetic works on whole calendar days.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// daysBetween returns the whole days from a to b, negative if b precedes a
func daysBetween(a, b time.Time) int {
	return int(dateOnly(b).Sub(dateOnly(a)) / (24 * time.Hour))
}

// FeeBreakdown is the fee read model attached to loan responses
type FeeBreakdown struct {
	BaseRentalFee float64 `json:"base_rental_fee"`
	LateFee       float64 `json:"late_fee"`
	TotalFee      float64 `json:"total_fee"`
}

// FeeCalculator prices loans. For open loans it charges up to today,
// for closed loans up to the return date. The clock is injectable so
// tests can pin the current day.
type FeeCalculator struct {
	dailyLateFee   float64
	dailyRentalFee float64
	now            func() time.Time
}

// NewFeeCalculator creates a fee calculator from the lending policy
func NewFeeCalculator(cfg config.CirculationConfig) *FeeCalculator {
	return &FeeCalculator{
		dailyLateFee:   cfg.DailyLateFee,
		dailyRentalFee: cfg.DailyRentalFee,
		now:            time.Now,
	}
}

// LateFee returns the penalty accrued past the due date. A closed loan
// is charged from due date to return date; an open loan from due date
// to today. On-time loans owe nothing.
func (f *FeeCalculator) LateFee(returnDate, dueDate *time.Time) (float64, error) {
	if dueDate == nil {
		return 0, fmt.Errorf("%w: due date is required to compute the late fee", domain.ErrInvalidArgument)
	}

	due := dateOnly(*dueDate)
	switch {
	case returnDate != nil && dateOnly(*returnDate).After(due):
		return float64(daysBetween(due, *returnDate)) * f.dailyLateFee, nil
	case returnDate == nil && dateOnly(f.now()).After(due):
		return float64(daysBetween(due, f.now())) * f.dailyLateFee, nil
	default:
		return 0, nil
	}
}

// BaseRentalFee charges the daily rental rate for the span actually
// used, capped at the due date. Days past due are billed by LateFee,
// not here.
func (f *FeeCalculator) BaseRentalFee(startDate, returnDate, dueDate *time.Time) (float64, error) {
	if startDate == nil {
		return 0, fmt.Errorf("%w: start date is required to compute the rental fee", domain.ErrInvalidArgument)
	}
	if dueDate == nil {
		return 0, fmt.Errorf("%w: due date is required to compute the rental fee", domain.ErrInvalidArgument)
	}

	due := dateOnly(*dueDate)
	end := dateOnly(f.now())
	if returnDate != nil {
		end = dateOnly(*returnDate)
	}
	if end.After(due) {
		end = due
	}

	start := dateOnly(*startDate)
	if start.After(end) {
		return 0, fmt.Errorf("%w: loan start date is after its billable end date", domain.ErrInvalidArgument)
	}

	return float64(daysBetween(start, end)) * f.dailyRentalFee, nil
}

// TotalFee sums the two components, rejecting negative inputs
func (f *FeeCalculator) TotalFee(baseRental, late float64) (float64, error) {
	if baseRental < 0 || late < 0 {
		return 0, fmt.Errorf("%w: fee components cannot be negative", domain.ErrInvalidArgument)
	}
	return baseRental + late, nil
}

// BreakdownFor prices a loan end to end
func (f *FeeCalculator) BreakdownFor(loan *models.Loan) (*FeeBreakdown, error) {
	if loan == nil {
		return nil, fmt.Errorf("%w: loan is required", domain.ErrInvalidArgument)
	}

	late, err := f.LateFee(loan.ReturnDate, &loan.DueDate)
	if err != nil {
		return nil, err
	}

	base, err := f.BaseRentalFee(&loan.StartDate, loan.ReturnDate, &loan.DueDate)
	if err != nil {
		return nil, err
	}

	total, err := f.TotalFee(base, late)
	if err != nil {
		return nil, err
	}

	return &FeeBreakdown{BaseRentalFee: base, LateFee: late, TotalFee: total}, nil
}
