package services

import (
	"fmt"
	"time"

	"libracirc/internal/adapters/persistence/models"
	"libracirc/internal/config"
	"libracirc/internal/core/domain"
)

// RenewalPolicy extends a loan for one more lending period. Eligibility
// (overdue, wrong day, queue pressure) is checked by LoanService; this
// type only enforces the renewal cap and moves the due date.
type RenewalPolicy struct {
	maxRenewals    int
	loanPeriodDays int
	now            func() time.Time
}

// NewRenewalPolicy creates a renewal policy from the lending policy
func NewRenewalPolicy(cfg config.CirculationConfig) *RenewalPolicy {
	return &RenewalPolicy{
		maxRenewals:    cfg.MaxRenewals,
		loanPeriodDays: cfg.LoanPeriodDays,
		now:            time.Now,
	}
}

// Renew bumps the renewal counter and pushes the due date a full
// lending period past today
func (p *RenewalPolicy) Renew(loan *models.Loan) error {
	if loan == nil {
		return fmt.Errorf("%w: loan is required", domain.ErrInvalidArgument)
	}
	if loan.RenewalCount >= p.maxRenewals {
		return domain.ErrRenewalLimitExceeded
	}

	loan.RenewalCount++
	loan.DueDate = dateOnly(p.now()).AddDate(0, 0, p.loanPeriodDays)
	return nil
}
