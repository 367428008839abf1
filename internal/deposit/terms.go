package deposit

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

var daysPerMonth = decimal.NewFromInt(30)

// Terms fixes the interest and lock-period policy a deposit accrues under.
type Terms struct {
	// MonthlyRate is the simple-interest rate per 30-day month.
	MonthlyRate decimal.Decimal
	// LockPeriod is how long an approved deposit must be held before
	// withdrawal is permitted.
	LockPeriod time.Duration
}

// DefaultTerms returns the reference product policy: 4% per month, 90 days.
func DefaultTerms() Terms {
	return Terms{
		MonthlyRate: decimal.RequireFromString("0.04"),
		LockPeriod:  90 * 24 * time.Hour,
	}
}

// MaturityDate is the instant withdrawal becomes permitted.
func (t Terms) MaturityDate(approvedAt time.Time) time.Time {
	return approvedAt.Add(t.LockPeriod)
}

// IsMature reports whether the lock period has elapsed. Maturity gates
// withdrawal only; interest keeps accruing past it.
func (t Terms) IsMature(approvedAt, now time.Time) bool {
	return !now.Before(t.MaturityDate(approvedAt))
}

// DaysRemaining is the number of whole days until maturity, rounded up,
// never negative.
func (t Terms) DaysRemaining(approvedAt, now time.Time) int {
	remaining := t.MaturityDate(approvedAt).Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int(math.Ceil(remaining.Hours() / 24))
}

// AccruedInterest computes continuous daily-prorated simple interest:
// principal * rate * elapsedDays / 30. The value is unrounded; payout
// rounding happens once, at the point of withdrawal.
func (t Terms) AccruedInterest(principal decimal.Decimal, approvedAt, now time.Time) decimal.Decimal {
	if !now.After(approvedAt) {
		return decimal.Zero
	}
	elapsedSeconds := decimal.NewFromInt(int64(now.Sub(approvedAt) / time.Second))
	elapsedDays := elapsedSeconds.Div(decimal.NewFromInt(24 * 60 * 60))
	return principal.Mul(t.MonthlyRate).Mul(elapsedDays).Div(daysPerMonth)
}

// RoundPayout rounds a monetary amount to the smallest currency unit using
// round-half-up. Applied exactly once per payout.
func RoundPayout(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}

// View extends a deposit snapshot with fields computed against these
// terms at the given instant. Deposits that are not approved carry no
// maturity data and a balance equal to the submitted amount.
func (t Terms) View(dep Deposit, now time.Time) View {
	v := View{
		Deposit:         dep,
		AccruedInterest: decimal.Zero,
		CurrentBalance:  dep.Amount,
	}
	if dep.Status != StatusApproved || dep.ApprovedAt == nil {
		return v
	}

	maturity := t.MaturityDate(*dep.ApprovedAt)
	days := t.DaysRemaining(*dep.ApprovedAt, now)
	v.MaturityDate = &maturity
	v.DaysRemaining = &days
	v.IsMature = t.IsMature(*dep.ApprovedAt, now)
	v.AccruedInterest = t.AccruedInterest(dep.Amount, *dep.ApprovedAt, now)
	v.CurrentBalance = dep.Amount.Add(v.AccruedInterest)
	return v
}
