package trip

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// DueDateOffsetDays is the payment term counted from the billing date.
	DueDateOffsetDays = 60

	// ReducedRateCompany is the one counterparty billed at the reduced rate.
	ReducedRateCompany = "FUTURENET AND TECHNOLOGY CORPORATION"
)

var (
	ReducedWithholdingRate = decimal.NewFromInt(2)
	DefaultWithholdingRate = decimal.NewFromInt(5)

	hundred = decimal.NewFromInt(100)
)

// Remarks is the display status of a trip's due date.
type Remarks string

const (
	RemarksNone     Remarks = ""
	RemarksOverdue  Remarks = "Overdue"
	RemarksDueToday Remarks = "Due Today"
	RemarksUpcoming Remarks = "Upcoming"
)

// Input holds the request fields the derivations read.
// Company is nil when the request does not carry it; WithholdingRate is nil
// unless the caller set an explicit rate.
type Input struct {
	IssuanceDate    Override[time.Time]
	BillingDate     Override[time.Time]
	DueDate         Override[time.Time]
	Company         *string
	WithholdingRate *decimal.Decimal
}

// Derived holds what a write must store. A field that is not Present is left
// as it is on the stored record.
type Derived struct {
	BillingDate     Override[time.Time]
	DueDate         Override[time.Time]
	WithholdingRate *decimal.Decimal
}

// DeriveBillingDate returns the explicit billing date when given, else the
// issuance date.
func DeriveBillingDate(issuance *time.Time, explicit Override[time.Time]) *time.Time {
	if explicit.Present {
		return explicit.Value
	}
	return issuance
}

// DeriveDueDate returns the explicit due date when given, else billing plus
// DueDateOffsetDays calendar days.
func DeriveDueDate(billing *time.Time, explicit Override[time.Time]) *time.Time {
	if explicit.Present {
		return explicit.Value
	}
	if billing == nil {
		return nil
	}
	due := billing.AddDate(0, 0, DueDateOffsetDays)
	return &due
}

// WithholdingRate looks up the withholding percent for a counterparty.
// The match is exact and case-sensitive.
func WithholdingRate(company string) decimal.Decimal {
	if company == ReducedRateCompany {
		return ReducedWithholdingRate
	}
	return DefaultWithholdingRate
}

// WithholdingAmount applies a percent rate to amount, rounded to cents.
func WithholdingAmount(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Div(hundred).Round(2)
}

// RemarksStatus compares the due date with now by calendar day.
func RemarksStatus(due *time.Time, now time.Time) Remarks {
	if due == nil {
		return RemarksNone
	}
	dueDay := calendarDay(*due)
	today := calendarDay(now)
	switch {
	case dueDay.Before(today):
		return RemarksOverdue
	case dueDay.Equal(today):
		return RemarksDueToday
	default:
		return RemarksUpcoming
	}
}

// Derive runs the billing → due date pipeline and the rate lookup for one
// write. The due date is computed from the billing date this request ends
// up with, derived or explicit.
func Derive(in Input) Derived {
	billing := resolve(in.BillingDate, DeriveBillingDate(in.IssuanceDate.Value, in.BillingDate))
	due := resolve(in.DueDate, DeriveDueDate(billing.Value, in.DueDate))

	out := Derived{BillingDate: billing, DueDate: due}
	switch {
	case in.WithholdingRate != nil:
		rate := *in.WithholdingRate
		out.WithholdingRate = &rate
	case in.Company != nil:
		rate := WithholdingRate(*in.Company)
		out.WithholdingRate = &rate
	}
	return out
}

// ApplyTo writes the present derived fields onto t.
func (d Derived) ApplyTo(t *Trip) {
	if d.BillingDate.Present {
		t.BillingDate = d.BillingDate.Value
	}
	if d.DueDate.Present {
		t.DueDate = d.DueDate.Value
	}
	if d.WithholdingRate != nil {
		t.WithholdingRate = *d.WithholdingRate
	}
}

func resolve(explicit Override[time.Time], derived *time.Time) Override[time.Time] {
	if explicit.Present {
		return explicit
	}
	if derived == nil {
		return Absent[time.Time]()
	}
	return Set(*derived)
}

// calendarDay drops the clock and zone, keeping the day as written.
func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
