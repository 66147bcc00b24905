package trip

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Trip is a logged vehicle trip with its billing terms.
// Corresponds to the 'trips' table. Dates are calendar days.
type Trip struct {
	ID                int64
	PlateNumber       string
	Driver            sql.NullString
	Origin            sql.NullString
	Destination       sql.NullString
	CompanyOrAssignee string
	Amount            decimal.Decimal
	IssuanceDate      *time.Time
	BillingDate       *time.Time
	DueDate           *time.Time
	WithholdingRate   decimal.Decimal // percent, e.g. 5 for 5%
	CreatedBy         int64
	UpdatedBy         int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Remarks is computed at read time and never stored.
func (t *Trip) Remarks(now time.Time) Remarks {
	return RemarksStatus(t.DueDate, now)
}

// WithholdingAmount is the part of Amount withheld at the trip's rate.
func (t *Trip) WithholdingAmount() decimal.Decimal {
	return WithholdingAmount(t.Amount, t.WithholdingRate)
}

// NetAmount is what remains payable after withholding.
func (t *Trip) NetAmount() decimal.Decimal {
	return t.Amount.Sub(t.WithholdingAmount())
}
