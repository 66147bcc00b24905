package httpapi

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"fleet_backoffice/internal/app"
	"fleet_backoffice/internal/domain/notification"
	"fleet_backoffice/internal/domain/trip"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// PatchField is a tri-state JSON field: absent, null or a value.
type PatchField[T any] struct {
	Present bool
	Value   *T
}

func (p *PatchField[T]) UnmarshalJSON(b []byte) error {
	p.Present = true
	if string(b) == "null" {
		p.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	p.Value = &v
	return nil
}

func (p PatchField[T]) Get() (*T, bool) { return p.Value, p.Present }

// Date is a calendar day written as YYYY-MM-DD.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" || s == "" {
		return fmt.Errorf("date must be YYYY-MM-DD")
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return fmt.Errorf("invalid date %q: must be YYYY-MM-DD", s)
	}
	d.Time = t
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(dateLayout))
}

/* =========================================================
   TRIPS
   ========================================================= */

// tripFields are the writable fields shared by create and patch.
type tripFields struct {
	Driver      PatchField[string] `json:"driver"`
	Origin      PatchField[string] `json:"origin"`
	Destination PatchField[string] `json:"destination"`

	// CompanyOrAssignee is stored NOT NULL; an explicit null is rejected by
	// validateNulls.
	CompanyOrAssignee PatchField[string] `json:"company_or_assignee"`
	Amount            *decimal.Decimal   `json:"amount"`
	WithholdingRate   *decimal.Decimal   `json:"withholding_rate"`

	IssuanceDate PatchField[Date] `json:"issuance_date"`
	BillingDate  PatchField[Date] `json:"billing_date"`
	DueDate      PatchField[Date] `json:"due_date"`
}

type CreateTripRequest struct {
	PlateNumber string `json:"plate_number" validate:"required,min=1,max=32"`
	tripFields
}

type PatchTripRequest struct {
	PlateNumber *string `json:"plate_number" validate:"omitempty,min=1,max=32"`
	tripFields
}

func (r CreateTripRequest) ToWrite() app.TripWrite {
	plate := r.PlateNumber
	w := r.tripFields.toWrite()
	w.PlateNumber = &plate
	return w
}

func (r PatchTripRequest) ToWrite() app.TripWrite {
	w := r.tripFields.toWrite()
	w.PlateNumber = r.PlateNumber
	return w
}

// validateNulls rejects explicit nulls on fields that cannot be cleared.
func (f tripFields) validateNulls() error {
	if f.CompanyOrAssignee.Present && f.CompanyOrAssignee.Value == nil {
		return fmt.Errorf("company_or_assignee must not be null; send \"\" to clear it")
	}
	if v := f.CompanyOrAssignee.Value; v != nil && len(*v) > 255 {
		return fmt.Errorf("company_or_assignee must be at most 255 characters")
	}
	return nil
}

func (f tripFields) toWrite() app.TripWrite {
	return app.TripWrite{
		Driver:      trip.Override[string](f.Driver),
		Origin:      trip.Override[string](f.Origin),
		Destination: trip.Override[string](f.Destination),
		Amount:      f.Amount,
		Terms: trip.Input{
			IssuanceDate:    dateOverride(f.IssuanceDate),
			BillingDate:     dateOverride(f.BillingDate),
			DueDate:         dateOverride(f.DueDate),
			Company:         f.CompanyOrAssignee.Value,
			WithholdingRate: f.WithholdingRate,
		},
	}
}

func dateOverride(p PatchField[Date]) trip.Override[time.Time] {
	if !p.Present {
		return trip.Absent[time.Time]()
	}
	if p.Value == nil {
		return trip.Null[time.Time]()
	}
	return trip.Set(p.Value.Time)
}

type TripResponse struct {
	ID                int64           `json:"id"`
	PlateNumber       string          `json:"plate_number"`
	Driver            *string         `json:"driver"`
	Origin            *string         `json:"origin"`
	Destination       *string         `json:"destination"`
	CompanyOrAssignee string          `json:"company_or_assignee"`
	Amount            decimal.Decimal `json:"amount"`
	IssuanceDate      *Date           `json:"issuance_date"`
	BillingDate       *Date           `json:"billing_date"`
	DueDate           *Date           `json:"due_date"`
	WithholdingRate   decimal.Decimal `json:"withholding_rate"`
	WithholdingAmount decimal.Decimal `json:"withholding_amount"`
	NetAmount         decimal.Decimal `json:"net_amount"`
	Remarks           string          `json:"remarks"`
	CreatedBy         int64           `json:"created_by"`
	UpdatedBy         int64           `json:"updated_by"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func FromTripView(v *app.TripView) TripResponse {
	resp := TripResponse{
		ID:                v.ID,
		PlateNumber:       v.PlateNumber,
		CompanyOrAssignee: v.CompanyOrAssignee,
		Amount:            v.Amount,
		IssuanceDate:      toDate(v.IssuanceDate),
		BillingDate:       toDate(v.BillingDate),
		DueDate:           toDate(v.DueDate),
		WithholdingRate:   v.WithholdingRate,
		WithholdingAmount: v.WithholdingAmount,
		NetAmount:         v.NetAmount,
		Remarks:           string(v.Remarks),
		CreatedBy:         v.CreatedBy,
		UpdatedBy:         v.UpdatedBy,
		CreatedAt:         v.CreatedAt,
		UpdatedAt:         v.UpdatedAt,
	}
	if v.Driver.Valid {
		resp.Driver = &v.Driver.String
	}
	if v.Origin.Valid {
		resp.Origin = &v.Origin.String
	}
	if v.Destination.Valid {
		resp.Destination = &v.Destination.String
	}
	return resp
}

func toDate(t *time.Time) *Date {
	if t == nil {
		return nil
	}
	return &Date{Time: *t}
}

/* =========================================================
   NOTIFICATIONS
   ========================================================= */

// RunRequest triggers a manual run when Digit is set, otherwise the
// scheduled check for today.
type RunRequest struct {
	Digit *int `json:"digit" validate:"omitempty,min=0,max=9"`
}

type RunResponse struct {
	RunID        uuid.UUID `json:"run_id"`
	FireDate     Date      `json:"fire_date"`
	Digit        int       `json:"digit"`
	Trigger      string    `json:"trigger"`
	Status       string    `json:"status"`
	MatchedCount int       `json:"matched_count"`
	Plates       []string  `json:"plates,omitempty"`
	TriggeredBy  int64     `json:"triggered_by"`
	Error        *string   `json:"error"`
	CreatedAt    time.Time `json:"created_at"`
}

func FromRun(r *notification.Run) RunResponse {
	resp := RunResponse{
		RunID:        r.RunID,
		FireDate:     Date{Time: r.FireDate},
		Digit:        int(r.Digit),
		Trigger:      string(r.Trigger),
		Status:       string(r.Status),
		MatchedCount: r.MatchedCount,
		TriggeredBy:  r.TriggeredBy,
		CreatedAt:    r.CreatedAt,
	}
	if r.Error.Valid {
		resp.Error = &r.Error.String
	}
	return resp
}

func FromRunResult(res *app.RunResult) RunResponse {
	resp := FromRun(res.Run)
	for _, v := range res.Vehicles {
		resp.Plates = append(resp.Plates, v.PlateNumber)
	}
	return resp
}

type NextOccurrenceResponse struct {
	Digit       int    `json:"digit"`
	TargetMonth string `json:"target_month"`
	FireDate    Date   `json:"fire_date"`
}

func FromOccurrence(o notification.Occurrence) NextOccurrenceResponse {
	month, _ := notification.MonthFor(o.Digit)
	return NextOccurrenceResponse{Digit: int(o.Digit), TargetMonth: month.String(), FireDate: Date{Time: o.FireDate}}
}
