package fee

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/karo/core"
)

// Payment methods
const (
	MethodCash         = "cash"
	MethodCard         = "card"
	MethodBankTransfer = "bank_transfer"
	MethodCheck        = "check"
	MethodOnline       = "online"
)

var (
	AllMethods = []string{MethodCash, MethodCard, MethodBankTransfer, MethodCheck, MethodOnline}

	Methods = []Method{
		{Name: "Cash", Value: MethodCash},
		{Name: "Card", Value: MethodCard},
		{Name: "Bank Transfer", Value: MethodBankTransfer},
		{Name: "Check", Value: MethodCheck},
		{Name: "Online Payment", Value: MethodOnline},
	}
)

type Method struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func IsValidMethod(method string) bool {
	for _, m := range AllMethods {
		if m == method {
			return true
		}
	}
	return false
}

// Payment is one monetary transaction applied against exactly one Charge.
// It is immutable once recorded, except for Notes.
type Payment struct {
	ID     string          `json:"id"`
	Amount decimal.Decimal `json:"amount"`
	Date   time.Time       `json:"date"` // calendar date chosen by the recorder
	Method string          `json:"method"`
	Notes  string          `json:"notes,omitempty"`

	// balance snapshots for audit
	RemainingBefore decimal.Decimal `json:"remaining_before"`
	RemainingAfter  decimal.Decimal `json:"remaining_after"`

	CreatedAt time.Time `json:"created_at"` // UTC
}

// Charge is one billable item issued to one student.
// RemainingAmount always equals TotalAmount minus the sum of its payments;
// it is only ever reduced by appending a Payment.
type Charge struct {
	StudentID       string          `json:"student_id"`
	FeeID           string          `json:"fee_id"`
	Description     string          `json:"description"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	DatePosted      time.Time       `json:"date_posted"` // UTC
	DueDate         null.Time       `json:"due_date,omitempty"`
	Payments        []Payment       `json:"payments"` // oldest first
}

// PaidAmount returns the total amount paid so far.
func (c Charge) PaidAmount() decimal.Decimal {
	return c.TotalAmount.Sub(c.RemainingAmount)
}

// FullyPaid reports whether nothing remains to be paid; fully paid charges
// are excluded from payable listings.
func (c Charge) FullyPaid() bool {
	return c.RemainingAmount.IsZero()
}

// NewCharge contains information needed to post a new Charge.
type NewCharge struct {
	Description string          `json:"description" validate:"required"`
	TotalAmount decimal.Decimal `json:"total_amount" validate:"-"`
	DueDate     null.Time       `json:"due_date" validate:"-"`
}

func (nc *NewCharge) Validate(validate *validator.Validate) error {
	nc.Description = core.CleanString(nc.Description)

	if err := validate.Struct(nc); err != nil {
		return err
	}
	if nc.TotalAmount.IsNegative() {
		return core.NewValidationError(nil, core.FieldError{Field: "total_amount", Error: "amount must not be negative"})
	}
	return nil
}

// NewPayment contains information needed to record a Payment against a Charge.
type NewPayment struct {
	Amount decimal.Decimal `json:"amount" validate:"-"`
	Date   time.Time       `json:"date" validate:"required"`
	Method string          `json:"method" validate:"required,paymethod"`
	Notes  string          `json:"notes"`
}

func (np *NewPayment) Validate(validate *validator.Validate) error {
	np.Notes = core.CleanString(np.Notes)
	return validate.Struct(np)
}

// UpdatePaymentNotes defines what may be modified on an existing Payment.
type UpdatePaymentNotes struct {
	Notes string `json:"notes"`
}

func (un *UpdatePaymentNotes) Validate() error {
	un.Notes = core.CleanString(un.Notes)
	return nil
}
