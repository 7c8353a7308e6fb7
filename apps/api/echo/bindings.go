package echoapi

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/karo/core"
	"github.com/trezcool/karo/core/fee"
)

type (
	// ApplyPaymentRequest carries a proposed payment; DuplicateOK acknowledges
	// a payment flagged as a probable double-entry.
	ApplyPaymentRequest struct {
		fee.NewPayment
		DuplicateOK bool `json:"duplicate_ok" query:"duplicate_ok"`
	}

	// TypeAggregatesRequest selects the ordering of the fee type report.
	TypeAggregatesRequest struct {
		Sort string `query:"sort"`
		Dir  string `query:"dir"`
	}

	// TypeChargesRequest drills down into one fee type's charges.
	TypeChargesRequest struct {
		Description string `query:"description" validate:"required"`
		Search      string `query:"search"`
		Page        int    `query:"page"`
	}

	PagedChargesResponse struct {
		Results  []fee.Charge `json:"results"`
		Count    int          `json:"count"`
		Page     int          `json:"page"`
		PageSize int          `json:"page_size"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}
)

func (r *ApplyPaymentRequest) Validate(validate *validator.Validate) error {
	return r.NewPayment.Validate(validate)
}

var sortKeys = map[string]bool{
	fee.SortByDescription:     true,
	fee.SortByTotalAmount:     true,
	fee.SortByPaidAmount:      true,
	fee.SortByRemainingAmount: true,
	fee.SortByPercentagePaid:  true,
}

func (r *TypeAggregatesRequest) Validate() error {
	r.Sort = core.CleanString(r.Sort, true /* lower */)
	r.Dir = core.CleanString(r.Dir, true /* lower */)
	if r.Sort == "" {
		r.Sort = fee.SortByDescription
	}
	if !sortKeys[r.Sort] {
		return core.NewValidationError(nil, core.FieldError{Field: "sort", Error: "invalid sort key"})
	}
	if !(r.Dir == "" || r.Dir == "asc" || r.Dir == "desc") {
		return core.NewValidationError(nil, core.FieldError{Field: "dir", Error: "must be either \"asc\" or \"desc\""})
	}
	return nil
}

func (r TypeAggregatesRequest) SortState() fee.SortState {
	return fee.SortState{Key: r.Sort, Ascending: r.Dir != "desc"}
}

func (r *TypeChargesRequest) Validate(validate *validator.Validate) error {
	r.Description = core.CleanString(r.Description)
	r.Search = core.CleanString(r.Search)
	if r.Page < 1 {
		r.Page = 1
	}
	return validate.Struct(r)
}
