package fee

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Summary is the per-student rollup of all their charges.
type Summary struct {
	TotalAmount     decimal.Decimal `json:"total_amount"`
	PaidAmount      decimal.Decimal `json:"paid_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
}

// Summarize computes the Summary of the given charges.
// A pure function of its input; an empty slice yields a zero Summary.
func Summarize(charges []Charge) Summary {
	var s Summary
	for _, c := range charges {
		s.TotalAmount = s.TotalAmount.Add(c.TotalAmount)
		s.PaidAmount = s.PaidAmount.Add(c.PaidAmount())
		s.RemainingAmount = s.RemainingAmount.Add(c.RemainingAmount)
	}
	return s
}

// TypeAggregate is the cross-student rollup of all charges sharing a Description.
// Derived on every read; holds no independent state.
type TypeAggregate struct {
	Description     string          `json:"description"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	PaidAmount      decimal.Decimal `json:"paid_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	PercentagePaid  float64         `json:"percentage_paid"` // rounded to 1 decimal
}

// AggregateByType groups charges by Description and computes each group's totals.
// Groups are returned in ascending Description order.
func AggregateByType(charges []Charge) []TypeAggregate {
	groups := make(map[string]*TypeAggregate)
	for _, c := range charges {
		agg, ok := groups[c.Description]
		if !ok {
			agg = &TypeAggregate{Description: c.Description}
			groups[c.Description] = agg
		}
		agg.TotalAmount = agg.TotalAmount.Add(c.TotalAmount)
		agg.PaidAmount = agg.PaidAmount.Add(c.PaidAmount())
		agg.RemainingAmount = agg.RemainingAmount.Add(c.RemainingAmount)
	}

	aggs := make([]TypeAggregate, 0, len(groups))
	for _, agg := range groups {
		agg.PercentagePaid = percentagePaid(agg.PaidAmount, agg.TotalAmount)
		aggs = append(aggs, *agg)
	}
	sort.Slice(aggs, func(i, j int) bool { return aggs[i].Description < aggs[j].Description })
	return aggs
}

// percentagePaid yields 0 (not NaN) when total is 0.
func percentagePaid(paid, total decimal.Decimal) float64 {
	if total.IsZero() {
		return 0
	}
	pct, _ := paid.Div(total).Mul(hundred).Round(1).Float64()
	return pct
}

// Sort keys for TypeAggregate lists.
const (
	SortByDescription     = "description"
	SortByTotalAmount     = "total_amount"
	SortByPaidAmount      = "paid_amount"
	SortByRemainingAmount = "remaining_amount"
	SortByPercentagePaid  = "percentage_paid"
)

// SortState tracks the current ordering of a TypeAggregate list.
// Toggling the same key flips the direction; a new key starts ascending.
type SortState struct {
	Key       string
	Ascending bool
}

func (s *SortState) Toggle(key string) {
	if s.Key == key {
		s.Ascending = !s.Ascending
		return
	}
	s.Key = key
	s.Ascending = true
}

// Sort orders aggs in place according to the state. Strings compare in natural
// lexicographic order, amounts numerically; ties keep the incoming order.
func (s SortState) Sort(aggs []TypeAggregate) {
	var less func(i, j int) bool
	switch s.Key {
	case SortByTotalAmount:
		less = func(i, j int) bool { return aggs[i].TotalAmount.Cmp(aggs[j].TotalAmount) < 0 }
	case SortByPaidAmount:
		less = func(i, j int) bool { return aggs[i].PaidAmount.Cmp(aggs[j].PaidAmount) < 0 }
	case SortByRemainingAmount:
		less = func(i, j int) bool { return aggs[i].RemainingAmount.Cmp(aggs[j].RemainingAmount) < 0 }
	case SortByPercentagePaid:
		less = func(i, j int) bool { return aggs[i].PercentagePaid < aggs[j].PercentagePaid }
	default:
		less = func(i, j int) bool { return aggs[i].Description < aggs[j].Description }
	}
	if !s.Ascending {
		asc := less
		less = func(i, j int) bool { return asc(j, i) }
	}
	sort.SliceStable(aggs, less)
}

// FilterCharges returns the charges of one fee type, optionally narrowed down
// by a case-insensitive substring match on the student identifier.
func FilterCharges(charges []Charge, description, search string) []Charge {
	search = strings.ToLower(search)
	matches := make([]Charge, 0, len(charges))
	for _, c := range charges {
		if c.Description != description {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(c.StudentID), search) {
			continue
		}
		matches = append(matches, c)
	}
	return matches
}

// Paginate slices charges into the 1-based page of the given size,
// returning the page and the total match count.
func Paginate(charges []Charge, page, pageSize int) ([]Charge, int) {
	total := len(charges)
	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start >= total {
		return []Charge{}, total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return charges[start:end], total
}
