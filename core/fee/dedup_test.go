package fee

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestFindSimilarPayment(t *testing.T) {
	date := time.Date(2021, time.May, 3, 0, 0, 0, 0, time.UTC)
	recorded := Payment{
		ID:     "PMT1",
		Amount: decimal.NewFromInt(150),
		Date:   date,
		Method: MethodCash,
		Notes:  "term 2 installment, receipt #1042",
	}
	charge := Charge{
		StudentID:       "std1",
		FeeID:           "fee1",
		Description:     "Tuition",
		TotalAmount:     decimal.NewFromInt(500),
		RemainingAmount: decimal.NewFromInt(350),
		Payments:        []Payment{recorded},
	}

	tests := []struct {
		name     string
		proposed NewPayment
		wantDup  bool
	}{
		{
			name:     "identical entry",
			proposed: NewPayment{Amount: decimal.NewFromInt(150), Date: date, Notes: "term 2 installment, receipt #1042"},
			wantDup:  true,
		},
		{
			name:     "near-identical notes",
			proposed: NewPayment{Amount: decimal.NewFromInt(150), Date: date, Notes: "Term 2 installment, receipt 1042"},
			wantDup:  true,
		},
		{
			name:     "same day different moment",
			proposed: NewPayment{Amount: decimal.NewFromInt(150), Date: date.Add(6 * time.Hour), Notes: "term 2 installment, receipt #1042"},
			wantDup:  true,
		},
		{
			name:     "different amount",
			proposed: NewPayment{Amount: decimal.NewFromInt(151), Date: date, Notes: "term 2 installment, receipt #1042"},
		},
		{
			name:     "different day",
			proposed: NewPayment{Amount: decimal.NewFromInt(150), Date: date.AddDate(0, 0, 1), Notes: "term 2 installment, receipt #1042"},
		},
		{
			name:     "unrelated notes",
			proposed: NewPayment{Amount: decimal.NewFromInt(150), Date: date, Notes: "uniform deposit"},
		},
		{
			name:     "one side has no notes",
			proposed: NewPayment{Amount: decimal.NewFromInt(150), Date: date},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dup := FindSimilarPayment(charge, tt.proposed)
			if tt.wantDup && dup == nil {
				t.Error("FindSimilarPayment() = nil, want a match")
			}
			if !tt.wantDup && dup != nil {
				t.Errorf("FindSimilarPayment() = %+v, want nil", dup)
			}
		})
	}
}

func TestFindSimilarPayment_bothWithoutNotes(t *testing.T) {
	date := time.Date(2021, time.May, 3, 0, 0, 0, 0, time.UTC)
	charge := Charge{
		Payments: []Payment{{ID: "PMT1", Amount: decimal.NewFromInt(20), Date: date}},
	}

	// two bare same-amount same-day entries are indistinguishable
	dup := FindSimilarPayment(charge, NewPayment{Amount: decimal.NewFromInt(20), Date: date})
	if dup == nil {
		t.Error("FindSimilarPayment() = nil, want a match")
	}
}
