package fee

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func charge(studentID, desc string, total, remaining int64) Charge {
	return Charge{
		StudentID:       studentID,
		Description:     desc,
		TotalAmount:     dec(total),
		RemainingAmount: dec(remaining),
	}
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name    string
		charges []Charge
		want    Summary
	}{
		{
			name: "no charges",
			want: Summary{TotalAmount: decimal.Zero, PaidAmount: decimal.Zero, RemainingAmount: decimal.Zero},
		},
		{
			name: "mixed balances",
			charges: []Charge{
				charge("std1", "Tuition", 100, 60),
				charge("std1", "Library", 200, 180),
			},
			want: Summary{TotalAmount: dec(300), PaidAmount: dec(60), RemainingAmount: dec(240)},
		},
		{
			name: "all paid",
			charges: []Charge{
				charge("std1", "Tuition", 100, 0),
			},
			want: Summary{TotalAmount: dec(100), PaidAmount: dec(100), RemainingAmount: dec(0)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(tt.charges)
			if !got.TotalAmount.Equal(tt.want.TotalAmount) ||
				!got.PaidAmount.Equal(tt.want.PaidAmount) ||
				!got.RemainingAmount.Equal(tt.want.RemainingAmount) {
				t.Errorf("Summarize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestAggregateByType(t *testing.T) {
	charges := []Charge{
		charge("std1", "Tuition", 200, 50),
		charge("std2", "Tuition", 100, 50),
		charge("std1", "Library", 50, 50),
	}

	aggs := AggregateByType(charges)
	if len(aggs) != 2 {
		t.Fatalf("AggregateByType() returned %d aggregates, want 2", len(aggs))
	}

	// description-ascending by default
	lib, tui := aggs[0], aggs[1]
	if lib.Description != "Library" || tui.Description != "Tuition" {
		t.Fatalf("AggregateByType() order = [%s, %s], want [Library, Tuition]", lib.Description, tui.Description)
	}

	if !tui.TotalAmount.Equal(dec(300)) || !tui.PaidAmount.Equal(dec(200)) || !tui.RemainingAmount.Equal(dec(100)) {
		t.Errorf("Tuition aggregate = %+v", tui)
	}
	if tui.PercentagePaid != 66.7 {
		t.Errorf("Tuition PercentagePaid = %v, want 66.7", tui.PercentagePaid)
	}
	if lib.PercentagePaid != 0 {
		t.Errorf("Library PercentagePaid = %v, want 0", lib.PercentagePaid)
	}
}

func TestAggregateByType_zeroTotal(t *testing.T) {
	aggs := AggregateByType([]Charge{charge("std1", "Waived", 0, 0)})
	if len(aggs) != 1 {
		t.Fatalf("AggregateByType() returned %d aggregates, want 1", len(aggs))
	}
	if aggs[0].PercentagePaid != 0 {
		t.Errorf("PercentagePaid = %v, want 0 for a zero-total type", aggs[0].PercentagePaid)
	}
}

func TestSortState(t *testing.T) {
	aggs := func() []TypeAggregate {
		return []TypeAggregate{
			{Description: "Library", TotalAmount: dec(50), PaidAmount: dec(0), PercentagePaid: 0},
			{Description: "Tuition", TotalAmount: dec(300), PaidAmount: dec(200), PercentagePaid: 66.7},
			{Description: "Sports", TotalAmount: dec(100), PaidAmount: dec(100), PercentagePaid: 100},
		}
	}
	descs := func(aggs []TypeAggregate) [3]string {
		var out [3]string
		for i, a := range aggs {
			out[i] = a.Description
		}
		return out
	}

	var state SortState
	state.Toggle(SortByTotalAmount)
	if !state.Ascending {
		t.Fatal("Toggle() on a new key must start ascending")
	}

	got := aggs()
	state.Sort(got)
	if want := [3]string{"Library", "Sports", "Tuition"}; descs(got) != want {
		t.Errorf("Sort(total asc) = %v, want %v", descs(got), want)
	}

	// toggling the same key flips the direction
	state.Toggle(SortByTotalAmount)
	if state.Ascending {
		t.Fatal("Toggle() on the same key must flip the direction")
	}
	got = aggs()
	state.Sort(got)
	if want := [3]string{"Tuition", "Sports", "Library"}; descs(got) != want {
		t.Errorf("Sort(total desc) = %v, want %v", descs(got), want)
	}

	// a new key resets to ascending
	state.Toggle(SortByPercentagePaid)
	if state.Key != SortByPercentagePaid || !state.Ascending {
		t.Fatalf("Toggle() state = %+v, want {%s true}", state, SortByPercentagePaid)
	}
	got = aggs()
	state.Sort(got)
	if want := [3]string{"Library", "Tuition", "Sports"}; descs(got) != want {
		t.Errorf("Sort(percentage asc) = %v, want %v", descs(got), want)
	}
}

func TestFilterCharges(t *testing.T) {
	charges := []Charge{
		charge("STD-001", "Tuition", 100, 50),
		charge("STD-002", "Tuition", 100, 0),
		charge("XYZ-9", "Library", 50, 50),
	}

	tests := []struct {
		name        string
		description string
		search      string
		want        int
	}{
		{name: "by description", description: "Tuition", want: 2},
		{name: "description is exact", description: "Tuit", want: 0},
		{name: "search narrows", description: "Tuition", search: "001", want: 1},
		{name: "search is case-insensitive", description: "Tuition", search: "std", want: 2},
		{name: "search (unknown)", description: "Tuition", search: "lol", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FilterCharges(charges, tt.description, tt.search); len(got) != tt.want {
				t.Errorf("FilterCharges() returned %d charges, want %d", len(got), tt.want)
			}
		})
	}
}

func TestPaginate(t *testing.T) {
	charges := make([]Charge, 0, 5)
	for i := 0; i < 5; i++ {
		c := charge("std1", "Tuition", 100, 100)
		c.DatePosted = time.Date(2021, time.January, 1+i, 0, 0, 0, 0, time.UTC)
		charges = append(charges, c)
	}

	tests := []struct {
		name      string
		page      int
		pageSize  int
		wantLen   int
		wantTotal int
	}{
		{name: "first page", page: 1, pageSize: 2, wantLen: 2, wantTotal: 5},
		{name: "last partial page", page: 3, pageSize: 2, wantLen: 1, wantTotal: 5},
		{name: "page out of range", page: 4, pageSize: 2, wantLen: 0, wantTotal: 5},
		{name: "everything fits", page: 1, pageSize: 10, wantLen: 5, wantTotal: 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, total := Paginate(charges, tt.page, tt.pageSize)
			if len(got) != tt.wantLen {
				t.Errorf("Paginate() returned %d charges, want %d", len(got), tt.wantLen)
			}
			if total != tt.wantTotal {
				t.Errorf("Paginate() total = %d, want %d", total, tt.wantTotal)
			}
		})
	}
}
