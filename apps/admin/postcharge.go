package main

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/karo/core"
	"github.com/trezcool/karo/core/fee"
)

// postCharge issues a new fee charge to a student, with the full amount remaining.
func (cli *commandLine) postCharge(studentID, description, amount, due string) error {
	total, err := decimal.NewFromString(amount)
	if err != nil {
		return fmt.Errorf("amount must be a number (got %q)", amount)
	}

	var dueDate null.Time
	if due != "" {
		d, err := time.Parse("2006-01-02", due)
		if err != nil {
			return fmt.Errorf("due date must be of form YYYY-MM-DD (got %q)", due)
		}
		dueDate = null.TimeFrom(d)
	}

	charge, err := cli.feeSvc.PostCharge(context.Background(), studentID, fee.NewCharge{
		Description: core.CleanString(description),
		TotalAmount: total,
		DueDate:     dueDate,
	})
	if err != nil {
		return err
	}
	fmt.Printf("charge %q (%s) posted to student %s as %s\n",
		charge.Description, charge.TotalAmount, charge.StudentID, charge.FeeID)
	return nil
}
