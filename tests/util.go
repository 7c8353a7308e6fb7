package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/trezcool/karo/core"
	"github.com/trezcool/karo/core/fee"
	"github.com/trezcool/karo/core/student"
)

// NewConfig returns a deterministic test configuration and sets the core.Conf
// singleton used by templated emails.
func NewConfig() *core.Config {
	core.Conf = &core.Config{
		Debug:           false,
		TestMode:        true,
		Env:             "TEST",
		Build:           "test",
		AppName:         "Karo",
		SecretKey:       "secret",
		WorkDir:         core.Getwd(),
		FrontendBaseURL: "http://localhost:3000",
		DefaultFromName: "Karo",
		DefaultFromAddr: "noreply@localhost",
		ReportPageSize:  20,
		Server: core.ServerConfig{
			Host:               "localhost",
			Addr:               ":8000",
			ShutdownTimeout:    5 * time.Second,
			JWTExpirationDelta: 10 * time.Minute,
		},
	}
	return core.Conf
}

func CreateStudent(t *testing.T, repo student.Repository, name, email string) student.Student {
	t.Helper()
	tstamp := time.Now().UTC()
	std, err := repo.CreateStudent(context.Background(), student.Student{
		ID:        "std-" + core.CleanString(name, true /* lower */),
		Name:      name,
		Email:     email,
		IsActive:  true,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return std
}

func CreateCharge(
	t *testing.T,
	repo fee.Repository,
	studentID, feeID, description string,
	total decimal.Decimal,
	datePosted ...time.Time,
) fee.Charge {
	t.Helper()
	tstamp := time.Now().UTC()
	if len(datePosted) > 0 {
		tstamp = datePosted[0].UTC()
	}
	charge, err := repo.CreateCharge(context.Background(), fee.Charge{
		StudentID:       studentID,
		FeeID:           feeID,
		Description:     description,
		TotalAmount:     total,
		RemainingAmount: total,
		DatePosted:      tstamp,
		Payments:        []fee.Payment{},
	})
	if err != nil {
		t.Fatalf("CreateCharge() failed: %v", err)
	}
	return charge
}

func ApplyPayment(t *testing.T, svc *fee.Service, studentID, feeID string, amount decimal.Decimal) fee.Charge {
	t.Helper()
	charge, err := svc.ApplyPayment(context.Background(), studentID, feeID, fee.NewPayment{
		Amount: amount,
		Date:   time.Now().UTC(),
		Method: fee.MethodCash,
	})
	if err != nil {
		t.Fatalf("ApplyPayment() failed: %v", err)
	}
	return charge
}
