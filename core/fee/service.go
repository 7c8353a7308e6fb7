package fee

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/trezcool/karo/core"
	"github.com/trezcool/karo/core/student"
)

var (
	// errors
	ErrChargeNotFound  = errors.New("fee charge not found")
	ErrPaymentNotFound = errors.New("payment not found")
	ErrInvalidAmount   = errors.New("payment amount must be a positive number")
	ErrOverpayment     = errors.New("payment amount cannot exceed remaining fees")
)

type (
	Repository interface {
		CreateCharge(ctx context.Context, charge Charge) (Charge, error)
		GetCharge(ctx context.Context, studentID, feeID string) (Charge, error)
		// ListCharges returns all charges of a student, payment history included,
		// in no particular order. Unknown students yield an empty slice.
		ListCharges(ctx context.Context, studentID string) ([]Charge, error)
		QueryAllCharges(ctx context.Context) ([]Charge, error)
		// ApplyPayment commits the updated balance and the new payment record
		// as a single atomic write; on failure no partial state is written.
		ApplyPayment(ctx context.Context, charge Charge, pmt Payment) (Charge, error)
		UpdatePaymentNotes(ctx context.Context, studentID, feeID, paymentID, notes string) (Payment, error)
		// WatchCharges invokes fn with a student's refreshed charge list after
		// every committed write until stop is called.
		WatchCharges(studentID string, fn func([]Charge)) (stop func(), err error)
	}

	Service struct {
		repo     Repository
		stdRepo  student.Repository
		mailSvc  core.EmailService
		conf     *core.Config
		chargeMu struct {
			sync.Mutex
			locks map[string]*sync.Mutex
		}
	}
)

func NewService(repo Repository, stdRepo student.Repository, mailSvc core.EmailService, conf *core.Config) *Service {
	svc := &Service{
		repo:    repo,
		stdRepo: stdRepo,
		mailSvc: mailSvc,
		conf:    conf,
	}
	svc.chargeMu.locks = make(map[string]*sync.Mutex)
	return svc
}

// lockCharge serializes writers on a single charge. The charge is the unit of
// contention: concurrent payments must not both validate against a stale balance.
func (svc *Service) lockCharge(studentID, feeID string) (unlock func()) {
	key := studentID + "/" + feeID

	svc.chargeMu.Lock()
	mu, ok := svc.chargeMu.locks[key]
	if !ok {
		mu = new(sync.Mutex)
		svc.chargeMu.locks[key] = mu
	}
	svc.chargeMu.Unlock()

	mu.Lock()
	return mu.Unlock
}

// PostCharge issues a new billable item to a student, with the full amount remaining.
func (svc *Service) PostCharge(ctx context.Context, studentID string, nc NewCharge) (Charge, error) {
	if _, err := svc.stdRepo.GetStudentByID(ctx, studentID); err != nil {
		return Charge{}, err
	}

	charge := Charge{
		StudentID:       studentID,
		FeeID:           uuid.New().String(),
		Description:     nc.Description,
		TotalAmount:     nc.TotalAmount,
		RemainingAmount: nc.TotalAmount,
		DatePosted:      nowFunc().UTC(),
		DueDate:         nc.DueDate,
		Payments:        []Payment{},
	}
	return svc.repo.CreateCharge(ctx, charge)
}

// ListCharges returns all of a student's charges, newest first.
func (svc *Service) ListCharges(ctx context.Context, studentID string) ([]Charge, error) {
	charges, err := svc.repo.ListCharges(ctx, studentID)
	if err != nil {
		return nil, err
	}
	sortCharges(charges)
	return charges, nil
}

// ListPayableCharges returns the student's charges that still have an outstanding
// balance, newest first. A charge fully paid by a concurrent payment disappears
// from this listing; callers holding a stale selection must re-fetch and clear it.
func (svc *Service) ListPayableCharges(ctx context.Context, studentID string) ([]Charge, error) {
	charges, err := svc.ListCharges(ctx, studentID)
	if err != nil {
		return nil, err
	}
	payable := make([]Charge, 0, len(charges))
	for _, c := range charges {
		if !c.FullyPaid() {
			payable = append(payable, c)
		}
	}
	return payable, nil
}

func (svc *Service) GetCharge(ctx context.Context, studentID, feeID string) (Charge, error) {
	charge, err := svc.repo.GetCharge(ctx, studentID, feeID)
	if err != nil {
		return Charge{}, err
	}
	sortPayments(charge.Payments)
	return charge, nil
}

// ApplyPayment validates a proposed payment against a charge and commits it:
// the reduced balance and the payment record (with audit snapshots) are written
// as one atomic update. The read-validate-write runs inside the per-charge
// critical section, so two concurrent payments cannot spend the same balance.
//
// The operation is not idempotent: a retry after an unconfirmed write will
// double-apply. Callers should re-read state (see FindSimilarPayment) first.
func (svc *Service) ApplyPayment(ctx context.Context, studentID, feeID string, np NewPayment) (Charge, error) {
	unlock := svc.lockCharge(studentID, feeID)
	defer unlock()

	charge, err := svc.repo.GetCharge(ctx, studentID, feeID)
	if err != nil {
		return Charge{}, err
	}
	if !np.Amount.IsPositive() {
		return Charge{}, ErrInvalidAmount
	}
	if np.Amount.Cmp(charge.RemainingAmount) > 0 {
		return Charge{}, ErrOverpayment
	}

	pmt := Payment{
		ID:              svc.newUniquePaymentID(charge),
		Amount:          np.Amount,
		Date:            np.Date,
		Method:          np.Method,
		Notes:           np.Notes,
		RemainingBefore: charge.RemainingAmount,
		RemainingAfter:  charge.RemainingAmount.Sub(np.Amount),
		CreatedAt:       nowFunc().UTC(),
	}

	updated, err := svc.repo.ApplyPayment(ctx, charge, pmt)
	if err != nil {
		return Charge{}, err
	}
	sortPayments(updated.Payments)

	svc.sendReceipt(ctx, updated, pmt)
	return updated, nil
}

// UpdatePaymentNotes edits the notes of an existing payment; every other
// payment field is immutable.
func (svc *Service) UpdatePaymentNotes(ctx context.Context, studentID, feeID, paymentID string, un UpdatePaymentNotes) (Payment, error) {
	unlock := svc.lockCharge(studentID, feeID)
	defer unlock()
	return svc.repo.UpdatePaymentNotes(ctx, studentID, feeID, paymentID, un.Notes)
}

// Summary computes the student's {total, paid, remaining} rollup.
func (svc *Service) Summary(ctx context.Context, studentID string) (Summary, error) {
	charges, err := svc.repo.ListCharges(ctx, studentID)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(charges), nil
}

// TypeAggregates computes the cross-student per-fee-type rollups.
func (svc *Service) TypeAggregates(ctx context.Context) ([]TypeAggregate, error) {
	charges, err := svc.repo.QueryAllCharges(ctx)
	if err != nil {
		return nil, err
	}
	return AggregateByType(charges), nil
}

// TypeCharges drills down into one fee type's constituent charges, filtered by
// a student-identifier substring and paginated at the configured page size.
// It returns the requested page and the total match count.
func (svc *Service) TypeCharges(ctx context.Context, description, search string, page int) ([]Charge, int, error) {
	charges, err := svc.repo.QueryAllCharges(ctx)
	if err != nil {
		return nil, 0, err
	}
	matches := FilterCharges(charges, description, search)
	sortCharges(matches)
	paged, total := Paginate(matches, page, svc.conf.ReportPageSize)
	return paged, total, nil
}

// WatchCharges pushes the student's refreshed charge list (newest first) to fn
// after every committed write, until the returned stop function is called.
func (svc *Service) WatchCharges(studentID string, fn func([]Charge)) (stop func(), err error) {
	return svc.repo.WatchCharges(studentID, func(charges []Charge) {
		sortCharges(charges)
		fn(charges)
	})
}

func (svc *Service) newUniquePaymentID(charge Charge) string {
	for {
		id := newPaymentID()
		exists := false
		for _, p := range charge.Payments {
			if p.ID == id {
				exists = true
				break
			}
		}
		if !exists {
			return id
		}
	}
}

func (svc *Service) sendReceipt(ctx context.Context, charge Charge, pmt Payment) {
	if svc.mailSvc == nil || svc.stdRepo == nil {
		return
	}
	std, err := svc.stdRepo.GetStudentByID(ctx, charge.StudentID)
	if err != nil || std.Email == "" {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: std.Name, Address: std.Email}},
		Subject:      fmt.Sprintf("Payment receipt - %s", charge.Description),
		TemplateName: "payment-receipt",
		TemplateData: struct {
			Student student.Student
			Charge  Charge
			Payment Payment
		}{std, charge, pmt},
	})
}

// sortCharges orders charges newest-first by DatePosted and each charge's
// payments oldest-first by creation instant.
func sortCharges(charges []Charge) {
	sort.Slice(charges, func(i, j int) bool { return charges[i].DatePosted.After(charges[j].DatePosted) })
	for i := range charges {
		sortPayments(charges[i].Payments)
	}
}

func sortPayments(pmts []Payment) {
	sort.Slice(pmts, func(i, j int) bool { return pmts[i].CreatedAt.Before(pmts[j].CreatedAt) })
}
