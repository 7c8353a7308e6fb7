// Package feestore implements the fee and student repositories on top of the
// hierarchical document store.
//
// Layout:
//
//	students/<studentID>                      student record
//	fees/<studentID>/<feeID>                  charge record (balance included)
//	fees/<studentID>/<feeID>/payments/<pid>   one payment record each
//
// A charge's balance and its payment history live at separate paths so that
// ApplyPayment can commit both in one atomic multi-path write.
package feestore

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/trezcool/karo/core/fee"
	"github.com/trezcool/karo/core/student"
	"github.com/trezcool/karo/storage/docstore"
)

const (
	studentsRoot = "students"
	feesRoot     = "fees"
	paymentsSeg  = "payments"
)

type FeeRepository struct {
	client docstore.Client
}

var _ fee.Repository = (*FeeRepository)(nil)

func NewFeeRepository(client docstore.Client) *FeeRepository {
	return &FeeRepository{client: client}
}

func chargePath(studentID, feeID string) string {
	return docstore.Join(feesRoot, studentID, feeID)
}

func paymentPath(studentID, feeID, paymentID string) string {
	return docstore.Join(feesRoot, studentID, feeID, paymentsSeg, paymentID)
}

func (repo *FeeRepository) CreateCharge(ctx context.Context, charge fee.Charge) (fee.Charge, error) {
	doc, err := marshalCharge(charge)
	if err != nil {
		return fee.Charge{}, err
	}
	if err = repo.client.Put(ctx, chargePath(charge.StudentID, charge.FeeID), doc); err != nil {
		return fee.Charge{}, err
	}
	return charge, nil
}

func (repo *FeeRepository) GetCharge(ctx context.Context, studentID, feeID string) (fee.Charge, error) {
	doc, err := repo.client.Get(ctx, chargePath(studentID, feeID))
	if err != nil {
		if errors.Cause(err) == docstore.ErrNotFound {
			return fee.Charge{}, fee.ErrChargeNotFound
		}
		return fee.Charge{}, err
	}

	var charge fee.Charge
	if err = json.Unmarshal(doc, &charge); err != nil {
		return fee.Charge{}, errors.Wrap(err, "unmarshalling charge")
	}

	pmtDocs, err := repo.client.List(ctx, paymentPath(studentID, feeID, ""))
	if err != nil {
		return fee.Charge{}, err
	}
	charge.Payments = make([]fee.Payment, 0, len(pmtDocs))
	for path, pmtDoc := range pmtDocs {
		var pmt fee.Payment
		if err = json.Unmarshal(pmtDoc, &pmt); err != nil {
			return fee.Charge{}, errors.Wrap(err, "unmarshalling payment "+path)
		}
		charge.Payments = append(charge.Payments, pmt)
	}
	return charge, nil
}

func (repo *FeeRepository) ListCharges(ctx context.Context, studentID string) ([]fee.Charge, error) {
	docs, err := repo.client.List(ctx, docstore.Join(feesRoot, studentID)+"/")
	if err != nil {
		return nil, err
	}
	return assembleCharges(docs)
}

func (repo *FeeRepository) QueryAllCharges(ctx context.Context) ([]fee.Charge, error) {
	docs, err := repo.client.List(ctx, feesRoot+"/")
	if err != nil {
		return nil, err
	}
	return assembleCharges(docs)
}

func (repo *FeeRepository) ApplyPayment(ctx context.Context, charge fee.Charge, pmt fee.Payment) (fee.Charge, error) {
	updated := charge
	updated.RemainingAmount = pmt.RemainingAfter

	chargeDoc, err := marshalCharge(updated)
	if err != nil {
		return fee.Charge{}, err
	}
	pmtDoc, err := json.Marshal(pmt)
	if err != nil {
		return fee.Charge{}, errors.Wrap(err, "marshalling payment")
	}

	// balance update + payment record: committed together or not at all
	err = repo.client.MultiPut(ctx, map[string]json.RawMessage{
		chargePath(charge.StudentID, charge.FeeID):          chargeDoc,
		paymentPath(charge.StudentID, charge.FeeID, pmt.ID): pmtDoc,
	})
	if err != nil {
		return fee.Charge{}, err
	}

	updated.Payments = append(append([]fee.Payment(nil), charge.Payments...), pmt)
	return updated, nil
}

func (repo *FeeRepository) UpdatePaymentNotes(ctx context.Context, studentID, feeID, paymentID, notes string) (fee.Payment, error) {
	path := paymentPath(studentID, feeID, paymentID)

	doc, err := repo.client.Get(ctx, path)
	if err != nil {
		if errors.Cause(err) == docstore.ErrNotFound {
			return fee.Payment{}, fee.ErrPaymentNotFound
		}
		return fee.Payment{}, err
	}

	var pmt fee.Payment
	if err = json.Unmarshal(doc, &pmt); err != nil {
		return fee.Payment{}, errors.Wrap(err, "unmarshalling payment")
	}
	pmt.Notes = notes

	newDoc, err := json.Marshal(pmt)
	if err != nil {
		return fee.Payment{}, errors.Wrap(err, "marshalling payment")
	}
	if err = repo.client.Put(ctx, path, newDoc); err != nil {
		return fee.Payment{}, err
	}
	return pmt, nil
}

func (repo *FeeRepository) WatchCharges(studentID string, fn func([]fee.Charge)) (stop func(), err error) {
	prefix := docstore.Join(feesRoot, studentID) + "/"
	return repo.client.Watch(prefix, func(string) {
		charges, err := repo.ListCharges(context.Background(), studentID)
		if err != nil {
			return
		}
		fn(charges)
	})
}

// marshalCharge stores a charge without its payment history;
// payments live as separate documents under the charge's path.
func marshalCharge(charge fee.Charge) (json.RawMessage, error) {
	charge.Payments = nil
	doc, err := json.Marshal(charge)
	return doc, errors.Wrap(err, "marshalling charge")
}

// assembleCharges rebuilds charges from a mixed set of charge and payment
// documents sharing the fees/ prefix.
func assembleCharges(docs map[string]json.RawMessage) ([]fee.Charge, error) {
	charges := make(map[string]*fee.Charge)          // chargePath -> charge
	payments := make(map[string][]fee.Payment)       // chargePath -> payments

	for path, doc := range docs {
		segments := docstore.Split(path)
		switch len(segments) {
		case 3: // fees/<studentID>/<feeID>
			var charge fee.Charge
			if err := json.Unmarshal(doc, &charge); err != nil {
				return nil, errors.Wrap(err, "unmarshalling charge "+path)
			}
			charge.Payments = []fee.Payment{}
			charges[path] = &charge
		case 5: // fees/<studentID>/<feeID>/payments/<pid>
			var pmt fee.Payment
			if err := json.Unmarshal(doc, &pmt); err != nil {
				return nil, errors.Wrap(err, "unmarshalling payment "+path)
			}
			parent := docstore.Join(segments[0], segments[1], segments[2])
			payments[parent] = append(payments[parent], pmt)
		}
	}

	result := make([]fee.Charge, 0, len(charges))
	for path, charge := range charges {
		if pmts, ok := payments[path]; ok {
			charge.Payments = pmts
		}
		result = append(result, *charge)
	}
	return result, nil
}

type StudentRepository struct {
	client docstore.Client
}

var _ student.Repository = (*StudentRepository)(nil)

func NewStudentRepository(client docstore.Client) *StudentRepository {
	return &StudentRepository{client: client}
}

func studentPath(id string) string {
	return docstore.Join(studentsRoot, id)
}

func (repo *StudentRepository) CreateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	doc, err := json.Marshal(std)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "marshalling student")
	}
	if err = repo.client.Put(ctx, studentPath(std.ID), doc); err != nil {
		return student.Student{}, err
	}
	return std, nil
}

func (repo *StudentRepository) GetStudentByID(ctx context.Context, id string) (student.Student, error) {
	doc, err := repo.client.Get(ctx, studentPath(id))
	if err != nil {
		if errors.Cause(err) == docstore.ErrNotFound {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, err
	}
	var std student.Student
	if err = json.Unmarshal(doc, &std); err != nil {
		return student.Student{}, errors.Wrap(err, "unmarshalling student")
	}
	return std, nil
}

func (repo *StudentRepository) QueryAllStudents(ctx context.Context) ([]student.Student, error) {
	docs, err := repo.client.List(ctx, studentsRoot+"/")
	if err != nil {
		return nil, err
	}
	students := make([]student.Student, 0, len(docs))
	for path, doc := range docs {
		var std student.Student
		if err = json.Unmarshal(doc, &std); err != nil {
			return nil, errors.Wrap(err, "unmarshalling student "+path)
		}
		students = append(students, std)
	}
	return students, nil
}
