package admission

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// Summarize builds the FeeSummary of a ledger. Balance may be negative on overpayment.
func Summarize(totalFee, totalPaid int64, assigned bool, at time.Time) FeeSummary {
	return FeeSummary{
		TotalFee:  totalFee,
		TotalPaid: totalPaid,
		Balance:   totalFee - totalPaid,
		Status:    ClassifyFee(totalFee, totalPaid),
		Assigned:  assigned,
		UpdatedAt: at,
	}
}

// resolveFeeStructure returns the fee structure of the student's offering or ErrNoFeeStructureAssigned.
func resolveFeeStructure(ctx context.Context, tx Tx, stu Student) (FeeStructure, error) {
	if stu.Offering == nil {
		return FeeStructure{}, ErrNoFeeStructureAssigned
	}
	return tx.FeeStructure(ctx, *stu.Offering)
}

// recomputeLedger re-aggregates every payment row of the locked student and stores the new summary.
// The total is never incremented in place.
func recomputeLedger(ctx context.Context, tx Tx, at time.Time) (FeeSummary, error) {
	paid, err := tx.SumPayments(ctx)
	if err != nil {
		return FeeSummary{}, errors.Wrap(err, "summing payments")
	}

	var total int64
	assigned := true
	fs, err := resolveFeeStructure(ctx, tx, tx.Student())
	switch errors.Cause(err) {
	case nil:
		total = fs.TotalFee
	case ErrNoFeeStructureAssigned:
		assigned = false
	default:
		return FeeSummary{}, errors.Wrap(err, "resolving fee structure")
	}

	sum := Summarize(total, paid, assigned, at)
	if err = tx.SaveFeeSummary(ctx, sum); err != nil {
		return FeeSummary{}, errors.Wrap(err, "saving fee summary")
	}
	return sum, nil
}

func newPaymentRow(id, studentID string, kind PaymentKind, amount int64, mode PaymentMode, receipt string,
	paymentDate time.Time, recordedBy, remarks string, at time.Time) Payment {
	if paymentDate.IsZero() {
		paymentDate = at
	}
	y, m, d := paymentDate.Date()
	return Payment{
		ID:            id,
		StudentID:     studentID,
		Kind:          kind,
		Amount:        amount,
		Mode:          mode,
		ReceiptNumber: receipt,
		PaymentDate:   time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		RecordedBy:    recordedBy,
		Remarks:       remarks,
		CreatedAt:     at,
	}
}
