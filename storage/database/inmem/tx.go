package inmemdb

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/shoyeabaslam/kcet-cams-sub000/core/admission"
)

var errTxDone = errors.New("transaction has already been committed or rolled back")

// tx stages every write and applies it on Commit. The student lock is held until Commit or Rollback.
type tx struct {
	db   *DB
	lock chan struct{}
	done bool

	student  admission.Student
	docs     map[int]admission.DocumentRecord
	payments []admission.Payment
	summary  *admission.FeeSummary
	history  []admission.HistoryEntry
	reserved []string // receipt numbers
}

var _ admission.Tx = (*tx)(nil)

func (t *tx) Student() admission.Student {
	return cloneStudent(t.student)
}

func (t *tx) SetStatus(_ context.Context, status admission.Status, at time.Time) error {
	if t.done {
		return errTxDone
	}
	t.student.Status = status
	t.student.UpdatedAt = at
	return nil
}

func (t *tx) SetOffering(_ context.Context, offering admission.CourseOffering, at time.Time) error {
	if t.done {
		return errTxDone
	}
	t.student.Offering = &offering
	t.student.UpdatedAt = at
	return nil
}

func (t *tx) FeeStructure(_ context.Context, offering admission.CourseOffering) (admission.FeeStructure, error) {
	t.db.mu.RLock()
	defer t.db.mu.RUnlock()

	if fs, ok := t.db.fees[offering]; ok {
		return fs, nil
	}
	return admission.FeeStructure{}, admission.ErrNoFeeStructureAssigned
}

// InsertPayment reserves the receipt number right away so that concurrent transactions of
// other students cannot use it either.
func (t *tx) InsertPayment(_ context.Context, p admission.Payment) error {
	if t.done {
		return errTxDone
	}
	t.db.mu.Lock()
	defer t.db.mu.Unlock()

	if _, taken := t.db.receipts[p.ReceiptNumber]; taken {
		return admission.ErrDuplicateReceipt
	}
	t.db.receipts[p.ReceiptNumber] = p.ID
	t.reserved = append(t.reserved, p.ReceiptNumber)
	t.payments = append(t.payments, p)
	return nil
}

func (t *tx) SumPayments(_ context.Context) (int64, error) {
	t.db.mu.RLock()
	defer t.db.mu.RUnlock()

	var sum int64
	for _, p := range t.db.payments[t.student.ID] {
		sum += p.Amount
	}
	for _, p := range t.payments {
		sum += p.Amount
	}
	return sum, nil
}

func (t *tx) SaveFeeSummary(_ context.Context, fee admission.FeeSummary) error {
	if t.done {
		return errTxDone
	}
	t.summary = &fee
	return nil
}

func (t *tx) DocumentTypes(_ context.Context) ([]admission.DocumentType, error) {
	t.db.mu.RLock()
	defer t.db.mu.RUnlock()
	return t.db.documentTypes(), nil
}

func (t *tx) UpsertDocument(_ context.Context, rec admission.DocumentRecord) error {
	if t.done {
		return errTxDone
	}
	t.docs[rec.DocumentTypeID] = rec
	return nil
}

func (t *tx) CompletionCounts(_ context.Context) (int, int, error) {
	t.db.mu.RLock()
	defer t.db.mu.RUnlock()

	required, declared := t.db.completionCounts(t.student.ID, t.docs)
	return required, declared, nil
}

func (t *tx) InsertHistory(_ context.Context, entry admission.HistoryEntry) (admission.HistoryEntry, error) {
	if t.done {
		return admission.HistoryEntry{}, errTxDone
	}
	t.db.mu.Lock()
	t.db.historySeq++
	entry.Seq = t.db.historySeq
	t.db.mu.Unlock()

	t.history = append(t.history, entry)
	return entry, nil
}

func (t *tx) Commit() error {
	if t.done {
		return errTxDone
	}
	t.db.mu.Lock()

	id := t.student.ID
	stu := cloneStudent(t.student)
	t.db.students[id] = &stu

	if len(t.docs) > 0 {
		recs, ok := t.db.documents[id]
		if !ok {
			recs = make(map[int]admission.DocumentRecord, len(t.docs))
			t.db.documents[id] = recs
		}
		for typeID, rec := range t.docs {
			recs[typeID] = rec
		}
	}
	t.db.payments[id] = append(t.db.payments[id], t.payments...)
	if t.summary != nil {
		t.db.summaries[id] = *t.summary
	}
	t.db.history[id] = append(t.db.history[id], t.history...)

	t.db.mu.Unlock()
	t.finish()
	return nil
}

func (t *tx) Rollback() error {
	if t.done {
		return errTxDone
	}
	t.db.mu.Lock()
	for _, r := range t.reserved {
		delete(t.db.receipts, r)
	}
	t.db.mu.Unlock()
	t.finish()
	return nil
}

func (t *tx) finish() {
	t.done = true
	<-t.lock
}
