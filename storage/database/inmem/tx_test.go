package inmemdb_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoyeabaslam/kcet-cams-sub000/core/admission"
	inmemdb "github.com/shoyeabaslam/kcet-cams-sub000/storage/database/inmem"
	testutil "github.com/shoyeabaslam/kcet-cams-sub000/tests"
)

func TestTx_RollbackReleasesReceipts(t *testing.T) {
	svc, repo := testutil.NewService(t, nil)
	cat := testutil.SeedCatalog(t, svc)
	a := testutil.RegisterStudent(t, svc, "APP-1", "", &cat.CSE)
	b := testutil.RegisterStudent(t, svc, "APP-2", "", &cat.CSE)
	ctx := context.Background()

	tx, err := repo.Begin(ctx, a.ID)
	require.NoError(t, err)
	now := time.Now().UTC()
	require.NoError(t, tx.InsertPayment(ctx, admission.Payment{ID: "p1", StudentID: a.ID, Amount: 100, ReceiptNumber: "R-1", CreatedAt: now}))

	// reserved while the transaction is open
	_, err = svc.RecordPayment(ctx, admission.NewPayment{StudentID: b.ID, Amount: 100, Mode: admission.ModeCash, ReceiptNumber: "R-1", RecordedBy: testutil.Officer})
	assert.Equal(t, admission.ErrDuplicateReceipt, errors.Cause(err))

	paid, err := tx.SumPayments(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(100), paid)

	require.NoError(t, tx.Rollback())
	assert.Error(t, tx.Rollback())
	assert.Error(t, tx.Commit())

	testutil.Pay(t, svc, b.ID, "R-1", 100)
	payments, err := repo.ListPayments(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, payments)
}

func TestTx_StagedUntilCommit(t *testing.T) {
	svc, repo := testutil.NewService(t, nil)
	cat := testutil.SeedCatalog(t, svc)
	stu := testutil.RegisterStudent(t, svc, "APP-1", "", nil)
	ctx := context.Background()

	tx, err := repo.Begin(ctx, stu.ID)
	require.NoError(t, err)
	now := time.Now().UTC()
	require.NoError(t, tx.UpsertDocument(ctx, admission.DocumentRecord{StudentID: stu.ID, DocumentTypeID: cat.MarksCard.ID, Declared: true, UpdatedAt: now}))
	require.NoError(t, tx.SetOffering(ctx, cat.ECE, now))
	require.NoError(t, tx.SetStatus(ctx, admission.StatusDocumentsIncomplete, now))

	required, declared, err := tx.CompletionCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, required)
	assert.Equal(t, 1, declared)
	assert.Equal(t, admission.StatusDocumentsIncomplete, tx.Student().Status)

	// readers still see the committed state
	_, declared, err = repo.CompletionCounts(ctx, stu.ID)
	require.NoError(t, err)
	assert.Zero(t, declared)
	got, err := repo.GetStudent(ctx, stu.ID)
	require.NoError(t, err)
	assert.Equal(t, admission.StatusApplicationEntered, got.Status)
	assert.Nil(t, got.Offering)

	require.NoError(t, tx.Commit())

	got, err = repo.GetStudent(ctx, stu.ID)
	require.NoError(t, err)
	assert.Equal(t, admission.StatusDocumentsIncomplete, got.Status)
	assert.Equal(t, &cat.ECE, got.Offering)
	docs, err := repo.ListDocuments(ctx, stu.ID)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.True(t, docs[0].Declared)
}

func TestRepository_BeginLocksStudent(t *testing.T) {
	svc, repo := testutil.NewService(t, nil)
	cat := testutil.SeedCatalog(t, svc)
	a := testutil.RegisterStudent(t, svc, "APP-1", "", &cat.CSE)
	b := testutil.RegisterStudent(t, svc, "APP-2", "", &cat.CSE)

	tx, err := repo.Begin(context.Background(), a.ID)
	require.NoError(t, err)

	// the same student waits
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = repo.Begin(ctx, a.ID)
	assert.Equal(t, context.DeadlineExceeded, err)

	// other students do not
	txB, err := repo.Begin(context.Background(), b.ID)
	require.NoError(t, err)
	require.NoError(t, txB.Rollback())

	done := make(chan error, 1)
	go func() {
		tx2, err := repo.Begin(context.Background(), a.ID)
		if err == nil {
			err = tx2.Rollback()
		}
		done <- err
	}()
	require.NoError(t, tx.Commit())

	select {
	case err = <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Begin() still blocked after Commit()")
	}
}

func TestRepository_Begin_NotFound(t *testing.T) {
	repo := inmemdb.NewAdmissionRepository(inmemdb.Open())
	_, err := repo.Begin(context.Background(), "00000000-0000-0000-0000-000000000000")
	assert.Equal(t, admission.ErrStudentNotFound, err)
}

func TestRepository_CreateStudent_Duplicate(t *testing.T) {
	repo := inmemdb.NewAdmissionRepository(inmemdb.Open())
	ctx := context.Background()
	now := time.Now().UTC()

	stu := admission.Student{ID: "s1", ApplicationNumber: "APP-1", Name: "Asha", Status: admission.StatusApplicationEntered, CreatedAt: now, UpdatedAt: now}
	entry := admission.HistoryEntry{ID: "h1", StudentID: "s1", NewStatus: admission.StatusApplicationEntered, ChangedAt: now}
	_, saved, err := repo.CreateStudent(ctx, stu, admission.FeeSummary{}, entry)
	require.NoError(t, err)
	assert.Equal(t, int64(1), saved.Seq)

	stu.ID = "s2"
	_, _, err = repo.CreateStudent(ctx, stu, admission.FeeSummary{}, entry)
	assert.Equal(t, admission.ErrDuplicateApplication, err)

	ids, err := repo.ListStudentIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, ids)
}
