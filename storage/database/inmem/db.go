package inmemdb

import (
	"context"
	"sync"

	"github.com/shoyeabaslam/kcet-cams-sub000/core/admission"
)

// DB is an in-memory store used by tests and by the API in demo mode.
// mu guards every table; each student additionally has a lock held by its open Tx.
type DB struct {
	mu sync.RWMutex

	students   map[string]*admission.Student
	appNumbers map[string]string // application number -> student ID
	docTypes   map[int]*admission.DocumentType
	docTypeSeq int
	fees       map[admission.CourseOffering]admission.FeeStructure
	documents  map[string]map[int]admission.DocumentRecord // student ID -> type ID -> record
	payments   map[string][]admission.Payment
	receipts   map[string]string // receipt number -> payment ID (committed or reserved by an open Tx)
	summaries  map[string]admission.FeeSummary
	history    map[string][]admission.HistoryEntry
	historySeq int64

	locksMu sync.Mutex
	locks   map[string]chan struct{}
}

func Open() *DB {
	return &DB{
		students:   make(map[string]*admission.Student),
		appNumbers: make(map[string]string),
		docTypes:   make(map[int]*admission.DocumentType),
		fees:       make(map[admission.CourseOffering]admission.FeeStructure),
		documents:  make(map[string]map[int]admission.DocumentRecord),
		payments:   make(map[string][]admission.Payment),
		receipts:   make(map[string]string),
		summaries:  make(map[string]admission.FeeSummary),
		history:    make(map[string][]admission.HistoryEntry),
		locks:      make(map[string]chan struct{}),
	}
}

// lockStudent blocks until the student's lock is free or ctx is done.
func (db *DB) lockStudent(ctx context.Context, id string) (chan struct{}, error) {
	for {
		db.locksMu.Lock()
		l, ok := db.locks[id]
		if !ok {
			l = make(chan struct{}, 1)
			db.locks[id] = l
		}
		db.locksMu.Unlock()

		select {
		case l <- struct{}{}:
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		db.locksMu.Lock()
		current := db.locks[id] == l
		db.locksMu.Unlock()
		if current {
			return l, nil
		}
		<-l // dropped while we were waiting
	}
}

// dropLock forgets the lock of an unknown student, then releases it.
func (db *DB) dropLock(id string, l chan struct{}) {
	db.locksMu.Lock()
	if db.locks[id] == l {
		delete(db.locks, id)
	}
	db.locksMu.Unlock()
	<-l
}

func cloneStudent(stu admission.Student) admission.Student {
	if stu.Offering != nil {
		o := *stu.Offering
		stu.Offering = &o
	}
	return stu
}
