package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/shoyeabaslam/kcet-cams-sub000/core/admission"
)

type admissionRepository struct {
	db *DB
}

var _ admission.Repository = (*admissionRepository)(nil)

func NewAdmissionRepository(db *DB) admission.Repository {
	return &admissionRepository{db: db}
}

func (repo *admissionRepository) Begin(ctx context.Context, studentID string) (admission.Tx, error) {
	lock, err := repo.db.lockStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	repo.db.mu.RLock()
	stu, ok := repo.db.students[studentID]
	var snapshot admission.Student
	if ok {
		snapshot = cloneStudent(*stu)
	}
	repo.db.mu.RUnlock()

	if !ok {
		repo.db.dropLock(studentID, lock)
		return nil, admission.ErrStudentNotFound
	}
	return &tx{
		db:      repo.db,
		lock:    lock,
		student: snapshot,
		docs:    make(map[int]admission.DocumentRecord),
	}, nil
}

func (repo *admissionRepository) CreateStudent(
	_ context.Context,
	stu admission.Student,
	fee admission.FeeSummary,
	entry admission.HistoryEntry,
) (admission.Student, admission.HistoryEntry, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, exists := repo.db.appNumbers[stu.ApplicationNumber]; exists {
		return admission.Student{}, admission.HistoryEntry{}, admission.ErrDuplicateApplication
	}

	stored := cloneStudent(stu)
	repo.db.students[stu.ID] = &stored
	repo.db.appNumbers[stu.ApplicationNumber] = stu.ID
	repo.db.summaries[stu.ID] = fee

	repo.db.historySeq++
	entry.Seq = repo.db.historySeq
	repo.db.history[stu.ID] = append(repo.db.history[stu.ID], entry)

	return cloneStudent(stored), entry, nil
}

func (repo *admissionRepository) GetStudent(_ context.Context, id string) (admission.Student, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if stu, ok := repo.db.students[id]; ok {
		return cloneStudent(*stu), nil
	}
	return admission.Student{}, admission.ErrStudentNotFound
}

var studentOrderFields = map[string]func(a, b admission.Student) int{
	"application_number": func(a, b admission.Student) int { return strings.Compare(a.ApplicationNumber, b.ApplicationNumber) },
	"name":               func(a, b admission.Student) int { return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)) },
	"status":             func(a, b admission.Student) int { return strings.Compare(string(a.Status), string(b.Status)) },
	"created_at":         func(a, b admission.Student) int { return compareTime(a.CreatedAt.UnixNano(), b.CreatedAt.UnixNano()) },
	"updated_at":         func(a, b admission.Student) int { return compareTime(a.UpdatedAt.UnixNano(), b.UpdatedAt.UnixNano()) },
}

func compareTime(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (repo *admissionRepository) QueryStudents(_ context.Context, filter admission.QueryFilter) ([]admission.Student, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	res := make([]admission.Student, 0)
	for _, stu := range repo.db.students {
		if !matches(*stu, filter) {
			continue
		}
		res = append(res, cloneStudent(*stu))
	}

	sort.SliceStable(res, func(i, j int) bool {
		for _, ord := range filter.Orderings {
			cmp, ok := studentOrderFields[ord.Field]
			if !ok {
				continue
			}
			if c := cmp(res[i], res[j]); c != 0 {
				return (c < 0) == ord.Ascending
			}
		}
		// default: newest first, then by application number
		if c := compareTime(res[i].CreatedAt.UnixNano(), res[j].CreatedAt.UnixNano()); c != 0 {
			return c > 0
		}
		return res[i].ApplicationNumber < res[j].ApplicationNumber
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(res) {
			return res[:0], nil
		}
		res = res[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(res) {
		res = res[:filter.Limit]
	}
	return res, nil
}

func matches(stu admission.Student, filter admission.QueryFilter) bool {
	if filter.Status != "" && stu.Status != filter.Status {
		return false
	}
	if filter.CourseCode != "" && (stu.Offering == nil || stu.Offering.CourseCode != filter.CourseCode) {
		return false
	}
	if filter.AcademicYear != "" && (stu.Offering == nil || stu.Offering.AcademicYear != filter.AcademicYear) {
		return false
	}
	if filter.Search != "" {
		q := strings.ToLower(filter.Search)
		if !(strings.Contains(strings.ToLower(stu.Name), q) ||
			strings.Contains(strings.ToLower(stu.ApplicationNumber), q) ||
			strings.Contains(strings.ToLower(stu.Email), q)) {
			return false
		}
	}
	return true
}

func (repo *admissionRepository) ListStudentIDs(_ context.Context) ([]string, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	ids := make([]string, 0, len(repo.db.students))
	for id := range repo.db.students {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (repo *admissionRepository) CountByStatus(_ context.Context) (map[admission.Status]int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	counts := make(map[admission.Status]int)
	for _, stu := range repo.db.students {
		counts[stu.Status]++
	}
	return counts, nil
}

func (repo *admissionRepository) GetOverview(_ context.Context, studentID string) (admission.Overview, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	stu, ok := repo.db.students[studentID]
	if !ok {
		return admission.Overview{}, admission.ErrStudentNotFound
	}
	required, declared := repo.db.completionCounts(studentID, nil)
	return admission.Overview{
		Student:    cloneStudent(*stu),
		Fee:        repo.db.summaries[studentID],
		Completion: admission.Completion{Required: required, DeclaredRequired: declared},
	}, nil
}

func (repo *admissionRepository) CompletionCounts(_ context.Context, studentID string) (int, int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	required, declared := repo.db.completionCounts(studentID, nil)
	return required, declared, nil
}

// completionCounts counts required types and the student's declared ones, staged records taking precedence.
// Callers hold mu.
func (db *DB) completionCounts(studentID string, staged map[int]admission.DocumentRecord) (required, declared int) {
	committed := db.documents[studentID]
	for id, dt := range db.docTypes {
		if !dt.IsRequired {
			continue
		}
		required++
		rec, ok := staged[id]
		if !ok {
			rec, ok = committed[id]
		}
		if ok && rec.Declared {
			declared++
		}
	}
	return required, declared
}

func (repo *admissionRepository) ListPayments(_ context.Context, studentID string) ([]admission.Payment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	res := make([]admission.Payment, len(repo.db.payments[studentID]))
	copy(res, repo.db.payments[studentID])
	return res, nil
}

func (repo *admissionRepository) ListDocuments(_ context.Context, studentID string) ([]admission.DocumentRecord, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	res := make([]admission.DocumentRecord, 0, len(repo.db.documents[studentID]))
	for _, rec := range repo.db.documents[studentID] {
		res = append(res, rec)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].DocumentTypeID < res[j].DocumentTypeID })
	return res, nil
}

func (repo *admissionRepository) ListHistory(_ context.Context, studentID string) ([]admission.HistoryEntry, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	res := make([]admission.HistoryEntry, len(repo.db.history[studentID]))
	copy(res, repo.db.history[studentID])
	sort.SliceStable(res, func(i, j int) bool {
		if !res[i].ChangedAt.Equal(res[j].ChangedAt) {
			return res[i].ChangedAt.Before(res[j].ChangedAt)
		}
		return res[i].Seq < res[j].Seq
	})
	return res, nil
}

func (repo *admissionRepository) ListDocumentTypes(_ context.Context) ([]admission.DocumentType, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return repo.db.documentTypes(), nil
}

// documentTypes returns the catalog ordered by ID. Callers hold mu.
func (db *DB) documentTypes() []admission.DocumentType {
	res := make([]admission.DocumentType, 0, len(db.docTypes))
	for _, dt := range db.docTypes {
		res = append(res, *dt)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

func (repo *admissionRepository) SaveDocumentType(_ context.Context, dt admission.DocumentType) (admission.DocumentType, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, existing := range repo.db.docTypes {
		if existing.Code == dt.Code {
			dt.ID = existing.ID
			*existing = dt
			return dt, nil
		}
	}
	repo.db.docTypeSeq++
	dt.ID = repo.db.docTypeSeq
	stored := dt
	repo.db.docTypes[dt.ID] = &stored
	return dt, nil
}

func (repo *admissionRepository) GetFeeStructure(_ context.Context, offering admission.CourseOffering) (admission.FeeStructure, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if fs, ok := repo.db.fees[offering]; ok {
		return fs, nil
	}
	return admission.FeeStructure{}, admission.ErrNoFeeStructureAssigned
}

func (repo *admissionRepository) SaveFeeStructure(_ context.Context, fs admission.FeeStructure) (admission.FeeStructure, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.fees[fs.CourseOffering] = fs
	return fs, nil
}
