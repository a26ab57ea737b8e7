package admission

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/shoyeabaslam/kcet-cams-sub000/core"
)

// recomputeCompletion re-counts the student's declared required documents.
func recomputeCompletion(ctx context.Context, tx Tx) (Completion, error) {
	required, declared, err := tx.CompletionCounts(ctx)
	if err != nil {
		return Completion{}, errors.Wrap(err, "counting documents")
	}
	return Completion{
		Required:         required,
		DeclaredRequired: declared,
		State:            ClassifyCompletion(required, declared),
	}, nil
}

// checkDeclarations rejects declarations naming an unknown document type or the same type twice.
func checkDeclarations(decls []DocumentDeclaration, catalog []DocumentType) error {
	known := make(map[int]bool, len(catalog))
	for _, dt := range catalog {
		known[dt.ID] = true
	}

	var flds []core.FieldError
	seen := make(map[int]bool, len(decls))
	for i, d := range decls {
		field := fmt.Sprintf("documents[%d].document_type_id", i)
		switch {
		case !known[d.DocumentTypeID]:
			flds = append(flds, core.FieldError{Field: field, Error: ErrDocumentTypeNotFound.Error()})
		case seen[d.DocumentTypeID]:
			flds = append(flds, core.FieldError{Field: field, Error: ErrDuplicateDocumentRequest.Error()})
		}
		seen[d.DocumentTypeID] = true
	}
	if len(flds) > 0 {
		return core.NewValidationError(nil, flds...)
	}
	return nil
}

func upsertDeclarations(ctx context.Context, tx Tx, studentID string, decls []DocumentDeclaration, by string, at time.Time) error {
	for _, d := range decls {
		rec := DocumentRecord{
			StudentID:      studentID,
			DocumentTypeID: d.DocumentTypeID,
			Declared:       d.Declared,
			Notes:          core.CleanString(d.Notes),
			UpdatedBy:      by,
			UpdatedAt:      at,
		}
		if err := tx.UpsertDocument(ctx, rec); err != nil {
			return errors.Wrapf(err, "upserting document %d", d.DocumentTypeID)
		}
	}
	return nil
}
