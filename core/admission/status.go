package admission

// DeriveStatus combines the document completion and the fee ledger into the application status.
// The result depends on the recomputed facts only, never on the previous status or on the order of writes.
//
// Document gating comes first: NONE_DECLARED keeps the application at APPLICATION_ENTERED and
// INCOMPLETE forces DOCUMENTS_INCOMPLETE whatever has been paid. Once documents are COMPLETE the
// fee classification decides. With nothing paid a student owing an assigned fee is FEE_PENDING,
// one without a fee structure is DOCUMENTS_DECLARED.
func DeriveStatus(completion CompletionState, fee FeeSummary) Status {
	switch completion {
	case CompletionIncomplete:
		return StatusDocumentsIncomplete
	case CompletionComplete:
	default:
		return StatusApplicationEntered
	}

	switch fee.Status {
	case FeeReceived:
		return StatusFeeReceived
	case FeePartial:
		return StatusFeePartial
	}
	if fee.Assigned {
		return StatusFeePending
	}
	return StatusDocumentsDeclared
}

// ClassifyFee evaluates the fee status of a recomputed ledger. Overpayment counts as received.
func ClassifyFee(totalFee, totalPaid int64) FeeStatus {
	switch {
	case totalPaid <= 0:
		return FeePending
	case totalPaid < totalFee:
		return FeePartial
	default:
		return FeeReceived
	}
}

// ClassifyCompletion evaluates how many of the required documents are declared.
// A catalog without required documents never signals completion.
func ClassifyCompletion(required, declaredRequired int) CompletionState {
	switch {
	case declaredRequired <= 0:
		return CompletionNoneDeclared
	case declaredRequired < required:
		return CompletionIncomplete
	default:
		return CompletionComplete
	}
}
