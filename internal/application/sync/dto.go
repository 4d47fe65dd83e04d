package sync

import (
	"encoding/json"

	syncdomain "github.com/storeops/backend/internal/domain/sync"
)

// OperationStatus is the per-operation outcome reported to the client
type OperationStatus string

const (
	OperationStatusApplied OperationStatus = "APPLIED"
	OperationStatusFailed  OperationStatus = "FAILED"
	OperationStatusSkipped OperationStatus = "SKIPPED"
)

// OperationResult is the outcome of a single operation in a batch.
// Deduped marks results replayed from the operation log rather than
// applied in this request.
type OperationResult struct {
	ClientOpID   string                   `json:"client_op_id"`
	Type         syncdomain.OperationType `json:"type"`
	Status       OperationStatus          `json:"status"`
	Deduped      bool                     `json:"deduped"`
	Result       json.RawMessage          `json:"result,omitempty"`
	ErrorCode    string                   `json:"error_code,omitempty"`
	ErrorMessage string                   `json:"error_message,omitempty"`
}

// BatchResult summarizes an applied batch. When stop-on-failure
// truncates the batch, StoppedAt carries the index of the failed
// operation and the remainder is reported as SKIPPED.
type BatchResult struct {
	Results   []OperationResult `json:"results"`
	Applied   int               `json:"applied"`
	Deduped   int               `json:"deduped"`
	Failed    int               `json:"failed"`
	Skipped   int               `json:"skipped"`
	StoppedAt *int              `json:"stopped_at,omitempty"`
}

func appliedResult(op syncdomain.ClientOperation, result json.RawMessage, deduped bool) OperationResult {
	return OperationResult{
		ClientOpID: op.ClientOpID,
		Type:       op.Type,
		Status:     OperationStatusApplied,
		Deduped:    deduped,
		Result:     result,
	}
}

func failedResult(op syncdomain.ClientOperation, code, message string, deduped bool) OperationResult {
	return OperationResult{
		ClientOpID:   op.ClientOpID,
		Type:         op.Type,
		Status:       OperationStatusFailed,
		Deduped:      deduped,
		ErrorCode:    code,
		ErrorMessage: message,
	}
}

func skippedResult(op syncdomain.ClientOperation) OperationResult {
	return OperationResult{
		ClientOpID: op.ClientOpID,
		Type:       op.Type,
		Status:     OperationStatusSkipped,
	}
}

func resultFromLog(op syncdomain.ClientOperation, entry *syncdomain.OperationLogEntry) OperationResult {
	if entry.Applied() {
		return appliedResult(op, entry.Result, true)
	}
	return failedResult(op, entry.ErrorCode, entry.ErrorMessage, true)
}

func dedupedCopy(op syncdomain.ClientOperation, first OperationResult) OperationResult {
	first.ClientOpID = op.ClientOpID
	first.Type = op.Type
	first.Deduped = true
	return first
}
