package handler

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"

	appsync "github.com/storeops/backend/internal/application/sync"
	syncdomain "github.com/storeops/backend/internal/domain/sync"
	"github.com/storeops/backend/internal/infrastructure/telemetry"
	"github.com/storeops/backend/internal/interfaces/http/middleware"
)

// SyncHandler handles offline operation batch submissions
type SyncHandler struct {
	BaseHandler
	applyService *appsync.ApplyService
	metrics      *telemetry.SyncMetrics
}

// NewSyncHandler creates a new sync handler. metrics may be nil when
// telemetry is disabled.
func NewSyncHandler(applyService *appsync.ApplyService, metrics *telemetry.SyncMetrics) *SyncHandler {
	return &SyncHandler{
		applyService: applyService,
		metrics:      metrics,
	}
}

// OperationRequest is one queued operation in a batch submission.
// OccurredAt is the client-asserted time of the original action; when
// omitted the server records the submission time instead.
type OperationRequest struct {
	ClientOpID string          `json:"client_op_id" binding:"required,max=128"`
	Type       string          `json:"type" binding:"required"`
	Payload    json.RawMessage `json:"payload" binding:"required"`
	OccurredAt time.Time       `json:"occurred_at"`
	BranchID   *string         `json:"branch_id" binding:"omitempty,uuid"`
}

// ApplyOperationsRequest is the batch submission body
type ApplyOperationsRequest struct {
	Operations    []OperationRequest `json:"operations" binding:"required,min=1,dive"`
	StopOnFailure bool               `json:"stop_on_failure"`
}

// ApplyOperations handles POST /api/v1/sync/operations. Operations are
// applied in submission order; results are reported per operation and
// replays are answered from the operation log.
func (h *SyncHandler) ApplyOperations(c *gin.Context) {
	sctx, ok := middleware.GetSessionContext(c)
	if !ok {
		h.Unauthorized(c, "Missing session context")
		return
	}

	var req ApplyOperationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	now := time.Now()
	ops := make([]syncdomain.ClientOperation, 0, len(req.Operations))
	for _, opReq := range req.Operations {
		occurredAt := opReq.OccurredAt
		if occurredAt.IsZero() {
			occurredAt = now
		}
		op := syncdomain.ClientOperation{
			ClientOpID: opReq.ClientOpID,
			Type:       syncdomain.OperationType(opReq.Type),
			Payload:    opReq.Payload,
			OccurredAt: occurredAt,
		}
		if opReq.BranchID != nil {
			branchID, err := uuid.Parse(*opReq.BranchID)
			if err != nil {
				h.BadRequest(c, "Invalid branch_id for operation "+opReq.ClientOpID)
				return
			}
			op.BranchID = &branchID
		}
		ops = append(ops, op)
	}

	start := time.Now()
	result, err := h.applyService.ApplyOperations(c.Request.Context(), sctx, ops, req.StopOnFailure)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.recordBatch(c, sctx, result, time.Since(start))

	h.Success(c, result)
}

func (h *SyncHandler) recordBatch(c *gin.Context, sctx syncdomain.SessionContext, result *appsync.BatchResult, elapsed time.Duration) {
	if h.metrics == nil {
		return
	}
	ctx := c.Request.Context()
	attrs := metric.WithAttributes(telemetry.AttrTenantID.String(sctx.TenantID.String()))
	h.metrics.OperationsApplied.Add(ctx, int64(result.Applied), attrs)
	h.metrics.OperationsDeduped.Add(ctx, int64(result.Deduped), attrs)
	h.metrics.OperationsFailed.Add(ctx, int64(result.Failed), attrs)
	h.metrics.BatchDuration.Record(ctx, elapsed.Seconds(), attrs)
}
