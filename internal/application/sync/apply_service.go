package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/storeops/backend/internal/domain/audit"
	"github.com/storeops/backend/internal/domain/branch"
	"github.com/storeops/backend/internal/domain/shared"
	syncdomain "github.com/storeops/backend/internal/domain/sync"
)

// ApplyService reconciles batches of offline operations against server
// state. Operations apply strictly in submission order; each one either
// commits atomically (mutation, operation log, audit record, outbox
// events in one transaction) or leaves domain state untouched.
type ApplyService struct {
	db       *gorm.DB
	mutators MutatorRegistry
	guard    BranchGuard
	auditor  AuditWriter
	logStore OperationLogStore
	outbox   shared.OutboxEventSaver
	logger   *zap.Logger
}

// NewApplyService creates a new apply service
func NewApplyService(
	db *gorm.DB,
	mutators MutatorRegistry,
	guard BranchGuard,
	auditor AuditWriter,
	logStore OperationLogStore,
	outbox shared.OutboxEventSaver,
	logger *zap.Logger,
) *ApplyService {
	return &ApplyService{
		db:       db,
		mutators: mutators,
		guard:    guard,
		auditor:  auditor,
		logStore: logStore,
		outbox:   outbox,
		logger:   logger,
	}
}

// ApplyOperations applies a batch sequentially. A result is produced for
// every submitted operation even when some fail; the batch itself only
// errors on malformed submissions (oversized batch). With stopOnFailure
// set, the first failed result halts the batch and the remainder is
// reported as SKIPPED without being touched.
func (s *ApplyService) ApplyOperations(ctx context.Context, sctx syncdomain.SessionContext, ops []syncdomain.ClientOperation, stopOnFailure bool) (*BatchResult, error) {
	if len(ops) > syncdomain.MaxBatchSize {
		return nil, shared.NewDomainError(syncdomain.ErrCodeInvalidPayload,
			fmt.Sprintf("batch exceeds maximum of %d operations", syncdomain.MaxBatchSize))
	}

	batch := &BatchResult{Results: make([]OperationResult, 0, len(ops))}
	seen := make(map[string]OperationResult)
	stopped := false

	for i, op := range ops {
		if stopped {
			batch.Results = append(batch.Results, skippedResult(op))
			batch.Skipped++
			continue
		}

		var res OperationResult
		if first, dup := seen[op.ClientOpID]; dup && op.ClientOpID != "" {
			res = dedupedCopy(op, first)
		} else {
			res = s.applyOne(ctx, sctx, op)
			if op.ClientOpID != "" {
				seen[op.ClientOpID] = res
			}
		}

		batch.Results = append(batch.Results, res)
		switch {
		case res.Deduped:
			batch.Deduped++
		case res.Status == OperationStatusApplied:
			batch.Applied++
		case res.Status == OperationStatusFailed:
			batch.Failed++
		}

		if res.Status == OperationStatusFailed && stopOnFailure {
			stopped = true
			idx := i
			batch.StoppedAt = &idx
		}
	}

	return batch, nil
}

// applyOne processes a single operation through dedup, guard, mutate,
// log, audit and outbox staging.
func (s *ApplyService) applyOne(ctx context.Context, sctx syncdomain.SessionContext, op syncdomain.ClientOperation) OperationResult {
	branchID := sctx.EffectiveBranch(op)

	if err := op.Validate(); err != nil {
		var domainErr *shared.DomainError
		if !errors.As(err, &domainErr) {
			domainErr = shared.NewDomainError(syncdomain.ErrCodeInternal, err.Error())
		}
		// An operation without a client id has no idempotency key to
		// log under; reject it without a log entry.
		if op.ClientOpID == "" {
			return failedResult(op, domainErr.Code, domainErr.Message, false)
		}
		s.recordFailure(ctx, sctx, op, branchID, domainErr)
		return failedResult(op, domainErr.Code, domainErr.Message, false)
	}

	// Cross-request dedup: a previously processed operation replays its
	// recorded outcome verbatim, success or failure alike.
	if entry, err := s.logStore.FindByClientOpID(ctx, s.db.WithContext(ctx), sctx.TenantID, op.ClientOpID); err != nil {
		s.logger.Error("operation log lookup failed",
			zap.String("client_op_id", op.ClientOpID),
			zap.Error(err))
		return failedResult(op, syncdomain.ErrCodeInternal, "operation log lookup failed", false)
	} else if entry != nil {
		return resultFromLog(op, entry)
	}

	var result json.RawMessage
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.guard.AssertBranchActive(ctx, tx, sctx.TenantID, branchID); err != nil {
			return err
		}

		mutator, ok := s.mutators.Resolve(op.Type)
		if !ok {
			return shared.NewDomainError(syncdomain.ErrCodeUnknownOperationType, "no mutator for operation type: "+string(op.Type))
		}

		res, events, err := mutator.Apply(ctx, tx, sctx, op, branchID)
		if err != nil {
			return err
		}
		result = res

		if err := s.logStore.Create(ctx, tx, syncdomain.NewAppliedEntry(sctx, op, branchID, res)); err != nil {
			return err
		}
		entry := audit.NewEntry(sctx.TenantID, branchID, sctx.EmployeeID, sctx.ActorRole,
			audit.ActionSyncApply, string(op.Type), op.ClientOpID, audit.OutcomeSuccess).
			WithDetails(s.auditDetails(op))
		if err := s.auditor.Write(ctx, tx, entry); err != nil {
			return err
		}
		if len(events) > 0 {
			if err := s.outbox.SaveEvents(ctx, tx, events...); err != nil {
				return err
			}
		}
		return nil
	})

	if txErr == nil {
		return appliedResult(op, result, false)
	}

	// Two submissions raced past the dedup read; the constraint decided
	// the winner, so serve the winner's recorded outcome.
	if s.logStore.IsDuplicateKeyError(txErr) {
		entry, err := s.logStore.FindByClientOpID(ctx, s.db.WithContext(ctx), sctx.TenantID, op.ClientOpID)
		if err == nil && entry != nil {
			return resultFromLog(op, entry)
		}
		s.logger.Error("duplicate key on operation log but entry not found",
			zap.String("client_op_id", op.ClientOpID),
			zap.Error(err))
		return failedResult(op, syncdomain.ErrCodeInternal, "concurrent apply conflict", false)
	}

	var domainErr *shared.DomainError
	if errors.As(txErr, &domainErr) {
		s.recordFailure(ctx, sctx, op, branchID, domainErr)
		return failedResult(op, domainErr.Code, domainErr.Message, false)
	}

	// Infrastructure errors stay unlogged so a retry re-attempts the
	// mutation instead of dedup-replaying a transient fault.
	s.logger.Error("operation apply failed",
		zap.String("client_op_id", op.ClientOpID),
		zap.String("type", string(op.Type)),
		zap.Error(txErr))
	return failedResult(op, syncdomain.ErrCodeInternal, "internal error applying operation", false)
}

// recordFailure writes the terminal failure record and audit entry in
// their own transaction, after the mutation transaction rolled back.
// Retries of the same operation then dedup to this recorded failure.
func (s *ApplyService) recordFailure(ctx context.Context, sctx syncdomain.SessionContext, op syncdomain.ClientOperation, branchID uuid.UUID, domainErr *shared.DomainError) {
	denial := audit.DenialSyncApplyFailed
	if errors.Is(domainErr, branch.ErrBranchFrozen) || domainErr.Code == syncdomain.ErrCodeBranchFrozen {
		denial = audit.DenialSyncBranchFrozen
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.logStore.Create(ctx, tx, syncdomain.NewFailedEntry(sctx, op, branchID, domainErr.Code, domainErr.Message)); err != nil {
			return err
		}
		entry := audit.NewEntry(sctx.TenantID, branchID, sctx.EmployeeID, sctx.ActorRole,
			audit.ActionSyncApply, string(op.Type), op.ClientOpID, audit.OutcomeRejected).
			WithDenial(denial).
			WithDetails(s.auditDetails(op))
		return s.auditor.Write(ctx, tx, entry)
	})
	if err != nil {
		// A concurrent retry may have recorded the same failure first.
		if s.logStore.IsDuplicateKeyError(err) {
			return
		}
		s.logger.Error("failed to record operation failure",
			zap.String("client_op_id", op.ClientOpID),
			zap.Error(err))
	}
}

func (s *ApplyService) auditDetails(op syncdomain.ClientOperation) json.RawMessage {
	details, err := json.Marshal(map[string]interface{}{
		"client_op_id": op.ClientOpID,
		"type":         op.Type,
		"occurred_at":  op.OccurredAt,
	})
	if err != nil {
		return nil
	}
	return details
}
