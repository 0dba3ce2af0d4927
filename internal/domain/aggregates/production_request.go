package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/production-portal-backend/internal/domain/production"
)

var ProductionRequestAggregateContract = Contract{
	Name:             "Production.ProductionRequestAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	LockScope:        "production_request",
	Notes:            "Owns request row, detail rows, version and history rows. Scope is resolved against the locked row.",
}

// ProductionRequestAggregate owns the production request write invariants.
//
// Write method failures return *aggregates.Error with codes:
// CodeValidation, CodeInvalidStage, CodeForbidden, CodeNotFound, CodeConflict, CodeRetryable, CodeInternal.
type ProductionRequestAggregate interface {
	Aggregate

	Create(ctx context.Context, in CreateProductionRequestInput) (ProductionRequestResult, error)

	// Update merges the patch. Any changed field outside the actor's scope rejects the whole call.
	Update(ctx context.Context, in UpdateProductionRequestInput) (ProductionRequestResult, error)

	// Move changes the stage only and records exactly one history row.
	Move(ctx context.Context, in MoveStageInput) (ProductionRequestResult, error)

	LinkFiles(ctx context.Context, in LinkFilesInput) (ProductionRequestResult, error)
	RemoveFile(ctx context.Context, in RemoveFileInput) (ProductionRequestResult, error)

	// Delete hard-deletes the request and its details. History rows and blobs are kept.
	Delete(ctx context.Context, in DeleteProductionRequestInput) error
}

type CreateProductionRequestInput struct {
	Actor production.Caller
	Patch *production.RequestPatch
	Now   time.Time
}

type UpdateProductionRequestInput struct {
	Actor     production.Caller
	RequestID uuid.UUID
	Patch     *production.RequestPatch
	Now       time.Time
}

type MoveStageInput struct {
	Actor     production.Caller
	RequestID uuid.UUID
	Target    string
	Now       time.Time
}

type LinkFilesInput struct {
	Actor     production.Caller
	RequestID uuid.UUID
	Files     []production.UploadedFile
	Now       time.Time
}

type RemoveFileInput struct {
	Actor     production.Caller
	RequestID uuid.UUID
	FileID    string
	Now       time.Time
}

type DeleteProductionRequestInput struct {
	Actor     production.Caller
	RequestID uuid.UUID
}

type ProductionRequestResult struct {
	Request *production.ProductionRequest
	Scope   production.Scope
	Changes []production.FieldChange
}
