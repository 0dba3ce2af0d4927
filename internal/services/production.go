package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/production-portal-backend/internal/clients/redis"
	"github.com/yungbote/production-portal-backend/internal/data/aggregates"
	productionrepo "github.com/yungbote/production-portal-backend/internal/data/repos/production"
	userrepo "github.com/yungbote/production-portal-backend/internal/data/repos/user"
	types "github.com/yungbote/production-portal-backend/internal/domain"
	domainagg "github.com/yungbote/production-portal-backend/internal/domain/aggregates"
	"github.com/yungbote/production-portal-backend/internal/domain/production"
	"github.com/yungbote/production-portal-backend/internal/observability"
	"github.com/yungbote/production-portal-backend/internal/platform/ctxutil"
	"github.com/yungbote/production-portal-backend/internal/platform/dbctx"
	"github.com/yungbote/production-portal-backend/internal/platform/logger"
)

// EventPublisher receives a change event after each committed write.
type EventPublisher interface {
	Publish(ctx context.Context, ev redis.ChangeEvent) error
}

type ListRequestsInput struct {
	Stage          string
	AssignedUserID string
	Department     string
	Limit          int
	Offset         int
}

type HistoryEntry struct {
	*types.ProductionRequestHistory
	ChangedByName string `json:"changedByName,omitempty"`
}

type ProductionService interface {
	Create(ctx context.Context, patch *production.RequestPatch) (domainagg.ProductionRequestResult, error)
	Get(ctx context.Context, id uuid.UUID) (*types.ProductionRequest, production.Scope, error)
	List(ctx context.Context, in ListRequestsInput) ([]*types.ProductionRequest, int64, error)
	Update(ctx context.Context, id uuid.UUID, patch *production.RequestPatch) (domainagg.ProductionRequestResult, error)
	Move(ctx context.Context, id uuid.UUID, target string) (domainagg.ProductionRequestResult, error)
	Delete(ctx context.Context, id uuid.UUID) error
	History(ctx context.Context, id uuid.UUID, limit, offset int) ([]HistoryEntry, error)
	LinkFiles(ctx context.Context, id uuid.UUID, files []production.UploadedFile) (domainagg.ProductionRequestResult, error)
	RemoveFile(ctx context.Context, id uuid.UUID, fileID string) (domainagg.ProductionRequestResult, error)
}

type ProductionServiceDeps struct {
	Log       *logger.Logger
	Aggregate aggregates.ProductionRequestAggregate
	Requests  productionrepo.ProductionRequestRepo
	History   productionrepo.HistoryRepo
	Users     userrepo.UserRepo
	Events    EventPublisher
	Metrics   *observability.Metrics
}

type productionService struct {
	log     *logger.Logger
	agg     aggregates.ProductionRequestAggregate
	reqs    productionrepo.ProductionRequestRepo
	history productionrepo.HistoryRepo
	users   userrepo.UserRepo
	events  EventPublisher
	metrics *observability.Metrics
}

func NewProductionService(deps ProductionServiceDeps) ProductionService {
	return &productionService{
		log:     deps.Log.With("service", "ProductionService"),
		agg:     deps.Aggregate,
		reqs:    deps.Requests,
		history: deps.History,
		users:   deps.Users,
		events:  deps.Events,
		metrics: deps.Metrics,
	}
}

// CallerFromContext builds the resolver's view of the authenticated user.
func CallerFromContext(ctx context.Context) (production.Caller, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return production.Caller{}, domainagg.NewError(domainagg.CodeForbidden, "auth", "no authenticated caller", nil)
	}
	return production.Caller{UserID: rd.UserID, Permissions: append([]string(nil), rd.Permissions...)}, nil
}

func (s *productionService) Create(ctx context.Context, patch *production.RequestPatch) (domainagg.ProductionRequestResult, error) {
	actor, err := CallerFromContext(ctx)
	if err != nil {
		return domainagg.ProductionRequestResult{}, err
	}
	res, err := s.agg.Create(ctx, domainagg.CreateProductionRequestInput{Actor: actor, Patch: patch})
	if err != nil {
		return res, err
	}
	s.publish(ctx, "production_request.created", actor, res.Request)
	return res, nil
}

func (s *productionService) Get(ctx context.Context, id uuid.UUID) (*types.ProductionRequest, production.Scope, error) {
	actor, err := CallerFromContext(ctx)
	if err != nil {
		return nil, production.ScopeReadOnly, err
	}
	req, err := s.agg.Load(ctx, id)
	if err != nil {
		return nil, production.ScopeReadOnly, err
	}
	return req, production.ResolveScope(actor, req), nil
}

func (s *productionService) List(ctx context.Context, in ListRequestsInput) ([]*types.ProductionRequest, int64, error) {
	const op = "production_request.list"
	f := productionrepo.ListFilter{Department: in.Department, Limit: in.Limit, Offset: in.Offset}
	if in.Stage != "" {
		stage, err := production.ParseStage(in.Stage)
		if err != nil {
			return nil, 0, aggregates.MapError(op, err)
		}
		f.Stage = stage
	}
	if in.AssignedUserID != "" {
		uid, err := uuid.Parse(in.AssignedUserID)
		if err != nil {
			return nil, 0, aggregates.MapError(op, aggregates.ValidationError("assignedUserId must be a uuid"))
		}
		f.AssignedUserID = &uid
	}
	rows, total, err := s.reqs.List(dbctx.Context{Ctx: ctx}, f)
	if err != nil {
		return nil, 0, aggregates.MapError(op, err)
	}
	return rows, total, nil
}

func (s *productionService) Update(ctx context.Context, id uuid.UUID, patch *production.RequestPatch) (domainagg.ProductionRequestResult, error) {
	actor, err := CallerFromContext(ctx)
	if err != nil {
		return domainagg.ProductionRequestResult{}, err
	}
	res, err := s.agg.Update(ctx, domainagg.UpdateProductionRequestInput{Actor: actor, RequestID: id, Patch: patch})
	if err != nil {
		return res, err
	}
	if len(res.Changes) > 0 {
		s.publish(ctx, "production_request.updated", actor, res.Request)
	}
	return res, nil
}

func (s *productionService) Move(ctx context.Context, id uuid.UUID, target string) (domainagg.ProductionRequestResult, error) {
	actor, err := CallerFromContext(ctx)
	if err != nil {
		return domainagg.ProductionRequestResult{}, err
	}
	res, err := s.agg.Move(ctx, domainagg.MoveStageInput{Actor: actor, RequestID: id, Target: target})
	if err != nil {
		return res, err
	}
	s.publish(ctx, "production_request.stage_changed", actor, res.Request)
	return res, nil
}

func (s *productionService) Delete(ctx context.Context, id uuid.UUID) error {
	actor, err := CallerFromContext(ctx)
	if err != nil {
		return err
	}
	if err := s.agg.Delete(ctx, domainagg.DeleteProductionRequestInput{Actor: actor, RequestID: id}); err != nil {
		return err
	}
	s.publish(ctx, "production_request.deleted", actor, &types.ProductionRequest{ID: id})
	return nil
}

// History works for deleted requests too: rows outlive their request.
func (s *productionService) History(ctx context.Context, id uuid.UUID, limit, offset int) ([]HistoryEntry, error) {
	const op = "production_request.history"
	if id == uuid.Nil {
		return nil, aggregates.MapError(op, aggregates.ValidationError("missing request id"))
	}
	dbc := dbctx.Context{Ctx: ctx}
	rows, err := s.history.ListByRequest(dbc, id, limit, offset)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}

	seen := map[uuid.UUID]struct{}{}
	ids := []uuid.UUID{}
	for _, r := range rows {
		if _, ok := seen[r.ChangedBy]; !ok && r.ChangedBy != uuid.Nil {
			seen[r.ChangedBy] = struct{}{}
			ids = append(ids, r.ChangedBy)
		}
	}
	names := map[uuid.UUID]string{}
	if len(ids) > 0 {
		users, err := s.users.GetByIDs(dbc, ids)
		if err != nil {
			// names are decoration only
			s.log.Warn("history: load user names failed", "request_id", id, "error", err)
		}
		for _, u := range users {
			names[u.ID] = u.FullName()
		}
	}

	out := make([]HistoryEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, HistoryEntry{ProductionRequestHistory: r, ChangedByName: names[r.ChangedBy]})
	}
	return out, nil
}

func (s *productionService) LinkFiles(ctx context.Context, id uuid.UUID, files []production.UploadedFile) (domainagg.ProductionRequestResult, error) {
	actor, err := CallerFromContext(ctx)
	if err != nil {
		return domainagg.ProductionRequestResult{}, err
	}
	res, err := s.agg.LinkFiles(ctx, domainagg.LinkFilesInput{Actor: actor, RequestID: id, Files: files})
	if err != nil {
		return res, err
	}
	if len(res.Changes) > 0 {
		s.publish(ctx, "production_request.files_linked", actor, res.Request)
	}
	return res, nil
}

func (s *productionService) RemoveFile(ctx context.Context, id uuid.UUID, fileID string) (domainagg.ProductionRequestResult, error) {
	actor, err := CallerFromContext(ctx)
	if err != nil {
		return domainagg.ProductionRequestResult{}, err
	}
	res, err := s.agg.RemoveFile(ctx, domainagg.RemoveFileInput{Actor: actor, RequestID: id, FileID: fileID})
	if err != nil {
		return res, err
	}
	s.publish(ctx, "production_request.file_removed", actor, res.Request)
	return res, nil
}

// publish is best effort: the write is already committed.
func (s *productionService) publish(ctx context.Context, kind string, actor production.Caller, req *types.ProductionRequest) {
	if s.events == nil || req == nil {
		return
	}
	ev := redis.ChangeEvent{
		Type:    kind,
		ID:      req.ID.String(),
		Stage:   string(req.Stage),
		Version: req.Version,
		ActorID: actor.UserID.String(),
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := s.events.Publish(pubCtx, ev); err != nil {
		s.metrics.IncChangeEvent("error")
		s.log.Warn("publish change event failed", "type", kind, "request_id", req.ID, "error", err)
		return
	}
	s.metrics.IncChangeEvent("ok")
}
