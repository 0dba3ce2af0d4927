package aggregates

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	catalogrepo "github.com/yungbote/production-portal-backend/internal/data/repos/catalog"
	productionrepo "github.com/yungbote/production-portal-backend/internal/data/repos/production"
	userrepo "github.com/yungbote/production-portal-backend/internal/data/repos/user"
	types "github.com/yungbote/production-portal-backend/internal/domain"
	domainagg "github.com/yungbote/production-portal-backend/internal/domain/aggregates"
	"github.com/yungbote/production-portal-backend/internal/domain/catalog"
	"github.com/yungbote/production-portal-backend/internal/domain/production"
	"github.com/yungbote/production-portal-backend/internal/platform/dbctx"
)

const productionRequestTable = "production_request"

type ProductionRequestAggregateDeps struct {
	Base     BaseDeps
	Requests productionrepo.ProductionRequestRepo
	Details  productionrepo.DetailRepo
	History  productionrepo.HistoryRepo
	Catalogs catalogrepo.CatalogRepo
	Users    userrepo.UserRepo
	Clock    func() time.Time
}

type productionRequestAggregate struct {
	deps ProductionRequestAggregateDeps
}

// ProductionRequestAggregate extends the write contract with the lock-free read the
// service layer needs to render a full request.
type ProductionRequestAggregate interface {
	domainagg.ProductionRequestAggregate
	Load(ctx context.Context, id uuid.UUID) (*types.ProductionRequest, error)
}

func NewProductionRequestAggregate(deps ProductionRequestAggregateDeps) ProductionRequestAggregate {
	deps.Base = deps.Base.withDefaults()
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	return &productionRequestAggregate{deps: deps}
}

func (a *productionRequestAggregate) Contract() domainagg.Contract {
	return domainagg.ProductionRequestAggregateContract
}

// LockKey is the advisory lock name for one request.
func LockKey(id uuid.UUID) string {
	return domainagg.ProductionRequestAggregateContract.LockKey(id)
}

func (a *productionRequestAggregate) now(in time.Time) time.Time {
	if in.IsZero() {
		in = a.deps.Clock()
	}
	return in.UTC()
}

func (a *productionRequestAggregate) Load(ctx context.Context, id uuid.UUID) (*types.ProductionRequest, error) {
	const op = "production_request.load"
	if id == uuid.Nil {
		return nil, MapError(op, ValidationError("missing request id"))
	}
	dbc := dbctx.Context{Ctx: ctx}
	req, err := a.deps.Requests.GetByID(dbc, id)
	if err != nil {
		return nil, MapError(op, err)
	}
	if err := a.deps.Details.Load(dbc, req); err != nil {
		return nil, MapError(op, err)
	}
	return req, nil
}

func (a *productionRequestAggregate) loadLocked(dbc dbctx.Context, id uuid.UUID) (*types.ProductionRequest, error) {
	req, err := a.deps.Requests.LockByID(dbc, id)
	if err != nil {
		return nil, err
	}
	if err := a.deps.Details.Load(dbc, req); err != nil {
		return nil, err
	}
	return req, nil
}

func (a *productionRequestAggregate) Create(ctx context.Context, in domainagg.CreateProductionRequestInput) (domainagg.ProductionRequestResult, error) {
	const op = "production_request.create"
	var out domainagg.ProductionRequestResult
	if in.Actor.UserID == uuid.Nil {
		return out, MapError(op, ValidationError("missing actor"))
	}
	now := a.now(in.Now)
	next, err := production.NewProductionRequest(in.Patch, in.Actor.UserID, now)
	if err != nil {
		return out, MapError(op, err)
	}
	if err := production.CheckInitialStage(in.Actor, next.Stage); err != nil {
		return out, MapError(op, err)
	}
	changes, err := production.Diff(nil, production.Snapshot(next))
	if err != nil {
		return out, MapError(op, err)
	}

	err = executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		if err := a.validateReferences(dbc, nil, next, changes); err != nil {
			return err
		}
		if err := a.deps.Requests.Create(dbc, next); err != nil {
			return err
		}
		if err := a.persistDetails(dbc, &types.ProductionRequest{}, next, changes, now); err != nil {
			return err
		}
		rows := production.HistoryRows(next.ID, in.Actor.UserID, production.ChangeTypeCreate, changes, now)
		if err := a.deps.History.Append(dbc, rows); err != nil {
			return err
		}
		stored, err := a.deps.Requests.GetByID(dbc, next.ID)
		if err != nil {
			return err
		}
		if err := a.deps.Details.Load(dbc, stored); err != nil {
			return err
		}
		out = domainagg.ProductionRequestResult{
			Request: stored,
			Scope:   production.ResolveScope(in.Actor, stored),
			Changes: changes,
		}
		return nil
	})
	if err == nil {
		a.deps.Base.Hooks.ObserveHistoryRows(op, len(changes))
	}
	return out, err
}

func (a *productionRequestAggregate) Update(ctx context.Context, in domainagg.UpdateProductionRequestInput) (domainagg.ProductionRequestResult, error) {
	if in.Patch == nil {
		return domainagg.ProductionRequestResult{}, MapError("production_request.update", ValidationError("missing payload"))
	}
	return a.mutate(ctx, mutation{
		op:              "production_request.update",
		requestID:       in.RequestID,
		actor:           in.Actor,
		now:             in.Now,
		changeType:      production.ChangeTypeUpdate,
		expectedVersion: in.Patch.Version,
		apply: func(cur *types.ProductionRequest, _ production.Scope, now time.Time) (*types.ProductionRequest, error) {
			return production.ApplyPatch(cur, in.Patch, now)
		},
	})
}

func (a *productionRequestAggregate) Move(ctx context.Context, in domainagg.MoveStageInput) (domainagg.ProductionRequestResult, error) {
	target, err := production.ParseStage(in.Target)
	if err != nil {
		return domainagg.ProductionRequestResult{}, MapError("production_request.move", err)
	}
	return a.mutate(ctx, mutation{
		op:         "production_request.move",
		requestID:  in.RequestID,
		actor:      in.Actor,
		now:        in.Now,
		changeType: production.ChangeTypeUpdate,
		apply: func(cur *types.ProductionRequest, scope production.Scope, _ time.Time) (*types.ProductionRequest, error) {
			if err := production.CheckTransition(cur.Stage, target, scope); err != nil {
				return nil, err
			}
			next := cur.Clone()
			next.Stage = target
			return next, nil
		},
	})
}

func (a *productionRequestAggregate) LinkFiles(ctx context.Context, in domainagg.LinkFilesInput) (domainagg.ProductionRequestResult, error) {
	if len(in.Files) == 0 {
		return domainagg.ProductionRequestResult{}, MapError("production_request.link_files", ValidationError("no files to link"))
	}
	patch := &production.RequestPatch{Files: in.Files}
	return a.mutate(ctx, mutation{
		op:         "production_request.link_files",
		requestID:  in.RequestID,
		actor:      in.Actor,
		now:        in.Now,
		changeType: production.ChangeTypeUpdate,
		apply: func(cur *types.ProductionRequest, _ production.Scope, now time.Time) (*types.ProductionRequest, error) {
			return production.ApplyPatch(cur, patch, now)
		},
	})
}

func (a *productionRequestAggregate) RemoveFile(ctx context.Context, in domainagg.RemoveFileInput) (domainagg.ProductionRequestResult, error) {
	fileID := strings.TrimSpace(in.FileID)
	if fileID == "" {
		return domainagg.ProductionRequestResult{}, MapError("production_request.remove_file", ValidationError("missing file id"))
	}
	return a.mutate(ctx, mutation{
		op:         "production_request.remove_file",
		requestID:  in.RequestID,
		actor:      in.Actor,
		now:        in.Now,
		changeType: production.ChangeTypeDelete,
		apply: func(cur *types.ProductionRequest, _ production.Scope, _ time.Time) (*types.ProductionRequest, error) {
			files, _, err := production.Remove(cur.Files, fileID)
			if err != nil {
				return nil, err
			}
			next := cur.Clone()
			next.Files = files
			return next, nil
		},
	})
}

func (a *productionRequestAggregate) Delete(ctx context.Context, in domainagg.DeleteProductionRequestInput) error {
	const op = "production_request.delete"
	if in.RequestID == uuid.Nil {
		return MapError(op, ValidationError("missing request id"))
	}
	return executeLockedWrite(ctx, a.deps.Base, op, LockKey(in.RequestID), func(dbc dbctx.Context) error {
		cur, err := a.deps.Requests.LockByID(dbc, in.RequestID)
		if err != nil {
			return err
		}
		if err := production.CheckDelete(production.ResolveScope(in.Actor, cur)); err != nil {
			return err
		}
		if err := a.deps.Details.DeleteByRequestID(dbc, cur.ID); err != nil {
			return err
		}
		deleted, err := a.deps.Requests.Delete(dbc, cur.ID)
		if err != nil {
			return err
		}
		if !deleted {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

type mutation struct {
	op              string
	requestID       uuid.UUID
	actor           production.Caller
	now             time.Time
	changeType      production.ChangeType
	expectedVersion *int
	apply           func(cur *types.ProductionRequest, scope production.Scope, now time.Time) (*types.ProductionRequest, error)
}

// mutate runs the shared write pipeline: lock, resolve scope, build the proposed state,
// diff, reject out-of-scope changes, check the stage rule, validate references, bump the
// version, persist, and append history. A patch that changes nothing writes nothing.
func (a *productionRequestAggregate) mutate(ctx context.Context, m mutation) (domainagg.ProductionRequestResult, error) {
	var out domainagg.ProductionRequestResult
	if m.requestID == uuid.Nil {
		return out, MapError(m.op, ValidationError("missing request id"))
	}
	now := a.now(m.now)

	err := executeLockedWrite(ctx, a.deps.Base, m.op, LockKey(m.requestID), func(dbc dbctx.Context) error {
		cur, err := a.loadLocked(dbc, m.requestID)
		if err != nil {
			return err
		}
		if m.expectedVersion != nil {
			if err := RequireVersionMatch(cur.Version, *m.expectedVersion); err != nil {
				return err
			}
		}
		scope := production.ResolveScope(m.actor, cur)

		next, err := m.apply(cur, scope, now)
		if err != nil {
			return err
		}
		changes, err := production.Diff(production.Snapshot(cur), production.Snapshot(next))
		if err != nil {
			return err
		}
		if len(changes) == 0 {
			out = domainagg.ProductionRequestResult{Request: cur, Scope: scope}
			return nil
		}
		if err := scope.CheckFields(production.ChangedFields(changes)); err != nil {
			return err
		}
		if production.HasField(changes, production.FieldStage) {
			if err := production.CheckTransition(cur.Stage, next.Stage, scope); err != nil {
				return err
			}
		}
		if err := a.validateReferences(dbc, cur, next, changes); err != nil {
			return err
		}

		if err := a.deps.Base.CASGuard.BumpVersion(dbc, productionRequestTable, cur.ID, cur.Version, now); err != nil {
			return err
		}
		next.Version = cur.Version + 1
		next.UpdatedAt = now
		if err := a.deps.Requests.Save(dbc, next); err != nil {
			return err
		}
		if err := a.persistDetails(dbc, cur, next, changes, now); err != nil {
			return err
		}
		rows := production.HistoryRows(cur.ID, m.actor.UserID, m.changeType, changes, now)
		if err := a.deps.History.Append(dbc, rows); err != nil {
			return err
		}

		stored, err := a.deps.Requests.GetByID(dbc, cur.ID)
		if err != nil {
			return err
		}
		if err := a.deps.Details.Load(dbc, stored); err != nil {
			return err
		}
		out = domainagg.ProductionRequestResult{Request: stored, Scope: scope, Changes: changes}
		return nil
	})
	if err == nil && len(out.Changes) > 0 {
		a.deps.Base.Hooks.ObserveHistoryRows(m.op, len(out.Changes))
	}
	return out, err
}

// persistDetails writes only the detail sections that own a changed field.
func (a *productionRequestAggregate) persistDetails(dbc dbctx.Context, cur, next *types.ProductionRequest, changes []production.FieldChange, now time.Time) error {
	touched := map[string]bool{}
	for _, c := range changes {
		if s := production.SectionOf(c.Field); s != "" {
			touched[s] = true
		}
	}
	if touched[production.SectionCustomerData] && next.CustomerData != nil {
		next.CustomerData.UpdatedAt = now
		if err := a.deps.Details.Save(dbc, next.CustomerData, cur.CustomerData == nil); err != nil {
			return err
		}
	}
	if touched[production.SectionAudienceData] && next.AudienceData != nil {
		next.AudienceData.UpdatedAt = now
		if err := a.deps.Details.Save(dbc, next.AudienceData, cur.AudienceData == nil); err != nil {
			return err
		}
	}
	if touched[production.SectionCampaignDetail] && next.CampaignDetail != nil {
		next.CampaignDetail.UpdatedAt = now
		if err := a.deps.Details.Save(dbc, next.CampaignDetail, cur.CampaignDetail == nil); err != nil {
			return err
		}
		if production.HasField(changes, production.FieldCampaignProducts) {
			if err := a.deps.Details.ReplaceProducts(dbc, next.CampaignDetail.ID, next.CampaignDetail.Products); err != nil {
				return err
			}
		}
	}
	if touched[production.SectionProductionInfo] && next.ProductionInfo != nil {
		next.ProductionInfo.UpdatedAt = now
		if err := a.deps.Details.Save(dbc, next.ProductionInfo, cur.ProductionInfo == nil); err != nil {
			return err
		}
	}
	return nil
}

// validateReferences checks catalog ids and the assignee against the database. Only
// ids newly introduced by changed fields are checked, so a dangling reference left by a
// catalog delete does not block unrelated edits. cur is nil on create.
func (a *productionRequestAggregate) validateReferences(dbc dbctx.Context, cur, next *types.ProductionRequest, changes []production.FieldChange) error {
	changed := map[string]bool{}
	for _, c := range changes {
		if c.NewValue != "" {
			changed[c.Field] = true
		}
	}
	refs := production.AddedCatalogRefs(cur, next, func(field string) bool { return changed[field] })
	kinds := make([]string, 0, len(refs))
	for k := range refs {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	var problems []string
	for _, name := range kinds {
		kind, err := catalog.ParseKind(name)
		if err != nil {
			return err
		}
		missing, err := a.deps.Catalogs.Missing(dbc, kind, refs[name])
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			problems = append(problems, fmt.Sprintf("unknown %s id(s) %v", kind, missing))
		}
	}
	if changed[production.FieldAssignedUserID] && next.AssignedUserID != nil {
		ok, err := a.deps.Users.Exists(dbc, *next.AssignedUserID)
		if err != nil {
			return err
		}
		if !ok {
			problems = append(problems, fmt.Sprintf("%s %s does not reference an existing user", production.FieldAssignedUserID, next.AssignedUserID))
		}
	}
	if len(problems) > 0 {
		return ValidationError(strings.Join(problems, "; "))
	}
	return nil
}
