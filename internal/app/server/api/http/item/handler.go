package item

import (
	"context"
	"errors"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"cogniflow/internal/app/server/api/http/middleware/auth"
	"cogniflow/internal/domain/item"
)

type Handler struct {
	service    item.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service item.Servicer, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		log:        log,
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.createOp(), h.create)
	huma.Register(api, h.listOp(), h.list)

	// Static paths before {id} so chi matches them first.
	huma.Register(api, h.bulkUpdateOp(), h.bulkUpdate)
	huma.Register(api, h.queryOp(), h.query)
	huma.Register(api, h.searchOp(), h.search)
	huma.Register(api, h.calendarOp(), h.calendar)
	huma.Register(api, h.historyOp(), h.history)
	huma.Register(api, h.tagsOp(), h.tags)
	huma.Register(api, h.upcomingOp(), h.upcoming)
	huma.Register(api, h.todoOp(), h.todo)
	huma.Register(api, h.inboxOp(), h.inbox)
	huma.Register(api, h.activityOp(), h.activity)

	huma.Register(api, h.findOp(), h.find)
	huma.Register(api, h.updateOp(), h.update)
	huma.Register(api, h.deleteOp(), h.delete)
	huma.Register(api, h.archiveOp(), h.archive)
	huma.Register(api, h.unarchiveOp(), h.unarchive)
}

func (h *Handler) create(ctx context.Context, input *createInput) (*itemOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}
	it, err := h.service.Create(ctx, userID, input.Body)
	if err != nil {
		if errors.Is(err, item.ErrInvalidInput) {
			return nil, huma.Error422UnprocessableEntity(err.Error())
		}
		return nil, err
	}
	return &itemOutput{Body: *it}, nil
}

func (h *Handler) list(ctx context.Context, input *listInput) (*listOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}
	f := item.Filter{
		Type:   item.Kind(input.Type),
		Status: input.Status,
		Tag:    input.Tag,
	}
	switch input.Archived {
	case "true":
		v := true
		f.Archived = &v
	case "false":
		v := false
		f.Archived = &v
	}
	items, err := h.service.List(ctx, userID, f)
	if err != nil {
		return nil, err
	}
	return &listOutput{Body: listResponse{Items: items}}, nil
}

func (h *Handler) find(ctx context.Context, input *idInput) (*itemOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}
	it, err := h.service.Get(ctx, userID, input.ID)
	if err != nil {
		if errors.Is(err, item.ErrNotFound) {
			return nil, huma.Error404NotFound("item not found")
		}
		return nil, err
	}
	return &itemOutput{Body: *it}, nil
}

func (h *Handler) update(ctx context.Context, input *updateInput) (*itemOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}
	it, err := h.service.Update(ctx, userID, input.ID, input.Body)
	if err != nil {
		if errors.Is(err, item.ErrNotFound) {
			return nil, huma.Error404NotFound("item not found")
		}
		return nil, err
	}
	return &itemOutput{Body: *it}, nil
}

func (h *Handler) delete(ctx context.Context, input *idInput) (*statusOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}
	if err := h.service.Delete(ctx, userID, input.ID); err != nil {
		if errors.Is(err, item.ErrNotFound) {
			return nil, huma.Error404NotFound("item not found")
		}
		return nil, err
	}
	return &statusOutput{Body: statusResponse{Status: "Ok"}}, nil
}

func (h *Handler) archive(ctx context.Context, input *idInput) (*statusOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}
	if err := h.service.Archive(ctx, userID, input.ID); err != nil {
		if errors.Is(err, item.ErrNotFound) {
			return nil, huma.Error404NotFound("item not found")
		}
		return nil, err
	}
	return &statusOutput{Body: statusResponse{Status: "Ok"}}, nil
}

func (h *Handler) unarchive(ctx context.Context, input *idInput) (*statusOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}
	if err := h.service.Unarchive(ctx, userID, input.ID); err != nil {
		if errors.Is(err, item.ErrNotFound) {
			return nil, huma.Error404NotFound("item not found")
		}
		return nil, err
	}
	return &statusOutput{Body: statusResponse{Status: "Ok"}}, nil
}

func (h *Handler) bulkUpdate(ctx context.Context, input *bulkUpdateInput) (*bulkUpdateOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}
	updated, err := h.service.BulkUpdate(ctx, userID, input.Body.IDs, input.Body.Update)
	if err != nil {
		return nil, err
	}
	return &bulkUpdateOutput{Body: bulkUpdateResponse{Updated: updated}}, nil
}

func (h *Handler) query(ctx context.Context, input *queryInput) (*listOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}
	items, err := h.service.Query(ctx, userID, input.Body)
	if err != nil {
		return nil, err
	}
	return &listOutput{Body: listResponse{Items: items}}, nil
}

func (h *Handler) search(ctx context.Context, input *searchInput) (*listOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}
	items, err := h.service.Search(ctx, userID, input.Terms)
	if err != nil {
		return nil, err
	}
	return &listOutput{Body: listResponse{Items: items}}, nil
}

func parseRange(input *rangeInput) (time.Time, time.Time, error) {
	start, err := time.Parse(time.RFC3339, input.Start)
	if err != nil {
		return time.Time{}, time.Time{}, huma.Error422UnprocessableEntity("start must be RFC 3339")
	}
	end, err := time.Parse(time.RFC3339, input.End)
	if err != nil {
		return time.Time{}, time.Time{}, huma.Error422UnprocessableEntity("end must be RFC 3339")
	}
	return start, end, nil
}

func (h *Handler) calendar(ctx context.Context, input *rangeInput) (*listOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}
	start, end, err := parseRange(input)
	if err != nil {
		return nil, err
	}
	items, err := h.service.Calendar(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	return &listOutput{Body: listResponse{Items: items}}, nil
}

func (h *Handler) history(ctx context.Context, input *rangeInput) (*listOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}
	start, end, err := parseRange(input)
	if err != nil {
		return nil, err
	}
	items, err := h.service.History(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	return &listOutput{Body: listResponse{Items: items}}, nil
}

func (h *Handler) tags(ctx context.Context, _ *struct{}) (*tagsOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}
	stats, err := h.service.Tags(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &tagsOutput{Body: tagsResponse{Tags: stats}}, nil
}

func (h *Handler) upcoming(ctx context.Context, _ *struct{}) (*listOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}
	items, err := h.service.Upcoming(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &listOutput{Body: listResponse{Items: items}}, nil
}

func (h *Handler) todo(ctx context.Context, _ *struct{}) (*listOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}
	items, err := h.service.Todo(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &listOutput{Body: listResponse{Items: items}}, nil
}

func (h *Handler) inbox(ctx context.Context, _ *struct{}) (*listOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}
	items, err := h.service.Inbox(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &listOutput{Body: listResponse{Items: items}}, nil
}

func (h *Handler) activity(ctx context.Context, input *activityInput) (*activityOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}
	entries, err := h.service.Activity(ctx, userID, input.Limit)
	if err != nil {
		return nil, err
	}
	return &activityOutput{Body: activityResponse{Entries: entries}}, nil
}
