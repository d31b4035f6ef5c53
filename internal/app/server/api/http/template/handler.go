package template

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"cogniflow/internal/app/server/api/http/middleware/auth"
	"cogniflow/internal/domain/template"
)

type Handler struct {
	service    template.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service template.Servicer, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		log:        log,
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.listOp(), h.list)
	huma.Register(api, h.createOp(), h.create)
	huma.Register(api, h.updateOp(), h.update)
	huma.Register(api, h.deleteOp(), h.delete)
}

func (h *Handler) list(ctx context.Context, _ *struct{}) (*listOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}
	templates, err := h.service.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &listOutput{Body: listResponse{Templates: templates}}, nil
}

func (h *Handler) create(ctx context.Context, input *createInput) (*templateOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}
	t, err := h.service.Create(ctx, userID, input.Body)
	if err != nil {
		if errors.Is(err, template.ErrDuplicateTrigger) {
			return nil, huma.Error409Conflict("trigger word already in use")
		}
		return nil, err
	}
	return &templateOutput{Body: *t}, nil
}

func (h *Handler) update(ctx context.Context, input *updateInput) (*templateOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}
	t, err := h.service.Update(ctx, userID, input.ID, input.Body)
	if err != nil {
		if errors.Is(err, template.ErrNotFound) {
			return nil, huma.Error404NotFound("template not found")
		}
		return nil, err
	}
	return &templateOutput{Body: *t}, nil
}

func (h *Handler) delete(ctx context.Context, input *idInput) (*statusOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}
	if err := h.service.Delete(ctx, userID, input.ID); err != nil {
		if errors.Is(err, template.ErrNotFound) {
			return nil, huma.Error404NotFound("template not found")
		}
		return nil, err
	}
	return &statusOutput{Body: statusResponse{Status: "Ok"}}, nil
}
