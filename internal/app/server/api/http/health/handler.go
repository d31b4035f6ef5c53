package health

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
)

const serviceName = "cogniflow-server"

// Pinger reports whether the relational store answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	log        *slog.Logger
	db         Pinger
	middleware huma.Middlewares
}

func NewHandler(log *slog.Logger, db Pinger, middleware huma.Middlewares) *Handler {
	return &Handler{
		log:        log,
		db:         db,
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.healthCheckOp(), h.healthCheck)
}

func (h *Handler) healthCheck(ctx context.Context, _ *Input) (*Output, error) {
	h.log.Debug("health check request received")

	resp := Response{Status: "OK", Service: serviceName, Database: "up"}
	if err := h.db.Ping(ctx); err != nil {
		h.log.Warn("database unreachable", "error", err)
		resp.Status = "DEGRADED"
		resp.Database = "down"
	}

	return &Output{Body: resp}, nil
}
