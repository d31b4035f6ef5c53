package template

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) listOp() huma.Operation {
	return huma.Operation{
		OperationID: "templates-list",
		Method:      http.MethodGet,
		Path:        "/api/templates",
		Summary:     "List the user's templates",
		Tags:        []string{"templates"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) createOp() huma.Operation {
	return huma.Operation{
		OperationID: "templates-create",
		Method:      http.MethodPost,
		Path:        "/api/templates",
		Summary:     "Create a template",
		Tags:        []string{"templates"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) updateOp() huma.Operation {
	return huma.Operation{
		OperationID: "templates-update",
		Method:      http.MethodPut,
		Path:        "/api/templates/{id}",
		Summary:     "Update a template",
		Tags:        []string{"templates"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) deleteOp() huma.Operation {
	return huma.Operation{
		OperationID: "templates-delete",
		Method:      http.MethodDelete,
		Path:        "/api/templates/{id}",
		Summary:     "Delete a template",
		Tags:        []string{"templates"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}
