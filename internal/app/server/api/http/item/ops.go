package item

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) op(id, method, path, summary string) huma.Operation {
	return huma.Operation{
		OperationID: id,
		Method:      method,
		Path:        path,
		Summary:     summary,
		Tags:        []string{"items"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) createOp() huma.Operation {
	return h.op("items-create", http.MethodPost, "/api/items", "Create an item")
}

func (h *Handler) listOp() huma.Operation {
	return h.op("items-list", http.MethodGet, "/api/items", "List the user's items")
}

func (h *Handler) findOp() huma.Operation {
	return h.op("items-find", http.MethodGet, "/api/items/{id}", "Get one item")
}

func (h *Handler) updateOp() huma.Operation {
	return h.op("items-update", http.MethodPut, "/api/items/{id}", "Update an item")
}

func (h *Handler) deleteOp() huma.Operation {
	return h.op("items-delete", http.MethodDelete, "/api/items/{id}", "Soft-delete an item")
}

func (h *Handler) archiveOp() huma.Operation {
	return h.op("items-archive", http.MethodPost, "/api/items/{id}/archive", "Archive an item")
}

func (h *Handler) unarchiveOp() huma.Operation {
	return h.op("items-unarchive", http.MethodPost, "/api/items/{id}/unarchive", "Unarchive an item")
}

func (h *Handler) bulkUpdateOp() huma.Operation {
	return h.op("items-bulk-update", http.MethodPost, "/api/items/bulk-update", "Apply one update to several items")
}

func (h *Handler) queryOp() huma.Operation {
	return h.op("items-query", http.MethodPost, "/api/items/query", "Structured item query")
}

func (h *Handler) searchOp() huma.Operation {
	return h.op("items-search", http.MethodGet, "/api/items/search", "Keyword search")
}

func (h *Handler) calendarOp() huma.Operation {
	return h.op("items-calendar", http.MethodGet, "/api/items/calendar", "Items scheduled inside a date range")
}

func (h *Handler) historyOp() huma.Operation {
	return h.op("items-history", http.MethodGet, "/api/items/history", "Items created inside a date range")
}

func (h *Handler) tagsOp() huma.Operation {
	return h.op("items-tag-stats", http.MethodGet, "/api/items/tags/stats", "Tag usage statistics")
}

func (h *Handler) upcomingOp() huma.Operation {
	return h.op("items-upcoming", http.MethodGet, "/api/items/upcoming", "Open items due in the next days")
}

func (h *Handler) todoOp() huma.Operation {
	return h.op("items-todo", http.MethodGet, "/api/items/todo", "Open tasks")
}

func (h *Handler) inboxOp() huma.Operation {
	return h.op("items-inbox", http.MethodGet, "/api/items/inbox", "Unscheduled open items")
}

func (h *Handler) activityOp() huma.Operation {
	return h.op("items-activity", http.MethodGet, "/api/items/activity", "Recent activity log")
}
