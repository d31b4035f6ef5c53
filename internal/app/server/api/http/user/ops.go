package user

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) registerOp() huma.Operation {
	return huma.Operation{
		OperationID: "auth-register",
		Method:      http.MethodPost,
		Path:        "/api/auth/register",
		Summary:     "Register a new account",
		Tags:        []string{"auth"},
		Middlewares: h.public,
	}
}

func (h *Handler) loginOp() huma.Operation {
	return huma.Operation{
		OperationID: "auth-login",
		Method:      http.MethodPost,
		Path:        "/api/auth/login",
		Summary:     "Log in with username and password",
		Tags:        []string{"auth"},
		Middlewares: h.public,
	}
}

func (h *Handler) changePasswordOp() huma.Operation {
	return huma.Operation{
		OperationID: "users-change-password",
		Method:      http.MethodPost,
		Path:        "/api/users/change-password",
		Summary:     "Change the current user's password",
		Tags:        []string{"users"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.protected,
	}
}

func (h *Handler) profileOp() huma.Operation {
	return huma.Operation{
		OperationID: "users-me",
		Method:      http.MethodGet,
		Path:        "/api/users/me",
		Summary:     "Current user's profile",
		Tags:        []string{"users"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.protected,
	}
}

func (h *Handler) updateProfileOp() huma.Operation {
	return huma.Operation{
		OperationID: "users-me-update",
		Method:      http.MethodPut,
		Path:        "/api/users/me",
		Summary:     "Update the current user's profile",
		Tags:        []string{"users"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.protected,
	}
}

func (h *Handler) deleteAccountOp() huma.Operation {
	return huma.Operation{
		OperationID: "users-me-delete",
		Method:      http.MethodDelete,
		Path:        "/api/users/me",
		Summary:     "Delete the current account and all its data",
		Tags:        []string{"users"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.protected,
	}
}

func (h *Handler) settingsOp() huma.Operation {
	return huma.Operation{
		OperationID: "users-me-settings",
		Method:      http.MethodGet,
		Path:        "/api/users/me/settings",
		Summary:     "Current user's settings",
		Tags:        []string{"users"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.protected,
	}
}

func (h *Handler) updateSettingsOp() huma.Operation {
	return huma.Operation{
		OperationID: "users-me-settings-update",
		Method:      http.MethodPut,
		Path:        "/api/users/me/settings",
		Summary:     "Merge new values into the current user's settings",
		Tags:        []string{"users"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.protected,
	}
}

func (h *Handler) resetSettingsOp() huma.Operation {
	return huma.Operation{
		OperationID: "users-me-settings-reset",
		Method:      http.MethodDelete,
		Path:        "/api/users/me/settings",
		Summary:     "Reset the current user's settings to defaults",
		Tags:        []string{"users"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.protected,
	}
}

func (h *Handler) listOp() huma.Operation {
	return huma.Operation{
		OperationID: "users-list",
		Method:      http.MethodGet,
		Path:        "/api/users",
		Summary:     "List all users (admin only)",
		Tags:        []string{"users"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.protected,
	}
}
