package user

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	serverauth "cogniflow/internal/app/server/auth"
	"cogniflow/internal/app/server/api/http/middleware/auth"
	"cogniflow/internal/domain/template"
	"cogniflow/internal/domain/user"
)

type Handler struct {
	users     user.Servicer
	templates template.Servicer
	tokens    *serverauth.Tokens
	log       *slog.Logger

	public    huma.Middlewares
	protected huma.Middlewares
}

func NewHandler(users user.Servicer, templates template.Servicer, tokens *serverauth.Tokens, log *slog.Logger, public, protected huma.Middlewares) *Handler {
	return &Handler{
		users:     users,
		templates: templates,
		tokens:    tokens,
		log:       log,
		public:    public,
		protected: protected,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.registerOp(), h.register)
	huma.Register(api, h.loginOp(), h.login)
	huma.Register(api, h.changePasswordOp(), h.changePassword)
	huma.Register(api, h.profileOp(), h.profile)
	huma.Register(api, h.updateProfileOp(), h.updateProfile)
	huma.Register(api, h.deleteAccountOp(), h.deleteAccount)
	huma.Register(api, h.settingsOp(), h.settings)
	huma.Register(api, h.updateSettingsOp(), h.updateSettings)
	huma.Register(api, h.resetSettingsOp(), h.resetSettings)
	huma.Register(api, h.listOp(), h.list)
}

func (h *Handler) register(ctx context.Context, input *registerInput) (*authOutput, error) {
	profile, err := h.users.Register(ctx, input.Body)
	if err != nil {
		if errors.Is(err, user.ErrAlreadyExists) {
			return nil, huma.Error409Conflict("username already taken")
		}
		if errors.Is(err, user.ErrInvalidInput) {
			return nil, huma.Error422UnprocessableEntity(err.Error())
		}
		return nil, err
	}

	if err := h.templates.ProvisionDefaults(ctx, profile.ID); err != nil {
		h.log.Error("seeding default templates failed", "user_id", profile.ID, "error", err)
	}

	return h.issueToken(profile)
}

func (h *Handler) login(ctx context.Context, input *loginInput) (*authOutput, error) {
	profile, err := h.users.Authenticate(ctx, input.Body)
	if err != nil {
		if errors.Is(err, user.ErrInvalidAuth) {
			return nil, huma.Error401Unauthorized("invalid username or password")
		}
		return nil, err
	}
	return h.issueToken(profile)
}

func (h *Handler) issueToken(profile *user.Profile) (*authOutput, error) {
	token, err := h.tokens.Generate(profile.ID)
	if err != nil {
		return nil, err
	}
	return &authOutput{
		Body: authResponse{
			Token: token,
			User:  *profile,
		},
	}, nil
}

func (h *Handler) changePassword(ctx context.Context, input *changePasswordInput) (*statusOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}
	err := h.users.ChangePassword(ctx, userID, input.Body.OldPassword, input.Body.NewPassword)
	if err != nil {
		if errors.Is(err, user.ErrInvalidAuth) {
			return nil, huma.Error401Unauthorized("current password is wrong")
		}
		if errors.Is(err, user.ErrInvalidInput) {
			return nil, huma.Error422UnprocessableEntity(err.Error())
		}
		return nil, err
	}
	return &statusOutput{Body: statusResponse{Status: "Ok"}}, nil
}

func (h *Handler) profile(ctx context.Context, _ *struct{}) (*profileOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}
	profile, err := h.users.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &profileOutput{Body: *profile}, nil
}

func (h *Handler) updateProfile(ctx context.Context, input *updateProfileInput) (*profileOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}
	profile, err := h.users.UpdateProfile(ctx, userID, input.Body)
	if err != nil {
		if errors.Is(err, user.ErrInvalidInput) {
			return nil, huma.Error422UnprocessableEntity(err.Error())
		}
		return nil, err
	}
	return &profileOutput{Body: *profile}, nil
}

func (h *Handler) deleteAccount(ctx context.Context, _ *struct{}) (*statusOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}
	if err := h.users.Delete(ctx, userID); err != nil {
		return nil, err
	}
	return &statusOutput{Body: statusResponse{Status: "Ok"}}, nil
}

func (h *Handler) settings(ctx context.Context, _ *struct{}) (*settingsOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}
	values, err := h.users.Settings(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &settingsOutput{Body: values}, nil
}

func (h *Handler) updateSettings(ctx context.Context, input *updateSettingsInput) (*settingsOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}
	values, err := h.users.UpdateSettings(ctx, userID, input.Body)
	if err != nil {
		return nil, err
	}
	return &settingsOutput{Body: values}, nil
}

func (h *Handler) resetSettings(ctx context.Context, _ *struct{}) (*settingsOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}
	values, err := h.users.ResetSettings(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &settingsOutput{Body: values}, nil
}

func (h *Handler) list(ctx context.Context, _ *struct{}) (*listOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}
	profile, err := h.users.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !profile.IsAdmin() {
		return nil, huma.Error403Forbidden("admin role required")
	}
	users, err := h.users.List(ctx)
	if err != nil {
		return nil, err
	}
	return &listOutput{Body: listResponse{Users: users}}, nil
}
