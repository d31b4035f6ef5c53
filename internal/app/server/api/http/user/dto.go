package user

import (
	"cogniflow/internal/domain/user"
)

type registerInput struct {
	Body user.Registration
}

type loginInput struct {
	Body user.Credentials
}

type authOutput struct {
	Body authResponse
}

type authResponse struct {
	Token string       `json:"token"`
	User  user.Profile `json:"user"`
}

type changePasswordInput struct {
	Body changePasswordRequest
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" minLength:"1"`
	NewPassword string `json:"new_password" minLength:"6"`
}

type profileOutput struct {
	Body user.Profile
}

type updateProfileInput struct {
	Body user.ProfileUpdate
}

type settingsOutput struct {
	Body user.Settings
}

type updateSettingsInput struct {
	Body user.Settings
}

type listOutput struct {
	Body listResponse
}

type listResponse struct {
	Users []user.Profile `json:"users"`
}

type statusOutput struct {
	Body statusResponse
}

type statusResponse struct {
	Status string `json:"status"`
}
