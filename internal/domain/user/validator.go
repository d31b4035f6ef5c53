package user

import (
	"fmt"
	"strings"
)

const (
	MinUsernameLen = 3
	MaxUsernameLen = 32
	MinPasswordLen = 6
)

// Validator checks registration and login input.
type Validator interface {
	ValidateRegistration(reg Registration) error
	ValidateUsername(username string) error
	ValidatePassword(password string) error
}

type BasicValidator struct{}

func NewValidator() *BasicValidator { return &BasicValidator{} }

func (v *BasicValidator) ValidateRegistration(reg Registration) error {
	if err := v.ValidateUsername(reg.Username); err != nil {
		return err
	}
	if err := v.ValidatePassword(reg.Password); err != nil {
		return err
	}
	if reg.Email != "" && !strings.Contains(reg.Email, "@") {
		return fmt.Errorf("%w: malformed email", ErrInvalidInput)
	}
	return nil
}

func (v *BasicValidator) ValidateUsername(username string) error {
	if len(username) < MinUsernameLen {
		return fmt.Errorf("%w: username must be at least %d characters", ErrInvalidInput, MinUsernameLen)
	}
	if len(username) > MaxUsernameLen {
		return fmt.Errorf("%w: username must be at most %d characters", ErrInvalidInput, MaxUsernameLen)
	}
	if strings.ContainsAny(username, " \t\n") {
		return fmt.Errorf("%w: username must not contain whitespace", ErrInvalidInput)
	}
	return nil
}

func (v *BasicValidator) ValidatePassword(password string) error {
	if len(password) < MinPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, MinPasswordLen)
	}
	return nil
}
