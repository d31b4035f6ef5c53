package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateRegistration(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name    string
		reg     Registration
		wantErr bool
	}{
		{"valid", Registration{Username: "alice", Password: "secret1"}, false},
		{"valid with email", Registration{Username: "alice", Password: "secret1", Email: "a@example.com"}, false},
		{"username too short", Registration{Username: "al", Password: "secret1"}, true},
		{"username with space", Registration{Username: "al ice", Password: "secret1"}, true},
		{"password too short", Registration{Username: "alice", Password: "abc"}, true},
		{"malformed email", Registration{Username: "alice", Password: "secret1", Email: "nope"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateRegistration(tt.reg)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
