// AngelaMos | 2026
// validation_test.go

package user

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/usermgmt/internal/core"
)

func TestValidator_ValidateCreate(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name    string
		req     CreateUserRequest
		wantMsg string
	}{
		{
			name: "valid minimal",
			req:  CreateUserRequest{Username: "alice", Email: "alice@example.com"},
		},
		{
			name: "valid with optional fields",
			req: CreateUserRequest{
				Username:  "bob",
				Email:     "bob@example.com",
				FirstName: stringPtr("Bob"),
				LastName:  stringPtr("Builder"),
				Phone:     stringPtr("+1 555 0100"),
			},
		},
		{
			name:    "empty username",
			req:     CreateUserRequest{Username: "", Email: "a@example.com"},
			wantMsg: "Username cannot be empty",
		},
		{
			name:    "blank username",
			req:     CreateUserRequest{Username: "   ", Email: "a@example.com"},
			wantMsg: "Username cannot be empty",
		},
		{
			name:    "short username",
			req:     CreateUserRequest{Username: "al", Email: "a@example.com"},
			wantMsg: "Username must be at least 3 characters",
		},
		{
			name:    "username with space",
			req:     CreateUserRequest{Username: "al ice", Email: "a@example.com"},
			wantMsg: "Username cannot contain spaces",
		},
		{
			name:    "username with tab",
			req:     CreateUserRequest{Username: "al\tice", Email: "a@example.com"},
			wantMsg: "Username cannot contain spaces",
		},
		{
			name:    "username too long",
			req:     CreateUserRequest{Username: strings.Repeat("a", 256), Email: "a@example.com"},
			wantMsg: "Username must be at most 255 characters",
		},
		{
			name:    "empty email",
			req:     CreateUserRequest{Username: "alice", Email: " "},
			wantMsg: "Email cannot be empty",
		},
		{
			name:    "malformed email",
			req:     CreateUserRequest{Username: "alice", Email: "not-an-email"},
			wantMsg: "Invalid email format",
		},
		{
			name:    "username checked before email",
			req:     CreateUserRequest{Username: "", Email: ""},
			wantMsg: "Username cannot be empty",
		},
		{
			name: "phone too long",
			req: CreateUserRequest{
				Username: "alice",
				Email:    "alice@example.com",
				Phone:    stringPtr(strings.Repeat("1", 65)),
			},
			wantMsg: "Phone must be at most 64 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateCreate(tt.req)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}

			appErr, ok := core.AsAppError(err)
			require.True(t, ok, "expected AppError, got %v", err)
			assert.Equal(t, core.CodeValidation, appErr.Code)
			assert.Equal(t, tt.wantMsg, appErr.Message)
		})
	}
}

func TestValidator_ValidateUpdate(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name    string
		req     UpdateUserRequest
		wantMsg string
	}{
		{
			name: "empty patch",
			req:  UpdateUserRequest{},
		},
		{
			name: "phone only",
			req:  UpdateUserRequest{Phone: stringPtr("555")},
		},
		{
			name:    "present but blank username",
			req:     UpdateUserRequest{Username: stringPtr("")},
			wantMsg: "Username cannot be empty",
		},
		{
			name:    "present but invalid email",
			req:     UpdateUserRequest{Email: stringPtr("nope")},
			wantMsg: "Invalid email format",
		},
		{
			name:    "first name too long",
			req:     UpdateUserRequest{FirstName: stringPtr(strings.Repeat("x", 256))},
			wantMsg: "First name must be at most 255 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateUpdate(tt.req)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}

			appErr, ok := core.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantMsg, appErr.Message)
		})
	}
}
