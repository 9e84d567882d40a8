package validation

import (
	"strings"
	"testing"

	"dogpark/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePassword(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"Valid", "goodboy123", false},
		{"Exactly Min Length", "abcdefgh", false},
		{"Exactly Max Length", strings.Repeat("b", 72), false},
		{"Too Short", "short1!", true},
		{"Too Long", strings.Repeat("b", 80), true},
		{"Multibyte Over Byte Limit", strings.Repeat("Å", 40), true},
		{"Unicode Counts Runes", "ÅÅÅÅÅÅÅÅ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateUsername(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"Valid", "rex_owner", false},
		{"Min Length", "rex", false},
		{"Max Length", strings.Repeat("a", 20), false},
		{"Too Short", "tu", true},
		{"Too Long", strings.Repeat("a", 21), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

type sampleInput struct {
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"password"`
	Username string   `json:"username" validate:"username"`
	Title    string   `json:"title" validate:"max=100"`
	Tags     []string `json:"tags" validate:"max=5,dive,max=20"`
	Status   string   `json:"status" validate:"omitempty,oneof=draft published"`
}

func validSample() sampleInput {
	return sampleInput{
		Email:    "owner@dogpark.dev",
		Password: "goodboy123",
		Username: "rex_owner",
		Title:    "Walk in the park",
		Tags:     []string{"corgi"},
	}
}

func TestStruct(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		mutate  func(*sampleInput)
		wantMsg string
	}{
		{"valid", func(*sampleInput) {}, ""},
		{"missing email", func(in *sampleInput) { in.Email = "" }, "email is required"},
		{"bad email", func(in *sampleInput) { in.Email = "nope" }, "email must be a valid email address"},
		{"short password", func(in *sampleInput) { in.Password = "short" }, "password must be at least 8 characters long"},
		{"long username", func(in *sampleInput) { in.Username = strings.Repeat("a", 21) }, "username must be between 3 and 20 characters"},
		{"long title", func(in *sampleInput) { in.Title = strings.Repeat("a", 101) }, "title must be at most 100 characters"},
		{"too many tags", func(in *sampleInput) { in.Tags = []string{"a", "b", "c", "d", "e", "f"} }, "tags must contain at most 5 items"},
		{"long tag", func(in *sampleInput) { in.Tags = []string{strings.Repeat("t", 21)} }, "tags[0] must be at most 20 characters"},
		{"bad status", func(in *sampleInput) { in.Status = "archived" }, "status must be one of: draft published"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validSample()
			tt.mutate(&in)
			err := Struct(in)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			appErr, ok := err.(*models.AppError)
			require.True(t, ok)
			assert.Equal(t, models.CodeValidation, appErr.Code)
			assert.Equal(t, tt.wantMsg, appErr.Message)
		})
	}
}
