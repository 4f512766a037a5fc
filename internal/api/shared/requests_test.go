package shared

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loginPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "valid body", body: `{"email":"a@example.com","password":"x"}`},
		{name: "empty body", body: "", wantErr: true},
		{name: "malformed json", body: `{"email":`, wantErr: true},
		{name: "unknown field", body: `{"email":"a@example.com","admin":true}`, wantErr: true},
		{name: "trailing data", body: `{"email":"a@example.com"}{}`, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			var payload loginPayload

			err := DecodeJSON(httptest.NewRecorder(), req, &payload)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "a@example.com", payload.Email)
		})
	}
}

func TestDecodeJSONNoBody(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/", http.NoBody)
	err := DecodeJSON(httptest.NewRecorder(), req, &loginPayload{})
	assert.ErrorIs(t, err, ErrEmptyBody)
}

func TestValidateRequest(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateRequest(&loginPayload{Email: "a@example.com", Password: "x"}))
	assert.Error(t, ValidateRequest(&loginPayload{Email: "not-an-email", Password: "x"}))
	assert.Error(t, ValidateRequest(&loginPayload{Email: "a@example.com"}))
}
