package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "onboard/pkg/domain-errors"
)

func TestWriteError(t *testing.T) {
	t.Run("internal error omits description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeInternal, "db failed"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)

		var body map[string]any
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "internal_error", body["error"])
		assert.NotContains(t, body, "error_description")
	})

	t.Run("unclassified errors collapse to internal", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, assert.AnError)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("domain rejection carries description and details", func(t *testing.T) {
		w := httptest.NewRecorder()
		err := dErrors.New(dErrors.CodeMissingRequiredFields, "missing required fields").
			WithDetail("fields", []string{"email", "name"})
		WriteError(w, err)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var body struct {
			Error       string `json:"error"`
			Description string `json:"error_description"`
			Details     struct {
				Fields []string `json:"fields"`
			} `json:"details"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "missing_required_fields", body.Error)
		assert.Equal(t, "missing required fields", body.Description)
		assert.Equal(t, []string{"email", "name"}, body.Details.Fields)
	})
}

func TestStatusFor(t *testing.T) {
	cases := map[dErrors.Code]int{
		dErrors.CodeBadRequest:            http.StatusBadRequest,
		dErrors.CodeValidation:            http.StatusBadRequest,
		dErrors.CodeNotFound:              http.StatusNotFound,
		dErrors.CodeEmailAlreadyExists:    http.StatusConflict,
		dErrors.CodeDocumentAlreadyExists: http.StatusConflict,
		dErrors.CodeInvalidDocument:       http.StatusUnprocessableEntity,
		dErrors.CodeMissingRequiredFields: http.StatusUnprocessableEntity,
		dErrors.CodeWeakPassword:          http.StatusUnprocessableEntity,
		dErrors.CodeVerificationFailed:    http.StatusUnprocessableEntity,
		dErrors.CodeEmailNotVerified:      http.StatusPreconditionFailed,
		dErrors.CodePhoneNotVerified:      http.StatusPreconditionFailed,
		dErrors.CodeUnauthorized:          http.StatusUnauthorized,
		dErrors.CodeInternal:              http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, statusFor(code), "code %s", code)
	}
}

func TestDecodeAndPrepare(t *testing.T) {
	type payload struct {
		Email string `json:"email"`
	}

	t.Run("valid body decodes", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@x.com"}`))
		got, ok := DecodeAndPrepare[payload](w, r, nil, r.Context(), "req-1")
		require.True(t, ok)
		assert.Equal(t, "a@x.com", got.Email)
	})

	t.Run("malformed body writes bad_request", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{not json`))
		_, ok := DecodeAndPrepare[payload](w, r, nil, r.Context(), "req-1")
		require.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
