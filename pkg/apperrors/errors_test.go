package apperrors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithDetails_DoesNotMutatePredefined(t *testing.T) {
	withDetails := ErrHorarioNoDisponible.WithDetails(map[string]string{"horarioId": "3"})

	assert.Nil(t, ErrHorarioNoDisponible.Details)
	assert.NotNil(t, withDetails.Details)
	assert.True(t, errors.Is(withDetails, ErrHorarioNoDisponible))
}

func TestAsAppError_Wrapped(t *testing.T) {
	err := fmt.Errorf("request tutoria: %w", ErrTutorNotFound)

	appErr, ok := AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, appErr.HTTPCode)
	assert.True(t, errors.Is(err, ErrTutorNotFound))
	assert.False(t, errors.Is(err, ErrTutoriaNotFound))
}

func TestHandleError_Rendering(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name       string
		err        error
		debug      bool
		wantStatus int
		wantMsg    string
		wantRaw    string
	}{
		{"domain error", ErrTutoriaNoCancelable, true, http.StatusBadRequest, "Solo se pueden cancelar tutorías pendientes o aceptadas", ""},
		{"plain error in debug", errors.New("connection reset"), true, http.StatusInternalServerError, "Error interno del servidor", "connection reset"},
		{"plain error without debug", errors.New("connection reset"), false, http.StatusInternalServerError, "Error interno del servidor", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			h := &GinErrorHandler{Debug: tc.debug}
			h.HandleGinError(c, tc.err)

			assert.Equal(t, tc.wantStatus, w.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tc.wantMsg, body.Message)
			assert.Equal(t, tc.wantRaw, body.Error)
		})
	}
}
