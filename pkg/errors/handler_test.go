package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestErrorHandler_Handle(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		debug      bool
		wantStatus int
		wantType   string
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "wrapped domain not found",
			err:        fmt.Errorf("load journey j-1: %w", ErrJourneyNotFound),
			wantStatus: http.StatusNotFound,
			wantType:   "NOT_FOUND",
			wantCode:   "JOURNEY_NOT_FOUND",
			wantMsg:    "The requested journey does not exist",
		},
		{
			name:       "duplicate edge is a conflict",
			err:        ErrDuplicateEdge,
			wantStatus: http.StatusConflict,
			wantType:   "CONFLICT",
			wantCode:   "DUPLICATE_EDGE",
			wantMsg:    "An edge between these nodes already exists",
		},
		{
			name:       "rate limit",
			err:        ErrRateLimitExceeded,
			wantStatus: http.StatusTooManyRequests,
			wantType:   "RATE_LIMIT_ERROR",
			wantCode:   "RATE_LIMIT_EXCEEDED",
			wantMsg:    "Too many requests, please try again later",
		},
		{
			name:       "validation app error",
			err:        NewValidationError("scenario is required"),
			wantStatus: http.StatusBadRequest,
			wantType:   "VALIDATION",
			wantMsg:    "scenario is required",
		},
		{
			name:       "app error keeps its code",
			err:        NewConflictError("journey changed").WithCode("VERSION_CONFLICT"),
			wantStatus: http.StatusConflict,
			wantType:   "CONFLICT",
			wantCode:   "VERSION_CONFLICT",
			wantMsg:    "journey changed",
		},
		{
			name:       "breaker open",
			err:        NewUnavailableError("language model"),
			wantStatus: http.StatusServiceUnavailable,
			wantType:   "UNAVAILABLE",
			wantMsg:    "service 'language model' is unavailable",
		},
		{
			name:       "plain error is hidden",
			err:        stderrors.New("disk on fire"),
			wantStatus: http.StatusInternalServerError,
			wantType:   "INTERNAL",
			wantMsg:    "An internal error occurred",
		},
		{
			name:       "plain error in debug mode",
			err:        stderrors.New("disk on fire"),
			debug:      true,
			wantStatus: http.StatusInternalServerError,
			wantType:   "INTERNAL",
			wantMsg:    "disk on fire",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			h := NewErrorHandler(zap.NewNop(), tt.debug)
			req := httptest.NewRequest(http.MethodGet, "/api/v1/journeys/j-1", nil)
			req.Header.Set("X-Request-ID", "req-42")
			rec := httptest.NewRecorder()

			// Act
			h.Handle(rec, req, tt.err)

			// Assert
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.True(t, body.Error)
			assert.Equal(t, tt.wantType, body.Type)
			assert.Equal(t, tt.wantCode, body.Code)
			assert.Equal(t, tt.wantMsg, body.Message)
			assert.Equal(t, "req-42", body.RequestID)
		})
	}
}

func TestErrorHandler_StackTraceOnlyInDebug(t *testing.T) {
	for _, debug := range []bool{false, true} {
		h := NewErrorHandler(zap.NewNop(), debug)
		rec := httptest.NewRecorder()

		h.Handle(rec, httptest.NewRequest(http.MethodGet, "/", nil), NewInternalError("boom"))

		var body ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		_, hasTrace := body.Details["stack_trace"]
		assert.Equal(t, debug, hasTrace)
	}
}

func TestErrorHandler_NilIsNoop(t *testing.T) {
	rec := httptest.NewRecorder()

	NewErrorHandler(zap.NewNop(), false).Handle(rec, httptest.NewRequest(http.MethodGet, "/", nil), nil)

	assert.Zero(t, rec.Body.Len())
}

func TestDomainCodes(t *testing.T) {
	err := fmt.Errorf("undo: %w", ErrNothingToUndo)

	assert.True(t, IsDomainCode(err, "NOTHING_TO_UNDO"))
	assert.False(t, IsDomainCode(err, "NOTHING_TO_REDO"))
	assert.True(t, stderrors.Is(err, ErrNothingToUndo))
	assert.False(t, IsDomainCode(stderrors.New("plain"), "NOTHING_TO_UNDO"))
}

func TestAppErrorPredicates(t *testing.T) {
	cause := stderrors.New("timeout")
	err := fmt.Errorf("save: %w", NewDatabaseError("save journey", cause))

	assert.True(t, IsType(err, ErrorTypeDatabase))
	assert.False(t, IsValidation(err))
	assert.False(t, IsConflict(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusInternalServerError, GetAppError(err).HTTPStatus)
}
