package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qabank/qabank/domain/identity"
	"github.com/qabank/qabank/infrastructure/api/middleware"
	"github.com/qabank/qabank/internal/domain"
)

func TestWriteErrorStatusMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("%w: nope", domain.ErrForbidden), http.StatusForbidden},
		{fmt.Errorf("%w: gone", domain.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: bad input", domain.ErrValidation), http.StatusBadRequest},
		{fmt.Errorf("%w: again", domain.ErrDuplicateMembership), http.StatusConflict},
		{fmt.Errorf("%w: down", domain.ErrEmbeddingUnavailable), http.StatusBadGateway},
		{fmt.Errorf("%w: down", domain.ErrIndexUnavailable), http.StatusServiceUnavailable},
		{errors.New("something else"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		middleware.WriteError(rec, req, tt.err, nil)

		assert.Equal(t, tt.status, rec.Code, "error %v", tt.err)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var resp middleware.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Errors, 1)
		assert.Equal(t, tt.err.Error(), resp.Errors[0].Detail)
	}
}

func TestCorrelationIDGenerated(t *testing.T) {
	var captured string
	handler := middleware.CorrelationID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = middleware.GetCorrelationID(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.NotEmpty(t, captured)
	assert.Equal(t, captured, rec.Header().Get("X-Correlation-ID"))
}

func TestCorrelationIDEchoed(t *testing.T) {
	var captured string
	handler := middleware.CorrelationID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = middleware.GetCorrelationID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-Correlation-ID", "abc-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", captured)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Correlation-ID"))
}

func TestAPIKeyDisabledPassesThrough(t *testing.T) {
	handler := middleware.APIKey(middleware.NewAuthConfig(nil))(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIKeyEnforced(t *testing.T) {
	config := middleware.NewAuthConfig([]string{"secret"})
	require.True(t, config.Enabled())
	handler := middleware.APIKey(config)(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-API-KEY", "wrong")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-API-KEY", "secret")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

type fakeResolver struct {
	users map[int64]identity.User
}

func (r fakeResolver) Get(_ context.Context, id int64) (identity.User, error) {
	user, ok := r.users[id]
	if !ok {
		return identity.User{}, fmt.Errorf("%w: user %d", domain.ErrNotFound, id)
	}
	return user, nil
}

func TestActorAnonymousWithoutHeader(t *testing.T) {
	var actor *identity.User
	handler := middleware.Actor(fakeResolver{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor = middleware.GetActor(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, actor)
}

func TestActorResolved(t *testing.T) {
	alice := identity.ReconstructUser(7, "alice", "inst", identity.RoleUser, time.Now(), time.Now())
	resolver := fakeResolver{users: map[int64]identity.User{7: alice}}

	var actor *identity.User
	handler := middleware.Actor(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor = middleware.GetActor(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-Actor-ID", "7")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, actor)
	assert.Equal(t, int64(7), actor.ID())
}

func TestActorRejectsBadHeader(t *testing.T) {
	handler := middleware.Actor(fakeResolver{})(okHandler())

	for _, header := range []string{"not-a-number", "-1", "0", "9999"} {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("X-Actor-ID", header)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}
