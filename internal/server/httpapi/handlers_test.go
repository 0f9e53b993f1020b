package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/skillhub/internal/common"
	"github.com/dmitrijs2005/skillhub/internal/logging"
	"github.com/dmitrijs2005/skillhub/internal/server/config"
	"github.com/dmitrijs2005/skillhub/internal/server/models"
	"github.com/dmitrijs2005/skillhub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/skillhub/internal/server/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testAPI struct {
	srv  *httptest.Server
	svc  *sessions.Service
	repo *repomanager.MemoryRepositoryManager
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	repo := repomanager.NewMemoryRepositoryManager()
	logger := logging.NewJSONLogger(io.Discard, slog.LevelError)
	svc := sessions.NewService(repo, &config.Config{
		SecretKey:                    "test-secret",
		AccessTokenValidityDuration:  time.Minute,
		RefreshTokenValidityDuration: time.Hour,
	}, logger)

	srv := httptest.NewServer(NewRouter(NewHandler(svc, logger), nil))
	t.Cleanup(srv.Close)
	return &testAPI{srv: srv, svc: svc, repo: repo}
}

func (a *testAPI) do(t *testing.T, method, path, bearer, body string) (int, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, a.srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := a.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(bytes.TrimSpace(raw)) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func errorCode(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func (a *testAPI) primary(t *testing.T, username string) *models.Principal {
	t.Helper()
	p, err := a.svc.CreatePrimary(context.Background(), sessions.NewAccount{
		Username: username, Email: username + "@example.com", Password: "pw-" + username,
	})
	require.NoError(t, err)
	return p
}

func (a *testAPI) login(t *testing.T, identifier, password string) (access, refresh string) {
	t.Helper()
	status, body := a.do(t, http.MethodPost, "/api/auth/login", "",
		`{"identifier":"`+identifier+`","password":"`+password+`"}`)
	require.Equal(t, http.StatusOK, status, body)
	return body["accessToken"].(string), body["refreshToken"].(string)
}

func TestHealth(t *testing.T) {
	a := newTestAPI(t)
	status, body := a.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestLogin(t *testing.T) {
	a := newTestAPI(t)
	a.primary(t, "alice")

	status, body := a.do(t, http.MethodPost, "/api/auth/login", "", `{"identifier":"alice","password":"pw-alice"}`)
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, body["accessToken"])
	assert.NotEmpty(t, body["refreshToken"])
	principal := body["principal"].(map[string]any)
	assert.Equal(t, "primary", principal["kind"])
	assert.Equal(t, "alice", principal["username"])

	status, body = a.do(t, http.MethodPost, "/api/auth/login", "", `{"identifier":"alice","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "unauthorized", errorCode(body))

	status, _ = a.do(t, http.MethodPost, "/api/auth/login", "", `{"identifier":"alice"}`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestRegenerate_StatusMapping(t *testing.T) {
	a := newTestAPI(t)
	a.primary(t, "alice")
	_, r1 := a.login(t, "alice", "pw-alice")

	status, body := a.do(t, http.MethodPost, "/api/auth/token/regenerate", "", `{"refreshToken":"`+r1+`"}`)
	require.Equal(t, http.StatusOK, status)
	r2 := body["refreshToken"].(string)
	assert.NotEqual(t, r1, r2)

	// consumed token
	status, body = a.do(t, http.MethodPost, "/api/auth/token/regenerate", "", `{"refreshToken":"`+r1+`"}`)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "token_not_found", errorCode(body))

	// expired token
	id := "p-expired"
	a.repo.TokenStore().Put(models.RefreshTokenRecord{Token: "old", PrimaryID: &id, ExpiryDate: time.Now().Add(-time.Minute)})
	status, body = a.do(t, http.MethodPost, "/api/auth/token/regenerate", "", `{"refreshToken":"old"}`)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "refresh_token_expired", errorCode(body))

	// malformed ownership
	a.repo.TokenStore().Put(models.RefreshTokenRecord{Token: "orphan", ExpiryDate: time.Now().Add(time.Hour)})
	status, _ = a.do(t, http.MethodPost, "/api/auth/token/regenerate", "", `{"refreshToken":"orphan"}`)
	assert.Equal(t, http.StatusForbidden, status)

	// bad bodies
	for _, b := range []string{``, `{}`, `{"refreshToken":""}`, `{"refresh":"x"}`, `{"refreshToken":"a"}{}`} {
		status, _ = a.do(t, http.MethodPost, "/api/auth/token/regenerate", "", b)
		assert.Equal(t, http.StatusBadRequest, status, b)
	}
}

func TestRegenerate_InactiveOwner(t *testing.T) {
	a := newTestAPI(t)
	p := a.primary(t, "alice")
	_, r1 := a.login(t, "alice", "pw-alice")

	require.NoError(t, a.repo.Primaries(nil).SetActive(context.Background(), p.Ref.ID(), false))

	status, body := a.do(t, http.MethodPost, "/api/auth/token/regenerate", "", `{"refreshToken":"`+r1+`"}`)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "account_inactive", errorCode(body))
}

func TestInvalidate(t *testing.T) {
	a := newTestAPI(t)
	a.primary(t, "alice")
	_, r1 := a.login(t, "alice", "pw-alice")

	status, body := a.do(t, http.MethodPost, "/api/auth/token/invalidate", "", `{"refreshToken":"`+r1+`"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "refresh token invalidated", body["message"])

	status, _ = a.do(t, http.MethodPost, "/api/auth/token/invalidate", "", `{"refreshToken":"`+r1+`"}`)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestVerify(t *testing.T) {
	a := newTestAPI(t)
	p := a.primary(t, "alice")
	_, r1 := a.login(t, "alice", "pw-alice")

	status, body := a.do(t, http.MethodPost, "/api/auth/token/verify", "", `{"refreshToken":"`+r1+`"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, r1, body["token"])
	assert.Equal(t, "primary", body["principalKind"])
	assert.Equal(t, p.Ref.ID(), body["principalId"])
	assert.Equal(t, "alice@example.com", body["email"])

	a.repo.TokenStore().Put(models.RefreshTokenRecord{Token: "orphan", ExpiryDate: time.Now().Add(time.Hour)})
	status, body = a.do(t, http.MethodPost, "/api/auth/token/verify", "", `{"refreshToken":"orphan"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid_token_configuration", errorCode(body))

	status, _ = a.do(t, http.MethodPost, "/api/auth/token/verify", "", `{"refreshToken":"nope"}`)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestMe(t *testing.T) {
	a := newTestAPI(t)
	a.primary(t, "alice")
	access, _ := a.login(t, "alice", "pw-alice")

	status, body := a.do(t, http.MethodGet, "/api/me", access, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alice", body["username"])

	status, _ = a.do(t, http.MethodGet, "/api/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body = a.do(t, http.MethodGet, "/api/me", "garbage", "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "invalid_token", errorCode(body))
}

func TestWorkers(t *testing.T) {
	a := newTestAPI(t)
	a.primary(t, "alice")
	a.primary(t, "mallory")
	access, _ := a.login(t, "alice", "pw-alice")
	other, _ := a.login(t, "mallory", "pw-mallory")

	status, body := a.do(t, http.MethodPost, "/api/workers", access,
		`{"username":"bob","email":"bob@example.com","password":"pw-bob"}`)
	require.Equal(t, http.StatusCreated, status, body)
	assert.Equal(t, "worker", body["kind"])
	workerID := body["id"].(string)

	status, _ = a.do(t, http.MethodPost, "/api/workers", access,
		`{"username":"bob","email":"bob2@example.com","password":"pw"}`)
	assert.Equal(t, http.StatusConflict, status)

	status, _ = a.do(t, http.MethodPost, "/api/workers", access, `{"username":"","email":"x@example.com","password":"pw"}`)
	assert.Equal(t, http.StatusBadRequest, status)

	workerAccess, workerRefresh := a.login(t, "bob", "pw-bob")

	// workers cannot manage workers
	status, _ = a.do(t, http.MethodPost, "/api/workers", workerAccess,
		`{"username":"eve","email":"eve@example.com","password":"pw"}`)
	assert.Equal(t, http.StatusForbidden, status)

	// only the owner sees the worker
	status, _ = a.do(t, http.MethodPatch, "/api/workers/"+workerID+"/active", other, `{"active":false}`)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = a.do(t, http.MethodPatch, "/api/workers/"+workerID+"/active", access, `{}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = a.do(t, http.MethodPatch, "/api/workers/"+workerID+"/active", access, `{"active":false}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["active"])

	// deactivation revoked the worker session
	status, _ = a.do(t, http.MethodPost, "/api/auth/token/regenerate", "", `{"refreshToken":"`+workerRefresh+`"}`)
	assert.Equal(t, http.StatusNotFound, status)

	status, body = a.do(t, http.MethodPost, "/api/auth/login", "", `{"identifier":"bob","password":"pw-bob"}`)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "account_inactive", errorCode(body))
}

func TestClassify(t *testing.T) {
	m, ok := classify(assert.AnError)
	assert.False(t, ok)
	assert.Equal(t, http.StatusInternalServerError, m.status)

	m, ok = classify(fmt.Errorf("%w: %v", common.ErrSessionConflict, common.ErrAlreadyExists))
	assert.True(t, ok)
	assert.Equal(t, http.StatusConflict, m.status)
	assert.Equal(t, "session_conflict", m.code)
}
