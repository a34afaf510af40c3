package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"study-notes/ai"
	"study-notes/auth"
	"study-notes/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeLLM struct {
	reply string
	err   error
	calls []ai.Request
}

func (f *fakeLLM) Complete(ctx context.Context, req ai.Request) (string, error) {
	f.calls = append(f.calls, req)
	return f.reply, f.err
}

type testEnv struct {
	router chi.Router
	store  *memStore
	llm    *fakeLLM
	issuer *auth.Issuer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	env := &testEnv{
		router: chi.NewRouter(),
		store:  newMemStore(),
		llm:    &fakeLLM{},
		issuer: auth.NewIssuer("handlers-test-secret", auth.TokenTTL),
	}
	h, err := New(env.store, ai.NewAssistant(env.llm), env.issuer, log, Config{BcryptCost: bcrypt.MinCost})
	require.NoError(t, err)
	h.Register(env.router, RouteOptions{RequireAuth: middleware.RequireAuth(env.issuer, log)})
	return env
}

// do sends a request through the router. body may be nil, a string sent
// verbatim, or any value encoded as JSON.
func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewBuffer(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

// signup creates a user and returns its token and id.
func (e *testEnv) signup(t *testing.T, email string) (string, int) {
	t.Helper()
	rr := e.do(t, "POST", "/api/auth/signup", map[string]string{"email": email, "password": "pw123456"}, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	claims, err := e.issuer.Verify(resp["token"])
	require.NoError(t, err)
	return resp["token"], claims.UserID
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}
