package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gigboard/engine/internal/models"
	"github.com/gigboard/engine/internal/policy"
	appErr "github.com/gigboard/engine/pkg/errors"
	"github.com/gigboard/engine/pkg/logger"
)

func TestMain(m *testing.M) {
	if _, err := logger.Init("error", "json"); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	os.Exit(m.Run())
}

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

type fakeTokens map[string]policy.Actor

func (f fakeTokens) Parse(token string) (policy.Actor, error) {
	a, found := f[token]
	if !found {
		return policy.Actor{}, appErr.New(appErr.CodeUnauthorized, "invalid or expired token")
	}
	return a, nil
}

// fakeAccounts holds the stored role per user id; missing ids are deleted accounts.
type fakeAccounts map[uint]models.Role

func (f fakeAccounts) ResolveActor(_ context.Context, id uint) (policy.Actor, error) {
	role, found := f[id]
	if !found {
		return policy.Actor{}, appErr.New(appErr.CodeUnauthorized, "account no longer exists")
	}
	return policy.Actor{ID: id, Role: role}, nil
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRequestIDIsEchoedOrGenerated(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc")
	rec := serve(h, req)
	require.Equal(t, "abc", seen)
	require.Equal(t, "abc", rec.Header().Get("X-Request-ID"))

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Len(t, seen, 36)
	require.Equal(t, seen, rec.Header().Get("X-Request-ID"))
}

func TestAuth(t *testing.T) {
	tokens := fakeTokens{
		"good":    {ID: 3, Role: models.RoleAdmin},
		"demoted": {ID: 4, Role: models.RoleSuperadmin},
		"deleted": {ID: 5, Role: models.RoleAdmin},
	}
	accounts := fakeAccounts{3: models.RoleAdmin, 4: models.RoleAdmin}
	var got policy.Actor
	h := Auth(tokens, accounts)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = ActorFrom(r.Context())
	}))

	for _, header := range []string{"", "good", "Basic good", "Bearer bad", "Bearer deleted"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := serve(h, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code, header)
		require.Contains(t, rec.Body.String(), `"code":"unauthorized"`)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer good")
	rec := serve(h, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, uint(3), got.ID)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer demoted")
	rec = serve(h, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, models.RoleAdmin, got.Role)
}

func TestAuthStoreFailureIsInternal(t *testing.T) {
	tokens := fakeTokens{"good": {ID: 3, Role: models.RoleAdmin}}
	h := Auth(tokens, failingAccounts{})(ok)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := serve(h, req)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.JSONEq(t, `{"error":"load user failed","code":"store_error"}`, rec.Body.String())
}

type failingAccounts struct{}

func (failingAccounts) ResolveActor(context.Context, uint) (policy.Actor, error) {
	return policy.Actor{}, appErr.Wrap(errors.New("disk I/O error"), appErr.CodeStore, "load user failed")
}

func TestRequireRole(t *testing.T) {
	h := RequireRole(models.RoleSuperadmin)(ok)

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec = serve(h, req.WithContext(WithActor(req.Context(), policy.Actor{ID: 2, Role: models.RoleAdmin})))
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(h, req.WithContext(WithActor(req.Context(), policy.Actor{ID: 1, Role: models.RoleSuperadmin})))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRecoveryReturnsJSON(t *testing.T) {
	h := Recovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))
	rec := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.JSONEq(t, `{"error":"internal error","code":"unknown"}`, rec.Body.String())
}

func TestLoggingKeepsStatus(t *testing.T) {
	h := RequestID(Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))
	rec := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	rec := serve(CORS(ok), httptest.NewRequest(http.MethodOptions, "/api/projects", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimit(t *testing.T) {
	h := RateLimit(1, 2)(ok)
	hit := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		return serve(h, req).Code
	}
	require.Equal(t, http.StatusOK, hit("10.0.0.1"))
	require.Equal(t, http.StatusOK, hit("10.0.0.1"))
	require.Equal(t, http.StatusTooManyRequests, hit("10.0.0.1"))
	require.Equal(t, http.StatusOK, hit("10.0.0.2"))

	require.Equal(t, http.StatusOK, serve(RateLimit(0, 0)(ok), httptest.NewRequest(http.MethodGet, "/", nil)).Code)
}

func TestRateLimitIgnoresForwardedFor(t *testing.T) {
	h := RateLimit(1, 1)(ok)
	hit := func(forwarded string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.9:1234"
		req.Header.Set("X-Forwarded-For", forwarded)
		return serve(h, req).Code
	}
	require.Equal(t, http.StatusOK, hit("1.1.1.1"))
	require.Equal(t, http.StatusTooManyRequests, hit("2.2.2.2"))
	require.Equal(t, http.StatusTooManyRequests, hit("3.3.3.3, 10.0.0.9"))
}

func TestVisitorsSweepIdleEntries(t *testing.T) {
	start := time.Now()
	v := &visitors{entries: map[string]*limiterEntry{}, rps: 1, burst: 1, lastSweep: start}
	require.True(t, v.allow("a", start))
	require.False(t, v.allow("a", start))
	require.True(t, v.allow("b", start.Add(11*time.Minute)))
	require.NotContains(t, v.entries, "a")
}
