package grpc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/stretchr/testify/require"
)

type fakeUsers struct {
	registerOut *models.User
	loginOut    *models.UserWithTokens
	refreshOut  *models.AccessToken
	err         error

	lastNewUser models.NewUser
	lastLogin   models.LoginUser
	lastRefresh models.RefreshRequest
}

func (f *fakeUsers) Register(_ context.Context, u models.NewUser) (*models.User, error) {
	f.lastNewUser = u
	return f.registerOut, f.err
}

func (f *fakeUsers) Login(_ context.Context, u models.LoginUser) (*models.UserWithTokens, error) {
	f.lastLogin = u
	return f.loginOut, f.err
}

func (f *fakeUsers) Refresh(_ context.Context, r models.RefreshRequest) (*models.AccessToken, error) {
	f.lastRefresh = r
	return f.refreshOut, f.err
}

// Authenticate accepts exactly "good-token".
func (f *fakeUsers) Authenticate(_ context.Context, accessToken string) (*models.Claims, error) {
	switch accessToken {
	case "good-token":
		return &models.Claims{Subject: "42", Role: "admin", ExpiresAt: time.Unix(1_800_000_000, 0)}, nil
	case "expired-token":
		return nil, common.NewError(common.KindExpiredToken, "test")
	}
	return nil, common.NewError(common.KindInvalidSignature, "test")
}

func newTestServer(us UserService) *GRPCServer {
	return NewGRPCServer("127.0.0.1:0", logging.NopLogger{}, us, nil)
}

// scrapeMetrics returns the text exposition served by m.Handler.
func scrapeMetrics(t *testing.T, m *metrics.Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}
