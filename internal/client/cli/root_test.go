package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/client/config"
	pb "github.com/dmitrijs2005/gophauth/internal/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	tokens client.Session
	closed bool

	regName, regEmail, regPass string
	regErr                     error

	loginEmail, loginPass string
	loginErr              error

	refreshResp client.Session
	refreshErr  error

	me    *pb.MeResponse
	meErr error

	deadline bool
}

func (f *fakeClient) Register(ctx context.Context, name, email, password string) (*pb.User, error) {
	_, f.deadline = ctx.Deadline()
	f.regName, f.regEmail, f.regPass = name, email, password
	if f.regErr != nil {
		return nil, f.regErr
	}
	return &pb.User{ID: 7, Name: name, Email: email}, nil
}

func (f *fakeClient) Login(_ context.Context, email, password string) (*pb.User, error) {
	f.loginEmail, f.loginPass = email, password
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	f.tokens = client.Session{AccessToken: "A1", RefreshToken: "R1"}
	return &pb.User{ID: 7, Email: email}, nil
}

func (f *fakeClient) Refresh(context.Context) (client.Session, error) {
	if f.refreshErr != nil {
		return client.Session{}, f.refreshErr
	}
	f.tokens = f.refreshResp
	return f.refreshResp, nil
}

func (f *fakeClient) Me(context.Context) (*pb.MeResponse, error) { return f.me, f.meErr }
func (f *fakeClient) Tokens() client.Session                     { return f.tokens }
func (f *fakeClient) SetTokens(s client.Session)                 { f.tokens = s }
func (f *fakeClient) Close() error                               { f.closed = true; return nil }

type harness struct {
	cfg     *config.Config
	fake    *fakeClient
	dialed  string
	session string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	stubTerminal(t, false, nil, nil)

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SessionFile = filepath.Join(t.TempDir(), "session.json")

	return &harness{cfg: cfg, fake: &fakeClient{}, session: cfg.SessionFile}
}

func (h *harness) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	dial := func(addr string) (AuthClient, error) {
		h.dialed = addr
		return h.fake, nil
	}

	root := NewRootCmd(h.cfg, dial)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRegister_PromptsForMissingValues(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "A\na@x.com\nsecret123\n", "register")
	require.NoError(t, err)

	assert.Equal(t, "A", h.fake.regName)
	assert.Equal(t, "a@x.com", h.fake.regEmail)
	assert.Equal(t, "secret123", h.fake.regPass)
	assert.True(t, h.fake.deadline, "request timeout applied")
	assert.True(t, h.fake.closed)
	assert.Contains(t, out, "Registered user 7 (a@x.com)")
}

func TestRegister_FlagsSkipPrompts(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "secret123\n", "register", "--name", "A", "--email", "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", h.fake.regEmail)
	assert.Equal(t, "secret123", h.fake.regPass)
}

func TestRegister_Duplicate(t *testing.T) {
	h := newHarness(t)
	h.fake.regErr = client.ErrAlreadyExists

	_, err := h.run(t, "secret123\n", "register", "--name", "A", "--email", "a@x.com")
	require.ErrorIs(t, err, client.ErrAlreadyExists)
}

func TestLogin_StoresSession(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "secret123\n", "login", "--email", "a@x.com")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as a@x.com")

	s, err := client.LoadSession(h.session)
	require.NoError(t, err)
	assert.Equal(t, client.Session{AccessToken: "A1", RefreshToken: "R1"}, s)
}

func TestLogin_FailureKeepsSession(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, client.SaveSession(h.session, client.Session{AccessToken: "old", RefreshToken: "old-r"}))
	h.fake.loginErr = client.ErrUnauthorized

	_, err := h.run(t, "wrong\n", "login", "--email", "a@x.com")
	require.ErrorIs(t, err, client.ErrUnauthorized)

	s, err := client.LoadSession(h.session)
	require.NoError(t, err)
	assert.Equal(t, "old", s.AccessToken)
}

func TestRefresh(t *testing.T) {
	tests := []struct {
		name    string
		resp    client.Session
		rotated bool
	}{
		{"non rotating", client.Session{AccessToken: "A2", RefreshToken: "R1"}, false},
		{"rotating", client.Session{AccessToken: "A2", RefreshToken: "R2"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			require.NoError(t, client.SaveSession(h.session, client.Session{AccessToken: "A1", RefreshToken: "R1"}))
			h.fake.refreshResp = tt.resp

			out, err := h.run(t, "", "refresh")
			require.NoError(t, err)
			assert.Contains(t, out, "Access token refreshed")
			assert.Equal(t, tt.rotated, strings.Contains(out, "Refresh token rotated"))

			s, err := client.LoadSession(h.session)
			require.NoError(t, err)
			assert.Equal(t, tt.resp, s)
		})
	}
}

func TestMe(t *testing.T) {
	h := newHarness(t)
	h.fake.me = &pb.MeResponse{Subject: "7", ExpiresAt: time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC).Unix()}

	out, err := h.run(t, "", "me")
	require.NoError(t, err)
	assert.Contains(t, out, "user:    7")
	assert.Contains(t, out, "role:    -")
	assert.Contains(t, out, "expires: 2030-01-02T03:04:05Z")
}

func TestMe_Error(t *testing.T) {
	h := newHarness(t)
	h.fake.meErr = client.ErrNotLoggedIn

	_, err := h.run(t, "", "me")
	require.ErrorIs(t, err, client.ErrNotLoggedIn)
}

func TestLogout(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, client.SaveSession(h.session, client.Session{AccessToken: "A1"}))

	out, err := h.run(t, "", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out")

	s, err := client.LoadSession(h.session)
	require.NoError(t, err)
	assert.Equal(t, client.Session{}, s)
	assert.Empty(t, h.dialed, "logout does not contact the server")
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	h := newHarness(t)
	h.fake.me = &pb.MeResponse{Subject: "1"}
	file := filepath.Join(t.TempDir(), "cli.yaml")
	require.NoError(t, os.WriteFile(file, []byte("server_endpoint_addr: from-file:1\nrequest_timeout: 2s\n"), 0o600))

	_, err := h.run(t, "", "me", "-c", file)
	require.NoError(t, err)
	assert.Equal(t, "from-file:1", h.dialed)
	assert.Equal(t, 2*time.Second, h.cfg.RequestTimeout)

	h2 := newHarness(t)
	h2.fake.me = &pb.MeResponse{Subject: "1"}
	_, err = h2.run(t, "", "me", "-c", file, "-a", "from-flag:2")
	require.NoError(t, err)
	assert.Equal(t, "from-flag:2", h2.dialed)
}

func TestDialError(t *testing.T) {
	h := newHarness(t)
	root := NewRootCmd(h.cfg, func(string) (AuthClient, error) { return nil, errors.New("refused") })
	root.SetArgs([]string{"me"})
	root.SetOut(&bytes.Buffer{})

	err := root.Execute()
	require.ErrorContains(t, err, "refused")
}
