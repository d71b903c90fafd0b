package endpoints

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ssshoffice/office-in-go/pkg/attendance"
	"github.com/ssshoffice/office-in-go/pkg/audit"
	"github.com/ssshoffice/office-in-go/pkg/auth"
	"github.com/ssshoffice/office-in-go/pkg/auth/token"
	"github.com/ssshoffice/office-in-go/pkg/config"
	"github.com/ssshoffice/office-in-go/pkg/identity"
	"github.com/ssshoffice/office-in-go/pkg/server"
)

var endpointsTestKey = []byte("0123456789abcdef0123456789abcdef")

// testServer bundles a fully wired server over mock stores.
type testServer struct {
	*server.Server

	Users      *MockUsersStore
	Sessions   *MockAttendanceStore
	Health     *MockHealthStore
	TokenSvc   *token.Service
	PlainCodec *auth.Codec
}

// newTestServer wires the endpoints and guard over mock stores. No sockets
// are opened; requests go straight through the router.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	audit.SetEnabled(false)

	users := NewMockUsersStore()
	sessions := NewMockAttendanceStore()
	health := NewMockHealthStore()

	codec := auth.NewCodec(bcrypt.MinCost)
	tokens := token.NewService(endpointsTestKey, 5*time.Minute, time.Hour)
	manager := attendance.NewManager(sessions, users)

	cfg := &config.OfficeConfig{AccessTokenTTL: 300, RefreshTokenTTL: 3600, BcryptCost: bcrypt.MinCost}
	srv := server.NewServer(nil, cfg, codec, tokens, manager, users, health, "127.0.0.1", "0")
	RegisterAll(srv)

	return &testServer{
		Server:     srv,
		Users:      users,
		Sessions:   sessions,
		Health:     health,
		TokenSvc:   tokens,
		PlainCodec: codec,
	}
}

func (ts *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	ts.Router.ServeHTTP(w, req)
	return w
}

func (ts *testServer) accessToken(t *testing.T, subjectID string, codes ...string) string {
	t.Helper()
	signed, err := ts.TokenSvc.Issue(token.Seed{SubjectID: subjectID, PermissionCodes: codes}, identity.KindAccess)
	require.NoError(t, err)
	return signed
}

func (ts *testServer) refreshToken(t *testing.T, subjectID string) string {
	t.Helper()
	signed, err := ts.TokenSvc.Issue(token.Seed{SubjectID: subjectID}, identity.KindRefresh)
	require.NoError(t, err)
	return signed
}

func basicAuth(loginID, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(loginID+":"+password))
}

func mustHash(t *testing.T, codec *auth.Codec, password string) string {
	t.Helper()
	hashed, err := codec.Hash(password)
	require.NoError(t, err)
	return hashed
}
