package endpoints

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ssshoffice/office-in-go/pkg/auth/permission"
	"github.com/ssshoffice/office-in-go/pkg/server/store"
)

func TestLogin(t *testing.T) {
	ts := newTestServer(t)

	ts.Users.On("FindByLoginID", "alice").Return(&store.Subject{
		ID:              "subject-1",
		LoginID:         "alice",
		HashedPassword:  mustHash(t, ts.PlainCodec, "s3cret"),
		PermissionCodes: []string{permission.CanUseOffice, permission.CanUseWork},
	}, nil)

	req := httptest.NewRequest("POST", "/login", nil)
	req.Header.Set("Authorization", basicAuth("alice", "s3cret"))

	w := ts.do(req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var pair TokenPairResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pair))
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	// The access token also lands in a cookie for browser clients.
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "accessToken", cookies[0].Name)
	assert.Equal(t, pair.AccessToken, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)

	// The issued access token must work on a protected route.
	verified, err := ts.TokenSvc.Verify(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "subject-1", verified.SubjectID)
	assert.ElementsMatch(t,
		[]string{permission.CanUseOffice, permission.CanUseWork},
		verified.PermissionCodes,
	)
}

func TestLogin_WrongPassword(t *testing.T) {
	ts := newTestServer(t)

	ts.Users.On("FindByLoginID", "alice").Return(&store.Subject{
		ID:              "subject-1",
		LoginID:         "alice",
		HashedPassword:  mustHash(t, ts.PlainCodec, "s3cret"),
		PermissionCodes: []string{permission.CanUseOffice},
	}, nil)

	req := httptest.NewRequest("POST", "/login", nil)
	req.Header.Set("Authorization", basicAuth("alice", "wrong"))

	w := ts.do(req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid credentials")
}

func TestLogin_UnknownUser(t *testing.T) {
	ts := newTestServer(t)

	ts.Users.On("FindByLoginID", "ghost").Return(nil, store.ErrSubjectNotFound)

	req := httptest.NewRequest("POST", "/login", nil)
	req.Header.Set("Authorization", basicAuth("ghost", "whatever"))

	w := ts.do(req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid credentials")
}

func TestLogin_MissingBaselinePermission(t *testing.T) {
	ts := newTestServer(t)

	// Correct password, but the account was never granted the login code.
	ts.Users.On("FindByLoginID", "bob").Return(&store.Subject{
		ID:              "subject-2",
		LoginID:         "bob",
		HashedPassword:  mustHash(t, ts.PlainCodec, "s3cret"),
		PermissionCodes: []string{permission.CanUseWork},
	}, nil)

	req := httptest.NewRequest("POST", "/login", nil)
	req.Header.Set("Authorization", basicAuth("bob", "s3cret"))

	w := ts.do(req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestLogin_WithoutCredential(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(httptest.NewRequest("POST", "/login", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, `Basic realm="office"`, w.Header().Get("WWW-Authenticate"))
}

func TestRefresh(t *testing.T) {
	ts := newTestServer(t)

	// Codes come fresh from storage, not from the old token.
	ts.Users.On("FindByID", "subject-1").Return(&store.Subject{
		ID:              "subject-1",
		LoginID:         "alice",
		PermissionCodes: []string{permission.CanUseOffice, permission.ReadAnotherWork},
	}, nil)

	req := httptest.NewRequest("POST", "/refresh", nil)
	req.Header.Set("Authorization", "Bearer "+ts.refreshToken(t, "subject-1"))

	w := ts.do(req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var pair TokenPairResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pair))

	verified, err := ts.TokenSvc.Verify(pair.AccessToken)
	require.NoError(t, err)
	assert.ElementsMatch(t,
		[]string{permission.CanUseOffice, permission.ReadAnotherWork},
		verified.PermissionCodes,
	)
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest("POST", "/refresh", nil)
	req.Header.Set("Authorization", "Bearer "+ts.accessToken(t, "subject-1", permission.CanUseOffice))

	w := ts.do(req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefresh_DeletedUser(t *testing.T) {
	ts := newTestServer(t)

	ts.Users.On("FindByID", "subject-1").Return(nil, store.ErrSubjectNotFound)

	req := httptest.NewRequest("POST", "/refresh", nil)
	req.Header.Set("Authorization", "Bearer "+ts.refreshToken(t, "subject-1"))

	w := ts.do(req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegister(t *testing.T) {
	ts := newTestServer(t)

	ts.Users.On("Create", mock.MatchedBy(func(s *store.Subject) bool {
		return s.LoginID == "carol" && s.DisplayName == "Carol" &&
			s.ID != "" && s.HashedPassword != "" && s.HashedPassword != "s3cret"
	})).Return(nil)

	body := `{"loginId":"carol","password":"s3cret","displayName":"Carol"}`
	req := httptest.NewRequest("POST", "/register", strings.NewReader(body))

	w := ts.do(req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp RegisterResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "carol", resp.LoginID)
	assert.NotEmpty(t, resp.ID)
	ts.Users.AssertExpectations(t)
}

func TestRegister_Duplicate(t *testing.T) {
	ts := newTestServer(t)

	ts.Users.On("Create", mock.Anything).Return(store.ErrDuplicateSubject)

	body := `{"loginId":"carol","password":"s3cret","displayName":"Carol"}`
	w := ts.do(httptest.NewRequest("POST", "/register", strings.NewReader(body)))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegister_MissingFields(t *testing.T) {
	ts := newTestServer(t)

	tests := []string{
		`{"password":"s3cret","displayName":"Carol"}`,
		`{"loginId":"carol","displayName":"Carol"}`,
		`{"loginId":"carol","password":"s3cret"}`,
		`not json`,
	}
	for _, body := range tests {
		w := ts.do(httptest.NewRequest("POST", "/register", strings.NewReader(body)))
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}
