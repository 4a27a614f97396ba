package user

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/mohirdev/delivery-api/internal/auth"
	orderentity "github.com/mohirdev/delivery-api/internal/order/entity"
	"github.com/mohirdev/delivery-api/internal/user/entity"
)

type fakeOrderLister struct {
	orders []orderentity.Detail
	userID int64
}

func (f *fakeOrderLister) ListByUser(_ context.Context, userID int64) ([]orderentity.Detail, error) {
	f.userID = userID
	return f.orders, nil
}

func newTestHandler(t *testing.T) (*Handler, *fakeRepo, *auth.TokenService) {
	t.Helper()
	repo := &fakeRepo{}
	svc := NewService(nil, repo, BcryptHasher{Cost: bcrypt.MinCost})
	tokens := auth.NewTokenService(auth.TokenConfig{
		Secret:     []byte("test-secret"),
		AccessTTL:  time.Minute,
		RefreshTTL: 72 * time.Hour,
	})
	h := &Handler{svc: svc, tokens: tokens, orders: &fakeOrderLister{}, logger: zap.NewNop().Sugar()}
	return h, repo, tokens
}

func doJSON(t *testing.T, handler http.HandlerFunc, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestSignup_Created(t *testing.T) {
	t.Parallel()

	h, _, _ := newTestHandler(t)

	rec := doJSON(t, h.Signup, http.MethodPost, "/auth/signup",
		`{"username":"ali","email":"a@x.com","password":"p1"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp SignupResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotZero(t, resp.ID)
	require.Equal(t, "ali", resp.Username)
	require.Equal(t, "a@x.com", resp.Email)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	t.Parallel()

	h, _, _ := newTestHandler(t)

	rec := doJSON(t, h.Signup, http.MethodPost, "/auth/signup",
		`{"username":"ali","email":"a@x.com","password":"p1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	// same email, different username
	rec = doJSON(t, h.Signup, http.MethodPost, "/auth/signup",
		`{"username":"vali","email":"a@x.com","password":"p2"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "email")
}

func TestSignup_MissingFields(t *testing.T) {
	t.Parallel()

	h, _, _ := newTestHandler(t)

	rec := doJSON(t, h.Signup, http.MethodPost, "/auth/signup", `{"username":"ali"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSignup_MalformedBody(t *testing.T) {
	t.Parallel()

	h, _, _ := newTestHandler(t)

	rec := doJSON(t, h.Signup, http.MethodPost, "/auth/signup", `{not json`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSignup_StaffFlagHonored(t *testing.T) {
	t.Parallel()

	h, repo, _ := newTestHandler(t)

	rec := doJSON(t, h.Signup, http.MethodPost, "/auth/signup",
		`{"username":"admin","email":"admin@x.com","password":"p1","is_staff":true}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	u, err := repo.GetByUsername(context.Background(), "admin")
	require.NoError(t, err)
	require.True(t, u.IsStaff)
	require.True(t, u.IsActive)
}

func TestLogin_ReturnsTokenPair(t *testing.T) {
	t.Parallel()

	h, _, tokens := newTestHandler(t)
	doJSON(t, h.Signup, http.MethodPost, "/auth/signup",
		`{"username":"ali","email":"a@x.com","password":"p1"}`)

	rec := doJSON(t, h.Login, http.MethodPost, "/auth/login",
		`{"username":"ali","password":"p1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	subject, err := tokens.Verify(resp.AccessToken, auth.ClassAccess)
	require.NoError(t, err)
	require.Equal(t, "ali", subject)

	subject, err = tokens.Verify(resp.RefreshToken, auth.ClassRefresh)
	require.NoError(t, err)
	require.Equal(t, "ali", subject)
}

func TestLogin_ByEmail(t *testing.T) {
	t.Parallel()

	h, _, _ := newTestHandler(t)
	doJSON(t, h.Signup, http.MethodPost, "/auth/signup",
		`{"username":"ali","email":"a@x.com","password":"p1"}`)

	rec := doJSON(t, h.Login, http.MethodPost, "/auth/login",
		`{"email":"a@x.com","password":"p1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestLogin_EmailFallsBackWhenUsernameMisses(t *testing.T) {
	t.Parallel()

	h, _, tokens := newTestHandler(t)
	doJSON(t, h.Signup, http.MethodPost, "/auth/signup",
		`{"username":"ali","email":"a@x.com","password":"p1"}`)

	// stale username alongside the right email still identifies the account
	rec := doJSON(t, h.Login, http.MethodPost, "/auth/login",
		`{"username":"old-ali","email":"a@x.com","password":"p1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	subject, err := tokens.Verify(resp.AccessToken, auth.ClassAccess)
	require.NoError(t, err)
	require.Equal(t, "ali", subject)
}

func TestLogin_WrongPassword(t *testing.T) {
	t.Parallel()

	h, _, _ := newTestHandler(t)
	doJSON(t, h.Signup, http.MethodPost, "/auth/signup",
		`{"username":"ali","email":"a@x.com","password":"p1"}`)

	rec := doJSON(t, h.Login, http.MethodPost, "/auth/login",
		`{"username":"ali","password":"wrong"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefresh_IssuesNewAccessToken(t *testing.T) {
	t.Parallel()

	h, _, tokens := newTestHandler(t)
	doJSON(t, h.Signup, http.MethodPost, "/auth/signup",
		`{"username":"ali","email":"a@x.com","password":"p1"}`)

	refresh, _, err := tokens.IssueRefresh("ali")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/auth/login/refresh", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)
	rec := httptest.NewRecorder()
	h.Refresh(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	subject, err := tokens.Verify(resp["access_token"], auth.ClassAccess)
	require.NoError(t, err)
	require.Equal(t, "ali", subject)
}

func TestRefresh_AccessTokenRejected(t *testing.T) {
	t.Parallel()

	h, _, tokens := newTestHandler(t)
	doJSON(t, h.Signup, http.MethodPost, "/auth/signup",
		`{"username":"ali","email":"a@x.com","password":"p1"}`)

	access, _, err := tokens.IssueAccess("ali")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/auth/login/refresh", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	rec := httptest.NewRecorder()
	h.Refresh(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefresh_DeletedUser(t *testing.T) {
	t.Parallel()

	h, repo, tokens := newTestHandler(t)
	doJSON(t, h.Signup, http.MethodPost, "/auth/signup",
		`{"username":"ali","email":"a@x.com","password":"p1"}`)

	refresh, _, err := tokens.IssueRefresh("ali")
	require.NoError(t, err)

	repo.delete("ali")

	req := httptest.NewRequest(http.MethodGet, "/auth/login/refresh", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)
	rec := httptest.NewRecorder()
	h.Refresh(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRefresh_MissingToken(t *testing.T) {
	t.Parallel()

	h, _, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/login/refresh", nil)
	rec := httptest.NewRecorder()
	h.Refresh(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMyOrders(t *testing.T) {
	t.Parallel()

	h, _, _ := newTestHandler(t)
	lister := &fakeOrderLister{orders: []orderentity.Detail{{ID: 1, Quantity: 2}}}
	h.orders = lister

	req := httptest.NewRequest(http.MethodGet, "/auth/orders", nil)
	ctx := auth.WithIdentity(req.Context(), &entity.User{ID: 7, Username: "ali"})
	rec := httptest.NewRecorder()
	h.MyOrders(rec, req.WithContext(ctx))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, int64(7), lister.userID)
	var got []orderentity.Detail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
}
