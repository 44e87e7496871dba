package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/skovalev/authcore/internal/model"
	"github.com/skovalev/authcore/internal/repository"
	"github.com/skovalev/authcore/internal/service"
	"github.com/skovalev/authcore/internal/token"
)

// ----- in-memory stores -----

type fakeUsers struct {
	byName map[string]*model.User
	nextID uint64
}

func newFakeUsers() *fakeUsers { return &fakeUsers{byName: map[string]*model.User{}} }

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	if _, ok := f.byName[u.Username]; ok {
		return repository.ErrUserExists
	}
	f.nextID++
	u.ID = f.nextID
	cp := *u
	f.byName[u.Username] = &cp
	return nil
}

func (f *fakeUsers) FindByName(_ context.Context, username string) (*model.User, error) {
	u, ok := f.byName[username]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, username, hash, stamp string) error {
	u, ok := f.byName[username]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.PasswordHash = hash
	u.SecurityStamp = stamp
	return nil
}

type fakeRoles struct {
	roles       map[string]bool
	assignments map[uint64][]string
}

func newFakeRoles() *fakeRoles {
	return &fakeRoles{roles: map[string]bool{}, assignments: map[uint64][]string{}}
}

func (f *fakeRoles) RoleExists(_ context.Context, name string) (bool, error) {
	return f.roles[name], nil
}

func (f *fakeRoles) CreateRole(_ context.Context, name string) error {
	if f.roles[name] {
		return repository.ErrRoleExists
	}
	f.roles[name] = true
	return nil
}

func (f *fakeRoles) AssignRole(_ context.Context, userID uint64, name string) error {
	f.assignments[userID] = append(f.assignments[userID], name)
	return nil
}

func (f *fakeRoles) RolesForUser(_ context.Context, userID uint64) ([]string, error) {
	return f.assignments[userID], nil
}

// ----- harness -----

func newTestHandler(t *testing.T) (*AuthHandler, *token.Service) {
	t.Helper()
	tokens := token.New(token.Config{
		Secret:   "test-secret",
		Issuer:   "authcore",
		Audience: "authcore-clients",
	})
	auth := service.NewAuth(newFakeUsers(), newFakeRoles(), tokens, service.NoopPublisher{}, bcrypt.MinCost)
	return NewAuthHandler(auth), tokens
}

func doJSON(t *testing.T, h echo.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) response {
	t.Helper()
	var r response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &r))
	return r
}

// ----- tests -----

func TestRegister_Created(t *testing.T) {
	t.Parallel()
	h, _ := newTestHandler(t)

	rec := doJSON(t, h.Register, `{"username":"alice","email":"a@x.com","password":"Abc123!"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	r := decodeResponse(t, rec)
	assert.Equal(t, "Success", r.Status)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	t.Parallel()
	h, _ := newTestHandler(t)

	doJSON(t, h.Register, `{"username":"alice","email":"a@x.com","password":"Abc123!"}`)
	rec := doJSON(t, h.Register, `{"username":"alice","email":"a2@x.com","password":"Abc123!"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User already exists", decodeResponse(t, rec).Message)
}

func TestRegister_MissingFields(t *testing.T) {
	t.Parallel()
	h, _ := newTestHandler(t)

	rec := doJSON(t, h.Register, `{"email":"a@x.com"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Error", decodeResponse(t, rec).Status)
}

func TestRegister_PolicyViolationDetail(t *testing.T) {
	t.Parallel()
	h, _ := newTestHandler(t)

	rec := doJSON(t, h.Register, `{"username":"bob","email":"b@x.com","password":"abcdef"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	msg := decodeResponse(t, rec).Message
	assert.Contains(t, msg, "digit")
	assert.Contains(t, msg, "uppercase")
	assert.Contains(t, msg, "non alphanumeric")
}

func TestLogin_Success(t *testing.T) {
	t.Parallel()
	h, tokens := newTestHandler(t)

	doJSON(t, h.Register, `{"username":"alice","email":"a@x.com","password":"Abc123!"}`)
	rec := doJSON(t, h.Login, `{"username":"alice","password":"Abc123!"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp loginResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	assert.WithinDuration(t, time.Now().Add(3*time.Hour), resp.Expiration, time.Minute)

	claims, err := tokens.Validate(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
}

func TestLogin_UnauthorizedWithoutDetail(t *testing.T) {
	t.Parallel()
	h, _ := newTestHandler(t)

	doJSON(t, h.Register, `{"username":"alice","email":"a@x.com","password":"Abc123!"}`)

	wrongPw := doJSON(t, h.Login, `{"username":"alice","password":"wrong"}`)
	unknown := doJSON(t, h.Login, `{"username":"nobody","password":"Abc123!"}`)

	assert.Equal(t, http.StatusUnauthorized, wrongPw.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	// No distinguishing signal: both bodies are empty.
	assert.Empty(t, wrongPw.Body.String())
	assert.Empty(t, unknown.Body.String())
}

func TestRegisterAdmin_GrantsAdminRole(t *testing.T) {
	t.Parallel()
	h, tokens := newTestHandler(t)

	rec := doJSON(t, h.RegisterAdmin, `{"username":"root","email":"r@x.com","password":"Abc123!"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	login := doJSON(t, h.Login, `{"username":"root","password":"Abc123!"}`)
	require.Equal(t, http.StatusOK, login.Code)

	var resp loginResp
	require.NoError(t, json.Unmarshal(login.Body.Bytes(), &resp))
	claims, err := tokens.Validate(resp.Token)
	require.NoError(t, err)
	assert.Contains(t, claims.Roles, service.RoleAdmin)
}

func TestChangePassword_UnknownUser(t *testing.T) {
	t.Parallel()
	h, _ := newTestHandler(t)

	rec := doJSON(t, h.ChangePassword,
		`{"username":"ghost","currentPassword":"x","newPassword":"Def456!","confirmNewPassword":"Def456!"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChangePassword_ConfirmationMismatch(t *testing.T) {
	t.Parallel()
	h, _ := newTestHandler(t)

	doJSON(t, h.Register, `{"username":"alice","email":"a@x.com","password":"Abc123!"}`)
	rec := doJSON(t, h.ChangePassword,
		`{"username":"alice","currentPassword":"Abc123!","newPassword":"Def456!","confirmNewPassword":"Def457!"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// The stored hash was not mutated: the old password still logs in.
	login := doJSON(t, h.Login, `{"username":"alice","password":"Abc123!"}`)
	assert.Equal(t, http.StatusOK, login.Code)
}

func TestChangePassword_WrongCurrentPassword(t *testing.T) {
	t.Parallel()
	h, _ := newTestHandler(t)

	doJSON(t, h.Register, `{"username":"alice","email":"a@x.com","password":"Abc123!"}`)
	rec := doJSON(t, h.ChangePassword,
		`{"username":"alice","currentPassword":"nope","newPassword":"Def456!","confirmNewPassword":"Def456!"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Incorrect password.", decodeResponse(t, rec).Message)
}

func TestChangePassword_Success(t *testing.T) {
	t.Parallel()
	h, _ := newTestHandler(t)

	doJSON(t, h.Register, `{"username":"alice","email":"a@x.com","password":"Abc123!"}`)
	rec := doJSON(t, h.ChangePassword,
		`{"username":"alice","currentPassword":"Abc123!","newPassword":"Def456!","confirmNewPassword":"Def456!"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Password successfully changed.", decodeResponse(t, rec).Message)

	old := doJSON(t, h.Login, `{"username":"alice","password":"Abc123!"}`)
	assert.Equal(t, http.StatusUnauthorized, old.Code)
	fresh := doJSON(t, h.Login, `{"username":"alice","password":"Def456!"}`)
	assert.Equal(t, http.StatusOK, fresh.Code)
}
