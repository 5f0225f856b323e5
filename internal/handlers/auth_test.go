package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"chatsync-service/internal/mocks"
	"chatsync-service/internal/models"
	"chatsync-service/pkg/errors"
)

func setupAuthRouter(handler *AuthHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/auth/signup", handler.SignUp)
	r.POST("/auth/login", handler.Login)
	r.POST("/auth/logout", func(c *gin.Context) {
		c.Set("userID", 1)
		c.Set("token", "tok-1")
		c.Next()
	}, handler.Logout)
	return r
}

func TestSignUpSuccess(t *testing.T) {
	issuer := new(mocks.IssuerMock)
	handler := NewAuthHandler(issuer, nil)
	router := setupAuthRouter(handler)

	issuer.On("SignUp", mock.Anything, "alice", "111", "a@b.c", "secret-pass").
		Return(models.User{ID: 1, Name: "alice", Number: "111", Email: "a@b.c"}, "tok-1", nil).Once()

	body := bytes.NewBufferString(`{"name":"alice","number":"111","email":"a@b.c","password":"secret-pass"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/signup", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "tok-1", resp.Token)
	assert.Equal(t, 1, resp.User.ID)
	issuer.AssertExpectations(t)
}

func TestSignUpMissingFields(t *testing.T) {
	handler := NewAuthHandler(new(mocks.IssuerMock), nil)
	router := setupAuthRouter(handler)

	req := httptest.NewRequest(http.MethodPost, "/auth/signup", bytes.NewBufferString(`{"name":"alice"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "please enter all fields")
}

func TestSignUpRejectsNonDigitNumber(t *testing.T) {
	handler := NewAuthHandler(new(mocks.IssuerMock), nil)
	router := setupAuthRouter(handler)

	body := bytes.NewBufferString(`{"name":"alice","number":"11a","email":"a@b.c","password":"secret-pass"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/signup", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "number must contain digits only")
}

func TestSignUpNumberTaken(t *testing.T) {
	issuer := new(mocks.IssuerMock)
	handler := NewAuthHandler(issuer, nil)
	router := setupAuthRouter(handler)

	issuer.On("SignUp", mock.Anything, "alice", "111", "a@b.c", "secret-pass").
		Return(models.User{}, "", errors.ErrNumberTaken).Once()

	body := bytes.NewBufferString(`{"name":"alice","number":"111","email":"a@b.c","password":"secret-pass"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/signup", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	issuer.AssertExpectations(t)
}

func TestLoginSuccess(t *testing.T) {
	issuer := new(mocks.IssuerMock)
	handler := NewAuthHandler(issuer, nil)
	router := setupAuthRouter(handler)

	issuer.On("SignIn", mock.Anything, "a@b.c", "secret-pass").
		Return(models.User{ID: 1, Email: "a@b.c"}, "tok-1", nil).Once()

	body := bytes.NewBufferString(`{"email":"a@b.c","password":"secret-pass"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "tok-1")
	issuer.AssertExpectations(t)
}

func TestLoginBadCredentials(t *testing.T) {
	issuer := new(mocks.IssuerMock)
	handler := NewAuthHandler(issuer, nil)
	router := setupAuthRouter(handler)

	issuer.On("SignIn", mock.Anything, "a@b.c", "wrong").
		Return(models.User{}, "", errors.ErrInvalidCredentials).Once()

	body := bytes.NewBufferString(`{"email":"a@b.c","password":"wrong"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	issuer.AssertExpectations(t)
}

func TestLogout(t *testing.T) {
	issuer := new(mocks.IssuerMock)
	handler := NewAuthHandler(issuer, nil)
	router := setupAuthRouter(handler)

	issuer.On("SignOut", mock.Anything, "tok-1").Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	issuer.AssertExpectations(t)
}
