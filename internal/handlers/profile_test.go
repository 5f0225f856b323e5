package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"chatsync-service/internal/mocks"
	"chatsync-service/internal/models"
)

func setupProfileRouter(handler *ProfileHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Next()
	})
	r.GET("/me", handler.Me)
	r.PATCH("/me", handler.Update)
	r.POST("/me/avatar", handler.UploadAvatar)
	return r
}

func TestMeSuccess(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewProfileHandler(userRepo, nil, nil)
	router := setupProfileRouter(handler)

	userRepo.On("GetUser", mock.Anything, 1).Return(models.User{ID: 1, Name: "alice", Number: "111"}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var user models.User
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&user))
	assert.Equal(t, "alice", user.Name)
	userRepo.AssertExpectations(t)
}

func TestUpdateMergesOnlyGivenFields(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewProfileHandler(userRepo, nil, nil)
	router := setupProfileRouter(handler)

	name := "alice2"
	userRepo.On("UpdateProfile", mock.Anything, 1, &name, (*string)(nil), (*string)(nil)).
		Return(models.User{ID: 1, Name: "alice2", Number: "111"}, nil).Once()

	req := httptest.NewRequest(http.MethodPatch, "/me", bytes.NewBufferString(`{"name":"alice2"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var user models.User
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&user))
	assert.Equal(t, "alice2", user.Name)
	assert.Equal(t, "111", user.Number)
	userRepo.AssertExpectations(t)
}

func TestUpdateRejectsNonDigitNumber(t *testing.T) {
	handler := NewProfileHandler(new(mocks.UserRepositoryMock), nil, nil)
	router := setupProfileRouter(handler)

	req := httptest.NewRequest(http.MethodPatch, "/me", bytes.NewBufferString(`{"number":"12x"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadAvatar(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	blobs := new(mocks.BlobStoreMock)
	handler := NewProfileHandler(userRepo, blobs, nil)
	router := setupProfileRouter(handler)

	url := "/uploads/abc.jpg"
	blobs.On("Save", mock.Anything, mock.Anything, mock.Anything).Return(url, nil).Once()
	userRepo.On("UpdateProfile", mock.Anything, 1, (*string)(nil), (*string)(nil), &url).
		Return(models.User{ID: 1, Name: "alice", ImageURL: &url}, nil).Once()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", "avatar.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("not really a jpeg"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/me/avatar", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), url)
	blobs.AssertExpectations(t)
	userRepo.AssertExpectations(t)
}

func TestUploadAvatarMissingFile(t *testing.T) {
	handler := NewProfileHandler(new(mocks.UserRepositoryMock), new(mocks.BlobStoreMock), nil)
	router := setupProfileRouter(handler)

	req := httptest.NewRequest(http.MethodPost, "/me/avatar", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
