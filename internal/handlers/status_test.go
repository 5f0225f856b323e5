package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"chatsync-service/internal/mocks"
	"chatsync-service/internal/models"
	"chatsync-service/internal/stream"
)

func setupStatusRouter(handler *StatusHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Next()
	})
	r.GET("/statuses", handler.ListStatuses)
	r.POST("/statuses", handler.CreateStatus)
	return r
}

func TestListStatusesScopedToContacts(t *testing.T) {
	statusRepo := new(mocks.StatusRepositoryMock)
	chatRepo := new(mocks.ChatRepositoryMock)
	handler := NewStatusHandler(statusRepo, chatRepo, nil, nil, stream.NewBus(), nil, 24*time.Hour)
	router := setupStatusRouter(handler)

	before := time.Now().Add(-24 * time.Hour).UnixMilli()
	chatRepo.On("ContactIDs", mock.Anything, 1).Return([]int{1, 2}, nil).Once()
	statusRepo.On("ListVisibleStatuses", mock.Anything, mock.MatchedBy(func(cutoff int64) bool {
		after := time.Now().Add(-24 * time.Hour).UnixMilli()
		return cutoff >= before && cutoff <= after
	}), []int{1, 2}).Return([]models.Status{
		{ID: 9, User: models.ChatUser{UserID: 2}, ImageURL: "/uploads/s.jpg", Timestamp: time.Now().UnixMilli()},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/statuses", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Statuses []models.Status `json:"statuses"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Statuses, 1)
	assert.Equal(t, 9, resp.Statuses[0].ID)
	chatRepo.AssertExpectations(t)
	statusRepo.AssertExpectations(t)
}

func TestListStatusesEmpty(t *testing.T) {
	statusRepo := new(mocks.StatusRepositoryMock)
	chatRepo := new(mocks.ChatRepositoryMock)
	handler := NewStatusHandler(statusRepo, chatRepo, nil, nil, stream.NewBus(), nil, 24*time.Hour)
	router := setupStatusRouter(handler)

	chatRepo.On("ContactIDs", mock.Anything, 1).Return([]int{1}, nil).Once()
	statusRepo.On("ListVisibleStatuses", mock.Anything, mock.Anything, []int{1}).Return(([]models.Status)(nil), nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/statuses", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"statuses":[]}`, rec.Body.String())
	chatRepo.AssertExpectations(t)
	statusRepo.AssertExpectations(t)
}

func TestCreateStatusSuccess(t *testing.T) {
	statusRepo := new(mocks.StatusRepositoryMock)
	userRepo := new(mocks.UserRepositoryMock)
	blobs := new(mocks.BlobStoreMock)
	bus := stream.NewBus()
	handler := NewStatusHandler(statusRepo, new(mocks.ChatRepositoryMock), userRepo, blobs, bus, nil, 24*time.Hour)
	router := setupStatusRouter(handler)

	sub := bus.Subscribe(stream.TopicStatuses)
	defer sub.Cancel()

	owner := models.User{ID: 1, Name: "alice", Number: "111"}
	userRepo.On("GetUser", mock.Anything, 1).Return(owner, nil).Once()
	blobs.On("Save", mock.Anything, mock.Anything, mock.Anything).Return("/uploads/s.jpg", nil).Once()
	statusRepo.On("CreateStatus", mock.Anything, models.Snapshot(owner), "/uploads/s.jpg", mock.AnythingOfType("int64")).
		Return(models.Status{ID: 3, User: models.Snapshot(owner), ImageURL: "/uploads/s.jpg"}, nil).Once()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", "status.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("payload"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/statuses", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	select {
	case <-sub.Notify():
	default:
		t.Fatal("expected a status topic notification")
	}
	statusRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
	blobs.AssertExpectations(t)
}

func TestCreateStatusMissingFile(t *testing.T) {
	handler := NewStatusHandler(new(mocks.StatusRepositoryMock), new(mocks.ChatRepositoryMock), new(mocks.UserRepositoryMock), new(mocks.BlobStoreMock), stream.NewBus(), nil, 24*time.Hour)
	router := setupStatusRouter(handler)

	req := httptest.NewRequest(http.MethodPost, "/statuses", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
