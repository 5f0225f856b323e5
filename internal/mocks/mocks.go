package mocks

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"chatsync-service/internal/auth"
	"chatsync-service/internal/blob"
	"chatsync-service/internal/models"
	"chatsync-service/internal/repositories"
)

type BlobStoreMock struct {
	mock.Mock
}

func (m *BlobStoreMock) Save(ctx context.Context, r io.Reader, contentType string) (string, error) {
	args := m.Called(ctx, r, contentType)
	return args.String(0), args.Error(1)
}

type IssuerMock struct {
	mock.Mock
}

func (m *IssuerMock) SignUp(ctx context.Context, name, number, email, password string) (models.User, string, error) {
	args := m.Called(ctx, name, number, email, password)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.String(1), args.Error(2)
}

func (m *IssuerMock) SignIn(ctx context.Context, email, password string) (models.User, string, error) {
	args := m.Called(ctx, email, password)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.String(1), args.Error(2)
}

func (m *IssuerMock) SignOut(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *IssuerMock) Authenticate(ctx context.Context, token string) (int, error) {
	args := m.Called(ctx, token)
	return args.Int(0), args.Error(1)
}

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) CreateUser(ctx context.Context, name, number, email, passwordHash string) (models.User, error) {
	args := m.Called(ctx, name, number, email, passwordHash)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetUser(ctx context.Context, userID int) (models.User, error) {
	args := m.Called(ctx, userID)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	args := m.Called(ctx, email)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetUserByNumber(ctx context.Context, number string) (models.User, error) {
	args := m.Called(ctx, number)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) UpdateProfile(ctx context.Context, userID int, name, number, imageURL *string) (models.User, error) {
	args := m.Called(ctx, userID, name, number, imageURL)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

type ChatRepositoryMock struct {
	mock.Mock
}

func (m *ChatRepositoryMock) CreateChat(ctx context.Context, a, b models.ChatUser) (models.Chat, error) {
	args := m.Called(ctx, a, b)
	var chat models.Chat
	if val := args.Get(0); val != nil {
		chat = val.(models.Chat)
	}
	return chat, args.Error(1)
}

func (m *ChatRepositoryMock) FindChatByNumbers(ctx context.Context, numberA, numberB string) (models.Chat, error) {
	args := m.Called(ctx, numberA, numberB)
	var chat models.Chat
	if val := args.Get(0); val != nil {
		chat = val.(models.Chat)
	}
	return chat, args.Error(1)
}

func (m *ChatRepositoryMock) GetChat(ctx context.Context, chatID int) (models.Chat, error) {
	args := m.Called(ctx, chatID)
	var chat models.Chat
	if val := args.Get(0); val != nil {
		chat = val.(models.Chat)
	}
	return chat, args.Error(1)
}

func (m *ChatRepositoryMock) ListChatsForUser(ctx context.Context, userID int, limit int) ([]models.Chat, error) {
	args := m.Called(ctx, userID, limit)
	var chats []models.Chat
	if val := args.Get(0); val != nil {
		chats = val.([]models.Chat)
	}
	return chats, args.Error(1)
}

func (m *ChatRepositoryMock) IsParticipant(ctx context.Context, chatID int, userID int) (bool, error) {
	args := m.Called(ctx, chatID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *ChatRepositoryMock) ContactIDs(ctx context.Context, userID int) ([]int, error) {
	args := m.Called(ctx, userID)
	var ids []int
	if val := args.Get(0); val != nil {
		ids = val.([]int)
	}
	return ids, args.Error(1)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) AppendMessage(ctx context.Context, chatID int, senderID int, content string) (models.Message, error) {
	args := m.Called(ctx, chatID, senderID, content)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) ListMessages(ctx context.Context, chatID int) ([]models.Message, error) {
	args := m.Called(ctx, chatID)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

type StatusRepositoryMock struct {
	mock.Mock
}

func (m *StatusRepositoryMock) CreateStatus(ctx context.Context, owner models.ChatUser, imageURL string, timestamp int64) (models.Status, error) {
	args := m.Called(ctx, owner, imageURL, timestamp)
	var status models.Status
	if val := args.Get(0); val != nil {
		status = val.(models.Status)
	}
	return status, args.Error(1)
}

func (m *StatusRepositoryMock) ListVisibleStatuses(ctx context.Context, cutoff int64, ownerIDs []int) ([]models.Status, error) {
	args := m.Called(ctx, cutoff, ownerIDs)
	var statuses []models.Status
	if val := args.Get(0); val != nil {
		statuses = val.([]models.Status)
	}
	return statuses, args.Error(1)
}

type SessionRepositoryMock struct {
	mock.Mock
}

func (m *SessionRepositoryMock) CreateSession(ctx context.Context, token string, userID int, expiresAt time.Time) (models.Session, error) {
	args := m.Called(ctx, token, userID, expiresAt)
	var session models.Session
	if val := args.Get(0); val != nil {
		session = val.(models.Session)
	}
	return session, args.Error(1)
}

func (m *SessionRepositoryMock) GetSession(ctx context.Context, token string) (models.Session, error) {
	args := m.Called(ctx, token)
	var session models.Session
	if val := args.Get(0); val != nil {
		session = val.(models.Session)
	}
	return session, args.Error(1)
}

func (m *SessionRepositoryMock) DeleteSession(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

var _ repositories.UserRepository = (*UserRepositoryMock)(nil)
var _ repositories.ChatRepository = (*ChatRepositoryMock)(nil)
var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ repositories.StatusRepository = (*StatusRepositoryMock)(nil)
var _ repositories.SessionRepository = (*SessionRepositoryMock)(nil)
var _ auth.Issuer = (*IssuerMock)(nil)
var _ blob.Store = (*BlobStoreMock)(nil)
