package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"chatsync-service/internal/auth"
	"chatsync-service/internal/mocks"
	"chatsync-service/internal/models"
	"chatsync-service/pkg/errors"
)

func TestSignUpHashesPassword(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	sessions := new(mocks.SessionRepositoryMock)
	svc := auth.NewService(users, sessions, time.Hour)

	users.On("CreateUser", mock.Anything, "alice", "111", "a@b.c", mock.MatchedBy(func(hash string) bool {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte("secret-pass")) == nil
	})).Return(models.User{ID: 1, Name: "alice"}, nil).Once()
	sessions.On("CreateSession", mock.Anything, mock.AnythingOfType("string"), 1, mock.AnythingOfType("time.Time")).
		Return(models.Session{UserID: 1}, nil).Once()

	user, token, err := svc.SignUp(context.Background(), "alice", "111", "a@b.c", "secret-pass")
	require.NoError(t, err)
	assert.Equal(t, 1, user.ID)
	assert.NotEmpty(t, token)
	users.AssertExpectations(t)
	sessions.AssertExpectations(t)
}

func TestSignUpShortPassword(t *testing.T) {
	svc := auth.NewService(new(mocks.UserRepositoryMock), new(mocks.SessionRepositoryMock), time.Hour)

	_, _, err := svc.SignUp(context.Background(), "alice", "111", "a@b.c", "short")
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidArgument, errors.CodeOf(err))
}

func TestSignInSuccess(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	sessions := new(mocks.SessionRepositoryMock)
	svc := auth.NewService(users, sessions, time.Hour)

	hash, err := bcrypt.GenerateFromPassword([]byte("secret-pass"), bcrypt.MinCost)
	require.NoError(t, err)

	users.On("GetUserByEmail", mock.Anything, "a@b.c").
		Return(models.User{ID: 1, Email: "a@b.c", PasswordHash: string(hash)}, nil).Once()
	sessions.On("CreateSession", mock.Anything, mock.AnythingOfType("string"), 1, mock.AnythingOfType("time.Time")).
		Return(models.Session{UserID: 1}, nil).Once()

	user, token, err := svc.SignIn(context.Background(), "a@b.c", "secret-pass")
	require.NoError(t, err)
	assert.Equal(t, 1, user.ID)
	assert.NotEmpty(t, token)
	users.AssertExpectations(t)
	sessions.AssertExpectations(t)
}

func TestSignInWrongPassword(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	svc := auth.NewService(users, new(mocks.SessionRepositoryMock), time.Hour)

	hash, err := bcrypt.GenerateFromPassword([]byte("secret-pass"), bcrypt.MinCost)
	require.NoError(t, err)

	users.On("GetUserByEmail", mock.Anything, "a@b.c").
		Return(models.User{ID: 1, PasswordHash: string(hash)}, nil).Once()

	_, _, err = svc.SignIn(context.Background(), "a@b.c", "wrong-pass")
	assert.ErrorIs(t, err, errors.ErrInvalidCredentials)
	users.AssertExpectations(t)
}

func TestSignInUnknownEmailIndistinguishable(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	svc := auth.NewService(users, new(mocks.SessionRepositoryMock), time.Hour)

	users.On("GetUserByEmail", mock.Anything, "nobody@b.c").
		Return(models.User{}, errors.ErrUserNotFound).Once()

	_, _, err := svc.SignIn(context.Background(), "nobody@b.c", "whatever-pass")
	assert.ErrorIs(t, err, errors.ErrInvalidCredentials)
	users.AssertExpectations(t)
}

func TestAuthenticateResolvesSession(t *testing.T) {
	sessions := new(mocks.SessionRepositoryMock)
	svc := auth.NewService(new(mocks.UserRepositoryMock), sessions, time.Hour)

	sessions.On("GetSession", mock.Anything, "tok-1").
		Return(models.Session{Token: "tok-1", UserID: 7}, nil).Once()

	userID, err := svc.Authenticate(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.Equal(t, 7, userID)
	sessions.AssertExpectations(t)
}

func TestAuthenticateInvalidToken(t *testing.T) {
	sessions := new(mocks.SessionRepositoryMock)
	svc := auth.NewService(new(mocks.UserRepositoryMock), sessions, time.Hour)

	sessions.On("GetSession", mock.Anything, "bad").
		Return(models.Session{}, errors.ErrInvalidToken).Once()

	_, err := svc.Authenticate(context.Background(), "bad")
	assert.ErrorIs(t, err, errors.ErrInvalidToken)
	sessions.AssertExpectations(t)
}

func TestSignOutDelegates(t *testing.T) {
	sessions := new(mocks.SessionRepositoryMock)
	svc := auth.NewService(new(mocks.UserRepositoryMock), sessions, time.Hour)

	sessions.On("DeleteSession", mock.Anything, "tok-1").Return(nil).Once()

	require.NoError(t, svc.SignOut(context.Background(), "tok-1"))
	sessions.AssertExpectations(t)
}
