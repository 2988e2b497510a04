package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"messaging-service/internal/models"
	"messaging-service/internal/repositories"
)

// UserRepositoryMock is a testify mock of repositories.UserRepository.
type UserRepositoryMock struct {
	mock.Mock
}

var _ repositories.UserRepository = (*UserRepositoryMock)(nil)

func (m *UserRepositoryMock) GetBySubject(ctx context.Context, email string) (models.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *UserRepositoryMock) GetUserSummary(ctx context.Context, userID int) (models.UserSummary, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(models.UserSummary), args.Error(1)
}

func (m *UserRepositoryMock) SetOnline(ctx context.Context, userID int, online bool) error {
	args := m.Called(ctx, userID, online)
	return args.Error(0)
}

// ChatRepositoryMock is a testify mock of repositories.ChatRepository.
type ChatRepositoryMock struct {
	mock.Mock
}

var _ repositories.ChatRepository = (*ChatRepositoryMock)(nil)

func (m *ChatRepositoryMock) CreateChat(ctx context.Context, name, photo *string, chatType string, memberIDs []int) (models.ChatWithMembers, error) {
	args := m.Called(ctx, name, photo, chatType, memberIDs)
	return args.Get(0).(models.ChatWithMembers), args.Error(1)
}

func (m *ChatRepositoryMock) GetChatSummary(ctx context.Context, chatID int) (models.Chat, error) {
	args := m.Called(ctx, chatID)
	return args.Get(0).(models.Chat), args.Error(1)
}

func (m *ChatRepositoryMock) IsMember(ctx context.Context, chatID int, userID int) (bool, error) {
	args := m.Called(ctx, chatID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *ChatRepositoryMock) ListChats(ctx context.Context, userID int) ([]models.ChatWithMembers, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ChatWithMembers), args.Error(1)
}

// MessageRepositoryMock is a testify mock of repositories.MessageRepository.
type MessageRepositoryMock struct {
	mock.Mock
}

var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)

func (m *MessageRepositoryMock) CreateMessage(ctx context.Context, chatID int, senderID int, msgType string, content, filePath *string) (models.Message, error) {
	args := m.Called(ctx, chatID, senderID, msgType, content, filePath)
	return args.Get(0).(models.Message), args.Error(1)
}

func (m *MessageRepositoryMock) GetMessage(ctx context.Context, messageID int) (models.Message, error) {
	args := m.Called(ctx, messageID)
	return args.Get(0).(models.Message), args.Error(1)
}

func (m *MessageRepositoryMock) ListChatMessages(ctx context.Context, chatID int) ([]models.MessageWithReactions, error) {
	args := m.Called(ctx, chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MessageWithReactions), args.Error(1)
}

func (m *MessageRepositoryMock) AppendReader(ctx context.Context, messageID int, userID int) error {
	args := m.Called(ctx, messageID, userID)
	return args.Error(0)
}

// ReactionRepositoryMock is a testify mock of repositories.ReactionRepository.
type ReactionRepositoryMock struct {
	mock.Mock
}

var _ repositories.ReactionRepository = (*ReactionRepositoryMock)(nil)

func (m *ReactionRepositoryMock) CreateReaction(ctx context.Context, messageID int, userID int, code int) (models.Reaction, error) {
	args := m.Called(ctx, messageID, userID, code)
	return args.Get(0).(models.Reaction), args.Error(1)
}

// VerifierMock is a testify mock of identity.Verifier.
type VerifierMock struct {
	mock.Mock
}

func (m *VerifierMock) Verify(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}
