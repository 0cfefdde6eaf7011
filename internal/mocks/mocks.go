package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"polychat/internal/models"
	"polychat/internal/repositories"
)

type ChatRepositoryMock struct {
	mock.Mock
}

func (m *ChatRepositoryMock) CreateDirectChat(ctx context.Context, userID int, participantID int) (models.Chat, error) {
	args := m.Called(ctx, userID, participantID)
	var chat models.Chat
	if val := args.Get(0); val != nil {
		chat = val.(models.Chat)
	}
	return chat, args.Error(1)
}

func (m *ChatRepositoryMock) CreateGroupChat(ctx context.Context, creatorID int, name string, memberIDs []int) (models.Chat, error) {
	args := m.Called(ctx, creatorID, name, memberIDs)
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

func (m *ChatRepositoryMock) IsParticipant(ctx context.Context, chatID int, userID int) (bool, error) {
	args := m.Called(ctx, chatID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *ChatRepositoryMock) ListChatsForUser(ctx context.Context, userID int) ([]models.Chat, error) {
	args := m.Called(ctx, userID)
	var chats []models.Chat
	if val := args.Get(0); val != nil {
		chats = val.([]models.Chat)
	}
	return chats, args.Error(1)
}

func (m *ChatRepositoryMock) TouchLastMessage(ctx context.Context, chatID int, at time.Time) error {
	args := m.Called(ctx, chatID, at)
	return args.Error(0)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) CreateMessage(ctx context.Context, fields models.NewMessage) (models.Message, error) {
	args := m.Called(ctx, fields)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) GetMessage(ctx context.Context, messageID int) (models.Message, error) {
	args := m.Called(ctx, messageID)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) ListMessages(ctx context.Context, chatID int, limit int) ([]models.Message, error) {
	args := m.Called(ctx, chatID, limit)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) ListRecentTextMessages(ctx context.Context, chatID int, limit int) ([]models.Message, error) {
	args := m.Called(ctx, chatID, limit)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) MessagesByIDs(ctx context.Context, messageIDs []int) (map[int]models.Message, error) {
	args := m.Called(ctx, messageIDs)
	var msgs map[int]models.Message
	if val := args.Get(0); val != nil {
		msgs = val.(map[int]models.Message)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) LastMessage(ctx context.Context, chatID int) (models.Message, error) {
	args := m.Called(ctx, chatID)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

type TranslationRepositoryMock struct {
	mock.Mock
}

func (m *TranslationRepositoryMock) TryInsert(ctx context.Context, tr models.Translation) (bool, error) {
	args := m.Called(ctx, tr)
	return args.Bool(0), args.Error(1)
}

func (m *TranslationRepositoryMock) GetTranslation(ctx context.Context, messageID int, targetLanguage string) (models.Translation, error) {
	args := m.Called(ctx, messageID, targetLanguage)
	var tr models.Translation
	if val := args.Get(0); val != nil {
		tr = val.(models.Translation)
	}
	return tr, args.Error(1)
}

func (m *TranslationRepositoryMock) TranslationsForMessages(ctx context.Context, messageIDs []int, targetLanguage string) (map[int]models.Translation, error) {
	args := m.Called(ctx, messageIDs, targetLanguage)
	var trs map[int]models.Translation
	if val := args.Get(0); val != nil {
		trs = val.(map[int]models.Translation)
	}
	return trs, args.Error(1)
}

type ProfileRepositoryMock struct {
	mock.Mock
}

func (m *ProfileRepositoryMock) GetProfile(ctx context.Context, userID int) (models.Profile, error) {
	args := m.Called(ctx, userID)
	var profile models.Profile
	if val := args.Get(0); val != nil {
		profile = val.(models.Profile)
	}
	return profile, args.Error(1)
}

func (m *ProfileRepositoryMock) UpsertProfile(ctx context.Context, userID int, name, preferredLanguage string) (models.Profile, error) {
	args := m.Called(ctx, userID, name, preferredLanguage)
	var profile models.Profile
	if val := args.Get(0); val != nil {
		profile = val.(models.Profile)
	}
	return profile, args.Error(1)
}

func (m *ProfileRepositoryMock) UpdateStatus(ctx context.Context, userID int, status string) error {
	args := m.Called(ctx, userID, status)
	return args.Error(0)
}

func (m *ProfileRepositoryMock) ProfilesByUserIDs(ctx context.Context, userIDs []int) (map[int]models.Profile, error) {
	args := m.Called(ctx, userIDs)
	var profiles map[int]models.Profile
	if val := args.Get(0); val != nil {
		profiles = val.(map[int]models.Profile)
	}
	return profiles, args.Error(1)
}

func (m *ProfileRepositoryMock) SearchProfiles(ctx context.Context, query string, limit int) ([]models.Profile, error) {
	args := m.Called(ctx, query, limit)
	var profiles []models.Profile
	if val := args.Get(0); val != nil {
		profiles = val.([]models.Profile)
	}
	return profiles, args.Error(1)
}

func (m *ProfileRepositoryMock) EnsureAssistant(ctx context.Context) (models.Profile, error) {
	args := m.Called(ctx)
	var profile models.Profile
	if val := args.Get(0); val != nil {
		profile = val.(models.Profile)
	}
	return profile, args.Error(1)
}

type StickerRepositoryMock struct {
	mock.Mock
}

func (m *StickerRepositoryMock) ListStickers(ctx context.Context, category string) ([]models.Sticker, error) {
	args := m.Called(ctx, category)
	var stickers []models.Sticker
	if val := args.Get(0); val != nil {
		stickers = val.([]models.Sticker)
	}
	return stickers, args.Error(1)
}

func (m *StickerRepositoryMock) GetSticker(ctx context.Context, stickerID int) (models.Sticker, error) {
	args := m.Called(ctx, stickerID)
	var sticker models.Sticker
	if val := args.Get(0); val != nil {
		sticker = val.(models.Sticker)
	}
	return sticker, args.Error(1)
}

type ProviderMock struct {
	mock.Mock
}

func (m *ProviderMock) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	args := m.Called(ctx, text, sourceLang, targetLang)
	return args.String(0), args.Error(1)
}

type ResponderMock struct {
	mock.Mock
}

func (m *ResponderMock) Generate(ctx context.Context, transcript, chatName string) (string, error) {
	args := m.Called(ctx, transcript, chatName)
	return args.String(0), args.Error(1)
}

type PipelineMock struct {
	mock.Mock
}

func (m *PipelineMock) ScheduleTranslation(ctx context.Context, msg models.Message, senderLanguage string) error {
	args := m.Called(ctx, msg, senderLanguage)
	return args.Error(0)
}

func (m *PipelineMock) ScheduleAssistant(ctx context.Context, chatID, messageID int) error {
	args := m.Called(ctx, chatID, messageID)
	return args.Error(0)
}

type BroadcasterMock struct {
	mock.Mock
}

func (m *BroadcasterMock) BroadcastMessage(chatID int, msg models.Message) {
	m.Called(chatID, msg)
}

func (m *BroadcasterMock) BroadcastTranslation(chatID int, tr models.Translation) {
	m.Called(chatID, tr)
}

var _ repositories.ChatRepository = (*ChatRepositoryMock)(nil)
var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ repositories.TranslationRepository = (*TranslationRepositoryMock)(nil)
var _ repositories.ProfileRepository = (*ProfileRepositoryMock)(nil)
var _ repositories.StickerRepository = (*StickerRepositoryMock)(nil)
