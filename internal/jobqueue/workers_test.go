package jobqueue

import (
	"context"
	"testing"
	"time"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"polychat/internal/mocks"
	"polychat/internal/models"
	"polychat/internal/repositories"
)

type workerMocks struct {
	chats        *mocks.ChatRepositoryMock
	messages     *mocks.MessageRepositoryMock
	translations *mocks.TranslationRepositoryMock
	profiles     *mocks.ProfileRepositoryMock
	provider     *mocks.ProviderMock
	responder    *mocks.ResponderMock
	hub          *mocks.BroadcasterMock
}

func newWorkerMocks() workerMocks {
	return workerMocks{
		chats:        new(mocks.ChatRepositoryMock),
		messages:     new(mocks.MessageRepositoryMock),
		translations: new(mocks.TranslationRepositoryMock),
		profiles:     new(mocks.ProfileRepositoryMock),
		provider:     new(mocks.ProviderMock),
		responder:    new(mocks.ResponderMock),
		hub:          new(mocks.BroadcasterMock),
	}
}

func (wm workerMocks) deps() WorkerDeps {
	return WorkerDeps{
		Chats:           wm.chats,
		Messages:        wm.messages,
		Translations:    wm.translations,
		Profiles:        wm.profiles,
		Provider:        wm.provider,
		Responder:       wm.responder,
		Hub:             wm.hub,
		ProviderTimeout: 5 * time.Second,
	}
}

func (wm workerMocks) assertExpectations(t *testing.T) {
	t.Helper()
	wm.chats.AssertExpectations(t)
	wm.messages.AssertExpectations(t)
	wm.translations.AssertExpectations(t)
	wm.profiles.AssertExpectations(t)
	wm.provider.AssertExpectations(t)
	wm.responder.AssertExpectations(t)
	wm.hub.AssertExpectations(t)
}

func translationJob(args TranslationFanOutArgs) *river.Job[TranslationFanOutArgs] {
	return &river.Job[TranslationFanOutArgs]{JobRow: &rivertype.JobRow{ID: 1}, Args: args}
}

func assistantJob(args AssistantMentionArgs) *river.Job[AssistantMentionArgs] {
	return &river.Job[AssistantMentionArgs]{JobRow: &rivertype.JobRow{ID: 2}, Args: args}
}

func TestTranslationWorkerFansOutPerLanguage(t *testing.T) {
	wm := newWorkerMocks()
	worker := NewTranslationWorker(wm.deps())

	msg := models.Message{ID: 7, ChatID: 5, SenderID: 1, Kind: models.MessageKindText, Content: "hello"}
	wm.messages.On("GetMessage", mock.Anything, 7).Return(msg, nil).Once()
	wm.chats.On("GetChat", mock.Anything, 5).Return(models.Chat{ID: 5, Participants: []int{1, 2, 3}}, nil).Once()
	wm.profiles.On("ProfilesByUserIDs", mock.Anything, []int{1, 2, 3}).Return(map[int]models.Profile{
		1: {UserID: 1, PreferredLanguage: "en"},
		2: {UserID: 2, PreferredLanguage: "es"},
		3: {UserID: 3, PreferredLanguage: "fr"},
	}, nil).Once()

	wm.provider.On("Translate", mock.Anything, "hello", "en", "es").Return("hola", nil).Once()
	wm.provider.On("Translate", mock.Anything, "hello", "en", "fr").Return("bonjour", nil).Once()

	wm.translations.On("TryInsert", mock.Anything, mock.MatchedBy(func(tr models.Translation) bool {
		return tr.MessageID == 7 && tr.TargetLanguage == "es" && tr.TranslatedText == "hola"
	})).Return(true, nil).Once()
	wm.translations.On("TryInsert", mock.Anything, mock.MatchedBy(func(tr models.Translation) bool {
		return tr.MessageID == 7 && tr.TargetLanguage == "fr" && tr.TranslatedText == "bonjour"
	})).Return(true, nil).Once()
	wm.translations.On("GetTranslation", mock.Anything, 7, "es").Return(models.Translation{MessageID: 7, TargetLanguage: "es", TranslatedText: "hola"}, nil).Once()
	wm.translations.On("GetTranslation", mock.Anything, 7, "fr").Return(models.Translation{MessageID: 7, TargetLanguage: "fr", TranslatedText: "bonjour"}, nil).Once()
	wm.hub.On("BroadcastTranslation", 5, mock.Anything).Twice()

	err := worker.Work(context.Background(), translationJob(TranslationFanOutArgs{
		MessageID: 7, ChatID: 5, OriginalText: "hello", SenderLanguage: "en",
	}))

	require.NoError(t, err)
	wm.assertExpectations(t)
}

func TestTranslationWorkerDuplicateIsNoOp(t *testing.T) {
	wm := newWorkerMocks()
	worker := NewTranslationWorker(wm.deps())

	msg := models.Message{ID: 7, ChatID: 5, SenderID: 1, Kind: models.MessageKindText, Content: "hello"}
	wm.messages.On("GetMessage", mock.Anything, 7).Return(msg, nil).Once()
	wm.chats.On("GetChat", mock.Anything, 5).Return(models.Chat{ID: 5, Participants: []int{1, 2}}, nil).Once()
	wm.profiles.On("ProfilesByUserIDs", mock.Anything, []int{1, 2}).Return(map[int]models.Profile{
		1: {UserID: 1, PreferredLanguage: "en"},
		2: {UserID: 2, PreferredLanguage: "es"},
	}, nil).Once()
	wm.provider.On("Translate", mock.Anything, "hello", "en", "es").Return("hola", nil).Once()
	wm.translations.On("TryInsert", mock.Anything, mock.Anything).Return(false, nil).Once()

	err := worker.Work(context.Background(), translationJob(TranslationFanOutArgs{
		MessageID: 7, ChatID: 5, OriginalText: "hello", SenderLanguage: "en",
	}))

	require.NoError(t, err)
	wm.hub.AssertNotCalled(t, "BroadcastTranslation", mock.Anything, mock.Anything)
	wm.assertExpectations(t)
}

func TestTranslationWorkerProviderFailureIsIsolated(t *testing.T) {
	wm := newWorkerMocks()
	worker := NewTranslationWorker(wm.deps())

	msg := models.Message{ID: 7, ChatID: 5, SenderID: 1, Kind: models.MessageKindText, Content: "hello"}
	wm.messages.On("GetMessage", mock.Anything, 7).Return(msg, nil).Once()
	wm.chats.On("GetChat", mock.Anything, 5).Return(models.Chat{ID: 5, Participants: []int{1, 2, 3}}, nil).Once()
	wm.profiles.On("ProfilesByUserIDs", mock.Anything, []int{1, 2, 3}).Return(map[int]models.Profile{
		1: {UserID: 1, PreferredLanguage: "en"},
		2: {UserID: 2, PreferredLanguage: "es"},
		3: {UserID: 3, PreferredLanguage: "fr"},
	}, nil).Once()

	wm.provider.On("Translate", mock.Anything, "hello", "en", "es").Return("", assert.AnError).Once()
	wm.provider.On("Translate", mock.Anything, "hello", "en", "fr").Return("bonjour", nil).Once()
	wm.translations.On("TryInsert", mock.Anything, mock.MatchedBy(func(tr models.Translation) bool {
		return tr.TargetLanguage == "fr"
	})).Return(true, nil).Once()
	wm.translations.On("GetTranslation", mock.Anything, 7, "fr").Return(models.Translation{MessageID: 7, TargetLanguage: "fr", TranslatedText: "bonjour"}, nil).Once()
	wm.hub.On("BroadcastTranslation", 5, mock.Anything).Once()

	err := worker.Work(context.Background(), translationJob(TranslationFanOutArgs{
		MessageID: 7, ChatID: 5, OriginalText: "hello", SenderLanguage: "en",
	}))

	require.NoError(t, err)
	wm.assertExpectations(t)
}

func TestTranslationWorkerSkipsUnchangedResult(t *testing.T) {
	wm := newWorkerMocks()
	worker := NewTranslationWorker(wm.deps())

	msg := models.Message{ID: 7, ChatID: 5, SenderID: 1, Kind: models.MessageKindText, Content: "OK"}
	wm.messages.On("GetMessage", mock.Anything, 7).Return(msg, nil).Once()
	wm.chats.On("GetChat", mock.Anything, 5).Return(models.Chat{ID: 5, Participants: []int{1, 2}}, nil).Once()
	wm.profiles.On("ProfilesByUserIDs", mock.Anything, []int{1, 2}).Return(map[int]models.Profile{
		1: {UserID: 1, PreferredLanguage: "en"},
		2: {UserID: 2, PreferredLanguage: "es"},
	}, nil).Once()
	wm.provider.On("Translate", mock.Anything, "OK", "en", "es").Return("  ok ", nil).Once()

	err := worker.Work(context.Background(), translationJob(TranslationFanOutArgs{
		MessageID: 7, ChatID: 5, OriginalText: "OK", SenderLanguage: "en",
	}))

	require.NoError(t, err)
	wm.translations.AssertNotCalled(t, "TryInsert", mock.Anything, mock.Anything)
	wm.assertExpectations(t)
}

func TestTranslationWorkerMessageVanished(t *testing.T) {
	wm := newWorkerMocks()
	worker := NewTranslationWorker(wm.deps())

	wm.messages.On("GetMessage", mock.Anything, 7).Return(models.Message{}, repositories.ErrMessageNotFound).Once()

	err := worker.Work(context.Background(), translationJob(TranslationFanOutArgs{
		MessageID: 7, ChatID: 5, OriginalText: "hello", SenderLanguage: "en",
	}))

	require.NoError(t, err)
	wm.provider.AssertNotCalled(t, "Translate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	wm.translations.AssertNotCalled(t, "TryInsert", mock.Anything, mock.Anything)
	wm.assertExpectations(t)
}

func TestAssistantWorkerPostsOneReply(t *testing.T) {
	wm := newWorkerMocks()
	worker := NewAssistantWorker(wm.deps())

	chat := models.Chat{ID: 5, Type: models.ChatTypeGroup, Name: "Team", Participants: []int{1, 2}}
	history := []models.Message{
		{ID: 1, ChatID: 5, SenderID: 1, Content: "hi"},
		{ID: 2, ChatID: 5, SenderID: 2, Content: "hello"},
		{ID: 3, ChatID: 5, SenderID: 1, Content: "@assistant summarize"},
	}

	wm.chats.On("GetChat", mock.Anything, 5).Return(chat, nil).Once()
	wm.messages.On("ListRecentTextMessages", mock.Anything, 5, 20).Return(history, nil).Once()
	wm.profiles.On("ProfilesByUserIDs", mock.Anything, []int{1, 2, 1}).Return(map[int]models.Profile{
		1: {UserID: 1, Name: "Ana"},
		2: {UserID: 2, Name: "Bob"},
	}, nil).Once()
	wm.responder.On("Generate", mock.Anything, "Ana: hi\nBob: hello\nAna: @assistant summarize", "Team").
		Return("Here is a summary.", nil).Once()
	wm.profiles.On("EnsureAssistant", mock.Anything).Return(models.Profile{UserID: 99, Name: "AI Assistant", PreferredLanguage: "en", IsAssistant: true}, nil).Once()

	stored := models.Message{ID: 4, ChatID: 5, SenderID: 99, Kind: models.MessageKindText, Content: "Here is a summary.", FromAssistant: true, CreatedAt: time.Now()}
	wm.messages.On("CreateMessage", mock.Anything, mock.MatchedBy(func(fields models.NewMessage) bool {
		return fields.ChatID == 5 && fields.SenderID == 99 && fields.FromAssistant && fields.Content == "Here is a summary."
	})).Return(stored, nil).Once()
	wm.chats.On("TouchLastMessage", mock.Anything, 5, stored.CreatedAt).Return(nil).Once()
	wm.hub.On("BroadcastMessage", 5, stored).Once()

	err := worker.Work(context.Background(), assistantJob(AssistantMentionArgs{ChatID: 5, MessageID: 3}))

	require.NoError(t, err)
	wm.messages.AssertNumberOfCalls(t, "CreateMessage", 1)
	wm.assertExpectations(t)
}

func TestAssistantWorkerGenerationFailureStoresNothing(t *testing.T) {
	wm := newWorkerMocks()
	worker := NewAssistantWorker(wm.deps())

	chat := models.Chat{ID: 5, Type: models.ChatTypeDirect, Participants: []int{1, 2}}
	history := []models.Message{{ID: 3, ChatID: 5, SenderID: 1, Content: "@assistant help"}}

	wm.chats.On("GetChat", mock.Anything, 5).Return(chat, nil).Once()
	wm.messages.On("ListRecentTextMessages", mock.Anything, 5, 20).Return(history, nil).Once()
	wm.profiles.On("ProfilesByUserIDs", mock.Anything, []int{1}).Return(map[int]models.Profile{
		1: {UserID: 1, Name: "Ana"},
	}, nil).Once()
	wm.responder.On("Generate", mock.Anything, mock.Anything, "Direct Chat").Return("", assert.AnError).Once()

	err := worker.Work(context.Background(), assistantJob(AssistantMentionArgs{ChatID: 5, MessageID: 3}))

	require.NoError(t, err)
	wm.messages.AssertNotCalled(t, "CreateMessage", mock.Anything, mock.Anything)
	wm.assertExpectations(t)
}

func TestAssistantWorkerChatVanished(t *testing.T) {
	wm := newWorkerMocks()
	worker := NewAssistantWorker(wm.deps())

	wm.chats.On("GetChat", mock.Anything, 5).Return(models.Chat{}, repositories.ErrChatNotFound).Once()

	err := worker.Work(context.Background(), assistantJob(AssistantMentionArgs{ChatID: 5, MessageID: 3}))

	require.NoError(t, err)
	wm.responder.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
	wm.assertExpectations(t)
}

func TestAssistantWorkerEmptyReplyStoresNothing(t *testing.T) {
	wm := newWorkerMocks()
	worker := NewAssistantWorker(wm.deps())

	chat := models.Chat{ID: 5, Type: models.ChatTypeDirect, Participants: []int{1, 2}}
	history := []models.Message{{ID: 3, ChatID: 5, SenderID: 1, Content: "@assistant"}}

	wm.chats.On("GetChat", mock.Anything, 5).Return(chat, nil).Once()
	wm.messages.On("ListRecentTextMessages", mock.Anything, 5, 20).Return(history, nil).Once()
	wm.profiles.On("ProfilesByUserIDs", mock.Anything, []int{1}).Return(map[int]models.Profile{
		1: {UserID: 1, Name: "Ana"},
	}, nil).Once()
	wm.responder.On("Generate", mock.Anything, mock.Anything, "Direct Chat").Return("   ", nil).Once()

	err := worker.Work(context.Background(), assistantJob(AssistantMentionArgs{ChatID: 5, MessageID: 3}))

	require.NoError(t, err)
	wm.messages.AssertNotCalled(t, "CreateMessage", mock.Anything, mock.Anything)
	wm.assertExpectations(t)
}
