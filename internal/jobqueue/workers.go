package jobqueue

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/riverqueue/river"

	"polychat/internal/assistant"
	"polychat/internal/models"
	"polychat/internal/observability"
	"polychat/internal/repositories"
	"polychat/internal/translate"
)

// Broadcaster pushes pipeline results to connected websocket clients.
type Broadcaster interface {
	BroadcastMessage(chatID int, msg models.Message)
	BroadcastTranslation(chatID int, tr models.Translation)
}

// WorkerDeps bundles the collaborators shared by the queue workers.
type WorkerDeps struct {
	Chats           repositories.ChatRepository
	Messages        repositories.MessageRepository
	Translations    repositories.TranslationRepository
	Profiles        repositories.ProfileRepository
	Provider        translate.Provider
	Responder       assistant.Responder
	Hub             Broadcaster
	ProviderTimeout time.Duration
}

// TranslationWorker translates one message into every language required by
// the chat's participants. Each target language is handled independently: a
// provider failure for one language never blocks the others. The worker
// always reports success to the queue; there is nothing to retry that the
// next message would not cover.
type TranslationWorker struct {
	river.WorkerDefaults[TranslationFanOutArgs]
	deps WorkerDeps
}

func NewTranslationWorker(deps WorkerDeps) *TranslationWorker {
	return &TranslationWorker{deps: deps}
}

func (w *TranslationWorker) Work(ctx context.Context, job *river.Job[TranslationFanOutArgs]) error {
	args := job.Args

	msg, err := w.deps.Messages.GetMessage(ctx, args.MessageID)
	if err != nil {
		if errors.Is(err, repositories.ErrMessageNotFound) {
			log.Printf("translation fanout: message %d vanished, skipping", args.MessageID)
			return nil
		}
		log.Printf("translation fanout: load message %d: %v", args.MessageID, err)
		return nil
	}

	chat, err := w.deps.Chats.GetChat(ctx, args.ChatID)
	if err != nil {
		if errors.Is(err, repositories.ErrChatNotFound) {
			log.Printf("translation fanout: chat %d vanished, skipping", args.ChatID)
			return nil
		}
		log.Printf("translation fanout: load chat %d: %v", args.ChatID, err)
		return nil
	}

	profileMap, err := w.deps.Profiles.ProfilesByUserIDs(ctx, chat.Participants)
	if err != nil {
		log.Printf("translation fanout: load profiles for chat %d: %v", args.ChatID, err)
		return nil
	}
	profiles := make([]models.Profile, 0, len(profileMap))
	for _, p := range profileMap {
		profiles = append(profiles, p)
	}

	targets := translate.TargetLanguages(profiles, args.SenderLanguage)
	for _, lang := range targets {
		w.translateOne(ctx, msg, args, lang)
	}
	return nil
}

func (w *TranslationWorker) translateOne(ctx context.Context, msg models.Message, args TranslationFanOutArgs, lang string) {
	callCtx, cancel := context.WithTimeout(ctx, w.deps.ProviderTimeout)
	defer cancel()

	translated, err := w.deps.Provider.Translate(callCtx, args.OriginalText, args.SenderLanguage, lang)
	if err != nil {
		log.Printf("translation fanout: message %d lang %s: %v", args.MessageID, lang, err)
		observability.IncTranslationProviderError(lang)
		return
	}

	translated = strings.TrimSpace(translated)
	if translated == "" || strings.EqualFold(translated, strings.TrimSpace(args.OriginalText)) {
		return
	}

	inserted, err := w.deps.Translations.TryInsert(ctx, models.Translation{
		MessageID:      args.MessageID,
		TargetLanguage: lang,
		TranslatedText: translated,
		OriginalText:   args.OriginalText,
	})
	if err != nil {
		log.Printf("translation fanout: store message %d lang %s: %v", args.MessageID, lang, err)
		return
	}
	if !inserted {
		observability.IncTranslationDuplicate()
		return
	}

	observability.IncTranslationStored(lang)
	tr, err := w.deps.Translations.GetTranslation(ctx, args.MessageID, lang)
	if err != nil {
		tr = models.Translation{
			MessageID:      args.MessageID,
			TargetLanguage: lang,
			TranslatedText: translated,
			OriginalText:   args.OriginalText,
		}
	}
	w.deps.Hub.BroadcastTranslation(msg.ChatID, tr)

	_ = observability.PublishEvent(ctx, "pipeline.translations", observability.EventEnvelope{
		EventType: "pipeline",
		EventName: "translation_stored",
		Payload: map[string]interface{}{
			"message_id":      args.MessageID,
			"chat_id":         msg.ChatID,
			"target_language": lang,
		},
	}, nil)
}

// AssistantWorker generates and posts one assistant reply for a mention.
// Failures are logged and dropped; a mention never produces more than one
// reply and never blocks the queue.
type AssistantWorker struct {
	river.WorkerDefaults[AssistantMentionArgs]
	deps WorkerDeps
}

func NewAssistantWorker(deps WorkerDeps) *AssistantWorker {
	return &AssistantWorker{deps: deps}
}

func (w *AssistantWorker) Work(ctx context.Context, job *river.Job[AssistantMentionArgs]) error {
	args := job.Args

	chat, err := w.deps.Chats.GetChat(ctx, args.ChatID)
	if err != nil {
		if errors.Is(err, repositories.ErrChatNotFound) {
			log.Printf("assistant mention: chat %d vanished, skipping", args.ChatID)
			return nil
		}
		log.Printf("assistant mention: load chat %d: %v", args.ChatID, err)
		return nil
	}

	history, err := w.deps.Messages.ListRecentTextMessages(ctx, args.ChatID, assistant.TranscriptLimit)
	if err != nil {
		log.Printf("assistant mention: load history for chat %d: %v", args.ChatID, err)
		return nil
	}
	if len(history) == 0 {
		return nil
	}

	senderIDs := make([]int, 0, len(history))
	for _, m := range history {
		senderIDs = append(senderIDs, m.SenderID)
	}
	profiles, err := w.deps.Profiles.ProfilesByUserIDs(ctx, senderIDs)
	if err != nil {
		log.Printf("assistant mention: load profiles for chat %d: %v", args.ChatID, err)
		return nil
	}

	transcript := assistant.BuildTranscript(history, profiles)

	callCtx, cancel := context.WithTimeout(ctx, w.deps.ProviderTimeout)
	defer cancel()
	reply, err := w.deps.Responder.Generate(callCtx, transcript, chat.DisplayName())
	if err != nil {
		log.Printf("assistant mention: generate reply for chat %d: %v", args.ChatID, err)
		observability.IncAssistantError()
		return nil
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return nil
	}

	asst, err := w.deps.Profiles.EnsureAssistant(ctx)
	if err != nil {
		log.Printf("assistant mention: ensure assistant profile: %v", err)
		return nil
	}

	msg, err := w.deps.Messages.CreateMessage(ctx, models.NewMessage{
		ChatID:        args.ChatID,
		SenderID:      asst.UserID,
		Kind:          models.MessageKindText,
		Content:       reply,
		FromAssistant: true,
	})
	if err != nil {
		log.Printf("assistant mention: store reply for chat %d: %v", args.ChatID, err)
		return nil
	}

	if err := w.deps.Chats.TouchLastMessage(ctx, args.ChatID, msg.CreatedAt); err != nil {
		log.Printf("assistant mention: touch chat %d: %v", args.ChatID, err)
	}

	w.deps.Hub.BroadcastMessage(args.ChatID, msg)
	observability.IncAssistantReply()

	// Assistant replies flow through the same translation pipeline as any
	// other text message.
	if client, err := river.ClientFromContextSafely[pgx.Tx](ctx); err == nil {
		_, err := client.Insert(ctx, TranslationFanOutArgs{
			MessageID:      msg.ID,
			ChatID:         args.ChatID,
			OriginalText:   msg.Content,
			SenderLanguage: asst.PreferredLanguage,
		}, &river.InsertOpts{ScheduledAt: time.Now().Add(TranslationDelay)})
		if err != nil {
			log.Printf("assistant mention: schedule translation for message %d: %v", msg.ID, err)
		} else {
			observability.IncTranslationScheduled()
		}
	}

	_ = observability.PublishEvent(ctx, "pipeline.assistant", observability.EventEnvelope{
		EventType: "pipeline",
		EventName: "assistant_reply",
		Payload: map[string]interface{}{
			"chat_id":    args.ChatID,
			"message_id": msg.ID,
			"trigger":    args.MessageID,
		},
	}, nil)
	return nil
}
