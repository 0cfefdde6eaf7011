package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"polychat/internal/assistant"
	"polychat/internal/jobqueue"
	"polychat/internal/models"
	"polychat/internal/repositories"
	"polychat/internal/translate"
	"polychat/internal/ws"
)

const defaultMessagePageSize = 50

// ChatHandler manages chat and message endpoints.
type ChatHandler struct {
	chatRepo        repositories.ChatRepository
	messageRepo     repositories.MessageRepository
	translationRepo repositories.TranslationRepository
	profileRepo     repositories.ProfileRepository
	stickerRepo     repositories.StickerRepository
	hub             *ws.Hub
	pipeline        jobqueue.Pipeline
}

// NewChatHandler builds a ChatHandler.
func NewChatHandler(
	chatRepo repositories.ChatRepository,
	messageRepo repositories.MessageRepository,
	translationRepo repositories.TranslationRepository,
	profileRepo repositories.ProfileRepository,
	stickerRepo repositories.StickerRepository,
	hub *ws.Hub,
	pipeline jobqueue.Pipeline,
) *ChatHandler {
	return &ChatHandler{
		chatRepo:        chatRepo,
		messageRepo:     messageRepo,
		translationRepo: translationRepo,
		profileRepo:     profileRepo,
		stickerRepo:     stickerRepo,
		hub:             hub,
		pipeline:        pipeline,
	}
}

// ListChats returns the chats visible to the authenticated user, newest
// activity first, each with its last message and the other participants.
func (h *ChatHandler) ListChats(c *gin.Context) {
	userID := c.GetInt("userID")

	chats, err := h.chatRepo.ListChatsForUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load chats"})
		return
	}

	memberIDs := make([]int, 0)
	for _, chat := range chats {
		for _, id := range chat.Participants {
			if id != userID {
				memberIDs = append(memberIDs, id)
			}
		}
	}
	profiles, err := h.profileRepo.ProfilesByUserIDs(c.Request.Context(), memberIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profiles"})
		return
	}

	type chatResponse struct {
		models.Chat
		DisplayName string                  `json:"display_name"`
		Members     []models.ProfileSummary `json:"members"`
		LastMessage *models.Message         `json:"last_message,omitempty"`
	}

	responses := make([]chatResponse, 0, len(chats))
	for _, chat := range chats {
		members := make([]models.ProfileSummary, 0, len(chat.Participants))
		for _, id := range chat.Participants {
			if id == userID {
				continue
			}
			if p, ok := profiles[id]; ok {
				members = append(members, p.Summary())
			}
		}

		resp := chatResponse{Chat: chat, DisplayName: chat.DisplayName(), Members: members}
		if last, err := h.messageRepo.LastMessage(c.Request.Context(), chat.ID); err == nil {
			resp.LastMessage = &last
		}
		responses = append(responses, resp)
	}

	c.JSON(http.StatusOK, gin.H{"chats": responses})
}

// CreateDirectChat creates or returns the direct chat with another user.
func (h *ChatHandler) CreateDirectChat(c *gin.Context) {
	var req struct {
		ParticipantID int `json:"participant_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetInt("userID")
	if userID == req.ParticipantID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot chat with yourself"})
		return
	}

	if _, err := h.profileRepo.GetProfile(c.Request.Context(), req.ParticipantID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrProfileNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "participant not found"})
		return
	}

	chat, err := h.chatRepo.CreateDirectChat(c.Request.Context(), userID, req.ParticipantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create chat"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"chat_id": chat.ID})
}

// CreateGroupChat creates a named group chat with the given members.
func (h *ChatHandler) CreateGroupChat(c *gin.Context) {
	var req struct {
		Name      string `json:"name" binding:"required"`
		MemberIDs []int  `json:"member_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetInt("userID")
	chat, err := h.chatRepo.CreateGroupChat(c.Request.Context(), userID, req.Name, req.MemberIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create chat"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"chat_id": chat.ID})
}

// GetChatMessages returns messages for a chat oldest-first, each joined
// with the translation matching the caller's preferred language when one
// exists. Reply targets and sticker details are resolved in the same pass.
func (h *ChatHandler) GetChatMessages(c *gin.Context) {
	chatID, err := strconv.Atoi(c.Param("chat_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
		return
	}

	userID := c.GetInt("userID")
	member, err := h.chatRepo.IsParticipant(c.Request.Context(), chatID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify membership"})
		return
	}
	if !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a chat member"})
		return
	}

	limit := defaultMessagePageSize
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	msgs, err := h.messageRepo.ListMessages(c.Request.Context(), chatID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	var preferredLanguage string
	if profile, err := h.profileRepo.GetProfile(c.Request.Context(), userID); err == nil {
		preferredLanguage = profile.PreferredLanguage
	}

	messageIDs := make([]int, 0, len(msgs))
	replyIDs := make([]int, 0)
	for _, m := range msgs {
		messageIDs = append(messageIDs, m.ID)
		if m.ReplyTo != nil {
			replyIDs = append(replyIDs, *m.ReplyTo)
		}
	}

	translations := map[int]models.Translation{}
	if preferredLanguage != "" {
		translations, err = h.translationRepo.TranslationsForMessages(c.Request.Context(), messageIDs, preferredLanguage)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load translations"})
			return
		}
	}

	replies := map[int]models.Message{}
	if len(replyIDs) > 0 {
		replies, err = h.messageRepo.MessagesByIDs(c.Request.Context(), replyIDs)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load reply targets"})
			return
		}
	}

	type messageResponse struct {
		models.Message
		TranslatedText string          `json:"translated_text,omitempty"`
		ReplyContext   *models.Message `json:"reply_context,omitempty"`
		Sticker        *models.Sticker `json:"sticker,omitempty"`
	}

	resp := make([]messageResponse, 0, len(msgs))
	for _, m := range msgs {
		item := messageResponse{Message: m}
		if tr, ok := translations[m.ID]; ok {
			item.TranslatedText = tr.TranslatedText
		}
		if m.ReplyTo != nil {
			if target, ok := replies[*m.ReplyTo]; ok {
				item.ReplyContext = &target
			}
		}
		if m.StickerID != nil {
			if sticker, err := h.stickerRepo.GetSticker(c.Request.Context(), *m.StickerID); err == nil {
				item.Sticker = &sticker
			}
		}
		resp = append(resp, item)
	}

	c.JSON(http.StatusOK, gin.H{"messages": resp})
}

// PostChatMessage stores a message, broadcasts it, and schedules the
// deferred pipeline work. The response never waits on translation or
// assistant generation.
func (h *ChatHandler) PostChatMessage(c *gin.Context) {
	chatID, err := strconv.Atoi(c.Param("chat_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
		return
	}

	userID := c.GetInt("userID")
	chat, err := h.chatRepo.GetChat(c.Request.Context(), chatID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrChatNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "chat not found"})
		return
	}
	if !chat.IsParticipant(userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a chat member"})
		return
	}

	profile, err := h.profileRepo.GetProfile(c.Request.Context(), userID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrProfileNotFound) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": "profile required to send messages"})
		return
	}

	var req struct {
		Kind      string `json:"kind"`
		Content   string `json:"content"`
		ReplyTo   *int   `json:"reply_to"`
		StickerID *int   `json:"sticker_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Kind == "" {
		req.Kind = models.MessageKindText
	}

	switch req.Kind {
	case models.MessageKindText:
		if strings.TrimSpace(req.Content) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "content is required"})
			return
		}
	case models.MessageKindSticker:
		if req.StickerID == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "sticker_id is required"})
			return
		}
		if _, err := h.stickerRepo.GetSticker(c.Request.Context(), *req.StickerID); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown sticker"})
			return
		}
	case models.MessageKindImage, models.MessageKindSystem:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown message kind"})
		return
	}

	if req.ReplyTo != nil {
		target, err := h.messageRepo.GetMessage(c.Request.Context(), *req.ReplyTo)
		if err != nil || target.ChatID != chatID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "reply target does not belong to chat"})
			return
		}
	}

	msg, err := h.messageRepo.CreateMessage(c.Request.Context(), models.NewMessage{
		ChatID:    chatID,
		SenderID:  userID,
		Kind:      req.Kind,
		Content:   req.Content,
		ReplyTo:   req.ReplyTo,
		StickerID: req.StickerID,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store message"})
		return
	}

	if err := h.chatRepo.TouchLastMessage(c.Request.Context(), chatID, msg.CreatedAt); err != nil {
		log.Printf("touch chat %d: %v", chatID, err)
	}

	h.hub.BroadcastMessage(chatID, msg)

	// Scheduling failures are logged, never surfaced: the message is
	// already stored and the sender's request has succeeded.
	if msg.Kind == models.MessageKindText && strings.TrimSpace(msg.Content) != "" {
		senderLanguage := profile.PreferredLanguage
		if senderLanguage == "" {
			senderLanguage = translate.DetectLanguage(msg.Content, "en")
		}
		if err := h.pipeline.ScheduleTranslation(c.Request.Context(), msg, senderLanguage); err != nil {
			log.Printf("schedule translation for message %d: %v", msg.ID, err)
		}
		if assistant.ContainsMention(msg.Content) {
			if err := h.pipeline.ScheduleAssistant(c.Request.Context(), chatID, msg.ID); err != nil {
				log.Printf("schedule assistant reply for message %d: %v", msg.ID, err)
			}
		}
	}

	c.JSON(http.StatusCreated, msg)
}
