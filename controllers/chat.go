package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"TallyChat/middleware"
	"TallyChat/pkg/cache"
	"TallyChat/pkg/chat"
	"TallyChat/pkg/config"
	svc "TallyChat/pkg/services"

	"github.com/gin-gonic/gin"
)

// SendMessage runs one metered exchange: balance pre-flight, provider call,
// debit by actual usage, and history append.
func SendMessage(service *chat.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := middleware.UserID(c)

		var body struct {
			Message        string `json:"message"`
			ConversationID string `json:"conversationId"`
		}
		if err := c.ShouldBindJSON(&body); err != nil || strings.TrimSpace(body.Message) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "message is required"})
			return
		}

		if !middleware.DuplicateGuard(strconv.Itoa(int(uid)), body.Message) {
			c.JSON(http.StatusTooManyRequests, gin.H{"msg": "duplicate message, please wait before resending"})
			return
		}

		result, err := service.SendMessage(c.Request.Context(), uid, body.ConversationID, body.Message)
		if err != nil {
			respondChatError(c, err)
			return
		}

		invalidateConvList(uid)

		c.JSON(http.StatusOK, gin.H{
			"message":         result.Reply,
			"conversationId":  result.ConversationID,
			"tokensUsed":      result.TokensUsed,
			"remainingTokens": result.RemainingTokens,
		})
	}
}

// GetConversationHistory returns the ordered messages of one conversation.
func GetConversationHistory(service *chat.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := middleware.UserID(c)
		convID := c.Param("conversation_id")

		conv, err := service.History(c.Request.Context(), uid, convID)
		if err != nil {
			respondChatError(c, err)
			return
		}

		messages := make([]gin.H, 0, len(conv.Messages))
		for _, m := range conv.Messages {
			messages = append(messages, gin.H{
				"role":      m.Role,
				"content":   m.Content,
				"timestamp": m.Timestamp.UTC().Format(time.RFC3339),
			})
		}

		c.JSON(http.StatusOK, gin.H{
			"conversation": gin.H{
				"id":       conv.ID,
				"messages": messages,
			},
		})
	}
}

// ListConversations returns the caller's conversations, newest-updated
// first. Results are cached briefly per user and invalidated on writes.
func ListConversations(service *chat.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := middleware.UserID(c)

		key := convListKey(uid)
		if v, ok := cache.Default().Get(key); ok {
			if cached, ok := v.([]gin.H); ok {
				c.JSON(http.StatusOK, gin.H{"conversations": cached})
				return
			}
		}

		summaries, err := service.List(c.Request.Context(), uid)
		if err != nil {
			respondChatError(c, err)
			return
		}

		out := make([]gin.H, 0, len(summaries))
		for _, s := range summaries {
			out = append(out, gin.H{
				"id":          s.ID,
				"lastMessage": s.LastMessage,
				"updatedAt":   s.UpdatedAt.UTC().Format(time.RFC3339),
			})
		}

		cache.Default().Set(key, out, time.Duration(config.ConvListCacheTTLSecond)*time.Second)
		c.JSON(http.StatusOK, gin.H{"conversations": out})
	}
}

// DeleteConversation removes one conversation and its messages.
func DeleteConversation(service *chat.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := middleware.UserID(c)
		convID := c.Param("conversation_id")

		if err := service.Delete(c.Request.Context(), uid, convID); err != nil {
			respondChatError(c, err)
			return
		}
		invalidateConvList(uid)
		c.JSON(http.StatusOK, gin.H{"msg": "conversation deleted"})
	}
}

// DeleteAllConversations removes every conversation of the caller.
func DeleteAllConversations(service *chat.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := middleware.UserID(c)

		deleted, err := service.DeleteAll(c.Request.Context(), uid)
		if err != nil {
			respondChatError(c, err)
			return
		}
		invalidateConvList(uid)
		c.JSON(http.StatusOK, gin.H{"msg": "conversations deleted", "deleted": deleted})
	}
}

func convListKey(uid uint) string {
	return cache.KeyFromStrings("convlist", strconv.Itoa(int(uid)))
}

func invalidateConvList(uid uint) {
	cache.Default().Delete(convListKey(uid))
}

// respondChatError maps the service error taxonomy to HTTP statuses.
// Missing and unauthorized conversations share one response on purpose.
func respondChatError(c *gin.Context, err error) {
	var balErr *chat.InsufficientBalanceError
	var provErr *svc.ProviderError

	switch {
	case errors.Is(err, chat.ErrAccountNotFound):
		c.JSON(http.StatusNotFound, gin.H{"msg": "User not found"})
	case errors.Is(err, chat.ErrConversationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"msg": "Conversation not found or unauthorized"})
	case errors.As(err, &balErr):
		c.JSON(http.StatusForbidden, gin.H{
			"msg":             "Insufficient tokens. Please top up your balance.",
			"remainingTokens": balErr.Balance,
		})
	case errors.As(err, &provErr):
		status := provErr.StatusCode
		if status == 0 {
			status = http.StatusInternalServerError
		}
		c.JSON(status, gin.H{"msg": provErr.Message, "type": provErr.Kind})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "Server error"})
	}
}
