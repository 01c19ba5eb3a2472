package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"TallyChat/middleware"
	"TallyChat/pkg/chat"
	svc "TallyChat/pkg/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS handled at HTTP level; allow WS here
		return true
	},
}

type wsSendPayload struct {
	Type           string `json:"type"`
	Message        string `json:"message"`
	ConversationID string `json:"conversationId"`
}

// ChatWS handles chat over a WebSocket. Each "send" runs the same metered
// exchange as the HTTP endpoint. Client protocol (JSON messages):
//
//	-> {type: "send", message: string, conversationId?: string}
//	<- {type: "reply", message, conversationId, tokensUsed, remainingTokens}
//	<- {type: "error", error: string, code: string}
func ChatWS(service *chat.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Authenticate via ?token=JWT
		tokenStr := strings.TrimSpace(c.Query("token"))
		if tokenStr == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"msg": "missing token query"})
			return
		}
		uid, _, err := middleware.ParseToken(tokenStr)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"msg": err.Error()})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for {
			var payload wsSendPayload
			if err := conn.ReadJSON(&payload); err != nil {
				return
			}
			if payload.Type != "send" || strings.TrimSpace(payload.Message) == "" {
				_ = conn.WriteJSON(gin.H{"type": "error", "error": "expected {type: send, message}", "code": "bad_request"})
				continue
			}
			if !middleware.DuplicateGuard(strconv.Itoa(int(uid)), payload.Message) {
				_ = conn.WriteJSON(gin.H{"type": "error", "error": "duplicate message, please wait before resending", "code": "duplicate"})
				continue
			}

			result, err := service.SendMessage(c.Request.Context(), uid, payload.ConversationID, payload.Message)
			if err != nil {
				code, msg := wsErrorCode(err)
				_ = conn.WriteJSON(gin.H{"type": "error", "error": msg, "code": code})
				continue
			}
			invalidateConvList(uid)

			if err := conn.WriteJSON(gin.H{
				"type":            "reply",
				"message":         result.Reply,
				"conversationId":  result.ConversationID,
				"tokensUsed":      result.TokensUsed,
				"remainingTokens": result.RemainingTokens,
			}); err != nil {
				return
			}
		}
	}
}

func wsErrorCode(err error) (code, msg string) {
	var balErr *chat.InsufficientBalanceError
	var provErr *svc.ProviderError

	switch {
	case errors.Is(err, chat.ErrAccountNotFound):
		return "account_not_found", "User not found"
	case errors.Is(err, chat.ErrConversationNotFound):
		return "conversation_not_found", "Conversation not found or unauthorized"
	case errors.As(err, &balErr):
		return "insufficient_tokens", "Insufficient tokens. Please top up your balance."
	case errors.As(err, &provErr):
		return "provider_error", provErr.Message
	default:
		return "server_error", "Server error"
	}
}
