package chat

import (
	"context"
	"log"
	"time"

	"TallyChat/models"
	svc "TallyChat/pkg/services"
	utils "TallyChat/pkg/utills"

	"github.com/google/uuid"
)

const systemInstruction = "You are a helpful, friendly, and concise AI assistant. Provide direct answers and keep responses brief."

const titleRuneLimit = 50

// ModelGateway performs one provider call and reports actual token usage.
type ModelGateway interface {
	Complete(ctx context.Context, system string, history []svc.ChatMessage, message string) (*svc.ChatResult, error)
}

type Config struct {
	// StartingAllotment is granted at registration and used to repair
	// accounts whose balance column is unset.
	StartingAllotment int64
	// PreflightEstimate is the conservative token cost checked against
	// the balance before the provider is called. True usage is unknown
	// until the call completes, so the debit afterwards uses the real
	// figure and may push the balance below zero.
	PreflightEstimate int64
}

// Service coordinates one chat exchange end to end: account load, ownership
// check, history assembly, pre-flight balance check, provider call, debit,
// and append.
type Service struct {
	accounts AccountStore
	convs    ConversationStore
	gateway  ModelGateway
	cfg      Config
	locks    *userLocks
}

func NewService(accounts AccountStore, convs ConversationStore, gateway ModelGateway, cfg Config) *Service {
	return &Service{
		accounts: accounts,
		convs:    convs,
		gateway:  gateway,
		cfg:      cfg,
		locks:    newUserLocks(),
	}
}

type SendResult struct {
	Reply           string
	ConversationID  string
	TokensUsed      int64
	RemainingTokens int64
}

// SendMessage runs one exchange. conversationID may be empty to start a new
// conversation. On any error no debit or append has happened, except that a
// missing balance column is repaired (and persisted) up front.
func (s *Service) SendMessage(ctx context.Context, userID uint, conversationID, message string) (*SendResult, error) {
	release := s.locks.lock(userID)
	defer release()

	user, err := s.accounts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrAccountNotFound
	}

	balance, ok := user.Tokens()
	if !ok {
		log.Printf("[chat] user %d had missing token balance, resetting to %d", userID, s.cfg.StartingAllotment)
		user.SetTokens(s.cfg.StartingAllotment)
		if err := s.accounts.Put(ctx, user); err != nil {
			return nil, err
		}
		balance = s.cfg.StartingAllotment
	}

	var conv *models.Conversation
	if conversationID != "" {
		conv, err = s.ownedConversation(ctx, userID, conversationID)
		if err != nil {
			return nil, err
		}
	} else {
		// Not persisted yet: a failed pre-flight check or provider call
		// must leave no trace.
		conv = &models.Conversation{
			ID:     uuid.NewString(),
			UserID: userID,
			Title:  utils.TitleFromMessage(message, titleRuneLimit),
		}
	}

	history := BuildHistory(conv.Messages)

	if balance < s.cfg.PreflightEstimate {
		return nil, &InsufficientBalanceError{Balance: balance}
	}

	result, err := s.gateway.Complete(ctx, systemInstruction, history, message)
	if err != nil {
		return nil, err
	}

	remaining := balance - result.TokensUsed
	user.SetTokens(remaining)
	if err := s.accounts.Put(ctx, user); err != nil {
		return nil, err
	}

	now := time.Now()
	seq := len(conv.Messages)
	conv.Messages = append(conv.Messages,
		models.Message{Seq: seq, Role: models.RoleUser, Content: message, Timestamp: now},
		models.Message{Seq: seq + 1, Role: models.RoleAssistant, Content: result.Reply, Timestamp: now},
	)
	conv.UpdatedAt = now
	if err := s.convs.Put(ctx, conv); err != nil {
		return nil, err
	}

	return &SendResult{
		Reply:           result.Reply,
		ConversationID:  conv.ID,
		TokensUsed:      result.TokensUsed,
		RemainingTokens: remaining,
	}, nil
}

// History returns the ordered messages of a conversation owned by userID.
func (s *Service) History(ctx context.Context, userID uint, conversationID string) (*models.Conversation, error) {
	return s.ownedConversation(ctx, userID, conversationID)
}

type Summary struct {
	ID          string
	LastMessage string
	UpdatedAt   time.Time
}

// List returns the caller's conversations, newest-updated first, each
// reduced to its id, last message content (empty if none), and timestamp.
func (s *Service) List(ctx context.Context, userID uint) ([]Summary, error) {
	convs, err := s.convs.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(convs))
	for _, conv := range convs {
		last := ""
		if n := len(conv.Messages); n > 0 {
			last = conv.Messages[n-1].Content
		}
		out = append(out, Summary{ID: conv.ID, LastMessage: last, UpdatedAt: conv.UpdatedAt})
	}
	return out, nil
}

// Delete removes one conversation owned by userID.
func (s *Service) Delete(ctx context.Context, userID uint, conversationID string) error {
	conv, err := s.ownedConversation(ctx, userID, conversationID)
	if err != nil {
		return err
	}
	return s.convs.Delete(ctx, conv)
}

// DeleteAll removes every conversation owned by userID and reports how many.
func (s *Service) DeleteAll(ctx context.Context, userID uint) (int64, error) {
	return s.convs.DeleteByOwner(ctx, userID)
}

func (s *Service) ownedConversation(ctx context.Context, userID uint, id string) (*models.Conversation, error) {
	conv, err := s.convs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if conv == nil || conv.UserID != userID {
		// collapsed with plain not-found so existence never leaks
		return nil, ErrConversationNotFound
	}
	return conv, nil
}
