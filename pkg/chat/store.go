package chat

import (
	"context"
	"errors"

	"TallyChat/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AccountStore is keyed durable storage for user balance state.
// Get returns (nil, nil) when the identity is unknown.
type AccountStore interface {
	Get(ctx context.Context, userID uint) (*models.User, error)
	Put(ctx context.Context, user *models.User) error
}

// ConversationStore is keyed durable storage for conversation documents.
// Get returns (nil, nil) when the conversation is absent; ownership is not
// checked here, the service layer does that.
type ConversationStore interface {
	Get(ctx context.Context, id string) (*models.Conversation, error)
	Put(ctx context.Context, conv *models.Conversation) error
	ListByOwner(ctx context.Context, userID uint) ([]models.Conversation, error)
	Delete(ctx context.Context, conv *models.Conversation) error
	DeleteByOwner(ctx context.Context, userID uint) (int64, error)
}

type GormAccountStore struct {
	db *gorm.DB
}

func NewGormAccountStore(db *gorm.DB) *GormAccountStore {
	return &GormAccountStore{db: db}
}

func (s *GormAccountStore) Get(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (s *GormAccountStore) Put(ctx context.Context, user *models.User) error {
	return s.db.WithContext(ctx).Save(user).Error
}

type GormConversationStore struct {
	db *gorm.DB
}

func NewGormConversationStore(db *gorm.DB) *GormConversationStore {
	return &GormConversationStore{db: db}
}

func (s *GormConversationStore) Get(ctx context.Context, id string) (*models.Conversation, error) {
	var conv models.Conversation
	err := s.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB { return db.Order("seq ASC, timestamp ASC") }).
		First(&conv, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conv, nil
}

// Put upserts the conversation row and creates any messages that have not
// been persisted yet (empty ID). Existing messages are immutable and left
// untouched.
func (s *GormConversationStore) Put(ctx context.Context, conv *models.Conversation) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := *conv
		row.Messages = nil
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
			return err
		}
		for i := range conv.Messages {
			m := &conv.Messages[i]
			if m.ID != "" {
				continue
			}
			m.ID = uuid.NewString()
			m.ConversationID = conv.ID
			if err := tx.Create(m).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *GormConversationStore) ListByOwner(ctx context.Context, userID uint) ([]models.Conversation, error) {
	var convs []models.Conversation
	err := s.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB { return db.Order("seq ASC, timestamp ASC") }).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&convs).Error
	if err != nil {
		return nil, err
	}
	return convs, nil
}

func (s *GormConversationStore) Delete(ctx context.Context, conv *models.Conversation) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("conversation_id = ?", conv.ID).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Conversation{}, "id = ?", conv.ID).Error
	})
}

func (s *GormConversationStore) DeleteByOwner(ctx context.Context, userID uint) (int64, error) {
	var deleted int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []string
		if err := tx.Model(&models.Conversation{}).Where("user_id = ?", userID).Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Where("conversation_id IN ?", ids).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		res := tx.Where("user_id = ?", userID).Delete(&models.Conversation{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected
		return nil
	})
	return deleted, err
}
