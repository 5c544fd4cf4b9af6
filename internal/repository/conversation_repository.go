package repository

import (
	"context"
	"time"

	"github.com/fixlater/fixlater-backend/internal/model"
	"gorm.io/gorm"
)

// ConversationSummary is one row of a user's inbox.
type ConversationSummary struct {
	model.Conversation
	TaskTitle       string           `json:"task_title"`
	TaskStatus      model.TaskStatus `json:"task_status"`
	RequesterName   string           `json:"requester_name"`
	RequesterPhoto  *string          `json:"requester_photo"`
	ProviderName    string           `json:"provider_name"`
	ProviderPhoto   *string          `json:"provider_photo"`
	UnreadCount     int64            `json:"unread_count"`
	LastMessage     *string          `json:"last_message"`
	LastMessageTime *time.Time       `json:"last_message_time"`
}

type ConversationRepository interface {
	FindOrCreate(ctx context.Context, taskID, requesterID, providerID uint64) (*model.Conversation, error)
	FindByID(ctx context.Context, id uint64) (*model.Conversation, error)
	FindByUser(ctx context.Context, userID uint64) ([]ConversationSummary, error)
	FindSummaryByID(ctx context.Context, id, viewerID uint64) (*ConversationSummary, error)
	CreateMessage(ctx context.Context, msg *model.Message) error
	ListMessages(ctx context.Context, convID uint64, limit, offset int) ([]model.Message, error)
	MarkMessagesRead(ctx context.Context, convID, readerID uint64) error
}

type conversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

func (r *conversationRepository) FindOrCreate(ctx context.Context, taskID, requesterID, providerID uint64) (*model.Conversation, error) {
	cv := model.Conversation{TaskID: taskID, RequesterID: requesterID, ProviderID: providerID}
	if err := r.db.WithContext(ctx).
		Where("task_id = ? AND requester_id = ? AND provider_id = ?", taskID, requesterID, providerID).
		FirstOrCreate(&cv).Error; err != nil {
		return nil, err
	}
	return &cv, nil
}

func (r *conversationRepository) FindByID(ctx context.Context, id uint64) (*model.Conversation, error) {
	var cv model.Conversation
	if err := r.db.WithContext(ctx).First(&cv, id).Error; err != nil {
		return nil, err
	}
	return &cv, nil
}

func (r *conversationRepository) FindByUser(ctx context.Context, userID uint64) ([]ConversationSummary, error) {
	var list []ConversationSummary
	err := r.db.WithContext(ctx).Model(&model.Conversation{}).
		Select(`conversations.*, tasks.title AS task_title, tasks.status AS task_status,
			u1.name AS requester_name, u1.profile_photo AS requester_photo,
			u2.name AS provider_name, u2.profile_photo AS provider_photo,
			(SELECT COUNT(*) FROM messages m WHERE m.conversation_id = conversations.id AND m.sender_id != ? AND m.is_read = false) AS unread_count,
			(SELECT m.message FROM messages m WHERE m.conversation_id = conversations.id ORDER BY m.created_at DESC LIMIT 1) AS last_message,
			(SELECT m.created_at FROM messages m WHERE m.conversation_id = conversations.id ORDER BY m.created_at DESC LIMIT 1) AS last_message_time`,
			userID).
		Joins("JOIN tasks ON tasks.id = conversations.task_id").
		Joins("JOIN users u1 ON u1.id = conversations.requester_id").
		Joins("JOIN users u2 ON u2.id = conversations.provider_id").
		Where("conversations.requester_id = ? OR conversations.provider_id = ?", userID, userID).
		Order("last_message_time DESC").
		Find(&list).Error
	return list, err
}

func (r *conversationRepository) FindSummaryByID(ctx context.Context, id, viewerID uint64) (*ConversationSummary, error) {
	var s ConversationSummary
	err := r.db.WithContext(ctx).Model(&model.Conversation{}).
		Select(`conversations.*, tasks.title AS task_title, tasks.status AS task_status,
			u1.name AS requester_name, u1.profile_photo AS requester_photo,
			u2.name AS provider_name, u2.profile_photo AS provider_photo,
			(SELECT COUNT(*) FROM messages m WHERE m.conversation_id = conversations.id AND m.sender_id != ? AND m.is_read = false) AS unread_count`,
			viewerID).
		Joins("JOIN tasks ON tasks.id = conversations.task_id").
		Joins("JOIN users u1 ON u1.id = conversations.requester_id").
		Joins("JOIN users u2 ON u2.id = conversations.provider_id").
		Where("conversations.id = ?", id).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *conversationRepository) CreateMessage(ctx context.Context, msg *model.Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *conversationRepository) ListMessages(ctx context.Context, convID uint64, limit, offset int) ([]model.Message, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var msgs []model.Message
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ?", convID).
		Order("created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *conversationRepository) MarkMessagesRead(ctx context.Context, convID, readerID uint64) error {
	return r.db.WithContext(ctx).Model(&model.Message{}).
		Where("conversation_id = ? AND sender_id != ? AND is_read = false", convID, readerID).
		Update("is_read", true).Error
}
