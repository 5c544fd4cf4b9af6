package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fixlater/fixlater-backend/internal/model"
	"github.com/fixlater/fixlater-backend/internal/repository"
	"gorm.io/gorm"
)

// SentMessage is a persisted message hydrated with the sender's display
// fields, plus the data needed to notify the other participant.
type SentMessage struct {
	model.Message
	SenderName  string  `json:"sender_name"`
	SenderPhoto *string `json:"sender_photo"`
	RecipientID uint64  `json:"-"`
	TaskID      uint64  `json:"-"`
}

// NotificationText is the side-channel notice for the recipient.
func (m *SentMessage) NotificationText() string {
	return fmt.Sprintf("New message from %s", m.SenderName)
}

type ConversationService interface {
	CreateOrGet(ctx context.Context, callerID, taskID, otherUserID uint64) (*model.Conversation, error)
	ListByUser(ctx context.Context, userID uint64) ([]repository.ConversationSummary, error)
	Get(ctx context.Context, convID, userID uint64) (*repository.ConversationSummary, error)
	ListMessages(ctx context.Context, convID, userID uint64, limit, offset int) ([]model.Message, error)
	SendMessage(ctx context.Context, convID, senderID uint64, body string) (*SentMessage, error)
	MarkRead(ctx context.Context, convID, readerID uint64) error
}

type conversationService struct {
	convRepo repository.ConversationRepository
	taskRepo repository.TaskRepository
	userRepo repository.UserRepository
}

func NewConversationService(convRepo repository.ConversationRepository, taskRepo repository.TaskRepository, userRepo repository.UserRepository) ConversationService {
	return &conversationService{convRepo: convRepo, taskRepo: taskRepo, userRepo: userRepo}
}

// CreateOrGet finds or lazily creates the conversation for a task between
// its requester and one provider. The caller must be on one side of it.
func (s *conversationService) CreateOrGet(ctx context.Context, callerID, taskID, otherUserID uint64) (*model.Conversation, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var requesterID, providerID uint64
	switch {
	case task.RequesterID == callerID:
		requesterID = callerID
		providerID = otherUserID
	case (task.AssignedProviderID != nil && *task.AssignedProviderID == callerID) || otherUserID == task.RequesterID:
		requesterID = task.RequesterID
		providerID = callerID
	default:
		return nil, ErrForbidden
	}
	if requesterID == providerID || providerID == 0 {
		return nil, fmt.Errorf("%w: invalid conversation pair", ErrInvalid)
	}

	return s.convRepo.FindOrCreate(ctx, taskID, requesterID, providerID)
}

func (s *conversationService) ListByUser(ctx context.Context, userID uint64) ([]repository.ConversationSummary, error) {
	return s.convRepo.FindByUser(ctx, userID)
}

func (s *conversationService) Get(ctx context.Context, convID, userID uint64) (*repository.ConversationSummary, error) {
	cv, err := s.convRepo.FindByID(ctx, convID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !cv.HasParticipant(userID) {
		return nil, ErrForbidden
	}
	return s.convRepo.FindSummaryByID(ctx, convID, userID)
}

func (s *conversationService) ListMessages(ctx context.Context, convID, userID uint64, limit, offset int) ([]model.Message, error) {
	cv, err := s.convRepo.FindByID(ctx, convID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !cv.HasParticipant(userID) {
		return nil, ErrForbidden
	}
	return s.convRepo.ListMessages(ctx, convID, limit, offset)
}

// SendMessage persists a message after verifying the sender is a
// participant. The sender display fields are always taken from the stored
// user record, never from the client.
func (s *conversationService) SendMessage(ctx context.Context, convID, senderID uint64, body string) (*SentMessage, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, fmt.Errorf("%w: message body is required", ErrInvalid)
	}

	cv, err := s.convRepo.FindByID(ctx, convID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !cv.HasParticipant(senderID) {
		return nil, ErrForbidden
	}

	msg := &model.Message{
		ConversationID: convID,
		SenderID:       senderID,
		Message:        body,
	}
	if err := s.convRepo.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}

	sender, err := s.userRepo.FindByID(ctx, senderID)
	if err != nil {
		return nil, err
	}

	return &SentMessage{
		Message:     *msg,
		SenderName:  sender.Name,
		SenderPhoto: sender.ProfilePhoto,
		RecipientID: cv.OtherParticipant(senderID),
		TaskID:      cv.TaskID,
	}, nil
}

// MarkRead flips the read flag on every message in the conversation that
// was not sent by the reader. Best effort; callers decide how loudly to
// fail.
func (s *conversationService) MarkRead(ctx context.Context, convID, readerID uint64) error {
	return s.convRepo.MarkMessagesRead(ctx, convID, readerID)
}
