package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dissertrack/backend/internal/models"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// Deliver persists a notification row for the recipient. This is the
// single delivery path for both the asynq worker and the sync queue.
func (s *NotificationService) Deliver(ctx context.Context, task *NotificationTask) error {
	n := models.Notification{
		UserID:    task.UserID,
		Kind:      task.Kind,
		Title:     task.Title,
		Message:   task.Message,
		ProjectID: task.ProjectID,
		CreatedAt: time.Now(),
	}
	return s.db.WithContext(ctx).Create(&n).Error
}

// HandleNotifyTask adapts Deliver to the asynq handler signature.
func (s *NotificationService) HandleNotifyTask(ctx context.Context, t *asynq.Task) error {
	var task NotificationTask
	if err := json.Unmarshal(t.Payload(), &task); err != nil {
		return err
	}
	return s.Deliver(ctx, &task)
}

// Notify enqueues one notification per recipient. Delivery failures are
// swallowed so workflow transactions never fail on notification plumbing.
func Notify(kind, title, message string, projectID *uint, userIDs ...uint) {
	queue := GetTaskQueue()
	if queue == nil {
		return
	}
	for _, uid := range userIDs {
		_ = queue.Enqueue(&NotificationTask{
			UserID:    uid,
			Kind:      kind,
			Title:     title,
			Message:   message,
			ProjectID: projectID,
		})
	}
}

type NotificationListRequest struct {
	Page       int  `form:"page" binding:"min=0"`
	PageSize   int  `form:"page_size" binding:"min=0,max=100"`
	UnreadOnly bool `form:"unread_only"`
}

type NotificationListResponse struct {
	Total    int64                 `json:"total"`
	Unread   int64                 `json:"unread"`
	Page     int                   `json:"page"`
	PageSize int                   `json:"page_size"`
	Items    []models.Notification `json:"items"`
}

func (s *NotificationService) List(userID uint, req *NotificationListRequest) (*NotificationListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}

	query := s.db.Model(&models.Notification{}).Where("user_id = ?", userID)
	if req.UnreadOnly {
		query = query.Where("read_at IS NULL")
	}

	var total int64
	query.Count(&total)

	var unread int64
	s.db.Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Count(&unread)

	var items []models.Notification
	offset := (req.Page - 1) * req.PageSize
	if err := query.Offset(offset).Limit(req.PageSize).Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}

	return &NotificationListResponse{
		Total:    total,
		Unread:   unread,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    items,
	}, nil
}

// MarkRead marks a single notification as read. Scoped to the owner so
// users cannot touch each other's notifications.
func (s *NotificationService) MarkRead(userID, notificationID uint) error {
	now := time.Now()
	result := s.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ? AND read_at IS NULL", notificationID, userID).
		Update("read_at", now)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *NotificationService) MarkAllRead(userID uint) (int64, error) {
	now := time.Now()
	result := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Update("read_at", now)
	return result.RowsAffected, result.Error
}
