package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/jkemta/soutenance-api/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// NotificationService handles user notifications
type NotificationService struct {
	db *gorm.DB
}

// NewNotificationService creates a new notification service
func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// CreateNotificationRequest represents a request to create a notification
type CreateNotificationRequest struct {
	UserID       uint
	Type         model.NotificationType
	Titre        string
	Message      string
	SoutenanceID *uint
	DossierID    *uint
	Metadata     map[string]interface{}
}

// ListNotificationsOptions represents options for listing notifications
type ListNotificationsOptions struct {
	UserID     uint
	UnreadOnly bool
	Type       model.NotificationType
	Limit      int
	Offset     int
}

// CreateNotification creates a new notification for a user
func (s *NotificationService) CreateNotification(ctx context.Context, req CreateNotificationRequest) (*model.Notification, error) {
	return s.createWithDB(s.db.WithContext(ctx), req)
}

// CreateNotificationTx creates a notification inside an existing transaction so
// it is rolled back together with the business change that triggered it.
func (s *NotificationService) CreateNotificationTx(tx *gorm.DB, req CreateNotificationRequest) (*model.Notification, error) {
	return s.createWithDB(tx, req)
}

func (s *NotificationService) createWithDB(db *gorm.DB, req CreateNotificationRequest) (*model.Notification, error) {
	notification := &model.Notification{
		UserID:       req.UserID,
		Type:         req.Type,
		Titre:        req.Titre,
		Message:      req.Message,
		EstLue:       false,
		SoutenanceID: req.SoutenanceID,
		DossierID:    req.DossierID,
	}

	// Serialize metadata if provided
	if req.Metadata != nil {
		metadataJSON, err := json.Marshal(req.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal metadata: %w", err)
		}
		notification.Metadata = datatypes.JSON(metadataJSON)
	}

	if err := db.Create(notification).Error; err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	log.Printf("Created notification %d for user %d: %s", notification.ID, req.UserID, req.Titre)
	return notification, nil
}

// GetNotificationsByUser retrieves notifications for a user
func (s *NotificationService) GetNotificationsByUser(ctx context.Context, opts ListNotificationsOptions) ([]model.Notification, int64, error) {
	var notifications []model.Notification
	var total int64

	query := s.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ?", opts.UserID)

	if opts.UnreadOnly {
		query = query.Where("est_lue = ?", false)
	}

	if opts.Type != "" {
		query = query.Where("type = ?", opts.Type)
	}

	// Get total count
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	// Apply pagination
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	} else {
		query = query.Limit(50) // Default limit
	}

	if opts.Offset > 0 {
		query = query.Offset(opts.Offset)
	}

	// Order by most recent first
	if err := query.Order("created_at DESC").Find(&notifications).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch notifications: %w", err)
	}

	return notifications, total, nil
}

// GetNotificationByID retrieves a single notification by ID
func (s *NotificationService) GetNotificationByID(ctx context.Context, notificationID uint, userID uint) (*model.Notification, error) {
	var notification model.Notification

	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", notificationID, userID).
		First(&notification).Error

	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch notification: %w", err)
	}

	return &notification, nil
}

// MarkAsRead marks a notification as read
func (s *NotificationService) MarkAsRead(ctx context.Context, notificationID uint, userID uint) error {
	var notification model.Notification
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", notificationID, userID).
		First(&notification).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("notification not found")
		}
		return fmt.Errorf("failed to fetch notification: %w", err)
	}

	if notification.EstLue {
		return nil
	}

	notification.MarkRead(time.Now())
	if err := s.db.WithContext(ctx).Model(&notification).
		Updates(map[string]interface{}{
			"est_lue":      true,
			"date_lecture": notification.DateLecture,
		}).Error; err != nil {
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}

	return nil
}

// MarkAllAsRead marks all notifications for a user as read
func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uint) (int64, error) {
	result := s.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND est_lue = ?", userID, false).
		Updates(map[string]interface{}{
			"est_lue":      true,
			"date_lecture": time.Now(),
		})

	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark all notifications as read: %w", result.Error)
	}

	return result.RowsAffected, nil
}

// DeleteNotification deletes a notification
func (s *NotificationService) DeleteNotification(ctx context.Context, notificationID uint, userID uint) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Delete(&model.Notification{})

	if result.Error != nil {
		return fmt.Errorf("failed to delete notification: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("notification not found")
	}

	return nil
}

// DeleteAllNotifications removes every notification of a user and returns
// how many were deleted
func (s *NotificationService) DeleteAllNotifications(ctx context.Context, userID uint) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.Notification{})

	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete notifications: %w", result.Error)
	}

	return result.RowsAffected, nil
}

// GetUnreadCount returns the count of unread notifications for a user
func (s *NotificationService) GetUnreadCount(ctx context.Context, userID uint) (int64, error) {
	var count int64

	err := s.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND est_lue = ?", userID, false).
		Count(&count).Error

	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	return count, nil
}
