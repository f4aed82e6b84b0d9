package repository

import (
	"microsocial/internal/domain/notification/model"

	"gorm.io/gorm"
)

// NotificationRepository is the persistence interface for in-app
// notifications.
type NotificationRepository interface {
	Create(notification *model.Notification) error
	GetByID(id string) (*model.Notification, error)
	List(recipientID string, offset, limit int) ([]model.Notification, int64, error)
	CountUnread(recipientID string) (int64, error)
	MarkRead(id, recipientID string) error
	MarkAllRead(recipientID string) error
	Delete(id, recipientID string) error
	DeleteAll(recipientID string) error
	DeleteByActorAndTarget(recipientID, actorID, targetID, notifType string) error
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(notification *model.Notification) error {
	return r.db.Create(notification).Error
}

func (r *notificationRepository) GetByID(id string) (*model.Notification, error) {
	var notification model.Notification
	if err := r.db.Where("id = ?", id).First(&notification).Error; err != nil {
		return nil, err
	}
	return &notification, nil
}

func (r *notificationRepository) List(recipientID string, offset, limit int) ([]model.Notification, int64, error) {
	var notifications []model.Notification
	var total int64

	base := r.db.Model(&model.Notification{}).Where("recipient_id = ?", recipientID)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := base.
		Preload("Actor").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&notifications).Error
	return notifications, total, err
}

func (r *notificationRepository) CountUnread(recipientID string) (int64, error) {
	var count int64
	err := r.db.Model(&model.Notification{}).
		Where("recipient_id = ? AND is_read = false", recipientID).
		Count(&count).Error
	return count, err
}

// MarkRead is scoped to the recipient so users cannot touch others' rows.
func (r *notificationRepository) MarkRead(id, recipientID string) error {
	result := r.db.Model(&model.Notification{}).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Update("is_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(recipientID string) error {
	return r.db.Model(&model.Notification{}).
		Where("recipient_id = ? AND is_read = false", recipientID).
		Update("is_read", true).Error
}

func (r *notificationRepository) Delete(id, recipientID string) error {
	result := r.db.Unscoped().
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Delete(&model.Notification{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *notificationRepository) DeleteAll(recipientID string) error {
	return r.db.Unscoped().
		Where("recipient_id = ?", recipientID).
		Delete(&model.Notification{}).Error
}

// DeleteByActorAndTarget removes the notification an undone action had
// produced, e.g. un-reacting a post withdraws its like notice.
func (r *notificationRepository) DeleteByActorAndTarget(recipientID, actorID, targetID, notifType string) error {
	return r.db.Unscoped().
		Where("recipient_id = ? AND actor_id = ? AND target_id = ? AND type = ?",
			recipientID, actorID, targetID, notifType).
		Delete(&model.Notification{}).Error
}
