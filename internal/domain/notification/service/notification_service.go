package service

import (
	"context"
	"fmt"
	"time"

	"microsocial/internal/domain/notification/model"
	"microsocial/internal/domain/notification/repository"
	"microsocial/internal/pkg/worker"
	"microsocial/pkg/cache"
	"microsocial/pkg/logger"
	"microsocial/pkg/metrics"

	"go.uber.org/zap"
)

// Notifier is the write side other domains depend on. Follow, post and
// group services dispatch through it instead of touching the repository.
type Notifier interface {
	Dispatch(notification *model.Notification) error
	Withdraw(recipientID, actorID, targetID, notifType string) error
}

// NotificationService is the full interface backing the HTTP handlers.
type NotificationService interface {
	Notifier
	List(userID string, page, limit int) ([]model.Notification, int64, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
	MarkRead(userID, id string) error
	MarkAllRead(userID string) error
	Delete(userID, id string) error
	DeleteAll(userID string) error
}

const unreadCacheTTL = time.Minute

type notificationService struct {
	repo     repository.NotificationRepository
	cache    cache.CacheService
	pushPool *worker.PushPool
}

// NewNotificationService wires the repository with the unread-count cache
// and the optional push pool (nil when push is not configured).
func NewNotificationService(repo repository.NotificationRepository, cacheService cache.CacheService, pushPool *worker.PushPool) NotificationService {
	return &notificationService{
		repo:     repo,
		cache:    cacheService,
		pushPool: pushPool,
	}
}

func unreadKey(userID string) string {
	return fmt.Sprintf("notif:unread:%s", userID)
}

// Dispatch persists the notification, invalidates the recipient's unread
// counter and queues a best-effort mobile push.
func (s *notificationService) Dispatch(notification *model.Notification) error {
	if err := s.repo.Create(notification); err != nil {
		return err
	}

	metrics.CountNotification(notification.Type)
	s.invalidateUnread(notification.RecipientID)

	if s.pushPool != nil {
		s.pushPool.AddTask(worker.PushTask{
			AccountID: notification.RecipientID,
			Title:     "New activity",
			Body:      notification.Message,
			Ext: map[string]string{
				"type":     notification.Type,
				"targetId": notification.TargetRef(),
			},
		})
	}

	return nil
}

// Withdraw removes a previously dispatched notification after the action
// that caused it is undone.
func (s *notificationService) Withdraw(recipientID, actorID, targetID, notifType string) error {
	if err := s.repo.DeleteByActorAndTarget(recipientID, actorID, targetID, notifType); err != nil {
		return err
	}
	s.invalidateUnread(recipientID)
	return nil
}

func (s *notificationService) List(userID string, page, limit int) ([]model.Notification, int64, error) {
	offset := (page - 1) * limit
	return s.repo.List(userID, offset, limit)
}

// UnreadCount serves from redis when possible; the counter is hit on
// every page load.
func (s *notificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	var cached int64
	if err := s.cache.Get(ctx, unreadKey(userID), &cached); err == nil {
		return cached, nil
	}

	count, err := s.repo.CountUnread(userID)
	if err != nil {
		return 0, err
	}

	if err := s.cache.Set(ctx, unreadKey(userID), count, unreadCacheTTL); err != nil {
		logger.Log.Warn("unread count cache set failed", zap.Error(err))
	}
	return count, nil
}

func (s *notificationService) MarkRead(userID, id string) error {
	if err := s.repo.MarkRead(id, userID); err != nil {
		return err
	}
	s.invalidateUnread(userID)
	return nil
}

func (s *notificationService) MarkAllRead(userID string) error {
	if err := s.repo.MarkAllRead(userID); err != nil {
		return err
	}
	s.invalidateUnread(userID)
	return nil
}

func (s *notificationService) Delete(userID, id string) error {
	if err := s.repo.Delete(id, userID); err != nil {
		return err
	}
	s.invalidateUnread(userID)
	return nil
}

func (s *notificationService) DeleteAll(userID string) error {
	if err := s.repo.DeleteAll(userID); err != nil {
		return err
	}
	s.invalidateUnread(userID)
	return nil
}

func (s *notificationService) invalidateUnread(userID string) {
	if err := s.cache.Delete(context.Background(), unreadKey(userID)); err != nil {
		logger.Log.Warn("unread count cache invalidation failed",
			zap.String("user", userID), zap.Error(err))
	}
}
