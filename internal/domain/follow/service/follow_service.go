package service

import (
	"errors"
	"fmt"
	"time"

	"microsocial/internal/domain/follow/model"
	"microsocial/internal/domain/follow/repository"
	notifmodel "microsocial/internal/domain/notification/model"
	notifservice "microsocial/internal/domain/notification/service"
	userrepo "microsocial/internal/domain/user/repository"
	"microsocial/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrSelfFollow      = errors.New("cannot follow yourself")
	ErrTargetNotFound  = errors.New("user not found")
	ErrRequestNotFound = errors.New("follow request not found")
	ErrNotPending      = errors.New("follow request is not pending")
)

// ToggleResult tells the client what state the edge ended up in.
type ToggleResult struct {
	Status string `json:"status"` // none, pending, accepted
}

// FollowService implements the follow state machine. A row exists only
// while a request or relationship does; toggling an existing edge removes
// it, toggling an absent one creates it.
type FollowService interface {
	Toggle(followerID, targetID string) (*ToggleResult, error)
	Accept(userID, followerID string) error
	Decline(userID, followerID string) error
	GetFollowers(userID string, page, limit int) ([]model.Follow, int64, error)
	GetFollowing(userID string, page, limit int) ([]model.Follow, int64, error)
	GetPendingRequests(userID string, page, limit int) ([]model.Follow, int64, error)
}

type followService struct {
	repo     repository.FollowRepository
	userRepo userrepo.UserRepository
	notifier notifservice.Notifier
}

func NewFollowService(repo repository.FollowRepository, userRepo userrepo.UserRepository, notifier notifservice.Notifier) FollowService {
	return &followService{
		repo:     repo,
		userRepo: userRepo,
		notifier: notifier,
	}
}

// Toggle advances the edge one step. Public targets are followed
// instantly; private targets get a pending request they must approve.
func (s *followService) Toggle(followerID, targetID string) (*ToggleResult, error) {
	if followerID == targetID {
		return nil, ErrSelfFollow
	}

	target, err := s.userRepo.GetByID(targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTargetNotFound
		}
		return nil, err
	}

	existing, err := s.repo.GetByPair(followerID, targetID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// An existing edge means undo, whatever its state. The notice the
	// edge produced goes with it: the pending request notice on cancel,
	// the follow notice on unfollow.
	if existing != nil {
		if err := s.repo.Delete(existing); err != nil {
			return nil, err
		}
		switch existing.Status {
		case model.StatusPending:
			s.withdraw(targetID, followerID, followerID, notifmodel.TypeFollowRequest)
		case model.StatusAccepted:
			s.withdraw(targetID, followerID, followerID, notifmodel.TypeFollow)
		}
		return &ToggleResult{Status: "none"}, nil
	}

	follower, err := s.userRepo.GetByID(followerID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	follow := &model.Follow{
		FollowerID:  followerID,
		FollowingID: targetID,
		RequestedAt: now,
	}

	if target.IsPublic {
		follow.Status = model.StatusAccepted
		follow.AcceptedAt = &now
	} else {
		follow.Status = model.StatusPending
	}

	if err := s.repo.Create(follow); err != nil {
		return nil, err
	}

	if target.IsPublic {
		s.dispatch(notifmodel.New(targetID, followerID, notifmodel.TypeFollow,
			fmt.Sprintf("%s started following you", follower.DisplayName()), followerID))
		return &ToggleResult{Status: model.StatusAccepted}, nil
	}

	s.dispatch(notifmodel.New(targetID, followerID, notifmodel.TypeFollowRequest,
		fmt.Sprintf("%s requested to follow you", follower.DisplayName()), followerID))
	return &ToggleResult{Status: model.StatusPending}, nil
}

// dispatch and withdraw are best effort; a notification failure never
// fails the follow operation itself, it is logged and dropped.
func (s *followService) dispatch(n *notifmodel.Notification) {
	if err := s.notifier.Dispatch(n); err != nil {
		logger.Log.Warn("notification dispatch failed",
			zap.String("type", n.Type), zap.Error(err))
	}
}

func (s *followService) withdraw(recipientID, actorID, targetID, notifType string) {
	if err := s.notifier.Withdraw(recipientID, actorID, targetID, notifType); err != nil {
		logger.Log.Warn("notification withdrawal failed",
			zap.String("type", notifType), zap.Error(err))
	}
}

// Accept approves a pending request addressed to userID.
func (s *followService) Accept(userID, followerID string) error {
	follow, err := s.repo.GetByPair(followerID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRequestNotFound
		}
		return err
	}
	if follow.Status != model.StatusPending {
		return ErrNotPending
	}

	now := time.Now()
	follow.Status = model.StatusAccepted
	follow.AcceptedAt = &now
	if err := s.repo.Update(follow); err != nil {
		return err
	}

	target, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}

	s.dispatch(notifmodel.New(followerID, userID, notifmodel.TypeFollowAccepted,
		fmt.Sprintf("%s accepted your follow request", target.DisplayName()), userID))
	return nil
}

// Decline removes a pending request addressed to userID.
func (s *followService) Decline(userID, followerID string) error {
	follow, err := s.repo.GetByPair(followerID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRequestNotFound
		}
		return err
	}
	if follow.Status != model.StatusPending {
		return ErrNotPending
	}
	return s.repo.Delete(follow)
}

func (s *followService) GetFollowers(userID string, page, limit int) ([]model.Follow, int64, error) {
	return s.repo.GetFollowers(userID, (page-1)*limit, limit)
}

func (s *followService) GetFollowing(userID string, page, limit int) ([]model.Follow, int64, error) {
	return s.repo.GetFollowing(userID, (page-1)*limit, limit)
}

func (s *followService) GetPendingRequests(userID string, page, limit int) ([]model.Follow, int64, error) {
	return s.repo.GetPendingRequests(userID, (page-1)*limit, limit)
}
