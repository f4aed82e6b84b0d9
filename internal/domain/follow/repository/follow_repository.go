package repository

import (
	"microsocial/internal/domain/follow/model"

	"gorm.io/gorm"
)

// FollowRepository is the persistence interface for follow edges.
type FollowRepository interface {
	Create(follow *model.Follow) error
	GetByPair(followerID, followingID string) (*model.Follow, error)
	GetByID(id string) (*model.Follow, error)
	Update(follow *model.Follow) error
	Delete(follow *model.Follow) error
	GetFollowers(userID string, offset, limit int) ([]model.Follow, int64, error)
	GetFollowing(userID string, offset, limit int) ([]model.Follow, int64, error)
	GetPendingRequests(userID string, offset, limit int) ([]model.Follow, int64, error)
	CountFollowers(userID string) (int64, error)
	CountFollowing(userID string) (int64, error)
	IsAcceptedFollower(followerID, followingID string) (bool, error)
	ListAcceptedFollowingIDs(userID string) ([]string, error)
}

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Create(follow *model.Follow) error {
	return r.db.Create(follow).Error
}

func (r *followRepository) GetByPair(followerID, followingID string) (*model.Follow, error) {
	var follow model.Follow
	err := r.db.
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		First(&follow).Error
	if err != nil {
		return nil, err
	}
	return &follow, nil
}

func (r *followRepository) GetByID(id string) (*model.Follow, error) {
	var follow model.Follow
	if err := r.db.Where("id = ?", id).First(&follow).Error; err != nil {
		return nil, err
	}
	return &follow, nil
}

func (r *followRepository) Update(follow *model.Follow) error {
	return r.db.Save(follow).Error
}

func (r *followRepository) Delete(follow *model.Follow) error {
	// Hard delete; a removed edge must not block re-following later.
	return r.db.Unscoped().Delete(follow).Error
}

func (r *followRepository) GetFollowers(userID string, offset, limit int) ([]model.Follow, int64, error) {
	var follows []model.Follow
	var total int64

	base := r.db.Model(&model.Follow{}).
		Where("following_id = ? AND status = ?", userID, model.StatusAccepted)

	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := base.
		Preload("Follower").
		Order("accepted_at DESC").
		Offset(offset).Limit(limit).
		Find(&follows).Error
	return follows, total, err
}

func (r *followRepository) GetFollowing(userID string, offset, limit int) ([]model.Follow, int64, error) {
	var follows []model.Follow
	var total int64

	base := r.db.Model(&model.Follow{}).
		Where("follower_id = ? AND status = ?", userID, model.StatusAccepted)

	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := base.
		Preload("Following").
		Order("accepted_at DESC").
		Offset(offset).Limit(limit).
		Find(&follows).Error
	return follows, total, err
}

func (r *followRepository) GetPendingRequests(userID string, offset, limit int) ([]model.Follow, int64, error) {
	var follows []model.Follow
	var total int64

	base := r.db.Model(&model.Follow{}).
		Where("following_id = ? AND status = ?", userID, model.StatusPending)

	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := base.
		Preload("Follower").
		Order("requested_at ASC").
		Offset(offset).Limit(limit).
		Find(&follows).Error
	return follows, total, err
}

func (r *followRepository) CountFollowers(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&model.Follow{}).
		Where("following_id = ? AND status = ?", userID, model.StatusAccepted).
		Count(&count).Error
	return count, err
}

func (r *followRepository) CountFollowing(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&model.Follow{}).
		Where("follower_id = ? AND status = ?", userID, model.StatusAccepted).
		Count(&count).Error
	return count, err
}

func (r *followRepository) IsAcceptedFollower(followerID, followingID string) (bool, error) {
	if followerID == "" {
		return false, nil
	}
	var count int64
	err := r.db.Model(&model.Follow{}).
		Where("follower_id = ? AND following_id = ? AND status = ?",
			followerID, followingID, model.StatusAccepted).
		Count(&count).Error
	return count > 0, err
}

// ListAcceptedFollowingIDs feeds the home timeline query.
func (r *followRepository) ListAcceptedFollowingIDs(userID string) ([]string, error) {
	var ids []string
	err := r.db.Model(&model.Follow{}).
		Where("follower_id = ? AND status = ?", userID, model.StatusAccepted).
		Pluck("following_id", &ids).Error
	return ids, err
}
