package repository

import (
	"time"

	followmodel "microsocial/internal/domain/follow/model"
	groupmodel "microsocial/internal/domain/group/model"
	notifmodel "microsocial/internal/domain/notification/model"
	postmodel "microsocial/internal/domain/post/model"
	usermodel "microsocial/internal/domain/user/model"

	"gorm.io/gorm"
)

// AdminRepository owns the cross-domain queries and destructive
// operations only administrators may run.
type AdminRepository interface {
	DeleteUserCascade(userID string) (mediaURLs []string, err error)
	CountPendingFollowRequests() (int64, error)
	CountPendingJoinRequests() (int64, error)
	CountActiveAuthorsSince(since time.Time) (int64, error)
}

type adminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) AdminRepository {
	return &adminRepository{db: db}
}

func (r *adminRepository) CountPendingFollowRequests() (int64, error) {
	var count int64
	err := r.db.Model(&followmodel.Follow{}).
		Where("status = ?", followmodel.StatusPending).
		Count(&count).Error
	return count, err
}

func (r *adminRepository) CountPendingJoinRequests() (int64, error) {
	var count int64
	err := r.db.Model(&groupmodel.GroupJoinRequest{}).Count(&count).Error
	return count, err
}

// CountActiveAuthorsSince counts distinct users that published a post
// after the given instant.
func (r *adminRepository) CountActiveAuthorsSince(since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&postmodel.Post{}).
		Where("created_at >= ?", since).
		Distinct("author_id").
		Count(&count).Error
	return count, err
}

// DeleteUserCascade erases a user and everything they produced in one
// transaction. Groups they owned pass to a successor; groups with nobody
// left are deleted. Returns the media URLs of the removed posts so the
// caller can clean up the stored files after commit.
func (r *adminRepository) DeleteUserCascade(userID string) ([]string, error) {
	var mediaURLs []string

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var postIDs []string
		if err := tx.Model(&postmodel.Post{}).
			Where("author_id = ?", userID).
			Pluck("id", &postIDs).Error; err != nil {
			return err
		}

		if len(postIDs) > 0 {
			if err := tx.Model(&postmodel.PostMedia{}).
				Where("post_id IN ?", postIDs).
				Pluck("url", &mediaURLs).Error; err != nil {
				return err
			}
		}

		// Reactions and comments: the user's own everywhere, plus
		// everyone's on the user's posts.
		reactions := tx.Unscoped().Where("user_id = ?", userID)
		if len(postIDs) > 0 {
			reactions = reactions.Or("post_id IN ?", postIDs)
		}
		if err := reactions.Delete(&postmodel.Reaction{}).Error; err != nil {
			return err
		}

		// Posts by other authors lose this user's comments; remember
		// which ones so their counters can be recomputed below.
		var commentedPostIDs []string
		affected := tx.Model(&postmodel.Comment{}).Where("author_id = ?", userID)
		if len(postIDs) > 0 {
			affected = affected.Where("post_id NOT IN ?", postIDs)
		}
		if err := affected.Distinct().
			Pluck("post_id", &commentedPostIDs).Error; err != nil {
			return err
		}

		comments := tx.Unscoped().Where("author_id = ?", userID)
		if len(postIDs) > 0 {
			comments = comments.Or("post_id IN ?", postIDs)
		}
		if err := comments.Delete(&postmodel.Comment{}).Error; err != nil {
			return err
		}

		for _, postID := range commentedPostIDs {
			var count int64
			if err := tx.Model(&postmodel.Comment{}).
				Where("post_id = ?", postID).
				Count(&count).Error; err != nil {
				return err
			}
			if err := tx.Model(&postmodel.Post{}).
				Where("id = ?", postID).
				Update("comments_count", count).Error; err != nil {
				return err
			}
		}

		saved := tx.Unscoped().Where("user_id = ?", userID)
		if len(postIDs) > 0 {
			saved = saved.Or("post_id IN ?", postIDs)
		}
		if err := saved.Delete(&postmodel.SavedPost{}).Error; err != nil {
			return err
		}

		if len(postIDs) > 0 {
			if err := tx.Unscoped().Where("post_id IN ?", postIDs).
				Delete(&postmodel.PostMedia{}).Error; err != nil {
				return err
			}
			if err := tx.Unscoped().Where("id IN ?", postIDs).
				Delete(&postmodel.Post{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Unscoped().
			Where("follower_id = ? OR following_id = ?", userID, userID).
			Delete(&followmodel.Follow{}).Error; err != nil {
			return err
		}

		if err := tx.Unscoped().Where("user_id = ?", userID).
			Delete(&groupmodel.GroupJoinRequest{}).Error; err != nil {
			return err
		}

		if err := tx.Unscoped().
			Where("recipient_id = ? OR actor_id = ?", userID, userID).
			Delete(&notifmodel.Notification{}).Error; err != nil {
			return err
		}

		if err := r.reassignOwnedGroups(tx, userID); err != nil {
			return err
		}

		if err := tx.Unscoped().Where("user_id = ?", userID).
			Delete(&groupmodel.GroupMember{}).Error; err != nil {
			return err
		}

		if err := tx.Unscoped().Where("sender_id = ?", userID).
			Delete(&groupmodel.GroupMessage{}).Error; err != nil {
			return err
		}

		return tx.Unscoped().Where("id = ?", userID).
			Delete(&usermodel.User{}).Error
	})
	if err != nil {
		return nil, err
	}

	return mediaURLs, nil
}

// reassignOwnedGroups runs the succession rule for every group the user
// owns; groups without a successor are torn down.
func (r *adminRepository) reassignOwnedGroups(tx *gorm.DB, userID string) error {
	var owned []groupmodel.Group
	if err := tx.Where("owner_id = ?", userID).Find(&owned).Error; err != nil {
		return err
	}

	for _, g := range owned {
		var members []groupmodel.GroupMember
		if err := tx.Where("group_id = ?", g.ID).
			Order("created_at ASC").
			Find(&members).Error; err != nil {
			return err
		}

		successor := groupmodel.ChooseSuccessor(members, userID)
		if successor == nil {
			if err := tx.Unscoped().Where("group_id = ?", g.ID).
				Delete(&groupmodel.GroupMessage{}).Error; err != nil {
				return err
			}
			if err := tx.Unscoped().Where("group_id = ?", g.ID).
				Delete(&groupmodel.GroupJoinRequest{}).Error; err != nil {
				return err
			}
			if err := tx.Unscoped().Where("group_id = ?", g.ID).
				Delete(&groupmodel.GroupMember{}).Error; err != nil {
				return err
			}
			if err := tx.Unscoped().Where("id = ?", g.ID).
				Delete(&groupmodel.Group{}).Error; err != nil {
				return err
			}
			continue
		}

		if err := tx.Model(&groupmodel.Group{}).Where("id = ?", g.ID).
			Update("owner_id", successor.UserID).Error; err != nil {
			return err
		}
	}

	return nil
}
