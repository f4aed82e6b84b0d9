package service

import (
	"errors"
	"time"

	"microsocial/internal/domain/admin/repository"
	grouprepo "microsocial/internal/domain/group/repository"
	postrepo "microsocial/internal/domain/post/repository"
	usermodel "microsocial/internal/domain/user/model"
	userrepo "microsocial/internal/domain/user/repository"
	"microsocial/internal/pkg/uploader"
	"microsocial/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrSelfDeletion  = errors.New("administrators cannot delete their own account")
	ErrAdminDeletion = errors.New("another administrator cannot be deleted")
)

// DashboardStats is the admin landing page payload.
type DashboardStats struct {
	TotalUsers            int64 `json:"totalUsers"`
	NewUsers7d            int64 `json:"newUsers7d"`
	TotalPosts            int64 `json:"totalPosts"`
	NewPosts7d            int64 `json:"newPosts7d"`
	PostsToday            int64 `json:"postsToday"`
	ActiveUsersToday      int64 `json:"activeUsersToday"`
	TotalComments         int64 `json:"totalComments"`
	TotalGroups           int64 `json:"totalGroups"`
	PendingFollowRequests int64 `json:"pendingFollowRequests"`
	PendingJoinRequests   int64 `json:"pendingJoinRequests"`
}

// AdminService backs the administration dashboard.
type AdminService interface {
	Dashboard() (*DashboardStats, error)
	ListUsers(page, limit int) ([]usermodel.User, int64, error)
	DeleteUser(adminID, targetID string) error
}

type adminService struct {
	repo      repository.AdminRepository
	userRepo  userrepo.UserRepository
	postRepo  postrepo.PostRepository
	groupRepo grouprepo.GroupRepository
}

func NewAdminService(repo repository.AdminRepository, userRepo userrepo.UserRepository, postRepo postrepo.PostRepository, groupRepo grouprepo.GroupRepository) AdminService {
	return &adminService{
		repo:      repo,
		userRepo:  userRepo,
		postRepo:  postRepo,
		groupRepo: groupRepo,
	}
}

func (s *adminService) Dashboard() (*DashboardStats, error) {
	stats := &DashboardStats{}
	now := time.Now()
	weekAgo := now.AddDate(0, 0, -7)
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var err error
	if stats.TotalUsers, err = s.userRepo.Count(); err != nil {
		return nil, err
	}
	if stats.NewUsers7d, err = s.userRepo.CountSince(weekAgo); err != nil {
		return nil, err
	}
	if stats.TotalPosts, err = s.postRepo.CountPosts(); err != nil {
		return nil, err
	}
	if stats.NewPosts7d, err = s.postRepo.CountPostsSince(weekAgo); err != nil {
		return nil, err
	}
	if stats.PostsToday, err = s.postRepo.CountPostsSince(startOfDay); err != nil {
		return nil, err
	}
	if stats.ActiveUsersToday, err = s.repo.CountActiveAuthorsSince(startOfDay); err != nil {
		return nil, err
	}
	if stats.TotalComments, err = s.postRepo.CountComments(); err != nil {
		return nil, err
	}
	if stats.TotalGroups, err = s.groupRepo.CountGroups(); err != nil {
		return nil, err
	}
	if stats.PendingFollowRequests, err = s.repo.CountPendingFollowRequests(); err != nil {
		return nil, err
	}
	if stats.PendingJoinRequests, err = s.repo.CountPendingJoinRequests(); err != nil {
		return nil, err
	}

	return stats, nil
}

func (s *adminService) ListUsers(page, limit int) ([]usermodel.User, int64, error) {
	return s.userRepo.GetList((page-1)*limit, limit)
}

// DeleteUser erases an account and everything it produced. Admin accounts
// are protected; succession runs for every group the target owned.
func (s *adminService) DeleteUser(adminID, targetID string) error {
	if adminID == targetID {
		return ErrSelfDeletion
	}

	target, err := s.userRepo.GetByID(targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if target.IsAdmin() {
		return ErrAdminDeletion
	}

	mediaURLs, err := s.repo.DeleteUserCascade(targetID)
	if err != nil {
		return err
	}

	// Stored files are removed after the transaction committed; a failed
	// unlink only leaks a file, never database rows.
	if uploader.GlobalUploader != nil {
		for _, url := range mediaURLs {
			if err := uploader.GlobalUploader.DeleteFile(url); err != nil {
				logger.Log.Warn("media cleanup failed",
					zap.String("url", url), zap.Error(err))
			}
		}
	}

	logger.Log.Info("user deleted by admin",
		zap.String("admin", adminID), zap.String("user", targetID))
	return nil
}
