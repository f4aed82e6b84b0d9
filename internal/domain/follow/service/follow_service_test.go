package service

import (
	"testing"
	"time"

	"microsocial/internal/domain/follow/model"
	notifmodel "microsocial/internal/domain/notification/model"
	usermodel "microsocial/internal/domain/user/model"
	baseModel "microsocial/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

type MockFollowRepository struct {
	mock.Mock
}

func (m *MockFollowRepository) Create(follow *model.Follow) error {
	return m.Called(follow).Error(0)
}

func (m *MockFollowRepository) GetByPair(followerID, followingID string) (*model.Follow, error) {
	args := m.Called(followerID, followingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Follow), args.Error(1)
}

func (m *MockFollowRepository) GetByID(id string) (*model.Follow, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Follow), args.Error(1)
}

func (m *MockFollowRepository) Update(follow *model.Follow) error {
	return m.Called(follow).Error(0)
}

func (m *MockFollowRepository) Delete(follow *model.Follow) error {
	return m.Called(follow).Error(0)
}

func (m *MockFollowRepository) GetFollowers(userID string, offset, limit int) ([]model.Follow, int64, error) {
	args := m.Called(userID, offset, limit)
	return args.Get(0).([]model.Follow), args.Get(1).(int64), args.Error(2)
}

func (m *MockFollowRepository) GetFollowing(userID string, offset, limit int) ([]model.Follow, int64, error) {
	args := m.Called(userID, offset, limit)
	return args.Get(0).([]model.Follow), args.Get(1).(int64), args.Error(2)
}

func (m *MockFollowRepository) GetPendingRequests(userID string, offset, limit int) ([]model.Follow, int64, error) {
	args := m.Called(userID, offset, limit)
	return args.Get(0).([]model.Follow), args.Get(1).(int64), args.Error(2)
}

func (m *MockFollowRepository) CountFollowers(userID string) (int64, error) {
	args := m.Called(userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFollowRepository) CountFollowing(userID string) (int64, error) {
	args := m.Called(userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFollowRepository) IsAcceptedFollower(followerID, followingID string) (bool, error) {
	args := m.Called(followerID, followingID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFollowRepository) ListAcceptedFollowingIDs(userID string) ([]string, error) {
	args := m.Called(userID)
	return args.Get(0).([]string), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *usermodel.User) error {
	return m.Called(user).Error(0)
}

func (m *MockUserRepository) GetByID(id string) (*usermodel.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usermodel.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(email string) (*usermodel.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usermodel.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(username string) (*usermodel.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usermodel.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(email string) (bool, error) {
	args := m.Called(email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) ExistsByUsername(username, excludeID string) (bool, error) {
	args := m.Called(username, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Update(user *usermodel.User) error {
	return m.Called(user).Error(0)
}

func (m *MockUserRepository) GetList(offset, limit int) ([]usermodel.User, int64, error) {
	args := m.Called(offset, limit)
	return args.Get(0).([]usermodel.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) SearchByName(query string, limit int) ([]usermodel.User, error) {
	args := m.Called(query, limit)
	return args.Get(0).([]usermodel.User), args.Error(1)
}

func (m *MockUserRepository) Count() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) CountSince(since time.Time) (int64, error) {
	args := m.Called(since)
	return args.Get(0).(int64), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Dispatch(notification *notifmodel.Notification) error {
	return m.Called(notification).Error(0)
}

func (m *MockNotifier) Withdraw(recipientID, actorID, targetID, notifType string) error {
	return m.Called(recipientID, actorID, targetID, notifType).Error(0)
}

func user(id string, public bool) *usermodel.User {
	return &usermodel.User{
		BaseModel: baseModel.BaseModel{ID: id},
		Username:  "user-" + id,
		IsPublic:  public,
	}
}

func TestToggle(t *testing.T) {
	t.Run("following a public account is instant", func(t *testing.T) {
		repo := new(MockFollowRepository)
		userRepo := new(MockUserRepository)
		notifier := new(MockNotifier)
		svc := NewFollowService(repo, userRepo, notifier)

		userRepo.On("GetByID", "target").Return(user("target", true), nil)
		userRepo.On("GetByID", "me").Return(user("me", true), nil)
		repo.On("GetByPair", "me", "target").Return(nil, gorm.ErrRecordNotFound)
		repo.On("Create", mock.MatchedBy(func(f *model.Follow) bool {
			return f.Status == model.StatusAccepted && f.AcceptedAt != nil
		})).Return(nil)
		notifier.On("Dispatch", mock.MatchedBy(func(n *notifmodel.Notification) bool {
			return n.Type == notifmodel.TypeFollow && n.RecipientID == "target"
		})).Return(nil)

		result, err := svc.Toggle("me", "target")
		assert.NoError(t, err)
		assert.Equal(t, model.StatusAccepted, result.Status)
		repo.AssertExpectations(t)
		notifier.AssertExpectations(t)
	})

	t.Run("following a private account is pending", func(t *testing.T) {
		repo := new(MockFollowRepository)
		userRepo := new(MockUserRepository)
		notifier := new(MockNotifier)
		svc := NewFollowService(repo, userRepo, notifier)

		userRepo.On("GetByID", "target").Return(user("target", false), nil)
		userRepo.On("GetByID", "me").Return(user("me", true), nil)
		repo.On("GetByPair", "me", "target").Return(nil, gorm.ErrRecordNotFound)
		repo.On("Create", mock.MatchedBy(func(f *model.Follow) bool {
			return f.Status == model.StatusPending && f.AcceptedAt == nil
		})).Return(nil)
		notifier.On("Dispatch", mock.MatchedBy(func(n *notifmodel.Notification) bool {
			return n.Type == notifmodel.TypeFollowRequest
		})).Return(nil)

		result, err := svc.Toggle("me", "target")
		assert.NoError(t, err)
		assert.Equal(t, model.StatusPending, result.Status)
	})

	t.Run("toggling an accepted edge unfollows and withdraws the follow notice", func(t *testing.T) {
		repo := new(MockFollowRepository)
		userRepo := new(MockUserRepository)
		notifier := new(MockNotifier)
		svc := NewFollowService(repo, userRepo, notifier)

		existing := &model.Follow{FollowerID: "me", FollowingID: "target", Status: model.StatusAccepted}
		userRepo.On("GetByID", "target").Return(user("target", true), nil)
		repo.On("GetByPair", "me", "target").Return(existing, nil)
		repo.On("Delete", existing).Return(nil)
		notifier.On("Withdraw", "target", "me", "me", notifmodel.TypeFollow).Return(nil)

		result, err := svc.Toggle("me", "target")
		assert.NoError(t, err)
		assert.Equal(t, "none", result.Status)
		notifier.AssertExpectations(t)
		notifier.AssertNotCalled(t, "Dispatch", mock.Anything)
	})

	t.Run("toggling a pending edge cancels and withdraws the notice", func(t *testing.T) {
		repo := new(MockFollowRepository)
		userRepo := new(MockUserRepository)
		notifier := new(MockNotifier)
		svc := NewFollowService(repo, userRepo, notifier)

		existing := &model.Follow{FollowerID: "me", FollowingID: "target", Status: model.StatusPending}
		userRepo.On("GetByID", "target").Return(user("target", false), nil)
		repo.On("GetByPair", "me", "target").Return(existing, nil)
		repo.On("Delete", existing).Return(nil)
		notifier.On("Withdraw", "target", "me", "me", notifmodel.TypeFollowRequest).Return(nil)

		result, err := svc.Toggle("me", "target")
		assert.NoError(t, err)
		assert.Equal(t, "none", result.Status)
		notifier.AssertExpectations(t)
	})

	t.Run("self follow rejected", func(t *testing.T) {
		svc := NewFollowService(new(MockFollowRepository), new(MockUserRepository), new(MockNotifier))
		_, err := svc.Toggle("me", "me")
		assert.ErrorIs(t, err, ErrSelfFollow)
	})

	t.Run("unknown target rejected", func(t *testing.T) {
		repo := new(MockFollowRepository)
		userRepo := new(MockUserRepository)
		svc := NewFollowService(repo, userRepo, new(MockNotifier))

		userRepo.On("GetByID", "ghost").Return(nil, gorm.ErrRecordNotFound)

		_, err := svc.Toggle("me", "ghost")
		assert.ErrorIs(t, err, ErrTargetNotFound)
	})
}

func TestAccept(t *testing.T) {
	t.Run("pending request becomes accepted", func(t *testing.T) {
		repo := new(MockFollowRepository)
		userRepo := new(MockUserRepository)
		notifier := new(MockNotifier)
		svc := NewFollowService(repo, userRepo, notifier)

		pending := &model.Follow{FollowerID: "requester", FollowingID: "me", Status: model.StatusPending}
		repo.On("GetByPair", "requester", "me").Return(pending, nil)
		repo.On("Update", mock.MatchedBy(func(f *model.Follow) bool {
			return f.Status == model.StatusAccepted && f.AcceptedAt != nil
		})).Return(nil)
		userRepo.On("GetByID", "me").Return(user("me", false), nil)
		notifier.On("Dispatch", mock.MatchedBy(func(n *notifmodel.Notification) bool {
			return n.Type == notifmodel.TypeFollowAccepted && n.RecipientID == "requester"
		})).Return(nil)

		assert.NoError(t, svc.Accept("me", "requester"))
		repo.AssertExpectations(t)
	})

	t.Run("accepting an already accepted edge fails", func(t *testing.T) {
		repo := new(MockFollowRepository)
		svc := NewFollowService(repo, new(MockUserRepository), new(MockNotifier))

		accepted := &model.Follow{FollowerID: "requester", FollowingID: "me", Status: model.StatusAccepted}
		repo.On("GetByPair", "requester", "me").Return(accepted, nil)

		assert.ErrorIs(t, svc.Accept("me", "requester"), ErrNotPending)
	})

	t.Run("accepting a missing request fails", func(t *testing.T) {
		repo := new(MockFollowRepository)
		svc := NewFollowService(repo, new(MockUserRepository), new(MockNotifier))

		repo.On("GetByPair", "ghost", "me").Return(nil, gorm.ErrRecordNotFound)

		assert.ErrorIs(t, svc.Accept("me", "ghost"), ErrRequestNotFound)
	})
}

func TestDecline(t *testing.T) {
	repo := new(MockFollowRepository)
	svc := NewFollowService(repo, new(MockUserRepository), new(MockNotifier))

	pending := &model.Follow{FollowerID: "requester", FollowingID: "me", Status: model.StatusPending}
	repo.On("GetByPair", "requester", "me").Return(pending, nil)
	repo.On("Delete", pending).Return(nil)

	assert.NoError(t, svc.Decline("me", "requester"))
	repo.AssertExpectations(t)
}
