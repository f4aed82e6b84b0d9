package service

import (
	"context"
	"testing"
	"time"

	followmodel "microsocial/internal/domain/follow/model"
	notifmodel "microsocial/internal/domain/notification/model"
	"microsocial/internal/domain/post/model"
	usermodel "microsocial/internal/domain/user/model"
	"microsocial/internal/pkg/moderation"
	baseModel "microsocial/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) CreatePost(post *model.Post) error {
	return m.Called(post).Error(0)
}

func (m *MockPostRepository) GetPostByID(id string) (*model.Post, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Post), args.Error(1)
}

func (m *MockPostRepository) UpdatePost(post *model.Post) error {
	return m.Called(post).Error(0)
}

func (m *MockPostRepository) ReplaceMedia(postID string, media []model.PostMedia) error {
	return m.Called(postID, media).Error(0)
}

func (m *MockPostRepository) DeletePostCascade(postID string) error {
	return m.Called(postID).Error(0)
}

func (m *MockPostRepository) GetByAuthor(authorID string, offset, limit int) ([]model.Post, int64, error) {
	args := m.Called(authorID, offset, limit)
	return args.Get(0).([]model.Post), args.Get(1).(int64), args.Error(2)
}

func (m *MockPostRepository) CountByAuthor(authorID string) (int64, error) {
	args := m.Called(authorID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPostRepository) GetFeed(authorIDs []string, offset, limit int) ([]model.Post, int64, error) {
	args := m.Called(authorIDs, offset, limit)
	return args.Get(0).([]model.Post), args.Get(1).(int64), args.Error(2)
}

func (m *MockPostRepository) GetAllPosts(offset, limit int) ([]model.Post, int64, error) {
	args := m.Called(offset, limit)
	return args.Get(0).([]model.Post), args.Get(1).(int64), args.Error(2)
}

func (m *MockPostRepository) GetPublicFeed(limit int) ([]model.Post, error) {
	args := m.Called(limit)
	return args.Get(0).([]model.Post), args.Error(1)
}

func (m *MockPostRepository) SearchPosts(query string, authorIDs []string, limit int) ([]model.Post, error) {
	args := m.Called(query, authorIDs, limit)
	return args.Get(0).([]model.Post), args.Error(1)
}

func (m *MockPostRepository) CountPosts() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPostRepository) CountPostsSince(since time.Time) (int64, error) {
	args := m.Called(since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPostRepository) GetReaction(postID, userID string) (*model.Reaction, error) {
	args := m.Called(postID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Reaction), args.Error(1)
}

func (m *MockPostRepository) CreateReaction(reaction *model.Reaction) error {
	return m.Called(reaction).Error(0)
}

func (m *MockPostRepository) UpdateReaction(reaction *model.Reaction) error {
	return m.Called(reaction).Error(0)
}

func (m *MockPostRepository) DeleteReaction(reaction *model.Reaction) error {
	return m.Called(reaction).Error(0)
}

func (m *MockPostRepository) CountReactions(postID string) (int64, error) {
	args := m.Called(postID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPostRepository) CountReactionsByType(postID string) (map[string]int64, error) {
	args := m.Called(postID)
	return args.Get(0).(map[string]int64), args.Error(1)
}

func (m *MockPostRepository) CreateComment(comment *model.Comment) error {
	return m.Called(comment).Error(0)
}

func (m *MockPostRepository) GetCommentByID(id string) (*model.Comment, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Comment), args.Error(1)
}

func (m *MockPostRepository) UpdateComment(comment *model.Comment) error {
	return m.Called(comment).Error(0)
}

func (m *MockPostRepository) DeleteComment(comment *model.Comment) error {
	return m.Called(comment).Error(0)
}

func (m *MockPostRepository) GetComments(postID string, offset, limit int) ([]model.Comment, int64, error) {
	args := m.Called(postID, offset, limit)
	return args.Get(0).([]model.Comment), args.Get(1).(int64), args.Error(2)
}

func (m *MockPostRepository) RefreshCommentsCount(postID string) (int64, error) {
	args := m.Called(postID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPostRepository) CountComments() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPostRepository) SavePost(saved *model.SavedPost) error {
	return m.Called(saved).Error(0)
}

func (m *MockPostRepository) UnsavePost(userID, postID string) error {
	return m.Called(userID, postID).Error(0)
}

func (m *MockPostRepository) IsSaved(userID, postID string) (bool, error) {
	args := m.Called(userID, postID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPostRepository) GetSavedPosts(userID string, offset, limit int) ([]model.Post, int64, error) {
	args := m.Called(userID, offset, limit)
	return args.Get(0).([]model.Post), args.Get(1).(int64), args.Error(2)
}

type MockFollowRepository struct {
	mock.Mock
}

func (m *MockFollowRepository) Create(follow *followmodel.Follow) error {
	return m.Called(follow).Error(0)
}

func (m *MockFollowRepository) GetByPair(followerID, followingID string) (*followmodel.Follow, error) {
	args := m.Called(followerID, followingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*followmodel.Follow), args.Error(1)
}

func (m *MockFollowRepository) GetByID(id string) (*followmodel.Follow, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*followmodel.Follow), args.Error(1)
}

func (m *MockFollowRepository) Update(follow *followmodel.Follow) error {
	return m.Called(follow).Error(0)
}

func (m *MockFollowRepository) Delete(follow *followmodel.Follow) error {
	return m.Called(follow).Error(0)
}

func (m *MockFollowRepository) GetFollowers(userID string, offset, limit int) ([]followmodel.Follow, int64, error) {
	args := m.Called(userID, offset, limit)
	return args.Get(0).([]followmodel.Follow), args.Get(1).(int64), args.Error(2)
}

func (m *MockFollowRepository) GetFollowing(userID string, offset, limit int) ([]followmodel.Follow, int64, error) {
	args := m.Called(userID, offset, limit)
	return args.Get(0).([]followmodel.Follow), args.Get(1).(int64), args.Error(2)
}

func (m *MockFollowRepository) GetPendingRequests(userID string, offset, limit int) ([]followmodel.Follow, int64, error) {
	args := m.Called(userID, offset, limit)
	return args.Get(0).([]followmodel.Follow), args.Get(1).(int64), args.Error(2)
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

type stubModerator struct {
	verdict *moderation.Result
}

func (s stubModerator) Check(ctx context.Context, text string) (*moderation.Result, error) {
	return s.verdict, nil
}

func cleanModerator() stubModerator {
	return stubModerator{verdict: &moderation.Result{IsClean: true}}
}

func publicPost(id, authorID string) *model.Post {
	return &model.Post{
		BaseModel: baseModel.BaseModel{ID: id},
		AuthorID:  authorID,
		Content:   "hello",
		Author: &usermodel.User{
			BaseModel: baseModel.BaseModel{ID: authorID},
			Username:  "author",
			IsPublic:  true,
		},
	}
}

func newService(repo *MockPostRepository, userRepo *MockUserRepository, followRepo *MockFollowRepository, notifier *MockNotifier, mod moderation.Moderator) PostService {
	return NewPostService(repo, userRepo, followRepo, notifier, mod)
}

func TestReact(t *testing.T) {
	t.Run("first reaction notifies the author", func(t *testing.T) {
		repo := new(MockPostRepository)
		userRepo := new(MockUserRepository)
		followRepo := new(MockFollowRepository)
		notifier := new(MockNotifier)
		svc := newService(repo, userRepo, followRepo, notifier, cleanModerator())

		post := publicPost("p1", "author")
		repo.On("GetPostByID", "p1").Return(post, nil)
		followRepo.On("IsAcceptedFollower", "viewer", "author").Return(false, nil)
		repo.On("GetReaction", "p1", "viewer").Return(nil, gorm.ErrRecordNotFound)
		repo.On("CreateReaction", mock.MatchedBy(func(r *model.Reaction) bool {
			return r.Type == model.ReactionLike && r.UserID == "viewer"
		})).Return(nil)
		userRepo.On("GetByID", "viewer").Return(&usermodel.User{
			BaseModel: baseModel.BaseModel{ID: "viewer"}, Username: "viewer",
		}, nil)
		notifier.On("Dispatch", mock.MatchedBy(func(n *notifmodel.Notification) bool {
			return n.Type == notifmodel.TypeLike && n.RecipientID == "author"
		})).Return(nil)
		repo.On("CountReactions", "p1").Return(int64(1), nil)

		result, err := svc.React("viewer", "p1", model.ReactionLike)
		assert.NoError(t, err)
		assert.Equal(t, model.ReactionLike, result.Reaction)
		assert.Equal(t, int64(1), result.LikesCount)
		notifier.AssertExpectations(t)
	})

	t.Run("same reaction again removes it and the notice", func(t *testing.T) {
		repo := new(MockPostRepository)
		userRepo := new(MockUserRepository)
		followRepo := new(MockFollowRepository)
		notifier := new(MockNotifier)
		svc := newService(repo, userRepo, followRepo, notifier, cleanModerator())

		post := publicPost("p1", "author")
		existing := &model.Reaction{PostID: "p1", UserID: "viewer", Type: model.ReactionLike}
		repo.On("GetPostByID", "p1").Return(post, nil)
		followRepo.On("IsAcceptedFollower", "viewer", "author").Return(false, nil)
		repo.On("GetReaction", "p1", "viewer").Return(existing, nil)
		repo.On("DeleteReaction", existing).Return(nil)
		notifier.On("Withdraw", "author", "viewer", "p1", notifmodel.TypeLike).Return(nil)
		repo.On("CountReactions", "p1").Return(int64(0), nil)

		result, err := svc.React("viewer", "p1", model.ReactionLike)
		assert.NoError(t, err)
		assert.Empty(t, result.Reaction)
		assert.Equal(t, int64(0), result.LikesCount)
		notifier.AssertExpectations(t)
	})

	t.Run("different reaction swaps type without a new notice", func(t *testing.T) {
		repo := new(MockPostRepository)
		userRepo := new(MockUserRepository)
		followRepo := new(MockFollowRepository)
		notifier := new(MockNotifier)
		svc := newService(repo, userRepo, followRepo, notifier, cleanModerator())

		post := publicPost("p1", "author")
		existing := &model.Reaction{PostID: "p1", UserID: "viewer", Type: model.ReactionLike}
		repo.On("GetPostByID", "p1").Return(post, nil)
		followRepo.On("IsAcceptedFollower", "viewer", "author").Return(false, nil)
		repo.On("GetReaction", "p1", "viewer").Return(existing, nil)
		repo.On("UpdateReaction", mock.MatchedBy(func(r *model.Reaction) bool {
			return r.Type == model.ReactionLove
		})).Return(nil)
		repo.On("CountReactions", "p1").Return(int64(1), nil)

		result, err := svc.React("viewer", "p1", model.ReactionLove)
		assert.NoError(t, err)
		assert.Equal(t, model.ReactionLove, result.Reaction)
		notifier.AssertNotCalled(t, "Dispatch", mock.Anything)
		notifier.AssertNotCalled(t, "Withdraw", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("reacting to own post stays silent", func(t *testing.T) {
		repo := new(MockPostRepository)
		userRepo := new(MockUserRepository)
		followRepo := new(MockFollowRepository)
		notifier := new(MockNotifier)
		svc := newService(repo, userRepo, followRepo, notifier, cleanModerator())

		post := publicPost("p1", "author")
		repo.On("GetPostByID", "p1").Return(post, nil)
		followRepo.On("IsAcceptedFollower", "author", "author").Return(false, nil)
		repo.On("GetReaction", "p1", "author").Return(nil, gorm.ErrRecordNotFound)
		repo.On("CreateReaction", mock.Anything).Return(nil)
		repo.On("CountReactions", "p1").Return(int64(1), nil)

		_, err := svc.React("author", "p1", model.ReactionLike)
		assert.NoError(t, err)
		notifier.AssertNotCalled(t, "Dispatch", mock.Anything)
	})

	t.Run("unknown reaction type rejected", func(t *testing.T) {
		svc := newService(new(MockPostRepository), new(MockUserRepository), new(MockFollowRepository), new(MockNotifier), cleanModerator())
		_, err := svc.React("viewer", "p1", "sparkle")
		assert.ErrorIs(t, err, ErrInvalidReaction)
	})
}

func TestCreateModeration(t *testing.T) {
	t.Run("rejected content never reaches the repository", func(t *testing.T) {
		repo := new(MockPostRepository)
		svc := newService(repo, new(MockUserRepository), new(MockFollowRepository), new(MockNotifier),
			stubModerator{verdict: &moderation.Result{IsClean: false, Reason: "hate speech"}})

		_, err := svc.Create(context.Background(), "author", "some text", nil)
		assert.ErrorIs(t, err, ErrContentRejected)
		repo.AssertNotCalled(t, "CreatePost", mock.Anything)
	})

	t.Run("empty content rejected before moderation", func(t *testing.T) {
		svc := newService(new(MockPostRepository), new(MockUserRepository), new(MockFollowRepository), new(MockNotifier), cleanModerator())
		_, err := svc.Create(context.Background(), "author", "", nil)
		assert.ErrorIs(t, err, ErrEmptyContent)
	})
}

func TestPrivatePostHidden(t *testing.T) {
	repo := new(MockPostRepository)
	followRepo := new(MockFollowRepository)
	svc := newService(repo, new(MockUserRepository), followRepo, new(MockNotifier), cleanModerator())

	post := publicPost("p1", "author")
	post.Author.IsPublic = false
	repo.On("GetPostByID", "p1").Return(post, nil)
	followRepo.On("IsAcceptedFollower", "stranger", "author").Return(false, nil)

	_, err := svc.Get("p1", "stranger", false)
	assert.ErrorIs(t, err, ErrNoAccess)
}
