package service

import (
	"context"
	"errors"
	"time"

	followrepo "microsocial/internal/domain/follow/repository"
	postmodel "microsocial/internal/domain/post/model"
	postrepo "microsocial/internal/domain/post/repository"
	"microsocial/internal/domain/user/model"
	"microsocial/internal/domain/user/repository"
	"microsocial/internal/pkg/access"
	"microsocial/internal/pkg/middleware"
	"microsocial/pkg/utils"

	"gorm.io/gorm"
)

var (
	ErrEmailTaken      = errors.New("email is already registered")
	ErrUsernameTaken   = errors.New("username is already taken")
	ErrInvalidLogin    = errors.New("invalid credentials")
	ErrUserNotFound    = errors.New("user not found")
	ErrWeakPassword    = errors.New("password must be at least 8 characters")
	ErrInvalidUsername = errors.New("username must be 3-50 characters")
)

// RegisterInput is the signup payload.
type RegisterInput struct {
	Email    string
	Username string
	Password string
	FullName string
}

// ProfileInput is the editable slice of an account.
type ProfileInput struct {
	Username  string
	FullName  string
	Bio       string
	AvatarURL string
	CoverURL  string
	Website   string
	Location  string
	IsPublic  *bool
}

// AuthResult is what login and register hand back to the client.
type AuthResult struct {
	Token     string      `json:"token"`
	ExpiresAt *time.Time  `json:"expiresAt"`
	User      *model.User `json:"user"`
}

// ProfileView is a username page: the account, its counters, the posts
// the viewer is allowed to see and the viewer's relationship to it.
type ProfileView struct {
	User           *model.User      `json:"user"`
	PostsCount     int64            `json:"postsCount"`
	FollowersCount int64            `json:"followersCount"`
	FollowingCount int64            `json:"followingCount"`
	IsOwn          bool             `json:"isOwn"`
	FollowStatus   string           `json:"followStatus"` // "", pending, accepted
	CanViewContent bool             `json:"canViewContent"`
	Posts          []postmodel.Post `json:"posts"`
}

// UserService covers signup, sessions and profile pages.
type UserService interface {
	Register(input RegisterInput) (*AuthResult, error)
	Login(identifier, password string) (*AuthResult, error)
	Logout(ctx context.Context, tokenID string, tokenExpiry time.Time) error
	GetByID(id string) (*model.User, error)
	GetProfile(username, viewerID string, viewerIsAdmin bool) (*ProfileView, error)
	UpdateProfile(userID string, input ProfileInput) (*model.User, error)
	UsernameAvailable(username, excludeID string) (bool, error)
}

type userService struct {
	repo       repository.UserRepository
	followRepo followrepo.FollowRepository
	postRepo   postrepo.PostRepository
}

func NewUserService(repo repository.UserRepository, followRepo followrepo.FollowRepository, postRepo postrepo.PostRepository) UserService {
	return &userService{
		repo:       repo,
		followRepo: followRepo,
		postRepo:   postRepo,
	}
}

func (s *userService) Register(input RegisterInput) (*AuthResult, error) {
	if len(input.Password) < 8 {
		return nil, ErrWeakPassword
	}
	if len(input.Username) < 3 || len(input.Username) > 50 {
		return nil, ErrInvalidUsername
	}

	if taken, err := s.repo.ExistsByEmail(input.Email); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrEmailTaken
	}
	if taken, err := s.repo.ExistsByUsername(input.Username, ""); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrUsernameTaken
	}

	user := &model.User{
		Email:    input.Email,
		Username: input.Username,
		FullName: input.FullName,
		IsPublic: true,
		Role:     model.RoleUser,
	}
	if err := user.SetPassword(input.Password); err != nil {
		return nil, err
	}
	if err := s.repo.Create(user); err != nil {
		return nil, err
	}

	return s.issueToken(user)
}

// Login accepts either the email or the username.
func (s *userService) Login(identifier, password string) (*AuthResult, error) {
	user, err := s.repo.GetByEmail(identifier)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		user, err = s.repo.GetByUsername(identifier)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrInvalidLogin
			}
			return nil, err
		}
	}

	if !user.CheckPassword(password) {
		return nil, ErrInvalidLogin
	}

	return s.issueToken(user)
}

func (s *userService) issueToken(user *model.User) (*AuthResult, error) {
	token, expiresAt, err := utils.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// Logout revokes the current token until its natural expiry.
func (s *userService) Logout(ctx context.Context, tokenID string, tokenExpiry time.Time) error {
	return middleware.RevokeToken(ctx, tokenID, time.Until(tokenExpiry))
}

func (s *userService) GetByID(id string) (*model.User, error) {
	user, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// GetProfile assembles a username page for the given viewer. Counters are
// always present; posts only when the visibility rules allow it.
func (s *userService) GetProfile(username, viewerID string, viewerIsAdmin bool) (*ProfileView, error) {
	owner, err := s.repo.GetByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	view := &ProfileView{
		User:  owner,
		IsOwn: viewerID == owner.ID,
	}

	if view.PostsCount, err = s.postRepo.CountByAuthor(owner.ID); err != nil {
		return nil, err
	}
	if view.FollowersCount, err = s.followRepo.CountFollowers(owner.ID); err != nil {
		return nil, err
	}
	if view.FollowingCount, err = s.followRepo.CountFollowing(owner.ID); err != nil {
		return nil, err
	}

	accepted := false
	if viewerID != "" && viewerID != owner.ID {
		relation, err := s.followRepo.GetByPair(viewerID, owner.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if relation != nil {
			view.FollowStatus = relation.Status
			accepted = relation.IsAccepted()
		}
	}

	view.CanViewContent = access.CanView(owner.IsPublic, owner.ID, viewerID, viewerIsAdmin, accepted)
	if view.CanViewContent {
		posts, _, err := s.postRepo.GetByAuthor(owner.ID, 0, 20)
		if err != nil {
			return nil, err
		}
		view.Posts = posts
	} else {
		view.Posts = []postmodel.Post{}
	}

	return view, nil
}

func (s *userService) UpdateProfile(userID string, input ProfileInput) (*model.User, error) {
	user, err := s.repo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if input.Username != "" && input.Username != user.Username {
		if len(input.Username) < 3 || len(input.Username) > 50 {
			return nil, ErrInvalidUsername
		}
		taken, err := s.repo.ExistsByUsername(input.Username, userID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrUsernameTaken
		}
		user.Username = input.Username
	}

	user.FullName = input.FullName
	user.Bio = input.Bio
	user.Website = input.Website
	user.Location = input.Location
	if input.AvatarURL != "" {
		user.AvatarURL = input.AvatarURL
	}
	if input.CoverURL != "" {
		user.CoverURL = input.CoverURL
	}
	if input.IsPublic != nil {
		user.IsPublic = *input.IsPublic
	}

	if err := s.repo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) UsernameAvailable(username, excludeID string) (bool, error) {
	if len(username) < 3 || len(username) > 50 {
		return false, nil
	}
	taken, err := s.repo.ExistsByUsername(username, excludeID)
	if err != nil {
		return false, err
	}
	return !taken, nil
}
