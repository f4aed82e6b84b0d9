package service

import (
	"testing"
	"time"

	"microsocial/internal/domain/user/model"
	"microsocial/internal/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *model.User) error {
	return m.Called(user).Error(0)
}

func (m *MockUserRepository) GetByID(id string) (*model.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(email string) (*model.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(username string) (*model.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(email string) (bool, error) {
	args := m.Called(email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) ExistsByUsername(username, excludeID string) (bool, error) {
	args := m.Called(username, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Update(user *model.User) error {
	return m.Called(user).Error(0)
}

func (m *MockUserRepository) GetList(offset, limit int) ([]model.User, int64, error) {
	args := m.Called(offset, limit)
	return args.Get(0).([]model.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) SearchByName(query string, limit int) ([]model.User, error) {
	args := m.Called(query, limit)
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserRepository) Count() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) CountSince(since time.Time) (int64, error) {
	args := m.Called(since)
	return args.Get(0).(int64), args.Error(1)
}

func newTestUserService(repo *MockUserRepository) UserService {
	config.GlobalConfig.JWT.Secret = "test_secret_key_0123456789abcdef"
	config.GlobalConfig.JWT.Expire = 24
	// Follow and post repositories are untouched by the auth paths.
	return NewUserService(repo, nil, nil)
}

func TestUserService_Register(t *testing.T) {
	valid := RegisterInput{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "password123",
		FullName: "Alice",
	}

	t.Run("success issues a token", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("ExistsByEmail", valid.Email).Return(false, nil)
		repo.On("ExistsByUsername", valid.Username, "").Return(false, nil)
		repo.On("Create", mock.AnythingOfType("*model.User")).Return(nil)

		result, err := newTestUserService(repo).Register(valid)
		require.NoError(t, err)
		assert.NotEmpty(t, result.Token)
		assert.Equal(t, valid.Username, result.User.Username)
		assert.True(t, result.User.IsPublic)
		assert.True(t, result.User.CheckPassword(valid.Password))
		repo.AssertExpectations(t)
	})

	t.Run("weak password", func(t *testing.T) {
		repo := new(MockUserRepository)
		input := valid
		input.Password = "short"

		_, err := newTestUserService(repo).Register(input)
		assert.ErrorIs(t, err, ErrWeakPassword)
	})

	t.Run("username too short", func(t *testing.T) {
		repo := new(MockUserRepository)
		input := valid
		input.Username = "al"

		_, err := newTestUserService(repo).Register(input)
		assert.ErrorIs(t, err, ErrInvalidUsername)
	})

	t.Run("duplicate email", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("ExistsByEmail", valid.Email).Return(true, nil)

		_, err := newTestUserService(repo).Register(valid)
		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("duplicate username", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("ExistsByEmail", valid.Email).Return(false, nil)
		repo.On("ExistsByUsername", valid.Username, "").Return(true, nil)

		_, err := newTestUserService(repo).Register(valid)
		assert.ErrorIs(t, err, ErrUsernameTaken)
	})
}

func TestUserService_Login(t *testing.T) {
	user := &model.User{Email: "alice@example.com", Username: "alice"}
	user.ID = "user-1"
	require.NoError(t, user.SetPassword("password123"))

	t.Run("by email", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("GetByEmail", "alice@example.com").Return(user, nil)

		result, err := newTestUserService(repo).Login("alice@example.com", "password123")
		require.NoError(t, err)
		assert.NotEmpty(t, result.Token)
	})

	t.Run("by username falls back after email miss", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("GetByEmail", "alice").Return(nil, gorm.ErrRecordNotFound)
		repo.On("GetByUsername", "alice").Return(user, nil)

		result, err := newTestUserService(repo).Login("alice", "password123")
		require.NoError(t, err)
		assert.Equal(t, "user-1", result.User.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("GetByEmail", "alice@example.com").Return(user, nil)

		_, err := newTestUserService(repo).Login("alice@example.com", "nope")
		assert.ErrorIs(t, err, ErrInvalidLogin)
	})

	t.Run("unknown identifier", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("GetByEmail", "ghost").Return(nil, gorm.ErrRecordNotFound)
		repo.On("GetByUsername", "ghost").Return(nil, gorm.ErrRecordNotFound)

		_, err := newTestUserService(repo).Login("ghost", "password123")
		assert.ErrorIs(t, err, ErrInvalidLogin)
	})
}

func TestUserService_UpdateProfile(t *testing.T) {
	t.Run("username change checks availability", func(t *testing.T) {
		user := &model.User{Username: "alice", IsPublic: true}
		user.ID = "user-1"

		repo := new(MockUserRepository)
		repo.On("GetByID", "user-1").Return(user, nil)
		repo.On("ExistsByUsername", "alice2", "user-1").Return(false, nil)
		repo.On("Update", mock.AnythingOfType("*model.User")).Return(nil)

		updated, err := newTestUserService(repo).UpdateProfile("user-1", ProfileInput{Username: "alice2"})
		require.NoError(t, err)
		assert.Equal(t, "alice2", updated.Username)
	})

	t.Run("taken username rejected", func(t *testing.T) {
		user := &model.User{Username: "alice"}
		user.ID = "user-1"

		repo := new(MockUserRepository)
		repo.On("GetByID", "user-1").Return(user, nil)
		repo.On("ExistsByUsername", "bob", "user-1").Return(true, nil)

		_, err := newTestUserService(repo).UpdateProfile("user-1", ProfileInput{Username: "bob"})
		assert.ErrorIs(t, err, ErrUsernameTaken)
	})

	t.Run("going private flips the flag", func(t *testing.T) {
		user := &model.User{Username: "alice", IsPublic: true}
		user.ID = "user-1"

		repo := new(MockUserRepository)
		repo.On("GetByID", "user-1").Return(user, nil)
		repo.On("Update", mock.AnythingOfType("*model.User")).Return(nil)

		private := false
		updated, err := newTestUserService(repo).UpdateProfile("user-1", ProfileInput{IsPublic: &private})
		require.NoError(t, err)
		assert.False(t, updated.IsPublic)
	})
}

func TestUserService_UsernameAvailable(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("ExistsByUsername", "alice", "").Return(false, nil)

	svc := newTestUserService(repo)

	ok, err := svc.UsernameAvailable("alice", "")
	require.NoError(t, err)
	assert.True(t, ok)

	// Too short never hits the repository.
	ok, err = svc.UsernameAvailable("al", "")
	require.NoError(t, err)
	assert.False(t, ok)
}
