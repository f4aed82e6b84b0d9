package repository

import (
	"regexp"
	"testing"

	"microsocial/internal/domain/follow/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockRepo(t *testing.T) (FollowRepository, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return NewFollowRepository(db), mock
}

func TestFollowRepository_CountFollowers(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "follows"`)).
		WithArgs("user-1", model.StatusAccepted).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountFollowers("user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFollowRepository_IsAcceptedFollower(t *testing.T) {
	t.Run("anonymous viewer skips the query", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		ok, err := repo.IsAcceptedFollower("", "user-2")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("accepted edge", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "follows"`)).
			WithArgs("user-1", "user-2", model.StatusAccepted).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		ok, err := repo.IsAcceptedFollower("user-1", "user-2")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no edge", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "follows"`)).
			WithArgs("user-1", "user-2", model.StatusAccepted).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		ok, err := repo.IsAcceptedFollower("user-1", "user-2")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestFollowRepository_GetByPair_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "follows"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByPair("user-1", "user-2")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFollowRepository_ListAcceptedFollowingIDs(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "following_id" FROM "follows"`)).
		WithArgs("user-1", model.StatusAccepted).
		WillReturnRows(sqlmock.NewRows([]string{"following_id"}).
			AddRow("user-2").
			AddRow("user-3"))

	ids, err := repo.ListAcceptedFollowingIDs("user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"user-2", "user-3"}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFollowRepository_Delete_HardDeletes(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "follows"`)).
		WithArgs("follow-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	follow := &model.Follow{}
	follow.ID = "follow-1"
	err := repo.Delete(follow)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
