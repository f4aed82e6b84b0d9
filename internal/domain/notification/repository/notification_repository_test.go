package repository

import (
	"regexp"
	"testing"

	"microsocial/internal/domain/notification/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockRepo(t *testing.T) (NotificationRepository, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return NewNotificationRepository(db), mock
}

func TestNotificationRepository_Create(t *testing.T) {
	// Insert order: created_at, updated_at, deleted_at, recipient_id,
	// actor_id, type, message, target_id, is_read, id.
	t.Run("system notice inserts NULL actor and target", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "notifications"`)).
			WithArgs(
				sqlmock.AnyArg(),
				sqlmock.AnyArg(),
				nil,
				"member-1",
				nil, // an empty actor must never reach the uuid column as ""
				model.TypeGroupDeleted,
				`The group "hikers" was deleted`,
				nil,
				false,
				sqlmock.AnyArg(),
			).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.Create(model.New("member-1", "", model.TypeGroupDeleted,
			`The group "hikers" was deleted`, ""))
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("actor notice inserts both references", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "notifications"`)).
			WithArgs(
				sqlmock.AnyArg(),
				sqlmock.AnyArg(),
				nil,
				"author-1",
				"viewer-1",
				model.TypeLike,
				"viewer reacted to your post",
				"post-1",
				false,
				sqlmock.AnyArg(),
			).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.Create(model.New("author-1", "viewer-1", model.TypeLike,
			"viewer reacted to your post", "post-1"))
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestNotificationRepository_DeleteByActorAndTarget(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "notifications"`)).
		WithArgs("author-1", "viewer-1", "post-1", model.TypeLike).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.DeleteByActorAndTarget("author-1", "viewer-1", "post-1", model.TypeLike)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
