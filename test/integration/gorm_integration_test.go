package integration

import (
	"context"
	"log"
	"os"
	"testing"

	"trace-journal-be/internal/entity"
	"trace-journal-be/internal/repository/specification"
	"trace-journal-be/internal/repository/unitofwork"
	"trace-journal-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	// Verify wiring
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.UserRepository())
	assert.NotNil(t, uow.DeviceRepository())
	assert.NotNil(t, uow.EntryRepository())
	assert.NotNil(t, uow.AttachmentRepository())
	assert.NotNil(t, uow.NotificationRepository())

	// Basic ping
	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)
	t.Log("Successfully connected to DB and initialized UnitOfWork factory")

	t.Run("Check User Repository", func(t *testing.T) {
		count, err := uow.UserRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("User count: %d", count)
	})

	t.Run("Versioned Entry Update", func(t *testing.T) {
		ctx := context.Background()

		user := &entity.User{
			Id:    uuid.New(),
			Email: "test-integration-" + uuid.New().String() + "@example.com",
		}
		require.NoError(t, uow.UserRepository().Create(ctx, user))

		origin := uuid.New()
		entry := &entity.Entry{
			Id:                uuid.New(),
			UserId:            user.Id,
			Version:           1,
			LastEditingOrigin: origin.String(),
			Title:             "integration entry",
			Content:           "first body",
			Status:            entity.EntryStatusNone,
		}
		require.NoError(t, uow.EntryRepository().Create(ctx, entry))

		// Matched expected version: the write lands.
		entry.Version = 2
		entry.Title = "integration entry v2"
		ok, err := uow.EntryRepository().UpdateVersioned(ctx, entry, 1)
		require.NoError(t, err)
		assert.True(t, ok)

		// Stale expected version: rejected, no rows touched.
		entry.Version = 3
		entry.Title = "should not land"
		ok, err = uow.EntryRepository().UpdateVersioned(ctx, entry, 1)
		require.NoError(t, err)
		assert.False(t, ok)

		reloaded, err := uow.EntryRepository().FindOne(ctx,
			specification.ByID{ID: entry.Id},
			specification.OwnedByUser{UserID: user.Id},
		)
		require.NoError(t, err)
		require.NotNil(t, reloaded)
		assert.Equal(t, int64(2), reloaded.Version)
		assert.Equal(t, "integration entry v2", reloaded.Title)

		// Cleanup
		assert.NoError(t, uow.EntryRepository().Delete(ctx, entry.Id))
	})

	t.Run("Attachment Count", func(t *testing.T) {
		ctx := context.Background()

		count, err := uow.AttachmentRepository().CountByEntry(ctx, uuid.New())
		assert.NoError(t, err)
		assert.Equal(t, int64(0), count)
	})
}
