package contacts

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mrlokans/ir-contacts/internal/database"
	"github.com/mrlokans/ir-contacts/internal/entities"
)

func setupRepo(t *testing.T) (*Repository, *database.Database, func()) {
	t.Helper()

	dbPath := "./test_contacts_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return NewRepository(db.DB), db, cleanup
}

func intPtr(v int) *int { return &v }

func TestRepository_CreateAndGet(t *testing.T) {
	repo, _, cleanup := setupRepo(t)
	defer cleanup()

	contact := &entities.Contact{
		UserID:      1,
		Name:        "Ada Osei",
		Email:       "ada@example.com",
		Institution: "Northgate Capital",
		Priority:    intPtr(2),
	}
	require.NoError(t, repo.Create(contact))
	require.NotZero(t, contact.ID)

	t.Run("owner can read it back", func(t *testing.T) {
		got, err := repo.GetByID(contact.ID, 1)
		require.NoError(t, err)
		assert.Equal(t, "Ada Osei", got.Name)
		require.NotNil(t, got.Priority)
		assert.Equal(t, 2, *got.Priority)
	})

	t.Run("other users cannot see it", func(t *testing.T) {
		_, err := repo.GetByID(contact.ID, 99)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}

func TestRepository_CreateBatch(t *testing.T) {
	repo, _, cleanup := setupRepo(t)
	defer cleanup()

	t.Run("writes the whole batch", func(t *testing.T) {
		batch := []entities.Contact{
			{UserID: 1, Name: "A"},
			{UserID: 1, Name: "B"},
			{UserID: 1, Name: "C"},
		}
		require.NoError(t, repo.CreateBatch(batch))

		count, err := repo.CountForUser(1)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		assert.NoError(t, repo.CreateBatch(nil))
	})
}

func TestRepository_Update(t *testing.T) {
	repo, _, cleanup := setupRepo(t)
	defer cleanup()

	contact := &entities.Contact{UserID: 1, Name: "Before", Priority: intPtr(3)}
	require.NoError(t, repo.Create(contact))

	contact.Name = "After"
	contact.Priority = nil
	require.NoError(t, repo.Update(contact))

	got, err := repo.GetByID(contact.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, "After", got.Name)
	assert.Nil(t, got.Priority)
}

func TestRepository_Delete(t *testing.T) {
	repo, db, cleanup := setupRepo(t)
	defer cleanup()

	contact := &entities.Contact{UserID: 1, Name: "Ada Osei"}
	require.NoError(t, repo.Create(contact))
	require.NoError(t, db.DB.Create(&entities.Attachment{
		ContactID:   contact.ID,
		UserID:      1,
		FileName:    "deck.pdf",
		StoragePath: "attachments/x/deck.pdf",
	}).Error)

	t.Run("removes the contact and its attachment rows", func(t *testing.T) {
		require.NoError(t, repo.Delete(contact.ID, 1))

		_, err := repo.GetByID(contact.ID, 1)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

		var attachmentCount int64
		require.NoError(t, db.DB.Model(&entities.Attachment{}).
			Where("contact_id = ?", contact.ID).Count(&attachmentCount).Error)
		assert.Zero(t, attachmentCount)
	})

	t.Run("deleting a missing contact reports not found", func(t *testing.T) {
		err := repo.Delete(9999, 1)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}

func TestRepository_List(t *testing.T) {
	repo, _, cleanup := setupRepo(t)
	defer cleanup()

	seed := []entities.Contact{
		{UserID: 1, Name: "Ada Osei", Institution: "Northgate Capital", Priority: intPtr(1)},
		{UserID: 1, Name: "Jordan Blake", Institution: "Westfield Fund", Priority: intPtr(3)},
		{UserID: 1, Name: "Sam Park", Institution: "Northgate Capital", Details: "met at summit"},
		{UserID: 2, Name: "Other User", Institution: "Northgate Capital"},
	}
	require.NoError(t, repo.CreateBatch(seed))

	t.Run("returns only the user's contacts ordered by name", func(t *testing.T) {
		result, total, err := repo.List(1, ListOptions{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, result, 3)
		assert.Equal(t, "Ada Osei", result[0].Name)
		assert.Equal(t, "Jordan Blake", result[1].Name)
		assert.Equal(t, "Sam Park", result[2].Name)
	})

	t.Run("query matches across fields case-insensitively", func(t *testing.T) {
		result, _, err := repo.List(1, ListOptions{Query: "SUMMIT"})
		require.NoError(t, err)
		require.Len(t, result, 1)
		assert.Equal(t, "Sam Park", result[0].Name)
	})

	t.Run("institution filter is exact", func(t *testing.T) {
		result, _, err := repo.List(1, ListOptions{Institution: "northgate capital"})
		require.NoError(t, err)
		assert.Len(t, result, 2)
	})

	t.Run("priority filter", func(t *testing.T) {
		result, _, err := repo.List(1, ListOptions{Priority: intPtr(3)})
		require.NoError(t, err)
		require.Len(t, result, 1)
		assert.Equal(t, "Jordan Blake", result[0].Name)
	})

	t.Run("pagination keeps the full total", func(t *testing.T) {
		result, total, err := repo.List(1, ListOptions{Limit: 2, Offset: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, result, 1)
		assert.Equal(t, "Sam Park", result[0].Name)
	})
}

func TestRepository_GetAllOrderedByName(t *testing.T) {
	repo, _, cleanup := setupRepo(t)
	defer cleanup()

	require.NoError(t, repo.CreateBatch([]entities.Contact{
		{UserID: 1, Name: "Zed"},
		{UserID: 1, Name: "Ada"},
		{UserID: 2, Name: "Other"},
	}))

	result, err := repo.GetAllOrderedByName(1)
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, "Ada", result[0].Name)
	assert.Equal(t, "Zed", result[1].Name)
}
