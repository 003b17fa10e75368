// Package attachments provides database operations for attachment metadata.
//
// Only metadata lives here; the binaries themselves are kept in the blob
// store under each row's StoragePath.
package attachments

import (
	"gorm.io/gorm"

	"github.com/mrlokans/ir-contacts/internal/entities"
)

// Repository handles all attachment metadata operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new attachments repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a metadata row. The blob must already be persisted.
func (r *Repository) Create(attachment *entities.Attachment) error {
	return r.db.Create(attachment).Error
}

// GetByID retrieves an attachment owned by the given user.
func (r *Repository) GetByID(id, userID uint) (*entities.Attachment, error) {
	var attachment entities.Attachment
	err := r.db.Where("user_id = ?", userID).First(&attachment, id).Error
	if err != nil {
		return nil, err
	}
	return &attachment, nil
}

// Delete removes a metadata row. The caller removes the blob.
func (r *Repository) Delete(id, userID uint) error {
	result := r.db.Where("user_id = ?", userID).Delete(&entities.Attachment{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListByContact returns all attachments for one contact.
func (r *Repository) ListByContact(contactID, userID uint) ([]entities.Attachment, error) {
	var result []entities.Attachment
	err := r.db.Where("contact_id = ? AND user_id = ?", contactID, userID).
		Order("created_at ASC").Find(&result).Error
	return result, err
}

// ListForUser returns every attachment the user owns. Used by the export
// pipeline to group files under their contacts.
func (r *Repository) ListForUser(userID uint) ([]entities.Attachment, error) {
	var result []entities.Attachment
	err := r.db.Where("user_id = ?", userID).Order("contact_id ASC, created_at ASC").Find(&result).Error
	return result, err
}

// CountByContact returns the number of attachments per contact for a user.
func (r *Repository) CountByContact(userID uint) (map[uint]int64, error) {
	type row struct {
		ContactID uint
		N         int64
	}
	var rows []row
	err := r.db.Model(&entities.Attachment{}).
		Select("contact_id, COUNT(*) AS n").
		Where("user_id = ?", userID).
		Group("contact_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.ContactID] = r.N
	}
	return counts, nil
}

// AllStoragePaths returns every storage path known to the database,
// across all users. Used by the orphaned-blob reconciliation task.
func (r *Repository) AllStoragePaths() ([]string, error) {
	var paths []string
	err := r.db.Model(&entities.Attachment{}).Pluck("storage_path", &paths).Error
	return paths, err
}

// DeleteByStoragePath removes the metadata row for a blob that no longer
// exists. Used by the reconciliation task. Returns the number of rows removed.
func (r *Repository) DeleteByStoragePath(path string) (int64, error) {
	result := r.db.Where("storage_path = ?", path).Delete(&entities.Attachment{})
	return result.RowsAffected, result.Error
}
