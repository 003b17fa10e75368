// Package contacts provides database operations for contact records.
//
// All queries are scoped to the owning user: a user can only ever see or
// modify their own rows.
package contacts

import (
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/ir-contacts/internal/entities"
)

// ListOptions narrows and paginates contact listings.
type ListOptions struct {
	Query       string // Matches name, email, institution or details (case-insensitive substring)
	Institution string // Exact institution filter (case-insensitive)
	Priority    *int   // Exact priority filter
	Limit       int
	Offset      int
}

// Repository handles all contact database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new contacts repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a single contact.
func (r *Repository) Create(contact *entities.Contact) error {
	return r.db.Create(contact).Error
}

// CreateBatch inserts a group of contacts in one insert request.
// Either the whole batch is written or none of it is.
func (r *Repository) CreateBatch(batch []entities.Contact) error {
	if len(batch) == 0 {
		return nil
	}
	return r.db.Create(&batch).Error
}

// GetByID retrieves a contact owned by the given user.
func (r *Repository) GetByID(id, userID uint) (*entities.Contact, error) {
	var contact entities.Contact
	err := r.db.Where("user_id = ?", userID).First(&contact, id).Error
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

// Update persists changes to an existing contact.
func (r *Repository) Update(contact *entities.Contact) error {
	return r.db.Save(contact).Error
}

// Delete removes a contact and its attachment metadata rows.
// Blob deletion is the caller's responsibility; fetch the attachment list
// first and remove the binaries before calling this.
func (r *Repository) Delete(id, userID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("user_id = ?", userID).Delete(&entities.Contact{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("contact_id = ? AND user_id = ?", id, userID).
			Delete(&entities.Attachment{}).Error
	})
}

// List returns contacts matching the given options, ordered by name.
func (r *Repository) List(userID uint, opts ListOptions) ([]entities.Contact, int64, error) {
	query := r.db.Model(&entities.Contact{}).Where("user_id = ?", userID)

	if q := strings.TrimSpace(opts.Query); q != "" {
		pattern := "%" + q + "%"
		query = query.Where(
			"LOWER(name) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?) OR LOWER(institution) LIKE LOWER(?) OR LOWER(details) LIKE LOWER(?)",
			pattern, pattern, pattern, pattern,
		)
	}
	if opts.Institution != "" {
		query = query.Where("LOWER(institution) = LOWER(?)", opts.Institution)
	}
	if opts.Priority != nil {
		query = query.Where("priority = ?", *opts.Priority)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		query = query.Offset(opts.Offset)
	}

	var result []entities.Contact
	err := query.Order("name ASC").Find(&result).Error
	return result, total, err
}

// GetAllOrderedByName returns every contact the user owns, ordered by name.
// Used by the export pipeline.
func (r *Repository) GetAllOrderedByName(userID uint) ([]entities.Contact, error) {
	var result []entities.Contact
	err := r.db.Where("user_id = ?", userID).Order("name ASC").Find(&result).Error
	return result, err
}

// CountForUser returns the number of contacts the user owns.
func (r *Repository) CountForUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.Contact{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
