package http

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mrlokans/ir-contacts/internal/database/attachments"
	"github.com/mrlokans/ir-contacts/internal/database/contacts"
	"github.com/mrlokans/ir-contacts/internal/entities"
	"github.com/mrlokans/ir-contacts/internal/storage"
)

// ContactsController serves the contact CRUD endpoints.
type ContactsController struct {
	contacts    *contacts.Repository
	attachments *attachments.Repository
	blobs       storage.BlobStore
}

// NewContactsController creates the contacts controller.
func NewContactsController(contactsRepo *contacts.Repository, attachmentsRepo *attachments.Repository, blobs storage.BlobStore) *ContactsController {
	return &ContactsController{
		contacts:    contactsRepo,
		attachments: attachmentsRepo,
		blobs:       blobs,
	}
}

// contactRequest is the JSON payload for create and update.
// The interaction date travels as a calendar date string.
type contactRequest struct {
	Name                string `json:"name"`
	Email               string `json:"email"`
	Phone               string `json:"phone"`
	Location            string `json:"location"`
	Institution         string `json:"institution"`
	Details             string `json:"details"`
	LastInteractionDate string `json:"last_interaction_date"`
	Priority            *int   `json:"priority"`
}

func (r *contactRequest) apply(contact *entities.Contact) error {
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	if r.Priority != nil && (*r.Priority < entities.PriorityMin || *r.Priority > entities.PriorityMax) {
		return fmt.Errorf("priority must be between %d and %d", entities.PriorityMin, entities.PriorityMax)
	}

	contact.Name = r.Name
	contact.Email = r.Email
	contact.Phone = r.Phone
	contact.Location = r.Location
	contact.Institution = r.Institution
	contact.Details = r.Details
	contact.Priority = r.Priority

	if r.LastInteractionDate == "" {
		contact.LastInteractionDate = nil
		return nil
	}
	parsed, err := time.ParseInLocation("2006-01-02", r.LastInteractionDate, time.UTC)
	if err != nil {
		return fmt.Errorf("last_interaction_date must be YYYY-MM-DD")
	}
	contact.LastInteractionDate = &parsed
	return nil
}

// List returns the user's contacts, optionally filtered and paginated.
func (ctrl *ContactsController) List(c *gin.Context) {
	limit, offset := parsePagination(c)
	opts := contacts.ListOptions{
		Query:       c.Query("q"),
		Institution: c.Query("institution"),
		Limit:       limit,
		Offset:      offset,
	}
	if p := c.Query("priority"); p != "" {
		value, err := strconv.Atoi(p)
		if err != nil || value < entities.PriorityMin || value > entities.PriorityMax {
			respondBadRequest(c, "invalid priority filter")
			return
		}
		opts.Priority = &value
	}

	result, total, err := ctrl.contacts.List(GetUserID(c), opts)
	if err != nil {
		respondInternalError(c, err, "list contacts")
		return
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:    result,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: int64(offset+len(result)) < total,
	})
}

// Get returns a single contact with its attachments.
func (ctrl *ContactsController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	contact, err := ctrl.contacts.GetByID(id, GetUserID(c))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "contact")
		return
	}
	if err != nil {
		respondInternalError(c, err, "get contact")
		return
	}

	files, err := ctrl.attachments.ListByContact(contact.ID, GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "list contact attachments")
		return
	}
	contact.Attachments = files

	c.JSON(http.StatusOK, contact)
}

// Create inserts a new contact.
func (ctrl *ContactsController) Create(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	contact := entities.Contact{UserID: GetUserID(c)}
	if err := req.apply(&contact); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	if err := ctrl.contacts.Create(&contact); err != nil {
		respondInternalError(c, err, "create contact")
		return
	}
	respondCreated(c, contact)
}

// Update replaces a contact's editable fields.
func (ctrl *ContactsController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	contact, err := ctrl.contacts.GetByID(id, GetUserID(c))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "contact")
		return
	}
	if err != nil {
		respondInternalError(c, err, "get contact")
		return
	}

	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	if err := req.apply(contact); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	if err := ctrl.contacts.Update(contact); err != nil {
		respondInternalError(c, err, "update contact")
		return
	}
	c.JSON(http.StatusOK, contact)
}

// Delete removes a contact, its attachment rows and their blobs.
func (ctrl *ContactsController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID := GetUserID(c)

	files, err := ctrl.attachments.ListByContact(id, userID)
	if err != nil {
		respondInternalError(c, err, "list contact attachments")
		return
	}

	if err := ctrl.contacts.Delete(id, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "contact")
			return
		}
		respondInternalError(c, err, "delete contact")
		return
	}

	for _, file := range files {
		if err := ctrl.blobs.Delete(c.Request.Context(), file.StoragePath); err != nil {
			// Leftover blobs are swept by the reconciliation task
			log.Printf("Failed to delete blob %s for contact %d: %v", file.StoragePath, id, err)
		}
	}

	respondSuccess(c, "contact deleted")
}
