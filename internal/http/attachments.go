package http

import (
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mrlokans/ir-contacts/internal/database/attachments"
	"github.com/mrlokans/ir-contacts/internal/database/contacts"
	"github.com/mrlokans/ir-contacts/internal/entities"
	"github.com/mrlokans/ir-contacts/internal/storage"
)

// DefaultMaxUploadBytes caps attachment uploads at 50 MiB.
const DefaultMaxUploadBytes = 50 << 20

// AttachmentsController serves attachment upload, download and delete.
// Every operation keeps the metadata row and the stored blob in step:
// the blob is written before the row, and removed after the row.
type AttachmentsController struct {
	contacts    *contacts.Repository
	attachments *attachments.Repository
	blobs       storage.BlobStore
	maxBytes    int64
}

// NewAttachmentsController creates the attachments controller.
func NewAttachmentsController(contactsRepo *contacts.Repository, attachmentsRepo *attachments.Repository, blobs storage.BlobStore, maxBytes int64) *AttachmentsController {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &AttachmentsController{
		contacts:    contactsRepo,
		attachments: attachmentsRepo,
		blobs:       blobs,
		maxBytes:    maxBytes,
	}
}

// List returns the attachments of one contact.
func (ctrl *AttachmentsController) List(c *gin.Context) {
	contactID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID := GetUserID(c)

	if _, err := ctrl.contacts.GetByID(contactID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "contact")
			return
		}
		respondInternalError(c, err, "get contact")
		return
	}

	files, err := ctrl.attachments.ListByContact(contactID, userID)
	if err != nil {
		respondInternalError(c, err, "list attachments")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": files})
}

// Upload stores a multipart file for a contact. The blob goes into storage
// first; the metadata row is only written once the bytes are durable.
func (ctrl *AttachmentsController) Upload(c *gin.Context) {
	contactID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID := GetUserID(c)

	if _, err := ctrl.contacts.GetByID(contactID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "contact")
			return
		}
		respondInternalError(c, err, "get contact")
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, ctrl.maxBytes)
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		respondBadRequest(c, "no file provided")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		respondBadRequest(c, "file name is required")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(header.Filename))
	}

	storagePath := storage.NewStorageKey(header.Filename)
	if err := ctrl.blobs.Upload(c.Request.Context(), storagePath, file, header.Size, contentType); err != nil {
		respondInternalError(c, err, "upload attachment blob")
		return
	}

	attachment := entities.Attachment{
		ContactID:   contactID,
		UserID:      userID,
		FileName:    header.Filename,
		StoragePath: storagePath,
		MimeType:    contentType,
		SizeBytes:   header.Size,
	}
	if err := ctrl.attachments.Create(&attachment); err != nil {
		// Roll the blob back so it never outlives a failed metadata write
		if cleanupErr := ctrl.blobs.Delete(c.Request.Context(), storagePath); cleanupErr != nil {
			log.Printf("Failed to clean up blob %s after metadata error: %v", storagePath, cleanupErr)
		}
		respondInternalError(c, err, "create attachment")
		return
	}

	respondCreated(c, attachment)
}

// Download streams one attachment binary with its original file name.
func (ctrl *AttachmentsController) Download(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	attachment, err := ctrl.attachments.GetByID(id, GetUserID(c))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "attachment")
		return
	}
	if err != nil {
		respondInternalError(c, err, "get attachment")
		return
	}

	blob, err := ctrl.blobs.Download(c.Request.Context(), attachment.StoragePath)
	if err != nil {
		respondInternalError(c, err, "download attachment blob")
		return
	}
	defer blob.Close()

	contentType := attachment.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", attachment.FileName))
	if attachment.SizeBytes > 0 {
		c.DataFromReader(http.StatusOK, attachment.SizeBytes, contentType, blob, nil)
		return
	}
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, blob); err != nil {
		log.Printf("Failed to stream attachment %d: %v", attachment.ID, err)
	}
}

// Delete removes the metadata row, then the blob.
func (ctrl *AttachmentsController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID := GetUserID(c)

	attachment, err := ctrl.attachments.GetByID(id, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "attachment")
		return
	}
	if err != nil {
		respondInternalError(c, err, "get attachment")
		return
	}

	if err := ctrl.attachments.Delete(id, userID); err != nil {
		respondInternalError(c, err, "delete attachment")
		return
	}

	if err := ctrl.blobs.Delete(c.Request.Context(), attachment.StoragePath); err != nil {
		// Leftover blobs are swept by the reconciliation task
		log.Printf("Failed to delete blob %s: %v", attachment.StoragePath, err)
	}

	respondSuccess(c, "attachment deleted")
}
