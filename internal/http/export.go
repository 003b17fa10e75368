package http

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/ir-contacts/internal/database/jobs"
	"github.com/mrlokans/ir-contacts/internal/entities"
	"github.com/mrlokans/ir-contacts/internal/exporters"
)

// ExportController streams the export archive.
type ExportController struct {
	jobs     *jobs.Repository
	exporter *exporters.Pipeline
}

// NewExportController creates the export controller.
func NewExportController(jobsRepo *jobs.Repository, exporter *exporters.Pipeline) *ExportController {
	return &ExportController{
		jobs:     jobsRepo,
		exporter: exporter,
	}
}

// Export assembles the archive and streams it to the caller. The archive
// holds the contacts workbook plus one folder of attachments per contact.
// Progress is mirrored into a pollable job record.
func (ctrl *ExportController) Export(c *gin.Context) {
	userID := GetUserID(c)

	if err := ctrl.jobs.Start(userID, entities.JobTypeExport); err != nil {
		respondInternalError(c, err, "start export progress")
		return
	}

	progress := func(message string, percent int) {
		if err := ctrl.jobs.Update(userID, entities.JobTypeExport, message, percent); err != nil {
			log.Printf("Failed to record export progress: %v", err)
		}
	}

	fileName := exporters.ArchiveFileName(time.Now())
	c.Header("Content-Type", "application/zip")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))

	// The pipeline checks for an empty contact list before any byte is
	// written, so the error paths below can still send plain JSON.
	err := ctrl.exporter.Run(c.Request.Context(), userID, c.Writer, progress)
	if errors.Is(err, exporters.ErrNoContacts) {
		if failErr := ctrl.jobs.Fail(userID, entities.JobTypeExport, err); failErr != nil {
			log.Printf("Failed to record export failure: %v", failErr)
		}
		c.Header("Content-Type", "application/json")
		c.Header("Content-Disposition", "")
		respondError(c, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err != nil {
		if failErr := ctrl.jobs.Fail(userID, entities.JobTypeExport, err); failErr != nil {
			log.Printf("Failed to record export failure: %v", failErr)
		}
		// Headers may already be on the wire; all we can do is abort
		log.Printf("Export failed for user %d: %v", userID, err)
		c.Abort()
		return
	}

	if err := ctrl.jobs.Complete(userID, entities.JobTypeExport, "Export complete"); err != nil {
		log.Printf("Failed to record export completion: %v", err)
	}
}

// Progress returns the latest export progress record for polling.
func (ctrl *ExportController) Progress(c *gin.Context) {
	progress, err := ctrl.jobs.Get(GetUserID(c), entities.JobTypeExport)
	if err != nil {
		respondInternalError(c, err, "get export progress")
		return
	}
	if progress == nil {
		respondNotFound(c, "export progress")
		return
	}
	c.JSON(http.StatusOK, progress)
}
