package http

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/ir-contacts/internal/auth"
	"github.com/mrlokans/ir-contacts/internal/database"
	"github.com/mrlokans/ir-contacts/internal/database/jobs"
	"github.com/mrlokans/ir-contacts/internal/entities"
	"github.com/mrlokans/ir-contacts/internal/importers"
	"github.com/mrlokans/ir-contacts/internal/spreadsheet"
)

// ImportController serves spreadsheet inspection and the import pipeline.
type ImportController struct {
	db       *database.Database
	jobs     *jobs.Repository
	importer *importers.Pipeline

	authEnabled bool
}

// NewImportController creates the import controller.
func NewImportController(db *database.Database, jobsRepo *jobs.Repository, importer *importers.Pipeline, authEnabled bool) *ImportController {
	return &ImportController{
		db:          db,
		jobs:        jobsRepo,
		importer:    importer,
		authEnabled: authEnabled,
	}
}

// InspectResponse lists the selectable sheets of an uploaded workbook.
type InspectResponse struct {
	Sheets []spreadsheet.Summary `json:"sheets"`
}

// Inspect parses an upload far enough to list its importable sheets, so the
// caller can confirm a selection before anything is written.
func (ctrl *ImportController) Inspect(c *gin.Context) {
	wb, ok := ctrl.openUpload(c)
	if !ok {
		return
	}

	summaries := wb.Summaries()
	if len(summaries) == 0 {
		respondError(c, http.StatusUnprocessableEntity, spreadsheet.ErrNoDataSheets.Error())
		return
	}
	c.JSON(http.StatusOK, InspectResponse{Sheets: summaries})
}

// Import runs the full pipeline on an upload. Sheet names may be passed as a
// repeated "sheets" form field; an empty selection imports every data sheet.
// Progress is mirrored into a pollable job record.
func (ctrl *ImportController) Import(c *gin.Context) {
	user, err := ctrl.actingUser(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, importers.ErrNoUser.Error())
		return
	}

	wb, ok := ctrl.openUpload(c)
	if !ok {
		return
	}

	sheets, err := wb.Select(sheetSelection(c))
	if err != nil {
		respondError(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := ctrl.jobs.Start(user.ID, entities.JobTypeImport); err != nil {
		respondInternalError(c, err, "start import progress")
		return
	}

	progress := func(message string, percent int) {
		if err := ctrl.jobs.Update(user.ID, entities.JobTypeImport, message, percent); err != nil {
			log.Printf("Failed to record import progress: %v", err)
		}
	}

	result, err := ctrl.importer.Run(user, sheets, progress)
	if err != nil {
		if failErr := ctrl.jobs.Fail(user.ID, entities.JobTypeImport, err); failErr != nil {
			log.Printf("Failed to record import failure: %v", failErr)
		}
		status := http.StatusUnprocessableEntity
		if errors.Is(err, importers.ErrNoUser) {
			status = http.StatusUnauthorized
		}
		respondError(c, status, err.Error())
		return
	}

	summary := fmt.Sprintf("Imported %d contacts, skipped %d", result.Imported, result.Skipped)
	if err := ctrl.jobs.Complete(user.ID, entities.JobTypeImport, summary); err != nil {
		log.Printf("Failed to record import completion: %v", err)
	}

	c.JSON(http.StatusOK, result)
}

// Progress returns the latest import progress record for polling.
func (ctrl *ImportController) Progress(c *gin.Context) {
	progress, err := ctrl.jobs.Get(GetUserID(c), entities.JobTypeImport)
	if err != nil {
		respondInternalError(c, err, "get import progress")
		return
	}
	if progress == nil {
		respondNotFound(c, "import progress")
		return
	}
	c.JSON(http.StatusOK, progress)
}

// openUpload reads the multipart "file" field into a parsed workbook.
func (ctrl *ImportController) openUpload(c *gin.Context) (*spreadsheet.Workbook, bool) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		respondBadRequest(c, "no file provided")
		return nil, false
	}
	defer file.Close()

	wb, err := spreadsheet.Open(file, header.Filename, header.Header.Get("Content-Type"))
	if errors.Is(err, spreadsheet.ErrUnsupportedFormat) {
		respondError(c, http.StatusUnsupportedMediaType, err.Error())
		return nil, false
	}
	if err != nil {
		respondError(c, http.StatusUnprocessableEntity, err.Error())
		return nil, false
	}
	return wb, true
}

// actingUser resolves the user the import runs as. With auth disabled the
// whole instance belongs to one implicit user.
func (ctrl *ImportController) actingUser(c *gin.Context) (*entities.User, error) {
	if !ctrl.authEnabled {
		return &entities.User{ID: auth.DefaultUserID}, nil
	}
	return ctrl.db.GetUserByID(GetUserID(c))
}

// sheetSelection collects sheet names from repeated or comma-separated
// "sheets" form values.
func sheetSelection(c *gin.Context) []string {
	var names []string
	for _, raw := range c.PostFormArray("sheets") {
		for _, name := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(name); trimmed != "" {
				names = append(names, trimmed)
			}
		}
	}
	return names
}
