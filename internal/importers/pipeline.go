package importers

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/mrlokans/ir-contacts/internal/config"
	"github.com/mrlokans/ir-contacts/internal/entities"
	"github.com/mrlokans/ir-contacts/internal/spreadsheet"
)

var (
	// ErrNoUser is returned before any write when no acting user exists.
	ErrNoUser = errors.New("authentication required to import contacts")
	// ErrNoValidContacts is returned when every row lacks a name.
	ErrNoValidContacts = errors.New("no valid contacts to import: every row is missing a name")
)

// ContactWriter persists one batch of contacts in a single insert request.
type ContactWriter interface {
	CreateBatch(batch []entities.Contact) error
}

// ProgressFunc receives human-readable progress updates. Percent is in
// [0,100] and never decreases within one run.
type ProgressFunc func(message string, percent int)

// Result aggregates the outcome of one import run. Batch failures do not
// abort the run; they are collected here.
type Result struct {
	Success  bool     `json:"success"`
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// Pipeline drives parsed sheets into persisted storage with batching,
// progress reporting and partial-failure tolerance.
type Pipeline struct {
	writer     ContactWriter
	normalizer *Normalizer
	batchSize  int
}

// NewPipeline creates an import pipeline.
func NewPipeline(writer ContactWriter, normalizer *Normalizer, batchSize int) *Pipeline {
	if batchSize <= 0 {
		batchSize = config.DefaultImportBatchSize
	}
	return &Pipeline{
		writer:     writer,
		normalizer: normalizer,
		batchSize:  batchSize,
	}
}

// Preview converts the selected sheets into preview contacts without writing
// anything. Sheet markers are added only when more than one sheet is
// involved; rows keep sheet enumeration order.
func (p *Pipeline) Preview(sheets []spreadsheet.Sheet) []entities.Contact {
	var previews []entities.Contact
	multiSheet := len(sheets) > 1

	for _, sheet := range sheets {
		marker := ""
		if multiSheet {
			marker = sheet.Name
		}
		for _, row := range sheet.Rows {
			previews = append(previews, p.normalizer.ContactFromRow(row, sheet.Headers, marker))
		}
	}
	return previews
}

// Run imports the selected sheets for the given user. It fails before any
// write when the user is missing or no row has a usable name; afterwards a
// failed batch only skips its own rows.
func (p *Pipeline) Run(user *entities.User, sheets []spreadsheet.Sheet, progress ProgressFunc) (Result, error) {
	if user == nil {
		return Result{}, ErrNoUser
	}
	if progress == nil {
		progress = func(string, int) {}
	}

	previews := p.Preview(sheets)

	var result Result
	valid := make([]entities.Contact, 0, len(previews))
	for _, preview := range previews {
		if strings.TrimSpace(preview.Name) == "" {
			result.Skipped++
			continue
		}
		preview.UserID = user.ID
		valid = append(valid, preview)
	}

	if len(valid) == 0 {
		return Result{}, ErrNoValidContacts
	}

	total := len(valid)
	submitted := 0
	batchIndex := 0

	for start := 0; start < total; start += p.batchSize {
		end := start + p.batchSize
		if end > total {
			end = total
		}
		batch := valid[start:end]
		batchIndex++

		percent := int(math.Round(100 * float64(submitted) / float64(total)))
		progress(fmt.Sprintf("Importing contacts %d-%d of %d", start+1, end, total), percent)

		if err := p.writer.CreateBatch(batch); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Batch %d failed: %v", batchIndex, err))
			result.Skipped += len(batch)
		} else {
			result.Imported += len(batch)
		}
		submitted += len(batch)
	}

	progress(fmt.Sprintf("Imported %d of %d contacts", result.Imported, total), 100)
	result.Success = len(result.Errors) == 0

	return result, nil
}
