package exporters

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"

	"github.com/mrlokans/ir-contacts/internal/entities"
)

// ErrNoContacts is returned before any archive bytes are written.
var ErrNoContacts = errors.New("no contacts to export")

// ContactReader supplies the full contact list for one user.
type ContactReader interface {
	GetAllOrderedByName(userID uint) ([]entities.Contact, error)
}

// AttachmentReader supplies all attachment metadata for one user.
type AttachmentReader interface {
	ListForUser(userID uint) ([]entities.Attachment, error)
}

// BlobFetcher downloads one attachment binary.
type BlobFetcher interface {
	Download(ctx context.Context, path string) (io.ReadCloser, error)
}

// ProgressFunc receives human-readable progress updates with a
// non-decreasing percent.
type ProgressFunc func(message string, percent int)

// Download progress sweeps between these milestones proportionally to the
// number of attachment files.
const (
	percentContactsFetched = 5
	percentMetadataFetched = 15
	percentWorkbookWritten = 30
	percentDownloadsDone   = 90
	percentCompressing     = 95
)

// Pipeline assembles the export archive: workbook at the root, then one
// folder per contact with attachments. Runs as a single sequential task.
type Pipeline struct {
	contacts    ContactReader
	attachments AttachmentReader
	blobs       BlobFetcher
}

// NewPipeline creates an export pipeline.
func NewPipeline(contacts ContactReader, attachments AttachmentReader, blobs BlobFetcher) *Pipeline {
	return &Pipeline{
		contacts:    contacts,
		attachments: attachments,
		blobs:       blobs,
	}
}

// Run writes the archive for userID to w. Nothing is written when the user
// has no contacts. Single-file download failures are logged and skipped; the
// archive still ships with whatever succeeded.
func (p *Pipeline) Run(ctx context.Context, userID uint, w io.Writer, progress ProgressFunc) error {
	if progress == nil {
		progress = func(string, int) {}
	}

	progress("Fetching contacts", percentContactsFetched)
	contacts, err := p.contacts.GetAllOrderedByName(userID)
	if err != nil {
		return fmt.Errorf("failed to fetch contacts: %w", err)
	}
	if len(contacts) == 0 {
		return ErrNoContacts
	}

	progress("Fetching attachment metadata", percentMetadataFetched)
	attachments, err := p.attachments.ListForUser(userID)
	if err != nil {
		return fmt.Errorf("failed to fetch attachments: %w", err)
	}

	attachmentsByContact := make(map[uint][]entities.Attachment)
	for _, attachment := range attachments {
		attachmentsByContact[attachment.ContactID] = append(attachmentsByContact[attachment.ContactID], attachment)
	}

	progress("Generating spreadsheet", percentWorkbookWritten)
	workbook, err := EncodeContactsWorkbook(contacts, attachmentsByContact)
	if err != nil {
		return err
	}

	assembler := NewAssembler(w)
	if err := assembler.AddFile(WorkbookName, bytes.NewReader(workbook)); err != nil {
		return fmt.Errorf("failed to add workbook: %w", err)
	}

	totalFiles := len(attachments)
	downloaded := 0
	for _, contact := range contacts {
		files := attachmentsByContact[contact.ID]
		if len(files) == 0 {
			continue
		}
		folder := fmt.Sprintf("%s/%s", AttachmentsDir, SanitizeName(contact.Name))
		used := make(map[string]bool, len(files))

		for _, attachment := range files {
			downloaded++
			percent := percentWorkbookWritten + int(math.Round(
				float64(percentDownloadsDone-percentWorkbookWritten)*float64(downloaded)/float64(totalFiles)))
			progress(fmt.Sprintf("Downloading file %d of %d", downloaded, totalFiles), percent)

			name := SanitizeName(attachment.FileName)
			if used[name] {
				name = fmt.Sprintf("%d_%s", attachment.ID, name)
			}
			used[name] = true

			if err := p.addAttachment(ctx, assembler, folder+"/"+name, attachment); err != nil {
				// Single-file failure: keep going, the rest of the archive
				// is still worth producing
				log.Printf("Export: skipping %s (%s): %v", attachment.FileName, attachment.StoragePath, err)
			}
		}
	}

	progress("Compressing archive", percentCompressing)
	if err := assembler.Close(); err != nil {
		return fmt.Errorf("failed to finalize archive: %w", err)
	}

	progress("Export complete", 100)
	return nil
}

func (p *Pipeline) addAttachment(ctx context.Context, assembler *Assembler, path string, attachment entities.Attachment) error {
	blob, err := p.blobs.Download(ctx, attachment.StoragePath)
	if err != nil {
		return err
	}
	defer blob.Close()
	return assembler.AddFile(path, blob)
}
