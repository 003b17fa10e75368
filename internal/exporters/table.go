// Package exporters produces the downloadable contact archive: one xlsx
// workbook of every contact plus each contact's attachment files, bundled
// into a zip.
package exporters

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/mrlokans/ir-contacts/internal/entities"
	"github.com/mrlokans/ir-contacts/internal/importers"
)

// ContactsSheetName is the single sheet in the exported workbook.
const ContactsSheetName = "Contacts"

var contactColumns = []string{
	"#", "Name", "Institution", "Email", "Phone", "Location", "Priority",
	"Last Interaction", "Notes", "Files Count", "File Names", "Created", "Updated",
}

const timestampLayout = "2006-01-02 15:04"

// EncodeContactsWorkbook renders one spreadsheet row per contact. The files
// columns come from metadata, independent of whether each binary download
// later succeeds.
func EncodeContactsWorkbook(contacts []entities.Contact, attachmentsByContact map[uint][]entities.Attachment) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), ContactsSheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetSheetRow(ContactsSheetName, "A1", &contactColumns); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i, contact := range contacts {
		attachments := attachmentsByContact[contact.ID]
		fileNames := make([]string, 0, len(attachments))
		for _, attachment := range attachments {
			fileNames = append(fileNames, attachment.FileName)
		}

		priority := ""
		if contact.Priority != nil {
			priority = fmt.Sprintf("%d", *contact.Priority)
		}

		row := []any{
			i + 1,
			contact.Name,
			contact.Institution,
			contact.Email,
			contact.Phone,
			contact.Location,
			priority,
			importers.FormatDate(contact.LastInteractionDate),
			contact.Details,
			len(attachments),
			strings.Join(fileNames, ", "),
			contact.CreatedAt.Format(timestampLayout),
			contact.UpdatedAt.Format(timestampLayout),
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(ContactsSheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}
