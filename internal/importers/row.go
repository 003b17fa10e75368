package importers

import (
	"fmt"
	"strings"

	"github.com/mrlokans/ir-contacts/internal/entities"
	"github.com/mrlokans/ir-contacts/internal/spreadsheet"
)

// ContactFromRow converts one raw row into a preview contact. Header order
// follows the sheet's column order so detail fragments accumulate
// deterministically. A non-empty sheetName marks the row's origin during a
// multi-sheet import.
//
// Total transformation: one row in, one contact out, possibly with an empty
// name that the pipeline filters later.
func (n *Normalizer) ContactFromRow(row spreadsheet.Row, headers []string, sheetName string) entities.Contact {
	var contact entities.Contact
	var notes []string

	for _, header := range headers {
		value := strings.TrimSpace(row[header])
		if value == "" {
			continue
		}

		mapping := MapHeader(header)
		switch mapping.Kind {
		case MappingExtraNote:
			notes = append(notes, fmt.Sprintf("%s: %s", strings.TrimSpace(header), value))
		case MappingField:
			switch mapping.Field {
			case FieldName:
				contact.Name = value
			case FieldEmail:
				contact.Email = value
			case FieldPhone:
				contact.Phone = value
			case FieldLocation:
				contact.Location = value
			case FieldInstitution:
				contact.Institution = value
			case FieldLastInteractionDate:
				contact.LastInteractionDate = n.Date(value)
			case FieldPriority:
				contact.Priority = n.Priority(value)
			case FieldDetails:
				// Multiple note-like columns accumulate rather than clobber
				notes = append(notes, value)
			}
		}
	}

	if sheetName != "" {
		notes = append([]string{fmt.Sprintf("[%s]", sheetName)}, notes...)
	}
	contact.Details = strings.Join(notes, "\n")

	return contact
}
