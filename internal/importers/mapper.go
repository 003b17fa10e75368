package importers

import "strings"

// Field is a canonical contact field a spreadsheet column can map onto.
type Field string

const (
	FieldName                Field = "name"
	FieldEmail               Field = "email"
	FieldPhone               Field = "phone"
	FieldLocation            Field = "location"
	FieldInstitution         Field = "institution"
	FieldDetails             Field = "details"
	FieldLastInteractionDate Field = "last_interaction_date"
	FieldPriority            Field = "priority"
)

// MappingKind classifies a spreadsheet header.
type MappingKind int

const (
	// MappingUnmapped means the header matched no table; its values are dropped.
	MappingUnmapped MappingKind = iota
	// MappingField means the header resolves to a canonical contact field.
	MappingField
	// MappingExtraNote means the header is not a first-class field but its
	// values are folded into details with a "<Header>: <value>" prefix.
	MappingExtraNote
)

// Mapping is the result of classifying one header.
type Mapping struct {
	Kind  MappingKind
	Field Field
}

// columnSynonyms maps normalization keys to canonical fields. Keys are the
// headers people actually type, lower-cased with spaces and underscores
// stripped. Matching is exact on the key, never substring.
var columnSynonyms = map[string]Field{
	"name":        FieldName,
	"fullname":    FieldName,
	"contactname": FieldName,
	"contact":     FieldName,
	"investor":    FieldName,

	"email":        FieldEmail,
	"mail":         FieldEmail,
	"emailaddress": FieldEmail,
	"e-mail":       FieldEmail,

	"phone":       FieldPhone,
	"phonenumber": FieldPhone,
	"telephone":   FieldPhone,
	"tel":         FieldPhone,
	"mobile":      FieldPhone,
	"cell":        FieldPhone,

	"location": FieldLocation,
	"city":     FieldLocation,
	"country":  FieldLocation,
	"region":   FieldLocation,
	"address":  FieldLocation,

	"institution":  FieldInstitution,
	"company":      FieldInstitution,
	"organization": FieldInstitution,
	"organisation": FieldInstitution,
	"firm":         FieldInstitution,
	"fund":         FieldInstitution,
	"employer":     FieldInstitution,

	"details":     FieldDetails,
	"notes":       FieldDetails,
	"note":        FieldDetails,
	"comments":    FieldDetails,
	"comment":     FieldDetails,
	"description": FieldDetails,
	"background":  FieldDetails,

	"date":                FieldLastInteractionDate,
	"lastcontactdate":     FieldLastInteractionDate,
	"lastcontact":         FieldLastInteractionDate,
	"interactiondate":     FieldLastInteractionDate,
	"lastinteraction":     FieldLastInteractionDate,
	"lastinteractiondate": FieldLastInteractionDate,
	"lastmeeting":         FieldLastInteractionDate,

	"priority": FieldPriority,
	"priorty":  FieldPriority, // recognized misspelling, seen in the wild
	"urgency":  FieldPriority,
	"rank":     FieldPriority,
	"tier":     FieldPriority,
}

// extraNoteKeys holds headers that are not fields of their own but whose
// values belong in details, labelled with the original header text.
var extraNoteKeys = map[string]bool{
	"documentsprovided": true,
	"documents":         true,
	"referredby":        true,
	"linkedin":          true,
	"website":           true,
	"jobtitle":          true,
	"role":              true,
	"position":          true,
}

// normalizeHeaderKey produces the lookup key for a header: lower-cased,
// trimmed, with every space and underscore removed.
func normalizeHeaderKey(header string) string {
	key := strings.ToLower(strings.TrimSpace(header))
	key = strings.ReplaceAll(key, " ", "")
	key = strings.ReplaceAll(key, "_", "")
	return key
}

// MapHeader classifies a spreadsheet header. Pure function.
func MapHeader(header string) Mapping {
	key := normalizeHeaderKey(header)
	if field, ok := columnSynonyms[key]; ok {
		return Mapping{Kind: MappingField, Field: field}
	}
	if extraNoteKeys[key] {
		return Mapping{Kind: MappingExtraNote}
	}
	return Mapping{Kind: MappingUnmapped}
}
