package config

// Default paths and pipeline constants
const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./ir-contacts.db"

	// DefaultAttachmentsDir is the default directory for locally stored attachment blobs
	DefaultAttachmentsDir = "./attachments"

	// DefaultImportBatchSize is the number of contacts written per insert request
	DefaultImportBatchSize = 50

	// DefaultSerialMin and DefaultSerialMax bound the range in which a bare
	// number is assumed to be a spreadsheet date serial (~2009 to ~2064).
	DefaultSerialMin = 40000
	DefaultSerialMax = 60000
)
