package http

import (
	"github.com/mrlokans/ir-contacts/internal/auth"
	"github.com/mrlokans/ir-contacts/internal/config"
	"github.com/mrlokans/ir-contacts/internal/database"
	"github.com/mrlokans/ir-contacts/internal/database/attachments"
	"github.com/mrlokans/ir-contacts/internal/database/contacts"
	"github.com/mrlokans/ir-contacts/internal/database/jobs"
	"github.com/mrlokans/ir-contacts/internal/exporters"
	"github.com/mrlokans/ir-contacts/internal/importers"
	"github.com/mrlokans/ir-contacts/internal/storage"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router. This replaces a long parameter list
// in NewRouter for better maintainability.
type RouterConfig struct {
	// Core dependencies
	Database    *database.Database
	Contacts    *contacts.Repository
	Attachments *attachments.Repository
	Jobs        *jobs.Repository

	// Blob storage for attachment binaries
	BlobStore storage.BlobStore

	// Pipelines
	Importer *importers.Pipeline
	Exporter *exporters.Pipeline

	// Authentication (all nil/zero when auth is disabled)
	AuthService    *auth.Service
	AuthMiddleware *auth.Middleware
	SessionManager *auth.SessionManager
	AuthConfig     config.Auth
	CSRFSecret     []byte
	SecureCookies  bool

	// Application info
	Version string

	// Upload limit for attachment binaries, in bytes
	MaxUploadBytes int64
}
