package google

import (
	docs "google.golang.org/api/docs/v1"
	drive "google.golang.org/api/drive/v3"
)

// DefaultScopes are the Google OAuth scopes requested for the bearer
// token. The server needs read/write access to document content and
// Drive access for file metadata and document creation.
var DefaultScopes = []string{
	docs.DocumentsScope,
	drive.DriveScope,
}
