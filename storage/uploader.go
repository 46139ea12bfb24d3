package storage

import (
	"context"
	"io"
)

// UploadResult describes a stored object. Key is what the database keeps on
// the event or team row; Location is the public URL handed back to clients.
type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// FileUploader is the logo storage contract. EventService uploads under a
// caller-chosen key, deletes the replaced object best-effort, and resolves
// public URLs for stored keys when assembling responses.
type FileUploader interface {
	// Upload stores the object under key. The key decides the folder layout
	// (events/<uuid>.png, teams/<uuid>.png); uploads never overwrite by
	// accident because keys embed a fresh uuid.
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	// Delete removes a stored object. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// GetPublicURL resolves a stored key against the public base URL.
	GetPublicURL(key string) string
}
