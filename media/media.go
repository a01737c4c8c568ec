// Package media manages named collections of file attachments on
// records. Files live on a Store; conversion specs are declarative
// configuration forwarded to whatever processes derivatives, never
// interpreted here.
package media

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Attachment is one stored file within a model's collection
type Attachment struct {
	ID          uuid.UUID         `json:"id"`
	Model       string            `json:"model"`
	ModelID     string            `json:"model_id"`
	Collection  string            `json:"collection"`
	Disk        string            `json:"disk"`
	FileName    string            `json:"file_name"`
	MimeType    string            `json:"mime_type"`
	Size        int64             `json:"size"`
	Conversions map[string]string `json:"conversions,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// Conversion declares a named derivative spec. It is stored and
// serialized for the processing pipeline, which runs elsewhere.
type Conversion struct {
	Name   string `json:"name"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	Fit    string `json:"fit,omitempty"`
}

// Store persists attachments for model collections
type Store interface {
	// Add stores the file contents and records the attachment
	Add(ctx context.Context, model, modelID, collection string, file *File) (*Attachment, error)

	// Get lists a collection's attachments in insertion order
	Get(ctx context.Context, model, modelID, collection string) ([]*Attachment, error)

	// Clear removes every attachment in the collection
	Clear(ctx context.Context, model, modelID, collection string) error

	// Remove deletes a single attachment by id
	Remove(ctx context.Context, id uuid.UUID) error
}

// File is the upload handed to a Store
type File struct {
	Name        string
	ContentType string
	Size        int64
	Content     []byte
}
