package request

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/steward-admin/steward/config"
)

// UploadOptions configures file upload validation
type UploadOptions struct {
	MaxFileSize  int64    // Maximum size per file (in bytes)
	MaxTotalSize int64    // Maximum total size for all files
	AllowedTypes []string // Allowed MIME types (empty = allow all)
	AllowedExts  []string // Allowed file extensions (empty = allow all)
}

// DefaultUploadOptions returns the limits used when a host does not
// configure its own.
func DefaultUploadOptions() UploadOptions {
	return UploadOptionsFrom(config.Default().Media)
}

// UploadOptionsFrom maps media configuration onto upload validation
// limits.
func UploadOptionsFrom(media config.MediaConfig) UploadOptions {
	return UploadOptions{
		MaxFileSize:  media.MaxFileSize,
		MaxTotalSize: media.MaxTotalSize,
		AllowedTypes: media.AllowedTypes,
		AllowedExts:  media.AllowedExts,
	}
}

// Upload represents a validated file uploaded in a request
type Upload struct {
	Filename    string // Original filename, base name only
	Size        int64  // File size in bytes
	ContentType string // MIME type reported by the client

	header *multipart.FileHeader
	opener func() (io.ReadCloser, error)
}

// Open returns a reader over the upload's content
func (u *Upload) Open() (io.ReadCloser, error) {
	if u.opener != nil {
		return u.opener()
	}
	if u.header != nil {
		return u.header.Open()
	}
	return nil, fmt.Errorf("upload %s has no content", u.Filename)
}

// NewUpload builds an upload from raw bytes, for tests and programmatic
// media attachment.
func NewUpload(filename, contentType string, content []byte) *Upload {
	return &Upload{
		Filename:    filepath.Base(filename),
		Size:        int64(len(content)),
		ContentType: contentType,
		opener: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(string(content))), nil
		},
	}
}

// UniqueName returns a collision-free storage name preserving the
// original extension.
func (u *Upload) UniqueName() string {
	ext := filepath.Ext(u.Filename)
	base := strings.TrimSuffix(u.Filename, ext)
	return fmt.Sprintf("%s_%s%s", base, uuid.NewString(), ext)
}

// Uploader validates uploads against configured limits
type Uploader struct {
	opts UploadOptions
}

// NewUploader creates an uploader with the given options
func NewUploader(opts UploadOptions) *Uploader {
	return &Uploader{opts: opts}
}

// File retrieves and validates a single uploaded file
func (u *Uploader) File(r *http.Request, fieldName string) (*Upload, error) {
	if r.MultipartForm == nil {
		if err := r.ParseMultipartForm(u.opts.MaxTotalSize); err != nil {
			return nil, fmt.Errorf("failed to parse multipart form: %w", err)
		}
	}

	file, header, err := r.FormFile(fieldName)
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, fmt.Errorf("no file uploaded for field %s", fieldName)
		}
		return nil, fmt.Errorf("failed to get file: %w", err)
	}
	file.Close()

	if err := u.validate(header); err != nil {
		return nil, err
	}

	return uploadFromHeader(header), nil
}

// Files retrieves and validates all uploaded files for a field
func (u *Uploader) Files(r *http.Request, fieldName string) ([]*Upload, error) {
	if r.MultipartForm == nil {
		if err := r.ParseMultipartForm(u.opts.MaxTotalSize); err != nil {
			return nil, fmt.Errorf("failed to parse multipart form: %w", err)
		}
	}

	headers, ok := r.MultipartForm.File[fieldName]
	if !ok {
		return nil, fmt.Errorf("no files uploaded for field %s", fieldName)
	}

	var uploads []*Upload
	var totalSize int64

	for _, header := range headers {
		totalSize += header.Size
		if totalSize > u.opts.MaxTotalSize {
			return nil, fmt.Errorf("total file size exceeds maximum of %d bytes", u.opts.MaxTotalSize)
		}

		if err := u.validate(header); err != nil {
			return nil, fmt.Errorf("file %s: %w", header.Filename, err)
		}

		uploads = append(uploads, uploadFromHeader(header))
	}

	return uploads, nil
}

// validate checks a file header against size, extension, and MIME limits
func (u *Uploader) validate(header *multipart.FileHeader) error {
	if u.opts.MaxFileSize > 0 && header.Size > u.opts.MaxFileSize {
		return fmt.Errorf("file size %d exceeds maximum of %d bytes", header.Size, u.opts.MaxFileSize)
	}
	if header.Size == 0 {
		return fmt.Errorf("file is empty")
	}

	if len(u.opts.AllowedExts) > 0 {
		ext := strings.ToLower(filepath.Ext(header.Filename))
		allowed := false
		for _, allowedExt := range u.opts.AllowedExts {
			if ext == strings.ToLower(allowedExt) {
				allowed = true
				break
			}
		}
		if !allowed {
			return fmt.Errorf("file extension %s not allowed", ext)
		}
	}

	if len(u.opts.AllowedTypes) > 0 {
		// Sniff the actual content type rather than trusting the client header
		file, err := header.Open()
		if err != nil {
			return fmt.Errorf("failed to open file for validation: %w", err)
		}
		defer file.Close()

		buffer := make([]byte, 512)
		n, err := file.Read(buffer)
		if err != nil && err != io.EOF {
			return fmt.Errorf("failed to read file for validation: %w", err)
		}

		actualType := http.DetectContentType(buffer[:n])
		if !typeAllowed(actualType, u.opts.AllowedTypes) {
			return fmt.Errorf("file content type %s not allowed", actualType)
		}
	}

	return nil
}

// typeAllowed matches exact types or prefixes ("image/" matches "image/png")
func typeAllowed(contentType string, allowedTypes []string) bool {
	for _, allowed := range allowedTypes {
		if contentType == allowed || strings.HasPrefix(contentType, allowed) {
			return true
		}
	}
	return false
}

func uploadFromHeader(header *multipart.FileHeader) *Upload {
	return &Upload{
		Filename:    filepath.Base(header.Filename),
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
		header:      header,
	}
}
