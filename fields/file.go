package fields

import (
	"github.com/steward-admin/steward/internal/pathutil"
	"github.com/steward-admin/steward/request"
)

// StoreFunc persists an upload and returns the value stored on the record
type StoreFunc func(upload *request.Upload) (string, error)

// fileFill builds the fill behavior shared by the upload field types:
// when a file is present, persist it and store the returned path.
func fileFill(store StoreFunc) FillFunc {
	return func(form request.Form, rec Record, attr string) error {
		if !form.HasFile(attr) {
			return nil
		}
		upload, err := form.File(attr)
		if err != nil {
			return err
		}
		stored, err := store(upload)
		if err != nil {
			return err
		}
		pathutil.Set(rec, attr, stored)
		return nil
	}
}

// uniqueNameStore is the default persistence: record a unique storage
// name and leave writing bytes to the host's storage layer.
func uniqueNameStore(upload *request.Upload) (string, error) {
	return upload.UniqueName(), nil
}

// FileField stores an uploaded file's storage path in a record attribute
type FileField struct {
	Schema[FileField]
}

// File creates a file upload field. StoreUsing replaces the default
// name-only persistence (the media package provides a disk-backed store).
func File(name string, attribute ...string) *FileField {
	f := &FileField{}
	f.init("FileField", name, f, attribute...)
	f.desc.Visibility.Index = false
	f.desc.Meta["deletable"] = true
	f.desc.typeFill = fileFill(uniqueNameStore)
	return f
}

// StoreUsing sets the persistence callback invoked on upload
func (f *FileField) StoreUsing(store StoreFunc) *FileField {
	f.desc.typeFill = fileFill(store)
	return f
}

// Disk tags the field with the storage disk shown to the frontend
func (f *FileField) Disk(disk string) *FileField {
	f.desc.Meta["disk"] = disk
	return f
}

// AcceptedTypes restricts the file picker's accept attribute
func (f *FileField) AcceptedTypes(accept string) *FileField {
	f.desc.Meta["acceptedTypes"] = accept
	return f
}

// Undeletable disables file removal from the form
func (f *FileField) Undeletable() *FileField {
	f.desc.Meta["deletable"] = false
	return f
}

// DisableDownload hides the download action on detail views
func (f *FileField) DisableDownload() *FileField {
	f.desc.Meta["downloadable"] = false
	return f
}

// ImageField displays its stored file as an inline image
type ImageField struct {
	Schema[ImageField]
}

// Image creates an image upload field shown as a thumbnail
func Image(name string, attribute ...string) *ImageField {
	f := &ImageField{}
	f.init("ImageField", name, f, attribute...)
	f.desc.Meta["deletable"] = true
	f.desc.Meta["rounded"] = false
	f.desc.Meta["acceptedTypes"] = "image/*"
	f.desc.typeFill = fileFill(uniqueNameStore)
	return f
}

// StoreUsing sets the persistence callback invoked on upload
func (f *ImageField) StoreUsing(store StoreFunc) *ImageField {
	f.desc.typeFill = fileFill(store)
	return f
}

// Disk tags the field with the storage disk shown to the frontend
func (f *ImageField) Disk(disk string) *ImageField {
	f.desc.Meta["disk"] = disk
	return f
}

// Rounded displays the image with fully rounded edges
func (f *ImageField) Rounded() *ImageField {
	f.desc.Meta["rounded"] = true
	return f
}

// MaxWidth caps the rendered image width in pixels
func (f *ImageField) MaxWidth(pixels int) *ImageField {
	f.desc.Meta["maxWidth"] = pixels
	return f
}

// AvatarField is an image shown next to the resource title in search
// results and relation listings.
type AvatarField struct {
	Schema[AvatarField]
}

// Avatar creates an avatar field, rounded by default
func Avatar(name string, attribute ...string) *AvatarField {
	f := &AvatarField{}
	f.init("AvatarField", name, f, attribute...)
	f.desc.Meta["deletable"] = true
	f.desc.Meta["rounded"] = true
	f.desc.Meta["acceptedTypes"] = "image/*"
	f.desc.typeFill = fileFill(uniqueNameStore)
	return f
}

// StoreUsing sets the persistence callback invoked on upload
func (f *AvatarField) StoreUsing(store StoreFunc) *AvatarField {
	f.desc.typeFill = fileFill(store)
	return f
}

// Squared displays the avatar with square edges
func (f *AvatarField) Squared() *AvatarField {
	f.desc.Meta["rounded"] = false
	return f
}

// AudioField displays its stored file with an audio player
type AudioField struct {
	Schema[AudioField]
}

// Audio creates an audio upload field
func Audio(name string, attribute ...string) *AudioField {
	f := &AudioField{}
	f.init("AudioField", name, f, attribute...)
	f.desc.Visibility.Index = false
	f.desc.Meta["deletable"] = true
	f.desc.Meta["preload"] = "metadata"
	f.desc.Meta["acceptedTypes"] = "audio/*"
	f.desc.typeFill = fileFill(uniqueNameStore)
	return f
}

// StoreUsing sets the persistence callback invoked on upload
func (f *AudioField) StoreUsing(store StoreFunc) *AudioField {
	f.desc.typeFill = fileFill(store)
	return f
}

// Disk tags the field with the storage disk shown to the frontend
func (f *AudioField) Disk(disk string) *AudioField {
	f.desc.Meta["disk"] = disk
	return f
}

// Preload sets the audio element's preload behavior
func (f *AudioField) Preload(mode string) *AudioField {
	f.desc.Meta["preload"] = mode
	return f
}
