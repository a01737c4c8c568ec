package media

import (
	"context"
	"fmt"
	"io"

	"github.com/steward-admin/steward/fields"
	"github.com/steward-admin/steward/request"
)

// collectionField carries the shared media wiring: the backing store,
// the collection name, single-or-multiple mode, and conversion specs.
type collectionField struct {
	store       Store
	model       string
	collection  string
	disk        string
	singleFile  bool
	multiple    bool
	conversions []Conversion
}

// attachments resolves the collection for the record. Single-file
// fields take the first attachment; multi-file fields return the list.
func (c *collectionField) attachments(rec fields.Record) any {
	modelID := request.Stringify(rec["id"])
	if modelID == "" || c.store == nil {
		return nil
	}

	list, err := c.store.Get(context.Background(), c.model, modelID, c.collection)
	if err != nil || len(list) == 0 {
		return nil
	}
	if c.singleFile {
		return list[0]
	}
	return list
}

// fill stores uploaded files into the collection. A single-file field
// clears the collection before storing the replacement.
func (c *collectionField) fill(form request.Form, rec fields.Record, attr string) error {
	if !form.HasFile(attr) || c.store == nil {
		return nil
	}

	modelID := request.Stringify(rec["id"])
	if modelID == "" {
		return fmt.Errorf("cannot attach media before the record has an id")
	}
	ctx := context.Background()

	uploads, err := form.Files(attr)
	if err != nil {
		return err
	}
	if len(uploads) == 0 {
		return nil
	}
	if c.singleFile {
		if err := c.store.Clear(ctx, c.model, modelID, c.collection); err != nil {
			return err
		}
		uploads = uploads[:1]
	}

	for _, upload := range uploads {
		file, err := readUpload(upload)
		if err != nil {
			return err
		}
		if _, err := c.store.Add(ctx, c.model, modelID, c.collection, file); err != nil {
			return err
		}
	}
	return nil
}

func (c *collectionField) meta(desc *fields.Descriptor) {
	desc.Meta["collection"] = c.collection
	desc.Meta["singleFile"] = c.singleFile
	desc.Meta["multiple"] = c.multiple
	if c.disk != "" {
		desc.Meta["disk"] = c.disk
	}
	if len(c.conversions) > 0 {
		desc.Meta["conversions"] = c.conversions
	}
}

func readUpload(upload *request.Upload) (*File, error) {
	reader, err := upload.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer reader.Close()

	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	return &File{
		Name:        upload.Filename,
		ContentType: upload.ContentType,
		Size:        upload.Size,
		Content:     content,
	}, nil
}

// MediaFileField attaches arbitrary files from a named collection
type MediaFileField struct {
	fields.Schema[MediaFileField]
	collectionField
}

// MediaFile creates a media field storing into the collection named by
// the attribute.
func MediaFile(name string, model string, store Store, attribute ...string) *MediaFileField {
	f := &MediaFileField{}
	f.Schema = fields.NewSchema("MediaFileField", name, f, attribute...)

	desc := f.Descriptor()
	f.collectionField = collectionField{store: store, model: model, collection: desc.Attribute}

	desc.InstallResolve(func(rec fields.Record, attr string) any {
		return f.attachments(rec)
	})
	desc.InstallFill(f.collectionField.fill)
	f.meta(desc)
	return f
}

// Collection overrides the collection name
func (f *MediaFileField) Collection(name string) *MediaFileField {
	f.collection = name
	f.meta(f.Descriptor())
	return f
}

// Disk records the disk name serialized for URL building
func (f *MediaFileField) Disk(disk string) *MediaFileField {
	f.disk = disk
	f.meta(f.Descriptor())
	return f
}

// SingleFile keeps at most one attachment, replacing on upload.
// Mutually exclusive with Multiple.
func (f *MediaFileField) SingleFile() *MediaFileField {
	f.singleFile = true
	f.multiple = false
	f.meta(f.Descriptor())
	return f
}

// Multiple accepts several files per request. Mutually exclusive with
// SingleFile.
func (f *MediaFileField) Multiple() *MediaFileField {
	f.multiple = true
	f.singleFile = false
	f.meta(f.Descriptor())
	return f
}

// MediaImageField attaches images with optional conversion specs
type MediaImageField struct {
	fields.Schema[MediaImageField]
	collectionField
}

// MediaImage creates an image media field
func MediaImage(name string, model string, store Store, attribute ...string) *MediaImageField {
	f := &MediaImageField{}
	f.Schema = fields.NewSchema("MediaImageField", name, f, attribute...)

	desc := f.Descriptor()
	f.collectionField = collectionField{store: store, model: model, collection: desc.Attribute}

	desc.InstallResolve(func(rec fields.Record, attr string) any {
		return f.attachments(rec)
	})
	desc.InstallFill(f.collectionField.fill)
	f.meta(desc)
	return f
}

// Collection overrides the collection name
func (f *MediaImageField) Collection(name string) *MediaImageField {
	f.collection = name
	f.meta(f.Descriptor())
	return f
}

// Disk records the disk name serialized for URL building
func (f *MediaImageField) Disk(disk string) *MediaImageField {
	f.disk = disk
	f.meta(f.Descriptor())
	return f
}

// SingleFile keeps at most one attachment, replacing on upload
func (f *MediaImageField) SingleFile() *MediaImageField {
	f.singleFile = true
	f.multiple = false
	f.meta(f.Descriptor())
	return f
}

// Multiple accepts several files per request
func (f *MediaImageField) Multiple() *MediaImageField {
	f.multiple = true
	f.singleFile = false
	f.meta(f.Descriptor())
	return f
}

// WithConversion declares a named derivative spec for the pipeline
func (f *MediaImageField) WithConversion(conv Conversion) *MediaImageField {
	f.conversions = append(f.conversions, conv)
	f.meta(f.Descriptor())
	return f
}

// MediaAvatarField is a single-file image shown as the record's avatar
type MediaAvatarField struct {
	fields.Schema[MediaAvatarField]
	collectionField
}

// MediaAvatar creates an avatar media field, always single-file
func MediaAvatar(name string, model string, store Store, attribute ...string) *MediaAvatarField {
	f := &MediaAvatarField{}
	f.Schema = fields.NewSchema("MediaAvatarField", name, f, attribute...)

	desc := f.Descriptor()
	f.collectionField = collectionField{
		store:      store,
		model:      model,
		collection: desc.Attribute,
		singleFile: true,
	}

	desc.InstallResolve(func(rec fields.Record, attr string) any {
		return f.attachments(rec)
	})
	desc.InstallFill(f.collectionField.fill)
	f.meta(desc)
	return f
}

// Disk records the disk name serialized for URL building
func (f *MediaAvatarField) Disk(disk string) *MediaAvatarField {
	f.disk = disk
	f.meta(f.Descriptor())
	return f
}

// WithConversion declares a named derivative spec for the pipeline
func (f *MediaAvatarField) WithConversion(conv Conversion) *MediaAvatarField {
	f.conversions = append(f.conversions, conv)
	f.meta(f.Descriptor())
	return f
}

// MediaAudioField attaches audio files
type MediaAudioField struct {
	fields.Schema[MediaAudioField]
	collectionField
}

// MediaAudio creates an audio media field
func MediaAudio(name string, model string, store Store, attribute ...string) *MediaAudioField {
	f := &MediaAudioField{}
	f.Schema = fields.NewSchema("MediaAudioField", name, f, attribute...)

	desc := f.Descriptor()
	f.collectionField = collectionField{store: store, model: model, collection: desc.Attribute}

	desc.InstallResolve(func(rec fields.Record, attr string) any {
		return f.attachments(rec)
	})
	desc.InstallFill(f.collectionField.fill)
	f.meta(desc)
	return f
}

// Collection overrides the collection name
func (f *MediaAudioField) Collection(name string) *MediaAudioField {
	f.collection = name
	f.meta(f.Descriptor())
	return f
}

// SingleFile keeps at most one attachment, replacing on upload
func (f *MediaAudioField) SingleFile() *MediaAudioField {
	f.singleFile = true
	f.multiple = false
	f.meta(f.Descriptor())
	return f
}
