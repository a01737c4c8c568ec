package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LocalStore keeps attachment files under a directory root and the
// attachment index in memory. Production deployments back the index
// with a table; the interface stays the same.
type LocalStore struct {
	root   string
	disk   string
	logger *zap.Logger

	mu    sync.RWMutex
	index map[string][]*Attachment
	byID  map[uuid.UUID]*Attachment
}

// NewLocalStore creates a store writing under root. The disk name is
// recorded on attachments so frontends can build URLs.
func NewLocalStore(root, disk string, logger *zap.Logger) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media root: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalStore{
		root:   root,
		disk:   disk,
		logger: logger,
		index:  make(map[string][]*Attachment),
		byID:   make(map[uuid.UUID]*Attachment),
	}, nil
}

func collectionKey(model, modelID, collection string) string {
	return model + "/" + modelID + "/" + collection
}

// Add writes the file under a uuid-prefixed name and records the
// attachment in the collection.
func (s *LocalStore) Add(ctx context.Context, model, modelID, collection string, file *File) (*Attachment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id := uuid.New()
	dir := filepath.Join(s.root, model, modelID, collection)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create collection directory: %w", err)
	}

	stored := id.String() + "-" + filepath.Base(file.Name)
	if err := os.WriteFile(filepath.Join(dir, stored), file.Content, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write media file: %w", err)
	}

	attachment := &Attachment{
		ID:         id,
		Model:      model,
		ModelID:    modelID,
		Collection: collection,
		Disk:       s.disk,
		FileName:   stored,
		MimeType:   file.ContentType,
		Size:       file.Size,
		CreatedAt:  time.Now().UTC(),
	}

	s.mu.Lock()
	key := collectionKey(model, modelID, collection)
	s.index[key] = append(s.index[key], attachment)
	s.byID[id] = attachment
	s.mu.Unlock()

	s.logger.Debug("media stored",
		zap.String("model", model),
		zap.String("collection", collection),
		zap.String("file", stored),
		zap.Int64("size", file.Size))

	return attachment, nil
}

// Get lists a collection's attachments in insertion order
func (s *LocalStore) Get(ctx context.Context, model, modelID, collection string) ([]*Attachment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.index[collectionKey(model, modelID, collection)]
	out := make([]*Attachment, len(stored))
	copy(out, stored)
	return out, nil
}

// Clear removes every attachment in the collection, files included
func (s *LocalStore) Clear(ctx context.Context, model, modelID, collection string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	key := collectionKey(model, modelID, collection)
	stored := s.index[key]
	delete(s.index, key)
	for _, attachment := range stored {
		delete(s.byID, attachment.ID)
	}
	s.mu.Unlock()

	dir := filepath.Join(s.root, model, modelID, collection)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to clear collection: %w", err)
	}

	s.logger.Debug("media collection cleared",
		zap.String("model", model),
		zap.String("collection", collection),
		zap.Int("removed", len(stored)))
	return nil
}

// Remove deletes a single attachment by id
func (s *LocalStore) Remove(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	attachment, exists := s.byID[id]
	if !exists {
		s.mu.Unlock()
		return fmt.Errorf("attachment %s not found", id)
	}
	delete(s.byID, id)

	key := collectionKey(attachment.Model, attachment.ModelID, attachment.Collection)
	stored := s.index[key]
	for i, a := range stored {
		if a.ID == id {
			s.index[key] = append(stored[:i], stored[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	path := filepath.Join(s.root, attachment.Model, attachment.ModelID,
		attachment.Collection, attachment.FileName)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove media file: %w", err)
	}
	return nil
}
