// Package store persists channel documents as <channelId>.json files behind
// a backend-agnostic interface, with local-directory, Google Drive and
// in-memory implementations.
package store

import (
	"context"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/danbi-analytics/channel-collector-go/internal/model"
)

// IndexName is the well-known name of the channel index document.
const IndexName = "_channel_index.json"

var (
	// ErrNotFound is returned when a requested document does not exist.
	ErrNotFound = errors.New("document not found")
)

// IsNotFound returns true if the error is an ErrNotFound error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// FileRef identifies a stored document. ID is the backend's handle (a Drive
// file id, a filesystem path); Name is the logical document name.
type FileRef struct {
	ID   string
	Name string
}

// DocumentStore is the persistence boundary for channel documents.
type DocumentStore interface {
	// Find locates a document by name. Returns ErrNotFound when absent.
	Find(ctx context.Context, name string) (*FileRef, error)

	// Read returns the raw content of a previously found document.
	Read(ctx context.Context, ref *FileRef) ([]byte, error)

	// Write creates the named document or replaces its content.
	Write(ctx context.Context, name string, content []byte) (*FileRef, error)
}

// DocumentName returns the store name for a channel's document.
func DocumentName(channelID string) string {
	return channelID + ".json"
}

// ReadDocument loads and decodes a channel's document. Returns ErrNotFound
// when the channel has never been collected.
func ReadDocument(ctx context.Context, s DocumentStore, channelID string) (*model.ChannelDocument, error) {
	ref, err := s.Find(ctx, DocumentName(channelID))
	if err != nil {
		return nil, err
	}
	content, err := s.Read(ctx, ref)
	if err != nil {
		return nil, err
	}

	var doc model.ChannelDocument
	if err := json.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", DocumentName(channelID), err)
	}
	return &doc, nil
}

// WriteDocument encodes and stores a channel's document.
func WriteDocument(ctx context.Context, s DocumentStore, doc *model.ChannelDocument) error {
	content, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode document %s: %w", DocumentName(doc.ChannelID), err)
	}
	if _, err := s.Write(ctx, DocumentName(doc.ChannelID), content); err != nil {
		return err
	}
	return nil
}

// ReadIndex loads the channel index. A missing index decodes to an empty
// one, since it is created lazily on the first successful write.
func ReadIndex(ctx context.Context, s DocumentStore) (*model.ChannelIndex, error) {
	ref, err := s.Find(ctx, IndexName)
	if IsNotFound(err) {
		return &model.ChannelIndex{}, nil
	}
	if err != nil {
		return nil, err
	}
	content, err := s.Read(ctx, ref)
	if err != nil {
		return nil, err
	}

	var index model.ChannelIndex
	if err := json.Unmarshal(content, &index); err != nil {
		return nil, fmt.Errorf("decode %s: %w", IndexName, err)
	}
	return &index, nil
}

// WriteIndex encodes and stores the channel index.
func WriteIndex(ctx context.Context, s DocumentStore, index *model.ChannelIndex) error {
	content, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", IndexName, err)
	}
	if _, err := s.Write(ctx, IndexName, content); err != nil {
		return err
	}
	return nil
}
