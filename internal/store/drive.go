package store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// DriveStore persists documents as JSON files inside one Google Drive
// folder. Document names are unique within the folder; lookups go through
// the Drive search API rather than a local cache so concurrent tooling
// (manual uploads, other scripts) stays visible.
type DriveStore struct {
	service  *drive.Service
	folderID string
}

// NewDriveStore builds a store over the given Drive folder. Credentials
// come from the service account key file, or application default
// credentials when the path is empty.
func NewDriveStore(ctx context.Context, folderID, credentialsFile string) (*DriveStore, error) {
	opts := []option.ClientOption{option.WithScopes(drive.DriveFileScope)}
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	service, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return &DriveStore{service: service, folderID: folderID}, nil
}

func (d *DriveStore) Find(ctx context.Context, name string) (*FileRef, error) {
	query := fmt.Sprintf("name = '%s' and '%s' in parents and trashed = false",
		escapeQuery(name), d.folderID)

	list, err := d.service.Files.List().
		Q(query).
		Fields("files(id, name)").
		PageSize(1).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", name, err)
	}
	if len(list.Files) == 0 {
		return nil, fmt.Errorf("find %s: %w", name, ErrNotFound)
	}
	return &FileRef{ID: list.Files[0].Id, Name: name}, nil
}

func (d *DriveStore) Read(ctx context.Context, ref *FileRef) ([]byte, error) {
	resp, err := d.service.Files.Get(ref.ID).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", ref.Name, err)
	}
	defer resp.Body.Close()

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", ref.Name, err)
	}
	return content, nil
}

func (d *DriveStore) Write(ctx context.Context, name string, content []byte) (*FileRef, error) {
	existing, err := d.Find(ctx, name)
	if err != nil && !IsNotFound(err) {
		return nil, err
	}

	if existing != nil {
		_, err := d.service.Files.Update(existing.ID, &drive.File{}).
			Media(bytes.NewReader(content)).
			Context(ctx).
			Do()
		if err != nil {
			return nil, fmt.Errorf("update %s: %w", name, err)
		}
		return existing, nil
	}

	created, err := d.service.Files.Create(&drive.File{
		Name:     name,
		MimeType: "application/json",
		Parents:  []string{d.folderID},
	}).
		Media(bytes.NewReader(content)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", name, err)
	}
	return &FileRef{ID: created.Id, Name: name}, nil
}

// escapeQuery escapes single quotes for Drive query string literals.
func escapeQuery(s string) string {
	return strings.ReplaceAll(s, "'", "\\'")
}
