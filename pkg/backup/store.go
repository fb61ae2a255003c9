// Package backup restores MongoDB clusters from archives kept in object
// storage. The store half lists and downloads backup artifacts; the
// restore half decides whether a cluster's spec requests a restore,
// resolves the artifact to apply, and runs mongorestore against the
// elected member.
package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// Artifact is a single backup archive in object storage, identified by its
// full object key and the store-reported creation time.
type Artifact struct {
	Name    string
	Created time.Time
}

// Store lists and retrieves backup artifacts.
type Store interface {
	// ListArtifacts returns all artifacts under the prefix.
	ListArtifacts(ctx context.Context, bucket, prefix string) ([]Artifact, error)

	// Download copies the object at key into the local file dest.
	Download(ctx context.Context, bucket, key, dest string) error
}

// StoreFactory builds a Store from service account credentials JSON.
// Restores are rare, so a fresh store per restore operation is fine and
// keeps credential lifetime scoped to one call.
type StoreFactory func(ctx context.Context, credentialsJSON []byte) (Store, error)

type gcsStore struct {
	client *storage.Client
}

// NewGCSStore returns a Store backed by Google Cloud Storage,
// authenticated with the given service account credentials JSON.
func NewGCSStore(ctx context.Context, credentialsJSON []byte) (Store, error) {
	c, err := storage.NewClient(ctx, option.WithCredentialsJSON(credentialsJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &gcsStore{client: c}, nil
}

func (s *gcsStore) ListArtifacts(ctx context.Context, bucket, prefix string) ([]Artifact, error) {
	it := s.client.Bucket(bucket).Objects(ctx, &storage.Query{Prefix: prefix})

	var artifacts []Artifact
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return artifacts, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list gs://%s/%s: %w", bucket, prefix, err)
		}
		artifacts = append(artifacts, Artifact{Name: attrs.Name, Created: attrs.Created})
	}
}

func (s *gcsStore) Download(ctx context.Context, bucket, key, dest string) error {
	r, err := s.client.Bucket(bucket).Object(key).NewReader(ctx)
	if err != nil {
		return fmt.Errorf("failed to open gs://%s/%s: %w", bucket, key, err)
	}
	defer r.Close()

	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("failed to download gs://%s/%s: %w", bucket, key, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}
	return nil
}
