package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// GCSAdapter backs the blob store port with a Google Cloud Storage
// bucket. Signed URLs use the V4 scheme; when no explicit signer is
// configured the client's own credentials are used.
type GCSAdapter struct {
	client *storage.Client
	bucket string

	signerEmail string
	signerKey   []byte
}

func NewGCSAdapter(client *storage.Client, bucket string) *GCSAdapter {
	return &GCSAdapter{client: client, bucket: bucket}
}

// WithSigner sets an explicit service-account signer for URL issuance,
// for environments where the client credentials cannot sign (e.g. a
// local key-file-less setup with GCS_SIGNER_* provided).
func (g *GCSAdapter) WithSigner(email string, privateKey []byte) *GCSAdapter {
	g.signerEmail = email
	g.signerKey = privateKey
	return g
}

func (g *GCSAdapter) Put(ctx context.Context, key, contentType string, metadata map[string]string, payload []byte) error {
	wc := g.client.Bucket(g.bucket).Object(key).NewWriter(ctx)
	wc.ContentType = contentType
	wc.Metadata = metadata

	if _, err := wc.Write(payload); err != nil {
		wc.Close()
		return fmt.Errorf("write object %s: %w", key, err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("close object writer %s: %w", key, err)
	}
	return nil
}

func (g *GCSAdapter) List(ctx context.Context, prefix string) ([]string, error) {
	it := g.client.Bucket(g.bucket).Objects(ctx, &storage.Query{Prefix: prefix})

	var keys []string
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list objects with prefix %s: %w", prefix, err)
		}
		keys = append(keys, attrs.Name)
	}
	return keys, nil
}

func (g *GCSAdapter) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	opts := &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  "GET",
		Expires: time.Now().Add(ttl),
	}
	if g.signerEmail != "" {
		opts.GoogleAccessID = g.signerEmail
		opts.PrivateKey = g.signerKey
	}

	url, err := g.client.Bucket(g.bucket).SignedURL(key, opts)
	if err != nil {
		return "", fmt.Errorf("sign url for %s: %w", key, err)
	}
	return url, nil
}
