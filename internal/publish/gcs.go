package publish

import (
	"context"
	"fmt"
	"io"
	"os"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// gcsProvider uploads to a Google Cloud Storage bucket named by Target.Bucket,
// authenticating via Application Default Credentials unless
// GOOGLE_APPLICATION_CREDENTIALS_JSON_PATH names a service account key file.
type gcsProvider struct {
	bucket string
	client *storage.Client
}

func newGCSProvider(ctx context.Context, bucket string) (*gcsProvider, error) {
	var opts []option.ClientOption
	if keyPath := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON_PATH"); keyPath != "" {
		opts = append(opts, option.WithCredentialsFile(keyPath))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating GCS client: %w", err)
	}
	return &gcsProvider{bucket: bucket, client: client}, nil
}

func (p *gcsProvider) Upload(ctx context.Context, localPath, remotePath string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", localPath, err)
	}
	defer f.Close()

	w := p.client.Bucket(p.bucket).Object(remotePath).NewWriter(ctx)
	if _, err := io.Copy(w, f); err != nil {
		w.Close()
		return "", fmt.Errorf("gcs upload: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("closing gcs object writer: %w", err)
	}
	return fmt.Sprintf("gcs://%s/%s", p.bucket, remotePath), nil
}
