package publish

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/Backblaze/blazer/b2"
)

// b2Provider uploads to a Backblaze B2 bucket named by Target.Bucket,
// authenticating with an application key pair from the environment.
type b2Provider struct {
	bucket *b2.Bucket
}

func newB2Provider(ctx context.Context, bucketName string) (*b2Provider, error) {
	keyID := os.Getenv("B2_ACCOUNT_ID")
	key := os.Getenv("B2_APPLICATION_KEY")
	if keyID == "" || key == "" {
		return nil, fmt.Errorf("B2_ACCOUNT_ID and B2_APPLICATION_KEY must be set")
	}

	client, err := b2.NewClient(ctx, keyID, key)
	if err != nil {
		return nil, fmt.Errorf("creating B2 client: %w", err)
	}
	bucket, err := client.Bucket(ctx, bucketName)
	if err != nil {
		return nil, fmt.Errorf("opening B2 bucket %q: %w", bucketName, err)
	}
	return &b2Provider{bucket: bucket}, nil
}

func (p *b2Provider) Upload(ctx context.Context, localPath, remotePath string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", localPath, err)
	}
	defer f.Close()

	w := p.bucket.Object(remotePath).NewWriter(ctx)
	if _, err := io.Copy(w, f); err != nil {
		w.Close()
		return "", fmt.Errorf("b2 upload: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("closing b2 object writer: %w", err)
	}
	return fmt.Sprintf("b2://%s/%s", p.bucket.Name(), remotePath), nil
}
