// Package publish implements C11, the optional post-assembly upload of a
// finished GIF/MP4 to a cloud destination. Additive to the recording
// pipeline: C8 always writes the local file; publish only runs when
// --publish names a destination.
package publish

import (
	"context"
	"fmt"
	"strings"

	"github.com/shellrec/shellrec/internal/logging"
)

var log = logging.L("publish")

// Provider uploads a single local file to a remote destination and returns
// the URI it was stored at.
type Provider interface {
	Upload(ctx context.Context, localPath, remotePath string) (string, error)
}

// Target is a parsed --publish value: scheme://bucket/key.
type Target struct {
	Scheme string
	Bucket string
	Key    string
}

// ParseTarget parses "s3://bucket/key", "azure://container/key",
// "gcs://bucket/key", "b2://bucket/key", or "local:///abs/path".
func ParseTarget(raw string) (Target, error) {
	idx := strings.Index(raw, "://")
	if idx < 0 {
		return Target{}, fmt.Errorf("publish target %q must be scheme://bucket/key", raw)
	}
	scheme := raw[:idx]
	rest := raw[idx+3:]
	if rest == "" {
		return Target{}, fmt.Errorf("publish target %q is missing a path", raw)
	}

	switch scheme {
	case "s3", "azure", "gcs", "b2":
	case "local":
		// local:///abs/dir/file.gif has no bucket, just an absolute path;
		// split it into a base directory and a filename so the local
		// provider's containedPath guard still has a root to anchor to.
		slash := strings.LastIndex(rest, "/")
		if slash < 0 {
			return Target{}, fmt.Errorf("publish target %q must be local:///absolute/path", raw)
		}
		base := rest[:slash]
		if base == "" {
			base = "/"
		}
		return Target{Scheme: scheme, Bucket: base, Key: rest[slash+1:]}, nil
	default:
		return Target{}, fmt.Errorf("publish target %q has unknown scheme %q (want s3, azure, gcs, b2, or local)", raw, scheme)
	}

	slash := strings.Index(rest, "/")
	var bucket, key string
	if slash < 0 {
		bucket = rest
	} else {
		bucket = rest[:slash]
		key = rest[slash+1:]
	}
	if bucket == "" {
		return Target{}, fmt.Errorf("publish target %q is missing a bucket", raw)
	}

	return Target{Scheme: scheme, Bucket: bucket, Key: key}, nil
}

// Run resolves the provider for target.Scheme, uploads localPath, and
// returns the remote URI.
func Run(ctx context.Context, target Target, localPath string) (string, error) {
	provider, err := newProvider(ctx, target)
	if err != nil {
		return "", fmt.Errorf("resolving publish provider: %w", err)
	}

	key := target.Key
	if key == "" {
		key = baseName(localPath)
	}

	log.Info("publishing recording", "scheme", target.Scheme, "bucket", target.Bucket, "key", key)
	uri, err := provider.Upload(ctx, localPath, key)
	if err != nil {
		return "", fmt.Errorf("uploading to %s://%s/%s: %w", target.Scheme, target.Bucket, key, err)
	}
	return uri, nil
}

func newProvider(ctx context.Context, target Target) (Provider, error) {
	switch target.Scheme {
	case "local":
		return newLocalProvider(target.Bucket), nil
	case "s3":
		return newS3Provider(ctx, target.Bucket)
	case "azure":
		return newAzureProvider(target.Bucket)
	case "gcs":
		return newGCSProvider(ctx, target.Bucket)
	case "b2":
		return newB2Provider(ctx, target.Bucket)
	default:
		return nil, fmt.Errorf("unknown publish scheme %q", target.Scheme)
	}
}

func baseName(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' || path[i] == '\\' {
			return path[i+1:]
		}
	}
	return path
}
