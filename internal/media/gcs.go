package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	storage "google.golang.org/api/storage/v1"
)

const gcsPublicBase = "https://storage.googleapis.com"

// GCS stores thumbnails in a Google Cloud Storage bucket through the JSON API.
type GCS struct {
	svc    *storage.Service
	bucket string
	folder string
}

// NewGCS builds a GCS backend. When credentialsFile is empty the application
// default credentials are used.
func NewGCS(ctx context.Context, bucket, credentialsFile, folder string, opts ...option.ClientOption) (*GCS, error) {
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	svc, err := storage.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}
	return &GCS{svc: svc, bucket: bucket, folder: folder}, nil
}

// Upload implements Uploader.
func (g *GCS) Upload(ctx context.Context, img Image) (string, error) {
	obj := &storage.Object{
		Name:         img.ObjectName(g.folder),
		ContentType:  img.ContentType,
		CacheControl: "public, max-age=31536000",
	}

	stored, err := g.svc.Objects.Insert(g.bucket, obj).
		Media(bytes.NewReader(img.Data), googleapi.ContentType(img.ContentType)).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("gcs insert object %s: %w", obj.Name, err)
	}
	return g.publicURL(stored.Name), nil
}

// Delete implements Uploader.
func (g *GCS) Delete(ctx context.Context, hostedURL string) error {
	rest, ok := strings.CutPrefix(strings.TrimSpace(hostedURL), gcsPublicBase+"/"+g.bucket+"/")
	if !ok || rest == "" {
		return nil
	}
	name, err := url.PathUnescape(rest)
	if err != nil {
		return nil
	}

	if err := g.svc.Objects.Delete(g.bucket, name).Context(ctx).Do(); err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound {
			return nil
		}
		return fmt.Errorf("gcs delete object %s: %w", name, err)
	}
	return nil
}

func (g *GCS) publicURL(name string) string {
	return gcsPublicBase + "/" + g.bucket + "/" + (&url.URL{Path: name}).EscapedPath()
}
