package media

import (
	"context"
	"fmt"
	"net/http"

	"github.com/octobees/business-directory/internal/config"
)

// New builds the uploader selected by cfg.Provider.
func New(ctx context.Context, cfg config.MediaConfig, client *http.Client) (Uploader, error) {
	switch cfg.Provider {
	case "", "none":
		return Inline{}, nil
	case "cloudinary":
		backend, err := NewCloudinary(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.Folder, client)
		if err != nil {
			return nil, err
		}
		return backend, nil
	case "s3":
		backend, err := NewS3(ctx, S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			PublicBaseURL:   cfg.S3PublicBaseURL,
			Folder:          cfg.Folder,
		})
		if err != nil {
			return nil, err
		}
		return backend, nil
	case "gcs":
		backend, err := NewGCS(ctx, cfg.GCSBucket, cfg.GCSCredentialsFile, cfg.Folder)
		if err != nil {
			return nil, err
		}
		return backend, nil
	default:
		return nil, fmt.Errorf("unsupported media provider %q", cfg.Provider)
	}
}
