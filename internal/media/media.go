// Package media exchanges inline image payloads for hosted URLs.
package media

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// MaxImageBytes bounds the decoded size of an inline image.
const MaxImageBytes = 5 << 20

// ErrInvalidPayload is returned when a thumbnail is not a usable data URI.
var ErrInvalidPayload = errors.New("invalid image payload")

var extensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/jpg":  "jpg",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// Uploader is implemented by every hosting backend.
type Uploader interface {
	// Upload stores img and returns the URL it is served from.
	Upload(ctx context.Context, img Image) (string, error)
	// Delete removes a previously hosted image. URLs the backend does not
	// own are ignored.
	Delete(ctx context.Context, hostedURL string) error
}

// Image is a decoded inline payload.
type Image struct {
	ContentType string
	Data        []byte
}

// Extension returns the file extension matching the content type.
func (i Image) Extension() string {
	return extensions[i.ContentType]
}

// DataURI re-encodes the image as a base64 data URI.
func (i Image) DataURI() string {
	return "data:" + i.ContentType + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}

// ObjectName builds a unique object key under folder.
func (i Image) ObjectName(folder string) string {
	name := uuid.NewString() + "." + i.Extension()
	folder = strings.Trim(folder, "/")
	if folder == "" {
		return name
	}
	return folder + "/" + name
}

// IsDataURI reports whether value looks like an inline image payload.
func IsDataURI(value string) bool {
	return strings.HasPrefix(strings.TrimSpace(value), "data:image/")
}

// ParseDataURI decodes a base64 image data URI.
func ParseDataURI(value string) (Image, error) {
	value = strings.TrimSpace(value)
	if !strings.HasPrefix(value, "data:") {
		return Image{}, fmt.Errorf("%w: missing data: prefix", ErrInvalidPayload)
	}
	header, payload, ok := strings.Cut(strings.TrimPrefix(value, "data:"), ",")
	if !ok {
		return Image{}, fmt.Errorf("%w: missing payload separator", ErrInvalidPayload)
	}

	params := strings.Split(header, ";")
	contentType := strings.ToLower(strings.TrimSpace(params[0]))
	if _, known := extensions[contentType]; !known {
		return Image{}, fmt.Errorf("%w: unsupported content type %q", ErrInvalidPayload, contentType)
	}
	if contentType == "image/jpg" {
		contentType = "image/jpeg"
	}

	base64Encoded := false
	for _, p := range params[1:] {
		if strings.EqualFold(strings.TrimSpace(p), "base64") {
			base64Encoded = true
		}
	}
	if !base64Encoded {
		return Image{}, fmt.Errorf("%w: payload must be base64 encoded", ErrInvalidPayload)
	}

	if base64.StdEncoding.DecodedLen(len(payload)) > MaxImageBytes+3 {
		return Image{}, fmt.Errorf("%w: image exceeds %d bytes", ErrInvalidPayload, MaxImageBytes)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if len(data) == 0 {
		return Image{}, fmt.Errorf("%w: empty image", ErrInvalidPayload)
	}
	if len(data) > MaxImageBytes {
		return Image{}, fmt.Errorf("%w: image exceeds %d bytes", ErrInvalidPayload, MaxImageBytes)
	}

	return Image{ContentType: contentType, Data: data}, nil
}

// Inline keeps images as data URIs in the database. It is used when no
// hosting backend is configured.
type Inline struct{}

// Upload returns the normalized data URI.
func (Inline) Upload(_ context.Context, img Image) (string, error) {
	return img.DataURI(), nil
}

// Delete is a no-op.
func (Inline) Delete(context.Context, string) error {
	return nil
}
