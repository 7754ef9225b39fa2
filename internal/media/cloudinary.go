package media

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

var versionSegment = regexp.MustCompile(`^v\d+$`)

// Cloudinary uploads through the signed Cloudinary upload API.
type Cloudinary struct {
	CloudName string
	Folder    string

	cld *cloudinary.Cloudinary
}

// NewCloudinary builds a Cloudinary backend.
func NewCloudinary(cloudName, apiKey, apiSecret, folder string, client *http.Client) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("configure cloudinary: %w", err)
	}
	if client != nil {
		cld.Upload.Client = *client
	}
	return &Cloudinary{
		CloudName: cloudName,
		Folder:    strings.Trim(folder, "/"),
		cld:       cld,
	}, nil
}

// Upload implements Uploader.
func (c *Cloudinary) Upload(ctx context.Context, img Image) (string, error) {
	resp, err := c.cld.Upload.Upload(ctx, img.DataURI(), uploader.UploadParams{Folder: c.Folder})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload: %s", resp.Error.Message)
	}
	if resp.SecureURL == "" {
		return "", fmt.Errorf("cloudinary upload: response without secure_url")
	}
	return resp.SecureURL, nil
}

// Delete implements Uploader.
func (c *Cloudinary) Delete(ctx context.Context, hostedURL string) error {
	publicID, ok := c.publicID(hostedURL)
	if !ok {
		return nil
	}

	resp, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("cloudinary destroy %s: %w", publicID, err)
	}
	if resp.Error.Message != "" {
		return fmt.Errorf("cloudinary destroy %s: %s", publicID, resp.Error.Message)
	}
	if resp.Result != "ok" && resp.Result != "not found" {
		return fmt.Errorf("cloudinary destroy %s: unexpected result %q", publicID, resp.Result)
	}
	return nil
}

// publicID extracts the asset id from a delivery URL such as
// https://res.cloudinary.com/<cloud>/image/upload/v123/businesses/abc.png.
func (c *Cloudinary) publicID(hostedURL string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(hostedURL))
	if err != nil || !strings.HasSuffix(u.Hostname(), "cloudinary.com") {
		return "", false
	}
	prefix := "/" + c.CloudName + "/image/upload/"
	if !strings.HasPrefix(u.Path, prefix) {
		return "", false
	}

	segments := strings.Split(strings.TrimPrefix(u.Path, prefix), "/")
	for len(segments) > 1 && (versionSegment.MatchString(segments[0]) || strings.Contains(segments[0], ",")) {
		segments = segments[1:]
	}
	id := strings.Join(segments, "/")
	id = strings.TrimSuffix(id, path.Ext(id))
	if id == "" {
		return "", false
	}
	return id, true
}
