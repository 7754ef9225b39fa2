package media

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/octobees/business-directory/internal/config"
)

var pngBytes = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}

func pngDataURI() string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes)
}

func TestParseDataURI(t *testing.T) {
	img, err := ParseDataURI("  " + pngDataURI() + " ")
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.ContentType)
	assert.Equal(t, pngBytes, img.Data)
	assert.Equal(t, "png", img.Extension())
	assert.Equal(t, pngDataURI(), img.DataURI())

	img, err = ParseDataURI("data:image/jpg;base64," + base64.StdEncoding.EncodeToString([]byte("jpeg")))
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", img.ContentType)
	assert.Equal(t, "jpg", img.Extension())
}

func TestParseDataURI_Invalid(t *testing.T) {
	cases := map[string]string{
		"not a data uri":     "https://example.com/a.png",
		"no separator":       "data:image/png;base64",
		"unsupported type":   "data:text/html;base64,PGI+",
		"not base64 encoded": "data:image/png,rawbytes",
		"corrupt payload":    "data:image/png;base64,@@@",
		"empty payload":      "data:image/png;base64,",
		"too large":          "data:image/png;base64," + strings.Repeat("A", (MaxImageBytes/3+2)*4),
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseDataURI(input)
			assert.ErrorIs(t, err, ErrInvalidPayload)
		})
	}
}

func TestIsDataURI(t *testing.T) {
	assert.True(t, IsDataURI(pngDataURI()))
	assert.False(t, IsDataURI("https://res.cloudinary.com/demo/image/upload/x.png"))
	assert.False(t, IsDataURI(""))
}

func TestImageObjectName(t *testing.T) {
	img := Image{ContentType: "image/webp"}
	name := img.ObjectName("/businesses/")
	assert.True(t, strings.HasPrefix(name, "businesses/"))
	assert.True(t, strings.HasSuffix(name, ".webp"))
	assert.NotEqual(t, name, img.ObjectName("businesses"))
	assert.NotContains(t, img.ObjectName(""), "/")
}

func TestInline(t *testing.T) {
	img, err := ParseDataURI(pngDataURI())
	require.NoError(t, err)

	url, err := Inline{}.Upload(context.Background(), img)
	require.NoError(t, err)
	assert.Equal(t, pngDataURI(), url)
	assert.NoError(t, Inline{}.Delete(context.Background(), url))
}

func TestNew(t *testing.T) {
	u, err := New(context.Background(), config.MediaConfig{Provider: "none"}, nil)
	require.NoError(t, err)
	assert.IsType(t, Inline{}, u)

	u, err = New(context.Background(), config.MediaConfig{
		Provider:            "cloudinary",
		CloudinaryCloudName: "demo",
		CloudinaryAPIKey:    "key",
		CloudinaryAPISecret: "secret",
		Folder:              "businesses",
	}, nil)
	require.NoError(t, err)
	require.IsType(t, &Cloudinary{}, u)
	assert.Equal(t, "businesses", u.(*Cloudinary).Folder)

	_, err = New(context.Background(), config.MediaConfig{Provider: "ftp"}, nil)
	assert.Error(t, err)
}
