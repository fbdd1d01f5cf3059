package storage

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PepegaBoss/foodgram-project-react/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 1x1 transparent PNG
const pixelPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

func TestDecodeDataURI(t *testing.T) {
	img, err := DecodeDataURI("data:image/png;base64," + pixelPNG)
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.ContentType)
	assert.Equal(t, "png", img.Ext)
	assert.NotEmpty(t, img.Data)
}

func TestDecodeDataURI_Rejects(t *testing.T) {
	cases := map[string]error{
		"not a uri":                              ErrInvalidImage,
		"data:text/plain;base64,aGVsbG8=":        ErrInvalidImage,
		"data:image/png;base64,***":              ErrInvalidImage,
		"data:image/png;base64,":                 ErrInvalidImage,
		"data:image/png;base64,aGVsbG8gd29ybGQ=": ErrUnsupportedImage,
	}
	for uri, want := range cases {
		_, err := DecodeDataURI(uri)
		assert.ErrorIs(t, err, want, uri)
	}
}

func TestDecodeDataURI_TooLarge(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString(make([]byte, MaxImageSize+1))
	_, err := DecodeDataURI("data:image/png;base64," + payload)
	assert.ErrorIs(t, err, ErrImageTooLarge)
}

func TestNewKeyAndURL(t *testing.T) {
	key := NewKey("png")
	assert.True(t, strings.HasPrefix(key, "recipes/"))
	assert.True(t, strings.HasSuffix(key, ".png"))
	assert.NotEqual(t, key, NewKey("png"))

	assert.Equal(t, "/media/recipes/a.png", URL("/media/", "recipes/a.png"))
	assert.Equal(t, "https://cdn.example.com/recipes/a.png", URL("https://cdn.example.com", "recipes/a.png"))
	assert.Equal(t, "", URL("/media/", ""))
}

func TestFileStore_SaveDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	img, err := DecodeDataURI("data:image/png;base64," + pixelPNG)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "recipes/pixel.png", img))

	data, err := os.ReadFile(filepath.Join(dir, "recipes", "pixel.png"))
	require.NoError(t, err)
	assert.Equal(t, img.Data, data)

	require.NoError(t, store.Delete(ctx, "recipes/pixel.png"))
	_, err = os.Stat(filepath.Join(dir, "recipes", "pixel.png"))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, store.Delete(ctx, "recipes/pixel.png"))
}

func TestFileStore_RejectsEscapingKeys(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	err = store.Save(context.Background(), "../outside.png", &Image{Data: []byte{1}})
	assert.Error(t, err)
}

func TestNew_UnknownBackend(t *testing.T) {
	_, err := New(config.Media{Backend: "s3"}, nil)
	assert.Error(t, err)

	_, err = New(config.Media{Backend: "gridfs"}, nil)
	assert.Error(t, err)
}
