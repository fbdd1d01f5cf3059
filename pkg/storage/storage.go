// Package storage keeps uploaded recipe images in a pluggable object store.
package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/PepegaBoss/foodgram-project-react/pkg/config"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

// MaxImageSize bounds a decoded image.
const MaxImageSize = 10 << 20

var (
	ErrInvalidImage     = errors.New("invalid image")
	ErrImageTooLarge    = errors.New("image too large")
	ErrUnsupportedImage = errors.New("unsupported image type")
)

var allowedTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// Store persists image objects under caller-chosen keys.
type Store interface {
	Save(ctx context.Context, key string, img *Image) error
	Delete(ctx context.Context, key string) error
}

// Image is a decoded upload.
type Image struct {
	Data        []byte
	ContentType string
	Ext         string
}

func (img *Image) reader() *bytes.Reader {
	return bytes.NewReader(img.Data)
}

// DecodeDataURI decodes "data:image/<type>;base64,<payload>".
// The payload is sniffed and must agree with an allowed image type.
func DecodeDataURI(uri string) (*Image, error) {
	header, payload, ok := strings.Cut(uri, ";base64,")
	if !ok || !strings.HasPrefix(header, "data:image/") {
		return nil, ErrInvalidImage
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxImageSize+3 {
		return nil, ErrImageTooLarge
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil || len(data) == 0 {
		return nil, ErrInvalidImage
	}
	if len(data) > MaxImageSize {
		return nil, ErrImageTooLarge
	}

	contentType := http.DetectContentType(data)
	ext, ok := allowedTypes[contentType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedImage, contentType)
	}
	return &Image{Data: data, ContentType: contentType, Ext: ext}, nil
}

// NewKey returns a fresh object key for an image with the given extension.
func NewKey(ext string) string {
	return "recipes/" + uuid.NewString() + "." + ext
}

// URL joins the public media base with an object key.
func URL(baseURL, key string) string {
	if key == "" {
		return ""
	}
	return strings.TrimSuffix(baseURL, "/") + "/" + strings.TrimPrefix(key, "/")
}

// New builds the store selected by cfg.Backend. mongoClient is only used by gridfs.
func New(cfg config.Media, mongoClient *mongo.Client) (Store, error) {
	switch cfg.Backend {
	case "", "fs":
		return NewFileStore(cfg.Dir)
	case "gridfs":
		if mongoClient == nil {
			return nil, errors.New("gridfs media backend requires a MongoDB client")
		}
		return NewGridFSStore(mongoClient.Database(cfg.MongoDatabase))
	case "oss":
		return NewOSSStore(cfg)
	default:
		return nil, fmt.Errorf("unknown media backend %q", cfg.Backend)
	}
}
