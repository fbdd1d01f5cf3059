package storage

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const gridFSBucketName = "recipe_images"

// GridFSStore keeps images in a MongoDB GridFS bucket. The object key is used
// both as the GridFS file id and as its filename.
type GridFSStore struct {
	bucket *gridfs.Bucket
}

func NewGridFSStore(db *mongo.Database) (*GridFSStore, error) {
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(gridFSBucketName))
	if err != nil {
		return nil, err
	}
	return &GridFSStore{bucket: bucket}, nil
}

func (s *GridFSStore) Save(ctx context.Context, key string, img *Image) error {
	if deadline, ok := ctx.Deadline(); ok {
		if err := s.bucket.SetWriteDeadline(deadline); err != nil {
			return err
		}
	}
	opts := options.GridFSUpload().SetMetadata(bson.M{"contentType": img.ContentType})
	return s.bucket.UploadFromStreamWithID(key, key, img.reader(), opts)
}

func (s *GridFSStore) Delete(ctx context.Context, key string) error {
	if err := s.bucket.DeleteContext(ctx, key); err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
		return err
	}
	return nil
}
