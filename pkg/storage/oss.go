package storage

import (
	"context"
	"errors"

	"github.com/PepegaBoss/foodgram-project-react/pkg/config"
	"github.com/aliyun/alibabacloud-oss-go-sdk-v2/oss"
	"github.com/aliyun/alibabacloud-oss-go-sdk-v2/oss/credentials"
)

// OSSStore keeps images in an Alibaba Cloud OSS bucket.
type OSSStore struct {
	client *oss.Client
	bucket string
}

// NewOSSStore uses static credentials when both keys are set and falls back
// to the OSS_ACCESS_KEY_* environment provider otherwise.
func NewOSSStore(cfg config.Media) (*OSSStore, error) {
	if cfg.OssBucket == "" || cfg.OssEndpoint == "" {
		return nil, errors.New("oss media backend requires OSS_ENDPOINT and OSS_BUCKET")
	}

	var provider credentials.CredentialsProvider
	if cfg.OssAccessKey != "" && cfg.OssSecretKey != "" {
		provider = credentials.NewStaticCredentialsProvider(cfg.OssAccessKey, cfg.OssSecretKey)
	} else {
		provider = credentials.NewEnvironmentVariableCredentialsProvider()
	}

	ossCfg := oss.LoadDefaultConfig().
		WithCredentialsProvider(provider).
		WithEndpoint(cfg.OssEndpoint).
		WithRegion(cfg.OssRegion)

	return &OSSStore{client: oss.NewClient(ossCfg), bucket: cfg.OssBucket}, nil
}

func (s *OSSStore) Save(ctx context.Context, key string, img *Image) error {
	_, err := s.client.PutObject(ctx, &oss.PutObjectRequest{
		Bucket:      oss.Ptr(s.bucket),
		Key:         oss.Ptr(key),
		ContentType: oss.Ptr(img.ContentType),
		Body:        img.reader(),
	})
	return err
}

func (s *OSSStore) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &oss.DeleteObjectRequest{
		Bucket: oss.Ptr(s.bucket),
		Key:    oss.Ptr(key),
	})
	return err
}
