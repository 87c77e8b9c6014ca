package oss

import (
	"context"
	"fmt"
	"io"

	alioss "github.com/aliyun/aliyun-oss-go-sdk/oss"

	"bistro/internal/pkg/storage"
)

// OSSStorage 阿里云OSS存储
type OSSStorage struct {
	bucket   *alioss.Bucket
	endpoint string
}

// New 创建阿里云OSS存储
func New(endpoint, bucketName, accessKeyID, accessKeySecret string) (*OSSStorage, error) {
	client, err := alioss.New(endpoint, accessKeyID, accessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create OSS client: %w", err)
	}

	bucket, err := client.Bucket(bucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to open OSS bucket: %w", err)
	}

	return &OSSStorage{bucket: bucket, endpoint: endpoint}, nil
}

// Upload 上传文件
func (s *OSSStorage) Upload(ctx context.Context, key string, data io.Reader, contentType string) (string, error) {
	opts := []alioss.Option{}
	if contentType != "" {
		opts = append(opts, alioss.ContentType(contentType))
	}
	if err := s.bucket.PutObject(key, data, opts...); err != nil {
		return "", fmt.Errorf("failed to upload object: %w", err)
	}
	return fmt.Sprintf("https://%s.%s/%s", s.bucket.BucketName, s.endpoint, key), nil
}

// Download 下载文件
func (s *OSSStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	rc, err := s.bucket.GetObject(key)
	if err != nil {
		return nil, fmt.Errorf("failed to download object: %w", err)
	}
	return rc, nil
}

// Delete 删除文件
func (s *OSSStorage) Delete(ctx context.Context, key string) error {
	if err := s.bucket.DeleteObject(key); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// Exists 检查文件是否存在
func (s *OSSStorage) Exists(ctx context.Context, key string) (bool, error) {
	return s.bucket.IsObjectExist(key)
}

// Type 获取存储类型
func (s *OSSStorage) Type() string {
	return storage.TypeOSS
}
