package storage

import (
	"context"
	"io"
)

// Storage 导出归档存储接口
type Storage interface {
	// Upload 上传文件，返回访问URL
	Upload(ctx context.Context, key string, data io.Reader, contentType string) (string, error)

	// Download 下载文件
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete 删除文件
	Delete(ctx context.Context, key string) error

	// Exists 检查文件是否存在
	Exists(ctx context.Context, key string) (bool, error)

	// Type 获取存储类型
	Type() string
}

// 存储类型
const (
	TypeLocal = "local" // 本地文件系统
	TypeOSS   = "oss"   // 阿里云OSS
)
