package storagefactory

import (
	"fmt"

	"bistro/internal/config"
	"bistro/internal/pkg/storage"
	"bistro/internal/pkg/storage/local"
	"bistro/internal/pkg/storage/oss"
)

// New 根据配置创建存储实例
// type 为空时返回 (nil, nil)，表示归档功能禁用
func New(cfg *config.StorageConfig) (storage.Storage, error) {
	switch cfg.Type {
	case "":
		return nil, nil
	case storage.TypeLocal:
		if cfg.Local == nil {
			return nil, fmt.Errorf("storage.local config is required for local storage")
		}
		return local.New(cfg.Local.BasePath, cfg.Local.BaseURL)
	case storage.TypeOSS:
		if cfg.OSS == nil {
			return nil, fmt.Errorf("storage.oss config is required for oss storage")
		}
		return oss.New(cfg.OSS.Endpoint, cfg.OSS.Bucket, cfg.OSS.AccessKeyID, cfg.OSS.AccessKeySecret)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
