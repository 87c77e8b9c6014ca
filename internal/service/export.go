package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
	"time"

	"bistro/internal/model"
	"bistro/internal/pkg/storage"
)

// ErrArchiveDisabled 未配置归档存储时返回
var ErrArchiveDisabled = errors.New("archive storage is not configured")

// csvHeader 导出列顺序固定
var csvHeader = []string{"id", "created_at", "customer_label", "diet", "favorite_foods", "ordered_dishes"}

// ExportService 对话导出与归档服务
type ExportService struct {
	archive storage.Storage // 可选，nil 表示归档功能关闭
}

// NewExportService 创建导出服务
func NewExportService(archive storage.Storage) *ExportService {
	return &ExportService{archive: archive}
}

// BuildCSV 将对话列表编码为 CSV
// 列表字段（favorite_foods / ordered_dishes）用 "|" 拼接，时间为 RFC3339
func (s *ExportService) BuildCSV(convs []*model.Conversation) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, conv := range convs {
		record := []string{
			conv.ID,
			conv.CreatedAt.Format(time.RFC3339),
			conv.CustomerLabel,
			string(conv.Diet),
			strings.Join(conv.FavoriteFoods, "|"),
			strings.Join(conv.OrderedDishes, "|"),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Archive 将导出文件上传到对象存储并返回访问 URL
func (s *ExportService) Archive(ctx context.Context, data []byte) (string, error) {
	if s.archive == nil {
		return "", ErrArchiveDisabled
	}
	key := fmt.Sprintf("exports/conversations_%s.csv", time.Now().Format("20060102T150405"))
	url, err := s.archive.Upload(ctx, key, bytes.NewReader(data), "text/csv")
	if err != nil {
		return "", fmt.Errorf("failed to archive export: %w", err)
	}
	return url, nil
}

// Enabled 归档功能是否可用
func (s *ExportService) Enabled() bool {
	return s.archive != nil
}
