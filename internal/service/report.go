package service

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"bistro/internal/model"
	"bistro/internal/pkg/cache"
)

// 报表相关限制
const (
	// DashboardLatestCount 仪表盘显示的最近对话数
	DashboardLatestCount = 100
	// TopFoodsCount 每种饮食类型展示的食物排行数
	TopFoodsCount = 10
	// MaxExportCount 导出接口的最大条数
	MaxExportCount = 500
	// DefaultExportCount 导出接口的默认条数
	DefaultExportCount = 100
)

// FoodCount 食物及其出现次数
type FoodCount struct {
	Food  string `json:"food"`
	Count int    `json:"count"`
}

// TopFoodsByDiet 按饮食类型统计最爱食物的出现频次
// 每个饮食桶返回前 topN 个食物，计数相同按首次出现顺序（稳定排序）
// 未识别的饮食值跳过而不报错
func TopFoodsByDiet(rows []model.DietFoods, topN int) map[model.Diet][]FoodCount {
	counts := make(map[model.Diet]map[string]int)
	order := make(map[model.Diet][]string) // 首次出现顺序
	for _, d := range model.AllDiets() {
		counts[d] = make(map[string]int)
	}

	for _, row := range rows {
		bucket, ok := counts[row.Diet]
		if !ok {
			continue // 未知饮食值
		}
		for _, food := range row.FavoriteFoods {
			normalized := strings.ToLower(strings.TrimSpace(food))
			if normalized == "" {
				continue
			}
			if _, seen := bucket[normalized]; !seen {
				order[row.Diet] = append(order[row.Diet], normalized)
			}
			bucket[normalized]++
		}
	}

	result := make(map[model.Diet][]FoodCount, len(counts))
	for _, d := range model.AllDiets() {
		foods := order[d]
		ranked := make([]FoodCount, 0, len(foods))
		for _, food := range foods {
			ranked = append(ranked, FoodCount{Food: food, Count: counts[d][food]})
		}
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].Count > ranked[j].Count
		})
		if len(ranked) > topN {
			ranked = ranked[:topN]
		}
		result[d] = ranked
	}
	return result
}

// ConversationView 对话及其完整转录
type ConversationView struct {
	*model.Conversation
	Messages []*model.Message `json:"messages"`
}

// DashboardData 仪表盘数据
type DashboardData struct {
	Latest      []*ConversationView        `json:"latest"`
	DietCounts  map[model.Diet]int64       `json:"diet_counts"`
	TopFoods    map[model.Diet][]FoodCount `json:"top_foods"`
	LatestLimit int                        `json:"latest_limit"`
}

// ReportService 聚合报表服务
type ReportService struct {
	store TranscriptStore
	cache *cache.RedisCache // 可选，nil 时直接查库
}

// NewReportService 创建聚合报表服务
func NewReportService(store TranscriptStore, redisCache *cache.RedisCache) *ReportService {
	return &ReportService{store: store, cache: redisCache}
}

// Latest 查询最近 limit 条对话
func (s *ReportService) Latest(ctx context.Context, limit int) ([]*model.Conversation, error) {
	return s.store.ListLatest(ctx, int64(limit))
}

// VegetarianSummary 查询素食倾向（vegetarian + vegan）的对话
func (s *ReportService) VegetarianSummary(ctx context.Context) ([]*model.Conversation, error) {
	return s.store.FindByDiets(ctx, []model.Diet{model.DietVegetarian, model.DietVegan})
}

// Dashboard 组装仪表盘数据：最近对话（含转录）、分组计数、食物排行
func (s *ReportService) Dashboard(ctx context.Context) (*DashboardData, error) {
	if s.cache != nil {
		var cached DashboardData
		if err := s.cache.Get(ctx, cache.DashboardCacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	latest, err := s.store.ListLatest(ctx, DashboardLatestCount)
	if err != nil {
		return nil, err
	}

	views := make([]*ConversationView, 0, len(latest))
	for _, conv := range latest {
		msgs, err := s.store.FindMessages(ctx, conv.ID)
		if err != nil {
			return nil, err
		}
		views = append(views, &ConversationView{Conversation: conv, Messages: msgs})
	}

	counts, err := s.store.CountByDiet(ctx)
	if err != nil {
		return nil, err
	}
	dietCounts := make(map[model.Diet]int64, 3)
	for _, d := range model.AllDiets() {
		dietCounts[d] = counts[d] // 缺失桶计为0
	}

	rows, err := s.store.DietFoodRows(ctx)
	if err != nil {
		return nil, err
	}

	data := &DashboardData{
		Latest:      views,
		DietCounts:  dietCounts,
		TopFoods:    TopFoodsByDiet(rows, TopFoodsCount),
		LatestLimit: DashboardLatestCount,
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cache.DashboardCacheKey, data, cache.DashboardCacheTTL); err != nil {
			log.Warn().Err(err).Msg("failed to cache dashboard data")
		}
	}
	return data, nil
}

// InvalidateDashboard 批量运行后主动失效仪表盘缓存
func (s *ReportService) InvalidateDashboard(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cache.DashboardCacheKey); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate dashboard cache")
	}
}
