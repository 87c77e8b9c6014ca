package service

import (
	"context"

	"bistro/internal/model"
)

// Generator 文本生成能力（由 internal/ai.Client 实现）
type Generator interface {
	// GenerateText 自由文本生成
	GenerateText(ctx context.Context, userInput, instructions string) (string, error)

	// GenerateStructured 结构化生成，按 JSON Schema 严格校验后解码到 out
	GenerateStructured(ctx context.Context, userInput, instructions, schemaJSON, name string, out any) error
}

// TranscriptStore 对话转录存储（由 repository.ConversationRepo 实现）
type TranscriptStore interface {
	// WithTransaction 在单个事务中执行 fn，fn 出错时回滚全部写入
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	CreateConversation(ctx context.Context, conv *model.Conversation) error
	AppendMessage(ctx context.Context, conversationID string, role model.Role, content string, turnIndex int) error
	UpdateDerived(ctx context.Context, conversationID string, diet model.Diet, favoriteFoods, orderedDishes []string) error

	// DeleteConversation 删除对话并级联删除其全部消息
	DeleteConversation(ctx context.Context, conversationID string) error

	ListLatest(ctx context.Context, limit int64) ([]*model.Conversation, error)
	FindByDiets(ctx context.Context, diets []model.Diet) ([]*model.Conversation, error)
	CountByDiet(ctx context.Context) (map[model.Diet]int64, error)
	DietFoodRows(ctx context.Context) ([]model.DietFoods, error)
	FindMessages(ctx context.Context, conversationID string) ([]*model.Message, error)
}
