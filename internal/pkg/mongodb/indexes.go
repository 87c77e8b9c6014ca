package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"bistro/internal/model"
)

// EnsureIndexes 创建所有模型的索引
// 应用启动时调用一次
func EnsureIndexes(db *mongo.Database) error {
	ctx := context.Background()

	models := []Model{
		&model.Conversation{},
		&model.Message{},
	}

	return EnsureAllIndexes(ctx, db, models...)
}
