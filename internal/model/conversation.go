package model

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Conversation 一次模拟对话（主表）
// diet/favorite_foods/ordered_dishes 在对话过程中逐步填充，
// 仅当整个脚本成功完成时整体提交
type Conversation struct {
	ID string `bson:"id" json:"id"` // 对话ID（UUID）

	CustomerLabel string `bson:"customer_label" json:"customer_label"` // 顾客标签，如 customer_1

	Diet          Diet     `bson:"diet" json:"diet"`                     // 饮食类型，默认 omnivore
	FavoriteFoods []string `bson:"favorite_foods" json:"favorite_foods"` // 最爱的3种食物（归一化）
	OrderedDishes []string `bson:"ordered_dishes" json:"ordered_dishes"` // 点的菜（归一化，≥1）

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// Collection 返回集合名称
func (c *Conversation) Collection() string { return "conversations" }

// EnsureIndexes 创建和维护索引
func (c *Conversation) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(c.Collection())
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{bson.E{Key: "id", Value: 1}},
			Options: options.Index().SetName("idx_id").SetUnique(true),
		},
		{
			Keys:    bson.D{bson.E{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_created_at"),
		},
		{
			Keys:    bson.D{bson.E{Key: "diet", Value: 1}},
			Options: options.Index().SetName("idx_diet"),
		},
	}
	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}

// Message 对话中的一条消息
// 归属唯一的 Conversation，(conversation_id, turn_index) 唯一，
// turn_index 从1开始连续递增，转录顺序按 turn_index 升序
type Message struct {
	ID string `bson:"id" json:"id"` // 消息ID（UUID）

	ConversationID string `bson:"conversation_id" json:"conversation_id"`
	Role           Role   `bson:"role" json:"role"`             // waiter / customer
	Content        string `bson:"content" json:"content"`       // 原始文本（可为空串）
	TurnIndex      int    `bson:"turn_index" json:"turn_index"` // 对话中的序号，从1开始

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// Collection 返回集合名称
func (m *Message) Collection() string { return "messages" }

// EnsureIndexes 创建和维护索引
func (m *Message) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(m.Collection())
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				bson.E{Key: "conversation_id", Value: 1},
				bson.E{Key: "turn_index", Value: 1},
			},
			Options: options.Index().SetName("idx_conversation_turn").SetUnique(true),
		},
	}
	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}

// DietFoods 聚合用的投影行（diet + favorite_foods）
type DietFoods struct {
	Diet          Diet     `bson:"diet" json:"diet"`
	FavoriteFoods []string `bson:"favorite_foods" json:"favorite_foods"`
}
