package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"bistro/internal/model"
	"bistro/internal/pkg/id"
	"bistro/internal/pkg/mongodb"
)

// ConversationRepo 对话转录仓库
// conversations 与 messages 分表存储，消息归属唯一对话，
// 级联删除与 (conversation_id, turn_index) 唯一性由本层保证
type ConversationRepo struct {
	client        *mongo.Client
	conversations *mongo.Collection
	messages      *mongo.Collection
}

// NewConversationRepo 创建对话转录仓库
func NewConversationRepo(client *mongodb.Client) *ConversationRepo {
	var c model.Conversation
	var m model.Message
	return &ConversationRepo{
		client:        client.Client(),
		conversations: client.Collection(c.Collection()),
		messages:      client.Collection(m.Collection()),
	}
}

// WithTransaction 在单个 MongoDB 事务中执行 fn
// fn 返回错误时全部写入回滚；这是模拟驱动器的每次迭代边界
func (r *ConversationRepo) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc)
	})
	return err
}

// CreateConversation 创建对话
// 仅设置顾客标签时即可创建，diet 默认 omnivore
func (r *ConversationRepo) CreateConversation(ctx context.Context, conv *model.Conversation) error {
	if conv.ID == "" {
		conv.ID = id.New()
	}
	if conv.Diet == "" {
		conv.Diet = model.DietOmnivore
	}
	if conv.FavoriteFoods == nil {
		conv.FavoriteFoods = []string{}
	}
	if conv.OrderedDishes == nil {
		conv.OrderedDishes = []string{}
	}
	conv.CreatedAt = time.Now()

	_, err := r.conversations.InsertOne(ctx, conv)
	return err
}

// AppendMessage 追加一条消息
// turn_index 必须是该对话的下一个序号（从1开始连续），否则拒绝写入
func (r *ConversationRepo) AppendMessage(ctx context.Context, conversationID string, role model.Role, content string, turnIndex int) error {
	n, err := r.messages.CountDocuments(ctx, bson.M{"conversation_id": conversationID})
	if err != nil {
		return err
	}
	if turnIndex != int(n)+1 {
		return fmt.Errorf("turn_index %d out of sequence for conversation %s, want %d",
			turnIndex, conversationID, n+1)
	}

	msg := &model.Message{
		ID:             id.New(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		TurnIndex:      turnIndex,
		CreatedAt:      time.Now(),
	}
	_, err = r.messages.InsertOne(ctx, msg)
	return err
}

// UpdateDerived 更新对话的派生字段（diet / favorite_foods / ordered_dishes）
func (r *ConversationRepo) UpdateDerived(ctx context.Context, conversationID string, diet model.Diet, favoriteFoods, orderedDishes []string) error {
	if !diet.Valid() {
		return fmt.Errorf("invalid diet value: %q", diet)
	}
	update := bson.M{"$set": bson.M{
		"diet":           diet,
		"favorite_foods": favoriteFoods,
		"ordered_dishes": orderedDishes,
	}}
	_, err := r.conversations.UpdateOne(ctx, bson.M{"id": conversationID}, update)
	return err
}

// ListLatest 按创建时间倒序查询最近的对话
func (r *ConversationRepo) ListLatest(ctx context.Context, limit int64) ([]*model.Conversation, error) {
	opts := options.Find().
		SetSort(bson.D{bson.E{Key: "created_at", Value: -1}}).
		SetLimit(limit)

	cur, err := r.conversations.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var convs []*model.Conversation
	if err := cur.All(ctx, &convs); err != nil {
		return nil, err
	}
	return convs, nil
}

// FindByDiets 查询饮食类型在给定集合内的对话
func (r *ConversationRepo) FindByDiets(ctx context.Context, diets []model.Diet) ([]*model.Conversation, error) {
	cur, err := r.conversations.Find(ctx, bson.M{"diet": bson.M{"$in": diets}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var convs []*model.Conversation
	if err := cur.All(ctx, &convs); err != nil {
		return nil, err
	}
	return convs, nil
}

// CountByDiet 按饮食类型分组统计对话数
func (r *ConversationRepo) CountByDiet(ctx context.Context) (map[model.Diet]int64, error) {
	pipeline := mongo.Pipeline{
		bson.D{bson.E{Key: "$group", Value: bson.M{
			"_id":   "$diet",
			"count": bson.M{"$sum": 1},
		}}},
	}
	cur, err := r.conversations.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		Diet  model.Diet `bson:"_id"`
		Count int64      `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}

	counts := make(map[model.Diet]int64, len(rows))
	for _, row := range rows {
		counts[row.Diet] = row.Count
	}
	return counts, nil
}

// DietFoodRows 读取全部 (diet, favorite_foods) 投影行，用于聚合统计
func (r *ConversationRepo) DietFoodRows(ctx context.Context) ([]model.DietFoods, error) {
	opts := options.Find().SetProjection(bson.M{"diet": 1, "favorite_foods": 1})
	cur, err := r.conversations.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []model.DietFoods
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// FindMessages 按 turn_index 升序返回对话转录（规范顺序）
func (r *ConversationRepo) FindMessages(ctx context.Context, conversationID string) ([]*model.Message, error) {
	opts := options.Find().SetSort(bson.D{bson.E{Key: "turn_index", Value: 1}})
	cur, err := r.messages.Find(ctx, bson.M{"conversation_id": conversationID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var msgs []*model.Message
	if err := cur.All(ctx, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// DeleteConversation 删除对话及其全部消息（级联）
func (r *ConversationRepo) DeleteConversation(ctx context.Context, conversationID string) error {
	return r.WithTransaction(ctx, func(txCtx context.Context) error {
		if _, err := r.messages.DeleteMany(txCtx, bson.M{"conversation_id": conversationID}); err != nil {
			return err
		}
		_, err := r.conversations.DeleteOne(txCtx, bson.M{"id": conversationID})
		return err
	})
}
