package service

import (
	"context"
)

// botInstructions 交互式聊天机器人的固定人设
const botInstructions = "You are a polite restaurant waiter. " +
	"Ask the user what their top 3 favorite foods are. " +
	"Keep it as an open question with an open answer."

// ChatService 交互式聊天服务
// 固定服务员人设，把用户消息透传给模型并返回单条回复，不保存任何历史
type ChatService struct {
	gen Generator
}

// NewChatService 创建聊天服务
func NewChatService(gen Generator) *ChatService {
	return &ChatService{gen: gen}
}

// Reply 对单条用户消息生成服务员回复
func (s *ChatService) Reply(ctx context.Context, message string) (string, error) {
	return s.gen.GenerateText(ctx, message, botInstructions)
}
