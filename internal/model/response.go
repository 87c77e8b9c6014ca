package model

// ErrorResponse 错误响应（所有API共用）
type ErrorResponse struct {
	Code    int    `json:"code"`             // 错误码（非0表示错误）
	Message string `json:"message"`          // 错误消息
	Detail  string `json:"detail,omitempty"` // 错误详情（可选）
}

// ChatRequest 聊天机器人请求
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse 聊天机器人响应
type ChatResponse struct {
	Reply string `json:"reply"`
}

// ListResponse 列表响应（count + items）
type ListResponse struct {
	Count int `json:"count"`
	Items any `json:"items"`
}

// VegetarianItem 素食对话列表项（裁剪后的投影）
type VegetarianItem struct {
	CustomerLabel string   `json:"customer_label"`
	Diet          Diet     `json:"diet"`
	FavoriteFoods []string `json:"favorite_foods"`
}
